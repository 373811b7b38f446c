package postgresengine

import (
	"context"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
)

// CreateParty inserts a party and returns it with its assigned id and timestamps.
func (s *Store) CreateParty(ctx context.Context, party core.Party) (core.Party, error) {
	if err := ledger.ValidateParty(party); err != nil {
		return core.Party{}, err
	}

	inserted, err := s.insert(ctx, operationCreateParty, s.tables.parties, func() (sqlQueryString, sqlArgs, error) {
		return s.buildInsertPartyQuery(party)
	})
	if err != nil {
		return core.Party{}, err
	}

	party.ID, party.CreatedAt, party.UpdatedAt = inserted.id, inserted.createdAt, inserted.updatedAt
	party.Balance = core.ToMoney(party.Balance)

	return party, nil
}

// CreateAgreement inserts an agreement and returns it with its assigned id and timestamps.
func (s *Store) CreateAgreement(ctx context.Context, agreement core.Agreement) (core.Agreement, error) {
	if err := ledger.ValidateAgreement(agreement); err != nil {
		return core.Agreement{}, err
	}

	inserted, err := s.insert(ctx, operationCreateAgreement, s.tables.agreements, func() (sqlQueryString, sqlArgs, error) {
		return s.buildInsertAgreementQuery(agreement)
	})
	if err != nil {
		return core.Agreement{}, err
	}

	agreement.ID, agreement.CreatedAt, agreement.UpdatedAt = inserted.id, inserted.createdAt, inserted.updatedAt

	return agreement, nil
}

// CreateWorkUnit inserts a work unit and returns it with its assigned id and timestamps.
func (s *Store) CreateWorkUnit(ctx context.Context, workUnit core.WorkUnit) (core.WorkUnit, error) {
	if err := ledger.ValidateWorkUnit(workUnit); err != nil {
		return core.WorkUnit{}, err
	}

	inserted, err := s.insert(ctx, operationCreateWorkUnit, s.tables.workUnits, func() (sqlQueryString, sqlArgs, error) {
		return s.buildInsertWorkUnitQuery(workUnit)
	})
	if err != nil {
		return core.WorkUnit{}, err
	}

	workUnit.ID, workUnit.CreatedAt, workUnit.UpdatedAt = inserted.id, inserted.createdAt, inserted.updatedAt
	workUnit.Price = core.ToMoney(workUnit.Price)

	return workUnit, nil
}

func (s *Store) insert(
	ctx context.Context,
	operation string,
	table string,
	build func() (sqlQueryString, sqlArgs, error),
) (insertedRow, error) {

	observer, ctx := s.observe(ctx, operation)
	ctx = ledger.WithStrongConsistency(ctx) // INSERT ... RETURNING must reach the primary

	rows, err := queryAll(ctx, s, s.db, operation, scanInserted, build)
	if err != nil {
		observer.failure(err)
		return insertedRow{}, err
	}

	if len(rows) != 1 {
		observer.failure(ledger.ErrExecutingFailed)
		return insertedRow{}, ledger.ErrExecutingFailed
	}

	s.logOperation(ctx, logMsgRecordCreated, logAttrTable, table, logAttrID, rows[0].id)
	observer.success(1)

	return rows[0], nil
}
