package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger/postgresengine/internal/adapters"
)

// WithinTx runs fn inside a transaction on the primary database.
// The transaction is committed if fn returns nil and rolled back otherwise.
// Serialization failures and deadlocks are reported as ledger.ErrConcurrencyConflict.
func (s *Store) WithinTx(ctx context.Context, fn ledger.TxFunc) (err error) {
	observer, ctx := s.observe(ctx, operationTransaction)
	ctx = ledger.WithStrongConsistency(ctx)

	defer func() {
		if err != nil {
			observer.failure(err)
			return
		}

		observer.success(0)
	}()

	dbTx, beginErr := s.db.BeginTx(ctx, s.isolation)
	if beginErr != nil {
		s.logError(ctx, logMsgBeginTxFailed, beginErr, logAttrIsolation, isolationName(s.isolation))
		return classify(errors.Join(ledger.ErrBeginTxFailed, beginErr))
	}

	start := time.Now()

	if fnErr := fn(ctx, &pgTx{store: s, tx: dbTx}); fnErr != nil {
		s.rollback(ctx, dbTx)
		return classify(fnErr)
	}

	if commitErr := dbTx.Commit(ctx); commitErr != nil {
		s.logError(ctx, logMsgCommitFailed, commitErr)
		s.rollback(ctx, dbTx)
		return classify(errors.Join(ledger.ErrCommitTxFailed, commitErr))
	}

	s.logOperation(ctx, logMsgTxCommitted,
		logAttrIsolation, isolationName(s.isolation),
		logAttrDurationMS, toMilliseconds(time.Since(start)),
	)

	return nil
}

func (s *Store) rollback(ctx context.Context, dbTx adapters.DBTx) {
	// the caller's context may already be canceled, the rollback must still reach the server
	rollbackCtx := context.WithoutCancel(ctx)

	if rollbackErr := dbTx.Rollback(rollbackCtx); rollbackErr != nil && !isTxClosed(rollbackErr) {
		s.logWarn(ctx, logMsgRollbackFailed, logAttrError, rollbackErr.Error())
	}
}

// pgTx implements ledger.Tx on top of an open database transaction.
type pgTx struct {
	store         *Store
	tx            adapters.DBTx
	partiesLocked bool
}

// LockWorkUnit locks the work unit row (not the agreement) and returns it with its agreement.
func (t *pgTx) LockWorkUnit(ctx context.Context, workUnitID core.WorkUnitID) (core.WorkUnit, core.Agreement, error) {
	s := t.store
	observer, ctx := s.observe(ctx, operationLockWorkUnit)

	rows, err := queryAll(ctx, s, t.tx, operationLockWorkUnit, scanLockedWorkUnit, func() (sqlQueryString, sqlArgs, error) {
		return s.buildLockWorkUnitQuery(workUnitID)
	})
	if err != nil {
		observer.failure(err)
		return core.WorkUnit{}, core.Agreement{}, err
	}

	if len(rows) == 0 {
		observer.failure(ledger.ErrRowNotFound)
		return core.WorkUnit{}, core.Agreement{}, ledger.ErrRowNotFound
	}

	observer.success(1)

	return rows[0].workUnit, rows[0].agreement, nil
}

// LockParties locks the existing party rows in ascending id order.
func (t *pgTx) LockParties(ctx context.Context, partyIDs ...core.PartyID) (map[core.PartyID]core.Party, error) {
	if t.partiesLocked {
		return nil, ErrPartiesAlreadyLocked
	}
	t.partiesLocked = true

	s := t.store
	observer, ctx := s.observe(ctx, operationLockParties)

	parties, err := queryAll(ctx, s, t.tx, operationLockParties, scanParty, func() (sqlQueryString, sqlArgs, error) {
		return s.buildLockPartiesQuery(partyIDs)
	})
	if err != nil {
		observer.failure(err)
		return nil, err
	}

	observer.success(len(parties))

	locked := make(map[core.PartyID]core.Party, len(parties))
	for _, party := range parties {
		locked[party.ID] = party
	}

	return locked, nil
}

// UnpaidLiability sums unpaid work unit prices under all agreements where the party pays.
func (t *pgTx) UnpaidLiability(ctx context.Context, payerID core.PartyID) (core.Money, error) {
	s := t.store
	observer, ctx := s.observe(ctx, operationUnpaidLiability)

	sums, err := queryAll(ctx, s, t.tx, operationUnpaidLiability, scanMoney, func() (sqlQueryString, sqlArgs, error) {
		return s.buildUnpaidLiabilityQuery(payerID)
	})
	if err != nil {
		observer.failure(err)
		return decimal.Zero, err
	}

	observer.success(len(sums))

	if len(sums) == 0 {
		return decimal.Zero, nil
	}

	return sums[0], nil
}

// UpdateBalance overwrites the balance only if it still equals expected.
func (t *pgTx) UpdateBalance(ctx context.Context, partyID core.PartyID, expected, next core.Money) error {
	s := t.store
	observer, ctx := s.observe(ctx, operationUpdateBalance)

	rowsAffected, err := exec(ctx, s, t.tx, func() (sqlQueryString, sqlArgs, error) {
		return s.buildUpdateBalanceQuery(partyID, expected, next)
	})
	if err != nil {
		observer.failure(err)
		return err
	}

	if rowsAffected == 0 {
		s.logOperation(ctx, logMsgConcurrencyConflict,
			logAttrOperation, operationUpdateBalance,
			logAttrID, partyID,
			logAttrRowsAffected, rowsAffected,
		)
		observer.failure(ledger.ErrConcurrencyConflict)

		return ledger.ErrConcurrencyConflict
	}

	observer.success(int(rowsAffected))

	return nil
}

// MarkWorkUnitPaid performs the one-way unpaid to paid transition.
func (t *pgTx) MarkWorkUnitPaid(ctx context.Context, workUnitID core.WorkUnitID, paidAt time.Time) error {
	s := t.store
	observer, ctx := s.observe(ctx, operationMarkWorkUnitPaid)

	rowsAffected, err := exec(ctx, s, t.tx, func() (sqlQueryString, sqlArgs, error) {
		return s.buildMarkWorkUnitPaidQuery(workUnitID, core.ToTimestamp(paidAt))
	})
	if err != nil {
		observer.failure(err)
		return err
	}

	if rowsAffected == 0 {
		s.logOperation(ctx, logMsgConcurrencyConflict,
			logAttrOperation, operationMarkWorkUnitPaid,
			logAttrID, workUnitID,
			logAttrRowsAffected, rowsAffected,
		)
		observer.failure(ledger.ErrConcurrencyConflict)

		return ledger.ErrConcurrencyConflict
	}

	observer.success(int(rowsAffected))

	return nil
}
