package postgresengine

import (
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
)

const (
	defaultPartiesTableName    = "parties"
	defaultAgreementsTableName = "agreements"
	defaultWorkUnitsTableName  = "work_units"
	dialectPostgres            = "postgres"
	aliasParty                 = "p"
	aliasAgreement             = "a"
	aliasWorkUnit              = "w"
	aliasTotal                 = "total"
	colID                      = "id"
	colFirstName               = "first_name"
	colLastName                = "last_name"
	colProfession              = "profession"
	colBalance                 = "balance"
	colType                    = "type"
	colTerms                   = "terms"
	colStatus                  = "status"
	colPayerID                 = "payer_id"
	colPayeeID                 = "payee_id"
	colAgreementID             = "agreement_id"
	colDescription             = "description"
	colPrice                   = "price"
	colPaid                    = "paid"
	colPaymentDate             = "payment_date"
	colCreatedAt               = "created_at"
	colUpdatedAt               = "updated_at"
	sqlNow                     = "NOW()"
)

type (
	sqlQueryString = string
	sqlArgs        = []any
)

type tableNames struct {
	parties    string
	agreements string
	workUnits  string
}

var (
	partyColumns     = []string{colID, colFirstName, colLastName, colProfession, colBalance, colType, colCreatedAt, colUpdatedAt}
	agreementColumns = []string{colID, colTerms, colStatus, colPayerID, colPayeeID, colCreatedAt, colUpdatedAt}
	workUnitColumns  = []string{colID, colAgreementID, colDescription, colPrice, colPaid, colPaymentDate, colCreatedAt, colUpdatedAt}
)

func qualified(alias string, columns []string) []any {
	identifiers := make([]any, 0, len(columns))
	for _, column := range columns {
		identifiers = append(identifiers, goqu.I(alias+"."+column))
	}

	return identifiers
}

func col(alias, column string) exp.IdentifierExpression {
	return goqu.I(alias + "." + column)
}

func unpaid(alias string) exp.ExpressionList {
	return goqu.Or(col(alias, colPaid).IsNull(), col(alias, colPaid).IsFalse())
}

func involves(partyID core.PartyID) exp.ExpressionList {
	return goqu.Or(
		col(aliasAgreement, colPayerID).Eq(partyID),
		col(aliasAgreement, colPayeeID).Eq(partyID),
	)
}

func (s *Store) builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

func (s *Store) workUnitsJoinedToAgreements() *goqu.SelectDataset {
	return s.builder().
		From(goqu.T(s.tables.workUnits).As(aliasWorkUnit)).
		Join(
			goqu.T(s.tables.agreements).As(aliasAgreement),
			goqu.On(col(aliasAgreement, colID).Eq(col(aliasWorkUnit, colAgreementID))),
		)
}

func toSQL(ds interface {
	ToSQL() (string, []interface{}, error)
}) (sqlQueryString, sqlArgs, error) {

	query, args, err := ds.ToSQL()
	if err != nil {
		return "", nil, errors.Join(ledger.ErrBuildingQueryFailed, err)
	}

	return query, args, nil
}

func (s *Store) buildFindPartyQuery(partyID core.PartyID) (sqlQueryString, sqlArgs, error) {
	return toSQL(s.builder().
		From(goqu.T(s.tables.parties).As(aliasParty)).
		Select(qualified(aliasParty, partyColumns)...).
		Where(col(aliasParty, colID).Eq(partyID)).
		Prepared(true))
}

func (s *Store) buildListAgreementsQuery(partyID core.PartyID) (sqlQueryString, sqlArgs, error) {
	return toSQL(s.builder().
		From(goqu.T(s.tables.agreements).As(aliasAgreement)).
		Select(qualified(aliasAgreement, agreementColumns)...).
		Where(
			involves(partyID),
			col(aliasAgreement, colStatus).Neq(string(core.AgreementStatusTerminated)),
		).
		Order(col(aliasAgreement, colID).Asc()).
		Prepared(true))
}

func (s *Store) buildFindAgreementQuery(agreementID core.AgreementID, partyID core.PartyID) (sqlQueryString, sqlArgs, error) {
	columns := qualified(aliasAgreement, agreementColumns)
	columns = append(columns, qualified(aliasWorkUnit, workUnitColumns)...)

	return toSQL(s.builder().
		From(goqu.T(s.tables.agreements).As(aliasAgreement)).
		LeftJoin(
			goqu.T(s.tables.workUnits).As(aliasWorkUnit),
			goqu.On(col(aliasWorkUnit, colAgreementID).Eq(col(aliasAgreement, colID))),
		).
		Select(columns...).
		Where(
			col(aliasAgreement, colID).Eq(agreementID),
			involves(partyID),
		).
		Order(col(aliasWorkUnit, colID).Asc()).
		Prepared(true))
}

func (s *Store) buildListUnpaidWorkUnitsQuery(partyID core.PartyID) (sqlQueryString, sqlArgs, error) {
	return toSQL(s.workUnitsJoinedToAgreements().
		Select(qualified(aliasWorkUnit, workUnitColumns)...).
		Where(
			involves(partyID),
			col(aliasAgreement, colStatus).Eq(string(core.AgreementStatusInProgress)),
			unpaid(aliasWorkUnit),
		).
		Order(col(aliasWorkUnit, colID).Asc()).
		Prepared(true))
}

func (s *Store) buildProfessionEarningsQuery(window core.TimeWindow) (sqlQueryString, sqlArgs, error) {
	return toSQL(s.workUnitsJoinedToAgreements().
		Join(
			goqu.T(s.tables.parties).As(aliasParty),
			goqu.On(col(aliasParty, colID).Eq(col(aliasAgreement, colPayeeID))),
		).
		Select(col(aliasParty, colProfession), goqu.SUM(col(aliasWorkUnit, colPrice)).As(aliasTotal)).
		Where(
			col(aliasAgreement, colStatus).Eq(string(core.AgreementStatusInProgress)),
			col(aliasAgreement, colCreatedAt).Between(goqu.Range(window.Start, window.End)),
		).
		GroupBy(col(aliasParty, colProfession)).
		Order(goqu.I(aliasTotal).Desc(), col(aliasParty, colProfession).Asc()).
		Prepared(true))
}

func (s *Store) buildClientPaymentsQuery(window core.TimeWindow, limit int) (sqlQueryString, sqlArgs, error) {
	ds := s.workUnitsJoinedToAgreements().
		Join(
			goqu.T(s.tables.parties).As(aliasParty),
			goqu.On(col(aliasParty, colID).Eq(col(aliasAgreement, colPayerID))),
		).
		Select(
			col(aliasParty, colID),
			col(aliasParty, colFirstName),
			col(aliasParty, colLastName),
			goqu.SUM(col(aliasWorkUnit, colPrice)).As(aliasTotal),
		).
		Where(
			col(aliasWorkUnit, colPaid).IsTrue(),
			col(aliasWorkUnit, colCreatedAt).Between(goqu.Range(window.Start, window.End)),
		).
		GroupBy(col(aliasParty, colID), col(aliasParty, colFirstName), col(aliasParty, colLastName)).
		Order(goqu.I(aliasTotal).Desc(), col(aliasParty, colID).Asc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	return toSQL(ds.Prepared(true))
}

func (s *Store) buildLockWorkUnitQuery(workUnitID core.WorkUnitID) (sqlQueryString, sqlArgs, error) {
	columns := qualified(aliasWorkUnit, workUnitColumns)
	columns = append(columns, qualified(aliasAgreement, agreementColumns)...)

	return toSQL(s.workUnitsJoinedToAgreements().
		Select(columns...).
		Where(col(aliasWorkUnit, colID).Eq(workUnitID)).
		ForUpdate(exp.Wait, goqu.T(aliasWorkUnit)).
		Prepared(true))
}

func (s *Store) buildLockPartiesQuery(partyIDs []core.PartyID) (sqlQueryString, sqlArgs, error) {
	return toSQL(s.builder().
		From(goqu.T(s.tables.parties).As(aliasParty)).
		Select(qualified(aliasParty, partyColumns)...).
		Where(col(aliasParty, colID).In(partyIDs)).
		Order(col(aliasParty, colID).Asc()).
		ForUpdate(exp.Wait).
		Prepared(true))
}

func (s *Store) buildUnpaidLiabilityQuery(payerID core.PartyID) (sqlQueryString, sqlArgs, error) {
	return toSQL(s.workUnitsJoinedToAgreements().
		Select(goqu.COALESCE(goqu.SUM(col(aliasWorkUnit, colPrice)), 0).As(aliasTotal)).
		Where(
			col(aliasAgreement, colPayerID).Eq(payerID),
			unpaid(aliasWorkUnit),
		).
		Prepared(true))
}

func (s *Store) buildUpdateBalanceQuery(partyID core.PartyID, expected, next core.Money) (sqlQueryString, sqlArgs, error) {
	return toSQL(s.builder().
		Update(s.tables.parties).
		Set(goqu.Record{
			colBalance:   next,
			colUpdatedAt: goqu.L(sqlNow),
		}).
		Where(
			goqu.C(colID).Eq(partyID),
			goqu.C(colBalance).Eq(expected),
		).
		Prepared(true))
}

func (s *Store) buildMarkWorkUnitPaidQuery(workUnitID core.WorkUnitID, paidAt time.Time) (sqlQueryString, sqlArgs, error) {
	return toSQL(s.builder().
		Update(s.tables.workUnits).
		Set(goqu.Record{
			colPaid:        true,
			colPaymentDate: paidAt,
			colUpdatedAt:   goqu.L(sqlNow),
		}).
		Where(
			goqu.C(colID).Eq(workUnitID),
			goqu.Or(goqu.C(colPaid).IsNull(), goqu.C(colPaid).IsFalse()),
		).
		Prepared(true))
}

func (s *Store) buildInsertPartyQuery(party core.Party) (sqlQueryString, sqlArgs, error) {
	record := goqu.Record{
		colFirstName:  party.FirstName,
		colLastName:   party.LastName,
		colProfession: party.Profession,
		colBalance:    core.ToMoney(party.Balance),
		colType:       string(party.Type),
	}
	withIdentity(record, party.ID, party.CreatedAt)

	return toSQL(s.builder().
		Insert(s.tables.parties).
		Rows(record).
		Returning(colID, colCreatedAt, colUpdatedAt).
		Prepared(true))
}

func (s *Store) buildInsertAgreementQuery(agreement core.Agreement) (sqlQueryString, sqlArgs, error) {
	record := goqu.Record{
		colTerms:   agreement.Terms,
		colStatus:  string(agreement.Status),
		colPayerID: agreement.PayerID,
		colPayeeID: agreement.PayeeID,
	}
	withIdentity(record, agreement.ID, agreement.CreatedAt)

	return toSQL(s.builder().
		Insert(s.tables.agreements).
		Rows(record).
		Returning(colID, colCreatedAt, colUpdatedAt).
		Prepared(true))
}

func (s *Store) buildInsertWorkUnitQuery(workUnit core.WorkUnit) (sqlQueryString, sqlArgs, error) {
	record := goqu.Record{
		colAgreementID: workUnit.AgreementID,
		colDescription: workUnit.Description,
		colPrice:       core.ToMoney(workUnit.Price),
	}
	withIdentity(record, workUnit.ID, workUnit.CreatedAt)

	if workUnit.IsPaid() {
		record[colPaid] = true
		if workUnit.PaymentDate != nil {
			record[colPaymentDate] = *workUnit.PaymentDate
		}
	}

	return toSQL(s.builder().
		Insert(s.tables.workUnits).
		Rows(record).
		Returning(colID, colCreatedAt, colUpdatedAt).
		Prepared(true))
}

// withIdentity adds explicitly requested ids and creation timestamps, otherwise the database defaults apply.
func withIdentity(record goqu.Record, id int64, createdAt time.Time) {
	if id > 0 {
		record[colID] = id
	}

	if !createdAt.IsZero() {
		record[colCreatedAt] = core.ToTimestamp(createdAt)
		record[colUpdatedAt] = core.ToTimestamp(createdAt)
	}
}
