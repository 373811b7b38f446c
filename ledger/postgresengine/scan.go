package postgresengine

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger/postgresengine/internal/adapters"
)

type agreementRow struct {
	agreement core.Agreement
	workUnit  *core.WorkUnit
}

type lockedWorkUnitRow struct {
	workUnit  core.WorkUnit
	agreement core.Agreement
}

type nullableWorkUnitColumns struct {
	id          sql.NullInt64
	agreementID sql.NullInt64
	description sql.NullString
	price       decimal.NullDecimal
	paid        sql.NullBool
	paymentDate sql.NullTime
	createdAt   sql.NullTime
	updatedAt   sql.NullTime
}

func scanParty(rows adapters.DBRows) (core.Party, error) {
	var party core.Party
	var partyType string

	err := rows.Scan(
		&party.ID,
		&party.FirstName,
		&party.LastName,
		&party.Profession,
		&party.Balance,
		&partyType,
		&party.CreatedAt,
		&party.UpdatedAt,
	)
	if err != nil {
		return core.Party{}, err
	}

	party.Type = core.PartyType(partyType)

	return party, nil
}

func agreementDestinations(agreement *core.Agreement, status *string) []any {
	return []any{
		&agreement.ID,
		&agreement.Terms,
		status,
		&agreement.PayerID,
		&agreement.PayeeID,
		&agreement.CreatedAt,
		&agreement.UpdatedAt,
	}
}

func scanAgreement(rows adapters.DBRows) (core.Agreement, error) {
	var agreement core.Agreement
	var status string

	if err := rows.Scan(agreementDestinations(&agreement, &status)...); err != nil {
		return core.Agreement{}, err
	}

	agreement.Status = core.AgreementStatus(status)

	return agreement, nil
}

func workUnitDestinations(cols *nullableWorkUnitColumns) []any {
	return []any{
		&cols.id,
		&cols.agreementID,
		&cols.description,
		&cols.price,
		&cols.paid,
		&cols.paymentDate,
		&cols.createdAt,
		&cols.updatedAt,
	}
}

func (cols nullableWorkUnitColumns) toWorkUnit() core.WorkUnit {
	workUnit := core.WorkUnit{
		ID:          cols.id.Int64,
		AgreementID: cols.agreementID.Int64,
		Description: cols.description.String,
		Price:       cols.price.Decimal,
		Paid:        core.PaymentStateFromFlag(cols.paid.Valid, cols.paid.Bool),
		CreatedAt:   cols.createdAt.Time,
		UpdatedAt:   cols.updatedAt.Time,
	}

	if cols.paymentDate.Valid {
		paymentDate := cols.paymentDate.Time
		workUnit.PaymentDate = &paymentDate
	}

	return workUnit
}

func scanWorkUnit(rows adapters.DBRows) (core.WorkUnit, error) {
	var cols nullableWorkUnitColumns

	if err := rows.Scan(workUnitDestinations(&cols)...); err != nil {
		return core.WorkUnit{}, err
	}

	return cols.toWorkUnit(), nil
}

func scanAgreementWithOptionalWorkUnit(rows adapters.DBRows) (agreementRow, error) {
	var row agreementRow
	var status string
	var cols nullableWorkUnitColumns

	destinations := agreementDestinations(&row.agreement, &status)
	destinations = append(destinations, workUnitDestinations(&cols)...)

	if err := rows.Scan(destinations...); err != nil {
		return agreementRow{}, err
	}

	row.agreement.Status = core.AgreementStatus(status)

	if cols.id.Valid {
		workUnit := cols.toWorkUnit()
		row.workUnit = &workUnit
	}

	return row, nil
}

func scanLockedWorkUnit(rows adapters.DBRows) (lockedWorkUnitRow, error) {
	var row lockedWorkUnitRow
	var cols nullableWorkUnitColumns
	var status string

	destinations := workUnitDestinations(&cols)
	destinations = append(destinations, agreementDestinations(&row.agreement, &status)...)

	if err := rows.Scan(destinations...); err != nil {
		return lockedWorkUnitRow{}, err
	}

	row.workUnit = cols.toWorkUnit()
	row.agreement.Status = core.AgreementStatus(status)

	return row, nil
}

func scanProfessionEarnings(rows adapters.DBRows) (core.ProfessionEarnings, error) {
	var earnings core.ProfessionEarnings

	if err := rows.Scan(&earnings.Profession, &earnings.Total); err != nil {
		return core.ProfessionEarnings{}, err
	}

	return earnings, nil
}

func scanClientTotal(rows adapters.DBRows) (core.ClientTotal, error) {
	var total core.ClientTotal

	if err := rows.Scan(&total.PartyID, &total.FirstName, &total.LastName, &total.TotalPaid); err != nil {
		return core.ClientTotal{}, err
	}

	return total, nil
}

func scanMoney(rows adapters.DBRows) (core.Money, error) {
	var amount decimal.Decimal

	if err := rows.Scan(&amount); err != nil {
		return decimal.Zero, err
	}

	return amount, nil
}

type insertedRow struct {
	id        int64
	createdAt time.Time
	updatedAt time.Time
}

func scanInserted(rows adapters.DBRows) (insertedRow, error) {
	var row insertedRow

	if err := rows.Scan(&row.id, &row.createdAt, &row.updatedAt); err != nil {
		return insertedRow{}, err
	}

	return row, nil
}
