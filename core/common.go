package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Instead of implementing full value objects, I'm using some alias types and helper methods here ...

// PartyID identifies a party (payer or payee).
type PartyID = int64

// AgreementID identifies an agreement.
type AgreementID = int64

// WorkUnitID identifies a work unit.
type WorkUnitID = int64

// Money is a fixed-point amount with two fractional digits.
type Money = decimal.Decimal

// Timestamp represents when something was created, updated, or paid.
type Timestamp = time.Time

// moneyScale is the number of fractional digits kept for all amounts.
const moneyScale = 2

// ToTimestamp converts a time to Timestamp with UTC normalization and microsecond precision.
func ToTimestamp(t time.Time) Timestamp {
	return t.UTC().Truncate(time.Microsecond)
}

// ToMoney rounds an amount to the ledger's precision.
func ToMoney(amount decimal.Decimal) Money {
	return amount.Round(moneyScale)
}

// ParseMoney parses a decimal string like "150.25" into Money.
// Amounts with more than two fractional digits are rejected with ErrInvalidAmount.
func ParseMoney(s string) (Money, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}

	if !amount.Equal(amount.Round(moneyScale)) {
		return decimal.Zero, ErrInvalidAmount
	}

	return amount, nil
}

// MustParseMoney is like ParseMoney but panics on malformed input. Meant for fixtures and tests.
func MustParseMoney(s string) Money {
	amount, err := ParseMoney(s)
	if err != nil {
		panic("core: invalid money literal " + s)
	}

	return amount
}
