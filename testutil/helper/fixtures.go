package helper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
)

// Fixtures provisions records for tests through any ledger.Provisioner.
type Fixtures struct {
	t           *testing.T
	provisioner ledger.Provisioner
}

// NewFixtures creates a fixture builder bound to the test.
func NewFixtures(t *testing.T, provisioner ledger.Provisioner) Fixtures {
	t.Helper()

	return Fixtures{t: t, provisioner: provisioner}
}

// GivenClient creates a client with the given balance.
func (f Fixtures) GivenClient(firstName, balance string) core.Party {
	f.t.Helper()

	return f.givenParty(core.Party{
		FirstName:  firstName,
		LastName:   "Client",
		Profession: "Buyer",
		Balance:    core.MustParseMoney(balance),
		Type:       core.PartyTypeClient,
	})
}

// GivenContractor creates a contractor with the given profession and balance.
func (f Fixtures) GivenContractor(firstName, profession, balance string) core.Party {
	f.t.Helper()

	return f.givenParty(core.Party{
		FirstName:  firstName,
		LastName:   "Contractor",
		Profession: profession,
		Balance:    core.MustParseMoney(balance),
		Type:       core.PartyTypeContractor,
	})
}

func (f Fixtures) givenParty(party core.Party) core.Party {
	f.t.Helper()

	created, err := f.provisioner.CreateParty(context.Background(), party)
	require.NoError(f.t, err)

	return created
}

// GivenAgreement creates an agreement between payer and payee.
func (f Fixtures) GivenAgreement(payer, payee core.Party, status core.AgreementStatus) core.Agreement {
	f.t.Helper()

	return f.GivenAgreementCreatedAt(payer, payee, status, time.Time{})
}

// GivenAgreementCreatedAt creates an agreement with an explicit creation time. A zero time means now.
func (f Fixtures) GivenAgreementCreatedAt(
	payer, payee core.Party,
	status core.AgreementStatus,
	createdAt time.Time,
) core.Agreement {
	f.t.Helper()

	created, err := f.provisioner.CreateAgreement(context.Background(), core.Agreement{
		Terms:     "bla bla bla",
		Status:    status,
		PayerID:   payer.ID,
		PayeeID:   payee.ID,
		CreatedAt: createdAt,
	})
	require.NoError(f.t, err)

	return created
}

// GivenUnpaidWorkUnit creates an unpaid work unit with the given price.
func (f Fixtures) GivenUnpaidWorkUnit(agreement core.Agreement, price string) core.WorkUnit {
	f.t.Helper()

	return f.givenWorkUnit(core.WorkUnit{
		AgreementID: agreement.ID,
		Description: "work",
		Price:       core.MustParseMoney(price),
	})
}

// GivenUnpaidWorkUnitCreatedAt creates an unpaid work unit with an explicit creation time.
func (f Fixtures) GivenUnpaidWorkUnitCreatedAt(agreement core.Agreement, price string, createdAt time.Time) core.WorkUnit {
	f.t.Helper()

	return f.givenWorkUnit(core.WorkUnit{
		AgreementID: agreement.ID,
		Description: "work",
		Price:       core.MustParseMoney(price),
		CreatedAt:   createdAt,
	})
}

// GivenPaidWorkUnit creates a work unit that was paid at createdAt.
func (f Fixtures) GivenPaidWorkUnit(agreement core.Agreement, price string, createdAt time.Time) core.WorkUnit {
	f.t.Helper()

	paidAt := createdAt

	return f.givenWorkUnit(core.WorkUnit{
		AgreementID: agreement.ID,
		Description: "work",
		Price:       core.MustParseMoney(price),
		Paid:        core.Paid,
		PaymentDate: &paidAt,
		CreatedAt:   createdAt,
	})
}

func (f Fixtures) givenWorkUnit(workUnit core.WorkUnit) core.WorkUnit {
	f.t.Helper()

	created, err := f.provisioner.CreateWorkUnit(context.Background(), workUnit)
	require.NoError(f.t, err)

	return created
}
