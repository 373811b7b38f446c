// Package demodata provisions the demo dataset: four clients, four contractors,
// nine agreements and fourteen work units.
//
// Records are created in a fixed order, so a fresh store hands out the ids 1 to 8 for parties,
// 1 to 9 for agreements and 1 to 14 for work units.
package demodata

import (
	"context"
	"fmt"
	"time"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
)

// Summary reports what Load created.
type Summary struct {
	Parties    int
	Agreements int
	WorkUnits  int
}

type partySeed struct {
	firstName, lastName, profession, balance string
	partyType                                core.PartyType
}

type agreementSeed struct {
	status       core.AgreementStatus
	payer, payee int // 1-based index into parties
}

type workUnitSeed struct {
	price     string
	agreement int // 1-based index into agreements
	paidAt    string
}

var parties = []partySeed{
	{"Harry", "Potter", "Wizard", "1150", core.PartyTypeClient},
	{"Mr", "Robot", "Hacker", "231.11", core.PartyTypeClient},
	{"John", "Snow", "Knows nothing", "451.3", core.PartyTypeClient},
	{"Ash", "Kethcum", "Pokemon master", "1.3", core.PartyTypeClient},
	{"John", "Lenon", "Musician", "64", core.PartyTypeContractor},
	{"Linus", "Torvalds", "Programmer", "1214", core.PartyTypeContractor},
	{"Alan", "Turing", "Programmer", "22", core.PartyTypeContractor},
	{"Aragorn", "II Elessar Telcontarion", "Fighter", "314", core.PartyTypeContractor},
}

var agreements = []agreementSeed{
	{core.AgreementStatusTerminated, 1, 5},
	{core.AgreementStatusInProgress, 1, 6},
	{core.AgreementStatusInProgress, 2, 6},
	{core.AgreementStatusInProgress, 2, 7},
	{core.AgreementStatusNew, 3, 8},
	{core.AgreementStatusInProgress, 3, 7},
	{core.AgreementStatusInProgress, 4, 7},
	{core.AgreementStatusInProgress, 4, 6},
	{core.AgreementStatusInProgress, 4, 8},
}

var workUnits = []workUnitSeed{
	{"200", 1, ""},
	{"201", 2, ""},
	{"202", 3, ""},
	{"200", 4, ""},
	{"200", 7, ""},
	{"2020", 7, "2020-08-15T19:11:26.737Z"},
	{"200", 2, "2020-08-15T19:11:26.737Z"},
	{"200", 3, "2020-08-16T19:11:26.737Z"},
	{"200", 1, "2020-08-17T19:11:26.737Z"},
	{"200", 5, "2020-08-17T19:11:26.737Z"},
	{"21", 1, "2020-08-10T19:11:26.737Z"},
	{"21", 2, "2020-08-15T19:11:26.737Z"},
	{"121", 3, "2020-08-15T19:11:26.737Z"},
	{"121", 3, "2020-08-14T23:11:26.737Z"},
}

// Load provisions the demo dataset through the given provisioner.
// Paid work units are created at their payment date so that the reporting windows
// of the demo cover them.
func Load(ctx context.Context, provisioner ledger.Provisioner) (Summary, error) {
	createdParties := make([]core.Party, 0, len(parties))
	for _, seed := range parties {
		party, err := provisioner.CreateParty(ctx, core.Party{
			FirstName:  seed.firstName,
			LastName:   seed.lastName,
			Profession: seed.profession,
			Balance:    core.MustParseMoney(seed.balance),
			Type:       seed.partyType,
		})
		if err != nil {
			return Summary{}, fmt.Errorf("creating party %s %s: %w", seed.firstName, seed.lastName, err)
		}

		createdParties = append(createdParties, party)
	}

	createdAgreements := make([]core.Agreement, 0, len(agreements))
	for i, seed := range agreements {
		agreement, err := provisioner.CreateAgreement(ctx, core.Agreement{
			Terms:   "bla bla bla",
			Status:  seed.status,
			PayerID: createdParties[seed.payer-1].ID,
			PayeeID: createdParties[seed.payee-1].ID,
		})
		if err != nil {
			return Summary{}, fmt.Errorf("creating agreement %d: %w", i+1, err)
		}

		createdAgreements = append(createdAgreements, agreement)
	}

	for i, seed := range workUnits {
		workUnit := core.WorkUnit{
			AgreementID: createdAgreements[seed.agreement-1].ID,
			Description: "work",
			Price:       core.MustParseMoney(seed.price),
		}

		if seed.paidAt != "" {
			paidAt, err := time.Parse(time.RFC3339Nano, seed.paidAt)
			if err != nil {
				return Summary{}, fmt.Errorf("parsing payment date of work unit %d: %w", i+1, err)
			}

			workUnit.Paid = core.Paid
			workUnit.PaymentDate = &paidAt
			workUnit.CreatedAt = paidAt
		}

		if _, err := provisioner.CreateWorkUnit(ctx, workUnit); err != nil {
			return Summary{}, fmt.Errorf("creating work unit %d: %w", i+1, err)
		}
	}

	return Summary{
		Parties:    len(createdParties),
		Agreements: len(createdAgreements),
		WorkUnits:  len(workUnits),
	}, nil
}
