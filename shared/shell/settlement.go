package shell

import (
	"context"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
)

// ApplySettlement writes a decided settlement through an open transaction.
// Every posting is a compare-and-swap on the balance the decision was based on,
// so a stale decision fails with ledger.ErrConcurrencyConflict and the whole transaction rolls back.
func ApplySettlement(ctx context.Context, tx ledger.Tx, settlement core.Settlement) error {
	for _, posting := range settlement.Postings {
		if err := tx.UpdateBalance(ctx, posting.PartyID, posting.Before, posting.After); err != nil {
			return err
		}
	}

	if settlement.SettlesWorkUnit() {
		return tx.MarkWorkUnitPaid(ctx, settlement.WorkUnit, settlement.SettledAt)
	}

	return nil
}
