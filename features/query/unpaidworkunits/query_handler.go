package unpaidworkunits

import (
	"context"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	ListUnpaidWorkUnits(ctx context.Context, partyID core.PartyID) ([]core.WorkUnit, error)
}

// QueryHandler orchestrates the query processing workflow: Read -> Project.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle executes the query with strong consistency, so a settlement is visible right after it commits.
func (h QueryHandler) Handle(ctx context.Context, query Query) (UnpaidWorkUnits, error) {
	workUnits, err := h.store.ListUnpaidWorkUnits(ledger.WithStrongConsistency(ctx), query.CallerID)
	if err != nil {
		return UnpaidWorkUnits{}, err
	}

	return ProjectUnpaidWorkUnits(workUnits), nil
}
