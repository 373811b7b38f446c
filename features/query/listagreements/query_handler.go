package listagreements

import (
	"context"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	ListAgreements(ctx context.Context, partyID core.PartyID) ([]core.Agreement, error)
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
func (h QueryHandler) Handle(ctx context.Context, query Query) (Agreements, error) {
	agreements, err := h.store.ListAgreements(ledger.WithStrongConsistency(ctx), query.CallerID)
	if err != nil {
		return Agreements{}, err
	}

	return ProjectAgreements(agreements, query.CallerID), nil
}
