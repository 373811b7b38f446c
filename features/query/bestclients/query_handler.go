package bestclients

import (
	"context"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	ClientPayments(ctx context.Context, window core.TimeWindow, limit int) ([]core.ClientTotal, error)
}

// QueryHandler orchestrates the query processing workflow: Read -> Project.
// External wrappers handle all observability concerns.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle reads the aggregated totals with eventual consistency and projects the ranking.
func (h QueryHandler) Handle(ctx context.Context, query Query) (BestClients, error) {
	totals, err := h.store.ClientPayments(ledger.WithEventualConsistency(ctx), query.Window, query.Limit)
	if err != nil {
		return BestClients{}, err
	}

	return ProjectBestClients(totals, query.Limit), nil
}
