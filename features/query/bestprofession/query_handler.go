package bestprofession

import (
	"context"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	ProfessionEarnings(ctx context.Context, window core.TimeWindow) ([]core.ProfessionEarnings, error)
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

// Handle reads the aggregated earnings with eventual consistency and projects the winner.
func (h QueryHandler) Handle(ctx context.Context, query Query) (BestProfession, error) {
	earnings, err := h.store.ProfessionEarnings(ledger.WithEventualConsistency(ctx), query.Window)
	if err != nil {
		return BestProfession{}, err
	}

	return ProjectBestProfession(earnings), nil
}
