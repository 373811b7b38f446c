package getagreement

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	FindAgreement(ctx context.Context, agreementID core.AgreementID, partyID core.PartyID) (core.AgreementWithWorkUnits, error)
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
func (h QueryHandler) Handle(ctx context.Context, query Query) (AgreementDetails, error) {
	agreement, err := h.store.FindAgreement(ledger.WithStrongConsistency(ctx), query.AgreementID, query.CallerID)
	if errors.Is(err, ledger.ErrRowNotFound) {
		return AgreementDetails{}, core.ErrNotFound
	}

	if err != nil {
		return AgreementDetails{}, err
	}

	return ProjectAgreementDetails(agreement, query.CallerID)
}
