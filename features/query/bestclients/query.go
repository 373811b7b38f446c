package bestclients

import (
	"time"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

const (
	queryType = "BestClients"

	// DefaultLimit is used when the caller does not ask for a specific number of clients.
	DefaultLimit = 2
)

// Query represents the intent to rank the best paying clients within a time window.
type Query struct {
	Window core.TimeWindow
	Limit  int
}

// BuildQuery creates a new Query.
// It returns core.ErrInvalidArgument for a missing or inverted window or a non-positive limit.
func BuildQuery(start, end time.Time, limit int) (Query, error) {
	window, err := core.NewTimeWindow(start, end)
	if err != nil {
		return Query{}, err
	}

	if limit < 1 {
		return Query{}, core.ErrInvalidArgument
	}

	return Query{Window: window, Limit: limit}, nil
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
