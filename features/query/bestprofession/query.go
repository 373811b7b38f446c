package bestprofession

import (
	"time"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

const (
	queryType = "BestProfession"
)

// Query represents the intent to find the best earning profession within a time window.
type Query struct {
	Window core.TimeWindow
}

// BuildQuery creates a new Query. It returns core.ErrInvalidArgument for a missing or inverted window.
func BuildQuery(start, end time.Time) (Query, error) {
	window, err := core.NewTimeWindow(start, end)
	if err != nil {
		return Query{}, err
	}

	return Query{Window: window}, nil
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
