package unpaidworkunits

import (
	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

const (
	queryType = "UnpaidWorkUnits"
)

// Query represents the intent to list the caller's unpaid work units.
type Query struct {
	CallerID core.PartyID
}

// BuildQuery creates a new Query for the given caller.
func BuildQuery(callerID core.PartyID) Query {
	return Query{CallerID: callerID}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
