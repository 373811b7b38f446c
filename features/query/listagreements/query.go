package listagreements

import (
	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

const (
	queryType = "ListAgreements"
)

// Query represents the intent to list the caller's agreements.
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
