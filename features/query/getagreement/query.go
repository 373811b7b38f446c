package getagreement

import (
	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

const (
	queryType = "GetAgreement"
)

// Query represents the intent to read one agreement.
type Query struct {
	AgreementID core.AgreementID
	CallerID    core.PartyID
}

// BuildQuery creates a new Query.
func BuildQuery(agreementID core.AgreementID, callerID core.PartyID) Query {
	return Query{
		AgreementID: agreementID,
		CallerID:    callerID,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
