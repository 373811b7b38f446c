package bestclients

import (
	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

// ClientInfo is one ranked client.
type ClientInfo struct {
	ID        core.PartyID `json:"id"`
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	TotalPaid core.Money   `json:"totalPaid"`
}

// BestClients represents the query result, best paying client first.
type BestClients struct {
	Clients []ClientInfo `json:"clients"`
	Count   int          `json:"count"`
}
