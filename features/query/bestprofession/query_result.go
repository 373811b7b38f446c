package bestprofession

import (
	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

// BestProfession represents the query result.
type BestProfession struct {
	Found       bool       `json:"found"`
	Profession  string     `json:"profession,omitempty"`
	TotalEarned core.Money `json:"totalEarned"`
}
