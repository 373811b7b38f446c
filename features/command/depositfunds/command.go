package depositfunds

import (
	"time"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

const (
	commandType = "DepositFunds"
)

// Command represents the intent of a caller to deposit an amount to a party's balance.
type Command struct {
	TargetID   core.PartyID
	CallerID   core.PartyID
	CallerType core.PartyType
	Amount     core.Money
	OccurredAt core.Timestamp
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	targetID core.PartyID,
	callerID core.PartyID,
	callerType core.PartyType,
	amount core.Money,
	occurredAt time.Time,
) Command {
	return Command{
		TargetID:   targetID,
		CallerID:   callerID,
		CallerType: callerType,
		Amount:     amount,
		OccurredAt: core.ToTimestamp(occurredAt),
	}
}
