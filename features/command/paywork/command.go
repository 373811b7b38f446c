package paywork

import (
	"time"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

const (
	commandType = "PayWorkUnit"
)

// Command represents the intent of a caller to pay for a work unit.
type Command struct {
	WorkUnitID core.WorkUnitID
	CallerID   core.PartyID
	OccurredAt core.Timestamp
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(workUnitID core.WorkUnitID, callerID core.PartyID, occurredAt time.Time) Command {
	return Command{
		WorkUnitID: workUnitID,
		CallerID:   callerID,
		OccurredAt: core.ToTimestamp(occurredAt),
	}
}
