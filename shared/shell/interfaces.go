package shell

import (
	"context"
)

// Command represents the contract for all command types that change balances or payment states.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// CommandHandler defines the contract for components that process commands.
// Handlers run load, decide and apply inside one transaction and retry it on concurrency conflicts.
// Business rule violations come back as an error and a HandlerResult with Rejected set.
type CommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// Query represents the contract for all read-only requests: the query façade and the reports.
type Query interface {
	QueryType() string
}

// QueryHandler defines the contract for components that read from the store and project a result.
// Handlers never write. Reports may read from a replica, the per-caller listings read from the primary.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
