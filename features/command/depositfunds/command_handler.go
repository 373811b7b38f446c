package depositfunds

import (
	"context"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
	"github.com/AntonStoeckl/agreement-ledger-go/shared/shell"
)

// CommandHandler orchestrates the deposit workflow: Admit -> Lock -> Decide -> Apply.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	store        ledger.TxRunner
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(store ledger.TxRunner, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store: store,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the deposit with retry on concurrency conflicts.
// Commands failing Admit are rejected without opening a transaction.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	if err := Admit(command); err != nil {
		return shell.NewRejectedResult(shell.RetryMetrics{}), err
	}

	var receipt core.Receipt

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		receipt, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	return shell.ResultFrom(receipt, retryMetrics, err), err
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.Receipt, error) {
	var receipt core.Receipt

	err := h.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		snapshot, err := lockSnapshot(ctx, tx, command)
		if err != nil {
			return err
		}

		result := Decide(snapshot, command)
		if !result.HasChangesToApply() {
			return result.HasError()
		}

		if err = shell.ApplySettlement(ctx, tx, result.Settlement); err != nil {
			return err
		}

		receipt = core.BuildReceipt(uuid.New(), command.TargetID, result.Settlement)

		return nil
	})

	return receipt, err
}

// lockSnapshot locks the target before reading the liability, so a payment by the same
// party cannot change the balance between the decision and the write.
func lockSnapshot(ctx context.Context, tx ledger.Tx, command Command) (Snapshot, error) {
	var snapshot Snapshot

	parties, err := tx.LockParties(ctx, command.TargetID)
	if err != nil {
		return snapshot, err
	}

	target, ok := parties[command.TargetID]
	if !ok {
		return snapshot, nil
	}

	liability, err := tx.UnpaidLiability(ctx, command.TargetID)
	if err != nil {
		return snapshot, err
	}

	snapshot.Target, snapshot.Liability = &target, liability

	return snapshot, nil
}
