package paywork

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
	"github.com/AntonStoeckl/agreement-ledger-go/shared/shell"
)

// CommandHandler orchestrates the payment workflow: Lock -> Decide -> Apply, inside one transaction.
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

// Handle executes the payment with retry on concurrency conflicts.
// Business rule violations are returned as errors together with a rejected HandlerResult.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var receipt core.Receipt

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		receipt, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	return shell.ResultFrom(receipt, retryMetrics, err), err
}

// executeCommand contains the transaction that can be retried as a whole.
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

		receipt = core.BuildReceipt(uuid.New(), command.CallerID, result.Settlement)

		return nil
	})

	return receipt, err
}

// lockSnapshot locks the work unit first and the parties only if the payment can still proceed,
// so a refused payment never holds locks on balances.
func lockSnapshot(ctx context.Context, tx ledger.Tx, command Command) (Snapshot, error) {
	var snapshot Snapshot

	workUnit, agreement, err := tx.LockWorkUnit(ctx, command.WorkUnitID)
	if errors.Is(err, ledger.ErrRowNotFound) {
		return snapshot, nil
	}

	if err != nil {
		return snapshot, err
	}

	snapshot.WorkUnit, snapshot.Agreement = &workUnit, agreement

	if !snapshot.needsParties(command) {
		return snapshot, nil
	}

	parties, err := tx.LockParties(ctx, agreement.PayerID, agreement.PayeeID)
	if err != nil {
		return snapshot, err
	}

	if payer, ok := parties[agreement.PayerID]; ok {
		snapshot.Payer = &payer
	}

	if payee, ok := parties[agreement.PayeeID]; ok {
		snapshot.Payee = &payee
	}

	return snapshot, nil
}
