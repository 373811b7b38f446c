package core

import "errors"

// Business errors. They are returned as typed results and never leave persistent state changed.
var (
	// ErrNotFound is returned when a referenced record does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidAmount is returned for non-positive or malformed amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAlreadyPaid is returned when a work unit has already been settled.
	ErrAlreadyPaid = errors.New("work unit already paid")

	// ErrInsufficientFunds is returned when the payer's balance is lower than the price.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrLimitExceeded is returned when a deposit is above the allowed ceiling.
	ErrLimitExceeded = errors.New("deposit limit exceeded")

	// ErrInvalidArgument is returned for malformed query parameters like an inverted time window or a non-positive limit.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownCaller is returned by identity resolution when no party matches the caller id.
	ErrUnknownCaller = errors.New("unknown caller")
)

// IsBusinessError reports whether err carries one of the business errors above.
func IsBusinessError(err error) bool {
	for _, businessErr := range []error{
		ErrNotFound,
		ErrForbidden,
		ErrInvalidAmount,
		ErrAlreadyPaid,
		ErrInsufficientFunds,
		ErrLimitExceeded,
		ErrInvalidArgument,
		ErrUnknownCaller,
	} {
		if errors.Is(err, businessErr) {
			return true
		}
	}

	return false
}
