package shell

import (
	"errors"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
)

// ErrorKind is the error taxonomy reported to callers.
type ErrorKind string

const (
	ErrorKindNone                   ErrorKind = ""
	ErrorKindNotFound               ErrorKind = "NotFound"
	ErrorKindForbidden              ErrorKind = "Forbidden"
	ErrorKindInvalidAmount          ErrorKind = "InvalidAmount"
	ErrorKindAlreadyPaid            ErrorKind = "AlreadyPaid"
	ErrorKindInsufficientFunds      ErrorKind = "InsufficientFunds"
	ErrorKindLimitExceeded          ErrorKind = "LimitExceeded"
	ErrorKindInvalidArgument        ErrorKind = "InvalidArgument"
	ErrorKindUnauthorized           ErrorKind = "Unauthorized"
	ErrorKindConflictRetryExhausted ErrorKind = "ConflictRetryExhausted"
	ErrorKindStoreUnavailable       ErrorKind = "StoreUnavailable"
)

// kindsBySentinel is checked in order, the first match wins.
var kindsBySentinel = []struct {
	sentinel error
	kind     ErrorKind
}{
	{ErrConflictRetryExhausted, ErrorKindConflictRetryExhausted},
	{core.ErrNotFound, ErrorKindNotFound},
	{core.ErrForbidden, ErrorKindForbidden},
	{core.ErrInvalidAmount, ErrorKindInvalidAmount},
	{core.ErrAlreadyPaid, ErrorKindAlreadyPaid},
	{core.ErrInsufficientFunds, ErrorKindInsufficientFunds},
	{core.ErrLimitExceeded, ErrorKindLimitExceeded},
	{core.ErrInvalidArgument, ErrorKindInvalidArgument},
	{core.ErrUnknownCaller, ErrorKindUnauthorized},
}

// ErrorKindFrom maps an error onto the error taxonomy.
// Anything that is neither a business error nor a conflict is a storage fault.
func ErrorKindFrom(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}

	for _, entry := range kindsBySentinel {
		if errors.Is(err, entry.sentinel) {
			return entry.kind
		}
	}

	if IsConcurrencyConflictError(err) {
		return ErrorKindConflictRetryExhausted
	}

	return ErrorKindStoreUnavailable
}

// IsBusinessError reports whether err is a typed business result rather than a failure.
func IsBusinessError(err error) bool {
	return core.IsBusinessError(err)
}

// Outcome is the structured result handed to the presentation layer.
type Outcome struct {
	OK        bool      `json:"ok"`
	ErrorKind ErrorKind `json:"errorKind,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// OutcomeFrom builds the Outcome of an operation. Data is dropped on error.
func OutcomeFrom(data any, err error) Outcome {
	if err != nil {
		return Outcome{OK: false, ErrorKind: ErrorKindFrom(err)}
	}

	return Outcome{OK: true, Data: data}
}
