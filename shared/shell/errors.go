package shell

import "errors"

// ErrConflictRetryExhausted is returned when an operation kept hitting concurrency conflicts
// until the retry budget was used up. It is always joined with the last conflict error.
var ErrConflictRetryExhausted = errors.New("concurrency conflict, retries exhausted")
