package ledger

import (
	"errors"
)

var ErrEmptyTableNameSupplied = errors.New("empty table name supplied")
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")

// ErrConcurrencyConflict is returned when a compare-and-swap write affected no rows
// or the database aborted the transaction because of a serialization failure or deadlock.
var ErrConcurrencyConflict = errors.New("concurrency error, no rows were affected")

// ErrRowNotFound is returned when a requested row does not exist or is not visible to the caller.
var ErrRowNotFound = errors.New("row not found")

var (
	ErrBuildingQueryFailed       = errors.New("building query failed")
	ErrQueryingFailed            = errors.New("querying failed")
	ErrScanningDBRowFailed       = errors.New("scanning db row failed")
	ErrExecutingFailed           = errors.New("executing statement failed")
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
	ErrBeginTxFailed             = errors.New("beginning transaction failed")
	ErrCommitTxFailed            = errors.New("committing transaction failed")
	ErrInvalidRecord             = errors.New("invalid record")
)

// IsStoreFailure reports whether err is a storage fault, as opposed to a conflict or a missing row.
func IsStoreFailure(err error) bool {
	for _, storeErr := range []error{
		ErrBuildingQueryFailed,
		ErrQueryingFailed,
		ErrScanningDBRowFailed,
		ErrExecutingFailed,
		ErrGettingRowsAffectedFailed,
		ErrBeginTxFailed,
		ErrCommitTxFailed,
	} {
		if errors.Is(err, storeErr) {
			return true
		}
	}

	return false
}
