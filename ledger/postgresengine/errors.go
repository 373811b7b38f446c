package postgresengine

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// ErrPartiesAlreadyLocked is returned when LockParties is called twice in one transaction,
// which would break the ascending lock order.
var ErrPartiesAlreadyLocked = errors.New("parties already locked in this transaction")

// classify marks serialization failures and deadlocks as concurrency conflicts so they get retried.
func classify(err error) error {
	if err == nil || errors.Is(err, ledger.ErrConcurrencyConflict) {
		return err
	}

	if isRetryableSQLState(sqlState(err)) {
		return errors.Join(ledger.ErrConcurrencyConflict, err)
	}

	return err
}

// sqlState extracts the SQLSTATE from pgx and lib/pq errors.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	return ""
}

func isRetryableSQLState(code string) bool {
	return code == sqlStateSerializationFailure || code == sqlStateDeadlockDetected
}

func isTxClosed(err error) bool {
	return errors.Is(err, pgx.ErrTxClosed) || errors.Is(err, sql.ErrTxDone)
}
