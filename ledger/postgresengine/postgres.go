package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger/postgresengine/internal/adapters"
)

const (
	logMsgBuildQueryFailed     = "failed to build query"
	logMsgDBQueryFailed        = "database query execution failed"
	logMsgDBExecFailed         = "database execution failed"
	logMsgCloseRowsFailed      = "failed to close database rows"
	logMsgScanRowFailed        = "failed to scan database row"
	logMsgRowsAffectedFailed   = "failed to get rows affected count"
	logMsgBeginTxFailed        = "failed to begin transaction"
	logMsgCommitFailed         = "failed to commit transaction"
	logMsgRollbackFailed       = "failed to roll back transaction"
	logMsgQueryCompleted       = "query completed"
	logMsgTxCommitted          = "transaction committed"
	logMsgConcurrencyConflict  = "concurrency conflict detected"
	logMsgRecordCreated        = "record created"
	logMsgSQLExecuted          = "executed sql for: "
	logMsgOperation            = "ledger operation: "
	logAttrError               = "error"
	logAttrQuery               = "query"
	logAttrOperation           = "operation"
	logAttrRowCount            = "row_count"
	logAttrDurationMS          = "duration_ms"
	logAttrRowsAffected        = "rows_affected"
	logAttrTable               = "table"
	logAttrID                  = "id"
	logAttrIsolation           = "isolation"
	logActionQuery             = "query"
	logActionExec              = "exec"
	operationFindParty         = "find_party"
	operationListAgreements    = "list_agreements"
	operationFindAgreement     = "find_agreement"
	operationListUnpaid        = "list_unpaid_work_units"
	operationProfessionTotals  = "profession_earnings"
	operationClientPayments    = "client_payments"
	operationTransaction       = "transaction"
	operationLockWorkUnit      = "lock_work_unit"
	operationLockParties       = "lock_parties"
	operationUnpaidLiability   = "unpaid_liability"
	operationUpdateBalance     = "update_balance"
	operationMarkWorkUnitPaid  = "mark_work_unit_paid"
	operationCreateParty       = "create_party"
	operationCreateAgreement   = "create_agreement"
	operationCreateWorkUnit    = "create_work_unit"
	isolationNameRepeatable    = "repeatable_read"
	isolationNameSerializable  = "serializable"
	isolationNameReadCommitted = "read_committed"
)

// ErrUnknownIsolationLevel is returned by ParseIsolationLevel for unsupported names.
var ErrUnknownIsolationLevel = errors.New("unknown isolation level")

// Store is the PostgreSQL implementation of ledger.Store.
type Store struct {
	db               adapters.DBAdapter
	tables           tableNames
	isolation        IsolationLevel
	logger           ledger.Logger
	metricsCollector ledger.MetricsCollector
	tracingCollector ledger.TracingCollector
	contextualLogger ledger.ContextualLogger
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ledger.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromPGXPoolAndReplica creates a new Store that sends eventually consistent reads to the replica pool.
func NewStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, ledger.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ledger.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLDBAndReplica creates a new Store using sql.DB handles for primary and replica.
func NewStoreFromSQLDBAndReplica(db *sql.DB, replica *sql.DB, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, ledger.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ledger.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{
		db: db,
		tables: tableNames{
			parties:    defaultPartiesTableName,
			agreements: defaultAgreementsTableName,
			workUnits:  defaultWorkUnitsTableName,
		},
		isolation: RepeatableRead,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindParty returns a party by id or ledger.ErrRowNotFound.
func (s *Store) FindParty(ctx context.Context, partyID core.PartyID) (core.Party, error) {
	observer, ctx := s.observe(ctx, operationFindParty)

	parties, err := queryAll(ctx, s, s.db, operationFindParty, scanParty, func() (sqlQueryString, sqlArgs, error) {
		return s.buildFindPartyQuery(partyID)
	})
	if err != nil {
		observer.failure(err)
		return core.Party{}, err
	}

	if len(parties) == 0 {
		observer.failure(ledger.ErrRowNotFound)
		return core.Party{}, ledger.ErrRowNotFound
	}

	observer.success(1)

	return parties[0], nil
}

// ListAgreements returns the non-terminated agreements the party participates in.
func (s *Store) ListAgreements(ctx context.Context, partyID core.PartyID) ([]core.Agreement, error) {
	observer, ctx := s.observe(ctx, operationListAgreements)

	agreements, err := queryAll(ctx, s, s.db, operationListAgreements, scanAgreement, func() (sqlQueryString, sqlArgs, error) {
		return s.buildListAgreementsQuery(partyID)
	})
	if err != nil {
		observer.failure(err)
		return nil, err
	}

	observer.success(len(agreements))

	return agreements, nil
}

// FindAgreement returns the agreement with its work units if the party participates in it.
func (s *Store) FindAgreement(
	ctx context.Context,
	agreementID core.AgreementID,
	partyID core.PartyID,
) (core.AgreementWithWorkUnits, error) {

	observer, ctx := s.observe(ctx, operationFindAgreement)

	rows, err := queryAll(ctx, s, s.db, operationFindAgreement, scanAgreementWithOptionalWorkUnit, func() (sqlQueryString, sqlArgs, error) {
		return s.buildFindAgreementQuery(agreementID, partyID)
	})
	if err != nil {
		observer.failure(err)
		return core.AgreementWithWorkUnits{}, err
	}

	if len(rows) == 0 {
		observer.failure(ledger.ErrRowNotFound)
		return core.AgreementWithWorkUnits{}, ledger.ErrRowNotFound
	}

	result := core.AgreementWithWorkUnits{Agreement: rows[0].agreement, WorkUnits: make([]core.WorkUnit, 0, len(rows))}
	for _, row := range rows {
		if row.workUnit != nil {
			result.WorkUnits = append(result.WorkUnits, *row.workUnit)
		}
	}

	observer.success(len(rows))

	return result, nil
}

// ListUnpaidWorkUnits returns unpaid work units under in_progress agreements of the party.
func (s *Store) ListUnpaidWorkUnits(ctx context.Context, partyID core.PartyID) ([]core.WorkUnit, error) {
	observer, ctx := s.observe(ctx, operationListUnpaid)

	workUnits, err := queryAll(ctx, s, s.db, operationListUnpaid, scanWorkUnit, func() (sqlQueryString, sqlArgs, error) {
		return s.buildListUnpaidWorkUnitsQuery(partyID)
	})
	if err != nil {
		observer.failure(err)
		return nil, err
	}

	observer.success(len(workUnits))

	return workUnits, nil
}

// ProfessionEarnings sums work unit prices of in_progress agreements created within the window per payee profession.
func (s *Store) ProfessionEarnings(ctx context.Context, window core.TimeWindow) ([]core.ProfessionEarnings, error) {
	observer, ctx := s.observe(ctx, operationProfessionTotals)

	earnings, err := queryAll(ctx, s, s.db, operationProfessionTotals, scanProfessionEarnings, func() (sqlQueryString, sqlArgs, error) {
		return s.buildProfessionEarningsQuery(window)
	})
	if err != nil {
		observer.failure(err)
		return nil, err
	}

	observer.success(len(earnings))

	return earnings, nil
}

// ClientPayments sums paid work unit prices created within the window per payer.
func (s *Store) ClientPayments(ctx context.Context, window core.TimeWindow, limit int) ([]core.ClientTotal, error) {
	observer, ctx := s.observe(ctx, operationClientPayments)

	totals, err := queryAll(ctx, s, s.db, operationClientPayments, scanClientTotal, func() (sqlQueryString, sqlArgs, error) {
		return s.buildClientPaymentsQuery(window, limit)
	})
	if err != nil {
		observer.failure(err)
		return nil, err
	}

	observer.success(len(totals))

	return totals, nil
}

// queryAll builds, executes and scans a query. It is a function because Go methods cannot have type parameters.
func queryAll[T any](
	ctx context.Context,
	s *Store,
	querier adapters.Querier,
	operation string,
	scan func(adapters.DBRows) (T, error),
	build func() (sqlQueryString, sqlArgs, error),
) ([]T, error) {

	sqlQuery, args, buildErr := build()
	if buildErr != nil {
		s.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrOperation, operation)
		return nil, buildErr
	}

	start := time.Now()
	rows, queryErr := querier.Query(ctx, sqlQuery, args...)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, logActionQuery, duration)

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(ledger.ErrQueryingFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	results := make([]T, 0)
	for rows.Next() {
		result, scanErr := scan(rows)
		if scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr, logAttrOperation, operation)
			return nil, errors.Join(ledger.ErrScanningDBRowFailed, scanErr)
		}

		results = append(results, result)
	}

	if iterErr := rows.Err(); iterErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, iterErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(ledger.ErrQueryingFailed, iterErr)
	}

	s.logOperation(ctx, logMsgQueryCompleted,
		logAttrOperation, operation,
		logAttrRowCount, len(results),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return results, nil
}

// exec builds and executes a statement and returns the number of affected rows.
func exec(
	ctx context.Context,
	s *Store,
	querier adapters.Querier,
	build func() (sqlQueryString, sqlArgs, error),
) (int64, error) {

	sqlQuery, args, buildErr := build()
	if buildErr != nil {
		s.logError(ctx, logMsgBuildQueryFailed, buildErr)
		return 0, buildErr
	}

	start := time.Now()
	result, execErr := querier.Exec(ctx, sqlQuery, args...)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, logActionExec, duration)

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return 0, errors.Join(ledger.ErrExecutingFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		s.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		return 0, errors.Join(ledger.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func isolationName(level IsolationLevel) string {
	switch level {
	case Serializable:
		return isolationNameSerializable
	case ReadCommitted:
		return isolationNameReadCommitted
	default:
		return isolationNameRepeatable
	}
}
