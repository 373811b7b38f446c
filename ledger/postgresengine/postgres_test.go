package postgresengine_test

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger/postgresengine"
	"github.com/AntonStoeckl/agreement-ledger-go/testutil/helper"
)

var _ ledger.Store = (*postgresengine.Store)(nil)

var (
	partyColumns     = []string{"id", "first_name", "last_name", "profession", "balance", "type", "created_at", "updated_at"}
	agreementColumns = []string{"id", "terms", "status", "payer_id", "payee_id", "created_at", "updated_at"}
	workUnitColumns  = []string{"id", "agreement_id", "description", "price", "paid", "payment_date", "created_at", "updated_at"}
	createdAt        = time.Date(2020, 8, 10, 9, 0, 0, 0, time.UTC)
)

func givenStore(t *testing.T, options ...postgresengine.Option) (*postgresengine.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := postgresengine.NewStoreFromSQLDB(db, options...)
	require.NoError(t, err)

	return store, mock
}

func partyRow(id int64, balance string, partyType core.PartyType) *sqlmock.Rows {
	return sqlmock.NewRows(partyColumns).
		AddRow(id, "Harry", "Potter", "Wizard", balance, string(partyType), createdAt, createdAt)
}

func lockedWorkUnitRow() *sqlmock.Rows {
	columns := append(append([]string{}, workUnitColumns...), agreementColumns...)

	return sqlmock.NewRows(columns).AddRow(
		int64(7), int64(2), "work", "200.00", nil, nil, createdAt, createdAt,
		int64(2), "terms", "in_progress", int64(1), int64(6), createdAt, createdAt,
	)
}

func Test_NewStoreFromSQLDB_ReturnsError_WhenDBIsNil(t *testing.T) {
	// act
	store, err := postgresengine.NewStoreFromSQLDB(nil)

	// assert
	assert.Nil(t, store)
	assert.ErrorIs(t, err, ledger.ErrNilDatabaseConnection)
}

func Test_NewStoreFromPGXPool_ReturnsError_WhenPoolIsNil(t *testing.T) {
	// act
	store, err := postgresengine.NewStoreFromPGXPool(nil)

	// assert
	assert.Nil(t, store)
	assert.ErrorIs(t, err, ledger.ErrNilDatabaseConnection)
}

func Test_WithTableNames_ReturnsError_WhenANameIsEmpty(t *testing.T) {
	// arrange
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	// act
	_, err = postgresengine.NewStoreFromSQLDB(db, postgresengine.WithTableNames("parties", "", "work_units"))

	// assert
	assert.ErrorIs(t, err, ledger.ErrEmptyTableNameSupplied)
}

func Test_ParseIsolationLevel(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected postgresengine.IsolationLevel
		err      error
	}{
		{name: "read committed", input: "read_committed", expected: postgresengine.ReadCommitted},
		{name: "repeatable read", input: "repeatable_read", expected: postgresengine.RepeatableRead},
		{name: "serializable", input: "serializable", expected: postgresengine.Serializable},
		{name: "empty defaults to repeatable read", input: "", expected: postgresengine.RepeatableRead},
		{name: "unknown", input: "snapshot", expected: postgresengine.RepeatableRead, err: postgresengine.ErrUnknownIsolationLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			level, err := postgresengine.ParseIsolationLevel(tc.input)

			assert.Equal(t, tc.expected, level)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func Test_FindParty_ScansAllColumns(t *testing.T) {
	// arrange
	store, mock := givenStore(t)
	mock.ExpectQuery(`SELECT (.+) FROM "parties" AS "p"`).
		WillReturnRows(partyRow(1, "1150.00", core.PartyTypeClient))

	// act
	party, err := store.FindParty(context.Background(), 1)

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.PartyID(1), party.ID)
	assert.Equal(t, "Harry Potter", party.FullName())
	assert.True(t, party.IsClient())
	assert.True(t, core.MustParseMoney("1150").Equal(party.Balance))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_FindParty_ReturnsRowNotFound_WhenNoRowMatches(t *testing.T) {
	// arrange
	store, mock := givenStore(t)
	mock.ExpectQuery(`SELECT (.+) FROM "parties"`).WillReturnRows(sqlmock.NewRows(partyColumns))

	// act
	_, err := store.FindParty(context.Background(), 99)

	// assert
	assert.ErrorIs(t, err, ledger.ErrRowNotFound)
}

func Test_FindParty_WrapsDriverErrors_AsQueryingFailed(t *testing.T) {
	// arrange
	driverErr := errors.New("connection reset by peer")
	store, mock := givenStore(t)
	mock.ExpectQuery(`SELECT (.+) FROM "parties"`).WillReturnError(driverErr)

	// act
	_, err := store.FindParty(context.Background(), 1)

	// assert
	assert.ErrorIs(t, err, ledger.ErrQueryingFailed)
	assert.ErrorIs(t, err, driverErr)
	assert.True(t, ledger.IsStoreFailure(err))
}

func Test_FindAgreement_CollectsWorkUnits_FromJoinedRows(t *testing.T) {
	// arrange
	store, mock := givenStore(t)
	paidAt := time.Date(2020, 8, 15, 19, 11, 26, 0, time.UTC)
	columns := append(append([]string{}, agreementColumns...), workUnitColumns...)
	rows := sqlmock.NewRows(columns).
		AddRow(int64(2), "terms", "in_progress", int64(1), int64(6), createdAt, createdAt,
			int64(2), int64(2), "work", "201.00", nil, nil, createdAt, createdAt).
		AddRow(int64(2), "terms", "in_progress", int64(1), int64(6), createdAt, createdAt,
			int64(7), int64(2), "work", "200.00", true, paidAt, createdAt, createdAt)
	mock.ExpectQuery(`SELECT (.+) FROM "agreements" AS "a" LEFT JOIN "work_units" AS "w"`).WillReturnRows(rows)

	// act
	agreement, err := store.FindAgreement(context.Background(), 2, 1)

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.AgreementStatusInProgress, agreement.Status)
	require.Len(t, agreement.WorkUnits, 2)
	assert.False(t, agreement.WorkUnits[0].IsPaid())
	assert.Nil(t, agreement.WorkUnits[0].PaymentDate)
	assert.True(t, agreement.WorkUnits[1].IsPaid())
	require.NotNil(t, agreement.WorkUnits[1].PaymentDate)
	assert.Equal(t, paidAt, *agreement.WorkUnits[1].PaymentDate)
}

func Test_FindAgreement_ReturnsEmptyWorkUnits_WhenTheAgreementHasNone(t *testing.T) {
	// arrange
	store, mock := givenStore(t)
	columns := append(append([]string{}, agreementColumns...), workUnitColumns...)
	rows := sqlmock.NewRows(columns).
		AddRow(int64(5), "terms", "new", int64(3), int64(8), createdAt, createdAt,
			nil, nil, nil, nil, nil, nil, nil, nil)
	mock.ExpectQuery(`LEFT JOIN "work_units"`).WillReturnRows(rows)

	// act
	agreement, err := store.FindAgreement(context.Background(), 5, 3)

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.AgreementID(5), agreement.ID)
	assert.Empty(t, agreement.WorkUnits)
}

func Test_ClientPayments_ScansTotals(t *testing.T) {
	// arrange
	store, mock := givenStore(t)
	window, err := core.NewTimeWindow(createdAt.Add(-time.Hour), createdAt.Add(time.Hour))
	require.NoError(t, err)
	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "total"}).
		AddRow(int64(4), "Ash", "Kethcum", "2020.00").
		AddRow(int64(1), "Harry", "Potter", "442.00")
	mock.ExpectQuery(`SUM\("w"."price"\) AS "total" FROM "work_units"`).WillReturnRows(rows)

	// act
	totals, err := store.ClientPayments(context.Background(), window, 2)

	// assert
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "Ash", totals[0].FirstName)
	assert.Equal(t, "Kethcum", totals[0].LastName)
	assert.True(t, core.MustParseMoney("2020").Equal(totals[0].TotalPaid))
}

func Test_WithinTx_Commits_WhenTheBodySucceeds(t *testing.T) {
	// arrange
	store, mock := givenStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM "work_units" AS "w" INNER JOIN "agreements" AS "a" (.+) FOR UPDATE`).
		WillReturnRows(lockedWorkUnitRow())
	mock.ExpectQuery(`FROM "parties" AS "p" (.+) ORDER BY "p"."id" ASC FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(partyColumns).
			AddRow(int64(1), "Harry", "Potter", "Wizard", "1150.00", "client", createdAt, createdAt).
			AddRow(int64(6), "Linus", "Torvalds", "Programmer", "1214.00", "contractor", createdAt, createdAt))
	mock.ExpectExec(`UPDATE "parties"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "parties"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "work_units"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// act
	err := store.WithinTx(context.Background(), func(ctx context.Context, tx ledger.Tx) error {
		workUnit, agreement, err := tx.LockWorkUnit(ctx, 7)
		if err != nil {
			return err
		}

		parties, err := tx.LockParties(ctx, agreement.PayerID, agreement.PayeeID)
		if err != nil {
			return err
		}

		payer, payee := parties[agreement.PayerID], parties[agreement.PayeeID]
		if err = tx.UpdateBalance(ctx, payer.ID, payer.Balance, payer.Balance.Sub(workUnit.Price)); err != nil {
			return err
		}

		if err = tx.UpdateBalance(ctx, payee.ID, payee.Balance, payee.Balance.Add(workUnit.Price)); err != nil {
			return err
		}

		return tx.MarkWorkUnitPaid(ctx, workUnit.ID, time.Now())
	})

	// assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_WithinTx_RollsBack_AndReportsConflict_WhenTheBalanceChanged(t *testing.T) {
	// arrange
	store, mock := givenStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "parties" SET (.+) WHERE`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	// act
	err := store.WithinTx(context.Background(), func(ctx context.Context, tx ledger.Tx) error {
		return tx.UpdateBalance(ctx, 1, core.MustParseMoney("100"), core.MustParseMoney("50"))
	})

	// assert
	assert.ErrorIs(t, err, ledger.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_WithinTx_ReportsConflict_WhenTheWorkUnitWasPaidConcurrently(t *testing.T) {
	// arrange
	store, mock := givenStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "work_units"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	// act
	err := store.WithinTx(context.Background(), func(ctx context.Context, tx ledger.Tx) error {
		return tx.MarkWorkUnitPaid(ctx, 7, time.Now())
	})

	// assert
	assert.ErrorIs(t, err, ledger.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_WithinTx_ClassifiesSerializationFailures_AsConflicts(t *testing.T) {
	testCases := []struct {
		name      string
		driverErr error
	}{
		{name: "lib/pq serialization failure", driverErr: &pq.Error{Code: "40001"}},
		{name: "pgx deadlock detected", driverErr: &pgconn.PgError{Code: "40P01"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			store, mock := givenStore(t)
			mock.ExpectBegin()
			mock.ExpectQuery(`FOR UPDATE`).WillReturnError(tc.driverErr)
			mock.ExpectRollback()

			// act
			err := store.WithinTx(context.Background(), func(ctx context.Context, tx ledger.Tx) error {
				_, _, err := tx.LockWorkUnit(ctx, 7)
				return err
			})

			// assert
			assert.ErrorIs(t, err, ledger.ErrConcurrencyConflict)
			assert.ErrorIs(t, err, ledger.ErrQueryingFailed)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func Test_WithinTx_PassesBusinessErrorsThrough_AfterRollingBack(t *testing.T) {
	// arrange
	store, mock := givenStore(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	// act
	err := store.WithinTx(context.Background(), func(context.Context, ledger.Tx) error {
		return core.ErrInsufficientFunds
	})

	// assert
	assert.ErrorIs(t, err, core.ErrInsufficientFunds)
	assert.NotErrorIs(t, err, ledger.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_WithinTx_ReturnsBeginTxFailed_WhenTheTransactionCannotStart(t *testing.T) {
	// arrange
	store, mock := givenStore(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	// act
	err := store.WithinTx(context.Background(), func(context.Context, ledger.Tx) error {
		return nil
	})

	// assert
	assert.ErrorIs(t, err, ledger.ErrBeginTxFailed)
}

func Test_LockParties_RefusesASecondCall_WithinOneTransaction(t *testing.T) {
	// arrange
	store, mock := givenStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM "parties"`).WillReturnRows(partyRow(1, "10.00", core.PartyTypeClient))
	mock.ExpectRollback()

	// act
	err := store.WithinTx(context.Background(), func(ctx context.Context, tx ledger.Tx) error {
		if _, err := tx.LockParties(ctx, 1); err != nil {
			return err
		}

		_, err := tx.LockParties(ctx, 6)

		return err
	})

	// assert
	assert.ErrorIs(t, err, postgresengine.ErrPartiesAlreadyLocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_UnpaidLiability_ReturnsTheSum(t *testing.T) {
	// arrange
	store, mock := givenStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`COALESCE\(SUM\("w"."price"\), (.+)\) AS "total"`).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("401.00"))
	mock.ExpectCommit()

	var liability core.Money

	// act
	err := store.WithinTx(context.Background(), func(ctx context.Context, tx ledger.Tx) error {
		var err error
		liability, err = tx.UnpaidLiability(ctx, 1)
		return err
	})

	// assert
	require.NoError(t, err)
	assert.True(t, core.MustParseMoney("401").Equal(liability))
}

func Test_CreateParty_ReturnsTheAssignedIdentity(t *testing.T) {
	// arrange
	store, mock := givenStore(t)
	mock.ExpectQuery(`INSERT INTO "parties" (.+) RETURNING "id", "created_at", "updated_at"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), createdAt, createdAt))

	// act
	party, err := store.CreateParty(context.Background(), core.Party{
		FirstName: "Alan",
		LastName:  "Turing",
		Balance:   core.MustParseMoney("22"),
		Type:      core.PartyTypeContractor,
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.PartyID(42), party.ID)
	assert.Equal(t, createdAt, party.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_CreateWorkUnit_RejectsInvalidRecords_WithoutTouchingTheDatabase(t *testing.T) {
	// arrange
	store, mock := givenStore(t)

	// act
	_, err := store.CreateWorkUnit(context.Background(), core.WorkUnit{AgreementID: 1, Price: core.MustParseMoney("0")})

	// assert
	assert.ErrorIs(t, err, ledger.ErrInvalidRecord)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_Store_RecordsMetrics_ForSuccessAndFailure(t *testing.T) {
	// arrange
	metrics := helper.NewMetricsCollectorSpy()
	store, mock := givenStore(t, postgresengine.WithMetrics(metrics))
	mock.ExpectQuery(`FROM "parties"`).WillReturnRows(partyRow(1, "1150.00", core.PartyTypeClient))
	mock.ExpectQuery(`FROM "parties"`).WillReturnError(sql.ErrConnDone)

	// act
	_, _ = store.FindParty(context.Background(), 1)
	_, _ = store.FindParty(context.Background(), 1)

	// assert
	assert.True(t, metrics.HasDurationRecordForMetric("ledger_store_operation_duration_seconds").
		WithOperation("find_party").
		WithStatus("success").
		Assert())
	assert.True(t, metrics.HasValueRecordForMetric("ledger_store_rows_returned").
		WithOperation("find_party").
		Assert())
	assert.True(t, metrics.HasCounterRecordForMetric("ledger_store_database_errors_total").
		WithOperation("find_party").
		WithLabel("error_type", "query").
		Assert())
}

func Test_Store_CountsConcurrencyConflicts(t *testing.T) {
	// arrange
	metrics := helper.NewMetricsCollectorSpy()
	store, mock := givenStore(t, postgresengine.WithMetrics(metrics))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "parties"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	// act
	_ = store.WithinTx(context.Background(), func(ctx context.Context, tx ledger.Tx) error {
		return tx.UpdateBalance(ctx, 1, core.MustParseMoney("1"), core.MustParseMoney("2"))
	})

	// assert
	assert.True(t, metrics.HasCounterRecordForMetric("ledger_store_concurrency_conflicts_total").
		WithOperation("update_balance").
		Assert())
	assert.True(t, metrics.HasDurationRecordForMetric("ledger_store_operation_duration_seconds").
		WithOperation("transaction").
		WithStatus("concurrency_conflict").
		Assert())
}

func Test_Store_RecordsASpanPerOperation(t *testing.T) {
	// arrange
	tracing := helper.NewTracingCollectorSpy()
	store, mock := givenStore(t, postgresengine.WithTracing(tracing))
	mock.ExpectQuery(`FROM "agreements"`).WillReturnRows(sqlmock.NewRows(agreementColumns))

	// act
	_, err := store.ListAgreements(ledger.WithEventualConsistency(context.Background()), 1)

	// assert
	require.NoError(t, err)
	span, found := tracing.FindSpan("ledger.list_agreements")
	require.True(t, found)
	assert.Equal(t, "success", span.Status)
	assert.Equal(t, "eventual", span.StartAttributes["consistency"])
	assert.Equal(t, "0", span.EndAttributes["row_count"])
}

func Test_Store_LogsThroughBothLoggers(t *testing.T) {
	// arrange
	plain := helper.NewLogHandlerSpy(false)
	contextual := helper.NewLogHandlerSpy(false)
	store, mock := givenStore(t,
		postgresengine.WithLogger(slog.New(plain)),
		postgresengine.WithContextualLogger(slog.New(contextual)),
	)
	mock.ExpectQuery(`FROM "work_units"`).WillReturnRows(sqlmock.NewRows(workUnitColumns))

	// act
	_, err := store.ListUnpaidWorkUnits(context.Background(), 1)

	// assert
	require.NoError(t, err)
	assert.True(t, plain.HasLog(slog.LevelInfo, "ledger operation: query completed"))
	assert.True(t, contextual.HasLog(slog.LevelDebug, "executed sql for: query"))
}
