package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/agreement-ledger-go/core"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
)

const (
	metricOperationDuration    = "ledger_store_operation_duration_seconds"
	metricRowsReturned         = "ledger_store_rows_returned"
	metricDatabaseErrors       = "ledger_store_database_errors_total"
	metricConcurrencyConflicts = "ledger_store_concurrency_conflicts_total"
	spanNamePrefix             = "ledger."
	spanAttrOperation          = "operation"
	spanAttrConsistency        = "consistency"
	spanAttrErrorType          = "error_type"
	spanAttrRowCount           = "row_count"
	spanAttrDurationMS         = "duration_ms"
	labelStatus                = "status"
	labelConflictType          = "conflict_type"
	statusSuccess              = "success"
	statusError                = "error"
	statusNotFound             = "not_found"
	statusConcurrencyConflict  = "concurrency_conflict"
	statusRolledBack           = "rolled_back"
	errorTypeBuildQuery        = "build_query"
	errorTypeQuery             = "query"
	errorTypeScan              = "scan"
	errorTypeExec              = "exec"
	errorTypeRowsAffected      = "rows_affected"
	errorTypeBeginTx           = "begin_tx"
	errorTypeCommit            = "commit"
	errorTypeCanceled          = "context_canceled"
	errorTypeTimeout           = "context_deadline_exceeded"
	errorTypeOther             = "other"
)

// operationObserver bundles tracing, metrics and timing of one store operation.
type operationObserver struct {
	s         *Store
	ctx       context.Context
	operation string
	span      ledger.SpanContext
	start     time.Time
}

// observe starts a span (if tracing is configured) and the timer for an operation.
func (s *Store) observe(ctx context.Context, operation string) (*operationObserver, context.Context) {
	newCtx, span := s.startTraceSpan(ctx, operation, map[string]string{
		spanAttrOperation:   operation,
		spanAttrConsistency: ledger.GetConsistencyLevel(ctx).String(),
	})

	return &operationObserver{
		s:         s,
		ctx:       newCtx,
		operation: operation,
		span:      span,
		start:     time.Now(),
	}, newCtx
}

// success records the duration and the returned row count and closes the span.
func (o *operationObserver) success(rowCount int) {
	duration := time.Since(o.start)

	o.s.recordDurationMetricsContext(o.ctx, duration, o.operation, statusSuccess)
	o.s.recordValueMetricsContext(o.ctx, metricRowsReturned, float64(rowCount), o.operation, statusSuccess)

	if o.span != nil {
		o.span.SetStatus(statusSuccess)
		o.span.AddAttribute(spanAttrRowCount, fmt.Sprintf("%d", rowCount))
		o.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", toMilliseconds(duration)))
	}

	o.s.finishTraceSpan(o.span, statusSuccess, map[string]string{
		spanAttrRowCount: fmt.Sprintf("%d", rowCount),
	})
}

// failure records conflicts, misses and database errors separately and closes the span.
func (o *operationObserver) failure(err error) {
	duration := time.Since(o.start)

	switch {
	case errors.Is(err, ledger.ErrConcurrencyConflict):
		o.s.recordDurationMetricsContext(o.ctx, duration, o.operation, statusConcurrencyConflict)
		o.s.recordConcurrencyConflictMetricsContext(o.ctx, o.operation)
		o.finishSpan(statusConcurrencyConflict, statusConcurrencyConflict, duration)

	case errors.Is(err, ledger.ErrRowNotFound):
		o.s.recordDurationMetricsContext(o.ctx, duration, o.operation, statusNotFound)
		o.finishSpan(statusNotFound, statusNotFound, duration)

	case core.IsBusinessError(err):
		o.s.recordDurationMetricsContext(o.ctx, duration, o.operation, statusRolledBack)
		o.finishSpan(statusRolledBack, statusRolledBack, duration)

	default:
		errorType := errorTypeOf(err)
		o.s.recordDurationMetricsContext(o.ctx, duration, o.operation, statusError)
		o.s.recordErrorMetricsContext(o.ctx, o.operation, errorType)
		o.finishSpan(statusError, errorType, duration)
	}
}

func (o *operationObserver) finishSpan(status, errorType string, duration time.Duration) {
	if o.span != nil {
		o.span.SetStatus(status)
		o.span.AddAttribute(spanAttrErrorType, errorType)
		o.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", toMilliseconds(duration)))
	}

	o.s.finishTraceSpan(o.span, status, map[string]string{spanAttrErrorType: errorType})
}

// errorTypeOf maps store errors to low-cardinality metric labels.
func errorTypeOf(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return errorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeTimeout
	case errors.Is(err, ledger.ErrBuildingQueryFailed):
		return errorTypeBuildQuery
	case errors.Is(err, ledger.ErrScanningDBRowFailed):
		return errorTypeScan
	case errors.Is(err, ledger.ErrQueryingFailed):
		return errorTypeQuery
	case errors.Is(err, ledger.ErrExecutingFailed):
		return errorTypeExec
	case errors.Is(err, ledger.ErrGettingRowsAffectedFailed):
		return errorTypeRowsAffected
	case errors.Is(err, ledger.ErrBeginTxFailed):
		return errorTypeBeginTx
	case errors.Is(err, ledger.ErrCommitTxFailed):
		return errorTypeCommit
	default:
		return errorTypeOther
	}
}

// recordErrorMetricsContext records error metrics with context if the collector supports it.
func (s *Store) recordErrorMetricsContext(ctx context.Context, operation, errorType string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       statusError,
		spanAttrErrorType: errorType,
	}

	if contextualCollector, ok := s.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
	} else {
		s.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
	}
}

// recordDurationMetricsContext records duration metrics with context if the collector supports it.
func (s *Store) recordDurationMetricsContext(
	ctx context.Context,
	duration time.Duration,
	operation, status string,
) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       status,
	}

	if contextualCollector, ok := s.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricOperationDuration, duration, labels)
	} else {
		s.metricsCollector.RecordDuration(metricOperationDuration, duration, labels)
	}
}

// recordValueMetricsContext records value metrics with context if the collector supports it.
func (s *Store) recordValueMetricsContext(
	ctx context.Context,
	metricName string,
	value float64,
	operation,
	status string,
) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       status,
	}

	if contextualCollector, ok := s.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricName, value, labels)
	} else {
		s.metricsCollector.RecordValue(metricName, value, labels)
	}
}

// recordConcurrencyConflictMetricsContext records concurrency conflicts if the metrics collector is configured.
func (s *Store) recordConcurrencyConflictMetricsContext(ctx context.Context, operation string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelConflictType: "concurrency",
	}

	if contextualCollector, ok := s.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricConcurrencyConflicts, labels)
	} else {
		s.metricsCollector.IncrementCounter(metricConcurrencyConflicts, labels)
	}
}

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (s *Store) startTraceSpan(
	ctx context.Context,
	operation string,
	attrs map[string]string,
) (context.Context, ledger.SpanContext) {
	if s.tracingCollector != nil {
		return s.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, attrs)
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (s *Store) finishTraceSpan(
	spanCtx ledger.SpanContext,
	status string,
	attrs map[string]string,
) {
	if s.tracingCollector != nil && spanCtx != nil {
		s.tracingCollector.FinishSpan(spanCtx, status, attrs)
	}
}

// === Logging ===
// Plain and contextual loggers are independent, a Store may have one, both or none.

// logQueryWithDuration logs SQL queries with execution time at debug level.
func (s *Store) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level.
func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical issues at warn level.
func (s *Store) logWarn(ctx context.Context, message string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(message, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, args...)
	}
}

// logError logs error information at the error level.
func (s *Store) logError(
	ctx context.Context,
	message string,
	err error,
	args ...any,
) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
