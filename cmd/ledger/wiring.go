package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AntonStoeckl/agreement-ledger-go/demodata"
	"github.com/AntonStoeckl/agreement-ledger-go/features/command/depositfunds"
	"github.com/AntonStoeckl/agreement-ledger-go/features/command/paywork"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/bestclients"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/bestprofession"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/getagreement"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/listagreements"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/unpaidworkunits"
	"github.com/AntonStoeckl/agreement-ledger-go/httpapi"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger/memoryengine"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger/oteladapters"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger/postgresengine"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger/promadapters"
	"github.com/AntonStoeckl/agreement-ledger-go/shared/shell"
	"github.com/AntonStoeckl/agreement-ledger-go/shared/shell/config"
	"github.com/AntonStoeckl/agreement-ledger-go/shared/shell/observable"
)

// observability holds the collectors shared by the store and the handler wrappers.
type observability struct {
	logger     *slog.Logger
	contextual ledger.ContextualLogger
	metrics    ledger.MetricsCollector
	prometheus *promadapters.MetricsCollector
	tracing    ledger.TracingCollector
	shutdown   func(context.Context) error
}

func newObservability(out io.Writer, cfg config.Config) observability {
	logger := config.NewLogger(out, cfg.Log)
	obs := observability{
		logger:   logger,
		shutdown: func(context.Context) error { return nil },
	}

	if cfg.Telemetry.PrometheusEnabled {
		obs.prometheus = promadapters.NewMetricsCollector(nil)
		obs.metrics = obs.prometheus
	} else {
		obs.metrics = oteladapters.NewMetricsCollector(otel.GetMeterProvider().Meter(cfg.Telemetry.ServiceName))
	}

	if cfg.Telemetry.TracingEnabled {
		provider := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(provider)
		obs.tracing = oteladapters.NewTracingCollector(provider.Tracer(cfg.Telemetry.ServiceName))
		obs.contextual = oteladapters.NewSlogBridgeLoggerWithHandler(logger.Handler())
		obs.shutdown = provider.Shutdown
	}

	return obs
}

// openStore connects the configured engine. In memory mode the demo dataset is loaded.
func openStore(ctx context.Context, cfg config.Config, memory bool, obs observability) (ledger.Store, func(), error) {
	if memory {
		store := memoryengine.NewStore(memoryengine.WithLogger(obs.logger))
		if _, err := demodata.Load(ctx, store); err != nil {
			return nil, nil, err
		}

		return store, func() {}, nil
	}

	isolation, err := postgresengine.ParseIsolationLevel(cfg.Postgres.Isolation)
	if err != nil {
		return nil, nil, err
	}

	options := []postgresengine.Option{
		postgresengine.WithIsolationLevel(isolation),
		postgresengine.WithMetrics(obs.metrics),
	}

	if obs.tracing != nil {
		options = append(options,
			postgresengine.WithTracing(obs.tracing),
			postgresengine.WithContextualLogger(obs.contextual),
		)
	} else {
		options = append(options, postgresengine.WithLogger(obs.logger))
	}

	switch cfg.Postgres.Driver {
	case config.DriverSQL:
		return openSQLStore(ctx, cfg.Postgres, options)
	case config.DriverSQLX:
		db, err := config.NewPostgresSQLX(ctx, cfg.Postgres.DSN, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}

		store, err := postgresengine.NewStoreFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return store, func() { _ = db.Close() }, nil
	default:
		return openPGXStore(ctx, cfg.Postgres, options)
	}
}

func openPGXStore(ctx context.Context, cfg config.PostgresConfig, options []postgresengine.Option) (ledger.Store, func(), error) {
	primary, err := config.NewPGXPool(ctx, cfg.DSN, cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.ReplicaDSN == "" {
		store, err := postgresengine.NewStoreFromPGXPool(primary, options...)
		if err != nil {
			primary.Close()
			return nil, nil, err
		}

		return store, primary.Close, nil
	}

	replica, err := config.NewPGXPool(ctx, cfg.ReplicaDSN, cfg)
	if err != nil {
		primary.Close()
		return nil, nil, err
	}

	store, err := postgresengine.NewStoreFromPGXPoolAndReplica(primary, replica, options...)
	if err != nil {
		primary.Close()
		replica.Close()
		return nil, nil, err
	}

	return store, func() { primary.Close(); replica.Close() }, nil
}

func openSQLStore(ctx context.Context, cfg config.PostgresConfig, options []postgresengine.Option) (ledger.Store, func(), error) {
	primary, err := config.NewPostgresSQLDB(ctx, cfg.DSN, cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.ReplicaDSN == "" {
		store, err := postgresengine.NewStoreFromSQLDB(primary, options...)
		if err != nil {
			_ = primary.Close()
			return nil, nil, err
		}

		return store, func() { _ = primary.Close() }, nil
	}

	replica, err := config.NewPostgresSQLDB(ctx, cfg.ReplicaDSN, cfg)
	if err != nil {
		_ = primary.Close()
		return nil, nil, err
	}

	store, err := postgresengine.NewStoreFromSQLDBAndReplica(primary, replica, options...)
	if err != nil {
		_ = primary.Close()
		_ = replica.Close()
		return nil, nil, err
	}

	return store, func() { _ = primary.Close(); _ = replica.Close() }, nil
}

// buildHandlers wraps every feature handler with logging, metrics and tracing.
func buildHandlers(store ledger.Store, cfg config.Config, obs observability) (httpapi.Handlers, error) {
	payWork, err := wrapCommand[paywork.Command](
		paywork.NewCommandHandler(store, paywork.WithRetryOptions(
			retryOptions(cfg, obs, paywork.Command{}.CommandType())...,
		)), obs)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	depositFunds, err := wrapCommand[depositfunds.Command](
		depositfunds.NewCommandHandler(store, depositfunds.WithRetryOptions(
			retryOptions(cfg, obs, depositfunds.Command{}.CommandType())...,
		)), obs)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	bestProfession, err := wrapQuery[bestprofession.Query, bestprofession.BestProfession](bestprofession.NewQueryHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	bestClients, err := wrapQuery[bestclients.Query, bestclients.BestClients](bestclients.NewQueryHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	listAgreements, err := wrapQuery[listagreements.Query, listagreements.Agreements](listagreements.NewQueryHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	getAgreement, err := wrapQuery[getagreement.Query, getagreement.AgreementDetails](getagreement.NewQueryHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	unpaidWorkUnits, err := wrapQuery[unpaidworkunits.Query, unpaidworkunits.UnpaidWorkUnits](unpaidworkunits.NewQueryHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	return httpapi.Handlers{
		PayWork:         payWork,
		DepositFunds:    depositFunds,
		BestProfession:  bestProfession,
		BestClients:     bestClients,
		ListAgreements:  listAgreements,
		GetAgreement:    getAgreement,
		UnpaidWorkUnits: unpaidWorkUnits,
	}, nil
}

func retryOptions(cfg config.Config, obs observability, commandType string) []shell.RetryOption {
	return append(cfg.Retry.RetryOptions(), shell.WithMetrics(obs.metrics, commandType))
}

// wrapCommand logs through the contextual logger when tracing is on, otherwise through the plain one.
func wrapCommand[C shell.Command](handler shell.CommandHandler[C], obs observability) (shell.CommandHandler[C], error) {
	options := []observable.CommandOption[C]{observable.WithCommandMetrics[C](obs.metrics)}

	if obs.tracing != nil {
		options = append(options,
			observable.WithCommandTracing[C](obs.tracing),
			observable.WithCommandContextualLogging[C](obs.contextual),
		)
	} else {
		options = append(options, observable.WithCommandLogging[C](obs.logger))
	}

	wrapper, err := observable.NewCommandWrapper(handler, options...)
	if err != nil {
		return nil, fmt.Errorf("wrapping command handler: %w", err)
	}

	return wrapper, nil
}

func wrapQuery[Q shell.Query, R any](handler shell.QueryHandler[Q, R], obs observability) (shell.QueryHandler[Q, R], error) {
	options := []observable.QueryOption[Q, R]{observable.WithQueryMetrics[Q, R](obs.metrics)}

	if obs.tracing != nil {
		options = append(options,
			observable.WithQueryTracing[Q, R](obs.tracing),
			observable.WithQueryContextualLogging[Q, R](obs.contextual),
		)
	} else {
		options = append(options, observable.WithQueryLogging[Q, R](obs.logger))
	}

	wrapper, err := observable.NewQueryWrapper(handler, options...)
	if err != nil {
		return nil, fmt.Errorf("wrapping query handler: %w", err)
	}

	return wrapper, nil
}
