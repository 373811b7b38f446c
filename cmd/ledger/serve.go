package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/agreement-ledger-go/httpapi"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			obs := newObservability(cmd.ErrOrStderr(), cfg)
			defer func() { _ = obs.shutdown(context.Background()) }()

			store, closeStore, err := openStore(ctx, cfg, flags.memory, obs)
			if err != nil {
				return err
			}
			defer closeStore()

			handlers, err := buildHandlers(store, cfg, obs)
			if err != nil {
				return err
			}

			options := []httpapi.Option{
				httpapi.WithLogger(obs.logger),
				httpapi.WithRateLimit(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst),
			}

			if obs.prometheus != nil {
				options = append(options, httpapi.WithMetricsHandler(obs.prometheus.Handler()))
			}

			server := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           httpapi.NewServer(store, handlers, options...).Router(),
				ReadTimeout:       cfg.HTTP.ReadTimeout,
				ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
				WriteTimeout:      cfg.HTTP.WriteTimeout,
			}

			serveErr := make(chan error, 1)
			go func() {
				obs.logger.Info("http server listening", "addr", cfg.HTTP.Addr, "memory", flags.memory)
				serveErr <- server.ListenAndServe()
			}()

			select {
			case err = <-serveErr:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}

				return err
			case <-ctx.Done():
				obs.logger.Info("http server shutting down")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				return server.Shutdown(shutdownCtx)
			}
		},
	}
}
