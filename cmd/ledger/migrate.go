package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/agreement-ledger-go/migrations"
	"github.com/AntonStoeckl/agreement-ledger-go/shared/shell/config"
)

func migrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.memory {
				return errors.New("migrate needs a postgres database, --memory is not supported")
			}

			cfg, err := flags.load()
			if err != nil {
				return err
			}

			db, err := config.NewPostgresSQLDB(cmd.Context(), cfg.Postgres.DSN, cfg.Postgres)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err = migrations.Apply(cmd.Context(), db); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")

			return nil
		},
	}
}
