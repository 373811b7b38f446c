package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/agreement-ledger-go/demodata"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger/memoryengine"
)

func seedCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo dataset",
		Long: `Load the demo dataset: four clients, four contractors, nine agreements and fourteen work units.

Run it once against a freshly migrated database. With --memory the dataset is loaded into
a throwaway in-memory store, which checks the dataset without touching a database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			var summary demodata.Summary

			if flags.memory {
				summary, err = demodata.Load(cmd.Context(), memoryengine.NewStore())
			} else {
				obs := newObservability(cmd.ErrOrStderr(), cfg)

				store, closeStore, openErr := openStore(cmd.Context(), cfg, false, obs)
				if openErr != nil {
					return openErr
				}
				defer closeStore()

				summary, err = demodata.Load(cmd.Context(), store)
			}

			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %d parties, %d agreements, %d work units\n",
				summary.Parties, summary.Agreements, summary.WorkUnits)

			return nil
		},
	}
}
