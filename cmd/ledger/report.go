package main

import (
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/agreement-ledger-go/features/query/bestclients"
	"github.com/AntonStoeckl/agreement-ledger-go/features/query/bestprofession"
	"github.com/AntonStoeckl/agreement-ledger-go/httpapi"
	"github.com/AntonStoeckl/agreement-ledger-go/ledger"
)

type windowFlags struct {
	start string
	end   string
}

func (w *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.start, "start", "", "window start, RFC 3339 or YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&w.end, "end", "", "window end, RFC 3339 or YYYY-MM-DD, a date covers the whole day (required)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

func reportCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print reporting results as JSON",
	}

	cmd.AddCommand(bestProfessionCmd(flags))
	cmd.AddCommand(bestClientsCmd(flags))

	return cmd
}

func bestProfessionCmd(flags *rootFlags) *cobra.Command {
	window := &windowFlags{}

	cmd := &cobra.Command{
		Use:   "best-profession",
		Short: "The payee profession that earned the most within the window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := httpapi.ParseWindow(window.start, window.end)
			if err != nil {
				return err
			}

			query, err := bestprofession.BuildQuery(start, end)
			if err != nil {
				return err
			}

			return withReportStore(cmd, flags, func(store ledger.Store) error {
				result, handleErr := bestprofession.NewQueryHandler(store).Handle(cmd.Context(), query)
				if handleErr != nil {
					return handleErr
				}

				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}

	window.register(cmd)

	return cmd
}

func bestClientsCmd(flags *rootFlags) *cobra.Command {
	window := &windowFlags{}
	var limit int

	cmd := &cobra.Command{
		Use:   "best-clients",
		Short: "The clients that paid the most within the window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := httpapi.ParseWindow(window.start, window.end)
			if err != nil {
				return err
			}

			query, err := bestclients.BuildQuery(start, end, limit)
			if err != nil {
				return err
			}

			return withReportStore(cmd, flags, func(store ledger.Store) error {
				result, handleErr := bestclients.NewQueryHandler(store).Handle(cmd.Context(), query)
				if handleErr != nil {
					return handleErr
				}

				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}

	window.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", bestclients.DefaultLimit, "number of clients")

	return cmd
}

func withReportStore(cmd *cobra.Command, flags *rootFlags, fn func(store ledger.Store) error) error {
	cfg, err := flags.load()
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cmd.Context(), cfg, flags.memory, newObservability(cmd.ErrOrStderr(), cfg))
	if err != nil {
		return err
	}
	defer closeStore()

	return fn(store)
}

func printJSON(w io.Writer, v any) error {
	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}
