package main

import (
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/agreement-ledger-go/shared/shell/config"
)

type rootFlags struct {
	configPath string
	envPath    string
	memory     bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "ledger",
		Short:         "Agreement ledger and settlement engine",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&flags.envPath, "env-file", ".env", "path to a dotenv file, ignored when missing")
	rootCmd.PersistentFlags().BoolVar(&flags.memory, "memory", false, "use an in-memory store loaded with the demo dataset")

	rootCmd.AddCommand(serveCmd(flags))
	rootCmd.AddCommand(migrateCmd(flags))
	rootCmd.AddCommand(seedCmd(flags))
	rootCmd.AddCommand(reportCmd(flags))

	return rootCmd
}

func (f *rootFlags) load() (config.Config, error) {
	return config.Load(f.configPath, f.envPath)
}
