// Command zombie scans Solana wallets for zombie assets, serves points and
// claims over HTTP, and manages the database schema.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zombie-scanner/internal/config"
	"zombie-scanner/internal/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
}

// load reads configuration and builds the root logger.
func (o *rootOptions) load() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	log, err := cfg.Log.Build()
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func run(args []string) error {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "zombie",
		Short:         "Zombie asset scanner for Solana wallets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVarP(&opts.logLevel, "log-level", "", "", "Log level (overrides config)")

	rootCmd.AddCommand(
		newServeCommand(opts),
		newScanCommand(opts),
		newPointsCommand(opts),
		newMigrateCommand(opts),
	)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}
