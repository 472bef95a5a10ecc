// Package main provides millctl, the offline administration tool for the
// rice mill ledger. It opens the same store the server uses.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"ricemill/internal/app"
	"ricemill/internal/config"
	"ricemill/pkg/logger"
)

const (
	Version = "0.1.0"
	appName = "millctl"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	envFile  string
	logLevel string
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Rice mill ledger administration",
		Long: `millctl works directly against the ledger store configured for the
server (STORAGE_DRIVER, DATA_DIR, DATABASE_URL, MONGODB_URI).

It provides:
- seed: load a demo set of paddy and rice lots with sales and a threshing run
- import: add stock lots from an Excel workbook
- export: write a report as CSV, HTML or XLSX
- sweep: run the low stock sweep once and send alerts`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Path to a .env file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		seedCmd(opts),
		importCmd(opts),
		exportCmd(opts),
		sweepCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

// open loads configuration, installs the logger and opens the ledger.
// Logs go to stderr so report output on stdout stays clean.
func (o *globalOptions) open(ctx context.Context) (*config.Config, *app.App, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(logger.Config{
		Level:       o.logLevel,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	logger.SetDefault(log)

	a, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, a, nil
}
