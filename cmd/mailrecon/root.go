package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/reconhq/mailrecon/internal/config"
	"github.com/reconhq/mailrecon/pkg/logging"
)

var (
	configFile string
	logLevel   string
	logFormat  string

	cfg config.Config
)

// rootCmd represents the base command when called without any
// subcommands.
var rootCmd = &cobra.Command{
	Use:   "mailrecon",
	Short: "Mail archive / CRM reconciliation engine",
	Long: `Mailrecon reconciles mail-archive records against CRM activity
records: it detects duplicates before insert, tracks field-level
changes, resolves conflicts under a configurable strategy, and keeps
per-item sync state for operational review.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")

	rootCmd.AddCommand(dedupeCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and wires the global logger before any
// subcommand runs.
func setup(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}
	cfg = loaded

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logging.Configure(logCfg)
	return nil
}

// Execute runs the root command with signal-aware cancellation.
func Execute(version, commit, date string) error {
	setVersion(version, commit, date)

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
