package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/apilog-generator/internal/config"
	"github.com/telhawk-systems/apilog-generator/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "apigen",
	Short: "Synthetic API response log generator",
	Long: `apigen generates a reproducible log of synthetic API responses and
writes it to an Excel workbook.

Run without a subcommand to generate api_responses.xlsx with the configured
defaults (500 records, seed 42, 30 day window).

Configuration cascade (priority order):
  1. Command-line flags
  2. --config file
  3. ./apigen.yaml (project directory)
  4. ~/.apigen/apigen.yaml (user directory)
  5. APIGEN_* environment variables
  6. Built-in defaults`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: initRuntime,
	RunE:              runGenerate,
}

func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to subcommands.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./apigen.yaml or ~/.apigen/apigen.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json")

	addGenerateFlags(rootCmd)
}

// initRuntime loads configuration and sets up logging before any command runs.
func initRuntime(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = logFormat
	}

	logger = logging.New(os.Stderr, logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)
	return nil
}
