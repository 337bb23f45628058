package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/apilog-generator/internal/config"
	"github.com/telhawk-systems/apilog-generator/internal/dataset"
	"github.com/telhawk-systems/apilog-generator/internal/export"
	"github.com/telhawk-systems/apilog-generator/internal/generator"
	"github.com/telhawk-systems/apilog-generator/internal/logging"
	"github.com/telhawk-systems/apilog-generator/internal/spreadsheet"
	"github.com/telhawk-systems/apilog-generator/internal/stats"
	"github.com/telhawk-systems/apilog-generator/pkg/output"
)

var (
	genCount    int
	genSeed     int64
	genWindow   string
	genOutput   string
	genSheet    string
	genFormat   string
	genNoExport bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the API response workbook",
	Long: `Generate synthetic API response records, write them to an Excel workbook,
export them to any enabled sinks and print summary statistics.

Examples:
  # Defaults: 500 records, seed 42, api_responses.xlsx
  apigen generate

  # Larger run over a week
  apigen generate --count 5000 --window 7d --output week.xlsx

  # Machine-readable summary
  apigen generate --format json`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&genCount, "count", "n", 0, "Number of records to generate")
	cmd.Flags().Int64VarP(&genSeed, "seed", "s", 0, "Random seed")
	cmd.Flags().StringVarP(&genWindow, "window", "w", "", "Time window ending now in whole days (e.g., 24h, 7d, 30d)")
	cmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output workbook path")
	cmd.Flags().StringVar(&genSheet, "sheet", "", "Worksheet name")
	cmd.Flags().StringVar(&genFormat, "format", "text", "Summary format: text, json, yaml")
	cmd.Flags().BoolVar(&genNoExport, "no-export", false, "Skip enabled export sinks")
}

// applyGenerateFlags overrides cfg with any generate flags set on cmd.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("count") {
		cfg.Dataset.Count = genCount
	}
	if cmd.Flags().Changed("seed") {
		cfg.Dataset.Seed = genSeed
	}
	if cmd.Flags().Changed("window") {
		d, err := parseDuration(genWindow)
		if err != nil {
			return fmt.Errorf("invalid window: %w", err)
		}
		cfg.Dataset.Window = d
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.Path = genOutput
	}
	if cmd.Flags().Changed("sheet") {
		cfg.Output.Sheet = genSheet
	}
	return nil
}

// generatedRun is the machine-readable result of a generate command.
type generatedRun struct {
	RunID   string        `json:"run_id" yaml:"run_id"`
	Path    string        `json:"path" yaml:"path"`
	Seed    int64         `json:"seed" yaml:"seed"`
	Summary stats.Summary `json:"summary" yaml:"summary"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	switch genFormat {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unsupported format %q (want text, json or yaml)", genFormat)
	}

	if err := applyGenerateFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	ds, err := generateWorkbook(ctx, cfg)
	if err != nil {
		return err
	}

	if !genNoExport {
		if err := exportRun(ctx, cfg.Sinks, ds); err != nil {
			return err
		}
	}

	summary := stats.Summarize(ds.Records)
	switch genFormat {
	case "json":
		return output.JSON(generatedRun{RunID: ds.RunID, Path: cfg.Output.Path, Seed: ds.Seed, Summary: summary})
	case "yaml":
		return output.YAML(generatedRun{RunID: ds.RunID, Path: cfg.Output.Path, Seed: ds.Seed, Summary: summary})
	default:
		output.PrintSummary(cfg.Output.Path, summary)
	}
	return nil
}

// generateWorkbook draws a dataset and writes it to the configured path.
func generateWorkbook(ctx context.Context, cfg *config.Config) (*dataset.Dataset, error) {
	gen, err := generator.New(cfg.Dataset, generator.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	ds, err := gen.Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate records: %w", err)
	}

	if err := spreadsheet.WriteFile(cfg.Output.Path, cfg.Output.Sheet, ds.Records); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	logger.InfoContext(logging.ContextWithRunID(ctx, ds.RunID), "workbook written",
		logging.Path(cfg.Output.Path),
		logging.Records(ds.Len()),
	)
	return ds, nil
}

func exportRun(ctx context.Context, sinks config.SinksConfig, ds *dataset.Dataset) error {
	if len(sinks.EnabledSinks()) == 0 {
		return nil
	}

	fanout, err := export.Open(ctx, sinks, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := fanout.Close(); err != nil {
			logger.Warn("failed to close sinks", logging.Error(err))
		}
	}()

	return fanout.Export(ctx, ds)
}

// parseDuration parses duration strings like "24h", "7d", "30d"
func parseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		days := strings.TrimSuffix(s, "d")
		var d int
		if _, err := fmt.Sscanf(days, "%d", &d); err != nil {
			return 0, err
		}
		return time.Duration(d) * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}
