package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/apilog-generator/internal/spreadsheet"
	"github.com/telhawk-systems/apilog-generator/internal/stats"
	"github.com/telhawk-systems/apilog-generator/pkg/output"
)

var (
	reportFile     string
	reportSheet    string
	reportCategory string
	reportFrom     string
	reportTo       string
	reportFormat   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report metrics from a generated workbook",
	Long: `Read a generated workbook and print total requests, average response time
and success rate, broken down per day.

When both --from and --to are given, the same-length period before --from is
compared against.

Examples:
  apigen report
  apigen report --category Claims --from 2026-10-01 --to 2026-10-07
  apigen report --format json`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportFile, "file", "f", "", "Workbook to read (default: output.path)")
	reportCmd.Flags().StringVar(&reportSheet, "sheet", "", "Worksheet to read (default: first sheet)")
	reportCmd.Flags().StringVarP(&reportCategory, "category", "c", "all", "Category to report on, or all")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "First day to include (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "Last day to include (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "table", "Output format: table, json, yaml")
}

func runReport(cmd *cobra.Command, args []string) error {
	path := cfg.Output.Path
	if reportFile != "" {
		path = reportFile
	}

	from, err := stats.ParseDay(reportFrom)
	if err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}
	to, err := stats.ParseDay(reportTo)
	if err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return fmt.Errorf("--to %s is before --from %s", reportTo, reportFrom)
	}

	records, err := spreadsheet.ReadFile(path, reportSheet)
	if err != nil {
		return fmt.Errorf("failed to read workbook: %w", err)
	}

	report := stats.BuildReport(records, stats.Filter{Category: reportCategory, From: from, To: to})

	switch reportFormat {
	case "json":
		return output.JSON(report)
	case "yaml":
		return output.YAML(report)
	case "table":
		output.PrintReport(report)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (want table, json or yaml)", reportFormat)
	}
}
