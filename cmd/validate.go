package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/apilog-generator/internal/config"
	"github.com/telhawk-systems/apilog-generator/pkg/output"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Check the effective configuration without generating anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}

		output.Success("Configuration is valid")
		fmt.Fprintf(output.Out, "  Records: %d\n", cfg.Dataset.Count)
		fmt.Fprintf(output.Out, "  Seed: %d\n", cfg.Dataset.Seed)
		fmt.Fprintf(output.Out, "  Window: %v (%d days)\n", cfg.Dataset.Window, cfg.Dataset.WindowDays())
		fmt.Fprintf(output.Out, "  Categories: %s\n", weighted(cfg.Dataset.Categories))
		fmt.Fprintf(output.Out, "  Statuses: %s\n", weighted(cfg.Dataset.Statuses))
		fmt.Fprintf(output.Out, "  Output: %s (sheet %s)\n", cfg.Output.Path, cfg.Output.Sheet)

		sinks := cfg.Sinks.EnabledSinks()
		if len(sinks) == 0 {
			fmt.Fprintln(output.Out, "  Sinks: none")
		} else {
			fmt.Fprintf(output.Out, "  Sinks: %s\n", strings.Join(sinks, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func weighted(values []config.WeightedValue) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%s=%.2f", v.Name, v.Weight))
	}
	return strings.Join(parts, ", ")
}
