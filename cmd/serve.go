package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/apilog-generator/internal/config"
	"github.com/telhawk-systems/apilog-generator/internal/dataset"
	"github.com/telhawk-systems/apilog-generator/internal/logging"
	"github.com/telhawk-systems/apilog-generator/internal/server"
	"github.com/telhawk-systems/apilog-generator/internal/spreadsheet"
)

var (
	serveAddr     string
	serveFile     string
	serveGenerate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a generated workbook over HTTP",
	Long: `Load a generated workbook and serve it to dashboards:

  GET /api/health        liveness
  GET /api/fetch-data-a  all records, newest first
  GET /api/summary       summary statistics
  GET /api/report        metrics filtered by category, from and to
  GET /metrics           Prometheus metrics

The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (default: server.address)")
	serveCmd.Flags().StringVarP(&serveFile, "file", "f", "", "Workbook to serve (default: output.path)")
	serveCmd.Flags().BoolVar(&serveGenerate, "generate", false, "Generate the workbook first if it does not exist")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Address = serveAddr
	}
	if serveFile != "" {
		cfg.Output.Path = serveFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	records, err := loadRecords(ctx, cfg, serveGenerate)
	if err != nil {
		return err
	}
	logger.Info("workbook loaded", logging.Path(cfg.Output.Path), logging.Records(len(records)))

	handler := server.NewRouter(server.NewHandler(records, logger))
	srv := server.New(cfg.Server.Address, handler, cfg.Server.ShutdownTimeout, logger)
	return srv.Run(ctx)
}

// loadRecords reads the configured workbook, generating it first when it is
// missing and generate is set.
func loadRecords(ctx context.Context, cfg *config.Config, generate bool) ([]dataset.Record, error) {
	records, err := spreadsheet.ReadFile(cfg.Output.Path, cfg.Output.Sheet)
	if err == nil {
		return records, nil
	}
	if !errors.Is(err, os.ErrNotExist) || !generate {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}

	logger.Info("workbook missing, generating", logging.Path(cfg.Output.Path))
	ds, err := generateWorkbook(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return ds.Records, nil
}
