package export

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telhawk-systems/apilog-generator/internal/config"
	"github.com/telhawk-systems/apilog-generator/internal/dataset"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var postgresColumns = []string{"run_id", "date", "category", "status", "response_time_ms"}

// PostgresSink bulk-copies records into the api_responses table.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink connects to cfg.DSN, applying migrations first when
// cfg.Migrate is set. The DSN must be a postgres:// URL for migrations.
func NewPostgresSink(ctx context.Context, cfg config.PostgresConfig) (*PostgresSink, error) {
	if cfg.Migrate {
		if err := Migrate(cfg.DSN); err != nil {
			return nil, err
		}
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolCfg.MaxConns = 4
	poolCfg.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresSink{pool: pool}, nil
}

// Migrate applies the embedded schema migrations to dsn.
func Migrate(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *PostgresSink) Name() string { return "postgres" }

// Export copies every record of ds in one COPY statement.
func (s *PostgresSink) Export(ctx context.Context, ds *dataset.Dataset) error {
	rows := pgx.CopyFromSlice(len(ds.Records), func(i int) ([]any, error) {
		r := ds.Records[i]
		return []any{ds.RunID, r.Date, r.Category, r.Status, r.ResponseTime}, nil
	})

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"api_responses"}, postgresColumns, rows)
	if err != nil {
		return fmt.Errorf("failed to copy records: %w", err)
	}
	if int(n) != len(ds.Records) {
		return fmt.Errorf("copied %d of %d records", n, len(ds.Records))
	}
	return nil
}

// Count returns how many rows a run stored.
func (s *PostgresSink) Count(ctx context.Context, runID string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM api_responses WHERE run_id = $1`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}
