package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/carepages/salary-cli/internal/db"
	"github.com/carepages/salary-cli/internal/ingest"
	"github.com/carepages/salary-cli/internal/registry"
	"github.com/carepages/salary-cli/internal/survey"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Survey ingestion",
	Long:  "Runs the wage-survey ingestion pipeline: classify areas, resolve locations, upsert salary observations.",
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

// storePool creates the pgx connection pool from config and verifies
// connectivity.
func storePool(ctx context.Context) (*pgxpool.Pool, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}

	pgxCfg, err := pgxpool.ParseConfig(cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "store: parse database_url")
	}
	if cfg.Store.MaxConns > 0 {
		pgxCfg.MaxConns = cfg.Store.MaxConns
	}
	if cfg.Store.MinConns > 0 {
		pgxCfg.MinConns = cfg.Store.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "store: create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "store: ping database")
	}
	return pool, nil
}

// newRunner wires the per-run pipeline components over one pool.
func newRunner(pool db.Pool) *ingest.Runner {
	return &ingest.Runner{
		Filter:        survey.NewFilter(cfg.Ingest.OccupationPrefixes, cfg.Ingest.DetailedOnly, cfg.Ingest.CrossIndustryOnly),
		Registry:      registry.New(pool),
		Upserter:      ingest.NewUpserter(pool),
		Year:          cfg.Ingest.Year,
		SourceTag:     cfg.Ingest.Source,
		ProgressEvery: cfg.Ingest.ProgressEvery,
		BatchSize:     cfg.Ingest.BatchSize,
	}
}
