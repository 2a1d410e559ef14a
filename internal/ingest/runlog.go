package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/carepages/salary-cli/internal/db"
)

// RunEntry represents a row in ingest_log.
type RunEntry struct {
	ID           int64          `json:"id"`
	Source       string         `json:"source"`
	Year         int            `json:"year"`
	Status       string         `json:"status"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	RowsSeen     int64          `json:"rows_seen"`
	RowsUpserted int64          `json:"rows_upserted"`
	RowsFailed   int64          `json:"rows_failed"`
	Error        string         `json:"error,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// RunLog provides read/write access to the ingest_log table.
type RunLog struct {
	pool db.Pool
}

// NewRunLog creates a RunLog backed by the given connection pool.
func NewRunLog(pool db.Pool) *RunLog {
	return &RunLog{pool: pool}
}

// Start records the beginning of an ingestion run and returns its ID.
func (l *RunLog) Start(ctx context.Context, source string, year int) (int64, error) {
	var id int64
	err := l.pool.QueryRow(ctx,
		`INSERT INTO ingest_log (source, year, status, started_at)
		 VALUES ($1, $2, 'running', now()) RETURNING id`,
		source, year,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "runlog: start run for %s/%d", source, year)
	}
	return id, nil
}

// Complete marks a run as successfully completed with its summary counts.
func (l *RunLog) Complete(ctx context.Context, runID int64, sum *Summary) error {
	metaJSON, err := json.Marshal(map[string]any{
		"filtered_out":      sum.FilteredOut,
		"unsupported":       sum.Unsupported,
		"locations_created": sum.LocationsCreated,
		"elapsed":           sum.Elapsed.String(),
	})
	if err != nil {
		return eris.Wrap(err, "runlog: marshal metadata")
	}

	_, err = l.pool.Exec(ctx,
		`UPDATE ingest_log
		 SET status = 'complete', completed_at = now(),
		     rows_seen = $2, rows_upserted = $3, rows_failed = $4, metadata = $5
		 WHERE id = $1`,
		runID, sum.RowsSeen, sum.Upserted, sum.Failed, metaJSON,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: complete run %d", runID)
	}
	return nil
}

// Fail marks a run as failed with an error message.
func (l *RunLog) Fail(ctx context.Context, runID int64, errMsg string) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE ingest_log
		 SET status = 'failed', completed_at = now(), error = $2
		 WHERE id = $1`,
		runID, errMsg,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: fail run %d", runID)
	}
	return nil
}

// Recent returns the most recent run entries, newest first.
func (l *RunLog) Recent(ctx context.Context, limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := l.pool.Query(ctx,
		`SELECT id, source, year, status, started_at, completed_at,
		        rows_seen, rows_upserted, rows_failed, error, metadata
		 FROM ingest_log ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list recent")
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		var errStr *string
		var metaJSON []byte
		if err := rows.Scan(&e.ID, &e.Source, &e.Year, &e.Status, &e.StartedAt, &e.CompletedAt,
			&e.RowsSeen, &e.RowsUpserted, &e.RowsFailed, &errStr, &metaJSON); err != nil {
			return nil, eris.Wrap(err, "runlog: scan entry")
		}
		if errStr != nil {
			e.Error = *errStr
		}
		if metaJSON != nil {
			_ = json.Unmarshal(metaJSON, &e.Metadata)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
