package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/carepages/salary-cli/internal/db"
	"github.com/carepages/salary-cli/internal/model"
	"github.com/carepages/salary-cli/internal/resilience"
)

// Observation columns in insert order. location_key is generated by the
// store from location_id and never inserted directly.
var obsColumns = []string{
	"id", "occupation_keyword", "location_id", "year", "source",
	"employment_count",
	"hourly_p10", "hourly_p25", "hourly_median", "hourly_p75", "hourly_p90",
	"annual_p10", "annual_p25", "annual_median", "annual_p75", "annual_p90",
}

var obsUpdateColumns = []string{
	"source", "employment_count",
	"hourly_p10", "hourly_p25", "hourly_median", "hourly_p75", "hourly_p90",
	"annual_p10", "annual_p25", "annual_median", "annual_p75", "annual_p90",
}

const upsertObservationSQL = `
	INSERT INTO salary_observations (
		id, occupation_keyword, location_id, year, source, employment_count,
		hourly_p10, hourly_p25, hourly_median, hourly_p75, hourly_p90,
		annual_p10, annual_p25, annual_median, annual_p75, annual_p90
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (occupation_keyword, location_key, year) DO UPDATE SET
		source = EXCLUDED.source,
		employment_count = EXCLUDED.employment_count,
		hourly_p10 = EXCLUDED.hourly_p10,
		hourly_p25 = EXCLUDED.hourly_p25,
		hourly_median = EXCLUDED.hourly_median,
		hourly_p75 = EXCLUDED.hourly_p75,
		hourly_p90 = EXCLUDED.hourly_p90,
		annual_p10 = EXCLUDED.annual_p10,
		annual_p25 = EXCLUDED.annual_p25,
		annual_median = EXCLUDED.annual_median,
		annual_p75 = EXCLUDED.annual_p75,
		annual_p90 = EXCLUDED.annual_p90,
		updated_at = now()`

const insertObservationSQL = `
	INSERT INTO salary_observations (
		id, occupation_keyword, location_id, year, source, employment_count,
		hourly_p10, hourly_p25, hourly_median, hourly_p75, hourly_p90,
		annual_p10, annual_p25, annual_median, annual_p75, annual_p90
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

const updateObservationSQL = `
	UPDATE salary_observations SET
		source = $2,
		employment_count = $3,
		hourly_p10 = $4, hourly_p25 = $5, hourly_median = $6, hourly_p75 = $7, hourly_p90 = $8,
		annual_p10 = $9, annual_p25 = $10, annual_median = $11, annual_p75 = $12, annual_p90 = $13,
		updated_at = now()
	WHERE id = $1`

// Upserter writes salary observations so that reruns for the same survey
// year update rows in place. After any number of reruns there is at most
// one observation per (occupation keyword, location scope, year).
type Upserter struct {
	pool  db.Pool
	retry resilience.RetryConfig
}

// NewUpserter builds an upserter with a short transient-error retry.
func NewUpserter(pool db.Pool) *Upserter {
	return &Upserter{
		pool: pool,
		retry: resilience.RetryConfig{
			MaxAttempts:    2,
			InitialBackoff: 200 * time.Millisecond,
		},
	}
}

// Upsert writes one observation. Uniqueness rides on the store's generated
// location_key column, which folds a missing location into a fixed
// sentinel. When that conflict target is unavailable (a store migrated
// before the sentinel column existed), national rows fall back to the
// explicit lookup-then-write path.
func (u *Upserter) Upsert(ctx context.Context, obs model.SalaryObservation) error {
	err := resilience.Do(ctx, u.retry, func(ctx context.Context) error {
		_, execErr := u.pool.Exec(ctx, upsertObservationSQL, u.args(obs)...)
		return execErr
	})
	if err == nil {
		return nil
	}
	if obs.LocationID == nil && isMissingConflictTarget(err) {
		return u.UpsertNational(ctx, obs)
	}
	return eris.Wrapf(err, "ingest: upsert observation %s/%s/%d",
		obs.OccupationKeyword, model.ObservationKey(obs.LocationID), obs.Year)
}

// UpsertNational enforces the at-most-one national row guarantee without
// relying on the store's treatment of NULL in unique indexes: find by
// (keyword, NULL location, year), update by identity, insert when absent.
func (u *Upserter) UpsertNational(ctx context.Context, obs model.SalaryObservation) error {
	var id string
	err := u.pool.QueryRow(ctx,
		`SELECT id FROM salary_observations
		 WHERE occupation_keyword = $1 AND location_id IS NULL AND year = $2`,
		obs.OccupationKeyword, obs.Year,
	).Scan(&id)

	switch {
	case err == nil:
		args := append([]any{id, obs.Source}, u.metricArgs(obs)...)
		if _, err := u.pool.Exec(ctx, updateObservationSQL, args...); err != nil {
			return eris.Wrapf(err, "ingest: update national observation %s/%d", obs.OccupationKeyword, obs.Year)
		}
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		if _, err := u.pool.Exec(ctx, insertObservationSQL, u.args(obs)...); err != nil {
			return eris.Wrapf(err, "ingest: insert national observation %s/%d", obs.OccupationKeyword, obs.Year)
		}
		return nil
	default:
		return eris.Wrapf(err, "ingest: find national observation %s/%d", obs.OccupationKeyword, obs.Year)
	}
}

// UpsertBatch writes a batch through the COPY-based bulk upsert. Rows are
// deduplicated by observation key within the batch (last write wins) so
// the ON CONFLICT clause never touches the same row twice.
func (u *Upserter) UpsertBatch(ctx context.Context, batch []model.SalaryObservation) (int64, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(batch))
	seen := make(map[string]int, len(batch))
	for _, obs := range batch {
		key := fmt.Sprintf("%s|%s|%d", obs.OccupationKeyword, model.ObservationKey(obs.LocationID), obs.Year)
		if idx, ok := seen[key]; ok {
			rows[idx] = u.args(obs)
			continue
		}
		seen[key] = len(rows)
		rows = append(rows, u.args(obs))
	}

	n, err := db.BulkUpsert(ctx, u.pool, db.UpsertConfig{
		Table:        "salary_observations",
		Columns:      obsColumns,
		ConflictKeys: []string{"occupation_keyword", "location_key", "year"},
		UpdateCols:   obsUpdateColumns,
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "ingest: bulk upsert observations")
	}
	return n, nil
}

func (u *Upserter) args(obs model.SalaryObservation) []any {
	id := obs.ID
	if id == "" {
		id = uuid.New().String()
	}
	return append([]any{
		id, obs.OccupationKeyword, obs.LocationID, obs.Year, obs.Source,
	}, u.metricArgs(obs)...)
}

func (u *Upserter) metricArgs(obs model.SalaryObservation) []any {
	return []any{
		obs.EmploymentCount,
		obs.HourlyP10, obs.HourlyP25, obs.HourlyMedian, obs.HourlyP75, obs.HourlyP90,
		obs.AnnualP10, obs.AnnualP25, obs.AnnualMedian, obs.AnnualP75, obs.AnnualP90,
	}
}

// isMissingConflictTarget matches the errors Postgres raises when the
// sentinel location_key column or its unique index is absent.
func isMissingConflictTarget(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no unique or exclusion constraint") ||
		strings.Contains(msg, `column "location_key" does not exist`)
}
