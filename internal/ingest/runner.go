package ingest

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/carepages/salary-cli/internal/model"
	"github.com/carepages/salary-cli/internal/registry"
	"github.com/carepages/salary-cli/internal/survey"
)

// Summary aggregates the counts of one ingestion run.
type Summary struct {
	RowsSeen         int           `json:"rows_seen"`
	FilteredOut      int           `json:"filtered_out"`
	Unsupported      int           `json:"unsupported"`
	Upserted         int           `json:"upserted"`
	Failed           int           `json:"failed"`
	LocationsCreated int           `json:"locations_created"`
	Elapsed          time.Duration `json:"-"`
}

// Runner drives a row stream through the full pipeline: occupation filter,
// geographic classifier, location registry, observation builder, upsert
// engine. Rows are processed in order; a failed row is logged and skipped,
// never fatal. Source errors are systemic and abort the run.
type Runner struct {
	Filter   *survey.Filter
	Registry *registry.Registry
	Upserter *Upserter

	Year      int
	SourceTag string

	// ProgressEvery logs a progress line every N rows (default 1000).
	ProgressEvery int
	// BatchSize > 1 buffers observations for the COPY-based bulk path. A
	// failed batch is replayed row by row so one bad observation cannot
	// take down its batchmates.
	BatchSize int
}

// Run consumes the source until EOF and returns the run summary.
func (r *Runner) Run(ctx context.Context, src survey.Source) (*Summary, error) {
	log := zap.L().With(
		zap.String("component", "ingest.runner"),
		zap.Int("year", r.Year),
		zap.String("source", r.SourceTag),
	)
	start := time.Now()
	sum := &Summary{}

	progressEvery := r.ProgressEvery
	if progressEvery <= 0 {
		progressEvery = 1000
	}

	var batch []model.SalaryObservation

	flush := func() {
		if len(batch) == 0 {
			return
		}
		n, err := r.Upserter.UpsertBatch(ctx, batch)
		if err != nil {
			log.Warn("batch upsert failed, replaying rows individually",
				zap.Int("batch", len(batch)), zap.Error(err))
			for _, obs := range batch {
				if err := r.Upserter.Upsert(ctx, obs); err != nil {
					sum.Failed++
					log.Warn("row failed",
						zap.String("keyword", obs.OccupationKeyword),
						zap.String("location_key", model.ObservationKey(obs.LocationID)),
						zap.Error(err))
					continue
				}
				sum.Upserted++
			}
		} else {
			// the affected-row count, not len(batch): in-batch duplicate
			// keys collapse to one write
			sum.Upserted += int(n)
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			return sum, eris.Wrap(ctx.Err(), "ingest: run cancelled")
		default:
		}

		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, eris.Wrap(err, "ingest: read row")
		}
		sum.RowsSeen++
		if sum.RowsSeen%progressEvery == 0 {
			log.Info("progress",
				zap.Int("rows", sum.RowsSeen),
				zap.Int("upserted", sum.Upserted),
				zap.Int("failed", sum.Failed))
		}

		if !r.Filter.AllowRow(row) {
			sum.FilteredOut++
			continue
		}

		c := survey.Classify(row.Get(survey.ColAreaType), row.Get(survey.ColAreaTitle), row.Get(survey.ColPrimState))
		if c.Level == survey.LevelUnsupported {
			sum.Unsupported++
			continue
		}

		locID, err := r.Registry.Resolve(ctx, c)
		if err != nil {
			sum.Failed++
			log.Warn("row failed",
				zap.String("area", row.Get(survey.ColAreaTitle)),
				zap.String("occupation", row.Get(survey.ColOccCode)),
				zap.Error(err))
			continue
		}

		obs := survey.BuildObservation(row, locID, r.Year, r.SourceTag)
		if obs.OccupationKeyword == "" {
			sum.Failed++
			log.Warn("row has no usable occupation title",
				zap.String("occupation", row.Get(survey.ColOccCode)),
				zap.String("area", row.Get(survey.ColAreaTitle)))
			continue
		}

		if r.BatchSize > 1 {
			batch = append(batch, obs)
			if len(batch) >= r.BatchSize {
				flush()
			}
			continue
		}

		if err := r.Upserter.Upsert(ctx, obs); err != nil {
			sum.Failed++
			log.Warn("row failed",
				zap.String("keyword", obs.OccupationKeyword),
				zap.String("area", row.Get(survey.ColAreaTitle)),
				zap.Error(err))
			continue
		}
		sum.Upserted++
	}

	flush()

	sum.LocationsCreated = r.Registry.Created()
	sum.Elapsed = time.Since(start)

	log.Info("ingest complete",
		zap.Int("rows_seen", sum.RowsSeen),
		zap.Int("filtered_out", sum.FilteredOut),
		zap.Int("unsupported", sum.Unsupported),
		zap.Int("upserted", sum.Upserted),
		zap.Int("failed", sum.Failed),
		zap.Int("locations_created", sum.LocationsCreated),
		zap.Duration("elapsed", sum.Elapsed),
	)
	return sum, nil
}
