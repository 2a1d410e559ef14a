// Package registry maintains the canonical set of location records.
package registry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/carepages/salary-cli/internal/db"
	"github.com/carepages/salary-cli/internal/survey"
)

// Registry resolves geographic classifications to location IDs, creating
// location records on first encounter. The cache is scoped to one ingestion
// run; the store's unique constraint on (city, state) stays authoritative
// across concurrent runs.
type Registry struct {
	pool    db.Pool
	cache   map[string]string
	created int
}

// New builds a run-scoped registry over the store pool.
func New(pool db.Pool) *Registry {
	return &Registry{pool: pool, cache: make(map[string]string)}
}

// Resolve returns the location ID for a classification, or nil for the
// national level. State and metro locations are created on first use;
// existing records are never modified, so curated state names and slugs
// survive re-ingestion.
func (r *Registry) Resolve(ctx context.Context, c survey.Classification) (*string, error) {
	switch c.Level {
	case survey.LevelNational:
		return nil, nil
	case survey.LevelState, survey.LevelMetro:
	default:
		return nil, eris.Errorf("registry: cannot resolve %s classification", c.Level)
	}

	key := c.Key()
	if id, ok := r.cache[key]; ok {
		return &id, nil
	}

	id, created, err := r.getOrCreate(ctx, c)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: resolve location %q", key)
	}
	if created {
		r.created++
	}
	r.cache[key] = id
	return &id, nil
}

func (r *Registry) getOrCreate(ctx context.Context, c survey.Classification) (string, bool, error) {
	var id string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO locations (id, city, state, state_name, slug)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (city, state) DO NOTHING
		 RETURNING id`,
		uuid.New().String(), c.City, c.State, c.StateName, c.Slug(),
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, err
	}

	// DO NOTHING suppressed the insert: the location already exists.
	err = r.pool.QueryRow(ctx,
		`SELECT id FROM locations WHERE city = $1 AND state = $2`,
		c.City, c.State,
	).Scan(&id)
	if err != nil {
		return "", false, err
	}
	return id, false, nil
}

// Created returns the number of locations created during this run.
func (r *Registry) Created() int {
	return r.created
}
