// Package store exposes the read paths the content layer consumes:
// location lookups and consolidated salary observations.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/carepages/salary-cli/internal/db"
	"github.com/carepages/salary-cli/internal/model"
)

// Store wraps the connection pool with typed queries.
type Store struct {
	pool db.Pool
}

// New creates a Store over the given pool.
func New(pool db.Pool) *Store {
	return &Store{pool: pool}
}

const observationColumns = `id, occupation_keyword, location_id, year, source, employment_count,
	hourly_p10, hourly_p25, hourly_median, hourly_p75, hourly_p90,
	annual_p10, annual_p25, annual_median, annual_p75, annual_p90`

// BestObservation returns the observation with the largest survey sample
// among the given keywords at one location scope and year, or nil when no
// keyword has data. A nil locationID selects the national scope.
func (s *Store) BestObservation(ctx context.Context, keywords []string, locationID *string, year int) (*model.SalaryObservation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+observationColumns+`
		 FROM salary_observations
		 WHERE occupation_keyword = ANY($1)
		   AND location_id IS NOT DISTINCT FROM $2
		   AND year = $3
		 ORDER BY employment_count DESC NULLS LAST
		 LIMIT 1`,
		keywords, locationID, year,
	)
	obs, err := scanObservation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: best observation for %d keywords", len(keywords))
	}
	return obs, nil
}

func scanObservation(row pgx.Row) (*model.SalaryObservation, error) {
	var o model.SalaryObservation
	err := row.Scan(
		&o.ID, &o.OccupationKeyword, &o.LocationID, &o.Year, &o.Source, &o.EmploymentCount,
		&o.HourlyP10, &o.HourlyP25, &o.HourlyMedian, &o.HourlyP75, &o.HourlyP90,
		&o.AnnualP10, &o.AnnualP25, &o.AnnualMedian, &o.AnnualP75, &o.AnnualP90,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

const locationColumns = `id, city, state, state_name, slug`

// LocationBySlug finds a location by its URL slug, nil when absent.
func (s *Store) LocationBySlug(ctx context.Context, slug string) (*model.Location, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE slug = $1`, slug)
	loc, err := scanLocation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: location by slug %q", slug)
	}
	return loc, nil
}

// LocationByKey finds a location by its (city, state) natural key; city ""
// selects the state-level record. Returns nil when absent.
func (s *Store) LocationByKey(ctx context.Context, city, state string) (*model.Location, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE city = $1 AND state = $2`,
		city, state)
	loc, err := scanLocation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: location %q", model.LocationKey(city, state))
	}
	return loc, nil
}

// LocationsByState lists locations in a state at one level: cityLevel true
// for metro locations, false for the state-level record.
func (s *Store) LocationsByState(ctx context.Context, state string, cityLevel bool) ([]model.Location, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+locationColumns+` FROM locations
		 WHERE state = $1 AND (city <> '') = $2
		 ORDER BY city`,
		state, cityLevel)
	if err != nil {
		return nil, eris.Wrapf(err, "store: locations in %s", state)
	}
	defer rows.Close()

	var locs []model.Location
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.City, &l.State, &l.StateName, &l.Slug); err != nil {
			return nil, eris.Wrap(err, "store: scan location")
		}
		locs = append(locs, l)
	}
	return locs, rows.Err()
}

func scanLocation(row pgx.Row) (*model.Location, error) {
	var l model.Location
	err := row.Scan(&l.ID, &l.City, &l.State, &l.StateName, &l.Slug)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Totals summarizes the location table for the status command.
type Totals struct {
	StateLocations int64 `json:"state_locations"`
	CityLocations  int64 `json:"city_locations"`
}

// LocationTotals counts locations by level.
func (s *Store) LocationTotals(ctx context.Context) (*Totals, error) {
	var t Totals
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FILTER (WHERE city = ''),
		        count(*) FILTER (WHERE city <> '')
		 FROM locations`,
	).Scan(&t.StateLocations, &t.CityLocations)
	if err != nil {
		return nil, eris.Wrap(err, "store: location totals")
	}
	return &t, nil
}

// YearBreakdown counts observations for one survey year by scope.
type YearBreakdown struct {
	Year     int   `json:"year"`
	National int64 `json:"national"`
	State    int64 `json:"state"`
	City     int64 `json:"city"`
}

// ObservationsByYear breaks observation counts down per year, newest first.
func (s *Store) ObservationsByYear(ctx context.Context) ([]YearBreakdown, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT o.year,
		        count(*) FILTER (WHERE o.location_id IS NULL),
		        count(*) FILTER (WHERE l.city = ''),
		        count(*) FILTER (WHERE l.city <> '')
		 FROM salary_observations o
		 LEFT JOIN locations l ON l.id = o.location_id
		 GROUP BY o.year
		 ORDER BY o.year DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: observations by year")
	}
	defer rows.Close()

	var breakdown []YearBreakdown
	for rows.Next() {
		var y YearBreakdown
		if err := rows.Scan(&y.Year, &y.National, &y.State, &y.City); err != nil {
			return nil, eris.Wrap(err, "store: scan year breakdown")
		}
		breakdown = append(breakdown, y)
	}
	return breakdown, rows.Err()
}
