package keywords

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/carepages/salary-cli/internal/model"
	"github.com/carepages/salary-cli/internal/store"
)

// Index resolves curated profession IDs to salary observations through the
// keyword mapping. When several mapped keywords have data at the same
// scope, the one with the largest survey sample wins.
type Index struct {
	store   *store.Store
	mapping Mapping
}

// NewIndex builds an index over the store and a mapping.
func NewIndex(st *store.Store, m Mapping) *Index {
	if m == nil {
		m = Default()
	}
	return &Index{store: st, mapping: m}
}

// Resolve returns the best observation for a curated profession at the
// given scope and year, or nil when no mapped keyword has data. Missing
// data is not an error.
func (ix *Index) Resolve(ctx context.Context, curatedID string, locationID *string, year int) (*model.SalaryObservation, error) {
	kws := ix.mapping.Keywords(curatedID)
	obs, err := ix.store.BestObservation(ctx, kws, locationID, year)
	if err != nil {
		return nil, eris.Wrapf(err, "keywords: resolve %q", curatedID)
	}
	return obs, nil
}
