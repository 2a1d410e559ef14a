// Package model defines the persistent records the pipeline produces:
// locations and salary observations.
package model

// NationalKey is the sentinel the store folds a missing location reference
// into, so national observations participate in the same unique index as
// located ones.
const NationalKey = "national"

// Location is a geographic scope salary observations attach to. City == ""
// marks the state-level record; the national scope has no location row at
// all. (City, State) is the natural key.
type Location struct {
	ID        string `json:"id"`
	City      string `json:"city"`
	State     string `json:"state"`
	StateName string `json:"state_name"`
	Slug      string `json:"slug"`
}

// IsCityLevel reports whether the location is a metro-area record rather
// than a state-level one.
func (l Location) IsCityLevel() bool {
	return l.City != ""
}

// Key returns the natural key of the location.
func (l Location) Key() string {
	return LocationKey(l.City, l.State)
}

// LocationKey builds the natural key for a (city, state) pair. The empty
// city is a valid component: "|AL" is Alabama's state-level record.
func LocationKey(city, state string) string {
	return city + "|" + state
}

// SalaryObservation is one wage measurement: an occupation keyword at a
// geographic scope for a survey year. A nil LocationID means national
// scope. Nil metric pointers mean the survey suppressed that estimate;
// they are never zero.
type SalaryObservation struct {
	ID                string   `json:"id"`
	OccupationKeyword string   `json:"occupation_keyword"`
	LocationID        *string  `json:"location_id"`
	Year              int      `json:"year"`
	Source            string   `json:"source"`
	EmploymentCount   *int64   `json:"employment_count"`
	HourlyP10         *float64 `json:"hourly_p10"`
	HourlyP25         *float64 `json:"hourly_p25"`
	HourlyMedian      *float64 `json:"hourly_median"`
	HourlyP75         *float64 `json:"hourly_p75"`
	HourlyP90         *float64 `json:"hourly_p90"`
	AnnualP10         *float64 `json:"annual_p10"`
	AnnualP25         *float64 `json:"annual_p25"`
	AnnualMedian      *float64 `json:"annual_median"`
	AnnualP75         *float64 `json:"annual_p75"`
	AnnualP90         *float64 `json:"annual_p90"`
}

// ObservationKey folds a nullable location reference into the sentinel
// key the store indexes on.
func ObservationKey(locationID *string) string {
	if locationID == nil {
		return NationalKey
	}
	return *locationID
}
