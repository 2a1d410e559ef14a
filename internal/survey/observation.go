package survey

import "github.com/carepages/salary-cli/internal/model"

// BuildObservation assembles a salary observation from a filtered survey
// row and a resolved location reference (nil for national scope). Each
// metric is parsed independently: one suppressed field never blocks the
// others. The ID is left empty for the upsert engine to assign.
func BuildObservation(r Row, locationID *string, year int, source string) model.SalaryObservation {
	return model.SalaryObservation{
		OccupationKeyword: Slugify(r.Get(ColOccTitle)),
		LocationID:        locationID,
		Year:              year,
		Source:            source,
		EmploymentCount:   Count(r.Get(ColTotEmp)),
		HourlyP10:         Number(r.Get(ColHourlyP10)),
		HourlyP25:         Number(r.Get(ColHourlyP25)),
		HourlyMedian:      Number(r.Get(ColHourlyMedian)),
		HourlyP75:         Number(r.Get(ColHourlyP75)),
		HourlyP90:         Number(r.Get(ColHourlyP90)),
		AnnualP10:         Number(r.Get(ColAnnualP10)),
		AnnualP25:         Number(r.Get(ColAnnualP25)),
		AnnualMedian:      Number(r.Get(ColAnnualMedian)),
		AnnualP75:         Number(r.Get(ColAnnualP75)),
		AnnualP90:         Number(r.Get(ColAnnualP90)),
	}
}
