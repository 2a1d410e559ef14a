package survey

import "strings"

// Column names consumed from the survey file, normalized to lower case.
// Survey vintages differ in header casing; matching is case-insensitive.
const (
	ColAreaType  = "area_type"
	ColAreaTitle = "area_title"
	ColPrimState = "prim_state"
	ColOccCode   = "occ_code"
	ColOccTitle  = "occ_title"
	ColOGroup    = "o_group"
	ColNAICS     = "naics"
	ColTotEmp    = "tot_emp"

	ColHourlyP10    = "h_pct10"
	ColHourlyP25    = "h_pct25"
	ColHourlyMedian = "h_median"
	ColHourlyP75    = "h_pct75"
	ColHourlyP90    = "h_pct90"
	ColAnnualP10    = "a_pct10"
	ColAnnualP25    = "a_pct25"
	ColAnnualMedian = "a_median"
	ColAnnualP75    = "a_pct75"
	ColAnnualP90    = "a_pct90"
)

// Header maps normalized column names to their position in a record.
type Header map[string]int

// MapHeader builds a Header from the first row of a survey file.
func MapHeader(cols []string) Header {
	h := make(Header, len(cols))
	for i, c := range cols {
		h[strings.ToLower(strings.TrimSpace(c))] = i
	}
	return h
}

// Row is one survey record with cell access by column name.
type Row struct {
	header Header
	record []string
}

// NewRow binds a record to its file's header.
func NewRow(h Header, record []string) Row {
	return Row{header: h, record: record}
}

// Get returns the trimmed cell value for a column, or "" when the column
// is absent from the file or the record is short.
func (r Row) Get(col string) string {
	idx, ok := r.header[col]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}
