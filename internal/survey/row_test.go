package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapHeader_CaseInsensitive(t *testing.T) {
	h := MapHeader([]string{"AREA_TYPE", " Occ_Code ", "h_median"})
	assert.Equal(t, 0, h[ColAreaType])
	assert.Equal(t, 1, h[ColOccCode])
	assert.Equal(t, 2, h[ColHourlyMedian])
}

func TestRowGet(t *testing.T) {
	h := MapHeader([]string{"OCC_CODE", "OCC_TITLE", "TOT_EMP"})
	r := NewRow(h, []string{"29-1141", " Registered Nurses ", "3,175,390"})

	assert.Equal(t, "29-1141", r.Get(ColOccCode))
	assert.Equal(t, "Registered Nurses", r.Get(ColOccTitle))
	assert.Equal(t, "3,175,390", r.Get(ColTotEmp))
}

func TestRowGet_MissingColumn(t *testing.T) {
	h := MapHeader([]string{"OCC_CODE"})
	r := NewRow(h, []string{"29-1141"})
	assert.Equal(t, "", r.Get(ColNAICS))
}

func TestRowGet_ShortRecord(t *testing.T) {
	h := MapHeader([]string{"OCC_CODE", "OCC_TITLE"})
	r := NewRow(h, []string{"29-1141"})
	assert.Equal(t, "", r.Get(ColOccTitle))
}
