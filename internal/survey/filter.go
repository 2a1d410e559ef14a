package survey

import "strings"

// DefaultPrefixes covers the healthcare practitioner (29-) and healthcare
// support (31-) occupation groups.
var DefaultPrefixes = []string{"29-", "31-"}

// Filter decides which survey rows belong to the configured occupation
// domain. It runs before any location or observation work so out-of-domain
// rows cost nothing.
type Filter struct {
	prefixes          []string
	detailedOnly      bool
	crossIndustryOnly bool
}

// NewFilter builds a filter over occupation-code prefixes. Empty prefixes
// fall back to the healthcare defaults.
func NewFilter(prefixes []string, detailedOnly, crossIndustryOnly bool) *Filter {
	if len(prefixes) == 0 {
		prefixes = DefaultPrefixes
	}
	return &Filter{prefixes: prefixes, detailedOnly: detailedOnly, crossIndustryOnly: crossIndustryOnly}
}

// AllowCode reports whether an occupation code falls inside the domain.
func (f *Filter) AllowCode(code string) bool {
	code = strings.TrimSpace(code)
	for _, p := range f.prefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

// AllowRow applies the occupation-code filter plus the row-level gates:
// detailed occupations only (no summary groups) and the cross-industry
// aggregate only. Files that omit the gate columns pass the gates.
func (f *Filter) AllowRow(r Row) bool {
	if !f.AllowCode(r.Get(ColOccCode)) {
		return false
	}
	if f.detailedOnly {
		if g := r.Get(ColOGroup); g != "" && !strings.EqualFold(g, "detailed") {
			return false
		}
	}
	if f.crossIndustryOnly {
		if n := r.Get(ColNAICS); n != "" && n != "000000" {
			return false
		}
	}
	return true
}
