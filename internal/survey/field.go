// Package survey holds the pure row-level components of the ingestion
// pipeline: field parsing, header mapping, geographic classification,
// occupation filtering, and observation construction.
package survey

import (
	"math"
	"strconv"
	"strings"
)

// The survey publishes sentinel tokens instead of numbers when an estimate
// is unavailable: "*" and "**" for suppressed estimates, "#" for wages
// above the top-coded threshold. A suppressed value parses to nil, never
// to zero.

// Number parses a numeric cell, returning nil when the value is missing,
// a suppression sentinel, or unparseable.
func Number(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" || strings.ContainsAny(s, "*#") {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Count parses an integer cell such as total employment.
func Count(raw string) *int64 {
	v := Number(raw)
	if v == nil {
		return nil
	}
	n := int64(math.Round(*v))
	return &n
}

// Text returns the trimmed cell value. Empty is a valid text value,
// distinct from a suppressed numeric field.
func Text(raw string) string {
	return strings.TrimSpace(raw)
}
