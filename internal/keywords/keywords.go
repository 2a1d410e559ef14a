// Package keywords maps curated profession IDs to the raw survey keywords
// they consolidate, and resolves the best observation across them.
package keywords

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Mapping is curated profession ID -> survey occupation keywords, most
// specific first. Keywords are slugs, as the observation builder stores
// them.
type Mapping map[string][]string

// Default returns the built-in healthcare profession mapping. A YAML file
// loaded with Load replaces it wholesale.
func Default() Mapping {
	return Mapping{
		"registered-nurse":              {"registered-nurses", "registered-nurse"},
		"licensed-practical-nurse":      {"licensed-practical-and-licensed-vocational-nurses", "licensed-practical-nurse"},
		"nurse-practitioner":            {"nurse-practitioners", "nurse-practitioner"},
		"nursing-assistant":             {"nursing-assistants", "certified-nursing-assistant"},
		"medical-assistant":             {"medical-assistants", "medical-assistant"},
		"home-health-aide":              {"home-health-and-personal-care-aides", "home-health-aide"},
		"physical-therapist":            {"physical-therapists", "physical-therapist"},
		"physical-therapist-assistant":  {"physical-therapist-assistants", "physical-therapist-assistant"},
		"occupational-therapist":        {"occupational-therapists", "occupational-therapist"},
		"respiratory-therapist":         {"respiratory-therapists", "respiratory-therapist"},
		"radiologic-technologist":       {"radiologic-technologists-and-technicians", "radiologic-technologist"},
		"ultrasound-technician":         {"diagnostic-medical-sonographers", "ultrasound-technician"},
		"surgical-technologist":         {"surgical-technologists", "surgical-technologist"},
		"pharmacy-technician":           {"pharmacy-technicians", "pharmacy-technician"},
		"pharmacist":                    {"pharmacists", "pharmacist"},
		"dental-hygienist":              {"dental-hygienists", "dental-hygienist"},
		"dental-assistant":              {"dental-assistants", "dental-assistant"},
		"phlebotomist":                  {"phlebotomists", "phlebotomist"},
		"emt":                           {"emergency-medical-technicians", "paramedics", "emt"},
		"medical-laboratory-technician": {"clinical-laboratory-technologists-and-technicians", "medical-laboratory-technician"},
		"speech-language-pathologist":   {"speech-language-pathologists", "speech-language-pathologist"},
		"physician-assistant":           {"physician-assistants", "physician-assistant"},
	}
}

// Load reads a mapping from a YAML file. Every curated ID must carry at
// least one keyword.
func Load(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "keywords: read mapping file %s", path)
	}

	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "keywords: parse mapping file %s", path)
	}

	for id, kws := range m {
		if len(kws) == 0 {
			return nil, eris.Errorf("keywords: curated id %q has no keywords", id)
		}
	}
	return m, nil
}

// Keywords returns the survey keywords for a curated ID. An unknown ID
// falls back to trying the ID itself as a keyword.
func (m Mapping) Keywords(curatedID string) []string {
	if kws, ok := m[curatedID]; ok {
		return kws
	}
	return []string{curatedID}
}
