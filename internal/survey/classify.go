package survey

import "strings"

// Area-type codes used by the survey. Other codes (nonmetropolitan areas,
// territories-as-states vintage quirks) are out of scope and classify as
// unsupported.
const (
	areaTypeNational = "1"
	areaTypeState    = "2"
	areaTypeMetro    = "4"
)

// Level is the geographic granularity of a survey row.
type Level int

const (
	LevelUnsupported Level = iota
	LevelNational
	LevelState
	LevelMetro
)

func (l Level) String() string {
	switch l {
	case LevelNational:
		return "national"
	case LevelState:
		return "state"
	case LevelMetro:
		return "metro"
	default:
		return "unsupported"
	}
}

// Classification is the outcome of classifying a survey row's area fields.
// State-level classifications carry an empty City; National carries no
// location fields at all.
type Classification struct {
	Level     Level
	City      string
	State     string
	StateName string
}

// Classify derives the geographic scope from the area-type code, area
// title, and primary-state code.
//
// Metro titles look like "Birmingham-Hoover, AL" or
// "New York-Newark-Jersey City, NY-NJ-PA": the text before the first comma
// is the city, and multi-state metros are attributed to the primary state.
// A title with no comma is taken whole as the city name; title formatting
// has not been consistent across survey vintages.
func Classify(areaType, areaTitle, primState string) Classification {
	title := strings.TrimSpace(areaTitle)
	state := strings.ToUpper(strings.TrimSpace(primState))

	switch strings.TrimSpace(areaType) {
	case areaTypeNational:
		return Classification{Level: LevelNational}
	case areaTypeState:
		return Classification{Level: LevelState, State: state, StateName: title}
	case areaTypeMetro:
		city := title
		if i := strings.Index(title, ","); i >= 0 {
			city = strings.TrimSpace(title[:i])
		}
		return Classification{Level: LevelMetro, City: city, State: state, StateName: StateName(state)}
	default:
		return Classification{Level: LevelUnsupported}
	}
}

// Key returns the registry cache key for a state or metro classification.
func (c Classification) Key() string {
	return c.City + "|" + c.State
}

// Slug returns the canonical URL slug for the location this classification
// resolves to: the full state name for state-level rows, "<city>-<state>"
// for metro rows.
func (c Classification) Slug() string {
	if c.Level == LevelState {
		return Slugify(c.StateName)
	}
	return Slugify(c.City + "-" + c.State)
}

// Slugify lower-cases s and collapses every run of non-alphanumeric
// characters into a single hyphen, with no leading or trailing hyphen.
// Applying it twice yields the same result.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if b.Len() > 0 && !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming",
	"DC": "District of Columbia", "PR": "Puerto Rico", "GU": "Guam", "VI": "Virgin Islands",
}

// StateName returns the full name for a postal code, or the code itself
// when unknown.
func StateName(code string) string {
	if name, ok := stateNames[code]; ok {
		return name
	}
	return code
}
