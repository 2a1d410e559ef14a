package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/carepages/salary-cli/internal/keywords"
	"github.com/carepages/salary-cli/internal/model"
	"github.com/carepages/salary-cli/internal/store"
)

var (
	lookupState string
	lookupCity  string
	lookupYear  int
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <profession>",
	Short: "Look up consolidated salary data",
	Long: `Resolves a curated profession ID (e.g. registered-nurse, ultrasound-technician)
to its best salary observation. Without --state or --city the national
figures are shown. --city takes "City, ST".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := storePool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		mapping := keywords.Default()
		if cfg.Keywords.MappingFile != "" {
			mapping, err = keywords.Load(cfg.Keywords.MappingFile)
			if err != nil {
				return err
			}
		}

		st := store.New(pool)
		locationID, scope, err := lookupScope(cmd, st)
		if err != nil {
			return err
		}

		year := cfg.Ingest.Year
		if lookupYear > 0 {
			year = lookupYear
		}

		obs, err := keywords.NewIndex(st, mapping).Resolve(ctx, args[0], locationID, year)
		if err != nil {
			return err
		}
		if obs == nil {
			fmt.Printf("no data for %s (%s, %d)\n", args[0], scope, year)
			return nil
		}

		printObservation(args[0], scope, obs)
		return nil
	},
}

func init() {
	lookupCmd.Flags().StringVar(&lookupState, "state", "", "two-letter state code")
	lookupCmd.Flags().StringVar(&lookupCity, "city", "", `metro area as "City, ST"`)
	lookupCmd.Flags().IntVar(&lookupYear, "year", 0, "survey year (default from config)")
	rootCmd.AddCommand(lookupCmd)
}

// lookupScope resolves the --state/--city flags into a location ID and a
// human-readable scope label. Nil location ID means national.
func lookupScope(cmd *cobra.Command, st *store.Store) (*string, string, error) {
	ctx := cmd.Context()

	switch {
	case lookupCity != "":
		city, state, ok := strings.Cut(lookupCity, ",")
		if !ok {
			return nil, "", eris.Errorf(`lookup: --city wants "City, ST", got %q`, lookupCity)
		}
		city = strings.TrimSpace(city)
		state = strings.ToUpper(strings.TrimSpace(state))
		loc, err := st.LocationByKey(ctx, city, state)
		if err != nil {
			return nil, "", err
		}
		if loc == nil {
			return nil, "", eris.Errorf("lookup: unknown metro area %q", lookupCity)
		}
		return &loc.ID, fmt.Sprintf("%s, %s", loc.City, loc.State), nil

	case lookupState != "":
		state := strings.ToUpper(strings.TrimSpace(lookupState))
		loc, err := st.LocationByKey(ctx, "", state)
		if err != nil {
			return nil, "", err
		}
		if loc == nil {
			return nil, "", eris.Errorf("lookup: unknown state %q", lookupState)
		}
		return &loc.ID, loc.StateName, nil

	default:
		return nil, "national", nil
	}
}

func printObservation(curatedID, scope string, obs *model.SalaryObservation) {
	p := message.NewPrinter(language.English)
	fmt.Printf("%s (%s, %d, source %s)\n", curatedID, scope, obs.Year, obs.Source)
	fmt.Printf("matched keyword: %s\n", obs.OccupationKeyword)
	if obs.EmploymentCount != nil {
		p.Printf("employment:      %d\n", *obs.EmploymentCount)
	}
	fmt.Printf("\n%-12s %10s %10s %10s %10s %10s\n", "", "p10", "p25", "median", "p75", "p90")
	fmt.Printf("%-12s %10s %10s %10s %10s %10s\n", "hourly",
		hourly(obs.HourlyP10), hourly(obs.HourlyP25), hourly(obs.HourlyMedian),
		hourly(obs.HourlyP75), hourly(obs.HourlyP90))
	fmt.Printf("%-12s %10s %10s %10s %10s %10s\n", "annual",
		money(obs.AnnualP10), money(obs.AnnualP25), money(obs.AnnualMedian),
		money(obs.AnnualP75), money(obs.AnnualP90))
}

func hourly(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func money(v *float64) string {
	if v == nil {
		return "N/A"
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf("$%d", int64(*v))
}
