package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/carepages/salary-cli/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store contents",
	Long:  "Summarizes the salary store: location counts by level and observation counts per survey year.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := storePool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		st := store.New(pool)

		var (
			totals    *store.Totals
			breakdown []store.YearBreakdown
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			totals, err = st.LocationTotals(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			breakdown, err = st.ObservationsByYear(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		p := message.NewPrinter(language.English)
		p.Printf("locations: %d states, %d metro areas\n\n", totals.StateLocations, totals.CityLocations)
		if len(breakdown) == 0 {
			p.Printf("no observations ingested yet\n")
			return nil
		}
		p.Printf("%-6s %12s %12s %12s\n", "year", "national", "state", "metro")
		for _, y := range breakdown {
			p.Printf("%-6d %12d %12d %12d\n", y.Year, y.National, y.State, y.City)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
