package main

import (
	"github.com/spf13/cobra"

	"github.com/carepages/salary-cli/internal/survey"
)

var ingestSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed fixture salary data",
	Long:  "Pushes a small set of hand-authored survey rows through the full pipeline, for local development and smoke tests.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("ingest"); err != nil {
			return err
		}

		pool, err := storePool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		runner := newRunner(pool)
		runner.BatchSize = 0 // fixtures are few; write row by row

		src := survey.NewSliceSource(seedHeader, seedRecords)
		sum, err := runner.Run(ctx, src)
		if err != nil {
			return err
		}

		printSummary(sum)
		return nil
	},
}

func init() {
	ingestCmd.AddCommand(ingestSeedCmd)
}

// Fixture rows mirror the survey layout: sonographers and registered
// nurses at national, state, and metro level.
var seedHeader = []string{
	"AREA_TYPE", "AREA_TITLE", "PRIM_STATE", "OCC_CODE", "OCC_TITLE",
	"O_GROUP", "NAICS", "TOT_EMP",
	"H_PCT10", "H_PCT25", "H_MEDIAN", "H_PCT75", "H_PCT90",
	"A_PCT10", "A_PCT25", "A_MEDIAN", "A_PCT75", "A_PCT90",
}

var seedRecords = [][]string{
	{"1", "U.S.", "US", "29-2032", "Diagnostic Medical Sonographers", "detailed", "000000", "85000",
		"28.50", "32.00", "38.00", "45.00", "52.00",
		"59280", "66560", "79040", "93600", "108160"},
	{"2", "California", "CA", "29-2032", "Diagnostic Medical Sonographers", "detailed", "000000", "12000",
		"35.00", "40.00", "52.00", "62.00", "75.00",
		"72800", "83200", "108160", "128960", "156000"},
	{"4", "Los Angeles-Long Beach-Anaheim, CA", "CA", "29-2032", "Diagnostic Medical Sonographers", "detailed", "000000", "4500",
		"38.00", "45.00", "55.00", "65.00", "78.00",
		"79040", "93600", "114400", "135200", "162240"},
	{"1", "U.S.", "US", "29-1141", "Registered Nurses", "detailed", "000000", "3175390",
		"30.69", "36.00", "43.72", "52.37", "63.36",
		"63720", "75990", "90010", "109000", "132680"},
	{"2", "Alabama", "AL", "29-1141", "Registered Nurses", "detailed", "000000", "49380",
		"24.00", "27.50", "31.77", "37.00", "43.50",
		"49890", "57240", "66070", "76900", "90470"},
	{"4", "Birmingham-Hoover, AL", "AL", "29-1141", "Registered Nurses", "detailed", "000000", "13290",
		"25.00", "28.70", "33.20", "38.90", "45.80",
		"52000", "59700", "69050", "80900", "95260"},
}
