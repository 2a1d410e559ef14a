package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/carepages/salary-cli/internal/fetcher"
	"github.com/carepages/salary-cli/internal/ingest"
	"github.com/carepages/salary-cli/internal/survey"
)

var (
	runFile   string
	runURL    string
	runSheet  string
	runYear   int
	runSource string
)

var ingestRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Ingest a survey file",
	Long:  "Streams a wage-survey workbook (XLSX or CSV) through the ingestion pipeline. Rerunning against the same survey year updates observations in place.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if runFile == "" && runURL == "" {
			return eris.New("ingest run: --file or --url is required")
		}
		if runYear > 0 {
			cfg.Ingest.Year = runYear
		}
		if runSource != "" {
			cfg.Ingest.Source = runSource
		}
		if err := cfg.Validate("ingest"); err != nil {
			return err
		}

		pool, err := storePool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		path := runFile
		if runURL != "" {
			if err := os.MkdirAll(cfg.Ingest.TempDir, 0o755); err != nil {
				return eris.Wrapf(err, "ingest run: create temp dir %s", cfg.Ingest.TempDir)
			}
			path = filepath.Join(cfg.Ingest.TempDir, filepath.Base(runURL))

			f := fetcher.NewHTTP(time.Duration(cfg.Ingest.DownloadTimeoutSecs)*time.Second, "salary-cli/1.0")
			zap.L().Info("downloading survey file", zap.String("url", runURL))
			if _, err := f.DownloadToFile(ctx, runURL, path); err != nil {
				return err
			}
			defer os.Remove(path) //nolint:errcheck
		}

		sheet := runSheet
		if sheet == "" {
			sheet = cfg.Ingest.Sheet
		}
		src, err := openSource(path, sheet)
		if err != nil {
			return err
		}
		defer src.Close() //nolint:errcheck

		runLog := ingest.NewRunLog(pool)
		runID, err := runLog.Start(ctx, cfg.Ingest.Source, cfg.Ingest.Year)
		if err != nil {
			return err
		}

		sum, err := newRunner(pool).Run(ctx, src)
		if err != nil {
			if logErr := runLog.Fail(ctx, runID, err.Error()); logErr != nil {
				zap.L().Error("failed to record run failure", zap.Error(logErr))
			}
			return err
		}
		if err := runLog.Complete(ctx, runID, sum); err != nil {
			zap.L().Error("failed to record run completion", zap.Error(err))
		}

		printSummary(sum)
		return nil
	},
}

func init() {
	ingestRunCmd.Flags().StringVar(&runFile, "file", "", "path to the survey workbook (.xlsx, .csv, .txt)")
	ingestRunCmd.Flags().StringVar(&runURL, "url", "", "download the survey workbook from this URL first")
	ingestRunCmd.Flags().StringVar(&runSheet, "sheet", "", "workbook sheet name (default: first sheet)")
	ingestRunCmd.Flags().IntVar(&runYear, "year", 0, "survey year (default from config)")
	ingestRunCmd.Flags().StringVar(&runSource, "source", "", "source tag recorded on observations (default from config)")
	ingestCmd.AddCommand(ingestRunCmd)
}

// openSource picks a row source by file extension.
func openSource(path, sheet string) (survey.Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return survey.OpenCSV(path)
	default:
		return survey.OpenXLSX(path, sheet)
	}
}

func printSummary(sum *ingest.Summary) {
	p := message.NewPrinter(language.English)
	p.Printf("rows seen:          %d\n", sum.RowsSeen)
	p.Printf("filtered out:       %d\n", sum.FilteredOut)
	p.Printf("unsupported areas:  %d\n", sum.Unsupported)
	p.Printf("upserted:           %d\n", sum.Upserted)
	p.Printf("failed:             %d\n", sum.Failed)
	p.Printf("locations created:  %d\n", sum.LocationsCreated)
	fmt.Printf("elapsed:            %s\n", sum.Elapsed.Round(time.Millisecond))
}
