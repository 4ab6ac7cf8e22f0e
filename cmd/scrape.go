package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/homelens/housepricer/internal/dataset"
	"github.com/homelens/housepricer/internal/scrape"
)

var (
	scrapeStartPage int
	scrapeEndPage   int
	scrapeOut       string
)

// outputPaths resolves the CSV and JSON destinations. A non-empty --out base
// overrides the configured paths.
func outputPaths(out, csvPath, jsonPath string) (string, string) {
	if out == "" {
		return csvPath, jsonPath
	}
	return out + ".csv", out + ".json"
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape sold-price listings and assemble a training dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		geocoder, closeClients, err := buildGeocoder(true)
		if err != nil {
			return err
		}
		defer closeClients()

		fetcher := scrape.NewFetcher(scrape.FetcherOptions{
			PageURLTemplate: cfg.Scrape.PageURLTemplate,
			WorkDir:         cfg.Scrape.WorkDir,
			DelayMin:        time.Duration(cfg.Scrape.DelayMinSecs) * time.Second,
			DelayMax:        time.Duration(cfg.Scrape.DelayMaxSecs) * time.Second,
		})

		assembler := dataset.NewAssembler(fetcher, geocoder)
		d, err := assembler.Run(cmd.Context(), scrapeStartPage, scrapeEndPage)
		if err != nil {
			return err
		}

		csvPath, jsonPath := outputPaths(scrapeOut, cfg.Dataset.CSVPath, cfg.Dataset.JSONPath)
		if err := d.WriteCSV(csvPath); err != nil {
			return err
		}
		if err := d.WriteJSON(jsonPath); err != nil {
			return err
		}

		zap.L().Info("dataset persisted",
			zap.String("run_id", d.RunID),
			zap.Int("rows", d.Len()),
			zap.String("csv", csvPath),
			zap.String("json", jsonPath),
		)
		return nil
	},
}

func init() {
	scrapeCmd.Flags().IntVar(&scrapeStartPage, "start-page", 1, "first listing page")
	scrapeCmd.Flags().IntVar(&scrapeEndPage, "end-page", 1, "last listing page (inclusive)")
	scrapeCmd.Flags().StringVar(&scrapeOut, "out", "", "output base path, writes <out>.csv and <out>.json")
	rootCmd.AddCommand(scrapeCmd)
}
