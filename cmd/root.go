package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/homelens/housepricer/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "housepricer",
	Short: "House price prediction pipeline",
	Long:  "Geocodes property addresses via OpenStreetMap, encodes fixed-schema feature vectors, scores them against a pre-trained price model, and assembles training datasets from scraped sold-price listings.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
