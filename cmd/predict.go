package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/homelens/housepricer/internal/features"
	"github.com/homelens/housepricer/internal/predict"
)

var (
	predictAddress   string
	predictNewBuild  bool
	predictFlatType  string
	predictLeaseType string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the price of a single property",
	RunE: func(cmd *cobra.Command, args []string) error {
		attrs := features.Attributes{
			NewBuild:  predictNewBuild,
			FlatType:  predictFlatType,
			LeaseType: predictLeaseType,
		}
		// Reject bad categorical input before opening any client.
		if err := attrs.Validate(); err != nil {
			return err
		}

		geocoder, closeClients, err := buildGeocoder(false)
		if err != nil {
			return err
		}
		defer closeClients()

		pipeline := predict.New(geocoder, buildScorer())
		pred, err := pipeline.Predict(cmd.Context(), predictAddress, attrs)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pred)
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictAddress, "address", "", "property address (required)")
	predictCmd.Flags().BoolVar(&predictNewBuild, "new-build", false, "property is a new build")
	predictCmd.Flags().StringVar(&predictFlatType, "flat-type", "", "one of: Detached, Flat, Semi Detached, Terraced")
	predictCmd.Flags().StringVar(&predictLeaseType, "lease-type", "", "one of: Leasehold, Freehold")
	_ = predictCmd.MarkFlagRequired("address")
	_ = predictCmd.MarkFlagRequired("flat-type")
	_ = predictCmd.MarkFlagRequired("lease-type")
	rootCmd.AddCommand(predictCmd)
}
