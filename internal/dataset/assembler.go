// Package dataset drives the scrape and geocoding pipeline across many
// listings and emits a fixed-column tabular dataset.
package dataset

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/homelens/housepricer/internal/scrape"
	"github.com/homelens/housepricer/pkg/geocode"
)

// ErrLengthMismatch means the per-listing series diverged in length. The
// batch must abort rather than emit a silently misaligned table.
var ErrLengthMismatch = eris.New("dataset: series length mismatch")

// Columns is the fixed dataset column order.
var Columns = []string{
	"addresses", "prices", "sale_dates",
	"flat_type", "lease_type", "build_status",
	"category", "subcategory", "importance", "longitude", "latitude",
}

// Dataset holds the assembled per-listing series. All series must be the
// same length before the dataset can be emitted.
type Dataset struct {
	RunID       string
	Addresses   []string
	Prices      []float64
	SaleDates   []time.Time
	FlatType    []string
	LeaseType   []string
	BuildStatus []string
	Category    []string
	Subcategory []string
	Importance  []float64
	Longitude   []float64
	Latitude    []float64
}

// Len returns the row count.
func (d *Dataset) Len() int {
	return len(d.Addresses)
}

// Check verifies every series has the same length.
func (d *Dataset) Check() error {
	n := len(d.Addresses)
	lengths := map[string]int{
		"prices":       len(d.Prices),
		"sale_dates":   len(d.SaleDates),
		"flat_type":    len(d.FlatType),
		"lease_type":   len(d.LeaseType),
		"build_status": len(d.BuildStatus),
		"category":     len(d.Category),
		"subcategory":  len(d.Subcategory),
		"importance":   len(d.Importance),
		"longitude":    len(d.Longitude),
		"latitude":     len(d.Latitude),
	}
	for name, l := range lengths {
		if l != n {
			return eris.Wrapf(ErrLengthMismatch, "addresses=%d %s=%d", n, name, l)
		}
	}
	return nil
}

// Assembler runs listings end-to-end: page fetch, parse, geocode, normalize.
type Assembler struct {
	fetcher  *scrape.Fetcher
	geocoder geocode.Client
}

// NewAssembler creates an Assembler. The geocode client should be configured
// with the batch extra delay; the assembler issues one query per listing.
func NewAssembler(f *scrape.Fetcher, g geocode.Client) *Assembler {
	return &Assembler{fetcher: f, geocoder: g}
}

// Run assembles one dataset row per listing across the page range
// [startPage, endPage], inclusive. Every series length is verified before
// the dataset is returned.
func (a *Assembler) Run(ctx context.Context, startPage, endPage int) (*Dataset, error) {
	if startPage < 1 || endPage < startPage {
		return nil, eris.Errorf("dataset: invalid page range %d-%d", startPage, endPage)
	}

	d := &Dataset{RunID: uuid.NewString()}
	log := zap.L().With(zap.String("run_id", d.RunID))
	log.Info("dataset run starting", zap.Int("start_page", startPage), zap.Int("end_page", endPage))

	for page := startPage; page <= endPage; page++ {
		html, err := a.fetcher.FetchPage(ctx, page)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: page %d", page)
		}

		listings, err := scrape.ParseListings(html)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: page %d", page)
		}

		for _, l := range listings {
			if err := a.appendListing(ctx, d, l); err != nil {
				return nil, err
			}
		}
		log.Debug("page assembled", zap.Int("page", page), zap.Int("listings", len(listings)))
	}

	if err := d.Check(); err != nil {
		return nil, err
	}

	log.Info("dataset run complete", zap.Int("rows", d.Len()))
	return d, nil
}

// appendListing geocodes one listing's address and appends a row to every
// series. A listing whose address has no geocoding match still produces a
// row, carrying the missing sentinel in the geodata columns.
func (a *Assembler) appendListing(ctx context.Context, d *Dataset, l scrape.Listing) error {
	places, err := a.geocoder.Search(ctx, l.Address)
	if err != nil {
		return eris.Wrapf(err, "dataset: geocode %q", l.Address)
	}
	geo := geocode.Normalize(places)

	d.Addresses = append(d.Addresses, l.Address)
	d.Prices = append(d.Prices, l.Price)
	d.SaleDates = append(d.SaleDates, l.SaleDate)
	d.FlatType = append(d.FlatType, l.FlatType)
	d.LeaseType = append(d.LeaseType, l.LeaseType)
	d.BuildStatus = append(d.BuildStatus, l.BuildStatus)
	d.Category = append(d.Category, geo.Category)
	d.Subcategory = append(d.Subcategory, geo.Subcategory)
	d.Importance = append(d.Importance, geo.Importance)
	d.Longitude = append(d.Longitude, geo.Longitude)
	d.Latitude = append(d.Latitude, geo.Latitude)
	return nil
}
