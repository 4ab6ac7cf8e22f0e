package dataset

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homelens/housepricer/internal/scrape"
	"github.com/homelens/housepricer/pkg/geocode"
)

const listingPage = `<html><body>
<div class="listing">
	<strong class="street-details-head-row"><a>91 Dames Road, London, E7 0DW</a></strong>
	<strong class="street-details-price-row">&#163;425,000</strong>
	<div class="street-details-row">Terraced, Leasehold, Established Building</div>
	<table><tr class="sold_price_row"><td>&#163;425,000</td><td>3rd March 2019</td></tr></table>
</div>
<div class="listing">
	<strong class="street-details-head-row"><a>Unit 9, Nowhere Estate</a></strong>
	<strong class="street-details-price-row">&#163;198,500</strong>
	<div class="street-details-row">Freehold, New Building</div>
	<table><tr class="sold_price_row"><td>&#163;198,500</td><td>21st June 2019</td></tr></table>
</div>
</body></html>`

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()

	pageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, listingPage)
	}))
	t.Cleanup(pageSrv.Close)

	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.RawQuery, "Dames") {
			_, _ = io.WriteString(w, `[{"class":"building","type":"house","importance":0.4,"lat":"51.55","lon":"-0.02"}]`)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(geoSrv.Close)

	fetcher := scrape.NewFetcher(scrape.FetcherOptions{
		PageURLTemplate: pageSrv.URL + "/house-prices/london?page=%d",
		WorkDir:         t.TempDir(),
	})
	geocoder := geocode.NewClient(
		geocode.WithBaseURL(geoSrv.URL),
		geocode.WithDelay(0, 0),
		geocode.WithRateLimit(1000),
	)
	return NewAssembler(fetcher, geocoder)
}

func TestRun_AssemblesRowsWithEqualSeriesLengths(t *testing.T) {
	a := newTestAssembler(t)

	d, err := a.Run(context.Background(), 1, 1)
	require.NoError(t, err)
	require.NoError(t, d.Check())
	require.Equal(t, 2, d.Len())
	assert.NotEmpty(t, d.RunID)

	// First listing: full characteristics, geocoded.
	assert.Equal(t, "91 Dames Road, London, E7 0DW", d.Addresses[0])
	assert.InDelta(t, 425000, d.Prices[0], 1e-9)
	assert.Equal(t, time.Date(2019, time.March, 3, 0, 0, 0, 0, time.UTC), d.SaleDates[0])
	assert.Equal(t, "Terraced", d.FlatType[0])
	assert.Equal(t, "building", d.Category[0])
	assert.Equal(t, "house", d.Subcategory[0])
	assert.InDelta(t, 51.55, d.Latitude[0], 1e-9)

	// Second listing: flat type absent in source, address unmatched.
	assert.Empty(t, d.FlatType[1])
	assert.Equal(t, "Freehold", d.LeaseType[1])
	assert.Equal(t, "New Building", d.BuildStatus[1])
	assert.True(t, math.IsNaN(d.Latitude[1]))
	assert.True(t, math.IsNaN(d.Importance[1]))
	assert.Empty(t, d.Category[1])
}

func TestRun_InvalidPageRange(t *testing.T) {
	a := newTestAssembler(t)

	_, err := a.Run(context.Background(), 3, 1)
	assert.Error(t, err)
}

func TestCheck_LengthMismatchFailsLoudly(t *testing.T) {
	d := &Dataset{
		Addresses: []string{"a", "b"},
		Prices:    []float64{1},
	}

	err := d.Check()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestWriteCSV(t *testing.T) {
	a := newTestAssembler(t)
	d, err := a.Run(context.Background(), 1, 1)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dataset.csv")
	require.NoError(t, d.WriteCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, strings.Join(Columns, ","), lines[0])
	assert.Contains(t, lines[1], "91 Dames Road")
	assert.Contains(t, lines[1], "51.55")
	// Missing geodata becomes empty cells, not NaN text.
	assert.NotContains(t, lines[2], "NaN")
}

func TestWriteJSON(t *testing.T) {
	a := newTestAssembler(t)
	d, err := a.Run(context.Background(), 1, 1)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, d.WriteJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)

	assert.Equal(t, "building", records[0]["category"])
	assert.InDelta(t, 0.4, records[0]["importance"].(float64), 1e-9)
	assert.Nil(t, records[1]["importance"], "missing geodata serializes as null")
	assert.Equal(t, "", records[1]["flat_type"])
}

func TestWrite_RejectsMisalignedDataset(t *testing.T) {
	d := &Dataset{Addresses: []string{"a"}}

	assert.ErrorIs(t, d.WriteCSV(filepath.Join(t.TempDir(), "x.csv")), ErrLengthMismatch)
	assert.ErrorIs(t, d.WriteJSON(filepath.Join(t.TempDir(), "x.json")), ErrLengthMismatch)
}
