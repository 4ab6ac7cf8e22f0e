package dataset

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// WriteCSV persists the dataset as a delimited table with the fixed column
// header. Missing numeric values (NaN) and missing strings become empty
// cells.
func (d *Dataset) WriteCSV(path string) error {
	if err := d.Check(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "dataset: create csv")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(Columns); err != nil {
		return eris.Wrap(err, "dataset: write csv header")
	}

	for i := 0; i < d.Len(); i++ {
		row := []string{
			d.Addresses[i],
			formatFloat(d.Prices[i]),
			d.SaleDates[i].Format("2006-01-02"),
			d.FlatType[i],
			d.LeaseType[i],
			d.BuildStatus[i],
			d.Category[i],
			d.Subcategory[i],
			formatFloat(d.Importance[i]),
			formatFloat(d.Longitude[i]),
			formatFloat(d.Latitude[i]),
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "dataset: write csv row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "dataset: flush csv")
}

// record is one dataset row in the JSON interchange format. Missing numeric
// values serialize as null rather than a magic number.
type record struct {
	Address     string   `json:"address"`
	Price       float64  `json:"price"`
	SaleDate    string   `json:"sale_date"`
	FlatType    string   `json:"flat_type"`
	LeaseType   string   `json:"lease_type"`
	BuildStatus string   `json:"build_status"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Importance  *float64 `json:"importance"`
	Longitude   *float64 `json:"longitude"`
	Latitude    *float64 `json:"latitude"`
}

// WriteJSON persists the dataset as a JSON array of row records.
func (d *Dataset) WriteJSON(path string) error {
	if err := d.Check(); err != nil {
		return err
	}

	records := make([]record, d.Len())
	for i := range records {
		records[i] = record{
			Address:     d.Addresses[i],
			Price:       d.Prices[i],
			SaleDate:    d.SaleDates[i].Format(time.DateOnly),
			FlatType:    d.FlatType[i],
			LeaseType:   d.LeaseType[i],
			BuildStatus: d.BuildStatus[i],
			Category:    d.Category[i],
			Subcategory: d.Subcategory[i],
			Importance:  nanToNil(d.Importance[i]),
			Longitude:   nanToNil(d.Longitude[i]),
			Latitude:    nanToNil(d.Latitude[i]),
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return eris.Wrap(err, "dataset: marshal json")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "dataset: write json")
	}
	return nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nanToNil(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
