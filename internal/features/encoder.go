// Package features turns a normalized geocoding result plus caller-supplied
// property attributes into the fixed-schema numeric vector the price model
// consumes.
package features

import (
	"github.com/rotisserie/eris"

	"github.com/homelens/housepricer/pkg/geocode"
)

// Attributes are the caller-supplied categorical inputs for one property.
type Attributes struct {
	NewBuild  bool
	FlatType  string
	LeaseType string
}

// Validate rejects flat or lease types outside the closed vocabularies.
// Validation runs before any network call, so a bad request never costs a
// geocoding query.
func (a Attributes) Validate() error {
	if !contains(FlatTypes, a.FlatType) {
		return eris.Errorf("features: unknown flat type %q", a.FlatType)
	}
	if !contains(LeaseTypes, a.LeaseType) {
		return eris.Errorf("features: unknown lease type %q", a.LeaseType)
	}
	return nil
}

// Vector is an ordered feature row. Column order is fixed and must match the
// column order the scorer was trained on; construct it only through Encode.
type Vector struct {
	values map[string]float64
}

// Columns returns the fixed feature column order: the three numeric geodata
// fields, the new-build indicator, then one indicator per flat type, lease
// type, and category term.
func Columns() []string {
	cols := []string{"importance", "latitude", "longitude", "Non-Newbuild"}
	cols = append(cols, FlatTypes...)
	cols = append(cols, LeaseTypes...)
	cols = append(cols, CategoryTerms...)
	return cols
}

// Get returns the value for a named feature column.
func (v Vector) Get(name string) float64 {
	return v.values[name]
}

// Row returns the values in fixed column order, ready for the scorer.
func (v Vector) Row() []float64 {
	cols := Columns()
	row := make([]float64, len(cols))
	for i, c := range cols {
		row[i] = v.values[c]
	}
	return row
}

// Encode builds the feature vector for one property. Missing geodata (NaN)
// is copied through untouched: the decision to refuse scoring on missing
// coordinates belongs to the caller's validity gate, not the encoder.
func Encode(geo geocode.Result, attrs Attributes) (Vector, error) {
	if err := attrs.Validate(); err != nil {
		return Vector{}, err
	}

	values := make(map[string]float64, len(Columns()))
	values["importance"] = geo.Importance
	values["latitude"] = geo.Latitude
	values["longitude"] = geo.Longitude

	if attrs.NewBuild {
		values["Non-Newbuild"] = 0
	} else {
		values["Non-Newbuild"] = 1
	}

	for _, ft := range FlatTypes {
		values[ft] = indicator(ft == attrs.FlatType)
	}
	for _, lt := range LeaseTypes {
		values[lt] = indicator(lt == attrs.LeaseType)
	}
	for _, term := range CategoryTerms {
		values[term] = indicator(term == geo.Category || term == geo.Subcategory)
	}

	return Vector{values: values}, nil
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
