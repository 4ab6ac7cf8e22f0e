package geocode

import (
	"math"
	"strconv"
)

// Result is the normalized attribute tuple extracted from the top-ranked
// search result. When the service returned nothing, or the top result is
// missing an expected field, Found is false and every numeric field is NaN:
// a sentinel distinct from any valid coordinate or importance score.
type Result struct {
	Category    string
	Subcategory string
	Importance  float64
	Longitude   float64
	Latitude    float64
	Found       bool
}

// Valid reports whether the result carries usable geodata. Callers must
// check this before scoring; predicting from missing coordinates is a
// defined failure, not a best-effort guess.
func (r Result) Valid() bool {
	return r.Found
}

// Normalize extracts the fixed attribute tuple from a raw result list. Only
// the first result is consulted: the service's own ranking is trusted as-is.
// A top result missing any of the five expected fields degrades the whole
// tuple to the missing sentinel. Normalize is pure and total; it never fails
// for any well-formed input.
func Normalize(places []Place) Result {
	if len(places) == 0 {
		return missingResult()
	}

	top := places[0]
	if top.Class == nil || top.Type == nil || top.Importance == nil {
		return missingResult()
	}
	lat, err := strconv.ParseFloat(top.Lat, 64)
	if err != nil {
		return missingResult()
	}
	lon, err := strconv.ParseFloat(top.Lon, 64)
	if err != nil {
		return missingResult()
	}

	return Result{
		Category:    *top.Class,
		Subcategory: *top.Type,
		Importance:  *top.Importance,
		Longitude:   lon,
		Latitude:    lat,
		Found:       true,
	}
}

func missingResult() Result {
	nan := math.NaN()
	return Result{
		Importance: nan,
		Longitude:  nan,
		Latitude:   nan,
	}
}
