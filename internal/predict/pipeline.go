// Package predict wires the single-query path: geocode an address, encode
// features, and price them against the model boundary.
package predict

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/homelens/housepricer/internal/features"
	"github.com/homelens/housepricer/internal/scorer"
	"github.com/homelens/housepricer/pkg/geocode"
)

// NoMatchReason is returned to callers when an address has no usable
// geocoding result and scoring is refused.
const NoMatchReason = "no geocoding match"

// Prediction is the outcome of one query. When Found is false no price was
// computed and Reason says why. Price is a pointer so a genuine zero price
// still serializes instead of being dropped by omitempty.
type Prediction struct {
	Found    bool            `json:"found"`
	Price    *float64        `json:"predicted_price,omitempty"`
	Features map[string]any  `json:"features,omitempty"`
	Geo      *geocode.Result `json:"-"`
	Reason   string          `json:"reason,omitempty"`
}

// Pipeline runs geocode, normalize, encode, gate, score for one address.
type Pipeline struct {
	Geocoder geocode.Client
	Scorer   scorer.Scorer
}

// New creates a Pipeline.
func New(g geocode.Client, s scorer.Scorer) *Pipeline {
	return &Pipeline{Geocoder: g, Scorer: s}
}

// Predict prices one property. Invalid categorical input fails before any
// network call; a geocoding miss yields Found=false without invoking the
// scorer.
func (p *Pipeline) Predict(ctx context.Context, address string, attrs features.Attributes) (*Prediction, error) {
	if err := attrs.Validate(); err != nil {
		return nil, err
	}

	places, err := p.Geocoder.Search(ctx, address)
	if err != nil {
		return nil, eris.Wrap(err, "predict: geocode")
	}

	geo := geocode.Normalize(places)
	if !geo.Valid() {
		zap.L().Info("no geodata for address, refusing to score",
			zap.String("address", address),
		)
		return &Prediction{Found: false, Reason: NoMatchReason, Geo: &geo}, nil
	}

	vector, err := features.Encode(geo, attrs)
	if err != nil {
		return nil, err
	}

	price, err := p.Scorer.Score(ctx, vector)
	if err != nil {
		return nil, eris.Wrap(err, "predict: score")
	}

	zap.L().Info("prediction computed",
		zap.String("address", address),
		zap.Float64("price", price),
	)

	return &Prediction{
		Found:    true,
		Price:    &price,
		Features: featureMap(vector),
		Geo:      &geo,
	}, nil
}

// featureMap renders the vector as an ordered-by-column JSON-friendly map.
func featureMap(v features.Vector) map[string]any {
	m := make(map[string]any, len(features.Columns()))
	for _, c := range features.Columns() {
		m[c] = v.Get(c)
	}
	return m
}
