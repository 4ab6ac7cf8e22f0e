// Package scorer is the boundary to the pre-trained price model. The model
// itself (clustering plus regression) lives behind a serving endpoint and is
// consumed here as an opaque scoring function.
package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/homelens/housepricer/internal/features"
)

// Scorer prices a single feature vector.
type Scorer interface {
	Score(ctx context.Context, v features.Vector) (float64, error)
}

// HTTPScorer calls a model-serving endpoint with the fixed-column feature
// row and returns its price prediction.
type HTTPScorer struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPScorer creates a scorer client for the given endpoint.
func NewHTTPScorer(baseURL string, timeout time.Duration) *HTTPScorer {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPScorer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type scoreRequest struct {
	Columns []string  `json:"columns"`
	Row     []float64 `json:"row"`
}

type scoreResponse struct {
	Price float64 `json:"price"`
}

// Score posts the feature row to the model server. The columns accompany
// the row so a column-order mismatch fails on the server instead of
// silently mispricing.
func (s *HTTPScorer) Score(ctx context.Context, v features.Vector) (float64, error) {
	payload, err := json.Marshal(scoreRequest{
		Columns: features.Columns(),
		Row:     v.Row(),
	})
	if err != nil {
		return 0, eris.Wrap(err, "scorer: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/score", bytes.NewReader(payload))
	if err != nil {
		return 0, eris.Wrap(err, "scorer: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, eris.Wrap(err, "scorer: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return 0, eris.Errorf("scorer: server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, eris.Wrap(err, "scorer: read body")
	}

	var sr scoreResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return 0, eris.Wrap(err, "scorer: parse response")
	}
	return sr.Price, nil
}
