package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homelens/housepricer/internal/predict"
	"github.com/homelens/housepricer/internal/scorer"
	"github.com/homelens/housepricer/pkg/geocode"
)

func newTestHandler(t *testing.T, geoBody string) http.Handler {
	t.Helper()

	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, geoBody)
	}))
	t.Cleanup(geoSrv.Close)

	scoreSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"price": 425000}`)
	}))
	t.Cleanup(scoreSrv.Close)

	g := geocode.NewClient(
		geocode.WithBaseURL(geoSrv.URL),
		geocode.WithDelay(0, 0),
		geocode.WithRateLimit(1000),
	)
	return newAPIHandler(predict.New(g, scorer.NewHTTPScorer(scoreSrv.URL, 0)))
}

func TestAPIHandler_Health(t *testing.T) {
	h := newTestHandler(t, `[]`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAPIHandler_PredictFound(t *testing.T) {
	h := newTestHandler(t,
		`[{"class":"building","type":"house","importance":0.4,"lat":"51.55","lon":"-0.02"}]`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api?address=91+Dames+Road,+London&flat_type=Terraced&lease_type=Leasehold", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Found    bool               `json:"found"`
		Price    float64            `json:"predicted_price"`
		Features map[string]float64 `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	assert.InDelta(t, 425000, resp.Price, 1e-9)
	assert.Equal(t, 1.0, resp.Features["Terraced"])
	assert.Equal(t, 1.0, resp.Features["Non-Newbuild"])
}

func TestAPIHandler_NoGeocodingMatch(t *testing.T) {
	h := newTestHandler(t, `[]`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api?address=1+Nowhere+Lane&flat_type=Flat&lease_type=Freehold", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Found  bool   `json:"found"`
		Reason string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Found)
	assert.Equal(t, predict.NoMatchReason, resp.Reason)
}

func TestAPIHandler_BadRequests(t *testing.T) {
	h := newTestHandler(t, `[]`)

	tests := []struct {
		name string
		url  string
	}{
		{"missing address", "/api?flat_type=Flat&lease_type=Freehold"},
		{"invalid flat type", "/api?address=x&flat_type=Castle&lease_type=Freehold"},
		{"invalid lease type", "/api?address=x&flat_type=Flat&lease_type=Rented"},
		{"invalid new_build", "/api?address=x&flat_type=Flat&lease_type=Freehold&new_build=maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAPIHandler_URLEncodedFlatType(t *testing.T) {
	h := newTestHandler(t,
		`[{"class":"building","type":"house","importance":0.4,"lat":"51.55","lon":"-0.02"}]`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api?address=x&flat_type=Semi%20Detached&lease_type=Freehold", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Found    bool               `json:"found"`
		Features map[string]float64 `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	assert.Equal(t, 1.0, resp.Features["Semi Detached"])
}
