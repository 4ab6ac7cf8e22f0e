// Package geocode provides free-text address geocoding via a Nominatim-style
// OpenStreetMap search API, with rate limiting and an append-only audit log.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Nominatim endpoint.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// defaultUserAgent is what the service expects from a polite browser-like
// caller. Nominatim blocks empty or default Go user agents.
const defaultUserAgent = "Mozilla/5.0"

// Client geocodes a free-text address into ranked search results.
type Client interface {
	// Search returns the raw ranked result list for an address. A service
	// that throttles (429) or errors yields an empty list, not an error:
	// missing geodata is a first-class outcome the caller gates on.
	Search(ctx context.Context, address string) ([]Place, error)
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithBaseURL overrides the Nominatim endpoint (used by tests and mirrors).
func WithBaseURL(base string) Option {
	return func(g *geocoder) {
		g.baseURL = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithRateLimit caps requests per second on top of the courtesy delay.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		g.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithDelay sets the randomized courtesy delay applied before every request.
// The public service blocks aggressive callers, so the default is 1-3s.
func WithDelay(min, max time.Duration) Option {
	return func(g *geocoder) {
		g.delayMin = min
		g.delayMax = max
	}
}

// WithExtraDelay adds a fixed delay on top of the randomized one. Batch
// scrapes use this to stay further below the service's abuse threshold.
func WithExtraDelay(d time.Duration) Option {
	return func(g *geocoder) {
		g.extraDelay = d
	}
}

// WithAuditLog persists every raw response (success or empty) to an
// append-only sink for forensic replay of long batch runs.
func WithAuditLog(a AuditLog) Option {
	return func(g *geocoder) {
		g.audit = a
	}
}

// WithCache enables the SQLite result cache, keyed by normalized address.
func WithCache(c *Cache) Option {
	return func(g *geocoder) {
		g.cache = c
	}
}

type geocoder struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	delayMin   time.Duration
	delayMax   time.Duration
	extraDelay time.Duration
	audit      AuditLog
	cache      *Cache
}

// NewClient creates a geocoding Client with the given options.
func NewClient(opts ...Option) Client {
	g := &geocoder{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		userAgent:  defaultUserAgent,
		limiter:    rate.NewLimiter(1, 1),
		delayMin:   1 * time.Second,
		delayMax:   3 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// QueryURL builds the service query for an address: the address is
// percent-encoded and wrapped in quotes inside the search template.
func QueryURL(baseURL, address string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(address), "+", "%20")
	return fmt.Sprintf("%s/search?q=%%22%s%%22&format=json", strings.TrimRight(baseURL, "/"), encoded)
}

// Search queries the service for an address, persisting the raw response to
// the audit log. Throttling and HTTP errors degrade to an empty result list.
func (g *geocoder) Search(ctx context.Context, address string) ([]Place, error) {
	if g.cache != nil {
		if places, ok, err := g.cache.Get(ctx, address); err != nil {
			zap.L().Warn("geocode: cache lookup failed", zap.Error(err))
		} else if ok {
			return places, nil
		}
	}

	if err := g.pause(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: pause")
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: rate limit")
	}

	reqURL := QueryURL(g.baseURL, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: build request")
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusTooManyRequests {
		zap.L().Warn("geocode: throttled by service, degrading to empty result",
			zap.String("address", address),
		)
		return g.record(address, nil)
	}
	if resp.StatusCode != http.StatusOK {
		zap.L().Warn("geocode: service error, degrading to empty result",
			zap.String("address", address),
			zap.Int("status", resp.StatusCode),
		)
		return g.record(address, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: read body")
	}

	var places []Place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, eris.Wrap(err, "geocode: parse response")
	}

	return g.record(address, places)
}

// record appends the response to the audit log and cache before returning it.
// A nil slice is recorded as an explicit empty-result marker.
func (g *geocoder) record(address string, places []Place) ([]Place, error) {
	if places == nil {
		places = []Place{}
	}
	if g.audit != nil {
		if err := g.audit.Append(places); err != nil {
			return nil, eris.Wrap(err, "geocode: audit append")
		}
	}
	if g.cache != nil {
		if err := g.cache.Put(context.Background(), address, places); err != nil {
			zap.L().Warn("geocode: cache store failed", zap.Error(err))
		}
	}
	return places, nil
}

// pause sleeps for the randomized courtesy delay plus any fixed extra delay,
// honoring context cancellation.
func (g *geocoder) pause(ctx context.Context) error {
	d := g.delayMin
	if g.delayMax > g.delayMin {
		d += rand.N(g.delayMax - g.delayMin)
	}
	d += g.extraDelay
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
