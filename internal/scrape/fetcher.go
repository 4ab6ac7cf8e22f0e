// Package scrape fetches and parses paginated sold-price listing pages.
package scrape

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FetcherOptions configures the page fetcher.
type FetcherOptions struct {
	// PageURLTemplate must contain one %d verb for the page number.
	PageURLTemplate string
	// WorkDir is where staged page HTML lives between fetch and parse.
	WorkDir   string
	UserAgent string
	Timeout   time.Duration
	// DelayMin/DelayMax bound the randomized per-request courtesy delay.
	DelayMin time.Duration
	DelayMax time.Duration
}

// Fetcher downloads listing pages one at a time, staging each page's HTML to
// disk and deleting it as soon as it has been consumed. Resident memory stays
// bounded to a single page regardless of how many pages a run covers, and a
// restarted run can pick up from the first page whose staged file is gone.
type Fetcher struct {
	client *http.Client
	opts   FetcherOptions
}

// NewFetcher creates a Fetcher with the given options.
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0"
	}
	return &Fetcher{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
	}
}

// stagePath returns the on-disk location for a page's staged HTML.
func (f *Fetcher) stagePath(page int) string {
	return filepath.Join(f.opts.WorkDir, fmt.Sprintf("page%d_raw.html", page))
}

// Stage downloads one page's HTML to disk after the courtesy delay. A page
// already staged from an earlier interrupted run is left untouched.
func (f *Fetcher) Stage(ctx context.Context, page int) (string, error) {
	path := f.stagePath(page)
	if _, err := os.Stat(path); err == nil {
		zap.L().Debug("scrape: page already staged", zap.Int("page", page))
		return path, nil
	}

	if err := f.pause(ctx); err != nil {
		return "", eris.Wrap(err, "scrape: pause")
	}

	pageURL := fmt.Sprintf(f.opts.PageURLTemplate, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "scrape: build request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "scrape: fetch page %d", page)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("scrape: page %d returned status %d", page, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrapf(err, "scrape: read page %d", page)
	}

	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", eris.Wrapf(err, "scrape: stage page %d", page)
	}
	zap.L().Debug("scrape: staged page", zap.Int("page", page), zap.Int("bytes", len(body)))
	return path, nil
}

// Consume reads a staged page back and deletes it from disk.
func (f *Fetcher) Consume(path string) ([]byte, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: read staged %s", path)
	}
	if err := os.Remove(path); err != nil {
		return nil, eris.Wrapf(err, "scrape: delete staged %s", path)
	}
	return body, nil
}

// FetchPage stages a page and immediately consumes it.
func (f *Fetcher) FetchPage(ctx context.Context, page int) ([]byte, error) {
	path, err := f.Stage(ctx, page)
	if err != nil {
		return nil, err
	}
	return f.Consume(path)
}

func (f *Fetcher) pause(ctx context.Context) error {
	d := f.opts.DelayMin
	if f.opts.DelayMax > f.opts.DelayMin {
		d += rand.N(f.opts.DelayMax - f.opts.DelayMin)
	}
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
