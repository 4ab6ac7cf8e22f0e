package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/homelens/housepricer/internal/scorer"
	"github.com/homelens/housepricer/pkg/geocode"
)

// buildGeocoder constructs the geocode client from config. Batch mode adds
// the fixed extra delay on top of the randomized one. The returned closer
// releases the audit log and cache handles.
func buildGeocoder(batch bool) (geocode.Client, func(), error) {
	audit, err := geocode.OpenFileAuditLog(cfg.Geocode.AuditLogPath)
	if err != nil {
		return nil, nil, err
	}

	opts := []geocode.Option{
		geocode.WithBaseURL(cfg.Geocode.BaseURL),
		geocode.WithRateLimit(cfg.Geocode.RateLimit),
		geocode.WithDelay(cfg.Geocode.DelayMin(), cfg.Geocode.DelayMax()),
		geocode.WithAuditLog(audit),
	}
	if batch {
		opts = append(opts, geocode.WithExtraDelay(cfg.Geocode.ExtraDelay()))
	}

	closers := []func(){func() { _ = audit.Close() }}

	if cfg.Cache.Enabled {
		cache, err := geocode.OpenCache(cfg.Cache.Path)
		if err != nil {
			_ = audit.Close()
			return nil, nil, err
		}
		opts = append(opts, geocode.WithCache(cache))
		closers = append(closers, func() { _ = cache.Close() })
		zap.L().Info("geocode cache enabled", zap.String("path", cfg.Cache.Path))
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	return geocode.NewClient(opts...), closeAll, nil
}

// buildScorer constructs the price model client from config.
func buildScorer() scorer.Scorer {
	return scorer.NewHTTPScorer(cfg.Scorer.BaseURL, time.Duration(cfg.Scorer.TimeoutSecs)*time.Second)
}
