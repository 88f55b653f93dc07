package main

import (
	"go.uber.org/zap"

	"github.com/alexryan/leadscout/internal/cache"
	"github.com/alexryan/leadscout/internal/collector"
	"github.com/alexryan/leadscout/internal/config"
	"github.com/alexryan/leadscout/internal/metrics"
	"github.com/alexryan/leadscout/internal/sources/clearbit"
	"github.com/alexryan/leadscout/internal/sources/hunter"
	"github.com/alexryan/leadscout/internal/sources/linkedin"
)

// newCollector wires the three source adapters onto a shared cache store.
// Sources without credentials stay unavailable rather than failing.
func newCollector(cfg *config.Config, store cache.Store, logger *zap.Logger, m *metrics.Manager) *collector.Collector {
	var scraper linkedin.Scraper
	if cfg.Scraper.Sample {
		scraper = linkedin.NewSampleScraper()
	} else {
		scraper = linkedin.NewBrowser(cfg.Scraper.Delay, cfg.Sources.Timeout)
	}

	profile := linkedin.NewSource(scraper, store, cfg.Cache.TTL, logger, m)
	enrich := clearbit.NewClient(cfg.Clearbit.Key, cfg.Sources.Timeout, store, cfg.Cache.TTL, logger, m)
	email := hunter.NewClient(cfg.Hunter.Key, cfg.Sources.Timeout, store, cfg.Cache.TTL, logger, m)

	return collector.New(profile, enrich, email, logger)
}
