// Package linkedin implements the scraped-profile source: a loose company
// descriptor and an employee list obtained from public profile pages.
package linkedin

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alexryan/leadscout/internal/cache"
	"github.com/alexryan/leadscout/internal/metrics"
)

// Namespace is the cache namespace for raw scraped payloads.
const Namespace = "linkedin"

// Company is the loose descriptor extracted from a company page. Fields are
// whatever the page exposed; absent values stay zero.
type Company struct {
	Name          string  `json:"name,omitempty"`
	LinkedInURL   string  `json:"linkedin_url,omitempty"`
	Description   string  `json:"description,omitempty"`
	Industry      string  `json:"industry,omitempty"`
	CompanySize   string  `json:"company_size,omitempty"`
	Headquarters  string  `json:"headquarters,omitempty"`
	Founded       *int    `json:"founded,omitempty"`
	Website       string  `json:"website,omitempty"`
	EmployeeCount *int    `json:"employee_count,omitempty"`
	ScrapedAt     float64 `json:"scraped_at,omitempty"`
}

// Employee is a person row extracted from a people-search page.
type Employee struct {
	Name            string `json:"name"`
	Title           string `json:"title,omitempty"`
	Location        string `json:"location,omitempty"`
	ProfileURL      string `json:"profile_url,omitempty"`
	Company         string `json:"company,omitempty"`
	IsDecisionMaker bool   `json:"is_decision_maker"`
	SeniorityLevel  string `json:"seniority_level,omitempty"`
}

// Scraper produces raw scraped data. Browser is the live implementation;
// SampleScraper produces deterministic data for development and tests.
type Scraper interface {
	SearchCompany(ctx context.Context, name string) (*Company, error)
	ScrapeEmployees(ctx context.Context, name string, limit int) ([]Employee, error)
}

// Source wraps a Scraper with caching, metrics and the degrade contract:
// every failure is logged and reported as no data, never as an error.
type Source struct {
	scraper Scraper
	cache   cache.Store
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Manager
}

// NewSource builds the scraped-profile source adapter.
func NewSource(scraper Scraper, store cache.Store, ttl time.Duration, logger *zap.Logger, m *metrics.Manager) *Source {
	return &Source{scraper: scraper, cache: store, ttl: ttl, logger: logger, metrics: m}
}

// IsAvailable reports whether the source can be queried. Scraping needs no
// API key, so the source is available whenever a scraper is wired.
func (s *Source) IsAvailable() bool {
	return s.scraper != nil
}

// SearchCompany returns the scraped company descriptor, or nil when the
// company could not be found or the scrape failed.
func (s *Source) SearchCompany(ctx context.Context, name string, useCache bool) *Company {
	key := fmt.Sprintf("company:%s", name)
	if useCache {
		var cached Company
		if cache.GetJSON(ctx, s.cache, Namespace, key, &cached) {
			s.metrics.RecordCacheHit(Namespace)
			return &cached
		}
		s.metrics.RecordCacheMiss(Namespace)
	}

	start := time.Now()
	company, err := s.scraper.SearchCompany(ctx, name)
	s.metrics.RecordSourceFetch(Namespace, time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordSourceFailure(Namespace)
		s.logger.Warn("company scrape failed", zap.String("company", name), zap.Error(err))
		return nil
	}
	if company == nil {
		return nil
	}

	if useCache {
		cache.SetJSON(ctx, s.cache, Namespace, key, company, s.ttl)
	}
	return company
}

// ScrapeEmployees returns up to limit employees, or an empty slice when the
// scrape failed.
func (s *Source) ScrapeEmployees(ctx context.Context, name string, limit int, useCache bool) []Employee {
	key := fmt.Sprintf("employees:%s:%d", name, limit)
	if useCache {
		var cached []Employee
		if cache.GetJSON(ctx, s.cache, Namespace, key, &cached) {
			s.metrics.RecordCacheHit(Namespace)
			return cached
		}
		s.metrics.RecordCacheMiss(Namespace)
	}

	start := time.Now()
	employees, err := s.scraper.ScrapeEmployees(ctx, name, limit)
	s.metrics.RecordSourceFetch(Namespace, time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordSourceFailure(Namespace)
		s.logger.Warn("employee scrape failed", zap.String("company", name), zap.Error(err))
		return nil
	}

	if useCache && len(employees) > 0 {
		cache.SetJSON(ctx, s.cache, Namespace, key, employees, s.ttl)
	}
	return employees
}
