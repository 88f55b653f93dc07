// Package clearbit implements the firmographic enrichment source backed by
// the Clearbit company API.
package clearbit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/alexryan/leadscout/internal/cache"
	"github.com/alexryan/leadscout/internal/metrics"
	"github.com/alexryan/leadscout/internal/types"
)

// Namespace is the cache namespace for raw provider payloads.
const Namespace = "clearbit"

const defaultBaseURL = "https://company.clearbit.com/v2"

// CompanyData mirrors the provider's company payload. Only the fields the
// aggregator consumes are modelled.
type CompanyData struct {
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
	FoundedYear *int   `json:"foundedYear"`
	Location    string `json:"location"`
	URL         string `json:"url"`
	Logo        string `json:"logo"`
	Type        string `json:"type"`
	Phone       string `json:"phone"`

	Category struct {
		Industry string `json:"industry"`
		Sector   string `json:"sector"`
	} `json:"category"`

	Metrics struct {
		Employees      *int     `json:"employees"`
		EmployeesRange string   `json:"employeesRange"`
		Raised         *float64 `json:"raised"`
		AnnualRevenue  *float64 `json:"annualRevenue"`
	} `json:"metrics"`

	Geo struct {
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"geo"`

	LinkedIn struct {
		Handle string `json:"handle"`
	} `json:"linkedin"`

	Tech []string `json:"tech"`
	Tags []string `json:"tags"`
}

// Client is the firmographic source adapter. All fetch failures degrade to
// nil; the circuit breaker sheds load from a struggling provider.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	cache      cache.Store
	ttl        time.Duration
	logger     *zap.Logger
	metrics    *metrics.Manager
}

// NewClient builds a clearbit client. An empty apiKey leaves the source
// unavailable.
func NewClient(apiKey string, timeout time.Duration, store cache.Store, ttl time.Duration, logger *zap.Logger, m *metrics.Manager) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    Namespace,
			Timeout: 30 * time.Second,
		}),
		cache:   store,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

// SetBaseURL overrides the provider endpoint, used in tests.
func (c *Client) SetBaseURL(baseURL string) { c.baseURL = baseURL }

// IsAvailable reports whether an API key is configured.
func (c *Client) IsAvailable() bool {
	return c.apiKey != ""
}

// Enrich returns the raw firmographic payload for a domain, or nil when the
// company is unknown, the provider is rate limited or the call failed.
func (c *Client) Enrich(ctx context.Context, domain string, useCache bool) *CompanyData {
	if !c.IsAvailable() {
		return nil
	}

	url := fmt.Sprintf("%s/companies/find?domain=%s", c.baseURL, domain)

	var body []byte
	if useCache {
		fetched := false
		body, _ = cache.GetOrCompute(ctx, c.cache, c.logger, Namespace, domain, c.ttl,
			func(ctx context.Context) ([]byte, error) {
				fetched = true
				c.metrics.RecordCacheMiss(Namespace)
				return c.fetch(ctx, url, domain), nil
			})
		if !fetched && body != nil {
			c.metrics.RecordCacheHit(Namespace)
		}
	} else {
		body = c.fetch(ctx, url, domain)
	}
	if body == nil {
		return nil
	}

	var data CompanyData
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Warn("clearbit payload did not parse", zap.String("domain", domain), zap.Error(err))
		return nil
	}
	return &data
}

// TechStack returns the provider's technology list for a domain.
func (c *Client) TechStack(ctx context.Context, domain string) []string {
	data := c.Enrich(ctx, domain, true)
	if data == nil {
		return nil
	}
	return data.Tech
}

// ExtractCompanyInfo normalizes a raw payload into a partial company record.
func ExtractCompanyInfo(data *CompanyData) *types.CompanyRecord {
	if data == nil {
		return nil
	}

	record := &types.CompanyRecord{
		Name:          data.Name,
		Domain:        data.Domain,
		Description:   data.Description,
		Industry:      data.Category.Industry,
		Sector:        data.Category.Sector,
		EmployeeCount: data.Metrics.Employees,
		EmployeeRange: data.Metrics.EmployeesRange,
		FoundedYear:   data.FoundedYear,
		Website:       data.URL,
		TechStack:     data.Tech,
	}
	if data.Geo.City != "" || data.Geo.State != "" || data.Geo.Country != "" {
		record.Location = &types.Location{
			City:    data.Geo.City,
			State:   data.Geo.State,
			Country: data.Geo.Country,
		}
	}
	if data.LinkedIn.Handle != "" {
		record.LinkedInURL = "https://www.linkedin.com/" + data.LinkedIn.Handle
	}
	if data.Metrics.Raised != nil || data.Metrics.AnnualRevenue != nil {
		record.Funding = &types.Funding{
			Total:         data.Metrics.Raised,
			AnnualRevenue: data.Metrics.AnnualRevenue,
		}
	}
	return record
}

// fetch performs a breaker-guarded GET and applies the provider status
// contract: 200 yields a body, 404 means unknown company, 402 and 429 mean
// quota exhaustion. Anything else counts as a provider failure.
func (c *Client) fetch(ctx context.Context, url, domain string) []byte {
	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		switch resp.StatusCode {
		case http.StatusOK:
			return io.ReadAll(resp.Body)
		case http.StatusNotFound:
			c.logger.Debug("clearbit company not found", zap.String("domain", domain))
			return nil, nil
		case http.StatusPaymentRequired, http.StatusTooManyRequests:
			c.logger.Warn("clearbit rate limited", zap.String("domain", domain),
				zap.Int("status", resp.StatusCode))
			return nil, nil
		default:
			return nil, fmt.Errorf("clearbit status %d", resp.StatusCode)
		}
	})
	c.metrics.RecordSourceFetch(Namespace, time.Since(start).Seconds())

	if err != nil {
		c.metrics.RecordSourceFailure(Namespace)
		c.logger.Warn("clearbit fetch failed", zap.String("domain", domain), zap.Error(err))
		return nil
	}
	body, _ := result.([]byte)
	return body
}
