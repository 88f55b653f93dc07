// Package hunter implements the email-discovery source backed by the
// Hunter.io API: domain-wide address search, per-person finding and
// deliverability verification.
package hunter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/alexryan/leadscout/internal/cache"
	"github.com/alexryan/leadscout/internal/metrics"
	"github.com/alexryan/leadscout/internal/types"
)

// Namespace is the cache namespace for raw provider payloads.
const Namespace = "hunter"

const defaultBaseURL = "https://api.hunter.io/v2"

// DomainResult is the provider's domain-search payload.
type DomainResult struct {
	Domain       string  `json:"domain"`
	Organization string  `json:"organization"`
	Pattern      string  `json:"pattern"`
	Total        int     `json:"total"`
	Emails       []Email `json:"emails"`
}

// Email is one discovered address inside a domain-search payload.
type Email struct {
	Value       string  `json:"value"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Position    string  `json:"position"`
	Department  string  `json:"department"`
	Seniority   string  `json:"seniority"`
	Confidence  float64 `json:"confidence"`
	LinkedIn    string  `json:"linkedin"`
	PhoneNumber string  `json:"phone_number"`
}

// FinderResult is the provider's email-finder payload.
type FinderResult struct {
	Email      string  `json:"email"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Position   string  `json:"position"`
	Confidence float64 `json:"score"`
}

// Verification is the provider's email-verifier payload.
type Verification struct {
	Email  string `json:"email"`
	Status string `json:"status"`
	Result string `json:"result"`
	Score  int    `json:"score"`
}

// envelope wraps every provider response.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Client is the email-discovery source adapter. Fetch failures degrade to
// nil; only GenerateEmail is guaranteed never to touch the network.
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

// NewClient builds a hunter client. An empty apiKey leaves the source
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

// DomainSearch returns every discovered address for a domain along with the
// organization's email pattern, or nil on any failure.
func (c *Client) DomainSearch(ctx context.Context, domain string, useCache bool) *DomainResult {
	if !c.IsAvailable() {
		return nil
	}

	key := "domain:" + domain
	if useCache {
		var cached DomainResult
		if cache.GetJSON(ctx, c.cache, Namespace, key, &cached) {
			c.metrics.RecordCacheHit(Namespace)
			return &cached
		}
		c.metrics.RecordCacheMiss(Namespace)
	}

	var result DomainResult
	if !c.fetchInto(ctx, "domain-search", url.Values{"domain": {domain}}, &result) {
		return nil
	}

	if useCache {
		cache.SetJSON(ctx, c.cache, Namespace, key, &result, c.ttl)
	}
	return &result
}

// EmailFinder locates the most likely address for a named person at a
// domain, or nil on any failure.
func (c *Client) EmailFinder(ctx context.Context, domain, firstName, lastName string, useCache bool) *FinderResult {
	if !c.IsAvailable() {
		return nil
	}

	key := fmt.Sprintf("email:%s:%s:%s", domain, firstName, lastName)
	if useCache {
		var cached FinderResult
		if cache.GetJSON(ctx, c.cache, Namespace, key, &cached) {
			c.metrics.RecordCacheHit(Namespace)
			return &cached
		}
		c.metrics.RecordCacheMiss(Namespace)
	}

	var result FinderResult
	params := url.Values{
		"domain":     {domain},
		"first_name": {firstName},
		"last_name":  {lastName},
	}
	if !c.fetchInto(ctx, "email-finder", params, &result) {
		return nil
	}

	if useCache {
		cache.SetJSON(ctx, c.cache, Namespace, key, &result, c.ttl)
	}
	return &result
}

// VerifyEmail checks deliverability of an address, or nil on any failure.
func (c *Client) VerifyEmail(ctx context.Context, email string, useCache bool) *Verification {
	if !c.IsAvailable() {
		return nil
	}

	key := "verify:" + email
	if useCache {
		var cached Verification
		if cache.GetJSON(ctx, c.cache, Namespace, key, &cached) {
			c.metrics.RecordCacheHit(Namespace)
			return &cached
		}
		c.metrics.RecordCacheMiss(Namespace)
	}

	var result Verification
	if !c.fetchInto(ctx, "email-verifier", url.Values{"email": {email}}, &result) {
		return nil
	}

	if useCache {
		cache.SetJSON(ctx, c.cache, Namespace, key, &result, c.ttl)
	}
	return &result
}

// EmailPattern returns the address pattern for a domain, if known.
func (c *Client) EmailPattern(ctx context.Context, domain string) string {
	result := c.DomainSearch(ctx, domain, true)
	if result == nil {
		return ""
	}
	return result.Pattern
}

// Contacts converts up to limit discovered addresses into contact records.
func (r *DomainResult) Contacts(limit int) []types.Contact {
	if r == nil {
		return nil
	}
	emails := r.Emails
	if limit > 0 && len(emails) > limit {
		emails = emails[:limit]
	}

	contacts := make([]types.Contact, 0, len(emails))
	for _, e := range emails {
		contacts = append(contacts, types.Contact{
			Email:           e.Value,
			FirstName:       e.FirstName,
			LastName:        e.LastName,
			Title:           e.Position,
			Department:      e.Department,
			SeniorityLevel:  e.Seniority,
			IsDecisionMaker: e.Seniority == "executive" || types.IsSeniorTitle(e.Position),
			Confidence:      e.Confidence,
			LinkedInURL:     e.LinkedIn,
			Phone:           e.PhoneNumber,
			Source:          Namespace,
		})
	}
	return contacts
}

// GenerateEmail substitutes a person's name into an address pattern such as
// "{first}.{last}" or "{f}{last}". Pure string work; no network.
func GenerateEmail(pattern, firstName, lastName string) string {
	if pattern == "" {
		return ""
	}

	first := strings.ToLower(strings.TrimSpace(firstName))
	last := strings.ToLower(strings.TrimSpace(lastName))
	var firstInitial, lastInitial string
	if first != "" {
		firstInitial = first[:1]
	}
	if last != "" {
		lastInitial = last[:1]
	}

	email := strings.ToLower(pattern)
	email = strings.ReplaceAll(email, "{first}", first)
	email = strings.ReplaceAll(email, "{last}", last)
	email = strings.ReplaceAll(email, "{f}", firstInitial)
	email = strings.ReplaceAll(email, "{l}", lastInitial)
	return email
}

// fetchInto performs a breaker-guarded GET, unwraps the data envelope and
// decodes it into out. Reports whether a payload was obtained.
func (c *Client) fetchInto(ctx context.Context, endpoint string, params url.Values, out any) bool {
	params.Set("api_key", c.apiKey)
	requestURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		switch resp.StatusCode {
		case http.StatusOK:
			return io.ReadAll(resp.Body)
		case http.StatusNotFound:
			c.logger.Debug("hunter lookup found nothing", zap.String("endpoint", endpoint))
			return nil, nil
		case http.StatusPaymentRequired, http.StatusTooManyRequests:
			c.logger.Warn("hunter rate limited", zap.String("endpoint", endpoint),
				zap.Int("status", resp.StatusCode))
			return nil, nil
		default:
			return nil, fmt.Errorf("hunter status %d", resp.StatusCode)
		}
	})
	c.metrics.RecordSourceFetch(Namespace, time.Since(start).Seconds())

	if err != nil {
		c.metrics.RecordSourceFailure(Namespace)
		c.logger.Warn("hunter fetch failed", zap.String("endpoint", endpoint), zap.Error(err))
		return false
	}
	body, _ := result.([]byte)
	if body == nil {
		return false
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || env.Data == nil {
		c.logger.Warn("hunter payload did not parse", zap.String("endpoint", endpoint), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		c.logger.Warn("hunter payload did not parse", zap.String("endpoint", endpoint), zap.Error(err))
		return false
	}
	return true
}
