package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexryan/leadscout/internal/collector"
	"github.com/alexryan/leadscout/internal/sources/clearbit"
	"github.com/alexryan/leadscout/internal/sources/hunter"
	"github.com/alexryan/leadscout/internal/sources/linkedin"
)

type stubProfileSource struct {
	company   *linkedin.Company
	employees []linkedin.Employee
}

func (s *stubProfileSource) IsAvailable() bool { return true }

func (s *stubProfileSource) SearchCompany(_ context.Context, _ string, _ bool) *linkedin.Company {
	return s.company
}

func (s *stubProfileSource) ScrapeEmployees(_ context.Context, _ string, _ int, _ bool) []linkedin.Employee {
	return s.employees
}

type stubEnrichmentSource struct {
	data *clearbit.CompanyData
}

func (s *stubEnrichmentSource) IsAvailable() bool { return true }

func (s *stubEnrichmentSource) Enrich(_ context.Context, _ string, _ bool) *clearbit.CompanyData {
	return s.data
}

type stubEmailSource struct {
	result *hunter.DomainResult
}

func (s *stubEmailSource) IsAvailable() bool { return true }

func (s *stubEmailSource) DomainSearch(_ context.Context, _ string, _ bool) *hunter.DomainResult {
	return s.result
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	profile := &stubProfileSource{
		company: &linkedin.Company{
			Name:        "Acme Analytics",
			Industry:    "Software Development",
			Description: "Data pipelines for mid-market teams",
		},
		employees: []linkedin.Employee{
			{Name: "Dana Reyes", Title: "VP of Engineering", SeniorityLevel: "VP", IsDecisionMaker: true},
			{Name: "Sam Okafor", Title: "Software Engineer", SeniorityLevel: "IC"},
		},
	}
	enrich := &stubEnrichmentSource{data: &clearbit.CompanyData{
		Name:   "Acme Analytics",
		Domain: "acme.io",
	}}
	email := &stubEmailSource{result: &hunter.DomainResult{
		Domain:  "acme.io",
		Pattern: "{first}.{last}",
		Total:   12,
		Emails: []hunter.Email{
			{Value: "dana.reyes@acme.io", FirstName: "Dana", LastName: "Reyes", Position: "VP of Engineering"},
		},
	}}

	logger := zap.NewNop()
	return New(Config{Port: 0}, Deps{
		Collector: collector.New(profile, enrich, email, logger),
		Logger:    logger,
	})
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec, body := doJSON(t, srv.Handler(), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/collect/company", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCollectCompany(t *testing.T) {
	srv := newTestServer(t)
	rec, body := doJSON(t, srv.Handler(), http.MethodPost, "/collect/company",
		`{"company_name": "Acme Analytics", "domain": "acme.io"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "response must carry the merged record")
	assert.Equal(t, "Acme Analytics", data["name"])
	assert.Equal(t, "acme.io", data["domain"])
	assert.Equal(t, "{first}.{last}", data["email_pattern"])

	score, ok := body["lead_score"].(float64)
	require.True(t, ok)
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)

	available, ok := body["sources_available"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, available["linkedin"])
	assert.Equal(t, true, available["clearbit"])
	assert.Equal(t, true, available["hunter"])
}

func TestCollectCompanyRequiresIdentity(t *testing.T) {
	srv := newTestServer(t)
	rec, body := doJSON(t, srv.Handler(), http.MethodPost, "/collect/company", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "validation error")
}

func TestCollectCompanyRejectsBadJSON(t *testing.T) {
	srv := newTestServer(t)
	rec, body := doJSON(t, srv.Handler(), http.MethodPost, "/collect/company", `{"company_name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body", body["error"])
}

func TestCollectCompanyRejectsBadDomain(t *testing.T) {
	srv := newTestServer(t)
	rec, _ := doJSON(t, srv.Handler(), http.MethodPost, "/collect/company",
		`{"domain": "not a domain"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCollectContacts(t *testing.T) {
	srv := newTestServer(t)
	rec, body := doJSON(t, srv.Handler(), http.MethodPost, "/collect/contacts",
		`{"company_name": "Acme Analytics", "domain": "acme.io", "limit": 5}`)

	require.Equal(t, http.StatusOK, rec.Code)

	contacts, ok := body["contacts"].([]any)
	require.True(t, ok)
	// Scraped Dana has no email and discovered Dana keys by email, so the
	// dedup pass keeps both alongside Sam.
	assert.Len(t, contacts, 3)
	assert.Equal(t, float64(3), body["total"])

	first, ok := contacts[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Dana Reyes", first["full_name"])
}

func TestCollectContactsRejectsOversizedLimit(t *testing.T) {
	srv := newTestServer(t)
	rec, _ := doJSON(t, srv.Handler(), http.MethodPost, "/collect/contacts",
		`{"company_name": "Acme Analytics", "limit": 500}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBuildProfileWithoutRunner(t *testing.T) {
	srv := newTestServer(t)
	rec, body := doJSON(t, srv.Handler(), http.MethodPost,
		"/companies/6fa459ea-ee8a-3ca4-894e-db77e160355e/profile", `{}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, body["error"], "not configured")
}

func TestUnknownRouteReturns404(t *testing.T) {
	srv := newTestServer(t)
	rec, _ := doJSON(t, srv.Handler(), http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
