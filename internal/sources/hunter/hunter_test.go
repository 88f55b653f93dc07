package hunter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexryan/leadscout/internal/cache"
	"github.com/alexryan/leadscout/internal/logging"
	"github.com/alexryan/leadscout/internal/metrics"
)

const domainSearchPayload = `{
	"data": {
		"domain": "acme.io",
		"organization": "Acme Analytics",
		"pattern": "{first}.{last}",
		"total": 42,
		"emails": [
			{
				"value": "jordan.reyes@acme.io",
				"first_name": "Jordan",
				"last_name": "Reyes",
				"position": "Chief Executive Officer",
				"department": "executive",
				"seniority": "executive",
				"confidence": 97
			},
			{
				"value": "priya.n@acme.io",
				"first_name": "Priya",
				"last_name": "Natarajan",
				"position": "Software Engineer",
				"department": "it",
				"seniority": "junior",
				"confidence": 81
			}
		]
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, cache.Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := cache.NewMemory()
	client := NewClient("test-key", time.Second, store, time.Hour, logging.NewNop(), metrics.New())
	client.SetBaseURL(server.URL)
	return client, store
}

func TestDomainSearch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/domain-search", r.URL.Path)
		assert.Equal(t, "acme.io", r.URL.Query().Get("domain"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		w.Write([]byte(domainSearchPayload))
	})

	result := client.DomainSearch(context.Background(), "acme.io", false)
	require.NotNil(t, result)
	assert.Equal(t, "{first}.{last}", result.Pattern)
	assert.Equal(t, 42, result.Total)
	require.Len(t, result.Emails, 2)
	assert.Equal(t, "jordan.reyes@acme.io", result.Emails[0].Value)
}

func TestDomainSearchCaches(t *testing.T) {
	calls := 0
	client, store := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Write([]byte(domainSearchPayload))
	})

	ctx := context.Background()
	require.NotNil(t, client.DomainSearch(ctx, "acme.io", true))
	assert.True(t, store.Exists(ctx, Namespace, "domain:acme.io"))
	require.NotNil(t, client.DomainSearch(ctx, "acme.io", true))
	assert.Equal(t, 1, calls)
}

func TestDomainSearchDegrades(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"rate limited", http.StatusTooManyRequests},
		{"server error", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			assert.Nil(t, client.DomainSearch(context.Background(), "acme.io", true))
		})
	}
}

func TestEmailFinder(t *testing.T) {
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/email-finder", r.URL.Path)
		assert.Equal(t, "Jordan", r.URL.Query().Get("first_name"))
		w.Write([]byte(`{"data": {"email": "jordan.reyes@acme.io", "score": 95}}`))
	})

	ctx := context.Background()
	result := client.EmailFinder(ctx, "acme.io", "Jordan", "Reyes", true)
	require.NotNil(t, result)
	assert.Equal(t, "jordan.reyes@acme.io", result.Email)
	assert.Equal(t, 95.0, result.Confidence)
	assert.True(t, store.Exists(ctx, Namespace, "email:acme.io:Jordan:Reyes"),
		"person lookups are cached under a composite identifier")
}

func TestVerifyEmail(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/email-verifier", r.URL.Path)
		w.Write([]byte(`{"data": {"email": "jordan.reyes@acme.io", "status": "valid", "result": "deliverable", "score": 98}}`))
	})

	result := client.VerifyEmail(context.Background(), "jordan.reyes@acme.io", false)
	require.NotNil(t, result)
	assert.Equal(t, "deliverable", result.Result)
	assert.Equal(t, 98, result.Score)
}

func TestUnavailableWithoutKey(t *testing.T) {
	client := NewClient("", time.Second, cache.NewMemory(), time.Hour, logging.NewNop(), metrics.New())
	assert.False(t, client.IsAvailable())
	assert.Nil(t, client.DomainSearch(context.Background(), "acme.io", true))
}

func TestContactsConversion(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(domainSearchPayload))
	})

	result := client.DomainSearch(context.Background(), "acme.io", false)
	require.NotNil(t, result)

	contacts := result.Contacts(0)
	require.Len(t, contacts, 2)
	assert.Equal(t, "jordan.reyes@acme.io", contacts[0].Email)
	assert.True(t, contacts[0].IsDecisionMaker)
	assert.False(t, contacts[1].IsDecisionMaker)
	assert.Equal(t, Namespace, contacts[0].Source)

	assert.Len(t, result.Contacts(1), 1)
	assert.Nil(t, (*DomainResult)(nil).Contacts(5))
}

func TestGenerateEmail(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		first   string
		last    string
		want    string
	}{
		{"first dot last", "{first}.{last}", "Jordan", "Reyes", "jordan.reyes"},
		{"initial plus last", "{f}{last}", "Jordan", "Reyes", "jreyes"},
		{"initials", "{f}{l}", "Jordan", "Reyes", "jr"},
		{"full address pattern", "{first}.{last}@acme.io", "Jordan", "Reyes", "jordan.reyes@acme.io"},
		{"uppercase pattern folds", "{FIRST}.{LAST}@acme.io", "Jordan", "Reyes", "jordan.reyes@acme.io"},
		{"missing first name", "{f}.{last}", "", "Reyes", ".reyes"},
		{"empty pattern", "", "Jordan", "Reyes", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateEmail(tt.pattern, tt.first, tt.last))
		})
	}
}
