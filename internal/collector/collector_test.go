package collector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexryan/leadscout/internal/logging"
	"github.com/alexryan/leadscout/internal/sources/clearbit"
	"github.com/alexryan/leadscout/internal/sources/hunter"
	"github.com/alexryan/leadscout/internal/sources/linkedin"
	"github.com/alexryan/leadscout/internal/types"
)

type fakeProfileSource struct {
	available bool
	company   *linkedin.Company
	employees []linkedin.Employee
	calls     int
}

func (f *fakeProfileSource) IsAvailable() bool { return f.available }

func (f *fakeProfileSource) SearchCompany(context.Context, string, bool) *linkedin.Company {
	f.calls++
	return f.company
}

func (f *fakeProfileSource) ScrapeEmployees(context.Context, string, int, bool) []linkedin.Employee {
	f.calls++
	return f.employees
}

type fakeEnrichmentSource struct {
	available bool
	data      *clearbit.CompanyData
	calls     int
}

func (f *fakeEnrichmentSource) IsAvailable() bool { return f.available }

func (f *fakeEnrichmentSource) Enrich(context.Context, string, bool) *clearbit.CompanyData {
	f.calls++
	return f.data
}

type fakeEmailSource struct {
	available bool
	result    *hunter.DomainResult
	calls     int
}

func (f *fakeEmailSource) IsAvailable() bool { return f.available }

func (f *fakeEmailSource) DomainSearch(context.Context, string, bool) *hunter.DomainResult {
	f.calls++
	return f.result
}

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func scrapedCompany() *linkedin.Company {
	founded := 2018
	count := 150
	return &linkedin.Company{
		Name:          "Acme Analytics",
		Industry:      "Banking",
		Description:   "Scraped description.",
		CompanySize:   "51-200 employees",
		Headquarters:  "San Francisco, CA",
		Founded:       &founded,
		Website:       "https://www.acmeanalytics.com",
		LinkedInURL:   "https://www.linkedin.com/company/acme-analytics/",
		EmployeeCount: &count,
	}
}

func firmographicData() *clearbit.CompanyData {
	data := &clearbit.CompanyData{
		Name:        "Acme Analytics Inc",
		Domain:      "acme.io",
		Description: "Firmographic description.",
	}
	data.Category.Industry = "Fintech"
	data.Category.Sector = "Financial Services"
	data.Metrics.Employees = intPtr(250)
	data.Metrics.EmployeesRange = "101-250"
	data.Metrics.Raised = floatPtr(25_000_000)
	data.Tech = []string{"go", "postgresql"}
	return data
}

func emailData() *hunter.DomainResult {
	return &hunter.DomainResult{
		Domain:  "acme.io",
		Pattern: "{first}.{last}",
		Total:   42,
		Emails: []hunter.Email{
			{Value: "jordan.reyes@acme.io", FirstName: "Jordan", LastName: "Reyes",
				Position: "CEO", Seniority: "executive", Confidence: 97},
		},
	}
}

func TestCollectCompanyDataFirmographicWins(t *testing.T) {
	profile := &fakeProfileSource{available: true, company: scrapedCompany()}
	enrich := &fakeEnrichmentSource{available: true, data: firmographicData()}
	email := &fakeEmailSource{available: true, result: emailData()}
	c := New(profile, enrich, email, logging.NewNop())

	data, err := c.CollectCompanyData(context.Background(), "Acme Analytics", "acme.io", true)
	require.NoError(t, err)
	record := data.Record

	// Both sources report an industry; the firmographic value wins.
	assert.Equal(t, "Fintech", record.Industry)
	assert.Equal(t, "Acme Analytics Inc", record.Name)
	require.NotNil(t, record.EmployeeCount)
	assert.Equal(t, 250, *record.EmployeeCount)
	assert.Equal(t, "Firmographic description.", record.Description)

	// Fields only the scraped source knows fill the gaps.
	assert.Equal(t, "https://www.acmeanalytics.com", record.Website)
	assert.Equal(t, "https://www.linkedin.com/company/acme-analytics/", record.LinkedInURL)
	require.NotNil(t, record.FoundedYear)
	assert.Equal(t, 2018, *record.FoundedYear)
	require.NotNil(t, record.Location)
	assert.Equal(t, "San Francisco", record.Location.City)

	// Email discovery contributes only its two fields.
	assert.Equal(t, "{first}.{last}", record.EmailPattern)
	assert.Equal(t, 42, record.TotalEmailsFound)

	assert.Equal(t, []string{"linkedin", "clearbit", "hunter"}, record.SourcesUsed)
}

func TestCollectCompanyDataScrapedFillsGapsOnly(t *testing.T) {
	c := New(
		&fakeProfileSource{available: true, company: scrapedCompany()},
		&fakeEnrichmentSource{available: true},
		&fakeEmailSource{available: true},
		logging.NewNop())

	data, err := c.CollectCompanyData(context.Background(), "Acme Analytics", "acme.io", true)
	require.NoError(t, err)
	record := data.Record

	// With no firmographic payload the scraped descriptor supplies
	// everything it has.
	assert.Equal(t, "Banking", record.Industry)
	assert.Equal(t, "Scraped description.", record.Description)
	require.NotNil(t, record.EmployeeCount)
	assert.Equal(t, 150, *record.EmployeeCount)
	assert.Equal(t, []string{"linkedin"}, record.SourcesUsed)
}

func TestCollectCompanyDataUnavailableSourceSkipped(t *testing.T) {
	enrich := &fakeEnrichmentSource{available: false, data: firmographicData()}
	c := New(
		&fakeProfileSource{available: true, company: scrapedCompany()},
		enrich,
		&fakeEmailSource{available: true, result: emailData()},
		logging.NewNop())

	data, err := c.CollectCompanyData(context.Background(), "Acme Analytics", "acme.io", true)
	require.NoError(t, err)

	assert.Zero(t, enrich.calls, "unavailable source must not be queried")
	assert.False(t, data.SourcesAvailable["clearbit"])
	assert.True(t, data.SourcesAvailable["linkedin"])
	assert.NotContains(t, data.Record.SourcesUsed, "clearbit")
	assert.Equal(t, "Banking", data.Record.Industry, "scraped data stands in for the missing source")
}

func TestCollectCompanyDataFailedSourceExcludedFromProvenance(t *testing.T) {
	// Available but returning nothing, as after a provider outage.
	c := New(
		&fakeProfileSource{available: true, company: scrapedCompany()},
		&fakeEnrichmentSource{available: true, data: nil},
		&fakeEmailSource{available: true, result: emailData()},
		logging.NewNop())

	data, err := c.CollectCompanyData(context.Background(), "Acme Analytics", "acme.io", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"linkedin", "hunter"}, data.Record.SourcesUsed)
	assert.True(t, data.SourcesAvailable["clearbit"], "availability reflects configuration, not outcome")
}

func TestCollectCompanyDataInvalidInput(t *testing.T) {
	profile := &fakeProfileSource{available: true}
	enrich := &fakeEnrichmentSource{available: true}
	email := &fakeEmailSource{available: true}
	c := New(profile, enrich, email, logging.NewNop())

	data, err := c.CollectCompanyData(context.Background(), "", "", true)
	assert.Nil(t, data)

	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)

	assert.Zero(t, profile.calls, "no source may be queried on invalid input")
	assert.Zero(t, enrich.calls)
	assert.Zero(t, email.calls)
}

func TestCollectCompanyDataDomainOnly(t *testing.T) {
	profile := &fakeProfileSource{available: true, company: scrapedCompany()}
	c := New(profile,
		&fakeEnrichmentSource{available: true, data: firmographicData()},
		&fakeEmailSource{available: true, result: emailData()},
		logging.NewNop())

	data, err := c.CollectCompanyData(context.Background(), "", "acme.io", true)
	require.NoError(t, err)
	assert.Zero(t, profile.calls, "scraping needs a company name")
	assert.Equal(t, []string{"clearbit", "hunter"}, data.Record.SourcesUsed)
}

func TestCollectContactsDedupByEmail(t *testing.T) {
	email := &fakeEmailSource{available: true, result: &hunter.DomainResult{
		Emails: []hunter.Email{
			{Value: "Jordan.Reyes@acme.io", FirstName: "Jordan", LastName: "Reyes", Confidence: 97},
			{Value: "jordan.reyes@ACME.io", FirstName: "J", LastName: "R", Confidence: 50},
			{Value: "priya.n@acme.io", FirstName: "Priya", LastName: "Natarajan", Confidence: 81},
		},
	}}
	c := New(&fakeProfileSource{available: true}, &fakeEnrichmentSource{}, email, logging.NewNop())

	contacts, err := c.CollectContacts(context.Background(), "", "acme.io", 10, true)
	require.NoError(t, err)
	require.Len(t, contacts, 2)

	// First occurrence wins, case-insensitively.
	assert.Equal(t, "Jordan.Reyes@acme.io", contacts[0].Email)
	assert.Equal(t, 97.0, contacts[0].Confidence)
	assert.Equal(t, "priya.n@acme.io", contacts[1].Email)
}

func TestCollectContactsDedupByNameWhenNoEmail(t *testing.T) {
	profile := &fakeProfileSource{available: true, employees: []linkedin.Employee{
		{Name: "Jordan Reyes", Title: "CEO"},
		{Name: "jordan REYES", Title: "Chief Executive Officer"},
		{Name: "Priya Natarajan", Title: "Engineer"},
	}}
	c := New(profile, &fakeEnrichmentSource{}, &fakeEmailSource{}, logging.NewNop())

	contacts, err := c.CollectContacts(context.Background(), "Acme", "", 10, true)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "CEO", contacts[0].Title, "first occurrence wins")
	assert.Equal(t, "Priya Natarajan", contacts[1].FullName)
}

func TestCollectContactsScrapedBeforeDiscovered(t *testing.T) {
	profile := &fakeProfileSource{available: true, employees: []linkedin.Employee{
		{Name: "Jordan Reyes", Title: "CEO", SeniorityLevel: types.SeniorityCLevel},
	}}
	email := &fakeEmailSource{available: true, result: &hunter.DomainResult{
		Emails: []hunter.Email{
			{Value: "priya.n@acme.io", FirstName: "Priya", LastName: "Natarajan"},
		},
	}}
	c := New(profile, &fakeEnrichmentSource{}, email, logging.NewNop())

	contacts, err := c.CollectContacts(context.Background(), "Acme", "acme.io", 10, true)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "linkedin", contacts[0].Source)
	assert.Equal(t, "hunter", contacts[1].Source)
}

func TestCollectContactsTruncatesAfterDedup(t *testing.T) {
	emails := make([]hunter.Email, 0, 6)
	for _, addr := range []string{"a@x.io", "a@x.io", "b@x.io", "c@x.io", "d@x.io", "e@x.io"} {
		emails = append(emails, hunter.Email{Value: addr})
	}
	email := &fakeEmailSource{available: true, result: &hunter.DomainResult{Emails: emails}}
	c := New(&fakeProfileSource{}, &fakeEnrichmentSource{}, email, logging.NewNop())

	contacts, err := c.CollectContacts(context.Background(), "", "x.io", 4, true)
	require.NoError(t, err)
	require.Len(t, contacts, 4)
	// The duplicate was removed before truncation, so d@x.io makes the cut.
	assert.Equal(t, "d@x.io", contacts[3].Email)
}

func TestCollectContactsInvalidInput(t *testing.T) {
	c := New(&fakeProfileSource{available: true}, &fakeEnrichmentSource{}, &fakeEmailSource{}, logging.NewNop())
	_, err := c.CollectContacts(context.Background(), "", "", 10, true)

	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestCollectFullProfile(t *testing.T) {
	profile := &fakeProfileSource{
		available: true,
		company:   scrapedCompany(),
		employees: []linkedin.Employee{{Name: "Jordan Reyes", Title: "CEO", IsDecisionMaker: true}},
	}
	c := New(profile,
		&fakeEnrichmentSource{available: true, data: firmographicData()},
		&fakeEmailSource{available: true, result: emailData()},
		logging.NewNop())

	full, err := c.CollectFullProfile(context.Background(), "Acme Analytics", "acme.io", true, true)
	require.NoError(t, err)

	assert.Equal(t, "Acme Analytics Inc", full.CompanyName)
	assert.Equal(t, "acme.io", full.Domain)
	assert.Greater(t, full.LeadScore, 0.0)
	assert.LessOrEqual(t, full.LeadScore, 100.0)
	assert.False(t, full.CollectedAt.IsZero())
	assert.NotEmpty(t, full.Contacts)
	assert.NotNil(t, full.Raw.Clearbit)
	assert.True(t, full.SourcesAvailable["hunter"])
}

func TestCollectFullProfileWithoutContacts(t *testing.T) {
	c := New(&fakeProfileSource{available: true, company: scrapedCompany()},
		&fakeEnrichmentSource{}, &fakeEmailSource{}, logging.NewNop())

	full, err := c.CollectFullProfile(context.Background(), "Acme", "", false, true)
	require.NoError(t, err)
	assert.Empty(t, full.Contacts)
	assert.NotNil(t, full.Contacts, "contacts serialize as an empty list, not null")
}

func TestNilSourcesAreUnavailable(t *testing.T) {
	c := New(nil, nil, nil, logging.NewNop())
	data, err := c.CollectCompanyData(context.Background(), "Acme", "acme.io", true)
	require.NoError(t, err)
	assert.Empty(t, data.Record.SourcesUsed)
	assert.False(t, data.SourcesAvailable["linkedin"])
	assert.Equal(t, "Acme", data.Record.Name, "request identity is preserved")
}
