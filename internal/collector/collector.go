// Package collector aggregates the source adapters into merged company
// records, deduplicated contact lists and scored profiles.
package collector

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alexryan/leadscout/internal/scoring"
	"github.com/alexryan/leadscout/internal/sources/clearbit"
	"github.com/alexryan/leadscout/internal/sources/hunter"
	"github.com/alexryan/leadscout/internal/sources/linkedin"
	"github.com/alexryan/leadscout/internal/types"
)

// Source names, in the fixed order used for sources_used.
const (
	SourceLinkedIn = "linkedin"
	SourceClearbit = "clearbit"
	SourceHunter   = "hunter"
)

// DefaultContactLimit caps contact collection when the caller passes zero.
const DefaultContactLimit = 10

// ProfileSource is the scraped-profile adapter contract.
type ProfileSource interface {
	IsAvailable() bool
	SearchCompany(ctx context.Context, name string, useCache bool) *linkedin.Company
	ScrapeEmployees(ctx context.Context, name string, limit int, useCache bool) []linkedin.Employee
}

// EnrichmentSource is the firmographic adapter contract.
type EnrichmentSource interface {
	IsAvailable() bool
	Enrich(ctx context.Context, domain string, useCache bool) *clearbit.CompanyData
}

// EmailSource is the email-discovery adapter contract.
type EmailSource interface {
	IsAvailable() bool
	DomainSearch(ctx context.Context, domain string, useCache bool) *hunter.DomainResult
}

// RawPayloads carries the unmerged adapter outputs alongside a profile.
type RawPayloads struct {
	LinkedIn *linkedin.Company    `json:"linkedin,omitempty"`
	Clearbit *clearbit.CompanyData `json:"clearbit,omitempty"`
	Hunter   *hunter.DomainResult `json:"hunter,omitempty"`
}

// CompanyData is the outcome of a company aggregation pass.
type CompanyData struct {
	Record           *types.CompanyRecord `json:"data"`
	Raw              RawPayloads          `json:"raw_data"`
	SourcesAvailable map[string]bool      `json:"sources_available"`
}

// FullProfile composes a merged record, contacts and a lead score.
type FullProfile struct {
	types.Profile
	Raw RawPayloads `json:"raw_data"`
}

// Collector fans requests out to whichever sources can serve them. A failed
// source never aborts the others; it simply contributes nothing.
type Collector struct {
	profile ProfileSource
	enrich  EnrichmentSource
	email   EmailSource
	logger  *zap.Logger
}

// New wires a collector from its three source adapters. Any adapter may be
// nil, which reads as permanently unavailable.
func New(profile ProfileSource, enrich EnrichmentSource, email EmailSource, logger *zap.Logger) *Collector {
	return &Collector{profile: profile, enrich: enrich, email: email, logger: logger}
}

// CollectCompanyData merges company data from every eligible source.
// At least one of name and domain must be set.
func (c *Collector) CollectCompanyData(ctx context.Context, name, domain string, useCache bool) (*CompanyData, error) {
	if name == "" && domain == "" {
		return nil, &InvalidInputError{Reason: "company name or domain required"}
	}

	available := c.availability()
	var raw RawPayloads

	g, gctx := errgroup.WithContext(ctx)
	if available[SourceLinkedIn] && name != "" {
		g.Go(func() error {
			raw.LinkedIn = c.profile.SearchCompany(gctx, name, useCache)
			return nil
		})
	}
	if available[SourceClearbit] && domain != "" {
		g.Go(func() error {
			raw.Clearbit = c.enrich.Enrich(gctx, domain, useCache)
			return nil
		})
	}
	if available[SourceHunter] && domain != "" {
		g.Go(func() error {
			raw.Hunter = c.email.DomainSearch(gctx, domain, useCache)
			return nil
		})
	}
	// Branches never return errors; Wait only orders the writes above.
	_ = g.Wait()

	record := mergeRecord(name, domain, raw)
	c.logger.Debug("company data collected",
		zap.String("company", record.Name),
		zap.Strings("sources_used", record.SourcesUsed))

	return &CompanyData{
		Record:           record,
		Raw:              raw,
		SourcesAvailable: available,
	}, nil
}

// CollectContacts gathers contacts from the scraped-profile and
// email-discovery sources, deduplicates them first-seen-wins and truncates
// to limit.
func (c *Collector) CollectContacts(ctx context.Context, name, domain string, limit int, useCache bool) ([]types.Contact, error) {
	if name == "" && domain == "" {
		return nil, &InvalidInputError{Reason: "company name or domain required"}
	}
	if limit <= 0 {
		limit = DefaultContactLimit
	}

	available := c.availability()
	var scraped []linkedin.Employee
	var discovered *hunter.DomainResult

	g, gctx := errgroup.WithContext(ctx)
	if available[SourceLinkedIn] && name != "" {
		g.Go(func() error {
			scraped = c.profile.ScrapeEmployees(gctx, name, limit, useCache)
			return nil
		})
	}
	if available[SourceHunter] && domain != "" {
		g.Go(func() error {
			discovered = c.email.DomainSearch(gctx, domain, useCache)
			return nil
		})
	}
	_ = g.Wait()

	// Scraped employees come first so they win the dedup pass.
	contacts := employeesToContacts(scraped)
	contacts = append(contacts, discovered.Contacts(0)...)
	contacts = dedupeContacts(contacts)

	if len(contacts) > limit {
		contacts = contacts[:limit]
	}
	return contacts, nil
}

// CollectFullProfile runs company aggregation and contact collection, then
// scores the merged record.
func (c *Collector) CollectFullProfile(ctx context.Context, name, domain string, includeContacts, useCache bool) (*FullProfile, error) {
	data, err := c.CollectCompanyData(ctx, name, domain, useCache)
	if err != nil {
		return nil, err
	}

	profile := &FullProfile{
		Profile: types.Profile{
			CompanyName:      data.Record.Name,
			Domain:           data.Record.Domain,
			Record:           data.Record,
			Contacts:         []types.Contact{},
			LeadScore:        scoring.LeadScore(data.Record),
			CollectedAt:      time.Now().UTC(),
			SourcesAvailable: data.SourcesAvailable,
		},
		Raw: data.Raw,
	}

	if includeContacts {
		contacts, err := c.CollectContacts(ctx, name, domain, DefaultContactLimit, useCache)
		if err != nil {
			return nil, err
		}
		profile.Contacts = contacts
	}

	c.logger.Info("profile collected",
		zap.String("company", profile.CompanyName),
		zap.Float64("lead_score", profile.LeadScore),
		zap.Int("contacts", len(profile.Contacts)))
	return profile, nil
}

func (c *Collector) availability() map[string]bool {
	return map[string]bool{
		SourceLinkedIn: c.profile != nil && c.profile.IsAvailable(),
		SourceClearbit: c.enrich != nil && c.enrich.IsAvailable(),
		SourceHunter:   c.email != nil && c.email.IsAvailable(),
	}
}

// mergeRecord applies the precedence rules: firmographic fields win, the
// scraped descriptor fills remaining gaps, email discovery contributes only
// its pattern and address count.
func mergeRecord(name, domain string, raw RawPayloads) *types.CompanyRecord {
	record := &types.CompanyRecord{Name: name, Domain: domain}

	if raw.Clearbit != nil {
		applyFirmographic(record, clearbit.ExtractCompanyInfo(raw.Clearbit))
	}
	if raw.LinkedIn != nil {
		applyScraped(record, raw.LinkedIn)
	}
	if raw.Hunter != nil {
		record.EmailPattern = raw.Hunter.Pattern
		record.TotalEmailsFound = raw.Hunter.Total
	}

	// Fixed provenance order regardless of which source answered first.
	if raw.LinkedIn != nil {
		record.SourcesUsed = append(record.SourcesUsed, SourceLinkedIn)
	}
	if raw.Clearbit != nil {
		record.SourcesUsed = append(record.SourcesUsed, SourceClearbit)
	}
	if raw.Hunter != nil {
		record.SourcesUsed = append(record.SourcesUsed, SourceHunter)
	}
	return record
}

func applyFirmographic(record, extract *types.CompanyRecord) {
	if extract == nil {
		return
	}
	if extract.Name != "" {
		record.Name = extract.Name
	}
	if extract.Domain != "" {
		record.Domain = extract.Domain
	}
	record.Industry = extract.Industry
	record.Sector = extract.Sector
	record.EmployeeCount = extract.EmployeeCount
	record.EmployeeRange = extract.EmployeeRange
	record.Description = extract.Description
	record.Location = extract.Location
	record.Website = extract.Website
	record.LinkedInURL = extract.LinkedInURL
	record.FoundedYear = extract.FoundedYear
	record.TechStack = extract.TechStack
	record.Funding = extract.Funding
}

// applyScraped fills only the fields the firmographic pass left empty.
func applyScraped(record *types.CompanyRecord, scraped *linkedin.Company) {
	if record.Name == "" && scraped.Name != "" {
		record.Name = scraped.Name
	}
	if record.Industry == "" {
		record.Industry = scraped.Industry
	}
	if record.Description == "" {
		record.Description = scraped.Description
	}
	if record.EmployeeCount == nil {
		record.EmployeeCount = scraped.EmployeeCount
	}
	if record.EmployeeRange == "" {
		record.EmployeeRange = scraped.CompanySize
	}
	if record.Website == "" {
		record.Website = scraped.Website
	}
	if record.LinkedInURL == "" {
		record.LinkedInURL = scraped.LinkedInURL
	}
	if record.FoundedYear == nil {
		record.FoundedYear = scraped.Founded
	}
	if record.Location == nil && scraped.Headquarters != "" {
		record.Location = parseHeadquarters(scraped.Headquarters)
	}
}

// parseHeadquarters splits a "City, State" headquarters string.
func parseHeadquarters(hq string) *types.Location {
	parts := strings.SplitN(hq, ",", 2)
	loc := &types.Location{City: strings.TrimSpace(parts[0])}
	if len(parts) == 2 {
		loc.State = strings.TrimSpace(parts[1])
	}
	return loc
}

func employeesToContacts(employees []linkedin.Employee) []types.Contact {
	contacts := make([]types.Contact, 0, len(employees))
	for _, emp := range employees {
		first, last := splitName(emp.Name)
		contacts = append(contacts, types.Contact{
			FirstName:       first,
			LastName:        last,
			FullName:        emp.Name,
			Title:           emp.Title,
			SeniorityLevel:  emp.SeniorityLevel,
			IsDecisionMaker: emp.IsDecisionMaker,
			LinkedInURL:     emp.ProfileURL,
			Source:          SourceLinkedIn,
		})
	}
	return contacts
}

func splitName(full string) (first, last string) {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return "", ""
	}
	first = fields[0]
	last = strings.Join(fields[1:], " ")
	return first, last
}

// dedupeContacts keeps the first occurrence of each contact. The case-folded
// email is the primary key; contacts without an email fall back to the
// case-folded trimmed "first last" name.
func dedupeContacts(contacts []types.Contact) []types.Contact {
	seenEmails := make(map[string]struct{})
	seenNames := make(map[string]struct{})

	deduped := make([]types.Contact, 0, len(contacts))
	for _, contact := range contacts {
		key, byEmail := contact.DedupKey()
		if key == "" {
			continue
		}
		if byEmail {
			if _, ok := seenEmails[key]; ok {
				continue
			}
			seenEmails[key] = struct{}{}
		} else {
			if _, ok := seenNames[key]; ok {
				continue
			}
			seenNames[key] = struct{}{}
		}
		deduped = append(deduped, contact)
	}
	return deduped
}
