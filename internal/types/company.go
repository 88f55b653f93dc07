// Package types provides type definitions for structured data used throughout the leadscout system.
package types

import (
	"strings"
	"time"
)

// Location holds the geographic breakdown of a company headquarters.
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// Funding holds funding and revenue signals for a company.
// Both fields are provider-supplied and may be absent independently.
type Funding struct {
	Total         *float64 `json:"total,omitempty"`
	AnnualRevenue *float64 `json:"annual_revenue,omitempty"`
}

// CompanyRecord is the normalized company descriptor produced by merging
// all source adapter outputs. Every descriptive field is optional; a field
// is filled by exactly one winning source per the aggregator's precedence
// rules (firmographic data wins, scraped data fills gaps).
type CompanyRecord struct {
	Name          string    `json:"name,omitempty"`
	Domain        string    `json:"domain,omitempty"`
	Industry      string    `json:"industry,omitempty"`
	Sector        string    `json:"sector,omitempty"`
	EmployeeCount *int      `json:"employee_count,omitempty"`
	EmployeeRange string    `json:"employee_range,omitempty"`
	Description   string    `json:"description,omitempty"`
	Location      *Location `json:"location,omitempty"`
	Website       string    `json:"website,omitempty"`
	LinkedInURL   string    `json:"linkedin_url,omitempty"`
	FoundedYear   *int      `json:"founded_year,omitempty"`
	TechStack     []string  `json:"tech_stack,omitempty"`
	Funding       *Funding  `json:"funding,omitempty"`

	// Email discovery contributions; no competing source.
	EmailPattern     string `json:"email_pattern,omitempty"`
	TotalEmailsFound int    `json:"total_emails_found,omitempty"`

	// SourcesUsed lists the sources that contributed a payload, in the
	// fixed order {linkedin, clearbit, hunter}. Provenance only.
	SourcesUsed []string `json:"sources_used,omitempty"`
}

// Contact is a person associated with a company. Email is the primary
// deduplication key when present; the normalized full name otherwise.
type Contact struct {
	Email           string  `json:"email,omitempty"`
	FirstName       string  `json:"first_name,omitempty"`
	LastName        string  `json:"last_name,omitempty"`
	FullName        string  `json:"full_name,omitempty"`
	Title           string  `json:"title,omitempty"`
	Department      string  `json:"department,omitempty"`
	SeniorityLevel  string  `json:"seniority_level,omitempty"`
	IsDecisionMaker bool    `json:"is_decision_maker"`
	Confidence      float64 `json:"confidence,omitempty"`
	LinkedInURL     string  `json:"linkedin_url,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Source          string  `json:"source,omitempty"`
}

// DisplayName returns the best human-readable name for the contact.
func (c *Contact) DisplayName() string {
	if c.FullName != "" {
		return c.FullName
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// DedupKey returns the deduplication key for the contact: the case-folded
// email when present, otherwise the case-folded trimmed "first last" name.
// The boolean reports whether the key is an email key.
func (c *Contact) DedupKey() (key string, byEmail bool) {
	if email := strings.ToLower(strings.TrimSpace(c.Email)); email != "" {
		return email, true
	}
	name := strings.ToLower(strings.TrimSpace(c.FirstName + " " + c.LastName))
	return name, false
}

// Profile is the complete aggregation result persisted by calling layers:
// merged record, deduplicated contacts, lead score and provenance.
type Profile struct {
	CompanyName      string          `json:"company_name,omitempty"`
	Domain           string          `json:"domain,omitempty"`
	LeadScore        float64         `json:"lead_score"`
	Record           *CompanyRecord  `json:"data"`
	Contacts         []Contact       `json:"contacts"`
	CollectedAt      time.Time       `json:"collected_at"`
	SourcesAvailable map[string]bool `json:"sources_available"`
}

// Seniority level labels used across sources and the decision-maker check.
const (
	SeniorityCLevel   = "C-Level"
	SeniorityVP       = "VP"
	SeniorityDirector = "Director"
	SeniorityManager  = "Manager"
	SeniorityIC       = "IC"
)

// decisionTitleMarkers are title fragments that mark a contact as a senior
// approver when the source did not flag one explicitly.
var decisionTitleMarkers = []string{
	"chief", "ceo", "cto", "cfo", "coo", "founder",
	"vp", "vice president", "director", "head of",
}

// IsSeniorTitle reports whether a job title reads as a decision-maker role.
func IsSeniorTitle(title string) bool {
	t := strings.ToLower(title)
	for _, marker := range decisionTitleMarkers {
		if strings.Contains(t, marker) {
			return true
		}
	}
	return false
}
