package linkedin

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// sampleTitles orders roles so the most senior appear first; the top five
// are flagged as decision makers, matching what a real people search tends
// to surface for a company keyword.
var sampleTitles = []string{
	"Chief Executive Officer",
	"Chief Technology Officer",
	"VP of Engineering",
	"VP of Sales",
	"Head of Marketing",
	"Engineering Manager",
	"Senior Software Engineer",
	"Product Manager",
	"Sales Director",
	"Customer Success Manager",
}

var sampleNames = []string{
	"Jordan Reyes", "Priya Natarajan", "Marcus Webb", "Elena Sorokina",
	"David Okafor", "Hannah Lindqvist", "Tomás Herrera", "Grace Park",
	"Liam O'Donnell", "Aisha Rahman",
}

// SampleScraper satisfies Scraper without touching the network. Output is
// deterministic for a given company name apart from a small per-call drift
// in the employee count, so repeated collections look like fresh scrapes.
type SampleScraper struct {
	calls atomic.Int64
}

// NewSampleScraper builds a sample scraper.
func NewSampleScraper() *SampleScraper {
	return &SampleScraper{}
}

func (s *SampleScraper) SearchCompany(_ context.Context, name string) (*Company, error) {
	slug := strings.ReplaceAll(strings.ToLower(name), " ", "-")
	compact := strings.ReplaceAll(strings.ToLower(name), " ", "")
	founded := 2020
	count := 150 + int(s.calls.Add(1)%7)

	return &Company{
		Name:          name,
		LinkedInURL:   fmt.Sprintf("https://www.linkedin.com/company/%s/", slug),
		Description:   fmt.Sprintf("%s is a leading company in its industry.", name),
		Industry:      "Technology",
		CompanySize:   "50-200 employees",
		Headquarters:  "San Francisco, CA",
		Founded:       &founded,
		Website:       fmt.Sprintf("https://www.%s.com", compact),
		EmployeeCount: &count,
		ScrapedAt:     float64(time.Now().Unix()),
	}, nil
}

func (s *SampleScraper) ScrapeEmployees(_ context.Context, name string, limit int) ([]Employee, error) {
	if limit <= 0 || limit > len(sampleTitles) {
		limit = len(sampleTitles)
	}

	employees := make([]Employee, 0, limit)
	for i := 0; i < limit; i++ {
		title := sampleTitles[i]
		employees = append(employees, Employee{
			Name:            sampleNames[i],
			Title:           title,
			Location:        "San Francisco Bay Area",
			ProfileURL:      fmt.Sprintf("https://www.linkedin.com/in/%s/", nameSlug(sampleNames[i])),
			Company:         name,
			IsDecisionMaker: i < 5,
			SeniorityLevel:  seniorityFromTitle(title),
		})
	}
	return employees, nil
}

func nameSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, "'", "")
	slug = strings.ReplaceAll(slug, " ", "-")
	return slug
}

// compile-time interface checks
var (
	_ Scraper = (*Browser)(nil)
	_ Scraper = (*SampleScraper)(nil)
)
