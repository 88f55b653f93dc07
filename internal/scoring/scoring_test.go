package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alexryan/leadscout/internal/types"
)

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

// fullyPopulatedRecord maxes every component without overshooting any cap:
// all five identity fields, sweet-spot headcount, known total funding, a
// six-item stack and both contact signals.
func fullyPopulatedRecord() *types.CompanyRecord {
	return &types.CompanyRecord{
		Name:        "Acme Analytics",
		Domain:      "acme.io",
		Industry:    "Software",
		Description: "Mid-market analytics platform.",

		EmployeeCount: intPtr(200),
		Funding:       &types.Funding{Total: floatPtr(25_000_000)},
		TechStack:     []string{"Go", "PostgreSQL", "Kubernetes", "React", "Kafka", "Terraform"},

		EmailPattern:     "{first}.{last}@acme.io",
		TotalEmailsFound: 10,
	}
}

func TestLeadScoreFullyPopulated(t *testing.T) {
	// 30 completeness + 20 size + 20 funding + 15 tech + 15 contacts.
	assert.Equal(t, 100.0, LeadScore(fullyPopulatedRecord()))
}

func TestCompletenessCountsHeadcountNotWebsite(t *testing.T) {
	// A website URL is not one of the five identity fields; a record that
	// has one but no headcount scores 4 of 5 plus the absent-count floor.
	record := &types.CompanyRecord{
		Name:        "Acme Analytics",
		Domain:      "acme.io",
		Industry:    "Software",
		Description: "Mid-market analytics platform.",
		Website:     "https://acme.io",
	}
	assert.Equal(t, 24.0, completenessScore(record))
	assert.Equal(t, 24.0+5.0, LeadScore(record))

	// A reported headcount of zero is treated as unknown.
	assert.Equal(t, 0.0, completenessScore(&types.CompanyRecord{EmployeeCount: intPtr(0)}))
	assert.Equal(t, 6.0, completenessScore(&types.CompanyRecord{EmployeeCount: intPtr(200)}))
}

func TestLeadScoreEmptyRecord(t *testing.T) {
	assert.Equal(t, 5.0, LeadScore(&types.CompanyRecord{}))
	assert.Equal(t, 5.0, LeadScore(nil))
}

func TestSizeFitBuckets(t *testing.T) {
	tests := []struct {
		name  string
		count *int
		want  float64
	}{
		{"absent", nil, 5},
		{"zero", intPtr(0), 10},
		{"small", intPtr(49), 10},
		{"lower edge of sweet spot", intPtr(50), 20},
		{"mid market", intPtr(250), 20},
		{"upper edge of sweet spot", intPtr(500), 20},
		{"just above sweet spot", intPtr(501), 15},
		{"large", intPtr(1000), 15},
		{"enterprise", intPtr(1001), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sizeFitScore(tt.count))
		})
	}
}

func TestFundingComponent(t *testing.T) {
	tests := []struct {
		name    string
		funding *types.Funding
		want    float64
	}{
		{"no funding block", nil, 0},
		{"empty funding block", &types.Funding{}, 0},
		{"total funding known", &types.Funding{Total: floatPtr(1_000_000)}, 20},
		{"only revenue known", &types.Funding{AnnualRevenue: floatPtr(5_000_000)}, 15},
		{"both known prefers total", &types.Funding{
			Total:         floatPtr(1_000_000),
			AnnualRevenue: floatPtr(5_000_000),
		}, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fundingScore(tt.funding))
		})
	}
}

func TestTechStackCap(t *testing.T) {
	assert.Equal(t, 0.0, techStackScore(nil))
	assert.Equal(t, 3.0, techStackScore([]string{"Go"}))
	assert.Equal(t, 12.0, techStackScore([]string{"Go", "Postgres", "Redis", "React"}))
	assert.Equal(t, 15.0, techStackScore(make([]string, 5)))
	assert.Equal(t, 15.0, techStackScore(make([]string, 40)), "stack size beyond 5 stays capped")
}

func TestCompletenessIsProportional(t *testing.T) {
	record := &types.CompanyRecord{Name: "Acme", Domain: "acme.io"}
	// 2 of 5 fields populated plus the absent-headcount floor.
	assert.Equal(t, 12.0+5.0, LeadScore(record))
}

func TestContactSignals(t *testing.T) {
	record := &types.CompanyRecord{EmailPattern: "{f}{last}@acme.io"}
	assert.Equal(t, 10.0+5.0, LeadScore(record))

	record.TotalEmailsFound = 3
	assert.Equal(t, 15.0+5.0, LeadScore(record))
}

func TestScoreIsClamped(t *testing.T) {
	record := fullyPopulatedRecord()
	record.TechStack = make([]string, 100)
	score := LeadScore(record)
	assert.LessOrEqual(t, score, 100.0)
	assert.Equal(t, 100.0, score)
}

func TestScoreIsDeterministic(t *testing.T) {
	record := fullyPopulatedRecord()
	first := LeadScore(record)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, LeadScore(record))
	}
}
