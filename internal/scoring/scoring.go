// Package scoring computes a 0-100 lead score from a merged company record
// and its discovered contacts. The function is pure: no I/O, no clock, no
// randomness, so identical inputs always produce identical scores.
package scoring

import (
	"github.com/alexryan/leadscout/internal/types"
)

// Component caps. The theoretical maximum before clamping is
// 30 + 20 + 20 + 15 + 15 = 100.
const (
	maxCompleteness = 30.0
	maxSizeFit      = 20.0
	maxFunding      = 20.0
	maxTechStack    = 15.0
	maxContacts     = 15.0
)

// LeadScore scores a company record. A nil or empty record still earns the
// employee-count-absent floor of 5.
func LeadScore(record *types.CompanyRecord) float64 {
	if record == nil {
		record = &types.CompanyRecord{}
	}

	score := completenessScore(record) +
		sizeFitScore(record.EmployeeCount) +
		fundingScore(record.Funding) +
		techStackScore(record.TechStack) +
		contactsScore(record)

	if score > 100 {
		return 100
	}
	return score
}

// completenessScore awards up to 30 points across the five core identity
// fields, 6 per populated field. A headcount of zero counts as unknown.
func completenessScore(record *types.CompanyRecord) float64 {
	fields := []bool{
		record.Name != "",
		record.Domain != "",
		record.Industry != "",
		record.EmployeeCount != nil && *record.EmployeeCount != 0,
		record.Description != "",
	}
	populated := 0
	for _, present := range fields {
		if present {
			populated++
		}
	}
	return float64(populated) / float64(len(fields)) * maxCompleteness
}

// sizeFitScore prefers the mid-market band. 50-500 employees is the sweet
// spot; companies over 1000 and companies with no known headcount share the
// bottom band.
func sizeFitScore(employeeCount *int) float64 {
	if employeeCount == nil {
		return 5
	}
	n := *employeeCount
	switch {
	case n >= 50 && n <= 500:
		return maxSizeFit
	case n > 500 && n <= 1000:
		return 15
	case n < 50:
		return 10
	default:
		return 5
	}
}

// fundingScore awards 20 for known total funding, 15 when only annual
// revenue is known.
func fundingScore(funding *types.Funding) float64 {
	if funding == nil {
		return 0
	}
	if funding.Total != nil {
		return maxFunding
	}
	if funding.AnnualRevenue != nil {
		return 15
	}
	return 0
}

// techStackScore awards 3 points per known technology, capped at 15.
func techStackScore(stack []string) float64 {
	points := 3.0 * float64(len(stack))
	if points > maxTechStack {
		return maxTechStack
	}
	return points
}

// contactsScore awards 10 for a known email pattern and 5 for any
// discovered addresses.
func contactsScore(record *types.CompanyRecord) float64 {
	score := 0.0
	if record.EmailPattern != "" {
		score += 10
	}
	if record.TotalEmailsFound > 0 {
		score += 5
	}
	return score
}
