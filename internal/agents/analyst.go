package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/alexryan/leadscout/internal/llm"
	"github.com/alexryan/leadscout/internal/prompts"
	"github.com/alexryan/leadscout/internal/types"
)

// Analyst assesses a collected profile: what the company likely struggles
// with and what it will spend on next.
type Analyst struct {
	client llm.Client
	logger *zap.Logger
}

// NewAnalyst builds an analyst agent.
func NewAnalyst(client llm.Client, logger *zap.Logger) *Analyst {
	return &Analyst{client: client, logger: logger}
}

// AnalyzeCompany produces a validated analysis of the profile.
func (a *Analyst) AnalyzeCompany(ctx context.Context, profile *types.Profile) (*Analysis, error) {
	if profile == nil || profile.Record == nil {
		return nil, fmt.Errorf("profile is required")
	}

	profileJSON, err := json.MarshalIndent(profile.Record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}

	prompt := prompts.Format(prompts.MustGet("analysis.json", "analyze_company"), map[string]string{
		"Profile": string(profileJSON),
	})

	response, err := a.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("analysis generation failed: %w", err)
	}

	var analysis Analysis
	if err := validateAndDecode("analysis.json", response, &analysis); err != nil {
		return nil, err
	}

	a.logger.Info("company analyzed",
		zap.String("company", profile.CompanyName),
		zap.Float64("confidence", analysis.Confidence),
		zap.Int("pain_points", len(analysis.PainPoints)))
	return &analysis, nil
}
