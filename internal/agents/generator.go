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

// Generator writes outreach email material for a prospect.
type Generator struct {
	client llm.Client
	logger *zap.Logger
}

// NewGenerator builds a generator agent.
func NewGenerator(client llm.Client, logger *zap.Logger) *Generator {
	return &Generator{client: client, logger: logger}
}

// OutreachEmail produces validated outreach content for a contact at the
// profiled company. The analysis is optional; without one the model works
// from the profile alone.
func (g *Generator) OutreachEmail(ctx context.Context, profile *types.Profile, contact *types.Contact, analysis *Analysis) (*OutreachContent, error) {
	if profile == nil || profile.Record == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if contact == nil {
		return nil, fmt.Errorf("contact is required")
	}

	profileJSON, err := json.MarshalIndent(profile.Record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	contactJSON, err := json.MarshalIndent(contact, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode contact: %w", err)
	}
	analysisText := "No prior analysis available."
	if analysis != nil {
		if encoded, err := json.MarshalIndent(analysis, "", "  "); err == nil {
			analysisText = string(encoded)
		}
	}

	prompt := prompts.Format(prompts.MustGet("outreach.json", "outreach_email"), map[string]string{
		"Profile":  string(profileJSON),
		"Contact":  string(contactJSON),
		"Analysis": analysisText,
	})

	response, err := g.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("outreach generation failed: %w", err)
	}

	var content OutreachContent
	if err := validateAndDecode("outreach.json", response, &content); err != nil {
		return nil, err
	}

	g.logger.Info("outreach generated",
		zap.String("company", profile.CompanyName),
		zap.String("contact", contact.DisplayName()),
		zap.Int("subject_lines", len(content.SubjectLines)))
	return &content, nil
}
