package server

import (
	"context"
	"encoding/json"
	"fmt"
)

// registerTaskHandlers installs the background task handlers on the runner.
// Called from New before the runner starts.
func (s *Server) registerTaskHandlers() {
	s.runner.Register(TaskBuildProfile, s.runBuildProfileTask)
	s.runner.Register(TaskAnalyze, s.runAnalyzeTask)
}

// runBuildProfileTask executes a queued profile build.
func (s *Server) runBuildProfileTask(ctx context.Context, payload []byte) (any, error) {
	var p buildProfilePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("bad task payload: %w", err)
	}

	company, err := s.db.GetCompany(ctx, p.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("company not found: %s", p.CompanyID)
	}

	profile, err := s.buildAndStoreProfile(ctx, company, p.IncludeContacts, p.UseCache)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"company_id":   p.CompanyID,
		"lead_score":   profile.LeadScore,
		"contacts":     len(profile.Contacts),
		"sources_used": profile.Record.SourcesUsed,
	}, nil
}

// runAnalyzeTask executes a queued company analysis.
func (s *Server) runAnalyzeTask(ctx context.Context, payload []byte) (any, error) {
	var p analyzePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("bad task payload: %w", err)
	}

	company, err := s.db.GetCompany(ctx, p.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("company not found: %s", p.CompanyID)
	}

	analysis, err := s.analyzeStored(ctx, company)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"company_id": p.CompanyID,
		"summary":    analysis.Summary,
		"confidence": analysis.Confidence,
	}, nil
}
