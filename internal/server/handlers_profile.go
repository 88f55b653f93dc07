package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/alexryan/leadscout/internal/collector"
	"github.com/alexryan/leadscout/internal/db"
	"github.com/alexryan/leadscout/internal/types"
)

// buildProfilePayload is the persisted payload of a profile.build task.
type buildProfilePayload struct {
	CompanyID       uuid.UUID `json:"company_id"`
	IncludeContacts bool      `json:"include_contacts"`
	UseCache        bool      `json:"use_cache"`
}

// handleBuildProfile queues an asynchronous profile build and answers 202
// with the task ID to poll.
func (s *Server) handleBuildProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathCompanyID(r)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "Invalid company ID")
		return
	}
	req, ok := s.decodeBuildProfileRequest(w, r)
	if !ok {
		return
	}
	if s.runner == nil {
		err := &ErrServiceDisabled{Service: "background tasks"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	company, err := s.db.GetCompany(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if company == nil {
		s.errorResponse(w, http.StatusNotFound, "Company not found")
		return
	}

	if err := s.db.UpdateCompanyStatus(r.Context(), id, db.StatusProfiling); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	taskID, err := s.runner.Enqueue(r.Context(), TaskBuildProfile, buildProfilePayload{
		CompanyID:       id,
		IncludeContacts: boolOrDefault(req.IncludeContacts, true),
		UseCache:        boolOrDefault(req.UseCache, true),
	})
	if err != nil {
		s.errorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"task_id": taskID.String(),
		"status":  db.TaskPending,
	})
}

// handleBuildProfileSync builds and stores a profile within the request.
func (s *Server) handleBuildProfileSync(w http.ResponseWriter, r *http.Request) {
	id, ok := pathCompanyID(r)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "Invalid company ID")
		return
	}
	req, ok := s.decodeBuildProfileRequest(w, r)
	if !ok {
		return
	}

	company, err := s.db.GetCompany(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if company == nil {
		s.errorResponse(w, http.StatusNotFound, "Company not found")
		return
	}

	profile, err := s.buildAndStoreProfile(r.Context(), company,
		boolOrDefault(req.IncludeContacts, true), boolOrDefault(req.UseCache, true))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// decodeBuildProfileRequest reads the optional request body. An empty body
// means defaults.
func (s *Server) decodeBuildProfileRequest(w http.ResponseWriter, r *http.Request) (BuildProfileRequest, bool) {
	var req BuildProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return req, false
	}
	return req, true
}

// buildAndStoreProfile collects a full profile for a tracked company and
// persists the merged record, score and contacts onto its row.
func (s *Server) buildAndStoreProfile(ctx context.Context, company *db.Company, includeContacts, useCache bool) (*collector.FullProfile, error) {
	profile, err := s.collector.CollectFullProfile(ctx, company.Name, company.Domain, includeContacts, useCache)
	if err != nil {
		return nil, err
	}

	update := recordToCompany(profile.Record)
	update.LeadScore = profile.LeadScore
	update.Status = db.StatusProfiling
	if err := s.db.UpdateCompanyProfile(ctx, company.ID, update); err != nil {
		return nil, err
	}

	if includeContacts && len(profile.Contacts) > 0 {
		if err := s.db.ReplaceContacts(ctx, company.ID, profile.Contacts); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// recordToCompany maps a merged record onto a company row update.
func recordToCompany(rec *types.CompanyRecord) *db.Company {
	return &db.Company{
		Industry:      rec.Industry,
		Sector:        rec.Sector,
		EmployeeCount: rec.EmployeeCount,
		EmployeeRange: rec.EmployeeRange,
		Description:   rec.Description,
		Website:       rec.Website,
		LinkedInURL:   rec.LinkedInURL,
		FoundedYear:   rec.FoundedYear,
		Location:      rec.Location,
		TechStack:     rec.TechStack,
		Funding:       rec.Funding,
		SourcesUsed:   rec.SourcesUsed,
	}
}

// companyToRecord rebuilds a merged record from a stored company row, used
// when analysis or outreach runs against an already-profiled company.
func companyToRecord(c *db.Company) *types.CompanyRecord {
	return &types.CompanyRecord{
		Name:          c.Name,
		Domain:        c.Domain,
		Industry:      c.Industry,
		Sector:        c.Sector,
		EmployeeCount: c.EmployeeCount,
		EmployeeRange: c.EmployeeRange,
		Description:   c.Description,
		Website:       c.Website,
		LinkedInURL:   c.LinkedInURL,
		FoundedYear:   c.FoundedYear,
		Location:      c.Location,
		TechStack:     c.TechStack,
		Funding:       c.Funding,
		SourcesUsed:   c.SourcesUsed,
	}
}

// storedProfile assembles a profile view of a tracked company from its row
// and stored contacts.
func (s *Server) storedProfile(ctx context.Context, company *db.Company) (*types.Profile, error) {
	rows, err := s.db.ListContacts(ctx, company.ID, false)
	if err != nil {
		return nil, err
	}
	contacts := make([]types.Contact, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, row.Contact)
	}

	return &types.Profile{
		CompanyName: company.Name,
		Domain:      company.Domain,
		LeadScore:   company.LeadScore,
		Record:      companyToRecord(company),
		Contacts:    contacts,
		CollectedAt: company.UpdatedAt,
	}, nil
}
