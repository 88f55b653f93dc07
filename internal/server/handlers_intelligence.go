package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/alexryan/leadscout/internal/agents"
	"github.com/alexryan/leadscout/internal/db"
	"github.com/alexryan/leadscout/internal/types"
)

// analyzePayload is the persisted payload of an intelligence.analyze task.
type analyzePayload struct {
	CompanyID uuid.UUID `json:"company_id"`
}

// handleAnalyzeCompany queues an asynchronous analysis and answers 202.
func (s *Server) handleAnalyzeCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathCompanyID(r)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "Invalid company ID")
		return
	}
	if s.analyst == nil {
		err := &ErrServiceDisabled{Service: "company analysis"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
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

	taskID, err := s.runner.Enqueue(r.Context(), TaskAnalyze, analyzePayload{CompanyID: id})
	if err != nil {
		s.errorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"task_id": taskID.String(),
		"status":  db.TaskPending,
	})
}

// handleAnalyzeCompanySync runs the analyst within the request.
func (s *Server) handleAnalyzeCompanySync(w http.ResponseWriter, r *http.Request) {
	id, ok := pathCompanyID(r)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "Invalid company ID")
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

	analysis, err := s.analyzeStored(r.Context(), company)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, analysis)
}

// analyzeStored runs the analyst on a tracked company, stores the report and
// advances the company to analyzed.
func (s *Server) analyzeStored(ctx context.Context, company *db.Company) (*agents.Analysis, error) {
	if s.analyst == nil {
		return nil, &ErrServiceDisabled{Service: "company analysis"}
	}

	profile, err := s.storedProfile(ctx, company)
	if err != nil {
		return nil, err
	}

	analysis, err := s.analyst.AnalyzeCompany(ctx, profile)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.SaveIntelligence(ctx, &db.Intelligence{
		CompanyID:  company.ID,
		Summary:    analysis.Summary,
		PainPoints: analysis.PainPoints,
		Priorities: analysis.Priorities,
		Confidence: analysis.Confidence,
	}); err != nil {
		return nil, err
	}
	if err := s.db.UpdateCompanyStatus(ctx, company.ID, db.StatusAnalyzed); err != nil {
		return nil, err
	}
	return analysis, nil
}

// handleGetIntelligence returns the latest stored report for a company.
func (s *Server) handleGetIntelligence(w http.ResponseWriter, r *http.Request) {
	id, ok := pathCompanyID(r)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "Invalid company ID")
		return
	}

	intel, err := s.db.LatestIntelligence(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if intel == nil {
		s.errorResponse(w, http.StatusNotFound, "No intelligence reports for company")
		return
	}
	s.jsonResponse(w, http.StatusOK, intel)
}

// handleGenerateOutreach produces outreach email content for one of a
// company's stored contacts and optionally delivers it over SMTP.
func (s *Server) handleGenerateOutreach(w http.ResponseWriter, r *http.Request) {
	id, ok := pathCompanyID(r)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "Invalid company ID")
		return
	}

	// The body is optional; an empty body targets the top decision maker.
	var req OutreachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if s.generator == nil {
		err := &ErrServiceDisabled{Service: "outreach generation"}
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

	contact, err := s.pickOutreachContact(r.Context(), id, req.ContactEmail)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if contact == nil {
		s.errorResponse(w, http.StatusNotFound, "No matching contact for company")
		return
	}

	profile, err := s.storedProfile(r.Context(), company)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	intel, err := s.db.LatestIntelligence(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	var analysis *agents.Analysis
	if intel != nil {
		analysis = &agents.Analysis{
			Summary:    intel.Summary,
			PainPoints: intel.PainPoints,
			Priorities: intel.Priorities,
			Confidence: intel.Confidence,
		}
	}

	content, err := s.generator.OutreachEmail(r.Context(), profile, contact, analysis)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	if intel != nil {
		if encoded, err := json.Marshal(content); err == nil {
			if err := s.db.AttachOutreach(r.Context(), intel.ID, encoded); err != nil {
				s.logger.Warn("failed to store outreach content")
			}
		}
	}

	sent := false
	if req.Send {
		if err := s.deliverOutreach(r.Context(), company, contact, content); err != nil {
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
		sent = true
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"contact": contact,
		"content": content,
		"sent":    sent,
	})
}

// pickOutreachContact selects the target contact: a specific email when
// given, otherwise the highest-ranked stored contact. ListContacts orders
// decision makers first, so the fallback is the best available approver.
func (s *Server) pickOutreachContact(ctx context.Context, companyID uuid.UUID, email string) (*types.Contact, error) {
	rows, err := s.db.ListContacts(ctx, companyID, false)
	if err != nil {
		return nil, err
	}
	if email != "" {
		want := strings.ToLower(strings.TrimSpace(email))
		for _, row := range rows {
			if strings.ToLower(row.Email) == want {
				return &row.Contact, nil
			}
		}
		return nil, nil
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0].Contact, nil
}

// deliverOutreach sends the generated email and advances the company to
// contacted.
func (s *Server) deliverOutreach(ctx context.Context, company *db.Company, contact *types.Contact, content *agents.OutreachContent) error {
	if s.mailer == nil || !s.mailer.Enabled() {
		return &ErrServiceDisabled{Service: "email delivery"}
	}
	if contact.Email == "" {
		return &ErrValidation{Field: "contact_email", Message: "selected contact has no email address"}
	}
	subject := "Quick question"
	if len(content.SubjectLines) > 0 {
		subject = content.SubjectLines[0]
	}
	if err := s.mailer.Send(contact.Email, subject, content.EmailBody); err != nil {
		return err
	}
	return s.db.UpdateCompanyStatus(ctx, company.ID, db.StatusContacted)
}
