package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/alexryan/leadscout/internal/db"
)

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// pathCompanyID parses the {id} path segment.
func pathCompanyID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	return id, err == nil
}

// handleCreateCompany registers a company with status "discovered".
func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	id, err := s.db.CreateCompany(r.Context(), &db.Company{
		Name:     req.Name,
		Domain:   req.Domain,
		Industry: req.Industry,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	company, err := s.db.GetCompany(r.Context(), id)
	if err != nil || company == nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	s.jsonResponse(w, http.StatusCreated, company)
}

// handleListCompanies lists companies with optional status, industry and
// min_score filters.
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	minScore, _ := strconv.ParseFloat(r.URL.Query().Get("min_score"), 64)
	filters := db.CompanyFilters{
		Status:   r.URL.Query().Get("status"),
		Industry: r.URL.Query().Get("industry"),
		MinScore: minScore,
		Limit:    parseQueryInt(r, "limit", 50, 100),
		Offset:   parseQueryInt(r, "offset", 0, 0),
	}

	companies, err := s.db.ListCompanies(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if companies == nil {
		companies = []db.Company{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"companies": companies,
		"total":     len(companies),
		"limit":     filters.Limit,
		"offset":    filters.Offset,
	})
}

// handleGetCompany retrieves a company by ID
func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
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
	s.jsonResponse(w, http.StatusOK, company)
}

// handleDeleteCompany deletes a company and its dependent rows
func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathCompanyID(r)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "Invalid company ID")
		return
	}

	if err := s.db.DeleteCompany(r.Context(), id); err != nil {
		s.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleListContacts lists a company's stored contacts
func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathCompanyID(r)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "Invalid company ID")
		return
	}

	decisionMakersOnly := r.URL.Query().Get("decision_makers_only") == "true"
	contacts, err := s.db.ListContacts(r.Context(), id, decisionMakersOnly)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if contacts == nil {
		contacts = []db.Contact{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"contacts": contacts,
		"total":    len(contacts),
	})
}
