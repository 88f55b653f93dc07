package server

import (
	"encoding/json"
	"net/http"

	"github.com/alexryan/leadscout/internal/scoring"
	"github.com/alexryan/leadscout/internal/types"
)

// handleCollectCompany runs a synchronous company aggregation across all
// eligible sources and returns the merged, scored record without persisting
// anything.
func (s *Server) handleCollectCompany(w http.ResponseWriter, r *http.Request) {
	var req CollectCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	data, err := s.collector.CollectCompanyData(r.Context(), req.CompanyName, req.Domain,
		boolOrDefault(req.UseCache, true))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"data":              data.Record,
		"raw_data":          data.Raw,
		"sources_available": data.SourcesAvailable,
		"lead_score":        scoring.LeadScore(data.Record),
	})
}

// handleCollectContacts runs a synchronous contact collection.
func (s *Server) handleCollectContacts(w http.ResponseWriter, r *http.Request) {
	var req CollectContactsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	contacts, err := s.collector.CollectContacts(r.Context(), req.CompanyName, req.Domain,
		req.Limit, boolOrDefault(req.UseCache, true))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if contacts == nil {
		contacts = []types.Contact{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"contacts": contacts,
		"total":    len(contacts),
	})
}
