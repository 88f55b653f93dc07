package server

import (
	"net/http"

	"github.com/google/uuid"
)

// handleGetTask returns a background task's status and result.
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := s.db.GetTask(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if task == nil {
		s.errorResponse(w, http.StatusNotFound, "Task not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, task)
}
