package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/server/middleware"
)

// handleHistoryList returns the caller's optimizations, newest first.
func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	history, err := s.store.ListOptimizationsByUser(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	success(w, r, map[string]any{"history": history})
}

// handleHistoryDelete removes one of the caller's optimizations, given as ?id=.
func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	raw := r.URL.Query().Get("id")
	if raw == "" {
		fail(w, r, &ErrValidation{Field: "id", Message: "is required"})
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		fail(w, r, &ErrNotFound{Resource: "record"})
		return
	}

	deleted, err := s.store.DeleteOptimizationForUser(r.Context(), id, userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !deleted {
		fail(w, r, &ErrNotFound{Resource: "record"})
		return
	}
	success(w, r, nil)
}
