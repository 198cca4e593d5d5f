package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/capability"
	"github.com/jonathan/cv-optimizer/internal/db"
	"github.com/jonathan/cv-optimizer/internal/logger"
	"github.com/jonathan/cv-optimizer/internal/server/middleware"
)

type linkedInParseRequest struct {
	PDFText string `json:"pdfText" validate:"required"`
}

type linkedInManualRequest struct {
	Profile *capability.LinkedInProfile `json:"profile" validate:"required"`
}

type linkedInMergeRequest struct {
	CVText          string                      `json:"cvText" validate:"required"`
	LinkedInProfile *capability.LinkedInProfile `json:"linkedInProfile" validate:"required"`
	Priority        capability.MergePriority    `json:"priority"`
}

// profileView is a LinkedIn profile as returned to clients.
type profileView struct {
	ID             *uuid.UUID                 `json:"id,omitempty"`
	FullName       string                     `json:"fullName"`
	Headline       string                     `json:"headline"`
	Location       string                     `json:"location"`
	Summary        string                     `json:"summary"`
	Experience     []capability.Position      `json:"experience"`
	Education      []capability.School        `json:"education"`
	Skills         []string                   `json:"skills"`
	Certifications []capability.Certification `json:"certifications"`
	Languages      []capability.Language      `json:"languages"`
	SourceType     string                     `json:"sourceType"`
}

type linkedInParseResponse struct {
	Profile           profileView `json:"profile"`
	ExtractedSections []string    `json:"extractedSections"`
}

// profileRow copies a parsed or hand-entered profile into a row, replacing absent lists with empty ones.
func profileRow(p *capability.LinkedInProfile, sourceType string, userID *uuid.UUID) *db.LinkedInProfile {
	return &db.LinkedInProfile{
		UserID:         userID,
		FullName:       strings.TrimSpace(p.FullName),
		Headline:       p.Headline,
		Location:       p.Location,
		Summary:        p.Summary,
		Experience:     nonNil(p.Experience),
		Education:      nonNil(p.Education),
		Skills:         nonNil(p.Skills),
		Certifications: nonNil(p.Certifications),
		Languages:      nonNil(p.Languages),
		SourceType:     sourceType,
	}
}

func viewOf(row *db.LinkedInProfile, id *uuid.UUID) profileView {
	return profileView{
		ID:             id,
		FullName:       row.FullName,
		Headline:       row.Headline,
		Location:       row.Location,
		Summary:        row.Summary,
		Experience:     row.Experience,
		Education:      row.Education,
		Skills:         row.Skills,
		Certifications: row.Certifications,
		Languages:      row.Languages,
		SourceType:     row.SourceType,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// handleLinkedInParse structures the text of a LinkedIn PDF export and stores it.
func (s *Server) handleLinkedInParse(w http.ResponseWriter, r *http.Request) {
	var req linkedInParseRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := s.generationContext(r)
	defer cancel()
	parsed, err := s.advisor.ParseLinkedIn(ctx, req.PDFText)
	if err != nil {
		fail(w, r, err)
		return
	}

	row := profileRow(parsed, db.SourcePDF, middleware.OptionalUserID(r))
	var id *uuid.UUID
	if saved, err := s.store.SaveLinkedInProfile(r.Context(), row); err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("failed to save parsed LinkedIn profile")
	} else {
		id = &saved
	}
	success(w, r, linkedInParseResponse{
		Profile:           viewOf(row, id),
		ExtractedSections: nonNil(parsed.ExtractedSections),
	})
}

// handleLinkedInManual stores a profile entered by hand.
func (s *Server) handleLinkedInManual(w http.ResponseWriter, r *http.Request) {
	var req linkedInManualRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Profile.FullName) == "" {
		fail(w, r, &ErrValidation{Field: "profile.fullName", Message: "is required"})
		return
	}

	row := profileRow(req.Profile, db.SourceManual, middleware.OptionalUserID(r))
	id, err := s.store.SaveLinkedInProfile(r.Context(), row)
	if err != nil {
		fail(w, r, err)
		return
	}
	success(w, r, map[string]any{"profile": viewOf(row, &id)})
}

// handleLinkedInMerge folds a LinkedIn profile into a CV.
func (s *Server) handleLinkedInMerge(w http.ResponseWriter, r *http.Request) {
	var req linkedInMergeRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.Priority == "" {
		req.Priority = capability.PriorityBalanced
	}
	if !req.Priority.Valid() {
		fail(w, r, &ErrValidation{Field: "priority", Message: "must be one of cv, linkedin, balanced"})
		return
	}

	ctx, cancel := s.generationContext(r)
	defer cancel()
	result, err := s.advisor.MergeProfiles(ctx, req.CVText, *req.LinkedInProfile, req.Priority)
	if err != nil {
		fail(w, r, err)
		return
	}
	success(w, r, result)
}
