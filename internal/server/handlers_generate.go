package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/capability"
	"github.com/jonathan/cv-optimizer/internal/db"
	"github.com/jonathan/cv-optimizer/internal/logger"
	"github.com/jonathan/cv-optimizer/internal/prompts"
	"github.com/jonathan/cv-optimizer/internal/server/middleware"
)

// defaultJobTitle names a stored posting when no target role was given.
const defaultJobTitle = "Untitled position"

// cvJobRequest is the common body of the CV and job description capabilities.
type cvJobRequest struct {
	CVText         string `json:"cvText" validate:"required"`
	JobDescription string `json:"jobDescription" validate:"required"`
}

type optimizeRequest struct {
	CVText         string `json:"cvText" validate:"required"`
	JobDescription string `json:"jobDescription" validate:"required"`
	TargetRole     string `json:"targetRole" validate:"max=200"`
}

type analyzeJobRequest struct {
	JobDescription string `json:"jobDescription" validate:"required"`
}

type coverLetterRequest struct {
	CVText         string          `json:"cvText" validate:"required"`
	JobDescription string          `json:"jobDescription" validate:"required"`
	Tone           capability.Tone `json:"tone"`
}

type compareJobsRequest struct {
	CVText string               `json:"cvText" validate:"required"`
	Jobs   []prompts.JobPosting `json:"jobs" validate:"required,min=2,max=10,dive"`
}

type optimizeResponse struct {
	*capability.Optimization
	OriginalCV     string     `json:"originalCV"`
	OptimizationID *uuid.UUID `json:"optimizationId,omitempty"`
}

type coverLetterResponse struct {
	*capability.CoverLetter
	CoverLetterID *uuid.UUID `json:"coverLetterId,omitempty"`
}

// generationContext bounds a model call by the configured timeout.
func (s *Server) generationContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.llmTimeout)
}

// handleOptimize tailors a CV to a job description and records the result.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := s.generationContext(r)
	defer cancel()
	result, err := s.advisor.OptimizeCV(ctx, req.CVText, req.JobDescription, req.TargetRole)
	if err != nil {
		fail(w, r, err)
		return
	}

	resp := optimizeResponse{Optimization: result, OriginalCV: req.CVText}
	if id, err := s.saveOptimization(r, req, result); err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("failed to save optimization")
	} else {
		resp.OptimizationID = &id
	}
	success(w, r, resp)
}

func (s *Server) saveOptimization(r *http.Request, req optimizeRequest, result *capability.Optimization) (uuid.UUID, error) {
	ctx := r.Context()
	title := strings.TrimSpace(req.TargetRole)
	if title == "" {
		title = defaultJobTitle
	}
	postingID, err := s.store.CreateJobPosting(ctx, &db.JobPosting{
		Title:          title,
		Description:    req.JobDescription,
		RequiredSkills: result.Keywords.Matched,
		Keywords:       result.Keywords.Added,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return s.store.CreateOptimization(ctx, &db.Optimization{
		UserID:          middleware.OptionalUserID(r),
		JobPostingID:    &postingID,
		OriginalCV:      req.CVText,
		OptimizedCV:     result.OptimizedCV,
		TargetRole:      result.TargetRole,
		ATSScoreBefore:  result.ATSScore.Before,
		ATSScoreAfter:   result.ATSScore.After,
		MatchedKeywords: result.Keywords.Matched,
		AddedKeywords:   result.Keywords.Added,
		MissingSkills:   result.Keywords.Missing,
		Improvements:    result.Improvements,
		RoleAdaptations: result.RoleAdaptations,
	})
}

// handleAnalyzeJob extracts requirements from a job description.
func (s *Server) handleAnalyzeJob(w http.ResponseWriter, r *http.Request) {
	var req analyzeJobRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := s.generationContext(r)
	defer cancel()
	result, err := s.advisor.AnalyzeJob(ctx, req.JobDescription)
	if err != nil {
		fail(w, r, err)
		return
	}
	success(w, r, result)
}

// handleCoverLetter writes a cover letter and records it.
func (s *Server) handleCoverLetter(w http.ResponseWriter, r *http.Request) {
	var req coverLetterRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.Tone == "" {
		req.Tone = capability.ToneProfessional
	}
	if !req.Tone.Valid() {
		fail(w, r, &ErrValidation{Field: "tone", Message: "must be one of professional, enthusiastic, formal"})
		return
	}

	ctx, cancel := s.generationContext(r)
	defer cancel()
	result, err := s.advisor.CoverLetter(ctx, req.CVText, req.JobDescription, req.Tone)
	if err != nil {
		fail(w, r, err)
		return
	}

	resp := coverLetterResponse{CoverLetter: result}
	if id, err := s.saveCoverLetter(r, req, result); err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("failed to save cover letter")
	} else {
		resp.CoverLetterID = &id
	}
	success(w, r, resp)
}

func (s *Server) saveCoverLetter(r *http.Request, req coverLetterRequest, result *capability.CoverLetter) (uuid.UUID, error) {
	ctx := r.Context()
	postingID, err := s.store.CreateJobPosting(ctx, &db.JobPosting{
		Title:       defaultJobTitle,
		Description: req.JobDescription,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return s.store.SaveCoverLetter(ctx, &db.CoverLetter{
		UserID:       middleware.OptionalUserID(r),
		JobPostingID: &postingID,
		Content:      result.CoverLetter,
		Tone:         string(req.Tone),
	})
}

// handleSkillGap lists missing skills and records each gap.
func (s *Server) handleSkillGap(w http.ResponseWriter, r *http.Request) {
	var req cvJobRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := s.generationContext(r)
	defer cancel()
	result, err := s.advisor.SkillGap(ctx, req.CVText, req.JobDescription)
	if err != nil {
		fail(w, r, err)
		return
	}

	if len(result.Gaps) > 0 {
		if err := s.store.SaveSkillGaps(r.Context(), skillGapRows(middleware.OptionalUserID(r), result.Gaps)); err != nil {
			logger.Ctx(r.Context()).Warn().Err(err).Int("gaps", len(result.Gaps)).Msg("failed to save skill gaps")
		}
	}
	success(w, r, result)
}

// skillGapRows converts generated gaps into rows, filling the defaults the model may omit.
func skillGapRows(userID *uuid.UUID, gaps []capability.Gap) []db.SkillGap {
	rows := make([]db.SkillGap, 0, len(gaps))
	for _, g := range gaps {
		skill := strings.TrimSpace(g.Skill)
		if skill == "" {
			skill = "Unknown skill"
		}
		category := string(g.Category)
		if category == "" {
			category = string(capability.CategoryTechnical)
		}
		importance := string(g.Importance)
		if importance == "" {
			importance = string(capability.ImportanceImportant)
		}
		path := g.LearningPath
		rows = append(rows, db.SkillGap{
			UserID:        userID,
			MissingSkill:  skill,
			Category:      category,
			Importance:    importance,
			LearningPath:  &path,
			EstimatedTime: path.EstimatedTime,
		})
	}
	return rows
}

// handleCompareJobs ranks several postings against one CV.
func (s *Server) handleCompareJobs(w http.ResponseWriter, r *http.Request) {
	var req compareJobsRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	ctx, cancel := s.generationContext(r)
	defer cancel()
	result, err := s.advisor.CompareJobs(ctx, req.CVText, req.Jobs)
	if err != nil {
		fail(w, r, err)
		return
	}
	success(w, r, result)
}
