package apiclient

import (
	"context"
	"net/http"

	"github.com/jonathan/cv-optimizer/internal/capability"
	"github.com/jonathan/cv-optimizer/internal/prompts"
)

// OptimizeResponse is the /api/optimize payload.
type OptimizeResponse struct {
	capability.Optimization
	OriginalCV     string `json:"originalCV"`
	OptimizationID string `json:"optimizationId,omitempty"`
}

// OptimizeCV tailors cvText to jobDescription; targetRole may be empty.
func (c *Client) OptimizeCV(ctx context.Context, cvText, jobDescription, targetRole string) (*OptimizeResponse, error) {
	body := struct {
		CVText         string `json:"cvText"`
		JobDescription string `json:"jobDescription"`
		TargetRole     string `json:"targetRole,omitempty"`
	}{cvText, jobDescription, targetRole}
	return Decode[OptimizeResponse](c.Call(ctx, http.MethodPost, "/api/optimize", body, nil))
}

// AnalyzeJob extracts structure from a job posting.
func (c *Client) AnalyzeJob(ctx context.Context, jobDescription string) (*capability.JobAnalysis, error) {
	body := struct {
		JobDescription string `json:"jobDescription"`
	}{jobDescription}
	return Decode[capability.JobAnalysis](c.Call(ctx, http.MethodPost, "/api/analyze-job", body, nil))
}

// CoverLetter writes a cover letter in tone; an empty tone means professional.
func (c *Client) CoverLetter(ctx context.Context, cvText, jobDescription string, tone capability.Tone) (*capability.CoverLetter, error) {
	if tone == "" {
		tone = capability.ToneProfessional
	}
	body := struct {
		CVText         string          `json:"cvText"`
		JobDescription string          `json:"jobDescription"`
		Tone           capability.Tone `json:"tone"`
	}{cvText, jobDescription, tone}
	return Decode[capability.CoverLetter](c.Call(ctx, http.MethodPost, "/api/cover-letter", body, nil))
}

// SkillGap analyzes missing skills for a posting.
func (c *Client) SkillGap(ctx context.Context, cvText, jobDescription string) (*capability.SkillGapAnalysis, error) {
	body := struct {
		CVText         string `json:"cvText"`
		JobDescription string `json:"jobDescription"`
	}{cvText, jobDescription}
	return Decode[capability.SkillGapAnalysis](c.Call(ctx, http.MethodPost, "/api/skill-gap", body, nil))
}

// CompareJobs ranks how well the CV fits each posting.
func (c *Client) CompareJobs(ctx context.Context, cvText string, jobs []prompts.JobPosting) (*capability.JobComparison, error) {
	body := struct {
		CVText string               `json:"cvText"`
		Jobs   []prompts.JobPosting `json:"jobs"`
	}{cvText, jobs}
	return Decode[capability.JobComparison](c.Call(ctx, http.MethodPost, "/api/compare-jobs", body, nil))
}
