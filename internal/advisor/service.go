// Package advisor exposes the optimizer capabilities as typed calls on top of the structured invoker.
package advisor

import (
	"context"
	"fmt"

	"github.com/jonathan/cv-optimizer/internal/capability"
	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/prompts"
	"github.com/tidwall/gjson"
)

// Service runs one capability per call. It holds no per-request state.
type Service struct {
	invoker llm.StructuredInvoker
}

// New creates a Service on top of inv.
func New(inv llm.StructuredInvoker) *Service {
	return &Service{invoker: inv}
}

// OptimizeCV tailors cvText to jobDescription. targetRole may be empty.
func (s *Service) OptimizeCV(ctx context.Context, cvText, jobDescription, targetRole string) (*capability.Optimization, error) {
	pair, err := prompts.BuildOptimizeCV(cvText, jobDescription, targetRole)
	if err != nil {
		return nil, err
	}
	return llm.Generate(ctx, s.invoker, capability.OptimizeCVContract, pair)
}

// AnalyzeJob extracts requirements and tips from a job posting.
func (s *Service) AnalyzeJob(ctx context.Context, jobDescription string) (*capability.JobAnalysis, error) {
	pair, err := prompts.BuildAnalyzeJob(jobDescription)
	if err != nil {
		return nil, err
	}
	return llm.Generate(ctx, s.invoker, capability.AnalyzeJobContract, pair)
}

// CoverLetter writes a cover letter in tone. A letter that still carries template tokens is rejected.
func (s *Service) CoverLetter(ctx context.Context, cvText, jobDescription string, tone capability.Tone) (*capability.CoverLetter, error) {
	pair, err := prompts.BuildCoverLetter(cvText, jobDescription, tone)
	if err != nil {
		return nil, err
	}
	letter, err := llm.Generate(ctx, s.invoker, capability.CoverLetterContract, pair)
	if err != nil {
		return nil, err
	}
	if err := checkCoverLetter(letter.CoverLetter); err != nil {
		return nil, err
	}
	return letter, nil
}

func checkCoverLetter(text string) error {
	if left := prompts.Unresolved(text); len(left) > 0 {
		return &llm.GenerationFailedError{
			Capability: capability.GenerateCoverLetter,
			Cause:      fmt.Errorf("cover letter contains template tokens: %v", left),
		}
	}
	return nil
}

// Document runs capability c on a prebuilt prompt and returns the raw
// schema-valid JSON, after the same output checks the typed calls apply.
func (s *Service) Document(ctx context.Context, c capability.Capability, pair prompts.Pair) ([]byte, error) {
	doc, err := s.invoker.Invoke(ctx, c, pair)
	if err != nil {
		return nil, err
	}
	if c == capability.GenerateCoverLetter {
		text := gjson.GetBytes(doc, "coverLetter").String()
		if err := checkCoverLetter(text); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// SkillGap lists the skills the CV lacks for a posting.
func (s *Service) SkillGap(ctx context.Context, cvText, jobDescription string) (*capability.SkillGapAnalysis, error) {
	pair, err := prompts.BuildSkillGap(cvText, jobDescription)
	if err != nil {
		return nil, err
	}
	return llm.Generate(ctx, s.invoker, capability.SkillGapContract, pair)
}

// CompareJobs scores the CV against every posting in a single call.
func (s *Service) CompareJobs(ctx context.Context, cvText string, jobs []prompts.JobPosting) (*capability.JobComparison, error) {
	pair, err := prompts.BuildCompareJobs(cvText, jobs)
	if err != nil {
		return nil, err
	}
	return llm.Generate(ctx, s.invoker, capability.CompareJobsContract, pair)
}

// InterviewQuestions prepares count questions. count <= 0 uses prompts.DefaultQuestionCount.
func (s *Service) InterviewQuestions(ctx context.Context, cvText, jobDescription, targetRole string, count int) (*capability.InterviewQuestions, error) {
	pair, err := prompts.BuildInterviewQuestions(cvText, jobDescription, targetRole, count)
	if err != nil {
		return nil, err
	}
	return llm.Generate(ctx, s.invoker, capability.InterviewQuestionsContract, pair)
}

// EvaluateAnswer scores one interview answer.
func (s *Service) EvaluateAnswer(ctx context.Context, question string, expectedTopics []string, answer, cvText, jobDescription string) (*capability.AnswerEvaluation, error) {
	pair, err := prompts.BuildEvaluateAnswer(question, expectedTopics, answer, cvText, jobDescription)
	if err != nil {
		return nil, err
	}
	return llm.Generate(ctx, s.invoker, capability.EvaluateInterviewAnswerContract, pair)
}

// ParseLinkedIn structures text extracted from a LinkedIn PDF export.
func (s *Service) ParseLinkedIn(ctx context.Context, pdfText string) (*capability.LinkedInProfile, error) {
	pair, err := prompts.BuildParseLinkedIn(pdfText)
	if err != nil {
		return nil, err
	}
	return llm.Generate(ctx, s.invoker, capability.ParseLinkedInProfileContract, pair)
}

// MergeProfiles merges a LinkedIn profile into the CV.
func (s *Service) MergeProfiles(ctx context.Context, cvText string, profile capability.LinkedInProfile, priority capability.MergePriority) (*capability.ProfileMerge, error) {
	pair, err := prompts.BuildMergeProfiles(cvText, profile, priority)
	if err != nil {
		return nil, err
	}
	return llm.Generate(ctx, s.invoker, capability.MergeProfilesContract, pair)
}
