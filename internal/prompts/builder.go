package prompts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/capability"
)

// Pair is a fully interpolated system and user instruction ready for dispatch.
type Pair struct {
	System string
	User   string
}

// JobPosting is one posting passed to the job comparison prompt.
type JobPosting struct {
	ID          string `json:"id" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// section is a labeled block of caller text in the user instruction.
type section struct {
	label string
	body  string
}

// compose assembles the system instruction and user instruction for a prompt key.
// Caller text is appended after template formatting, so braces in user input are never interpreted.
func compose(key string, data map[string]string, sections []section, trailer ...string) (Pair, error) {
	system, err := Lookup(key + ".system")
	if err != nil {
		return Pair{}, err
	}
	template, err := Lookup(key + ".instruction")
	if err != nil {
		return Pair{}, err
	}
	instruction, err := FormatStrict(key+".instruction", template, data)
	if err != nil {
		return Pair{}, err
	}

	var sb strings.Builder
	for _, s := range sections {
		sb.WriteString("## ")
		sb.WriteString(s.label)
		sb.WriteString("\n")
		sb.WriteString(s.body)
		sb.WriteString("\n\n")
	}
	for _, t := range trailer {
		sb.WriteString(t)
		sb.WriteString("\n\n")
	}
	sb.WriteString(instruction)

	return Pair{System: system, User: sb.String()}, nil
}

// BuildOptimizeCV builds the prompt for tailoring a CV to a job posting.
// targetRole is optional.
func BuildOptimizeCV(cvText, jobDescription, targetRole string) (Pair, error) {
	sections := []section{
		{label: "Current CV", body: cvText},
		{label: "Job Posting", body: jobDescription},
	}
	var trailer []string
	if strings.TrimSpace(targetRole) != "" {
		sections = append(sections, section{label: "Target Role", body: targetRole})
		note, err := Lookup("optimize-cv.role-note")
		if err != nil {
			return Pair{}, err
		}
		trailer = append(trailer, note)
	}
	return compose("optimize-cv", nil, sections, trailer...)
}

// BuildAnalyzeJob builds the prompt for extracting structure from a job posting.
func BuildAnalyzeJob(jobDescription string) (Pair, error) {
	return compose("analyze-job", nil, []section{
		{label: "Job Posting", body: jobDescription},
	})
}

// BuildCoverLetter builds the prompt for a cover letter in the given tone.
func BuildCoverLetter(cvText, jobDescription string, tone capability.Tone) (Pair, error) {
	if tone == "" {
		tone = capability.ToneProfessional
	}
	return compose("cover-letter", map[string]string{"Tone": string(tone)}, []section{
		{label: "CV", body: cvText},
		{label: "Job Posting", body: jobDescription},
		{label: "Tone", body: string(tone)},
	})
}

// BuildSkillGap builds the prompt for a skill gap analysis.
func BuildSkillGap(cvText, jobDescription string) (Pair, error) {
	return compose("skill-gap", nil, []section{
		{label: "CV", body: cvText},
		{label: "Target Job Posting", body: jobDescription},
	})
}

// BuildCompareJobs builds a single prompt carrying every posting, in input order.
func BuildCompareJobs(cvText string, jobs []JobPosting) (Pair, error) {
	postings := make([]string, len(jobs))
	for i, job := range jobs {
		postings[i] = fmt.Sprintf("### Posting %d (ID: %s):\n%s", i+1, job.ID, job.Description)
	}
	return compose("compare-jobs", nil, []section{
		{label: "CV", body: cvText},
		{label: "Job Postings", body: strings.Join(postings, "\n\n")},
	})
}

// BuildInterviewQuestions builds the prompt for generating questionCount interview questions.
// targetRole is optional.
func BuildInterviewQuestions(cvText, jobDescription, targetRole string, questionCount int) (Pair, error) {
	if questionCount <= 0 {
		questionCount = DefaultQuestionCount
	}
	sections := []section{
		{label: "CV", body: cvText},
		{label: "Job Posting", body: jobDescription},
	}
	if strings.TrimSpace(targetRole) != "" {
		sections = append(sections, section{label: "Target Role", body: targetRole})
	}
	return compose("interview-questions", map[string]string{"QuestionCount": strconv.Itoa(questionCount)}, sections)
}

// DefaultQuestionCount is used when the caller does not ask for a specific number of questions.
const DefaultQuestionCount = 5

// BuildEvaluateAnswer builds the prompt for scoring one interview answer.
func BuildEvaluateAnswer(question string, expectedTopics []string, answer, cvText, jobDescription string) (Pair, error) {
	return compose("interview-evaluation", nil, []section{
		{label: "Question", body: question},
		{label: "Expected Topics", body: strings.Join(expectedTopics, ", ")},
		{label: "Candidate CV", body: cvText},
		{label: "Job Posting", body: jobDescription},
		{label: "Candidate Answer", body: answer},
	})
}

// BuildParseLinkedIn builds the prompt for structuring text extracted from a LinkedIn PDF export.
func BuildParseLinkedIn(pdfText string) (Pair, error) {
	return compose("linkedin-parse", nil, []section{
		{label: "LinkedIn PDF Content", body: pdfText},
	})
}

// BuildMergeProfiles builds the prompt for merging a CV with a LinkedIn profile.
func BuildMergeProfiles(cvText string, profile capability.LinkedInProfile, priority capability.MergePriority) (Pair, error) {
	if priority == "" {
		priority = capability.PriorityBalanced
	}
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return Pair{}, fmt.Errorf("failed to encode LinkedIn profile: %w", err)
	}
	return compose("profile-merge", map[string]string{"Priority": string(priority)}, []section{
		{label: "Current CV", body: cvText},
		{label: "LinkedIn Profile", body: string(profileJSON)},
		{label: "Merge Priority", body: string(priority)},
	})
}

// Inputs carries every caller-supplied value a capability prompt may need.
// Build reads only the fields relevant to the capability.
type Inputs struct {
	CVText          string
	JobDescription  string
	TargetRole      string
	Tone            capability.Tone
	Jobs            []JobPosting
	QuestionCount   int
	Question        string
	ExpectedTopics  []string
	Answer          string
	PDFText         string
	LinkedInProfile capability.LinkedInProfile
	Priority        capability.MergePriority
}

// Build dispatches to the builder for c.
func Build(c capability.Capability, in Inputs) (Pair, error) {
	switch c {
	case capability.OptimizeCV:
		return BuildOptimizeCV(in.CVText, in.JobDescription, in.TargetRole)
	case capability.AnalyzeJob:
		return BuildAnalyzeJob(in.JobDescription)
	case capability.GenerateCoverLetter:
		return BuildCoverLetter(in.CVText, in.JobDescription, in.Tone)
	case capability.SkillGap:
		return BuildSkillGap(in.CVText, in.JobDescription)
	case capability.CompareJobs:
		return BuildCompareJobs(in.CVText, in.Jobs)
	case capability.GenerateInterviewQuestions:
		return BuildInterviewQuestions(in.CVText, in.JobDescription, in.TargetRole, in.QuestionCount)
	case capability.EvaluateInterviewAnswer:
		return BuildEvaluateAnswer(in.Question, in.ExpectedTopics, in.Answer, in.CVText, in.JobDescription)
	case capability.ParseLinkedInProfile:
		return BuildParseLinkedIn(in.PDFText)
	case capability.MergeProfiles:
		return BuildMergeProfiles(in.CVText, in.LinkedInProfile, in.Priority)
	default:
		return Pair{}, &capability.UnknownCapabilityError{Capability: string(c)}
	}
}
