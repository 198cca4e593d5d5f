// Package capability declares the closed set of LLM-backed operations the optimizer
// performs, together with the schema file, prompt key and temperature bound to each.
package capability

import (
	"fmt"
)

// Capability identifies one structured-generation operation.
type Capability string

const (
	OptimizeCV                 Capability = "optimize-cv"
	AnalyzeJob                 Capability = "analyze-job"
	GenerateCoverLetter        Capability = "generate-cover-letter"
	SkillGap                   Capability = "skill-gap"
	CompareJobs                Capability = "compare-jobs"
	GenerateInterviewQuestions Capability = "generate-interview-questions"
	EvaluateInterviewAnswer    Capability = "evaluate-interview-answer"
	ParseLinkedInProfile       Capability = "parse-linkedin-profile"
	MergeProfiles              Capability = "merge-profiles"
)

// binding pairs a capability with its output schema, prompt template and sampling temperature.
type binding struct {
	schemaFile  string
	promptKey   string
	temperature float32
}

// Analytical tasks run at 0.2, optimization/evaluation/merge at 0.3, creative tasks at 0.4.
var bindings = map[Capability]binding{
	OptimizeCV:                 {schemaFile: "optimize_cv.schema.json", promptKey: "optimize-cv", temperature: 0.3},
	AnalyzeJob:                 {schemaFile: "analyze_job.schema.json", promptKey: "analyze-job", temperature: 0.2},
	GenerateCoverLetter:        {schemaFile: "cover_letter.schema.json", promptKey: "cover-letter", temperature: 0.4},
	SkillGap:                   {schemaFile: "skill_gap.schema.json", promptKey: "skill-gap", temperature: 0.3},
	CompareJobs:                {schemaFile: "compare_jobs.schema.json", promptKey: "compare-jobs", temperature: 0.3},
	GenerateInterviewQuestions: {schemaFile: "interview_questions.schema.json", promptKey: "interview-questions", temperature: 0.4},
	EvaluateInterviewAnswer:    {schemaFile: "interview_evaluation.schema.json", promptKey: "interview-evaluation", temperature: 0.3},
	ParseLinkedInProfile:       {schemaFile: "linkedin_profile.schema.json", promptKey: "linkedin-parse", temperature: 0.2},
	MergeProfiles:              {schemaFile: "profile_merge.schema.json", promptKey: "profile-merge", temperature: 0.3},
}

// All returns every capability in declaration order.
func All() []Capability {
	return []Capability{
		OptimizeCV,
		AnalyzeJob,
		GenerateCoverLetter,
		SkillGap,
		CompareJobs,
		GenerateInterviewQuestions,
		EvaluateInterviewAnswer,
		ParseLinkedInProfile,
		MergeProfiles,
	}
}

// UnknownCapabilityError is returned when an identifier is not part of the registry.
type UnknownCapabilityError struct {
	Capability string
}

func (e *UnknownCapabilityError) Error() string {
	return fmt.Sprintf("unknown capability: %q", e.Capability)
}

// Parse converts a string identifier into a Capability.
func Parse(s string) (Capability, error) {
	c := Capability(s)
	if _, ok := bindings[c]; !ok {
		return "", &UnknownCapabilityError{Capability: s}
	}
	return c, nil
}

// Valid reports whether c is a registered capability.
func (c Capability) Valid() bool {
	_, ok := bindings[c]
	return ok
}

// SchemaFile returns the embedded schema file name for c.
func (c Capability) SchemaFile() (string, error) {
	b, ok := bindings[c]
	if !ok {
		return "", &UnknownCapabilityError{Capability: string(c)}
	}
	return b.schemaFile, nil
}

// PromptKey returns the prompt template key prefix for c.
func (c Capability) PromptKey() (string, error) {
	b, ok := bindings[c]
	if !ok {
		return "", &UnknownCapabilityError{Capability: string(c)}
	}
	return b.promptKey, nil
}

// Temperature returns the fixed sampling temperature for c. Unknown capabilities get 0.
func (c Capability) Temperature() float32 {
	return bindings[c].temperature
}

func (c Capability) String() string {
	return string(c)
}

// Contract binds a capability to the Go type its validated output decodes into.
type Contract[T any] struct {
	Capability Capability
}

var (
	OptimizeCVContract              = Contract[Optimization]{Capability: OptimizeCV}
	AnalyzeJobContract              = Contract[JobAnalysis]{Capability: AnalyzeJob}
	CoverLetterContract             = Contract[CoverLetter]{Capability: GenerateCoverLetter}
	SkillGapContract                = Contract[SkillGapAnalysis]{Capability: SkillGap}
	CompareJobsContract             = Contract[JobComparison]{Capability: CompareJobs}
	InterviewQuestionsContract      = Contract[InterviewQuestions]{Capability: GenerateInterviewQuestions}
	EvaluateInterviewAnswerContract = Contract[AnswerEvaluation]{Capability: EvaluateInterviewAnswer}
	ParseLinkedInProfileContract    = Contract[LinkedInProfile]{Capability: ParseLinkedInProfile}
	MergeProfilesContract           = Contract[ProfileMerge]{Capability: MergeProfiles}
)
