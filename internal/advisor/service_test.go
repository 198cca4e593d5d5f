package advisor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/cv-optimizer/internal/capability"
	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingInvoker returns canned documents and records what it was asked.
type recordingInvoker struct {
	docs  map[capability.Capability]string
	err   error
	calls []capability.Capability
	pairs []prompts.Pair
}

func (r *recordingInvoker) Invoke(_ context.Context, c capability.Capability, pair prompts.Pair) ([]byte, error) {
	r.calls = append(r.calls, c)
	r.pairs = append(r.pairs, pair)
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.docs[c]), nil
}

func loadValid(t *testing.T) map[capability.Capability]string {
	t.Helper()
	files := map[capability.Capability]string{
		capability.OptimizeCV:                 "optimize_cv.json",
		capability.AnalyzeJob:                 "analyze_job.json",
		capability.GenerateCoverLetter:        "cover_letter.json",
		capability.SkillGap:                   "skill_gap.json",
		capability.CompareJobs:                "compare_jobs.json",
		capability.GenerateInterviewQuestions: "interview_questions.json",
		capability.EvaluateInterviewAnswer:    "interview_evaluation.json",
		capability.ParseLinkedInProfile:       "linkedin_profile.json",
		capability.MergeProfiles:              "profile_merge.json",
	}
	docs := make(map[capability.Capability]string, len(files))
	for c, name := range files {
		data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "valid", name))
		require.NoError(t, err)
		docs[c] = string(data)
	}
	return docs
}

const (
	cv  = "Jane Doe\nBackend engineer"
	job = "Senior Go engineer"
)

func TestService_EveryCapability(t *testing.T) {
	inv := &recordingInvoker{docs: loadValid(t)}
	svc := New(inv)
	ctx := context.Background()

	opt, err := svc.OptimizeCV(ctx, cv, job, "Platform Engineer")
	require.NoError(t, err)
	assert.NotEmpty(t, opt.OptimizedCV)

	analysis, err := svc.AnalyzeJob(ctx, job)
	require.NoError(t, err)
	assert.NotEmpty(t, analysis.Title)

	letter, err := svc.CoverLetter(ctx, cv, job, capability.ToneFormal)
	require.NoError(t, err)
	assert.Contains(t, letter.CoverLetter, "Dear Hiring Manager")

	gap, err := svc.SkillGap(ctx, cv, job)
	require.NoError(t, err)
	assert.NotNil(t, gap.Gaps)

	cmp, err := svc.CompareJobs(ctx, cv, []prompts.JobPosting{{ID: "a", Description: "Go"}, {ID: "b", Description: "Rust"}})
	require.NoError(t, err)
	assert.NotEmpty(t, cmp.Comparisons)

	questions, err := svc.InterviewQuestions(ctx, cv, job, "", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, questions.Questions)

	eval, err := svc.EvaluateAnswer(ctx, "Why Go?", []string{"concurrency"}, "Goroutines", cv, job)
	require.NoError(t, err)
	assert.NotEmpty(t, eval.Feedback)

	profile, err := svc.ParseLinkedIn(ctx, "Jane Doe\nExperience")
	require.NoError(t, err)
	assert.NotEmpty(t, profile.FullName)

	merged, err := svc.MergeProfiles(ctx, cv, *profile, "")
	require.NoError(t, err)
	assert.NotEmpty(t, merged.MergedCV)

	assert.Equal(t, capability.All(), inv.calls)
	assert.Contains(t, inv.pairs[0].User, "## Target Role\nPlatform Engineer")
	assert.Contains(t, inv.pairs[5].User, "Prepare 5 interview questions.")
}

func TestService_CoverLetterWithTemplateTokensIsRejected(t *testing.T) {
	inv := &recordingInvoker{docs: map[capability.Capability]string{
		capability.GenerateCoverLetter: `{"coverLetter": "Dear {{.Company}} team", "highlights": [], "callToAction": "Call me"}`,
	}}

	_, err := New(inv).CoverLetter(context.Background(), cv, job, "")
	require.Error(t, err)
	var genErr *llm.GenerationFailedError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, capability.GenerateCoverLetter, genErr.Capability)
	assert.Contains(t, inv.pairs[0].User, "## Tone\nprofessional")
}

func TestService_Document(t *testing.T) {
	docs := loadValid(t)
	docs[capability.GenerateCoverLetter] = `{"coverLetter": "Dear {{.Company}} team", "highlights": [], "callToAction": "Call me"}`
	svc := New(&recordingInvoker{docs: docs})
	pair := prompts.Pair{System: "s", User: "u"}

	doc, err := svc.Document(context.Background(), capability.AnalyzeJob, pair)
	require.NoError(t, err)
	assert.JSONEq(t, docs[capability.AnalyzeJob], string(doc))

	_, err = svc.Document(context.Background(), capability.GenerateCoverLetter, pair)
	var genErr *llm.GenerationFailedError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, capability.GenerateCoverLetter, genErr.Capability)

	docs[capability.GenerateCoverLetter] = loadValid(t)[capability.GenerateCoverLetter]
	doc, err = svc.Document(context.Background(), capability.GenerateCoverLetter, pair)
	require.NoError(t, err)
	assert.NotEmpty(t, doc)
}

func TestService_PropagatesInvokerErrors(t *testing.T) {
	missing := &llm.MissingCredentialError{Keys: []string{llm.EnvGoogleKey, llm.EnvOpenAIKey}}
	svc := New(&recordingInvoker{err: missing})

	_, err := svc.SkillGap(context.Background(), cv, job)
	assert.True(t, errors.Is(err, missing))
}
