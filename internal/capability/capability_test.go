package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_EveryCapabilityIsBound(t *testing.T) {
	all := All()
	require.Len(t, all, 9)

	seenSchemas := make(map[string]bool)
	seenPrompts := make(map[string]bool)
	for _, c := range all {
		t.Run(string(c), func(t *testing.T) {
			assert.True(t, c.Valid())

			schemaFile, err := c.SchemaFile()
			require.NoError(t, err)
			assert.NotEmpty(t, schemaFile)
			assert.False(t, seenSchemas[schemaFile], "schema file shared between capabilities")
			seenSchemas[schemaFile] = true

			key, err := c.PromptKey()
			require.NoError(t, err)
			assert.False(t, seenPrompts[key], "prompt key shared between capabilities")
			seenPrompts[key] = true

			temp := c.Temperature()
			assert.GreaterOrEqual(t, temp, float32(0.0))
			assert.LessOrEqual(t, temp, float32(1.0))
		})
	}
}

func TestTemperature(t *testing.T) {
	tests := []struct {
		capability Capability
		want       float32
	}{
		{AnalyzeJob, 0.2},
		{ParseLinkedInProfile, 0.2},
		{OptimizeCV, 0.3},
		{SkillGap, 0.3},
		{CompareJobs, 0.3},
		{EvaluateInterviewAnswer, 0.3},
		{MergeProfiles, 0.3},
		{GenerateCoverLetter, 0.4},
		{GenerateInterviewQuestions, 0.4},
	}

	for _, tt := range tests {
		t.Run(string(tt.capability), func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.capability.Temperature(), 0.0001)
		})
	}
}

func TestParse(t *testing.T) {
	c, err := Parse("skill-gap")
	require.NoError(t, err)
	assert.Equal(t, SkillGap, c)

	_, err = Parse("summarize-voice")
	require.Error(t, err)
	var unknown *UnknownCapabilityError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "summarize-voice", unknown.Capability)
	assert.Contains(t, err.Error(), "summarize-voice")
}

func TestUnregisteredCapability(t *testing.T) {
	c := Capability("translate-cv")
	assert.False(t, c.Valid())
	assert.Zero(t, c.Temperature())

	_, err := c.SchemaFile()
	assert.IsType(t, &UnknownCapabilityError{}, err)

	_, err = c.PromptKey()
	assert.IsType(t, &UnknownCapabilityError{}, err)
}

func TestContractsPointAtTheirCapability(t *testing.T) {
	assert.Equal(t, OptimizeCV, OptimizeCVContract.Capability)
	assert.Equal(t, AnalyzeJob, AnalyzeJobContract.Capability)
	assert.Equal(t, GenerateCoverLetter, CoverLetterContract.Capability)
	assert.Equal(t, SkillGap, SkillGapContract.Capability)
	assert.Equal(t, CompareJobs, CompareJobsContract.Capability)
	assert.Equal(t, GenerateInterviewQuestions, InterviewQuestionsContract.Capability)
	assert.Equal(t, EvaluateInterviewAnswer, EvaluateInterviewAnswerContract.Capability)
	assert.Equal(t, ParseLinkedInProfile, ParseLinkedInProfileContract.Capability)
	assert.Equal(t, MergeProfiles, MergeProfilesContract.Capability)
}

func TestToneAndPriorityValidation(t *testing.T) {
	assert.True(t, ToneProfessional.Valid())
	assert.True(t, Tone("formal").Valid())
	assert.False(t, Tone("casual").Valid())

	assert.True(t, PriorityBalanced.Valid())
	assert.True(t, MergePriority("linkedin").Valid())
	assert.False(t, MergePriority("newest").Valid())
}

func TestQuestionTypeLabel(t *testing.T) {
	assert.Equal(t, "Technical Questions", QuestionTechnical.Label())
	assert.Equal(t, "Behavioral Questions", QuestionBehavioral.Label())
	assert.Equal(t, "other", QuestionType("other").Label())
}
