package db

import (
	"testing"

	"github.com/jonathan/cv-optimizer/internal/capability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_DeclaresEveryTable(t *testing.T) {
	tables := []string{
		"users",
		"job_postings",
		"optimizations",
		"cover_letters",
		"skill_gaps",
		"interview_sessions",
		"interview_questions",
		"linkedin_profiles",
		"fetched_pages",
	}

	for _, table := range tables {
		assert.Contains(t, Schema(), "CREATE TABLE IF NOT EXISTS "+table+" (", "missing table %s", table)
	}
}

func TestStringArray_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want StringArray
	}{
		{"nil", nil, StringArray{}},
		{"bytes", []byte(`["go","sql"]`), StringArray{"go", "sql"}},
		{"string", `["docker"]`, StringArray{"docker"}},
		{"empty array", []byte(`[]`), StringArray{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a StringArray
			require.NoError(t, a.Scan(tt.src))
			assert.Equal(t, tt.want, a)
		})
	}
}

func TestStringArray_ScanRejectsOtherTypes(t *testing.T) {
	var a StringArray
	assert.Error(t, a.Scan(42))
}

func TestStringArray_Value(t *testing.T) {
	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	v, err = StringArray{"a", "b"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(v.([]byte)))
}

func TestJSONList(t *testing.T) {
	b, err := jsonList[capability.Language](nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	b, err = jsonList([]capability.Language{{Language: "Turkish", Proficiency: capability.ProficiencyNative}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"language":"Turkish","proficiency":"native"}]`, string(b))
}

func TestInterviewQuestion_Answered(t *testing.T) {
	q := InterviewQuestion{}
	assert.False(t, q.Answered())

	score := 80.0
	q.Score = &score
	assert.True(t, q.Answered())
}
