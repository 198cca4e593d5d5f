package llm

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/jonathan/cv-optimizer/internal/capability"
	"github.com/jonathan/cv-optimizer/internal/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGeminiSchema_EveryCapabilitySchemaConverts(t *testing.T) {
	for _, c := range capability.All() {
		t.Run(string(c), func(t *testing.T) {
			s, err := ToGeminiSchema(schemas.MustFor(c).Document())
			require.NoError(t, err)
			assert.Equal(t, genai.TypeObject, s.Type)
			assert.NotEmpty(t, s.Properties)
			assert.NotEmpty(t, s.Required)
		})
	}
}

func TestToGeminiSchema_Shapes(t *testing.T) {
	doc := map[string]any{
		"type":     "object",
		"required": []any{"level", "tags"},
		"properties": map[string]any{
			"level": map[string]any{"type": "string", "enum": []any{"Junior", "Senior"}},
			"tags":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"score": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
			"note":  map[string]any{"type": []any{"string", "null"}, "description": "optional"},
		},
		"additionalProperties": false,
	}

	s, err := ToGeminiSchema(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"level", "tags"}, s.Required)
	assert.Equal(t, []string{"Junior", "Senior"}, s.Properties["level"].Enum)
	assert.Equal(t, genai.TypeArray, s.Properties["tags"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["tags"].Items.Type)
	assert.Equal(t, genai.TypeNumber, s.Properties["score"].Type)
	assert.True(t, s.Properties["note"].Nullable)
	assert.Equal(t, "optional", s.Properties["note"].Description)
}

func TestToGeminiSchema_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
	}{
		{"unknown type", map[string]any{"type": "tuple"}},
		{"array without items", map[string]any{"type": "array"}},
		{"union", map[string]any{"type": []any{"string", "number"}}},
		{"numeric enum", map[string]any{"type": "integer", "enum": []any{1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToGeminiSchema(tt.doc)
			assert.Error(t, err)
		})
	}
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "gemini-2.5-flash")
	assert.Error(t, err)
}
