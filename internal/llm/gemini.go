package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements Generator for Google Gemini
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

// GenerateStructured asks Gemini for JSON constrained by req.Schema.
func (c *GeminiClient) GenerateStructured(ctx context.Context, req Request) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(req.Temperature)
	model.ResponseMIMEType = "application/json"

	if req.Schema != nil {
		schema, err := ToGeminiSchema(req.Schema)
		if err != nil {
			return "", fmt.Errorf("failed to convert schema %s: %w", req.SchemaName, err)
		}
		model.ResponseSchema = schema
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		if candidate.FinishReason != genai.FinishReasonUnspecified {
			return "", fmt.Errorf("no content in response (finish reason %s)", candidate.FinishReason)
		}
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

// ToGeminiSchema converts a JSON Schema document into Gemini's response schema.
// Keywords Gemini does not understand (additionalProperties, bounds, $schema) are dropped;
// the full schema is still enforced locally after generation.
func ToGeminiSchema(doc map[string]any) (*genai.Schema, error) {
	out := &genai.Schema{}

	typ, nullable, err := schemaType(doc["type"])
	if err != nil {
		return nil, err
	}
	out.Nullable = nullable
	if desc, ok := doc["description"].(string); ok {
		out.Description = desc
	}
	if format, ok := doc["format"].(string); ok && typ == genai.TypeString {
		switch format {
		case "date-time", "enum":
			out.Format = format
		}
	}

	if enum, ok := doc["enum"].([]any); ok {
		for _, v := range enum {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("only string enums are supported, got %T", v)
			}
			out.Enum = append(out.Enum, s)
		}
		if typ == genai.TypeUnspecified {
			typ = genai.TypeString
		}
	}
	out.Type = typ

	switch typ {
	case genai.TypeObject:
		props, _ := doc["properties"].(map[string]any)
		if len(props) > 0 {
			out.Properties = make(map[string]*genai.Schema, len(props))
		}
		for name, raw := range props {
			child, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("property %q is not an object", name)
			}
			converted, err := ToGeminiSchema(child)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", name, err)
			}
			out.Properties[name] = converted
		}
		if required, ok := doc["required"].([]any); ok {
			for _, r := range required {
				if s, ok := r.(string); ok {
					out.Required = append(out.Required, s)
				}
			}
		}
	case genai.TypeArray:
		items, ok := doc["items"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("array schema without items")
		}
		converted, err := ToGeminiSchema(items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		out.Items = converted
	}

	return out, nil
}

func schemaType(raw any) (genai.Type, bool, error) {
	switch v := raw.(type) {
	case nil:
		return genai.TypeUnspecified, false, nil
	case string:
		t, err := geminiType(v)
		return t, false, err
	case []any:
		var (
			picked   genai.Type
			nullable bool
		)
		for _, entry := range v {
			name, ok := entry.(string)
			if !ok {
				return 0, false, fmt.Errorf("invalid type entry %v", entry)
			}
			if name == "null" {
				nullable = true
				continue
			}
			if picked != genai.TypeUnspecified {
				return 0, false, fmt.Errorf("union types are not supported: %v", v)
			}
			t, err := geminiType(name)
			if err != nil {
				return 0, false, err
			}
			picked = t
		}
		return picked, nullable, nil
	default:
		return 0, false, fmt.Errorf("invalid type %v", raw)
	}
}

func geminiType(name string) (genai.Type, error) {
	switch name {
	case "string":
		return genai.TypeString, nil
	case "number":
		return genai.TypeNumber, nil
	case "integer":
		return genai.TypeInteger, nil
	case "boolean":
		return genai.TypeBoolean, nil
	case "array":
		return genai.TypeArray, nil
	case "object":
		return genai.TypeObject, nil
	default:
		return 0, fmt.Errorf("unsupported schema type %q", name)
	}
}
