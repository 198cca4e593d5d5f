package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const chatCompletionsPath = "/v1/chat/completions"

// OpenAIClient implements Generator over the chat completions API with json_schema response format.
type OpenAIClient struct {
	http  *resty.Client
	model string
}

// NewOpenAIClient creates a client for baseURL (e.g. https://api.openai.com).
func NewOpenAIClient(apiKey, model, baseURL string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if baseURL == "" {
		baseURL = DefaultConfig().OpenAIBaseURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &OpenAIClient{http: client, model: model}, nil
}

// GenerateStructured sends the system and user messages and returns the assistant content.
func (c *OpenAIClient) GenerateStructured(ctx context.Context, req Request) (string, error) {
	messages := make([]map[string]string, 0, 2)
	if req.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.User})

	body := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": req.Temperature,
	}
	if req.Schema != nil {
		// strict mode requires every property to be required; the schema is enforced locally instead
		body["response_format"] = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   req.SchemaName,
				"schema": req.Schema,
				"strict": false,
			},
		}
	} else {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(chatCompletionsPath)
	if err != nil {
		return "", fmt.Errorf("failed to call OpenAI: %w", err)
	}

	payload := resp.String()
	if resp.IsError() {
		return "", &ProviderError{
			Provider: ProviderOpenAI,
			Status:   resp.StatusCode(),
			Message:  gjson.Get(payload, "error.message").String(),
		}
	}

	if refusal := gjson.Get(payload, "choices.0.message.refusal").String(); refusal != "" {
		return "", fmt.Errorf("model refused: %s", refusal)
	}

	content := gjson.Get(payload, "choices.0.message.content")
	if !content.Exists() || content.String() == "" {
		return "", fmt.Errorf("no content in response")
	}
	return content.String(), nil
}

// Close is a no-op; resty clients hold no resources that need releasing.
func (c *OpenAIClient) Close() error {
	return nil
}
