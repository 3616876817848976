package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint
// (OpenAI itself, DeepSeek, a local gateway).
type OpenAIProvider struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

var _ Provider = (*OpenAIProvider)(nil)

type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := p.APIKey
	if val, ok := options["api_key"].(string); ok && val != "" {
		apiKey = val
	}
	if apiKey == "" {
		return "", fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}

	model := p.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	reqBody := ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   1000,
	}
	if val, ok := options["max_tokens"].(int); ok && val > 0 {
		reqBody.MaxTokens = val
	}
	if wantsJSON(systemPrompt, options) {
		reqBody.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("OPENAI_MARSHAL_ERROR: %v", err)
	}

	baseURL := p.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	url := strings.TrimRight(baseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("OPENAI_REQ_CREATE_ERROR: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("OPENAI_API_CALL_ERROR: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("OPENAI_READ_BODY_ERROR: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OPENAI_API_ERROR: status=%d body=%s", res.StatusCode, string(body))
	}

	var response ChatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("OPENAI_UNMARSHAL_ERROR: %v", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("OPENAI_NO_CHOICES: %s", string(body))
	}
	return response.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) AdaptInstructions(raw string) string {
	return "You are a CFO's financial modelling assistant.\n\n" + raw
}
