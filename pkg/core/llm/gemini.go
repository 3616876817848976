package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider implements the Provider interface for Google's Gemini models.
type GeminiProvider struct {
	APIKey string
	Model  string // e.g. "gemini-2.0-flash"
}

var _ Provider = (*GeminiProvider)(nil)

// GenerateResponse sends a generateContent request through the GenAI SDK.
func (p *GeminiProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	if p.APIKey == "" {
		return "", fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}

	model := p.Model
	if model == "" {
		model = defaultGeminiModel
	}
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	}
	if wantsJSON(systemPrompt, options) {
		config.ResponseMIMEType = "application/json"
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

func (p *GeminiProvider) AdaptInstructions(raw string) string {
	return raw
}

// wantsJSON reports whether the caller asked for a JSON object, either through
// options["response_format"] or by mentioning JSON in the system prompt.
func wantsJSON(systemPrompt string, options map[string]interface{}) bool {
	if val, ok := options["response_format"].(map[string]interface{}); ok {
		return val["type"] == "json_object"
	}
	return strings.Contains(strings.ToLower(systemPrompt), "json")
}
