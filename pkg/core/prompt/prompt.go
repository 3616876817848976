// Package prompt provides the prompt library used for LLM interactions.
// Prompts and response schemas are JSON files; a default set is embedded in
// the binary and a resources directory on disk can override any of them.
package prompt

import (
	"encoding/json"
	"fmt"
)

// Well-known identifiers.
const (
	AssumptionsPromptID = "finance.assumptions"
	AssumptionSchemaID  = "assumption_result"
)

// PromptTemplate represents a reusable prompt with metadata
type PromptTemplate struct {
	ID               string           `json:"id"`                   // e.g. "finance.assumptions"
	Name             string           `json:"name"`
	Category         string           `json:"category"`
	Description      string           `json:"description"`
	SystemPrompt     string           `json:"system_prompt"`
	UserPromptTmpl   string           `json:"user_prompt_template"` // text/template source
	ResponseSchemaID string           `json:"response_schema_ref"`
	Variables        []PromptVariable `json:"variables"`
	Version          string           `json:"version"`
}

// PromptVariable defines a variable used in a prompt template
type PromptVariable struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     string `json:"default"`
}

// ResponseSchema is a JSON Schema document registered under an ID.
type ResponseSchema struct {
	ID         string
	JSONSchema string
}

// Document decodes the schema into the generic form gojsonschema accepts.
func (s *ResponseSchema) Document() (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(s.JSONSchema), &doc); err != nil {
		return nil, fmt.Errorf("schema %s is not valid JSON: %w", s.ID, err)
	}
	return doc, nil
}

// Vars holds runtime values for template substitution.
type Vars map[string]interface{}
