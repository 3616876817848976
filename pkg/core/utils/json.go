package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// StripCodeFence removes a single outer ``` or ```json block that chat models
// like to wrap their answers in.
func StripCodeFence(input string) string {
	cleaned := strings.TrimSpace(input)
	if !strings.HasPrefix(cleaned, "```") || !strings.HasSuffix(cleaned, "```") || len(cleaned) < 6 {
		return cleaned
	}
	cleaned = strings.TrimSuffix(strings.TrimPrefix(cleaned, "```"), "```")
	// Drop the info string ("json", "hjson", ...) on the opening fence line.
	if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 && !strings.ContainsAny(cleaned[:nl], "{[") {
		cleaned = cleaned[nl+1:]
	}
	return strings.TrimSpace(cleaned)
}

// ExtractObject returns the span from the first '{' to the last '}', or the
// trimmed input when there is no such span.
func ExtractObject(input string) string {
	start := strings.IndexByte(input, '{')
	end := strings.LastIndexByte(input, '}')
	if start < 0 || end <= start {
		return strings.TrimSpace(input)
	}
	return input[start : end+1]
}

// RepairJSON fixes the usual LLM damage: single quotes, unquoted keys,
// trailing commas, comments and unclosed brackets.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// ParseHJSON parses Hjson and re-encodes it as standard JSON.
func ParseHJSON(data string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(data), &result); err != nil {
		return "", fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}
	return string(out), nil
}

// SmartParse decodes input into target, trying progressively more lenient
// strategies: plain JSON, json-repair, then Hjson. It returns the JSON text
// that finally decoded.
func SmartParse(input string, target interface{}) (string, error) {
	candidate := ExtractObject(StripCodeFence(input))

	if err := json.Unmarshal([]byte(candidate), target); err == nil {
		return candidate, nil
	}

	if repaired, err := RepairJSON(candidate); err == nil {
		if err := json.Unmarshal([]byte(repaired), target); err == nil {
			return repaired, nil
		}
	}

	if converted, err := ParseHJSON(candidate); err == nil {
		if err := json.Unmarshal([]byte(converted), target); err == nil {
			return converted, nil
		}
	}

	return "", fmt.Errorf("SMART_PARSE_FAILED: all parsing strategies failed for input")
}
