package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type assumptionPayload struct {
	TimeHorizonMonths int                    `json:"time_horizon_months"`
	Assumptions       map[string]interface{} `json:"assumptions"`
}

func TestSmartParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		months int
	}{
		{"plain json", `{"time_horizon_months": 6, "assumptions": {}}`, 6},
		{"fenced", "```json\n{\"time_horizon_months\": 9, \"assumptions\": {}}\n```", 9},
		{"chatty prefix", `Sure! Here it is: {"time_horizon_months": 18, "assumptions": {}} Hope that helps.`, 18},
		{"trailing comma", `{"time_horizon_months": 24, "assumptions": {"a": 1,},}`, 24},
		{"single quotes", `{'time_horizon_months': 3, 'assumptions': {}}`, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out assumptionPayload
			_, err := SmartParse(tt.input, &out)
			require.NoError(t, err)
			assert.Equal(t, tt.months, out.TimeHorizonMonths)
		})
	}
}

func TestSmartParse_Garbage(t *testing.T) {
	var out assumptionPayload
	_, err := SmartParse(`[1, 2, 3]`, &out)
	assert.Error(t, err)
}

func TestParseHJSON(t *testing.T) {
	out, err := ParseHJSON("{\n  # horizon\n  time_horizon_months: 12\n}")
	require.NoError(t, err)
	assert.JSONEq(t, `{"time_horizon_months": 12}`, out)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```{\"a\":1}```"))
	assert.Equal(t, "no fence", StripCodeFence("  no fence  "))
}

func TestValidateSchema(t *testing.T) {
	schema := map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"time_horizon_months"},
		"properties": map[string]interface{}{
			"time_horizon_months": map[string]interface{}{"type": "integer", "minimum": 1},
		},
	}

	assert.NoError(t, ValidateSchema(schema, map[string]interface{}{"time_horizon_months": 12}))
	assert.Error(t, ValidateSchema(schema, map[string]interface{}{"time_horizon_months": 0}))
	assert.Error(t, ValidateSchema(schema, map[string]interface{}{}))
	assert.NoError(t, ValidateSchema(nil, "anything"))
}
