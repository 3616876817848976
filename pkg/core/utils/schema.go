package utils

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateSchema checks document against a JSON Schema. Both sides are Go
// values (typically decoded JSON). An empty schema accepts everything.
func ValidateSchema(schema map[string]interface{}, document interface{}) error {
	if len(schema) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("JSON_SCHEMA_VIOLATION: %v", errs)
	}
	return nil
}
