package httpapi

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// querySchema describes the /query request body. Optional fields accept
// null, which leaves the default in place.
var querySchema = map[string]any{
	"type":     "object",
	"required": []string{"query"},
	"properties": map[string]any{
		"query":          map[string]any{"type": "string", "minLength": 1},
		"use_documents":  map[string]any{"type": []string{"boolean", "null"}},
		"use_web_search": map[string]any{"type": []string{"boolean", "null"}},
		"max_tokens":     map[string]any{"type": []string{"integer", "null"}, "minimum": 0},
		"temperature": map[string]any{
			"type":    []string{"number", "null"},
			"minimum": 0,
			"maximum": domain.MaxTemperature,
		},
	},
}

// generateSchema describes the /generate request body.
var generateSchema = map[string]any{
	"type":     "object",
	"required": []string{"query"},
	"properties": map[string]any{
		"query":       map[string]any{"type": "string", "minLength": 1},
		"context":     map[string]any{"type": []string{"string", "null"}},
		"max_tokens":  map[string]any{"type": []string{"integer", "null"}, "minimum": 0},
		"temperature": map[string]any{"type": []string{"number", "null"}, "minimum": 0, "maximum": domain.MaxTemperature},
	},
}

// validateBody checks body against schema. Malformed JSON and schema
// violations are both validation errors.
func validateBody(schema map[string]any, body []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewBytesLoader(body))
	if err != nil {
		return domain.ValidationError("invalid JSON body: %v", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return domain.ValidationError("%s", strings.Join(errs, ", "))
}
