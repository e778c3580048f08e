package generator

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// payloadSchema is the structured-output contract for the chat model: an
// object holding a questions array. Per-kind field shapes are kept loose
// here; the sanitizer and model.Question.Validate enforce the strict rules
// so a partially well-formed batch still yields its usable questions.
var payloadSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []any{"questions"},
	"properties": map[string]any{
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"kind", "text"},
				"properties": map[string]any{
					"kind": map[string]any{
						"type": "string",
						"enum": []any{"mcq", "msq", "tf", "cloze", "short", "match", "order"},
					},
					"text":      map[string]any{"type": "string"},
					"rationale": map[string]any{"type": "string"},
					"options": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"correctIndices": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "integer"},
					},
					"correctBool": map[string]any{"type": "boolean"},
					"clozeAnswers": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"acceptableAnswers": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"matchLeft": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"matchRight": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"orderItems": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"source": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"chunkId": map[string]any{"type": "string"},
							"fileId":  map[string]any{"type": "string"},
						},
					},
				},
			},
		},
	},
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// compiledPayloadSchema compiles payloadSchema once and caches it.
func compiledPayloadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		raw, err := json.Marshal(payloadSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		var parsed any
		if err := json.Unmarshal(raw, &parsed); err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const schemaURL = "schema://question-batch.json"
		if err := c.AddResource(schemaURL, parsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// validatePayload checks raw model output against the batch schema.
func validatePayload(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := compiledPayloadSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
