// Package schemas validates stage boundary payloads against embedded
// JSON Schemas. Stage results are produced by extraction plus
// defaulting, so a failure here means a stage emitted something of the
// wrong shape despite defaulting, which is worth surfacing loudly.
package schemas

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Stage names with a registered schema.
const (
	StageValidation   = "validation"
	StageAnalysis     = "analysis"
	StagePackaging    = "packaging"
	StageOptimization = "optimization"
	StageInterview    = "interview"
)

// ValidationError reports schema violations with field paths.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single violation at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError reports problems with the schema itself rather than
// the document under validation.
type SchemaLoadError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema for %s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema for %s: %s", e.Stage, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateStage checks a stage result against that stage's schema.
func ValidateStage(stage string, payload map[string]any) error {
	schemaContent, err := schemaFiles.ReadFile(stage + ".schema.json")
	if err != nil {
		return &SchemaLoadError{Stage: stage, Message: "no schema registered", Cause: err}
	}

	doc, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	return validate(stage, string(schemaContent), string(doc))
}

// ValidateJSONString validates raw JSON content against raw schema
// content. Used by tests and tooling that carry their own schemas.
func ValidateJSONString(schemaContent, jsonContent string) error {
	return validate("(string schema)", schemaContent, jsonContent)
}

func validate(stage, schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{Stage: stage, Message: "schema validation failed during load", Cause: err}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
