// Package metadata defines the structured contract for bibliographic
// metadata returned by a language model.
package metadata

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/phonetonote/paperweight/internal/core/domain"
)

// FunctionName is the name of the tool the model is forced to call.
const FunctionName = "find_data"

// FunctionDescription describes the tool to the model.
const FunctionDescription = "finds data about the paper"

//go:embed find_data.schema.json
var schemaJSON []byte

var schema *gojsonschema.Schema

func init() {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("metadata: compile embedded schema: %v", err))
	}
	schema = s
}

// Parameters returns a copy of the tool's JSON schema as a generic map.
func Parameters() map[string]any {
	var out map[string]any
	_ = json.Unmarshal(schemaJSON, &out)
	return out
}

// SchemaJSON returns the raw schema document.
func SchemaJSON() []byte {
	return append([]byte(nil), schemaJSON...)
}

// ValidationError lists the schema violations found in a response.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single violation at a field path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	parts := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "schema violation: " + strings.Join(parts, "; ")
}

// Validate checks raw tool-call arguments against the schema.
func Validate(arguments string) error {
	result, err := schema.Validate(gojsonschema.NewStringLoader(arguments))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}

// Parse validates raw tool-call arguments and decodes them.
// Any failure wraps domain.ErrExtractionFailed.
func Parse(arguments string) (*domain.PaperMetadata, error) {
	if strings.TrimSpace(arguments) == "" {
		return nil, fmt.Errorf("%w: empty arguments", domain.ErrExtractionFailed)
	}
	if err := Validate(arguments); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	var md domain.PaperMetadata
	if err := json.Unmarshal([]byte(arguments), &md); err != nil {
		return nil, fmt.Errorf("%w: decode arguments: %w", domain.ErrExtractionFailed, err)
	}
	md.Title = strings.TrimSpace(md.Title)
	return &md, nil
}
