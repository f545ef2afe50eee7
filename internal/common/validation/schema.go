package validation

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Resource names a backend payload with a canonical contract.
type Resource string

const (
	ResourceComment     Resource = "comment"
	ResourceApplication Resource = "application"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Messages flattens the result into "field: message" strings.
func (r *ValidationResult) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return out
}

// Validator checks raw backend payloads against the embedded JSON schemas.
type Validator struct {
	schemas map[Resource]*gojsonschema.Schema
}

func NewValidator() (*Validator, error) {
	v := &Validator{schemas: make(map[Resource]*gojsonschema.Schema)}
	for _, res := range []Resource{ResourceComment, ResourceApplication} {
		raw, err := schemaFS.ReadFile("schemas/" + string(res) + ".json")
		if err != nil {
			return nil, fmt.Errorf("read %s schema: %w", res, err)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", res, err)
		}
		v.schemas[res] = schema
	}
	return v, nil
}

// MustNewValidator panics if the embedded schemas fail to compile.
func MustNewValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks a single JSON document against the contract for res.
func (v *Validator) Validate(res Resource, doc json.RawMessage) *ValidationResult {
	schema, ok := v.schemas[res]
	if !ok {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "(root)",
			Message: fmt.Sprintf("no contract registered for %q", res),
			Code:    "UNKNOWN_RESOURCE",
		}}}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "(root)",
			Message: err.Error(),
			Code:    "INVALID_JSON",
		}}}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

// SplitArray breaks a JSON array payload into its raw elements.
func SplitArray(data json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("expected a JSON array: %w", err)
	}
	return items, nil
}
