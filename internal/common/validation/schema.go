package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema defines the structure for input/output schemas
type JSONSchema struct {
	Type                 string              `json:"type" yaml:"type"`
	Description          string              `json:"description,omitempty" yaml:"description,omitempty"`
	Properties           map[string]Property `json:"properties" yaml:"properties"`
	Required             []string            `json:"required,omitempty" yaml:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties" yaml:"additionalProperties"`
}

type Property struct {
	Type        string              `json:"type" yaml:"type"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Minimum     *float64            `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum     *float64            `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	Enum        []string            `json:"enum,omitempty" yaml:"enum,omitempty"`
	Pattern     *string             `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	MinLength   *int                `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   *int                `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Items       *Property           `json:"items,omitempty" yaml:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required    []string            `json:"required,omitempty" yaml:"required,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator is a JSONSchema compiled once and reused for every document.
type Validator struct {
	schema   JSONSchema
	compiled *gojsonschema.Schema
}

// Compile checks the schema and prepares it for validation. Only object
// schemas are accepted since action payloads are always field mappings.
func Compile(schema JSONSchema) (*Validator, error) {
	if schema.Type != "object" {
		return nil, fmt.Errorf("schema type must be object, got %q", schema.Type)
	}
	for _, name := range schema.Required {
		if _, ok := schema.Properties[name]; !ok {
			return nil, fmt.Errorf("required field %q is not declared in properties", name)
		}
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema, compiled: compiled}, nil
}

// MustCompile is Compile for package-level schemas known to be valid.
func MustCompile(schema JSONSchema) *Validator {
	v, err := Compile(schema)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Validator) Schema() JSONSchema {
	return v.schema
}

// Validate checks document against the compiled schema. A nil document is
// reported as a single root error rather than validated as JSON null.
func (v *Validator) Validate(document map[string]interface{}) *ValidationResult {
	if document == nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: "value is missing",
				Code:    "REQUIRED",
			}},
		}
	}

	result, err := v.compiled.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "UNREADABLE_DOCUMENT",
			}},
		}
	}
	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		errs = append(errs, toValidationError(re))
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })

	return &ValidationResult{Valid: false, Errors: errs}
}

func toValidationError(re gojsonschema.ResultError) ValidationError {
	field := re.Field()
	details := re.Details()

	switch re.Type() {
	case "required", "additional_property_not_allowed":
		if prop, ok := details["property"].(string); ok && field != prop && !strings.HasSuffix(field, "."+prop) {
			field = joinField(field, prop)
		}
	}

	return ValidationError{
		Field:   field,
		Message: re.Description(),
		Code:    strings.ToUpper(re.Type()),
	}
}

func joinField(parent, child string) string {
	if parent == "" || parent == "(root)" {
		return child
	}
	return parent + "." + child
}

// ValidateInput validates input against JSON schema with detailed errors
func ValidateInput(input map[string]interface{}, schema JSONSchema) *ValidationResult {
	v, err := Compile(schema)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(schema)",
				Message: err.Error(),
				Code:    "SCHEMA_INVALID",
			}},
		}
	}
	return v.Validate(input)
}

// Project returns a copy of input holding only the top-level fields the
// schema declares.
func Project(input map[string]interface{}, schema JSONSchema) map[string]interface{} {
	out := make(map[string]interface{}, len(schema.Properties))
	for name := range schema.Properties {
		if value, ok := input[name]; ok {
			out[name] = value
		}
	}
	return out
}

var taskTypePattern = regexp.MustCompile(`^[a-z]+(\.[a-z]+){2}$`)

// ValidateTaskType checks a job type follows domain.subdomain.action.
func ValidateTaskType(taskType string) error {
	if !taskTypePattern.MatchString(taskType) {
		return fmt.Errorf("task type must follow format: domain.subdomain.action (e.g., accreditation.document.verify)")
	}
	return nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

func IntPtr(i int) *int {
	return &i
}

func FloatPtr(f float64) *float64 {
	return &f
}

func StringPtr(s string) *string {
	return &s
}
