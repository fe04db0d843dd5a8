// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	apperrors "hiring-workers/internal/common/errors"
	"hiring-workers/pkg/registry"
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

// Validator checks job variables against the input schema registered for a task type.
// Schemas are compiled once on first use.
type Validator struct {
	reg *registry.ActivityRegistry

	mu       sync.Mutex
	compiled map[string]*gojsonschema.Schema
}

func NewValidator(reg *registry.ActivityRegistry) *Validator {
	return &Validator{reg: reg, compiled: make(map[string]*gojsonschema.Schema)}
}

// Validate returns an INPUT_VALIDATION_FAILED error listing every violation. Task
// types without a registered schema pass.
func (v *Validator) Validate(taskType, variablesJSON string) error {
	schema, err := v.schema(taskType)
	if err != nil {
		return err
	}
	if schema == nil {
		return nil
	}

	result, err := ValidateInput(schema, variablesJSON)
	if err != nil {
		return apperrors.NewInputValidationError(err.Error())
	}
	if !result.Valid {
		return apperrors.NewInputValidationError(result.Summary())
	}
	return nil
}

func (v *Validator) schema(taskType string) (*gojsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.compiled[taskType]; ok {
		return s, nil
	}
	if v.reg == nil {
		return nil, nil
	}
	activity, ok := v.reg.Find(taskType)
	if !ok || len(activity.InputSchema) == 0 {
		v.compiled[taskType] = nil
		return nil, nil
	}

	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(activity.InputSchema))
	if err != nil {
		return nil, fmt.Errorf("compile input schema for %s: %w", taskType, err)
	}
	v.compiled[taskType] = s
	return s, nil
}

// ValidateInput runs document against schema. An error means the document is not JSON.
func ValidateInput(schema *gojsonschema.Schema, document string) (*ValidationResult, error) {
	if strings.TrimSpace(document) == "" {
		document = "{}"
	}
	res, err := schema.Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	out := &ValidationResult{Valid: res.Valid()}
	for _, e := range res.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	return out, nil
}

// Summary joins the violations into one line.
func (r *ValidationResult) Summary() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}
