// Package schema turns JSON-Schema violations into human-readable messages.
// Validation results are recorded on documents as data; they never abort
// ingestion.
package schema

import (
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Validator compiles JSON Schemas and formats their violations. Compiled
// schemas are cached by content hash, so systems that validate many uploads
// against the same schema pay the compile cost once.
type Validator struct {
	mu    sync.RWMutex
	cache map[[sha256.Size]byte]*gojsonschema.Schema
}

// NewValidator creates a validator with an empty compile cache.
func NewValidator() *Validator {
	return &Validator{
		cache: make(map[[sha256.Size]byte]*gojsonschema.Schema),
	}
}

// Validate runs data against the given schema bytes and returns one message
// per violation. An empty result means the data conforms. A schema that
// fails to compile yields a single diagnostic message rather than an error.
func (v *Validator) Validate(data interface{}, schemaBytes []byte) []string {
	compiled, err := v.compile(schemaBytes)
	if err != nil {
		return []string{fmt.Sprintf("invalid validation schema: %v", err)}
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return []string{fmt.Sprintf("schema validation error: %v", err)}
	}
	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		messages = append(messages, formatViolation(re))
	}
	return messages
}

func (v *Validator) compile(schemaBytes []byte) (*gojsonschema.Schema, error) {
	key := sha256.Sum256(schemaBytes)

	v.mu.RLock()
	compiled, ok := v.cache[key]
	v.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.cache[key] = compiled
	v.mu.Unlock()
	return compiled, nil
}

// formatViolation maps a structured violation to a one-line message keyed by
// its keyword. Unrecognized keywords fall back to the library description.
func formatViolation(re gojsonschema.ResultError) string {
	field := re.Field()
	details := re.Details()

	switch re.Type() {
	case "required":
		return fmt.Sprintf("missing required field '%v' at %s", details["property"], field)
	case "invalid_type":
		return fmt.Sprintf("field %s must be of type %v", field, details["expected"])
	case "enum":
		return fmt.Sprintf("field %s must be one of %v", field, details["allowed"])
	case "number_gte", "number_gt":
		return fmt.Sprintf("field %s is below the minimum of %v", field, details["min"])
	case "number_lte", "number_lt":
		return fmt.Sprintf("field %s is above the maximum of %v", field, details["max"])
	case "string_gte":
		return fmt.Sprintf("field %s is shorter than the minimum length of %v", field, details["min"])
	case "string_lte":
		return fmt.Sprintf("field %s is longer than the maximum length of %v", field, details["max"])
	case "array_min_items":
		return fmt.Sprintf("field %s has fewer than %v items", field, details["min"])
	case "array_max_items":
		return fmt.Sprintf("field %s has more than %v items", field, details["max"])
	case "format":
		return fmt.Sprintf("field %s must match format '%v'", field, details["format"])
	case "pattern":
		return fmt.Sprintf("field %s does not match pattern '%v'", field, details["pattern"])
	default:
		return fmt.Sprintf("validation error at %s: %s", field, re.Description())
	}
}
