package persist

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed session_schema.json
var sessionSchemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// ErrInvalidPayload wraps a failed question-set validation.
type ErrInvalidPayload struct {
	Err error
}

func (e *ErrInvalidPayload) Error() string {
	return fmt.Sprintf("invalid session payload: %v", e.Err)
}

func (e *ErrInvalidPayload) Unwrap() error { return e.Err }

// ValidatePayload checks raw JSON against the embedded question-set
// schema. Returns *ErrInvalidPayload on failure.
func ValidatePayload(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidPayload{Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := sessionSchema()
	if err != nil {
		return &ErrInvalidPayload{Err: fmt.Errorf("compile schema: %w", err)}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &ErrInvalidPayload{Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

// sessionSchema compiles the embedded schema once.
func sessionSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var parsed any
		if err := json.Unmarshal(sessionSchemaJSON, &parsed); err != nil {
			schemaErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const schemaURL = "schema://session.json"
		if err := c.AddResource(schemaURL, parsed); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}

		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}
