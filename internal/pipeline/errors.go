package pipeline

import (
	"errors"
	"fmt"

	"github.com/claude/wodgen/internal/generator"
	"github.com/claude/wodgen/internal/schema"
)

// UpstreamError means the generator call failed. Validation was never
// reached.
type UpstreamError struct {
	Status int
	Detail string
	Err    error
}

func (e *UpstreamError) Error() string {
	return "upstream model error: " + e.Detail
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// MalformedOutputError means the generator answered with text that is not a
// single JSON value. Raw is kept for server-side logging only.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("model did not return valid JSON: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// SchemaViolationError means the repaired output does not conform to the
// Workout schema.
type SchemaViolationError struct {
	Violations schema.Violations
}

func (e *SchemaViolationError) Error() string {
	return "schema validation failed: " + e.Violations.Error()
}

// ErrInvalidParams is wrapped by Run when the request fails its contract.
var ErrInvalidParams = errors.New("invalid request parameters")

func upstream(err error) *UpstreamError {
	var ue *generator.UpstreamError
	if errors.As(err, &ue) {
		return &UpstreamError{Status: ue.Status, Detail: ue.Detail, Err: err}
	}
	return &UpstreamError{Detail: err.Error(), Err: err}
}
