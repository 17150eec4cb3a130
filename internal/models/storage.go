package models

import (
	"time"

	"github.com/google/uuid"
)

// Generation outcomes as stored in audit and history records.
const (
	OutcomeSuccess         = "success"
	OutcomeInvalidRequest  = "invalid_request"
	OutcomeUpstreamError   = "upstream_error"
	OutcomeMalformedOutput = "malformed_output"
	OutcomeSchemaViolation = "schema_violation"
)

// GenerationRecord is one pipeline run, ready for insertion into the
// generation_logs table or the local history database.
type GenerationRecord struct {
	ID             uuid.UUID `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Caller         string    `json:"caller"`
	Minutes        int       `json:"minutes"`
	Target         string    `json:"target"`
	Equipment      string    `json:"equipment"`
	Notes          *string   `json:"notes"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	Outcome        string    `json:"outcome"`
	WorkoutID      *string   `json:"workout_id"`
	WorkoutTitle   *string   `json:"workout_title"`
	ViolationCodes []string  `json:"violation_codes"`
	RepairedPaths  []string  `json:"repaired_paths"`
	ErrorDetail    *string   `json:"error_detail"`
	DurationMs     int       `json:"duration_ms"`
}
