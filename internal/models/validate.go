package models

import (
	"encoding/json"
	"fmt"

	"github.com/claude/wodgen/internal/schema"
)

// ValidateWorkout checks an untyped candidate tree against WorkoutSchema. On
// success it returns the typed Workout with defaults applied; otherwise it
// returns every violation found, in declaration order. It never panics.
func ValidateWorkout(candidate any) (*Workout, schema.Violations) {
	clean, vs := schema.Validate(WorkoutSchema, candidate)
	if vs != nil {
		return nil, vs
	}

	w, err := decodeWorkout(clean)
	if err != nil {
		return nil, schema.Violations{{
			Code:    schema.CodeInvalidType,
			Message: fmt.Sprintf("decoding validated document: %v", err),
		}}
	}
	return w, nil
}

// decodeWorkout moves a validated tree into the typed model.
func decodeWorkout(tree any) (*Workout, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, err
	}
	var w Workout
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &w, nil
}
