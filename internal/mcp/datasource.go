package mcp

import (
	"context"

	"github.com/claude/wodgen/internal/client"
	"github.com/claude/wodgen/internal/generator"
	"github.com/claude/wodgen/internal/models"
	"github.com/claude/wodgen/internal/pipeline"
)

// WorkoutSource produces workouts for the generate tool. Both
// *pipeline.Pipeline (local) and *client.HTTPClient (remote via REST API)
// satisfy this interface.
type WorkoutSource interface {
	Run(ctx context.Context, p generator.Params) (*models.Workout, error)
}

var (
	_ WorkoutSource = (*pipeline.Pipeline)(nil)
	_ WorkoutSource = (*client.HTTPClient)(nil)
)
