package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/wodgen/internal/pipeline"
)

// DefaultCaller is recorded for tool calls that carry no caller identity.
const DefaultCaller = "mcp"

// New creates an MCP server with all tools and resources registered.
func New(src WorkoutSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("wodgen", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Workout generator. generate_workout returns a schema-checked workout for a duration, target and equipment list; validate_workout checks workout JSON you already have. The workout JSON Schema is available as a resource."),
	)

	h := &handlers{
		src: src,
		// Process never reaches the generator.
		checker: pipeline.New(nil, log),
		log:     log,
	}

	s.AddTools(
		server.ServerTool{Tool: toolGenerateWorkout, Handler: h.generateWorkout},
		server.ServerTool{Tool: toolValidateWorkout, Handler: h.validateWorkout},
	)

	s.AddResources(
		server.ServerResource{Resource: resWorkoutSchema, Handler: h.workoutSchema},
		server.ServerResource{Resource: resSystemPrompt, Handler: h.systemPrompt},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	src     WorkoutSource
	checker *pipeline.Pipeline
	log     *slog.Logger
}

// --- Resource definitions ---

var resWorkoutSchema = mcp.NewResource(
	"wodgen://workout_schema",
	"Workout Schema",
	mcp.WithResourceDescription("JSON Schema every generated workout conforms to"),
	mcp.WithMIMEType("application/json"),
)

var resSystemPrompt = mcp.NewResource(
	"wodgen://system_prompt",
	"Coaching Prompt",
	mcp.WithResourceDescription("System prompt sent to the model with every generation request"),
	mcp.WithMIMEType("text/plain"),
)
