package mcp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/wodgen/internal/generator"
	"github.com/claude/wodgen/internal/models"
	"github.com/claude/wodgen/internal/pipeline"
	"github.com/claude/wodgen/internal/schema"
)

// ValidationResult is the validate_workout tool output.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Workout *models.Workout   `json:"workout,omitempty"`
	Issues  schema.Violations `json:"issues,omitempty"`
}

// --- Tool definitions ---

var toolGenerateWorkout = mcp.NewTool("generate_workout",
	mcp.WithDescription("Generate a structured workout (AMRAP, for time, EMOM, sets or superset blocks). The result always conforms to the workout JSON Schema."),
	mcp.WithNumber("minutes", mcp.Required(), mcp.Description("Total session length in minutes"), mcp.Min(generator.MinMinutes), mcp.Max(generator.MaxMinutes)),
	mcp.WithString("target", mcp.Required(), mcp.Description("Training focus (e.g. 'full body', 'posterior chain', 'engine')")),
	mcp.WithString("equipment", mcp.Required(), mcp.Description("Available equipment (e.g. 'barbell, pull-up bar' or 'none')")),
	mcp.WithString("notes", mcp.Description("Extra constraints such as injuries or movements to avoid")),
)

var toolValidateWorkout = mcp.NewTool("validate_workout",
	mcp.WithDescription("Check workout JSON against the workout schema. Duration shorthand like \"20m\" or \"1:30\" is repaired first. Returns the typed workout or a list of issues with path, code and message."),
	mcp.WithString("json", mcp.Required(), mcp.Description("Workout document as a JSON string")),
)

// --- Tool handlers ---

func (h *handlers) generateWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	minutes, err := req.RequireFloat("minutes")
	if err != nil {
		return mcp.NewToolResultError("minutes parameter is required"), nil
	}
	if minutes != math.Trunc(minutes) {
		return mcp.NewToolResultError("minutes must be a whole number"), nil
	}
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError("target parameter is required"), nil
	}
	equipment, err := req.RequireString("equipment")
	if err != nil {
		return mcp.NewToolResultError("equipment parameter is required"), nil
	}

	params := generator.Params{Minutes: int(minutes), Target: target, Equipment: equipment}
	if notes := req.GetString("notes", ""); notes != "" {
		params.Notes = &notes
	}

	if pipeline.CallerFrom(ctx) == "" {
		ctx = pipeline.WithCaller(ctx, DefaultCaller)
	}

	w, err := h.src.Run(ctx, params)
	if err != nil {
		h.log.Warn("mcp generate_workout", "error", err)
		return mcp.NewToolResultError(toolError(err)), nil
	}

	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) validateWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("json")
	if err != nil {
		return mcp.NewToolResultError("json parameter is required"), nil
	}

	w, err := h.checker.Process(raw)
	var out ValidationResult
	var se *pipeline.SchemaViolationError
	switch {
	case err == nil:
		out = ValidationResult{Valid: true, Workout: w}
	case errors.As(err, &se):
		out = ValidationResult{Issues: se.Violations}
	default:
		return mcp.NewToolResultError(toolError(err)), nil
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// toolError renders a pipeline error for a tool result. Raw model output is
// never included.
func toolError(err error) string {
	var (
		ue *pipeline.UpstreamError
		me *pipeline.MalformedOutputError
		se *pipeline.SchemaViolationError
	)
	switch {
	case errors.Is(err, pipeline.ErrInvalidParams):
		return "invalid request: " + err.Error()
	case errors.As(err, &ue):
		return "upstream model error: " + ue.Detail
	case errors.As(err, &me):
		return "input is not valid JSON"
	case errors.As(err, &se):
		return fmt.Sprintf("schema validation failed: %s", se.Violations.Error())
	default:
		return "generation failed: " + err.Error()
	}
}
