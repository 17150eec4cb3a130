package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/wodgen/internal/generator"
	"github.com/claude/wodgen/internal/models"
	"github.com/claude/wodgen/internal/pipeline"
	"github.com/claude/wodgen/internal/schema"
)

// Error messages returned to callers.
const (
	MsgInvalidRequest   = "Invalid request"
	MsgUpstream         = "Upstream model error"
	MsgMalformed        = "Model did not return valid JSON"
	MsgSchemaValidation = "Schema validation failed"
	MsgInternal         = "Internal error"
)

// ErrorResponse is the body of every non-2xx answer from /workout.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Detail string            `json:"detail,omitempty"`
	Issues schema.Violations `json:"issues,omitempty"`
}

const (
	defaultGenerationsLimit = 50
	maxGenerationsLimit     = 500
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.JSONSchema())
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleWorkout(w http.ResponseWriter, r *http.Request) {
	var params generator.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: MsgInvalidRequest, Detail: "invalid JSON: " + err.Error()})
		return
	}

	ctx := pipeline.WithCaller(r.Context(), userInfoFromContext(r).Login)
	workout, err := s.workouts.Run(ctx, params)
	if err != nil {
		status, body := s.errorResponse(err)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

// errorResponse maps a pipeline failure to its HTTP status and body.
func (s *Server) errorResponse(err error) (int, ErrorResponse) {
	var (
		ue *pipeline.UpstreamError
		me *pipeline.MalformedOutputError
		se *pipeline.SchemaViolationError
	)
	switch {
	case errors.Is(err, pipeline.ErrInvalidParams):
		return http.StatusBadRequest, ErrorResponse{Error: MsgInvalidRequest, Detail: err.Error()}
	case errors.As(err, &ue):
		return http.StatusBadGateway, ErrorResponse{Error: MsgUpstream, Detail: ue.Detail}
	case errors.As(err, &me):
		return http.StatusBadGateway, ErrorResponse{Error: MsgMalformed}
	case errors.As(err, &se):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: MsgSchemaValidation, Issues: se.Violations}
	default:
		s.log.Error("workout generation failed", "error", err)
		return http.StatusInternalServerError, ErrorResponse{Error: MsgInternal}
	}
}

func (s *Server) handleGenerations(w http.ResponseWriter, r *http.Request) {
	if s.logs == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "generation log not enabled"})
		return
	}

	limit := defaultGenerationsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxGenerationsLimit)
	}

	records, err := s.logs.QueryGenerations(r.Context(), limit)
	if err != nil {
		s.log.Error("querying generations", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []models.GenerationRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGenerationStats(w http.ResponseWriter, r *http.Request) {
	if s.logs == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "generation log not enabled"})
		return
	}

	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be a positive integer"})
			return
		}
		days = n
	}

	counts, err := s.logs.OutcomeCounts(r.Context(), days)
	if err != nil {
		s.log.Error("querying generation stats", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days, "outcomes": counts})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
