// Package pipeline turns a workout request into a validated Workout:
// Invoke -> Parse -> Repair -> Validate. Every stage either advances or ends
// the run with a distinct error; nothing is retried.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/wodgen/internal/generator"
	"github.com/claude/wodgen/internal/models"
	"github.com/claude/wodgen/internal/repair"
)

// maxLoggedRaw bounds how much malformed output is written to the log.
const maxLoggedRaw = 2048

// Recorder persists one record per Run. Failures are logged and never
// change the outcome returned to the caller.
type Recorder interface {
	RecordGeneration(ctx context.Context, rec models.GenerationRecord) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder adds a recorder. May be given more than once.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorders = append(p.recorders, r)
		}
	}
}

// Pipeline is safe for concurrent use; it holds no per-request state.
type Pipeline struct {
	gen       generator.Generator
	log       *slog.Logger
	recorders []Recorder
}

// New creates a pipeline around gen.
func New(gen generator.Generator, log *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{gen: gen, log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type callerKey struct{}

// WithCaller attaches the requesting identity to ctx for records.
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the identity attached by WithCaller, or "".
func CallerFrom(ctx context.Context) string {
	s, _ := ctx.Value(callerKey{}).(string)
	return s
}

// Run executes one generation. Errors are ErrInvalidParams (wrapped),
// *UpstreamError, *MalformedOutputError or *SchemaViolationError.
func (p *Pipeline) Run(ctx context.Context, params generator.Params) (*models.Workout, error) {
	start := time.Now()
	info := generator.Describe(p.gen)
	rec := models.GenerationRecord{
		ID:        uuid.New(),
		CreatedAt: start.UTC(),
		Caller:    CallerFrom(ctx),
		Minutes:   params.Minutes,
		Target:    params.Target,
		Equipment: params.Equipment,
		Notes:     params.Notes,
		Provider:  info.Provider,
		Model:     info.Model,
	}

	w, changes, err := p.run(ctx, params)

	rec.DurationMs = int(time.Since(start).Milliseconds())
	for _, c := range changes {
		rec.RepairedPaths = append(rec.RepairedPaths, c.Path)
	}
	FillOutcome(&rec, w, err)
	p.record(ctx, rec)

	return w, err
}

func (p *Pipeline) run(ctx context.Context, params generator.Params) (*models.Workout, []repair.Change, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	raw, err := p.gen.Generate(ctx, params)
	if err != nil {
		ue := upstream(err)
		p.log.Warn("generator call failed", "status", ue.Status, "detail", ue.Detail)
		return nil, nil, ue
	}

	return p.process(raw)
}

// Process runs Parse -> Repair -> Validate on text already obtained from a
// generator.
func (p *Pipeline) Process(raw string) (*models.Workout, error) {
	w, _, err := p.process(raw)
	return w, err
}

func (p *Pipeline) process(raw string) (*models.Workout, []repair.Change, error) {
	tree, err := Parse(raw)
	if err != nil {
		p.log.Warn("model returned non-JSON output", "error", err, "raw", truncate(raw, maxLoggedRaw))
		return nil, nil, &MalformedOutputError{Raw: raw, Err: err}
	}

	tree, changes := repair.Report(tree)
	if len(changes) > 0 {
		p.log.Debug("repaired generator output", "changes", len(changes))
	}

	w, vs := models.ValidateWorkout(tree)
	if vs != nil {
		p.log.Warn("generator output failed validation", "violations", len(vs), "codes", vs.Codes())
		return nil, changes, &SchemaViolationError{Violations: vs}
	}
	return w, changes, nil
}

// Parse decodes raw as exactly one JSON value into a generic tree. Numbers
// are kept as json.Number.
func Parse(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

func (p *Pipeline) record(ctx context.Context, rec models.GenerationRecord) {
	if len(p.recorders) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, r := range p.recorders {
		if err := r.RecordGeneration(ctx, rec); err != nil {
			p.log.Error("recording generation failed", "id", rec.ID, "error", err)
		}
	}
}

// FillOutcome sets the outcome fields of rec from the result of a run.
func FillOutcome(rec *models.GenerationRecord, w *models.Workout, err error) {
	var (
		ue *UpstreamError
		me *MalformedOutputError
		se *SchemaViolationError
	)
	switch {
	case err == nil:
		rec.Outcome = models.OutcomeSuccess
		rec.WorkoutID = &w.ID
		rec.WorkoutTitle = &w.Title
		return
	case errors.Is(err, ErrInvalidParams):
		rec.Outcome = models.OutcomeInvalidRequest
	case errors.As(err, &ue):
		rec.Outcome = models.OutcomeUpstreamError
	case errors.As(err, &me):
		rec.Outcome = models.OutcomeMalformedOutput
	case errors.As(err, &se):
		rec.Outcome = models.OutcomeSchemaViolation
		rec.ViolationCodes = se.Violations.Codes()
	}
	detail := err.Error()
	rec.ErrorDetail = &detail
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
