package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/claude/wodgen/internal/generator"
	"github.com/claude/wodgen/internal/models"
	"github.com/claude/wodgen/internal/schema"
)

var testParams = generator.Params{Minutes: 20, Target: "full body", Equipment: "none"}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// returning is a generator that answers with fixed text or error and counts
// calls.
type returning struct {
	text  string
	err   error
	calls int
}

func (r *returning) Generate(ctx context.Context, p generator.Params) (string, error) {
	r.calls++
	return r.text, r.err
}

type memRecorder struct {
	mu   sync.Mutex
	recs []models.GenerationRecord
	err  error
}

func (m *memRecorder) RecordGeneration(ctx context.Context, rec models.GenerationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return m.err
}

const endToEndRaw = `{"id":"w1","title":"Bodyweight Blast","blocks":[{"type":"amrap","title":"Main","duration":"20:00","repeat":1,"sequence":[{"name":"Push-up","reps":10}],"score":{"type":"rounds","cap":null}}]}`

// TestRunEndToEnd verifies the documented happy path: the clock-style
// duration is repaired and the typed workout comes back.
func TestRunEndToEnd(t *testing.T) {
	rec := &memRecorder{}
	p := New(&returning{text: endToEndRaw}, testLogger(), WithRecorder(rec))

	w, err := p.Run(WithCaller(context.Background(), "alice@example.com"), testParams)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if w.ID != "w1" || w.Title != "Bodyweight Blast" {
		t.Errorf("workout = %q %q", w.ID, w.Title)
	}
	amrap, ok := w.Blocks[0].(models.AMRAP)
	if !ok {
		t.Fatalf("first block is %T, want models.AMRAP", w.Blocks[0])
	}
	if amrap.Duration != "PT20M" {
		t.Errorf("duration = %q, want PT20M", amrap.Duration)
	}
	if amrap.Score == nil || amrap.Score.Type != models.ScoreRounds || amrap.Score.Cap != nil {
		t.Errorf("score = %+v", amrap.Score)
	}
	if len(amrap.Sequence) != 1 || *amrap.Sequence[0].Reps != 10 {
		t.Errorf("sequence = %+v", amrap.Sequence)
	}

	if len(rec.recs) != 1 {
		t.Fatalf("got %d records, want 1", len(rec.recs))
	}
	r := rec.recs[0]
	if r.Outcome != models.OutcomeSuccess || r.Caller != "alice@example.com" {
		t.Errorf("record = %+v", r)
	}
	if diff := cmp.Diff([]string{"blocks.0.duration"}, r.RepairedPaths); diff != "" {
		t.Errorf("repaired paths mismatch (-want +got):\n%s", diff)
	}
	if r.WorkoutID == nil || *r.WorkoutID != "w1" {
		t.Errorf("workout id = %v", r.WorkoutID)
	}
}

// TestRunMalformed verifies non-JSON text ends the run with
// MalformedOutputError and no result.
func TestRunMalformed(t *testing.T) {
	p := New(&returning{text: "not json"}, testLogger())
	w, err := p.Run(context.Background(), testParams)
	if w != nil {
		t.Errorf("workout = %+v, want nil", w)
	}
	var me *MalformedOutputError
	if !errors.As(err, &me) {
		t.Fatalf("error = %v, want *MalformedOutputError", err)
	}
	if me.Raw != "not json" {
		t.Errorf("raw = %q", me.Raw)
	}
}

// TestRunUpstream verifies a failed generator call ends the run with
// UpstreamError carrying the provider's detail.
func TestRunUpstream(t *testing.T) {
	gen := &returning{err: &generator.UpstreamError{Status: 503, Detail: "OpenAI error 503: overloaded"}}
	rec := &memRecorder{}
	p := New(gen, testLogger(), WithRecorder(rec))

	w, err := p.Run(context.Background(), testParams)
	if w != nil {
		t.Errorf("workout = %+v, want nil", w)
	}
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if ue.Status != 503 || ue.Detail != "OpenAI error 503: overloaded" {
		t.Errorf("upstream = %+v", ue)
	}
	if rec.recs[0].Outcome != models.OutcomeUpstreamError {
		t.Errorf("outcome = %q", rec.recs[0].Outcome)
	}
}

// TestRunUpstreamPlainError verifies errors without a status still map to
// UpstreamError.
func TestRunUpstreamPlainError(t *testing.T) {
	p := New(&returning{err: errors.New("dial tcp: timeout")}, testLogger())
	_, err := p.Run(context.Background(), testParams)
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Status != 0 || ue.Detail != "dial tcp: timeout" {
		t.Fatalf("error = %#v", err)
	}
}

// TestRunSchemaViolation verifies an amrap without duration yields exactly
// one missing_field violation at blocks.0.duration.
func TestRunSchemaViolation(t *testing.T) {
	raw := `{"id":"w1","title":"t","blocks":[{"type":"amrap","title":"Main","sequence":[{"name":"Push-up","reps":10}]}]}`
	rec := &memRecorder{}
	p := New(&returning{text: raw}, testLogger(), WithRecorder(rec))

	_, err := p.Run(context.Background(), testParams)
	var se *SchemaViolationError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *SchemaViolationError", err)
	}
	if len(se.Violations) != 1 {
		t.Fatalf("got %d violations, want 1: %v", len(se.Violations), se.Violations)
	}
	v := se.Violations[0]
	if v.Path != "blocks.0.duration" || v.Code != schema.CodeMissingField {
		t.Errorf("violation = %+v", v)
	}
	if diff := cmp.Diff([]string{"missing_field"}, rec.recs[0].ViolationCodes); diff != "" {
		t.Errorf("recorded codes mismatch (-want +got):\n%s", diff)
	}
}

// TestRunInvalidParams verifies the generator is never called for requests
// outside the contract.
func TestRunInvalidParams(t *testing.T) {
	gen := &returning{text: endToEndRaw}
	p := New(gen, testLogger())
	_, err := p.Run(context.Background(), generator.Params{Minutes: 2, Target: "x", Equipment: "y"})
	if !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("error = %v, want ErrInvalidParams", err)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times", gen.calls)
	}
}

// TestRunSingleCall verifies a failing run calls the generator exactly once.
func TestRunSingleCall(t *testing.T) {
	gen := &returning{text: "{}"}
	p := New(gen, testLogger())
	if _, err := p.Run(context.Background(), testParams); err == nil {
		t.Fatal("expected a schema violation")
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
}

// TestRecorderFailureIgnored verifies a failing recorder does not change
// the outcome.
func TestRecorderFailureIgnored(t *testing.T) {
	rec := &memRecorder{err: errors.New("db down")}
	p := New(&returning{text: endToEndRaw}, testLogger(), WithRecorder(rec))
	if _, err := p.Run(context.Background(), testParams); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

// TestProcessEmptyScheme verifies an empty sets scheme is reported at the
// scheme path.
func TestProcessEmptyScheme(t *testing.T) {
	raw := `{"id":"w","title":"t","blocks":[{"type":"sets","title":"Strength","exercise":"Back Squat","scheme":[]}]}`
	_, err := New(nil, testLogger()).Process(raw)
	var se *SchemaViolationError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *SchemaViolationError", err)
	}
	if se.Violations[0].Path != "blocks.0.scheme" {
		t.Errorf("path = %q, want blocks.0.scheme", se.Violations[0].Path)
	}
}

// TestParse verifies only a single JSON value is accepted.
func TestParse(t *testing.T) {
	for _, ok := range []string{`{}`, ` {"a":1} `, "[]\n", `null`} {
		if _, err := Parse(ok); err != nil {
			t.Errorf("Parse(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{``, `not json`, "```json\n{}\n```", `{} {}`, `{"a":1`, `{}x`} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", bad)
		}
	}
}
