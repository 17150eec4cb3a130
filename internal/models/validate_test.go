package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/claude/wodgen/internal/schema"
)

func parse(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return v
}

const fullWorkout = `{
  "id": "w1", "title": "Everything", "level": "rx", "tags": ["metcon"], "notes": null,
  "warmup": ["jog"], "cooldown": null,
  "blocks": [
    {"type": "amrap", "title": "A", "duration": "PT12M", "sequence": [{"name": "Burpee", "reps": 5}]},
    {"type": "for_time", "title": "B", "rounds": 3, "time_cap": null, "notes": "go",
     "score": {"type": "time", "tie_break": null, "target": null, "cap": "PT15M"},
     "sequence": [{"name": "Row", "distance": 500, "distance_unit": "m", "time": null}]},
    {"type": "emom", "title": "C", "minutes": 10,
     "slots": [{"minute_mod": 1, "work": [{"name": "Clean", "load": {"value": 60, "unit": "kg", "percent_of": null}}]}]},
    {"type": "sets", "title": "D", "exercise": "Back Squat",
     "scheme": [{"sets": 5, "reps": 5, "load": {"value": 75, "percent_of": "1RM"}, "rpe": 8.5, "rest": "PT2M"}]},
    {"type": "superset", "title": "E", "sets": 3, "rest_between_sets": "PT90S",
     "pair": [{"name": "Pull-up", "reps": 8}, {"name": "Dip", "reps": 10, "scaling": ["bench dip"]}]}
  ]
}`

// TestValidateWorkoutAllVariants verifies each block variant decodes into
// its concrete type with fields and defaults carried over.
func TestValidateWorkoutAllVariants(t *testing.T) {
	w, vs := ValidateWorkout(parse(t, fullWorkout))
	if vs != nil {
		t.Fatalf("unexpected violations: %v", vs)
	}
	if w.Level == nil || *w.Level != LevelRx {
		t.Errorf("level = %v, want rx", w.Level)
	}
	if len(w.Blocks) != 5 {
		t.Fatalf("got %d blocks, want 5", len(w.Blocks))
	}

	var kinds []BlockType
	for _, b := range w.Blocks {
		kinds = append(kinds, b.Kind())
	}
	want := []BlockType{BlockAMRAP, BlockForTime, BlockEMOM, BlockSets, BlockSuperset}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}

	amrap := w.Blocks[0].(AMRAP)
	if amrap.Repeat != 1 {
		t.Errorf("amrap repeat = %d, want default 1", amrap.Repeat)
	}
	if amrap.Duration.Std().Minutes() != 12 {
		t.Errorf("amrap duration = %s", amrap.Duration)
	}

	ft := w.Blocks[1].(ForTime)
	if ft.Header().Score == nil || ft.Header().Score.Cap == nil || *ft.Header().Score.Cap != "PT15M" {
		t.Errorf("for_time score = %+v", ft.Score)
	}
	if ft.TimeCap != nil {
		t.Errorf("time_cap = %v, want nil", *ft.TimeCap)
	}

	sets := w.Blocks[3].(Sets)
	if l := sets.Scheme[0].Load; l == nil || l.Unit != nil || l.PercentOf == nil || *l.PercentOf != PercentOfOneRepMax {
		t.Errorf("sets load = %+v", l)
	}

	ss := w.Blocks[4].(Superset)
	if ss.Pair[1].Name != "Dip" || ss.Pair[1].Scaling == nil || len(*ss.Pair[1].Scaling) != 1 {
		t.Errorf("superset pair = %+v", ss.Pair)
	}
}

// TestWorkoutRoundTrip verifies a decoded workout marshals with the block
// discriminator and validates again unchanged.
func TestWorkoutRoundTrip(t *testing.T) {
	w, vs := ValidateWorkout(parse(t, fullWorkout))
	if vs != nil {
		t.Fatalf("unexpected violations: %v", vs)
	}
	data, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `{"type":"superset","title":"E"`) {
		t.Errorf("marshaled block missing leading type: %s", data)
	}
	w2, vs := ValidateWorkout(parse(t, string(data)))
	if vs != nil {
		t.Fatalf("re-validation failed: %v", vs)
	}
	if diff := cmp.Diff(w, w2); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}

// TestWorkoutKeepsEmptyLists verifies an explicit empty list survives
// decoding and marshals back as [] rather than being dropped.
func TestWorkoutKeepsEmptyLists(t *testing.T) {
	doc := `{"id":"w1","title":"T","tags":[],"warmup":[],"blocks":[
		{"type":"amrap","title":"A","duration":"PT10M","sequence":[{"name":"Run","equipment":[],"scaling":[]}]}]}`
	w, vs := ValidateWorkout(parse(t, doc))
	if vs != nil {
		t.Fatalf("unexpected violations: %v", vs)
	}
	if w.Tags == nil || len(*w.Tags) != 0 {
		t.Errorf("tags = %v, want empty list", w.Tags)
	}
	if w.Cooldown != nil {
		t.Errorf("cooldown = %v, want absent", *w.Cooldown)
	}
	mv := w.Blocks[0].(AMRAP).Sequence[0]
	if mv.Equipment == nil || mv.Scaling == nil {
		t.Errorf("movement lists dropped: %+v", mv)
	}

	data, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"tags":[]`, `"warmup":[]`, `"equipment":[]`, `"scaling":[]`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("marshaled workout missing %s: %s", want, data)
		}
	}
	if strings.Contains(string(data), `"cooldown"`) {
		t.Errorf("absent cooldown was emitted: %s", data)
	}

	w2, vs := ValidateWorkout(parse(t, string(data)))
	if vs != nil {
		t.Fatalf("re-validation failed: %v", vs)
	}
	if diff := cmp.Diff(w, w2); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}

// TestValidateWorkoutEmptyScheme verifies an empty sets scheme is reported
// at the scheme itself.
func TestValidateWorkoutEmptyScheme(t *testing.T) {
	doc := `{"id":"w","title":"t","blocks":[
		{"type":"amrap","title":"a","duration":"PT5M","sequence":[{"name":"x"}]},
		{"type":"sets","title":"s","exercise":"Deadlift","scheme":[]}]}`
	_, vs := ValidateWorkout(parse(t, doc))
	if len(vs) != 1 {
		t.Fatalf("got %d violations, want 1: %v", len(vs), vs)
	}
	if vs[0].Path != "blocks.1.scheme" || vs[0].Code != schema.CodeTooSmall {
		t.Errorf("violation = %+v, want too_small at blocks.1.scheme", vs[0])
	}
}

// TestValidateWorkoutMissingDuration verifies a missing amrap duration is a
// single missing_field violation.
func TestValidateWorkoutMissingDuration(t *testing.T) {
	doc := `{"id":"w","title":"t","blocks":[{"type":"amrap","title":"a","sequence":[{"name":"x"}]}]}`
	_, vs := ValidateWorkout(parse(t, doc))
	want := schema.Violations{{Path: "blocks.0.duration", Code: schema.CodeMissingField, Message: `required field "duration" is missing`}}
	if diff := cmp.Diff(want, vs); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}
}

// TestValidateWorkoutForeignField verifies a field belonging to another
// variant is rejected rather than dropped.
func TestValidateWorkoutForeignField(t *testing.T) {
	doc := `{"id":"w","title":"t","blocks":[{"type":"amrap","title":"a","duration":"PT5M","rounds":3,"sequence":[{"name":"x"}]}]}`
	_, vs := ValidateWorkout(parse(t, doc))
	if len(vs) != 1 || vs[0].Path != "blocks.0.rounds" || vs[0].Code != schema.CodeUnrecognizedKey {
		t.Errorf("violations = %v, want unrecognized_key at blocks.0.rounds", vs)
	}
}

// TestValidateWorkoutViolationKinds exercises one violation per kind.
func TestValidateWorkoutViolationKinds(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		path string
		code schema.Code
	}{
		{"wrong type", `{"id":1,"title":"t","blocks":[{"type":"amrap","title":"a","duration":"PT1M","sequence":[{"name":"x"}]}]}`, "id", schema.CodeInvalidType},
		{"enum", `{"id":"w","title":"t","level":"elite","blocks":[{"type":"amrap","title":"a","duration":"PT1M","sequence":[{"name":"x"}]}]}`, "level", schema.CodeInvalidEnum},
		{"pattern", `{"id":"w","title":"t","blocks":[{"type":"amrap","title":"a","duration":"five","sequence":[{"name":"x"}]}]}`, "blocks.0.duration", schema.CodeInvalidPattern},
		{"union", `{"id":"w","title":"t","blocks":[{"type":"tabata","title":"a"}]}`, "blocks.0.type", schema.CodeInvalidUnion},
		{"too small", `{"id":"w","title":"t","blocks":[]}`, "blocks", schema.CodeTooSmall},
		{"too big", `{"id":"w","title":"t","blocks":[{"type":"sets","title":"a","exercise":"x","scheme":[{"sets":1,"reps":1,"rpe":11}]}]}`, "blocks.0.scheme.0.rpe", schema.CodeTooBig},
		{"pair length", `{"id":"w","title":"t","blocks":[{"type":"superset","title":"a","sets":2,"pair":[{"name":"x"}]}]}`, "blocks.0.pair", schema.CodeTooSmall},
		{"minute_mod", `{"id":"w","title":"t","blocks":[{"type":"emom","title":"a","minutes":5,"slots":[{"minute_mod":0,"work":[{"name":"x"}]}]}]}`, "blocks.0.slots.0.minute_mod", schema.CodeTooSmall},
		{"load extra", `{"id":"w","title":"t","blocks":[{"type":"amrap","title":"a","duration":"PT1M","sequence":[{"name":"x","load":{"value":1,"pct":5}}]}]}`, "blocks.0.sequence.0.load.pct", schema.CodeUnrecognizedKey},
		{"not an object", `[1,2]`, "", schema.CodeInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, vs := ValidateWorkout(parse(t, tt.doc))
			if len(vs) != 1 {
				t.Fatalf("got %d violations, want 1: %v", len(vs), vs)
			}
			if vs[0].Path != tt.path || vs[0].Code != tt.code {
				t.Errorf("violation = %+v, want %s at %q", vs[0], tt.code, tt.path)
			}
		})
	}
}

// TestValidatedBlocksAreClosed verifies every block surviving validation is
// one of the declared variants and carries only declared keys.
func TestValidatedBlocksAreClosed(t *testing.T) {
	w, vs := ValidateWorkout(parse(t, fullWorkout))
	if vs != nil {
		t.Fatalf("unexpected violations: %v", vs)
	}
	for i, b := range w.Blocks {
		variant, ok := BlockSchema.Variant(string(b.Kind()))
		if !ok {
			t.Fatalf("block %d has undeclared kind %q", i, b.Kind())
		}
		declared := map[string]bool{}
		for _, name := range variant.FieldNames() {
			declared[name] = true
		}
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal block %d: %v", i, err)
		}
		var keys map[string]any
		if err := json.Unmarshal(data, &keys); err != nil {
			t.Fatalf("unmarshal block %d: %v", i, err)
		}
		for k := range keys {
			if !declared[k] {
				t.Errorf("block %d (%s) carries undeclared key %q", i, b.Kind(), k)
			}
		}
	}
}

// TestDecodeUnknownBlockType verifies typed decoding names the accepted
// block types when it meets a foreign one.
func TestDecodeUnknownBlockType(t *testing.T) {
	var w Workout
	err := json.Unmarshal([]byte(`{"id":"w","title":"t","blocks":[{"type":"tabata","title":"x"}]}`), &w)
	if err == nil {
		t.Fatal("expected error for unknown block type")
	}
	if !strings.Contains(err.Error(), "amrap | for_time | emom | sets | superset") {
		t.Errorf("error = %v, want the accepted types listed", err)
	}
}

// TestJSONSchemaShape verifies the emitted document lists all five
// variants and pins each with a const discriminator.
func TestJSONSchemaShape(t *testing.T) {
	data, err := json.Marshal(JSONSchema())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc struct {
		Schema     string `json:"$schema"`
		Title      string `json:"title"`
		Required   []string
		Properties map[string]struct {
			Items struct {
				AnyOf []struct {
					Title      string `json:"title"`
					Properties map[string]struct {
						Const string `json:"const"`
					} `json:"properties"`
				} `json:"anyOf"`
			} `json:"items"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Schema != schema.DraftVersion || doc.Title != "Workout" {
		t.Errorf("header = %q %q", doc.Schema, doc.Title)
	}
	wantReq := []string{"id", "title", "level", "tags", "notes", "blocks", "warmup", "cooldown"}
	if diff := cmp.Diff(wantReq, doc.Required); diff != "" {
		t.Errorf("required mismatch (-want +got):\n%s", diff)
	}
	var tags []string
	for _, v := range doc.Properties["blocks"].Items.AnyOf {
		tags = append(tags, v.Properties["type"].Const)
	}
	if diff := cmp.Diff([]string{"amrap", "for_time", "emom", "sets", "superset"}, tags); diff != "" {
		t.Errorf("variant tags mismatch (-want +got):\n%s", diff)
	}
}
