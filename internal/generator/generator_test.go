package generator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/wodgen/internal/config"
)

func strPtr(s string) *string { return &s }

// TestParamsValidate verifies the inbound request contract.
func TestParamsValidate(t *testing.T) {
	ok := Params{Minutes: 20, Target: "full body", Equipment: "none"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	bad := []Params{
		{Minutes: 4, Target: "x", Equipment: "y"},
		{Minutes: 121, Target: "x", Equipment: "y"},
		{Minutes: 20, Target: " ", Equipment: "y"},
		{Minutes: 20, Target: "x", Equipment: ""},
	}
	for _, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", p)
		}
	}

	edges := []Params{
		{Minutes: MinMinutes, Target: "x", Equipment: "y"},
		{Minutes: MaxMinutes, Target: "x", Equipment: "y"},
	}
	for _, p := range edges {
		if err := p.Validate(); err != nil {
			t.Errorf("Validate(%+v) = %v, want nil", p, err)
		}
	}
}

// TestUserPrompt verifies the rendered template carries every parameter
// and ends with the JSON-only instruction.
func TestUserPrompt(t *testing.T) {
	got := UserPrompt(Params{Minutes: 30, Target: "legs", Equipment: "barbell", Notes: strPtr("no jumping")})
	for _, want := range []string{
		"approximate duration in minutes: 30",
		"target (type of workout, muscle groups, or goal): legs",
		"equipment available: barbell",
		"additional preferences: no jumping",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "Return ONLY JSON (no markdown).") {
		t.Errorf("prompt does not end with the JSON instruction:\n%s", got)
	}

	empty := UserPrompt(Params{Minutes: 10, Target: "a", Equipment: "b"})
	if !strings.Contains(empty, "additional preferences: \n") {
		t.Errorf("nil notes should render empty:\n%s", empty)
	}
}

// TestSystemPromptListsAllBlocks keeps the prompt aligned with the five
// block variants the validator accepts.
func TestSystemPromptListsAllBlocks(t *testing.T) {
	if !strings.Contains(SystemPrompt, `"amrap", "for_time", "emom", "sets", "superset"`) {
		t.Error("system prompt does not list all five block types")
	}
}

// TestFunc verifies the function adapter.
func TestFunc(t *testing.T) {
	var g Generator = Func(func(ctx context.Context, p Params) (string, error) {
		return p.Target, nil
	})
	got, err := g.Generate(context.Background(), Params{Target: "x"})
	if err != nil || got != "x" {
		t.Errorf("Generate = %q, %v", got, err)
	}
	if info := Describe(g); info != (Info{}) {
		t.Errorf("Describe(Func) = %+v, want zero", info)
	}
}

// TestNewUnknownProvider verifies the factory rejects unknown providers.
func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), config.GeneratorConfig{Provider: "llama"}); err == nil {
		t.Fatal("expected error")
	}
}

func testConfig(baseURL string) config.GeneratorConfig {
	return config.GeneratorConfig{
		Provider: config.ProviderOpenAI,
		APIKey:   "sk-test",
		BaseURL:  baseURL,
	}
}

// TestOpenAIGenerate verifies the request carries the structured-output
// schema and the completion content is returned verbatim.
func TestOpenAIGenerate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","created":0,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"id\":\"w1\"}"}}]}`)
	}))
	defer srv.Close()

	g := NewOpenAI(testConfig(srv.URL + "/"))
	got, err := g.Generate(context.Background(), Params{Minutes: 20, Target: "full body", Equipment: "none"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != `{"id":"w1"}` {
		t.Errorf("content = %q", got)
	}

	if body["model"] != config.DefaultOpenAIModel {
		t.Errorf("model = %v", body["model"])
	}
	if body["temperature"] != config.DefaultTemperature {
		t.Errorf("temperature = %v", body["temperature"])
	}
	rf, _ := body["response_format"].(map[string]any)
	if rf["type"] != "json_schema" {
		t.Errorf("response_format.type = %v", rf["type"])
	}
	js, _ := rf["json_schema"].(map[string]any)
	if js["name"] != SchemaName || js["strict"] != true {
		t.Errorf("json_schema = name %v strict %v", js["name"], js["strict"])
	}
	if schema, _ := js["schema"].(map[string]any); schema["title"] != "Workout" {
		t.Errorf("schema title = %v", schema["title"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if m := msgs[0].(map[string]any); m["role"] != "system" {
		t.Errorf("first message role = %v", m["role"])
	}

	if info := Describe(g); info.Provider != config.ProviderOpenAI || info.Model != config.DefaultOpenAIModel {
		t.Errorf("Describe = %+v", info)
	}
}

// TestOpenAIStatusError verifies a non-2xx answer becomes an UpstreamError
// carrying the status.
func TestOpenAIStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	defer srv.Close()

	_, err := NewOpenAI(testConfig(srv.URL+"/")).Generate(context.Background(), Params{Minutes: 20, Target: "x", Equipment: "y"})
	var up *UpstreamError
	if !errors.As(err, &up) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if up.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", up.Status)
	}
	if !strings.HasPrefix(up.Detail, "OpenAI error 500:") {
		t.Errorf("detail = %q", up.Detail)
	}
}

// TestOpenAIEmptyContent verifies an empty completion is an upstream failure.
func TestOpenAIEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","created":0,"model":"m","choices":[]}`)
	}))
	defer srv.Close()

	_, err := NewOpenAI(testConfig(srv.URL+"/")).Generate(context.Background(), Params{Minutes: 20, Target: "x", Equipment: "y"})
	var up *UpstreamError
	if !errors.As(err, &up) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if up.Detail != "No JSON content in response" {
		t.Errorf("detail = %q", up.Detail)
	}
}

// TestGeminiGenerate verifies the Gemini provider requests JSON output and
// returns the candidate text.
func TestGeminiGenerate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-test:generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"id\":\"g1\"}"}]},"finishReason":"STOP"}]}`)
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), config.GeneratorConfig{
		Provider: config.ProviderGemini,
		Model:    "gemini-test",
		APIKey:   "g-key",
		BaseURL:  srv.URL,
	})
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}
	got, err := g.Generate(context.Background(), Params{Minutes: 20, Target: "x", Equipment: "y"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != `{"id":"g1"}` {
		t.Errorf("text = %q", got)
	}
	gc, _ := body["generationConfig"].(map[string]any)
	if gc["responseMimeType"] != "application/json" {
		t.Errorf("responseMimeType = %v", gc["responseMimeType"])
	}
	if _, ok := gc["responseJsonSchema"]; !ok {
		t.Error("responseJsonSchema missing")
	}
}

// TestGeminiStatusError verifies API errors keep their status code.
func TestGeminiStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`)
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), config.GeneratorConfig{APIKey: "g-key", BaseURL: srv.URL, Model: "m"})
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}
	_, err = g.Generate(context.Background(), Params{Minutes: 20, Target: "x", Equipment: "y"})
	var up *UpstreamError
	if !errors.As(err, &up) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if up.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", up.Status)
	}
}
