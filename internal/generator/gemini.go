package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/claude/wodgen/internal/config"
	"github.com/claude/wodgen/internal/models"
)

// Gemini generates workouts through the Gemini API with a JSON response
// schema.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

// NewGemini creates a Gemini provider.
func NewGemini(ctx context.Context, cfg config.GeneratorConfig) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultGeminiModel
	}
	return &Gemini{
		client:      client,
		model:       model,
		temperature: float32(cfg.TemperatureOrDefault()),
		timeout:     cfg.Timeout,
	}, nil
}

func (g *Gemini) Info() Info {
	return Info{Provider: config.ProviderGemini, Model: g.model}
}

func (g *Gemini) Generate(ctx context.Context, p Params) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(UserPrompt(p)), &genai.GenerateContentConfig{
		SystemInstruction:  genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		Temperature:        genai.Ptr(g.temperature),
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: models.JSONSchema(),
	})
	if err != nil {
		return "", upstreamGemini(err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &UpstreamError{Provider: config.ProviderGemini, Detail: "No JSON content in response"}
	}
	return text, nil
}

func upstreamGemini(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{
			Provider: config.ProviderGemini,
			Status:   apiErr.Code,
			Detail:   fmt.Sprintf("Gemini error %d: %s", apiErr.Code, apiErr.Message),
		}
	}
	return &UpstreamError{Provider: config.ProviderGemini, Detail: fmt.Sprintf("Gemini request failed: %v", err)}
}
