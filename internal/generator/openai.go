package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/claude/wodgen/internal/config"
	"github.com/claude/wodgen/internal/models"
)

// SchemaName is the structured-output schema name sent to providers.
const SchemaName = "Workout"

// OpenAI generates workouts through the chat completions API with a strict
// json_schema response format.
type OpenAI struct {
	client      openai.Client
	model       string
	temperature float64
}

// NewOpenAI creates an OpenAI provider. Extra request options (for example a
// custom HTTP client) are appended after those derived from cfg.
func NewOpenAI(cfg config.GeneratorConfig, opts ...option.RequestOption) *OpenAI {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		base = append(base, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		base = append(base, option.WithRequestTimeout(cfg.Timeout))
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultOpenAIModel
	}
	return &OpenAI{
		client:      openai.NewClient(append(base, opts...)...),
		model:       model,
		temperature: cfg.TemperatureOrDefault(),
	}
}

func (o *OpenAI) Info() Info {
	return Info{Provider: config.ProviderOpenAI, Model: o.model}
}

func (o *OpenAI) Generate(ctx context.Context, p Params) (string, error) {
	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(UserPrompt(p)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   SchemaName,
					Schema: models.JSONSchema(),
					Strict: openai.Bool(true),
				},
			},
		},
		Temperature: openai.Float(o.temperature),
	})
	if err != nil {
		return "", o.upstream(err)
	}

	if len(completion.Choices) == 0 {
		return "", &UpstreamError{Provider: config.ProviderOpenAI, Detail: "No JSON content in response"}
	}
	content := completion.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", &UpstreamError{Provider: config.ProviderOpenAI, Detail: "No JSON content in response"}
	}
	return content, nil
}

func (o *OpenAI) upstream(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		detail := apiErr.Message
		if detail == "" {
			detail = http.StatusText(apiErr.StatusCode)
		}
		return &UpstreamError{
			Provider: config.ProviderOpenAI,
			Status:   apiErr.StatusCode,
			Detail:   fmt.Sprintf("OpenAI error %d: %s", apiErr.StatusCode, detail),
		}
	}
	return &UpstreamError{Provider: config.ProviderOpenAI, Detail: fmt.Sprintf("OpenAI request failed: %v", err)}
}
