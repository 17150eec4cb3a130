// Package client talks to a remote wodgen server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/wodgen/internal/generator"
	"github.com/claude/wodgen/internal/models"
	"github.com/claude/wodgen/internal/pipeline"
	"github.com/claude/wodgen/internal/schema"
)

// DefaultTimeout bounds one request. Generation can take most of a minute.
const DefaultTimeout = 90 * time.Second

// errorBody mirrors the server's non-2xx JSON body.
type errorBody struct {
	Error  string            `json:"error"`
	Detail string            `json:"detail"`
	Issues schema.Violations `json:"issues"`
}

// HTTPClient calls the wodgen REST API. Used for remote mode where the
// CLI or MCP binary runs locally but generation happens on the server
// (typically reached over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates an HTTPClient targeting baseURL. apiKey may be empty.
func New(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// BaseURL returns the server address the client targets.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body any) (int, []byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("httpclient: encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: read body: %w", err)
	}
	return resp.StatusCode, data, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	status, body, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, status, body)
	}
	return body, nil
}

// Run asks the server for one workout. Failures are returned as the same
// error kinds a local pipeline produces.
func (c *HTTPClient) Run(ctx context.Context, p generator.Params) (*models.Workout, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/workout", nil, p)
	if err != nil {
		return nil, &pipeline.UpstreamError{Detail: err.Error(), Err: err}
	}

	if status == http.StatusOK {
		var w models.Workout
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, fmt.Errorf("httpclient: decode workout: %w", err)
		}
		return &w, nil
	}
	return nil, decodeError(status, body)
}

// decodeError maps a /workout error response back to a pipeline error.
func decodeError(status int, body []byte) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return fmt.Errorf("httpclient: /workout returned %d: %s", status, body)
	}

	switch status {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", pipeline.ErrInvalidParams, eb.Detail)
	case http.StatusUnprocessableEntity:
		return &pipeline.SchemaViolationError{Violations: eb.Issues}
	case http.StatusBadGateway:
		if eb.Detail == "" {
			return &pipeline.MalformedOutputError{Err: errors.New(eb.Error)}
		}
		return &pipeline.UpstreamError{Status: status, Detail: eb.Detail}
	default:
		return fmt.Errorf("httpclient: /workout returned %d: %s", status, eb.Error)
	}
}

// Schema fetches the generator-facing JSON Schema.
func (c *HTTPClient) Schema(ctx context.Context) (json.RawMessage, error) {
	body, err := c.get(ctx, "/schema", nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errors.New("httpclient: /schema returned invalid JSON")
	}
	return json.RawMessage(body), nil
}

// Health reports whether the server answers its liveness probe.
func (c *HTTPClient) Health(ctx context.Context) error {
	body, err := c.get(ctx, "/health", nil)
	if err != nil {
		return err
	}
	var resp struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("httpclient: decode health: %w", err)
	}
	if !resp.OK {
		return errors.New("httpclient: server reports not ok")
	}
	return nil
}

// QueryGenerations returns recent audit records from the server.
func (c *HTTPClient) QueryGenerations(ctx context.Context, limit int) ([]models.GenerationRecord, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/api/v1/generations", params)
	if err != nil {
		return nil, err
	}

	var records []models.GenerationRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("httpclient: decode generations: %w", err)
	}
	return records, nil
}
