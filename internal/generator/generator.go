// Package generator renders workout requests into prompts and calls a text
// generation provider that answers with raw JSON text.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/wodgen/internal/config"
)

// Request limits for Params.Minutes.
const (
	MinMinutes = 5
	MaxMinutes = 120
)

// Params is the inbound workout request.
type Params struct {
	Minutes   int     `json:"minutes"`
	Target    string  `json:"target"`
	Equipment string  `json:"equipment"`
	Notes     *string `json:"notes,omitempty"`
}

// Validate checks the request against its contract.
func (p Params) Validate() error {
	var errs []error
	if p.Minutes < MinMinutes || p.Minutes > MaxMinutes {
		errs = append(errs, fmt.Errorf("minutes must be between %d and %d, got %d", MinMinutes, MaxMinutes, p.Minutes))
	}
	if strings.TrimSpace(p.Target) == "" {
		errs = append(errs, errors.New("target is required"))
	}
	if strings.TrimSpace(p.Equipment) == "" {
		errs = append(errs, errors.New("equipment is required"))
	}
	return errors.Join(errs...)
}

// Generator produces raw workout JSON text for a request.
type Generator interface {
	Generate(ctx context.Context, p Params) (string, error)
}

// Func adapts a function to Generator.
type Func func(ctx context.Context, p Params) (string, error)

func (f Func) Generate(ctx context.Context, p Params) (string, error) {
	return f(ctx, p)
}

// UpstreamError reports a failed provider call. Status is the HTTP status
// when one was received, otherwise 0.
type UpstreamError struct {
	Provider string
	Status   int
	Detail   string
}

func (e *UpstreamError) Error() string {
	return e.Detail
}

// Info identifies the provider and model behind a Generator, for records.
type Info struct {
	Provider string
	Model    string
}

// Describer is implemented by generators that can name their provider.
type Describer interface {
	Info() Info
}

// Describe returns g's Info, or an empty Info if g does not report one.
func Describe(g Generator) Info {
	if d, ok := g.(Describer); ok {
		return d.Info()
	}
	return Info{}
}

// New builds the provider selected by cfg.
func New(ctx context.Context, cfg config.GeneratorConfig) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case config.ProviderGemini:
		g, err := NewGemini(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
}
