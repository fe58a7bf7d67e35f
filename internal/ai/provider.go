package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/v0xg/autofill/internal/fields"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Provider generates test values for a batch of detected fields.
type Provider interface {
	GenerateValues(ctx context.Context, descriptors []fields.Descriptor, hints Hints) (*fields.DataMap, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	Temperature float64
	Timeout     time.Duration
}

// NewProvider creates a new AI provider based on the provider name
func NewProvider(ctx context.Context, cfg Config, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for provider %q", cfg.Provider)
	}

	switch cfg.Provider {
	case "", "gemini", "google":
		return NewGeminiProvider(ctx, cfg, logger)
	case "claude", "anthropic":
		return NewClaudeProvider(cfg, logger), nil
	case "openai", "gpt":
		return NewOpenAIProvider(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: gemini, claude, openai)", cfg.Provider)
	}
}

// withTimeout bounds one model call when a timeout is configured.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// decode turns the model's reply into a data map.
func decode(provider, text string) (*fields.DataMap, error) {
	if text == "" {
		return nil, fmt.Errorf("%s: %w", provider, ErrEmptyResponse)
	}
	data, err := ParseResponse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", provider, err)
	}
	return data, nil
}
