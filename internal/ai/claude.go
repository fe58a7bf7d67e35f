package ai

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/v0xg/autofill/internal/fields"
)

// ClaudeProvider implements the Provider interface using Anthropic's Claude
type ClaudeProvider struct {
	client *anthropic.Client
	cfg    Config
	logger *zap.Logger
}

// NewClaudeProvider creates a new Claude provider
func NewClaudeProvider(cfg Config, logger *zap.Logger, opts ...option.RequestOption) *ClaudeProvider {
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)...)

	if cfg.Model == "" {
		cfg.Model = string(anthropic.ModelClaudeSonnet4_20250514)
	}

	return &ClaudeProvider{
		client: &client,
		cfg:    cfg,
		logger: logger.Named("claude"),
	}
}

// GenerateValues asks Claude for one value per field.
func (p *ClaudeProvider) GenerateValues(ctx context.Context, descriptors []fields.Descriptor, hints Hints) (*fields.DataMap, error) {
	ctx, cancel := withTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.cfg.Model),
		MaxTokens: 2048,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(descriptors, hints))),
		},
	}
	if p.cfg.Temperature > 0 {
		params.Temperature = anthropic.Float(p.cfg.Temperature)
	}

	p.logger.Debug("requesting values", zap.String("model", p.cfg.Model), zap.Int("fields", len(descriptors)))
	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("Claude API error: %w", err)
	}

	// Extract text content
	var responseText string
	for _, block := range resp.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	return decode("Claude", responseText)
}
