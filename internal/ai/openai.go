package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/v0xg/autofill/internal/fields"
)

// OpenAIProvider implements the Provider interface using OpenAI
type OpenAIProvider struct {
	client *openai.Client
	cfg    Config
	logger *zap.Logger
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(cfg Config, logger *zap.Logger) *OpenAIProvider {
	return NewOpenAIProviderWithConfig(openai.DefaultConfig(cfg.APIKey), cfg, logger)
}

// NewOpenAIProviderWithConfig uses a custom client config, e.g. for an
// OpenAI-compatible endpoint.
func NewOpenAIProviderWithConfig(clientCfg openai.ClientConfig, cfg Config, logger *zap.Logger) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		logger: logger.Named("openai"),
	}
}

// GenerateValues asks OpenAI for one value per field.
func (p *OpenAIProvider) GenerateValues(ctx context.Context, descriptors []fields.Descriptor, hints Hints) (*fields.DataMap, error) {
	ctx, cancel := withTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	p.logger.Debug("requesting values", zap.String("model", p.cfg.Model), zap.Int("fields", len(descriptors)))
	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: p.cfg.Model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: BuildPrompt(descriptors, hints),
				},
			},
			MaxTokens:   2048,
			Temperature: float32(p.cfg.Temperature),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("OpenAI: %w", ErrEmptyResponse)
	}
	return decode("OpenAI", resp.Choices[0].Message.Content)
}
