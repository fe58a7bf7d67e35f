package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/v0xg/autofill/internal/fields"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiProvider implements the Provider interface using Google Gemini
type GeminiProvider struct {
	client *genai.Client
	cfg    Config
	logger *zap.Logger
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	return &GeminiProvider{client: client, cfg: cfg, logger: logger.Named("gemini")}, nil
}

// GenerateValues asks Gemini for one value per field.
func (p *GeminiProvider) GenerateValues(ctx context.Context, descriptors []fields.Descriptor, hints Hints) (*fields.DataMap, error) {
	ctx, cancel := withTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	var gc *genai.GenerateContentConfig
	if p.cfg.Temperature > 0 {
		t := float32(p.cfg.Temperature)
		gc = &genai.GenerateContentConfig{Temperature: &t}
	}

	p.logger.Debug("requesting values", zap.String("model", p.cfg.Model), zap.Int("fields", len(descriptors)))
	resp, err := p.client.Models.GenerateContent(ctx, p.cfg.Model, genai.Text(BuildPrompt(descriptors, hints)), gc)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	var text strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil {
				text.WriteString(part.Text)
			}
		}
	}
	return decode("Gemini", text.String())
}
