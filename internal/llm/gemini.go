// Package llm wraps the Gemini API behind a one-method interface so the
// packages that compose prompts stay testable with a fake generator.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// TextGenerator produces completion text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client is the production TextGenerator.
type Client struct {
	genai *genai.Client
	model string
	log   *zap.Logger
}

func NewClient(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("llm: api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}
	return &Client{genai: client, model: model, log: logger}, nil
}

// Generate runs one completion at low temperature, retrying transient
// failures once before giving up.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := Retry(2, func() (string, error) {
		resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.3),
		})
		if err != nil {
			return "", err
		}
		out := strings.TrimSpace(resp.Text())
		if out == "" {
			return "", errors.New("empty model response")
		}
		return out, nil
	})
	if err != nil {
		return "", fmt.Errorf("llm: generate: %w", err)
	}
	c.log.Debug("completion generated",
		zap.String("model", c.model),
		zap.Int("chars", len(text)))
	return text, nil
}

// CleanFences strips a wrapping markdown code fence from model output.
func CleanFences(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```markdown") {
		clean = strings.TrimPrefix(clean, "```markdown")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")

	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}
