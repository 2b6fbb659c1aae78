// Package gemini implements ai.Generator on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bryanwahyu/callprep/internal/domain/ai"
)

const defaultModel = "gemini-2.5-flash"

type Client struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

type Options struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
}

func NewClient(ctx context.Context, opt Options) (*Client, error) {
	if strings.TrimSpace(opt.APIKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opt.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	model := opt.Model
	if model == "" {
		model = defaultModel
	}
	return &Client{
		client:      cli,
		model:       model,
		temperature: opt.Temperature,
		maxTokens:   int32(opt.MaxTokens),
	}, nil
}

func (c *Client) Generate(ctx context.Context, p ai.Prompt) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.temperature),
		MaxOutputTokens: c.maxTokens,
	}
	if p.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(p.User), cfg)
	if err != nil {
		if isQuota(err) {
			return "", fmt.Errorf("generate content: %w: %w", ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("generate content: %w", err)
	}
	return collectText(result)
}

func collectText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", errors.New("empty response from Gemini")
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("empty response from Gemini")
	}
	return b.String(), nil
}

func isQuota(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
