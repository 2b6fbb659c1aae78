package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/callprep/internal/domain/ai"
)

const (
	defaultModel     = "gpt-4o"
	defaultMaxTokens = 4096
)

// Client implements ai.Generator over chat completions and ai.Transcriber over Whisper.
type Client struct {
	*openai.Client
	Model              string
	TranscriptionModel string
	Temperature        float32
	MaxTokens          int
}

type Options struct {
	APIKey             string
	BaseURL            string
	Model              string
	TranscriptionModel string
	Temperature        float32
	MaxTokens          int
}

func NewClient(opt Options) (*Client, error) {
	if strings.TrimSpace(opt.APIKey) == "" {
		return nil, errors.New("openai: api key is required")
	}
	cfg := openai.DefaultConfig(opt.APIKey)
	if opt.BaseURL != "" {
		cfg.BaseURL = opt.BaseURL
	}
	return &Client{
		Client:             openai.NewClientWithConfig(cfg),
		Model:              opt.Model,
		TranscriptionModel: opt.TranscriptionModel,
		Temperature:        opt.Temperature,
		MaxTokens:          opt.MaxTokens,
	}, nil
}

func (c *Client) Generate(ctx context.Context, p ai.Prompt) (string, error) {
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens and reject a custom temperature
	if isReasoningModel(model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
		req.Temperature = c.Temperature
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", quota(err))
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) Transcribe(ctx context.Context, a ai.Audio) (string, error) {
	model := c.TranscriptionModel
	if model == "" {
		model = openai.Whisper1
	}
	name := a.Name
	if name == "" {
		name = "audio.mp3"
	}
	resp, err := c.CreateTranscription(ctx, openai.AudioRequest{
		Model:    model,
		FilePath: name,
		Reader:   bytes.NewReader(a.Data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create transcription: %w", quota(err))
	}
	return resp.Text, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// quota tags HTTP 429 responses with ai.ErrQuotaExceeded.
func quota(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ai.ErrQuotaExceeded, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ai.ErrQuotaExceeded, err)
	}
	return err
}
