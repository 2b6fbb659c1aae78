package ai

import "context"

// Prompt is one chat-style request to a generative model.
type Prompt struct {
	System string
	User   string
}

// Generator produces free text from a prompt. Output is not deterministic.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// Audio is a stored recording handed to a speech-to-text provider.
type Audio struct {
	Name string
	Data []byte
}

// Transcriber converts audio to plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, a Audio) (string, error)
}
