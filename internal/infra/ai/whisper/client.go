// Package whisper calls a self-hosted speech-to-text service.
//
// The service accepts a multipart upload on POST {endpoint}/transcribe with the
// audio under the "file" field and answers {"text": "..."} or {"error": "..."}.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/bryanwahyu/callprep/internal/domain/ai"
)

type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewClient(endpoint, apiKey string, timeout time.Duration) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("whisper: endpoint is required")
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{endpoint: endpoint, apiKey: apiKey, http: &http.Client{Timeout: timeout}}, nil
}

type response struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

func (c *Client) Transcribe(ctx context.Context, a ai.Audio) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	name := a.Name
	if name == "" {
		name = "audio"
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(a.Data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/transcribe", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", fmt.Errorf("read transcription response: %w", err)
	}

	var out response
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: %s", ai.ErrQuotaExceeded, message(out, raw))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("transcription service returned %d: %s", resp.StatusCode, message(out, raw))
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode transcription response: %w", decodeErr)
	}
	if out.Error != "" {
		return "", errors.New(out.Error)
	}
	return out.Text, nil
}

func message(out response, raw []byte) string {
	if out.Error != "" {
		return out.Error
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		return "no body"
	}
	return s
}
