package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docanalysis-backend/internal/llm"
	"docanalysis-backend/internal/shared/telemetry"
)

const (
	DefaultBaseURL       = "https://api.openai.com/v1"
	DefaultTimeout       = 30 * time.Second
	DefaultMaxInputChars = 12000
)

// Options tunes the client. Zero values fall back to the defaults.
type Options struct {
	// BaseURL points at an OpenAI-compatible API, e.g. a local gateway.
	BaseURL       string
	Timeout       time.Duration
	MaxInputChars int
}

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	apiKey        string
	model         string
	endpoint      string
	maxInputChars int
	httpClient    *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string, opts Options) (*Client, error) {
	switch {
	case strings.TrimSpace(apiKey) == "":
		return nil, errors.New("OPENAI_API_KEY is required")
	case strings.TrimSpace(model) == "":
		return nil, errors.New("LLM_MODEL is required for OpenAI")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxInputChars <= 0 {
		opts.MaxInputChars = DefaultMaxInputChars
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		apiKey:        apiKey,
		model:         model,
		endpoint:      base + "/chat/completions",
		maxInputChars: opts.MaxInputChars,
		httpClient:    &http.Client{Timeout: opts.Timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float32        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *usage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ClassifyDocument asks the model for a document type. A response that is not
// valid JSON is sent back once with a repair prompt.
func (c *Client) ClassifyDocument(ctx context.Context, input llm.ClassifyInput) (json.RawMessage, error) {
	raw, err := c.complete(ctx, input.FileName, BuildPrompt(input, c.model, c.maxInputChars))
	if err != nil {
		return nil, err
	}
	if json.Valid(raw) {
		return raw, nil
	}

	telemetry.Warn("llm.invalid_json", map[string]any{"model": c.model, "file_name": input.FileName})
	repaired, err := c.complete(ctx, input.FileName, buildFixPrompt(input, c.model, raw))
	if err != nil {
		return nil, err
	}
	if !json.Valid(repaired) {
		return nil, errors.New("invalid JSON from OpenAI after repair")
	}
	return repaired, nil
}

func (c *Client) complete(ctx context.Context, fileName string, messages []Message) (json.RawMessage, error) {
	req := chatRequest{
		Model:          c.model,
		Messages:       make([]chatMessage, 0, len(messages)),
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	body, status, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}
	if status >= http.StatusInternalServerError {
		return nil, fmt.Errorf("openai http status %d", status)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("openai response parse (status %d): %w", status, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("openai response missing choices")
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil, errors.New("openai response empty content")
	}

	fields := map[string]any{"model": c.model, "file_name": fileName}
	if parsed.Usage != nil {
		fields["prompt_tokens"] = parsed.Usage.PromptTokens
		fields["completion_tokens"] = parsed.Usage.CompletionTokens
		fields["total_tokens"] = parsed.Usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
	return json.RawMessage(content), nil
}

func (c *Client) post(ctx context.Context, payload chatRequest) ([]byte, int, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, 0, fmt.Errorf("openai request timeout: %w", err)
		}
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

var _ llm.Client = (*Client)(nil)
