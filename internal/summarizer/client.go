package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/djokobozinov/email-ai-agent/internal/config"
	"github.com/djokobozinov/email-ai-agent/internal/gmail"
	"github.com/djokobozinov/email-ai-agent/internal/logging"
)

// defaultTimeout bounds a single model call.
const defaultTimeout = 60 * time.Second

// Client calls an OpenAI-compatible chat-completion endpoint to summarize
// messages under the JSON output contract. It is the pipeline's sole
// extension point for model-provider variability: the interface stays
// provider-agnostic and nothing it does escapes as an error.
type Client struct {
	cfg        config.OpenAIConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a summarizer over the given model configuration.
func NewClient(cfg config.OpenAIConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logging.WithOperation(logger, "summarizer.summarize"),
	}
}

// Configured reports whether the model credential is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarize submits the message to the model and returns the normalized
// summary, or nil when summarization is unavailable or fails. Failures are
// logged and absorbed here; the summarizer never raises past its boundary.
func (c *Client) Summarize(ctx context.Context, msg *gmail.Message) *Summary {
	if !c.Configured() {
		return nil
	}

	summary, err := c.complete(ctx, msg)
	if err != nil {
		c.logger.Warn("summarization failed",
			logging.MessageID(msg.ID),
			logging.Err(err))
		return nil
	}
	return summary
}

func (c *Client) complete(ctx context.Context, msg *gmail.Message) (*Summary, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent(msg)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, body)
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("failed to decode completion: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("completion contained no content")
	}

	var raw rawSummary
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &raw); err != nil {
		return nil, fmt.Errorf("model output is not valid JSON: %w", err)
	}

	return raw.normalize(), nil
}
