package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/djokobozinov/email-ai-agent/internal/config"
	"github.com/djokobozinov/email-ai-agent/internal/gmail"
	"github.com/djokobozinov/email-ai-agent/internal/logging"
	"github.com/djokobozinov/email-ai-agent/internal/summarizer"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	defaultTimeout = 30 * time.Second
)

// Client delivers notification text to a single Telegram chat through the
// bot sendMessage endpoint. Delivery either succeeds or it doesn't; the
// client reports the outcome as a boolean and never raises.
type Client struct {
	cfg        config.TelegramConfig
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a notifier over the given transport configuration.
func NewClient(cfg config.TelegramConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logging.WithOperation(logger, "telegram.send"),
	}
}

// Configured reports whether the transport credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.BotToken != "" && c.cfg.ChatID != ""
}

// Notify formats the message and its summary and delivers the result.
// Returns true iff the transport reports success.
func (c *Client) Notify(ctx context.Context, msg *gmail.Message, summary *summarizer.Summary) bool {
	return c.send(ctx, FormatMessage(msg, summary))
}

// NotifyRaw delivers pre-formatted text unchanged, for diagnostics and
// manual triggers.
func (c *Client) NotifyRaw(ctx context.Context, text string) bool {
	return c.send(ctx, text)
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (c *Client) send(ctx context.Context, text string) bool {
	if !c.Configured() {
		return false
	}

	if err := c.post(ctx, text); err != nil {
		c.logger.Warn("telegram delivery failed", logging.Err(err))
		return false
	}
	return true
}

func (c *Client) post(ctx context.Context, text string) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID: c.cfg.ChatID,
		Text:   text,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
	}

	var result sendMessageResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode error: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("API error: %s", result.Description)
	}
	return nil
}
