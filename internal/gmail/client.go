package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/djokobozinov/email-ai-agent/internal/config"
)

// Client queries unread messages across the configured account slots. One
// Client serves all accounts; per-account Gmail services are built on demand
// from the slot's refresh token so the registry is re-evaluated on every call.
type Client struct {
	cfg *config.Config

	// now is the clock used for the lookback bound, replaceable in tests.
	now func() time.Time

	// opts, when set, replace the OAuth-based client options entirely.
	// Tests use this to point the service at a fake endpoint.
	opts []option.ClientOption
}

// NewClient creates a mail client over the given configuration.
func NewClient(cfg *config.Config, opts ...option.ClientOption) *Client {
	return &Client{
		cfg:  cfg,
		now:  time.Now,
		opts: opts,
	}
}

// serviceForAccount builds a Gmail service authenticated as the given account
// slot. Returns nil (not an error) when the slot or the shared app
// credentials are missing: an unconfigured account is zero capacity, not a
// failure.
func (c *Client) serviceForAccount(ctx context.Context, account int) (*gmail.Service, error) {
	if len(c.opts) > 0 {
		return gmail.NewService(ctx, c.opts...)
	}

	refreshToken := c.cfg.RefreshToken(account)
	if c.cfg.Google.ClientID == "" || c.cfg.Google.ClientSecret == "" || refreshToken == "" {
		return nil, nil
	}

	oauthCfg := &oauth2.Config{
		ClientID:     c.cfg.Google.ClientID,
		ClientSecret: c.cfg.Google.ClientSecret,
		RedirectURL:  c.cfg.Google.RedirectURL + "/api/auth/gmail",
		Scopes:       []string{gmail.GmailReadonlyScope},
		Endpoint:     google.Endpoint,
	}
	httpClient := oauthCfg.Client(ctx, &oauth2.Token{RefreshToken: refreshToken})

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service for account %d: %w", account, err)
	}
	return svc, nil
}

// ListUnreadIDs lists the identifiers of unread messages for an account
// slot, bounded by the configured per-run maximum and the hard ceiling.
// An unconfigured account yields an empty list; transport failures are
// returned to the caller so it can isolate them per account.
func (c *Client) ListUnreadIDs(ctx context.Context, account int) ([]string, error) {
	svc, err := c.serviceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, nil
	}

	maxResults := c.cfg.Pipeline.MaxMessagesPerRun
	if maxResults > config.MessagesPerRunCeiling {
		maxResults = config.MessagesPerRunCeiling
	}

	query := BuildQuery(c.cfg.Pipeline, c.cfg.Google.LabelFilter, c.now())
	res, err := svc.Users.Messages.List("me").
		Q(query).
		MaxResults(int64(maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for account %d: %w", account, err)
	}

	ids := make([]string, 0, len(res.Messages))
	for _, m := range res.Messages {
		if m.Id != "" {
			ids = append(ids, m.Id)
		}
	}
	return ids, nil
}

// FetchMessage retrieves and decodes a single message for an account slot.
// Returns nil (not an error) when the account is unconfigured, the message
// has no headers, or the decoded body is shorter than the configured
// minimum. Transport failures are returned to the caller.
func (c *Client) FetchMessage(ctx context.Context, id string, account int) (*Message, error) {
	svc, err := c.serviceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, nil
	}

	res, err := svc.Users.Messages.Get("me", id).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s for account %d: %w", id, account, err)
	}

	return normalizeMessage(id, res, c.cfg.Pipeline.MinBodyLength), nil
}

// normalizeMessage converts a raw Gmail message into the pipeline's
// normalized form, or nil when the message does not qualify.
func normalizeMessage(id string, raw *gmail.Message, minBodyLength int) *Message {
	if raw == nil || raw.Payload == nil || len(raw.Payload.Headers) == 0 {
		return nil
	}

	body := extractPlainTextBody(raw.Payload)
	if len(body) < minBodyLength {
		return nil
	}

	return &Message{
		ID:       id,
		From:     headerValue(raw.Payload, "From"),
		Subject:  headerValue(raw.Payload, "Subject"),
		Body:     body,
		LabelIDs: raw.LabelIds,
	}
}

// headerValue returns the value of the named header, matched
// case-insensitively, or the empty string.
func headerValue(payload *gmail.MessagePart, name string) string {
	for _, h := range payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractPlainTextBody locates the plain-text representation of a message:
// the top-level body payload when present, otherwise the first text/plain
// part that carries data. Messages with neither yield an empty body, which
// the minimum-length check then filters.
func extractPlainTextBody(payload *gmail.MessagePart) string {
	if payload.Body != nil && payload.Body.Data != "" {
		if decoded, err := decodeBody(payload.Body.Data); err == nil {
			return decoded
		}
		return ""
	}

	for _, part := range payload.Parts {
		if part.MimeType != "text/plain" || part.Body == nil || part.Body.Data == "" {
			continue
		}
		if decoded, err := decodeBody(part.Body.Data); err == nil {
			return decoded
		}
		return ""
	}

	return ""
}

// decodeBody decodes a Gmail body payload. The API uses RFC 4648 base64url
// encoding, sometimes without padding; fall back to standard base64 for
// payloads that slipped through with the other alphabet.
func decodeBody(data string) (string, error) {
	for _, enc := range []*base64.Encoding{
		base64.URLEncoding,
		base64.RawURLEncoding,
		base64.StdEncoding,
	} {
		if decoded, err := enc.DecodeString(data); err == nil {
			return string(decoded), nil
		}
	}
	return "", fmt.Errorf("failed to decode body payload")
}
