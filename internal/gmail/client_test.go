package gmail

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/djokobozinov/email-ai-agent/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Google: config.GoogleConfig{
			ClientID:      "id",
			ClientSecret:  "secret",
			RefreshTokens: map[int]string{1: "tok"},
		},
		Pipeline: config.PipelineConfig{
			LookbackWindow:     15 * time.Minute,
			ExcludedCategories: []string{"spam"},
			MinBodyLength:      10,
			MaxMessagesPerRun:  5,
		},
	}
}

func TestListUnreadIDsUnconfiguredAccount(t *testing.T) {
	cfg := testConfig()

	ids, err := NewClient(cfg).ListUnreadIDs(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, ids, "unconfigured account is zero capacity, not an error")
}

func TestFetchMessageUnconfiguredAccount(t *testing.T) {
	cfg := testConfig()

	msg, err := NewClient(cfg).FetchMessage(context.Background(), "msg-1", 3)
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestListUnreadIDs(t *testing.T) {
	var gotQuery, gotMaxResults string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotMaxResults = r.URL.Query().Get("maxResults")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"a"},{"id":""},{"id":"b"}],"resultSizeEstimate":3}`))
	}))
	defer ts.Close()

	cfg := testConfig()
	client := NewClient(cfg, option.WithHTTPClient(ts.Client()), option.WithEndpoint(ts.URL))

	ids, err := client.ListUnreadIDs(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, ids, "empty identifiers are dropped")
	assert.Equal(t, "5", gotMaxResults)
	assert.Contains(t, gotQuery, "is:unread")
	assert.Contains(t, gotQuery, "-in:spam")
	assert.Contains(t, gotQuery, "after:")
}

func TestListUnreadIDsHonorsCeiling(t *testing.T) {
	var gotMaxResults string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMaxResults = r.URL.Query().Get("maxResults")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[]}`))
	}))
	defer ts.Close()

	cfg := testConfig()
	cfg.Pipeline.MaxMessagesPerRun = 50
	client := NewClient(cfg, option.WithHTTPClient(ts.Client()), option.WithEndpoint(ts.URL))

	_, err := client.ListUnreadIDs(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "10", gotMaxResults, "configured maximum is hard-capped")
}

func TestListUnreadIDsTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient(testConfig(), option.WithHTTPClient(ts.Client()), option.WithEndpoint(ts.URL))

	_, err := client.ListUnreadIDs(context.Background(), 1)
	assert.Error(t, err, "transport failures propagate to the orchestrator")
}

func encodeBody(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestNormalizeMessage(t *testing.T) {
	longBody := strings.Repeat("lorem ipsum ", 10)

	tests := []struct {
		name          string
		raw           *gmailapi.Message
		minBodyLength int
		want          *Message
	}{
		{
			name:          "nil payload",
			raw:           &gmailapi.Message{},
			minBodyLength: 10,
			want:          nil,
		},
		{
			name: "no headers",
			raw: &gmailapi.Message{
				Payload: &gmailapi.MessagePart{
					Body: &gmailapi.MessagePartBody{Data: encodeBody(longBody)},
				},
			},
			minBodyLength: 10,
			want:          nil,
		},
		{
			name: "body below minimum length",
			raw: &gmailapi.Message{
				Payload: &gmailapi.MessagePart{
					Headers: []*gmailapi.MessagePartHeader{
						{Name: "From", Value: "a@b.com"},
					},
					Body: &gmailapi.MessagePartBody{Data: encodeBody("short")},
				},
			},
			minBodyLength: 50,
			want:          nil,
		},
		{
			name: "top-level body preferred",
			raw: &gmailapi.Message{
				LabelIds: []string{"UNREAD", "CATEGORY_SOCIAL"},
				Payload: &gmailapi.MessagePart{
					Headers: []*gmailapi.MessagePartHeader{
						{Name: "from", Value: "a@b.com"},
						{Name: "SUBJECT", Value: "Hello"},
					},
					Body: &gmailapi.MessagePartBody{Data: encodeBody(longBody)},
				},
			},
			minBodyLength: 10,
			want: &Message{
				ID:       "msg-1",
				From:     "a@b.com",
				Subject:  "Hello",
				Body:     longBody,
				LabelIDs: []string{"UNREAD", "CATEGORY_SOCIAL"},
			},
		},
		{
			name: "first text/plain part wins",
			raw: &gmailapi.Message{
				Payload: &gmailapi.MessagePart{
					Headers: []*gmailapi.MessagePartHeader{
						{Name: "From", Value: "a@b.com"},
					},
					Parts: []*gmailapi.MessagePart{
						{MimeType: "text/html", Body: &gmailapi.MessagePartBody{Data: encodeBody("<p>html</p>")}},
						{MimeType: "text/plain", Body: &gmailapi.MessagePartBody{Data: encodeBody(longBody)}},
						{MimeType: "text/plain", Body: &gmailapi.MessagePartBody{Data: encodeBody("second plain part")}},
					},
				},
			},
			minBodyLength: 10,
			want: &Message{
				ID:   "msg-1",
				From: "a@b.com",
				Body: longBody,
			},
		},
		{
			name: "no plain text representation",
			raw: &gmailapi.Message{
				Payload: &gmailapi.MessagePart{
					Headers: []*gmailapi.MessagePartHeader{
						{Name: "From", Value: "a@b.com"},
					},
					Parts: []*gmailapi.MessagePart{
						{MimeType: "text/html", Body: &gmailapi.MessagePartBody{Data: encodeBody("<p>html</p>")}},
					},
				},
			},
			minBodyLength: 10,
			want:          nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeMessage("msg-1", tt.raw, tt.minBodyLength)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchMessage(t *testing.T) {
	body := encodeBody("This body is long enough to clear the minimum length check.")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg-1",
			"labelIds": ["UNREAD"],
			"payload": {
				"headers": [
					{"name": "From", "value": "sender@example.com"},
					{"name": "Subject", "value": "Quarterly report"}
				],
				"body": {"data": "` + body + `"}
			}
		}`))
	}))
	defer ts.Close()

	client := NewClient(testConfig(), option.WithHTTPClient(ts.Client()), option.WithEndpoint(ts.URL))

	msg, err := client.FetchMessage(context.Background(), "msg-1", 1)
	require.NoError(t, err)
	require.NotNil(t, msg)

	assert.Equal(t, "msg-1", msg.ID)
	assert.Equal(t, "sender@example.com", msg.From)
	assert.Equal(t, "Quarterly report", msg.Subject)
	assert.Equal(t, []string{"UNREAD"}, msg.LabelIDs)
	assert.Contains(t, msg.Body, "long enough")
}

func TestDecodeBody(t *testing.T) {
	plain := "hello, world"

	tests := []struct {
		name string
		data string
	}{
		{name: "base64url", data: base64.URLEncoding.EncodeToString([]byte(plain))},
		{name: "base64url without padding", data: base64.RawURLEncoding.EncodeToString([]byte(plain))},
		{name: "standard base64", data: base64.StdEncoding.EncodeToString([]byte(plain))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBody(tt.data)
			require.NoError(t, err)
			assert.Equal(t, plain, got)
		})
	}
}

func TestHasLabel(t *testing.T) {
	msg := &Message{LabelIDs: []string{"UNREAD", "CATEGORY_SOCIAL"}}
	assert.True(t, msg.HasLabel("CATEGORY_SOCIAL"))
	assert.False(t, msg.HasLabel("CATEGORY_PROMOTIONS"))
}
