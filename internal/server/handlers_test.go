package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/djokobozinov/email-ai-agent/internal/config"
	"github.com/djokobozinov/email-ai-agent/internal/pipeline"
)

type fakeRunner struct {
	result pipeline.Result
	err    error
	calls  int
}

func (f *fakeRunner) Run(_ context.Context) (pipeline.Result, error) {
	f.calls++
	if f.err != nil {
		return pipeline.Result{}, f.err
	}
	return f.result, nil
}

type fakeRawNotifier struct {
	ok    bool
	texts []string
}

func (f *fakeRawNotifier) NotifyRaw(_ context.Context, text string) bool {
	f.texts = append(f.texts, text)
	return f.ok
}

func testConfig() *config.Config {
	return &config.Config{
		Google: config.GoogleConfig{
			ClientID:      "id",
			ClientSecret:  "secret",
			RefreshTokens: map[int]string{1: "tok"},
		},
		OpenAI:   config.OpenAIConfig{APIKey: "sk-test"},
		Telegram: config.TelegramConfig{BotToken: "bot", ChatID: "chat"},
		Server: config.ServerConfig{
			CronSecret:   "cron-secret",
			TestPassword: "hunter2",
		},
	}
}

func serve(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCronProcess(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		headers    map[string]string
		wantStatus int
		wantRuns   int
	}{
		{
			name:       "bearer secret",
			method:     http.MethodGet,
			headers:    map[string]string{"Authorization": "Bearer cron-secret"},
			wantStatus: http.StatusOK,
			wantRuns:   1,
		},
		{
			name:       "scheduler header",
			method:     http.MethodGet,
			headers:    map[string]string{"X-Cron-Trigger": "1"},
			wantStatus: http.StatusOK,
			wantRuns:   1,
		},
		{
			name:       "wrong secret",
			method:     http.MethodGet,
			headers:    map[string]string{"Authorization": "Bearer nope"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no credentials",
			method:     http.MethodGet,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "post rejected",
			method:     http.MethodPost,
			headers:    map[string]string{"Authorization": "Bearer cron-secret"},
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{result: pipeline.Result{Processed: 3}}
			s := New(testConfig(), runner, &fakeRawNotifier{ok: true}, nil)

			req := httptest.NewRequest(tt.method, "/api/cron/process", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := serve(t, s, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantRuns, runner.calls)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"processed":3}`, rec.Body.String())
			}
		})
	}
}

func TestCronProcessSecretUnsetRequiresHeader(t *testing.T) {
	cfg := testConfig()
	cfg.Server.CronSecret = ""
	runner := &fakeRunner{}
	s := New(cfg, runner, &fakeRawNotifier{ok: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/cron/process", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := serve(t, s, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, runner.calls)
}

func TestCronProcessRunInProgress(t *testing.T) {
	runner := &fakeRunner{err: pipeline.ErrRunInProgress}
	s := New(testConfig(), runner, &fakeRawNotifier{ok: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/cron/process", nil)
	req.Header.Set("X-Cron-Trigger", "1")
	rec := serve(t, s, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckMail(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mutate     func(*config.Config)
		wantStatus int
		wantRuns   int
	}{
		{
			name:       "valid password",
			body:       `{"password":"hunter2"}`,
			wantStatus: http.StatusOK,
			wantRuns:   1,
		},
		{
			name:       "wrong password",
			body:       `{"password":"guess"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "password unset",
			body: `{"password":""}`,
			mutate: func(c *config.Config) {
				c.Server.TestPassword = ""
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed body",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "collaborators unconfigured",
			body: `{"password":"hunter2"}`,
			mutate: func(c *config.Config) {
				c.OpenAI.APIKey = ""
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			runner := &fakeRunner{result: pipeline.Result{Processed: 1}}
			s := New(cfg, runner, &fakeRawNotifier{ok: true}, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/check-mail", strings.NewReader(tt.body))
			rec := serve(t, s, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantRuns, runner.calls)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"processed":1}`, rec.Body.String())
			}
		})
	}
}

func TestTelegramTest(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		sendOK     bool
		wantStatus int
		wantTexts  []string
	}{
		{
			name:       "sends trimmed message",
			body:       `{"password":"hunter2","message":"  ping  "}`,
			sendOK:     true,
			wantStatus: http.StatusOK,
			wantTexts:  []string{"ping"},
		},
		{
			name:       "empty message",
			body:       `{"password":"hunter2","message":"   "}`,
			sendOK:     true,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrong password",
			body:       `{"password":"guess","message":"ping"}`,
			sendOK:     true,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "delivery failure",
			body:       `{"password":"hunter2","message":"ping"}`,
			sendOK:     false,
			wantStatus: http.StatusInternalServerError,
			wantTexts:  []string{"ping"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeRawNotifier{ok: tt.sendOK}
			s := New(testConfig(), &fakeRunner{}, notifier, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/telegram-test", strings.NewReader(tt.body))
			rec := serve(t, s, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantTexts, notifier.texts)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
			}
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := New(testConfig(), &fakeRunner{}, &fakeRawNotifier{ok: true}, nil)

	rec := serve(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, s, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	s.Health().SetReady(false)
	rec = serve(t, s, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), healthStatusNotReady)
}
