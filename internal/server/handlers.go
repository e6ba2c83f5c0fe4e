package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/djokobozinov/email-ai-agent/internal/logging"
	"github.com/djokobozinov/email-ai-agent/internal/pipeline"
)

// cronTriggerHeader marks requests from a co-located scheduler. External
// callers must present the bearer secret instead.
const cronTriggerHeader = "X-Cron-Trigger"

// Runner executes one pipeline pass.
type Runner interface {
	Run(ctx context.Context) (pipeline.Result, error)
}

// RawNotifier sends a plain text message to the configured chat.
type RawNotifier interface {
	NotifyRaw(ctx context.Context, text string) bool
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// handleCronProcess triggers a pipeline run on behalf of a scheduler.
// Authorized by the internal trigger header or the cron bearer secret.
func (s *Server) handleCronProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.cronAuthorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	s.runPipeline(w, r, "cron")
}

func (s *Server) cronAuthorized(r *http.Request) bool {
	if r.Header.Get(cronTriggerHeader) == "1" {
		return true
	}
	secret := s.cfg.Server.CronSecret
	if secret == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	return subtle.ConstantTimeCompare([]byte(auth), []byte("Bearer "+secret)) == 1
}

type checkMailRequest struct {
	Password string `json:"password"`
}

// handleCheckMail triggers a pipeline run for a manual check, gated by the
// test password.
func (s *Server) handleCheckMail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req checkMailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !s.passwordValid(req.Password) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !s.cfg.FullyConfigured() {
		writeError(w, http.StatusBadRequest, "email processing is not configured")
		return
	}

	s.runPipeline(w, r, "check-mail")
}

type telegramTestRequest struct {
	Password string `json:"password"`
	Message  string `json:"message"`
}

// handleTelegramTest sends an arbitrary text through the notifier so
// operators can verify chat credentials without touching the mailbox.
func (s *Server) handleTelegramTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req telegramTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !s.passwordValid(req.Password) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	text := strings.TrimSpace(req.Message)
	if text == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	if !s.notifier.NotifyRaw(r.Context(), text) {
		writeError(w, http.StatusInternalServerError, "failed to send telegram message")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// passwordValid checks the manual-trigger password. An unset password
// disables the manual endpoints rather than leaving them open.
func (s *Server) passwordValid(password string) bool {
	expected := s.cfg.Server.TestPassword
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(expected)) == 1
}

func (s *Server) runPipeline(w http.ResponseWriter, r *http.Request, trigger string) {
	res, err := s.runner.Run(r.Context())
	if errors.Is(err, pipeline.ErrRunInProgress) {
		writeError(w, http.StatusConflict, "pipeline run already in progress")
		return
	}
	if err != nil {
		s.logger.Error("pipeline run failed",
			logging.Operation("server."+trigger),
			logging.Err(err))
		writeError(w, http.StatusInternalServerError, "pipeline run failed")
		return
	}

	s.logger.Info("pipeline run triggered",
		logging.Operation("server."+trigger),
		slog.Int("processed", res.Processed))
	writeJSON(w, http.StatusOK, res)
}
