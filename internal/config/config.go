package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// MaxAccounts is the number of mailbox credential slots the agent supports.
// Slot 1 reads GOOGLE_REFRESH_TOKEN, slots 2..5 read GOOGLE_REFRESH_TOKEN_N.
const MaxAccounts = 5

// Policy defaults. The lookback window is the only deduplication mechanism
// across runs (messages are never marked read), so it must stay at or
// slightly above the schedule interval: shorter and messages are missed,
// longer and they are re-sent.
const (
	DefaultLookbackWindow    = 15 * time.Minute
	DefaultScheduleInterval  = 10 * time.Minute
	DefaultMinBodyLength     = 50
	DefaultMaxMessagesPerRun = 5

	// MessagesPerRunCeiling caps the per-account list size regardless of
	// configuration, bounding per-run cost and latency.
	MessagesPerRunCeiling = 10
)

// DefaultExcludedCategories are the Gmail search terms excluded from the
// unread query. Spam is always excluded; promotions and social are the
// current policy and can be overridden.
var DefaultExcludedCategories = []string{"spam", "promotions", "social"}

// GoogleConfig holds the shared OAuth app credentials and the per-slot
// refresh tokens for the mailbox accounts.
type GoogleConfig struct {
	ClientID      string         `mapstructure:"client_id"`
	ClientSecret  string         `mapstructure:"client_secret"`
	RedirectURL   string         `mapstructure:"redirect_url"`
	RefreshTokens map[int]string `mapstructure:"-"`
	LabelFilter   string         `mapstructure:"label_filter"`
}

// OpenAIConfig holds the summarization model credentials and endpoint.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// TelegramConfig holds the notification transport credentials.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// PipelineConfig holds the policy knobs of the processing pipeline. These
// were observed to change over the system's history, so they are named
// configuration values rather than literals.
type PipelineConfig struct {
	LookbackWindow     time.Duration `mapstructure:"lookback_window"`
	ScheduleInterval   time.Duration `mapstructure:"schedule_interval"`
	ExcludedCategories []string      `mapstructure:"excluded_categories"`
	MinBodyLength      int           `mapstructure:"min_body_length"`
	MaxMessagesPerRun  int           `mapstructure:"max_messages_per_run"`
}

// ServerConfig holds the HTTP surface settings for serve mode.
type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	MetricsAddr    string `mapstructure:"metrics_addr"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	CronSecret     string `mapstructure:"cron_secret"`
	TestPassword   string `mapstructure:"test_password"`
}

// Config is the top-level application configuration. It is constructed once
// by Load and passed explicitly into each component, so unit tests can build
// deterministic configurations without process-wide mutation.
type Config struct {
	Google   GoogleConfig   `mapstructure:"google"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Server   ServerConfig   `mapstructure:"server"`
}

// envBindings maps viper keys to the environment variable names the
// deployment uses. The names predate this implementation and are kept
// stable so existing deployments keep working.
var envBindings = map[string]string{
	"google.client_id":              "GOOGLE_CLIENT_ID",
	"google.client_secret":          "GOOGLE_CLIENT_SECRET",
	"google.redirect_url":           "APP_URL",
	"google.label_filter":           "LABEL_FILTER",
	"openai.api_key":                "OPENAI_API_KEY",
	"openai.base_url":               "OPENAI_BASE_URL",
	"openai.model":                  "OPENAI_MODEL",
	"telegram.bot_token":            "TELEGRAM_BOT_TOKEN",
	"telegram.chat_id":              "TELEGRAM_CHAT_ID",
	"pipeline.lookback_window":      "LOOKBACK_WINDOW",
	"pipeline.schedule_interval":    "SCHEDULE_INTERVAL",
	"pipeline.min_body_length":      "MIN_BODY_LENGTH",
	"pipeline.max_messages_per_run": "MAX_EMAILS_PER_RUN",
	"server.addr":                   "LISTEN_ADDR",
	"server.metrics_addr":           "METRICS_ADDR",
	"server.cron_secret":            "CRON_SECRET",
	"server.test_password":          "TEST_PASSWORD",
}

// refreshTokenEnvVar returns the environment variable holding the refresh
// token for an account slot. Slot 1 uses the unsuffixed name.
func refreshTokenEnvVar(account int) string {
	if account == 1 {
		return "GOOGLE_REFRESH_TOKEN"
	}
	return fmt.Sprintf("GOOGLE_REFRESH_TOKEN_%d", account)
}

// Load reads configuration from the optional YAML file at path (empty path
// skips the file) and overlays environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("pipeline.lookback_window", DefaultLookbackWindow)
	v.SetDefault("pipeline.schedule_interval", DefaultScheduleInterval)
	v.SetDefault("pipeline.excluded_categories", DefaultExcludedCategories)
	v.SetDefault("pipeline.min_body_length", DefaultMinBodyLength)
	v.SetDefault("pipeline.max_messages_per_run", DefaultMaxMessagesPerRun)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_addr", ":9090")
	v.SetDefault("server.metrics_enabled", false)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Google.RefreshTokens = make(map[int]string)
	for i := 1; i <= MaxAccounts; i++ {
		if tok := os.Getenv(refreshTokenEnvVar(i)); tok != "" {
			cfg.Google.RefreshTokens[i] = tok
		}
	}

	if cfg.Pipeline.MaxMessagesPerRun <= 0 {
		cfg.Pipeline.MaxMessagesPerRun = DefaultMaxMessagesPerRun
	}

	return &cfg, nil
}

// RefreshToken returns the mailbox refresh token for an account slot, or the
// empty string if the slot is not configured.
func (c *Config) RefreshToken(account int) string {
	return c.Google.RefreshTokens[account]
}

// ConfiguredAccounts returns the account slots with a usable refresh token,
// in ascending order.
func (c *Config) ConfiguredAccounts() []int {
	var ids []int
	for i := 1; i <= MaxAccounts; i++ {
		if c.Google.RefreshTokens[i] != "" {
			ids = append(ids, i)
		}
	}
	return ids
}

// GmailConfigured reports whether the mail source can be queried at all:
// the shared app credentials are present and at least one account slot has
// a refresh token.
func (c *Config) GmailConfigured() bool {
	return c.Google.ClientID != "" &&
		c.Google.ClientSecret != "" &&
		len(c.ConfiguredAccounts()) > 0
}

// SummarizerConfigured reports whether the summarization model can be called.
func (c *Config) SummarizerConfigured() bool {
	return c.OpenAI.APIKey != ""
}

// NotifierConfigured reports whether the Telegram transport can be used.
func (c *Config) NotifierConfigured() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// FullyConfigured reports whether every collaborator the pipeline needs is
// available. A run started without this returns zero work rather than
// attempting partial processing.
func (c *Config) FullyConfigured() bool {
	return c.GmailConfigured() && c.SummarizerConfigured() && c.NotifierConfigured()
}
