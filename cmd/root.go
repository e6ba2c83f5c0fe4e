package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/djokobozinov/email-ai-agent/internal/config"
)

// rootCmd represents the base command for the email-ai-agent application
var rootCmd = &cobra.Command{
	Use:   "email-ai-agent",
	Short: "Summarizes unread Gmail messages and notifies via Telegram",
	Long: `email-ai-agent polls the unread messages of up to five Gmail accounts,
summarizes each message with an LLM and delivers the summaries to a
Telegram chat.

It can run as:
  - A one-shot pipeline pass (default)
  - A long-running service with an interval scheduler and HTTP triggers`,
	SilenceUsage: true,
}

var (
	cfgFile  string
	logLevel string
)

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "email-ai-agent version %s\n" .Version}}`)

	// If no subcommand is provided, run a one-shot pipeline pass
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "run")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional, environment variables suffice)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// loadConfig loads the application configuration from the optional config
// file and the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process-wide structured logger.
func newLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
