package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/djokobozinov/email-ai-agent/internal/gmail"
	"github.com/djokobozinov/email-ai-agent/internal/pipeline"
	"github.com/djokobozinov/email-ai-agent/internal/summarizer"
	"github.com/djokobozinov/email-ai-agent/internal/telegram"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one pipeline pass and exit",
		Long: `Poll the configured Gmail accounts once, summarize the unread messages
within the lookback window and send the summaries to Telegram.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			p := pipeline.New(cfg,
				gmail.NewClient(cfg),
				summarizer.NewClient(cfg.OpenAI, logger),
				telegram.NewClient(cfg.Telegram, logger),
				logger, nil)

			res, err := p.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("pipeline run failed: %w", err)
			}

			fmt.Printf("Processed %d messages\n", res.Processed)
			return nil
		},
	}
}
