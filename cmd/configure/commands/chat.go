package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pawcare/pawcare-api/internal/config"
	"github.com/pawcare/pawcare-api/internal/logger"
	"github.com/pawcare/pawcare-api/internal/models"
	"github.com/pawcare/pawcare-api/internal/services/ai"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewChatCmd sends one message through the configured completion provider
func NewChatCmd() *cobra.Command {
	var (
		contextFile string
		message     string
		debug       bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send one chat message with the configured provider",
		Long:  "Run a single completion exactly as POST /api/chat would, using AI_* settings from the environment.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("--message is required")
			}

			c, err := loadContext(contextFile)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.RequireAI(); err != nil {
				return err
			}

			log := zap.NewNop()
			if debug {
				if log, err = logger.NewDevelopmentLogger(true); err != nil {
					return fmt.Errorf("create logger: %w", err)
				}
				defer func() { _ = logger.Sync(log) }()
			}

			provider, err := ai.DefaultRegistry().GetProvider(cfg.AIProvider, cfg.ProviderSettings(debug), log)
			if err != nil {
				return fmt.Errorf("create provider: %w", err)
			}

			chat := ai.NewChatService(provider, ai.ChatOptions{
				Timeout:     cfg.ChatTimeout,
				Temperature: cfg.AITemperature,
				MaxTokens:   cfg.AIMaxTokens,
				Logger:      log,
			})

			response, err := chat.Respond(context.Background(), "cli", &models.ChatRequest{
				Message: message,
				Context: c,
			})
			if err != nil {
				return fmt.Errorf("chat failed (%s): %w", ai.Classify(err), err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), response)
			return nil
		},
	}

	cmd.Flags().StringVar(&contextFile, "context", "", "Path to a JSON or YAML context file")
	cmd.Flags().StringVar(&message, "message", "", "Message to send (required)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log provider requests and responses")

	return cmd
}
