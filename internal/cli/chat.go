package cli

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/memesrized/chatbot-escalation/internal/chat"
	"github.com/memesrized/chatbot-escalation/internal/config"
	"github.com/memesrized/chatbot-escalation/internal/escalation"
	"github.com/memesrized/chatbot-escalation/internal/llm"
	"github.com/memesrized/chatbot-escalation/internal/observability/metrics"
	"github.com/memesrized/chatbot-escalation/pkg/logging"
)

// ChatCmd returns the interactive chat command.
func ChatCmd() *cobra.Command {
	var modelOverride string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run an interactive support chat with escalation monitoring",
		Long: `Start a terminal support conversation. After every user and assistant
turn the escalation classifier analyzes the recent window and the session
ends when it decides a human should take over.

Type 'quit' or 'exit' to end the conversation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := logging.New(cfg.LogLevel)
			ctx := cmd.Context()

			client, model, err := llm.NewClientFromConfig(ctx, cfg)
			if err != nil {
				return err
			}
			if modelOverride != "" {
				model = modelOverride
			}

			classifier := escalation.NewClassifier(client, model, logger,
				metrics.NewClassifierMetrics(nil))
			bot := chat.NewBot(client, model, int32(cfg.ChatMaxTokens), float32(cfg.ChatTemperature))

			var store *chat.TranscriptStore
			if cfg.RedisAddr != "" {
				store = chat.NewTranscriptStore(redis.NewClient(&redis.Options{
					Addr:     cfg.RedisAddr,
					Password: cfg.RedisPassword,
				}), nil)
			}

			printChatHeader(model)

			session := chat.NewSession(bot, classifier, cfg.ContextWindowSize, store, logger, os.Stdin, os.Stdout)
			return session.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&modelOverride, "model", "", "override the configured model id")
	return cmd
}

func printChatHeader(model string) {
	rule := "======================================================================"
	fmt.Println(rule)
	fmt.Println("ESCALATION DECISION SYSTEM - Interactive Chat")
	fmt.Println(rule)
	fmt.Printf("Using model: %s\n", model)
	fmt.Println("Type 'quit' or 'exit' to end the conversation")
	fmt.Println(rule)
	fmt.Println()
}
