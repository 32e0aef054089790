package chat

import (
	"context"
	"fmt"

	"github.com/memesrized/chatbot-escalation/internal/llm"
)

const supportSystemPrompt = `You are a helpful customer support assistant.

Your role is to assist users with their questions and issues. Be friendly, professional, and try to provide clear, actionable solutions.

If you don't know something or cannot help with a specific request, acknowledge it honestly and suggest alternatives when possible.

Keep your responses concise and focused on solving the user's problem.`

// Bot generates support replies. It is an opaque text-completion
// collaborator; escalation decisions never depend on how it works.
type Bot struct {
	client      llm.Client
	model       string
	maxTokens   int32
	temperature float32
}

func NewBot(client llm.Client, model string, maxTokens int32, temperature float32) *Bot {
	if client == nil {
		panic("chat: llm client cannot be nil")
	}
	return &Bot{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Respond generates the assistant's next reply for the given history.
func (b *Bot) Respond(ctx context.Context, history []llm.ChatMessage) (string, error) {
	resp, err := b.client.Complete(ctx, llm.Request{
		Model:       b.model,
		System:      []string{supportSystemPrompt},
		Messages:    history,
		MaxTokens:   b.maxTokens,
		Temperature: b.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat: failed to generate response: %w", err)
	}
	return resp.Text, nil
}
