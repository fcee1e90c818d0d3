package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"belle/internal/history"
	"belle/internal/llm"
	"belle/internal/provider"
)

const (
	temperature = 0.7
	maxTokens   = 1000
)

// SystemPrompt is the preamble injected ahead of the transcript on every call.
func SystemPrompt(username, assistantName string) string {
	return fmt.Sprintf(`Hello, I am %s.
You are a very accurate and advanced AI chatbot named %s.

- Do not tell time unless asked.
- Answer concisely.
- Reply only in English.
- Do not provide notes.
- Never mention training data.`, username, assistantName)
}

// Chatbot answers general queries with the shared transcript as memory.
type Chatbot struct {
	client       llm.Client
	store        *history.Store
	systemPrompt string
	logger       *zap.Logger
}

func New(client llm.Client, store *history.Store, systemPrompt string, logger *zap.Logger) *Chatbot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chatbot{client: client, store: store, systemPrompt: systemPrompt, logger: logger}
}

func (c *Chatbot) Invoke(ctx context.Context, query string) (string, error) {
	msgs := make([]llm.Message, 0, c.store.Len()+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: c.systemPrompt})
	msgs = append(msgs, c.store.Snapshot()...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: query})

	start := time.Now()
	resp, err := c.client.Generate(ctx, msgs, llm.WithTemperature(temperature), llm.WithMaxTokens(maxTokens))
	if err != nil {
		return "", provider.Wrap(provider.CapabilityChat, err)
	}
	c.logger.Info("chat completion",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.PromptTokens),
		zap.Int("completion_tokens", resp.CompletionTokens),
		zap.Duration("duration", time.Since(start)),
	)

	answer := strings.TrimSpace(strings.ReplaceAll(resp.Content, "</s>", ""))
	if err := c.store.AppendExchange(query, answer); err != nil {
		c.logger.Error("failed to persist chat exchange", zap.Error(err))
	}
	return llm.CleanAnswer(answer), nil
}
