// Package search answers realtime questions: it grounds a memory-aware
// completion on fresh web results and the current date and time.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"belle/internal/history"
	"belle/internal/llm"
	"belle/internal/provider"
	"belle/internal/serpapi"
)

const (
	temperature = 0.7
	topP        = 0.9
	maxTokens   = 1000
)

// WebSearcher is the subset of the SerpAPI client the engine needs.
type WebSearcher interface {
	Search(ctx context.Context, query string, num int) ([]serpapi.Result, error)
}

func SystemPrompt(username, assistantName string) string {
	return fmt.Sprintf(`Hello, I am %s.
You are an advanced AI assistant named %s.
Respond professionally with clear formatting and accuracy.`, username, assistantName)
}

type Engine struct {
	client       llm.Client
	store        *history.Store
	web          WebSearcher
	results      int
	systemPrompt string
	now          func() time.Time
	logger       *zap.Logger
}

// New builds the engine. web may be nil, in which case answers rely on the
// clock block and the model alone.
func New(client llm.Client, store *history.Store, web WebSearcher, results int, systemPrompt string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if results <= 0 {
		results = 5
	}
	return &Engine{
		client:       client,
		store:        store,
		web:          web,
		results:      results,
		systemPrompt: systemPrompt,
		now:          time.Now,
		logger:       logger,
	}
}

func (e *Engine) Invoke(ctx context.Context, prompt string) (string, error) {
	snapshot := e.store.Snapshot()
	msgs := make([]llm.Message, 0, len(snapshot)+3)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: e.systemPrompt})
	msgs = append(msgs, snapshot...)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: e.webResults(ctx, prompt) + RealtimeInfo(e.now())})
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: prompt})

	resp, err := e.client.Generate(ctx, msgs,
		llm.WithTemperature(temperature),
		llm.WithTopP(topP),
		llm.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", provider.Wrap(provider.CapabilityRealtimeSearch, err)
	}

	answer := strings.TrimSpace(resp.Content)
	if err := e.store.AppendExchange(prompt, answer); err != nil {
		e.logger.Error("failed to persist search exchange", zap.Error(err))
	}
	return llm.CleanAnswer(answer), nil
}

// webResults never fails; search problems become part of the context text.
func (e *Engine) webResults(ctx context.Context, query string) string {
	if e.web == nil {
		return "No web search results available.\n"
	}
	results, err := e.web.Search(ctx, query, e.results)
	if err != nil {
		e.logger.Warn("web search failed", zap.String("query", query), zap.Error(err))
		return fmt.Sprintf("Web Search Error: %v\n", err)
	}
	if len(results) == 0 {
		return "No web search results found.\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Search results for: %s\n\n", query)
	for _, r := range results {
		fmt.Fprintf(&sb, "Title: %s\nDescription: %s\nURL: %s\n\n", r.Title, r.Snippet, r.Link)
	}
	return sb.String()
}

// RealtimeInfo renders the clock block appended to the search context.
func RealtimeInfo(now time.Time) string {
	return "Real-time information:\n" +
		"Day: " + now.Format("Monday") + "\n" +
		"Date: " + now.Format("02") + "\n" +
		"Month: " + now.Format("January") + "\n" +
		"Year: " + now.Format("2006") + "\n" +
		"Time: " + now.Format("15:04:05") + "\n"
}
