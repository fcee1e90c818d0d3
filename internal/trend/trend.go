// Package trend synthesizes grooming and style advice from Google Trends,
// social trend signals and an optional summarization pass.
package trend

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"belle/internal/llm"
	"belle/internal/provider"
)

const (
	temperature    = 0.7
	maxTokens      = 700
	trendsMaxChars = 800
)

const mentorPrompt = `You are %s Trend Mentor.

Your job:
- Help introverted or under-confident people improve grooming and style.
- Be supportive, motivating and emotionally intelligent.
- NEVER shame appearance.
- Focus on growth, comfort, and confidence.`

type TrendsSource interface {
	Trends(ctx context.Context, query string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, modelURL, text string) (string, error)
}

// Engine is stateless: trend answers do not read or write the transcript.
type Engine struct {
	client       llm.Client
	trends       TrendsSource
	summarizer   Summarizer
	summaryURL   string
	socialSource bool
	prompt       string
	logger       *zap.Logger
}

type Options struct {
	// Trends, Summarizer may be nil; the corresponding step is skipped.
	Trends        TrendsSource
	Summarizer    Summarizer
	SummaryURL    string
	SocialEnabled bool
	AssistantName string
}

func New(client llm.Client, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		client:       client,
		trends:       opts.Trends,
		summarizer:   opts.Summarizer,
		summaryURL:   opts.SummaryURL,
		socialSource: opts.SocialEnabled,
		prompt:       fmt.Sprintf(mentorPrompt, opts.AssistantName),
		logger:       logger,
	}
}

func (e *Engine) Invoke(ctx context.Context, topic string) (string, error) {
	combined := fmt.Sprintf(`
User Topic: %s

Google Trends:
%s

Social Media Trends:
%s
`, topic, e.googleTrends(ctx, topic), e.socialTrends(topic))

	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: e.prompt},
		{Role: llm.RoleUser, Content: e.summarize(ctx, combined)},
	}
	resp, err := e.client.Generate(ctx, msgs, llm.WithTemperature(temperature), llm.WithMaxTokens(maxTokens))
	if err != nil {
		return "", provider.Wrap(provider.CapabilityTrendAnalysis, err)
	}
	return strings.TrimSpace(resp.Content), nil
}

func (e *Engine) googleTrends(ctx context.Context, topic string) string {
	if e.trends == nil {
		return "No Google trends data available."
	}
	data, err := e.trends.Trends(ctx, topic)
	if err != nil {
		e.logger.Warn("google trends fetch failed", zap.String("topic", topic), zap.Error(err))
		return fmt.Sprintf("Google Trends Error: %v", err)
	}
	if len(data) > trendsMaxChars {
		data = data[:trendsMaxChars]
	}
	return data
}

// socialTrends is a placeholder until a scraping actor is wired in.
func (e *Engine) socialTrends(topic string) string {
	if !e.socialSource {
		return "No social media trend data available."
	}
	return fmt.Sprintf("Instagram, Pinterest and YouTube trends related to '%s'.", topic)
}

// summarize falls back to the unsummarized text on any failure.
func (e *Engine) summarize(ctx context.Context, text string) string {
	if e.summarizer == nil {
		return text
	}
	out, err := e.summarizer.Summarize(ctx, e.summaryURL, "Summarize grooming trends:\n"+text)
	if err != nil {
		e.logger.Debug("trend summarization skipped", zap.Error(err))
		return text
	}
	return out
}
