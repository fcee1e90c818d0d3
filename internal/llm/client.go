package llm

import (
	"context"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Params are per-call sampling settings. Zero values leave the backend default.
type Params struct {
	Temperature float32
	TopP        float32
	MaxTokens   int
}

type Option func(*Params)

func WithTemperature(t float32) Option { return func(p *Params) { p.Temperature = t } }
func WithTopP(v float32) Option        { return func(p *Params) { p.TopP = v } }
func WithMaxTokens(n int) Option       { return func(p *Params) { p.MaxTokens = n } }

func NewParams(opts ...Option) Params {
	var p Params
	for _, o := range opts {
		o(&p)
	}
	return p
}

type Client interface {
	Generate(ctx context.Context, messages []Message, opts ...Option) (Response, error)
}

// CleanAnswer drops end-of-sequence markers and blank lines from a model answer.
func CleanAnswer(answer string) string {
	answer = strings.TrimSpace(strings.ReplaceAll(answer, "</s>", ""))
	lines := strings.Split(answer, "\n")
	out := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
