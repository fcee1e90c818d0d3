package intent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"belle/internal/llm"
)

// Classifier turns an utterance into an ordered, possibly empty intent list.
// Implementations need not be deterministic.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]Intent, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, text string) ([]Intent, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) ([]Intent, error) {
	return f(ctx, text)
}

const decisionPreamble = `You are a very accurate Decision-Making Model, which decides what kind of a query is given to you.
You will decide whether a query is a 'general' query, a 'realtime' query, or is asking to perform any task or automation.
*** Do not answer any query, just decide what kind of query is given to you. ***
-> Respond with 'general ( query )' if a query can be answered by a llm model (conversational ai chatbot) and doesn't require any up to date information.
-> Respond with 'realtime ( query )' if a query needs up to date information, news, weather, or facts about current events or people.
-> Respond with 'trend ( topic )' if a query asks about style, grooming, fashion or what is trending for a topic.
-> Respond with 'generate image ( image prompt )' if a query is requesting to generate an image with a given prompt.
-> Respond with 'image analysis ( query )' if a query asks to look at, analyze or describe a photo or image the user has.
-> Respond with 'open ( application name or website name )', 'close ( application name )', 'play ( song name )', 'reminder ( datetime with message )', 'system ( task name )', 'content ( topic )', 'google search ( topic )' or 'youtube search ( topic )' for those automations.
*** If the query is asking to perform multiple tasks, respond with each task separated by a comma, e.g. 'realtime ( latest news ), generate image ( a cat )'. ***
*** If the user is saying goodbye or wants to end the conversation, respond with 'exit'. ***
*** Respond with 'general ( query )' if you can't decide the kind of query or if a query asks to perform a task which is not mentioned above. ***`

// LLMClassifier asks a language model to label the utterance.
type LLMClassifier struct {
	client llm.Client
	logger *zap.Logger
}

func NewLLMClassifier(client llm.Client, logger *zap.Logger) *LLMClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMClassifier{client: client, logger: logger}
}

func (c *LLMClassifier) Classify(ctx context.Context, text string) ([]Intent, error) {
	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: decisionPreamble},
		{Role: llm.RoleUser, Content: "how are you?"},
		{Role: llm.RoleAssistant, Content: "general how are you?"},
		{Role: llm.RoleUser, Content: "what's the news today and make a picture of a sunset"},
		{Role: llm.RoleAssistant, Content: "realtime (news today), generate image (a sunset)"},
		{Role: llm.RoleUser, Content: text},
	}
	resp, err := c.client.Generate(ctx, msgs, llm.WithTemperature(0.2), llm.WithMaxTokens(200))
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	intents := ParseList(resp.Content)
	c.logger.Debug("classified", zap.String("input", text), zap.String("raw", resp.Content), zap.Int("intents", len(intents)))
	return intents, nil
}

// ParseList splits classifier output on top-level commas and keeps the
// recognized items in order. Unrecognized or placeholder items are dropped,
// so malformed output yields an empty list.
func ParseList(output string) []Intent {
	var out []Intent
	for _, item := range splitTopLevel(output) {
		item = strings.Trim(strings.TrimSpace(item), `"'.`)
		if item == "" || strings.Contains(item, "( query )") || strings.Contains(item, "(query)") {
			continue
		}
		in := New(item)
		if !Recognized(in.Task) {
			continue
		}
		out = append(out, in)
	}
	return out
}

func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',', '\n':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
