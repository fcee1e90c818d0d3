// Package dispatch routes classified intents to capability providers and
// merges their outputs into one reply per turn.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"belle/internal/intent"
	"belle/internal/provider"
)

// ErrUnsupported marks automation intents that have no handler yet.
var ErrUnsupported = errors.New("not yet supported")

// emptyReply is used when every provider returned blank text.
const emptyReply = "I don't have an answer for that yet."

type action int

const (
	actionExit action = iota
	actionInvoke
	actionUnsupported
)

// rule maps a task pattern to a handler. Rules are evaluated in order and the
// first match wins, so more specific patterns come first.
type rule struct {
	name       string
	match      func(task string) bool
	prefix     string
	action     action
	capability string
	// wholeUtterance passes the user's original text instead of the argument.
	wholeUtterance bool
}

func prefixRule(tag, capability string) rule {
	return rule{
		name:       tag,
		match:      func(task string) bool { return intent.HasWordPrefix(task, tag) },
		prefix:     tag,
		action:     actionInvoke,
		capability: capability,
	}
}

func defaultRules() []rule {
	rules := []rule{
		{
			name:   intent.TagExit,
			match:  func(task string) bool { return task == intent.TagExit || strings.HasPrefix(task, intent.TagExit+" ") },
			action: actionExit,
		},
		prefixRule(intent.TagGeneral, provider.CapabilityChat),
		prefixRule(intent.TagRealtime, provider.CapabilityRealtimeSearch),
		prefixRule(intent.TagTrend, provider.CapabilityTrendAnalysis),
		prefixRule(intent.TagGenerateImage, provider.CapabilityImageGeneration),
		{
			name:           intent.TagImage,
			match:          func(task string) bool { return strings.Contains(task, intent.TagImage) },
			action:         actionInvoke,
			capability:     provider.CapabilityImageAnalysis,
			wholeUtterance: true,
		},
	}
	for _, tag := range intent.AutomationTags {
		r := prefixRule(tag, "")
		r.action = actionUnsupported
		rules = append(rules, r)
	}
	return rules
}

// Providers holds one adapter per capability. A nil field is reported as
// not configured when an intent routes to it.
type Providers struct {
	Chat            provider.Provider
	Search          provider.Provider
	Trend           provider.Provider
	ImageGeneration provider.Provider
	ImageAnalysis   provider.Provider
}

func (p Providers) byCapability() map[string]provider.Provider {
	return map[string]provider.Provider{
		provider.CapabilityChat:            p.Chat,
		provider.CapabilityRealtimeSearch:  p.Search,
		provider.CapabilityTrendAnalysis:   p.Trend,
		provider.CapabilityImageGeneration: p.ImageGeneration,
		provider.CapabilityImageAnalysis:   p.ImageAnalysis,
	}
}

// Result is the outcome of one intent within a turn.
type Result struct {
	Task    string
	Text    string
	Handled bool
	Err     error
}

// Outcome is everything one turn produced.
type Outcome struct {
	TurnID  string
	Reply   string
	Exit    bool
	Results []Result
}

type Dispatcher struct {
	rules     []rule
	providers map[string]provider.Provider
	logger    *zap.Logger
}

func New(p Providers, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{rules: defaultRules(), providers: p.byCapability(), logger: logger}
}

// turn carries the per-turn state. fallbackUsed guarantees the chat fallback
// for unmatched intents fires at most once.
type turn struct {
	fallbackUsed bool
	results      []Result
	logger       *zap.Logger
}

// Dispatch processes intents in order and composes the reply. It never
// returns an error: provider failures become result text.
func (d *Dispatcher) Dispatch(ctx context.Context, utterance string, intents []intent.Intent) Outcome {
	id := uuid.NewString()
	t := &turn{logger: d.logger.With(zap.String("turn_id", id))}
	out := Outcome{TurnID: id}

	for i, in := range intents {
		task := in.Task
		if task == "" {
			task = intent.Normalize(in.Raw)
		}
		r, ok := d.match(task)
		if !ok {
			if t.fallbackUsed {
				t.logger.Debug("unmatched intent dropped", zap.String("task", task))
				continue
			}
			t.fallbackUsed = true
			t.logger.Info("unmatched intent, chat fallback", zap.String("task", task))
			d.invoke(ctx, t, task, provider.CapabilityChat, utterance)
			continue
		}

		switch r.action {
		case actionExit:
			t.logger.Info("exit intent", zap.Int("suppressed", len(intents)-i-1))
			out.Exit = true
		case actionUnsupported:
			t.logger.Info("unsupported automation", zap.String("task", task))
			t.results = append(t.results, Result{
				Task:    task,
				Text:    fmt.Sprintf("Sorry, %q automation is not yet supported.", r.name),
				Handled: true,
				Err:     ErrUnsupported,
			})
		case actionInvoke:
			d.invoke(ctx, t, task, r.capability, d.argument(r, in, utterance))
		}
		if out.Exit {
			break
		}
	}

	if len(t.results) == 0 && !out.Exit {
		t.logger.Info("no results, chat on raw input")
		d.invoke(ctx, t, "", provider.CapabilityChat, utterance)
	}

	out.Results = t.results
	out.Reply = compose(t.results)
	if out.Reply == "" && !out.Exit {
		out.Reply = emptyReply
	}
	return out
}

func (d *Dispatcher) match(task string) (rule, bool) {
	for _, r := range d.rules {
		if r.match(task) {
			return r, true
		}
	}
	return rule{}, false
}

func (d *Dispatcher) argument(r rule, in intent.Intent, utterance string) string {
	if r.wholeUtterance {
		return utterance
	}
	raw := in.Raw
	if raw == "" {
		raw = in.Task
	}
	if arg := intent.StripPrefix(raw, r.prefix); arg != "" {
		return arg
	}
	return utterance
}

func (d *Dispatcher) invoke(ctx context.Context, t *turn, task, capability, argument string) {
	p := d.providers[capability]
	start := time.Now()
	var (
		text string
		err  error
	)
	if p == nil {
		err = provider.ErrNotConfigured
	} else {
		text, err = p.Invoke(ctx, argument)
	}
	if err != nil {
		t.logger.Warn("provider failed",
			zap.String("task", task),
			zap.String("capability", capability),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		t.results = append(t.results, Result{
			Task:    task,
			Text:    fmt.Sprintf("%s failed: %v", capability, provider.Cause(err)),
			Handled: true,
			Err:     provider.Wrap(capability, err),
		})
		return
	}
	t.logger.Info("provider answered",
		zap.String("task", task),
		zap.String("capability", capability),
		zap.Duration("elapsed", time.Since(start)),
	)
	t.results = append(t.results, Result{Task: task, Text: text, Handled: true})
}

func compose(results []Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if s := strings.TrimSpace(r.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}
