// Package console is the interactive read-print loop in front of the
// classifier and dispatcher.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"belle/internal/dispatch"
	"belle/internal/intent"
	"belle/internal/storage"
)

const (
	FarewellMessage  = "Take care. I'm always here for you 🌸"
	InterruptMessage = "Goodbye!"
	turnErrorMessage = "Sorry, something went wrong with that request. Please try again."
)

var exitPhrases = map[string]bool{
	"exit":    true,
	"quit":    true,
	"bye":     true,
	"goodbye": true,
}

// IsExitPhrase reports whether text asks to end the session outright.
func IsExitPhrase(text string) bool {
	return exitPhrases[strings.ToLower(strings.Trim(strings.TrimSpace(text), ".!"))]
}

type State int32

const (
	Idle State = iota
	AwaitingInput
	Classifying
	Dispatching
	Emitting
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingInput:
		return "awaiting_input"
	case Classifying:
		return "classifying"
	case Dispatching:
		return "dispatching"
	case Emitting:
		return "emitting"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Dispatcher is the part of dispatch.Dispatcher the loop needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, utterance string, intents []intent.Intent) dispatch.Outcome
}

type Options struct {
	AssistantName string
	Username      string
	In            io.Reader
	Out           io.Writer
	// Recorder receives one event per completed turn. Optional.
	Recorder storage.Recorder
	Now      func() time.Time
}

type line struct {
	text string
	err  error
}

// Loop runs one console session. Input is read on a separate goroutine so
// that providers can ask follow-up questions through Ask while a turn is in
// progress.
type Loop struct {
	classifier intent.Classifier
	dispatcher Dispatcher
	opts       Options
	logger     *zap.Logger

	labelStyle  lipgloss.Style
	promptStyle lipgloss.Style
	noteStyle   lipgloss.Style

	state      atomic.Int32
	readerOnce sync.Once
	lines      chan line
}

func New(classifier intent.Classifier, dispatcher Dispatcher, opts Options, logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.AssistantName == "" {
		opts.AssistantName = "Assistant"
	}
	if opts.Username == "" {
		opts.Username = "User"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	r := lipgloss.NewRenderer(opts.Out)
	return &Loop{
		classifier:  classifier,
		dispatcher:  dispatcher,
		opts:        opts,
		logger:      logger,
		labelStyle:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		promptStyle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		noteStyle:   r.NewStyle().Faint(true),
		lines:       make(chan line),
	}
}

func (l *Loop) State() State { return State(l.state.Load()) }

func (l *Loop) setState(s State) {
	prev := State(l.state.Swap(int32(s)))
	if prev != s {
		l.logger.Debug("state", zap.Stringer("from", prev), zap.Stringer("to", s))
	}
}

// Run reads and answers lines until the user exits, input ends or ctx is
// cancelled. A failing turn never ends the session.
func (l *Loop) Run(ctx context.Context) error {
	l.setState(Idle)
	l.startReader()
	fmt.Fprintln(l.opts.Out, l.noteStyle.Render(fmt.Sprintf("%s is listening. Type 'exit' to leave.", l.opts.AssistantName)))

	for {
		l.setState(AwaitingInput)
		fmt.Fprint(l.opts.Out, l.promptStyle.Render(l.opts.Username+":")+" ")

		text, err := l.next(ctx)
		switch {
		case ctx.Err() != nil:
			fmt.Fprintln(l.opts.Out)
			l.reply(InterruptMessage)
			l.setState(Terminated)
			return nil
		case errors.Is(err, io.EOF):
			fmt.Fprintln(l.opts.Out)
			l.reply(FarewellMessage)
			l.setState(Terminated)
			return nil
		case err != nil:
			l.setState(Terminated)
			return fmt.Errorf("read input: %w", err)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if IsExitPhrase(text) {
			l.reply(FarewellMessage)
			l.record(storage.Event{TurnID: uuid.NewString(), UserMessage: text, AssistantResponse: FarewellMessage, Exit: true})
			l.setState(Terminated)
			return nil
		}
		if l.turn(ctx, text) {
			l.reply(FarewellMessage)
			l.setState(Terminated)
			return nil
		}
	}
}

// turn classifies and dispatches one utterance. It reports whether the
// session should end.
func (l *Loop) turn(ctx context.Context, text string) (exit bool) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("turn panicked", zap.String("input", text), zap.Any("panic", r), zap.Stack("stack"))
			l.reply(turnErrorMessage)
			exit = false
		}
	}()

	l.setState(Classifying)
	intents, err := l.classifier.Classify(ctx, text)
	if err != nil {
		l.logger.Warn("classification failed, using chat fallback", zap.String("input", text), zap.Error(err))
		intents = nil
	}

	l.setState(Dispatching)
	out := l.dispatcher.Dispatch(ctx, text, intents)

	l.setState(Emitting)
	if out.Reply != "" {
		l.reply(out.Reply)
	}

	ev := storage.Event{
		TurnID:            out.TurnID,
		UserMessage:       text,
		AssistantResponse: out.Reply,
		Exit:              out.Exit,
	}
	for _, in := range intents {
		ev.Tasks = append(ev.Tasks, in.Task)
	}
	for _, r := range out.Results {
		if r.Err != nil {
			ev.Failures++
		}
	}
	l.record(ev)
	return out.Exit
}

// Ask prints question and returns the next input line. Providers use it for
// interactive follow-ups during a turn.
func (l *Loop) Ask(ctx context.Context, question string) (string, error) {
	l.startReader()
	fmt.Fprint(l.opts.Out, l.promptStyle.Render(question))
	if !strings.HasSuffix(question, " ") {
		fmt.Fprint(l.opts.Out, " ")
	}
	text, err := l.next(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (l *Loop) reply(text string) {
	fmt.Fprintf(l.opts.Out, "%s %s\n", l.labelStyle.Render(l.opts.AssistantName+":"), text)
}

func (l *Loop) record(ev storage.Event) {
	if l.opts.Recorder == nil {
		return
	}
	ev.Timestamp = l.opts.Now().UTC()
	if err := l.opts.Recorder.AppendInteraction(ev); err != nil {
		l.logger.Warn("failed to record interaction", zap.String("turn_id", ev.TurnID), zap.Error(err))
	}
}

func (l *Loop) startReader() {
	l.readerOnce.Do(func() {
		go func() {
			defer close(l.lines)
			sc := bufio.NewScanner(l.opts.In)
			for sc.Scan() {
				l.lines <- line{text: sc.Text()}
			}
			if err := sc.Err(); err != nil {
				l.lines <- line{err: err}
			}
		}()
	})
}

func (l *Loop) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case ln, ok := <-l.lines:
		if !ok {
			return "", io.EOF
		}
		return ln.text, ln.err
	}
}
