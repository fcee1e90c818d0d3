package chat

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"belle/internal/history"
	"belle/internal/llm"
	"belle/internal/provider"
)

type fakeLLM struct {
	resp   llm.Response
	err    error
	got    []llm.Message
	params llm.Params
}

func (f *fakeLLM) Generate(_ context.Context, msgs []llm.Message, opts ...llm.Option) (llm.Response, error) {
	f.got = msgs
	f.params = llm.NewParams(opts...)
	return f.resp, f.err
}

func newStore(t *testing.T) *history.Store {
	t.Helper()
	s, err := history.Open(filepath.Join(t.TempDir(), "ChatLog.json"), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestInvoke_UsesMemoryAndAppendsExchange(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.AppendExchange("my name is Ann", "Nice to meet you, Ann."))

	f := &fakeLLM{resp: llm.Response{Content: "Your name is Ann.\n\n</s>"}}
	bot := New(f, store, SystemPrompt("Ann", "BELLE"), nil)

	out, err := bot.Invoke(context.Background(), "what is my name?")
	require.NoError(t, err)
	assert.Equal(t, "Your name is Ann.", out)

	require.Len(t, f.got, 4)
	assert.Equal(t, llm.RoleSystem, f.got[0].Role)
	assert.Contains(t, f.got[0].Content, "named BELLE")
	assert.Equal(t, "my name is Ann", f.got[1].Content)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "what is my name?"}, f.got[3])
	assert.Equal(t, llm.Params{Temperature: 0.7, MaxTokens: 1000}, f.params)

	turns := store.Snapshot()
	require.Len(t, turns, 4)
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "Your name is Ann."}, turns[3])
}

func TestInvoke_FailureLeavesTranscriptUntouched(t *testing.T) {
	store := newStore(t)
	bot := New(&fakeLLM{err: errors.New("connection refused")}, store, "sys", nil)

	_, err := bot.Invoke(context.Background(), "hello")
	var pe *provider.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, provider.CapabilityChat, pe.Capability)
	assert.Equal(t, 0, store.Len())
}
