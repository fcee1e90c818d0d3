package trend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

type fakeTrends struct {
	data string
	err  error
}

func (f fakeTrends) Trends(context.Context, string) (string, error) { return f.data, f.err }

type fakeSummarizer struct {
	out string
	err error
	in  string
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ string, text string) (string, error) {
	f.in = text
	return f.out, f.err
}

func TestInvoke_FullPipeline(t *testing.T) {
	f := &fakeLLM{resp: llm.Response{Content: " Try a clean fade. "}}
	sum := &fakeSummarizer{out: "fades are trending"}
	e := New(f, Options{
		Trends:        fakeTrends{data: strings.Repeat("x", 1000)},
		Summarizer:    sum,
		SocialEnabled: true,
		AssistantName: "BELLE",
	}, nil)

	out, err := e.Invoke(context.Background(), "haircuts")
	require.NoError(t, err)
	assert.Equal(t, "Try a clean fade.", out)

	assert.Contains(t, sum.in, "User Topic: haircuts")
	assert.Contains(t, sum.in, strings.Repeat("x", 800)+"\n")
	assert.NotContains(t, sum.in, strings.Repeat("x", 801))
	assert.Contains(t, sum.in, "trends related to 'haircuts'")

	require.Len(t, f.got, 2)
	assert.Contains(t, f.got[0].Content, "BELLE Trend Mentor")
	assert.Equal(t, "fades are trending", f.got[1].Content)
	assert.Equal(t, 700, f.params.MaxTokens)
}

func TestInvoke_DegradesWithoutSources(t *testing.T) {
	f := &fakeLLM{resp: llm.Response{Content: "ok"}}
	sum := &fakeSummarizer{err: errors.New("model loading")}
	e := New(f, Options{Trends: fakeTrends{err: errors.New("429")}, Summarizer: sum}, nil)

	_, err := e.Invoke(context.Background(), "skincare")
	require.NoError(t, err)
	user := f.got[1].Content
	assert.Contains(t, user, "Google Trends Error: 429")
	assert.Contains(t, user, "No social media trend data available.")
}

func TestInvoke_ModelFailure(t *testing.T) {
	e := New(&fakeLLM{err: errors.New("boom")}, Options{}, nil)
	_, err := e.Invoke(context.Background(), "skincare")
	var pe *provider.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, provider.CapabilityTrendAnalysis, pe.Capability)
}
