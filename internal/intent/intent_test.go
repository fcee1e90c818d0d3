package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"belle/internal/llm"
)

func TestNew(t *testing.T) {
	cases := []struct {
		raw  string
		want Intent
	}{
		{"realtime weather in paris", Intent{Task: "realtime weather in paris", Argument: "weather in paris", Raw: "realtime weather in paris"}},
		{"General ( Hello there )", Intent{Task: "general ( hello there )", Argument: "Hello there", Raw: "General ( Hello there )"}},
		{"generate image of a cat", Intent{Task: "generate image of a cat", Argument: "of a cat", Raw: "generate image of a cat"}},
		{"  trend   skincare ", Intent{Task: "trend skincare", Argument: "skincare", Raw: "  trend   skincare "}},
		{"exit", Intent{Task: "exit", Argument: "", Raw: "exit"}},
		{"dance (now)", Intent{Task: "dance (now)", Argument: "dance (now)", Raw: "dance (now)"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, New(tc.raw), tc.raw)
	}
}

func TestLeadingTag(t *testing.T) {
	assert.Equal(t, TagGenerateImage, LeadingTag("generate image (a cat)"))
	assert.Equal(t, TagGeneral, LeadingTag("general hi"))
	assert.Equal(t, "", LeadingTag("generalize this"))
	assert.Equal(t, "youtube search", LeadingTag("youtube search lofi"))
	assert.Equal(t, "", LeadingTag("image analysis (what is this)"))
}

func TestStripPrefix(t *testing.T) {
	assert.Equal(t, "weather in paris", StripPrefix("realtime weather in paris", "realtime"))
	assert.Equal(t, "latest news", StripPrefix("REALTIME (  latest news )", "realtime"))
	assert.Equal(t, "a cat", StripPrefix("generate image: (a cat)", "generate image"))
	assert.Equal(t, "keep (inner) parens", StripPrefix("general keep (inner) parens", "general"))
	assert.Equal(t, "", StripPrefix("general", "general"))
}

func TestRecognized(t *testing.T) {
	assert.True(t, Recognized("image analysis (describe)"))
	assert.True(t, Recognized("reminder 9pm call mom"))
	assert.False(t, Recognized("dance"))
}

func TestParseList(t *testing.T) {
	got := ParseList("realtime (news today, in brief), generate image (a cat)\ngeneral hello, (query), nonsense")
	require.Len(t, got, 3)
	assert.Equal(t, "news today, in brief", got[0].Argument)
	assert.Equal(t, TagGenerateImage, got[1].Tag())
	assert.Equal(t, "hello", got[2].Argument)

	assert.Empty(t, ParseList(""))
	assert.Empty(t, ParseList("I am not sure what you mean."))
	assert.Empty(t, ParseList("general ( query )"))
}

type fakeLLM struct {
	resp llm.Response
	err  error
	got  []llm.Message
}

func (f *fakeLLM) Generate(_ context.Context, msgs []llm.Message, _ ...llm.Option) (llm.Response, error) {
	f.got = msgs
	return f.resp, f.err
}

func TestLLMClassifier(t *testing.T) {
	f := &fakeLLM{resp: llm.Response{Content: "general (hello), trend (skincare)"}}
	c := NewLLMClassifier(f, nil)

	got, err := c.Classify(context.Background(), "hello! what's trending in skincare?")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "hello", got[0].Argument)
	assert.Equal(t, "skincare", got[1].Argument)
	assert.Equal(t, "hello! what's trending in skincare?", f.got[len(f.got)-1].Content)
}

func TestLLMClassifier_Error(t *testing.T) {
	c := NewLLMClassifier(&fakeLLM{err: errors.New("down")}, nil)
	got, err := c.Classify(context.Background(), "hi")
	require.Error(t, err)
	assert.Nil(t, got)
}
