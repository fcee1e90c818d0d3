package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanAnswer(t *testing.T) {
	got := CleanAnswer("  Hello</s>\n\n  \nworld\n")
	assert.Equal(t, "Hello\nworld", got)
}

func TestNewParams(t *testing.T) {
	p := NewParams(WithTemperature(0.7), WithMaxTokens(1000), WithTopP(0.9))
	assert.Equal(t, Params{Temperature: 0.7, TopP: 0.9, MaxTokens: 1000}, p)
}

func TestFactory_MissingCredentials(t *testing.T) {
	f := &Factory{}
	_, err := f.CreateClient("openai")
	require.ErrorContains(t, err, "OPENAI_API_KEY")

	_, err = f.CreateClient("anthropic")
	require.ErrorContains(t, err, "ANTHROPIC_API_KEY")

	_, err = f.CreateClient("yandex")
	require.ErrorContains(t, err, "YANDEX_OAUTH_TOKEN")

	_, err = f.CreateClient("mystery")
	require.ErrorContains(t, err, "unknown llm provider")
}

func TestOpenAIClient_AccumulatesStream(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"Hel", "lo", " there"} {
			fmt.Fprintf(w, "data: {\"id\":\"1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewOpenAI("key", srv.URL, "test-model", "", "")
	resp, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, WithTemperature(0.5), WithMaxTokens(10))
	require.NoError(t, err)
	assert.Equal(t, "Hello there", resp.Content)
	assert.Equal(t, "test-model", resp.Model)
	assert.Equal(t, true, gotReq["stream"])
	assert.EqualValues(t, 10, gotReq["max_tokens"])
}

func TestOpenAIClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOpenAI("key", srv.URL, "m", "", "")
	_, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	require.Error(t, err)
}
