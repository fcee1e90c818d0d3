package serpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "google", q.Get("engine"))
		assert.Equal(t, "weather in paris", q.Get("q"))
		assert.Equal(t, "2", q.Get("num"))
		assert.Equal(t, "k", q.Get("api_key"))
		_, _ = w.Write([]byte(`{"organic_results":[
			{"title":"A","link":"https://a","snippet":"sa"},
			{"title":"B","link":"https://b","snippet":"sb"},
			{"title":"C","link":"https://c","snippet":"sc"}]}`))
	}))
	defer srv.Close()

	c, err := New("k", WithBaseURL(srv.URL))
	require.NoError(t, err)
	res, err := c.Search(context.Background(), "weather in paris", 2)
	require.NoError(t, err)
	assert.Equal(t, []Result{{Title: "A", Link: "https://a", Snippet: "sa"}, {Title: "B", Link: "https://b", Snippet: "sb"}}, res)
}

func TestSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Invalid API key."}`))
	}))
	defer srv.Close()

	c, _ := New("bad", WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "x", 5)
	require.ErrorContains(t, err, "Invalid API key")
}

func TestTrends_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google_trends", r.URL.Query().Get("engine"))
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, _ := New("k", WithBaseURL(srv.URL))
	_, err := c.Trends(context.Background(), "skincare")
	require.ErrorContains(t, err, "429")
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}
