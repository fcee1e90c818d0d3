// Package huggingface calls hosted inference endpoints for summarization
// and text-to-image generation.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	token      string
	httpClient *http.Client
}

func New(token string, httpClient *http.Client) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("huggingface requires HUGGINGFACE_API_KEY")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{token: token, httpClient: httpClient}, nil
}

type inputs struct {
	Inputs string `json:"inputs"`
}

// Summarize runs a summarization model and returns its first summary_text.
func (c *Client) Summarize(ctx context.Context, modelURL, text string) (string, error) {
	body, err := c.post(ctx, modelURL, text)
	if err != nil {
		return "", err
	}
	var out []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode summary: %w", err)
	}
	if len(out) == 0 || out[0].SummaryText == "" {
		return "", fmt.Errorf("summary response was empty")
	}
	return out[0].SummaryText, nil
}

// TextToImage returns the encoded image bytes produced for prompt.
func (c *Client) TextToImage(ctx context.Context, modelURL, prompt string) ([]byte, error) {
	return c.post(ctx, modelURL, prompt)
}

func (c *Client) post(ctx context.Context, modelURL, input string) ([]byte, error) {
	payload, err := json.Marshal(inputs{Inputs: input})
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, modelURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read huggingface response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return nil, fmt.Errorf("huggingface returned status %d: %s", resp.StatusCode, msg)
	}
	return body, nil
}
