// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sonar wraps the search-augmented chat-completion API that
// returns answers with citations.
package sonar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/facts-engine/internal/httputil"
	"github.com/pdiddy/facts-engine/pkg/types"
)

// apiURL is the chat-completion endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiURL = "https://api.perplexity.ai/chat/completions"

const defaultModel = "sonar"

// Client calls the search-augmented answer API.
type Client struct {
	apiKey     string
	model      string
	userAgent  string
	httpClient *http.Client
}

// NewClient builds a Client from configuration. The API key is required;
// an empty key is a fatal configuration error.
func NewClient(cfg types.SonarConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: PERPLEXITY_API_KEY", types.ErrMissingCredential)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Client{
		apiKey:     cfg.APIKey,
		model:      model,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// chatRequest is the request body for the chat-completion endpoint.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatMessage is a single message in the conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response envelope. Citations live beside the
// choices and may be plain URL strings or objects carrying a "url" field,
// so they are decoded loosely.
type chatResponse struct {
	Choices   []chatChoice `json:"choices"`
	Citations []any        `json:"citations"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

// Query sends the prompt as a single user message and returns the answer
// text plus the raw citation list. An empty model falls back to the
// configured one. When wantSources is false the citation list is empty.
// A missing choices array yields an empty answer, not an error.
func (c *Client) Query(ctx context.Context, prompt, model string, wantSources bool) (string, []any, error) {
	if model == "" {
		model = c.model
	}

	reqBody := chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", types.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", nil, fmt.Errorf("%w: HTTP %d: %s", types.ErrRequestFailed, resp.StatusCode, string(body))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", nil, fmt.Errorf("%w: decoding response: %v", types.ErrRequestFailed, err)
	}

	answer := ""
	if len(cr.Choices) > 0 {
		answer = cr.Choices[0].Message.Content
	}

	if !wantSources {
		return answer, nil, nil
	}
	return answer, cr.Citations, nil
}

// Ask returns only the answer text, without sources.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	answer, _, err := c.Query(ctx, prompt, "", false)
	return answer, err
}
