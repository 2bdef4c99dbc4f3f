// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gemini wraps the generative-text API. Unlike the answer API it
// has no citation support; Ask returns plain text only.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pdiddy/facts-engine/pkg/types"
)

const defaultModel = "gemini-2.0-flash"

// Client calls the generative-text API through the genai SDK.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient builds a Client from configuration. The API key is required;
// an empty key is a fatal configuration error.
func NewClient(ctx context.Context, cfg types.GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY", types.ErrMissingCredential)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Client{
		client: client,
		model:  client.GenerativeModel(model),
	}, nil
}

// Ask sends a single-shot prompt and returns the concatenated text parts
// of the first candidate.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrRequestFailed, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: empty response", types.ErrRequestFailed)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// Close releases the underlying SDK connection.
func (c *Client) Close() error {
	return c.client.Close()
}
