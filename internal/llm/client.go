// Package llm wraps the chat-completion and assistants endpoints used for
// inference and answer extraction.
package llm

import (
	"context"
	"errors"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/zkbaum/handai/internal/model"
)

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api *openai.Client
}

// New creates a new LLM client.
func New(baseURL, apiKey string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{api: openai.NewClientWithConfig(config)}
}

// Complete submits one chat completion and returns the response text. Any
// endpoint failure is logged and reported as ok == false rather than
// propagated; the caller decides whether to retry. No sampling parameters
// are overridden, to mirror real end-user conditions.
func (c *Client) Complete(ctx context.Context, modelID model.ModelID, msgs []openai.ChatCompletionMessage) (string, bool) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    string(modelID),
		Messages: msgs,
	})
	if err != nil {
		slog.Error("inference call failed", "model", modelID, "error", err)
		return "", false
	}
	if len(resp.Choices) == 0 {
		slog.Error("inference returned no choices", "model", modelID)
		return "", false
	}
	return resp.Choices[0].Message.Content, true
}

// isRateLimited reports whether an endpoint error is the provider's
// rate-limit rejection.
func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429
}
