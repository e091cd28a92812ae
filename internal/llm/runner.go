package llm

import (
	"context"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/zkbaum/handai/internal/model"
)

// DefaultMaxAttempts bounds retries per request. This accounts for the
// off-chance that the endpoint fails transiently; there is no backoff.
const DefaultMaxAttempts = 3

// Attempt runs one prompt through the completion endpoint with bounded
// retry, then extracts a (discussion, answer) pair with the given strategy.
// After exhausting retries the attempt is recorded with parse-error
// sentinels and will be scored as incorrect.
func (c *Client) Attempt(ctx context.Context, modelID model.ModelID, msgs []openai.ChatCompletionMessage, extract ExtractFunc, question *model.ExamQuestion, maxAttempts int) model.Response {
	raw, ok := c.Complete(ctx, modelID, msgs)
	attempt := 1
	for !ok && attempt <= maxAttempts {
		slog.Warn("inference failed, retrying", "attempt", attempt, "model", modelID)
		raw, ok = c.Complete(ctx, modelID, msgs)
		attempt++
	}
	if !ok {
		slog.Warn("exhausted inference retries, attempt will count as incorrect",
			"attempts", attempt, "model", modelID)
	}

	discussion, answer := extract(ctx, question, raw, ok)
	return model.Response{
		Raw:        raw,
		Discussion: discussion,
		Answer:     answer,
	}
}
