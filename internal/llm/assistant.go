package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/zkbaum/handai/internal/model"
)

// AssistantFormatNudge is passed as additional instructions for few-shot
// assistant runs, which otherwise drift from the required output format.
const AssistantFormatNudge = `Please make sure the response is in the ` +
	`form <discussion>insert discussion</discussion> <answer>C</answer>. Even if ` +
	`you are unsure, please pick one letter you are most confident about.`

// AssistantRunner drives inference through the assistants endpoint: one
// thread per query, a run against a pre-provisioned assistant with
// file-search resources, and a poll loop until the run reaches a terminal
// state.
type AssistantRunner struct {
	client       *Client
	assistantID  string
	pollInterval time.Duration
}

// NewAssistantRunner creates a runner for the given assistant.
func NewAssistantRunner(client *Client, assistantID string) *AssistantRunner {
	return &AssistantRunner{
		client:       client,
		assistantID:  assistantID,
		pollInterval: time.Second,
	}
}

// Query submits one prompt and waits for the run to finish. Endpoint
// failures and non-completed terminal states are logged and reported as
// ok == false, matching the completion runner's contract.
func (r *AssistantRunner) Query(ctx context.Context, prompt, additionalInstructions string) (text string, citations []model.Citation, ok bool) {
	api := r.client.api

	thread, err := api.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		slog.Error("create thread failed", "error", err)
		return "", nil, false
	}

	_, err = api.CreateMessage(ctx, thread.ID, openai.MessageRequest{
		Role:    string(openai.ThreadMessageRoleUser),
		Content: prompt,
	})
	if err != nil {
		slog.Error("create message failed", "error", err)
		return "", nil, false
	}

	run, err := api.CreateRun(ctx, thread.ID, openai.RunRequest{
		AssistantID:            r.assistantID,
		AdditionalInstructions: additionalInstructions,
	})
	if err != nil {
		slog.Error("create run failed", "error", err)
		return "", nil, false
	}

	for run.Status == openai.RunStatusQueued ||
		run.Status == openai.RunStatusInProgress ||
		run.Status == openai.RunStatusCancelling {
		select {
		case <-ctx.Done():
			slog.Error("run cancelled", "error", ctx.Err())
			return "", nil, false
		case <-time.After(r.pollInterval):
		}
		run, err = api.RetrieveRun(ctx, thread.ID, run.ID)
		if err != nil {
			slog.Error("retrieve run failed", "error", err)
			return "", nil, false
		}
	}

	if run.Status != openai.RunStatusCompleted {
		slog.Error("run did not complete", "status", run.Status, "run_id", run.ID)
		return "", nil, false
	}

	msgs, err := api.ListMessage(ctx, thread.ID, nil, nil, nil, nil, nil)
	if err != nil {
		slog.Error("list messages failed", "error", err)
		return "", nil, false
	}
	if len(msgs.Messages) == 0 || len(msgs.Messages[0].Content) == 0 {
		slog.Error("run completed with no message content", "run_id", run.ID)
		return "", nil, false
	}

	content := msgs.Messages[0].Content[0]
	if content.Text == nil {
		slog.Error("run returned non-text content", "run_id", run.ID)
		return "", nil, false
	}
	return content.Text.Value, parseAnnotations(content.Text.Annotations), true
}

// AttemptAssistant mirrors Client.Attempt for the assistants endpoint:
// bounded retry, then extraction.
func (r *AssistantRunner) AttemptAssistant(ctx context.Context, question *model.ExamQuestion, fewShot bool, extract ExtractFunc, maxAttempts int) model.Response {
	prompt := question.FormatQuestion()
	instructions := ""
	if fewShot {
		prompt = "<question>" + prompt + "</question>"
		instructions = AssistantFormatNudge
	}

	text, citations, ok := r.Query(ctx, prompt, instructions)
	attempt := 1
	for !ok && attempt <= maxAttempts {
		slog.Warn("assistant query failed, retrying", "attempt", attempt)
		text, citations, ok = r.Query(ctx, prompt, instructions)
		attempt++
	}
	if !ok {
		slog.Warn("exhausted assistant retries, attempt will count as incorrect", "attempts", attempt)
	}

	discussion, answer := extract(ctx, question, text, ok)
	return model.Response{
		Raw:        text,
		Discussion: discussion,
		Answer:     answer,
		Citations:  citations,
	}
}

// parseAnnotations converts loosely-typed message annotations into file
// citations. Annotations that are not file citations are dropped.
func parseAnnotations(annotations []any) []model.Citation {
	var citations []model.Citation
	for _, a := range annotations {
		data, err := json.Marshal(a)
		if err != nil {
			continue
		}
		var ann struct {
			Text         string `json:"text"`
			FileCitation struct {
				FileID string `json:"file_id"`
				Quote  string `json:"quote"`
			} `json:"file_citation"`
		}
		if err := json.Unmarshal(data, &ann); err != nil || ann.FileCitation.FileID == "" {
			continue
		}
		citations = append(citations, model.Citation{
			FileID: ann.FileCitation.FileID,
			Quote:  ann.FileCitation.Quote,
			Marker: ann.Text,
		})
	}
	return citations
}

// Ping verifies the endpoint is reachable before starting a batch.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.api.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("endpoint health check: %w", err)
	}
	return nil
}
