package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zkbaum/handai/internal/config"
	"github.com/zkbaum/handai/internal/dataset"
	"github.com/zkbaum/handai/internal/llm"
	"github.com/zkbaum/handai/internal/model"
	"github.com/zkbaum/handai/internal/store"
)

func assistantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assistants",
		Short: "Run a file-search experiment arm through the assistants endpoint",
		RunE:  runAssistants,
	}
	f := cmd.Flags()
	f.String("arm", "", "Arm name from the manifest (required)")
	f.Int("year", 0, "Eval year (defaults to the arm's first configured year)")
	f.String("api-key", "", "API key (or set HANDAI_API_KEY)")
	f.String("api-url", "", "OpenAI-compatible API base URL (overrides manifest)")
	f.Int("limit", 0, "Cap the number of questions (0 = all)")
	_ = cmd.MarkFlagRequired("arm")
	return cmd
}

func runAssistants(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := context.Background()

	cfg, err := config.Load(v.GetString("manifest"))
	if err != nil {
		return err
	}
	arm, err := cfg.Arm(v.GetString("arm"))
	if err != nil {
		return err
	}
	if arm.Strategy != config.StrategyFileSearch {
		return fmt.Errorf("arm %q does not use file search, run `handai infer` instead", arm.Name)
	}
	year := v.GetInt("year")
	if year == 0 {
		year = arm.Years[0]
	}

	baseURL := v.GetString("api-url")
	if baseURL == "" {
		baseURL = cfg.API.BaseURL
	}
	client := llm.New(baseURL, v.GetString("api-key"))
	if err := client.Ping(ctx); err != nil {
		return err
	}
	runner := llm.NewAssistantRunner(client, arm.AssistantID)

	// File search runs text-only, and only questions with uploaded
	// references are worth scoring against the vector store.
	questions, err := dataset.NewBuilder(cfg.Paths.Questions, cfg.Paths.Media).
		Year(year).
		QuestionContent(model.ContentText).
		Build()
	if err != nil {
		return err
	}
	references, err := dataset.ReadReferences(cfg.Paths.References, year)
	if err != nil {
		return err
	}
	dataset.AttachReferences(questions, dataset.ReferencesByQuestion(references))
	questions = dataset.PruneWithoutReferences(questions)
	if limit := v.GetInt("limit"); limit > 0 && len(questions) > limit {
		questions = questions[:limit]
	}
	if len(questions) == 0 {
		return fmt.Errorf("no questions with references for arm %q year %d", arm.Name, year)
	}

	extract := client.AssistantExtract()
	fewShot := arm.Exemplars > 0
	experiment := model.Experiment(arm.Name)

	ledger, err := store.New(cfg.Paths.Ledger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	run := model.Run{
		ID:         uuid.NewString(),
		Experiment: experiment,
		Year:       year,
		Model:      model.ModelID(arm.Model),
		Ensembling: arm.Ensembling,
		StartedAt:  time.Now(),
	}
	if err := ledger.BeginRun(run); err != nil {
		slog.Warn("could not record run start", "error", err)
	}

	var batch []model.InferenceResult
	failures := 0
	rateLimited := false

	for i, q := range questions {
		result := model.InferenceResult{
			Question:     q,
			Prompt:       model.PromptNotApplicable,
			Model:        model.ModelID(arm.Model),
			QuestionType: q.QuestionContentType(),
		}
		for n := 0; n < arm.Ensembling; n++ {
			resp := runner.AttemptAssistant(ctx, q, fewShot, extract, llm.DefaultMaxAttempts)
			if resp.Answer == model.AnswerExtractionRateLimited {
				rateLimited = true
				break
			}
			if resp.Answer == model.AnswerParseError || resp.Answer == model.AnswerExtractionError {
				failures++
			}
			result.Responses = append(result.Responses, resp)
		}
		if rateLimited {
			slog.Warn("extraction rate limited, flushing partial batch",
				"completed", len(batch), "dropped", len(questions)-len(batch))
			break
		}
		batch = append(batch, result)
		slog.Info("question done", "progress", fmt.Sprintf("%d/%d", i+1, len(questions)), "question_id", q.ID)
	}

	return flushResults(ledger, run, batch, references, failures, cfg.Paths.OutputDir, rateLimited)
}
