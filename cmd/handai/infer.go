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
	"github.com/zkbaum/handai/internal/prompt"
	"github.com/zkbaum/handai/internal/results"
	"github.com/zkbaum/handai/internal/store"
)

func inferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Run one chat-completion experiment arm and write a results CSV",
		RunE:  runInfer,
	}
	f := cmd.Flags()
	f.String("arm", "", "Arm name from the manifest (required)")
	f.Int("year", 0, "Eval year (defaults to the arm's first configured year)")
	f.String("api-key", "", "API key (or set HANDAI_API_KEY)")
	f.String("api-url", "", "OpenAI-compatible API base URL (overrides manifest)")
	f.Bool("documents", false, "Inject reference documents into prompts")
	f.Int("limit", 0, "Cap the number of questions (0 = all)")
	_ = cmd.MarkFlagRequired("arm")
	return cmd
}

func runInfer(cmd *cobra.Command, _ []string) error {
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
	if arm.Strategy == config.StrategyFileSearch {
		return fmt.Errorf("arm %q uses file search, run `handai assistants` instead", arm.Name)
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

	modelID := model.ModelID(arm.Model)
	questions, err := buildEvalSet(cfg, arm, modelID, year, v.GetInt("limit"))
	if err != nil {
		return err
	}
	var trainPool []*model.ExamQuestion
	if arm.Strategy == config.StrategyFewShot {
		trainPool, err = buildTrainSet(cfg, arm)
		if err != nil {
			return err
		}
	}

	var references []model.Reference
	builder := &prompt.Builder{}
	preamble := prompt.PreambleGeneric
	if v.GetBool("documents") {
		references, err = dataset.ReadReferences(cfg.Paths.References, year)
		if err != nil {
			return err
		}
		dataset.AttachReferences(questions, dataset.ReferencesByQuestion(references))
		questions = dataset.PruneWithoutReferences(questions)

		builder.IncludeDocuments = true
		builder.ExemplarDocumentLimit = 10000
		builder.LoadDocument = func(ref model.Reference) (string, error) {
			return dataset.DocumentText(cfg.Paths.ReferenceTexts, ref)
		}
		preamble = prompt.PreambleRAG
	} else if arm.Strategy == config.StrategyFewShot {
		preamble = prompt.PreambleDetailed
	}

	extract := client.ModelExtract(modelID)
	if arm.Strategy == config.StrategyFewShot {
		// Few-shot responses follow the tag grammar, so no second model
		// call is needed to pull the letter out.
		extract = llm.RegexExtract
	}

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
		Model:      modelID,
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
		exemplars, err := exemplarsFor(arm, trainPool, q)
		if err != nil {
			return err
		}
		msgs, _, err := builder.Build(preamble, exemplars, q)
		if err != nil {
			return err
		}

		result := model.InferenceResult{
			Question:     q,
			Prompt:       prompt.Serialize(msgs),
			Model:        modelID,
			QuestionType: q.QuestionContentType(),
		}
		for n := 0; n < arm.Ensembling; n++ {
			resp := client.Attempt(ctx, modelID, msgs, extract, q, llm.DefaultMaxAttempts)
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
			// Flush completed questions and stop; the incomplete question
			// would break the fixed attempt-column layout.
			slog.Warn("extraction rate limited, flushing partial batch",
				"completed", len(batch), "dropped", len(questions)-len(batch))
			break
		}
		batch = append(batch, result)
		slog.Info("question done", "progress", fmt.Sprintf("%d/%d", i+1, len(questions)), "question_id", q.ID)
	}

	return flushResults(ledger, run, batch, references, failures, cfg.Paths.OutputDir, rateLimited)
}

// flushResults writes the batch, records the outcome in the ledger, and
// surfaces the rate-limit cause when the batch was cut short. A rate limit
// before any question completed writes no file.
func flushResults(ledger *store.Store, run model.Run, batch []model.InferenceResult, references []model.Reference, failures int, outDir string, rateLimited bool) error {
	if rateLimited && len(batch) == 0 {
		if err := ledger.FinishRun(run.ID, 0, failures, ""); err != nil {
			slog.Warn("could not record run finish", "error", err)
		}
		return fmt.Errorf("stopped by extraction rate limit before any question completed")
	}
	path, err := results.Write(batch, references, run.Year, run.Experiment, outDir)
	if err != nil {
		return err
	}
	if err := ledger.FinishRun(run.ID, len(batch), failures, path); err != nil {
		slog.Warn("could not record run finish", "error", err)
	}
	if rateLimited {
		return fmt.Errorf("stopped early after extraction rate limit, partial results in %s", path)
	}
	return nil
}

// buildEvalSet loads the filtered, sorted question set for one arm. Models
// that cannot see images only get text questions.
func buildEvalSet(cfg config.Config, arm config.ArmConfig, modelID model.ModelID, year, limit int) ([]*model.ExamQuestion, error) {
	b := dataset.NewBuilder(cfg.Paths.Questions, cfg.Paths.Media).Year(year)
	if !modelID.SupportsImages() {
		b = b.QuestionContent(model.ContentText)
	}
	questions, err := b.Build()
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions for arm %q year %d", arm.Name, year)
	}
	if limit > 0 && len(questions) > limit {
		questions = questions[:limit]
	}
	return questions, nil
}

// buildTrainSet loads the text-only exemplar pool from the arm's training
// year. The pool is disjoint from the eval years, so exemplar prompts never
// carry an eval question or its answer.
func buildTrainSet(cfg config.Config, arm config.ArmConfig) ([]*model.ExamQuestion, error) {
	pool, err := dataset.NewBuilder(cfg.Paths.Questions, cfg.Paths.Media).
		Year(arm.ExemplarYear).
		QuestionContent(model.ContentText).
		Build()
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("no training questions for arm %q year %d", arm.Name, arm.ExemplarYear)
	}
	return pool, nil
}

// exemplarsFor picks the few-shot exemplars for one target question from the
// training pool. The zero-shot strategy still gets a single synthetic
// exemplar so responses keep the tag format.
func exemplarsFor(arm config.ArmConfig, trainPool []*model.ExamQuestion, target *model.ExamQuestion) ([]*model.ExamQuestion, error) {
	if arm.Strategy == config.StrategyZeroShot {
		return []*model.ExamQuestion{prompt.NoPromptExemplar()}, nil
	}

	pool := make([]*model.ExamQuestion, 0, len(trainPool))
	for _, q := range trainPool {
		if q.ID != target.ID {
			pool = append(pool, q)
		}
	}
	exemplars := dataset.KNNExemplars(pool, arm.Exemplars, target.Category)
	if len(exemplars) == 0 {
		return nil, fmt.Errorf("no exemplars available for question %s", target.ID)
	}
	return exemplars, nil
}
