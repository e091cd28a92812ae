package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zkbaum/handai/internal/llm"
	"github.com/zkbaum/handai/internal/model"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Re-run model-assisted answer extraction over an existing results CSV",
		RunE:  runExtract,
	}
	f := cmd.Flags()
	f.String("input", "", "Results CSV to repair (required)")
	f.String("output", "", "Output CSV path (required)")
	f.String("model", string(model.ModelGPT4o), "Model that produced the original responses")
	f.Int("attempt", 0, "Attempt column to re-extract")
	f.String("api-key", "", "API key (or set HANDAI_API_KEY)")
	f.String("api-url", "", "OpenAI-compatible API base URL")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runExtract(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := context.Background()

	input := v.GetString("input")
	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	f.Close()
	if err != nil {
		return fmt.Errorf("parse %s: %w", input, err)
	}
	if len(records) < 2 {
		return fmt.Errorf("%s: no data rows", input)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[name] = i
	}
	attempt := v.GetInt("attempt")
	answerCol, ok := cols[fmt.Sprintf("chatgpt_answer_%d", attempt)]
	if !ok {
		return fmt.Errorf("%s: no attempt %d answer column", input, attempt)
	}
	questionCol, ok := cols["question"]
	if !ok {
		return fmt.Errorf("%s: missing question column", input)
	}
	responsesCol, hasResponses := cols["responses"]
	discussionCol, ok := cols[fmt.Sprintf("chatgpt_discussion_%d", attempt)]
	if !ok {
		return fmt.Errorf("%s: no attempt %d discussion column", input, attempt)
	}

	client := llm.New(v.GetString("api-url"), v.GetString("api-key"))
	if err := client.Ping(ctx); err != nil {
		return err
	}
	extract := client.ModelExtract(model.ModelID(v.GetString("model")))

	repaired := 0
	for i, record := range records[1:] {
		raw := record[discussionCol]
		if hasResponses {
			if text, ok := rawResponse(record[responsesCol], attempt); ok {
				raw = text
			}
		}
		// The extractor prompt only needs the rendered question text, which
		// the CSV already carries with choices inlined.
		q := &model.ExamQuestion{Stem: record[questionCol]}
		_, answer := extract(ctx, q, raw, true)
		if answer == model.AnswerExtractionRateLimited {
			slog.Warn("rate limited, flushing rows repaired so far", "repaired", repaired, "row", i)
			break
		}
		record[answerCol] = answer
		repaired++
	}

	out, err := os.Create(v.GetString("output"))
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()
	w := csv.NewWriter(out)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	slog.Info("re-extraction complete", "rows", len(records)-1, "repaired", repaired, "output", v.GetString("output"))
	return nil
}

// rawResponse pulls the original raw response text for one attempt out of
// the serialized responses column.
func rawResponse(serialized string, attempt int) (string, bool) {
	var responses []model.Response
	if err := json.Unmarshal([]byte(serialized), &responses); err != nil {
		return "", false
	}
	if attempt >= len(responses) || responses[attempt].Raw == "" {
		return "", false
	}
	return responses[attempt].Raw, true
}
