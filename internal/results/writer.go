// Package results persists and re-reads per-experiment inference CSVs.
package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/zkbaum/handai/internal/model"
)

var baseHeader = []string{
	"question_year",
	"question_number",
	"question_id",
	"category",
	"question",
	"prompt",
	"model",
	"question_type",
	"responses",
}

var tailHeader = []string{
	"actual_discussion",
	"actual_answer",
	"human_correct_percentage",
	"human_distribution",
}

// Write serializes a batch of inference results to a new CSV under outDir.
// One row per question; each ensembled attempt contributes a
// (discussion, answer) column pair. Citation markers in discussions are
// rewritten into a numbered bibliography using the file-id mapping derived
// from references (or the default mapping when none are supplied). The
// filename embeds year, experiment, and a timestamp; existing files are
// never overwritten.
func Write(results []model.InferenceResult, references []model.Reference, year int, experiment model.Experiment, outDir string) (string, error) {
	if len(results) == 0 {
		return "", fmt.Errorf("no results to write")
	}

	mapping, err := fileIDMapping(references)
	if err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(outDir, fmt.Sprintf("%d_%s_%s.csv", year, experiment, timestamp))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create results file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append([]string{}, baseHeader...)
	ensembling := len(results[0].Responses)
	for n := range ensembling {
		header = append(header, fmt.Sprintf("chatgpt_discussion_%d", n), fmt.Sprintf("chatgpt_answer_%d", n))
	}
	header = append(header, tailHeader...)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	for _, result := range results {
		q := result.Question
		row := []string{
			formatDerived(q.Year),
			formatDerived(q.Number),
			q.ID,
			string(q.Category),
			q.FormatQuestion(),
			result.Prompt,
			string(result.Model),
			string(result.QuestionType),
			serializeResponses(result.Responses),
		}
		for _, resp := range result.Responses {
			row = append(row, replaceCitations(resp.Discussion, resp.Citations, mapping), resp.Answer)
		}
		row = append(row,
			q.CleanCommentary(),
			q.CorrectAnswer(),
			strconv.FormatFloat(q.CorrectPercent, 'f', -1, 64),
			formatDistribution(q.HumanDistribution()),
		)
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush results: %w", err)
	}
	slog.Info("wrote inference results", "path", path, "questions", len(results))
	return path, nil
}

// fileIDMapping indexes uploaded references by their external file id.
// A duplicate file id would silently mis-attribute citations, so it halts
// the run.
func fileIDMapping(references []model.Reference) (map[string]model.Reference, error) {
	if len(references) == 0 {
		return defaultFileIDMapping(), nil
	}
	mapping := make(map[string]model.Reference)
	for _, ref := range references {
		if !ref.Uploaded {
			continue
		}
		if _, dup := mapping[ref.FileID]; dup {
			return nil, fmt.Errorf("duplicate reference file id %s (question %d)", ref.FileID, ref.QuestionNumber)
		}
		mapping[ref.FileID] = ref
	}
	return mapping, nil
}

// defaultFileIDMapping covers the large shared textbook files that live in
// every vector store, for runs where no reference table was loaded.
func defaultFileIDMapping() map[string]model.Reference {
	refs := []model.Reference{
		{
			FileID:   "file-GreenOperativeHandSurgery",
			Citation: "Wolfe SW, Hotchkiss RN, Pederson WC, Kozin SH, Cohen MS. Green's Operative Hand Surgery, 7th ed.",
			URL:      "https://www.us.elsevierhealth.com/greens-operative-hand-surgery-9781455774272.html",
			Uploaded: true,
			Year:     2013,
		},
		{
			FileID:   "file-ASSHTextbook2013",
			Citation: "American Society for Surgery of the Hand. Self-Assessment Examination Reference Collection, 2013.",
			URL:      "https://www.assh.org",
			Uploaded: true,
			Year:     2013,
		},
	}
	mapping := make(map[string]model.Reference, len(refs))
	for _, r := range refs {
		mapping[r.FileID] = r
	}
	return mapping
}

// replaceCitations rewrites opaque citation markers into numbered [n]
// references and appends a bibliography to the discussion body.
func replaceCitations(discussion string, citations []model.Citation, mapping map[string]model.Reference) string {
	final := discussion
	num := 1
	for _, citation := range citations {
		ref, ok := mapping[citation.FileID]
		if !ok {
			slog.Warn("no reference mapping for cited file", "file_id", citation.FileID)
			continue
		}
		final += fmt.Sprintf("\n\n[%d] %s (%s)", num, ref.Citation, ref.URL)
		if citation.Quote != "" {
			final += "\nQuote: " + citation.Quote
		}
		final = strings.ReplaceAll(final, citation.Marker, fmt.Sprintf("[%d]", num))
		num++
	}
	return final
}

func serializeResponses(responses []model.Response) string {
	data, err := json.Marshal(responses)
	if err != nil {
		return fmt.Sprintf("%+v", responses)
	}
	return string(data)
}

// formatDistribution renders the per-letter distribution in fixed letter
// order so output is byte-identical across runs.
func formatDistribution(dist map[string]string) string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, letter := range model.ChoiceLetters {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q: %q", letter, dist[letter])
	}
	sb.WriteString("}")
	return sb.String()
}

func formatDerived(derive func() (int, bool)) string {
	v, ok := derive()
	if !ok {
		return ""
	}
	return strconv.Itoa(v)
}
