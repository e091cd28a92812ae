package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zkbaum/handai/internal/model"
)

// Row is one evaluated question read back from a results CSV, reduced to
// the columns aggregation needs.
type Row struct {
	QuestionID          string
	QuestionType        model.ContentType
	ActualAnswer        string
	HumanCorrectPercent float64
	// Attempts holds the extracted answer per ensembled attempt, in
	// attempt order.
	Attempts []string
	// Discussions holds the per-attempt discussions, parallel to Attempts.
	Discussions []string
}

// Read loads a results CSV. The number of attempt column pairs varies per
// experiment and is discovered from the header.
func Read(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse results %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty results file", path)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[name] = i
	}
	for _, required := range []string{"question_number", "question_type", "actual_answer"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", path, required)
		}
	}

	var attempts int
	for {
		if _, ok := cols[fmt.Sprintf("chatgpt_answer_%d", attempts)]; !ok {
			break
		}
		attempts++
	}
	if attempts == 0 {
		return nil, fmt.Errorf("%s: no attempt columns found", path)
	}

	cell := func(row []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var rows []Row
	for _, record := range records[1:] {
		percent, _ := strconv.ParseFloat(cell(record, "human_correct_percentage"), 64)
		row := Row{
			QuestionID:          "question" + cell(record, "question_number"),
			QuestionType:        normalizeContentType(cell(record, "question_type")),
			ActualAnswer:        cell(record, "actual_answer"),
			HumanCorrectPercent: percent,
		}
		for n := range attempts {
			row.Attempts = append(row.Attempts, cell(record, fmt.Sprintf("chatgpt_answer_%d", n)))
			row.Discussions = append(row.Discussions, cell(record, fmt.Sprintf("chatgpt_discussion_%d", n)))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// normalizeContentType also accepts the legacy enum-repr labels found in
// older result files.
func normalizeContentType(s string) model.ContentType {
	switch strings.TrimSpace(s) {
	case "ContentType.TEXT_ONLY", "Text", "Text only":
		return model.ContentText
	case "ContentType.TEXT_AND_IMAGES", "Image", "Image based":
		return model.ContentImage
	}
	return model.ContentType(s)
}
