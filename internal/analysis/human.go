package analysis

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"github.com/zkbaum/handai/internal/model"
)

// KeyEntry is one row of the answer key table.
type KeyEntry struct {
	QuestionID    string
	CorrectAnswer string
	QuestionType  model.ContentType
}

// ReadKey loads the answer key. Video questions are excluded; they were
// never administered to either arm.
func ReadKey(path string) ([]KeyEntry, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	cols, err := headerIndex(records[0], path, "question_id", "correct_answer", "question_type")
	if err != nil {
		return nil, err
	}

	var entries []KeyEntry
	for _, record := range records[1:] {
		id := cell(record, cols, "question_id")
		qt := cell(record, cols, "question_type")
		if id == "" || qt == "" {
			slog.Warn("skipping short key row", "path", path, "row", record)
			continue
		}
		if qt == "Video" {
			continue
		}
		entries = append(entries, KeyEntry{
			QuestionID:    id,
			CorrectAnswer: cell(record, cols, "correct_answer"),
			QuestionType:  model.ContentType(qt),
		})
	}
	return entries, nil
}

// cell returns a field by column name, or "" when the row is too short.
func cell(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

// HumanSamples scores the student answer table against the key and returns
// 0/1 correctness samples per question type. The answer table is keyed by
// student id with one column per question id; question columns absent from
// the key (including excluded video questions) are skipped.
func HumanSamples(answersPath string, key []KeyEntry) (map[model.ContentType][]float64, error) {
	records, err := readCSV(answersPath)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]KeyEntry, len(key))
	for _, entry := range key {
		byID[entry.QuestionID] = entry
	}

	samples := make(map[model.ContentType][]float64)
	header := records[0]
	for col, questionID := range header {
		entry, ok := byID[questionID]
		if !ok {
			continue
		}
		for _, record := range records[1:] {
			if col >= len(record) {
				continue
			}
			v := 0.0
			if record[col] == entry.CorrectAnswer {
				v = 1.0
			}
			samples[entry.QuestionType] = append(samples[entry.QuestionType], v)
		}
	}
	return samples, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}
	return records, nil
}

func headerIndex(header []string, path string, required ...string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", path, name)
		}
	}
	return cols, nil
}
