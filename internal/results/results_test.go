package results

import (
	"strings"
	"testing"

	"github.com/zkbaum/handai/internal/model"
)

func testResult() model.InferenceResult {
	q := &model.ExamQuestion{
		ID:              "q1",
		Title:           "2013 SAE Q4",
		Category:        model.CategoryBoneAndJoint,
		Stem:            "Which is correct?",
		Commentary:      "Preferred Response: A<br /><br />Because anatomy.",
		OriginationExam: "2013 Self-Assessment",
		CorrectIndex:    0,
		Choices: [5]model.Choice{
			{Text: "first", Present: true},
			{Text: "second", Present: true},
		},
		CorrectPercent: 81,
		Distribution:   map[string]string{"A": "81%", "B": "19%"},
	}
	return model.InferenceResult{
		Question:     q,
		Prompt:       `[{"role":"user"}]`,
		Model:        model.ModelGPT4o,
		QuestionType: model.ContentText,
		Responses: []model.Response{
			{Raw: "<discussion>d0</discussion><answer>A</answer>", Discussion: "d0", Answer: "A"},
			{Raw: "<discussion>d1</discussion><answer>B</answer>", Discussion: "d1", Answer: "B"},
			{Raw: "<discussion>d2</discussion><answer>A</answer>", Discussion: "d2", Answer: "A"},
		},
	}
}

func TestWriteReadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path, err := Write([]model.InferenceResult{testResult()}, nil, 2013, model.ExperimentGPT4o, dir)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(path, "2013_gpt4o_") {
		t.Fatalf("filename missing year and experiment: %s", path)
	}

	rows, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.QuestionID != "question4" {
		t.Fatalf("QuestionID = %q, want question4", row.QuestionID)
	}
	if row.QuestionType != model.ContentText {
		t.Fatalf("QuestionType = %q", row.QuestionType)
	}
	if row.ActualAnswer != "A" {
		t.Fatalf("ActualAnswer = %q, want A", row.ActualAnswer)
	}
	if row.HumanCorrectPercent != 81 {
		t.Fatalf("HumanCorrectPercent = %v, want 81", row.HumanCorrectPercent)
	}
	want := []string{"A", "B", "A"}
	if len(row.Attempts) != len(want) {
		t.Fatalf("attempts = %v, want %v", row.Attempts, want)
	}
	for i := range want {
		if row.Attempts[i] != want[i] {
			t.Fatalf("attempts = %v, want %v", row.Attempts, want)
		}
	}
}

func TestWriteEmptyBatch(t *testing.T) {
	if _, err := Write(nil, nil, 2013, model.ExperimentGPT4o, t.TempDir()); err == nil {
		t.Fatal("expected error for empty batch")
	}
}

func TestWriteRejectsDuplicateFileIDs(t *testing.T) {
	refs := []model.Reference{
		{FileID: "file-abc", Uploaded: true, QuestionNumber: 1},
		{FileID: "file-abc", Uploaded: true, QuestionNumber: 2},
	}
	if _, err := Write([]model.InferenceResult{testResult()}, refs, 2013, model.ExperimentGPT4o, t.TempDir()); err == nil {
		t.Fatal("expected error for duplicate reference file id")
	}
}

func TestReplaceCitations(t *testing.T) {
	mapping := map[string]model.Reference{
		"file-abc": {
			FileID:   "file-abc",
			Citation: "Green's Operative Hand Surgery",
			URL:      "https://example.com/greens",
		},
	}
	citations := []model.Citation{
		{FileID: "file-abc", Quote: "the quoted passage", Marker: "【12:0†source】"},
	}
	got := replaceCitations("Pasteurella is typical【12:0†source】.", citations, mapping)

	if !strings.Contains(got, "Pasteurella is typical[1].") {
		t.Fatalf("marker not replaced: %q", got)
	}
	if !strings.Contains(got, "[1] Green's Operative Hand Surgery (https://example.com/greens)") {
		t.Fatalf("bibliography entry missing: %q", got)
	}
	if !strings.Contains(got, "Quote: the quoted passage") {
		t.Fatalf("quote missing: %q", got)
	}
}

func TestReplaceCitationsUnmappedFileKept(t *testing.T) {
	citations := []model.Citation{{FileID: "file-unknown", Marker: "【1†x】"}}
	got := replaceCitations("text【1†x】", citations, map[string]model.Reference{})
	// Unmapped citations are logged and left alone.
	if got != "text【1†x】" {
		t.Fatalf("unmapped citation altered the text: %q", got)
	}
}

func TestFormatDistributionStableOrder(t *testing.T) {
	dist := map[string]string{"E": "1%", "A": "50%", "C": "9%", "B": "30%", "D": "10%"}
	got := formatDistribution(dist)
	want := `{"A": "50%", "B": "30%", "C": "9%", "D": "10%", "E": "1%"}`
	if got != want {
		t.Fatalf("formatDistribution = %q, want %q", got, want)
	}
}

func TestNormalizeContentType(t *testing.T) {
	tests := map[string]model.ContentType{
		"Text":                       model.ContentText,
		"Text only":                  model.ContentText,
		"ContentType.TEXT_ONLY":      model.ContentText,
		"Image":                      model.ContentImage,
		"Image based":                model.ContentImage,
		"ContentType.TEXT_AND_IMAGES": model.ContentImage,
	}
	for in, want := range tests {
		if got := normalizeContentType(in); got != want {
			t.Fatalf("normalizeContentType(%q) = %q, want %q", in, got, want)
		}
	}
}
