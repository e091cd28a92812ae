package dataset

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zkbaum/handai/internal/model"
)

// Reference-table column names follow the sheet export verbatim.
const (
	refColQuestionNum  = "question_num"
	refColReferenceNum = "reference_num"
	refColFileID       = "openai_file_id"
	refColFileName     = "openai_file_name"
	refColCitation     = "reference"
	refColURL          = "Upload link - drive folder"
	refColUploaded     = "Did you download the PDF and upload to the drive folder?"
)

// ReadReferences loads the reference table for one exam year.
func ReadReferences(path string, year int) ([]model.Reference, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require(refColQuestionNum, refColReferenceNum, refColFileID, refColUploaded); err != nil {
		return nil, err
	}

	var refs []model.Reference
	for _, row := range t.rows {
		qnum, err := parseInt(t.get(row, refColQuestionNum))
		if err != nil {
			return nil, fmt.Errorf("%s: bad question_num %q", path, t.get(row, refColQuestionNum))
		}
		rnum, err := parseInt(t.get(row, refColReferenceNum))
		if err != nil {
			return nil, fmt.Errorf("%s: bad reference_num %q", path, t.get(row, refColReferenceNum))
		}
		refs = append(refs, model.Reference{
			QuestionNumber:  qnum,
			ReferenceNumber: rnum,
			FileID:          t.get(row, refColFileID),
			FileName:        t.get(row, refColFileName),
			Citation:        t.get(row, refColCitation),
			URL:             t.get(row, refColURL),
			Uploaded:        parseFlag(t.get(row, refColUploaded)),
			Year:            year,
		})
	}
	slog.Info("read references", "path", path, "count", len(refs), "year", year)
	return refs, nil
}

// ReferencesByQuestion groups references by question number.
func ReferencesByQuestion(refs []model.Reference) map[int][]model.Reference {
	byQuestion := make(map[int][]model.Reference)
	for _, r := range refs {
		byQuestion[r.QuestionNumber] = append(byQuestion[r.QuestionNumber], r)
	}
	return byQuestion
}

// AttachReferences joins uploaded references onto each question by question
// number. Questions whose number cannot be parsed receive none.
func AttachReferences(questions []*model.ExamQuestion, byQuestion map[int][]model.Reference) {
	for _, q := range questions {
		num, ok := q.Number()
		if !ok {
			continue
		}
		docs := byQuestion[num]
		if len(docs) == 0 {
			continue
		}
		for _, doc := range docs {
			if doc.Uploaded {
				q.References = append(q.References, doc)
			}
		}
		slog.Info("attached references",
			"question_number", num,
			"attached", len(q.References),
			"available", len(docs))
	}
}

// PruneWithoutReferences keeps only text-only questions that have at least
// one usable reference. Retrieval experiments cannot score anything else.
func PruneWithoutReferences(questions []*model.ExamQuestion) []*model.ExamQuestion {
	var kept []*model.ExamQuestion
	var removed []int
	for _, q := range questions {
		if len(q.References) > 0 && !q.QuestionHasImages() {
			kept = append(kept, q)
			continue
		}
		if num, ok := q.Number(); ok {
			removed = append(removed, num)
		}
	}
	slog.Info("pruned questions without references",
		"before", len(questions), "after", len(kept), "removed", removed)
	return kept
}

// DocumentText reads the pre-processed text of a reference document from
// the references root directory.
func DocumentText(root string, ref model.Reference) (string, error) {
	data, err := os.ReadFile(ref.TextPath(root))
	if err != nil {
		return "", fmt.Errorf("read reference document: %w", err)
	}
	return string(data), nil
}
