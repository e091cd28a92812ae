package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/zkbaum/handai/internal/model"
)

// Builder loads and filters the exam question set. Each Build call reads
// the source tables fresh; nothing is cached across calls.
type Builder struct {
	questionsPath     string
	mediaPath         string
	year              int
	questionContent   model.ContentType
	commentaryContent model.ContentType
}

// NewBuilder creates a builder over the given questions and media tables.
func NewBuilder(questionsPath, mediaPath string) *Builder {
	return &Builder{questionsPath: questionsPath, mediaPath: mediaPath}
}

// Year restricts the set to questions originating from the given exam year.
func (b *Builder) Year(year int) *Builder {
	b.year = year
	return b
}

// QuestionContent restricts the set by question-body content type.
func (b *Builder) QuestionContent(ct model.ContentType) *Builder {
	b.questionContent = ct
	return b
}

// CommentaryContent restricts the set by commentary content type.
func (b *Builder) CommentaryContent(ct model.ContentType) *Builder {
	b.commentaryContent = ct
	return b
}

// Build reads both tables, joins media onto questions, applies the
// configured filters, and returns the set sorted by (year, question number)
// ascending. Questions with video media are always excluded since video is
// unsupported downstream. Questions whose year or number cannot be parsed
// sort after all parsed questions, preserving input order among themselves.
func (b *Builder) Build() ([]*model.ExamQuestion, error) {
	mediaByQuestion, err := readMedia(b.mediaPath)
	if err != nil {
		return nil, err
	}
	questions, err := readQuestions(b.questionsPath, mediaByQuestion)
	if err != nil {
		return nil, err
	}

	kept := questions[:0]
	for _, q := range questions {
		if q.HasVideo() {
			continue
		}
		if b.year != 0 {
			if y, ok := q.Year(); !ok || y != b.year {
				continue
			}
		}
		switch b.questionContent {
		case model.ContentText:
			if q.QuestionHasImages() {
				continue
			}
		case model.ContentImage:
			if !q.QuestionHasImages() {
				continue
			}
		}
		switch b.commentaryContent {
		case model.ContentText:
			if q.CommentaryHasImages() {
				continue
			}
		case model.ContentImage:
			if !q.CommentaryHasImages() {
				continue
			}
		}
		kept = append(kept, q)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return sortKey(kept[i]) < sortKey(kept[j])
	})
	return kept, nil
}

// sortKey orders by year then question number; unparsable components sort
// after every parsable value.
func sortKey(q *model.ExamQuestion) float64 {
	year, ok := q.Year()
	y := float64(year)
	if !ok {
		y = math.MaxInt32
	}
	num, ok := q.Number()
	n := float64(num)
	if !ok {
		n = math.MaxInt32
	}
	return y*1e6 + n
}

func readQuestions(path string, mediaByQuestion map[string][]model.ExamMedia) ([]*model.ExamQuestion, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require("QuestionID", "Title", "Category", "Question", "Commentary",
		"OriginationExam", "CorrectAnswer"); err != nil {
		return nil, err
	}

	var questions []*model.ExamQuestion
	for _, row := range t.rows {
		id := t.get(row, "QuestionID")

		correct, err := parseInt(t.get(row, "CorrectAnswer"))
		if err != nil || correct < 0 || correct >= len(model.ChoiceLetters) {
			return nil, fmt.Errorf("%s: question %s: bad correct answer index %q", path, id, t.get(row, "CorrectAnswer"))
		}

		category, ok := model.ParseCategory(t.get(row, "Category"))
		if !ok {
			slog.Warn("unknown category, using Unspecified", "question_id", id, "category", t.get(row, "Category"))
			category = model.CategoryUnspecified
		}

		q := &model.ExamQuestion{
			ID:              id,
			Title:           t.get(row, "Title"),
			Category:        category,
			Stem:            t.get(row, "Question"),
			Commentary:      t.get(row, "Commentary"),
			OriginationExam: t.get(row, "OriginationExam"),
			CorrectIndex:    correct,
			CorrectPercent:  parseFloat(t.get(row, "CorrectAnswerPercentage")),
			Distribution:    make(map[string]string, len(model.ChoiceLetters)),
			Media:           mediaByQuestion[id],
		}
		for i, letter := range model.ChoiceLetters {
			cell := t.get(row, "Choice"+letter)
			if !isAbsent(cell) {
				q.Choices[i] = model.Choice{Text: cell, Present: true}
			}
			q.Distribution[letter] = t.get(row, "Distribution"+letter)
		}

		// Surface formatting problems early; unparsable values degrade to
		// a defined sort placement rather than failing the load.
		if _, ok := q.Year(); !ok {
			slog.Warn("no year found in origination exam", "question_id", id, "origination_exam", q.OriginationExam)
		}
		if _, ok := q.Number(); !ok {
			slog.Warn("no question number found in title", "question_id", id, "title", q.Title)
		}

		questions = append(questions, q)
	}
	return questions, nil
}

func readMedia(path string) (map[string][]model.ExamMedia, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require("QuestionID", "AssetID", "MediaType"); err != nil {
		return nil, err
	}

	byQuestion := make(map[string][]model.ExamMedia)
	seen := make(map[string]bool)
	for _, row := range t.rows {
		m := model.ExamMedia{
			QuestionID:       t.get(row, "QuestionID"),
			AssetID:          t.get(row, "AssetID"),
			Title:            t.get(row, "AssetTitle"),
			Type:             model.MediaType(t.get(row, "MediaType")),
			FigureTitle:      t.get(row, "FigureTitle"),
			ShowInQuestion:   parseFlag(t.get(row, "ShowInQuestion")),
			ShowInCommentary: parseFlag(t.get(row, "ShowInCommentary")),
			RelativePath:     t.get(row, "RelativeFilePath"),
			FileName:         t.get(row, "FileName"),
		}
		if seen[m.AssetID] {
			slog.Warn("duplicate media asset id", "asset_id", m.AssetID, "question_id", m.QuestionID)
		}
		seen[m.AssetID] = true
		byQuestion[m.QuestionID] = append(byQuestion[m.QuestionID], m)
	}
	return byQuestion, nil
}
