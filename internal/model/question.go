package model

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// ChoiceLetters are the possible answer letters in order.
var ChoiceLetters = []string{"A", "B", "C", "D", "E"}

var (
	yearRegex        = regexp.MustCompile(`\b\d{4}\b`)
	questionNumRegex = regexp.MustCompile(`(?i)Q(\d+)`)
	// The commentary opens with a "Preferred Response: X" marker followed by
	// the explanation. The marker is occasionally misspelled in the source
	// data, hence the tolerant "Prefer+ed".
	preferredRespRegex = regexp.MustCompile(`(?is)Prefer+ed Response: ?[A-Z](?:<br /><br />|\s*)(.*)`)
)

// Choice is one labeled answer option. Absent options (the source data's
// NaN cells) have Present == false.
type Choice struct {
	Text    string
	Present bool
}

// ExamQuestion is one multiple-choice exam item. It is constructed once by
// the dataset builder, with media and references joined in, and treated as
// immutable afterwards.
type ExamQuestion struct {
	ID              string
	Title           string
	Category        Category
	Stem            string
	Commentary      string
	OriginationExam string
	CorrectIndex    int
	Choices         [5]Choice
	CorrectPercent  float64
	// Distribution holds the human answer distribution per choice letter,
	// rendered as source strings (e.g. "12%"). The correct letter carries
	// the correct-answer percentage.
	Distribution map[string]string
	Media        []ExamMedia
	References   []Reference
}

// Year extracts the four-digit exam year from the origination exam label.
func (q *ExamQuestion) Year() (int, bool) {
	m := yearRegex.FindString(q.OriginationExam)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return y, true
}

// Number extracts the sequential question number encoded in the title.
func (q *ExamQuestion) Number() (int, bool) {
	m := questionNumRegex.FindStringSubmatch(q.Title)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// CorrectAnswer returns the correct choice letter.
func (q *ExamQuestion) CorrectAnswer() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(ChoiceLetters) {
		return ""
	}
	return ChoiceLetters[q.CorrectIndex]
}

// FormatQuestion renders the stem followed by the present lettered choices,
// skipping absent ones.
func (q *ExamQuestion) FormatQuestion() string {
	var sb strings.Builder
	sb.WriteString(q.Stem)
	sb.WriteString("\n")
	for i, letter := range ChoiceLetters {
		if !q.Choices[i].Present {
			continue
		}
		sb.WriteString(letter + ". " + q.Choices[i].Text)
		if letter != "E" {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// CleanCommentary strips the "Preferred Response" marker and returns the
// explanation that follows it. If the marker is missing, the original
// commentary is returned unchanged and a warning is logged.
func (q *ExamQuestion) CleanCommentary() string {
	m := preferredRespRegex.FindStringSubmatch(stripLeadingNbsp(q.Commentary))
	if m == nil {
		slog.Warn("preferred response marker not found in commentary", "question_id", q.ID)
		return q.Commentary
	}
	return m[1]
}

// QuestionHasImages reports whether any media is displayed with the
// question body.
func (q *ExamQuestion) QuestionHasImages() bool {
	for _, m := range q.Media {
		if m.ShowInQuestion {
			return true
		}
	}
	return false
}

// CommentaryHasImages reports whether any media is displayed with the
// commentary.
func (q *ExamQuestion) CommentaryHasImages() bool {
	for _, m := range q.Media {
		if m.ShowInCommentary {
			return true
		}
	}
	return false
}

// HasVideo reports whether any attached media is a video.
func (q *ExamQuestion) HasVideo() bool {
	for _, m := range q.Media {
		if m.Type == MediaVideo {
			return true
		}
	}
	return false
}

// QuestionContentType classifies the question body.
func (q *ExamQuestion) QuestionContentType() ContentType {
	if q.QuestionHasImages() {
		return ContentImage
	}
	return ContentText
}

// HumanDistribution returns the per-letter answer distribution, with a zero
// entry for any absent choice.
func (q *ExamQuestion) HumanDistribution() map[string]string {
	dist := make(map[string]string, len(ChoiceLetters))
	for i, letter := range ChoiceLetters {
		if !q.Choices[i].Present {
			dist[letter] = "0"
			continue
		}
		dist[letter] = q.Distribution[letter]
	}
	dist[q.CorrectAnswer()] = fmt.Sprintf("%v%%", q.CorrectPercent)
	return dist
}

// The source export occasionally prefixes commentary with &nbsp; entities.
// They only ever appear at the start, so only the first 30 characters are
// cleaned to avoid touching entity-like text in the body.
func stripLeadingNbsp(s string) string {
	n := 30
	if len(s) < n {
		n = len(s)
	}
	return strings.ReplaceAll(s[:n], "&nbsp;", "") + s[n:]
}
