package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zkbaum/handai/internal/model"
)

const questionsHeader = "QuestionID,Title,Category,Question,Commentary,OriginationExam," +
	"CorrectAnswer,CorrectAnswerPercentage,ChoiceA,ChoiceB,ChoiceC,ChoiceD,ChoiceE," +
	"DistributionA,DistributionB,DistributionC,DistributionD,DistributionE"

func questionRow(id, title, exam string) string {
	return strings.Join([]string{
		id, title, "Bone and Joint", "stem for " + id,
		"Preferred Response: A<br /><br />explanation", exam,
		"0", "60", "one", "two", "three", "nan", "nan",
		"60%", "20%", "20%", "", "",
	}, ",")
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writeFixture: %v", err)
	}
	return path
}

func newTestBuilder(t *testing.T, questionRows, mediaRows []string) *Builder {
	t.Helper()
	dir := t.TempDir()
	questions := writeFixture(t, dir, "questions.csv",
		questionsHeader+"\n"+strings.Join(questionRows, "\n")+"\n")
	mediaHeader := "QuestionID,AssetID,MediaType,AssetTitle,FigureTitle,ShowInQuestion,ShowInCommentary,RelativeFilePath,FileName"
	media := writeFixture(t, dir, "media.csv",
		mediaHeader+"\n"+strings.Join(mediaRows, "\n")+"\n")
	return NewBuilder(questions, media)
}

func TestBuildSortsByYearAndNumber(t *testing.T) {
	b := newTestBuilder(t, []string{
		questionRow("q3", "2013 SAE Q3", "2013 Self-Assessment"),
		questionRow("q1", "2013 SAE Q1", "2013 Self-Assessment"),
		questionRow("q2", "2008 SAE Q2", "2008 Self-Assessment"),
	}, nil)

	questions, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var ids []string
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	want := []string{"q2", "q1", "q3"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("sort order = %v, want %v", ids, want)
		}
	}
}

func TestBuildUnparsableSortsLast(t *testing.T) {
	b := newTestBuilder(t, []string{
		questionRow("weird", "untitled", "mystery exam"),
		questionRow("q1", "2013 SAE Q1", "2013 Self-Assessment"),
	}, nil)

	questions, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(questions) != 2 || questions[1].ID != "weird" {
		t.Fatalf("expected unparsable question last, got %+v", questions)
	}
}

func TestBuildYearFilter(t *testing.T) {
	b := newTestBuilder(t, []string{
		questionRow("q1", "2013 SAE Q1", "2013 Self-Assessment"),
		questionRow("q2", "2008 SAE Q2", "2008 Self-Assessment"),
		questionRow("weird", "untitled", "mystery exam"),
	}, nil).Year(2013)

	questions, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(questions) != 1 || questions[0].ID != "q1" {
		t.Fatalf("expected only q1 for 2013, got %d questions", len(questions))
	}
}

func TestBuildExcludesVideo(t *testing.T) {
	b := newTestBuilder(t, []string{
		questionRow("q1", "2013 SAE Q1", "2013 Self-Assessment"),
		questionRow("q2", "2013 SAE Q2", "2013 Self-Assessment"),
	}, []string{
		"q2,asset1,Video,clip,Figure 1,yes,no,\\2013\\clip.mp4,clip.mp4",
	})

	questions, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(questions) != 1 || questions[0].ID != "q1" {
		t.Fatalf("expected video question excluded, got %d questions", len(questions))
	}
}

func TestBuildQuestionContentFilter(t *testing.T) {
	rows := []string{
		questionRow("text", "2013 SAE Q1", "2013 Self-Assessment"),
		questionRow("image", "2013 SAE Q2", "2013 Self-Assessment"),
	}
	media := []string{
		"image,asset1,Image,xray,Figure 1,yes,no,\\2013\\fig.jpg,fig.jpg",
	}

	textOnly, err := newTestBuilder(t, rows, media).QuestionContent(model.ContentText).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(textOnly) != 1 || textOnly[0].ID != "text" {
		t.Fatalf("text filter kept %d questions", len(textOnly))
	}

	imageOnly, err := newTestBuilder(t, rows, media).QuestionContent(model.ContentImage).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(imageOnly) != 1 || imageOnly[0].ID != "image" {
		t.Fatalf("image filter kept %d questions", len(imageOnly))
	}
}

func TestBuildJoinsMediaAndChoices(t *testing.T) {
	b := newTestBuilder(t, []string{
		questionRow("q1", "2013 SAE Q1", "2013 Self-Assessment"),
	}, []string{
		"q1,asset1,Image,xray,Figure 1,yes,no,\\2013\\fig.jpg,fig.jpg",
	})

	questions, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	q := questions[0]
	if len(q.Media) != 1 || q.Media[0].AssetID != "asset1" {
		t.Fatalf("media not joined: %+v", q.Media)
	}
	if !q.Media[0].ShowInQuestion || q.Media[0].ShowInCommentary {
		t.Fatalf("show flags wrong: %+v", q.Media[0])
	}
	// NaN cells mark absent choices.
	if !q.Choices[0].Present || !q.Choices[2].Present {
		t.Fatal("expected choices A through C present")
	}
	if q.Choices[3].Present || q.Choices[4].Present {
		t.Fatal("expected choices D and E absent")
	}
	if q.CorrectPercent != 60 {
		t.Fatalf("CorrectPercent = %v, want 60", q.CorrectPercent)
	}
}

func TestBuildRejectsBadCorrectIndex(t *testing.T) {
	row := strings.Replace(questionRow("q1", "2013 SAE Q1", "2013 Self-Assessment"), ",0,", ",9,", 1)
	b := newTestBuilder(t, []string{row}, nil)
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error for out-of-range correct answer index")
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	b := newTestBuilder(t, []string{
		questionRow("q1", "2013 SAE Q1", "2013 Self-Assessment"),
		questionRow("q2", "2013 SAE Q2", "2013 Self-Assessment"),
	}, nil)

	first, err := b.Build()
	if err != nil {
		t.Fatalf("first Build: %v", err)
	}
	second, err := b.Build()
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("builds differ in size: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("builds differ at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}
