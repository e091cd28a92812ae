package prompt

import (
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/zkbaum/handai/internal/model"
)

func targetQuestion() *model.ExamQuestion {
	return &model.ExamQuestion{
		ID:           "q1",
		Stem:         "Which tendon is most commonly ruptured?",
		CorrectIndex: 0,
		Choices: [5]model.Choice{
			{Text: "EPL", Present: true},
			{Text: "FPL", Present: true},
			{Text: "ECU", Present: true},
		},
		Commentary: "Preferred Response: A<br /><br />EPL rupture follows distal radius fracture.",
	}
}

func partText(msg openai.ChatCompletionMessage) string {
	var sb strings.Builder
	for _, part := range msg.MultiContent {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func TestBuildZeroExemplars(t *testing.T) {
	b := &Builder{}
	inputs, target, err := b.Build(PreambleGeneric, nil, targetQuestion())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("got %d messages, want system + user", len(inputs))
	}
	if inputs[0].Role != openai.ChatMessageRoleSystem || inputs[0].Content != PreambleGeneric {
		t.Fatalf("first message is not the preamble: %+v", inputs[0])
	}
	if inputs[1].Role != openai.ChatMessageRoleUser {
		t.Fatalf("second message role = %q", inputs[1].Role)
	}
	// Without exemplars the question is not wrapped in tags.
	if strings.Contains(partText(inputs[1]), "<question>") {
		t.Fatal("zero-shot question should not carry question tags")
	}
	if !strings.Contains(target.Content, "<answer>A</answer>") {
		t.Fatalf("target completion missing answer tag: %q", target.Content)
	}
}

func TestBuildFewShotStructure(t *testing.T) {
	b := &Builder{}
	exemplar := targetQuestion()
	exemplar.ID = "ex1"
	inputs, _, err := b.Build(PreambleDetailed, []*model.ExamQuestion{exemplar}, targetQuestion())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// system, exemplar user, exemplar assistant, target user.
	if len(inputs) != 4 {
		t.Fatalf("got %d messages, want 4", len(inputs))
	}
	if inputs[1].Role != openai.ChatMessageRoleUser || inputs[2].Role != openai.ChatMessageRoleAssistant {
		t.Fatalf("exemplar pair roles wrong: %q, %q", inputs[1].Role, inputs[2].Role)
	}
	if !strings.Contains(partText(inputs[1]), "<question>") {
		t.Fatal("few-shot exemplar should be wrapped in question tags")
	}
	if !strings.Contains(partText(inputs[3]), "<question>") {
		t.Fatal("few-shot target should be wrapped in question tags")
	}
	assistant := inputs[2].Content
	if !strings.Contains(assistant, "<discussion>") || !strings.Contains(assistant, "<answer>A</answer>") {
		t.Fatalf("exemplar completion missing tags: %q", assistant)
	}
	if strings.Contains(assistant, "Preferred Response") {
		t.Fatalf("exemplar completion should use cleaned commentary: %q", assistant)
	}
}

func TestBuildIncludesQuestionImages(t *testing.T) {
	q := targetQuestion()
	q.Media = []model.ExamMedia{
		{Type: model.MediaImage, ShowInQuestion: true, FigureTitle: "1", FileName: "fig.jpg", RelativePath: `\2013\fig.jpg`},
		{Type: model.MediaImage, ShowInCommentary: true, FileName: "answer.jpg", RelativePath: `\2013\answer.jpg`},
	}
	b := &Builder{}
	inputs, _, err := b.Build("", nil, q)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	user := inputs[len(inputs)-1]
	images := 0
	for _, part := range user.MultiContent {
		if part.Type == openai.ChatMessagePartTypeImageURL {
			images++
		}
	}
	// Commentary-only images never reach the prompt.
	if images != 1 {
		t.Fatalf("got %d image parts, want 1", images)
	}
}

func TestBuildDocumentInjection(t *testing.T) {
	ref := model.Reference{QuestionNumber: 4, ReferenceNumber: 1, Uploaded: true, Year: 2013}
	withDoc := targetQuestion()
	withDoc.References = []model.Reference{ref}

	b := &Builder{
		IncludeDocuments: true,
		LoadDocument: func(model.Reference) (string, error) {
			return "the reference text", nil
		},
	}
	inputs, _, err := b.Build(PreambleRAG, nil, withDoc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	text := partText(inputs[len(inputs)-1])
	if !strings.Contains(text, "<document0>the reference text</document0>") {
		t.Fatalf("missing document block in %q", text)
	}
	if !strings.Contains(text, "REMINDER") {
		t.Fatal("missing format reminder")
	}

	withoutDoc := targetQuestion()
	inputs, target, err := b.Build(PreambleRAG, nil, withoutDoc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	text = partText(inputs[len(inputs)-1])
	if !strings.Contains(text, "NONE") {
		t.Fatalf("questions without references should get NONE, got %q", text)
	}
	if !strings.Contains(target.Content, "I did not receive any documents") {
		t.Fatalf("missing no-document disclosure in %q", target.Content)
	}
}

func TestBuildTruncatesExemplarDocuments(t *testing.T) {
	ref := model.Reference{QuestionNumber: 4, ReferenceNumber: 1, Uploaded: true}
	exemplar := targetQuestion()
	exemplar.References = []model.Reference{ref}
	target := targetQuestion()
	target.References = []model.Reference{ref}

	long := strings.Repeat("x", 100)
	b := &Builder{
		IncludeDocuments:      true,
		ExemplarDocumentLimit: 10,
		LoadDocument:          func(model.Reference) (string, error) { return long, nil },
	}
	inputs, _, err := b.Build(PreambleRAG, []*model.ExamQuestion{exemplar}, target)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	exemplarText := partText(inputs[1])
	if !strings.Contains(exemplarText, "rest of document removed") {
		t.Fatal("exemplar document was not truncated")
	}
	targetText := partText(inputs[3])
	if !strings.Contains(targetText, long) {
		t.Fatal("target document must never be truncated")
	}
}

func TestBuildDeterministic(t *testing.T) {
	b := &Builder{}
	exemplar := targetQuestion()
	first, _, err := b.Build(PreambleDetailed, []*model.ExamQuestion{exemplar}, targetQuestion())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, _, err := b.Build(PreambleDetailed, []*model.ExamQuestion{exemplar}, targetQuestion())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if Serialize(first) != Serialize(second) {
		t.Fatal("identical inputs produced different conversations")
	}
}

func TestNoPromptExemplar(t *testing.T) {
	q := NoPromptExemplar()
	if q.CorrectAnswer() != "C" {
		t.Fatalf("CorrectAnswer() = %q, want C", q.CorrectAnswer())
	}
	if !strings.Contains(q.CleanCommentary(), "1+1=2") {
		t.Fatalf("CleanCommentary() = %q", q.CleanCommentary())
	}
}
