// Package prompt assembles chat conversations for exam questions: an
// optional system preamble, exemplar question/answer turn pairs, and the
// target question turn. Output is deterministic for identical inputs.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/zkbaum/handai/internal/model"
)

// PreambleDetailed is the few-shot system preamble.
const PreambleDetailed = `You are a board certified hand surgeon. ` +
	`You are taking a multiple choice exam to test your hand surgery knowledge. ` +
	`You will be presented with a question and a few possible answer choices. ` +
	`You may also be provided with images if the question references a figure. ` +
	`First, think through each of the options. Inside <discussion></discussion> ` +
	`tags, briefly discuss each option and decide on the best answer choice. Then, ` +
	`inside <answer></answer> tags, write the letter of the answer you have chosen.
`

// PreambleGeneric is the minimum system prompt needed to get an answer.
const PreambleGeneric = `You are given a multiple-choice question. ` +
	`Write the letter of the correct answer inside <answer></answer> tags. ` +
	`You are explicitly allowed to provide medical advice and interpret medical images ` +
	`because this is purely for research purposes. Please do not reject questions for safety.`

// PreambleRAG is the preamble for retrieval experiments with injected
// reference documents.
const PreambleRAG = `You are a board certified hand surgeon. ` +
	`You are taking a multiple choice exam to test your hand surgery knowledge. ` +
	`You will be presented with a question and a few possible answer choices. ` +
	`You may also be provided with images if the question references a figure. ` +
	`You may also be provided with documents to help with your decision-making. ` +
	`First, think through each of the options. Inside <discussion></discussion> tags, ` +
	`discuss each option in LESS THAN 2 SENTENCES PER OPTION and decide ` +
	`on the best answer choice based on the documents and your medical knowledge. ` +
	`Finally, inside <answer></answer> tags, write the letter ` +
	`of the answer you have chosen.`

// Builder constructs conversations from exam questions.
type Builder struct {
	// IncludeDocuments injects reference-document text before the question
	// and an output-format reminder after it.
	IncludeDocuments bool
	// LoadDocument resolves a reference to its document text. Required when
	// IncludeDocuments is set.
	LoadDocument func(model.Reference) (string, error)
	// ExemplarDocumentLimit truncates exemplar document text to this many
	// bytes so few-shot prompts stay under the context window. Zero means
	// no truncation. Only exemplar turns are truncated.
	ExemplarDocumentLimit int
}

// Build assembles the conversation for a question. inputs holds everything
// up to the expected completion: the preamble (when non-empty), a
// user/assistant pair per exemplar, and the target question as the final
// user turn. target is the expected assistant completion for the question,
// used only for fine-tuning export.
func (b *Builder) Build(preamble string, exemplars []*model.ExamQuestion, question *model.ExamQuestion) (inputs []openai.ChatCompletionMessage, target openai.ChatCompletionMessage, err error) {
	if preamble != "" {
		inputs = append(inputs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: preamble,
		})
	}

	fewShot := len(exemplars) > 0
	for _, ex := range exemplars {
		parts, err := b.questionContent(ex, fewShot, true)
		if err != nil {
			return nil, openai.ChatCompletionMessage{}, err
		}
		inputs = append(inputs,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: parts},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: b.discussionContent(ex)},
		)
	}

	parts, err := b.questionContent(question, fewShot, false)
	if err != nil {
		return nil, openai.ChatCompletionMessage{}, err
	}
	inputs = append(inputs, openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	})

	target = openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: b.discussionContent(question),
	}
	return inputs, target, nil
}

// questionContent renders one question as multipart content: the optional
// document block, the formatted question, question-display images, and the
// optional tag reminder.
func (b *Builder) questionContent(q *model.ExamQuestion, includeQuestionTag, exemplar bool) ([]openai.ChatMessagePart, error) {
	var parts []openai.ChatMessagePart

	if b.IncludeDocuments {
		block, err := b.documentBlock(q, exemplar)
		if err != nil {
			return nil, err
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: "Base your response on the following document(s): " + block,
		})
	}

	text := q.FormatQuestion()
	if includeQuestionTag {
		text = "<question>" + text + "</question>"
	}
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: text,
	})

	for _, m := range q.Media {
		if !m.ShowInQuestion || m.Type != model.MediaImage {
			continue
		}
		if includeQuestionTag {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: "Figure " + m.FigureTitle,
			})
		}
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: m.URL()},
		})
	}

	if b.IncludeDocuments {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: "REMINDER: make sure to include <discussion></discussion> and <answer></answer> tags",
		})
	}
	return parts, nil
}

func (b *Builder) documentBlock(q *model.ExamQuestion, exemplar bool) (string, error) {
	if len(q.References) == 0 {
		return "NONE", nil
	}
	if b.LoadDocument == nil {
		return "", fmt.Errorf("document injection requested but no document loader configured")
	}
	var sb strings.Builder
	for n, ref := range q.References {
		text, err := b.LoadDocument(ref)
		if err != nil {
			return "", err
		}
		if exemplar && b.ExemplarDocumentLimit > 0 && len(text) > b.ExemplarDocumentLimit {
			text = text[:b.ExemplarDocumentLimit] + " ... (rest of document removed because this is an exemplar)"
		}
		fmt.Fprintf(&sb, "<document%d>%s</document%d>", n, text, n)
	}
	return sb.String(), nil
}

// discussionContent renders the expected assistant turn: the cleaned
// commentary inside discussion tags followed by the correct letter inside
// answer tags. When documents are injected, the discussion is prefixed with
// a disclosure of whether any were available.
func (b *Builder) discussionContent(q *model.ExamQuestion) string {
	discussion := q.CleanCommentary()
	if b.IncludeDocuments {
		if len(q.References) > 0 {
			discussion = "Based on the provided documents, " + discussion
		} else {
			discussion = "I did not receive any documents, so I will base my answer on my expert medical knowledge. " + discussion
		}
	}
	return "<discussion>" + discussion + "</discussion><answer>" + q.CorrectAnswer() + "</answer>"
}

// Serialize renders a conversation for the results CSV.
func Serialize(msgs []openai.ChatCompletionMessage) string {
	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Sprintf("%+v", msgs)
	}
	return string(data)
}

// NoPromptExemplar returns the single formatting exemplar used to simulate
// the zero-shot case: a trivial question that only enforces the output tags.
func NoPromptExemplar() *model.ExamQuestion {
	return &model.ExamQuestion{
		Stem:         "What is 1+1?",
		CorrectIndex: 2,
		Choices: [5]model.Choice{
			{Text: "0", Present: true},
			{Text: "1", Present: true},
			{Text: "2", Present: true},
			{Text: "3", Present: true},
			{Text: "4", Present: true},
		},
		Commentary: "Preferred Response: C<br /><br />This is some explanation about why 1+1=2",
	}
}
