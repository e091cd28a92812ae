package model

import "time"

// Citation is one document citation embedded in a model response by the
// file-search tool. Marker is the opaque token as it appears in the text.
type Citation struct {
	FileID string
	Quote  string
	Marker string
}

// Response is one model attempt at a question.
type Response struct {
	// Raw holds the unmodified response text (or a serialized dump for
	// non-text APIs). Empty when the endpoint never answered.
	Raw        string
	Discussion string
	Answer     string
	Citations  []Citation
}

// PromptNotApplicable is recorded in place of a serialized prompt for APIs
// that do not take a plain message list.
const PromptNotApplicable = "N/A - assistants"

// InferenceResult is one evaluated question's outcome for one experiment
// run, holding all ensembled attempts.
type InferenceResult struct {
	Question     *ExamQuestion
	Prompt       string
	Model        ModelID
	QuestionType ContentType
	Responses    []Response
}

// Run is one recorded inference run in the ledger.
type Run struct {
	ID         string
	Experiment Experiment
	Year       int
	Model      ModelID
	Ensembling int
	Questions  int
	Failures   int
	OutputPath string
	StartedAt  time.Time
	FinishedAt *time.Time
}
