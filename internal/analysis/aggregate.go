package analysis

import (
	"github.com/zkbaum/handai/internal/model"
	"github.com/zkbaum/handai/internal/results"
)

// questionTypes is the fixed emission order for per-type aggregates.
var questionTypes = []model.ContentType{model.ContentText, model.ContentImage}

// TypeAverage is one row of the averaged stats table: human vs model
// accuracy for one question type within one experiment arm.
type TypeAverage struct {
	Experiment          model.Experiment
	QuestionType        model.ContentType
	HumanCorrectPercent float64
	ModelCorrectPercent float64
}

// AttemptStat is the per-attempt accuracy for one question type, used to
// inspect variance across ensembled attempts.
type AttemptStat struct {
	Experiment     model.Experiment
	QuestionType   model.ContentType
	Questions      int
	Attempt        int
	CorrectPercent float64
}

// Verdicts holds the ensemble agreement verdicts for one question.
type Verdicts struct {
	QuestionID       string
	Majority         string
	Unanimous        string
	MajorityCorrect  bool
	UnanimousCorrect bool
}

// Averages computes, per question type, the mean human correct percentage
// and the model correct percentage averaged across all ensembled attempts.
// Attempt accuracies are computed attempt-wise first and then averaged, so
// every attempt column carries equal weight.
func Averages(experiment model.Experiment, rows []results.Row) []TypeAverage {
	var out []TypeAverage
	for _, qt := range questionTypes {
		group := filterType(rows, qt)
		if len(group) == 0 {
			continue
		}
		var humanSum float64
		for _, row := range group {
			humanSum += row.HumanCorrectPercent
		}
		attempts := len(group[0].Attempts)
		var attemptSum float64
		for n := range attempts {
			attemptSum += attemptAccuracy(group, n)
		}
		out = append(out, TypeAverage{
			Experiment:          experiment,
			QuestionType:        qt,
			HumanCorrectPercent: humanSum / float64(len(group)),
			ModelCorrectPercent: 100 * attemptSum / float64(attempts),
		})
	}
	return out
}

// PerAttempt computes the accuracy of each individual attempt, sliced by
// question type.
func PerAttempt(experiment model.Experiment, rows []results.Row) []AttemptStat {
	var out []AttemptStat
	for _, qt := range questionTypes {
		group := filterType(rows, qt)
		if len(group) == 0 {
			continue
		}
		for n := range len(group[0].Attempts) {
			out = append(out, AttemptStat{
				Experiment:     experiment,
				QuestionType:   qt,
				Questions:      len(group),
				Attempt:        n,
				CorrectPercent: 100 * attemptAccuracy(group, n),
			})
		}
	}
	return out
}

// EnsembleVerdicts computes majority and unanimity verdicts per question.
// Sentinel verdicts never match an answer key letter, so they score as
// incorrect without special-casing.
func EnsembleVerdicts(rows []results.Row) []Verdicts {
	out := make([]Verdicts, 0, len(rows))
	for _, row := range rows {
		majority := Majority(row.Attempts)
		unanimous := Unanimity(row.Attempts)
		out = append(out, Verdicts{
			QuestionID:       row.QuestionID,
			Majority:         majority,
			Unanimous:        unanimous,
			MajorityCorrect:  majority == row.ActualAnswer,
			UnanimousCorrect: unanimous == row.ActualAnswer,
		})
	}
	return out
}

// Samples flattens per-attempt correctness into 0/1 samples grouped by
// question type. Every (question, attempt) pair contributes one sample.
func Samples(rows []results.Row) map[model.ContentType][]float64 {
	samples := make(map[model.ContentType][]float64)
	for _, row := range rows {
		for _, attempt := range row.Attempts {
			v := 0.0
			if attempt == row.ActualAnswer {
				v = 1.0
			}
			samples[row.QuestionType] = append(samples[row.QuestionType], v)
		}
	}
	return samples
}

func filterType(rows []results.Row, qt model.ContentType) []results.Row {
	var out []results.Row
	for _, row := range rows {
		if row.QuestionType == qt {
			out = append(out, row)
		}
	}
	return out
}

// attemptAccuracy is the fraction of questions whose nth attempt matched
// the answer key.
func attemptAccuracy(rows []results.Row, n int) float64 {
	correct := 0
	for _, row := range rows {
		if n < len(row.Attempts) && row.Attempts[n] == row.ActualAnswer {
			correct++
		}
	}
	return float64(correct) / float64(len(rows))
}
