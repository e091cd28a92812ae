package analysis

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/zkbaum/handai/internal/model"
)

// Group holds one experiment arm's correctness samples for pairwise
// comparison. The human arm is typically excluded because its sample count
// dwarfs the model arms.
type Group struct {
	Experiment model.Experiment
	Samples    map[model.ContentType][]float64
}

// Comparison is one row of the long-format significance table.
type Comparison struct {
	Type        string
	Experiment1 model.Experiment
	Experiment2 model.Experiment
	P           float64
	Verdict     string
}

// PValueMatrix runs pairwise one-way ANOVA between every two groups for one
// question type. Cells stay zero when either group lacks the two samples a
// comparison needs; the matrix is symmetric with a zero diagonal.
func PValueMatrix(groups []Group, qt model.ContentType) [][]float64 {
	n := len(groups)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g1, g2 := groups[i].Samples[qt], groups[j].Samples[qt]
			if len(g1) < 2 || len(g2) < 2 {
				continue
			}
			_, p, err := OneWayANOVA(g1, g2)
			if err != nil {
				continue
			}
			matrix[i][j] = p
			matrix[j][i] = p
		}
	}
	return matrix
}

// Comparisons flattens a p-value matrix into the long format, skipping the
// zero cells left by incomparable pairs.
func Comparisons(groups []Group, matrix [][]float64, typeLabel string) []Comparison {
	var out []Comparison
	for i := range matrix {
		for j := i + 1; j < len(matrix[i]); j++ {
			p := matrix[i][j]
			if p == 0 {
				continue
			}
			out = append(out, Comparison{
				Type:        typeLabel,
				Experiment1: groups[i].Experiment,
				Experiment2: groups[j].Experiment,
				P:           p,
				Verdict:     Verdict(p),
			})
		}
	}
	return out
}

// displayLabel renders a question type the way the published tables do.
func displayLabel(qt model.ContentType) string {
	switch qt {
	case model.ContentText:
		return "Text only"
	case model.ContentImage:
		return "Image based"
	}
	return string(qt)
}

// WriteAverages writes the average-stats table.
func WriteAverages(stats []TypeAverage, path string) error {
	rows := [][]string{{"question_type", "human_correct_percentage", "chatgpt_average_correct_percentage", "experiment_name"}}
	for _, s := range stats {
		rows = append(rows, []string{
			displayLabel(s.QuestionType),
			formatFloat(s.HumanCorrectPercent),
			formatFloat(s.ModelCorrectPercent),
			string(s.Experiment),
		})
	}
	return writeCSV(path, rows)
}

// WritePerAttempt writes the per-attempt stats table.
func WritePerAttempt(stats []AttemptStat, path string) error {
	rows := [][]string{{"exp_name", "question_type", "num_questions", "attempt", "average"}}
	for _, s := range stats {
		rows = append(rows, []string{
			string(s.Experiment),
			displayLabel(s.QuestionType),
			strconv.Itoa(s.Questions),
			strconv.Itoa(s.Attempt),
			formatFloat(s.CorrectPercent),
		})
	}
	return writeCSV(path, rows)
}

// WritePValueMatrix writes one experiment-by-experiment p-value grid. The
// first header cell is blank so the grid reads as a labeled matrix.
func WritePValueMatrix(groups []Group, matrix [][]float64, path string) error {
	header := []string{""}
	for _, g := range groups {
		header = append(header, string(g.Experiment))
	}
	rows := [][]string{header}
	for i, g := range groups {
		row := []string{string(g.Experiment)}
		for _, p := range matrix[i] {
			row = append(row, formatFloat(p))
		}
		rows = append(rows, row)
	}
	return writeCSV(path, rows)
}

// WriteComparisons writes the long-format significance table.
func WriteComparisons(comparisons []Comparison, path string) error {
	rows := [][]string{{"Type", "Experiment 1", "Experiment 2", "p-value", "verdict"}}
	for _, c := range comparisons {
		rows = append(rows, []string{
			c.Type,
			string(c.Experiment1),
			string(c.Experiment2),
			formatFloat(c.P),
			c.Verdict,
		})
	}
	return writeCSV(path, rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}
