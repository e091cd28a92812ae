package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zkbaum/handai/internal/analysis"
	"github.com/zkbaum/handai/internal/model"
	"github.com/zkbaum/handai/internal/results"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Aggregate result CSVs into average and per-attempt stats",
		RunE:  runAnalyze,
	}
	f := cmd.Flags()
	f.StringSlice("results", nil, "Result CSVs as experiment=path pairs (repeatable, required)")
	f.String("out-dir", "out/analysis", "Directory for aggregated CSVs")
	_ = cmd.MarkFlagRequired("results")
	return cmd
}

func anovaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anova",
		Short: "Pairwise significance tests between experiment arms",
		RunE:  runAnova,
	}
	f := cmd.Flags()
	f.StringSlice("results", nil, "Result CSVs as experiment=path pairs (repeatable, required)")
	f.String("out-dir", "out/analysis", "Directory for aggregated CSVs")
	_ = cmd.MarkFlagRequired("results")
	return cmd
}

// experimentResults is one arm's parsed result CSV.
type experimentResults struct {
	Experiment model.Experiment
	Rows       []results.Row
}

// parseResultPairs loads the experiment=path arguments shared by the
// aggregation commands, preserving argument order.
func parseResultPairs(pairs []string) ([]experimentResults, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no result CSVs given")
	}
	var out []experimentResults
	for _, pair := range pairs {
		name, path, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("bad results argument %q, want experiment=path", pair)
		}
		rows, err := results.Read(path)
		if err != nil {
			return nil, err
		}
		out = append(out, experimentResults{Experiment: model.Experiment(name), Rows: rows})
	}
	return out, nil
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	arms, err := parseResultPairs(v.GetStringSlice("results"))
	if err != nil {
		return err
	}
	outDir := v.GetString("out-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var averages []analysis.TypeAverage
	var perAttempt []analysis.AttemptStat
	for _, arm := range arms {
		averages = append(averages, analysis.Averages(arm.Experiment, arm.Rows)...)
		perAttempt = append(perAttempt, analysis.PerAttempt(arm.Experiment, arm.Rows)...)

		majorityCorrect, unanimousCorrect := 0, 0
		verdicts := analysis.EnsembleVerdicts(arm.Rows)
		for _, verdict := range verdicts {
			if verdict.MajorityCorrect {
				majorityCorrect++
			}
			if verdict.UnanimousCorrect {
				unanimousCorrect++
			}
		}
		slog.Info("ensemble agreement",
			"experiment", arm.Experiment,
			"questions", len(verdicts),
			"majority_correct", majorityCorrect,
			"unanimous_correct", unanimousCorrect)
	}

	averagesPath := filepath.Join(outDir, "average-stats.csv")
	if err := analysis.WriteAverages(averages, averagesPath); err != nil {
		return err
	}
	perAttemptPath := filepath.Join(outDir, "per-attempt-stats-by-question-type.csv")
	if err := analysis.WritePerAttempt(perAttempt, perAttemptPath); err != nil {
		return err
	}
	slog.Info("wrote aggregated stats", "averages", averagesPath, "per_attempt", perAttemptPath)
	return nil
}

func runAnova(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	arms, err := parseResultPairs(v.GetStringSlice("results"))
	if err != nil {
		return err
	}
	outDir := v.GetString("out-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	groups := make([]analysis.Group, 0, len(arms))
	for _, arm := range arms {
		groups = append(groups, analysis.Group{
			Experiment: arm.Experiment,
			Samples:    analysis.Samples(arm.Rows),
		})
	}

	var comparisons []analysis.Comparison
	for _, qt := range []struct {
		contentType model.ContentType
		label       string
		file        string
	}{
		{model.ContentText, "text", "text_p_values_matrix_anova.csv"},
		{model.ContentImage, "image", "image_p_values_matrix_anova.csv"},
	} {
		matrix := analysis.PValueMatrix(groups, qt.contentType)
		path := filepath.Join(outDir, qt.file)
		if err := analysis.WritePValueMatrix(groups, matrix, path); err != nil {
			return err
		}
		slog.Info("wrote p-value matrix", "question_type", qt.label, "path", path)
		comparisons = append(comparisons, analysis.Comparisons(groups, matrix, qt.label)...)
	}

	finalPath := filepath.Join(outDir, "final_anova.csv")
	if err := analysis.WriteComparisons(comparisons, finalPath); err != nil {
		return err
	}
	slog.Info("wrote combined significance table", "path", finalPath, "comparisons", len(comparisons))
	return nil
}
