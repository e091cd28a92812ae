package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zkbaum/handai/internal/analysis"
	"github.com/zkbaum/handai/internal/chart"
	"github.com/zkbaum/handai/internal/config"
	"github.com/zkbaum/handai/internal/model"
)

func chartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the accuracy comparison bar chart with confidence intervals",
		RunE:  runChart,
	}
	f := cmd.Flags()
	f.StringSlice("results", nil, "Result CSVs as experiment=path pairs (repeatable, required)")
	f.Bool("human", true, "Include the human control arm from the answer tables")
	f.String("title", "Performance of humans vs ChatGPT", "Chart title")
	f.StringP("output", "o", "accuracy.png", "Output image path")
	_ = cmd.MarkFlagRequired("results")
	return cmd
}

func runChart(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	arms, err := parseResultPairs(v.GetStringSlice("results"))
	if err != nil {
		return err
	}

	var labels []string
	var samplesPerArm []map[model.ContentType][]float64

	if v.GetBool("human") {
		cfg, err := config.Load(v.GetString("manifest"))
		if err != nil {
			return err
		}
		key, err := analysis.ReadKey(cfg.Paths.AnswerKey)
		if err != nil {
			return err
		}
		humanSamples, err := analysis.HumanSamples(cfg.Paths.HumanAnswers, key)
		if err != nil {
			return err
		}
		labels = append(labels, string(model.ExperimentHuman))
		samplesPerArm = append(samplesPerArm, humanSamples)
	}

	for _, arm := range arms {
		labels = append(labels, string(arm.Experiment))
		samplesPerArm = append(samplesPerArm, analysis.Samples(arm.Rows))
	}

	series := []chart.Bars{
		barsFor("Text", model.ContentText, samplesPerArm),
		barsFor("Image", model.ContentImage, samplesPerArm),
	}
	output := v.GetString("output")
	if err := chart.Render(v.GetString("title"), labels, series, output); err != nil {
		return err
	}
	fmt.Println("wrote chart to", output)
	return nil
}

// barsFor assembles one question-type series. Arms with no samples of the
// type (image-blind models, file search) get a zero bar.
func barsFor(label string, qt model.ContentType, samplesPerArm []map[model.ContentType][]float64) chart.Bars {
	bars := chart.Bars{Label: label}
	for _, samples := range samplesPerArm {
		group := samples[qt]
		if len(group) == 0 {
			bars.Values = append(bars.Values, 0)
			bars.CIs = append(bars.CIs, 0)
			continue
		}
		bars.Values = append(bars.Values, analysis.Accuracy(group))
		ci, _ := analysis.ConfidenceInterval(group)
		bars.CIs = append(bars.CIs, ci)
	}
	return bars
}
