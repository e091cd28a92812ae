// Package chart renders the accuracy comparison figure: grouped bars per
// experiment arm, stratified by question type, with 95% confidence interval
// whiskers.
package chart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Bars is one question-type series across all experiment arms. Values are
// accuracies in [0, 1]; CIs are the matching half-widths. A zero value
// renders as an absent bar, used for arms that do not support the type.
type Bars struct {
	Label  string
	Values []float64
	CIs    []float64
}

// Render draws the grouped bar chart and saves it to path. The image
// format follows the file extension.
func Render(title string, labels []string, series []Bars, path string) error {
	if len(series) == 0 {
		return fmt.Errorf("no series to plot")
	}
	for _, s := range series {
		if len(s.Values) != len(labels) || len(s.CIs) != len(labels) {
			return fmt.Errorf("series %q: %d values and %d intervals for %d groups",
				s.Label, len(s.Values), len(s.CIs), len(labels))
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Group"
	p.Y.Label.Text = "Accuracy"
	p.Y.Min = 0
	p.Y.Max = 1
	p.NominalX(labels...)
	p.Legend.Top = true

	width := vg.Points(18)
	for i, s := range series {
		bars, err := plotter.NewBarChart(plotter.Values(s.Values), width)
		if err != nil {
			return fmt.Errorf("bar chart for %q: %w", s.Label, err)
		}
		offset := width*vg.Length(i) - width*vg.Length(len(series)-1)/2
		bars.Offset = offset
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.Legend.Add(s.Label, bars)

		p.Add(&intervalBars{
			values: s.Values,
			half:   s.CIs,
			cap:    width / 2,
			offset: offset,
		})
	}

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

// intervalBars draws a vertical whisker with end caps at each bar center.
// It shares the bar chart's canvas offset so the whiskers stay centered on
// their bars regardless of group count.
type intervalBars struct {
	values []float64
	half   []float64
	cap    vg.Length
	offset vg.Length
}

func (b *intervalBars) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	sty := draw.LineStyle{
		Color: color.Gray{Y: 64},
		Width: vg.Points(1),
	}
	for i, v := range b.values {
		if b.half[i] == 0 {
			continue
		}
		x := trX(float64(i)) + b.offset
		lo := trY(v - b.half[i])
		hi := trY(v + b.half[i])
		c.StrokeLine2(sty, x, lo, x, hi)
		c.StrokeLine2(sty, x-b.cap/2, lo, x+b.cap/2, lo)
		c.StrokeLine2(sty, x-b.cap/2, hi, x+b.cap/2, hi)
	}
}
