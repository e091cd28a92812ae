// Package analysis aggregates written result CSVs: per-question-type
// accuracy, ensemble agreement verdicts, confidence intervals, and pairwise
// significance tests across experiment arms. Everything here is a pure
// function of its inputs and fully rerunnable.
package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zkbaum/handai/internal/model"
)

// Majority returns the most frequent answer across ensembled attempts, or
// the tie sentinel when no single mode exists. An empty attempt list yields
// an empty string.
func Majority(attempts []string) string {
	if len(attempts) == 0 {
		return ""
	}
	counts := make(map[string]int, len(attempts))
	bestCount := 0
	for _, a := range attempts {
		counts[a]++
		if counts[a] > bestCount {
			bestCount = counts[a]
		}
	}

	best, modes := "", 0
	for _, a := range attempts {
		if counts[a] != bestCount {
			continue
		}
		if modes == 0 {
			best = a
		}
		modes++
		// Stop counting each mode after its first occurrence.
		counts[a] = -1
	}
	if modes > 1 {
		return model.VerdictTie
	}
	return best
}

// Unanimity returns the shared answer when every attempt agrees, and the
// not-unanimous sentinel otherwise.
func Unanimity(attempts []string) string {
	if len(attempts) == 0 {
		return model.VerdictNotUnanimous
	}
	for _, a := range attempts[1:] {
		if a != attempts[0] {
			return model.VerdictNotUnanimous
		}
	}
	return attempts[0]
}

// ConfidenceInterval returns the 95% half-width (1.96 x standard error of
// the mean) for a sample of 0/1 correctness values. It requires at least
// two samples; ok is false otherwise and no interval is reported.
func ConfidenceInterval(samples []float64) (ci float64, ok bool) {
	if len(samples) < 2 {
		return 0, false
	}
	sem := stat.StdDev(samples, nil) / math.Sqrt(float64(len(samples)))
	return 1.96 * sem, true
}

// Accuracy is the mean of 0/1 correctness samples.
func Accuracy(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return stat.Mean(samples, nil)
}

// OneWayANOVA computes the F statistic and p-value for two or more groups.
// Every group must hold at least two samples.
func OneWayANOVA(groups ...[]float64) (f, p float64, err error) {
	if len(groups) < 2 {
		return 0, 0, fmt.Errorf("anova needs at least 2 groups, got %d", len(groups))
	}
	total := 0
	var grandSum float64
	for i, g := range groups {
		if len(g) < 2 {
			return 0, 0, fmt.Errorf("anova group %d has %d samples, need at least 2", i, len(g))
		}
		total += len(g)
		for _, x := range g {
			grandSum += x
		}
	}
	grandMean := grandSum / float64(total)

	var ssBetween, ssWithin float64
	for _, g := range groups {
		mean := stat.Mean(g, nil)
		ssBetween += float64(len(g)) * (mean - grandMean) * (mean - grandMean)
		for _, x := range g {
			ssWithin += (x - mean) * (x - mean)
		}
	}

	dfBetween := float64(len(groups) - 1)
	dfWithin := float64(total - len(groups))
	if ssWithin == 0 {
		// Identical values within every group: either the groups are
		// indistinguishable or trivially separated.
		if ssBetween == 0 {
			return 0, 1, nil
		}
		return math.Inf(1), 0, nil
	}

	f = (ssBetween / dfBetween) / (ssWithin / dfWithin)
	dist := distuv.F{D1: dfBetween, D2: dfWithin}
	return f, dist.Survival(f), nil
}

// SignificanceThreshold is the p-value below which a pairwise comparison is
// reported as significant.
const SignificanceThreshold = 0.05

// Verdict labels a p-value against the significance threshold.
func Verdict(p float64) string {
	if p < SignificanceThreshold {
		return "SIGNIFICANT"
	}
	return "NOT_SIGNIFICANT"
}
