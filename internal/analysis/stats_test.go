package analysis

import (
	"math"
	"testing"

	"github.com/zkbaum/handai/internal/model"
)

func TestMajority(t *testing.T) {
	tests := []struct {
		name     string
		attempts []string
		want     string
	}{
		{"clear majority", []string{"A", "A", "B"}, "A"},
		{"unanimous", []string{"C", "C", "C"}, "C"},
		{"three way tie", []string{"A", "B", "C"}, model.VerdictTie},
		{"two way tie", []string{"A", "A", "B", "B"}, model.VerdictTie},
		{"single attempt", []string{"D"}, "D"},
		{"empty", nil, ""},
		{"sentinels count like answers", []string{"PARSE_ERROR", "PARSE_ERROR", "A"}, "PARSE_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Majority(tt.attempts); got != tt.want {
				t.Fatalf("Majority(%v) = %q, want %q", tt.attempts, got, tt.want)
			}
		})
	}
}

func TestUnanimity(t *testing.T) {
	if got := Unanimity([]string{"A", "A", "A"}); got != "A" {
		t.Fatalf("Unanimity = %q, want A", got)
	}
	if got := Unanimity([]string{"A", "A", "B"}); got != model.VerdictNotUnanimous {
		t.Fatalf("Unanimity = %q, want %q", got, model.VerdictNotUnanimous)
	}
	if got := Unanimity([]string{"B"}); got != "B" {
		t.Fatalf("Unanimity = %q, want B", got)
	}
}

func TestConfidenceInterval(t *testing.T) {
	if _, ok := ConfidenceInterval([]float64{1}); ok {
		t.Fatal("single sample must not produce an interval")
	}
	if _, ok := ConfidenceInterval(nil); ok {
		t.Fatal("empty sample must not produce an interval")
	}

	// Four samples of mean 0.5: sample stddev sqrt(1/3), SEM sqrt(1/12).
	ci, ok := ConfidenceInterval([]float64{1, 0, 1, 0})
	if !ok {
		t.Fatal("expected an interval")
	}
	want := 1.96 * math.Sqrt(1.0/12.0)
	if math.Abs(ci-want) > 1e-12 {
		t.Fatalf("ci = %v, want %v", ci, want)
	}

	ci, ok = ConfidenceInterval([]float64{1, 1, 1, 1})
	if !ok || ci != 0 {
		t.Fatalf("constant sample ci = %v, want 0", ci)
	}
}

func TestAccuracy(t *testing.T) {
	if got := Accuracy([]float64{1, 0, 1, 0}); got != 0.5 {
		t.Fatalf("Accuracy = %v, want 0.5", got)
	}
	if got := Accuracy(nil); got != 0 {
		t.Fatalf("Accuracy(nil) = %v, want 0", got)
	}
}

func TestOneWayANOVAIdenticalGroups(t *testing.T) {
	g := []float64{1, 0, 1, 0, 1}
	f, p, err := OneWayANOVA(g, g)
	if err != nil {
		t.Fatalf("OneWayANOVA: %v", err)
	}
	if f != 0 {
		t.Fatalf("F = %v, want 0 for identical groups", f)
	}
	if p < 0.99 {
		t.Fatalf("p = %v, want ~1 for identical groups", p)
	}
}

func TestOneWayANOVASeparatedGroups(t *testing.T) {
	ones := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 0}
	zeros := []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	f, p, err := OneWayANOVA(ones, zeros)
	if err != nil {
		t.Fatalf("OneWayANOVA: %v", err)
	}
	if f <= 1 {
		t.Fatalf("F = %v, want > 1 for separated groups", f)
	}
	if p >= SignificanceThreshold {
		t.Fatalf("p = %v, want significant", p)
	}
}

func TestOneWayANOVADegenerateVariance(t *testing.T) {
	_, p, err := OneWayANOVA([]float64{1, 1, 1}, []float64{0, 0, 0})
	if err != nil {
		t.Fatalf("OneWayANOVA: %v", err)
	}
	if p != 0 {
		t.Fatalf("p = %v, want 0 for perfectly separated constant groups", p)
	}

	_, p, err = OneWayANOVA([]float64{1, 1}, []float64{1, 1})
	if err != nil {
		t.Fatalf("OneWayANOVA: %v", err)
	}
	if p != 1 {
		t.Fatalf("p = %v, want 1 for indistinguishable constant groups", p)
	}
}

func TestOneWayANOVAErrors(t *testing.T) {
	if _, _, err := OneWayANOVA([]float64{1, 0}); err == nil {
		t.Fatal("expected error for a single group")
	}
	if _, _, err := OneWayANOVA([]float64{1, 0}, []float64{1}); err == nil {
		t.Fatal("expected error for an undersized group")
	}
}

func TestVerdict(t *testing.T) {
	if got := Verdict(0.01); got != "SIGNIFICANT" {
		t.Fatalf("Verdict(0.01) = %q", got)
	}
	if got := Verdict(0.05); got != "NOT_SIGNIFICANT" {
		t.Fatalf("Verdict(0.05) = %q, threshold is exclusive", got)
	}
	if got := Verdict(0.8); got != "NOT_SIGNIFICANT" {
		t.Fatalf("Verdict(0.8) = %q", got)
	}
}
