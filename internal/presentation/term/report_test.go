package term_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/hindsight/internal/presentation/term"
)

func TestMarkdownReport(t *testing.T) {
	data := term.ReportData{
		Model:         "weather",
		Mode:          "smoothed",
		States:        []string{"rainy", "sunny"},
		Observed:      []string{"umbrella", "no-umbrella"},
		Steps:         [][]float64{{0.8834, 0.1166}, {0.8834, 0.1166}},
		LogLikelihood: -1.0455,
	}

	md := term.Markdown(data)

	for _, want := range []string{
		"# Inference Report: weather",
		"**Mode:** smoothed",
		"**Log-likelihood:** -1.045500",
		"| t | observed | rainy | sunny |",
		"| 0 | umbrella | 0.8834 | 0.1166 |",
		"| 1 | no-umbrella |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown() missing %q in:\n%s", want, md)
		}
	}
}

func TestMarkdownDefaultsModelName(t *testing.T) {
	md := term.Markdown(term.ReportData{Mode: "filtered"})
	if !strings.Contains(md, "# Inference Report: model") {
		t.Errorf("Markdown() should default the model name, got:\n%s", md)
	}
}

func TestBarsWritesOneRowPerState(t *testing.T) {
	var buf bytes.Buffer
	term.Bars(&buf, []string{"rainy", "sunny"}, []float64{0.75, 0.25})

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 bar rows, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "rainy") || !strings.Contains(lines[0], "75.00%") {
		t.Errorf("First row should carry label and percentage, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "sunny") || !strings.Contains(lines[1], "25.00%") {
		t.Errorf("Second row should carry label and percentage, got %q", lines[1])
	}
}

func TestBarsClampsOutOfRangeProbabilities(t *testing.T) {
	var buf bytes.Buffer
	term.Bars(&buf, []string{"a"}, []float64{1.5})
	if !strings.Contains(buf.String(), "150.00%") {
		t.Errorf("Bars should still print the raw percentage, got %q", buf.String())
	}
}
