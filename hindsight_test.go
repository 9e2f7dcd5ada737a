package hindsight_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/hindsight"
	"github.com/aretw0/hindsight/pkg/hmm"
)

const weatherYAML = `name: weather
description: Two hidden weather regimes observed through an umbrella.
states: [rainy, sunny]
symbols: [umbrella, no-umbrella]
initial: [0.5, 0.5]
transition:
  - [0.7, 0.3]
  - [0.3, 0.7]
emission:
  - [0.9, 0.2]
  - [0.1, 0.8]
`

func weatherModel(t *testing.T) *hmm.Model {
	t.Helper()
	m, err := hmm.New(
		[]float64{0.5, 0.5},
		[][]float64{{0.7, 0.3}, {0.3, 0.7}},
		[][]float64{{0.9, 0.2}, {0.1, 0.8}},
	)
	if err != nil {
		t.Fatalf("New model failed: %v", err)
	}
	return m
}

func TestFacade_Integration(t *testing.T) {
	// 0. Setup temp model file
	dir := t.TempDir()
	path := filepath.Join(dir, "weather.yaml")
	if err := os.WriteFile(path, []byte(weatherYAML), 0644); err != nil {
		t.Fatal(err)
	}

	// 1. Test initialization
	eng, err := hindsight.Open(path)
	if err != nil {
		t.Fatalf("Failed to open engine with path %s: %v", path, err)
	}
	if eng.Name != "weather" {
		t.Errorf("Expected engine name 'weather', got '%s'", eng.Name)
	}
	if got := eng.StateLabels(); got[0] != "rainy" || got[1] != "sunny" {
		t.Errorf("Expected state labels from document, got %v", got)
	}

	// 2. Smooth a short sequence and check against hand-computed values
	post, err := eng.Smooth([]int{0, 0})
	if err != nil {
		t.Fatalf("Smooth failed: %v", err)
	}
	if len(post.Steps) != 2 {
		t.Fatalf("Expected 2 posterior steps, got %d", len(post.Steps))
	}
	wantRain := 0.3105 / 0.3515
	if math.Abs(post.Steps[0][0]-wantRain) > 1e-9 {
		t.Errorf("Smoothed P(rainy | t=0) = %v, want %v", post.Steps[0][0], wantRain)
	}

	// 3. Log-likelihood of the evidence
	wantLL := math.Log(0.3515)
	if math.Abs(post.LogLikelihood-wantLL) > 1e-9 {
		t.Errorf("LogLikelihood = %v, want %v", post.LogLikelihood, wantLL)
	}
}

func TestNewRequiresModel(t *testing.T) {
	if _, err := hindsight.New(nil); err == nil {
		t.Fatal("Expected error for nil model, got nil")
	}
}

func TestSmoothAgreesAcrossScalingModes(t *testing.T) {
	m := weatherModel(t)
	obs := []int{0, 1, 0, 0, 1, 1, 0}

	scaled, err := hindsight.New(m)
	if err != nil {
		t.Fatal(err)
	}
	reference, err := hindsight.New(m, hindsight.WithScaling(false))
	if err != nil {
		t.Fatal(err)
	}

	postScaled, err := scaled.Smooth(obs)
	if err != nil {
		t.Fatalf("scaled Smooth failed: %v", err)
	}
	postRef, err := reference.Smooth(obs)
	if err != nil {
		t.Fatalf("reference Smooth failed: %v", err)
	}

	if math.Abs(postScaled.LogLikelihood-postRef.LogLikelihood) > 1e-9 {
		t.Errorf("LogLikelihood disagrees: scaled %v, reference %v",
			postScaled.LogLikelihood, postRef.LogLikelihood)
	}
	for tt := range postScaled.Steps {
		for i := range postScaled.Steps[tt] {
			if math.Abs(postScaled.Steps[tt][i]-postRef.Steps[tt][i]) > 1e-9 {
				t.Errorf("posterior[%d][%d] disagrees: scaled %v, reference %v",
					tt, i, postScaled.Steps[tt][i], postRef.Steps[tt][i])
			}
		}
	}
}

func TestFilterMatchesSmoothAtFinalStep(t *testing.T) {
	eng, err := hindsight.New(weatherModel(t))
	if err != nil {
		t.Fatal(err)
	}
	obs := []int{0, 0, 1, 0}

	filtered, err := eng.Filter(obs)
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	smoothed, err := eng.Smooth(obs)
	if err != nil {
		t.Fatalf("Smooth failed: %v", err)
	}

	last := len(obs) - 1
	for i := range filtered.Steps[last] {
		if math.Abs(filtered.Steps[last][i]-smoothed.Steps[last][i]) > 1e-9 {
			t.Errorf("final step state %d: filtered %v, smoothed %v",
				i, filtered.Steps[last][i], smoothed.Steps[last][i])
		}
	}
	if math.Abs(filtered.LogLikelihood-smoothed.LogLikelihood) > 1e-9 {
		t.Errorf("LogLikelihood disagrees: filtered %v, smoothed %v",
			filtered.LogLikelihood, smoothed.LogLikelihood)
	}
}

func TestMarginalMatchesSmoothStep(t *testing.T) {
	eng, err := hindsight.New(weatherModel(t))
	if err != nil {
		t.Fatal(err)
	}
	obs := []int{0, 1, 0}

	smoothed, err := eng.Smooth(obs)
	if err != nil {
		t.Fatal(err)
	}
	dist, err := eng.Marginal(obs, 1)
	if err != nil {
		t.Fatalf("Marginal failed: %v", err)
	}
	for i := range dist {
		if math.Abs(dist[i]-smoothed.Steps[1][i]) > 1e-12 {
			t.Errorf("Marginal state %d = %v, want %v", i, dist[i], smoothed.Steps[1][i])
		}
	}
}

func TestDegenerateEvidenceReportedInBothModes(t *testing.T) {
	// Symbol 1 is impossible in every state.
	m, err := hmm.New(
		[]float64{0.5, 0.5},
		[][]float64{{0.7, 0.3}, {0.3, 0.7}},
		[][]float64{{1, 1}, {0, 0}},
	)
	if err != nil {
		t.Fatal(err)
	}

	for _, scaling := range []bool{true, false} {
		eng, err := hindsight.New(m, hindsight.WithScaling(scaling))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := eng.Smooth([]int{0, 1, 0}); !errors.Is(err, hmm.ErrDegenerateMarginal) {
			t.Errorf("scaling=%v: Smooth error = %v, want ErrDegenerateMarginal", scaling, err)
		}
		if _, err := eng.LogLikelihood([]int{1}); !errors.Is(err, hmm.ErrDegenerateMarginal) {
			t.Errorf("scaling=%v: LogLikelihood error = %v, want ErrDegenerateMarginal", scaling, err)
		}
	}
}

func TestInvalidObservationsSurface(t *testing.T) {
	eng, err := hindsight.New(weatherModel(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Smooth([]int{0, 2}); !errors.Is(err, hmm.ErrInvalidObservation) {
		t.Errorf("Smooth error = %v, want ErrInvalidObservation", err)
	}
	if _, err := eng.Filter(nil); !errors.Is(err, hmm.ErrInvalidObservation) {
		t.Errorf("Filter error = %v, want ErrInvalidObservation", err)
	}
}

func TestSampleDeterministicWithSeed(t *testing.T) {
	m := weatherModel(t)
	first, err := hindsight.New(m, hindsight.WithSeed(11))
	if err != nil {
		t.Fatal(err)
	}
	second, err := hindsight.New(m, hindsight.WithSeed(11))
	if err != nil {
		t.Fatal(err)
	}

	a, err := first.Sample(40)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	b, err := second.Sample(40)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	for i := range a.Hidden {
		if a.Hidden[i] != b.Hidden[i] || a.Observed[i] != b.Observed[i] {
			t.Fatalf("step %d: trajectories diverge for identical seeds", i)
		}
	}

	// Successive draws continue the stream instead of restarting it.
	c, err := first.Sample(40)
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := range a.Hidden {
		if a.Hidden[i] != c.Hidden[i] || a.Observed[i] != c.Observed[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Expected second draw to continue the random stream, got a repeat")
	}
}

func TestDefaultLabels(t *testing.T) {
	eng, err := hindsight.New(weatherModel(t))
	if err != nil {
		t.Fatal(err)
	}
	states := eng.StateLabels()
	if states[0] != "S0" || states[1] != "S1" {
		t.Errorf("Expected default state labels, got %v", states)
	}
	symbols := eng.SymbolLabels()
	if symbols[0] != "V0" || symbols[1] != "V1" {
		t.Errorf("Expected default symbol labels, got %v", symbols)
	}
}
