package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/aretw0/hindsight/pkg/hmm"
)

func TestObserveOutcomes(t *testing.T) {
	m := New()

	m.Observe(OpSmooth, 0.01, nil)
	m.Observe(OpSmooth, 0.02, fmt.Errorf("wrapped: %w", hmm.ErrDegenerateMarginal))
	m.Observe(OpFilter, 0.03, fmt.Errorf("boom"))

	if got := testutil.ToFloat64(m.InferenceTotal.WithLabelValues(OpSmooth, "ok")); got != 1 {
		t.Errorf("smooth ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.InferenceTotal.WithLabelValues(OpSmooth, "degenerate")); got != 1 {
		t.Errorf("smooth degenerate count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.InferenceTotal.WithLabelValues(OpFilter, "error")); got != 1 {
		t.Errorf("filter error count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DegenerateTotal); got != 1 {
		t.Errorf("degenerate counter = %v, want 1", got)
	}
}

func TestRegistryServesCollectors(t *testing.T) {
	m := New()
	m.SampledSteps.Add(42)

	count, err := testutil.GatherAndCount(m.Registry(),
		"hindsight_sampled_steps_total",
		"hindsight_inference_total",
	)
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if count == 0 {
		t.Error("registry gathered no metrics")
	}
	if got := testutil.ToFloat64(m.SampledSteps); got != 42 {
		t.Errorf("sampled steps = %v, want 42", got)
	}
}
