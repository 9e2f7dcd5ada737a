package mcp

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/aretw0/hindsight/internal/adapters/memory"
	"github.com/aretw0/hindsight/pkg/modelfile"
	"github.com/aretw0/hindsight/pkg/ports"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.New()
	err := store.Save(context.Background(), "weather", &modelfile.File{
		Name:       "weather",
		States:     []string{"rainy", "sunny"},
		Symbols:    []string{"umbrella", "no-umbrella"},
		Initial:    []float64{0.5, 0.5},
		Transition: [][]float64{{0.7, 0.3}, {0.3, 0.7}},
		Emission:   [][]float64{{0.9, 0.2}, {0.1, 0.8}},
	})
	if err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}
	return NewServer(store)
}

func TestHandleSample(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleSample(context.Background(), mcpgo.CallToolRequest{}, map[string]interface{}{
		"model": "weather",
		"steps": float64(20),
		"seed":  float64(5),
	})
	if err != nil {
		t.Fatalf("handleSample failed: %v", err)
	}
	if len(res.Hidden) != 20 || len(res.Observed) != 20 {
		t.Fatalf("Expected 20 sampled steps, got %d/%d", len(res.Hidden), len(res.Observed))
	}
	if len(res.States) != 2 || res.States[0] != "rainy" {
		t.Errorf("Expected state labels, got %v", res.States)
	}
}

func TestHandleSampleSeedIsReproducible(t *testing.T) {
	s := newTestServer(t)
	args := map[string]interface{}{"model": "weather", "steps": float64(30), "seed": float64(42)}

	first, err := s.handleSample(context.Background(), mcpgo.CallToolRequest{}, args)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.handleSample(context.Background(), mcpgo.CallToolRequest{}, args)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Identical seeds should produce identical trajectories")
	}
}

func TestHandlePosteriorSmooth(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handlePosterior(context.Background(), mcpgo.CallToolRequest{}, map[string]interface{}{
		"model":        "weather",
		"observations": []interface{}{float64(0), float64(0)},
	})
	if err != nil {
		t.Fatalf("handlePosterior failed: %v", err)
	}
	if res.Mode != "smooth" {
		t.Errorf("Mode = %q, want smooth", res.Mode)
	}
	if len(res.Steps) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(res.Steps))
	}
	wantRain := 0.3105 / 0.3515
	if math.Abs(res.Steps[0][0]-wantRain) > 1e-9 {
		t.Errorf("Steps[0][0] = %v, want %v", res.Steps[0][0], wantRain)
	}
	if math.Abs(res.LogLikelihood-math.Log(0.3515)) > 1e-9 {
		t.Errorf("LogLikelihood = %v, want %v", res.LogLikelihood, math.Log(0.3515))
	}
}

func TestHandlePosteriorFilterMode(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handlePosterior(context.Background(), mcpgo.CallToolRequest{}, map[string]interface{}{
		"model":        "weather",
		"observations": []interface{}{float64(0)},
		"mode":         "filter",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Mode != "filter" {
		t.Errorf("Mode = %q, want filter", res.Mode)
	}
	if math.Abs(res.Steps[0][0]-9.0/11.0) > 1e-9 {
		t.Errorf("Steps[0][0] = %v, want %v", res.Steps[0][0], 9.0/11.0)
	}
}

func TestHandlePosteriorSingleTimestep(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handlePosterior(context.Background(), mcpgo.CallToolRequest{}, map[string]interface{}{
		"model":        "weather",
		"observations": []interface{}{float64(0), float64(1), float64(0)},
		"timestep":     float64(1),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Steps != nil {
		t.Error("Expected no full table when a timestep is requested")
	}
	if len(res.Step) != 2 {
		t.Fatalf("Expected one distribution, got %v", res.Step)
	}
	if res.Timestep == nil || *res.Timestep != 1 {
		t.Errorf("Timestep = %v, want 1", res.Timestep)
	}
}

func TestHandlePosteriorRejectsBadArguments(t *testing.T) {
	s := newTestServer(t)

	if _, err := s.handlePosterior(context.Background(), mcpgo.CallToolRequest{}, map[string]interface{}{
		"model":        "weather",
		"observations": []interface{}{float64(0)},
		"mode":         "decode",
	}); err == nil || !strings.Contains(err.Error(), "unknown mode") {
		t.Errorf("Expected unknown mode error, got %v", err)
	}

	if _, err := s.handlePosterior(context.Background(), mcpgo.CallToolRequest{}, map[string]interface{}{
		"model":        "weather",
		"observations": []interface{}{float64(0)},
		"timestep":     float64(4),
	}); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("Expected out of range error, got %v", err)
	}
}

func TestHandleLikelihood(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleLikelihood(context.Background(), mcpgo.CallToolRequest{}, map[string]interface{}{
		"model":        "weather",
		"observations": []interface{}{float64(0), float64(0)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.LogLikelihood-math.Log(0.3515)) > 1e-9 {
		t.Errorf("LogLikelihood = %v, want %v", res.LogLikelihood, math.Log(0.3515))
	}
}

func TestHandleDescribe(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleDescribe(context.Background(), mcpgo.CallToolRequest{}, map[string]interface{}{
		"model": "weather",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "weather" {
		t.Errorf("Name = %q, want weather", res.Name)
	}
	if len(res.States) != 2 || res.States[1] != "sunny" {
		t.Errorf("Unexpected states: %v", res.States)
	}
	if !strings.Contains(res.Mermaid, "graph LR") || !strings.Contains(res.Mermaid, "rainy") {
		t.Errorf("Expected mermaid chart, got:\n%s", res.Mermaid)
	}
}

func TestUnknownModelSurfacesNotFound(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSample(context.Background(), mcpgo.CallToolRequest{}, map[string]interface{}{
		"model": "ghost",
		"steps": float64(5),
	})
	if !errors.Is(err, ports.ErrModelNotFound) {
		t.Errorf("Expected ErrModelNotFound, got %v", err)
	}
}
