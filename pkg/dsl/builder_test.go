package dsl

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/aretw0/hindsight/pkg/hmm"
)

func TestBuilder_WeatherModel(t *testing.T) {
	// 1. Build the model using DSL
	b := New("weather").
		Describe("the umbrella world").
		Symbols("umbrella", "no-umbrella")

	b.State("rainy").
		Start(0.5).
		Stay(0.7).Go("sunny", 0.3).
		Emit("umbrella", 0.9).Emit("no-umbrella", 0.1)

	b.State("sunny").
		Start(0.5).
		Stay(0.7).Go("rainy", 0.3).
		Emit("umbrella", 0.2).Emit("no-umbrella", 0.8)

	// 2. Compile to a model document
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if doc.Name != "weather" {
		t.Errorf("Expected name 'weather', got '%s'", doc.Name)
	}
	if len(doc.States) != 2 || doc.States[0] != "rainy" || doc.States[1] != "sunny" {
		t.Errorf("States lost declaration order: %v", doc.States)
	}

	// 3. Verify the matrices landed in the column-stochastic layout
	if doc.Initial[0] != 0.5 {
		t.Errorf("Expected initial[rainy]=0.5, got %v", doc.Initial[0])
	}
	if doc.Transition[1][0] != 0.3 {
		t.Errorf("Expected P(sunny|rainy)=0.3, got %v", doc.Transition[1][0])
	}
	if doc.Emission[0][1] != 0.2 {
		t.Errorf("Expected P(umbrella|sunny)=0.2, got %v", doc.Emission[0][1])
	}

	// 4. The document must compile like any hand-written one
	model, err := doc.Model()
	if err != nil {
		t.Fatalf("compiled document rejected: %v", err)
	}
	if got := model.Transition(0, 0); math.Abs(got-0.7) > 1e-12 {
		t.Errorf("Expected P(rainy|rainy)=0.7, got %v", got)
	}
}

func TestBuilder_StateIsIdempotent(t *testing.T) {
	b := New("m")
	first := b.State("a")
	second := b.State("a")
	if first != second {
		t.Error("State() should return the existing builder for a known label")
	}
}

func TestBuilder_ChainHopsBetweenStates(t *testing.T) {
	b := New("hop").Symbols("x")

	b.State("a").Start(1).Stay(1).Emit("x", 1).
		State("b").Go("a", 1).Emit("x", 1)

	doc, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if len(doc.States) != 2 {
		t.Fatalf("Expected 2 states, got %d", len(doc.States))
	}
	if doc.Transition[0][1] != 1 {
		t.Errorf("Expected P(a|b)=1, got %v", doc.Transition[0][1])
	}
}

func TestBuilder_RejectsUndeclaredTarget(t *testing.T) {
	b := New("broken").Symbols("x")
	b.State("a").Start(1).Go("ghost", 1).Emit("x", 1)

	_, err := b.Build()
	if err == nil {
		t.Fatal("Build() should fail on a transition to an undeclared state")
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("Error should name the missing state, got: %v", err)
	}
}

func TestBuilder_RejectsUndeclaredSymbol(t *testing.T) {
	b := New("broken").Symbols("x")
	b.State("a").Start(1).Stay(1).Emit("y", 1)

	_, err := b.Build()
	if err == nil {
		t.Fatal("Build() should fail on an emission of an undeclared symbol")
	}
}

func TestBuilder_RejectsNonStochasticColumns(t *testing.T) {
	b := New("broken").Symbols("x")
	b.State("a").Start(0.4).Stay(1).Emit("x", 1) // initial sums to 0.4

	_, err := b.Build()
	if !errors.Is(err, hmm.ErrInvalidModel) {
		t.Fatalf("Expected ErrInvalidModel, got: %v", err)
	}
}

func TestBuilder_RejectsEmptyModel(t *testing.T) {
	if _, err := New("empty").Build(); err == nil {
		t.Error("Build() should fail with no states")
	}

	b := New("no-symbols")
	b.State("a").Start(1).Stay(1)
	if _, err := b.Build(); err == nil {
		t.Error("Build() should fail with no symbols")
	}
}
