package dsl

import (
	"fmt"

	"github.com/aretw0/hindsight/pkg/modelfile"
)

// Builder manages the model construction. States and symbols keep their
// declaration order in the compiled document.
type Builder struct {
	name        string
	description string
	symbols     []string
	order       []string
	states      map[string]*StateBuilder
}

// New creates a new model builder.
func New(name string) *Builder {
	return &Builder{
		name:   name,
		states: make(map[string]*StateBuilder),
	}
}

// Describe sets the document description.
func (b *Builder) Describe(text string) *Builder {
	b.description = text
	return b
}

// Symbols declares the observation alphabet.
func (b *Builder) Symbols(labels ...string) *Builder {
	b.symbols = append(b.symbols, labels...)
	return b
}

// State creates a new hidden state in the model.
// If the state already exists, it returns the existing builder.
func (b *Builder) State(label string) *StateBuilder {
	if sb, ok := b.states[label]; ok {
		return sb
	}
	sb := &StateBuilder{
		label:   label,
		builder: b,
		moves:   make(map[string]float64),
		emits:   make(map[string]float64),
	}
	b.states[label] = sb
	b.order = append(b.order, label)
	return sb
}

// Build compiles the accumulated states into a model document. Transition
// targets and emission symbols must name declared states and symbols, and
// the compiled document must satisfy the column-stochastic constraints.
func (b *Builder) Build() (*modelfile.File, error) {
	if len(b.order) == 0 {
		return nil, fmt.Errorf("model %q declares no states", b.name)
	}
	if len(b.symbols) == 0 {
		return nil, fmt.Errorf("model %q declares no symbols", b.name)
	}

	stateIndex := make(map[string]int, len(b.order))
	for i, label := range b.order {
		stateIndex[label] = i
	}
	symbolIndex := make(map[string]int, len(b.symbols))
	for v, label := range b.symbols {
		if _, ok := symbolIndex[label]; ok {
			return nil, fmt.Errorf("symbol %q declared twice", label)
		}
		symbolIndex[label] = v
	}

	n, m := len(b.order), len(b.symbols)
	initial := make([]float64, n)
	transition := make([][]float64, n)
	for i := range transition {
		transition[i] = make([]float64, n)
	}
	emission := make([][]float64, m)
	for v := range emission {
		emission[v] = make([]float64, n)
	}

	for j, label := range b.order {
		sb := b.states[label]
		initial[j] = sb.start
		for target, p := range sb.moves {
			i, ok := stateIndex[target]
			if !ok {
				return nil, fmt.Errorf("transition from %q targets undeclared state %q", label, target)
			}
			transition[i][j] = p
		}
		for symbol, p := range sb.emits {
			v, ok := symbolIndex[symbol]
			if !ok {
				return nil, fmt.Errorf("state %q emits undeclared symbol %q", label, symbol)
			}
			emission[v][j] = p
		}
	}

	doc := &modelfile.File{
		Name:        b.name,
		Description: b.description,
		States:      append([]string(nil), b.order...),
		Symbols:     append([]string(nil), b.symbols...),
		Initial:     initial,
		Transition:  transition,
		Emission:    emission,
	}
	if _, err := doc.Model(); err != nil {
		return nil, err
	}
	return doc, nil
}
