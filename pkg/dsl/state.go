package dsl

// StateBuilder provides a fluent API for configuring one hidden state.
// Probabilities are keyed by label; entries left unset default to zero.
type StateBuilder struct {
	label   string
	builder *Builder
	start   float64
	moves   map[string]float64
	emits   map[string]float64
}

// Start sets the probability of starting in this state.
func (s *StateBuilder) Start(p float64) *StateBuilder {
	s.start = p
	return s
}

// Go sets the probability of moving to the target state on the next step.
// The target may be declared later; Build resolves it.
func (s *StateBuilder) Go(target string, p float64) *StateBuilder {
	s.moves[target] = p
	return s
}

// Stay sets the probability of remaining in this state on the next step.
func (s *StateBuilder) Stay(p float64) *StateBuilder {
	return s.Go(s.label, p)
}

// Emit sets the probability of observing the symbol while in this state.
func (s *StateBuilder) Emit(symbol string, p float64) *StateBuilder {
	s.emits[symbol] = p
	return s
}

// State hops to another state's builder so a chain can keep flowing.
func (s *StateBuilder) State(label string) *StateBuilder {
	return s.builder.State(label)
}
