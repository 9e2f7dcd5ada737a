package hmm

// Table is a read-only states-by-steps matrix produced by the inference
// passes. Rows index hidden states, columns index timesteps. Tables from the
// same observation sequence combine with each other; PosteriorMarginal
// rejects anything else.
type Table struct {
	states int
	steps  int
	// data is column-contiguous: data[t*states : (t+1)*states] is timestep t.
	data []float64
}

func newTable(states, steps int) *Table {
	return &Table{states: states, steps: steps, data: make([]float64, states*steps)}
}

// States returns the number of hidden states (rows).
func (tb *Table) States() int { return tb.states }

// Steps returns the number of timesteps (columns).
func (tb *Table) Steps() int { return tb.steps }

// At returns the entry for hidden state i at timestep t. Out-of-range
// indices panic, as with slice indexing.
func (tb *Table) At(i, t int) float64 {
	if i < 0 || i >= tb.states {
		panic("hmm: state index out of range")
	}
	return tb.data[t*tb.states+i]
}

// Column returns a copy of the column at timestep t.
func (tb *Table) Column(t int) []float64 {
	return append([]float64(nil), tb.col(t)...)
}

// col returns the backing slice for timestep t. Callers must not let it
// escape the package.
func (tb *Table) col(t int) []float64 {
	return tb.data[t*tb.states : (t+1)*tb.states]
}

// sameShape reports whether the two tables agree on both dimensions.
func (tb *Table) sameShape(other *Table) bool {
	return tb.states == other.states && tb.steps == other.steps
}
