package hmm

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/gonum/floats"
)

// stochasticTol is the absolute tolerance for probability sums.
const stochasticTol = 1e-9

// Model is an immutable discrete hidden Markov model. Construct one with New;
// the zero value is not usable. Accessors hand out copies, so a Model can be
// shared freely across goroutines.
type Model struct {
	states  int
	symbols int

	initial []float64
	// trans holds the transition matrix column by column: trans[j*states+i]
	// is P(h_t = i | h_{t-1} = j), so the outgoing distribution of source
	// state j is one contiguous block.
	trans []float64
	// emis holds the emission matrix row by row: emis[v*states+j] is
	// P(v_t = v | h_t = j), so the per-state likelihoods of one symbol are
	// one contiguous block.
	emis []float64
}

// New builds a validated Model from an initial distribution over hidden
// states, a transition matrix with transition[i][j] = P(h_t = i | h_{t-1} = j)
// and an emission matrix with emission[v][j] = P(v_t = v | h_t = j). Inputs
// are copied; the caller keeps ownership of the slices.
//
// The initial vector and every column of both matrices must be a probability
// distribution: entries non-negative, sum within 1e-9 of one. The transition
// matrix must be square over len(initial) states and the emission matrix must
// have one column per state and at least one symbol row. All violations are
// reported together, wrapped in ErrInvalidModel.
func New(initial []float64, transition, emission [][]float64) (*Model, error) {
	n := len(initial)

	var dims *multierror.Error
	if n == 0 {
		dims = multierror.Append(dims, fmt.Errorf("initial distribution is empty"))
	}
	if len(emission) == 0 {
		dims = multierror.Append(dims, fmt.Errorf("emission matrix has no symbol rows"))
	}
	if len(transition) != n {
		dims = multierror.Append(dims, fmt.Errorf("transition has %d rows, want %d", len(transition), n))
	}
	for i, row := range transition {
		if len(row) != n {
			dims = multierror.Append(dims, fmt.Errorf("transition row %d has %d entries, want %d", i, len(row), n))
		}
	}
	for v, row := range emission {
		if len(row) != n {
			dims = multierror.Append(dims, fmt.Errorf("emission row %d has %d entries, want %d", v, len(row), n))
		}
	}
	if err := dims.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	m := &Model{
		states:  n,
		symbols: len(emission),
		initial: append([]float64(nil), initial...),
		trans:   make([]float64, n*n),
		emis:    make([]float64, len(emission)*n),
	}
	for i, row := range transition {
		for j, p := range row {
			m.trans[j*n+i] = p
		}
	}
	for v, row := range emission {
		copy(m.emis[v*n:], row)
	}

	var errs *multierror.Error
	errs = appendDistributionErr(errs, "initial distribution", m.initial)
	for j := 0; j < n; j++ {
		errs = appendDistributionErr(errs, fmt.Sprintf("transition column %d", j), m.from(j))
	}
	col := make([]float64, m.symbols)
	for j := 0; j < n; j++ {
		for v := 0; v < m.symbols; v++ {
			col[v] = m.emis[v*n+j]
		}
		errs = appendDistributionErr(errs, fmt.Sprintf("emission column %d", j), col)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	return m, nil
}

// appendDistributionErr records every reason probs fails to be a probability
// distribution under the given name.
func appendDistributionErr(errs *multierror.Error, name string, probs []float64) *multierror.Error {
	for i, p := range probs {
		if p < 0 || math.IsNaN(p) {
			errs = multierror.Append(errs, fmt.Errorf("%s: entry %d is %v, want non-negative", name, i, p))
		}
	}
	if sum := floats.Sum(probs); math.Abs(sum-1) > stochasticTol {
		errs = multierror.Append(errs, fmt.Errorf("%s sums to %v, want 1", name, sum))
	}
	return errs
}

// States returns the number of hidden states N.
func (m *Model) States() int { return m.states }

// Symbols returns the number of visible symbols M.
func (m *Model) Symbols() int { return m.symbols }

// Initial returns a copy of the distribution over the first hidden state.
func (m *Model) Initial() []float64 { return append([]float64(nil), m.initial...) }

// Transition returns P(h_t = to | h_{t-1} = from).
func (m *Model) Transition(to, from int) float64 { return m.trans[from*m.states+to] }

// Emission returns P(v_t = symbol | h_t = state).
func (m *Model) Emission(symbol, state int) float64 { return m.emis[symbol*m.states+state] }

// TransitionMatrix returns a copy of the transition matrix indexed
// [to][from].
func (m *Model) TransitionMatrix() [][]float64 {
	out := make([][]float64, m.states)
	for i := range out {
		row := make([]float64, m.states)
		for j := range row {
			row[j] = m.trans[j*m.states+i]
		}
		out[i] = row
	}
	return out
}

// EmissionMatrix returns a copy of the emission matrix indexed
// [symbol][state].
func (m *Model) EmissionMatrix() [][]float64 {
	out := make([][]float64, m.symbols)
	for v := range out {
		out[v] = append([]float64(nil), m.likelihoods(v)...)
	}
	return out
}

// from returns the outgoing transition distribution of source state j as a
// view into the backing array. Callers must not mutate or retain it.
func (m *Model) from(j int) []float64 { return m.trans[j*m.states : (j+1)*m.states] }

// likelihoods returns the per-state emission probabilities of symbol v as a
// view into the backing array. Callers must not mutate or retain it.
func (m *Model) likelihoods(v int) []float64 { return m.emis[v*m.states : (v+1)*m.states] }

// checkObservations rejects sequences the inference passes cannot process.
// The check runs before any table is allocated, so a failing sequence never
// yields partial results.
func (m *Model) checkObservations(observations []int) error {
	if len(observations) == 0 {
		return fmt.Errorf("%w: empty sequence", ErrInvalidObservation)
	}
	for t, v := range observations {
		if v < 0 || v >= m.symbols {
			return fmt.Errorf("%w: symbol %d at step %d outside [0, %d)", ErrInvalidObservation, v, t, m.symbols)
		}
	}
	return nil
}
