package hmm

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Forward computes the alpha table for the observation sequence:
// alpha[i][t] = P(h_t = i, v_0..v_t), the unnormalized joint of the hidden
// state at step t and the evidence seen so far. The first column is
// emission(v_0) ⊙ initial; each later column is emission(v_t) ⊙ (transition ·
// previous column). No normalization happens inside the recursion, so entries
// shrink geometrically with t; use ForwardScaled for long sequences.
//
// The sequence is checked before any work: an empty sequence or a symbol
// outside [0, Symbols) returns ErrInvalidObservation and no table.
func Forward(m *Model, observations []int) (*Table, error) {
	if err := m.checkObservations(observations); err != nil {
		return nil, err
	}
	alpha := newTable(m.states, len(observations))
	floats.MulTo(alpha.col(0), m.likelihoods(observations[0]), m.initial)
	for t := 1; t < alpha.steps; t++ {
		m.propagate(alpha.col(t), alpha.col(t-1), observations[t])
	}
	return alpha, nil
}

// ForwardScaled computes the per-step normalized alpha table together with
// the scale factors c, where c[t] is the mass the column at t had before
// normalization. The reference column is recovered as the scaled column times
// the running product c[0]·...·c[t], and log P(v) = Σ log c[t] (see
// LogLikelihood). Evidence with zero probability is reported as
// ErrDegenerateMarginal at the step where the mass vanishes; scaling never
// papers over an impossible sequence.
func ForwardScaled(m *Model, observations []int) (*Table, []float64, error) {
	if err := m.checkObservations(observations); err != nil {
		return nil, nil, err
	}
	alpha := newTable(m.states, len(observations))
	scales := make([]float64, alpha.steps)
	floats.MulTo(alpha.col(0), m.likelihoods(observations[0]), m.initial)
	if err := rescale(alpha.col(0), scales, 0); err != nil {
		return nil, nil, err
	}
	for t := 1; t < alpha.steps; t++ {
		m.propagate(alpha.col(t), alpha.col(t-1), observations[t])
		if err := rescale(alpha.col(t), scales, t); err != nil {
			return nil, nil, err
		}
	}
	return alpha, scales, nil
}

// propagate fills dst with emission(v) ⊙ (transition · prev). dst must be
// zeroed; the matrix product accumulates one source state at a time.
func (m *Model) propagate(dst, prev []float64, v int) {
	for j, mass := range prev {
		floats.AddScaled(dst, mass, m.from(j))
	}
	floats.Mul(dst, m.likelihoods(v))
}

// rescale normalizes col in place and records its mass in scales[t].
func rescale(col, scales []float64, t int) error {
	c := floats.Sum(col)
	if c == 0 {
		return fmt.Errorf("%w: evidence has zero probability at step %d", ErrDegenerateMarginal, t)
	}
	floats.Scale(1/c, col)
	scales[t] = c
	return nil
}
