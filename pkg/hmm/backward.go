package hmm

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Backward computes the beta table for the observation sequence:
// beta[i][t] = P(v_{t+1}..v_{T-1} | h_t = i), the probability of the
// remaining evidence given the hidden state at step t. The final column is
// all ones (an empty remainder is certain); earlier columns follow
// beta[i][t] = Σ_j P(h=j | h=i) · P(v_{t+1} | h=j) · beta[j][t+1].
// A single-step sequence yields just the all-ones column.
//
// Validation matches Forward: the sequence is rejected with
// ErrInvalidObservation before any table is built.
func Backward(m *Model, observations []int) (*Table, error) {
	if err := m.checkObservations(observations); err != nil {
		return nil, err
	}
	beta := newTable(m.states, len(observations))
	ones(beta.col(beta.steps - 1))
	weights := make([]float64, m.states)
	for t := beta.steps - 2; t >= 0; t-- {
		floats.MulTo(weights, m.likelihoods(observations[t+1]), beta.col(t+1))
		cur := beta.col(t)
		for i := range cur {
			cur[i] = floats.Dot(m.from(i), weights)
		}
	}
	return beta, nil
}

// BackwardScaled computes the beta table divided by the running suffix
// product of the forward scale factors: the column at t is
// beta[:,t] / (c[t+1]·...·c[T-1]), with the final column all ones. Paired
// with the table from ForwardScaled, the pointwise product of matching
// columns is the smoothed posterior without further bookkeeping.
//
// scales must be the factors returned by ForwardScaled for the same
// sequence; a length mismatch is ErrShapeMismatch and a zero factor is
// ErrDegenerateMarginal.
func BackwardScaled(m *Model, observations []int, scales []float64) (*Table, error) {
	if err := m.checkObservations(observations); err != nil {
		return nil, err
	}
	if len(scales) != len(observations) {
		return nil, fmt.Errorf("%w: %d scale factors for %d observations", ErrShapeMismatch, len(scales), len(observations))
	}
	beta := newTable(m.states, len(observations))
	ones(beta.col(beta.steps - 1))
	weights := make([]float64, m.states)
	for t := beta.steps - 2; t >= 0; t-- {
		if scales[t+1] == 0 {
			return nil, fmt.Errorf("%w: zero scale factor at step %d", ErrDegenerateMarginal, t+1)
		}
		inv := 1 / scales[t+1]
		floats.MulTo(weights, m.likelihoods(observations[t+1]), beta.col(t+1))
		cur := beta.col(t)
		for i := range cur {
			cur[i] = inv * floats.Dot(m.from(i), weights)
		}
	}
	return beta, nil
}

func ones(s []float64) {
	for i := range s {
		s[i] = 1
	}
}
