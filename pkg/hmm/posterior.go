package hmm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// PosteriorMarginal returns the smoothed distribution P(h_t | v_0..v_{T-1})
// for a single timestep: the pointwise product of the alpha and beta columns
// at t, normalized to sum to one. It accepts either the reference pair from
// Forward and Backward or the scaled pair from ForwardScaled and
// BackwardScaled; normalization makes both conventions agree.
//
// Tables of different shapes return ErrShapeMismatch, a timestep outside
// [0, Steps) returns ErrInvalidTimestep, and a zero product mass returns
// ErrDegenerateMarginal untouched: impossible evidence is never renormalized
// into a distribution.
func PosteriorMarginal(alpha, beta *Table, t int) ([]float64, error) {
	if !alpha.sameShape(beta) {
		return nil, fmt.Errorf("%w: alpha %dx%d, beta %dx%d",
			ErrShapeMismatch, alpha.states, alpha.steps, beta.states, beta.steps)
	}
	if t < 0 || t >= alpha.steps {
		return nil, fmt.Errorf("%w: step %d outside [0, %d)", ErrInvalidTimestep, t, alpha.steps)
	}
	p := make([]float64, alpha.states)
	floats.MulTo(p, alpha.col(t), beta.col(t))
	return normalizeMass(p, t)
}

// PosteriorMarginals returns the smoothed distribution at every timestep,
// indexed [t][state]. Error conditions match PosteriorMarginal.
func PosteriorMarginals(alpha, beta *Table) ([][]float64, error) {
	if !alpha.sameShape(beta) {
		return nil, fmt.Errorf("%w: alpha %dx%d, beta %dx%d",
			ErrShapeMismatch, alpha.states, alpha.steps, beta.states, beta.steps)
	}
	out := make([][]float64, alpha.steps)
	for t := range out {
		p := make([]float64, alpha.states)
		floats.MulTo(p, alpha.col(t), beta.col(t))
		normalized, err := normalizeMass(p, t)
		if err != nil {
			return nil, err
		}
		out[t] = normalized
	}
	return out, nil
}

// Filtered returns the filtering distribution P(h_t | v_0..v_t): the alpha
// column at t normalized to sum to one. At the final timestep it coincides
// with the smoothed marginal. Error conditions match PosteriorMarginal.
func Filtered(alpha *Table, t int) ([]float64, error) {
	if t < 0 || t >= alpha.steps {
		return nil, fmt.Errorf("%w: step %d outside [0, %d)", ErrInvalidTimestep, t, alpha.steps)
	}
	return normalizeMass(alpha.Column(t), t)
}

// Likelihood returns P(v_0..v_{T-1}), the total mass in the final column of a
// reference alpha table from Forward. Zero means the sequence is impossible
// under the model. Tables from ForwardScaled carry their likelihood in the
// scale factors instead; see LogLikelihood.
func Likelihood(alpha *Table) float64 {
	return floats.Sum(alpha.col(alpha.steps - 1))
}

// LogLikelihood returns log P(v_0..v_{T-1}) as the sum of the logs of the
// scale factors produced by ForwardScaled.
func LogLikelihood(scales []float64) float64 {
	var sum float64
	for _, c := range scales {
		sum += math.Log(c)
	}
	return sum
}

// normalizeMass scales p in place to sum to one. A zero sum is reported as
// ErrDegenerateMarginal for timestep t.
func normalizeMass(p []float64, t int) ([]float64, error) {
	total := floats.Sum(p)
	if total == 0 {
		return nil, fmt.Errorf("%w: zero probability mass at step %d", ErrDegenerateMarginal, t)
	}
	floats.Scale(1/total, p)
	return p, nil
}
