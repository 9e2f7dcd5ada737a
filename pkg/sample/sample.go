// Package sample draws synthetic trajectories from a hidden Markov model:
// a hidden state path through the chain and the symbol each state emitted.
// Draws are deterministic for a given seed, which keeps demo data and test
// fixtures reproducible.
package sample

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/aretw0/hindsight/pkg/hmm"
)

// ErrInvalidSteps indicates a requested trajectory length below one.
var ErrInvalidSteps = errors.New("trajectory length must be positive")

// Trajectory is one sampled run: the hidden state path and the observed
// symbol at each step. Both slices have the requested length.
type Trajectory struct {
	Hidden   []int `json:"hidden"`
	Observed []int `json:"observed"`
}

// Option configures a draw.
type Option func(*config)

type config struct {
	rng *rand.Rand
}

// WithSeed makes the draw deterministic for the given seed.
func WithSeed(seed int64) Option {
	return func(c *config) { c.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand supplies the random source directly. The draw consumes two
// variates per step, one for the hidden transition and one for the emission.
func WithRand(rng *rand.Rand) Option {
	return func(c *config) { c.rng = rng }
}

// Draw samples a trajectory of the given length from the model. The first
// hidden state follows the model's initial distribution, each later one the
// transition column of its predecessor, and every step emits a symbol from
// the emission column of its hidden state. The model is read, never mutated.
func Draw(m *hmm.Model, steps int, opts ...Option) (Trajectory, error) {
	if steps <= 0 {
		return Trajectory{}, fmt.Errorf("%w: got %d", ErrInvalidSteps, steps)
	}
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewSource(rand.Int63()))
	}

	outgoing, emitting := distributions(m)
	tr := Trajectory{
		Hidden:   make([]int, steps),
		Observed: make([]int, steps),
	}
	state := categorical(cfg.rng, m.Initial())
	for t := 0; t < steps; t++ {
		if t > 0 {
			state = categorical(cfg.rng, outgoing[state])
		}
		tr.Hidden[t] = state
		tr.Observed[t] = categorical(cfg.rng, emitting[state])
	}
	return tr, nil
}

// distributions gathers, once per draw, the per-state transition and emission
// columns the chain walks over.
func distributions(m *hmm.Model) (outgoing, emitting [][]float64) {
	transition := m.TransitionMatrix()
	emission := m.EmissionMatrix()
	outgoing = make([][]float64, m.States())
	emitting = make([][]float64, m.States())
	for j := range outgoing {
		out := make([]float64, m.States())
		for i := range out {
			out[i] = transition[i][j]
		}
		outgoing[j] = out

		emit := make([]float64, m.Symbols())
		for v := range emit {
			emit[v] = emission[v][j]
		}
		emitting[j] = emit
	}
	return outgoing, emitting
}

// categorical draws an index from a discrete distribution by scanning the
// cumulative sum. Rounding residue falls to the last index.
func categorical(rng *rand.Rand, dist []float64) int {
	u := rng.Float64()
	var acc float64
	for k, p := range dist {
		acc += p
		if u < acc {
			return k
		}
	}
	return len(dist) - 1
}
