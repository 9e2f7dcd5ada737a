package hindsight

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"sync"

	"github.com/aretw0/hindsight/pkg/hmm"
	"github.com/aretw0/hindsight/pkg/modelfile"
	"github.com/aretw0/hindsight/pkg/sample"
)

// Engine is the high-level entry point for the hindsight library.
// It wraps the pkg/hmm recursions behind a model-aware API and uses the
// rescaled variants by default so long sequences never underflow.
type Engine struct {
	model   *hmm.Model
	states  []string
	symbols []string
	logger  *slog.Logger
	scaling bool

	mu  sync.Mutex
	rng *rand.Rand

	Name string
}

// Posterior carries one distribution over hidden states per timestep plus
// the log-likelihood of the whole observation sequence.
type Posterior struct {
	Steps         [][]float64 `json:"steps"`
	LogLikelihood float64     `json:"logLikelihood"`
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithScaling toggles the per-step rescaled recursions. Disabling them gives
// the textbook unnormalized tables, which underflow on long sequences but
// reproduce reference values bit for bit.
func WithScaling(enabled bool) Option {
	return func(e *Engine) {
		e.scaling = enabled
	}
}

// WithSeed makes Sample deterministic: successive draws continue one
// reproducible stream.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLabels attaches display names for hidden states and symbols. Open sets
// them from the model document automatically.
func WithLabels(states, symbols []string) Option {
	return func(e *Engine) {
		e.states = append([]string(nil), states...)
		e.symbols = append([]string(nil), symbols...)
	}
}

// New wraps an already validated model in an Engine.
func New(model *hmm.Model, opts ...Option) (*Engine, error) {
	if model == nil {
		return nil, fmt.Errorf("model is required")
	}
	eng := &Engine{
		model:   model,
		scaling: true,
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("model", eng.Name)
	}
	return eng, nil
}

// Open loads a model document from path and wraps it in an Engine. Labels
// and the engine name come from the document unless options override them.
func Open(path string, opts ...Option) (*Engine, error) {
	f, err := modelfile.Load(path)
	if err != nil {
		return nil, err
	}
	return FromFile(f, opts...)
}

// FromFile compiles a parsed model document into an Engine.
func FromFile(f *modelfile.File, opts ...Option) (*Engine, error) {
	model, err := f.Model()
	if err != nil {
		return nil, err
	}
	merged := append([]Option{WithLabels(f.StateLabels(), f.SymbolLabels())}, opts...)
	eng, err := New(model, merged...)
	if err != nil {
		return nil, err
	}
	if eng.Name == "" {
		eng.Name = f.Name
	}
	return eng, nil
}

// Model returns the underlying immutable model.
func (e *Engine) Model() *hmm.Model { return e.model }

// StateLabels returns the display names of the hidden states.
func (e *Engine) StateLabels() []string {
	if len(e.states) == e.model.States() && len(e.states) > 0 {
		return append([]string(nil), e.states...)
	}
	labels := make([]string, e.model.States())
	for i := range labels {
		labels[i] = fmt.Sprintf("S%d", i)
	}
	return labels
}

// SymbolLabels returns the display names of the observation symbols.
func (e *Engine) SymbolLabels() []string {
	if len(e.symbols) == e.model.Symbols() && len(e.symbols) > 0 {
		return append([]string(nil), e.symbols...)
	}
	labels := make([]string, e.model.Symbols())
	for i := range labels {
		labels[i] = fmt.Sprintf("V%d", i)
	}
	return labels
}

// Smooth returns P(h_t | v_0..v_{T-1}) for every timestep of the sequence,
// together with the sequence log-likelihood.
func (e *Engine) Smooth(observations []int) (*Posterior, error) {
	alpha, beta, logLik, err := e.tables(observations)
	if err != nil {
		return nil, err
	}
	steps, err := hmm.PosteriorMarginals(alpha, beta)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("smoothed sequence", "steps", len(observations))
	return &Posterior{Steps: steps, LogLikelihood: logLik}, nil
}

// Filter returns P(h_t | v_0..v_t) for every timestep of the sequence,
// together with the sequence log-likelihood.
func (e *Engine) Filter(observations []int) (*Posterior, error) {
	alpha, _, logLik, err := e.forward(observations)
	if err != nil {
		return nil, err
	}
	steps := make([][]float64, alpha.Steps())
	for t := range steps {
		dist, err := hmm.Filtered(alpha, t)
		if err != nil {
			return nil, err
		}
		steps[t] = dist
	}
	e.logger.Debug("filtered sequence", "steps", len(observations))
	return &Posterior{Steps: steps, LogLikelihood: logLik}, nil
}

// Marginal returns the smoothed distribution at a single timestep.
func (e *Engine) Marginal(observations []int, t int) ([]float64, error) {
	alpha, beta, _, err := e.tables(observations)
	if err != nil {
		return nil, err
	}
	return hmm.PosteriorMarginal(alpha, beta, t)
}

// LogLikelihood returns log P(v_0..v_{T-1}) under the model. Evidence with
// zero probability is reported as hmm.ErrDegenerateMarginal in both scaling
// modes rather than as negative infinity.
func (e *Engine) LogLikelihood(observations []int) (float64, error) {
	_, _, logLik, err := e.forward(observations)
	if err != nil {
		return 0, err
	}
	return logLik, nil
}

// Sample draws a trajectory of the given length from the model. Engines
// created with WithSeed produce one reproducible stream of draws.
func (e *Engine) Sample(steps int) (sample.Trajectory, error) {
	if e.rng != nil {
		e.mu.Lock()
		defer e.mu.Unlock()
		return sample.Draw(e.model, steps, sample.WithRand(e.rng))
	}
	return sample.Draw(e.model, steps)
}

// forward runs the configured forward pass and reports the log-likelihood.
func (e *Engine) forward(observations []int) (*hmm.Table, []float64, float64, error) {
	if e.scaling {
		alpha, scales, err := hmm.ForwardScaled(e.model, observations)
		if err != nil {
			return nil, nil, 0, err
		}
		return alpha, scales, hmm.LogLikelihood(scales), nil
	}
	alpha, err := hmm.Forward(e.model, observations)
	if err != nil {
		return nil, nil, 0, err
	}
	lik := hmm.Likelihood(alpha)
	if lik == 0 {
		return nil, nil, 0, fmt.Errorf("%w: evidence has zero probability", hmm.ErrDegenerateMarginal)
	}
	return alpha, nil, math.Log(lik), nil
}

// tables runs the configured forward and backward passes as a matched pair.
func (e *Engine) tables(observations []int) (*hmm.Table, *hmm.Table, float64, error) {
	alpha, scales, logLik, err := e.forward(observations)
	if err != nil {
		return nil, nil, 0, err
	}
	var beta *hmm.Table
	if e.scaling {
		beta, err = hmm.BackwardScaled(e.model, observations, scales)
	} else {
		beta, err = hmm.Backward(e.model, observations)
	}
	if err != nil {
		return nil, nil, 0, err
	}
	return alpha, beta, logLik, nil
}
