package hmm

import "errors"

// Sentinel errors returned by model construction and the inference passes.
// Callers match them with errors.Is; wrapped variants carry positional detail.
var (
	// ErrInvalidModel indicates the supplied distributions do not form a
	// column-stochastic model.
	ErrInvalidModel = errors.New("invalid model")

	// ErrInvalidObservation indicates an empty sequence or a symbol outside
	// the model's alphabet.
	ErrInvalidObservation = errors.New("invalid observation sequence")

	// ErrShapeMismatch indicates tables or scale vectors from different runs
	// were combined.
	ErrShapeMismatch = errors.New("mismatched table shapes")

	// ErrInvalidTimestep indicates a timestep outside the observed range.
	ErrInvalidTimestep = errors.New("timestep out of range")

	// ErrDegenerateMarginal indicates the evidence has zero probability under
	// the model, leaving no mass to normalize.
	ErrDegenerateMarginal = errors.New("degenerate marginal")
)
