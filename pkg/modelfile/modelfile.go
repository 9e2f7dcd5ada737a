// Package modelfile reads and writes hidden Markov models as YAML documents.
// A document carries the three distributions in the column-stochastic
// convention of pkg/hmm plus optional human-readable labels for states and
// symbols. The same structure serializes to JSON for the HTTP surface and the
// model registry.
package modelfile

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/hindsight/pkg/hmm"
)

// ErrInvalidDocument indicates a document whose labels or structure do not
// line up with its matrices. Matrix-level problems surface as
// hmm.ErrInvalidModel from Model instead.
var ErrInvalidDocument = errors.New("invalid model document")

// File is the on-disk and on-the-wire form of a model.
type File struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// States and Symbols label the hidden states and the observation
	// alphabet. Optional; when omitted, S0..S{N-1} and V0..V{M-1} are used.
	States  []string `yaml:"states,omitempty" json:"states,omitempty"`
	Symbols []string `yaml:"symbols,omitempty" json:"symbols,omitempty"`

	// Initial[i] is P(h_0 = i). Transition[i][j] is P(h_t = i | h_{t-1} = j).
	// Emission[v][j] is P(v_t = v | h_t = j). Columns sum to one.
	Initial    []float64   `yaml:"initial" json:"initial"`
	Transition [][]float64 `yaml:"transition" json:"transition"`
	Emission   [][]float64 `yaml:"emission" json:"emission"`
}

// Load reads and parses the model document at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a YAML model document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse model document: %w", err)
	}
	return &f, nil
}

// Encode renders the document as YAML.
func (f *File) Encode() ([]byte, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model document: %w", err)
	}
	return data, nil
}

// Model compiles the document into a validated hmm.Model. Label counts are
// checked against the matrix dimensions first (ErrInvalidDocument); the
// distributions themselves are validated by hmm.New, whose errors pass
// through unchanged so callers can match hmm.ErrInvalidModel.
func (f *File) Model() (*hmm.Model, error) {
	if len(f.States) > 0 && len(f.States) != len(f.Initial) {
		return nil, fmt.Errorf("%w: %d state labels for %d states",
			ErrInvalidDocument, len(f.States), len(f.Initial))
	}
	if len(f.Symbols) > 0 && len(f.Symbols) != len(f.Emission) {
		return nil, fmt.Errorf("%w: %d symbol labels for %d symbols",
			ErrInvalidDocument, len(f.Symbols), len(f.Emission))
	}
	return hmm.New(f.Initial, f.Transition, f.Emission)
}

// Clone returns a deep copy of the document.
func (f *File) Clone() *File {
	out := *f
	out.States = append([]string(nil), f.States...)
	out.Symbols = append([]string(nil), f.Symbols...)
	out.Initial = append([]float64(nil), f.Initial...)
	out.Transition = cloneMatrix(f.Transition)
	out.Emission = cloneMatrix(f.Emission)
	return &out
}

func cloneMatrix(rows [][]float64) [][]float64 {
	if rows == nil {
		return nil
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// StateLabels returns the state labels, generating S0..S{N-1} when the
// document carries none.
func (f *File) StateLabels() []string {
	if len(f.States) > 0 {
		return append([]string(nil), f.States...)
	}
	labels := make([]string, len(f.Initial))
	for i := range labels {
		labels[i] = fmt.Sprintf("S%d", i)
	}
	return labels
}

// SymbolLabels returns the symbol labels, generating V0..V{M-1} when the
// document carries none.
func (f *File) SymbolLabels() []string {
	if len(f.Symbols) > 0 {
		return append([]string(nil), f.Symbols...)
	}
	labels := make([]string, len(f.Emission))
	for i := range labels {
		labels[i] = fmt.Sprintf("V%d", i)
	}
	return labels
}
