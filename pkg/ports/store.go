package ports

import (
	"context"
	"errors"

	"github.com/aretw0/hindsight/pkg/modelfile"
)

// ErrModelNotFound indicates no model document is stored under the requested
// name.
var ErrModelNotFound = errors.New("model not found")

// ModelStore defines the interface for persisting named model documents.
// Implementations must hand out documents the caller can mutate freely
// without affecting the stored copy.
type ModelStore interface {
	// Save stores or replaces the document under the given name.
	Save(ctx context.Context, name string, file *modelfile.File) error

	// Load retrieves the document stored under name.
	// Returns ErrModelNotFound if no document exists.
	Load(ctx context.Context, name string) (*modelfile.File, error)

	// List returns the stored names in lexical order.
	List(ctx context.Context) ([]string, error)

	// Delete removes the document under name.
	// Returns ErrModelNotFound if no document exists.
	Delete(ctx context.Context, name string) error
}
