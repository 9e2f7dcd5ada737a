package ports

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hindsight/pkg/modelfile"
)

// RunModelStoreContract runs a suite of tests to verify that a ModelStore
// implementation adheres to the interface contract. Adapter tests call it
// with a freshly constructed store.
func RunModelStoreContract(t *testing.T, store ModelStore) {
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		doc := contractDoc("weather")
		require.NoError(t, store.Save(ctx, "weather", doc), "Save should not return error")

		loaded, err := store.Load(ctx, "weather")
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, doc.Name, loaded.Name)
		assert.Equal(t, doc.Initial, loaded.Initial)
		assert.Equal(t, doc.Transition, loaded.Transition)
		assert.Equal(t, doc.States, loaded.States)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "no-such-model")
		assert.ErrorIs(t, err, ErrModelNotFound)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		doc := contractDoc("weather")
		doc.Description = "revised"
		require.NoError(t, store.Save(ctx, "weather", doc))

		loaded, err := store.Load(ctx, "weather")
		require.NoError(t, err)
		assert.Equal(t, "revised", loaded.Description)
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "copy-check", contractDoc("copy-check")))

		first, err := store.Load(ctx, "copy-check")
		require.NoError(t, err)
		first.Initial[0] = 99
		first.Transition[0][0] = 99

		second, err := store.Load(ctx, "copy-check")
		require.NoError(t, err)
		assert.Equal(t, 0.5, second.Initial[0], "mutating a loaded document must not affect the store")
		assert.Equal(t, 0.7, second.Transition[0][0])
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "ephemeral", contractDoc("ephemeral")))
		require.NoError(t, store.Delete(ctx, "ephemeral"), "Delete should not return error")

		_, err := store.Load(ctx, "ephemeral")
		assert.ErrorIs(t, err, ErrModelNotFound, "Load after Delete should return ErrModelNotFound")

		err = store.Delete(ctx, "ephemeral")
		assert.ErrorIs(t, err, ErrModelNotFound, "Delete of a missing model should return ErrModelNotFound")
	})

	t.Run("List Sorted", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "zz-casino", contractDoc("zz-casino")))
		require.NoError(t, store.Save(ctx, "aa-weather", contractDoc("aa-weather")))

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, "zz-casino")
		assert.Contains(t, names, "aa-weather")
		assert.True(t, sort.StringsAreSorted(names), "List must return names in lexical order, got %v", names)
	})
}

func contractDoc(name string) *modelfile.File {
	return &modelfile.File{
		Name:       name,
		States:     []string{"rain", "dry"},
		Symbols:    []string{"umbrella", "none"},
		Initial:    []float64{0.5, 0.5},
		Transition: [][]float64{{0.7, 0.3}, {0.3, 0.7}},
		Emission:   [][]float64{{0.9, 0.2}, {0.1, 0.8}},
	}
}
