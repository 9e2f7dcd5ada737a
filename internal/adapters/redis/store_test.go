package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hindsight/internal/adapters/redis"
	"github.com/aretw0/hindsight/pkg/modelfile"
	"github.com/aretw0/hindsight/pkg/ports"
)

func newTestStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newTestStore(t)
	ports.RunModelStoreContract(t, store)
}

func TestRedisStore_TTLExpiresModels(t *testing.T) {
	store, mr := newTestStore(t, redis.WithTTL(time.Minute))
	ctx := context.Background()

	doc := &modelfile.File{
		Name:       "ephemeral",
		Initial:    []float64{1},
		Transition: [][]float64{{1}},
		Emission:   [][]float64{{1}},
	}
	require.NoError(t, store.Save(ctx, "ephemeral", doc))

	_, err := store.Load(ctx, "ephemeral")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Load(ctx, "ephemeral")
	assert.ErrorIs(t, err, ports.ErrModelNotFound, "Load after TTL expiry should return ErrModelNotFound")
}

func TestRedisStore_PrefixIsolation(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})

	ctx := context.Background()
	doc := &modelfile.File{
		Name:       "weather",
		Initial:    []float64{1},
		Transition: [][]float64{{1}},
		Emission:   [][]float64{{1}},
	}

	first := redis.NewFromClient(client, redis.WithPrefix("team-a:"))
	second := redis.NewFromClient(client, redis.WithPrefix("team-b:"))

	require.NoError(t, first.Save(ctx, "weather", doc))

	_, err = second.Load(ctx, "weather")
	assert.ErrorIs(t, err, ports.ErrModelNotFound, "stores with different prefixes must not see each other's models")

	names, err := second.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}
