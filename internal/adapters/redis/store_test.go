package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisAdapter "github.com/konvo/konvo/internal/adapters/redis"
	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/ports"
)

func setup(t *testing.T, opts ...redisAdapter.Option) (*miniredis.Miniredis, *redisAdapter.Store) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return mr, redisAdapter.NewFromClient(client, opts...)
}

func TestRedisStore_Contract(t *testing.T) {
	_, store := setup(t)
	ports.RunSessionStoreContract(t, store)
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	mr, store := setup(t, redisAdapter.WithTTL(10*time.Minute))
	ctx := context.Background()

	ch := domain.Channel{Type: "whatsapp", Identifier: "+100"}
	require.NoError(t, store.Save(ctx, ch.Key(), domain.NewSession(ch)))

	mr.FastForward(11 * time.Minute)

	_, err := store.Get(ctx, ch.Key())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStore_SaveRefreshesTTL(t *testing.T) {
	mr, store := setup(t, redisAdapter.WithTTL(10*time.Minute))
	ctx := context.Background()

	ch := domain.Channel{Type: "whatsapp", Identifier: "+100"}
	s := domain.NewSession(ch)
	require.NoError(t, store.Save(ctx, ch.Key(), s))

	mr.FastForward(8 * time.Minute)
	require.NoError(t, store.Save(ctx, ch.Key(), s))

	mr.FastForward(8 * time.Minute)
	_, err := store.Get(ctx, ch.Key())
	assert.NoError(t, err, "the rewrite must have refreshed the TTL")
}

func TestRedisStore_Touch(t *testing.T) {
	mr, store := setup(t, redisAdapter.WithTTL(10*time.Minute))
	ctx := context.Background()

	ch := domain.Channel{Type: "whatsapp", Identifier: "+100"}
	require.NoError(t, store.Save(ctx, ch.Key(), domain.NewSession(ch)))

	mr.FastForward(8 * time.Minute)
	require.NoError(t, store.Touch(ctx, ch.Key()))

	mr.FastForward(8 * time.Minute)
	_, err := store.Get(ctx, ch.Key())
	assert.NoError(t, err)

	assert.ErrorIs(t, store.Touch(ctx, "missing"), domain.ErrSessionNotFound)
}

func TestRedisStore_ListPrunesExpired(t *testing.T) {
	mr, store := setup(t, redisAdapter.WithTTL(10*time.Minute))
	ctx := context.Background()

	a := domain.Channel{Type: "whatsapp", Identifier: "+1"}
	b := domain.Channel{Type: "whatsapp", Identifier: "+2"}
	require.NoError(t, store.Save(ctx, a.Key(), domain.NewSession(a)))
	require.NoError(t, store.Save(ctx, b.Key(), domain.NewSession(b)))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	mr.FastForward(11 * time.Minute)

	keys, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRedisStore_KeyPrefix(t *testing.T) {
	mr, store := setup(t, redisAdapter.WithPrefix("custom:"))
	ctx := context.Background()

	ch := domain.Channel{Type: "whatsapp", Identifier: "+100"}
	require.NoError(t, store.Save(ctx, ch.Key(), domain.NewSession(ch)))

	assert.True(t, mr.Exists("custom:"+ch.Key()))
}
