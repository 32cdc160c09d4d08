package redisstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmreports/internal/repository/kvstore"
)

func newTestBackend(t *testing.T) (*Backend, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewBackend(client, "farm:"), server
}

func TestBackend_GetSetRemove(t *testing.T) {
	backend, server := newTestBackend(t)
	ctx := context.Background()

	_, found, err := backend.Get(ctx, "animalInventory")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, backend.Set(ctx, "animalInventory", `{"Cattle":{"count":4}}`))
	assert.True(t, server.Exists("farm:animalInventory"))

	value, found, err := backend.Get(ctx, "animalInventory")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"Cattle":{"count":4}}`, value)

	require.NoError(t, backend.Remove(ctx, "animalInventory"))
	assert.False(t, server.Exists("farm:animalInventory"))
}

func TestBackend_BehindStore(t *testing.T) {
	backend, server := newTestBackend(t)
	store := kvstore.New(backend, 0, nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "currency", "KES"))
	assert.Equal(t, "KES", store.Get(ctx, "currency"))

	server.Close()
	assert.Nil(t, store.Get(ctx, "feedInventory"))
}

func TestConnect(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := Connect(context.Background(), server.Addr(), "", 0)
	require.NoError(t, err)
	_ = client.Close()

	_, err = Connect(context.Background(), "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
