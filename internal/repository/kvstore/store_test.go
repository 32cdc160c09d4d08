package kvstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBackend struct {
	*MemoryBackend
	reads int
	err   error
}

func (c *countingBackend) Get(ctx context.Context, key string) (string, bool, error) {
	c.reads++
	if c.err != nil {
		return "", false, c.err
	}
	return c.MemoryBackend.Get(ctx, key)
}

func newTestStore(t *testing.T) (*Store, *countingBackend, *time.Time) {
	t.Helper()
	backend := &countingBackend{MemoryBackend: NewMemoryBackend()}
	store := New(backend, 0, nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	return store, backend, &now
}

func TestStore_RoundTripsJSON(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "animalCategories", []string{"Cattle", "Sheep"}))

	value := store.Get(ctx, "animalCategories")
	assert.Equal(t, []any{"Cattle", "Sheep"}, value)
}

func TestStore_NonJSONPassesThrough(t *testing.T) {
	store, backend, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, backend.MemoryBackend.Set(ctx, "currency", "KES"))

	assert.Equal(t, "KES", store.Get(ctx, "currency"))
}

func TestStore_MissingKeyIsNil(t *testing.T) {
	store, _, _ := newTestStore(t)
	assert.Nil(t, store.Get(context.Background(), "feedInventory"))
}

func TestStore_CachesUntilTTL(t *testing.T) {
	store, backend, now := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, backend.MemoryBackend.Set(ctx, "k", `1`))

	store.Get(ctx, "k")
	store.Get(ctx, "k")
	assert.Equal(t, 1, backend.reads)

	*now = now.Add(DefaultCacheTTL - time.Second)
	store.Get(ctx, "k")
	assert.Equal(t, 1, backend.reads)

	*now = now.Add(time.Second)
	store.Get(ctx, "k")
	assert.Equal(t, 2, backend.reads)
}

func TestStore_BypassCacheAlwaysReads(t *testing.T) {
	store, backend, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, backend.MemoryBackend.Set(ctx, "k", `"v1"`))

	assert.Equal(t, "v1", store.Get(ctx, "k"))
	require.NoError(t, backend.MemoryBackend.Set(ctx, "k", `"v2"`))

	assert.Equal(t, "v1", store.Get(ctx, "k"))
	assert.Equal(t, "v2", store.Get(ctx, "k", BypassCache()))
	assert.Equal(t, 2, backend.reads)
}

func TestStore_ClearCache(t *testing.T) {
	store, backend, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, backend.MemoryBackend.Set(ctx, "k", `true`))

	store.Get(ctx, "k")
	store.ClearCache()
	store.Get(ctx, "k")

	assert.Equal(t, 2, backend.reads)
}

func TestStore_ReadErrorDegradesToNil(t *testing.T) {
	store, backend, _ := newTestStore(t)
	backend.err = errors.New("disk unavailable")

	assert.Nil(t, store.Get(context.Background(), "healthRecords"))
}

func TestStore_SetInvalidatesCache(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "currency", "USD"))
	assert.Equal(t, "USD", store.Get(ctx, "currency"))

	require.NoError(t, store.Set(ctx, "currency", "EUR"))
	assert.Equal(t, "EUR", store.Get(ctx, "currency"))

	require.NoError(t, store.Remove(ctx, "currency"))
	assert.Nil(t, store.Get(ctx, "currency"))
}

func TestMemoryBackend_LoadSeedFile(t *testing.T) {
	path := t.TempDir() + "/seed.json"
	require.NoError(t, writeFile(path, `{"currency":"USD","animalCategories":["Goats"]}`))

	backend := NewMemoryBackend()
	require.NoError(t, backend.LoadSeedFile(path))

	store := New(backend, 0, nil)
	assert.Equal(t, "USD", store.Get(context.Background(), "currency"))
	assert.Equal(t, []any{"Goats"}, store.Get(context.Background(), "animalCategories"))
}
