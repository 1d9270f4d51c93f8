package cacheinfra

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestMemoryStore(t *testing.T) (*MemoryStore, *fakeClock) {
	t.Helper()
	store, err := NewMemoryStore(DefaultMemoryConfig())
	require.NoError(t, err)
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store.now = clock.now
	return store, clock
}

func TestMemoryStore_GetSetExpiry(t *testing.T) {
	store, clock := newTestMemoryStore(t)
	ctx := context.Background()

	value := []byte("payload")
	require.NoError(t, store.Set(ctx, "k", value, 10*time.Minute))
	value[0] = 'X'

	data, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("payload"), data, "stored bytes are a copy")

	clock.t = clock.t.Add(10 * time.Minute)
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_KeysAndDelete(t *testing.T) {
	store, _ := newTestMemoryStore(t)
	ctx := context.Background()

	for _, k := range []string{"cache:getCategory:a", "cache:getCategory:b", "cache:getCategoryProductCount:a"} {
		require.NoError(t, store.Set(ctx, k, []byte("x"), time.Hour))
	}

	keys, err := store.Keys(ctx, "cache:getCategory:")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"cache:getCategory:a", "cache:getCategory:b"}, keys)

	require.NoError(t, store.Delete(ctx, keys...))
	all, err := store.Keys(ctx, "cache:")
	require.NoError(t, err)
	assert.Equal(t, []string{"cache:getCategoryProductCount:a"}, all)
}

func TestMemoryConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MemoryConfig)
		field  string
	}{
		{name: "defaults are valid", mutate: func(*MemoryConfig) {}},
		{name: "zero capacity", mutate: func(c *MemoryConfig) { c.Capacity = 0 }, field: "Capacity"},
		{name: "zero shards", mutate: func(c *MemoryConfig) { c.NumShards = 0 }, field: "NumShards"},
		{name: "zero ttl", mutate: func(c *MemoryConfig) { c.MaxTTL = 0 }, field: "MaxTTL"},
		{name: "eviction too high", mutate: func(c *MemoryConfig) { c.EvictionPercentage = 101 }, field: "EvictionPercentage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMemoryConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestMemoryConfig_CoverTTLs(t *testing.T) {
	base := DefaultMemoryConfig()

	assert.Equal(t, base.MaxTTL, base.CoverTTLs(time.Minute, 10*time.Minute).MaxTTL, "shorter ttls keep the default")
	assert.Equal(t, 6*time.Hour, base.CoverTTLs(time.Minute, 6*time.Hour).MaxTTL)
	assert.Equal(t, 2*time.Hour, base.MaxTTL, "receiver is not modified")
}

func TestMemoryStore_LongTTL(t *testing.T) {
	store, err := NewMemoryStore(DefaultMemoryConfig().CoverTTLs(6 * time.Hour))
	require.NoError(t, err)
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store.now = clock.now
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 5*time.Hour))

	clock.t = clock.t.Add(3 * time.Hour)
	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)

	clock.t = clock.t.Add(2 * time.Hour)
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_TTLCappedAtMax(t *testing.T) {
	store, clock := newTestMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 5*time.Hour))

	clock.t = clock.t.Add(DefaultMemoryConfig().MaxTTL)
	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}
