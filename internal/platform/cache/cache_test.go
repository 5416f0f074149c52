package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationKey(t *testing.T) {
	a := GenerationKey("  Vegetarian ", []string{"Tomato", "basil", "tomato", " "})
	b := GenerationKey("vegetarian", []string{"basil", "tomato"})
	assert.Equal(t, a, b)
	assert.Contains(t, a, "generation:")

	assert.NotEqual(t, a, GenerationKey("vegan", []string{"basil", "tomato"}))
	assert.NotEqual(t, a, GenerationKey("vegetarian", []string{"basil"}))
	assert.NotEqual(t, GenerationKey("ab", nil), GenerationKey("a", []string{"b"}))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", []byte("v1"), time.Minute))
	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), got)

	// returned slices are copies
	got[0] = 'x'
	again, _, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("v1"), again)

	require.NoError(t, m.Set(ctx, "forever", []byte("v"), 0))
	_, ok, _ = m.Get(ctx, "forever")
	assert.True(t, ok)

	assert.NoError(t, m.Close())
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok, "Close drops entries")
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "short", []byte("v"), 20*time.Millisecond))
	require.NoError(t, m.Set(ctx, "long", []byte("v"), time.Hour))

	assert.Eventually(t, func() bool {
		_, ok, err := m.Get(ctx, "short")
		return err == nil && !ok
	}, time.Second, 10*time.Millisecond)

	_, ok, err := m.Get(ctx, "long")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	r, err := NewRedis(ctx, url)
	require.NoError(t, err)
	defer r.Close()

	key := GenerationKey("redis-test", []string{time.Now().String()})
	_, ok, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, key, []byte(`[]`), time.Minute))
	got, ok, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[]`), got)
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not a url")
	assert.ErrorContains(t, err, "invalid redis url")
}
