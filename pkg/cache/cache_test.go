package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	rc, err := NewRedisCache(WithRedisAddr(s.Addr()), WithRedisPrefix("test"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = rc.Close()
		s.Close()
	})
	return s, rc
}

func TestMemoryCache_NoExpiryByDefault(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "k", map[string]int{"a": 1}, 0))

	var got string
	require.NoError(t, mc.Get(ctx, "k", &got))
	assert.JSONEq(t, `{"a":1}`, got)

	ok, err := mc.Exists(ctx, "missing", "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache_MissAndExpiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryCleanup(0))
	defer mc.Close()

	var got string
	assert.ErrorIs(t, mc.Get(ctx, "nope", &got), ErrCacheMiss)

	require.NoError(t, mc.Set(ctx, "short", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	assert.ErrorIs(t, mc.Get(ctx, "short", &got), ErrCacheMiss)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", "1", 0))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", "2", 0))
	time.Sleep(time.Millisecond)
	var v string
	require.NoError(t, mc.Get(ctx, "a", &v))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", "3", 0))

	assert.Equal(t, 2, mc.Len())
	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "a", &v))
	assert.Equal(t, "1", v)
}

func TestMemoryCache_UnsupportedDest(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "k", "v", 0))
	var n int
	assert.ErrorIs(t, mc.Get(ctx, "k", &n), ErrUnsupportedDest)
}

func TestRedisCache_SetGet(t *testing.T) {
	ctx := context.Background()
	s, rc := setupRedis(t)

	require.NoError(t, rc.Set(ctx, "forecast:1:2", []byte(`{"x":1}`), 0))
	assert.True(t, s.Exists("test:forecast:1:2"))
	assert.Equal(t, time.Duration(0), s.TTL("test:forecast:1:2"))

	var raw []byte
	require.NoError(t, rc.Get(ctx, "forecast:1:2", &raw))
	assert.Equal(t, `{"x":1}`, string(raw))

	var miss string
	assert.ErrorIs(t, rc.Get(ctx, "forecast:9:9", &miss), ErrCacheMiss)

	ok, err := rc.Exists(ctx, "forecast:1:2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, rc.Health(ctx))
}

func TestLayeredCache_ReadThrough(t *testing.T) {
	ctx := context.Background()
	s, rc := setupRedis(t)
	lc := NewLayeredCache(rc, WithLayeredMemorySize(10), WithLayeredMemoryTTL(time.Minute))

	require.NoError(t, s.Set("test:pattern:1:winter", "from-l2"))

	var v string
	require.NoError(t, lc.Get(ctx, "pattern:1:winter", &v))
	assert.Equal(t, "from-l2", v)

	// served from L1 after the first read
	s.Del("test:pattern:1:winter")
	v = ""
	require.NoError(t, lc.Get(ctx, "pattern:1:winter", &v))
	assert.Equal(t, "from-l2", v)

	require.NoError(t, lc.Set(ctx, "pattern:1:summer", "written", 0))
	got, err := s.Get("test:pattern:1:summer")
	require.NoError(t, err)
	assert.Equal(t, "written", got)
}

func TestGenerateKeyWithParams(t *testing.T) {
	assert.Equal(t, "forecast:1:100", GenerateKeyWithParams("forecast", uint64(1), uint64(100)))
	assert.Equal(t, "pattern", GenerateKeyWithParams("pattern"))
}
