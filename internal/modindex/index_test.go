package modindex

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/compleat/pkg/version"
)

func TestIndex_Complete(t *testing.T) {
	root := sitePackages(t)
	ix := New(Options{Paths: []string{root}, Builtins: []string{"sys", "_io"}})

	all, err := ix.Complete(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"_io", "_speedups", "json5", "numpy", "sys"}, all)

	got, err := ix.Complete(context.Background(), "_")
	require.NoError(t, err)
	assert.Equal(t, []string{"_io", "_speedups"}, got)

	got, err = ix.Complete(context.Background(), "num")
	require.NoError(t, err)
	assert.Equal(t, []string{"numpy"}, got)

	got, err = ix.Complete(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIndex_Submodules(t *testing.T) {
	root := sitePackages(t)
	ix := New(Options{Paths: []string{root}})

	assert.Equal(t, []string{"core", "linalg", "random"}, ix.Submodules(context.Background(), "numpy"))
	assert.Nil(t, ix.Submodules(context.Background(), "json5"))
}

func TestIndex_UsesCache(t *testing.T) {
	root := sitePackages(t)
	cachePath := filepath.Join(t.TempDir(), "modules.msgpack")

	cache, err := NewCache(cachePath)
	require.NoError(t, err)
	first := New(Options{Paths: []string{root}, Cache: cache})
	_, err = first.Complete(context.Background(), "")
	require.NoError(t, err)

	// a module added after the scan is not seen while the cache is fresh
	touch(t, filepath.Join(root, "newmod.py"))

	reopened, err := NewCache(cachePath)
	require.NoError(t, err)
	second := New(Options{Paths: []string{root}, Cache: reopened})
	all, err := second.Complete(context.Background(), "")
	require.NoError(t, err)
	assert.NotContains(t, all, "newmod")

	require.NoError(t, second.Rehash())
	all, err = second.Complete(context.Background(), "")
	require.NoError(t, err)
	assert.Contains(t, all, "newmod")
}

func TestIndex_ExpiredCacheRescans(t *testing.T) {
	root := sitePackages(t)
	cache, err := NewCache("")
	require.NoError(t, err)

	ix := New(Options{Paths: []string{root}, Cache: cache, TTL: time.Hour})
	require.NoError(t, cache.Set(&Entry{
		Key:       ix.key,
		Modules:   []string{"stale"},
		Timestamp: time.Now().Add(-2 * time.Hour),
		Version:   version.Version,
	}))

	all, err := ix.Complete(context.Background(), "")
	require.NoError(t, err)
	assert.Contains(t, all, "numpy")
	assert.NotContains(t, all, "stale")
}

func TestIndex_TimeoutFallsBackToStaleCache(t *testing.T) {
	root := sitePackages(t)
	cache, err := NewCache("")
	require.NoError(t, err)

	ix := New(Options{Paths: []string{root}, Cache: cache, TTL: time.Hour, ScanTimeout: time.Nanosecond})
	require.NoError(t, cache.Set(&Entry{
		Key:       ix.key,
		Modules:   []string{"stale"},
		Timestamp: time.Now().Add(-2 * time.Hour),
		Version:   version.Version,
	}))
	time.Sleep(time.Millisecond)

	all, err := ix.Complete(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, all)
}

func TestIndex_TimeoutWithoutCacheIsPartial(t *testing.T) {
	root := sitePackages(t)
	ix := New(Options{Paths: []string{root}, Builtins: []string{"sys"}, ScanTimeout: time.Nanosecond})

	all, err := ix.Complete(context.Background(), "")
	require.NoError(t, err)
	assert.Contains(t, all, "sys")
}

func TestIndex_CancelledContext(t *testing.T) {
	ix := New(Options{Paths: []string{t.TempDir()}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ix.Complete(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCache_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cache.msgpack")
	c, err := NewCache(path)
	require.NoError(t, err)

	require.NoError(t, c.Set(&Entry{Key: "k", Modules: []string{"a", "b"}, Timestamp: time.Now(), Version: "v1"}))
	assert.True(t, c.IsValid("k", "v1", time.Hour))
	assert.False(t, c.IsValid("k", "v2", time.Hour))
	assert.False(t, c.IsValid("missing", "v1", time.Hour))

	reopened, err := NewCache(path)
	require.NoError(t, err)
	entry, ok := reopened.Get("k")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, entry.Modules)

	require.NoError(t, reopened.Clear())
	_, ok = reopened.Get("k")
	assert.False(t, ok)
}

func TestEntry_Fresh(t *testing.T) {
	now := time.Now()
	e := &Entry{Timestamp: now.Add(-time.Minute)}
	assert.True(t, e.Fresh(time.Hour, now))
	assert.False(t, e.Fresh(time.Second, now))
	assert.True(t, e.Fresh(-1, now))
}

func TestIndex_CacheEntry(t *testing.T) {
	root := sitePackages(t)
	cachePath := filepath.Join(t.TempDir(), "modules.msgpack")
	cache, err := NewCache(cachePath)
	require.NoError(t, err)

	ix := New(Options{Paths: []string{root}, Cache: cache})
	assert.Equal(t, DefaultTTL, ix.TTL())
	_, ok := ix.CacheEntry()
	assert.False(t, ok)

	_, err = ix.Complete(context.Background(), "")
	require.NoError(t, err)

	entry, ok := ix.CacheEntry()
	require.True(t, ok)
	assert.Contains(t, entry.Modules, "numpy")
	assert.Equal(t, version.Version, entry.Version)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, cachePath, cache.Path())

	_, ok = New(Options{Paths: []string{root}}).CacheEntry()
	assert.False(t, ok)
}
