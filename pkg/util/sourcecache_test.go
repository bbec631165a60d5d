package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSourceCache_ReadAndHit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.ts")
	writeFile(t, path, "export const a = 1;")

	cache, err := NewSourceCache(SourceCacheConfig{Logger: DiscardLogger()})
	require.NoError(t, err)

	data, err := cache.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "export const a = 1;", string(data))

	data, err = cache.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "export const a = 1;", string(data))

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.FilesCached)
}

func TestSourceCache_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.ts")
	writeFile(t, path, "")

	cache, err := NewSourceCache(SourceCacheConfig{Logger: DiscardLogger()})
	require.NoError(t, err)

	data, err := cache.Read(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestSourceCache_RevalidatesChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.ts")
	writeFile(t, path, "const a = 1;")

	cache, err := NewSourceCache(SourceCacheConfig{Logger: DiscardLogger()})
	require.NoError(t, err)

	_, err = cache.Read(path)
	require.NoError(t, err)

	writeFile(t, path, "const a = 12345;")
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	data, err := cache.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "const a = 12345;", string(data))
	assert.Equal(t, int64(2), cache.Stats().Misses)
}

func TestSourceCache_Eviction(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewSourceCache(SourceCacheConfig{MaxFiles: 2, Logger: DiscardLogger()})
	require.NoError(t, err)

	for _, name := range []string{"a.ts", "b.ts", "c.ts"} {
		path := filepath.Join(dir, name)
		writeFile(t, path, name)
		_, err := cache.Read(path)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, cache.Stats().FilesCached)
}

func TestSourceCache_Errors(t *testing.T) {
	cache, err := NewSourceCache(SourceCacheConfig{Logger: DiscardLogger()})
	require.NoError(t, err)

	_, err = cache.Read("/nonexistent/plugin/index.ts")
	assert.Error(t, err)

	_, err = cache.Read(t.TempDir())
	assert.Error(t, err)
}

func TestGetOptimalPoolSize(t *testing.T) {
	size := GetOptimalPoolSize()
	assert.GreaterOrEqual(t, size, 4)
	assert.LessOrEqual(t, size, 32)

	assert.Equal(t, 3, GetOptimalPoolSizeWithOverride(3))
	assert.Equal(t, size, GetOptimalPoolSizeWithOverride(0))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, LevelError, ParseLogLevel(" error "))
	assert.Equal(t, LevelInfo, ParseLogLevel("verbose"))
	assert.Equal(t, FormatJSON, ParseLogFormat("JSON"))
	assert.Equal(t, FormatText, ParseLogFormat(""))
}
