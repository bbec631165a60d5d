package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/edsrzf/mmap-go"
	lru "github.com/hashicorp/golang-lru/v2"
)

// SourceCache keeps recently read source files in memory so that shared
// modules (e.g. a utils file imported by dozens of plugins) are read from disk
// once per scan.
//
// **Reads:**
//   - Files are read through a read-only memory mapping and copied out, so an
//     evicted entry never invalidates bytes a parse tree still points into
//   - Graceful fallback to os.ReadFile if mmap fails (pipes, special files)
//   - Entries are revalidated against size + mtime, so the cache is safe to
//     keep across watch-mode rescans
//
// **Bounds:**
//   - At most MaxFiles entries, least recently used evicted first
//
// Thread-safe: the underlying LRU is synchronized.
type SourceCache struct {
	entries *lru.Cache[string, sourceEntry]
	logger  *slog.Logger

	hits         atomic.Int64
	misses       atomic.Int64
	mmapFailures atomic.Int64
}

type sourceEntry struct {
	data    []byte
	size    int64
	modTime time.Time
}

// SourceCacheConfig controls SourceCache behavior.
type SourceCacheConfig struct {
	// MaxFiles is the maximum number of cached files. Zero means 4096.
	MaxFiles int

	// Logger for mmap fallbacks. If nil, uses slog.Default().
	Logger *slog.Logger
}

// SourceCacheStats tracks cache performance metrics.
type SourceCacheStats struct {
	Hits         int64
	Misses       int64
	MmapFailures int64
	FilesCached  int
}

// NewSourceCache creates a SourceCache.
func NewSourceCache(config SourceCacheConfig) (*SourceCache, error) {
	if config.MaxFiles <= 0 {
		config.MaxFiles = 4096
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	entries, err := lru.New[string, sourceEntry](config.MaxFiles)
	if err != nil {
		return nil, fmt.Errorf("failed to create source cache: %w", err)
	}

	return &SourceCache{entries: entries, logger: config.Logger}, nil
}

// Read returns the contents of path, from cache when the file is unchanged.
//
// The returned slice is shared; callers must not modify it.
func (c *SourceCache) Read(path string) ([]byte, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %q: %w", path, err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%q is a directory", path)
	}

	if entry, ok := c.entries.Get(path); ok {
		if entry.size == stat.Size() && entry.modTime.Equal(stat.ModTime()) {
			c.hits.Add(1)
			return entry.data, nil
		}
	}
	c.misses.Add(1)

	data, err := readMapped(path)
	if err != nil {
		c.mmapFailures.Add(1)
		c.logger.Debug("mmap failed, falling back to os.ReadFile", "file", path, "error", err)
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %q: %w", path, err)
		}
	}

	c.entries.Add(path, sourceEntry{data: data, size: stat.Size(), modTime: stat.ModTime()})
	return data, nil
}

// Invalidate drops path from the cache.
func (c *SourceCache) Invalidate(path string) {
	c.entries.Remove(path)
}

// Stats returns current cache metrics.
func (c *SourceCache) Stats() SourceCacheStats {
	return SourceCacheStats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		MmapFailures: c.mmapFailures.Load(),
		FilesCached:  c.entries.Len(),
	}
}

// readMapped maps path read-only and returns a private copy of its bytes.
func readMapped(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	// Zero-length mappings are rejected by the OS.
	if stat.Size() == 0 {
		return []byte{}, nil
	}

	mapped, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(mapped))
	copy(data, mapped)

	if err := mapped.Unmap(); err != nil {
		return nil, fmt.Errorf("failed to unmap %q: %w", path, err)
	}
	return data, nil
}
