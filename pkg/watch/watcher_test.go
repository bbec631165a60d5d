package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/plugspec/pkg/scanner"
	"github.com/gnana997/plugspec/pkg/util"
)

type fakeScanner struct {
	mu          sync.Mutex
	invalidated []string
	runs        int
}

func (f *fakeScanner) Invalidate(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, path)
}

func (f *fakeScanner) Run(ctx context.Context, rootDir string) (*scanner.ScanResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	return &scanner.ScanResult{}, nil
}

func (f *fakeScanner) snapshot() ([]string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.invalidated...), f.runs
}

func setupTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"src/plugins/alpha", "node_modules/pkg"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "src/plugins/alpha/index.ts"), []byte("export {};"), 0o644))
	return root
}

func startWatcher(t *testing.T, root string, fake *fakeScanner, onScan Handler) *Watcher {
	t.Helper()
	w, err := New(fake, root, Options{DebounceMs: 20, Exclude: []string{"**/*.test.ts"}}, onScan, util.DiscardLogger())
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestWatcher_RescansOnChange(t *testing.T) {
	root := setupTree(t)
	fake := &fakeScanner{}
	scans := make(chan error, 8)
	w := startWatcher(t, root, fake, func(_ *scanner.ScanResult, err error) { scans <- err })

	path := filepath.Join(root, "src/plugins/alpha/index.ts")
	require.NoError(t, os.WriteFile(path, []byte("export const a = 1;"), 0o644))

	select {
	case err := <-scans:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no rescan after write")
	}

	invalidated, runs := fake.snapshot()
	assert.Contains(t, invalidated, path)
	assert.GreaterOrEqual(t, runs, 1)
	assert.GreaterOrEqual(t, w.Stats().Rescans, 1)
	assert.True(t, w.Stats().IsRunning)
}

func TestWatcher_NewDirectoryIsWatched(t *testing.T) {
	root := setupTree(t)
	fake := &fakeScanner{}
	startWatcher(t, root, fake, nil)

	dir := filepath.Join(root, "src/plugins/beta")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	require.Eventually(t, func() bool {
		_, runs := fake.snapshot()
		return runs >= 1
	}, 5*time.Second, 10*time.Millisecond)

	path := filepath.Join(dir, "index.ts")
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("export {};"), 0o644)
		invalidated, _ := fake.snapshot()
		return contains(invalidated, path)
	}, 5*time.Second, 50*time.Millisecond)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func TestWatcher_IgnoredPaths(t *testing.T) {
	root := setupTree(t)
	w, err := New(&fakeScanner{}, root, Options{Exclude: []string{"**/*.test.ts"}}, nil, util.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	assert.False(t, w.ignoredFile(filepath.Join(root, "src/plugins/alpha/index.ts")))
	assert.True(t, w.ignoredFile(filepath.Join(root, "src/plugins/alpha/README.md")))
	assert.True(t, w.ignoredFile(filepath.Join(root, "node_modules/pkg/index.js")))
	assert.True(t, w.ignoredFile(filepath.Join(root, "src/plugins/alpha/alpha.test.ts")))
	assert.True(t, w.ignoredDir(filepath.Join(root, ".git")))
	assert.False(t, w.ignoredDir(filepath.Join(root, "src")))
}

func TestWatcher_Lifecycle(t *testing.T) {
	root := setupTree(t)
	w, err := New(&fakeScanner{}, root, Options{}, nil, util.DiscardLogger())
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()))
	assert.True(t, w.Stats().IsRunning)

	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
	assert.False(t, w.Stats().IsRunning)
	assert.Error(t, w.Start(context.Background()))
}

func TestNew_Errors(t *testing.T) {
	_, err := New(&fakeScanner{}, t.TempDir(), Options{Exclude: []string{"[unclosed"}}, nil, util.DiscardLogger())
	assert.Error(t, err)

	w, err := New(&fakeScanner{}, filepath.Join(t.TempDir(), "missing"), Options{}, nil, util.DiscardLogger())
	require.NoError(t, err)
	assert.Error(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())
}
