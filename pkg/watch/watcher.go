// Package watch rescans a plugin tree when its sources change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/plugspec/pkg/parser"
	"github.com/gnana997/plugspec/pkg/scanner"
)

// Rescanner is the part of scanner.Scanner the watcher drives.
type Rescanner interface {
	Invalidate(path string)
	Run(ctx context.Context, rootDir string) (*scanner.ScanResult, error)
}

// Handler receives the outcome of every rescan.
type Handler func(result *scanner.ScanResult, err error)

// Options configures a Watcher.
type Options struct {
	// DebounceMs is how long the tree must be quiet before a rescan.
	// Zero means 200.
	DebounceMs int
	// Exclude glob patterns, relative to the root. Matching paths never
	// trigger a rescan.
	Exclude []string
}

// ignoredDirs are never watched.
var ignoredDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
}

// Watcher rescans a tree after source files change.
//
// **Behavior:**
//   - Debounced: a burst of events produces one rescan
//   - Changed files are invalidated in the scanner's source cache first
//   - New directories are watched as they appear
//   - Rescans never overlap
//
// **Usage:**
//
//	w, err := watch.New(s, root, watch.Options{}, onScan, logger)
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(ctx); err != nil {
//	    return err
//	}
//	defer w.Stop()
type Watcher struct {
	fsw     *fsnotify.Watcher
	scanner Rescanner
	root    string
	opts    Options
	onScan  Handler
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]struct{}
	timer     *time.Timer

	rescanMu sync.Mutex
	rescans  int

	ctx      context.Context
	cancel   context.CancelFunc
	stopChan chan struct{}
	done     chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// Stats contains watcher statistics.
type Stats struct {
	PendingChanges int
	Rescans        int
	IsRunning      bool
}

// New creates a Watcher for rootDir. onScan may be nil. A nil logger uses
// slog.Default().
func New(s Rescanner, rootDir string, opts Options, onScan Handler, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DebounceMs <= 0 {
		opts.DebounceMs = 200
	}
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		fsw:      fsw,
		scanner:  s,
		root:     absRoot,
		opts:     opts,
		onScan:   onScan,
		logger:   logger,
		pending:  make(map[string]struct{}),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start watches every directory under the root and processes events in the
// background until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if w.started {
		return fmt.Errorf("watcher already started")
	}

	if err := w.addTree(w.root); err != nil {
		return err
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.started = true
	go w.eventLoop()

	w.logger.Info("file watcher started", "root", w.root)
	return nil
}

// Stop stops watching and waits for the event loop to exit. A rescan in
// progress is cancelled. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	close(w.stopChan)
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	err := w.fsw.Close()
	if started {
		<-w.done
	}
	w.logger.Info("file watcher stopped")
	return err
}

// Stats returns watcher statistics.
func (w *Watcher) Stats() Stats {
	w.pendingMu.Lock()
	pending := len(w.pending)
	w.pendingMu.Unlock()

	w.rescanMu.Lock()
	rescans := w.rescans
	w.rescanMu.Unlock()

	w.mu.Lock()
	running := w.started && !w.stopped
	w.mu.Unlock()

	return Stats{PendingChanges: pending, Rescans: rescans, IsRunning: running}
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignoredDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) eventLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.stopChan:
			return
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if event.Op == fsnotify.Chmod {
		return
	}

	if event.Has(fsnotify.Create) && isDir(path) {
		if w.ignoredDir(path) {
			return
		}
		if err := w.addTree(path); err != nil {
			w.logger.Warn("failed to watch new directory", "path", path, "error", err)
		}
		w.schedule(path)
		return
	}

	if w.ignoredFile(path) {
		return
	}

	w.logger.Debug("file event", "op", event.Op.String(), "file", path)
	w.schedule(path)
}

// schedule records path as changed and restarts the debounce timer.
func (w *Watcher) schedule(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(time.Duration(w.opts.DebounceMs)*time.Millisecond, w.rescan)
}

func (w *Watcher) rescan() {
	w.rescanMu.Lock()
	defer w.rescanMu.Unlock()

	w.pendingMu.Lock()
	changed := w.pending
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(changed) == 0 || w.ctx.Err() != nil {
		return
	}

	for path := range changed {
		w.scanner.Invalidate(path)
	}

	w.logger.Debug("rescanning", "root", w.root, "changed", len(changed))
	result, err := w.scanner.Run(w.ctx, w.root)
	w.rescans++
	if err != nil {
		w.logger.Warn("rescan failed", "root", w.root, "error", err)
	}
	if w.onScan != nil {
		w.onScan(result, err)
	}
}

func (w *Watcher) ignoredDir(path string) bool {
	if ignoredDirs[filepath.Base(path)] {
		return true
	}
	return w.excluded(path)
}

// ignoredFile reports whether a change to path is irrelevant: not a
// parseable source, inside an ignored directory, or excluded.
func (w *Watcher) ignoredFile(path string) bool {
	if parser.DetectLanguage(path) == parser.LanguageUnknown {
		return true
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return true
	}
	for dir := filepath.Dir(rel); dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
		if ignoredDirs[filepath.Base(dir)] {
			return true
		}
	}
	return w.excluded(path)
}

func (w *Watcher) excluded(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.opts.Exclude {
		if m, _ := doublestar.Match(pattern, rel); m {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
