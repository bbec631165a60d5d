package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/plugspec/pkg/parser"
)

// DiscoverPlugins lists the plugins under each configured plugin root of
// rootDir. Every directory directly under a root is a plugin made of the
// included files inside it; every loose source file directly under a root
// is a single-file plugin. Roots that do not exist are skipped, but at
// least one must.
func DiscoverPlugins(rootDir string, cfg ScanConfig) ([]Plugin, error) {
	if err := validatePatterns(cfg); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	var plugins []Plugin
	rootsFound := 0
	for _, root := range cfg.PluginRoots {
		pluginRoot := filepath.Join(absRoot, root)
		entries, err := os.ReadDir(pluginRoot)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read plugin root %s: %w", root, err)
		}
		rootsFound++

		for _, entry := range entries {
			path := filepath.Join(pluginRoot, entry.Name())
			rel := relSlash(absRoot, path)
			if matchesAny(cfg.Exclude, rel) {
				continue
			}

			if entry.IsDir() {
				files, err := discoverFiles(absRoot, path, cfg)
				if err != nil {
					return nil, err
				}
				if len(files) == 0 {
					continue
				}
				plugins = append(plugins, Plugin{Name: entry.Name(), Dir: path, Files: files})
				continue
			}

			if !entry.Type().IsRegular() || !isIncluded(cfg, rel) {
				continue
			}
			if parser.DetectLanguage(path) == parser.LanguageUnknown {
				continue
			}
			plugins = append(plugins, Plugin{
				Name:       strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
				Dir:        pluginRoot,
				Files:      []string{path},
				SingleFile: true,
			})
		}
	}

	if rootsFound == 0 {
		return nil, fmt.Errorf("no plugin roots %v found under %s", cfg.PluginRoots, absRoot)
	}

	sort.SliceStable(plugins, func(i, j int) bool {
		if plugins[i].Name != plugins[j].Name {
			return plugins[i].Name < plugins[j].Name
		}
		return plugins[i].Dir < plugins[j].Dir
	})
	return plugins, nil
}

// DiscoverFiles walks rootDir applying include/exclude globs from cfg.
// Returns a sorted slice of absolute file paths for deterministic output.
func DiscoverFiles(rootDir string, cfg ScanConfig) ([]string, error) {
	if err := validatePatterns(cfg); err != nil {
		return nil, err
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}
	return discoverFiles(absRoot, absRoot, cfg)
}

// discoverFiles walks dir, matching globs against paths relative to absRoot.
func discoverFiles(absRoot, dir string, cfg ScanConfig) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue walking on errors.
		}

		relPath := relSlash(absRoot, path)

		// Check exclusions (directories and files).
		if matchesAny(cfg.Exclude, relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !isIncluded(cfg, relPath) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func validatePatterns(cfg ScanConfig) error {
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}
	return nil
}

// isIncluded reports whether relPath matches an include pattern. An empty
// include list admits every file.
func isIncluded(cfg ScanConfig, relPath string) bool {
	return len(cfg.Include) == 0 || matchesAny(cfg.Include, relPath)
}

func matchesAny(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if m, _ := doublestar.PathMatch(pattern, relPath); m {
			return true
		}
	}
	return false
}

func relSlash(absRoot, path string) string {
	rel, err := filepath.Rel(absRoot, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}
