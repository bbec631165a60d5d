// Package scanner discovers plugins in a source tree and extracts the
// settings each one declares.
package scanner

import (
	"errors"

	"github.com/gnana997/plugspec/pkg/settings"
	"github.com/gnana997/plugspec/pkg/symbols"
)

// ErrNoSettings is returned by AnalyzePlugin for plugins that declare no
// settings object.
var ErrNoSettings = errors.New("plugin declares no settings")

// ScanConfig configures discovery and analysis.
type ScanConfig struct {
	// PluginRoots are directories, relative to the scanned root, whose
	// direct children are plugins.
	PluginRoots []string
	// Include glob patterns for file matching, relative to the scanned root.
	Include []string
	// Exclude glob patterns.
	Exclude []string
	// Aliases map bare import prefixes to directories (relative to the
	// scanned root or absolute), e.g. "@utils" → "src/utils".
	Aliases map[string]string
	// KnownEnums replaces the built-in OptionType table when non-nil.
	KnownEnums symbols.KnownEnums
	// Workers is the number of plugins analyzed concurrently (0 = auto).
	Workers int
	// MaxProjectFiles bounds the files loaded per plugin, dependencies
	// included.
	MaxProjectFiles int
}

// DefaultScanConfig returns the configuration for a Vencord-style tree.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		PluginRoots: []string{"src/plugins", "src/userplugins"},
		Include: []string{
			"**/*.ts",
			"**/*.tsx",
			"**/*.mts",
			"**/*.js",
			"**/*.jsx",
			"**/*.mjs",
		},
		Exclude: []string{
			"node_modules/**",
			"**/node_modules/**",
			".git/**",
			"dist/**",
			"build/**",
			"**/*.d.ts",
			"**/*.test.*",
			"**/*.spec.*",
			"**/__tests__/**",
		},
		Aliases: map[string]string{
			"@api":        "src/api",
			"@components": "src/components",
			"@utils":      "src/utils",
			"@webpack":    "src/webpack",
			"@shared":     "src/shared",
		},
		MaxProjectFiles: 256,
	}
}

// Plugin is one discovered plugin.
type Plugin struct {
	// Name is the directory name, or the file stem of a single-file plugin.
	Name string
	// Dir is the plugin directory (the plugin root for single-file plugins).
	Dir string
	// Files are the plugin's own source files, absolute and sorted.
	Files      []string
	SingleFile bool
}

// PluginSettings is the extracted settings of one plugin.
type PluginSettings struct {
	// Name is the definePlugin name, falling back to Plugin.Name.
	Name        string
	Description string
	Dir         string
	// File and Location point at the settings object literal.
	File     string
	Location string
	Settings *settings.Group
	// Diagnostics lists settings that were skipped or degraded.
	Diagnostics []settings.Diagnostic
	// FilesLoaded counts the plugin's files plus loaded dependencies.
	FilesLoaded int
}

// ScanResult is the output of Scanner.Run.
type ScanResult struct {
	Plugins []PluginSettings
	Stats   ScanStats
}

// ScanStats tracks scan metrics.
type ScanStats struct {
	PluginsDiscovered      int   `json:"plugins_discovered"`
	PluginsAnalyzed        int   `json:"plugins_analyzed"`
	PluginsFailed          int   `json:"plugins_failed"`
	PluginsWithoutSettings int   `json:"plugins_without_settings"`
	SettingsExtracted      int   `json:"settings_extracted"`
	Diagnostics            int   `json:"diagnostics"`
	FilesParsed            int   `json:"files_parsed"`
	DiscoveryTimeMs        int64 `json:"discovery_time_ms"`
	AnalysisTimeMs         int64 `json:"analysis_time_ms"`
	TotalTimeMs            int64 `json:"total_time_ms"`
}
