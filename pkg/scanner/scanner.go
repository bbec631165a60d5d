package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gnana997/plugspec/pkg/ast"
	"github.com/gnana997/plugspec/pkg/parser"
	"github.com/gnana997/plugspec/pkg/parser/queries"
	"github.com/gnana997/plugspec/pkg/util"
)

// Scanner orchestrates the scan pipeline: plugin discovery, then settings
// analysis of every plugin.
type Scanner struct {
	cfg   ScanConfig
	pm    *parser.ParserManager
	qm    *queries.QueryManager
	cache *util.SourceCache
	log   *slog.Logger
}

// NewScanner creates a scanner with all required dependencies. The source
// cache is kept across runs, so repeated scans (watch mode) only re-read
// changed files.
func NewScanner(cfg ScanConfig, logger *slog.Logger) (*Scanner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := util.NewSourceCache(util.SourceCacheConfig{Logger: logger})
	if err != nil {
		return nil, err
	}
	pm := parser.NewParserManagerWithSize(cfg.Workers, logger)
	qm := queries.NewQueryManager(pm, logger)
	return &Scanner{cfg: cfg, pm: pm, qm: qm, cache: cache, log: logger}, nil
}

// Config returns the scan configuration.
func (s *Scanner) Config() ScanConfig { return s.cfg }

// Close releases the compiled queries and pooled parsers.
func (s *Scanner) Close() error {
	if err := s.qm.Close(); err != nil {
		return err
	}
	return s.pm.Close()
}

// Invalidate drops a changed file from the source cache.
func (s *Scanner) Invalidate(path string) {
	s.cache.Invalidate(path)
}

// CacheStats returns source cache metrics.
func (s *Scanner) CacheStats() util.SourceCacheStats {
	return s.cache.Stats()
}

// Analyzer returns an analyzer for plugins under rootDir.
func (s *Scanner) Analyzer(rootDir string) (*Analyzer, error) {
	loader, err := NewProjectLoader(s.pm, s.qm, s.cache, rootDir, s.cfg, s.log)
	if err != nil {
		return nil, err
	}
	return NewAnalyzer(loader, s.qm, s.log), nil
}

// Run discovers the plugins under rootDir and extracts their settings.
func (s *Scanner) Run(ctx context.Context, rootDir string) (*ScanResult, error) {
	totalStart := time.Now()
	stats := ScanStats{}

	// Phase 1: Plugin Discovery
	discoveryStart := time.Now()
	plugins, err := DiscoverPlugins(rootDir, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	stats.PluginsDiscovered = len(plugins)
	stats.DiscoveryTimeMs = time.Since(discoveryStart).Milliseconds()

	s.log.Info("discovery complete", "plugins", len(plugins), "ms", stats.DiscoveryTimeMs)

	if len(plugins) == 0 {
		stats.TotalTimeMs = time.Since(totalStart).Milliseconds()
		return &ScanResult{Stats: stats}, nil
	}

	// Phase 2: Settings Analysis
	analysisStart := time.Now()
	analyzer, err := s.Analyzer(rootDir)
	if err != nil {
		return nil, err
	}
	workers := util.GetOptimalPoolSizeWithOverride(s.cfg.Workers)
	parsesBefore := s.pm.GetStats().ParsesCalled
	results, counts := AnalyzeAll(ctx, plugins, analyzer, workers, s.log)
	stats.FilesParsed = s.pm.GetStats().ParsesCalled - parsesBefore
	stats.PluginsAnalyzed = counts.Analyzed
	stats.PluginsFailed = counts.Failed
	stats.PluginsWithoutSettings = counts.WithoutSettings
	for _, r := range results {
		stats.SettingsExtracted += r.Settings.Count()
		stats.Diagnostics += len(r.Diagnostics)
	}
	stats.AnalysisTimeMs = time.Since(analysisStart).Milliseconds()

	s.log.Info("analysis complete",
		"analyzed", counts.Analyzed,
		"failed", counts.Failed,
		"without_settings", counts.WithoutSettings,
		"settings", stats.SettingsExtracted,
		"diagnostics", stats.Diagnostics,
		"files_parsed", stats.FilesParsed,
		"ms", stats.AnalysisTimeMs)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats.TotalTimeMs = time.Since(totalStart).Milliseconds()
	return &ScanResult{Plugins: results, Stats: stats}, nil
}

// AnalyzeSource extracts settings from inline source. path only selects
// the grammar and labels locations; nothing is read from disk and imports
// are not followed.
func (s *Scanner) AnalyzeSource(path string, source []byte) (*PluginSettings, error) {
	f, err := ast.Parse(s.pm, path, source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	analyzer := NewAnalyzer(nil, s.qm, s.log)
	analyzer.knownEnums = s.cfg.KnownEnums
	return analyzer.AnalyzeFile(f)
}
