package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/gnana997/plugspec/pkg/ast"
	"github.com/gnana997/plugspec/pkg/parser/queries"
	"github.com/gnana997/plugspec/pkg/settings"
	"github.com/gnana997/plugspec/pkg/symbols"
)

// Analyzer extracts the settings of one plugin at a time. It is safe for
// concurrent use.
type Analyzer struct {
	loader     *ProjectLoader
	qm         *queries.QueryManager
	knownEnums symbols.KnownEnums
	logger     *slog.Logger
}

// NewAnalyzer creates an analyzer backed by loader.
func NewAnalyzer(loader *ProjectLoader, qm *queries.QueryManager, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Analyzer{loader: loader, qm: qm, logger: logger}
	if loader != nil {
		a.knownEnums = loader.knownEnums
	}
	return a
}

// AnalyzePlugin loads p with its dependencies and walks its settings
// object. It returns ErrNoSettings when the plugin declares none.
func (a *Analyzer) AnalyzePlugin(p Plugin) (*PluginSettings, error) {
	project, err := a.loader.Load(p)
	if err != nil {
		return nil, fmt.Errorf("failed to load plugin %s: %w", p.Name, err)
	}
	defer project.Close()

	result, err := a.analyze(project.Entries(), project.Context)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", p.Name, err)
	}
	if result.Name == "" {
		result.Name = p.Name
	}
	result.Dir = p.Dir
	result.FilesLoaded = len(project.Files)
	return result, nil
}

// AnalyzeFile extracts settings from a single already-parsed file, resolving
// only against that file. It backs inline extraction, where there is no
// project on disk.
func (a *Analyzer) AnalyzeFile(f *ast.File) (*PluginSettings, error) {
	ctx := symbols.NewContext([]*ast.File{f},
		symbols.WithKnownEnums(a.knownEnums),
		symbols.WithLogger(a.logger))
	return a.analyze([]*ast.File{f}, ctx)
}

func (a *Analyzer) analyze(files []*ast.File, ctx *symbols.Context) (*PluginSettings, error) {
	var calls []SettingsCall
	for _, f := range files {
		found, err := FindSettingsCalls(a.qm, f)
		if err != nil {
			return nil, fmt.Errorf("settings query failed on %s: %w", f.Path, err)
		}
		calls = append(calls, found...)
	}

	def := readDefinition(calls, ctx)
	if def.root == nil {
		return nil, ErrNoSettings
	}

	walked, err := settings.Walk(def.root, ctx, a.logger)
	if err != nil {
		return nil, err
	}

	return &PluginSettings{
		Name:        def.name,
		Description: def.description,
		File:        def.root.File().Path,
		Location:    def.root.Location(),
		Settings:    walked.Root,
		Diagnostics: walked.Diagnostics,
	}, nil
}

// AnalyzeAll analyzes plugins in parallel on a bounded worker pool.
// Results are sorted by plugin name. A plugin that fails is logged and
// omitted; plugins without settings are counted separately. Cancelling ctx
// stops new plugins from starting.
func AnalyzeAll(
	ctx context.Context,
	plugins []Plugin,
	analyzer *Analyzer,
	numWorkers int,
	logger *slog.Logger,
) ([]PluginSettings, AnalysisCounts) {
	var counts AnalysisCounts
	if len(plugins) == 0 {
		return nil, counts
	}
	if logger == nil {
		logger = slog.Default()
	}
	if numWorkers <= 0 || numWorkers > len(plugins) {
		numWorkers = len(plugins)
	}

	jobs := make(chan Plugin, numWorkers*2)
	type resultOrError struct {
		result *PluginSettings
		err    error
		plugin string
	}
	results := make(chan resultOrError, numWorkers)

	// Start workers.
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				if err := ctx.Err(); err != nil {
					results <- resultOrError{err: err, plugin: p.Name}
					continue
				}
				res, err := analyzer.AnalyzePlugin(p)
				results <- resultOrError{result: res, err: err, plugin: p.Name}
			}
		}()
	}

	// Submit jobs.
	go func() {
		for _, p := range plugins {
			jobs <- p
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	// Collect results.
	var analyzed []PluginSettings
	for r := range results {
		switch {
		case errors.Is(r.err, ErrNoSettings):
			logger.Debug("plugin has no settings", "plugin", r.plugin)
			counts.WithoutSettings++
		case r.err != nil:
			logger.Warn("plugin analysis failed", "plugin", r.plugin, "error", r.err)
			counts.Failed++
		default:
			analyzed = append(analyzed, *r.result)
		}
	}

	sort.SliceStable(analyzed, func(i, j int) bool {
		if analyzed[i].Name != analyzed[j].Name {
			return analyzed[i].Name < analyzed[j].Name
		}
		return analyzed[i].Dir < analyzed[j].Dir
	})
	counts.Analyzed = len(analyzed)
	return analyzed, counts
}

// AnalysisCounts summarizes an AnalyzeAll batch.
type AnalysisCounts struct {
	Analyzed        int
	Failed          int
	WithoutSettings int
}
