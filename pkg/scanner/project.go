package scanner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gnana997/plugspec/pkg/ast"
	"github.com/gnana997/plugspec/pkg/parser"
	"github.com/gnana997/plugspec/pkg/parser/queries"
	"github.com/gnana997/plugspec/pkg/symbols"
	"github.com/gnana997/plugspec/pkg/util"
)

// Project is a plugin's files plus the dependencies they import, indexed
// for symbol resolution.
type Project struct {
	Plugin Plugin
	// Files holds the plugin's own files first, then dependencies in
	// breadth-first order.
	Files   []*ast.File
	Context *symbols.Context
	// Truncated is set when the dependency walk hit MaxProjectFiles.
	Truncated bool

	entries int
}

// Entries returns the plugin's own parsed files.
func (p *Project) Entries() []*ast.File {
	return p.Files[:p.entries]
}

// Close releases every parse tree.
func (p *Project) Close() {
	for _, f := range p.Files {
		f.Close()
	}
}

// ProjectLoader parses plugins and the files they import.
//
// Relative imports and aliased imports (e.g. "@utils/text") are followed
// transitively; package imports are not. Sources are read through a shared
// SourceCache, so modules imported by many plugins are read once.
type ProjectLoader struct {
	pm         *parser.ParserManager
	qm         *queries.QueryManager
	cache      *util.SourceCache
	resolver   symbols.ModuleResolver
	knownEnums symbols.KnownEnums
	maxFiles   int
	logger     *slog.Logger
}

// NewProjectLoader creates a loader for plugins under rootDir. Relative
// aliases in cfg are resolved against rootDir.
func NewProjectLoader(
	pm *parser.ParserManager,
	qm *queries.QueryManager,
	cache *util.SourceCache,
	rootDir string,
	cfg ScanConfig,
	logger *slog.Logger,
) (*ProjectLoader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	aliases := make(map[string]string, len(cfg.Aliases))
	for alias, target := range cfg.Aliases {
		if !filepath.IsAbs(target) {
			target = filepath.Join(absRoot, target)
		}
		aliases[alias] = target
	}

	maxFiles := cfg.MaxProjectFiles
	if maxFiles <= 0 {
		maxFiles = DefaultScanConfig().MaxProjectFiles
	}

	return &ProjectLoader{
		pm:         pm,
		qm:         qm,
		cache:      cache,
		resolver:   symbols.ModuleResolver{Aliases: aliases},
		knownEnums: cfg.KnownEnums,
		maxFiles:   maxFiles,
		logger:     logger,
	}, nil
}

// Load parses the plugin's files and follows their imports breadth-first
// until MaxProjectFiles files are loaded. A plugin file that cannot be read
// or parsed is an error; a dependency that cannot is skipped.
func (l *ProjectLoader) Load(p Plugin) (*Project, error) {
	project := &Project{Plugin: p}
	visited := make(map[string]bool)

	for _, path := range p.Files {
		path = filepath.Clean(path)
		visited[path] = true

		f, err := l.parse(path)
		if err != nil {
			project.Close()
			return nil, err
		}
		project.Files = append(project.Files, f)
	}
	project.entries = len(project.Files)

	for i := 0; i < len(project.Files); i++ {
		f := project.Files[i]
		specs, err := ImportSpecifiers(l.qm, f)
		if err != nil {
			l.logger.Debug("import query failed", "file", f.Path, "error", err)
			continue
		}

		for _, spec := range specs {
			path, ok := l.resolve(f.Path, spec)
			if !ok || visited[path] {
				continue
			}
			visited[path] = true

			if len(project.Files) >= l.maxFiles {
				if !project.Truncated {
					l.logger.Debug("project file limit reached",
						"plugin", p.Name, "limit", l.maxFiles, "skipped", path)
				}
				project.Truncated = true
				continue
			}

			dep, err := l.parse(path)
			if err != nil {
				l.logger.Debug("skipping unreadable dependency", "plugin", p.Name, "file", path, "error", err)
				continue
			}
			project.Files = append(project.Files, dep)
		}
	}

	project.Context = symbols.NewContext(project.Files,
		symbols.WithAliases(l.resolver.Aliases),
		symbols.WithKnownEnums(l.knownEnums),
		symbols.WithLogger(l.logger))

	l.logger.Debug("project loaded",
		"plugin", p.Name,
		"files", len(project.Files),
		"truncated", project.Truncated)
	return project, nil
}

func (l *ProjectLoader) parse(path string) (*ast.File, error) {
	source, err := l.cache.Read(path)
	if err != nil {
		return nil, err
	}
	return ast.Parse(l.pm, path, source)
}

// resolve returns the first existing candidate file for spec.
func (l *ProjectLoader) resolve(from, spec string) (string, bool) {
	for _, candidate := range l.resolver.Candidates(from, spec) {
		stat, err := os.Stat(candidate)
		if err == nil && stat.Mode().IsRegular() {
			return filepath.Clean(candidate), true
		}
	}
	return "", false
}

// ImportSpecifiers lists the module specifiers f depends on: import and
// re-export sources and `require("...")` arguments, in source order.
func ImportSpecifiers(qm *queries.QueryManager, f *ast.File) ([]string, error) {
	query, err := qm.GetQuery(f.Language, parser.IsTSXFile(f.Path), queries.QueryTypeImports)
	if err != nil {
		return nil, err
	}
	matches, err := qm.ExecuteQuery(f.Tree(), query, f.Source)
	if err != nil {
		return nil, err
	}

	var specs []string
	seen := make(map[string]bool)
	for _, m := range matches {
		source, ok := m.Capture("module.source")
		if !ok {
			continue
		}
		if callee, ok := m.Capture("module.callee"); ok && callee.Text != "require" {
			continue
		}
		if !seen[source.Text] {
			seen[source.Text] = true
			specs = append(specs, source.Text)
		}
	}
	return specs, nil
}
