package symbols

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/gnana997/plugspec/pkg/parser"
)

// ModuleResolver maps import specifiers to candidate file paths.
//
// Relative specifiers resolve against the importing file. Bare specifiers
// resolve through Aliases (e.g. "@utils" → "/repo/src/utils"); anything else
// is an external package and has no candidates.
type ModuleResolver struct {
	Aliases map[string]string
}

// IsRelative reports whether spec is a relative module specifier.
func IsRelative(spec string) bool {
	return spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// Candidates returns the paths that may hold the module spec imported from
// fromPath, in resolution order.
func (r ModuleResolver) Candidates(fromPath, spec string) []string {
	base, ok := r.basePath(fromPath, spec)
	if !ok {
		return nil
	}

	var candidates []string
	ext := strings.ToLower(filepath.Ext(base))
	if parser.DetectLanguage(base) != parser.LanguageUnknown {
		candidates = append(candidates, base)
		// ESM TypeScript imports name the emitted file: "./a.js" → "./a.ts"
		if ext == ".js" || ext == ".jsx" || ext == ".mjs" {
			stem := strings.TrimSuffix(base, filepath.Ext(base))
			candidates = append(candidates, stem+".ts", stem+".tsx", stem+".mts")
		}
	}
	for _, e := range parser.SourceExtensions() {
		candidates = append(candidates, base+e)
	}
	for _, e := range parser.SourceExtensions() {
		candidates = append(candidates, filepath.Join(base, "index"+e))
	}
	return candidates
}

func (r ModuleResolver) basePath(fromPath, spec string) (string, bool) {
	if IsRelative(spec) {
		return filepath.Clean(filepath.Join(filepath.Dir(fromPath), spec)), true
	}

	// Longest alias prefix wins so "@utils/discord" beats "@utils".
	aliases := make([]string, 0, len(r.Aliases))
	for alias := range r.Aliases {
		aliases = append(aliases, alias)
	}
	sort.Slice(aliases, func(i, j int) bool { return len(aliases[i]) > len(aliases[j]) })

	for _, alias := range aliases {
		target := r.Aliases[alias]
		if spec == alias {
			return filepath.Clean(target), true
		}
		if strings.HasPrefix(spec, strings.TrimSuffix(alias, "/")+"/") {
			rest := strings.TrimPrefix(spec, strings.TrimSuffix(alias, "/")+"/")
			return filepath.Clean(filepath.Join(target, rest)), true
		}
	}
	return "", false
}
