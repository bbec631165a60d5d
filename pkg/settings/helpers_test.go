package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gnana997/plugspec/pkg/ast"
	"github.com/gnana997/plugspec/pkg/parser"
	"github.com/gnana997/plugspec/pkg/symbols"
	"github.com/gnana997/plugspec/pkg/util"
)

const fixturePath = "src/plugins/fixture/index.ts"

// parseProject parses path → source pairs under /repo and indexes them.
func parseProject(t *testing.T, sources map[string]string) (map[string]*ast.File, *symbols.Context) {
	t.Helper()
	pm := parser.NewParserManager(util.DiscardLogger())
	t.Cleanup(func() { pm.Close() })

	files := make(map[string]*ast.File, len(sources))
	list := make([]*ast.File, 0, len(sources))
	for path, src := range sources {
		f, err := ast.Parse(pm, filepath.Join("/repo", path), []byte(src))
		require.NoError(t, err)
		t.Cleanup(f.Close)
		files[path] = f
		list = append(list, f)
	}
	ctx := symbols.NewContext(list, symbols.WithLogger(util.DiscardLogger()))
	return files, ctx
}

// parseSource parses a single fixture file.
func parseSource(t *testing.T, source string) (*ast.File, *symbols.Context) {
	t.Helper()
	files, ctx := parseProject(t, map[string]string{fixturePath: source})
	return files[fixturePath], ctx
}

// decl returns the initializer of the module-scope `const name`.
func decl(t *testing.T, f *ast.File, name string) *ast.Node {
	t.Helper()
	var found *ast.Node
	for _, stmt := range f.Root().NamedChildren() {
		if stmt.Type() == "export_statement" {
			stmt = stmt.Field("declaration")
		}
		if stmt == nil || stmt.Type() != "lexical_declaration" {
			continue
		}
		for _, d := range stmt.NamedChildren() {
			if d.Type() == "variable_declarator" && d.Field("name").Text() == name {
				found = d.Field("value")
			}
		}
	}
	require.NotNil(t, found, "const %q not found", name)
	return found
}

func literalValues(values []EnumLiteral) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v.Interface()
	}
	return out
}

func labelMap(labels *Labels) map[any]string {
	out := make(map[any]string)
	if labels == nil {
		return out
	}
	for pair := labels.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key.Interface()] = pair.Value
	}
	return out
}

// loadFixture parses testdata/name as the fixture file.
func loadFixture(t *testing.T, name string) (*ast.File, *symbols.Context) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return parseSource(t, string(data))
}
