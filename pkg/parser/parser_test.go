package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/plugspec/pkg/util"
)

const settingsSource = `
import { definePluginSettings } from "@api/Settings";
import { OptionType } from "@utils/types";

export const settings = definePluginSettings({
    enabled: { type: OptionType.BOOLEAN, description: "Enable", default: true },
});
`

func TestParseTypeScript(t *testing.T) {
	manager := NewParserManager(util.DiscardLogger())
	defer manager.Close()

	tree, err := manager.Parse([]byte(settingsSource), LanguageTypeScript, false)
	require.NoError(t, err)
	require.NotNil(t, tree)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.False(t, root.HasError())
}

func TestParseTSX(t *testing.T) {
	manager := NewParserManager(util.DiscardLogger())
	defer manager.Close()

	source := []byte(`const Banner = () => <div className="x">hi</div>;`)
	tree, err := manager.Parse(source, LanguageTypeScript, true)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.Contains(t, root.ToSexp(), "jsx_element")
}

func TestParseJavaScript(t *testing.T) {
	manager := NewParserManager(util.DiscardLogger())
	defer manager.Close()

	tree, err := manager.Parse([]byte(`export default { name: "x" };`), LanguageJavaScript, false)
	require.NoError(t, err)
	defer tree.Close()

	assert.Equal(t, "program", tree.RootNode().Kind())
}

func TestParseFile(t *testing.T) {
	manager := NewParserManager(util.DiscardLogger())
	defer manager.Close()

	for _, path := range []string{"index.ts", "index.tsx", "settings.js", "shared.mjs"} {
		t.Run(path, func(t *testing.T) {
			tree, err := manager.ParseFile([]byte("const a = 1;"), path)
			require.NoError(t, err)
			defer tree.Close()
			assert.Equal(t, "program", tree.RootNode().Kind())
		})
	}

	_, err := manager.ParseFile([]byte("x"), "README.md")
	assert.Error(t, err)
}

func TestParse_UnknownLanguage(t *testing.T) {
	manager := NewParserManager(util.DiscardLogger())
	defer manager.Close()

	_, err := manager.Parse([]byte("x"), LanguageUnknown, false)
	assert.Error(t, err)
}

func TestParse_PartialTreeOnSyntaxError(t *testing.T) {
	manager := NewParserManager(util.DiscardLogger())
	defer manager.Close()

	tree, err := manager.Parse([]byte("const settings = { a: { type: 1, };"), LanguageTypeScript, false)
	require.NoError(t, err, "syntax errors still produce a tree")
	defer tree.Close()
	assert.True(t, tree.RootNode().HasError())
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]Language{
		"index.ts":      LanguageTypeScript,
		"index.TSX":     LanguageTypeScript,
		"lib.cts":       LanguageTypeScript,
		"native.js":     LanguageJavaScript,
		"component.jsx": LanguageJavaScript,
		"style.css":     LanguageUnknown,
		"Makefile":      LanguageUnknown,
	}
	for path, want := range cases {
		assert.Equal(t, want, DetectLanguage(path), path)
	}

	assert.True(t, IsTSXFile("a/b/index.tsx"))
	assert.False(t, IsTSXFile("a/b/index.ts"))
	assert.Equal(t, "typescript", LanguageTypeScript.String())
	assert.Equal(t, "unknown", LanguageUnknown.String())
}

func TestGetStats(t *testing.T) {
	manager := NewParserManagerWithSize(2, util.DiscardLogger())
	defer manager.Close()

	for i := 0; i < 3; i++ {
		tree, err := manager.Parse([]byte("let x = 1;"), LanguageTypeScript, false)
		require.NoError(t, err)
		tree.Close()
	}

	stats := manager.GetStats()
	assert.Equal(t, 3, stats.ParsesCalled)
	assert.Equal(t, 1, stats.ParsersCreated, "sequential parses reuse one parser")
}
