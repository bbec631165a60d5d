package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gnana997/plugspec/pkg/util"
)

// pluginTree is a small Vencord-style source tree.
var pluginTree = map[string]string{
	"src/utils/types.ts": `
export enum OptionType { STRING, NUMBER, BIGINT, BOOLEAN, SELECT, SLIDER, COMPONENT, CUSTOM }
export default function definePlugin<P>(p: P) { return p; }
`,
	"src/utils/labels.ts": `export const LABELS = { fast: "Fast" };`,

	"src/plugins/alpha/index.ts": `
import definePlugin, { OptionType } from "@utils/types";
import { settings } from "./settings";

export default definePlugin({
    name: "Alpha",
    description: "First plugin",
    settings,
});
`,
	"src/plugins/alpha/settings.ts": `
import { definePluginSettings } from "@api/Settings";
import { OptionType } from "@utils/types";
import { LABELS } from "@utils/labels";
import { Mode } from "./constants";

export const settings = definePluginSettings({
    mode: {
        type: OptionType.SELECT,
        description: "Mode",
        options: [
            { label: LABELS.fast, value: Mode.Fast, default: true },
            { label: "Slow", value: Mode.Slow },
        ],
    },
    volume: { type: OptionType.SLIDER, description: "Volume", default: 0.5 },
});
`,
	"src/plugins/alpha/constants.ts":  `export const enum Mode { Fast = 1, Slow }`,
	"src/plugins/alpha/alpha.test.ts": `test("alpha", () => {});`,

	"src/plugins/beta.ts": `
import { definePluginSettings } from "@api/Settings";

const settings = definePluginSettings({
    enabled: { type: OptionType.BOOLEAN, description: "Enabled", default: true },
});

export default definePlugin({ name: "Beta", settings });
`,

	"src/plugins/gamma/index.tsx": `
export default definePlugin({ name: "Gamma", description: "No settings", render: () => <div /> });
`,

	"src/plugins/legacy/index.js": `
const util = require("./util");
module.exports = definePlugin({
    name: "Legacy",
    options: { shout: { type: 3, description: "Shout", default: false } },
});
`,
	"src/plugins/legacy/util.js": `module.exports = {};`,

	"src/plugins/node_modules/dep/index.js": `module.exports = definePlugin({ name: "Dep" });`,
	"src/plugins/README.md":                 `# plugins`,
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newTestScanner(t *testing.T, cfg ScanConfig) *Scanner {
	t.Helper()
	s, err := NewScanner(cfg, util.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func pluginNames(plugins []Plugin) []string {
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name
	}
	return names
}

func fileNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}
