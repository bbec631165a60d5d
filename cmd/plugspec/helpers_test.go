package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var clockTree = map[string]string{
	"src/utils/types.ts": `
export enum OptionType { STRING, NUMBER, BIGINT, BOOLEAN, SELECT, SLIDER, COMPONENT, CUSTOM }
export default function definePlugin<P>(p: P) { return p; }
`,
	"src/plugins/clock/index.ts": `
import { definePluginSettings } from "@api/Settings";
import definePlugin, { OptionType } from "@utils/types";

const settings = definePluginSettings({
    format: {
        type: OptionType.SELECT,
        description: "Time format",
        options: [
            { label: "12 hour", value: "12h", default: true },
            { label: "24 hour", value: "24h" },
        ],
    },
    seconds: { type: OptionType.BOOLEAN, description: "Show seconds", default: false },
});

export default definePlugin({
    name: "Clock",
    description: "Shows a clock",
    settings,
});
`,
	"src/plugins/empty/index.ts": `export default definePlugin({ name: "Empty", description: "Nothing to set" });`,
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

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(bytes.NewReader(nil))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
