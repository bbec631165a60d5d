package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/plugspec/pkg/scanner"
	"github.com/gnana997/plugspec/pkg/symbols"
	"github.com/gnana997/plugspec/pkg/util"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(t.TempDir(), "")
	require.NoError(t, err)

	def := scanner.DefaultScanConfig()
	assert.Equal(t, def.PluginRoots, cfg.PluginRoots)
	assert.Equal(t, def.Aliases, cfg.Aliases)
	assert.Equal(t, "nix", cfg.Output.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 200, cfg.Watch.DebounceMs)
	assert.Nil(t, cfg.KnownEnums)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := `
plugin_roots: [plugins]
exclude: ["**/*.test.*"]
aliases:
  "@lib": lib
known_enums:
  OptionType: {STRING: 0, BOOLEAN: 3, SELECT: 4}
workers: 3
max_project_files: 64
output:
  format: json
  path: out/settings.json
log:
  level: debug
mcp:
  call_log: .plugspec/calls.jsonl
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(yaml), 0o644))

	cfg, err := loadConfig(dir, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"plugins"}, cfg.PluginRoots)
	assert.Equal(t, scanner.DefaultScanConfig().Include, cfg.Include, "unset lists keep defaults")
	assert.Equal(t, []string{"**/*.test.*"}, cfg.Exclude)
	assert.Equal(t, "lib", cfg.Aliases["@lib"])
	assert.Equal(t, "src/utils", cfg.Aliases["@utils"], "aliases merge with defaults")
	assert.Equal(t, symbols.KnownEnums{"OptionType": {"STRING": 0, "BOOLEAN": 3, "SELECT": 4}}, cfg.KnownEnums)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 64, cfg.MaxProjectFiles)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "out/settings.json", cfg.Output.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ".plugspec/calls.jsonl", cfg.MCP.CallLog)

	sc := cfg.scanConfig()
	assert.Equal(t, 3, sc.Workers)
	assert.Equal(t, cfg.KnownEnums, sc.KnownEnums)
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\n"), 0o644))

	cfg, err := loadConfig(t.TempDir(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)

	_, err = loadConfig(dir, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("workers: [1, 2\n"), 0o644))

	_, err := loadConfig(dir, "")
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("workers: 2\nlog: {level: warn}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("PLUGSPEC_WORKERS=5\nPLUGSPEC_FORMAT=json\nPLUGSPEC_LOG_LEVEL=error\nOTHER=ignored\n"), 0o644))
	t.Setenv("PLUGSPEC_LOG_LEVEL", "debug")

	cfg, err := loadConfig(dir, "")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Workers, ".env overrides the config file")
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "debug", cfg.Log.Level, "process environment overrides .env")
}

func TestLoadConfig_InvalidWorkersEnv(t *testing.T) {
	t.Setenv("PLUGSPEC_WORKERS", "many")
	_, err := loadConfig(t.TempDir(), "")
	assert.Error(t, err)
}

func TestConfig_LoggerConfig(t *testing.T) {
	cfg := defaultConfig()
	def := util.DefaultLoggerConfig()
	assert.Equal(t, string(def.Level), cfg.Log.Level)
	assert.Equal(t, string(def.Format), cfg.Log.Format)

	lc := cfg.loggerConfig(nil)
	assert.Equal(t, os.Stderr, lc.Output)
	assert.Equal(t, util.LevelInfo, lc.Level)

	cfg.Log = LogConfig{Level: "debug", Format: "json"}
	var buf bytes.Buffer
	lc = cfg.loggerConfig(&buf)
	assert.Equal(t, util.LevelDebug, lc.Level)
	assert.Equal(t, util.FormatJSON, lc.Format)
	assert.Same(t, &buf, lc.Output)

	util.NewLogger(lc).Debug("configured")
	assert.Contains(t, buf.String(), `"msg":"configured"`)
}
