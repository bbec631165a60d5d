package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gnana997/plugspec/pkg/render"
	"github.com/gnana997/plugspec/pkg/scanner"
	"github.com/gnana997/plugspec/pkg/symbols"
	"github.com/gnana997/plugspec/pkg/util"
)

const configFileName = ".plugspec.yaml"

// Config holds the contents of .plugspec.yaml after environment overrides.
type Config struct {
	PluginRoots     []string           `yaml:"plugin_roots"`
	Include         []string           `yaml:"include"`
	Exclude         []string           `yaml:"exclude"`
	Aliases         map[string]string  `yaml:"aliases"`
	KnownEnums      symbols.KnownEnums `yaml:"known_enums"`
	Workers         int                `yaml:"workers"`
	MaxProjectFiles int                `yaml:"max_project_files"`
	Output          OutputConfig       `yaml:"output"`
	Log             LogConfig          `yaml:"log"`
	Watch           WatchConfig        `yaml:"watch"`
	MCP             MCPConfig          `yaml:"mcp"`
}

type OutputConfig struct {
	Format    string `yaml:"format"`
	Path      string `yaml:"path"`
	NixPrefix string `yaml:"nix_prefix"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms"`
}

type MCPConfig struct {
	// CallLog is a JSONL file recording every tool call. Empty disables it.
	CallLog string `yaml:"call_log"`
}

func defaultConfig() Config {
	sc := scanner.DefaultScanConfig()
	lc := util.DefaultLoggerConfig()
	return Config{
		PluginRoots:     sc.PluginRoots,
		Include:         sc.Include,
		Exclude:         sc.Exclude,
		Aliases:         sc.Aliases,
		MaxProjectFiles: sc.MaxProjectFiles,
		Output:          OutputConfig{Format: string(render.FormatNix)},
		Log:             LogConfig{Level: string(lc.Level), Format: string(lc.Format)},
		Watch:           WatchConfig{DebounceMs: 200},
	}
}

// loadConfig builds the configuration for rootDir, applying in order: the
// defaults, the config file, and PLUGSPEC_* variables from the environment
// or rootDir/.env. The config file is explicitPath, or .plugspec.yaml in
// rootDir when that exists.
func loadConfig(rootDir, explicitPath string) (Config, error) {
	cfg := defaultConfig()

	path := explicitPath
	if path == "" {
		path = filepath.Join(rootDir, configFileName)
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && explicitPath == "":
	case err != nil:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	default:
		var file Config
		if err := yaml.Unmarshal(data, &file); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		cfg.merge(file)
	}

	if err := cfg.applyEnv(loadEnv(rootDir)); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// merge overrides c with every field set in o.
func (c *Config) merge(o Config) {
	if len(o.PluginRoots) > 0 {
		c.PluginRoots = o.PluginRoots
	}
	if len(o.Include) > 0 {
		c.Include = o.Include
	}
	if len(o.Exclude) > 0 {
		c.Exclude = o.Exclude
	}
	if len(o.Aliases) > 0 {
		merged := make(map[string]string, len(c.Aliases)+len(o.Aliases))
		for k, v := range c.Aliases {
			merged[k] = v
		}
		for k, v := range o.Aliases {
			merged[k] = v
		}
		c.Aliases = merged
	}
	if o.KnownEnums != nil {
		c.KnownEnums = o.KnownEnums
	}
	if o.Workers != 0 {
		c.Workers = o.Workers
	}
	if o.MaxProjectFiles != 0 {
		c.MaxProjectFiles = o.MaxProjectFiles
	}
	if o.Output.Format != "" {
		c.Output.Format = o.Output.Format
	}
	if o.Output.Path != "" {
		c.Output.Path = o.Output.Path
	}
	if o.Output.NixPrefix != "" {
		c.Output.NixPrefix = o.Output.NixPrefix
	}
	if o.Log.Level != "" {
		c.Log.Level = o.Log.Level
	}
	if o.Log.Format != "" {
		c.Log.Format = o.Log.Format
	}
	if o.Watch.DebounceMs != 0 {
		c.Watch.DebounceMs = o.Watch.DebounceMs
	}
	if o.MCP.CallLog != "" {
		c.MCP.CallLog = o.MCP.CallLog
	}
}

// loadEnv returns PLUGSPEC_* variables from rootDir/.env, overridden by the
// process environment.
func loadEnv(rootDir string) map[string]string {
	env := make(map[string]string)
	if values, err := godotenv.Read(filepath.Join(rootDir, ".env")); err == nil {
		for k, v := range values {
			if strings.HasPrefix(k, "PLUGSPEC_") {
				env[k] = v
			}
		}
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, "PLUGSPEC_") {
			env[k] = v
		}
	}
	return env
}

func (c *Config) applyEnv(env map[string]string) error {
	if v := strings.TrimSpace(env["PLUGSPEC_LOG_LEVEL"]); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(env["PLUGSPEC_LOG_FORMAT"]); v != "" {
		c.Log.Format = v
	}
	if v := strings.TrimSpace(env["PLUGSPEC_FORMAT"]); v != "" {
		c.Output.Format = v
	}
	if v := strings.TrimSpace(env["PLUGSPEC_WORKERS"]); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid PLUGSPEC_WORKERS %q", v)
		}
		c.Workers = n
	}
	return nil
}

func (c Config) scanConfig() scanner.ScanConfig {
	return scanner.ScanConfig{
		PluginRoots:     c.PluginRoots,
		Include:         c.Include,
		Exclude:         c.Exclude,
		Aliases:         c.Aliases,
		KnownEnums:      c.KnownEnums,
		Workers:         c.Workers,
		MaxProjectFiles: c.MaxProjectFiles,
	}
}

// loggerConfig writes to w, or to the default stderr when w is nil.
func (c Config) loggerConfig(w io.Writer) util.LoggerConfig {
	lc := util.DefaultLoggerConfig()
	lc.Level = util.ParseLogLevel(c.Log.Level)
	lc.Format = util.ParseLogFormat(c.Log.Format)
	if w != nil {
		lc.Output = w
	}
	return lc
}
