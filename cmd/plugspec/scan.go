package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnana997/plugspec/pkg/render"
	"github.com/gnana997/plugspec/pkg/scanner"
	"github.com/gnana997/plugspec/pkg/watch"
)

// outputFlags select the format and destination of rendered output.
type outputFlags struct {
	format    string
	out       string
	nixPrefix string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "Output format: nix or json (default from config, else nix)")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "Write output to a file instead of stdout")
	cmd.Flags().StringVar(&o.nixPrefix, "nix-prefix", "", "Option path for the Nix module (default "+render.DefaultNixPrefix+")")
}

// apply overrides cfg.Output with the flags the user set.
func (o *outputFlags) apply(cmd *cobra.Command, cfg *Config) {
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = o.format
	}
	if cmd.Flags().Changed("out") {
		cfg.Output.Path = o.out
	}
	if cmd.Flags().Changed("nix-prefix") {
		cfg.Output.NixPrefix = o.nixPrefix
	}
}

func newScanCmd(g *globalFlags) *cobra.Command {
	var of outputFlags
	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Scan a plugin tree and render its settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rootDir := rootArg(args)
			cfg, logger, err := g.load(cmd, rootDir)
			if err != nil {
				return err
			}
			of.apply(cmd, &cfg)

			s, err := scanner.NewScanner(cfg.scanConfig(), logger)
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.Run(cmd.Context(), rootDir)
			if err != nil {
				return err
			}
			logStats(logger, result.Stats)
			return writeOutput(cmd.OutOrStdout(), cfg.Output, result.Plugins)
		},
	}
	of.register(cmd)
	return cmd
}

func newWatchCmd(g *globalFlags) *cobra.Command {
	var of outputFlags
	var debounceMs int
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Rescan and re-render whenever plugin sources change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rootDir := rootArg(args)
			cfg, logger, err := g.load(cmd, rootDir)
			if err != nil {
				return err
			}
			of.apply(cmd, &cfg)
			if cmd.Flags().Changed("debounce") {
				cfg.Watch.DebounceMs = debounceMs
			}

			s, err := scanner.NewScanner(cfg.scanConfig(), logger)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			stdout := cmd.OutOrStdout()
			onScan := func(result *scanner.ScanResult, err error) {
				if err != nil {
					return
				}
				logStats(logger, result.Stats)
				if err := writeOutput(stdout, cfg.Output, result.Plugins); err != nil {
					logger.Error("failed to write output", "error", err)
				}
			}

			result, err := s.Run(ctx, rootDir)
			onScan(result, err)
			if err != nil {
				return err
			}

			w, err := watch.New(s, rootDir, watch.Options{
				DebounceMs: cfg.Watch.DebounceMs,
				Exclude:    cfg.Exclude,
			}, onScan, logger)
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			<-ctx.Done()
			return nil
		},
	}
	of.register(cmd)
	cmd.Flags().IntVar(&debounceMs, "debounce", 0, "Quiet period in milliseconds before a rescan (default 200)")
	return cmd
}

// writeOutput renders plugins per out, to out.Path or to stdout.
func writeOutput(stdout io.Writer, out OutputConfig, plugins []scanner.PluginSettings) error {
	format, err := render.ParseFormat(out.Format)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case render.FormatNix:
		err = render.WriteNix(&buf, plugins, render.NixOptions{Prefix: out.NixPrefix})
	default:
		err = render.Write(&buf, format, plugins)
	}
	if err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}

	if out.Path == "" {
		_, err = stdout.Write(buf.Bytes())
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(out.Path, buf.Bytes(), 0o644)
}

func logStats(logger *slog.Logger, stats scanner.ScanStats) {
	logger.Info("scan complete",
		"plugins", stats.PluginsAnalyzed,
		"without_settings", stats.PluginsWithoutSettings,
		"failed", stats.PluginsFailed,
		"settings", stats.SettingsExtracted,
		"diagnostics", stats.Diagnostics,
		"duration_ms", stats.TotalTimeMs)
}
