// Command plugspec extracts plugin settings schemas from a plugin source
// tree and renders them as JSON or a Nix module.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/plugspec/pkg/util"
)

const version = "0.1.0-dev"

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	workers    int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:          "plugspec",
		Short:        "Extract plugin settings schemas from TypeScript plugin sources",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Path to config file (default <dir>/"+configFileName+")")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Log format: text or json")
	root.PersistentFlags().IntVarP(&g.workers, "workers", "w", 0, "Plugins analyzed in parallel (0 = auto)")

	root.AddCommand(
		newScanCmd(g),
		newWatchCmd(g),
		newServeCmd(g),
		newInspectCmd(g),
		newSetupCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "plugspec %s\n", version)
		},
	}
}

// load reads the configuration for rootDir and applies the persistent flags
// the user set. Logs go to the command's stderr.
func (g *globalFlags) load(cmd *cobra.Command, rootDir string) (Config, *slog.Logger, error) {
	cfg, err := loadConfig(rootDir, g.configPath)
	if err != nil {
		return cfg, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = g.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = g.logFormat
	}
	if flags.Changed("workers") {
		if g.workers < 0 {
			return cfg, nil, fmt.Errorf("--workers must not be negative")
		}
		cfg.Workers = g.workers
	}

	logger := util.NewLogger(cfg.loggerConfig(cmd.ErrOrStderr()))
	return cfg, logger, nil
}

// rootArg returns the scanned directory: the first argument or ".".
func rootArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}
