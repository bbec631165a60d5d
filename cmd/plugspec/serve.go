package main

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/gnana997/plugspec/pkg/mcp"
	"github.com/gnana997/plugspec/pkg/mcplog"
	"github.com/gnana997/plugspec/pkg/scanner"
	"github.com/gnana997/plugspec/pkg/watch"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var callLog string
	var watchTree bool
	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Start an MCP server on stdio exposing the tree's plugin settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rootDir := rootArg(args)
			cfg, logger, err := g.load(cmd, rootDir)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("call-log") {
				cfg.MCP.CallLog = callLog
			}

			s, err := scanner.NewScanner(cfg.scanConfig(), logger)
			if err != nil {
				return err
			}
			defer s.Close()

			calls, err := mcplog.Open(cfg.MCP.CallLog)
			if err != nil {
				return err
			}
			defer calls.Close()

			srv := mcpserver.NewServer(s, rootDir, calls, logger)

			if watchTree {
				w, err := watch.New(s, rootDir, watch.Options{
					DebounceMs: cfg.Watch.DebounceMs,
					Exclude:    cfg.Exclude,
				}, func(result *scanner.ScanResult, err error) {
					if err == nil {
						srv.SetResult(result)
					}
				}, logger)
				if err != nil {
					return err
				}
				if err := w.Start(cmd.Context()); err != nil {
					return err
				}
				defer w.Stop()
			}

			logger.Info("serving MCP on stdio", "root", rootDir)
			return srv.ServeStdio()
		},
	}
	cmd.Flags().StringVar(&callLog, "call-log", "", "Append a JSONL record of every tool call to this file")
	cmd.Flags().BoolVar(&watchTree, "watch", false, "Rescan when plugin sources change")
	return cmd
}
