// Package mcp serves extracted plugin settings to MCP clients over stdio.
package mcp

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/plugspec/pkg/mcplog"
	"github.com/gnana997/plugspec/pkg/scanner"
)

const serverVersion = "0.1.0-dev"

// Backend scans trees and analyzes inline sources. *scanner.Scanner
// implements it.
type Backend interface {
	Run(ctx context.Context, rootDir string) (*scanner.ScanResult, error)
	AnalyzeSource(path string, source []byte) (*scanner.PluginSettings, error)
}

// Server exposes scan results as MCP tools. The tree is scanned on the
// first call that needs it; SetResult replaces the cached result, e.g.
// after a watch-mode rescan.
type Server struct {
	mcpServer *server.MCPServer
	backend   Backend
	root      string
	calls     *mcplog.Logger
	logger    *slog.Logger

	mu     sync.RWMutex
	result *scanner.ScanResult
}

// NewServer creates a server for the tree at rootDir. calls may be nil to
// disable the call log; a nil logger uses slog.Default().
func NewServer(backend Backend, rootDir string, calls *mcplog.Logger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{backend: backend, root: rootDir, calls: calls, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if calls != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}
	s.mcpServer = server.NewMCPServer("plugspec", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: listPluginsTool(), Handler: s.handleListPlugins},
		server.ServerTool{Tool: getPluginSettingsTool(), Handler: s.handleGetPluginSettings},
		server.ServerTool{Tool: extractSettingsTool(), Handler: s.handleExtractSettings},
		server.ServerTool{Tool: rescanTool(), Handler: s.handleRescan},
	)

	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// SetResult replaces the cached scan result.
func (s *Server) SetResult(result *scanner.ScanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// scanResult returns the cached result, scanning the tree if there is none.
func (s *Server) scanResult(ctx context.Context) (*scanner.ScanResult, error) {
	s.mu.RLock()
	result := s.result
	s.mu.RUnlock()
	if result != nil {
		return result, nil
	}
	return s.rescan(ctx)
}

func (s *Server) rescan(ctx context.Context) (*scanner.ScanResult, error) {
	result, err := s.backend.Run(ctx, s.root)
	if err != nil {
		return nil, err
	}
	s.SetResult(result)
	s.logger.Debug("scanned plugin tree",
		"root", s.root,
		"plugins", len(result.Plugins),
		"settings", result.Stats.SettingsExtracted)
	return result, nil
}
