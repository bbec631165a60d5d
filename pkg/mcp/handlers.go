package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/plugspec/pkg/render"
	"github.com/gnana997/plugspec/pkg/scanner"
)

// pluginSummary is one list_plugins row.
type pluginSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	File        string `json:"file,omitempty"`
	Settings    int    `json:"settings"`
	Diagnostics int    `json:"diagnostics,omitempty"`
}

func (s *Server) handleListPlugins(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.scanResult(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	keyword := strings.ToLower(strings.TrimSpace(req.GetString("keyword", "")))
	summaries := make([]pluginSummary, 0, len(result.Plugins))
	for _, p := range result.Plugins {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(p.Name), keyword) &&
			!strings.Contains(strings.ToLower(p.Description), keyword) {
			continue
		}
		summaries = append(summaries, pluginSummary{
			Name:        p.Name,
			Description: p.Description,
			File:        p.File,
			Settings:    p.Settings.Count(),
			Diagnostics: len(p.Diagnostics),
		})
	}
	return jsonResult(summaries)
}

func (s *Server) handleGetPluginSettings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}
	format, err := parseFormat(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.scanResult(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	for _, p := range result.Plugins {
		if strings.EqualFold(p.Name, name) {
			return renderPlugin(p, format)
		}
	}
	return mcp.NewToolResultError(fmt.Sprintf("plugin %q not found or declares no settings", name)), nil
}

func (s *Server) handleExtractSettings(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil || strings.TrimSpace(source) == "" {
		return mcp.NewToolResultError("source is required"), nil
	}
	format, err := parseFormat(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path := req.GetString("path", "index.tsx")

	ps, err := s.backend.AnalyzeSource(path, []byte(source))
	if errors.Is(err, scanner.ErrNoSettings) {
		return mcp.NewToolResultError("no definePluginSettings or definePlugin settings found"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("extraction failed: %v", err)), nil
	}
	if ps.Name == "" {
		ps.Name = "plugin"
	}
	return renderPlugin(*ps, format)
}

func (s *Server) handleRescan(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.rescan(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}
	return jsonResult(result.Stats)
}

func parseFormat(req mcp.CallToolRequest) (render.Format, error) {
	switch f := req.GetString("format", "json"); f {
	case "", "json":
		return render.FormatJSON, nil
	case "nix":
		return render.FormatNix, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or nix)", f)
	}
}

func renderPlugin(p scanner.PluginSettings, format render.Format) (*mcp.CallToolResult, error) {
	if format == render.FormatJSON {
		return jsonResult(render.PluginJSON(p))
	}
	var buf bytes.Buffer
	if err := render.Write(&buf, format, []scanner.PluginSettings{p}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
