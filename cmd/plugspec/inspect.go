package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/plugspec/pkg/scanner"
	"github.com/gnana997/plugspec/pkg/settings"
)

const maxWidth = 80

func newInspectCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [dir] <plugin>",
		Short: "Print one plugin's settings in human-readable form",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rootDir, name := ".", args[0]
			if len(args) == 2 {
				rootDir, name = args[0], args[1]
			}
			cfg, logger, err := g.load(cmd, rootDir)
			if err != nil {
				return err
			}

			s, err := scanner.NewScanner(cfg.scanConfig(), logger)
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.Run(cmd.Context(), rootDir)
			if err != nil {
				return err
			}
			for _, p := range result.Plugins {
				if strings.EqualFold(p.Name, name) {
					printPluginHuman(cmd.OutOrStdout(), p)
					return nil
				}
			}
			return fmt.Errorf("plugin %q not found or declares no settings", name)
		},
	}
}

// settingRow is one flattened setting; nested groups use dotted names.
type settingRow struct {
	name    string
	setting *settings.Setting
}

func flattenSettings(g *settings.Group, prefix string) []settingRow {
	var rows []settingRow
	if g == nil {
		return rows
	}
	for pair := g.Settings.Oldest(); pair != nil; pair = pair.Next() {
		switch e := pair.Value.(type) {
		case *settings.Setting:
			rows = append(rows, settingRow{name: prefix + pair.Key, setting: e})
		case *settings.Group:
			rows = append(rows, flattenSettings(e, prefix+pair.Key+".")...)
		}
	}
	return rows
}

// printPluginHuman prints a plugin summary and its settings table.
func printPluginHuman(w io.Writer, p scanner.PluginSettings) {
	header := p.Name
	if p.File != "" {
		header += "  [" + p.File + "]"
	}
	fmt.Fprintln(w, header)

	if p.Description != "" {
		fmt.Fprintln(w)
		printWrapped(w, p.Description, 0, maxWidth)
	}

	fmt.Fprintln(w)
	printSettingsSection(w, flattenSettings(p.Settings, ""))

	if len(p.Diagnostics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Diagnostics")
		for _, d := range p.Diagnostics {
			fmt.Fprintf(w, "  %-20s %s: %s\n", "["+d.Kind.String()+"]", d.Path, d.Message)
		}
	}
}

// printSettingsSection renders the settings table with dynamic column widths.
func printSettingsSection(w io.Writer, rows []settingRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "Settings  (none)")
		return
	}
	fmt.Fprintln(w, "Settings")

	nameW, typeW, defW := len("NAME"), len("TYPE"), len("DEFAULT")
	for _, r := range rows {
		nameW = max(nameW, len(r.name))
		typeW = max(typeW, len(r.setting.Type))
		defW = max(defW, len(displayDefault(r.setting.Default)))
	}

	fmt.Fprintf(w, "  %-*s  %-*s  %-*s\n", nameW, "NAME", typeW, "TYPE", defW, "DEFAULT")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("─", nameW+typeW+defW+4))

	pad := strings.Repeat(" ", nameW)
	for _, r := range rows {
		s := r.setting
		restart := ""
		if s.RestartNeeded {
			restart = " [restart]"
		}
		fmt.Fprintf(w, "  %-*s  %-*s  %-*s%s\n",
			nameW, r.name, typeW, s.Type, defW, displayDefault(s.Default), restart)

		if s.Description != "" {
			fmt.Fprintf(w, "  %s  %s\n", pad, s.Description)
		}
		if len(s.EnumValues) > 0 {
			fmt.Fprintf(w, "  %s  allowed: %s\n", pad, wrapAllowed(allowedValues(s), nameW+13))
		}
	}
}

func displayDefault(v settings.Value) string {
	if !v.IsResolved() {
		return "—"
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return "—"
	}
	return string(data)
}

// allowedValues joins enum values, with their labels when they differ.
func allowedValues(s *settings.Setting) string {
	parts := make([]string, 0, len(s.EnumValues))
	for _, lit := range s.EnumValues {
		part := lit.String()
		if s.EnumLabels != nil {
			if label, ok := s.EnumLabels.Get(lit); ok && label != part {
				part += " (" + label + ")"
			}
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " | ")
}

// wrapAllowed wraps the allowed values string if it exceeds maxWidth.
func wrapAllowed(allowed string, indent int) string {
	if indent+len(allowed) <= maxWidth {
		return allowed
	}
	parts := strings.Split(allowed, " | ")
	var sb strings.Builder
	lineLen := indent
	for i, part := range parts {
		addition := len(part)
		if i > 0 {
			addition += 3
		}
		if lineLen+addition > maxWidth && i > 0 {
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", indent))
			lineLen = indent
		}
		if i > 0 {
			sb.WriteString(" | ")
			lineLen += 3
		}
		sb.WriteString(part)
		lineLen += len(part)
	}
	return sb.String()
}

// printWrapped prints text word-wrapped at width with the given left indent.
func printWrapped(w io.Writer, text string, indent, width int) {
	prefix := strings.Repeat(" ", indent)
	line := prefix
	for _, word := range strings.Fields(text) {
		switch {
		case line == prefix:
			line += word
		case len(line)+len(word)+1 > width:
			fmt.Fprintln(w, line)
			line = prefix + word
		default:
			line += " " + word
		}
	}
	if line != prefix {
		fmt.Fprintln(w, line)
	}
}
