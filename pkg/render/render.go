// Package render writes extracted plugin settings as JSON or as a Nix
// module.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/gnana997/plugspec/pkg/scanner"
)

// Format selects an output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatNix  Format = "nix"
)

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatNix, "":
		return FormatNix, nil
	}
	return "", fmt.Errorf("unknown output format %q (want json or nix)", s)
}

// Write renders plugins in format to w.
func Write(w io.Writer, format Format, plugins []scanner.PluginSettings) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, plugins)
	case FormatNix:
		return WriteNix(w, plugins, NixOptions{})
	}
	return fmt.Errorf("unknown output format %q", format)
}
