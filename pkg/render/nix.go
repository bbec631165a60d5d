package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gnana997/plugspec/pkg/scanner"
	"github.com/gnana997/plugspec/pkg/settings"
)

// DefaultNixPrefix is the option path plugins are declared under.
const DefaultNixPrefix = "plugspec.plugins"

// NixOptions controls WriteNix.
type NixOptions struct {
	// Prefix is the dotted option path, e.g. "programs.vesktop.plugins".
	// Empty means DefaultNixPrefix.
	Prefix string
}

var nixTypes = map[settings.Type]string{
	settings.TypeBoolean:        "types.bool",
	settings.TypeString:         "types.str",
	settings.TypeNullableString: "types.nullOr types.str",
	settings.TypeInteger:        "types.int",
	settings.TypeFloat:          "types.float",
	settings.TypeObject:         "types.attrs",
	settings.TypeStringList:     "types.listOf types.str",
	settings.TypeObjectList:     "types.listOf types.attrs",
}

var nixKeywords = map[string]bool{
	"if": true, "then": true, "else": true, "assert": true, "with": true,
	"let": true, "in": true, "rec": true, "inherit": true, "or": true,
}

// WriteNix writes a NixOS-style module declaring one option set per plugin:
// an `enable` flag and a `settings` attribute set of mkOption declarations.
// Unresolved defaults are omitted.
func WriteNix(w io.Writer, plugins []scanner.PluginSettings, opts NixOptions) error {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultNixPrefix
	}

	nw := &nixWriter{}
	nw.line("{ lib, ... }:")
	nw.line("with lib;")
	nw.open("{")
	nw.open(nixPath(prefix) + " = {")
	for _, p := range plugins {
		nw.open(NixAttrName(p.Name) + " = {")
		desc := p.Description
		if desc == "" {
			desc = p.Name
		}
		nw.line("enable = mkEnableOption " + NixString(desc) + ";")
		nw.open("settings = {")
		nw.group(p.Settings)
		nw.close("};")
		nw.close("};")
	}
	nw.close("};")
	nw.close("}")

	_, err := w.Write(nw.buf.Bytes())
	return err
}

type nixWriter struct {
	buf    bytes.Buffer
	indent int
}

func (nw *nixWriter) line(s string) {
	nw.buf.WriteString(strings.Repeat("  ", nw.indent))
	nw.buf.WriteString(s)
	nw.buf.WriteByte('\n')
}

func (nw *nixWriter) open(s string) {
	nw.line(s)
	nw.indent++
}

func (nw *nixWriter) close(s string) {
	nw.indent--
	nw.line(s)
}

func (nw *nixWriter) group(g *settings.Group) {
	if g == nil {
		return
	}
	for pair := g.Settings.Oldest(); pair != nil; pair = pair.Next() {
		switch e := pair.Value.(type) {
		case *settings.Setting:
			nw.setting(pair.Key, e)
		case *settings.Group:
			nw.open(NixAttrName(pair.Key) + " = {")
			nw.group(e)
			nw.close("};")
		}
	}
}

func (nw *nixWriter) setting(name string, s *settings.Setting) {
	nw.open(NixAttrName(name) + " = mkOption {")
	nw.line("type = " + NixType(s) + ";")
	if s.Default.IsResolved() {
		nw.line("default = " + NixValue(s.Default) + ";")
	}
	if s.Description != "" {
		nw.line("description = " + NixString(s.Description) + ";")
	}
	if s.Example != "" {
		nw.line("example = " + NixString(s.Example) + ";")
	}
	nw.close("};")
}

// NixType maps a setting to its Nix option type. Enumerations list their
// values; unknown types fall back to types.anything.
func NixType(s *settings.Setting) string {
	if s.Type == settings.TypeEnum {
		items := make([]string, 0, len(s.EnumValues))
		for _, lit := range s.EnumValues {
			items = append(items, nixListItem(NixValue(lit.Value())))
		}
		if len(items) == 0 {
			return "types.enum [ ]"
		}
		return "types.enum [ " + strings.Join(items, " ") + " ]"
	}
	if t, ok := nixTypes[s.Type]; ok {
		return t
	}
	return "types.anything"
}

// NixValue renders a resolved value as a Nix expression. Unresolved values
// render as null.
func NixValue(v settings.Value) string {
	switch v.Kind() {
	case settings.ValueString:
		s, _ := v.StringValue()
		return NixString(s)
	case settings.ValueNumber:
		n, _ := v.NumberValue()
		return settings.FormatNumber(n)
	case settings.ValueBool:
		b, _ := v.BoolValue()
		if b {
			return "true"
		}
		return "false"
	case settings.ValueArray:
		if v.Len() == 0 {
			return "[ ]"
		}
		items := make([]string, 0, v.Len())
		for _, item := range v.Items() {
			items = append(items, nixListItem(NixValue(item)))
		}
		return "[ " + strings.Join(items, " ") + " ]"
	case settings.ValueObject:
		if v.Len() == 0 {
			return "{ }"
		}
		var sb strings.Builder
		sb.WriteString("{ ")
		for pair := v.Fields().Oldest(); pair != nil; pair = pair.Next() {
			fmt.Fprintf(&sb, "%s = %s; ", NixAttrName(pair.Key), NixValue(pair.Value))
		}
		sb.WriteString("}")
		return sb.String()
	}
	return "null"
}

// nixListItem parenthesizes negative numbers, which would otherwise parse
// as subtraction inside a list.
func nixListItem(s string) string {
	if strings.HasPrefix(s, "-") {
		return "(" + s + ")"
	}
	return s
}

// NixString quotes s as a double-quoted Nix string.
func NixString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '$':
			if i+1 < len(s) && s[i+1] == '{' {
				sb.WriteString(`\$`)
			} else {
				sb.WriteByte(c)
			}
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// NixAttrName returns name as an attribute name, quoted unless it is a
// plain identifier.
func NixAttrName(name string) string {
	if isNixIdent(name) {
		return name
	}
	return NixString(name)
}

func isNixIdent(s string) bool {
	if s == "" || nixKeywords[s] {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case i > 0 && (c >= '0' && c <= '9' || c == '-' || c == '\''):
		default:
			return false
		}
	}
	return true
}

func nixPath(dotted string) string {
	parts := strings.Split(dotted, ".")
	for i, p := range parts {
		parts[i] = NixAttrName(p)
	}
	return "options." + strings.Join(parts, ".")
}
