package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/gnana997/plugspec/pkg/scanner"
	"github.com/gnana997/plugspec/pkg/settings"
	"github.com/gnana997/plugspec/pkg/util"
)

func samplePlugins() []scanner.PluginSettings {
	labels := settings.NewLabels()
	labels.Set(settings.NumberLiteral(1), "Fast")
	labels.Set(settings.NumberLiteral(2), "Slow")

	root := settings.NewGroup("")
	root.Settings.Set("mode", &settings.Setting{
		Name:        "mode",
		Type:        settings.TypeEnum,
		Kind:        settings.KindSelect,
		Description: "Mode",
		Default:     settings.Int(1),
		EnumValues:  []settings.EnumLiteral{settings.NumberLiteral(1), settings.NumberLiteral(2)},
		EnumLabels:  labels,
	})
	root.Settings.Set("prompt", &settings.Setting{
		Name:          "prompt",
		Type:          settings.TypeString,
		Kind:          settings.KindString,
		Default:       settings.Unresolved(),
		RestartNeeded: true,
	})
	appearance := settings.NewGroup("appearance")
	appearance.Settings.Set("color", &settings.Setting{
		Name:    "color",
		Type:    settings.TypeString,
		Default: settings.String("#fff"),
	})
	root.Settings.Set("appearance", appearance)

	return []scanner.PluginSettings{{
		Name:        "Alpha",
		Description: "First plugin",
		Settings:    root,
	}}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, samplePlugins()))

	want := `{
  "Alpha": {
    "description": "First plugin",
    "settings": {
      "mode": {
        "type": "enumeration",
        "kind": "SELECT",
        "description": "Mode",
        "default": 1,
        "enum": [
          1,
          2
        ],
        "enumLabels": {
          "1": "Fast",
          "2": "Slow"
        }
      },
      "prompt": {
        "type": "string",
        "kind": "STRING",
        "restartNeeded": true
      },
      "appearance": {
        "settings": {
          "color": {
            "type": "string",
            "default": "#fff"
          }
        }
      }
    }
  }
}
`
	assert.Equal(t, want, buf.String())
}

func TestWriteJSON_Diagnostics(t *testing.T) {
	plugins := []scanner.PluginSettings{{
		Name:     "Broken",
		Settings: settings.NewGroup(""),
		Diagnostics: []settings.Diagnostic{{
			Path:    "weird",
			Kind:    settings.UnsupportedPattern,
			Message: "not a setting",
		}},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, plugins))
	assert.JSONEq(t, `{"Broken": {"settings": {}, "diagnostics": [
		{"path": "weird", "kind": "UnsupportedPattern", "message": "not a setting"}
	]}}`, buf.String())
}

func TestWriteNix(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNix(&buf, samplePlugins(), NixOptions{}))

	want := `{ lib, ... }:
with lib;
{
  options.plugspec.plugins = {
    Alpha = {
      enable = mkEnableOption "First plugin";
      settings = {
        mode = mkOption {
          type = types.enum [ 1 2 ];
          default = 1;
          description = "Mode";
        };
        prompt = mkOption {
          type = types.str;
        };
        appearance = {
          color = mkOption {
            type = types.str;
            default = "#fff";
          };
        };
      };
    };
  };
}
`
	assert.Equal(t, want, buf.String())
}

func TestWriteNix_Prefix(t *testing.T) {
	var buf bytes.Buffer
	plugins := []scanner.PluginSettings{{Name: "Beta", Settings: settings.NewGroup("")}}
	require.NoError(t, WriteNix(&buf, plugins, NixOptions{Prefix: "programs.vesktop.plugins"}))

	out := buf.String()
	assert.Contains(t, out, "options.programs.vesktop.plugins = {")
	assert.Contains(t, out, `enable = mkEnableOption "Beta";`)
}

func TestNixType(t *testing.T) {
	tests := []struct {
		typ  settings.Type
		want string
	}{
		{settings.TypeBoolean, "types.bool"},
		{settings.TypeString, "types.str"},
		{settings.TypeNullableString, "types.nullOr types.str"},
		{settings.TypeInteger, "types.int"},
		{settings.TypeFloat, "types.float"},
		{settings.TypeObject, "types.attrs"},
		{settings.TypeStringList, "types.listOf types.str"},
		{settings.TypeObjectList, "types.listOf types.attrs"},
		{settings.TypeEnum, "types.enum [ ]"},
		{settings.Type(""), "types.anything"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.want, NixType(&settings.Setting{Type: tt.typ}))
		})
	}

	enum := &settings.Setting{
		Type: settings.TypeEnum,
		EnumValues: []settings.EnumLiteral{
			settings.StringLiteral("dark"),
			settings.NumberLiteral(-1),
			settings.BoolLiteral(false),
		},
	}
	assert.Equal(t, `types.enum [ "dark" (-1) false ]`, NixType(enum))
}

func TestNixValue(t *testing.T) {
	fields := orderedmap.New[string, settings.Value]()
	fields.Set("name", settings.String("a"))
	fields.Set("my-key", settings.Float(1.5))
	fields.Set("with space", settings.Bool(true))

	tests := []struct {
		name  string
		value settings.Value
		want  string
	}{
		{"null", settings.Null(), "null"},
		{"unresolved", settings.Unresolved(), "null"},
		{"negative", settings.Int(-3), "-3"},
		{"emptyArray", settings.EmptyArray(), "[ ]"},
		{"emptyObject", settings.EmptyObject(), "{ }"},
		{"array", settings.Array(settings.Int(1), settings.Int(-2), settings.String("x")), `[ 1 (-2) "x" ]`},
		{"object", settings.Object(fields), `{ name = "a"; my-key = 1.5; "with space" = true; }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NixValue(tt.value))
		})
	}
}

func TestNixString(t *testing.T) {
	assert.Equal(t, `"plain"`, NixString("plain"))
	assert.Equal(t, `"say \"hi\""`, NixString(`say "hi"`))
	assert.Equal(t, `"C:\\path"`, NixString(`C:\path`))
	assert.Equal(t, `"line\nnext"`, NixString("line\nnext"))
	assert.Equal(t, `"\${HOME} costs $5"`, NixString("${HOME} costs $5"))
}

func TestNixAttrName(t *testing.T) {
	assert.Equal(t, "enabled", NixAttrName("enabled"))
	assert.Equal(t, "_private", NixAttrName("_private"))
	assert.Equal(t, "kebab-case'", NixAttrName("kebab-case'"))
	assert.Equal(t, `"1stPlace"`, NixAttrName("1stPlace"))
	assert.Equal(t, `"with space"`, NixAttrName("with space"))
	assert.Equal(t, `"in"`, NixAttrName("in"))
	assert.Equal(t, `""`, NixAttrName(""))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatNix, f)

	_, err = ParseFormat("toml")
	assert.Error(t, err)
}

func TestWrite_FromSource(t *testing.T) {
	s, err := scanner.NewScanner(scanner.DefaultScanConfig(), util.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	src := `
import { definePluginSettings } from "@api/Settings";
import definePlugin, { OptionType } from "@utils/types";

const settings = definePluginSettings({
    loud: {
        type: OptionType.BOOLEAN,
        description: "Shout every message",
        default: true,
    },
});

export default definePlugin({
    name: "Shouter",
    description: "Makes messages louder",
    settings,
});
`
	ps, err := s.AnalyzeSource("index.ts", []byte(src))
	require.NoError(t, err)

	var nix bytes.Buffer
	require.NoError(t, Write(&nix, FormatNix, []scanner.PluginSettings{*ps}))
	assert.Contains(t, nix.String(), "Shouter = {")
	assert.Contains(t, nix.String(), `enable = mkEnableOption "Makes messages louder";`)
	assert.Contains(t, nix.String(), "loud = mkOption {\n          type = types.bool;\n          default = true;\n")

	var js bytes.Buffer
	require.NoError(t, Write(&js, FormatJSON, []scanner.PluginSettings{*ps}))
	assert.Contains(t, js.String(), `"default": true`)
}
