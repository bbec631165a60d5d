package scanner

import (
	"github.com/gnana997/plugspec/pkg/ast"
	"github.com/gnana997/plugspec/pkg/parser"
	"github.com/gnana997/plugspec/pkg/parser/queries"
	"github.com/gnana997/plugspec/pkg/settings"
	"github.com/gnana997/plugspec/pkg/symbols"
)

const (
	defineSettingsFunc = "definePluginSettings"
	definePluginFunc   = "definePlugin"
)

// CallKind distinguishes the plugin definition helpers.
type CallKind int

const (
	CallDefineSettings CallKind = iota
	CallDefinePlugin
)

func (k CallKind) String() string {
	if k == CallDefinePlugin {
		return definePluginFunc
	}
	return defineSettingsFunc
}

// SettingsCall is a definePluginSettings({...}) or definePlugin({...}) call.
type SettingsCall struct {
	Kind CallKind
	// Argument is the object literal passed to the call.
	Argument *ast.Node
	Location string
}

// FindSettingsCalls returns the definePluginSettings and definePlugin calls
// in f, in source order.
func FindSettingsCalls(qm *queries.QueryManager, f *ast.File) ([]SettingsCall, error) {
	query, err := qm.GetQuery(f.Language, parser.IsTSXFile(f.Path), queries.QueryTypeSettingsCalls)
	if err != nil {
		return nil, err
	}
	matches, err := qm.ExecuteQuery(f.Tree(), query, f.Source)
	if err != nil {
		return nil, err
	}

	var calls []SettingsCall
	for _, m := range matches {
		callee, ok := m.Capture("call.callee")
		if !ok {
			continue
		}
		arg, ok := m.Capture("call.argument")
		if !ok {
			continue
		}

		var kind CallKind
		switch callee.Text {
		case defineSettingsFunc:
			kind = CallDefineSettings
		case definePluginFunc:
			kind = CallDefinePlugin
		default:
			continue
		}

		node := ast.FromTS(f, arg.Node)
		calls = append(calls, SettingsCall{Kind: kind, Argument: node, Location: node.Location()})
	}
	return calls, nil
}

// pluginDefinition is what a plugin's files declare about it.
type pluginDefinition struct {
	name        string
	description string
	// root is the settings object literal, or nil.
	root *ast.Node
}

// readDefinition reads the plugin definition out of the calls found in the
// plugin's files. The settings root is, in order of preference: the
// definePluginSettings call the definePlugin `settings` member refers to,
// the first definePluginSettings call, or the legacy definePlugin
// `options` object.
func readDefinition(calls []SettingsCall, ctx *symbols.Context) pluginDefinition {
	var def pluginDefinition
	var plugin *ast.Node
	var firstSettings *ast.Node

	for _, call := range calls {
		switch call.Kind {
		case CallDefinePlugin:
			if plugin == nil {
				plugin = call.Argument
			}
		case CallDefineSettings:
			if firstSettings == nil {
				firstSettings = call.Argument
			}
		}
	}

	if plugin != nil {
		def.name = stringMember(plugin, "name", ctx)
		def.description = stringMember(plugin, "description", ctx)
		if ref := plugin.PropertyValue("settings"); ref != nil {
			def.root = settingsObject(ref, ctx)
		}
	}
	if def.root == nil {
		def.root = firstSettings
	}
	if def.root == nil && plugin != nil {
		if options := plugin.PropertyValue("options"); options.Kind() == ast.KindObject {
			def.root = options
		}
	}
	return def
}

// settingsObject follows expr to the object literal passed to
// definePluginSettings, through identifiers, imports and method chains
// such as `.withPrivateSettings<T>()`.
func settingsObject(expr *ast.Node, ctx *symbols.Context) *ast.Node {
	n := ast.Unwrap(expr)
	for depth := 0; depth < 16; depth++ {
		switch n.Kind() {
		case ast.KindIdentifier:
			init, ok := ctx.ResolveIdentifierWithFallback(n)
			if !ok {
				return nil
			}
			n = ast.Unwrap(init)
		case ast.KindCall:
			if n.IsCallTo(defineSettingsFunc) {
				if arg := n.Argument(0); arg.Kind() == ast.KindObject {
					return arg
				}
				return nil
			}
			receiver, _, ok := n.MethodCall()
			if !ok {
				return nil
			}
			n = ast.Unwrap(receiver)
		default:
			return nil
		}
	}
	return nil
}

func stringMember(obj *ast.Node, name string, ctx *symbols.Context) string {
	value := obj.PropertyValue(name)
	if value == nil {
		return ""
	}
	lit, err := settings.ResolveEnumLikeValue(value, ctx)
	if err != nil {
		return ""
	}
	s, _ := lit.StringValue()
	return s
}
