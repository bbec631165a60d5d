package settings

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gnana997/plugspec/pkg/ast"
	"github.com/gnana997/plugspec/pkg/symbols"
)

// maxGroupDepth bounds group nesting.
const maxGroupDepth = 16

// Walk reduces a settings object literal to a tree of groups and settings.
//
// Each member is classified once: an object with `type` or `description`
// is a setting; an object with nested object members and neither is a
// group; an object with only `default` is a setting; anything else is
// skipped with a diagnostic. Identifier members and spreads are resolved.
// Hidden settings are dropped.
//
// Per-setting extraction failures degrade to best-effort values and are
// reported as diagnostics. Only a root that is not an object is an error.
func Walk(root *ast.Node, ctx *symbols.Context, logger *slog.Logger) (*WalkResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w := &walker{
		r:        newResolver(ctx),
		logger:   logger,
		pipeline: DefaultPipeline(),
	}

	obj := w.r.follow(root, 0)
	if obj.Kind() != ast.KindObject {
		return nil, newError(InvalidNodeType, obj, "settings root is %s, not an object literal", obj.Kind())
	}

	group := w.walkGroup(obj, "", nil, 0)
	return &WalkResult{Root: group, Diagnostics: w.diagnostics}, nil
}

type walker struct {
	r           *resolver
	logger      *slog.Logger
	pipeline    Pipeline
	diagnostics []Diagnostic
}

type entryClass int

const (
	classSkip entryClass = iota
	classLeaf
	classGroup
)

func (w *walker) walkGroup(obj *ast.Node, name string, path []string, depth int) *Group {
	group := NewGroup(name)
	if depth > maxGroupDepth {
		w.report(path, newError(UnsupportedPattern, obj, "groups nest deeper than %d levels", maxGroupDepth))
		return group
	}

	for _, m := range w.members(obj, path, 0) {
		childPath := append(append([]string{}, path...), m.Name)
		if m.Name == "" {
			w.report(path, newError(UnsupportedPattern, m.Node, "setting with a computed key"))
			continue
		}
		if m.Kind == ast.MemberGetter || m.Kind == ast.MemberMethod {
			w.report(childPath, newError(UnsupportedPattern, m.Node, "setting %q is an accessor", m.Name))
			continue
		}

		value := w.r.follow(m.Value, 0)
		if value.Kind() != ast.KindObject {
			w.report(childPath, newError(UnsupportedPattern, m.Node, "setting %q is %s, not an object literal", m.Name, value.Kind()))
			continue
		}

		switch w.classify(value) {
		case classLeaf:
			setting := w.leaf(m.Name, value, childPath)
			if setting.Hidden {
				w.logger.Debug("skipping hidden setting", "setting", strings.Join(childPath, "."))
				continue
			}
			group.Settings.Set(m.Name, setting)
		case classGroup:
			group.Settings.Set(m.Name, w.walkGroup(value, m.Name, childPath, depth+1))
		default:
			w.report(childPath, newError(UnsupportedPattern, value, "%q is neither a setting nor a group", m.Name))
		}
	}
	return group
}

// members lists the members of obj with spreads of resolvable object
// literals expanded in place.
func (w *walker) members(obj *ast.Node, path []string, depth int) []ast.Member {
	var out []ast.Member
	for _, m := range obj.Members() {
		if m.Kind != ast.MemberSpread {
			out = append(out, m)
			continue
		}
		spread, ok := w.r.resolveObjectLiteral(m.Value, 0)
		if !ok || depth >= maxDepth {
			w.report(path, newError(UnresolvableSymbol, m.Node, "cannot resolve spread %q", m.Node.Text()))
			continue
		}
		out = append(out, w.members(spread, path, depth+1)...)
	}
	return out
}

// classify reports whether obj is a setting or a group of settings.
// Object-valued `default` and `options` members are data, so
// `{ default: { a: 1 } }` is a setting with an object default.
func (w *walker) classify(obj *ast.Node) entryClass {
	if obj.HasProperty("type") || obj.HasProperty("description") {
		return classLeaf
	}
	for _, m := range obj.Members() {
		if m.Kind != ast.MemberProperty && m.Kind != ast.MemberShorthand {
			continue
		}
		if m.Name == "default" || m.Name == "options" {
			continue
		}
		if w.r.follow(m.Value, 0).Kind() == ast.KindObject {
			return classGroup
		}
	}
	if obj.HasProperty("default") {
		return classLeaf
	}
	return classSkip
}

func (w *walker) leaf(name string, desc *ast.Node, path []string) *Setting {
	facts := gatherFacts(desc, w.r.ctx, func(err error) { w.report(path, err) })
	state := w.pipeline.Run(facts)

	setting := &Setting{
		Name:          name,
		Type:          state.FinalType,
		Kind:          facts.Kind,
		Description:   w.stringProp(desc, "description"),
		Default:       state.Default,
		EnumValues:    state.EnumValues,
		Example:       w.stringProp(desc, "example"),
		Hidden:        w.boolProp(desc, "hidden"),
		RestartNeeded: w.boolProp(desc, "restartNeeded"),
	}
	if setting.Example == "" {
		setting.Example = w.stringProp(desc, "placeholder")
	}
	if len(state.EnumValues) > 0 {
		setting.EnumLabels = NewLabels()
		for _, v := range state.EnumValues {
			if label, ok := facts.Options.Labels.Get(v); ok {
				setting.EnumLabels.Set(v, label)
			}
		}
	}
	return setting
}

// stringProp evaluates a string-valued member such as `description`,
// including templates built from constants. Unresolvable values are "".
func (w *walker) stringProp(desc *ast.Node, name string) string {
	value := desc.PropertyValue(name)
	if value == nil {
		return ""
	}
	s, err := w.r.stringEval(value, nil, 0)
	if err != nil {
		return ""
	}
	return s
}

// boolProp reports whether a member statically evaluates to a truthy value.
func (w *walker) boolProp(desc *ast.Node, name string) bool {
	value := desc.PropertyValue(name)
	if value == nil {
		return false
	}
	lit, err := w.r.enumLike(value, 0)
	return err == nil && truthy(lit)
}

func (w *walker) report(path []string, err error) {
	d := Diagnostic{Path: strings.Join(path, "."), Kind: UnsupportedPattern, Message: err.Error()}
	var extractionErr *ExtractionError
	if errors.As(err, &extractionErr) {
		d.Kind = extractionErr.Kind
		d.Message = extractionErr.Message
		if extractionErr.Node != nil {
			d.Location = extractionErr.Node.Location()
		}
	}
	w.logger.Debug("degraded setting extraction",
		"setting", d.Path,
		"kind", d.Kind.String(),
		"location", d.Location,
		"error", d.Message)
	w.diagnostics = append(w.diagnostics, d)
}
