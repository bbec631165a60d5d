// Package settings reduces plugin settings descriptors to typed settings.
//
// A descriptor is an object literal such as
//
//	volume: { type: OptionType.SLIDER, description: "Volume", default: 0.5 }
//
// The package resolves its `default` and `options` members statically
// (ExtractDefaultValue, ExtractSelectOptions), infers a final Type through
// an ordered Pipeline, and Walk assembles whole descriptor trees. Nothing is
// executed; expressions that cannot be known degrade to conservative values.
package settings

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Type is the normalized type of a setting.
type Type string

const (
	TypeBoolean        Type = "boolean"
	TypeString         Type = "string"
	TypeNullableString Type = "nullable-string"
	TypeInteger        Type = "integer"
	TypeFloat          Type = "float"
	TypeEnum           Type = "enumeration"
	TypeObject         Type = "structured-object"
	TypeStringList     Type = "list-of-strings"
	TypeObjectList     Type = "list-of-structured-objects"
)

// OptionKind is the declared `type:` tag of a descriptor.
type OptionKind int

const (
	KindUnknown OptionKind = iota
	KindString
	KindNumber
	KindBigInt
	KindBoolean
	KindSelect
	KindSlider
	KindComponent
	KindCustom
)

var optionKindNames = map[string]OptionKind{
	"STRING":    KindString,
	"NUMBER":    KindNumber,
	"BIGINT":    KindBigInt,
	"BOOLEAN":   KindBoolean,
	"SELECT":    KindSelect,
	"SLIDER":    KindSlider,
	"COMPONENT": KindComponent,
	"CUSTOM":    KindCustom,
}

// ParseOptionKind maps a member name such as "SELECT" to its kind.
func ParseOptionKind(name string) OptionKind {
	return optionKindNames[name]
}

func (k OptionKind) String() string {
	for name, kind := range optionKindNames {
		if kind == k {
			return name
		}
	}
	return "UNKNOWN"
}

// IsComponentOrCustom reports whether the kind is rendered by plugin code.
func (k OptionKind) IsComponentOrCustom() bool {
	return k == KindComponent || k == KindCustom
}

// Setting is a leaf descriptor after inference.
type Setting struct {
	Name        string
	Type        Type
	Kind        OptionKind
	Description string
	// Default is Unresolved when no default is known.
	Default       Value
	EnumValues    []EnumLiteral
	EnumLabels    *Labels
	Example       string
	Hidden        bool
	RestartNeeded bool
}

// Group is a nested object of settings.
type Group struct {
	Name     string
	Settings *orderedmap.OrderedMap[string, Entry]
}

// NewGroup returns an empty group.
func NewGroup(name string) *Group {
	return &Group{Name: name, Settings: orderedmap.New[string, Entry]()}
}

// Entry is either a *Setting or a *Group.
type Entry interface {
	EntryName() string
}

func (s *Setting) EntryName() string { return s.Name }
func (g *Group) EntryName() string   { return g.Name }

// Len returns the number of direct entries.
func (g *Group) Len() int { return g.Settings.Len() }

// Lookup returns the entry at a dotted path such as "appearance.theme".
func (g *Group) Lookup(path ...string) (Entry, bool) {
	var current Entry = g
	for _, name := range path {
		group, ok := current.(*Group)
		if !ok {
			return nil, false
		}
		current, ok = group.Settings.Get(name)
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Setting returns the leaf at path.
func (g *Group) Setting(path ...string) (*Setting, bool) {
	entry, ok := g.Lookup(path...)
	if !ok {
		return nil, false
	}
	s, ok := entry.(*Setting)
	return s, ok
}

// Count returns the number of leaves in the tree.
func (g *Group) Count() int {
	n := 0
	for pair := g.Settings.Oldest(); pair != nil; pair = pair.Next() {
		switch e := pair.Value.(type) {
		case *Setting:
			n++
		case *Group:
			n += e.Count()
		}
	}
	return n
}

// Diagnostic records a degraded extraction for one setting.
type Diagnostic struct {
	// Path is the dotted setting path.
	Path     string
	Location string
	Kind     ErrorKind
	Message  string
}

// WalkResult is the output of Walk.
type WalkResult struct {
	Root        *Group
	Diagnostics []Diagnostic
}
