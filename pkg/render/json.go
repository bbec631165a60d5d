package render

import (
	"encoding/json"
	"fmt"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/gnana997/plugspec/pkg/scanner"
	"github.com/gnana997/plugspec/pkg/settings"
)

type jsonObject = orderedmap.OrderedMap[string, any]

// WriteJSON writes `{plugin: {description, file, settings}}` with plugins,
// settings and enum labels in source order. Unresolved defaults are
// omitted.
func WriteJSON(w io.Writer, plugins []scanner.PluginSettings) error {
	out := orderedmap.New[string, any]()
	for _, p := range plugins {
		out.Set(p.Name, PluginJSON(p))
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// PluginJSON converts one plugin to its ordered JSON form.
func PluginJSON(p scanner.PluginSettings) *jsonObject {
	obj := orderedmap.New[string, any]()
	if p.Description != "" {
		obj.Set("description", p.Description)
	}
	if p.File != "" {
		obj.Set("file", p.File)
	}
	obj.Set("settings", GroupJSON(p.Settings))
	if len(p.Diagnostics) > 0 {
		diags := make([]*jsonObject, 0, len(p.Diagnostics))
		for _, d := range p.Diagnostics {
			diag := orderedmap.New[string, any]()
			diag.Set("path", d.Path)
			diag.Set("kind", d.Kind.String())
			diag.Set("message", d.Message)
			if d.Location != "" {
				diag.Set("location", d.Location)
			}
			diags = append(diags, diag)
		}
		obj.Set("diagnostics", diags)
	}
	return obj
}

// GroupJSON converts a settings group. Nested groups become nested objects
// under "settings".
func GroupJSON(g *settings.Group) *jsonObject {
	obj := orderedmap.New[string, any]()
	if g == nil {
		return obj
	}
	for pair := g.Settings.Oldest(); pair != nil; pair = pair.Next() {
		switch e := pair.Value.(type) {
		case *settings.Setting:
			obj.Set(pair.Key, settingJSON(e))
		case *settings.Group:
			group := orderedmap.New[string, any]()
			group.Set("settings", GroupJSON(e))
			obj.Set(pair.Key, group)
		}
	}
	return obj
}

func settingJSON(s *settings.Setting) *jsonObject {
	obj := orderedmap.New[string, any]()
	obj.Set("type", string(s.Type))
	if s.Kind != settings.KindUnknown {
		obj.Set("kind", s.Kind.String())
	}
	if s.Description != "" {
		obj.Set("description", s.Description)
	}
	if s.Default.IsResolved() {
		obj.Set("default", s.Default)
	}
	if len(s.EnumValues) > 0 {
		obj.Set("enum", s.EnumValues)
	}
	if s.EnumLabels != nil && s.EnumLabels.Len() > 0 {
		labels := orderedmap.New[string, string]()
		for pair := s.EnumLabels.Oldest(); pair != nil; pair = pair.Next() {
			labels.Set(pair.Key.String(), pair.Value)
		}
		obj.Set("enumLabels", labels)
	}
	if s.Example != "" {
		obj.Set("example", s.Example)
	}
	if s.RestartNeeded {
		obj.Set("restartNeeded", true)
	}
	return obj
}
