package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSelectOptions(t *testing.T) {
	f, ctx := loadFixture(t, "options.ts")

	tests := []struct {
		name       string
		values     []any
		labels     map[any]string
		def        any
		hasDefault bool
	}{
		{
			name:   "spread",
			values: []any{0.0, 1.0, 2.0},
			labels: map[any]string{0.0: "A", 1.0: "B", 2.0: "C"},
		},
		{
			name:       "keys",
			values:     []any{"Random", "Constant"},
			labels:     map[any]string{"Random": "Random", "Constant": "Constant"},
			def:        "Random",
			hasDefault: true,
		},
		{
			name:   "values",
			values: []any{0.0, 1.0},
			labels: map[any]string{},
		},
		{
			name:       "arrayBase",
			values:     []any{"a", "b"},
			labels:     map[any]string{"a": "a", "b": "b"},
			def:        "b",
			hasDefault: true,
		},
		{
			name:       "keyedDefault",
			values:     []any{"Random", "Constant"},
			labels:     map[any]string{"Random": "Random", "Constant": "Constant"},
			def:        "Constant",
			hasDefault: true,
		},
		{
			name:   "arrayFrom",
			values: []any{"x", "y"},
			labels: map[any]string{},
		},
		{
			name:   "raw",
			values: []any{1.0, 2.0, 3.0},
			labels: map[any]string{},
		},
		{
			name:   "mixed",
			values: []any{2.0},
			labels: map[any]string{2.0: "Two"},
		},
		{
			name:   "none",
			values: []any{},
			labels: map[any]string{},
		},
		{
			name:   "dynamic",
			values: []any{},
			labels: map[any]string{},
		},
		{
			name:       "flagged",
			values:     []any{"a", "b", "c"},
			labels:     map[any]string{"a": "a", "b": "b", "c": "c"},
			def:        "b",
			hasDefault: true,
		},
		{
			name:   "identifier",
			values: []any{1.0},
			labels: map[any]string{1.0: "only"},
		},
		{
			name:   "enumMembers",
			values: []any{0.0, 1.0},
			labels: map[any]string{0.0: "Low", 1.0: "High"},
		},
		{
			name: "theme",
			values: []any{
				"https://raw.githubusercontent.com/shikijs/shiki/abc123/themes/dark-plus.json",
				"https://raw.githubusercontent.com/shikijs/shiki/abc123/themes/light-plus.json",
			},
			labels: map[any]string{
				"https://raw.githubusercontent.com/shikijs/shiki/abc123/themes/dark-plus.json":  "DarkPlus",
				"https://raw.githubusercontent.com/shikijs/shiki/abc123/themes/light-plus.json": "LightPlus",
			},
			def:        "https://raw.githubusercontent.com/shikijs/shiki/abc123/themes/dark-plus.json",
			hasDefault: true,
		},
		{
			name:   "partialSpread",
			values: []any{2.0},
			labels: map[any]string{2.0: "C"},
		},
		{
			name:   "partialRawSpread",
			values: []any{4.0},
			labels: map[any]string{},
		},
		{
			name:   "mapWithoutDefault",
			values: []any{"p", "q"},
			labels: map[any]string{"p": "p", "q": "q"},
		},
		{
			name:   "remoteTheme",
			values: []any{"Nord", "Dracula"},
			labels: map[any]string{"Nord": "Nord", "Dracula": "Dracula"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := decl(t, f, tt.name)

			result, err := ExtractSelectOptions(desc, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.values, literalValues(result.Values))
			assert.Equal(t, tt.labels, labelMap(result.Labels))

			def, ok, err := ExtractSelectDefault(desc, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.hasDefault, ok)
			if tt.hasDefault {
				assert.Equal(t, tt.def, def.Interface())
			}
		})
	}
}

func TestExtractSelectOptions_Errors(t *testing.T) {
	f, ctx := loadFixture(t, "options.ts")

	cases := map[string]ErrorKind{
		"missingValue":         MissingProperty,
		"allUnresolved":        CannotEvaluate,
		"unresolvedIdentifier": UnresolvableSymbol,
		"onlyUnresolvedSpread": CannotEvaluate,
	}
	for name, kind := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ExtractSelectOptions(decl(t, f, name), ctx)
			require.Error(t, err)
			assert.True(t, IsKind(err, kind), "got %v", err)
		})
	}

	_, err := ExtractSelectOptions(decl(t, f, "LIST"), ctx)
	assert.True(t, IsKind(err, InvalidNodeType))
}
