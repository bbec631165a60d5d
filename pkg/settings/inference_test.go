package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/plugspec/pkg/ast"
	"github.com/gnana997/plugspec/pkg/symbols"
)

func infer(t *testing.T, p Pipeline, desc *ast.Node, ctx *symbols.Context) State {
	t.Helper()
	facts := gatherFacts(desc, ctx, func(err error) { t.Logf("degraded: %v", err) })
	return p.Run(facts)
}

func TestInference_BooleanPair(t *testing.T) {
	f, ctx := loadFixture(t, "inference.ts")

	for _, name := range []string{"boolOptions", "boolRaw", "boolValues", "boolDuplicates", "boolFrom"} {
		t.Run(name, func(t *testing.T) {
			s := infer(t, DefaultPipeline(), decl(t, f, name), ctx)
			assert.Equal(t, TypeBoolean, s.FinalType)
			assert.Nil(t, s.EnumValues)
		})
	}

	s := infer(t, DefaultPipeline(), decl(t, f, "boolOptions"), ctx)
	assert.Equal(t, true, s.Default.Interface())
}

func TestInference(t *testing.T) {
	f, ctx := loadFixture(t, "inference.ts")

	tests := []struct {
		name        string
		want        Type
		defaultKind ValueKind
		def         any
	}{
		{"stringNoDefault", TypeNullableString, ValueNull, nil},
		{"stringDefault", TypeString, ValueString, "x"},
		{"numberInt", TypeInteger, ValueNumber, 5.0},
		{"numberFloat", TypeFloat, ValueNumber, 0.5},
		{"slider", TypeFloat, ValueNumber, 1.0},
		{"bigint", TypeString, ValueString, "1026532993923293184"},
		{"numericTag", TypeBoolean, ValueBool, false},
		{"select", TypeEnum, ValueString, "l"},
		{"componentGetter", TypeNullableString, ValueNull, nil},
		{"componentString", TypeString, ValueString, "text"},
		{"componentNoDefault", TypeObject, ValueUnresolved, nil},
		{"componentStringList", TypeStringList, ValueArray, []any{"a", "b"}},
		{"componentObjectList", TypeObjectList, ValueArray, []any{map[string]any{"a": 1.0}}},
		{"componentObjectListId", TypeObject, ValueArray, []any{}},
		{"customAnnotatedList", TypeStringList, ValueArray, []any{}},
		{"customTypedEmpty", TypeStringList, ValueArray, []any{}},
		{"customIdentifier", TypeObject, ValueString, "label"},
		{"customNumber", TypeString, ValueNumber, 3.0},
		{"untypedComponent", TypeObject, ValueUnresolved, nil},
		{"untypedInt", TypeInteger, ValueNumber, 3.0},
		{"untypedObject", TypeObject, ValueObject, map[string]any{"a": 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := infer(t, DefaultPipeline(), decl(t, f, tt.name), ctx)
			assert.Equal(t, tt.want, s.FinalType)
			assert.Equal(t, tt.defaultKind, s.Default.Kind())
			assert.Equal(t, tt.def, s.Default.Interface())
		})
	}
}

func TestInference_EnumValues(t *testing.T) {
	f, ctx := loadFixture(t, "inference.ts")

	s := infer(t, DefaultPipeline(), decl(t, f, "select"), ctx)
	require.Equal(t, TypeEnum, s.FinalType)
	assert.Equal(t, []any{"s", "l"}, literalValues(s.EnumValues))
}

func TestInference_StageOrderMatters(t *testing.T) {
	f, ctx := loadFixture(t, "inference.ts")
	desc := decl(t, f, "componentStringList")

	p := DefaultPipeline()
	require.Len(t, p, 4)
	assert.Equal(t, []string{"initial", "component", "array", "fallback"},
		[]string{p[0].Name, p[1].Name, p[2].Name, p[3].Name})

	assert.Equal(t, TypeStringList, infer(t, p, desc, ctx).FinalType)

	swapped := Pipeline{p[0], p[2], p[1], p[3]}
	assert.Equal(t, TypeObject, infer(t, swapped, desc, ctx).FinalType)
}

func TestDeclaredKind(t *testing.T) {
	f, ctx := loadFixture(t, "inference.ts")

	assert.Equal(t, KindSelect, declaredKind(decl(t, f, "select"), ctx))
	assert.Equal(t, KindBoolean, declaredKind(decl(t, f, "numericTag"), ctx))
	assert.Equal(t, KindUnknown, declaredKind(decl(t, f, "untypedInt"), ctx))

	assert.Equal(t, KindCustom, ParseOptionKind("CUSTOM"))
	assert.Equal(t, "SLIDER", KindSlider.String())
	assert.Equal(t, "UNKNOWN", KindUnknown.String())
	assert.True(t, KindComponent.IsComponentOrCustom())
	assert.False(t, KindSelect.IsComponentOrCustom())
}
