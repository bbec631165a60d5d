package settings

import (
	"github.com/gnana997/plugspec/pkg/ast"
	"github.com/gnana997/plugspec/pkg/symbols"
)

// Facts is the evidence gathered from one descriptor before inference.
type Facts struct {
	Kind OptionKind

	// Default is the extracted default, degraded to Unresolved on error.
	Default    Value
	HasDefault bool

	Options          OptionsResult
	SelectDefault    EnumLiteral
	HasSelectDefault bool

	HasStringArray           bool
	HasIdentifierStringArray bool
	HasObjectArray           bool
	HasIdentifierObjectArray bool
	HasGetter                bool
	HasComponentProp         bool
	DefaultIsStringLiteral   bool
	DefaultIsIdentifier      bool
}

// State is the running inference result threaded through the pipeline.
type State struct {
	FinalType  Type
	EnumValues []EnumLiteral
	Default    Value

	HasStringArray           bool
	HasIdentifierStringArray bool
	IsComponentOrCustom      bool
	// Refined marks a type chosen from concrete evidence; the fallback
	// stage leaves refined states alone.
	Refined bool
}

// Stage is one pure step of the pipeline.
type Stage struct {
	Name  string
	Apply func(State, *Facts) State
}

// Pipeline is an ordered list of stages.
//
// The order is load-bearing: the array refinement only looks at
// structured-object states, which the component stage produces. Running it
// first leaves component descriptors with string-array defaults as
// structured-object instead of list-of-strings.
type Pipeline []Stage

// DefaultPipeline returns the four inference stages in order.
func DefaultPipeline() Pipeline {
	return Pipeline{
		{Name: "initial", Apply: inferInitialType},
		{Name: "component", Apply: coerceComponent},
		{Name: "array", Apply: refineArrayType},
		{Name: "fallback", Apply: applyFallback},
	}
}

// Run applies every stage in order to a fresh state.
func (p Pipeline) Run(f *Facts) State {
	var s State
	for _, stage := range p {
		s = stage.Apply(s, f)
	}
	return s
}

// inferInitialType derives the baseline type from the declared kind and the
// options evidence.
func inferInitialType(s State, f *Facts) State {
	s.Default = f.Default
	s.HasStringArray = f.HasStringArray
	s.HasIdentifierStringArray = f.HasIdentifierStringArray

	switch f.Kind {
	case KindBoolean:
		s.FinalType = TypeBoolean
	case KindString:
		if s.Default.IsNullish() {
			s.FinalType = TypeNullableString
			s.Default = Null()
		} else {
			s.FinalType = TypeString
		}
	case KindNumber:
		s.FinalType = TypeInteger
		if _, ok := s.Default.NumberValue(); ok && !s.Default.IsInteger() {
			s.FinalType = TypeFloat
		}
	case KindSlider:
		s.FinalType = TypeFloat
	case KindBigInt:
		s.FinalType = TypeString
	case KindComponent, KindCustom:
		s.FinalType = TypeString
		s.IsComponentOrCustom = true
	default:
		s = inferFromEnum(s, f)
	}
	return s
}

// inferFromEnum handles SELECT and undeclared kinds: a two-valued boolean
// enum is a boolean, any other enum evidence an enumeration, and without
// options the default's shape decides.
func inferFromEnum(s State, f *Facts) State {
	if !s.Default.IsResolved() && f.HasSelectDefault {
		s.Default = f.SelectDefault.Value()
	}

	values := Dedupe(f.Options.Values)
	if isBooleanPair(values) {
		s.FinalType = TypeBoolean
		s.EnumValues = nil
		return s
	}
	if len(values) > 0 {
		s.FinalType = TypeEnum
		s.EnumValues = values
		return s
	}
	if f.Kind == KindUnknown && f.HasComponentProp {
		s.FinalType = TypeString
		s.IsComponentOrCustom = true
		return s
	}
	return inferFromDefault(s)
}

func isBooleanPair(values []EnumLiteral) bool {
	if len(values) != 2 {
		return false
	}
	for _, v := range values {
		if v.Kind() != LiteralBool {
			return false
		}
	}
	return true
}

func inferFromDefault(s State) State {
	switch s.Default.Kind() {
	case ValueBool:
		s.FinalType = TypeBoolean
	case ValueString:
		s.FinalType = TypeString
	case ValueNumber:
		if s.Default.IsInteger() {
			s.FinalType = TypeInteger
		} else {
			s.FinalType = TypeFloat
		}
	case ValueArray, ValueObject:
		s.FinalType = TypeObject
	default:
		s.FinalType = TypeNullableString
		s.Default = Null()
	}
	return s
}

// coerceComponent decides component and custom descriptors: structured
// objects unless there is concrete evidence of a string default.
func coerceComponent(s State, f *Facts) State {
	if !s.IsComponentOrCustom {
		return s
	}
	switch {
	case f.HasGetter:
		s.FinalType = TypeNullableString
		s.Default = Null()
		s.Refined = true
	case f.HasIdentifierObjectArray:
		s.FinalType = TypeObject
		s.Refined = true
	case f.DefaultIsStringLiteral:
		s.FinalType = TypeString
		s.Refined = true
	case s.Default.IsResolved() && !s.Default.IsNull() &&
		s.Default.Kind() != ValueArray && s.Default.Kind() != ValueObject:
		s.FinalType = TypeString
	default:
		s.FinalType = TypeObject
	}
	return s
}

// refineArrayType narrows structured-object states with array defaults.
// Identifier-bound object arrays stay structured-object.
func refineArrayType(s State, f *Facts) State {
	if s.FinalType != TypeObject {
		return s
	}
	switch {
	case s.HasStringArray || s.HasIdentifierStringArray:
		s.FinalType = TypeStringList
		if s.Default.IsNullish() {
			s.Default = EmptyArray()
		}
		s.Refined = true
	case f.HasObjectArray:
		s.FinalType = TypeObjectList
		s.Refined = true
	}
	return s
}

// applyFallback forces custom descriptors with identifier defaults that no
// earlier rule matched to structured-object.
func applyFallback(s State, f *Facts) State {
	if f.Kind == KindCustom && f.DefaultIsIdentifier && !s.Refined {
		s.FinalType = TypeObject
	}
	return s
}

// gatherFacts collects the evidence for one descriptor. Extraction errors
// are reported through report and degrade to empty evidence.
func gatherFacts(desc *ast.Node, ctx *symbols.Context, report func(error)) *Facts {
	f := &Facts{Kind: declaredKind(desc, ctx)}

	value, _ := defaultExpr(desc)
	f.HasDefault = desc.HasProperty("default")
	f.DefaultIsStringLiteral = isStringLiteral(value)
	f.DefaultIsIdentifier = value.Kind() == ast.KindIdentifier

	def, err := ExtractDefaultValue(desc, ctx)
	if err != nil {
		report(err)
		def = Unresolved()
	}
	f.Default = def

	if desc.HasProperty("options") {
		analysis, err := analyzeOptions(desc, ctx)
		if err != nil {
			report(err)
			analysis = optionsAnalysis{options: emptyOptions()}
		}
		f.Options = analysis.options
		f.SelectDefault, f.HasSelectDefault = analysis.def, analysis.hasDef
	} else {
		f.Options = emptyOptions()
	}

	f.HasStringArray = HasStringArrayDefault(desc, ctx)
	f.HasIdentifierStringArray = HasIdentifierStringArrayDefault(desc, ctx)
	f.HasObjectArray = HasObjectArrayDefault(desc)
	f.HasIdentifierObjectArray = HasIdentifierObjectArrayDefault(desc, ctx)
	f.HasGetter = HasGetterDefault(desc)
	f.HasComponentProp = HasComponentProp(desc)
	return f
}

// declaredKind reads the `type:` tag. `OptionType.SELECT` is read by
// member name; other expressions are evaluated and mapped back through the
// known OptionType table.
func declaredKind(desc *ast.Node, ctx *symbols.Context) OptionKind {
	typeExpr := desc.PropertyValue("type")
	if typeExpr == nil {
		return KindUnknown
	}
	if typeExpr.Kind() == ast.KindPropertyAccess {
		if kind := ParseOptionKind(typeExpr.PropertyName()); kind != KindUnknown {
			return kind
		}
	}
	lit, err := ResolveEnumLikeValue(typeExpr, ctx)
	if err != nil {
		return KindUnknown
	}
	if n, ok := lit.NumberValue(); ok && ctx != nil {
		if name, ok := ctx.KnownEnums().MemberName(optionTypeEnum, n); ok {
			return ParseOptionKind(name)
		}
	}
	return KindUnknown
}

func isStringLiteral(n *ast.Node) bool {
	switch n.Kind() {
	case ast.KindString:
		return true
	case ast.KindTemplate:
		_, subs := n.TemplateValue()
		return subs == 0
	}
	return false
}
