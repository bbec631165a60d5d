package settings

import (
	"github.com/gnana997/plugspec/pkg/ast"
	"github.com/gnana997/plugspec/pkg/symbols"
)

// defaultExpr returns the unwrapped `default: expr` of a descriptor and the
// raw (still wrapped) expression.
func defaultExpr(descriptor *ast.Node) (unwrapped, raw *ast.Node) {
	desc := ast.Unwrap(descriptor)
	m, ok := desc.Property("default")
	if !ok || (m.Kind != ast.MemberProperty && m.Kind != ast.MemberShorthand) {
		return nil, nil
	}
	return ast.Unwrap(m.Value), m.Value
}

// HasStringArrayDefault reports whether the default is recognizably an
// array of strings: a non-empty literal of strings, a typed empty array
// (`[] as string[]`) or an identifier bound to either.
func HasStringArrayDefault(descriptor *ast.Node, ctx *symbols.Context) bool {
	value, _ := defaultExpr(descriptor)
	switch value.Kind() {
	case ast.KindArray:
		return isStringArrayLiteral(value) || HasTypedEmptyArrayDefault(descriptor)
	case ast.KindIdentifier:
		return HasIdentifierStringArrayDefault(descriptor, ctx)
	}
	return false
}

// HasIdentifierStringArrayDefault reports whether the default is an
// identifier declared as a string array, by annotation
// (`const X: string[] = []`) or by its initializer.
func HasIdentifierStringArrayDefault(descriptor *ast.Node, ctx *symbols.Context) bool {
	value, _ := defaultExpr(descriptor)
	if value.Kind() != ast.KindIdentifier {
		return false
	}
	return newResolver(ctx).identifierIsStringArray(value, 0)
}

func (r *resolver) identifierIsStringArray(id *ast.Node, depth int) bool {
	if depth > maxDepth {
		return false
	}
	decl, ok := r.ctx.ResolveDeclarationWithFallback(id)
	if !ok {
		return false
	}
	if decl.Type != nil && ast.IsStringArrayType(decl.Type) {
		return true
	}
	if decl.Init == nil {
		return false
	}
	init := ast.Unwrap(decl.Init)
	switch init.Kind() {
	case ast.KindArray:
		return isStringArrayLiteral(init) || (isEmptyArray(init) && hasStringArrayWrapper(decl.Init))
	case ast.KindIdentifier:
		return r.identifierIsStringArray(init, depth+1)
	}
	return false
}

// HasTypedEmptyArrayDefault reports whether the default is an empty array
// literal asserted to a string array type.
func HasTypedEmptyArrayDefault(descriptor *ast.Node) bool {
	value, raw := defaultExpr(descriptor)
	return value.Kind() == ast.KindArray && isEmptyArray(value) && hasStringArrayWrapper(raw)
}

// HasObjectArrayDefault reports whether the default is a non-empty array
// literal of object literals. Identifiers do not count.
func HasObjectArrayDefault(descriptor *ast.Node) bool {
	value, _ := defaultExpr(descriptor)
	return value.Kind() == ast.KindArray && isObjectArrayLiteral(value)
}

// HasIdentifierObjectArrayDefault reports whether the default is an
// identifier bound to a non-empty array literal of object literals.
func HasIdentifierObjectArrayDefault(descriptor *ast.Node, ctx *symbols.Context) bool {
	value, _ := defaultExpr(descriptor)
	if value.Kind() != ast.KindIdentifier {
		return false
	}
	target := newResolver(ctx).follow(value, 0)
	return target.Kind() == ast.KindArray && isObjectArrayLiteral(target)
}

// HasComponentProp reports whether the descriptor declares a `component`.
func HasComponentProp(descriptor *ast.Node) bool {
	return ast.Unwrap(descriptor).HasProperty("component")
}

// HasGetterDefault reports whether the default is a `get default()`
// accessor.
func HasGetterDefault(descriptor *ast.Node) bool {
	m, ok := ast.Unwrap(descriptor).Property("default")
	return ok && m.Kind == ast.MemberGetter
}

func isStringArrayLiteral(arr *ast.Node) bool {
	elems := arr.NamedChildren()
	if len(elems) == 0 {
		return false
	}
	for _, elem := range elems {
		switch e := ast.Unwrap(elem); e.Kind() {
		case ast.KindString:
		case ast.KindTemplate:
			if _, subs := e.TemplateValue(); subs > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func isObjectArrayLiteral(arr *ast.Node) bool {
	elems := arr.NamedChildren()
	if len(elems) == 0 {
		return false
	}
	for _, elem := range elems {
		if ast.Unwrap(elem).Kind() != ast.KindObject {
			return false
		}
	}
	return true
}

func isEmptyArray(arr *ast.Node) bool {
	return len(arr.NamedChildren()) == 0
}

func hasStringArrayWrapper(expr *ast.Node) bool {
	for _, t := range ast.WrapperTypes(expr) {
		if ast.IsStringArrayType(t) {
			return true
		}
	}
	return false
}
