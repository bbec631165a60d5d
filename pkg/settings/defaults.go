package settings

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/gnana997/plugspec/pkg/ast"
	"github.com/gnana997/plugspec/pkg/symbols"
)

// ExtractDefaultValue resolves the `default` member of a descriptor.
//
//   - no `default` member: Unresolved
//   - `undefined` and `null`: Null
//   - BigInt literals: their exact decimal string
//   - array/object literals: the literal, or the empty shape (`[]`, `{}`)
//     when some element cannot be resolved
//   - identifiers bound to arrays/objects: the empty shape only, since the
//     binding may be mutated elsewhere
//   - `get default()`: Null
//   - calls to a local function: the function's returned expression,
//     otherwise Unresolved
//
// An identifier with no reachable declaration is an UnresolvableSymbol
// error; callers degrade it to Unresolved.
func ExtractDefaultValue(descriptor *ast.Node, ctx *symbols.Context) (Value, error) {
	desc := ast.Unwrap(descriptor)
	if desc.Kind() != ast.KindObject {
		return Unresolved(), newError(InvalidNodeType, desc, "descriptor is %s, not an object literal", desc.Kind())
	}

	m, ok := desc.Property("default")
	if !ok {
		return Unresolved(), nil
	}
	switch m.Kind {
	case ast.MemberGetter:
		return Null(), nil
	case ast.MemberMethod:
		return Unresolved(), nil
	}
	return newResolver(ctx).defaultValue(m.Value, 0)
}

func (r *resolver) defaultValue(expr *ast.Node, depth int) (Value, error) {
	if depth > maxDepth {
		return Unresolved(), newError(CannotEvaluate, expr, "default nests deeper than %d levels", maxDepth)
	}
	n := ast.Unwrap(expr)
	if n == nil {
		return Unresolved(), nil
	}

	switch n.Kind() {
	case ast.KindNull, ast.KindUndefined:
		return Null(), nil
	case ast.KindBigInt:
		s, ok := n.BigIntValue()
		if !ok {
			return Unresolved(), newError(CannotEvaluate, n, "malformed bigint %q", n.Text())
		}
		return String(s), nil
	case ast.KindNumber:
		v, integer, ok := n.NumberValue()
		if !ok {
			return Unresolved(), newError(CannotEvaluate, n, "malformed number %q", n.Text())
		}
		return Number(v, integer), nil
	case ast.KindString, ast.KindBoolean, ast.KindTemplate, ast.KindUnary, ast.KindBinary:
		lit, err := r.enumLike(n, depth+1)
		if err != nil {
			return Unresolved(), err
		}
		return lit.Value(), nil
	case ast.KindArray:
		if v, ok := r.literalArray(n, depth+1); ok {
			return v, nil
		}
		return EmptyArray(), nil
	case ast.KindObject:
		if v, ok := r.literalObject(n, depth+1); ok {
			return v, nil
		}
		return EmptyObject(), nil
	case ast.KindIdentifier:
		init, ok := r.ctx.ResolveIdentifierWithFallback(n)
		if !ok {
			return Unresolved(), newError(UnresolvableSymbol, n, "cannot resolve %q", n.Text())
		}
		switch target := r.follow(init, depth+1); target.Kind() {
		case ast.KindArray:
			return EmptyArray(), nil
		case ast.KindObject:
			return EmptyObject(), nil
		}
		return r.defaultValue(init, depth+1)
	case ast.KindPropertyAccess, ast.KindElementAccess:
		lit, err := r.enumLike(n, depth+1)
		if err == nil {
			return lit.Value(), nil
		}
		// A member holding an array or object keeps its shape.
		if c, ok := r.container(n, depth+1); ok && c.object != nil {
			return EmptyObject(), nil
		}
		if value, ok := r.memberExpression(n, depth+1); ok {
			if arr := r.follow(value, depth+1); arr.Kind() == ast.KindArray {
				return EmptyArray(), nil
			}
		}
		return Unresolved(), err
	case ast.KindCall:
		return r.callDefault(n, depth)
	}
	return Unresolved(), nil
}

// callDefault evaluates `f()` where f is a local arrow function or function
// returning an expression.
func (r *resolver) callDefault(call *ast.Node, depth int) (Value, error) {
	callee := ast.Unwrap(call.Callee())
	if callee.Kind() != ast.KindIdentifier {
		return Unresolved(), nil
	}
	fn := r.follow(callee, depth+1)
	switch fn.Kind() {
	case ast.KindArrowFunction, ast.KindFunction:
	default:
		return Unresolved(), nil
	}
	body := fn.ReturnedExpression()
	if body == nil {
		return Unresolved(), nil
	}
	v, err := r.defaultValue(body, depth+1)
	if err != nil {
		return Unresolved(), nil
	}
	return v, nil
}

// memberExpression returns the expression `obj.name` is bound to.
func (r *resolver) memberExpression(n *ast.Node, depth int) (*ast.Node, bool) {
	var name string
	switch n.Kind() {
	case ast.KindPropertyAccess:
		name = n.PropertyName()
	case ast.KindElementAccess:
		key, err := r.enumLike(n.Index(), depth+1)
		if err != nil {
			return nil, false
		}
		name = key.String()
	default:
		return nil, false
	}
	parent, ok := r.container(n.Object(), depth+1)
	if !ok {
		return nil, false
	}
	return r.containerMember(parent, name, depth+1)
}

// literalArray fully evaluates an array literal, expanding spreads. It fails
// if any element cannot be resolved.
func (r *resolver) literalArray(arr *ast.Node, depth int) (Value, bool) {
	if depth > maxDepth {
		return Value{}, false
	}
	var items []Value
	for _, elem := range arr.NamedChildren() {
		if elem.Kind() == ast.KindSpread {
			spread, ok := r.resolveArrayLiteral(elem.FirstNamedChild(), depth+1)
			if !ok {
				return Value{}, false
			}
			inner, ok := r.literalArray(spread, depth+1)
			if !ok {
				return Value{}, false
			}
			items = append(items, inner.Items()...)
			continue
		}
		v, err := r.defaultValue(elem, depth+1)
		if err != nil || !v.IsResolved() {
			return Value{}, false
		}
		items = append(items, v)
	}
	return Array(items...), true
}

// literalObject fully evaluates an object literal, merging spreads. It fails
// on getters, methods, dynamic keys and unresolvable values.
func (r *resolver) literalObject(obj *ast.Node, depth int) (Value, bool) {
	if depth > maxDepth {
		return Value{}, false
	}
	fields := orderedmap.New[string, Value]()
	for _, m := range obj.Members() {
		switch m.Kind {
		case ast.MemberSpread:
			spread, ok := r.resolveObjectLiteral(m.Value, depth+1)
			if !ok {
				return Value{}, false
			}
			inner, ok := r.literalObject(spread, depth+1)
			if !ok {
				return Value{}, false
			}
			for pair := inner.Fields().Oldest(); pair != nil; pair = pair.Next() {
				fields.Set(pair.Key, pair.Value)
			}
		case ast.MemberProperty, ast.MemberShorthand:
			if m.Name == "" {
				return Value{}, false
			}
			v, err := r.defaultValue(m.Value, depth+1)
			if err != nil || !v.IsResolved() {
				return Value{}, false
			}
			fields.Set(m.Name, v)
		default:
			return Value{}, false
		}
	}
	return Object(fields), true
}
