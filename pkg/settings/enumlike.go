package settings

import (
	"math"
	"strconv"

	"github.com/gnana997/plugspec/pkg/ast"
	"github.com/gnana997/plugspec/pkg/symbols"
)

// maxDepth bounds identifier and member chains; deeper chains are treated
// as cyclic.
const maxDepth = 32

// optionTypeEnum is the known enum descriptor `type:` tags are read from.
const optionTypeEnum = "OptionType"

// resolver carries the resolution context through one extraction. The
// enum scope, when set, binds the members of the enum being evaluated so
// `B = A << 1` can refer to `A`.
type resolver struct {
	ctx       *symbols.Context
	enumScope map[string]EnumLiteral
}

func newResolver(ctx *symbols.Context) *resolver {
	if ctx == nil {
		ctx = symbols.NewContext(nil)
	}
	return &resolver{ctx: ctx}
}

// ResolveEnumLikeValue statically evaluates node to a string, number or
// boolean. It understands literals, identifiers, members of object
// literals, enums and namespace imports, single-valued templates, unary
// and arithmetic operators and bitwise flag combinations (`1 << 2 | 1`).
//
// Interpolated templates and calls yield CannotEvaluate; objects, arrays
// and functions yield InvalidNodeType.
func ResolveEnumLikeValue(node *ast.Node, ctx *symbols.Context) (EnumLiteral, error) {
	return newResolver(ctx).enumLike(node, 0)
}

func (r *resolver) enumLike(node *ast.Node, depth int) (EnumLiteral, error) {
	if depth > maxDepth {
		return EnumLiteral{}, newError(CannotEvaluate, node, "expression nests deeper than %d levels", maxDepth)
	}
	n := ast.Unwrap(node)
	if n == nil {
		return EnumLiteral{}, newError(InvalidNodeType, nil, "missing expression")
	}

	switch n.Kind() {
	case ast.KindString:
		s, _ := n.StringValue()
		return StringLiteral(s), nil
	case ast.KindNumber:
		v, _, ok := n.NumberValue()
		if !ok {
			return EnumLiteral{}, newError(CannotEvaluate, n, "malformed number %q", n.Text())
		}
		return NumberLiteral(v), nil
	case ast.KindBoolean:
		b, _ := n.BoolValue()
		return BoolLiteral(b), nil
	case ast.KindBigInt:
		s, ok := n.BigIntValue()
		if !ok {
			return EnumLiteral{}, newError(CannotEvaluate, n, "malformed bigint %q", n.Text())
		}
		return StringLiteral(s), nil
	case ast.KindTemplate:
		text, substitutions := n.TemplateValue()
		if substitutions > 0 {
			return EnumLiteral{}, newError(CannotEvaluate, n, "template literal has %d substitutions", substitutions)
		}
		return StringLiteral(text), nil
	case ast.KindIdentifier:
		return r.identifier(n, depth)
	case ast.KindPropertyAccess:
		return r.member(n.Object(), n.PropertyName(), n, depth)
	case ast.KindElementAccess:
		key, err := r.enumLike(n.Index(), depth+1)
		if err != nil {
			return EnumLiteral{}, err
		}
		return r.member(n.Object(), key.String(), n, depth)
	case ast.KindUnary:
		return r.unary(n, depth)
	case ast.KindBinary:
		return r.binary(n, depth)
	case ast.KindObject, ast.KindArray, ast.KindArrowFunction, ast.KindFunction,
		ast.KindGetAccessor, ast.KindMethod, ast.KindEnum, ast.KindNull, ast.KindUndefined:
		return EnumLiteral{}, newError(InvalidNodeType, n, "%s is not an enum-like value", n.Kind())
	default:
		return EnumLiteral{}, newError(CannotEvaluate, n, "cannot evaluate %s", n.Type())
	}
}

func (r *resolver) identifier(n *ast.Node, depth int) (EnumLiteral, error) {
	if v, ok := r.enumScope[n.Text()]; ok {
		return v, nil
	}
	switch n.Text() {
	case "NaN":
		return NumberLiteral(math.NaN()), nil
	case "Infinity":
		return NumberLiteral(math.Inf(1)), nil
	}
	init, ok := r.ctx.ResolveIdentifierWithFallback(n)
	if !ok {
		return EnumLiteral{}, newError(UnresolvableSymbol, n, "cannot resolve %q", n.Text())
	}
	return r.enumLike(init, depth+1)
}

// container is what the left side of a member access resolved to.
type container struct {
	object    *ast.Node
	enum      *ast.Node
	namespace *ast.File
}

// member resolves `objExpr.name` / `objExpr["name"]`.
func (r *resolver) member(objExpr *ast.Node, name string, node *ast.Node, depth int) (EnumLiteral, error) {
	if depth > maxDepth {
		return EnumLiteral{}, newError(CannotEvaluate, node, "member chain nests deeper than %d levels", maxDepth)
	}

	c, ok := r.container(objExpr, depth+1)
	if ok {
		switch {
		case c.object != nil:
			if value, found, err := r.objectMember(c.object, name, depth+1); err != nil {
				return EnumLiteral{}, err
			} else if found {
				return r.enumLike(value, depth+1)
			}
		case c.enum != nil:
			if v, found, err := r.enumMember(c.enum, name, depth+1); err != nil {
				return EnumLiteral{}, err
			} else if found {
				return v, nil
			}
		case c.namespace != nil:
			if decl, found := r.ctx.LookupExport(c.namespace, name); found && decl.Init != nil {
				return r.enumLike(decl.Init, depth+1)
			}
		}
	}

	// The host's enums are usually imported from files outside the project.
	if enumName, ok := ast.DottedName(objExpr); ok {
		if v, known := r.ctx.KnownEnum(enumName, name); known {
			return NumberLiteral(v), nil
		}
	}

	if !ok {
		return EnumLiteral{}, newError(UnresolvableSymbol, node, "cannot resolve %q", ast.Unwrap(objExpr).Text())
	}
	return EnumLiteral{}, newError(MissingProperty, node, "no member %q", name)
}

// container resolves the receiver of a member access to an object literal,
// an enum declaration or a namespace import.
func (r *resolver) container(expr *ast.Node, depth int) (container, bool) {
	if depth > maxDepth {
		return container{}, false
	}
	n := ast.Unwrap(expr)
	switch n.Kind() {
	case ast.KindObject:
		return container{object: n}, true
	case ast.KindEnum:
		return container{enum: n}, true
	case ast.KindIdentifier:
		decl, ok := r.ctx.ResolveDeclarationWithFallback(n)
		if !ok {
			return container{}, false
		}
		if decl.Kind == symbols.DeclNamespace {
			return container{namespace: decl.File}, true
		}
		if decl.Init == nil {
			return container{}, false
		}
		return r.container(decl.Init, depth+1)
	case ast.KindPropertyAccess:
		parent, ok := r.container(n.Object(), depth+1)
		if !ok {
			return container{}, false
		}
		value, ok := r.containerMember(parent, n.PropertyName(), depth+1)
		if !ok {
			return container{}, false
		}
		return r.container(value, depth+1)
	case ast.KindElementAccess:
		key, err := r.enumLike(n.Index(), depth+1)
		if err != nil {
			return container{}, false
		}
		parent, ok := r.container(n.Object(), depth+1)
		if !ok {
			return container{}, false
		}
		value, ok := r.containerMember(parent, key.String(), depth+1)
		if !ok {
			return container{}, false
		}
		return r.container(value, depth+1)
	}
	return container{}, false
}

// containerMember returns the expression bound to name inside an object
// literal or namespace. Enum members are values, not containers.
func (r *resolver) containerMember(c container, name string, depth int) (*ast.Node, bool) {
	switch {
	case c.object != nil:
		value, found, err := r.objectMember(c.object, name, depth)
		return value, found && err == nil
	case c.namespace != nil:
		decl, ok := r.ctx.LookupExport(c.namespace, name)
		if !ok || decl.Init == nil {
			return nil, false
		}
		return decl.Init, true
	}
	return nil, false
}

// objectMember finds the value of name in an object literal. Spreads are
// expanded and later definitions win. A getter makes the member
// unevaluable.
func (r *resolver) objectMember(obj *ast.Node, name string, depth int) (*ast.Node, bool, error) {
	if depth > maxDepth {
		return nil, false, newError(CannotEvaluate, obj, "object spreads nest deeper than %d levels", maxDepth)
	}
	var value *ast.Node
	var getter *ast.Node
	found := false
	for _, m := range obj.Members() {
		switch m.Kind {
		case ast.MemberSpread:
			spread, ok := r.resolveObjectLiteral(m.Value, depth+1)
			if !ok {
				continue
			}
			if v, ok, err := r.objectMember(spread, name, depth+1); err == nil && ok {
				value, getter, found = v, nil, true
			}
		case ast.MemberProperty, ast.MemberShorthand:
			if m.Name == name {
				value, getter, found = m.Value, nil, true
			}
		case ast.MemberGetter:
			if m.Name == name {
				value, getter, found = nil, m.Node, true
			}
		}
	}
	if getter != nil {
		return nil, false, newError(CannotEvaluate, getter, "member %q is a getter", name)
	}
	return value, found, nil
}

// resolveObjectLiteral follows identifiers to an object literal.
func (r *resolver) resolveObjectLiteral(expr *ast.Node, depth int) (*ast.Node, bool) {
	n := r.follow(expr, depth)
	return n, n.Kind() == ast.KindObject
}

// resolveArrayLiteral follows identifiers to an array literal.
func (r *resolver) resolveArrayLiteral(expr *ast.Node, depth int) (*ast.Node, bool) {
	n := r.follow(expr, depth)
	return n, n.Kind() == ast.KindArray
}

// follow unwraps expr and chases identifiers to their initializers.
func (r *resolver) follow(expr *ast.Node, depth int) *ast.Node {
	n := ast.Unwrap(expr)
	for i := depth; n.Kind() == ast.KindIdentifier && i <= maxDepth; i++ {
		init, ok := r.ctx.ResolveIdentifierWithFallback(n)
		if !ok {
			return n
		}
		n = ast.Unwrap(init)
	}
	return n
}

// enumMember evaluates name in an enum declaration. Members without an
// initializer continue from the previous numeric member.
func (r *resolver) enumMember(enum *ast.Node, name string, depth int) (EnumLiteral, bool, error) {
	body := enum.Field("body")
	if body == nil {
		return EnumLiteral{}, false, nil
	}

	scoped := &resolver{ctx: r.ctx, enumScope: make(map[string]EnumLiteral)}
	next := 0.0
	autoOK := true
	for _, member := range body.NamedChildren() {
		var memberName string
		var init *ast.Node
		switch member.Type() {
		case "enum_assignment":
			memberName = enumMemberName(member.Field("name"))
			init = member.Field("value")
		case "property_identifier", "string":
			memberName = enumMemberName(member)
		default:
			continue
		}

		var value EnumLiteral
		if init != nil {
			v, err := scoped.enumLike(init, depth+1)
			if err != nil {
				if memberName == name {
					return EnumLiteral{}, false, err
				}
				autoOK = false
				continue
			}
			value = v
			if n, ok := v.NumberValue(); ok {
				next, autoOK = n+1, true
			} else {
				autoOK = false
			}
		} else {
			if !autoOK {
				if memberName == name {
					return EnumLiteral{}, false, newError(CannotEvaluate, member, "enum member %q follows a non-numeric member", name)
				}
				continue
			}
			value = NumberLiteral(next)
			next++
		}

		scoped.enumScope[memberName] = value
		if memberName == name {
			return value, true, nil
		}
	}
	return EnumLiteral{}, false, nil
}

func enumMemberName(n *ast.Node) string {
	if n == nil {
		return ""
	}
	if s, ok := n.StringValue(); ok {
		return s
	}
	return n.Text()
}

func (r *resolver) unary(n *ast.Node, depth int) (EnumLiteral, error) {
	operand, err := r.enumLike(n.Operand(), depth+1)
	if err != nil {
		return EnumLiteral{}, err
	}
	op := n.Operator()
	switch op {
	case "!":
		return BoolLiteral(!truthy(operand)), nil
	case "-", "+", "~":
		num, ok := toNumber(operand)
		if !ok {
			return EnumLiteral{}, newError(CannotEvaluate, n, "operand of %s is not numeric", op)
		}
		switch op {
		case "-":
			return NumberLiteral(-num), nil
		case "~":
			return NumberLiteral(float64(^toInt32(num))), nil
		}
		return NumberLiteral(num), nil
	}
	return EnumLiteral{}, newError(CannotEvaluate, n, "unsupported unary operator %q", op)
}

func (r *resolver) binary(n *ast.Node, depth int) (EnumLiteral, error) {
	op := n.Operator()
	switch op {
	case "|", "&", "^", "<<", ">>", ">>>", "+", "-", "*", "/", "%", "**":
	default:
		return EnumLiteral{}, newError(CannotEvaluate, n, "unsupported binary operator %q", op)
	}

	left, err := r.enumLike(n.Left(), depth+1)
	if err != nil {
		return EnumLiteral{}, err
	}
	right, err := r.enumLike(n.Right(), depth+1)
	if err != nil {
		return EnumLiteral{}, err
	}

	if op == "+" && (left.Kind() == LiteralString || right.Kind() == LiteralString) {
		return StringLiteral(left.String() + right.String()), nil
	}

	a, okA := toNumber(left)
	b, okB := toNumber(right)
	if !okA || !okB {
		return EnumLiteral{}, newError(CannotEvaluate, n, "operands of %s are not numeric", op)
	}

	switch op {
	case "|":
		return NumberLiteral(float64(toInt32(a) | toInt32(b))), nil
	case "&":
		return NumberLiteral(float64(toInt32(a) & toInt32(b))), nil
	case "^":
		return NumberLiteral(float64(toInt32(a) ^ toInt32(b))), nil
	case "<<":
		return NumberLiteral(float64(toInt32(a) << (toUint32(b) & 31))), nil
	case ">>":
		return NumberLiteral(float64(toInt32(a) >> (toUint32(b) & 31))), nil
	case ">>>":
		return NumberLiteral(float64(toUint32(a) >> (toUint32(b) & 31))), nil
	case "+":
		return NumberLiteral(a + b), nil
	case "-":
		return NumberLiteral(a - b), nil
	case "*":
		return NumberLiteral(a * b), nil
	case "/":
		return NumberLiteral(a / b), nil
	case "%":
		return NumberLiteral(math.Mod(a, b)), nil
	default:
		return NumberLiteral(math.Pow(a, b)), nil
	}
}

// toNumber applies JavaScript numeric coercion to booleans and numeric
// strings.
func toNumber(l EnumLiteral) (float64, bool) {
	switch l.Kind() {
	case LiteralNumber:
		return l.n, true
	case LiteralBool:
		if l.b {
			return 1, true
		}
		return 0, true
	}
	f, err := strconv.ParseFloat(l.s, 64)
	return f, err == nil
}

func truthy(l EnumLiteral) bool {
	switch l.Kind() {
	case LiteralNumber:
		return l.n != 0 && !math.IsNaN(l.n)
	case LiteralBool:
		return l.b
	}
	return l.s != ""
}

// toInt32 is ECMAScript ToInt32.
func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	m := math.Mod(math.Trunc(f), 1<<32)
	if m < 0 {
		m += 1 << 32
	}
	return int32(uint32(m))
}

func toUint32(f float64) uint32 {
	return uint32(toInt32(f))
}
