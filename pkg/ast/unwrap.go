package ast

// Unwrap strips wrapper nodes (parentheses, `as`, `satisfies`, `<T>x`
// assertions and non-null `!`) until a non-wrapper node is reached.
// Unwrap is idempotent and returns nil for nil.
func Unwrap(n *Node) *Node {
	for n != nil && n.Kind() == KindWrapper {
		inner := n.wrapped()
		if inner == nil || Same(inner, n) {
			return n
		}
		n = inner
	}
	return n
}

// wrapped returns the expression a wrapper node carries.
func (n *Node) wrapped() *Node {
	children := n.NamedChildren()
	if len(children) == 0 {
		return nil
	}
	if n.Type() == "type_assertion" {
		// <T>expr: the type arguments come first
		return children[len(children)-1]
	}
	return children[0]
}

// AsType returns the target type of an `as`, `satisfies` or `<T>x`
// expression, or nil when n is not one or the target is `const`.
func AsType(n *Node) *Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "as_expression", "satisfies_expression":
		children := n.NamedChildren()
		if len(children) < 2 {
			return nil
		}
		return children[1]
	case "type_assertion":
		if args := n.FirstNamedChild(); args != nil && args.Type() == "type_arguments" {
			return args.FirstNamedChild()
		}
	}
	return nil
}

// WrapperTypes returns the type of every `as`/`satisfies` wrapper around the
// expression, outermost first.
func WrapperTypes(n *Node) []*Node {
	var types []*Node
	for n != nil && n.Kind() == KindWrapper {
		if t := AsType(n); t != nil {
			types = append(types, t)
		}
		inner := n.wrapped()
		if inner == nil || Same(inner, n) {
			break
		}
		n = inner
	}
	return types
}
