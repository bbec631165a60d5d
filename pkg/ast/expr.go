package ast

import (
	"strconv"
	"strings"
)

// Callee returns the function expression of a call.
func (n *Node) Callee() *Node {
	if n.Kind() != KindCall {
		return nil
	}
	return n.Field("function")
}

// Arguments returns the arguments of a call.
func (n *Node) Arguments() []*Node {
	if n.Kind() != KindCall {
		return nil
	}
	args := n.Field("arguments")
	if args == nil || args.Type() != "arguments" {
		return nil
	}
	return args.NamedChildren()
}

// Argument returns the i-th call argument, unwrapped, or nil.
func (n *Node) Argument(i int) *Node {
	args := n.Arguments()
	if i < 0 || i >= len(args) {
		return nil
	}
	return Unwrap(args[i])
}

// Object returns the receiver of a property or element access.
func (n *Node) Object() *Node {
	switch n.Kind() {
	case KindPropertyAccess, KindElementAccess:
		return n.Field("object")
	}
	return nil
}

// PropertyName returns the member name of `obj.name`.
func (n *Node) PropertyName() string {
	if n.Kind() != KindPropertyAccess {
		return ""
	}
	if p := n.Field("property"); p != nil {
		return p.Text()
	}
	return ""
}

// Index returns the index expression of `obj[index]`.
func (n *Node) Index() *Node {
	if n.Kind() != KindElementAccess {
		return nil
	}
	return n.Field("index")
}

// Operator returns the operator of a binary or unary expression.
func (n *Node) Operator() string {
	switch n.Kind() {
	case KindBinary, KindUnary:
		if op := n.Field("operator"); op != nil {
			return op.Text()
		}
	}
	return ""
}

// Left returns the left operand of a binary expression.
func (n *Node) Left() *Node { return n.Field("left") }

// Right returns the right operand of a binary expression.
func (n *Node) Right() *Node { return n.Field("right") }

// Operand returns the argument of a unary expression.
func (n *Node) Operand() *Node { return n.Field("argument") }

// DottedName renders identifier chains like `Object.keys` or `a.b.c`.
// It fails for anything that is not a plain identifier path.
func DottedName(n *Node) (string, bool) {
	n = Unwrap(n)
	switch n.Kind() {
	case KindIdentifier:
		return n.Text(), true
	case KindPropertyAccess:
		base, ok := DottedName(n.Object())
		if !ok {
			return "", false
		}
		return base + "." + n.PropertyName(), true
	}
	return "", false
}

// CalleeName returns the dotted name of a call's callee.
func (n *Node) CalleeName() (string, bool) {
	return DottedName(n.Callee())
}

// IsCallTo reports whether n calls the dotted name.
func (n *Node) IsCallTo(name string) bool {
	got, ok := n.CalleeName()
	return ok && got == name
}

// MethodCall splits `receiver.method(...)` into receiver and method name.
func (n *Node) MethodCall() (receiver *Node, method string, ok bool) {
	callee := Unwrap(n.Callee())
	if callee.Kind() != KindPropertyAccess {
		return nil, "", false
	}
	return callee.Object(), callee.PropertyName(), true
}

func formatNumberKey(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strings.TrimRight(strconv.FormatFloat(v, 'f', -1, 64), ".")
}
