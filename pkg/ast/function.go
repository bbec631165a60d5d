package ast

// Params returns the parameter binding nodes of an arrow function, function
// or method. Type annotations and defaults are stripped, so `(x: T = 1)`
// yields the identifier `x`.
func (n *Node) Params() []*Node {
	switch n.Kind() {
	case KindArrowFunction, KindFunction, KindGetAccessor, KindMethod:
	default:
		return nil
	}
	if single := n.Field("parameter"); single != nil {
		return []*Node{single}
	}
	params := n.Field("parameters")
	if params == nil {
		return nil
	}
	var out []*Node
	for _, p := range params.NamedChildren() {
		out = append(out, paramBinding(p))
	}
	return out
}

// ParamNames returns the identifier names of Params; destructured
// parameters yield "".
func (n *Node) ParamNames() []string {
	params := n.Params()
	names := make([]string, len(params))
	for i, p := range params {
		if p != nil && p.Type() == "identifier" {
			names[i] = p.Text()
		}
	}
	return names
}

func paramBinding(p *Node) *Node {
	switch p.Type() {
	case "required_parameter", "optional_parameter":
		if pattern := p.Field("pattern"); pattern != nil {
			return paramBinding(pattern)
		}
	case "assignment_pattern":
		if left := p.Field("left"); left != nil {
			return left
		}
	}
	return p
}

// ReturnedExpression returns the expression a function evaluates to: the
// body of an expression-bodied arrow, or the argument of the first
// top-level return statement of a block body.
func (n *Node) ReturnedExpression() *Node {
	switch n.Kind() {
	case KindArrowFunction, KindFunction, KindGetAccessor, KindMethod:
	default:
		return nil
	}
	body := n.Field("body")
	if body == nil {
		return nil
	}
	if body.Type() != "statement_block" {
		return Unwrap(body)
	}
	for _, stmt := range body.NamedChildren() {
		if stmt.Type() == "return_statement" {
			return Unwrap(stmt.FirstNamedChild())
		}
	}
	return nil
}
