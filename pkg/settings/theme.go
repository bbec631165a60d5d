package settings

import (
	"strings"

	"github.com/gnana997/plugspec/pkg/ast"
)

// themeSource recognizes the theme idiom
//
//	names.map(name => ({ label: name, value: themes[name] }))
//
// and returns the `themes` identifier.
func (r *resolver) themeSource(cb mapCallback) (*ast.Node, bool) {
	if cb.body.Kind() != ast.KindObject || cb.elemParam == "" {
		return nil, false
	}
	value := cb.body.PropertyValue("value")
	if value.Kind() != ast.KindElementAccess {
		return nil, false
	}
	index := ast.Unwrap(value.Index())
	if index.Kind() != ast.KindIdentifier || index.Text() != cb.elemParam {
		return nil, false
	}
	themes := ast.Unwrap(value.Object())
	if themes.Kind() != ast.KindIdentifier {
		return nil, false
	}
	return themes, true
}

// themeItems evaluates every entry of a theme table to a string. Entries
// are typically built by a URL helper:
//
//	const themeUrl = (name: string) => `${BASE}/${COMMIT}/themes/${name}.json`;
//	export const themes = { DarkPlus: themeUrl("dark-plus"), ... };
func (r *resolver) themeItems(themes *ast.Node, depth int) ([]mapItem, error) {
	table, ok := r.resolveObjectLiteral(themes, depth)
	if !ok {
		return nil, newError(UnresolvableSymbol, themes, "theme table is not an object literal")
	}
	var items []mapItem
	for _, key := range r.objectKeys(table, depth+1) {
		expr, found, err := r.objectMember(table, key, depth+1)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, newError(MissingProperty, table, "theme %q has no value", key)
		}
		s, err := r.stringEval(expr, nil, depth+1)
		if err != nil {
			return nil, err
		}
		items = append(items, mapItem{elem: key, key: key, value: StringLiteral(s)})
	}
	return items, nil
}

// stringEval evaluates a string-building expression: literals, templates,
// `+` concatenation, module constants and calls to local single-expression
// helpers. env binds the parameters of the helper being evaluated.
func (r *resolver) stringEval(expr *ast.Node, env map[string]string, depth int) (string, error) {
	if depth > maxDepth {
		return "", newError(CannotEvaluate, expr, "string expression nests deeper than %d levels", maxDepth)
	}
	n := ast.Unwrap(expr)

	switch n.Kind() {
	case ast.KindIdentifier:
		if v, ok := env[n.Text()]; ok {
			return v, nil
		}
		init, ok := r.ctx.ResolveIdentifierWithFallback(n)
		if !ok {
			return "", newError(UnresolvableSymbol, n, "cannot resolve %q", n.Text())
		}
		return r.stringEval(init, nil, depth+1)
	case ast.KindTemplate:
		segments, exprs := n.TemplateParts()
		var b strings.Builder
		for i, seg := range segments {
			b.WriteString(seg)
			if i < len(exprs) {
				s, err := r.stringEval(exprs[i], env, depth+1)
				if err != nil {
					return "", err
				}
				b.WriteString(s)
			}
		}
		return b.String(), nil
	case ast.KindBinary:
		if n.Operator() != "+" {
			break
		}
		left, err := r.stringEval(n.Left(), env, depth+1)
		if err != nil {
			return "", err
		}
		right, err := r.stringEval(n.Right(), env, depth+1)
		if err != nil {
			return "", err
		}
		return left + right, nil
	case ast.KindCall:
		return r.helperCall(n, env, depth+1)
	}

	lit, err := r.enumLike(n, depth+1)
	if err != nil {
		return "", err
	}
	return lit.String(), nil
}

// helperCall evaluates `helper(args...)` by binding the helper's
// parameters and evaluating its returned expression.
func (r *resolver) helperCall(call *ast.Node, env map[string]string, depth int) (string, error) {
	callee := ast.Unwrap(call.Callee())
	if callee.Kind() != ast.KindIdentifier {
		return "", newError(CannotEvaluate, call, "cannot evaluate call to %s", callee.Text())
	}
	fn := r.follow(callee, depth)
	body := fn.ReturnedExpression()
	if body == nil {
		return "", newError(CannotEvaluate, call, "%q is not a single-expression function", callee.Text())
	}

	params := fn.ParamNames()
	args := call.Arguments()
	bound := make(map[string]string, len(params))
	for i, param := range params {
		if param == "" || i >= len(args) {
			continue
		}
		v, err := r.stringEval(args[i], env, depth+1)
		if err != nil {
			return "", err
		}
		bound[param] = v
	}
	return r.stringEval(body, bound, depth+1)
}
