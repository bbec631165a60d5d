package settings

import (
	"github.com/gnana997/plugspec/pkg/ast"
	"github.com/gnana997/plugspec/pkg/symbols"
)

// ExtractSelectOptions resolves the `options` member of a SELECT-like
// descriptor. Recognized shapes, in priority order:
//
//  1. Array.from(array)
//  2. <base>.map(callback) where base is an array literal,
//     Object.keys(obj), Object.values(obj), or an identifier; with the
//     theme idiom `names.map(n => ({ value: themes[n] }))`
//  3. an array literal of option objects `{ label, value }` or of raw
//     literals, with `...spread` entries expanded in place
//
// A missing `options` member or an unrecognized call yields an empty
// result. An array whose elements all fail to resolve is CannotEvaluate.
func ExtractSelectOptions(descriptor *ast.Node, ctx *symbols.Context) (OptionsResult, error) {
	a, err := analyzeOptions(descriptor, ctx)
	return a.options, err
}

// ExtractSelectDefault finds the default option: an option object with
// `default: true`, or for `.map` lists the element selected by the
// callback's `default` comparison. ok is false when there is none.
func ExtractSelectDefault(descriptor *ast.Node, ctx *symbols.Context) (value EnumLiteral, ok bool, err error) {
	a, err := analyzeOptions(descriptor, ctx)
	if err != nil {
		return EnumLiteral{}, false, err
	}
	return a.def, a.hasDef, nil
}

type optionsAnalysis struct {
	options OptionsResult
	def     EnumLiteral
	hasDef  bool
}

func (a *optionsAnalysis) setDefault(v EnumLiteral) {
	if !a.hasDef {
		a.def, a.hasDef = v, true
	}
}

func analyzeOptions(descriptor *ast.Node, ctx *symbols.Context) (optionsAnalysis, error) {
	a := optionsAnalysis{options: emptyOptions()}
	desc := ast.Unwrap(descriptor)
	if desc.Kind() != ast.KindObject {
		return a, newError(InvalidNodeType, desc, "descriptor is %s, not an object literal", desc.Kind())
	}
	m, ok := desc.Property("options")
	if !ok || (m.Kind != ast.MemberProperty && m.Kind != ast.MemberShorthand) {
		return a, nil
	}
	r := newResolver(ctx)
	err := r.optionsFrom(&a, m.Value, 0)
	return a, err
}

func (r *resolver) optionsFrom(a *optionsAnalysis, expr *ast.Node, depth int) error {
	if depth > maxDepth {
		return newError(CannotEvaluate, expr, "options nest deeper than %d levels", maxDepth)
	}
	n := ast.Unwrap(expr)

	switch n.Kind() {
	case ast.KindIdentifier:
		init, ok := r.ctx.ResolveIdentifierWithFallback(n)
		if !ok {
			return newError(UnresolvableSymbol, n, "cannot resolve options %q", n.Text())
		}
		return r.optionsFrom(a, init, depth+1)
	case ast.KindCall:
		if n.IsCallTo("Array.from") {
			if arr, ok := r.resolveArrayLiteral(n.Argument(0), depth+1); ok {
				return r.rawElements(a, arr, depth+1)
			}
		}
		if receiver, method, ok := n.MethodCall(); ok && method == "map" {
			return r.mapOptions(a, receiver, n.Argument(0), depth+1)
		}
		return nil
	case ast.KindArray:
		return r.plainArray(a, n, depth+1)
	}
	return nil
}

// rawElements resolves every element of an array (spreads expanded)
// through the enum-like resolver. Unresolvable elements are dropped.
func (r *resolver) rawElements(a *optionsAnalysis, arr *ast.Node, depth int) error {
	elems, lastErr := r.flatten(arr, depth)
	for _, elem := range elems {
		v, err := r.enumLike(elem, depth+1)
		if err != nil {
			lastErr = err
			continue
		}
		a.options.add(v, "", false)
	}
	if len(a.options.Values) == 0 && lastErr != nil {
		return newError(CannotEvaluate, arr, "no option could be resolved: %v", lastErr)
	}
	return nil
}

// flatten returns the elements of an array literal with spreads of
// resolvable arrays expanded in place. Spreads that cannot be resolved are
// skipped; skipped reports the last of them so callers can fail when
// nothing else resolves.
func (r *resolver) flatten(arr *ast.Node, depth int) (out []*ast.Node, skipped error) {
	if depth > maxDepth {
		return nil, newError(CannotEvaluate, arr, "spreads nest deeper than %d levels", maxDepth)
	}
	for _, elem := range arr.NamedChildren() {
		if elem.Kind() != ast.KindSpread {
			out = append(out, elem)
			continue
		}
		inner, ok := r.resolveArrayLiteral(elem.FirstNamedChild(), depth+1)
		if !ok {
			skipped = newError(UnresolvableSymbol, elem, "cannot resolve spread %q", elem.Text())
			continue
		}
		expanded, err := r.flatten(inner, depth+1)
		if err != nil {
			skipped = err
		}
		out = append(out, expanded...)
	}
	return out, skipped
}

// plainArray handles `options: [...]`. Once any element is an option
// object, raw literal elements are ignored.
func (r *resolver) plainArray(a *optionsAnalysis, arr *ast.Node, depth int) error {
	elems, lastErr := r.flatten(arr, depth)

	hasObjects := false
	for _, elem := range elems {
		if r.follow(elem, depth+1).Kind() == ast.KindObject {
			hasObjects = true
			break
		}
	}
	if !hasObjects {
		return r.rawElements(a, arr, depth)
	}

	for _, elem := range elems {
		option := r.follow(elem, depth+1)
		if option.Kind() != ast.KindObject {
			continue
		}
		valueMember, ok := option.Property("value")
		if !ok {
			return newError(MissingProperty, option, "option has no value")
		}
		v, err := r.enumLike(valueMember.Value, depth+1)
		if err != nil {
			lastErr = err
			continue
		}

		label, hasLabel := "", false
		if l := option.PropertyValue("label"); l != nil {
			if lit, err := r.enumLike(l, depth+1); err == nil {
				label, hasLabel = lit.StringValue()
			}
		}
		a.options.add(v, label, hasLabel)

		if d := option.PropertyValue("default"); d != nil {
			if lit, err := r.enumLike(d, depth+1); err == nil && truthy(lit) {
				a.setDefault(v)
			}
		}
	}

	if len(a.options.Values) == 0 {
		return newError(CannotEvaluate, arr, "no option could be resolved: %v", lastErr)
	}
	return nil
}

// mapItem is one element a `.map` callback is applied to. elem is the
// string form of what the callback parameter binds to; key is the object
// key the element came from, if any.
type mapItem struct {
	elem  string
	key   string
	value EnumLiteral
}

// mapCallback describes the parts of a `.map` callback the extractor reads.
type mapCallback struct {
	elemParam  string
	indexParam string
	body       *ast.Node
}

func (r *resolver) parseCallback(expr *ast.Node, depth int) mapCallback {
	fn := r.follow(expr, depth)
	var cb mapCallback
	params := fn.ParamNames()
	if len(params) > 0 {
		cb.elemParam = params[0]
	}
	if len(params) > 1 {
		cb.indexParam = params[1]
	}
	cb.body = fn.ReturnedExpression()
	return cb
}

// labelIsElement reports whether the callback labels each option with the
// element itself: `x => ({ label: x, ... })`.
func (cb mapCallback) labelIsElement() bool {
	if cb.body.Kind() != ast.KindObject || cb.elemParam == "" {
		return false
	}
	label := cb.body.PropertyValue("label")
	return label.Kind() == ast.KindIdentifier && label.Text() == cb.elemParam
}

func (r *resolver) mapOptions(a *optionsAnalysis, receiver, callback *ast.Node, depth int) error {
	if depth > maxDepth {
		return newError(CannotEvaluate, receiver, "map chain nests deeper than %d levels", maxDepth)
	}
	cb := r.parseCallback(callback, depth+1)

	items, err := r.mapBase(receiver, cb, depth+1)
	if err != nil {
		return err
	}

	withLabels := cb.labelIsElement()
	for _, item := range items {
		a.options.add(item.value, item.elem, withLabels)
	}
	r.mapDefault(a, items, cb, depth+1)
	return nil
}

// mapBase resolves the receiver of `.map` to its items.
func (r *resolver) mapBase(receiver *ast.Node, cb mapCallback, depth int) ([]mapItem, error) {
	if depth > maxDepth {
		return nil, newError(CannotEvaluate, receiver, "map receiver nests deeper than %d levels", maxDepth)
	}
	recv := ast.Unwrap(receiver)

	switch recv.Kind() {
	case ast.KindArray:
		return r.arrayItems(recv, depth+1)
	case ast.KindCall:
		switch {
		case recv.IsCallTo("Object.keys"):
			return r.keyItems(recv.Argument(0), depth+1)
		case recv.IsCallTo("Object.values"):
			return r.valueItems(recv.Argument(0), depth+1)
		case recv.IsCallTo("Array.from"):
			if arr, ok := r.resolveArrayLiteral(recv.Argument(0), depth+1); ok {
				return r.arrayItems(arr, depth+1)
			}
		}
		return nil, nil
	case ast.KindIdentifier:
		if themes, ok := r.themeSource(cb); ok {
			if items, err := r.themeItems(themes, depth+1); err == nil && len(items) > 0 {
				return items, nil
			}
			return r.keyItems(themes, depth+1)
		}
		init, ok := r.ctx.ResolveIdentifierWithFallback(recv)
		if !ok {
			return nil, newError(UnresolvableSymbol, recv, "cannot resolve %q", recv.Text())
		}
		return r.mapBase(init, cb, depth+1)
	}
	return nil, nil
}

// arrayItems resolves each element of an array base; partial success keeps
// the resolvable subset.
func (r *resolver) arrayItems(arr *ast.Node, depth int) ([]mapItem, error) {
	elems, lastErr := r.flatten(arr, depth)
	var items []mapItem
	for _, elem := range elems {
		v, err := r.enumLike(elem, depth+1)
		if err != nil {
			lastErr = err
			continue
		}
		items = append(items, mapItem{elem: v.String(), value: v})
	}
	if len(items) == 0 && lastErr != nil {
		return nil, newError(CannotEvaluate, arr, "no array element could be resolved: %v", lastErr)
	}
	return items, nil
}

// keyItems returns the property names of the object obj resolves to. The
// callback's value expression is not evaluated: the keys themselves are
// the option values.
func (r *resolver) keyItems(obj *ast.Node, depth int) ([]mapItem, error) {
	target, ok := r.resolveObjectLiteral(obj, depth)
	if !ok {
		return nil, newError(UnresolvableSymbol, obj, "Object.keys argument is not an object literal")
	}
	var items []mapItem
	for _, name := range r.objectKeys(target, depth+1) {
		items = append(items, mapItem{elem: name, key: name, value: StringLiteral(name)})
	}
	return items, nil
}

// objectKeys lists the static keys of an object literal in definition
// order, spreads included.
func (r *resolver) objectKeys(obj *ast.Node, depth int) []string {
	if depth > maxDepth {
		return nil
	}
	var keys []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			keys = append(keys, name)
		}
	}
	for _, m := range obj.Members() {
		if m.Kind == ast.MemberSpread {
			if spread, ok := r.resolveObjectLiteral(m.Value, depth+1); ok {
				for _, k := range r.objectKeys(spread, depth+1) {
					add(k)
				}
			}
			continue
		}
		add(m.Name)
	}
	return keys
}

// valueItems resolves each property value of the object obj resolves to.
func (r *resolver) valueItems(obj *ast.Node, depth int) ([]mapItem, error) {
	target, ok := r.resolveObjectLiteral(obj, depth)
	if !ok {
		return nil, newError(UnresolvableSymbol, obj, "Object.values argument is not an object literal")
	}
	var items []mapItem
	for _, key := range r.objectKeys(target, depth+1) {
		value, found, err := r.objectMember(target, key, depth+1)
		if err != nil || !found {
			continue
		}
		v, err := r.enumLike(value, depth+1)
		if err != nil {
			continue
		}
		items = append(items, mapItem{elem: v.String(), key: key, value: v})
	}
	return items, nil
}

// mapDefault applies the callback's `default` property. Recognized
// comparisons select one item:
//
//	x => ({ default: x === "b" })
//	(x, i) => ({ default: i === 0 })
//	x => ({ default: obj[x] === obj.Member })
//
// Any other `default` property selects the first item. A callback without
// a `default` property leaves the list without a default.
func (r *resolver) mapDefault(a *optionsAnalysis, items []mapItem, cb mapCallback, depth int) {
	if len(items) == 0 || cb.body.Kind() != ast.KindObject || !cb.body.HasProperty("default") {
		return
	}
	if v, ok := r.defaultComparison(items, cb, depth); ok {
		a.setDefault(v)
		return
	}
	a.setDefault(items[0].value)
}

func (r *resolver) defaultComparison(items []mapItem, cb mapCallback, depth int) (EnumLiteral, bool) {
	cmp := cb.body.PropertyValue("default")
	if cmp.Kind() != ast.KindBinary {
		return EnumLiteral{}, false
	}
	switch cmp.Operator() {
	case "===", "==":
	default:
		return EnumLiteral{}, false
	}

	sides := [2]*ast.Node{ast.Unwrap(cmp.Left()), ast.Unwrap(cmp.Right())}
	for i, side := range sides {
		other := sides[1-i]

		if side.Kind() == ast.KindIdentifier && cb.elemParam != "" && side.Text() == cb.elemParam {
			lit, err := r.enumLike(other, depth+1)
			if err != nil {
				continue
			}
			for _, item := range items {
				if item.elem == lit.String() || item.value == lit {
					return item.value, true
				}
			}
			return lit, true
		}

		if side.Kind() == ast.KindIdentifier && cb.indexParam != "" && side.Text() == cb.indexParam {
			lit, err := r.enumLike(other, depth+1)
			if err != nil {
				continue
			}
			if idx, ok := lit.NumberValue(); ok && idx >= 0 && int(idx) < len(items) && idx == float64(int(idx)) {
				return items[int(idx)].value, true
			}
			continue
		}

		// obj[x] === obj.Member
		if side.Kind() == ast.KindElementAccess && other.Kind() == ast.KindPropertyAccess {
			index := ast.Unwrap(side.Index())
			if index.Kind() != ast.KindIdentifier || index.Text() != cb.elemParam {
				continue
			}
			member := other.PropertyName()
			for _, item := range items {
				if item.key == member {
					return item.value, true
				}
			}
		}
	}
	return EnumLiteral{}, false
}
