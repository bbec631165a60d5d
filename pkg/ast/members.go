package ast

// MemberKind classifies an object literal member.
type MemberKind int

const (
	// MemberProperty is `key: value`
	MemberProperty MemberKind = iota
	// MemberShorthand is `{ key }`
	MemberShorthand
	// MemberSpread is `...expr`
	MemberSpread
	// MemberGetter is `get key() {}`
	MemberGetter
	// MemberMethod is `key() {}` (including setters)
	MemberMethod
)

// Member is one entry of an object literal.
type Member struct {
	Kind MemberKind
	// Name is the static key. Empty for spreads and for computed keys that
	// are not string literals.
	Name     string
	Computed bool
	Key      *Node
	// Value is the value expression, the spread argument, or the method node
	// itself for getters and methods.
	Value *Node
	Node  *Node
}

// Members lists the members of an object literal in source order.
// It returns nil when n is not an object literal.
func (n *Node) Members() []Member {
	if n.Kind() != KindObject {
		return nil
	}
	var members []Member
	for _, child := range n.NamedChildren() {
		switch child.Type() {
		case "pair":
			key := child.Field("key")
			name, computed := keyName(key)
			members = append(members, Member{
				Kind:     MemberProperty,
				Name:     name,
				Computed: computed,
				Key:      key,
				Value:    child.Field("value"),
				Node:     child,
			})
		case "shorthand_property_identifier":
			members = append(members, Member{
				Kind:  MemberShorthand,
				Name:  child.Text(),
				Key:   child,
				Value: child,
				Node:  child,
			})
		case "spread_element":
			members = append(members, Member{
				Kind:  MemberSpread,
				Value: child.FirstNamedChild(),
				Node:  child,
			})
		case "method_definition":
			key := child.Field("name")
			name, computed := keyName(key)
			kind := MemberMethod
			if child.Kind() == KindGetAccessor {
				kind = MemberGetter
			}
			members = append(members, Member{
				Kind:     kind,
				Name:     name,
				Computed: computed,
				Key:      key,
				Value:    child,
				Node:     child,
			})
		}
	}
	return members
}

// Property returns the named member of an object literal. As in JavaScript,
// a later definition of the same key wins. Spreads are not expanded.
func (n *Node) Property(name string) (Member, bool) {
	var found Member
	ok := false
	for _, m := range n.Members() {
		if m.Kind != MemberSpread && m.Name == name {
			found, ok = m, true
		}
	}
	return found, ok
}

// PropertyValue returns the unwrapped value of a `key: value` or shorthand
// member, or nil.
func (n *Node) PropertyValue(name string) *Node {
	m, ok := n.Property(name)
	if !ok || (m.Kind != MemberProperty && m.Kind != MemberShorthand) {
		return nil
	}
	return Unwrap(m.Value)
}

// HasProperty reports whether the object literal declares name in any form.
func (n *Node) HasProperty(name string) bool {
	_, ok := n.Property(name)
	return ok
}

func keyName(key *Node) (string, bool) {
	if key == nil {
		return "", false
	}
	switch key.Type() {
	case "property_identifier", "identifier", "private_property_identifier":
		return key.Text(), false
	case "string":
		s, _ := key.StringValue()
		return s, false
	case "number":
		if v, _, ok := key.NumberValue(); ok {
			return formatNumberKey(v), false
		}
		return key.Text(), false
	case "computed_property_name":
		inner := Unwrap(key.FirstNamedChild())
		if s, ok := inner.StringValue(); ok {
			return s, true
		}
		if s, subs := inner.TemplateValue(); inner.Kind() == KindTemplate && subs == 0 {
			return s, true
		}
		return "", true
	}
	return key.Text(), false
}
