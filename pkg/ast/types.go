package ast

// IsStringArrayType reports whether a type node denotes an array of
// strings: `string[]`, `readonly string[]`, `Array<string>` or
// `ReadonlyArray<string>`. Type annotations (`: T`) are looked through.
func IsStringArrayType(t *Node) bool {
	elem, ok := ArrayElementType(t)
	return ok && elem != nil && elem.Type() == "predefined_type" && elem.Text() == "string"
}

// ArrayElementType returns the element type of an array type node.
func ArrayElementType(t *Node) (*Node, bool) {
	if t == nil {
		return nil, false
	}
	switch t.Type() {
	case "type_annotation", "parenthesized_type", "readonly_type":
		return ArrayElementType(t.FirstNamedChild())
	case "array_type":
		return t.FirstNamedChild(), true
	case "generic_type":
		name := t.Field("name")
		if name == nil || (name.Text() != "Array" && name.Text() != "ReadonlyArray") {
			return nil, false
		}
		args := t.Field("type_arguments")
		if args == nil {
			return nil, false
		}
		children := args.NamedChildren()
		if len(children) != 1 {
			return nil, false
		}
		return children[0], true
	}
	return nil, false
}
