// Package ast is a read-only view over tree-sitter trees of plugin sources.
//
// The grammar's open set of node types is folded into a closed Kind
// vocabulary so the settings engine can dispatch with a switch. A Node is only
// valid while the File it came from is open.
package ast

import (
	"fmt"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/plugspec/pkg/parser"
)

// Kind is the closed vocabulary of source node kinds the engine understands.
type Kind int

const (
	KindUnknown Kind = iota
	KindString
	KindNumber
	KindBoolean
	KindNull
	KindUndefined
	KindBigInt
	KindTemplate
	KindIdentifier
	KindObject
	KindArray
	KindSpread
	KindCall
	KindPropertyAccess
	KindElementAccess
	KindBinary
	KindUnary
	KindArrowFunction
	KindFunction
	KindGetAccessor
	KindMethod
	// KindWrapper covers parentheses, `as`, `satisfies`, `<T>x` and `x!`
	KindWrapper
	KindEnum
)

var kindNames = [...]string{
	KindUnknown:        "unknown",
	KindString:         "string",
	KindNumber:         "number",
	KindBoolean:        "boolean",
	KindNull:           "null",
	KindUndefined:      "undefined",
	KindBigInt:         "bigint",
	KindTemplate:       "template",
	KindIdentifier:     "identifier",
	KindObject:         "object",
	KindArray:          "array",
	KindSpread:         "spread",
	KindCall:           "call",
	KindPropertyAccess: "property_access",
	KindElementAccess:  "element_access",
	KindBinary:         "binary",
	KindUnary:          "unary",
	KindArrowFunction:  "arrow_function",
	KindFunction:       "function",
	KindGetAccessor:    "get_accessor",
	KindMethod:         "method",
	KindWrapper:        "wrapper",
	KindEnum:           "enum",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsLiteral reports whether k is a scalar literal kind.
func (k Kind) IsLiteral() bool {
	switch k {
	case KindString, KindNumber, KindBoolean, KindNull, KindUndefined, KindBigInt:
		return true
	}
	return false
}

// File is one parsed source file. It owns its tree-sitter tree.
type File struct {
	Path     string
	Source   []byte
	Language parser.Language

	tree *ts.Tree
}

// Parse parses source with the grammar matching path. Trees with syntax
// errors are kept: the descriptor objects are usually intact.
func Parse(pm *parser.ParserManager, path string, source []byte) (*File, error) {
	tree, err := pm.ParseFile(source, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &File{
		Path:     path,
		Source:   source,
		Language: parser.DetectLanguage(path),
		tree:     tree,
	}, nil
}

// Root returns the program node.
func (f *File) Root() *Node {
	if f == nil || f.tree == nil {
		return nil
	}
	return wrap(f, f.tree.RootNode())
}

// Tree returns the underlying tree-sitter tree, for running queries.
func (f *File) Tree() *ts.Tree {
	if f == nil {
		return nil
	}
	return f.tree
}

// HasErrors reports whether the tree contains syntax errors.
func (f *File) HasErrors() bool {
	root := f.Root()
	return root != nil && root.ts.HasError()
}

// Close releases the tree. Nodes from the file must not be used afterwards.
func (f *File) Close() {
	if f != nil && f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// Node is a node of a parsed File.
type Node struct {
	ts   ts.Node
	file *File
}

// NodeKey identifies a node across separately obtained *Node values.
type NodeKey struct {
	file *File
	id   uintptr
}

// FromTS wraps a node obtained from a query over f's tree.
func FromTS(f *File, n *ts.Node) *Node {
	return wrap(f, n)
}

func wrap(f *File, n *ts.Node) *Node {
	if n == nil {
		return nil
	}
	return &Node{ts: *n, file: f}
}

// File returns the file the node belongs to.
func (n *Node) File() *File { return n.file }

// Type returns the raw grammar node type, e.g. "member_expression".
func (n *Node) Type() string { return n.ts.Kind() }

// Text returns the source text of the node.
func (n *Node) Text() string { return n.ts.Utf8Text(n.file.Source) }

// Key returns a comparable identity for the node.
func (n *Node) Key() NodeKey { return NodeKey{file: n.file, id: n.ts.Id()} }

// Same reports whether a and b are the same source node.
func Same(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Key() == b.Key()
}

// Line returns the 1-based start line.
func (n *Node) Line() int { return int(n.ts.StartPosition().Row) + 1 }

// Location formats the node position as path:line:column.
func (n *Node) Location() string {
	pos := n.ts.StartPosition()
	return fmt.Sprintf("%s:%d:%d", n.file.Path, pos.Row+1, pos.Column+1)
}

// Kind classifies the node.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindUnknown
	}
	switch n.ts.Kind() {
	case "string":
		return KindString
	case "number":
		if strings.HasSuffix(n.Text(), "n") {
			return KindBigInt
		}
		return KindNumber
	case "true", "false":
		return KindBoolean
	case "null":
		return KindNull
	case "undefined":
		return KindUndefined
	case "template_string":
		return KindTemplate
	case "identifier", "shorthand_property_identifier":
		if n.Text() == "undefined" {
			return KindUndefined
		}
		return KindIdentifier
	case "object":
		return KindObject
	case "array":
		return KindArray
	case "spread_element":
		return KindSpread
	case "call_expression":
		return KindCall
	case "member_expression":
		return KindPropertyAccess
	case "subscript_expression":
		return KindElementAccess
	case "binary_expression":
		return KindBinary
	case "unary_expression":
		return KindUnary
	case "arrow_function":
		return KindArrowFunction
	case "function_expression", "function", "function_declaration":
		return KindFunction
	case "method_definition":
		if n.hasAnonymousChild("get") {
			return KindGetAccessor
		}
		return KindMethod
	case "parenthesized_expression", "as_expression", "satisfies_expression",
		"non_null_expression", "type_assertion":
		return KindWrapper
	case "enum_declaration":
		return KindEnum
	default:
		return KindUnknown
	}
}

// Field returns the child stored under a grammar field name.
func (n *Node) Field(name string) *Node {
	if n == nil {
		return nil
	}
	return wrap(n.file, n.ts.ChildByFieldName(name))
}

// Parent returns the parent node, or nil at the root.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return wrap(n.file, n.ts.Parent())
}

// NamedChildren returns the named children, skipping comments.
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	count := n.ts.ChildCount()
	children := make([]*Node, 0, count)
	for i := uint(0); i < count; i++ {
		child := n.ts.Child(i)
		if child == nil || !child.IsNamed() || child.Kind() == "comment" {
			continue
		}
		children = append(children, wrap(n.file, child))
	}
	return children
}

// FirstNamedChild returns the first non-comment named child.
func (n *Node) FirstNamedChild() *Node {
	children := n.NamedChildren()
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// Walk visits n and its named descendants in source order. Returning false
// from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.NamedChildren() {
		child.Walk(fn)
	}
}

func (n *Node) hasAnonymousChild(token string) bool {
	count := n.ts.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.ts.Child(i)
		if child != nil && !child.IsNamed() && child.Kind() == token {
			return true
		}
	}
	return false
}

// HasToken reports whether n has an anonymous child token such as
// "default", "get" or "type".
func (n *Node) HasToken(token string) bool {
	return n != nil && n.hasAnonymousChild(token)
}
