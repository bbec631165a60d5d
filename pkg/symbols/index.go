package symbols

import (
	"github.com/gnana997/plugspec/pkg/ast"
)

// DeclKind classifies a module-scope declaration.
type DeclKind int

const (
	DeclVariable DeclKind = iota
	DeclEnum
	DeclFunction
	DeclClass
	// DeclDefault is the expression of `export default <expr>`
	DeclDefault
	// DeclNamespace is the module object bound by `import * as ns`
	DeclNamespace
)

func (k DeclKind) String() string {
	switch k {
	case DeclVariable:
		return "variable"
	case DeclEnum:
		return "enum"
	case DeclFunction:
		return "function"
	case DeclClass:
		return "class"
	case DeclDefault:
		return "default"
	case DeclNamespace:
		return "namespace"
	default:
		return "unknown"
	}
}

// Declaration is a resolved module-scope binding.
type Declaration struct {
	Name string
	Kind DeclKind
	// Node is the declarator, enum, function or class node.
	Node *ast.Node
	// Init is the bound expression: a variable initializer, the default
	// export expression, or Node itself for enums, functions and classes.
	// Nil for `let x;` and namespaces.
	Init *ast.Node
	// Type is the declared type annotation of a variable, if any.
	Type *ast.Node
	// File is the declaring file; for namespaces, the imported module.
	File *ast.File
}

// defaultLocal is the local name under which `export default <expr>` is
// stored. It cannot collide with an identifier.
const defaultLocal = "*default*"

type importBinding struct {
	spec     string
	imported string // "default", "*" for namespaces, or the exported name
}

type exportBinding struct {
	local    string // set for local exports
	spec     string // set for re-exports
	imported string
}

// moduleScope is the module-scope symbol table of one file.
type moduleScope struct {
	file        *ast.File
	decls       map[string]Declaration
	imports     map[string]importBinding
	exports     map[string]exportBinding
	starExports []string
}

func indexFile(f *ast.File) *moduleScope {
	scope := &moduleScope{
		file:    f,
		decls:   make(map[string]Declaration),
		imports: make(map[string]importBinding),
		exports: make(map[string]exportBinding),
	}

	for _, stmt := range f.Root().NamedChildren() {
		switch stmt.Type() {
		case "import_statement":
			scope.indexImport(stmt)
		case "export_statement":
			scope.indexExport(stmt)
		default:
			scope.indexDeclaration(stmt)
		}
	}
	return scope
}

// indexDeclaration records the names stmt declares and returns them.
func (s *moduleScope) indexDeclaration(stmt *ast.Node) []string {
	var names []string
	switch stmt.Type() {
	case "lexical_declaration", "variable_declaration":
		for _, declarator := range stmt.NamedChildren() {
			if declarator.Type() != "variable_declarator" {
				continue
			}
			name := declarator.Field("name")
			if name == nil || name.Type() != "identifier" {
				// destructuring patterns bind nothing we can evaluate
				continue
			}
			s.decls[name.Text()] = Declaration{
				Name: name.Text(),
				Kind: DeclVariable,
				Node: declarator,
				Init: declarator.Field("value"),
				Type: declarator.Field("type"),
				File: s.file,
			}
			names = append(names, name.Text())
		}
	case "enum_declaration":
		names = s.addNamed(stmt, DeclEnum)
	case "function_declaration", "generator_function_declaration":
		names = s.addNamed(stmt, DeclFunction)
	case "class_declaration", "abstract_class_declaration":
		names = s.addNamed(stmt, DeclClass)
	case "ambient_declaration":
		// declare const X: ...;  declare enum E {}
		for _, child := range stmt.NamedChildren() {
			names = append(names, s.indexDeclaration(child)...)
		}
	}
	return names
}

func (s *moduleScope) addNamed(stmt *ast.Node, kind DeclKind) []string {
	name := stmt.Field("name")
	if name == nil {
		return nil
	}
	s.decls[name.Text()] = Declaration{
		Name: name.Text(),
		Kind: kind,
		Node: stmt,
		Init: stmt,
		File: s.file,
	}
	return []string{name.Text()}
}

func (s *moduleScope) indexImport(stmt *ast.Node) {
	spec, ok := stmt.Field("source").StringValue()
	if !ok {
		return
	}
	for _, child := range stmt.NamedChildren() {
		if child.Type() != "import_clause" {
			continue
		}
		for _, part := range child.NamedChildren() {
			switch part.Type() {
			case "identifier":
				s.imports[part.Text()] = importBinding{spec: spec, imported: "default"}
			case "namespace_import":
				if local := part.FirstNamedChild(); local != nil {
					s.imports[local.Text()] = importBinding{spec: spec, imported: "*"}
				}
			case "named_imports":
				for _, specifier := range part.NamedChildren() {
					if specifier.Type() != "import_specifier" {
						continue
					}
					imported := moduleExportName(specifier.Field("name"))
					local := imported
					if alias := specifier.Field("alias"); alias != nil {
						local = alias.Text()
					}
					s.imports[local] = importBinding{spec: spec, imported: imported}
				}
			}
		}
	}
}

func (s *moduleScope) indexExport(stmt *ast.Node) {
	isDefault := stmt.HasToken("default")

	if decl := stmt.Field("declaration"); decl != nil {
		for _, name := range s.indexDeclaration(decl) {
			s.exports[name] = exportBinding{local: name}
			if isDefault {
				s.exports["default"] = exportBinding{local: name}
			}
		}
		return
	}

	if value := stmt.Field("value"); value != nil {
		if id := ast.Unwrap(value); id.Kind() == ast.KindIdentifier {
			s.exports["default"] = exportBinding{local: id.Text()}
			return
		}
		s.decls[defaultLocal] = Declaration{
			Name: "default",
			Kind: DeclDefault,
			Node: stmt,
			Init: value,
			File: s.file,
		}
		s.exports["default"] = exportBinding{local: defaultLocal}
		return
	}

	spec, hasSource := stmt.Field("source").StringValue()
	sawClause := false
	for _, child := range stmt.NamedChildren() {
		switch child.Type() {
		case "export_clause":
			sawClause = true
			for _, specifier := range child.NamedChildren() {
				if specifier.Type() != "export_specifier" {
					continue
				}
				name := moduleExportName(specifier.Field("name"))
				exported := name
				if alias := specifier.Field("alias"); alias != nil {
					exported = moduleExportName(alias)
				}
				if hasSource {
					s.exports[exported] = exportBinding{spec: spec, imported: name}
				} else {
					s.exports[exported] = exportBinding{local: name}
				}
			}
		case "namespace_export":
			// export * as ns from "./mod"
			sawClause = true
			if id := child.FirstNamedChild(); id != nil && hasSource {
				s.exports[moduleExportName(id)] = exportBinding{spec: spec, imported: "*"}
			}
		}
	}
	if hasSource && !sawClause {
		s.starExports = append(s.starExports, spec)
	}
}

// moduleExportName reads an identifier or string module export name.
func moduleExportName(n *ast.Node) string {
	if n == nil {
		return ""
	}
	if s, ok := n.StringValue(); ok {
		return s
	}
	return n.Text()
}
