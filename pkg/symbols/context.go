// Package symbols resolves identifiers in plugin sources to the expressions
// that declare them.
//
// A Context indexes the module scope of every loaded file once and is
// read-only afterwards, so it can be shared by concurrent analyses.
package symbols

import (
	"log/slog"
	"path/filepath"

	"github.com/gnana997/plugspec/pkg/ast"
)

// maxAliasDepth bounds import/re-export chains.
const maxAliasDepth = 32

// Context is the resolution context threaded through the settings engine.
type Context struct {
	files      map[string]*ast.File
	scopes     map[*ast.File]*moduleScope
	resolver   ModuleResolver
	knownEnums KnownEnums
	logger     *slog.Logger
}

// Option configures a Context.
type Option func(*Context)

// WithAliases sets the path aliases used to resolve bare specifiers.
func WithAliases(aliases map[string]string) Option {
	return func(c *Context) { c.resolver.Aliases = aliases }
}

// WithKnownEnums replaces the built-in known enum table.
func WithKnownEnums(enums KnownEnums) Option {
	return func(c *Context) {
		if enums != nil {
			c.knownEnums = enums
		}
	}
}

// WithLogger sets the logger. A nil logger uses slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewContext indexes files.
func NewContext(files []*ast.File, opts ...Option) *Context {
	c := &Context{
		files:      make(map[string]*ast.File, len(files)),
		scopes:     make(map[*ast.File]*moduleScope, len(files)),
		knownEnums: DefaultKnownEnums(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, f := range files {
		if f == nil {
			continue
		}
		c.files[filepath.Clean(f.Path)] = f
		c.scopes[f] = indexFile(f)
	}
	return c
}

// Files returns the number of indexed files.
func (c *Context) Files() int { return len(c.files) }

// File returns the indexed file at path.
func (c *Context) File(path string) (*ast.File, bool) {
	f, ok := c.files[filepath.Clean(path)]
	return f, ok
}

// Resolver returns the module resolver.
func (c *Context) Resolver() ModuleResolver { return c.resolver }

// KnownEnum returns the value of a well-known enum member.
func (c *Context) KnownEnum(enum, member string) (float64, bool) {
	return c.knownEnums.Lookup(enum, member)
}

// KnownEnums returns the known enum table.
func (c *Context) KnownEnums() KnownEnums { return c.knownEnums }

// ResolveModule returns the loaded file that spec, imported from `from`,
// refers to.
func (c *Context) ResolveModule(from *ast.File, spec string) (*ast.File, bool) {
	for _, candidate := range c.resolver.Candidates(from.Path, spec) {
		if f, ok := c.files[candidate]; ok {
			return f, true
		}
	}
	return nil, false
}

// Lookup resolves name in the module scope of file, following imports and
// re-exports to the declaring file.
func (c *Context) Lookup(file *ast.File, name string) (Declaration, bool) {
	return c.lookup(file, name, make(map[lookupKey]bool))
}

type lookupKey struct {
	file   *ast.File
	name   string
	export bool
}

func (c *Context) lookup(file *ast.File, name string, seen map[lookupKey]bool) (Declaration, bool) {
	key := lookupKey{file: file, name: name}
	if seen[key] || len(seen) > maxAliasDepth {
		return Declaration{}, false
	}
	seen[key] = true

	scope, ok := c.scopes[file]
	if !ok {
		return Declaration{}, false
	}
	if decl, ok := scope.decls[name]; ok {
		return decl, true
	}

	binding, ok := scope.imports[name]
	if !ok {
		return Declaration{}, false
	}
	target, ok := c.ResolveModule(file, binding.spec)
	if !ok {
		c.logger.Debug("import not loaded", "file", file.Path, "specifier", binding.spec, "name", name)
		return Declaration{}, false
	}
	if binding.imported == "*" {
		return Declaration{Name: name, Kind: DeclNamespace, File: target}, true
	}
	return c.lookupExport(target, binding.imported, seen)
}

// LookupExport resolves the declaration exported from file under name.
func (c *Context) LookupExport(file *ast.File, name string) (Declaration, bool) {
	return c.lookupExport(file, name, make(map[lookupKey]bool))
}

func (c *Context) lookupExport(file *ast.File, name string, seen map[lookupKey]bool) (Declaration, bool) {
	key := lookupKey{file: file, name: name, export: true}
	if seen[key] || len(seen) > maxAliasDepth {
		return Declaration{}, false
	}
	seen[key] = true

	scope, ok := c.scopes[file]
	if !ok {
		return Declaration{}, false
	}

	if binding, ok := scope.exports[name]; ok {
		if binding.spec == "" {
			return c.lookup(file, binding.local, seen)
		}
		target, ok := c.ResolveModule(file, binding.spec)
		if !ok {
			return Declaration{}, false
		}
		if binding.imported == "*" {
			return Declaration{Name: name, Kind: DeclNamespace, File: target}, true
		}
		return c.lookupExport(target, binding.imported, seen)
	}

	if name == "default" {
		return Declaration{}, false
	}
	for _, spec := range scope.starExports {
		target, ok := c.ResolveModule(file, spec)
		if !ok {
			continue
		}
		if decl, ok := c.lookupExport(target, name, seen); ok {
			return decl, true
		}
	}
	return Declaration{}, false
}

// ResolveDeclaration resolves an identifier node to its declaration.
func (c *Context) ResolveDeclaration(id *ast.Node) (Declaration, bool) {
	if id.Kind() != ast.KindIdentifier {
		return Declaration{}, false
	}
	return c.Lookup(id.File(), id.Text())
}

// ResolveIdentifierInitializer returns the expression bound to an
// identifier: a variable initializer, an enum, a function or a default
// export expression. Alias chains are followed; failures along the chain
// yield false.
func (c *Context) ResolveIdentifierInitializer(id *ast.Node) (*ast.Node, bool) {
	decl, ok := c.ResolveDeclaration(id)
	if !ok || decl.Init == nil {
		return nil, false
	}
	return decl.Init, true
}

// ResolveIdentifierWithFallback is ResolveIdentifierInitializer, falling
// back to a scan of every variable declarator in the identifier's own file.
// The scan also finds block-scoped declarations the module index skips.
func (c *Context) ResolveIdentifierWithFallback(id *ast.Node) (*ast.Node, bool) {
	if init, ok := c.ResolveIdentifierInitializer(id); ok {
		return init, true
	}
	decl, ok := c.scanDeclarators(id)
	if !ok {
		return nil, false
	}
	return decl.Init, true
}

// ResolveDeclarationWithFallback is ResolveDeclaration with the same-file
// declarator scan of ResolveIdentifierWithFallback.
func (c *Context) ResolveDeclarationWithFallback(id *ast.Node) (Declaration, bool) {
	if decl, ok := c.ResolveDeclaration(id); ok {
		return decl, true
	}
	return c.scanDeclarators(id)
}

func (c *Context) scanDeclarators(id *ast.Node) (Declaration, bool) {
	if id.Kind() != ast.KindIdentifier || id.File() == nil {
		return Declaration{}, false
	}
	name := id.Text()
	var found Declaration
	ok := false
	id.File().Root().Walk(func(n *ast.Node) bool {
		if ok {
			return false
		}
		if n.Type() != "variable_declarator" {
			return true
		}
		nameNode := n.Field("name")
		value := n.Field("value")
		if nameNode != nil && nameNode.Text() == name && value != nil {
			found = Declaration{
				Name: name,
				Kind: DeclVariable,
				Node: n,
				Init: value,
				Type: n.Field("type"),
				File: id.File(),
			}
			ok = true
			return false
		}
		return true
	})
	return found, ok
}
