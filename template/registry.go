// Package template holds the definitions declared by a set of CHTL files,
// keyed by the namespace that declares them.
package template

import (
	"strings"

	"github.com/robfig/chtl/ast"
	"github.com/robfig/chtl/errortypes"
)

// Definition is a template, variable set or named origin together with the
// context it was declared in.
type Definition struct {
	ID      ast.DefID
	Scope   string           // dotted namespace path of the first registration; "" is global
	Node    ast.Definition   // this definition's node
	Program *ast.ProgramNode // the file that declared it
}

// Location returns the file, line and column of the definition.
func (d *Definition) Location() (file string, line, col int) {
	line, col = d.Program.Location(d.Node.Position())
	return d.Program.Name, line, col
}

// key identifies a definition within a scope.
type key struct {
	scope string
	cat   ast.Category
	name  string
}

// Registry is an arena of definitions.  A DefID is the 1-based index of a
// definition in the arena.  The same definition may be visible from several
// scopes, e.g. after it is imported.
type Registry struct {
	defs       []*Definition
	byNode     map[ast.Definition]ast.DefID
	table      map[key]ast.DefID
	entries    map[string][]key // keys registered in each scope, in order
	namespaces map[string]bool
	children   map[string][]string // directly nested namespaces, in order
}

// NewRegistry returns an empty registry with only the global scope.
func NewRegistry() *Registry {
	return &Registry{
		byNode:     make(map[ast.Definition]ast.DefID),
		table:      make(map[key]ast.DefID),
		entries:    make(map[string][]key),
		namespaces: map[string]bool{"": true},
		children:   make(map[string][]string),
	}
}

// Add makes the given definition visible in scope.  Adding a different
// definition with the same category and name to a scope is a
// DuplicateDefinitionError; adding the very same node again is a no-op.
func (r *Registry) Add(scope string, node ast.Definition, prog *ast.ProgramNode) (ast.DefID, error) {
	var id, known = r.byNode[node]
	if !known {
		r.defs = append(r.defs, &Definition{
			ID:      ast.DefID(len(r.defs) + 1),
			Scope:   scope,
			Node:    node,
			Program: prog,
		})
		id = ast.DefID(len(r.defs))
		r.byNode[node] = id
	}

	var k = key{scope, node.Category(), node.DefName()}
	if prev, ok := r.table[k]; ok {
		if prev == id {
			return id, nil
		}
		var line, col = prog.Location(node.Position())
		var prevFile, prevLine, prevCol = r.Get(prev).Location()
		return 0, errortypes.Errorf(errortypes.DuplicateDefinitionError, prog.Name, line, col,
			"%s %s is already defined in %s (at %s:%d:%d)",
			node.Category(), node.DefName(), scopeName(scope), prevFile, prevLine, prevCol)
	}
	r.table[k] = id
	r.entries[scope] = append(r.entries[scope], k)
	r.DeclareNamespace(scope)
	return id, nil
}

// Lookup returns the definition of the given category and name declared
// directly in scope.
func (r *Registry) Lookup(scope string, cat ast.Category, name string) (ast.DefID, bool) {
	var id, ok = r.table[key{scope, cat, name}]
	return id, ok
}

// Get returns the definition with the given ID, or nil.
func (r *Registry) Get(id ast.DefID) *Definition {
	if id <= 0 || int(id) > len(r.defs) {
		return nil
	}
	return r.defs[id-1]
}

// Len returns the number of distinct definitions.
func (r *Registry) Len() int {
	return len(r.defs)
}

// Entries returns the definitions visible in scope, in registration order.
func (r *Registry) Entries(scope string) []*Definition {
	var defs []*Definition
	for _, k := range r.entries[scope] {
		defs = append(defs, r.Get(r.table[k]))
	}
	return defs
}

// DeclareNamespace records that the namespace at path, and every namespace
// enclosing it, exists.  Namespaces may be declared repeatedly.
func (r *Registry) DeclareNamespace(path string) {
	for path != "" && !r.namespaces[path] {
		r.namespaces[path] = true
		var parent = Parent(path)
		r.children[parent] = append(r.children[parent], path)
		path = parent
	}
}

// Subspaces returns the paths of the namespaces directly nested in scope, in
// declaration order.
func (r *Registry) Subspaces(scope string) []string {
	return r.children[scope]
}

// IsNamespace reports whether a namespace was declared at path.
func (r *Registry) IsNamespace(path string) bool {
	return r.namespaces[path]
}

// Join returns the path of the namespace name nested in scope.
func Join(scope, name string) string {
	if scope == "" {
		return name
	}
	if name == "" {
		return scope
	}
	return scope + "." + name
}

// Parent returns the path of the namespace enclosing scope.  The parent of a
// top-level namespace is the global scope "".
func Parent(scope string) string {
	if i := strings.LastIndexByte(scope, '.'); i >= 0 {
		return scope[:i]
	}
	return ""
}

func scopeName(scope string) string {
	if scope == "" {
		return "the global scope"
	}
	return "namespace " + scope
}
