package parsepasses

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/robfig/chtl/ast"
	"github.com/robfig/chtl/errortypes"
	"github.com/robfig/chtl/template"
)

// Resolve registers the definitions of the main file and the files it
// imports, then binds every usage to its definition.  LoadImports must have
// been run on ctx first.
//
// The following rules are enforced:
//   - definition names are unique within a namespace, per category
//   - every usage names a definition visible from it: in its namespace or an
//     enclosing one, or in the namespace given by its from clause
//   - a variable usage names an entry of its variable template
//   - a custom style usage supplies every key left without a value by its
//     definition, and no key the definition does not declare
//   - only custom elements are specialized, and every element an insert or
//     delete statement selects exists
//   - no template uses itself, directly or through other templates
func Resolve(ctx *template.CompilationContext) (err error) {
	defer recoverError(&err)
	var r = &resolver{
		ctx:        ctx,
		reg:        ctx.Registry,
		unitScopes: make(map[*template.Unit]string),
		seenRaw:    make(map[string]bool),
		origins:    make(map[originKey]*ast.OriginNode),
	}
	r.registerProgram(ctx.Program, "")
	for _, f := range r.files {
		r.bind(f, f.prog.Body, f.root)
	}
	r.checkRecursion()
	for _, u := range r.usages {
		if _, ok := u.usage.(*ast.VarUsageNode); ok {
			r.check(u)
		}
	}
	for _, u := range r.usages {
		if _, ok := u.usage.(*ast.VarUsageNode); !ok {
			r.check(u)
		}
	}
	return nil
}

type resolver struct {
	ctx        *template.CompilationContext
	reg        *template.Registry
	files      []file                    // every registered file, main file first
	unitScopes map[*template.Unit]string // private root scope of each imported file
	seenRaw    map[string]bool           // imported stylesheets and scripts already collected
	origins    map[originKey]*ast.OriginNode
	usages     []boundUsage
}

// originKey identifies the origin an @Html import defines, so that importing
// the same file under the same name through several paths defines it once.
type originKey struct {
	unit *template.Unit
	name string
}

// file is a parsed file and the scope its top-level definitions live in.
type file struct {
	prog *ast.ProgramNode
	root string
}

type boundUsage struct {
	usage ast.Usage
	prog  *ast.ProgramNode
}

// Registration ---------------------------------------------------------------

func (r *resolver) registerProgram(prog *ast.ProgramNode, root string) {
	r.files = append(r.files, file{prog, root})
	r.register(prog, prog.Body, root)
}

func (r *resolver) register(prog *ast.ProgramNode, nodes []ast.Node, scope string) {
	for _, node := range nodes {
		switch node := node.(type) {
		case *ast.NamespaceNode:
			var ns = template.Join(scope, node.Name)
			r.reg.DeclareNamespace(ns)
			r.register(prog, node.Body, ns)
			continue
		case *ast.ImportNode:
			r.importInto(prog, node, scope)
			continue
		case *ast.OriginNode:
			if node.Name == "" {
				continue
			}
			r.add(prog, node, scope)
		case *ast.ElementTemplateNode, *ast.StyleTemplateNode,
			*ast.CustomStyleTemplateNode, *ast.VarTemplateNode:
			r.add(prog, node.(ast.Definition), scope)
		}
		if parent, ok := node.(ast.ParentNode); ok {
			r.register(prog, parent.Children(), scope)
		}
	}
}

func (r *resolver) add(prog *ast.ProgramNode, def ast.Definition, scope string) {
	if _, err := r.reg.Add(scope, def, prog); err != nil {
		panic(err)
	}
}

// importInto merges what an import statement brings into scope.
func (r *resolver) importInto(prog *ast.ProgramNode, imp *ast.ImportNode, scope string) {
	var unit = r.ctx.Imports[imp]
	if unit == nil {
		panic(nodeError(errortypes.ImportNotFoundError, prog, imp, "import %q was not loaded", imp.Path))
	}

	switch imp.Kind {
	case ast.ImportHtml:
		var name = imp.Alias
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(unit.File), filepath.Ext(unit.File))
		}
		var k = originKey{unit, name}
		var origin = r.origins[k]
		if origin == nil {
			origin = &ast.OriginNode{Pos: imp.Pos, Kind: "Html", Name: name, Raw: unit.Raw}
			r.origins[k] = origin
		}
		r.add(prog, origin, scope)
		return
	case ast.ImportStyle:
		if !r.seenRaw[unit.File] {
			r.seenRaw[unit.File] = true
			r.ctx.Stylesheets = append(r.ctx.Stylesheets, unit.Raw)
		}
		return
	case ast.ImportJavaScript:
		if !r.seenRaw[unit.File] {
			r.seenRaw[unit.File] = true
			r.ctx.Scripts = append(r.ctx.Scripts, unit.Raw)
		}
		return
	}

	var src = r.registerUnit(unit)
	var dest = scope
	if imp.Alias != "" {
		dest = template.Join(scope, imp.Alias)
		r.reg.DeclareNamespace(dest)
	}

	if imp.Kind == ast.ImportChtl {
		r.copyScope(src, dest)
		return
	}

	var found bool
	for _, def := range r.reg.Entries(src) {
		if imp.Kind.Accepts(def.Node) && (imp.Name == "" || imp.Name == def.Node.DefName()) {
			r.add(def.Program, def.Node, dest)
			found = true
		}
	}
	if imp.Name != "" && !found {
		panic(nodeError(errortypes.UnresolvedReferenceError, prog, imp,
			"%s does not define %s %s", imp.Path, imp.Kind, imp.Name))
	}
}

// copyScope makes every definition visible in src, and in the namespaces
// nested in it, visible at the same relative path under dest.
func (r *resolver) copyScope(src, dest string) {
	for _, def := range r.reg.Entries(src) {
		r.add(def.Program, def.Node, dest)
	}
	for _, sub := range r.reg.Subspaces(src) {
		var ns = template.Join(dest, strings.TrimPrefix(sub, src+"."))
		r.reg.DeclareNamespace(ns)
		r.copyScope(sub, ns)
	}
}

// registerUnit registers the definitions of an imported file in a scope of
// its own, once, and returns that scope.
func (r *resolver) registerUnit(unit *template.Unit) string {
	if scope, ok := r.unitScopes[unit]; ok {
		return scope
	}
	var scope = "#" + strconv.Itoa(len(r.unitScopes)+1)
	r.unitScopes[unit] = scope
	r.reg.DeclareNamespace(scope)
	r.registerProgram(unit.Program, scope)
	return scope
}

// Binding --------------------------------------------------------------------

func (r *resolver) bind(f file, nodes []ast.Node, scope string) {
	for _, node := range nodes {
		switch node := node.(type) {
		case *ast.NamespaceNode:
			r.bind(f, node.Body, template.Join(scope, node.Name))
			continue
		case *ast.StylePropertyNode:
			if node.Value != nil {
				r.bind(f, []ast.Node{node.Value}, scope)
			}
			continue
		case ast.Usage:
			r.bindUsage(f, node, scope)
		}
		if parent, ok := node.(ast.ParentNode); ok {
			r.bind(f, parent.Children(), scope)
		}
	}
}

// bindUsage looks a usage up from the innermost enclosing namespace out to the
// file's root scope.  With a from clause, the named namespace is looked up
// relative to each enclosing namespace instead.
func (r *resolver) bindUsage(f file, u ast.Usage, scope string) {
	var cat, name, ns = u.Ref()
	var nsFound = ns == ""
	for s := scope; ; s = template.Parent(s) {
		var target = template.Join(s, ns)
		if ns == "" || r.reg.IsNamespace(target) {
			nsFound = true
			if id, ok := r.reg.Lookup(target, cat, name); ok {
				u.Bind(id)
				r.usages = append(r.usages, boundUsage{u, f.prog})
				return
			}
		}
		if s == f.root {
			break
		}
	}

	if !nsFound {
		panic(nodeError(errortypes.UnresolvedReferenceError, f.prog, u,
			"namespace %s is not defined", ns))
	}
	if ns != "" {
		panic(nodeError(errortypes.UnresolvedReferenceError, f.prog, u,
			"%s %s is not defined in namespace %s", cat, name, ns))
	}
	panic(nodeError(errortypes.UnresolvedReferenceError, f.prog, u,
		"%s %s is not defined", cat, name))
}

// Checks ---------------------------------------------------------------------

// check validates a bound usage against its definition.
func (r *resolver) check(b boundUsage) {
	var def = r.reg.Get(b.usage.Binding())
	switch u := b.usage.(type) {
	case *ast.VarUsageNode:
		var vars = def.Node.(*ast.VarTemplateNode)
		if vars.Entry(u.Var) == nil {
			panic(nodeError(errortypes.UndefinedVariableError, b.prog, u,
				"variable %s is not defined by @Var %s", u.Var, u.Name))
		}
	case *ast.StyleTemplateUsageNode:
		if u.Inherit {
			// the keys stay open in the inheriting definition
			return
		}
		if missing := unsetKeys(r.reg, def.Node, nil); len(missing) > 0 {
			panic(nodeError(errortypes.CustomStyleMismatchError, b.prog, u,
				"@Style %s needs values for %s", u.Name, strings.Join(missing, ", ")))
		}
	case *ast.CustomStyleUsageNode:
		r.checkOverrides(b.prog, u, def)
	case *ast.ElementTemplateUsageNode:
		if len(u.Specialization) == 0 {
			return
		}
		if !def.Node.(*ast.ElementTemplateNode).Custom {
			panic(nodeError(errortypes.SpecializationError, b.prog, u,
				"@Element %s is not a custom element and cannot be specialized", u.Name))
		}
		if _, err := ExpandElement(r.reg, u, b.prog); err != nil {
			panic(err)
		}
	}
}

// checkOverrides enforces that a custom style usage supplies exactly the keys
// its definition leaves open, plus optionally any key that has a default.
func (r *resolver) checkOverrides(prog *ast.ProgramNode, u *ast.CustomStyleUsageNode, def *template.Definition) {
	var declared = make(map[string]bool)
	for _, decl := range expand(r.reg, styleBody(def.Node), true) {
		declared[decl.Key] = true
	}
	var supplied = make(map[string]bool)
	for _, decl := range expand(r.reg, u.Overrides.Props, false) {
		if !declared[decl.Key] {
			panic(nodeError(errortypes.CustomStyleMismatchError, prog, u,
				"@Style %s does not declare %s", u.Name, decl.Key))
		}
		supplied[decl.Key] = true
	}
	if missing := unsetKeys(r.reg, def.Node, supplied); len(missing) > 0 {
		panic(nodeError(errortypes.CustomStyleMismatchError, prog, u,
			"@Style %s needs values for %s", u.Name, strings.Join(missing, ", ")))
	}
}

// unsetKeys returns the keys of a style definition that have no value and are
// not in supplied.
func unsetKeys(reg *template.Registry, node ast.Definition, supplied map[string]bool) []string {
	var missing []string
	for _, decl := range expand(reg, styleBody(node), true) {
		if decl.Value == nil && !supplied[decl.Key] {
			missing = append(missing, decl.Key)
		}
	}
	return missing
}

// checkRecursion fails if any template uses itself, directly or indirectly.
func (r *resolver) checkRecursion() {
	const (
		unvisited = iota
		visiting
		done
	)
	var state = make([]int, r.reg.Len()+1)
	var path []ast.DefID
	var visit func(id ast.DefID)
	visit = func(id ast.DefID) {
		switch state[id] {
		case done:
			return
		case visiting:
			var names []string
			var start = 0
			for i, p := range path {
				if p == id {
					start = i
				}
			}
			for _, p := range path[start:] {
				names = append(names, r.reg.Get(p).Node.DefName())
			}
			names = append(names, r.reg.Get(id).Node.DefName())
			var def = r.reg.Get(id)
			panic(nodeError(errortypes.RecursiveTemplateError, def.Program, def.Node,
				"%s %s uses itself: %s", def.Node.Category(), def.Node.DefName(), strings.Join(names, " -> ")))
		}
		state[id] = visiting
		path = append(path, id)
		for _, dep := range dependencies(r.reg.Get(id).Node) {
			visit(dep)
		}
		path = path[:len(path)-1]
		state[id] = done
	}
	for id := 1; id <= r.reg.Len(); id++ {
		visit(ast.DefID(id))
	}
}

// dependencies returns the definitions used by the body of a definition,
// excluding those used by nested definitions.
func dependencies(node ast.Definition) []ast.DefID {
	var deps []ast.DefID
	var walk func(nodes []ast.Node)
	walk = func(nodes []ast.Node) {
		for _, n := range nodes {
			switch n := n.(type) {
			case ast.Definition:
				continue
			case *ast.StylePropertyNode:
				if n.Value != nil {
					walk([]ast.Node{n.Value})
				}
				continue
			case ast.Usage:
				deps = append(deps, n.Binding())
			}
			if parent, ok := n.(ast.ParentNode); ok {
				walk(parent.Children())
			}
		}
	}
	if parent, ok := node.(ast.ParentNode); ok {
		walk(parent.Children())
	}
	return deps
}
