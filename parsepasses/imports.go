package parsepasses

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/robfig/chtl/ast"
	"github.com/robfig/chtl/errortypes"
	"github.com/robfig/chtl/parse"
	"github.com/robfig/chtl/template"
)

// LoadImports loads every file imported, directly or transitively, by the
// main file of ctx and records the loaded unit for each import statement.
// Each file is read and parsed once, however many files import it.
//
// Import paths are relative to the directory of the importing file.  A file
// that imports itself, directly or through other files, is a
// CyclicImportError; a file that cannot be read is an ImportNotFoundError.
func LoadImports(ctx *template.CompilationContext) (err error) {
	defer recoverError(&err)
	var file = filepath.Clean(ctx.File)
	var l = &loader{ctx: ctx, stack: []string{file}}
	ctx.Units[file] = &template.Unit{File: file, Program: ctx.Program}
	l.walk(ctx.Program, ctx.Program.Body, filepath.Dir(file))
	return nil
}

type loader struct {
	ctx   *template.CompilationContext
	stack []string // files being loaded, outermost first
}

func (l *loader) walk(prog *ast.ProgramNode, nodes []ast.Node, dir string) {
	for _, node := range nodes {
		switch node := node.(type) {
		case *ast.ImportNode:
			l.load(prog, node, dir)
		case ast.ParentNode:
			l.walk(prog, node.Children(), dir)
		}
	}
}

func (l *loader) load(prog *ast.ProgramNode, imp *ast.ImportNode, dir string) {
	var path = imp.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	path = filepath.Clean(path)

	var chtl = imp.Kind == ast.ImportChtl || imp.Kind.Precise()
	for i, loading := range l.stack {
		if loading == path && chtl {
			var chain = append(append([]string(nil), l.stack[i:]...), path)
			panic(nodeError(errortypes.CyclicImportError, prog, imp,
				"import cycle: %s", strings.Join(chain, " -> ")))
		}
	}

	var unit = l.ctx.Units[path]
	if unit == nil {
		var src, err = l.ctx.FS.ReadFile(path)
		if err != nil {
			panic(nodeError(errortypes.ImportNotFoundError, prog, imp,
				"cannot import %q: %v", imp.Path, err))
		}
		text, err := parse.Decode(src)
		if err != nil {
			panic(nodeError(errortypes.ImportNotFoundError, prog, imp,
				"cannot decode %q: %v", imp.Path, err))
		}
		unit = &template.Unit{File: path, Raw: text}
		l.ctx.Units[path] = unit
	}
	l.ctx.Imports[imp] = unit

	if chtl && unit.Program == nil {
		var child, err = parse.File(path, unit.Raw)
		if err != nil {
			panic(err)
		}
		unit.Program = child
		l.stack = append(l.stack, path)
		l.walk(child, child.Body, filepath.Dir(path))
		l.stack = l.stack[:len(l.stack)-1]
	}
}

// nodeError returns an error positioned at the given node of prog.
func nodeError(kind errortypes.Kind, prog *ast.ProgramNode, node ast.Node, format string, args ...interface{}) *errortypes.Error {
	var line, col = prog.Location(node.Position())
	return errortypes.Errorf(kind, prog.Name, line, col, format, args...)
}

// recoverError turns a panic carrying an error into a return value.
func recoverError(errp *error) {
	if e := recover(); e != nil {
		if _, ok := e.(runtime.Error); ok {
			panic(e)
		}
		var err, ok = e.(error)
		if !ok {
			panic(e)
		}
		*errp = err
	}
}
