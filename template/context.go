package template

import (
	"os"
	"path/filepath"

	"github.com/robfig/chtl/ast"
)

// FileSystem reads the files referenced by import statements.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
}

// OSFileSystem reads files from the local disk.
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// Unit is a file loaded by an import statement.  CHTL files are parsed;
// other files are kept as raw text.
type Unit struct {
	File    string           // cleaned path of the file
	Program *ast.ProgramNode // set for CHTL files
	Raw     string           // set for Html, Style and JavaScript files
}

// CompilationContext is the state threaded through one compilation: the main
// file, everything it imports and the definitions they declare.
type CompilationContext struct {
	File     string           // path of the main file
	Program  *ast.ProgramNode // parsed main file
	Registry *Registry
	FS       FileSystem

	// Imports records the unit loaded for each import statement, in any file.
	Imports map[*ast.ImportNode]*Unit

	// Units caches loaded files by cleaned path, so each is parsed once.
	Units map[string]*Unit

	// Stylesheets and Scripts hold the contents of imported CSS and
	// JavaScript files, in import order, each file once.
	Stylesheets []string
	Scripts     []string
}

// NewContext returns a context for compiling the given parsed file.  A nil
// fs reads from disk.
func NewContext(file string, prog *ast.ProgramNode, fs FileSystem) *CompilationContext {
	if fs == nil {
		fs = OSFileSystem{}
	}
	return &CompilationContext{
		File:     file,
		Program:  prog,
		Registry: NewRegistry(),
		FS:       fs,
		Imports:  make(map[*ast.ImportNode]*Unit),
		Units:    make(map[string]*Unit),
	}
}

// Dir returns the directory that relative imports of the main file resolve
// against.
func (c *CompilationContext) Dir() string {
	return filepath.Dir(c.File)
}

// Definition returns the definition bound to the given usage, or nil if it
// has not been resolved.
func (c *CompilationContext) Definition(u ast.Usage) *Definition {
	return c.Registry.Get(u.Binding())
}
