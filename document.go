package chtl

import (
	"bytes"
	"io"

	"github.com/robfig/chtl/chtlhtml"
	"github.com/robfig/chtl/serialize"
	"github.com/robfig/chtl/template"
)

// Document is a compiled CHTL file, with everything it imports.
type Document struct {
	Context *template.CompilationContext
}

// Name returns the path of the document's main file.
func (d *Document) Name() string {
	return d.Context.File
}

// WriteHTML generates the document's HTML.  Nothing is written on error.
func (d *Document) WriteHTML(w io.Writer, opts chtlhtml.Options) error {
	return chtlhtml.Write(w, d.Context, opts)
}

// HTML returns the document's HTML.
func (d *Document) HTML(opts chtlhtml.Options) (string, error) {
	var buf bytes.Buffer
	if err := d.WriteHTML(&buf, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Dump returns the canonical dump of the main file's syntax tree, before
// templates are expanded.
func (d *Document) Dump() string {
	return d.Context.Program.String()
}

// Serialize writes the main file's syntax tree in binary form, bindings
// included.
func (d *Document) Serialize(w io.Writer) error {
	return serialize.Encode(w, d.Context.Program)
}
