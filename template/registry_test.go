package template

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/robfig/chtl/ast"
	"github.com/robfig/chtl/errortypes"
)

func newProgram(text string) *ast.ProgramNode {
	return &ast.ProgramNode{Name: "a.chtl", Text: text}
}

func TestRegistryAdd(t *testing.T) {
	var (
		prog  = newProgram("[Template] @Style A {}\n[Template] @Element A {}\n[Template] @Style A {}")
		style = &ast.StyleTemplateNode{Pos: 0, Name: "A", Body: &ast.StyleNode{}}
		elem  = &ast.ElementTemplateNode{Pos: 23, Name: "A"}
		dup   = &ast.StyleTemplateNode{Pos: 48, Name: "A", Body: &ast.StyleNode{}}
		reg   = NewRegistry()
	)

	styleID, err := reg.Add("", style, prog)
	if err != nil || styleID != 1 {
		t.Fatalf("add style: %v %v", styleID, err)
	}
	elemID, err := reg.Add("", elem, prog)
	if err != nil || elemID != 2 {
		t.Fatalf("categories are independent: %v %v", elemID, err)
	}

	// The same node again is a no-op.
	if id, err := reg.Add("", style, prog); err != nil || id != styleID {
		t.Errorf("re-adding the same node: %v %v", id, err)
	}

	_, err = reg.Add("", dup, prog)
	if errortypes.KindOf(err) != errortypes.DuplicateDefinitionError {
		t.Fatalf("expected DuplicateDefinitionError, got %v", err)
	}
	if want := "a.chtl:3:1: DuplicateDefinitionError: @Style A is already defined in the global scope (at a.chtl:1:1)"; err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	// The same node may be visible in another scope under the same handle.
	if id, err := reg.Add("lib", style, prog); err != nil || id != styleID {
		t.Errorf("add to another scope: %v %v", id, err)
	}
	if reg.Len() != 2 {
		t.Errorf("expected 2 definitions, got %d", reg.Len())
	}
	if got := reg.Get(styleID).Scope; got != "" {
		t.Errorf("expected the first scope to be kept, got %q", got)
	}
}

func TestRegistryLookup(t *testing.T) {
	var (
		prog = newProgram("")
		reg  = NewRegistry()
		box  = &ast.ElementTemplateNode{Name: "Box"}
		vars = &ast.VarTemplateNode{Name: "Theme"}
	)
	reg.Add("ui.core", box, prog)
	reg.Add("ui.core", vars, prog)

	var tests = []struct {
		scope string
		cat   ast.Category
		name  string
		found bool
	}{
		{"ui.core", ast.CategoryElement, "Box", true},
		{"ui.core", ast.CategoryVar, "Theme", true},
		{"ui.core", ast.CategoryStyle, "Box", false},
		{"ui", ast.CategoryElement, "Box", false},
		{"", ast.CategoryElement, "Box", false},
	}
	for _, test := range tests {
		var id, ok = reg.Lookup(test.scope, test.cat, test.name)
		if ok != test.found {
			t.Errorf("%q %v %s: expected found=%v", test.scope, test.cat, test.name, test.found)
		}
		if ok && reg.Get(id).Node.DefName() != test.name {
			t.Errorf("%q %s: got %v", test.scope, test.name, reg.Get(id).Node)
		}
	}

	for _, ns := range []string{"", "ui", "ui.core"} {
		if !reg.IsNamespace(ns) {
			t.Errorf("expected %q to be a namespace", ns)
		}
	}
	if reg.IsNamespace("core") {
		t.Errorf("core is not a top-level namespace")
	}

	var names []string
	for _, def := range reg.Entries("ui.core") {
		names = append(names, def.Node.DefName())
	}
	if diff := cmp.Diff([]string{"Box", "Theme"}, names); diff != "" {
		t.Errorf("entries (-want +got):\n%s", diff)
	}
	if reg.Get(0) != nil || reg.Get(3) != nil {
		t.Errorf("expected nil for invalid handles")
	}
}

func TestJoinParent(t *testing.T) {
	var tests = []struct{ scope, name, joined, parent string }{
		{"", "a", "a", ""},
		{"a", "b", "a.b", "a"},
		{"a.b", "c", "a.b.c", "a.b"},
		{"a", "", "a", ""},
	}
	for _, test := range tests {
		if got := Join(test.scope, test.name); got != test.joined {
			t.Errorf("Join(%q, %q) = %q, want %q", test.scope, test.name, got, test.joined)
		}
		if got := Parent(test.scope); got != test.parent {
			t.Errorf("Parent(%q) = %q, want %q", test.scope, got, test.parent)
		}
	}
}
