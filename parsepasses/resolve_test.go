package parsepasses

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/robfig/chtl/ast"
	"github.com/robfig/chtl/errortypes"
	"github.com/robfig/chtl/template"
)

// resolve loads and resolves the main file of files.
func resolve(t *testing.T, files mapFS, main string) (*template.CompilationContext, error) {
	t.Helper()
	ctx, err := load(t, files, main)
	if err != nil {
		return ctx, err
	}
	return ctx, Resolve(ctx)
}

// bindings describes where each usage in nodes was bound to.
func bindings(ctx *template.CompilationContext, nodes []ast.Node) []string {
	var result []string
	for _, node := range nodes {
		if prop, ok := node.(*ast.StylePropertyNode); ok && prop.Value != nil {
			result = append(result, bindings(ctx, []ast.Node{prop.Value})...)
			continue
		}
		if u, ok := node.(ast.Usage); ok {
			var cat, name, ns = u.Ref()
			var ref = fmt.Sprintf("%s %s", cat, name)
			if ns != "" {
				ref += " from " + ns
			}
			var target = "unbound"
			if def := ctx.Definition(u); def != nil {
				var file, line, col = def.Location()
				target = fmt.Sprintf("%s:%d:%d", file, line, col)
			}
			result = append(result, ref+" => "+target)
		}
		if parent, ok := node.(ast.ParentNode); ok {
			result = append(result, bindings(ctx, parent.Children())...)
		}
	}
	return result
}

func TestResolve(t *testing.T) {
	var tests = []struct {
		name     string
		files    mapFS
		bindings []string
	}{
		{"namespace", mapFS{"/src/main.chtl": `[Namespace] space {
[Template] @Element Box { div { text { "Hello from namespace!" } } }
}
body { @Element Box from space; }`},
			[]string{"@Element Box from space => /src/main.chtl:2:1"}},

		{"enclosing namespaces", mapFS{"/src/main.chtl": `[Template] @Var T { c: red; }
[Namespace] a {
[Namespace] b {
[Custom] @Element E { div { style { color: T(c); } } }
}
[Template] @Element E { p { } }
}
body { @Element E from a.b; @Element E from a; }`},
			[]string{
				"@Var T => /src/main.chtl:1:1",
				"@Element E from a.b => /src/main.chtl:4:1",
				"@Element E from a => /src/main.chtl:6:1",
			}},

		{"relative from", mapFS{"/src/main.chtl": `[Namespace] ui {
[Namespace] core {
[Template] @Style Base { color: red; }
}
[Template] @Element Btn { button { style { @Style Base from core; } } }
}
body { @Element Btn from ui; }`},
			[]string{
				"@Style Base from core => /src/main.chtl:3:1",
				"@Element Btn from ui => /src/main.chtl:5:1",
			}},

		{"inner definition shadows outer", mapFS{"/src/main.chtl": `[Template] @Style S { color: red; }
[Namespace] n {
[Template] @Style S { color: blue; }
[Template] @Element E { div { style { @Style S; } } }
}
div { style { @Style S; } }`},
			[]string{
				"@Style S => /src/main.chtl:3:1",
				"@Style S => /src/main.chtl:1:1",
			}},

		{"reopened namespace", mapFS{"/src/main.chtl": `[Namespace] a { [Template] @Element X { div { } } }
[Namespace] a { [Template] @Element Y { @Element X; } }
body { @Element Y from a; }`},
			[]string{
				"@Element X => /src/main.chtl:1:17",
				"@Element Y from a => /src/main.chtl:2:17",
			}},

		{"import", mapFS{
			"/src/main.chtl": `[Import] @Chtl from "lib.chtl";
body { @Element Card; @Element Box from space; }`,
			"/src/lib.chtl": `[Template] @Element Card { div { } }
[Namespace] space {
[Template] @Element Box { span { } }
}`},
			[]string{
				"@Element Card => /src/lib.chtl:1:1",
				"@Element Box from space => /src/lib.chtl:3:1",
			}},

		{"import alias", mapFS{
			"/src/main.chtl": `[Import] @Chtl from "lib.chtl" as lib;
body { @Element Card from lib; @Element Box from lib.space; }`,
			"/src/lib.chtl": `[Template] @Element Card { div { } }
[Namespace] space {
[Template] @Element Box { span { } }
}`},
			[]string{
				"@Element Card from lib => /src/lib.chtl:1:1",
				"@Element Box from lib.space => /src/lib.chtl:3:1",
			}},

		{"imported template uses its own file", mapFS{
			"/src/main.chtl": `[Template] @Style Base { color: red; }
[Import] [Template] @Element Card from "lib.chtl";
body { @Element Card; }`,
			"/src/lib.chtl": `[Template] @Style Base { color: blue; }
[Template] @Element Card { div { style { @Style Base; } } }`},
			[]string{"@Element Card => /src/lib.chtl:2:1"}},

		{"precise import", mapFS{
			"/src/main.chtl": `[Import] [Custom] @Style from "s.chtl";
div { style { @Style Pad { padding: 1px; } } }`,
			"/src/s.chtl": `[Custom] @Style Pad { padding; }
[Template] @Style Base { color: red; }`},
			[]string{"@Style Pad => /src/s.chtl:1:1"}},

		{"html import", mapFS{
			"/src/main.chtl": `[Import] @Html from "part.html";
[Import] @Html from "part.html" as other;
body { @Html part; @Html other; }`,
			"/src/part.html": "<hr>"},
			[]string{
				"[Origin] part => /src/main.chtl:1:1",
				"[Origin] other => /src/main.chtl:2:1",
			}},

		{"diamond import", mapFS{
			"/src/main.chtl": `[Import] @Chtl from "b.chtl";
[Import] @Chtl from "c.chtl";
body { @Element D; }`,
			"/src/b.chtl": `[Import] @Chtl from "d.chtl";`,
			"/src/c.chtl": `[Import] @Chtl from "d.chtl";`,
			"/src/d.chtl": `[Template] @Element D { div { } }`},
			[]string{"@Element D => /src/d.chtl:1:1"}},

		{"diamond html import", mapFS{
			"/src/main.chtl": `[Import] @Chtl from "a.chtl";
[Import] @Chtl from "b.chtl";
body { @Html banner; }`,
			"/src/a.chtl":      `[Import] @Html from "banner.html";`,
			"/src/b.chtl":      `[Import] @Html from "banner.html";`,
			"/src/banner.html": "<b>hi</b>"},
			[]string{"[Origin] banner => /src/a.chtl:1:1"}},

		{"inherit", mapFS{"/src/main.chtl": `[Template] @Style Base { color: red; }
[Custom] @Style Open { width; }
[Custom] @Style Box inherit Base, Open { height: 1px; }
[Template] @Element Card { inherit @Element Row; p { } }
[Template] @Element Row { hr { } }
div { style { @Style Box { width: 2px; } } }`},
			[]string{
				"@Style Base => /src/main.chtl:1:1",
				"@Style Open => /src/main.chtl:2:1",
				"@Element Row => /src/main.chtl:5:1",
				"@Style Box => /src/main.chtl:3:1",
			}},

		{"specialization", mapFS{"/src/main.chtl": `[Custom] @Element Card { div { } }
[Template] @Style Pad { padding: 0; }
body { @Element Card { insert at top { p { style { @Style Pad; } } } } }`},
			[]string{
				"@Element Card => /src/main.chtl:1:1",
				"@Style Pad => /src/main.chtl:2:1",
			}},

		{"named origin", mapFS{"/src/main.chtl": `[Origin] @Html banner { <b>hi</b> }
body { @Html banner; [Origin] @Html banner; }`},
			[]string{
				"[Origin] banner => /src/main.chtl:1:1",
				"[Origin] banner => /src/main.chtl:1:1",
			}},
	}

	for _, test := range tests {
		ctx, err := resolve(t, test.files, "/src/main.chtl")
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		var got = bindings(ctx, []ast.Node{ctx.Program})
		if diff := cmp.Diff(test.bindings, got); diff != "" {
			t.Errorf("%s: bindings (-want +got):\n%s", test.name, diff)
		}
	}
}

func TestResolveCollectsImportedFiles(t *testing.T) {
	var files = mapFS{
		"/src/main.chtl": `[Import] @Style from "a.css";
[Import] @JavaScript from "a.js";
[Import] @Chtl from "lib.chtl";
[Import] @Style from "./a.css";`,
		"/src/lib.chtl": `[Import] @Style from "b.css"; [Import] @Style from "a.css";`,
		"/src/a.css":    "a { }",
		"/src/b.css":    "b { }",
		"/src/a.js":     "run();",
	}
	ctx, err := resolve(t, files, "/src/main.chtl")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a { }", "b { }"}, ctx.Stylesheets); diff != "" {
		t.Errorf("stylesheets (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"run();"}, ctx.Scripts); diff != "" {
		t.Errorf("scripts (-want +got):\n%s", diff)
	}
}

func TestResolveErrors(t *testing.T) {
	var tests = []struct {
		name  string
		files mapFS
		kind  errortypes.Kind
		msg   string
	}{
		{"namespace required", mapFS{"/a.chtl": `[Namespace] space { [Template] @Element Box { div { } } }
body { @Element Box; }`},
			errortypes.UnresolvedReferenceError, "/a.chtl:2:8: UnresolvedReferenceError: @Element Box is not defined"},

		{"unknown namespace", mapFS{"/a.chtl": `body { @Element Box from nowhere; }`},
			errortypes.UnresolvedReferenceError, "/a.chtl:1:8: UnresolvedReferenceError: namespace nowhere is not defined"},

		{"not in namespace", mapFS{"/a.chtl": `[Namespace] space { }
[Template] @Element Box { div { } }
body { @Element Box from space; }`},
			errortypes.UnresolvedReferenceError, "/a.chtl:3:8: UnresolvedReferenceError: @Element Box is not defined in namespace space"},

		{"category matters", mapFS{"/a.chtl": `[Template] @Style Box { color: red; }
body { @Element Box; }`},
			errortypes.UnresolvedReferenceError, "/a.chtl:2:8: UnresolvedReferenceError: @Element Box is not defined"},

		{"undefined variable", mapFS{"/a.chtl": `[Template] @Var Colors { primary: blue; }
div { style { color: Colors(secondary); } }`},
			errortypes.UndefinedVariableError, "/a.chtl:2:22: UndefinedVariableError: variable secondary is not defined by @Var Colors"},

		{"undefined variable set", mapFS{"/a.chtl": `div { style { color: Colors(primary); } }`},
			errortypes.UnresolvedReferenceError, "/a.chtl:1:22: UnresolvedReferenceError: @Var Colors is not defined"},

		{"duplicate", mapFS{"/a.chtl": `[Template] @Style A { color: red; }

[Custom] @Style A { color; }`},
			errortypes.DuplicateDefinitionError, "/a.chtl:3:1: DuplicateDefinitionError: @Style A is already defined in the global scope (at /a.chtl:1:1)"},

		{"duplicate in reopened namespace", mapFS{"/a.chtl": `[Namespace] n { [Template] @Var V { a: 1; } }
[Namespace] n { [Custom] @Var V { a: 2; } }`},
			errortypes.DuplicateDefinitionError, "/a.chtl:2:17: DuplicateDefinitionError: @Var V is already defined in namespace n (at /a.chtl:1:17)"},

		{"duplicate through import", mapFS{
			"/a.chtl": `[Import] @Chtl from "b.chtl";
[Template] @Element Card { div { } }`,
			"/b.chtl": `[Template] @Element Card { p { } }`},
			errortypes.DuplicateDefinitionError, "/a.chtl:2:1: DuplicateDefinitionError: @Element Card is already defined in the global scope (at /b.chtl:1:1)"},

		{"imported files do not see the importer", mapFS{
			"/a.chtl": `[Template] @Style Base { color: red; }
[Import] @Chtl from "b.chtl";`,
			"/b.chtl": `[Template] @Element Card { div { style { @Style Base; } } }`},
			errortypes.UnresolvedReferenceError, "/b.chtl:1:42: UnresolvedReferenceError: @Style Base is not defined"},

		{"precise import of a missing name", mapFS{
			"/a.chtl": `[Import] [Template] @Style Missing from "b.chtl";`,
			"/b.chtl": `[Custom] @Style Missing { color; }`},
			errortypes.UnresolvedReferenceError, "/a.chtl:1:1: UnresolvedReferenceError: b.chtl does not define TemplateStyle Missing"},

		{"missing custom key", mapFS{"/a.chtl": `[Custom] @Style TextSet { color; font-size; }
div { style { @Style TextSet { color: red; } } }`},
			errortypes.CustomStyleMismatchError, "/a.chtl:2:15: CustomStyleMismatchError: @Style TextSet needs values for font-size"},

		{"extra custom key", mapFS{"/a.chtl": `[Custom] @Style TextSet { color; }
div { style { @Style TextSet { color: red; margin: 0; } } }`},
			errortypes.CustomStyleMismatchError, "/a.chtl:2:15: CustomStyleMismatchError: @Style TextSet does not declare margin"},

		{"custom style used as a template", mapFS{"/a.chtl": `[Custom] @Style TextSet { color, font-size; }
div { style { @Style TextSet; } }`},
			errortypes.CustomStyleMismatchError, "/a.chtl:2:15: CustomStyleMismatchError: @Style TextSet needs values for color, font-size"},

		{"recursive elements", mapFS{"/a.chtl": `[Template] @Element A { div { @Element B; } }
[Template] @Element B { @Element A; }
body { @Element A; }`},
			errortypes.RecursiveTemplateError, "/a.chtl:1:1: RecursiveTemplateError: @Element A uses itself: A -> B -> A"},

		{"self-recursive style", mapFS{"/a.chtl": `[Template] @Style S { color: red; @Style S; }`},
			errortypes.RecursiveTemplateError, "/a.chtl:1:1: RecursiveTemplateError: @Style S uses itself: S -> S"},

		{"inherited keys stay open", mapFS{"/a.chtl": `[Custom] @Style Open { width; }
[Custom] @Style Box inherit Open { height: 1px; }
div { style { @Style Box { height: 2px; } } }`},
			errortypes.CustomStyleMismatchError, "/a.chtl:3:15: CustomStyleMismatchError: @Style Box needs values for width"},

		{"recursive inherit", mapFS{"/a.chtl": `[Template] @Style A inherit B { }
[Template] @Style B inherit A { }`},
			errortypes.RecursiveTemplateError, "/a.chtl:1:1: RecursiveTemplateError: @Style A uses itself: A -> B -> A"},

		{"specialized template", mapFS{"/a.chtl": `[Template] @Element Card { p { } }
body { @Element Card { delete p; } }`},
			errortypes.SpecializationError, "/a.chtl:2:8: SpecializationError: @Element Card is not a custom element and cannot be specialized"},

		{"delete of a missing element", mapFS{"/a.chtl": `[Custom] @Element Card { p { } }
body { @Element Card { delete span; } }`},
			errortypes.SpecializationError, "/a.chtl:2:24: SpecializationError: @Element Card has no span to delete"},

		{"insert after a missing index", mapFS{"/a.chtl": `[Custom] @Element Card { p { } }
body { @Element Card { insert after p[1] { hr { } } } }`},
			errortypes.SpecializationError, "/a.chtl:2:24: SpecializationError: @Element Card has no p[1] to insert after"},

		{"cyclic import", mapFS{
			"/a.chtl": `[Import] @Chtl from "b.chtl";`,
			"/b.chtl": `[Import] @Chtl from "a.chtl";`},
			errortypes.CyclicImportError, "/b.chtl:1:1: CyclicImportError: import cycle: /a.chtl -> /b.chtl -> /a.chtl"},
	}
	for _, test := range tests {
		_, err := resolve(t, test.files, "/a.chtl")
		if err == nil {
			t.Errorf("%s: expected error", test.name)
			continue
		}
		if kind := errortypes.KindOf(err); kind != test.kind {
			t.Errorf("%s: expected %v, got %v", test.name, test.kind, err)
		}
		if err.Error() != test.msg {
			t.Errorf("%s:\nwant %q\ngot  %q", test.name, test.msg, err.Error())
		}
	}
}

func TestResolveCustomDefaults(t *testing.T) {
	var files = mapFS{"/a.chtl": `[Custom] @Style Box { width; height: 10px; }
[Template] @Style Plain { color: red; margin: 0; }
div { style { @Style Box { width: 5px; } } }
p { style { @Style Box { height: 1px; width: 2px; } } }
span { style { @Style Plain { margin: 4px; } } }`}
	ctx, err := resolve(t, files, "/a.chtl")
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, node := range ctx.Program.Body[2:] {
		var style = node.(*ast.ElementNode).Body[0].(*ast.StyleNode)
		var decls []string
		for _, decl := range ExpandStyle(ctx.Registry, style.Props) {
			decls = append(decls, decl.Key+": "+decl.Value.Raw)
		}
		got = append(got, strings.Join(decls, "; "))
	}
	var want = []string{
		"width: 5px; height: 10px",
		"width: 2px; height: 1px",
		"color: red; margin: 4px",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
