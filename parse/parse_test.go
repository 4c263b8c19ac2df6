package parse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/robfig/chtl/ast"
	"github.com/robfig/chtl/errortypes"
)

type parseTest struct {
	name  string
	input string
	dump  string
}

var parseTests = []parseTest{
	{"empty", "", "ProgramNode({})"},
	{"elements",
		`div { h1 { text: "Hello, CHTL!"; } p { text: "This is a test."; } }`,
		`ProgramNode({ElementNode(div, attributes={}, children={ElementNode(h1, attributes={}, children={TextNode("Hello, CHTL!"), }), ElementNode(p, attributes={}, children={TextNode("This is a test."), }), }), })`},
	{"attributes",
		`div { class: "container"; id: "main"; h1 { text { "Welcome!" } } }`,
		`ProgramNode({ElementNode(div, attributes={class: LiteralValueNode("container"), id: LiteralValueNode("main"), }, children={ElementNode(h1, attributes={}, children={TextNode("Welcome!"), }), }), })`},
	{"bare attribute and text",
		"span { title: hello world; text {\n  two\n  lines\n} }",
		`ProgramNode({ElementNode(span, attributes={title: LiteralValueNode(hello world), }, children={TextNode("two lines"), }), })`},
	{"style",
		`div { style { color: red; font-size: 16px } }`,
		`ProgramNode({ElementNode(div, attributes={}, children={StyleNode({StylePropertyNode(color: LiteralValueNode(red)), StylePropertyNode(font-size: LiteralValueNode(16px)), }), }), })`},
	{"style rules",
		`div { style { .box { width: 1px; } &:hover { color: blue; } } }`,
		`ProgramNode({ElementNode(div, attributes={}, children={StyleNode({StyleRuleNode(.box, {StylePropertyNode(width: LiteralValueNode(1px)), }), StyleRuleNode(&:hover, {StylePropertyNode(color: LiteralValueNode(blue)), }), }), }), })`},
	{"script",
		"div { script {\n        console.log('Hello from script!');\n    } }",
		`ProgramNode({ElementNode(div, attributes={}, children={ScriptNode("` + "\n        console.log('Hello from script!');\n    " + `"), }), })`},
	{"custom style",
		`[Custom] @Style TextSet { color; font-size; } div { style { @Style TextSet { color: red; font-size: 16px; } } }`,
		`ProgramNode({CustomStyleTemplateNode(TextSet, StyleNode({StylePropertyNode(color), StylePropertyNode(font-size), })), ElementNode(div, attributes={}, children={StyleNode({CustomStyleUsageNode(TextSet, StyleNode({StylePropertyNode(color: LiteralValueNode(red)), StylePropertyNode(font-size: LiteralValueNode(16px)), })), }), }), })`},
	{"custom style key list",
		`[Custom] @Style Box { width, height; border: 1px solid; }`,
		`ProgramNode({CustomStyleTemplateNode(Box, StyleNode({StylePropertyNode(width), StylePropertyNode(height), StylePropertyNode(border: LiteralValueNode(1px solid)), })), })`},
	{"style template",
		`[Template] @Style Base { color: black; } div { style { @Style Base; margin: 0; } }`,
		`ProgramNode({StyleTemplateNode(Base, StyleNode({StylePropertyNode(color: LiteralValueNode(black)), })), ElementNode(div, attributes={}, children={StyleNode({StyleTemplateUsageNode(Base), StylePropertyNode(margin: LiteralValueNode(0)), }), }), })`},
	{"var template",
		`[Template] @Var ThemeColor { tableColor: "rgb(255, 192, 203)"; } div { style { background-color: ThemeColor(tableColor); } }`,
		`ProgramNode({VarTemplateNode(ThemeColor, {tableColor: LiteralValueNode("rgb(255, 192, 203)"), }), ElementNode(div, attributes={}, children={StyleNode({StylePropertyNode(background-color: TemplateVarUsageNode(ThemeColor(tableColor))), }), }), })`},
	{"css functions are not variables",
		`div { style { background: url(a.png); width: calc(1px); } }`,
		`ProgramNode({ElementNode(div, attributes={}, children={StyleNode({StylePropertyNode(background: LiteralValueNode(url(a.png))), StylePropertyNode(width: LiteralValueNode(calc(1px))), }), }), })`},
	{"namespace",
		`[Namespace] space { [Template] @Element Box { div { text { "Hello from namespace!" } } } } body { @Element Box from space; }`,
		`ProgramNode({NamespaceNode(space, {ElementTemplateNode(Box, {ElementNode(div, attributes={}, children={TextNode("Hello from namespace!"), }), }), }), ElementNode(body, attributes={}, children={ElementTemplateUsageNode(Box from space), }), })`},
	{"custom element",
		`[Custom] @Element Card { div { } } @Element Card;`,
		`ProgramNode({CustomElementNode(Card, {ElementNode(div, attributes={}, children={}), }), ElementTemplateUsageNode(Card), })`},
	{"import",
		`[Import] @Chtl from "./other.chtl";`,
		`ProgramNode({ImportNode(Chtl, "./other.chtl"), })`},
	{"import alias and precise",
		`[Import] @Chtl from lib.chtl as lib; [Import] [Template] @Style Base from "./s.chtl"; [Import] [Custom] @Element from './e.chtl';`,
		`ProgramNode({ImportNode(Chtl, "lib.chtl" as lib), ImportNode(TemplateStyle Base, "./s.chtl"), ImportNode(CustomElement, "./e.chtl"), })`},
	{"origin",
		`[Origin] @Html banner { <b>hi</b> } body { [Origin] @Html { <i>x</i> } @Html banner; [Origin] @Html banner; }`,
		`ProgramNode({OriginNode(Html banner, " <b>hi</b> "), ElementNode(body, attributes={}, children={OriginNode(Html, " <i>x</i> "), OriginUsageNode(banner), OriginUsageNode(banner), }), })`},
	{"comments",
		"// dropped\n-- kept\ndiv { /* dropped */ }",
		`ProgramNode({CommentNode("kept"), ElementNode(div, attributes={}, children={}), })`},
	{"style usage from namespace",
		`div { style { @Style Base from ui.core; @Style Pad from ui { padding: 1px; } } }`,
		`ProgramNode({ElementNode(div, attributes={}, children={StyleNode({StyleTemplateUsageNode(Base from ui.core), CustomStyleUsageNode(Pad from ui, StyleNode({StylePropertyNode(padding: LiteralValueNode(1px)), })), }), }), })`},
	{"inherit",
		`[Template] @Style Base { color: black; } [Custom] @Style Box inherit Base from ui, Open { width; } [Template] @Style T { inherit @Style Base; margin: 0; } [Template] @Element Card { inherit @Element Row; p { } }`,
		`ProgramNode({StyleTemplateNode(Base, StyleNode({StylePropertyNode(color: LiteralValueNode(black)), })), CustomStyleTemplateNode(Box, StyleNode({StyleTemplateUsageNode(inherit Base from ui), StyleTemplateUsageNode(inherit Open), StylePropertyNode(width), })), StyleTemplateNode(T, StyleNode({StyleTemplateUsageNode(inherit Base), StylePropertyNode(margin: LiteralValueNode(0)), })), ElementTemplateNode(Card, {ElementTemplateUsageNode(inherit Row), ElementNode(p, attributes={}, children={}), }), })`},
	{"specialization",
		`body { @Element Box { insert at top { hr { } } insert after div[0] { span { } }; delete p[1], em; } }`,
		`ProgramNode({ElementNode(body, attributes={}, children={ElementTemplateUsageNode(Box, {InsertNode(at top, {ElementNode(hr, attributes={}, children={}), }), InsertNode(after div[0], {ElementNode(span, attributes={}, children={}), }), DeleteNode(p[1], em), }), }), })`},
	{"dashed properties",
		`div { style { -webkit-user-select: none; --accent: red; } }`,
		`ProgramNode({ElementNode(div, attributes={}, children={StyleNode({StylePropertyNode(-webkit-user-select: LiteralValueNode(none)), StylePropertyNode(--accent: LiteralValueNode(red)), }), }), })`},
	{"names that look like keywords",
		`[Template] @Element text { p { from: here; } } div { style { @Style text; } }`,
		`ProgramNode({ElementTemplateNode(text, {ElementNode(p, attributes={from: LiteralValueNode(here), }, children={}), }), ElementNode(div, attributes={}, children={StyleNode({StyleTemplateUsageNode(text), }), }), })`},
}

func TestParse(t *testing.T) {
	for _, test := range parseTests {
		prog, err := File(test.name, test.input)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if diff := cmp.Diff(test.dump, prog.String()); diff != "" {
			t.Errorf("%s: dump mismatch (-want +got):\n%s", test.name, diff)
		}
	}
}

func TestParseDeterministic(t *testing.T) {
	var input = parseTests[1].input
	first, _ := File("a.chtl", input)
	for i := 0; i < 10; i++ {
		again, _ := File("a.chtl", input)
		if first.String() != again.String() {
			t.Fatalf("dump differs on run %d", i)
		}
	}
}

func TestParseOrder(t *testing.T) {
	prog, err := File("order.chtl", `a { z: 1; y: 2; x: 3; style { c: 1; b: 2; a: 3; } }`)
	if err != nil {
		t.Fatal(err)
	}
	var elem = prog.Body[0].(*ast.ElementNode)
	var keys []string
	for _, attr := range elem.Attrs {
		keys = append(keys, attr.Key)
	}
	for _, prop := range elem.Body[0].(*ast.StyleNode).Props {
		keys = append(keys, prop.(*ast.StylePropertyNode).Key)
	}
	if diff := cmp.Diff([]string{"z", "y", "x", "c", "b", "a"}, keys); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	var tests = []struct {
		name      string
		input     string
		kind      errortypes.Kind
		line, col int
	}{
		{"missing brace", "div {", errortypes.SyntaxError, 1, 6},
		{"value-less property outside custom style", "div { style { color; } }", errortypes.SyntaxError, 1, 20},
		{"value-less property in template", "[Template] @Style A { color; }", errortypes.SyntaxError, 1, 28},
		{"attribute at top level", "id: a;", errortypes.SyntaxError, 1, 1},
		{"style outside element", "style { }", errortypes.SyntaxError, 1, 1},
		{"unsupported conditional", "div {\n  if { condition: a; }\n}", errortypes.SyntaxError, 2, 3},
		{"unknown template type", "[Template] @Thing A { }", errortypes.SyntaxError, 1, 12},
		{"import without from", `[Import] @Chtl "a.chtl";`, errortypes.SyntaxError, 1, 16},
		{"namespace in element", "div { [Namespace] a { } }", errortypes.SyntaxError, 1, 7},
		{"usage of style outside style", "div { @Style A; }", errortypes.SyntaxError, 1, 7},
		{"lex error", "div {\n  text { \"abc }\n}", errortypes.LexError, 2, 10},
		{"invalid character", "div { % }", errortypes.LexError, 1, 7},
		{"selector in template", "[Template] @Style A { .x { } }", errortypes.SyntaxError, 1, 23},
		{"comment in style", "div { style { -- note\n color: red; } }", errortypes.SyntaxError, 1, 15},
		{"inherit in element", "div { inherit @Element A; }", errortypes.SyntaxError, 1, 7},
		{"inherit in local style", "div { style { inherit @Style A; } }", errortypes.SyntaxError, 1, 15},
		{"var inherit", "[Template] @Var V inherit W { a: 1; }", errortypes.SyntaxError, 1, 19},
		{"bad insert position", "body { @Element A { insert inside { } } }", errortypes.SyntaxError, 1, 28},
		{"element in specialization", "body { @Element A { p { } } }", errortypes.SyntaxError, 1, 21},
	}
	for _, test := range tests {
		_, err := File(test.name+".chtl", test.input)
		if err == nil {
			t.Errorf("%s: expected error", test.name)
			continue
		}
		if kind := errortypes.KindOf(err); kind != test.kind {
			t.Errorf("%s: expected %v, got %v (%v)", test.name, test.kind, kind, err)
		}
		var pos = errortypes.ToErrFilePos(err)
		if pos == nil {
			t.Errorf("%s: expected a file position", test.name)
			continue
		}
		if pos.File() != test.name+".chtl" || pos.Line() != test.line || pos.Col() != test.col {
			t.Errorf("%s: expected %d:%d, got %v", test.name, test.line, test.col, err)
		}
	}
}
