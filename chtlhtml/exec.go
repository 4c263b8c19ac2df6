// Package chtlhtml generates HTML from a resolved CHTL program.
//
// The output is a single stylesheet collected from every style block in the
// document, followed by the document body.  Scripts are emitted verbatim where
// they appear.
package chtlhtml

import (
	"bytes"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/robfig/chtl/ast"
	"github.com/robfig/chtl/errortypes"
	"github.com/robfig/chtl/parsepasses"
	"github.com/robfig/chtl/template"
)

// Options control the generated layout.
type Options struct {
	Pretty       bool // put each rule and declaration of the stylesheet on its own line
	CheckScripts bool // fail with a ScriptSyntaxError on malformed script bodies
}

// Write generates the document for ctx and writes it to w.  The imports of
// ctx must have been loaded and its usages resolved.  Nothing is written if
// generation fails.
func Write(w io.Writer, ctx *template.CompilationContext, opts Options) (err error) {
	var s = &state{
		ctx:  ctx,
		reg:  ctx.Registry,
		opts: opts,
		prog: ctx.Program,
	}
	defer s.errRecover(&err)
	s.walk(ctx.Program)
	for _, script := range ctx.Scripts {
		s.writeScript(script)
	}

	var out bytes.Buffer
	s.writeStylesheet(&out)
	out.Write(s.body.Bytes())
	if opts.Pretty {
		out.WriteByte('\n')
	}
	_, err = w.Write(out.Bytes())
	return err
}

// state represents the state of a generation.
type state struct {
	ctx   *template.CompilationContext
	reg   *template.Registry
	opts  Options
	prog  *ast.ProgramNode // file of the node being generated, for errors
	node  ast.Node         // current node, for errors
	rules []rule           // stylesheet, in order
	body  bytes.Buffer
}

// at marks the state to be on node n, for error reporting.
func (s *state) at(node ast.Node) {
	s.node = node
}

// errorf formats the error and terminates processing.
func (s *state) errorf(kind errortypes.Kind, format string, args ...interface{}) {
	var line, col = s.prog.Location(s.node.Position())
	panic(errortypes.Errorf(kind, s.prog.Name, line, col, format, args...))
}

// errRecover is the handler that turns panics into returns from the top
// level of Write.
func (s *state) errRecover(errp *error) {
	if e := recover(); e != nil {
		var line, col int
		if s.node != nil {
			line, col = s.prog.Location(s.node.Position())
		}
		switch e := e.(type) {
		case runtime.Error:
			*errp = errortypes.Errorf(errortypes.Unknown, s.prog.Name, line, col,
				"%v\n%s", e, debug.Stack())
		case error:
			*errp = e
		default:
			*errp = errortypes.Errorf(errortypes.Unknown, s.prog.Name, line, col, "%v", e)
		}
	}
}

// walk recursively goes through each node and writes its markup.
func (s *state) walk(node ast.Node) {
	s.at(node)
	switch node := node.(type) {
	case *ast.ProgramNode:
		s.walkAll(node.Body)
	case *ast.NamespaceNode:
		s.walkAll(node.Body)
	case *ast.ElementNode:
		s.element(node)
	case *ast.TextNode:
		s.body.WriteString(node.Value)
	case *ast.CommentNode:
		s.body.WriteString("<!-- " + node.Text + " -->")
	case *ast.ScriptNode:
		if s.opts.CheckScripts {
			s.checkScript(node.Raw)
		}
		s.writeScript(node.Raw)
	case *ast.OriginNode:
		if node.Name == "" {
			s.body.WriteString(node.Raw)
		}
	case *ast.OriginUsageNode:
		s.body.WriteString(parsepasses.Origin(s.reg, node).Raw)
	case *ast.ElementTemplateUsageNode:
		var body, err = parsepasses.ExpandElement(s.reg, node, s.prog)
		if err != nil {
			panic(err)
		}
		for _, p := range body {
			s.within(p.Program, func() { s.walk(p.Node) })
		}

	case *ast.ElementTemplateNode, *ast.StyleTemplateNode, *ast.CustomStyleTemplateNode,
		*ast.VarTemplateNode, *ast.ImportNode:
		// definitions produce markup only where they are used
	case *ast.StyleNode:
		s.errorf(errortypes.SyntaxError, "style block outside of an element")
	default:
		s.errorf(errortypes.Unknown, "unknown node type %T", node)
	}
}

func (s *state) walkAll(nodes []ast.Node) {
	for _, node := range nodes {
		s.walk(node)
	}
}

// within runs fn with errors positioned in prog, the file that declared the
// template being expanded.
func (s *state) within(prog *ast.ProgramNode, fn func()) {
	var prev = s.prog
	s.prog = prog
	fn()
	s.prog = prev
}

// element writes an element, its attributes and its children.  Its style
// blocks are moved to the stylesheet.
func (s *state) element(node *ast.ElementNode) {
	var styles []*ast.StyleNode
	for _, child := range node.Body {
		if style, ok := child.(*ast.StyleNode); ok {
			styles = append(styles, style)
		}
	}

	var attrs = autoAttributes(node, styles)
	s.body.WriteString("<" + node.Tag)
	for _, attr := range attrs {
		s.body.WriteString(" " + attr.key + "=" + attr.value)
	}
	s.body.WriteString(">")

	var self = selfSelector(node.Tag, attrs)
	for _, style := range styles {
		s.at(style)
		s.addRules(node.Tag, self, style)
	}
	for _, child := range node.Body {
		if _, ok := child.(*ast.StyleNode); !ok {
			s.walk(child)
		}
	}
	s.body.WriteString("</" + node.Tag + ">")
}

// attribute is a rendered attribute: its value is quoted.
type attribute struct {
	key, value string
}

// autoAttributes returns the attributes of node, followed by the class and id
// attributes implied by the selectors of its local style rules when the
// element does not set them itself.
func autoAttributes(node *ast.ElementNode, styles []*ast.StyleNode) []attribute {
	var attrs []attribute
	for _, attr := range node.Attrs {
		attrs = append(attrs, attribute{attr.Key, quote(attr.Value)})
	}

	var classes, ids []string
	for _, style := range styles {
		for _, prop := range style.Props {
			if rule, ok := prop.(*ast.StyleRuleNode); ok {
				switch name := selectorName(rule.Selector); rule.Selector[0] {
				case '.':
					classes = appendUnique(classes, name)
				case '#':
					ids = appendUnique(ids, name)
				}
			}
		}
	}
	if len(classes) > 0 && node.Attr("class") == nil {
		attrs = append(attrs, attribute{"class", `"` + strings.Join(classes, " ") + `"`})
	}
	if len(ids) > 0 && node.Attr("id") == nil {
		attrs = append(attrs, attribute{"id", `"` + ids[0] + `"`})
	}
	return attrs
}

// quote renders an attribute value.  Quoted literals are kept as written.
func quote(value *ast.LiteralValueNode) string {
	if value.Quoted() {
		return value.Raw
	}
	return `"` + value.Raw + `"`
}
