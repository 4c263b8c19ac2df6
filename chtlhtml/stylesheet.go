package chtlhtml

import (
	"bytes"
	"strings"

	"github.com/robfig/chtl/ast"
	"github.com/robfig/chtl/parsepasses"
)

// rule is one rule of the generated stylesheet.
type rule struct {
	selector string
	decls    []parsepasses.Declaration
}

// addRules moves a style block of an element to the stylesheet.  The block's
// own properties form a rule for the element's tag; each local rule follows,
// with & standing for the element itself.  Empty rules are dropped.
func (s *state) addRules(tag, self string, style *ast.StyleNode) {
	s.addRule(tag, style.Props)
	for _, prop := range style.Props {
		if r, ok := prop.(*ast.StyleRuleNode); ok {
			s.at(r)
			s.addRule(strings.ReplaceAll(r.Selector, "&", self), r.Props)
		}
	}
}

func (s *state) addRule(selector string, props []ast.Node) {
	var decls = parsepasses.ExpandStyle(s.reg, props)
	if len(decls) > 0 {
		s.rules = append(s.rules, rule{selector, decls})
	}
}

// writeStylesheet writes the collected rules, then the imported stylesheets.
func (s *state) writeStylesheet(out *bytes.Buffer) {
	var nl, indent, sep = "", "", " "
	if s.opts.Pretty {
		nl, indent, sep = "\n", "  ", "\n"
	}

	out.WriteString("<style>" + nl)
	for _, r := range s.rules {
		out.WriteString(r.selector + " {" + sep)
		for _, decl := range r.decls {
			out.WriteString(indent + decl.Key + ": " + decl.Value.Raw + ";" + sep)
		}
		out.WriteString("}" + sep)
	}
	for _, css := range s.ctx.Stylesheets {
		if css = strings.TrimSpace(css); css != "" {
			out.WriteString(css + sep)
		}
	}
	out.WriteString("</style>" + nl)
}

// selfSelector returns what & stands for in the local rules of an element:
// its first class, else its id, else its tag.
func selfSelector(tag string, attrs []attribute) string {
	var id string
	for _, attr := range attrs {
		var value = strings.Trim(attr.value, `"'`)
		switch attr.key {
		case "class":
			if classes := strings.Fields(value); len(classes) > 0 {
				return "." + classes[0]
			}
		case "id":
			if id == "" && value != "" {
				id = "#" + value
			}
		}
	}
	if id != "" {
		return id
	}
	return tag
}

// selectorName returns the class or id named at the start of a selector such
// as .box:hover.
func selectorName(selector string) string {
	var i = 1
	for i < len(selector) && isNameByte(selector[i]) {
		i++
	}
	return selector[1:i]
}

func isNameByte(c byte) bool {
	return c == '-' || c == '_' || c >= 0x80 ||
		'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func appendUnique(list []string, name string) []string {
	if name == "" {
		return list
	}
	for _, have := range list {
		if have == name {
			return list
		}
	}
	return append(list, name)
}
