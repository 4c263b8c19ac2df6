// Package ast contains definitions for the in-memory representation of a CHTL
// source file.
//
// Every node's String method returns its canonical dump form, e.g.
//
//	ElementNode(div, attributes={}, children={TextNode("hi"), })
//
// The dump of a ProgramNode is the AST oracle used by the --dump-ast mode.
package ast

import (
	"bytes"
	"strings"
)

// Node represents any singular piece of a CHTL file.  For example, an element
// or a style property.
type Node interface {
	String() string // String returns the canonical dump of this node.
	Position() Pos  // byte position of start of node in full original input string
}

// ParentNode is any Node that has descendent nodes.  For example, the Children
// of an ElementNode are its text, style, script and element children.
type ParentNode interface {
	Node
	Children() []Node
}

// Pos represents a byte position in the original input text from which this
// file was parsed.  It is useful to construct helpful error messages.
type Pos int

// Position returns this position.  It is implemented as a method so that Nodes
// may embed a Pos and fulfill this part of the Node interface for free.
func (p Pos) Position() Pos {
	return p
}

// DefID is a handle to a definition stored in a template.Registry.  The zero
// value means the usage has not been resolved.
type DefID int

// ProgramNode represents a CHTL file.
type ProgramNode struct {
	Name string // name provided for the input, usually a path
	Text string // the full input text
	Body []Node
}

func (n *ProgramNode) Position() Pos {
	return 0
}

func (n *ProgramNode) Children() []Node {
	return n.Body
}

func (n *ProgramNode) String() string {
	return "ProgramNode(" + list(n.Body) + ")"
}

// Location converts a byte offset within this file into a 1-based line and
// column.
func (n *ProgramNode) Location(pos Pos) (line, col int) {
	return LineCol(n.Text, pos)
}

// LineCol converts a byte offset within text into a 1-based line and column.
func LineCol(text string, pos Pos) (line, col int) {
	if pos < 0 {
		pos = 0
	}
	if int(pos) > len(text) {
		pos = Pos(len(text))
	}
	var before = text[:pos]
	line = 1 + strings.Count(before, "\n")
	col = int(pos) - strings.LastIndex(before, "\n")
	return line, col
}

// ElementNode is an HTML element with ordered attributes and children.
type ElementNode struct {
	Pos
	Tag   string
	Attrs []*AttributeNode
	Body  []Node
}

func (n *ElementNode) String() string {
	var b bytes.Buffer
	b.WriteString("ElementNode(" + n.Tag + ", attributes={")
	for _, attr := range n.Attrs {
		b.WriteString(attr.String() + ", ")
	}
	b.WriteString("}, children=" + list(n.Body) + ")")
	return b.String()
}

func (n *ElementNode) Children() []Node {
	return n.Body
}

// Attr returns the attribute with the given key, or nil.
func (n *ElementNode) Attr(key string) *AttributeNode {
	for _, attr := range n.Attrs {
		if attr.Key == key {
			return attr
		}
	}
	return nil
}

// AttributeNode is a `key: value` pair.  It is used for element attributes and
// for the entries of a variable template.
type AttributeNode struct {
	Pos
	Key   string
	Value *LiteralValueNode
}

func (n *AttributeNode) String() string {
	return n.Key + ": " + n.Value.String()
}

// LiteralValueNode is a value exactly as it was written, quotes included.
type LiteralValueNode struct {
	Pos
	Raw string
}

func (n *LiteralValueNode) String() string {
	return "LiteralValueNode(" + n.Raw + ")"
}

// Quoted reports whether the literal was written as a quoted string.
func (n *LiteralValueNode) Quoted() bool {
	return len(n.Raw) >= 2 && (n.Raw[0] == '"' || n.Raw[0] == '\'') && n.Raw[len(n.Raw)-1] == n.Raw[0]
}

// Unquoted returns the literal without its surrounding quotes, if any.
func (n *LiteralValueNode) Unquoted() string {
	if n.Quoted() {
		return n.Raw[1 : len(n.Raw)-1]
	}
	return n.Raw
}

type TextNode struct {
	Pos
	Value string // the text, without quotes
}

func (n *TextNode) String() string {
	return `TextNode("` + n.Value + `")`
}

// CommentNode is a generator comment (`-- text`).  It is emitted into the
// output as an HTML comment.
type CommentNode struct {
	Pos
	Text string
}

func (n *CommentNode) String() string {
	return `CommentNode("` + n.Text + `")`
}

// StyleNode is a local style block.  Props holds StylePropertyNode,
// StyleTemplateUsageNode, CustomStyleUsageNode and StyleRuleNode values in
// source order.
type StyleNode struct {
	Pos
	Props []Node
}

func (n *StyleNode) String() string {
	return "StyleNode(" + list(n.Props) + ")"
}

func (n *StyleNode) Children() []Node {
	return n.Props
}

// StyleRuleNode is a selector rule nested in a local style block, e.g.
// `.box { width: 10px; }` or `&:hover { ... }`.
type StyleRuleNode struct {
	Pos
	Selector string
	Props    []Node
}

func (n *StyleRuleNode) String() string {
	return "StyleRuleNode(" + n.Selector + ", " + list(n.Props) + ")"
}

func (n *StyleRuleNode) Children() []Node {
	return n.Props
}

// StylePropertyNode is a single declaration.  Value is nil, a
// *LiteralValueNode or a *VarUsageNode.  It is nil only inside a custom style
// definition.
type StylePropertyNode struct {
	Pos
	Key   string
	Value Node
}

func (n *StylePropertyNode) String() string {
	if n.Value == nil {
		return "StylePropertyNode(" + n.Key + ")"
	}
	return "StylePropertyNode(" + n.Key + ": " + n.Value.String() + ")"
}

// ScriptNode holds a script body, copied verbatim.
type ScriptNode struct {
	Pos
	Raw string
}

func (n *ScriptNode) String() string {
	return `ScriptNode("` + n.Raw + `")`
}

// OriginNode is a block of raw Html, Style or JavaScript.  Unnamed origins are
// emitted in place; named ones are definitions used with @Html Name;.
type OriginNode struct {
	Pos
	Kind string
	Name string
	Raw  string
}

func (n *OriginNode) String() string {
	var head = n.Kind
	if n.Name != "" {
		head += " " + n.Name
	}
	return "OriginNode(" + head + `, "` + n.Raw + `")`
}

type NamespaceNode struct {
	Pos
	Name string
	Body []Node
}

func (n *NamespaceNode) String() string {
	return "NamespaceNode(" + n.Name + ", " + list(n.Body) + ")"
}

func (n *NamespaceNode) Children() []Node {
	return n.Body
}

// ImportNode asks the loader to merge another file's definitions.
type ImportNode struct {
	Pos
	Kind  ImportKind
	Name  string // for precise imports, e.g. [Import] [Template] @Style Name
	Path  string // unquoted
	Alias string
}

func (n *ImportNode) String() string {
	var head = n.Kind.String()
	if n.Name != "" {
		head += " " + n.Name
	}
	var expr = "ImportNode(" + head + `, "` + n.Path + `"`
	if n.Alias != "" {
		expr += " as " + n.Alias
	}
	return expr + ")"
}

func list(nodes []Node) string {
	var b bytes.Buffer
	b.WriteString("{")
	for _, n := range nodes {
		b.WriteString(n.String())
		b.WriteString(", ")
	}
	b.WriteString("}")
	return b.String()
}
