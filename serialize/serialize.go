// Package serialize writes a parsed CHTL program in a compact binary form and
// reads it back.
//
// The stream starts with the magic bytes "CHTLAST" and a format version,
// followed by the file name, the source text and the tree.  Each node is a tag
// byte and its source offset, followed by its fields in declaration order.
// Strings and counts are uvarint length-prefixed.
package serialize

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/robfig/chtl/ast"
)

// Magic starts every serialized program.  The last byte is the format version.
var Magic = []byte("CHTLAST\x02")

type tag byte

const (
	tagNil tag = iota
	tagProgram
	tagElement
	tagAttribute
	tagLiteral
	tagText
	tagComment
	tagStyle
	tagStyleRule
	tagStyleProperty
	tagScript
	tagOrigin
	tagNamespace
	tagImport
	tagElementTemplate
	tagElementUsage
	tagStyleTemplate
	tagStyleUsage
	tagCustomStyleTemplate
	tagCustomStyleUsage
	tagVarTemplate
	tagVarUsage
	tagOriginUsage
	tagInsert
	tagDelete
	tagLast
)

// Encode writes prog to w.  Usage bindings are written along with the tree.
func Encode(w io.Writer, prog *ast.ProgramNode) error {
	var e = newEncoder(w)
	if e.err == nil {
		_, e.err = e.w.Write(Magic)
	}
	e.writeString(prog.Name)
	e.writeString(prog.Text)
	e.writeList(prog.Body)
	return e.flush()
}

// Bytes returns the serialized form of prog.
func Bytes(prog *ast.ProgramNode) []byte {
	var buf bytes.Buffer
	Encode(&buf, prog) // writes to a bytes.Buffer do not fail
	return buf.Bytes()
}

func (e *encoder) writeList(nodes []ast.Node) {
	e.writeUvarint(uint64(len(nodes)))
	for _, node := range nodes {
		e.writeNode(node)
	}
}

func (e *encoder) header(t tag, pos ast.Pos) {
	e.writeByte(byte(t))
	e.writeUvarint(uint64(pos))
}

func (e *encoder) writeUsage(name, ns string, def ast.DefID) {
	e.writeString(name)
	e.writeString(ns)
	e.writeUvarint(uint64(def))
}

func (e *encoder) writeSelector(sel ast.ElementSelector) {
	e.writeString(sel.Tag)
	e.writeUvarint(uint64(sel.Index + 1))
}

func (e *encoder) writeAttrs(attrs []*ast.AttributeNode) {
	e.writeUvarint(uint64(len(attrs)))
	for _, attr := range attrs {
		e.writeNode(attr)
	}
}

func (e *encoder) writeNode(node ast.Node) {
	switch node := node.(type) {
	case nil:
		e.writeByte(byte(tagNil))
	case *ast.ElementNode:
		e.header(tagElement, node.Pos)
		e.writeString(node.Tag)
		e.writeAttrs(node.Attrs)
		e.writeList(node.Body)
	case *ast.AttributeNode:
		e.header(tagAttribute, node.Pos)
		e.writeString(node.Key)
		e.writeNode(node.Value)
	case *ast.LiteralValueNode:
		e.header(tagLiteral, node.Pos)
		e.writeString(node.Raw)
	case *ast.TextNode:
		e.header(tagText, node.Pos)
		e.writeString(node.Value)
	case *ast.CommentNode:
		e.header(tagComment, node.Pos)
		e.writeString(node.Text)
	case *ast.StyleNode:
		e.header(tagStyle, node.Pos)
		e.writeList(node.Props)
	case *ast.StyleRuleNode:
		e.header(tagStyleRule, node.Pos)
		e.writeString(node.Selector)
		e.writeList(node.Props)
	case *ast.StylePropertyNode:
		e.header(tagStyleProperty, node.Pos)
		e.writeString(node.Key)
		e.writeNode(node.Value)
	case *ast.ScriptNode:
		e.header(tagScript, node.Pos)
		e.writeString(node.Raw)
	case *ast.OriginNode:
		e.header(tagOrigin, node.Pos)
		e.writeString(node.Kind)
		e.writeString(node.Name)
		e.writeString(node.Raw)
	case *ast.NamespaceNode:
		e.header(tagNamespace, node.Pos)
		e.writeString(node.Name)
		e.writeList(node.Body)
	case *ast.ImportNode:
		e.header(tagImport, node.Pos)
		e.writeUvarint(uint64(node.Kind))
		e.writeString(node.Name)
		e.writeString(node.Path)
		e.writeString(node.Alias)
	case *ast.ElementTemplateNode:
		e.header(tagElementTemplate, node.Pos)
		e.writeString(node.Name)
		e.writeBool(node.Custom)
		e.writeList(node.Body)
	case *ast.ElementTemplateUsageNode:
		e.header(tagElementUsage, node.Pos)
		e.writeUsage(node.Name, node.Namespace, node.Def)
		e.writeBool(node.Inherit)
		e.writeList(node.Specialization)
	case *ast.InsertNode:
		e.header(tagInsert, node.Pos)
		e.writeUvarint(uint64(node.Where))
		e.writeSelector(node.Target)
		e.writeList(node.Body)
	case *ast.DeleteNode:
		e.header(tagDelete, node.Pos)
		e.writeUvarint(uint64(len(node.Targets)))
		for _, sel := range node.Targets {
			e.writeSelector(sel)
		}
	case *ast.StyleTemplateNode:
		e.header(tagStyleTemplate, node.Pos)
		e.writeString(node.Name)
		e.writeNode(node.Body)
	case *ast.StyleTemplateUsageNode:
		e.header(tagStyleUsage, node.Pos)
		e.writeUsage(node.Name, node.Namespace, node.Def)
		e.writeBool(node.Inherit)
	case *ast.CustomStyleTemplateNode:
		e.header(tagCustomStyleTemplate, node.Pos)
		e.writeString(node.Name)
		e.writeNode(node.Body)
	case *ast.CustomStyleUsageNode:
		e.header(tagCustomStyleUsage, node.Pos)
		e.writeUsage(node.Name, node.Namespace, node.Def)
		e.writeNode(node.Overrides)
	case *ast.VarTemplateNode:
		e.header(tagVarTemplate, node.Pos)
		e.writeString(node.Name)
		e.writeBool(node.Custom)
		e.writeAttrs(node.Entries)
	case *ast.VarUsageNode:
		e.header(tagVarUsage, node.Pos)
		e.writeUsage(node.Name, node.Namespace, node.Def)
		e.writeString(node.Var)
	case *ast.OriginUsageNode:
		e.header(tagOriginUsage, node.Pos)
		e.writeUsage(node.Name, node.Namespace, node.Def)
	default:
		if e.err == nil {
			e.err = fmt.Errorf("serialize: unknown node type %T", node)
		}
	}
}

// Decode reads a program written by Encode.
func Decode(r io.Reader) (prog *ast.ProgramNode, err error) {
	var d = &decoder{r: bufio.NewReader(r)}
	defer func() {
		if e := recover(); e != nil {
			var derr, ok = e.(decodeError)
			if !ok {
				panic(e)
			}
			prog, err = nil, fmt.Errorf("serialize: %w", derr.err)
		}
	}()

	var magic = make([]byte, len(Magic))
	if _, err := io.ReadFull(d.r, magic); err != nil || !bytes.Equal(magic, Magic) {
		return nil, fmt.Errorf("serialize: not a serialized CHTL program")
	}
	prog = &ast.ProgramNode{
		Name: d.readString(),
		Text: d.readString(),
	}
	d.textLen = len(prog.Text)
	prog.Body = d.readList()
	return prog, nil
}

func (d *decoder) readList() []ast.Node {
	var n = d.readUvarint()
	var nodes []ast.Node
	for i := uint64(0); i < n; i++ {
		nodes = append(nodes, d.readNode())
	}
	return nodes
}

func (d *decoder) readAttrs() []*ast.AttributeNode {
	var n = d.readUvarint()
	var attrs []*ast.AttributeNode
	for i := uint64(0); i < n; i++ {
		attrs = append(attrs, d.expect(tagAttribute).(*ast.AttributeNode))
	}
	return attrs
}

// expect reads a node that must have the given tag.
func (d *decoder) expect(want tag) ast.Node {
	var node = d.readNode()
	if node == nil || tagOf(node) != want {
		d.fail(fmt.Errorf("unexpected node %v", node))
	}
	return node
}

// readSelector reads an element selector; the index is stored plus one so
// that an absent index is zero.
func (d *decoder) readSelector() ast.ElementSelector {
	var sel = ast.ElementSelector{Tag: d.readString()}
	var index = d.readUvarint()
	if index > math.MaxInt32 {
		d.fail(fmt.Errorf("element index %d is out of range", index))
	}
	sel.Index = int(index) - 1
	return sel
}

// readSpecialization reads the insert and delete statements of an element
// usage.
func (d *decoder) readSpecialization() []ast.Node {
	var ops = d.readList()
	for _, op := range ops {
		switch op.(type) {
		case *ast.InsertNode, *ast.DeleteNode:
		default:
			d.fail(fmt.Errorf("unexpected node %v in a specialization", op))
		}
	}
	return ops
}

// readPropertyValue reads the value of a style property: nothing, a literal
// or a variable usage.
func (d *decoder) readPropertyValue() ast.Node {
	var value = d.readNode()
	switch value.(type) {
	case nil, *ast.LiteralValueNode, *ast.VarUsageNode:
		return value
	}
	d.fail(fmt.Errorf("unexpected property value %v", value))
	return nil
}

func (d *decoder) readStyle() *ast.StyleNode {
	return d.expect(tagStyle).(*ast.StyleNode)
}

func (d *decoder) readLiteral() *ast.LiteralValueNode {
	return d.expect(tagLiteral).(*ast.LiteralValueNode)
}

func (d *decoder) readNode() ast.Node {
	var t = tag(d.readByte())
	if t == tagNil {
		return nil
	}
	if t >= tagLast {
		d.fail(fmt.Errorf("unknown node tag %d", t))
	}
	var offset = d.readUvarint()
	if offset > uint64(d.textLen) {
		d.fail(fmt.Errorf("position %d is beyond the end of the source", offset))
	}
	var pos = ast.Pos(offset)

	switch t {
	case tagElement:
		return &ast.ElementNode{Pos: pos, Tag: d.readString(), Attrs: d.readAttrs(), Body: d.readList()}
	case tagAttribute:
		return &ast.AttributeNode{Pos: pos, Key: d.readString(), Value: d.readLiteral()}
	case tagLiteral:
		return &ast.LiteralValueNode{Pos: pos, Raw: d.readString()}
	case tagText:
		return &ast.TextNode{Pos: pos, Value: d.readString()}
	case tagComment:
		return &ast.CommentNode{Pos: pos, Text: d.readString()}
	case tagStyle:
		return &ast.StyleNode{Pos: pos, Props: d.readList()}
	case tagStyleRule:
		return &ast.StyleRuleNode{Pos: pos, Selector: d.readString(), Props: d.readList()}
	case tagStyleProperty:
		return &ast.StylePropertyNode{Pos: pos, Key: d.readString(), Value: d.readPropertyValue()}
	case tagScript:
		return &ast.ScriptNode{Pos: pos, Raw: d.readString()}
	case tagOrigin:
		return &ast.OriginNode{Pos: pos, Kind: d.readString(), Name: d.readString(), Raw: d.readString()}
	case tagNamespace:
		return &ast.NamespaceNode{Pos: pos, Name: d.readString(), Body: d.readList()}
	case tagImport:
		var kind = d.readUvarint()
		if kind > math.MaxInt32 || !ast.ImportKind(kind).Valid() {
			d.fail(fmt.Errorf("unknown import kind %d", kind))
		}
		return &ast.ImportNode{
			Pos:   pos,
			Kind:  ast.ImportKind(kind),
			Name:  d.readString(),
			Path:  d.readString(),
			Alias: d.readString(),
		}
	case tagElementTemplate:
		return &ast.ElementTemplateNode{Pos: pos, Name: d.readString(), Custom: d.readBool(), Body: d.readList()}
	case tagElementUsage:
		var name, ns = d.readString(), d.readString()
		var node = ast.NewElementTemplateUsage(pos, name, ns)
		node.Bind(ast.DefID(d.readUvarint()))
		node.Inherit = d.readBool()
		node.Specialization = d.readSpecialization()
		return node
	case tagInsert:
		var position = d.readUvarint()
		if position > math.MaxInt32 || !ast.InsertPosition(position).Valid() {
			d.fail(fmt.Errorf("unknown insert position %d", position))
		}
		return &ast.InsertNode{
			Pos:    pos,
			Where:  ast.InsertPosition(position),
			Target: d.readSelector(),
			Body:   d.readList(),
		}
	case tagDelete:
		var node = &ast.DeleteNode{Pos: pos}
		var n = d.readUvarint()
		for i := uint64(0); i < n; i++ {
			node.Targets = append(node.Targets, d.readSelector())
		}
		return node
	case tagStyleTemplate:
		return &ast.StyleTemplateNode{Pos: pos, Name: d.readString(), Body: d.readStyle()}
	case tagStyleUsage:
		var name, ns = d.readString(), d.readString()
		var node = ast.NewStyleTemplateUsage(pos, name, ns)
		node.Bind(ast.DefID(d.readUvarint()))
		node.Inherit = d.readBool()
		return node
	case tagCustomStyleTemplate:
		return &ast.CustomStyleTemplateNode{Pos: pos, Name: d.readString(), Body: d.readStyle()}
	case tagCustomStyleUsage:
		var name, ns = d.readString(), d.readString()
		var def = ast.DefID(d.readUvarint())
		var node = ast.NewCustomStyleUsage(pos, name, ns, d.readStyle())
		node.Bind(def)
		return node
	case tagVarTemplate:
		return &ast.VarTemplateNode{Pos: pos, Name: d.readString(), Custom: d.readBool(), Entries: d.readAttrs()}
	case tagVarUsage:
		var name, ns = d.readString(), d.readString()
		var def = ast.DefID(d.readUvarint())
		var node = ast.NewVarUsage(pos, name, d.readString())
		node.Namespace = ns
		node.Bind(def)
		return node
	case tagOriginUsage:
		var name, ns = d.readString(), d.readString()
		var node = ast.NewOriginUsage(pos, name, ns)
		node.Bind(ast.DefID(d.readUvarint()))
		return node
	}
	d.fail(fmt.Errorf("unexpected node tag %d", t))
	return nil
}

func tagOf(node ast.Node) tag {
	switch node.(type) {
	case *ast.AttributeNode:
		return tagAttribute
	case *ast.LiteralValueNode:
		return tagLiteral
	case *ast.StyleNode:
		return tagStyle
	}
	return tagNil
}
