// Package parse converts a CHTL file into its in-memory representation (AST)
package parse

import (
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/robfig/chtl/ast"
	"github.com/robfig/chtl/errortypes"
)

// tree is the parsed representation of a single CHTL file.
type tree struct {
	name      string     // name provided for the input
	text      string     // the full input text
	root      []ast.Node // top-level nodes of the file
	lex       *lexer     // lexer provides a sequence of tokens
	token     [2]item    // two-token lookahead
	peekCount int        // how many tokens have we backed up?
}

// scope identifies what kind of block is being parsed, which decides the
// constructs allowed inside it.
type scope int

const (
	scopeFile scope = iota
	scopeNamespace
	scopeElement
	scopeTemplate // body of an element template
)

// File parses the input into a ProgramNode (the AST).
// The result has unresolved usages; see package parsepasses.
func File(name, text string) (node *ast.ProgramNode, err error) {
	var t = &tree{
		name: name,
		text: text,
		lex:  lex(name, text),
	}
	defer t.recover(&err)
	t.root = t.blockList(scopeFile, nil, itemEOF)
	t.lex = nil
	return &ast.ProgramNode{
		Name: t.name,
		Text: t.text,
		Body: t.root,
	}, nil
}

// blockList:
//
//	(definition | usage | text | style | script | comment | attribute | element)*
//
// Terminates when it comes across the given end token.  Attributes are only
// allowed when elem is non-nil; they are added to it directly.
func (t *tree) blockList(sc scope, elem *ast.ElementNode, until itemType) []ast.Node {
	var nodes []ast.Node
	for {
		var token = t.next()
		if token.typ == until {
			return nodes
		}
		if node := t.blockItem(sc, elem, token); node != nil {
			nodes = append(nodes, node)
		}
	}
}

// blockItem parses one construct of a block, most specific first.
func (t *tree) blockItem(sc scope, elem *ast.ElementNode, token item) ast.Node {
	switch token.typ {
	case itemTemplate, itemCustom:
		return t.parseDefinition(token)
	case itemNamespace:
		if sc != scopeFile && sc != scopeNamespace {
			t.errorf(token, "namespace is not allowed inside an element")
		}
		return t.parseNamespace(token)
	case itemImport:
		if sc != scopeFile && sc != scopeNamespace {
			t.errorf(token, "import is not allowed inside an element")
		}
		return t.parseImport(token)
	case itemOrigin:
		return t.parseOrigin(token)
	case itemAtType:
		return t.parseUsage(token)
	case itemComment:
		return &ast.CommentNode{Pos: token.pos, Text: commentText(token.val)}
	case itemIdent:
		var next = t.peek()
		switch {
		case token.val == "text" && (next.typ == itemLeftBrace || next.typ == itemColon):
			return t.parseText(token)
		case token.val == "style" && next.typ == itemLeftBrace:
			if elem == nil {
				t.errorf(token, "style block outside of an element")
			}
			return t.parseStyle(token)
		case token.val == "script" && next.typ == itemLeftBrace:
			return t.parseScript(token)
		case token.val == "if" && next.typ == itemLeftBrace:
			t.errorf(token, "conditional rendering (if) is not supported")
		case token.val == "inherit" && next.typ == itemAtType:
			if sc != scopeTemplate {
				t.errorf(token, "inherit is only allowed in a template body")
			}
			var at = t.next()
			if at.val != "@Element" {
				t.errorf(at, "an element template cannot inherit %s", at.val)
			}
			var name = t.expect(itemIdent, "inherit")
			var u = ast.NewElementTemplateUsage(token.pos, name.val, t.parseFrom())
			u.Inherit = true
			t.endStatement("inherit")
			return u
		case next.typ == itemLeftBrace:
			return t.parseElement(token)
		case next.typ == itemColon:
			if elem == nil {
				t.errorf(token, "attribute %q outside of an element", token.val)
			}
			elem.Attrs = append(elem.Attrs, t.parseAttribute(token))
			return nil
		}
		t.unexpected(next, "{ or :", "after "+token.val)
	}
	t.unexpected(token, "an element, definition or usage", "block")
	return nil
}

// parseElement parses `tag { attributes and children }`.  The tag has been
// read.
func (t *tree) parseElement(token item) ast.Node {
	t.expect(itemLeftBrace, "element "+token.val)
	var elem = &ast.ElementNode{Pos: token.pos, Tag: token.val}
	elem.Body = t.blockList(scopeElement, elem, itemRightBrace)
	return elem
}

// parseAttribute parses `key: value;`.  The key has been read.
func (t *tree) parseAttribute(key item) *ast.AttributeNode {
	t.expect(itemColon, "attribute")
	var value = t.parseLiteral("attribute " + key.val)
	t.endStatement("attribute " + key.val)
	return &ast.AttributeNode{Pos: key.pos, Key: key.val, Value: value}
}

// parseLiteral reads a quoted or bare value.
func (t *tree) parseLiteral(context string) *ast.LiteralValueNode {
	switch token := t.next(); token.typ {
	case itemString, itemValue:
		return &ast.LiteralValueNode{Pos: token.pos, Raw: token.val}
	default:
		t.unexpected(token, "a value", context)
	}
	return nil
}

// endStatement consumes the ; ending a statement.  It may be omitted before a
// closing brace.
func (t *tree) endStatement(context string) {
	switch token := t.next(); token.typ {
	case itemSemicolon:
	case itemRightBrace:
		t.backup()
	default:
		t.unexpected(token, ";", context)
	}
}

// parseText parses `text { "..." }` or `text: "...";`.
func (t *tree) parseText(token item) ast.Node {
	if t.next().typ == itemColon {
		var value = t.parseLiteral("text")
		t.endStatement("text")
		return &ast.TextNode{Pos: token.pos, Value: textValue(value.Raw, true)}
	}
	var node = &ast.TextNode{Pos: token.pos}
	switch body := t.next(); body.typ {
	case itemString:
		node.Value = textValue(body.val, false)
		t.expect(itemRightBrace, "text block")
	case itemValue:
		node.Value = rawtext(body.val)
		t.expect(itemRightBrace, "text block")
	case itemRightBrace:
	default:
		t.unexpected(body, "a string", "text block")
	}
	return node
}

// textValue strips the quotes from a quoted text literal.
func textValue(raw string, inline bool) string {
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	if inline {
		return raw
	}
	return rawtext(raw)
}

// parseScript parses `script { ... }`.  The body is kept verbatim.
func (t *tree) parseScript(token item) ast.Node {
	t.expect(itemLeftBrace, "script")
	var body = t.expect(itemRawBody, "script")
	t.expect(itemRightBrace, "script")
	return &ast.ScriptNode{Pos: token.pos, Raw: body.val}
}

// parseStyle parses a style block `style { ... }` attached to an element.
func (t *tree) parseStyle(token item) *ast.StyleNode {
	t.expect(itemLeftBrace, "style")
	return &ast.StyleNode{Pos: token.pos, Props: t.styleList(styleLocal, true)}
}

// styleMode decides whether a property may omit its value, and whether the
// block may inherit other styles.
type styleMode int

const (
	styleLocal    styleMode = iota // every property has a value
	styleTemplate                  // body of a [Template] @Style
	styleCustom                    // body of a [Custom] @Style
	styleOverride                  // body of a custom style usage
)

// styleList:
//
//	(property | @Style usage | selector rule)*
//
// Terminates at the closing brace.
func (t *tree) styleList(mode styleMode, rules bool) []ast.Node {
	var props []ast.Node
	for {
		switch token := t.next(); token.typ {
		case itemRightBrace:
			return props
		case itemComment:
			t.errorf(token, "generator comments are not allowed in a style block")
		case itemIdent:
			if token.val == "inherit" && t.peek().typ == itemAtType {
				if mode != styleTemplate && mode != styleCustom {
					t.errorf(token, "inherit is only allowed in a style template")
				}
				props = append(props, t.parseStyleInherit(token))
				continue
			}
			props = append(props, t.parseProperties(token, mode)...)
		case itemAtType:
			if token.val != "@Style" {
				t.unexpected(token, "@Style", "style block")
			}
			props = append(props, t.parseStyleUsage(token))
		case itemSelector:
			if !rules {
				t.errorf(token, "selector %s is only allowed in a local style block", token.val)
			}
			t.expect(itemLeftBrace, "selector "+token.val)
			props = append(props, &ast.StyleRuleNode{Pos: token.pos, Selector: token.val, Props: t.styleList(styleLocal, false)})
		default:
			t.unexpected(token, "a style property", "style block")
		}
	}
}

// parseProperties parses `key: value;`, or in a custom style definition, the
// value-less forms `key;` and `a, b, c;`.  The first key has been read.
func (t *tree) parseProperties(key item, mode styleMode) []ast.Node {
	var token = t.next()
	if token.typ == itemColon {
		var value = t.parsePropertyValue(key.val)
		t.endStatement("property " + key.val)
		return []ast.Node{&ast.StylePropertyNode{Pos: key.pos, Key: key.val, Value: value}}
	}

	if mode != styleCustom {
		t.unexpected(token, ":", "property "+key.val)
	}
	var props = []ast.Node{&ast.StylePropertyNode{Pos: key.pos, Key: key.val}}
	for {
		switch token.typ {
		case itemSemicolon:
			return props
		case itemRightBrace:
			t.backup()
			return props
		case itemComma:
			key = t.expect(itemIdent, "property list")
			props = append(props, &ast.StylePropertyNode{Pos: key.pos, Key: key.val})
		default:
			t.unexpected(token, "; or ,", "property list")
		}
		token = t.next()
	}
}

// varUsage matches a variable template reference such as ThemeColor(primary).
var varUsage = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*)\(\s*([A-Za-z_][A-Za-z0-9_-]*)\s*\)$`)

// cssFunctions look like variable references but are emitted as written.
var cssFunctions = map[string]bool{
	"url": true, "var": true, "attr": true, "calc": true, "env": true,
	"rgb": true, "rgba": true, "hsl": true, "hsla": true, "hwb": true,
	"lab": true, "lch": true, "color": true, "min": true, "max": true,
	"clamp": true, "format": true, "local": true, "counter": true,
	"translate": true, "translateX": true, "translateY": true,
	"rotate": true, "scale": true, "skew": true, "matrix": true,
	"blur": true, "brightness": true, "contrast": true, "opacity": true,
	"linear-gradient": true, "radial-gradient": true, "repeat": true,
	"minmax": true, "fit-content": true, "steps": true, "cubic-bezier": true,
}

// parsePropertyValue reads a property value: a literal or a variable usage.
func (t *tree) parsePropertyValue(key string) ast.Node {
	var lit = t.parseLiteral("property " + key)
	if !lit.Quoted() {
		if m := varUsage.FindStringSubmatch(lit.Raw); m != nil && !cssFunctions[m[1]] {
			return ast.NewVarUsage(lit.Pos, m[1], m[2])
		}
	}
	return lit
}

// parseStyleUsage parses `@Style Name [from ns];` or, when followed by a
// block, a custom style usage `@Style Name [from ns] { key: value; }`.
func (t *tree) parseStyleUsage(token item) ast.Node {
	var name = t.expect(itemIdent, "@Style usage")
	var ns = t.parseFrom()
	switch next := t.next(); next.typ {
	case itemSemicolon:
		return ast.NewStyleTemplateUsage(token.pos, name.val, ns)
	case itemRightBrace:
		t.backup()
		return ast.NewStyleTemplateUsage(token.pos, name.val, ns)
	case itemLeftBrace:
		var overrides = &ast.StyleNode{Pos: next.pos, Props: t.styleList(styleOverride, false)}
		t.optional(itemSemicolon)
		return ast.NewCustomStyleUsage(token.pos, name.val, ns, overrides)
	default:
		t.unexpected(next, "; or {", "@Style usage "+name.val)
	}
	return nil
}

// parseStyleInherit parses `inherit @Style Name [from ns];`.  The inherit
// keyword has been read.
func (t *tree) parseStyleInherit(token item) ast.Node {
	if at := t.next(); at.val != "@Style" {
		t.errorf(at, "a style template cannot inherit %s", at.val)
	}
	var name = t.expect(itemIdent, "inherit")
	var u = ast.NewStyleTemplateUsage(token.pos, name.val, t.parseFrom())
	u.Inherit = true
	t.endStatement("inherit")
	return u
}

// parseFrom parses an optional `from namespace` clause.
func (t *tree) parseFrom() string {
	if tok := t.peek(); tok.typ != itemIdent || tok.val != "from" {
		return ""
	}
	t.next()
	switch target := t.next(); target.typ {
	case itemIdent, itemValue:
		return target.val
	default:
		t.unexpected(target, "a namespace", "from clause")
	}
	return ""
}

// parseUsage parses `@Element Name [from ns];` or `@Html Name [from ns];`.  An
// element usage may be followed by a block that specializes it.
func (t *tree) parseUsage(token item) ast.Node {
	var name = t.expect(itemIdent, token.val+" usage")
	var ns = t.parseFrom()
	if token.val == "@Element" && t.peek().typ == itemLeftBrace {
		t.next()
		var u = ast.NewElementTemplateUsage(token.pos, name.val, ns)
		u.Specialization = t.specialization(name.val)
		t.optional(itemSemicolon)
		return u
	}
	t.endStatement(token.val + " usage")
	switch token.val {
	case "@Element":
		return ast.NewElementTemplateUsage(token.pos, name.val, ns)
	case "@Html":
		return ast.NewOriginUsage(token.pos, name.val, ns)
	case "@Style":
		t.errorf(token, "@Style usage outside of a style block")
	}
	t.errorf(token, "unknown usage type %s", token.val)
	return nil
}

// specialization:
//
//	(insert | delete)*
//
// Terminates at the closing brace.
func (t *tree) specialization(name string) []ast.Node {
	var ops []ast.Node
	for {
		switch token := t.next(); {
		case token.typ == itemRightBrace:
			return ops
		case token.typ == itemIdent && token.val == "insert":
			ops = append(ops, t.parseInsert(token))
		case token.typ == itemIdent && token.val == "delete":
			ops = append(ops, t.parseDelete(token))
		default:
			t.unexpected(token, "insert or delete", "specialization of @Element "+name)
		}
	}
}

// insertPositions maps the word after insert to its position.
var insertPositions = map[string]ast.InsertPosition{
	"before":  ast.InsertBefore,
	"after":   ast.InsertAfter,
	"replace": ast.InsertReplace,
}

// parseInsert parses `insert (at top | at bottom | before sel | after sel |
// replace sel) { ... }`.  The insert keyword has been read.
func (t *tree) parseInsert(token item) ast.Node {
	var node = &ast.InsertNode{Pos: token.pos, Target: ast.ElementSelector{Index: -1}}
	var where = t.expect(itemIdent, "insert")
	if where.val == "at" {
		switch side := t.expect(itemIdent, "insert at"); side.val {
		case "top":
			node.Where = ast.InsertAtTop
		case "bottom":
			node.Where = ast.InsertAtBottom
		default:
			t.unexpected(side, "top or bottom", "insert at")
		}
	} else if pos, ok := insertPositions[where.val]; ok {
		node.Where = pos
		node.Target = t.parseSelector("insert " + where.val)
	} else {
		t.unexpected(where, "at, before, after or replace", "insert")
	}
	t.expect(itemLeftBrace, "insert")
	node.Body = t.blockList(scopeTemplate, nil, itemRightBrace)
	t.optional(itemSemicolon)
	return node
}

// parseDelete parses `delete sel, sel;`.  The delete keyword has been read.
func (t *tree) parseDelete(token item) ast.Node {
	var node = &ast.DeleteNode{Pos: token.pos}
	for {
		node.Targets = append(node.Targets, t.parseSelector("delete"))
		if t.peek().typ != itemComma {
			break
		}
		t.next()
	}
	t.endStatement("delete")
	return node
}

// parseSelector parses `tag` or `tag[index]`.
func (t *tree) parseSelector(context string) ast.ElementSelector {
	var sel = ast.ElementSelector{Tag: t.expect(itemIdent, context).val, Index: -1}
	if index := t.peek(); index.typ == itemIndex {
		t.next()
		var n, err = strconv.Atoi(strings.Trim(index.val, "[]"))
		if err != nil {
			t.errorf(index, "invalid index %s", index.val)
		}
		sel.Index = n
	}
	return sel
}

// parseDefinition parses a [Template] or [Custom] definition.  The keyword
// has been read.
func (t *tree) parseDefinition(keyword item) ast.Node {
	var custom = keyword.typ == itemCustom
	var kind = t.expect(itemAtType, keyword.val)
	var name = t.expect(itemIdent, keyword.val+" "+kind.val)
	var inherits = t.parseInheritClause(kind)
	t.expect(itemLeftBrace, keyword.val+" "+kind.val+" "+name.val)
	var node ast.Node
	switch kind.val {
	case "@Element":
		node = &ast.ElementTemplateNode{
			Pos:    keyword.pos,
			Name:   name.val,
			Custom: custom,
			Body:   append(inherits, t.blockList(scopeTemplate, nil, itemRightBrace)...),
		}
	case "@Style":
		var mode = styleTemplate
		if custom {
			mode = styleCustom
		}
		var body = &ast.StyleNode{Pos: name.pos, Props: append(inherits, t.styleList(mode, false)...)}
		if custom {
			node = &ast.CustomStyleTemplateNode{Pos: keyword.pos, Name: name.val, Body: body}
		} else {
			node = &ast.StyleTemplateNode{Pos: keyword.pos, Name: name.val, Body: body}
		}
	case "@Var":
		node = &ast.VarTemplateNode{
			Pos:     keyword.pos,
			Name:    name.val,
			Custom:  custom,
			Entries: t.varEntries(),
		}
	default:
		t.errorf(kind, "unknown template type %s", kind.val)
	}
	t.optional(itemSemicolon)
	return node
}

// parseInheritClause parses the optional `inherit Base, Other from ns` that
// follows the name of a definition.  Each base becomes an inheriting usage,
// placed before the definition's own body.
func (t *tree) parseInheritClause(kind item) []ast.Node {
	var token = t.peek()
	if token.typ != itemIdent || token.val != "inherit" {
		return nil
	}
	t.next()
	var inherits []ast.Node
	for {
		var name = t.expect(itemIdent, "inherit")
		var ns = t.parseFrom()
		switch kind.val {
		case "@Element":
			var u = ast.NewElementTemplateUsage(name.pos, name.val, ns)
			u.Inherit = true
			inherits = append(inherits, u)
		case "@Style":
			var u = ast.NewStyleTemplateUsage(name.pos, name.val, ns)
			u.Inherit = true
			inherits = append(inherits, u)
		default:
			t.errorf(token, "%s templates cannot inherit", kind.val)
		}
		if t.peek().typ != itemComma {
			return inherits
		}
		t.next()
	}
}

// varEntries parses the `key: value;` entries of a variable template.
func (t *tree) varEntries() []*ast.AttributeNode {
	var entries []*ast.AttributeNode
	for {
		switch token := t.next(); token.typ {
		case itemRightBrace:
			return entries
		case itemIdent:
			entries = append(entries, t.parseAttribute(token))
		default:
			t.unexpected(token, "a variable", "@Var")
		}
	}
}

// parseNamespace parses `[Namespace] name { ... }`.
func (t *tree) parseNamespace(keyword item) ast.Node {
	var name = t.expect(itemIdent, "namespace")
	t.expect(itemLeftBrace, "namespace "+name.val)
	var node = &ast.NamespaceNode{Pos: keyword.pos, Name: name.val, Body: t.blockList(scopeNamespace, nil, itemRightBrace)}
	t.optional(itemSemicolon)
	return node
}

// importKinds maps the type tag of a plain import to its kind.
var importKinds = map[string]ast.ImportKind{
	"@Chtl":       ast.ImportChtl,
	"@Html":       ast.ImportHtml,
	"@Style":      ast.ImportStyle,
	"@JavaScript": ast.ImportJavaScript,
}

// templateCategories maps the type tag of a precise import to its category.
var templateCategories = map[string]ast.Category{
	"@Element": ast.CategoryElement,
	"@Style":   ast.CategoryStyle,
	"@Var":     ast.CategoryVar,
}

// parseImport parses
//
//	[Import] @Kind from path [as alias];
//	[Import] ([Template] | [Custom]) @Kind [Name] from path [as alias];
func (t *tree) parseImport(keyword item) ast.Node {
	var node = &ast.ImportNode{Pos: keyword.pos}
	switch token := t.next(); token.typ {
	case itemAtType:
		var kind, ok = importKinds[token.val]
		if !ok {
			t.errorf(token, "unknown import type %s", token.val)
		}
		node.Kind = kind
	case itemTemplate, itemCustom:
		var at = t.expect(itemAtType, "import")
		var cat, ok = templateCategories[at.val]
		if !ok {
			t.errorf(at, "unknown import type %s %s", token.val, at.val)
		}
		node.Kind, _ = ast.ImportKindFor(token.typ == itemCustom, cat)
		if next := t.peek(); next.typ == itemIdent && next.val != "from" {
			node.Name = t.next().val
		}
	default:
		t.unexpected(token, "an import type", "import")
	}

	if from := t.next(); from.typ != itemIdent || from.val != "from" {
		t.unexpected(from, "from", "import")
	}
	switch path := t.next(); path.typ {
	case itemString:
		var unquoted, err = unquoteString(path.val)
		if err != nil {
			t.errorf(path, "import path %s: %v", path.val, err)
		}
		node.Path = unquoted
	case itemValue, itemIdent:
		node.Path = path.val
	default:
		t.unexpected(path, "a path", "import")
	}

	if as := t.peek(); as.typ == itemIdent && as.val == "as" {
		t.next()
		node.Alias = t.expect(itemIdent, "import alias").val
	}
	t.endStatement("import")
	return node
}

// originKinds lists the languages an [Origin] block may hold.
var originKinds = map[string]string{
	"@Html":       "Html",
	"@Style":      "Style",
	"@JavaScript": "JavaScript",
}

// parseOrigin parses `[Origin] @Kind [Name] { raw }` or the usage form
// `[Origin] @Kind Name;`.
func (t *tree) parseOrigin(keyword item) ast.Node {
	var at = t.expect(itemAtType, "[Origin]")
	var kind, ok = originKinds[at.val]
	if !ok {
		t.errorf(at, "unknown origin type %s", at.val)
	}
	var name string
	if next := t.peek(); next.typ == itemIdent {
		name = t.next().val
	}
	switch token := t.next(); token.typ {
	case itemLeftBrace:
		var raw = t.expect(itemRawBody, "[Origin] block")
		t.expect(itemRightBrace, "[Origin] block")
		t.optional(itemSemicolon)
		return &ast.OriginNode{Pos: keyword.pos, Kind: kind, Name: name, Raw: raw.val}
	case itemSemicolon:
		if name == "" {
			t.errorf(token, "[Origin] usage needs a name")
		}
		return ast.NewOriginUsage(keyword.pos, name, "")
	case itemIdent:
		if token.val == "from" && name != "" {
			t.backup()
			var ns = t.parseFrom()
			t.endStatement("[Origin] usage")
			return ast.NewOriginUsage(keyword.pos, name, ns)
		}
		t.unexpected(token, "{ or ;", "[Origin]")
	default:
		t.unexpected(token, "{ or ;", "[Origin]")
	}
	return nil
}

// commentText returns the text of a generator comment.
func commentText(val string) string {
	return strings.TrimSpace(strings.TrimPrefix(val, "--"))
}

// Helpers ----------

// next returns the next token.
func (t *tree) next() item {
	if t.peekCount > 0 {
		t.peekCount--
	} else {
		t.token[0] = t.lex.nextItem()
	}
	return t.token[t.peekCount]
}

// backup backs the input stream up one token.
func (t *tree) backup() {
	t.peekCount++
}

// peek returns but does not consume the next token.
func (t *tree) peek() item {
	if t.peekCount > 0 {
		return t.token[t.peekCount-1]
	}
	t.peekCount = 1
	t.token[0] = t.lex.nextItem()
	return t.token[0]
}

// optional consumes the next token if it has the given type.
func (t *tree) optional(typ itemType) {
	if t.peek().typ == typ {
		t.next()
	}
}

// recover is the handler that turns panics into returns from the top level of Parse.
func (t *tree) recover(errp *error) {
	e := recover()
	if e == nil {
		return
	}
	if _, ok := e.(runtime.Error); ok {
		panic(e)
	}
	if t.lex != nil {
		t.lex.drain()
		t.lex = nil
	}
	*errp = e.(*errortypes.Error)
}

// expect consumes the next token and guarantees it has the required type.
func (t *tree) expect(expected itemType, context string) item {
	token := t.next()
	if token.typ != expected {
		t.unexpected(token, expected.String(), context)
	}
	return token
}

// unexpected complains about the token and terminates processing.
func (t *tree) unexpected(token item, expected, context string) {
	if token.typ == itemError {
		t.fail(errortypes.LexError, token, "%s", token.val)
	}
	var found = token.String()
	if token.typ >= itemIdent && token.typ < itemKeyword {
		found = token.typ.String() + " " + found
	}
	t.fail(errortypes.SyntaxError, token, "expected %s in %s, found %s", expected, context, found)
}

// errorf formats the error and terminates processing.
func (t *tree) errorf(token item, format string, args ...interface{}) {
	if token.typ == itemError {
		t.fail(errortypes.LexError, token, "%s", token.val)
	}
	t.fail(errortypes.SyntaxError, token, format, args...)
}

// fail terminates processing with an error of the given kind at the token.
func (t *tree) fail(kind errortypes.Kind, token item, format string, args ...interface{}) {
	t.root = nil
	var line, col = ast.LineCol(t.text, token.pos)
	panic(errortypes.Errorf(kind, t.name, line, col, format, args...))
}
