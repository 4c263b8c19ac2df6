package parse

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/robfig/chtl/ast"
)

// Lexer design from text/template

// Tokens ---------------------------------------------------------------------

// item represents a token or text string returned from the scanner.
type item struct {
	typ itemType // The type of this item.
	pos ast.Pos  // The starting position, in bytes, of this item in the input string.
	val string   // The value of this item.
}

func (i item) String() string {
	switch {
	case i.typ == itemEOF:
		return "EOF"
	case i.typ == itemError:
		return i.val
	case i.typ > itemKeyword:
		return i.val
	case len(i.val) > 10:
		return fmt.Sprintf("%.10q...", i.val)
	}
	return fmt.Sprintf("%q", i.val)
}

// itemType identifies the type of lexical items.
type itemType int

// All items.
const (
	itemInvalid itemType = iota // not used
	itemEOF                     // EOF
	itemError                   // error occurred; value is text of error

	itemLeftBrace  // {
	itemRightBrace // }
	itemLeftParen  // (
	itemRightParen // )
	itemColon      // : or =
	itemSemicolon  // ;
	itemComma      // ,

	itemIdent    // div, font-size, from, as
	itemString   // "quoted" or 'quoted', quotes included
	itemValue    // unquoted value after a colon, e.g. 16px or rgb(1, 2, 3)
	itemSelector // .box, #main, &:hover
	itemAtType   // @Element, @Style, @Var, @Html, @Chtl
	itemComment  // -- generator comment
	itemRawBody  // verbatim contents of a script or origin block
	itemIndex    // [0] following an element selector

	// Bracket keywords
	itemKeyword   // used only to delimit the keywords
	itemTemplate  // [Template]
	itemCustom    // [Custom]
	itemNamespace // [Namespace]
	itemImport    // [Import]
	itemOrigin    // [Origin]
)

var bracketKeywords = map[string]itemType{
	"[Template]":  itemTemplate,
	"[Custom]":    itemCustom,
	"[Namespace]": itemNamespace,
	"[Import]":    itemImport,
	"[Origin]":    itemOrigin,
}

// String converts the itemType into its source string.
// It is fantastically inefficient and should only be used for error messages.
func (t itemType) String() string {
	for k, v := range bracketKeywords {
		if v == t {
			return k
		}
	}
	var r, ok = map[itemType]string{
		itemEOF:        "<eof>",
		itemError:      "<error>",
		itemLeftBrace:  "{",
		itemRightBrace: "}",
		itemLeftParen:  "(",
		itemRightParen: ")",
		itemColon:      ":",
		itemSemicolon:  ";",
		itemComma:      ",",
		itemIdent:      "<ident>",
		itemString:     "<string>",
		itemValue:      "<value>",
		itemSelector:   "<selector>",
		itemAtType:     "<@type>",
		itemComment:    "<comment>",
		itemRawBody:    "<raw block>",
		itemIndex:      "<index>",
	}[t]
	if ok {
		return r
	}
	return fmt.Sprintf("item(%d)", t)
}

// Lexer ----------------------------------------------------------------------

const eof = -1

// stateFn represents the state of the lexer as a function that returns the
// next state.
type stateFn func(*lexer) stateFn

// lexer holds the state of the lexical scanning.
//
// Based on the lexer from the "text/template" package.
// See http://www.youtube.com/watch?v=HxaD_trXwRE
type lexer struct {
	name     string    // the name of the input; used only during errors.
	input    string    // the string being scanned.
	state    stateFn   // the next lexing function to enter.
	pos      ast.Pos   // current position in the input.
	start    ast.Pos   // start position of this item.
	width    int       // width of last rune read from input.
	items     chan item // channel of scanned items.
	lastEmit  item      // most recent item emitted
	prevEmit  item      // item emitted before lastEmit
	rawNext   bool      // the next { opens an [Origin] body
	styleNext bool      // the next { opens the body of an @Style template or usage
	blocks    []bool    // open blocks, innermost last; true for style blocks
}

// nextItem returns the next item from the input.
func (l *lexer) nextItem() item {
	return <-l.items
}

// drain consumes the remaining items so the lexing goroutine can exit.
func (l *lexer) drain() {
	for range l.items {
	}
}

// lex creates a new scanner for the input string.
func lex(name, input string) *lexer {
	l := &lexer{
		name:  name,
		input: input,
		items: make(chan item),
		state: lexBlock,
	}
	go l.run()
	return l
}

// run runs the state machine for the lexer.
func (l *lexer) run() {
	for l.state != nil {
		l.state = l.state(l)
	}
	close(l.items)
}

// next returns the next rune in the input.
func (l *lexer) next() (r rune) {
	if l.pos >= ast.Pos(len(l.input)) {
		l.width = 0
		return eof
	}
	r, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += ast.Pos(l.width)
	return r
}

// peek returns but does not consume the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// backup steps back one rune. Can only be called once per call of next.
func (l *lexer) backup() {
	l.pos -= ast.Pos(l.width)
}

// emit passes an item back to the client.
func (l *lexer) emit(t itemType) {
	l.prevEmit = l.lastEmit
	l.lastEmit = item{t, l.start, l.input[l.start:l.pos]}
	l.items <- l.lastEmit
	l.start = l.pos
}

// ignore skips over the pending input before this point.
func (l *lexer) ignore() {
	l.start = l.pos
}

// acceptRun consumes a run of runes accepted by the given function.
func (l *lexer) acceptRun(valid func(rune) bool) bool {
	pos := l.pos
	for valid(l.next()) {
	}
	l.backup()
	return l.pos > pos
}

// errorf returns an error item and terminates the scan by passing
// back a nil pointer that will be the next state, terminating l.nextItem.
func (l *lexer) errorf(format string, args ...interface{}) stateFn {
	l.items <- item{itemError, l.start, fmt.Sprintf(format, args...)}
	return nil
}

// inStyle reports whether the innermost open block holds style properties.
func (l *lexer) inStyle() bool {
	return len(l.blocks) > 0 && l.blocks[len(l.blocks)-1]
}

// closeBlock emits the } closing the innermost block.
func (l *lexer) closeBlock() {
	if len(l.blocks) > 0 {
		l.blocks = l.blocks[:len(l.blocks)-1]
	}
	l.rawNext = false
	l.styleNext = false
	l.emit(itemRightBrace)
}

// startsProperty reports whether the - just read begins a property name such
// as -webkit-user-select or --accent.
func (l *lexer) startsProperty() bool {
	var r, _ = utf8.DecodeRuneInString(strings.TrimPrefix(l.input[l.pos:], "-"))
	return isLetterOrUnderscore(r)
}

// colonNext reports whether the next token is a colon.
func (l *lexer) colonNext() bool {
	var rest = strings.TrimLeftFunc(l.input[l.pos:], isSpaceEOL)
	return strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, "=")
}

// State functions ------------------------------------------------------------

// lexBlock scans the structural tokens of a CHTL file.  Whitespace separates
// tokens and is otherwise ignored.
func lexBlock(l *lexer) stateFn {
	switch r := l.next(); {
	case r == eof:
		l.emit(itemEOF)
		return nil
	case isSpaceEOL(r):
		l.ignore()
	case r == '/' && l.peek() == '/':
		return lexLineComment
	case r == '/' && l.peek() == '*':
		return lexBlockComment
	case r == '-' && l.inStyle() && l.startsProperty():
		l.acceptRun(isIdentRune)
		l.emit(itemIdent)
	case r == '-' && l.peek() == '-':
		return lexComment
	case r == '{':
		return lexLeftBrace
	case r == '}':
		l.closeBlock()
	case r == '(':
		l.emit(itemLeftParen)
	case r == ')':
		l.emit(itemRightParen)
	case r == ';':
		l.rawNext = false
		l.styleNext = false
		l.emit(itemSemicolon)
	case r == ',':
		l.emit(itemComma)
	case r == ':', r == '=':
		l.emit(itemColon)
		return lexValue
	case r == '"', r == '\'':
		return stringLexer(r, lexBlock)
	case r == '[' && isDigit(l.peek()):
		return lexIndex
	case r == '[':
		return lexKeyword
	case r == '@':
		return lexAtType
	case r == '.', r == '#', r == '&':
		return lexSelector
	case isLetterOrUnderscore(r):
		l.backup()
		return lexIdent
	default:
		return l.errorf("invalid character %#U", r)
	}
	return lexBlock
}

// lexLineComment scans a // comment and drops it.  The leading / has been
// read.
func lexLineComment(l *lexer) stateFn {
	for r := l.next(); !isEndOfLine(r) && r != eof; r = l.next() {
	}
	l.backup()
	l.ignore()
	return lexBlock
}

// lexBlockComment scans a /* */ comment and drops it.  The leading / has been
// read.
func lexBlockComment(l *lexer) stateFn {
	l.next()
	var i = strings.Index(l.input[l.pos:], "*/")
	if i < 0 {
		return l.errorf("unterminated block comment")
	}
	l.pos += ast.Pos(i + len("*/"))
	l.ignore()
	return lexBlock
}

// lexComment scans a generator comment, which runs from "--" to the end of the
// line.  The first - has been read.
func lexComment(l *lexer) stateFn {
	for r := l.next(); !isEndOfLine(r) && r != eof; r = l.next() {
	}
	l.backup()
	l.emit(itemComment)
	return lexBlock
}

// lexLeftBrace emits the { and decides how to scan the block it opens.  The
// body of a script or [Origin] block is captured verbatim, and a text block
// may hold bare text.  Style blocks, @Style bodies and the rules nested in
// them hold properties, whose names may start with a dash.
func lexLeftBrace(l *lexer) stateFn {
	var opener, beforeOpener = l.lastEmit, l.prevEmit
	var style = l.inStyle() || l.styleNext || opener.typ == itemIdent && opener.val == "style"
	var keyword = opener.typ == itemIdent && beforeOpener.typ != itemAtType && !style
	var raw = l.rawNext
	l.rawNext = false
	l.styleNext = false
	l.emit(itemLeftBrace)
	switch {
	case raw:
		l.blocks = append(l.blocks, false)
		return rawLexer(false)
	case keyword && opener.val == "script":
		l.blocks = append(l.blocks, false)
		return rawLexer(true)
	case keyword && opener.val == "text":
		l.blocks = append(l.blocks, false)
		return lexTextBody
	}
	l.blocks = append(l.blocks, style)
	return lexBlock
}

// lexIdent scans an identifier.  After the "from" keyword, the following path
// or namespace is scanned as a single value, unless "from" is the name of an
// attribute.
func lexIdent(l *lexer) stateFn {
	l.acceptRun(isIdentRune)
	l.emit(itemIdent)
	if l.lastEmit.val == "from" && !l.colonNext() {
		return lexFromTarget
	}
	return lexBlock
}

// lexIndex scans the [n] that picks one of several elements with the same
// tag.  The [ has been read.
func lexIndex(l *lexer) stateFn {
	l.acceptRun(isDigit)
	if l.next() != ']' {
		return l.errorf("unterminated index %q", l.input[l.start:l.pos])
	}
	l.emit(itemIndex)
	return lexBlock
}

// lexFromTarget scans the operand of "from": a quoted path, or a bare path or
// namespace running up to whitespace or punctuation.
func lexFromTarget(l *lexer) stateFn {
	l.acceptRun(isSpace)
	l.ignore()
	switch r := l.peek(); {
	case r == '"' || r == '\'':
		l.next()
		return stringLexer(r, lexBlock)
	case r == eof || isEndOfLine(r):
		return lexBlock
	}
	l.acceptRun(func(r rune) bool {
		return r != eof && !isSpaceEOL(r) && !strings.ContainsRune(";,{}", r)
	})
	if l.pos > l.start {
		l.emit(itemValue)
	}
	return lexBlock
}

// lexKeyword scans a bracket keyword such as [Template].  The [ has been read.
func lexKeyword(l *lexer) stateFn {
	l.acceptRun(isIdentRune)
	if l.next() != ']' {
		return l.errorf("unterminated keyword %q", l.input[l.start:l.pos])
	}
	var word = l.input[l.start:l.pos]
	var typ, ok = bracketKeywords[word]
	if !ok {
		return l.errorf("unknown keyword %s", word)
	}
	l.emit(typ)
	if typ == itemOrigin {
		l.rawNext = true
	}
	return lexBlock
}

// lexAtType scans a type tag such as @Style.  The @ has been read.
func lexAtType(l *lexer) stateFn {
	if !l.acceptRun(isIdentRune) {
		return l.errorf("expected a type name after @")
	}
	l.emit(itemAtType)
	l.styleNext = l.lastEmit.val == "@Style" && !l.rawNext
	return lexBlock
}

// lexSelector scans a local style rule selector up to the { that opens it.
func lexSelector(l *lexer) stateFn {
	var i = strings.IndexAny(l.input[l.pos:], "{};\n")
	if i < 0 || l.input[int(l.pos)+i] != '{' {
		return l.errorf("expected { after selector %q", strings.TrimSpace(l.input[l.start:]))
	}
	l.pos += ast.Pos(len(strings.TrimRightFunc(l.input[l.pos:int(l.pos)+i], unicode.IsSpace)))
	l.emit(itemSelector)
	return lexBlock
}

// lexValue scans the value following a colon, up to the terminating ;, } or
// end of line.  Quotes and parentheses are respected.  A value made of a
// single quoted string is emitted as a string.
func lexValue(l *lexer) stateFn {
	l.acceptRun(isSpace)
	l.ignore()
	var (
		depth    int
		end      = l.pos // end of the last non-space rune
		quoteEnd ast.Pos = -1
	)
	for {
		r := l.next()
		switch {
		case r == '"' || r == '\'':
			if !l.skipQuoted(r) {
				return l.errorf("unterminated quoted string")
			}
			if end == l.start {
				quoteEnd = l.pos
			}
			end = l.pos
			continue
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case r == eof, isEndOfLine(r), depth == 0 && (r == ';' || r == '}'):
			l.backup()
			l.pos = end
			switch {
			case l.pos == l.start:
			case quoteEnd == end:
				l.emit(itemString)
			default:
				l.emit(itemValue)
			}
			return lexBlock
		}
		if !isSpace(r) {
			end = l.pos
		}
	}
}

// lexTextBody scans the contents of a text block: either a quoted string or
// bare text running up to the closing brace.
func lexTextBody(l *lexer) stateFn {
	l.acceptRun(isSpaceEOL)
	l.ignore()
	switch r := l.peek(); r {
	case '"', '\'':
		l.next()
		return stringLexer(r, lexBlock)
	case '}':
		return lexBlock
	}
	var i = strings.IndexByte(l.input[l.pos:], '}')
	if i < 0 {
		return l.errorf("unterminated text block")
	}
	l.pos += ast.Pos(len(strings.TrimRightFunc(l.input[l.pos:int(l.pos)+i], unicode.IsSpace)))
	l.emit(itemValue)
	return lexBlock
}

// rawLexer returns a state that captures everything up to the } matching the
// { just emitted.  Script bodies skip braces inside strings, comments and
// regular expression literals.
func rawLexer(script bool) stateFn {
	return func(l *lexer) stateFn {
		var depth = 1
		for {
			switch r := l.next(); {
			case r == eof:
				return l.errorf("unterminated raw block")
			case script && (r == '"' || r == '\'' || r == '`'):
				if !l.skipQuoted(r) {
					return l.errorf("unterminated string in script block")
				}
			case script && r == '/' && l.peek() == '/':
				for r := l.next(); !isEndOfLine(r) && r != eof; r = l.next() {
				}
			case script && r == '/' && l.peek() == '*':
				var i = strings.Index(l.input[l.pos:], "*/")
				if i < 0 {
					return l.errorf("unterminated comment in script block")
				}
				l.pos += ast.Pos(i + len("*/"))
			case script && r == '/' && regexpAllowed(l.input[l.start:l.pos-1]):
				if !l.skipRegexp() {
					return l.errorf("unterminated regular expression in script block")
				}
			case r == '{':
				depth++
			case r == '}':
				depth--
				if depth == 0 {
					l.backup()
					l.emit(itemRawBody)
					l.next()
					l.closeBlock()
					return lexBlock
				}
			}
		}
	}
}

// regexpKeywords may directly precede a regular expression literal.
var regexpKeywords = []string{
	"return", "typeof", "instanceof", "in", "of", "new", "delete", "void",
	"throw", "case", "do", "else", "yield", "await",
}

// regexpAllowed reports whether a / following the script text before it
// starts a regular expression literal rather than a division: that is the
// case at the start of the script, after an operator or opening bracket, and
// after keywords such as return.
func regexpAllowed(before string) bool {
	before = strings.TrimRightFunc(before, unicode.IsSpace)
	if before == "" {
		return true
	}
	if strings.ContainsRune("(,=:[!&|?{};+-*%<>~^", rune(before[len(before)-1])) {
		return true
	}
	for _, kw := range regexpKeywords {
		if strings.HasSuffix(before, kw) {
			var rest = before[:len(before)-len(kw)]
			if r, _ := utf8.DecodeLastRuneInString(rest); rest == "" || !isIdentRune(r) && r != '$' && r != '.' {
				return true
			}
		}
	}
	return false
}

// skipRegexp advances past the closing / of a regular expression literal,
// honoring escapes and character classes.  The opening / has been read.  It
// reports false at the end of the line.
func (l *lexer) skipRegexp() bool {
	var class bool
	for {
		switch r := l.next(); {
		case r == '\\':
			if r := l.next(); r == eof || isEndOfLine(r) {
				return false
			}
		case r == eof, isEndOfLine(r):
			return false
		case r == '[':
			class = true
		case r == ']':
			class = false
		case r == '/' && !class:
			return true
		}
	}
}

// stringLexer returns a stateFn that lexes strings surrounded by the given
// quote character.  The opening quote has been read.
func stringLexer(quoteChar rune, then stateFn) stateFn {
	return func(l *lexer) stateFn {
		if !l.skipQuoted(quoteChar) {
			return l.errorf("unterminated quoted string")
		}
		l.emit(itemString)
		return then
	}
}

// skipQuoted advances past the closing quote, honoring backslash escapes.  The
// opening quote has been read.  It reports false at end of input.
func (l *lexer) skipQuoted(quoteChar rune) bool {
	for {
		switch l.next() {
		case '\\':
			if l.next() == eof {
				return false
			}
		case eof:
			return false
		case quoteChar:
			return true
		}
	}
}

// Helpers --------------------------------------------------------------------

// isSpace reports whether r is a space character.
func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

// isEndOfLine reports whether r is an end-of-line character.
func isEndOfLine(r rune) bool {
	return r == '\r' || r == '\n'
}

func isSpaceEOL(r rune) bool {
	return isSpace(r) || isEndOfLine(r) || r == '\uFEFF'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isLetterOrUnderscore(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// isIdentRune reports whether r may continue an identifier.
func isIdentRune(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
