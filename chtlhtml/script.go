package chtlhtml

import (
	"strings"

	"github.com/robertkrimen/otto/parser"

	"github.com/robfig/chtl/ast"
	"github.com/robfig/chtl/errortypes"
)

func (s *state) writeScript(raw string) {
	s.body.WriteString("<script>" + raw + "</script>")
}

// checkScript parses the body of the current script node as JavaScript.  The
// error is positioned at the offending character of the CHTL source.
func (s *state) checkScript(raw string) {
	var _, err = parser.ParseFile(nil, "", raw, 0)
	if err == nil {
		return
	}

	var msg = err.Error()
	var pos = s.node.Position()
	var line, col = s.prog.Location(pos)
	if list, ok := err.(parser.ErrorList); ok && len(list) > 0 {
		msg = list[0].Message
		if brace := strings.IndexByte(s.prog.Text[pos:], '{'); brace >= 0 {
			var start = int(pos) + brace + 1
			line, col = s.prog.Location(ast.Pos(start + offsetOf(raw, list[0].Position.Line, list[0].Position.Column)))
		}
	}
	panic(errortypes.Errorf(errortypes.ScriptSyntaxError, s.prog.Name, line, col, "%s", msg))
}

// offsetOf converts a 1-based line and column within text into a byte offset.
func offsetOf(text string, line, col int) int {
	var offset int
	for ; line > 1; line-- {
		var i = strings.IndexByte(text[offset:], '\n')
		if i < 0 {
			return len(text)
		}
		offset += i + 1
	}
	if col > 1 {
		offset += col - 1
	}
	if offset > len(text) {
		offset = len(text)
	}
	return offset
}
