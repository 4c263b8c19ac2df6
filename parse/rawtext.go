package parse

import (
	"strings"
	"unicode/utf8"
)

// rawtext processes the bare text found in a text block:
// - trim leading/trailing whitespace
// - runs of whitespace containing a newline are joined into a single space
// - other runs of whitespace are kept as written
func rawtext(s string) string {
	s = strings.TrimFunc(s, isSpaceEOL)
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}

	var (
		result      strings.Builder
		spaceStart  = -1
		seenNewline = false
	)
	for i := 0; i < len(s); {
		var r, width = utf8.DecodeRuneInString(s[i:])
		if isSpaceEOL(r) {
			if spaceStart < 0 {
				spaceStart = i
			}
			seenNewline = seenNewline || isEndOfLine(r)
			i += width
			continue
		}
		if spaceStart >= 0 {
			if seenNewline {
				result.WriteByte(' ')
			} else {
				result.WriteString(s[spaceStart:i])
			}
			spaceStart, seenNewline = -1, false
		}
		result.WriteString(s[i : i+width])
		i += width
	}
	return result.String()
}
