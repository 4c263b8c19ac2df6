package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robfig/chtl/errortypes"
	"github.com/robfig/chtl/parse"
)

// Diagnostics go to stderr, styled only when it is a terminal.
var (
	stderr = lipgloss.NewRenderer(os.Stderr)

	errorColor = lipgloss.Color("#ef4444") // Red
	mutedColor = lipgloss.Color("#94a3b8") // Muted gray

	posStyle   = stderr.NewStyle().Bold(true)
	kindStyle  = stderr.NewStyle().Foreground(errorColor).Bold(true)
	caretStyle = stderr.NewStyle().Foreground(errorColor)
	mutedStyle = stderr.NewStyle().Foreground(mutedColor)
)

// formatError renders err as `file:line:col: Kind: message`, followed by the
// offending source line when it can be read.
func formatError(err error) string {
	var e *errortypes.Error
	if !errors.As(err, &e) {
		return kindStyle.Render("error") + ": " + err.Error()
	}

	var b strings.Builder
	if e.File() != "" {
		var pos = e.File()
		if e.Line() > 0 {
			pos += fmt.Sprintf(":%d:%d", e.Line(), e.Col())
		}
		b.WriteString(posStyle.Render(pos) + ": ")
	}
	b.WriteString(kindStyle.Render(e.Kind.String()) + ": " + e.Msg)
	if line, ok := sourceLine(e.File(), e.Line()); ok && e.Col() > 0 {
		b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("%5d | ", e.Line())) + line)
		b.WriteString("\n" + mutedStyle.Render("      | ") + caret(line, e.Col()))
	}
	return b.String()
}

// sourceLine returns the given 1-based line of file.
func sourceLine(file string, line int) (string, bool) {
	if file == "" || line <= 0 {
		return "", false
	}
	var content, err = os.ReadFile(file)
	if err != nil {
		return "", false
	}
	text, err := parse.Decode(content)
	if err != nil {
		return "", false
	}
	var lines = strings.Split(text, "\n")
	if line > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[line-1], "\r"), true
}

// caret points at column col of line, keeping its tabs so that it lines up.
func caret(line string, col int) string {
	var pad strings.Builder
	for i := 0; i < col-1 && i < len(line); i++ {
		if line[i] == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteByte(' ')
		}
	}
	return pad.String() + caretStyle.Render("^")
}
