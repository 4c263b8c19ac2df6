package ast

import (
	"strconv"
	"strings"
)

// ElementSelector picks top-level elements of a custom element's body by tag,
// and optionally by their index among the elements with that tag.
type ElementSelector struct {
	Tag   string
	Index int // -1 when absent
}

func (s ElementSelector) String() string {
	if s.Index < 0 {
		return s.Tag
	}
	return s.Tag + "[" + strconv.Itoa(s.Index) + "]"
}

// InsertPosition says where an insert statement places its elements.
type InsertPosition int

const (
	InsertAtTop InsertPosition = iota
	InsertAtBottom
	InsertBefore
	InsertAfter
	InsertReplace
)

var insertPositionNames = [...]string{"at top", "at bottom", "before", "after", "replace"}

func (p InsertPosition) String() string {
	if p.Valid() {
		return insertPositionNames[p]
	}
	return "unknown position"
}

// Valid reports whether p is one of the positions above.
func (p InsertPosition) Valid() bool {
	return p >= 0 && int(p) < len(insertPositionNames)
}

// Targeted reports whether the position is relative to a selected element.
func (p InsertPosition) Targeted() bool {
	return p >= InsertBefore
}

// InsertNode is `insert <position> [selector] { ... }` in the specialization
// of a custom element.
type InsertNode struct {
	Pos
	Where  InsertPosition
	Target ElementSelector // unused for the at top and at bottom positions
	Body   []Node
}

func (n *InsertNode) String() string {
	var where = n.Where.String()
	if n.Where.Targeted() {
		where += " " + n.Target.String()
	}
	return "InsertNode(" + where + ", " + list(n.Body) + ")"
}

func (n *InsertNode) Children() []Node { return n.Body }

// DeleteNode is `delete selector, ...;` in the specialization of a custom
// element.  A selector without an index deletes every element with the tag.
type DeleteNode struct {
	Pos
	Targets []ElementSelector
}

func (n *DeleteNode) String() string {
	var targets = make([]string, len(n.Targets))
	for i, t := range n.Targets {
		targets[i] = t.String()
	}
	return "DeleteNode(" + strings.Join(targets, ", ") + ")"
}
