package parsepasses

import (
	"github.com/robfig/chtl/ast"
	"github.com/robfig/chtl/errortypes"
	"github.com/robfig/chtl/template"
)

func place(nodes []ast.Node, prog *ast.ProgramNode) []Placed {
	var placed = make([]Placed, len(nodes))
	for i, node := range nodes {
		placed[i] = Placed{node, prog}
	}
	return placed
}

// flatten replaces the element usages at the top of a template body by the
// nodes they stand for, so that a specialization sees every element the
// usage would produce.
func flatten(reg *template.Registry, body []ast.Node, prog *ast.ProgramNode) ([]Placed, error) {
	var nodes []Placed
	for _, node := range body {
		u, ok := node.(*ast.ElementTemplateUsageNode)
		if !ok {
			nodes = append(nodes, Placed{node, prog})
			continue
		}
		var inner []Placed
		var err error
		if len(u.Specialization) > 0 {
			inner, err = ExpandElement(reg, u, prog)
		} else {
			var def = definition(reg, u)
			inner, err = flatten(reg, def.Node.(*ast.ElementTemplateNode).Body, def.Program)
		}
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, inner...)
	}
	return nodes, nil
}

// specialize applies the insert and delete statements of u to nodes, in
// order.
func specialize(nodes []Placed, u *ast.ElementTemplateUsageNode, prog *ast.ProgramNode) ([]Placed, error) {
	for _, op := range u.Specialization {
		switch op := op.(type) {
		case *ast.InsertNode:
			var body = place(op.Body, prog)
			if !op.Where.Targeted() {
				if op.Where == ast.InsertAtTop {
					nodes = append(body, nodes...)
				} else {
					nodes = append(nodes, body...)
				}
				continue
			}
			var found = match(nodes, op.Target)
			if len(found) == 0 {
				return nil, nodeError(errortypes.SpecializationError, prog, op,
					"@Element %s has no %s to insert %s", u.Name, op.Target, op.Where)
			}
			var i = found[0]
			var rest []Placed
			switch op.Where {
			case ast.InsertBefore:
				rest = append(body, nodes[i:]...)
			case ast.InsertAfter:
				i++
				rest = append(body, nodes[i:]...)
			case ast.InsertReplace:
				rest = append(body, nodes[i+1:]...)
			}
			nodes = append(nodes[:i:i], rest...)
		case *ast.DeleteNode:
			var deleted = make(map[int]bool)
			for _, sel := range op.Targets {
				var found = match(nodes, sel)
				if len(found) == 0 {
					return nil, nodeError(errortypes.SpecializationError, prog, op,
						"@Element %s has no %s to delete", u.Name, sel)
				}
				for _, i := range found {
					deleted[i] = true
				}
			}
			var kept []Placed
			for i, node := range nodes {
				if !deleted[i] {
					kept = append(kept, node)
				}
			}
			nodes = kept
		}
	}
	return nodes, nil
}

// match returns the indexes of the elements sel picks: every element with
// its tag, or with an index, only the one at that position among them.
func match(nodes []Placed, sel ast.ElementSelector) []int {
	var found []int
	for i, node := range nodes {
		if elem, ok := node.Node.(*ast.ElementNode); ok && elem.Tag == sel.Tag {
			found = append(found, i)
		}
	}
	if sel.Index < 0 {
		return found
	}
	if sel.Index < len(found) {
		return found[sel.Index : sel.Index+1]
	}
	return nil
}
