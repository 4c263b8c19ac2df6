package parsepasses

import (
	"fmt"

	"github.com/robfig/chtl/ast"
	"github.com/robfig/chtl/template"
)

// Declaration is a single style property after template expansion.
type Declaration struct {
	Key   string
	Value *ast.LiteralValueNode
}

// ExpandStyle flattens a list of style properties and template usages into
// declarations, in order.  Style template usages are replaced by the
// properties of their template, custom style usages by one declaration per
// key of their definition, and variable usages by the bound literal.  Rules
// are skipped.  The tree is not modified.
//
// The usages must have been resolved.
func ExpandStyle(reg *template.Registry, props []ast.Node) []Declaration {
	return expand(reg, props, false)
}

// Placed is a node together with the file it was parsed from.
type Placed struct {
	Node    ast.Node
	Program *ast.ProgramNode
}

// ExpandElement returns the nodes that replace an element template usage
// found in prog.  Nodes of the template body are placed in the file that
// defines the template; nodes inserted by a specialization stay in prog.
func ExpandElement(reg *template.Registry, u *ast.ElementTemplateUsageNode, prog *ast.ProgramNode) ([]Placed, error) {
	var def = definition(reg, u)
	var body = def.Node.(*ast.ElementTemplateNode).Body
	if len(u.Specialization) == 0 {
		return place(body, def.Program), nil
	}
	nodes, err := flatten(reg, body, def.Program)
	if err != nil {
		return nil, err
	}
	return specialize(nodes, u, prog)
}

// VarValue returns the literal a variable usage stands for.
func VarValue(reg *template.Registry, u *ast.VarUsageNode) *ast.LiteralValueNode {
	var entry = definition(reg, u).Node.(*ast.VarTemplateNode).Entry(u.Var)
	if entry == nil {
		panic(fmt.Errorf("variable %s(%s) is not defined", u.Name, u.Var))
	}
	return entry.Value
}

// Origin returns the raw block an origin usage stands for.
func Origin(reg *template.Registry, u *ast.OriginUsageNode) *ast.OriginNode {
	return definition(reg, u).Node.(*ast.OriginNode)
}

func definition(reg *template.Registry, u ast.Usage) *template.Definition {
	var def = reg.Get(u.Binding())
	if def == nil {
		panic(fmt.Errorf("unresolved usage %v", u))
	}
	return def
}

// expand flattens props into declarations.  With keepUnset, declarations
// without a value are kept, as declared by a custom style definition.
func expand(reg *template.Registry, props []ast.Node, keepUnset bool) []Declaration {
	var decls []Declaration
	for _, prop := range props {
		switch prop := prop.(type) {
		case *ast.StylePropertyNode:
			var decl = Declaration{Key: prop.Key}
			switch value := prop.Value.(type) {
			case *ast.LiteralValueNode:
				decl.Value = value
			case *ast.VarUsageNode:
				decl.Value = VarValue(reg, value)
			}
			if decl.Value != nil || keepUnset {
				decls = append(decls, decl)
			}
		case *ast.StyleTemplateUsageNode:
			decls = append(decls, expand(reg, styleBody(definition(reg, prop).Node), keepUnset)...)
		case *ast.CustomStyleUsageNode:
			decls = append(decls, expandCustom(reg, prop, keepUnset)...)
		case *ast.StyleRuleNode:
		default:
			panic(fmt.Errorf("unexpected style node %T", prop))
		}
	}
	return decls
}

// expandCustom emits one declaration per key declared by the definition, in
// the definition's order, taking the value from the usage when it supplies
// one.
func expandCustom(reg *template.Registry, u *ast.CustomStyleUsageNode, keepUnset bool) []Declaration {
	var overrides = make(map[string]*ast.LiteralValueNode)
	for _, decl := range expand(reg, u.Overrides.Props, false) {
		overrides[decl.Key] = decl.Value
	}
	var decls []Declaration
	for _, decl := range expand(reg, styleBody(definition(reg, u).Node), true) {
		if value, ok := overrides[decl.Key]; ok {
			decl.Value = value
		}
		if decl.Value != nil || keepUnset {
			decls = append(decls, decl)
		}
	}
	return decls
}

// styleBody returns the properties of a style or custom style definition.
func styleBody(node ast.Definition) []ast.Node {
	switch node := node.(type) {
	case *ast.StyleTemplateNode:
		return node.Body.Props
	case *ast.CustomStyleTemplateNode:
		return node.Body.Props
	}
	panic(fmt.Errorf("%s %s is not a style template", node.Category(), node.DefName()))
}
