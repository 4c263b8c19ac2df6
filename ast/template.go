package ast

// Category partitions definitions into independent name spaces: an element
// template and a style template may share a name.
type Category int

const (
	CategoryElement Category = iota
	CategoryStyle
	CategoryVar
	CategoryOrigin
)

var categoryNames = [...]string{"@Element", "@Style", "@Var", "[Origin]"}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown category"
}

// Definition is any node that declares a reusable name.
type Definition interface {
	Node
	DefName() string
	Category() Category
	IsCustom() bool
}

// Usage is any node that refers to a Definition by name.  Binding is zero
// until the resolver attaches a handle.
type Usage interface {
	Node
	Ref() (cat Category, name, namespace string)
	Bind(id DefID)
	Binding() DefID
}

// usage holds the fields shared by every usage variant.
type usage struct {
	Name      string
	Namespace string // from the optional `from ns` clause
	Def       DefID
}

func (u *usage) Bind(id DefID)   { u.Def = id }
func (u *usage) Binding() DefID { return u.Def }

func (u *usage) ref() string {
	if u.Namespace != "" {
		return u.Name + " from " + u.Namespace
	}
	return u.Name
}

// ElementTemplateNode is an element template (`[Template] @Element Name`) or
// a custom element (`[Custom] @Element Name`).
type ElementTemplateNode struct {
	Pos
	Name   string
	Custom bool
	Body   []Node
}

func (n *ElementTemplateNode) String() string {
	if n.Custom {
		return "CustomElementNode(" + n.Name + ", " + list(n.Body) + ")"
	}
	return "ElementTemplateNode(" + n.Name + ", " + list(n.Body) + ")"
}

func (n *ElementTemplateNode) Children() []Node   { return n.Body }
func (n *ElementTemplateNode) DefName() string    { return n.Name }
func (n *ElementTemplateNode) Category() Category { return CategoryElement }
func (n *ElementTemplateNode) IsCustom() bool     { return n.Custom }

// ElementTemplateUsageNode is `@Element Name [from ns];`, or with a block of
// insert and delete statements, a specialization of a custom element.
type ElementTemplateUsageNode struct {
	Pos
	usage
	Inherit        bool   // written `inherit @Element Name;` or in an inherit clause
	Specialization []Node // *InsertNode and *DeleteNode, applied in order
}

func NewElementTemplateUsage(pos Pos, name, ns string) *ElementTemplateUsageNode {
	return &ElementTemplateUsageNode{Pos: pos, usage: usage{Name: name, Namespace: ns}}
}

func (n *ElementTemplateUsageNode) String() string {
	var ref = n.ref()
	if n.Inherit {
		ref = "inherit " + ref
	}
	if len(n.Specialization) == 0 {
		return "ElementTemplateUsageNode(" + ref + ")"
	}
	return "ElementTemplateUsageNode(" + ref + ", " + list(n.Specialization) + ")"
}

func (n *ElementTemplateUsageNode) Children() []Node { return n.Specialization }

func (n *ElementTemplateUsageNode) Ref() (Category, string, string) {
	return CategoryElement, n.Name, n.Namespace
}

// StyleTemplateNode is `[Template] @Style Name { k: v; }`.
type StyleTemplateNode struct {
	Pos
	Name string
	Body *StyleNode
}

func (n *StyleTemplateNode) String() string {
	return "StyleTemplateNode(" + n.Name + ", " + n.Body.String() + ")"
}

func (n *StyleTemplateNode) Children() []Node   { return n.Body.Props }
func (n *StyleTemplateNode) DefName() string    { return n.Name }
func (n *StyleTemplateNode) Category() Category { return CategoryStyle }
func (n *StyleTemplateNode) IsCustom() bool     { return false }

// StyleTemplateUsageNode is `@Style Name [from ns];` inside a style block.
// Inherited styles may leave keys without values when the inheriting
// definition is a custom style.
type StyleTemplateUsageNode struct {
	Pos
	usage
	Inherit bool
}

func NewStyleTemplateUsage(pos Pos, name, ns string) *StyleTemplateUsageNode {
	return &StyleTemplateUsageNode{Pos: pos, usage: usage{Name: name, Namespace: ns}}
}

func (n *StyleTemplateUsageNode) String() string {
	if n.Inherit {
		return "StyleTemplateUsageNode(inherit " + n.ref() + ")"
	}
	return "StyleTemplateUsageNode(" + n.ref() + ")"
}

func (n *StyleTemplateUsageNode) Ref() (Category, string, string) {
	return CategoryStyle, n.Name, n.Namespace
}

// CustomStyleTemplateNode is `[Custom] @Style Name { k; k: default; }`.  Keys
// declared without a value must be supplied by every usage.
type CustomStyleTemplateNode struct {
	Pos
	Name string
	Body *StyleNode
}

func (n *CustomStyleTemplateNode) String() string {
	return "CustomStyleTemplateNode(" + n.Name + ", " + n.Body.String() + ")"
}

func (n *CustomStyleTemplateNode) Children() []Node   { return n.Body.Props }
func (n *CustomStyleTemplateNode) DefName() string    { return n.Name }
func (n *CustomStyleTemplateNode) Category() Category { return CategoryStyle }
func (n *CustomStyleTemplateNode) IsCustom() bool     { return true }

// CustomStyleUsageNode is `@Style Name [from ns] { k: v; }`.
type CustomStyleUsageNode struct {
	Pos
	usage
	Overrides *StyleNode
}

func NewCustomStyleUsage(pos Pos, name, ns string, overrides *StyleNode) *CustomStyleUsageNode {
	return &CustomStyleUsageNode{pos, usage{Name: name, Namespace: ns}, overrides}
}

func (n *CustomStyleUsageNode) String() string {
	return "CustomStyleUsageNode(" + n.ref() + ", " + n.Overrides.String() + ")"
}

func (n *CustomStyleUsageNode) Children() []Node { return n.Overrides.Props }

func (n *CustomStyleUsageNode) Ref() (Category, string, string) {
	return CategoryStyle, n.Name, n.Namespace
}

// VarTemplateNode is `[Template] @Var Name { k: v; }` or its [Custom] form.
type VarTemplateNode struct {
	Pos
	Name    string
	Custom  bool
	Entries []*AttributeNode
}

func (n *VarTemplateNode) String() string {
	var head = "VarTemplateNode("
	if n.Custom {
		head = "CustomVarNode("
	}
	var s = head + n.Name + ", {"
	for _, e := range n.Entries {
		s += e.String() + ", "
	}
	return s + "})"
}

func (n *VarTemplateNode) DefName() string    { return n.Name }
func (n *VarTemplateNode) Category() Category { return CategoryVar }
func (n *VarTemplateNode) IsCustom() bool     { return n.Custom }

// Entry returns the named entry, or nil.
func (n *VarTemplateNode) Entry(key string) *AttributeNode {
	for _, e := range n.Entries {
		if e.Key == key {
			return e
		}
	}
	return nil
}

// VarUsageNode is a property value of the form `Template(var)`.
type VarUsageNode struct {
	Pos
	usage
	Var string
}

func NewVarUsage(pos Pos, template, variable string) *VarUsageNode {
	return &VarUsageNode{pos, usage{Name: template}, variable}
}

func (n *VarUsageNode) String() string {
	return "TemplateVarUsageNode(" + n.Name + "(" + n.Var + "))"
}

func (n *VarUsageNode) Ref() (Category, string, string) {
	return CategoryVar, n.Name, n.Namespace
}

// Named origins are definitions; unnamed ones are emitted in place.
func (n *OriginNode) DefName() string    { return n.Name }
func (n *OriginNode) Category() Category { return CategoryOrigin }
func (n *OriginNode) IsCustom() bool     { return false }

// OriginUsageNode is `@Html Name;` or `[Origin] @Kind Name;`.
type OriginUsageNode struct {
	Pos
	usage
}

func NewOriginUsage(pos Pos, name, ns string) *OriginUsageNode {
	return &OriginUsageNode{pos, usage{Name: name, Namespace: ns}}
}

func (n *OriginUsageNode) String() string {
	return "OriginUsageNode(" + n.ref() + ")"
}

func (n *OriginUsageNode) Ref() (Category, string, string) {
	return CategoryOrigin, n.Name, n.Namespace
}

// ImportKind restricts what an import statement brings into scope.
type ImportKind int

const (
	ImportChtl ImportKind = iota
	ImportHtml
	ImportStyle
	ImportJavaScript
	ImportTemplateElement
	ImportTemplateStyle
	ImportTemplateVar
	ImportCustomElement
	ImportCustomStyle
	ImportCustomVar
)

var importKindNames = [...]string{
	"Chtl", "Html", "Style", "JavaScript",
	"TemplateElement", "TemplateStyle", "TemplateVar",
	"CustomElement", "CustomStyle", "CustomVar",
}

func (k ImportKind) String() string {
	if k.Valid() {
		return importKindNames[k]
	}
	return "unknown import"
}

// Valid reports whether k is one of the kinds above.
func (k ImportKind) Valid() bool {
	return k >= 0 && int(k) < len(importKindNames)
}

// ImportKindFor returns the precise import kind for a [Template] or [Custom]
// import of the given category.
func ImportKindFor(custom bool, cat Category) (ImportKind, bool) {
	var base ImportKind
	switch cat {
	case CategoryElement:
		base = ImportTemplateElement
	case CategoryStyle:
		base = ImportTemplateStyle
	case CategoryVar:
		base = ImportTemplateVar
	default:
		return 0, false
	}
	if custom {
		base += ImportCustomElement - ImportTemplateElement
	}
	return base, true
}

// Precise reports whether the import names a single definition category.
func (k ImportKind) Precise() bool {
	return k >= ImportTemplateElement
}

// Accepts reports whether a definition may be merged through an import of
// this kind.
func (k ImportKind) Accepts(def Definition) bool {
	switch k {
	case ImportChtl:
		return true
	case ImportTemplateElement, ImportTemplateStyle, ImportTemplateVar,
		ImportCustomElement, ImportCustomStyle, ImportCustomVar:
		var want, ok = ImportKindFor(def.IsCustom(), def.Category())
		return ok && want == k
	}
	return false
}
