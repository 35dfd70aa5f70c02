package model

// Program is an ordered sequence of items. Declaration order is the only
// meaningful order and is preserved end to end except for whole-item removal.
type Program struct {
	Items []Item
}

// Item is a single top-level (or container-nested) declaration. Exactly one
// variant implements the node; anything the parser cannot classify becomes an
// Opaque item and passes through verbatim.
type Item interface {
	item()
}

// Attribute is an outer attribute together with the trivia that followed it
// in the source, so retained attributes print in place.
type Attribute struct {
	Text  string // e.g. "#[inline]"
	After string // whitespace/comments between the attribute and what follows
}

// Function is a free function or a trait/impl method.
type Function struct {
	Lead     string // leading whitespace, comments and doc comments, verbatim
	Attrs    []Attribute
	Head     string // visibility and non-mode qualifiers before "fn", verbatim
	Mode     Mode
	Name     string
	Generics string // "<...>" or ""
	Params   []Param
	// ParamsTrailingComma records whether the original parameter list ended
	// with a comma, so retained lists keep their shape.
	ParamsTrailingComma bool
	ParamsTail          string // trivia between the last comma and ")"
	Tail                string // return type and where clause, verbatim
	Contract            ContractClauses
	Body                *Block // nil for declaration-only trait methods
	Public              bool
	// ContractDoc holds rendered documentation lines the visitor synthesized
	// from removed contract clauses. Empty unless rendering was requested.
	ContractDoc []string
}

// Param is a single function parameter.
type Param struct {
	Qualifier Qualifier
	Text      string // parameter source, including its leading trivia
}

// FieldStyle distinguishes the bodies a struct or enum variant can have.
type FieldStyle int

// Available FieldStyle values.
const (
	FieldsNamed FieldStyle = iota
	FieldsTuple
	FieldsUnit
)

// Field is a single struct or enum-variant field.
type Field struct {
	Qualifier Qualifier
	Text      string // field source, including its leading trivia
}

// Struct is a struct declaration.
type Struct struct {
	Lead          string
	Attrs         []Attribute
	Head          string // through the name, generics and any where clause
	Style         FieldStyle
	Fields        []Field
	TrailingComma bool
	FieldsTail    string // trivia between the last comma and the closing delimiter
	After         string // text after the field group, e.g. ";" for tuple structs
}

// Variant is a single enum variant.
type Variant struct {
	Head          string // leading trivia, attributes and name
	Style         FieldStyle
	Fields        []Field
	TrailingComma bool
	FieldsTail    string
	After         string // discriminant such as " = 3", or ""
}

// Enum is an enum declaration; field stripping applies independently to
// every variant.
type Enum struct {
	Lead          string
	Attrs         []Attribute
	Head          string
	Variants      []Variant
	TrailingComma bool
	VariantsTail  string
}

// Trait is a trait declaration with its member items. Trailing trivia before
// the closing brace rides along as a final Opaque member.
type Trait struct {
	Lead  string
	Attrs []Attribute
	Head  string // through the bounds and any where clause, excluding "{"
	Items []Item
}

// Impl is an impl block with its member items.
type Impl struct {
	Lead  string
	Attrs []Attribute
	Head  string
	Items []Item
}

// Module is an inline module; stripping applies to the nested items the same
// way it does at file level.
type Module struct {
	Lead  string
	Attrs []Attribute
	Head  string
	Items []Item
}

// Opaque is any item not subject to stripping rules, preserved byte for byte
// including its leading trivia.
type Opaque struct {
	Text string
}

func (*Function) item() {}
func (*Struct) item()   {}
func (*Enum) item()     {}
func (*Trait) item()    {}
func (*Impl) item()     {}
func (*Module) item()   {}
func (*Opaque) item()   {}
