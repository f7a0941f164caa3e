package model

import "strings"

// FileUnit is the structural record of one parsed source file.
// Optional text fields use the empty string for "absent".
type FileUnit struct {
	Path      string
	Doc       string
	Source    string
	Declares  []DeclareStatement
	Modules   []ModuleUnit
	Functions []FunctionUnit
	Structs   []StructUnit
	Traits    []TraitUnit
	Impls     []ImplUnit
}

// NewFileUnit creates an empty FileUnit for path.
func NewFileUnit(path string) *FileUnit {
	return &FileUnit{Path: path}
}

// ModuleUnit is a named namespace: a Rust module, a Go package or a C++ namespace.
type ModuleUnit struct {
	Name       string
	Doc        string
	Attributes []string
	Declares   []DeclareStatement
	Visibility Visibility
	Functions  []FunctionUnit
	Structs    []StructUnit
	Traits     []TraitUnit
	Impls      []ImplUnit
	Submodules []ModuleUnit
	Source     string
}

// IsEmpty reports whether the module carries no declarations or children.
func (m *ModuleUnit) IsEmpty() bool {
	return len(m.Declares) == 0 &&
		len(m.Functions) == 0 &&
		len(m.Structs) == 0 &&
		len(m.Traits) == 0 &&
		len(m.Impls) == 0 &&
		len(m.Submodules) == 0
}

// FunctionUnit is a free function or a method.
type FunctionUnit struct {
	Name       string
	Visibility Visibility
	Doc        string
	Attributes []string
	// Signature is the text up to the body.
	Signature string
	// Body includes its delimiters. Empty for declaration-only methods.
	Body   string
	Source string
}

// StructUnit covers structs, classes, enums, typedefs and type aliases.
type StructUnit struct {
	Name       string
	Visibility Visibility
	Doc        string
	Attributes []string
	// Head is the declaration prefix up to, not including, the opening delimiter.
	Head    string
	Fields  []FieldUnit
	Methods []FunctionUnit
	Source  string
}

// FieldUnit is a struct field, enum variant or class member.
type FieldUnit struct {
	Name       string
	Doc        string
	Attributes []string
	Source     string
}

// TraitUnit covers Rust traits and Go/TypeScript interfaces.
type TraitUnit struct {
	Name       string
	Visibility Visibility
	Doc        string
	Attributes []string
	// Head is the declaration prefix up to the body, e.g. "pub trait Store: Send".
	Head       string
	Methods    []FunctionUnit
	Source     string
}

// ImplUnit is a block of methods bound to a type.
type ImplUnit struct {
	Doc        string
	Attributes []string
	Head       string
	Methods    []FunctionUnit
	Source     string
}

// IsTraitImpl reports whether the block implements a trait for a type.
func (i *ImplUnit) IsTraitImpl() bool {
	return strings.Contains(i.Head, " for ")
}

// DeclareKindTag enumerates the DeclareStatement kinds.
type DeclareKindTag int

const (
	DeclareKindImport DeclareKindTag = iota
	DeclareKindUse
	DeclareKindMod
	DeclareKindOther
)

// DeclareKind tags a DeclareStatement. Name is only set for DeclareKindOther.
type DeclareKind struct {
	Tag  DeclareKindTag
	Name string
}

var (
	DeclareImport = DeclareKind{Tag: DeclareKindImport}
	DeclareUse    = DeclareKind{Tag: DeclareKindUse}
	DeclareMod    = DeclareKind{Tag: DeclareKindMod}
)

// DeclareOther builds an Other(name) kind such as "macro" or "define".
func DeclareOther(name string) DeclareKind {
	return DeclareKind{Tag: DeclareKindOther, Name: name}
}

func (k DeclareKind) String() string {
	switch k.Tag {
	case DeclareKindImport:
		return "import"
	case DeclareKindUse:
		return "use"
	case DeclareKindMod:
		return "mod"
	default:
		return k.Name
	}
}

// DeclareStatement is a top-level directive stored verbatim.
type DeclareStatement struct {
	Source string
	Kind   DeclareKind
}
