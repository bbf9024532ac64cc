// Package schema interprets a static schema description into a read-only
// type registry. The registry is built once, before any document operation,
// and is safe for unsynchronized concurrent reads afterwards.
package schema

// Kind classifies what a type, or a field's resolved type, is.
type Kind int

const (
	ScalarKind Kind = iota // string, int, bool, float
	EnumKind
	StructKind
	ReferenceKind // only appears on FieldDef, never on TypeDef
)

func (k Kind) String() string {
	switch k {
	case ScalarKind:
		return "scalar"
	case EnumKind:
		return "enum"
	case StructKind:
		return "struct"
	case ReferenceKind:
		return "reference"
	}
	return "unknown"
}

// FieldDef describes one declared field of a struct type.
type FieldDef struct {
	Name     string
	Type     string // resolved type name: builtin scalar, enum or struct
	Kind     Kind
	Optional bool
	Array    bool
	Abstract bool // Type is an abstract struct family
}

// TypeDef describes one declared type.
type TypeDef struct {
	Name string
	Kind Kind

	// struct types
	Fields    []FieldDef
	KeyFields []string
	Abstract  bool
	KindEnum  string   // enum typing the discriminant of an abstract base
	Inherits  string   // base type for a concrete variant
	Variants  []string // concrete variant names, declaration order

	// enum types; Members[0] is the invalid/default value
	Members []string
}

// Field returns the declared field of the given name, including fields
// inherited from an abstract base.
func (td *TypeDef) Field(name string) *FieldDef {
	for i := range td.Fields {
		if td.Fields[i].Name == name {
			return &td.Fields[i]
		}
	}
	return nil
}

// HasMember reports whether an enum type declares the given member.
func (td *TypeDef) HasMember(name string) bool {
	for _, m := range td.Members {
		if m == name {
			return true
		}
	}
	return false
}

// Default returns the enum's designated invalid/default member.
func (td *TypeDef) Default() string {
	if len(td.Members) == 0 {
		return ""
	}
	return td.Members[0]
}
