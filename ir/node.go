package ir

import (
	"strconv"
	"strings"
)

type Type int

const (
	NullType Type = iota
	BoolType
	IntType
	FloatType
	StringType
	ReferenceType
	ObjectType
	ArrayType
)

func (t Type) String() string {
	switch t {
	case NullType:
		return "null"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case FloatType:
		return "float"
	case StringType:
		return "string"
	case ReferenceType:
		return "reference"
	case ObjectType:
		return "object"
	case ArrayType:
		return "array"
	}
	return "unknown"
}

// KeySeparator joins the key fields of a keyed collection element into
// its composite key string.
const KeySeparator = "-"

// Node is one value in a tuple-tree document.
//
// Objects keep their fields in schema declaration order in the parallel
// Fields/Values slices. Arrays use Values only. Enum values are StringType
// nodes whose TypeName names the enum. References hold the address string
// in Ref; Target, when set, caches the node the address resolved to and is
// never an ownership edge.
type Node struct {
	Type     Type
	TypeName string

	Fields []string
	Values []*Node

	String  string
	Bool    bool
	Int64   int64
	Float64 float64

	Ref    string
	Target *Node
}

func Null() *Node {
	return &Node{Type: NullType}
}

func FromString(v string) *Node {
	return &Node{Type: StringType, String: v}
}

// FromEnum builds an enum value node; the member name is not checked here,
// construction against a registry is responsible for that.
func FromEnum(enumType, member string) *Node {
	return &Node{Type: StringType, TypeName: enumType, String: member}
}

func FromInt(v int64) *Node {
	return &Node{Type: IntType, Int64: v}
}

func FromFloat(v float64) *Node {
	return &Node{Type: FloatType, Float64: v}
}

func FromBool(v bool) *Node {
	return &Node{Type: BoolType, Bool: v}
}

func FromRef(addr string) *Node {
	return &Node{Type: ReferenceType, Ref: addr}
}

func NewObject(typeName string) *Node {
	return &Node{Type: ObjectType, TypeName: typeName}
}

func NewArray(elemType string) *Node {
	return &Node{Type: ArrayType, TypeName: elemType}
}

func FromSlice(elemType string, elems []*Node) *Node {
	return &Node{Type: ArrayType, TypeName: elemType, Values: elems}
}

// Set binds a field value, replacing an existing binding of the same name
// or appending a new one.
func (n *Node) Set(field string, v *Node) *Node {
	for i, f := range n.Fields {
		if f == field {
			n.Values[i] = v
			return n
		}
	}
	n.Fields = append(n.Fields, field)
	n.Values = append(n.Values, v)
	return n
}

// Get returns the value bound to field, or nil.
func (n *Node) Get(field string) *Node {
	for i, f := range n.Fields {
		if f == field {
			return n.Values[i]
		}
	}
	return nil
}

// Key derives the composite key of a keyed collection element from its
// designated key fields. Missing fields contribute their empty textual form.
func (n *Node) Key(keyFields []string) string {
	parts := make([]string, len(keyFields))
	for i, f := range keyFields {
		parts[i] = Text(n.Get(f))
	}
	return strings.Join(parts, KeySeparator)
}

// Clone deep-copies a node. Cached reference targets are dropped: the cache
// points into the snapshot it was resolved against, not into the copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	dst := &Node{
		Type:     n.Type,
		TypeName: n.TypeName,
		String:   n.String,
		Bool:     n.Bool,
		Int64:    n.Int64,
		Float64:  n.Float64,
		Ref:      n.Ref,
	}
	if n.Fields != nil {
		dst.Fields = make([]string, len(n.Fields))
		copy(dst.Fields, n.Fields)
	}
	if n.Values != nil {
		dst.Values = make([]*Node, len(n.Values))
		for i, v := range n.Values {
			dst.Values[i] = v.Clone()
		}
	}
	return dst
}

// Visit walks the node and its values pre-order; returning false stops the
// descent below the visited node.
func (n *Node) Visit(f func(n *Node) bool) {
	if !f(n) {
		return
	}
	for _, v := range n.Values {
		v.Visit(f)
	}
}

// Text renders the scalar textual form of a node. Containers and nil have
// the empty textual form.
func Text(n *Node) string {
	if n == nil {
		return ""
	}
	switch n.Type {
	case StringType:
		return n.String
	case BoolType:
		return strconv.FormatBool(n.Bool)
	case IntType:
		return strconv.FormatInt(n.Int64, 10)
	case FloatType:
		return strconv.FormatFloat(n.Float64, 'g', -1, 64)
	case ReferenceType:
		return n.Ref
	}
	return ""
}

// Equal reports structural equality. Object fields compare in order, which
// is the schema declaration order for all constructed documents. Reference
// nodes compare by address string; a cached target only participates when
// both sides carry one.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type || a.TypeName != b.TypeName {
		return false
	}
	switch a.Type {
	case NullType:
		return true
	case BoolType:
		return a.Bool == b.Bool
	case IntType:
		return a.Int64 == b.Int64
	case FloatType:
		return a.Float64 == b.Float64
	case StringType:
		return a.String == b.String
	case ReferenceType:
		if a.Ref != b.Ref {
			return false
		}
		if a.Target == nil || b.Target == nil {
			return true
		}
		return a.Target == b.Target
	case ObjectType:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i] != b.Fields[i] {
				return false
			}
			if !Equal(a.Values[i], b.Values[i]) {
				return false
			}
		}
		return true
	case ArrayType:
		if len(a.Values) != len(b.Values) {
			return false
		}
		for i := range a.Values {
			if !Equal(a.Values[i], b.Values[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// IsScalar reports whether the node carries a scalar-like value: plain
// scalars, enum values and references.
func (n *Node) IsScalar() bool {
	switch n.Type {
	case BoolType, IntType, FloatType, StringType, ReferenceType:
		return true
	}
	return false
}
