package ir

import (
	"cmp"
	"strings"
)

// Compare imposes a total order over nodes: by type, then type name, then
// payload. Objects compare field-wise in order, arrays element-wise, shorter
// containers first on a shared prefix. The order is arbitrary but stable;
// it exists so callers can sort nodes deterministically.
func Compare(a, b *Node) int {
	if a == nil || b == nil {
		switch {
		case a == b:
			return 0
		case a == nil:
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.Type, b.Type); c != 0 {
		return c
	}
	if c := strings.Compare(a.TypeName, b.TypeName); c != 0 {
		return c
	}
	switch a.Type {
	case BoolType:
		switch {
		case a.Bool == b.Bool:
			return 0
		case !a.Bool:
			return -1
		}
		return 1
	case IntType:
		return cmp.Compare(a.Int64, b.Int64)
	case FloatType:
		return cmp.Compare(a.Float64, b.Float64)
	case StringType:
		return strings.Compare(a.String, b.String)
	case ReferenceType:
		return strings.Compare(a.Ref, b.Ref)
	case ObjectType:
		for i := range a.Fields {
			if i >= len(b.Fields) {
				return 1
			}
			if c := strings.Compare(a.Fields[i], b.Fields[i]); c != 0 {
				return c
			}
			if c := Compare(a.Values[i], b.Values[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(a.Fields), len(b.Fields))
	case ArrayType:
		for i := range a.Values {
			if i >= len(b.Values) {
				return 1
			}
			if c := Compare(a.Values[i], b.Values[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(a.Values), len(b.Values))
	}
	return 0
}
