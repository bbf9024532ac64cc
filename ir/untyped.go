package ir

// Untyped projects a node onto plain Go values: maps, slices and scalars.
// Enum values and references project to strings. Field order is lost; the
// projection is meant for JSON interop and expression environments, not for
// the document codec.
func Untyped(n *Node) any {
	if n == nil {
		return nil
	}
	switch n.Type {
	case NullType:
		return nil
	case BoolType:
		return n.Bool
	case IntType:
		return n.Int64
	case FloatType:
		return n.Float64
	case StringType:
		return n.String
	case ReferenceType:
		return n.Ref
	case ObjectType:
		m := make(map[string]any, len(n.Fields))
		for i, f := range n.Fields {
			m[f] = Untyped(n.Values[i])
		}
		return m
	case ArrayType:
		s := make([]any, len(n.Values))
		for i, v := range n.Values {
			s[i] = Untyped(v)
		}
		return s
	}
	return nil
}
