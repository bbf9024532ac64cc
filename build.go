package tupletree

import (
	"fmt"

	"github.com/signadot/tupletree/ir"
	"github.com/signadot/tupletree/schema"
)

// Build constructs a typed node from untyped parsed data by strict field
// binding: every supplied key must be a declared field of the target type
// and every non-optional declared field must be supplied. Abstract types
// dispatch on the discriminant field before binding. Missing optional
// fields materialize as their declared defaults.
func Build(reg *schema.Registry, typeName string, data any) (*ir.Node, error) {
	if n, ok := data.(*ir.Node); ok {
		return n, nil
	}
	td, err := reg.TypeDef(typeName)
	if err != nil {
		return nil, err
	}
	switch td.Kind {
	case schema.EnumKind:
		return buildEnum(td, data)
	case schema.StructKind:
		return buildStruct(reg, td, data)
	}
	return nil, fmt.Errorf("%w: cannot construct %s %q", ErrTypeMismatch, td.Kind, typeName)
}

func buildStruct(reg *schema.Registry, td *schema.TypeDef, data any) (*ir.Node, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected mapping for %s, got %T",
			ErrTypeMismatch, td.Name, data)
	}
	if td.Abstract {
		kindRaw, ok := m[schema.DiscriminantField]
		if !ok {
			return nil, fmt.Errorf("%w: abstract %s requires a %s field",
				ErrTypeMismatch, td.Name, schema.DiscriminantField)
		}
		kind, ok := kindRaw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s of %s must be a string, got %T",
				ErrTypeMismatch, schema.DiscriminantField, td.Name, kindRaw)
		}
		vd, err := reg.Variant(td.Name, kind)
		if err != nil {
			return nil, fmt.Errorf("%w: no variant of %s for %s %q",
				ErrTypeMismatch, td.Name, schema.DiscriminantField, kind)
		}
		td = vd
	}

	for key := range m {
		if td.Field(key) == nil {
			return nil, fmt.Errorf("%w: field %q is not declared on %s",
				ErrTypeMismatch, key, td.Name)
		}
	}

	node := ir.NewObject(td.Name)
	for i := range td.Fields {
		fd := &td.Fields[i]
		raw, supplied := m[fd.Name]
		if !supplied {
			if !fd.Optional {
				return nil, fmt.Errorf("%w: missing required field %s of %s",
					ErrTypeMismatch, fd.Name, td.Name)
			}
			node.Set(fd.Name, DefaultValue(reg, fd))
			continue
		}
		v, err := BuildField(reg, fd, raw)
		if err != nil {
			return nil, fmt.Errorf("field %s of %s: %w", fd.Name, td.Name, err)
		}
		node.Set(fd.Name, v)
	}
	return node, nil
}

// BuildField hydrates one declared field, element-by-element for sequence
// fields.
func BuildField(reg *schema.Registry, fd *schema.FieldDef, raw any) (*ir.Node, error) {
	if !fd.Array {
		return BuildElement(reg, fd, raw)
	}
	if n, ok := raw.(*ir.Node); ok {
		return n, nil
	}
	seq, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected sequence, got %T", ErrTypeMismatch, raw)
	}
	elems := make([]*ir.Node, len(seq))
	for i, e := range seq {
		v, err := BuildElement(reg, fd, e)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		elems[i] = v
	}
	if err := checkKeyUniqueness(reg, elems); err != nil {
		return nil, err
	}
	return ir.FromSlice(fd.Type, elems), nil
}

// checkKeyUniqueness rejects keyed collections holding two elements with
// the same composite key. Keys are the element identity across snapshots,
// so duplicates would make addressing ambiguous.
func checkKeyUniqueness(reg *schema.Registry, elems []*ir.Node) error {
	var seen map[string]bool
	for _, e := range elems {
		kf := reg.KeyFields(e.TypeName)
		if len(kf) == 0 {
			continue
		}
		if seen == nil {
			seen = make(map[string]bool, len(elems))
		}
		k := e.Key(kf)
		if seen[k] {
			return fmt.Errorf("%w: duplicate key %q", ErrTypeMismatch, k)
		}
		seen[k] = true
	}
	return nil
}

// BuildElement hydrates a single value of the field's element type,
// ignoring the field's array-ness. Diff entries targeting keyed
// collections bind through here.
func BuildElement(reg *schema.Registry, fd *schema.FieldDef, raw any) (*ir.Node, error) {
	if n, ok := raw.(*ir.Node); ok {
		return n, nil
	}
	switch fd.Kind {
	case schema.ReferenceKind:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: got %T", ErrMalformedReference, raw)
		}
		return ir.FromRef(s), nil
	case schema.ScalarKind:
		return buildScalar(fd.Type, raw)
	case schema.EnumKind, schema.StructKind:
		return Build(reg, fd.Type, raw)
	}
	return nil, fmt.Errorf("%w: unsupported field kind %s", ErrTypeMismatch, fd.Kind)
}

func buildEnum(td *schema.TypeDef, raw any) (*ir.Node, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: enum %s value must be a string, got %T",
			ErrTypeMismatch, td.Name, raw)
	}
	if !td.HasMember(s) {
		return nil, fmt.Errorf("%w: %q is not a member of %s", ErrTypeMismatch, s, td.Name)
	}
	return ir.FromEnum(td.Name, s), nil
}

func buildScalar(typeName string, raw any) (*ir.Node, error) {
	switch typeName {
	case "string":
		if s, ok := raw.(string); ok {
			return ir.FromString(s), nil
		}
	case "int":
		switch v := raw.(type) {
		case int:
			return ir.FromInt(int64(v)), nil
		case int64:
			return ir.FromInt(v), nil
		case uint64:
			return ir.FromInt(int64(v)), nil
		}
	case "bool":
		if b, ok := raw.(bool); ok {
			return ir.FromBool(b), nil
		}
	case "float":
		switch v := raw.(type) {
		case float64:
			return ir.FromFloat(v), nil
		case int:
			return ir.FromFloat(float64(v)), nil
		case int64:
			return ir.FromFloat(float64(v)), nil
		case uint64:
			return ir.FromFloat(float64(v)), nil
		}
	}
	return nil, fmt.Errorf("%w: cannot bind %T as %s", ErrTypeMismatch, raw, typeName)
}

// DefaultValue builds the declared default of a field: empty collections,
// invalid references, the enum's invalid member, zero scalars, and null for
// optional nested structs.
func DefaultValue(reg *schema.Registry, fd *schema.FieldDef) *ir.Node {
	if fd.Array {
		return ir.NewArray(fd.Type)
	}
	switch fd.Kind {
	case schema.ReferenceKind:
		return ir.FromRef("")
	case schema.EnumKind:
		td, err := reg.TypeDef(fd.Type)
		if err != nil {
			return ir.Null()
		}
		return ir.FromEnum(fd.Type, td.Default())
	case schema.ScalarKind:
		switch fd.Type {
		case "string":
			return ir.FromString("")
		case "int":
			return ir.FromInt(0)
		case "bool":
			return ir.FromBool(false)
		case "float":
			return ir.FromFloat(0)
		}
	}
	return ir.Null()
}

// IsDefault reports whether a field's current value equals its declared
// default.
func IsDefault(reg *schema.Registry, fd *schema.FieldDef, n *ir.Node) bool {
	if n == nil {
		return true
	}
	if fd.Array {
		return n.Type == ir.ArrayType && len(n.Values) == 0
	}
	return ir.Equal(n, DefaultValue(reg, fd))
}
