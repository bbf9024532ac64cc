package tpath

import (
	"fmt"
	"strings"

	"github.com/signadot/tupletree/debug"
	"github.com/signadot/tupletree/ir"
	"github.com/signadot/tupletree/schema"
)

// ResolveType walks a path through the registry starting at rootType and
// returns the descriptor of the designated location. A path addressing a
// keyed collection element (rather than a field) yields a synthesized
// non-array descriptor of the element's concrete type.
func ResolveType(reg *schema.Registry, rootType, path string) (*schema.FieldDef, error) {
	comps := Parse(path)
	if len(comps) == 0 {
		return &schema.FieldDef{Type: rootType, Kind: schema.StructKind}, nil
	}
	cur := rootType
	for i := 0; i < len(comps); i++ {
		c := comps[i]
		typeName := cur
		if c.Variant != "" {
			vd, err := reg.Variant(cur, c.Variant)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrPathResolution, path, err)
			}
			typeName = vd.Name
		}
		fd, err := reg.Field(typeName, c.Field)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrPathResolution, path, err)
		}
		if i == len(comps)-1 {
			return fd, nil
		}
		if fd.Array {
			// the next component is a composite key selecting one element
			i++
			elem, err := elementType(reg, fd, comps[i].Raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrPathResolution, path, err)
			}
			if i == len(comps)-1 {
				return &schema.FieldDef{
					Name: comps[i].Raw,
					Type: elem,
					Kind: schema.StructKind,
				}, nil
			}
			cur = elem
			continue
		}
		if fd.Kind != schema.StructKind {
			return nil, fmt.Errorf("%w: %q: %s field %s has no sub-path",
				ErrPathResolution, path, fd.Kind, fd.Name)
		}
		cur = fd.Type
	}
	return nil, fmt.Errorf("%w: %q", ErrPathResolution, path)
}

// elementType resolves the concrete element type selected by a composite
// key, specializing abstract element families through the key's
// discriminant part.
func elementType(reg *schema.Registry, fd *schema.FieldDef, key string) (string, error) {
	etd, err := reg.TypeDef(fd.Type)
	if err != nil {
		return "", err
	}
	if etd.Kind != schema.StructKind || !etd.Abstract {
		return fd.Type, nil
	}
	kv := kindOfKey(etd.KeyFields, key)
	if kv == "" {
		return fd.Type, nil
	}
	vd, err := reg.Variant(fd.Type, kv)
	if err != nil {
		return "", err
	}
	return vd.Name, nil
}

// kindOfKey extracts the discriminant part of a composite key by the
// position of the discriminant among the key fields.
func kindOfKey(keyFields []string, key string) string {
	idx := -1
	for i, f := range keyFields {
		if f == schema.DiscriminantField {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ""
	}
	parts := strings.SplitN(key, ir.KeySeparator, len(keyFields))
	if idx >= len(parts) {
		return ""
	}
	return parts[idx]
}

// ResolveValue walks a path through a document snapshot and returns the
// node it designates.
func ResolveValue(reg *schema.Registry, root *ir.Node, path string) (*ir.Node, error) {
	comps := Parse(path)
	n, err := resolveComps(reg, root, comps, path)
	if debug.Resolve() {
		debug.Logf("resolve: %q on %s -> ok=%v\n", path, root.TypeName, err == nil)
	}
	return n, err
}

// ResolveParent resolves all but the last component and returns the parent
// node together with the final field name, with any variant prefix
// stripped.
func ResolveParent(reg *schema.Registry, root *ir.Node, path string) (*ir.Node, string, error) {
	comps := Parse(path)
	if len(comps) == 0 {
		return nil, "", fmt.Errorf("%w: %q has no parent", ErrPathResolution, path)
	}
	parent, err := resolveComps(reg, root, comps[:len(comps)-1], path)
	if err != nil {
		return nil, "", err
	}
	return parent, comps[len(comps)-1].Field, nil
}

func resolveComps(reg *schema.Registry, root *ir.Node, comps []Component, path string) (*ir.Node, error) {
	cur := root
	for i := 0; i < len(comps); i++ {
		c := comps[i]
		if cur.Type != ir.ObjectType {
			return nil, fmt.Errorf("%w: %q: %s at component %q",
				ErrPathResolution, path, cur.Type, c.Raw)
		}
		if c.Variant != "" {
			kind := ir.Text(cur.Get(schema.DiscriminantField))
			if kind != c.Variant {
				return nil, fmt.Errorf("%w: %q: node kind %q does not match %q",
					ErrPathResolution, path, kind, c.Variant)
			}
		}
		v := cur.Get(c.Field)
		if v == nil {
			return nil, fmt.Errorf("%w: %q: no field %q on %s",
				ErrPathResolution, path, c.Field, cur.TypeName)
		}
		if i == len(comps)-1 {
			return v, nil
		}
		if v.Type == ir.ArrayType {
			i++
			key := comps[i].Raw
			elem := findKeyed(reg, v, key)
			if elem == nil {
				return nil, fmt.Errorf("%w: %q: no element keyed %q in %s",
					ErrPathResolution, path, key, c.Field)
			}
			if i == len(comps)-1 {
				return elem, nil
			}
			cur = elem
			continue
		}
		cur = v
	}
	return cur, nil
}

func findKeyed(reg *schema.Registry, coll *ir.Node, key string) *ir.Node {
	for _, e := range coll.Values {
		kf := reg.KeyFields(e.TypeName)
		if len(kf) == 0 {
			continue
		}
		if e.Key(kf) == key {
			return e
		}
	}
	return nil
}
