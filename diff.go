package tupletree

import (
	"fmt"
	"slices"

	"github.com/signadot/tupletree/debug"
	"github.com/signadot/tupletree/ir"
	"github.com/signadot/tupletree/schema"
	"github.com/signadot/tupletree/tpath"
)

// Change is one path-addressed edit between two snapshots. Exactly one of
// four shapes is valid: add-only, remove-only, or add+remove; never both
// absent.
type Change struct {
	Path   string
	Add    *ir.Node
	Remove *ir.Node
}

// DiffSet is an ordered list of changes computed between two snapshots of
// the same root type. Entry order is deterministic (field declaration
// order, then collection order; plain-sequence edits in ir.Compare order)
// but carries no semantic weight: changes target disjoint paths by
// construction.
type DiffSet struct {
	Changes []Change
}

func (ds *DiffSet) Empty() bool {
	return ds == nil || len(ds.Changes) == 0
}

// Diff computes the structural difference between two snapshots sharing
// the same concrete root type. Diffing never mutates its inputs, and
// Diff(x, x) is empty.
//
// Keyed collections diff by element identity (the composite key); plain
// sequences use an order-insensitive multiset match which is intentionally
// not minimal: reordering without content change is invisible, and
// duplicate near-equal elements can produce a non-minimal result. When the
// concrete variant of an abstract position differs between the snapshots
// the node is treated as fully replaced; no field-level diff is produced,
// not even for shared base fields.
func Diff(reg *schema.Registry, old, new *ir.Node) (*DiffSet, error) {
	if old.TypeName != new.TypeName {
		return nil, fmt.Errorf("%w: cannot diff %s against %s",
			ErrTypeMismatch, old.TypeName, new.TypeName)
	}
	d := &differ{reg: reg}
	if err := d.structDiff(old, new, "", old.TypeName); err != nil {
		return nil, err
	}
	return &DiffSet{Changes: d.changes}, nil
}

type differ struct {
	reg     *schema.Registry
	changes []Change
}

func (d *differ) emit(ch Change) {
	if debug.Diff() {
		debug.Logf("diff: %s add=%q remove=%q\n", ch.Path, ir.Text(ch.Add), ir.Text(ch.Remove))
	}
	d.changes = append(d.changes, ch)
}

// structDiff compares two object nodes of the same concrete type.
// declaredType is the schema type of the position being compared; when it
// is the abstract base of the nodes' concrete variant, variant-own fields
// get a Variant:: path prefix.
func (d *differ) structDiff(old, new *ir.Node, prefix, declaredType string) error {
	td, err := d.reg.TypeDef(old.TypeName)
	if err != nil {
		return err
	}
	var base *schema.TypeDef
	if td.Inherits != "" && td.Inherits == declaredType {
		base, err = d.reg.TypeDef(td.Inherits)
		if err != nil {
			return err
		}
	}
	for i := range td.Fields {
		fd := &td.Fields[i]
		comp := fd.Name
		if base != nil && base.Field(fd.Name) == nil {
			comp = td.Name + tpath.VariantSeparator + fd.Name
		}
		fieldPath := tpath.Join(prefix, comp)
		ov, nv := old.Get(fd.Name), new.Get(fd.Name)

		switch {
		case fd.Array:
			if len(d.reg.KeyFields(fd.Type)) > 0 {
				if err := d.keyedDiff(ov, nv, fieldPath, fd); err != nil {
					return err
				}
			} else {
				d.multisetDiff(ov, nv, fieldPath)
			}

		case fd.Kind == schema.StructKind:
			if err := d.structFieldDiff(ov, nv, fieldPath, fd); err != nil {
				return err
			}

		default:
			d.scalarDiff(ov, nv, fieldPath, fd)
		}
	}
	return nil
}

func (d *differ) scalarDiff(ov, nv *ir.Node, path string, fd *schema.FieldDef) {
	od := IsDefault(d.reg, fd, ov)
	nd := IsDefault(d.reg, fd, nv)
	switch {
	case od && nd:
	case od:
		d.emit(Change{Path: path, Add: nv})
	case nd:
		d.emit(Change{Path: path, Remove: ov})
	case !ir.Equal(ov, nv):
		d.emit(Change{Path: path, Add: nv, Remove: ov})
	}
}

func (d *differ) structFieldDiff(ov, nv *ir.Node, path string, fd *schema.FieldDef) error {
	oNull := ov == nil || ov.Type == ir.NullType
	nNull := nv == nil || nv.Type == ir.NullType
	switch {
	case oNull && nNull:
		return nil
	case oNull:
		d.emit(Change{Path: path, Add: nv})
		return nil
	case nNull:
		d.emit(Change{Path: path, Remove: ov})
		return nil
	}
	if ov.TypeName != nv.TypeName {
		// concrete variant changed: the whole node is replaced
		d.emit(Change{Path: path, Add: nv, Remove: ov})
		return nil
	}
	return d.structDiff(ov, nv, path, fd.Type)
}

// keyedDiff compares two keyed collections by element identity.
func (d *differ) keyedDiff(ov, nv *ir.Node, path string, fd *schema.FieldDef) error {
	type entry struct {
		key  string
		node *ir.Node
	}
	keyOf := func(e *ir.Node) string {
		return e.Key(d.reg.KeyFields(e.TypeName))
	}
	oldOrder := make([]entry, 0, len(ov.Values))
	newByKey := make(map[string]*ir.Node, len(nv.Values))
	for _, e := range ov.Values {
		oldOrder = append(oldOrder, entry{keyOf(e), e})
	}
	for _, e := range nv.Values {
		newByKey[keyOf(e)] = e
	}
	for _, oe := range oldOrder {
		ne, shared := newByKey[oe.key]
		if !shared {
			d.emit(Change{Path: path, Remove: oe.node})
			continue
		}
		if ne.TypeName != oe.node.TypeName {
			d.emit(Change{Path: path, Add: ne, Remove: oe.node})
			continue
		}
		if err := d.structDiff(oe.node, ne, tpath.Join(path, oe.key), fd.Type); err != nil {
			return err
		}
	}
	oldKeys := make(map[string]bool, len(oldOrder))
	for _, oe := range oldOrder {
		oldKeys[oe.key] = true
	}
	for _, e := range nv.Values {
		if !oldKeys[keyOf(e)] {
			d.emit(Change{Path: path, Add: e})
		}
	}
	return nil
}

// multisetDiff compares plain sequences without element identity: equal
// elements pair off regardless of position, unmatched old elements are
// removals, unmatched new elements are additions. Removals and additions
// are emitted in ir.Compare order, so equal multisets produce the same
// change list no matter how their elements are arranged.
func (d *differ) multisetDiff(ov, nv *ir.Node, path string) {
	consumed := make([]bool, len(nv.Values))
	var removed, added []*ir.Node
	for _, oe := range ov.Values {
		matched := false
		for i, ne := range nv.Values {
			if consumed[i] || !ir.Equal(oe, ne) {
				continue
			}
			consumed[i] = true
			matched = true
			break
		}
		if !matched {
			removed = append(removed, oe)
		}
	}
	for i, ne := range nv.Values {
		if !consumed[i] {
			added = append(added, ne)
		}
	}
	slices.SortStableFunc(removed, ir.Compare)
	slices.SortStableFunc(added, ir.Compare)
	for _, oe := range removed {
		d.emit(Change{Path: path, Remove: oe})
	}
	for _, ne := range added {
		d.emit(Change{Path: path, Add: ne})
	}
}
