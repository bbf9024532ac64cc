package tupletree

import (
	"slices"

	"github.com/signadot/tupletree/debug"
	"github.com/signadot/tupletree/ir"
	"github.com/signadot/tupletree/schema"
	"github.com/signadot/tupletree/tpath"
)

// Validate reports whether every change in the set can be applied to the
// given snapshot. Changes are checked against the combined effect of the
// whole set, not in isolation: a composite key freed by one change may be
// taken by another, and no two changes may claim the same key. An invalid
// change set is an expected, recoverable outcome (a concurrent-edit
// conflict, typically), so the result is a value, never an error.
func Validate(reg *schema.Registry, root *ir.Node, ds *DiffSet) bool {
	pc := newPatchCheck(reg, ds)
	for i := range ds.Changes {
		if !pc.validateChange(root, &ds.Changes[i]) {
			if debug.Patch() {
				debug.Logf("patch: change %d at %s failed validation\n",
					i, ds.Changes[i].Path)
			}
			return false
		}
	}
	return true
}

// patchCheck carries the cross-change state of one validation: composite
// keys removed anywhere in the set, and keys already claimed by an add,
// each per collection path.
type patchCheck struct {
	reg     *schema.Registry
	removed map[string]map[string]bool
	added   map[string]map[string]bool
}

func newPatchCheck(reg *schema.Registry, ds *DiffSet) *patchCheck {
	pc := &patchCheck{
		reg:     reg,
		removed: map[string]map[string]bool{},
		added:   map[string]map[string]bool{},
	}
	for i := range ds.Changes {
		ch := &ds.Changes[i]
		if ch.Remove == nil {
			continue
		}
		kf := reg.KeyFields(ch.Remove.TypeName)
		if len(kf) == 0 {
			continue
		}
		markKey(pc.removed, ch.Path, ch.Remove.Key(kf))
	}
	return pc
}

func markKey(m map[string]map[string]bool, path, key string) {
	ks := m[path]
	if ks == nil {
		ks = map[string]bool{}
		m[path] = ks
	}
	ks[key] = true
}

func (pc *patchCheck) validateChange(root *ir.Node, ch *Change) bool {
	if ch.Add == nil && ch.Remove == nil {
		return false
	}
	fd, err := tpath.ResolveType(pc.reg, root.TypeName, ch.Path)
	if err != nil {
		return false
	}
	target, err := tpath.ResolveValue(pc.reg, root, ch.Path)
	if err != nil {
		return false
	}
	if fd.Array && target.Type == ir.ArrayType {
		return pc.validateCollectionChange(target, ch)
	}
	if ch.Remove != nil && !equalValue(target, ch.Remove) {
		return false
	}
	if ch.Add != nil && ch.Remove == nil && !IsDefault(pc.reg, fd, target) {
		// an add must not silently clobber an unseen edit
		return false
	}
	return true
}

func (pc *patchCheck) validateCollectionChange(coll *ir.Node, ch *Change) bool {
	if ch.Remove != nil {
		if !slices.ContainsFunc(coll.Values, func(e *ir.Node) bool {
			return ir.Equal(e, ch.Remove)
		}) {
			return false
		}
	}
	if ch.Add == nil {
		return true
	}
	kf := pc.reg.KeyFields(ch.Add.TypeName)
	var key string
	if len(kf) > 0 {
		key = ch.Add.Key(kf)
		// at most one add in the set may claim a key
		if pc.added[ch.Path][key] {
			return false
		}
	}
	for _, e := range coll.Values {
		if ir.Equal(e, ch.Add) {
			return false
		}
		if len(kf) == 0 {
			continue
		}
		ekf := pc.reg.KeyFields(e.TypeName)
		if len(ekf) == 0 || e.Key(ekf) != key {
			continue
		}
		// a colliding element is fine only when some change in the set
		// removes it
		if !pc.removed[ch.Path][key] {
			return false
		}
	}
	if len(kf) > 0 {
		markKey(pc.added, ch.Path, key)
	}
	return true
}

// equalValue compares a current value against a diff entry value: scalar
// forms compare textually, containers structurally.
func equalValue(a, b *ir.Node) bool {
	if a.IsScalar() || b.IsScalar() {
		return ir.Text(a) == ir.Text(b)
	}
	return ir.Equal(a, b)
}

// Apply validates the change set against root and, if valid, returns a new
// snapshot with every change applied. On failure it returns (false, nil)
// and root is untouched; there are no partial effects. root is never
// mutated either way.
func Apply(reg *schema.Registry, root *ir.Node, ds *DiffSet) (bool, *ir.Node) {
	if !Validate(reg, root, ds) {
		return false, nil
	}
	out := root.Clone()
	for i := range ds.Changes {
		ch := &ds.Changes[i]
		if debug.Patch() {
			debug.Logf("patch: applying change at %s\n", ch.Path)
		}
		fd, err := tpath.ResolveType(reg, root.TypeName, ch.Path)
		if err != nil {
			return false, nil
		}
		target, err := tpath.ResolveValue(reg, out, ch.Path)
		if err != nil {
			return false, nil
		}
		if fd.Array && target.Type == ir.ArrayType {
			applyCollectionChange(target, ch)
			continue
		}
		parent, field, err := tpath.ResolveParent(reg, out, ch.Path)
		if err != nil {
			return false, nil
		}
		if ch.Add != nil {
			parent.Set(field, ch.Add.Clone())
		} else {
			parent.Set(field, DefaultValue(reg, fd))
		}
	}
	return true, out
}

func applyCollectionChange(coll *ir.Node, ch *Change) {
	if ch.Remove != nil {
		for i, e := range coll.Values {
			if ir.Equal(e, ch.Remove) {
				coll.Values = slices.Delete(coll.Values, i, i+1)
				break
			}
		}
	}
	if ch.Add != nil {
		coll.Values = append(coll.Values, ch.Add.Clone())
	}
}
