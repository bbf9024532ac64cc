// Package interop converts change sets to RFC 6902 JSON Patch documents
// operating on the JSON projection of a document. The native change-set
// format stays authoritative; this is an export surface for tooling that
// already speaks JSON Patch.
package interop

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"

	"github.com/signadot/tupletree"
	"github.com/signadot/tupletree/ir"
	"github.com/signadot/tupletree/schema"
	"github.com/signadot/tupletree/tpath"
)

// Operation is one RFC 6902 entry.
type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// MarshalJSON renders the JSON projection of a document. Field order is
// not preserved; JSON Patch addressing does not depend on it.
func MarshalJSON(root *ir.Node) ([]byte, error) {
	return json.Marshal(ir.Untyped(root))
}

// ToJSONPatch converts a change set, which must validate against root,
// into an RFC 6902 patch on the document's JSON projection.
//
// JSON Patch operations apply sequentially, so element indices are
// resolved against a working copy that tracks the effect of the
// operations emitted so far; an earlier remove shifts the indices seen
// by later operations on the same collection.
func ToJSONPatch(reg *schema.Registry, root *ir.Node, ds *tupletree.DiffSet) ([]byte, error) {
	if !tupletree.Validate(reg, root, ds) {
		return nil, fmt.Errorf("change set does not validate against the document")
	}
	work := root.Clone()
	ops := make([]Operation, 0, len(ds.Changes))
	for i := range ds.Changes {
		ch := &ds.Changes[i]
		fd, err := tpath.ResolveType(reg, root.TypeName, ch.Path)
		if err != nil {
			return nil, err
		}
		target, err := tpath.ResolveValue(reg, work, ch.Path)
		if err != nil {
			return nil, err
		}
		ptr, err := jsonPointer(reg, work, ch.Path)
		if err != nil {
			return nil, err
		}
		if fd.Array && target.Type == ir.ArrayType {
			if ch.Remove != nil {
				idx := indexOf(target, ch.Remove)
				if idx < 0 {
					return nil, fmt.Errorf("removed element not found at %s", ch.Path)
				}
				ops = append(ops, Operation{Op: "remove", Path: ptr + "/" + strconv.Itoa(idx)})
				target.Values = slices.Delete(target.Values, idx, idx+1)
			}
			if ch.Add != nil {
				ops = append(ops, Operation{Op: "add", Path: ptr + "/-", Value: ir.Untyped(ch.Add)})
				target.Values = append(target.Values, ch.Add.Clone())
			}
			continue
		}
		val := ch.Add
		if val == nil {
			val = tupletree.DefaultValue(reg, fd)
		}
		ops = append(ops, Operation{Op: "replace", Path: ptr, Value: ir.Untyped(val)})
		parent, field, err := tpath.ResolveParent(reg, work, ch.Path)
		if err != nil {
			return nil, err
		}
		parent.Set(field, val.Clone())
	}
	return json.Marshal(ops)
}

// ApplyJSONPatch applies an RFC 6902 patch to a JSON document.
func ApplyJSONPatch(doc, patch []byte) ([]byte, error) {
	p, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, fmt.Errorf("decoding patch: %w", err)
	}
	out, err := p.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("applying patch: %w", err)
	}
	return out, nil
}

func indexOf(coll *ir.Node, v *ir.Node) int {
	for i, e := range coll.Values {
		if ir.Equal(e, v) {
			return i
		}
	}
	return -1
}

// jsonPointer rewrites a tuple-tree path as a JSON pointer, replacing
// composite keys with element indices in the given snapshot.
func jsonPointer(reg *schema.Registry, root *ir.Node, path string) (string, error) {
	comps := tpath.Parse(path)
	cur := root
	var sb strings.Builder
	for i := 0; i < len(comps); i++ {
		c := comps[i]
		v := cur.Get(c.Field)
		if v == nil {
			return "", fmt.Errorf("%w: %q: no field %q", tpath.ErrPathResolution, path, c.Field)
		}
		sb.WriteString("/" + escapePointer(c.Field))
		if i == len(comps)-1 {
			break
		}
		if v.Type == ir.ArrayType {
			i++
			key := comps[i].Raw
			idx := -1
			for j, e := range v.Values {
				kf := reg.KeyFields(e.TypeName)
				if len(kf) > 0 && e.Key(kf) == key {
					idx = j
					break
				}
			}
			if idx < 0 {
				return "", fmt.Errorf("%w: %q: no element keyed %q",
					tpath.ErrPathResolution, path, key)
			}
			sb.WriteString("/" + strconv.Itoa(idx))
			cur = v.Values[idx]
			continue
		}
		cur = v
	}
	return sb.String(), nil
}

func escapePointer(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}
