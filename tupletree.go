// Package tupletree implements a schema-described, versioned tree document
// model: typed construction and validation, path-based addressing into
// nested and polymorphic structures, structural diff between snapshots,
// and atomic, validated diff application.
//
// The core is purely computational. Diff and Validate are pure functions
// of their inputs, Apply returns a freshly built snapshot, and the schema
// registry is immutable after load, so everything here is safe to call
// concurrently on shared immutable snapshots.
package tupletree

import (
	"fmt"

	"github.com/signadot/tupletree/ir"
	"github.com/signadot/tupletree/schema"
	"github.com/signadot/tupletree/tpath"
)

// Resolve returns the node an address designates within a snapshot.
func Resolve(reg *schema.Registry, root *ir.Node, path string) (*ir.Node, error) {
	return tpath.ResolveValue(reg, root, path)
}

// Deref resolves a reference node's address against a snapshot and caches
// the result on the reference. The cache is a relation, not an ownership
// edge; it is dropped on Clone.
func Deref(reg *schema.Registry, root *ir.Node, ref *ir.Node) (*ir.Node, error) {
	if ref.Type != ir.ReferenceType {
		return nil, fmt.Errorf("%w: cannot deref a %s node", ErrMalformedReference, ref.Type)
	}
	if ref.Ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrMalformedReference)
	}
	n, err := tpath.ResolveValue(reg, root, ref.Ref)
	if err != nil {
		return nil, err
	}
	ref.Target = n
	return n, nil
}
