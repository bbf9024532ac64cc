// Package tpath parses and resolves tuple-tree addresses: /-separated
// component strings designating a location in a document relative to a
// root type.
package tpath

import (
	"errors"
	"strings"
)

// ErrPathResolution marks addresses that do not resolve against the given
// type or snapshot. The resolver never attempts partial matches.
var ErrPathResolution = errors.New("path resolution error")

// VariantSeparator splits a component into a variant prefix and a field
// name when a path crosses a polymorphic boundary.
const VariantSeparator = "::"

// Component is one step of a path: a plain field name, a Variant::field
// pair, or (by position only) the composite key of a keyed collection
// element.
type Component struct {
	Raw     string
	Variant string
	Field   string
}

// Parse splits a path into components. A leading empty component, from an
// absolute path, is dropped. "/" and "" address the root itself.
func Parse(path string) []Component {
	parts := strings.Split(path, "/")
	if len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	if len(parts) == 1 && parts[0] == "" {
		parts = nil
	}
	comps := make([]Component, len(parts))
	for i, p := range parts {
		c := Component{Raw: p, Field: p}
		if before, after, ok := strings.Cut(p, VariantSeparator); ok {
			c.Variant = before
			c.Field = after
		}
		comps[i] = c
	}
	return comps
}

// Join builds a path string from a prefix and one more component.
func Join(prefix, component string) string {
	return prefix + "/" + component
}
