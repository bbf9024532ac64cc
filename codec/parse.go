package codec

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/signadot/tupletree"
	"github.com/signadot/tupletree/ir"
	"github.com/signadot/tupletree/schema"
)

// Parse reads a tagged external document and strictly binds it against the
// schema. Any structural error aborts the whole parse; no partial document
// is returned.
func Parse(reg *schema.Registry, rootType string, data []byte) (*ir.Node, error) {
	tag, body, err := splitDocTag(data)
	if err != nil {
		return nil, err
	}
	if tag != "" && tag != rootType {
		return nil, fmt.Errorf("%w: document tagged !%s, expected !%s", ErrParse, tag, rootType)
	}
	var v any
	if err := yaml.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if v == nil {
		if tag == "" {
			return nil, fmt.Errorf("%w: empty document", ErrParse)
		}
		// a tagged document with no body is a node of all defaults
		v = map[string]any{}
	}
	return tupletree.Build(reg, rootType, v)
}

// splitDocTag strips the root type tag from an explicit document start
// line, returning the tag name and the body to unmarshal.
func splitDocTag(data []byte) (string, []byte, error) {
	s := string(data)
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		t := strings.TrimSpace(ln)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		if !strings.HasPrefix(t, "---") {
			return "", data, nil
		}
		rest := strings.TrimSpace(t[3:])
		if rest == "" {
			return "", data, nil
		}
		if !strings.HasPrefix(rest, "!") {
			return "", data, nil
		}
		tag := strings.Fields(rest[1:])
		if len(tag) != 1 {
			return "", nil, fmt.Errorf("%w: malformed document tag %q", ErrParse, rest)
		}
		lines[i] = "---"
		return tag[0], []byte(strings.Join(lines, "\n")), nil
	}
	return "", data, nil
}
