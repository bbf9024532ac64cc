package codec

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/signadot/tupletree"
	"github.com/signadot/tupletree/ir"
	"github.com/signadot/tupletree/schema"
	"github.com/signadot/tupletree/tpath"
)

// DiffSetTag tags serialized change sets.
const DiffSetTag = "DiffSet"

// RenderDiff serializes a change set: a single Changes key holding the
// ordered entries, Add/Remove omitted when absent.
func RenderDiff(reg *schema.Registry, ds *tupletree.DiffSet) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	fmt.Fprintf(buf, "--- !%s\n", DiffSetTag)
	if ds.Empty() {
		buf.WriteString("Changes: []\n")
		return buf.Bytes(), nil
	}
	buf.WriteString("Changes:\n")
	for i := range ds.Changes {
		ch := &ds.Changes[i]
		fmt.Fprintf(buf, "  - Path: %s\n", scalarText(ir.FromString(ch.Path)))
		if err := encodeChangeValue(reg, "Add", ch.Add, buf); err != nil {
			return nil, err
		}
		if err := encodeChangeValue(reg, "Remove", ch.Remove, buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func encodeChangeValue(reg *schema.Registry, key string, v *ir.Node, w io.Writer) error {
	if v == nil {
		return nil
	}
	if v.Type != ir.ObjectType {
		_, err := fmt.Fprintf(w, "    %s: %s\n", key, scalarText(v))
		return err
	}
	if _, err := fmt.Fprintf(w, "    %s:\n", key); err != nil {
		return err
	}
	return encodeStruct(reg, v, w, 3)
}

type rawChange struct {
	Path   string `yaml:"Path"`
	Add    any    `yaml:"Add"`
	Remove any    `yaml:"Remove"`
}

type rawDiffSet struct {
	Changes []rawChange `yaml:"Changes"`
}

// ParseDiff reads a serialized change set and re-binds every Add/Remove
// value to the type its path designates under the given root type.
func ParseDiff(reg *schema.Registry, rootType string, data []byte) (*tupletree.DiffSet, error) {
	tag, body, err := splitDocTag(data)
	if err != nil {
		return nil, err
	}
	if tag != "" && tag != DiffSetTag {
		return nil, fmt.Errorf("%w: document tagged !%s, expected !%s", ErrParse, tag, DiffSetTag)
	}
	var raw rawDiffSet
	if err := yaml.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	ds := &tupletree.DiffSet{Changes: make([]tupletree.Change, 0, len(raw.Changes))}
	for i := range raw.Changes {
		rc := &raw.Changes[i]
		if rc.Add == nil && rc.Remove == nil {
			return nil, fmt.Errorf("%w: change %d at %q has neither Add nor Remove",
				ErrParse, i, rc.Path)
		}
		fd, err := tpath.ResolveType(reg, rootType, rc.Path)
		if err != nil {
			return nil, err
		}
		ch := tupletree.Change{Path: rc.Path}
		if rc.Add != nil {
			if ch.Add, err = tupletree.BuildElement(reg, fd, rc.Add); err != nil {
				return nil, fmt.Errorf("change %d Add: %w", i, err)
			}
		}
		if rc.Remove != nil {
			if ch.Remove, err = tupletree.BuildElement(reg, fd, rc.Remove); err != nil {
				return nil, fmt.Errorf("change %d Remove: %w", i, err)
			}
		}
		ds.Changes = append(ds.Changes, ch)
	}
	return ds, nil
}

// RenderValue serializes a standalone node, without a document tag. The
// CLI uses it to print resolved path targets.
func RenderValue(reg *schema.Registry, n *ir.Node) (string, error) {
	switch n.Type {
	case ir.ObjectType:
		buf := bytes.NewBuffer(nil)
		if err := encodeStruct(reg, n, buf, 0); err != nil {
			return "", err
		}
		return buf.String(), nil
	case ir.ArrayType:
		buf := bytes.NewBuffer(nil)
		if err := encodeSeq(reg, n, buf, 0); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return strings.TrimSuffix(scalarText(n), "\n") + "\n", nil
	}
}
