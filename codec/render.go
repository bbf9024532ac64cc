package codec

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/signadot/tupletree"
	"github.com/signadot/tupletree/ir"
	"github.com/signadot/tupletree/schema"
)

// Render serializes a document to its tagged external text form. The root
// carries an explicit type tag, fields appear in declaration order, and
// optional fields whose value equals the declared default are omitted.
func Render(reg *schema.Registry, node *ir.Node) ([]byte, error) {
	if node.Type != ir.ObjectType {
		return nil, fmt.Errorf("cannot render a %s document", node.Type)
	}
	buf := bytes.NewBuffer(nil)
	fmt.Fprintf(buf, "--- !%s\n", node.TypeName)
	if err := encodeStruct(reg, node, buf, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeStruct(reg *schema.Registry, n *ir.Node, w io.Writer, depth int) error {
	td, err := reg.TypeDef(n.TypeName)
	if err != nil {
		return err
	}
	for i, name := range n.Fields {
		fd := td.Field(name)
		if fd == nil {
			return fmt.Errorf("%w: undeclared field %q on %s", schema.ErrSchema, name, td.Name)
		}
		v := n.Values[i]
		if omitField(reg, fd, v) {
			continue
		}
		if err := encodeField(reg, fd, name, v, w, depth); err != nil {
			return err
		}
	}
	return nil
}

// omitField drops optional fields holding their declared default and
// invalid references: absence reconstructs both on parse.
func omitField(reg *schema.Registry, fd *schema.FieldDef, v *ir.Node) bool {
	if fd.Optional && tupletree.IsDefault(reg, fd, v) {
		return true
	}
	if !fd.Array && fd.Kind == schema.ReferenceKind && v.Ref == "" {
		return true
	}
	return false
}

func encodeField(reg *schema.Registry, fd *schema.FieldDef, name string, v *ir.Node, w io.Writer, depth int) error {
	ind := indent(depth)
	switch {
	case v.Type == ir.ArrayType:
		if _, err := fmt.Fprintf(w, "%s%s:\n", ind, name); err != nil {
			return err
		}
		return encodeSeq(reg, v, w, depth+1)
	case v.Type == ir.ObjectType:
		if _, err := fmt.Fprintf(w, "%s%s:\n", ind, name); err != nil {
			return err
		}
		return encodeStruct(reg, v, w, depth+1)
	default:
		_, err := fmt.Fprintf(w, "%s%s: %s\n", ind, name, scalarText(v))
		return err
	}
}

func encodeSeq(reg *schema.Registry, coll *ir.Node, w io.Writer, depth int) error {
	ind := indent(depth)
	for _, e := range coll.Values {
		if e.Type != ir.ObjectType {
			if _, err := fmt.Fprintf(w, "%s- %s\n", ind, scalarText(e)); err != nil {
				return err
			}
			continue
		}
		// the element mapping starts on the dash line
		buf := bytes.NewBuffer(nil)
		if err := encodeStruct(reg, e, buf, 0); err != nil {
			return err
		}
		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		for i, ln := range lines {
			prefix := ind + "  "
			if i == 0 {
				prefix = ind + "- "
			}
			if _, err := fmt.Fprintf(w, "%s%s\n", prefix, ln); err != nil {
				return err
			}
		}
	}
	return nil
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func scalarText(n *ir.Node) string {
	switch n.Type {
	case ir.NullType:
		return "null"
	case ir.BoolType, ir.IntType, ir.FloatType:
		return ir.Text(n)
	}
	s := ir.Text(n)
	if needsQuote(s) {
		return strconv.Quote(s)
	}
	return s
}

// needsQuote decides whether a string scalar must be quoted in the
// external form. Strings beginning with the reserved indicators ? and :
// are always quoted; so is anything a reader could mistake for another
// scalar type or that collides with block syntax.
func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	switch s[0] {
	case '?', ':', '-', '!', '&', '*', '[', ']', '{', '}', ',', '#',
		'|', '>', '@', '`', '"', '\'', '%', ' ':
		return true
	}
	if s[len(s)-1] == ' ' {
		return true
	}
	if strings.ContainsAny(s, "\n\t") ||
		strings.Contains(s, ": ") || strings.Contains(s, " #") ||
		strings.HasSuffix(s, ":") {
		return true
	}
	switch strings.ToLower(s) {
	case "null", "~", "true", "false", "yes", "no", "on", "off":
		return true
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return false
}
