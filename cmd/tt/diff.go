package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/signadot/tupletree"
	"github.com/signadot/tupletree/codec"
	"github.com/signadot/tupletree/ir"
	"github.com/signadot/tupletree/schema"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	reg, root, err := cfg.registry()
	if err != nil {
		return err
	}
	oldDoc, err := getDocument(cc, reg, root, args[0])
	if err != nil {
		return err
	}
	newDoc, err := getDocument(cc, reg, root, args[1])
	if err != nil {
		return err
	}
	if ir.Fingerprint(oldDoc) == ir.Fingerprint(newDoc) {
		return nil
	}
	if cfg.Text {
		if err := textDiff(cfg, cc.Out, reg, oldDoc, newDoc); err != nil {
			return err
		}
		return cli.ExitCodeErr(1)
	}
	ds, err := tupletree.Diff(reg, oldDoc, newDoc)
	if err != nil {
		return err
	}
	if ds.Empty() {
		return nil
	}
	out, err := codec.RenderDiff(reg, ds)
	if err != nil {
		return err
	}
	if _, err := cc.Out.Write(out); err != nil {
		return err
	}
	return cli.ExitCodeErr(1)
}

// textDiff prints a line-based diff of the rendered documents, colored
// when writing to a terminal.
func textDiff(cfg *DiffConfig, w io.Writer, reg *schema.Registry, oldDoc, newDoc *ir.Node) error {
	a, err := codec.Render(reg, oldDoc)
	if err != nil {
		return err
	}
	b, err := codec.Render(reg, newDoc)
	if err != nil {
		return err
	}
	dmp := diffpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(string(a), string(b))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	add := color.New(color.FgGreen)
	del := color.New(color.FgRed)
	if !cfg.colorize(w) {
		add.DisableColor()
		del.DisableColor()
	}
	for _, d := range diffs {
		for _, ln := range splitLines(d.Text) {
			var err error
			switch d.Type {
			case diffpatch.DiffInsert:
				_, err = add.Fprintf(w, "+ %s\n", ln)
			case diffpatch.DiffDelete:
				_, err = del.Fprintf(w, "- %s\n", ln)
			default:
				_, err = fmt.Fprintf(w, "  %s\n", ln)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
