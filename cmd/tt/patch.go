package main

import (
	"encoding/json"
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/signadot/tupletree"
	"github.com/signadot/tupletree/codec"
	"github.com/signadot/tupletree/interop"
)

func validate(cfg *ValidateConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Validate.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: validate <changes> <file>, got %v", cli.ErrUsage, args)
	}
	reg, root, err := cfg.registry()
	if err != nil {
		return err
	}
	ds, err := getChangeSet(cc, reg, root, args[0])
	if err != nil {
		return err
	}
	doc, err := getDocument(cc, reg, root, args[1])
	if err != nil {
		return err
	}
	if !tupletree.Validate(reg, doc, ds) {
		fmt.Fprintln(cc.Out, "invalid")
		return cli.ExitCodeErr(1)
	}
	fmt.Fprintln(cc.Out, "valid")
	return nil
}

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: patch <changes> <file>, got %v", cli.ErrUsage, args)
	}
	reg, root, err := cfg.registry()
	if err != nil {
		return err
	}
	ds, err := getChangeSet(cc, reg, root, args[0])
	if err != nil {
		return err
	}
	doc, err := getDocument(cc, reg, root, args[1])
	if err != nil {
		return err
	}
	ok, patched := tupletree.Apply(reg, doc, ds)
	if !ok {
		return fmt.Errorf("changes %q do not apply to %q", args[0], args[1])
	}
	out, err := codec.Render(reg, patched)
	if err != nil {
		return err
	}
	_, err = cc.Out.Write(out)
	return err
}

func exportJSON(cfg *ExportConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Export.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: export-json <changes> <file>, got %v", cli.ErrUsage, args)
	}
	reg, root, err := cfg.registry()
	if err != nil {
		return err
	}
	ds, err := getChangeSet(cc, reg, root, args[0])
	if err != nil {
		return err
	}
	doc, err := getDocument(cc, reg, root, args[1])
	if err != nil {
		return err
	}
	ops, err := interop.ToJSONPatch(reg, doc, ds)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(ops, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = cc.Out.Write(out)
	return err
}
