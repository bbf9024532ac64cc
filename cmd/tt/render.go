package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/signadot/tupletree/codec"
	"github.com/signadot/tupletree/query"
)

func render(cfg *RenderConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Render.Parse(cc, args)
	if err != nil {
		return err
	}
	reg, root, err := cfg.registry()
	if err != nil {
		return err
	}
	in := "-"
	switch len(args) {
	case 0:
	case 1:
		in = args[0]
	default:
		return fmt.Errorf("%w: render takes at most one file, got %v", cli.ErrUsage, args)
	}
	doc, err := getDocument(cc, reg, root, in)
	if err != nil {
		return err
	}
	out, err := codec.Render(reg, doc)
	if err != nil {
		return err
	}
	_, err = cc.Out.Write(out)
	return err
}

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: get <path> [file], got %v", cli.ErrUsage, args)
	}
	reg, root, err := cfg.registry()
	if err != nil {
		return err
	}
	in := "-"
	if len(args) == 2 {
		in = args[1]
	}
	doc, err := getDocument(cc, reg, root, in)
	if err != nil {
		return err
	}
	nodes, err := query.Select(reg, doc, args[0], cfg.Where)
	if err != nil {
		return err
	}
	for i, n := range nodes {
		if i > 0 {
			if _, err := fmt.Fprintln(cc.Out, "---"); err != nil {
				return err
			}
		}
		s, err := codec.RenderValue(reg, n)
		if err != nil {
			return err
		}
		if _, err := cc.Out.Write([]byte(s)); err != nil {
			return err
		}
	}
	return nil
}
