package main

import (
	"fmt"
	"io"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/signadot/tupletree"
	"github.com/signadot/tupletree/codec"
	"github.com/signadot/tupletree/ir"
	"github.com/signadot/tupletree/schema"
)

func readInput(cc *cli.Context, path string) ([]byte, error) {
	var r io.Reader
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		r = cc.In
	}
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	return d, nil
}

func getDocument(cc *cli.Context, reg *schema.Registry, root, path string) (*ir.Node, error) {
	d, err := readInput(cc, path)
	if err != nil {
		return nil, err
	}
	n, err := codec.Parse(reg, root, d)
	if err != nil {
		return nil, fmt.Errorf("error decoding %q: %w", path, err)
	}
	return n, nil
}

func getChangeSet(cc *cli.Context, reg *schema.Registry, root, path string) (*tupletree.DiffSet, error) {
	d, err := readInput(cc, path)
	if err != nil {
		return nil, err
	}
	ds, err := codec.ParseDiff(reg, root, d)
	if err != nil {
		return nil, fmt.Errorf("error decoding changes %q: %w", path, err)
	}
	return ds, nil
}
