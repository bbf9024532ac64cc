package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/signadot/tupletree/schema"
)

type MainConfig struct {
	Schema string `cli:"name=s aliases=schema desc='schema description file'"`
	Root   string `cli:"name=r aliases=root desc='root type (default: the schema root)'"`
	Color  bool   `cli:"name=color desc='force colored output'"`

	Main *cli.Command
}

// registry loads the schema description named by -s and resolves the root
// type to operate on.
func (cfg *MainConfig) registry() (*schema.Registry, string, error) {
	if cfg.Schema == "" {
		return nil, "", fmt.Errorf("%w: -s <schema> is required", cli.ErrUsage)
	}
	data, err := os.ReadFile(cfg.Schema)
	if err != nil {
		return nil, "", err
	}
	reg, err := schema.Load(data)
	if err != nil {
		return nil, "", err
	}
	root := cfg.Root
	if root == "" {
		root = reg.Root()
	}
	if root == "" {
		return nil, "", fmt.Errorf("%w: schema declares no root, pass -r <type>", cli.ErrUsage)
	}
	return reg, root, nil
}

func (cfg *MainConfig) colorize(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

type RenderConfig struct {
	*MainConfig
	Render *cli.Command
}

type GetConfig struct {
	*MainConfig
	Where string `cli:"name=where desc='expr predicate filtering collection elements'"`
	Get   *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Text bool `cli:"name=text desc='show a textual diff of the rendered documents'"`
	Diff *cli.Command
}

type ValidateConfig struct {
	*MainConfig
	Validate *cli.Command
}

type PatchConfig struct {
	*MainConfig
	Patch *cli.Command
}

type ExportConfig struct {
	*MainConfig
	Export *cli.Command
}
