// Package query filters resolved document nodes with expr-lang
// predicates. Predicates are evaluated against the untyped projection of
// each candidate node, so fields are addressed by name: for example
// `Kind == "Entry" && StackSize > 16`.
package query

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/signadot/tupletree/ir"
	"github.com/signadot/tupletree/schema"
	"github.com/signadot/tupletree/tpath"
)

// Select resolves path against root and returns the nodes matching the
// predicate. A path designating a collection yields its elements as
// candidates, anything else is a single candidate. An empty predicate
// matches everything.
func Select(reg *schema.Registry, root *ir.Node, path, predicate string) ([]*ir.Node, error) {
	target, err := tpath.ResolveValue(reg, root, path)
	if err != nil {
		return nil, err
	}
	var candidates []*ir.Node
	if target.Type == ir.ArrayType {
		candidates = target.Values
	} else {
		candidates = []*ir.Node{target}
	}
	if predicate == "" {
		return candidates, nil
	}
	prg, err := expr.Compile(predicate)
	if err != nil {
		return nil, fmt.Errorf("compiling predicate: %w", err)
	}
	res := make([]*ir.Node, 0, len(candidates))
	for _, c := range candidates {
		ok, err := eval(prg, c)
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, c)
		}
	}
	return res, nil
}

func eval(prg *vm.Program, n *ir.Node) (bool, error) {
	var env any
	if n.Type == ir.ObjectType {
		env = ir.Untyped(n)
	} else {
		env = map[string]any{"value": ir.Untyped(n)}
	}
	out, err := expr.Run(prg, env)
	if err != nil {
		return false, fmt.Errorf("evaluating predicate: %w", err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("predicate returned %T, want bool", out)
	}
	return b, nil
}
