package tupletree_test

import (
	"errors"
	"testing"

	"github.com/signadot/tupletree"
	"github.com/signadot/tupletree/ir"
	"github.com/signadot/tupletree/tpath"
)

const derefDoc = `--- !Binary
EntryPoint: /Functions/main-Entry
Functions:
  - Name: main
    Kind: Entry
    Callee: /Functions/helper-Plain
  - Name: helper
    Kind: Plain
`

func TestDeref(t *testing.T) {
	reg := testRegistry(t)
	doc := mustDoc(t, reg, derefDoc)
	ep := doc.Get("EntryPoint")
	target, err := tupletree.Deref(reg, doc, ep)
	if err != nil {
		t.Fatalf("deref: %v", err)
	}
	if ir.Text(target.Get("Name")) != "main" {
		t.Errorf("dereferenced %q, want the main function", ir.Text(target.Get("Name")))
	}
	if ep.Target != target {
		t.Error("deref must cache the resolved target")
	}
	if ep.Clone().Target != nil {
		t.Error("clone must drop the cached target")
	}
}

func TestDerefChain(t *testing.T) {
	reg := testRegistry(t)
	doc := mustDoc(t, reg, derefDoc)
	main, err := tupletree.Resolve(reg, doc, "/Functions/main-Entry")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	callee, err := tupletree.Deref(reg, doc, main.Get("Callee"))
	if err != nil {
		t.Fatalf("deref: %v", err)
	}
	if ir.Text(callee.Get("Name")) != "helper" {
		t.Errorf("callee %q, want helper", ir.Text(callee.Get("Name")))
	}
}

func TestDerefErrors(t *testing.T) {
	reg := testRegistry(t)
	doc := mustDoc(t, reg, derefDoc)
	if _, err := tupletree.Deref(reg, doc, ir.FromRef("")); !errors.Is(err, tupletree.ErrMalformedReference) {
		t.Errorf("empty reference: got %v", err)
	}
	if _, err := tupletree.Deref(reg, doc, ir.FromString("x")); !errors.Is(err, tupletree.ErrMalformedReference) {
		t.Errorf("non-reference node: got %v", err)
	}
	if _, err := tupletree.Deref(reg, doc, ir.FromRef("/Functions/ghost-Plain")); !errors.Is(err, tpath.ErrPathResolution) {
		t.Errorf("dangling reference: got %v", err)
	}
}
