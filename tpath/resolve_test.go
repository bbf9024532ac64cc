package tpath_test

import (
	"errors"
	"testing"

	"github.com/signadot/tupletree"
	"github.com/signadot/tupletree/ir"
	"github.com/signadot/tupletree/schema"
	"github.com/signadot/tupletree/tpath"
)

const resolveSchema = `
root: Binary
types:
  - name: FunctionKind
    enum: [Invalid, Entry, Exit]
  - name: Function
    abstract: true
    kind: FunctionKind
    key: [Name, Kind]
    fields:
      - name: Name
        type: string
      - name: Kind
        type: FunctionKind
  - name: Entry
    inherits: Function
    fields:
      - name: StackSize
        type: int
        optional: true
  - name: Exit
    inherits: Function
  - name: Info
    fields:
      - name: Version
        type: string
        optional: true
  - name: Binary
    fields:
      - name: Name
        type: string
        optional: true
      - name: Info
        type: Info
        optional: true
      - name: Functions
        type: Function
        array: true
        optional: true
`

func resolveFixture(t *testing.T) (*schema.Registry, *ir.Node) {
	t.Helper()
	reg, err := schema.Load([]byte(resolveSchema))
	if err != nil {
		t.Fatalf("loading schema: %v", err)
	}
	doc, err := tupletree.Build(reg, "Binary", map[string]any{
		"Name": "pong",
		"Info": map[string]any{"Version": "1.2"},
		"Functions": []any{
			map[string]any{"Name": "main", "Kind": "Entry", "StackSize": 16},
			map[string]any{"Name": "fini", "Kind": "Exit"},
		},
	})
	if err != nil {
		t.Fatalf("building document: %v", err)
	}
	return reg, doc
}

func TestResolveType(t *testing.T) {
	reg, _ := resolveFixture(t)
	tests := []struct {
		path  string
		typ   string
		array bool
	}{
		{"/", "Binary", false},
		{"/Name", "string", false},
		{"/Info/Version", "string", false},
		{"/Functions", "Function", true},
		{"/Functions/main-Entry", "Entry", false},
		{"/Functions/fini-Exit", "Exit", false},
		{"/Functions/main-Entry/Name", "string", false},
		{"/Functions/main-Entry/Entry::StackSize", "int", false},
		// once the key specialized the element type, the prefix is optional
		{"/Functions/main-Entry/StackSize", "int", false},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			fd, err := tpath.ResolveType(reg, "Binary", tc.path)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if fd.Type != tc.typ || fd.Array != tc.array {
				t.Errorf("got %s (array=%v), want %s (array=%v)",
					fd.Type, fd.Array, tc.typ, tc.array)
			}
		})
	}
}

func TestResolveTypeErrors(t *testing.T) {
	reg, _ := resolveFixture(t)
	for _, path := range []string{
		"/Bogus",
		"/Name/Deeper",
		"/Functions/main-Entry/Exit::StackSize",
		"/Info/Version/More",
	} {
		t.Run(path, func(t *testing.T) {
			if _, err := tpath.ResolveType(reg, "Binary", path); !errors.Is(err, tpath.ErrPathResolution) {
				t.Errorf("got %v, want ErrPathResolution", err)
			}
		})
	}
}

func TestResolveValue(t *testing.T) {
	reg, doc := resolveFixture(t)
	tests := []struct {
		path string
		text string
	}{
		{"/Name", "pong"},
		{"/Info/Version", "1.2"},
		{"/Functions/main-Entry/Entry::StackSize", "16"},
		{"/Functions/fini-Exit/Kind", "Exit"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			n, err := tpath.ResolveValue(reg, doc, tc.path)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got := ir.Text(n); got != tc.text {
				t.Errorf("got %q, want %q", got, tc.text)
			}
		})
	}
	root, err := tpath.ResolveValue(reg, doc, "/")
	if err != nil || root != doc {
		t.Errorf("root path must resolve to the document itself: %v", err)
	}
}

func TestResolveValueErrors(t *testing.T) {
	reg, doc := resolveFixture(t)
	for _, path := range []string{
		"/Functions/ghost-Entry",
		"/Functions/ghost-Entry/Name",
		"/Functions/main-Entry/Exit::Kind", // node kind does not match
		"/Bogus",
	} {
		t.Run(path, func(t *testing.T) {
			if _, err := tpath.ResolveValue(reg, doc, path); !errors.Is(err, tpath.ErrPathResolution) {
				t.Errorf("got %v, want ErrPathResolution", err)
			}
		})
	}
}

func TestResolveParent(t *testing.T) {
	reg, doc := resolveFixture(t)
	parent, field, err := tpath.ResolveParent(reg, doc, "/Functions/main-Entry/Entry::StackSize")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if field != "StackSize" {
		t.Errorf("field %q, want StackSize with the variant prefix stripped", field)
	}
	if ir.Text(parent.Get("Name")) != "main" {
		t.Error("parent is not the addressed element")
	}
	if _, _, err := tpath.ResolveParent(reg, doc, "/"); !errors.Is(err, tpath.ErrPathResolution) {
		t.Errorf("root has no parent: got %v", err)
	}
}
