package codec_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/signadot/tupletree"
	"github.com/signadot/tupletree/codec"
	"github.com/signadot/tupletree/ir"
	"github.com/signadot/tupletree/schema"
	"github.com/signadot/tupletree/tpath"
)

const codecSchema = `
root: Binary
types:
  - name: Architecture
    enum: [Invalid, x86_64, aarch64]
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
      - name: CustomName
        type: string
        optional: true
  - name: Entry
    inherits: Function
    fields:
      - name: StackSize
        type: int
        optional: true
  - name: Exit
    inherits: Function
  - name: Binary
    fields:
      - name: Name
        type: string
        optional: true
      - name: Architecture
        type: Architecture
        optional: true
      - name: EntryPoint
        type: Function
        reference: true
        optional: true
      - name: Functions
        type: Function
        array: true
        optional: true
      - name: Tags
        type: string
        array: true
        optional: true
`

func codecRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.Load([]byte(codecSchema))
	if err != nil {
		t.Fatalf("loading schema: %v", err)
	}
	return reg
}

func TestRenderNormalizes(t *testing.T) {
	reg := codecRegistry(t)
	// defaults written out explicitly disappear on re-render
	src := `--- !Binary
Name: pong
Architecture: Invalid
EntryPoint: /Functions/main-Entry
Functions:
  - Name: main
    Kind: Entry
    CustomName: ""
    StackSize: 0
Tags: []
`
	want := `--- !Binary
Name: pong
EntryPoint: /Functions/main-Entry
Functions:
  - Name: main
    Kind: Entry
`
	doc, err := codec.Parse(reg, "Binary", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, err := codec.Render(reg, doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(got) != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	reg := codecRegistry(t)
	docs := []string{
		`--- !Binary
Name: pong
Architecture: x86_64
Functions:
  - Name: main
    Kind: Entry
    StackSize: 16
  - Name: fini
    Kind: Exit
Tags:
  - release
  - stripped
`,
		`--- !Binary
{}
`,
	}
	for _, src := range docs {
		doc, err := codec.Parse(reg, "Binary", []byte(src))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		text, err := codec.Render(reg, doc)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		again, err := codec.Parse(reg, "Binary", text)
		if err != nil {
			t.Fatalf("re-parse of:\n%s\n%v", text, err)
		}
		if !ir.Equal(doc, again) {
			t.Errorf("round trip changed the document:\n%s", text)
		}
		text2, err := codec.Render(reg, again)
		if err != nil {
			t.Fatalf("re-render: %v", err)
		}
		if string(text) != string(text2) {
			t.Errorf("rendering is not stable:\n%s\nvs:\n%s", text, text2)
		}
	}
}

func TestStringQuoting(t *testing.T) {
	reg := codecRegistry(t)
	values := []string{
		"?starts with the complex key indicator",
		": starts with a colon",
		"-dash",
		"123",
		"1.5",
		"true",
		"null",
		"trailing space ",
		"has: colon space",
		"ends with colon:",
		"plain",
		"x86_64",
	}
	for _, v := range values {
		t.Run(v, func(t *testing.T) {
			doc, err := tupletree.Build(reg, "Binary", map[string]any{"Name": v})
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			text, err := codec.Render(reg, doc)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			again, err := codec.Parse(reg, "Binary", text)
			if err != nil {
				t.Fatalf("re-parse of:\n%s\n%v", text, err)
			}
			if got := ir.Text(again.Get("Name")); got != v {
				t.Errorf("round trip gave %q, want %q\nrendered:\n%s", got, v, text)
			}
		})
	}
}

func TestParseTag(t *testing.T) {
	reg := codecRegistry(t)
	if _, err := codec.Parse(reg, "Binary", []byte("--- !Segment\nName: x\n")); !errors.Is(err, codec.ErrParse) {
		t.Errorf("wrong tag: got %v", err)
	}
	// untagged documents bind against the requested root
	doc, err := codec.Parse(reg, "Binary", []byte("Name: x\n"))
	if err != nil {
		t.Fatalf("untagged parse: %v", err)
	}
	if ir.Text(doc.Get("Name")) != "x" {
		t.Error("untagged document did not bind")
	}
}

func TestParseStrict(t *testing.T) {
	reg := codecRegistry(t)
	if _, err := codec.Parse(reg, "Binary", []byte("Bogus: 1\n")); !errors.Is(err, tupletree.ErrTypeMismatch) {
		t.Errorf("undeclared field: got %v", err)
	}
	if _, err := codec.Parse(reg, "Binary", []byte("")); !errors.Is(err, codec.ErrParse) {
		t.Errorf("empty document: got %v", err)
	}
}

func TestDiffCodecRoundTrip(t *testing.T) {
	reg := codecRegistry(t)
	oldDoc, err := codec.Parse(reg, "Binary", []byte(`--- !Binary
Name: pong
Functions:
  - Name: main
    Kind: Entry
    StackSize: 16
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	newDoc, err := codec.Parse(reg, "Binary", []byte(`--- !Binary
Name: ping
Functions:
  - Name: main
    Kind: Entry
    StackSize: 32
  - Name: fini
    Kind: Exit
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ds, err := tupletree.Diff(reg, oldDoc, newDoc)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	text, err := codec.RenderDiff(reg, ds)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(string(text), "--- !DiffSet\n") {
		t.Errorf("change sets carry the DiffSet tag, got:\n%s", text)
	}
	parsed, err := codec.ParseDiff(reg, "Binary", text)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	text2, err := codec.RenderDiff(reg, parsed)
	if err != nil {
		t.Fatalf("re-render: %v", err)
	}
	if string(text) != string(text2) {
		t.Errorf("diff rendering is not stable:\n%s\nvs:\n%s", text, text2)
	}
}

func TestParseDiffErrors(t *testing.T) {
	reg := codecRegistry(t)
	tests := []struct {
		name string
		src  string
		err  error
	}{
		{
			name: "neither add nor remove",
			src: `--- !DiffSet
Changes:
  - Path: /Name
`,
			err: codec.ErrParse,
		},
		{
			name: "wrong tag",
			src: `--- !Binary
Changes: []
`,
			err: codec.ErrParse,
		},
		{
			name: "unresolvable path",
			src: `--- !DiffSet
Changes:
  - Path: /Bogus
    Add: 1
`,
			err: tpath.ErrPathResolution,
		},
		{
			name: "value of the wrong type",
			src: `--- !DiffSet
Changes:
  - Path: /Name
    Add: [1, 2]
`,
			err: tupletree.ErrTypeMismatch,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := codec.ParseDiff(reg, "Binary", []byte(tc.src)); !errors.Is(err, tc.err) {
				t.Errorf("got %v, want %v", err, tc.err)
			}
		})
	}
}

func TestRenderValue(t *testing.T) {
	reg := codecRegistry(t)
	fn, err := tupletree.Build(reg, "Function", map[string]any{
		"Name": "main", "Kind": "Entry", "StackSize": 16,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got, err := codec.RenderValue(reg, fn)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "Name: main\nKind: Entry\nStackSize: 16\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	scalar, err := codec.RenderValue(reg, ir.FromInt(42))
	if err != nil || scalar != "42\n" {
		t.Errorf("scalar value: %q, %v", scalar, err)
	}
}
