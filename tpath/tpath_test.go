package tpath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		path string
		want []Component
	}{
		{"", nil},
		{"/", nil},
		{"/Name", []Component{{Raw: "Name", Field: "Name"}}},
		{"Name", []Component{{Raw: "Name", Field: "Name"}}},
		{
			"/Functions/main-Entry",
			[]Component{
				{Raw: "Functions", Field: "Functions"},
				{Raw: "main-Entry", Field: "main-Entry"},
			},
		},
		{
			"/Functions/main-Entry/Entry::StackSize",
			[]Component{
				{Raw: "Functions", Field: "Functions"},
				{Raw: "main-Entry", Field: "main-Entry"},
				{Raw: "Entry::StackSize", Variant: "Entry", Field: "StackSize"},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got := Parse(tc.path)
			if len(got) == 0 {
				got = nil
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("components mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	if got := Join("", "Name"); got != "/Name" {
		t.Errorf("Join at root = %q", got)
	}
	if got := Join("/Functions", "main-Entry"); got != "/Functions/main-Entry" {
		t.Errorf("Join = %q", got)
	}
}
