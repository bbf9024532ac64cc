package ir

import (
	"slices"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b *Node
		want int
	}{
		{"nil both", nil, nil, 0},
		{"nil first", nil, FromInt(0), -1},
		{"by type", FromBool(true), FromInt(0), -1},
		{"ints", FromInt(1), FromInt(2), -1},
		{"strings", FromString("b"), FromString("a"), 1},
		{"enum before plain by type name", FromString("a"), FromEnum("K", "a"), -1},
		{"refs", FromRef("/A"), FromRef("/B"), -1},
		{"equal objects", obj("T", "A", FromInt(1)), obj("T", "A", FromInt(1)), 0},
		{"objects by value", obj("T", "A", FromInt(1)), obj("T", "A", FromInt(2)), -1},
		{"objects by field name", obj("T", "A", FromInt(1)), obj("T", "B", FromInt(1)), -1},
		{"prefix object first", obj("T", "A", FromInt(1)), obj("T", "A", FromInt(1), "B", FromInt(2)), -1},
		{
			"arrays element-wise",
			FromSlice("int", []*Node{FromInt(1), FromInt(3)}),
			FromSlice("int", []*Node{FromInt(1), FromInt(2)}),
			1,
		},
		{
			"prefix array first",
			FromSlice("int", []*Node{FromInt(1)}),
			FromSlice("int", []*Node{FromInt(1), FromInt(2)}),
			-1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Compare(tc.a, tc.b); got != tc.want {
				t.Errorf("Compare = %d, want %d", got, tc.want)
			}
			if got := Compare(tc.b, tc.a); got != -tc.want {
				t.Errorf("Compare reversed = %d, want %d", got, -tc.want)
			}
		})
	}
}

func TestCompareAgreesWithEqual(t *testing.T) {
	nodes := []*Node{
		Null(),
		FromBool(false),
		FromInt(7),
		FromString("x"),
		FromRef("/X"),
		obj("T", "A", FromInt(1)),
		FromSlice("int", []*Node{FromInt(1)}),
	}
	for _, a := range nodes {
		for _, b := range nodes {
			if (Compare(a, b) == 0) != Equal(a, b) {
				t.Errorf("Compare and Equal disagree on %v vs %v", a.Type, b.Type)
			}
		}
	}
}

func TestCompareSortsStably(t *testing.T) {
	ns := []*Node{FromInt(3), FromInt(1), FromInt(2)}
	slices.SortFunc(ns, Compare)
	for i, want := range []int64{1, 2, 3} {
		if ns[i].Int64 != want {
			t.Fatalf("sorted order %v", []int64{ns[0].Int64, ns[1].Int64, ns[2].Int64})
		}
	}
}
