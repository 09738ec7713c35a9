package typetree

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// hierarchy maps each key to its direct parent.
type hierarchy map[string]string

func (h hierarchy) isSubtype(child, parent string) bool {
	for p, ok := h[child]; ok; p, ok = h[p] {
		if p == parent {
			return true
		}
	}
	return false
}

var shapes = hierarchy{
	"B": "Base",
	"C": "Base",
	"D": "B",
	"E": "D",
	"F": "C",
}

func sortedLeaves(t *Tree[string]) []string {
	leaves := t.Leaves()
	sort.Strings(leaves)
	return leaves
}

func TestTree_LeavesExcludeExtendedTypes(t *testing.T) {
	tree := New("Base", shapes.isSubtype)
	for _, k := range []string{"Base", "B", "C", "D"} {
		tree.Insert(k)
	}

	if diff := cmp.Diff([]string{"C", "D"}, sortedLeaves(tree)); diff != "" {
		t.Errorf("Leaves() mismatch (-want +got):\n%s", diff)
	}
}

func TestTree_InsertIsIdempotent(t *testing.T) {
	tree := New("Base", shapes.isSubtype)
	tree.Insert("B")
	tree.Insert("D")
	before := tree.Len()

	if !tree.Insert("D") {
		t.Fatal("Insert of existing key returned false")
	}
	if !tree.Insert("Base") {
		t.Fatal("Insert of root returned false")
	}
	if tree.Len() != before {
		t.Errorf("Len() = %d after re-insert, want %d", tree.Len(), before)
	}
	if diff := cmp.Diff([]string{"D"}, tree.Leaves()); diff != "" {
		t.Errorf("Leaves() mismatch (-want +got):\n%s", diff)
	}
}

func TestTree_AncestorAfterDescendants(t *testing.T) {
	tree := New("Base", shapes.isSubtype)
	// E and F are present before their ancestors.
	for _, k := range []string{"E", "F", "C", "D", "B"} {
		tree.Insert(k)
	}

	if diff := cmp.Diff([]string{"E", "F"}, sortedLeaves(tree)); diff != "" {
		t.Errorf("Leaves() mismatch (-want +got):\n%s", diff)
	}
	if p, _ := tree.Parent("E"); p != "D" {
		t.Errorf("Parent(E) = %q, want D", p)
	}
	if p, _ := tree.Parent("D"); p != "B" {
		t.Errorf("Parent(D) = %q, want B", p)
	}
	if p, _ := tree.Parent("F"); p != "C" {
		t.Errorf("Parent(F) = %q, want C", p)
	}
}

func TestTree_AncestorReparentsAllSiblings(t *testing.T) {
	h := hierarchy{"A": "Base", "X": "A", "Y": "A", "Z": "Base"}
	tree := New("Base", h.isSubtype)
	tree.Insert("X")
	tree.Insert("Z")
	tree.Insert("Y")
	tree.Insert("A")

	for _, k := range []string{"X", "Y"} {
		if p, _ := tree.Parent(k); p != "A" {
			t.Errorf("Parent(%s) = %q, want A", k, p)
		}
	}
	if diff := cmp.Diff([]string{"X", "Y", "Z"}, sortedLeaves(tree)); diff != "" {
		t.Errorf("Leaves() mismatch (-want +got):\n%s", diff)
	}
}

func TestTree_OrderIndependent(t *testing.T) {
	orders := [][]string{
		{"B", "C", "D", "E", "F"},
		{"F", "E", "D", "C", "B"},
		{"D", "F", "B", "E", "C"},
		{"C", "E", "F", "B", "D"},
	}
	for _, order := range orders {
		tree := New("Base", shapes.isSubtype)
		for _, k := range order {
			tree.Insert(k)
		}
		if diff := cmp.Diff([]string{"E", "F"}, sortedLeaves(tree)); diff != "" {
			t.Errorf("order %v: Leaves() mismatch (-want +got):\n%s", order, diff)
		}
		if tree.Len() != len(order) {
			t.Errorf("order %v: Len() = %d, want %d", order, tree.Len(), len(order))
		}
	}
}

func TestTree_RejectsUnrelatedKey(t *testing.T) {
	tree := New("Base", shapes.isSubtype)
	if tree.Insert("Other") {
		t.Error("Insert(Other) = true, want false")
	}
	if tree.Contains("Other") {
		t.Error("Contains(Other) = true after rejected insert")
	}
	if got := tree.Leaves(); len(got) != 0 {
		t.Errorf("Leaves() = %v, want empty", got)
	}
}

func TestTree_Walk(t *testing.T) {
	tree := New("Base", shapes.isSubtype)
	tree.Insert("B")
	tree.Insert("D")

	var got []string
	var depths []int
	tree.Walk(func(k string, depth int) {
		got = append(got, k)
		depths = append(depths, depth)
	})
	if diff := cmp.Diff([]string{"Base", "B", "D"}, got); diff != "" {
		t.Errorf("Walk keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, depths); diff != "" {
		t.Errorf("Walk depths mismatch (-want +got):\n%s", diff)
	}
}

func TestTree_LeavesWithSeveralParents(t *testing.T) {
	parents := map[string][]string{
		"A":   {"Base"},
		"B":   {"Base"},
		"Mix": {"A", "B", "Base"},
	}
	isSubtype := func(child, parent string) bool {
		for _, p := range parents[child] {
			if p == parent {
				return true
			}
		}
		return false
	}

	orders := [][]string{
		{"A", "B", "Mix"},
		{"Mix", "A", "B"},
		{"B", "Mix", "A"},
	}
	for _, order := range orders {
		tree := New("Base", isSubtype)
		for _, k := range order {
			tree.Insert(k)
		}
		if diff := cmp.Diff([]string{"Mix"}, tree.Leaves()); diff != "" {
			t.Errorf("insert order %v: Leaves() mismatch (-want +got):\n%s", order, diff)
		}
	}
}
