// Package typetree resolves the most-derived members of a set of related types.
//
// A Tree is rooted at an abstract base key. Every inserted key is placed below
// its nearest inserted ancestor, so that once all keys are present the leaves
// of the tree are exactly the keys that no other inserted key extends, even
// when a key extends several others. The result does not depend on
// insertion order.
package typetree

// SubtypeFunc reports whether child extends parent, directly or indirectly.
// It must be irreflexive: SubtypeFunc(k, k) is false.
type SubtypeFunc[K comparable] func(child, parent K) bool

type node[K comparable] struct {
	key      K
	children []*node[K]
}

// Tree is a hierarchy of keys ordered by a subtype relation.
// A Tree is not safe for concurrent use.
type Tree[K comparable] struct {
	root      *node[K]
	isSubtype SubtypeFunc[K]
	index     map[K]*node[K]
}

// New creates a tree rooted at root.
func New[K comparable](root K, isSubtype SubtypeFunc[K]) *Tree[K] {
	r := &node[K]{key: root}
	return &Tree[K]{
		root:      r,
		isSubtype: isSubtype,
		index:     map[K]*node[K]{root: r},
	}
}

// Root returns the root key.
func (t *Tree[K]) Root() K {
	return t.root.key
}

// Insert adds k to the tree.
// It returns false if k does not extend the root. Inserting a key that is
// already present is a no-op that returns true.
func (t *Tree[K]) Insert(k K) bool {
	if _, ok := t.index[k]; ok {
		return true
	}
	if !t.isSubtype(k, t.root.key) {
		return false
	}
	t.insert(t.root, k)
	return true
}

// insert places k somewhere below parent. The caller guarantees k extends parent.
func (t *Tree[K]) insert(parent *node[K], k K) {
	for _, child := range parent.children {
		if t.isSubtype(k, child.key) {
			t.insert(child, k)
			return
		}
	}

	n := &node[K]{key: k}
	t.index[k] = n

	// Existing siblings that extend k move under it.
	kept := parent.children[:0]
	for _, child := range parent.children {
		if t.isSubtype(child.key, k) {
			n.children = append(n.children, child)
			continue
		}
		kept = append(kept, child)
	}
	clear(parent.children[len(kept):])
	parent.children = append(kept, n)
}

// Contains reports whether k has been inserted (or is the root).
func (t *Tree[K]) Contains(k K) bool {
	_, ok := t.index[k]
	return ok
}

// Len returns the number of inserted keys, excluding the root.
func (t *Tree[K]) Len() int {
	return len(t.index) - 1
}

// Leaves returns the inserted keys that no other inserted key extends, in
// depth-first order. A key with several parents sits below only one of
// them, so childless nodes are checked against every key.
// The root is never reported, even when the tree is empty.
func (t *Tree[K]) Leaves() []K {
	var out []K
	t.Walk(func(k K, depth int) {
		if depth > 0 && len(t.index[k].children) == 0 && !t.extended(k) {
			out = append(out, k)
		}
	})
	return out
}

// extended reports whether any inserted key extends k.
func (t *Tree[K]) extended(k K) bool {
	for other := range t.index {
		if other != k && other != t.root.key && t.isSubtype(other, k) {
			return true
		}
	}
	return false
}

// Parent returns the key directly above k in the tree.
func (t *Tree[K]) Parent(k K) (K, bool) {
	var (
		parent K
		found  bool
	)
	var visit func(n *node[K]) bool
	visit = func(n *node[K]) bool {
		for _, c := range n.children {
			if c.key == k {
				parent, found = n.key, true
				return true
			}
			if visit(c) {
				return true
			}
		}
		return false
	}
	visit(t.root)
	return parent, found
}

// Walk visits every node depth-first, starting with the root at depth 0.
func (t *Tree[K]) Walk(fn func(k K, depth int)) {
	var visit func(n *node[K], depth int)
	visit = func(n *node[K], depth int) {
		fn(n.key, depth)
		for _, c := range n.children {
			visit(c, depth+1)
		}
	}
	visit(t.root, 0)
}
