package registry

import "github.com/biruisred/IdleGear/internal/component"

// hierarchy answers ancestry questions across all enumerated types, so a
// script can extend a Go component and vice versa.
type hierarchy struct {
	types     map[string]*component.Type
	ancestors map[string]map[string]bool
}

func newHierarchy(types []*component.Type) *hierarchy {
	h := &hierarchy{
		types:     make(map[string]*component.Type, len(types)),
		ancestors: make(map[string]map[string]bool, len(types)),
	}
	for _, t := range types {
		h.types[t.Name] = t
	}
	return h
}

// ancestorsOf returns the transitive closure of name's Extends lists.
func (h *hierarchy) ancestorsOf(name string) map[string]bool {
	if a, ok := h.ancestors[name]; ok {
		return a
	}
	out := make(map[string]bool)
	// Mark before recursing so a cycle in script manifests terminates.
	h.ancestors[name] = out

	t, ok := h.types[name]
	if !ok {
		return out
	}
	for _, parent := range t.Extends {
		if parent == name {
			continue
		}
		out[parent] = true
		for a := range h.ancestorsOf(parent) {
			if a != name {
				out[a] = true
			}
		}
	}
	return out
}

func (h *hierarchy) isSubtype(child, parent string) bool {
	if child == parent {
		return false
	}
	if parent == component.BaseName {
		return true
	}
	return h.ancestorsOf(child)[parent]
}

func (h *hierarchy) isPrimary(name string) bool {
	if t, ok := h.types[name]; ok && t.Primary {
		return true
	}
	for a := range h.ancestorsOf(name) {
		if t, ok := h.types[a]; ok && t.Primary {
			return true
		}
	}
	return false
}
