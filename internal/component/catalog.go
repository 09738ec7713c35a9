package component

import (
	"fmt"
	"slices"
)

// Provider enumerates the concrete component types available to a session.
type Provider interface {
	Enumerate() ([]*Type, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() ([]*Type, error)

// Enumerate calls f.
func (f ProviderFunc) Enumerate() ([]*Type, error) { return f() }

// Catalog is an explicit registration list. Types are enumerated in the
// order they were added.
type Catalog struct {
	types  []*Type
	byName map[string]*Type
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]*Type)}
}

// Add registers t.
func (c *Catalog) Add(t *Type) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if _, ok := c.byName[t.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, t.Name)
	}
	c.types = append(c.types, t)
	c.byName[t.Name] = t
	return nil
}

// Register adds the Go component type T to c.
func Register[T any, PT interface {
	*T
	Component
}](c *Catalog) error {
	return c.Add(Define[T, PT]())
}

// Lookup returns the type registered under name.
func (c *Catalog) Lookup(name string) (*Type, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// Len returns the number of registered types.
func (c *Catalog) Len() int {
	return len(c.types)
}

// Enumerate implements Provider.
func (c *Catalog) Enumerate() ([]*Type, error) {
	return slices.Clone(c.types), nil
}
