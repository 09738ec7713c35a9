// Package registry instantiates and holds the components of one session.
package registry

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/biruisred/IdleGear/internal/component"
	"github.com/biruisred/IdleGear/internal/logging"
	"github.com/biruisred/IdleGear/internal/typetree"
)

// Options configures Build.
type Options struct {
	// Logger is bound to every instantiated component.
	Logger *logging.Logger

	// Sink receives discovery messages, conflicts and lookup misses.
	// It defaults to Logger.
	Sink logging.Sink

	// Disabled lists type names that must not be instantiated.
	Disabled []string
}

// Registry maps component type names to their single instance and keeps the
// execution order: the primary component first, then the rest by priority.
// A Registry is not safe for concurrent use.
type Registry struct {
	log       *logging.Logger
	sink      logging.Sink
	instances map[string]component.Component
	order     []component.Component
	primary   component.Component
}

// Build enumerates every provider, keeps the most-derived types, and
// instantiates one component per remaining type.
func Build(opts Options, providers ...component.Provider) (*Registry, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	sink := opts.Sink
	if sink == nil {
		sink = log
	}
	r := &Registry{
		log:       log,
		sink:      sink,
		instances: make(map[string]component.Component),
	}

	types, err := r.enumerate(providers)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		r.report(logging.LevelError, "no component types found")
		return r, nil
	}

	h := newHierarchy(types)
	tree := typetree.New(component.BaseName, h.isSubtype)
	for _, t := range types {
		tree.Insert(t.Name)
	}
	tree.Walk(func(name string, depth int) {
		r.report(logging.LevelDebug, "%s%s", strings.Repeat("  ", depth), name)
	})

	leaves := make(map[string]bool)
	for _, name := range tree.Leaves() {
		leaves[name] = true
	}

	var primaries, rest []*component.Type
	for _, t := range types {
		switch {
		case !leaves[t.Name]:
			r.report(logging.LevelDebug, "skipping %s: extended by another component", t.Name)
		case slices.Contains(opts.Disabled, t.Name):
			r.report(logging.LevelInfo, "skipping %s: disabled", t.Name)
		case h.isPrimary(t.Name):
			primaries = append(primaries, t)
		default:
			rest = append(rest, t)
		}
	}

	if len(primaries) > 1 {
		discarded := make([]string, 0, len(primaries)-1)
		for _, t := range primaries[1:] {
			discarded = append(discarded, t.Name)
		}
		r.report(logging.LevelError, "primary component conflict: using %s, discarding %s",
			primaries[0].Name, strings.Join(discarded, ", "))
	}
	if len(primaries) > 0 {
		r.primary = r.instantiate(primaries[0])
	}

	others := make([]component.Component, 0, len(rest))
	for _, t := range rest {
		others = append(others, r.instantiate(t))
	}
	slices.SortStableFunc(others, func(a, b component.Component) int {
		return cmp.Compare(a.Priority(), b.Priority())
	})

	if r.primary != nil {
		r.order = append(r.order, r.primary)
	}
	r.order = append(r.order, others...)

	for _, c := range r.order {
		r.report(logging.LevelInfo, "%d %s", c.Priority(), component.NameOf(c))
	}
	r.report(logging.LevelInfo, "created %d components", len(r.order))
	return r, nil
}

func (r *Registry) enumerate(providers []component.Provider) ([]*component.Type, error) {
	var types []*component.Type
	seen := make(map[string]bool)
	for _, p := range providers {
		batch, err := p.Enumerate()
		if err != nil {
			return nil, fmt.Errorf("enumerate components: %w", err)
		}
		for _, t := range batch {
			if err := t.Validate(); err != nil {
				return nil, err
			}
			if seen[t.Name] {
				r.report(logging.LevelWarn, "component %s provided twice, keeping the first", t.Name)
				continue
			}
			seen[t.Name] = true
			types = append(types, t)
		}
	}
	return types, nil
}

func (r *Registry) report(level logging.Level, format string, args ...any) {
	r.sink.Log(level, fmt.Sprintf(format, args...))
}

func (r *Registry) instantiate(t *component.Type) component.Component {
	c := t.New()
	component.Attach(c, t.Name, r.log)
	r.instances[t.Name] = c
	return c
}

// Components returns the execution order.
func (r *Registry) Components() []component.Component {
	return slices.Clone(r.order)
}

// Primary returns the primary component, or nil if none was discovered.
func (r *Registry) Primary() component.Component {
	return r.primary
}

// Len returns the number of live components.
func (r *Registry) Len() int {
	return len(r.order)
}

// ByName returns the component registered under a type name.
func (r *Registry) ByName(name string) (component.Component, bool) {
	c, ok := r.instances[name]
	return c, ok
}

// Locate implements component.Locator. An instance whose dynamic type equals
// capability wins; otherwise the first instance in execution order that is
// assignable to it. A miss is logged.
func (r *Registry) Locate(capability reflect.Type) (component.Component, bool) {
	for _, c := range r.order {
		if reflect.TypeOf(c) == capability {
			return c, true
		}
	}
	for _, c := range r.order {
		if reflect.TypeOf(c).AssignableTo(capability) {
			return c, true
		}
	}
	r.report(logging.LevelError, "component %s not found", capability)
	return nil, false
}

// Lookup returns the component for capability T.
func Lookup[T any](r *Registry) (T, bool) {
	var zero T
	c, ok := r.Locate(reflect.TypeFor[T]())
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}

// Clear drops every instance.
func (r *Registry) Clear() {
	clear(r.instances)
	clear(r.order)
	r.order = r.order[:0]
	r.primary = nil
}
