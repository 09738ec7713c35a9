package component

import (
	"errors"
	"fmt"
	"reflect"
)

// Errors returned when defining or registering types.
var (
	// ErrInvalidType is returned for descriptors missing a name or factory.
	ErrInvalidType = errors.New("invalid component type")

	// ErrDuplicateType is returned when a name is registered twice.
	ErrDuplicateType = errors.New("duplicate component type")
)

var (
	baseType        = reflect.TypeFor[Base]()
	primaryBaseType = reflect.TypeFor[PrimaryBase]()
	componentIface  = reflect.TypeFor[Component]()
	primaryIface    = reflect.TypeFor[Primary]()
)

// BaseName is the name of the root of every component hierarchy.
var BaseName = TypeName(baseType)

// TypeName returns the registry name of a struct type.
func TypeName(rt reflect.Type) string {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt.String()
}

// Type describes a concrete component type.
type Type struct {
	// Name identifies the type in the registry.
	Name string

	// Extends lists the component types this type is derived from. It may
	// be partial; the registry follows the chain through other registered
	// types. An empty list means the type derives from Base only.
	Extends []string

	// Primary marks types whose instances own the user session.
	Primary bool

	// New constructs the single instance.
	New func() Component

	// Source says where the type came from, for logs.
	Source string
}

// Validate checks the descriptor.
func (t *Type) Validate() error {
	switch {
	case t == nil:
		return fmt.Errorf("%w: nil descriptor", ErrInvalidType)
	case t.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidType)
	case t.Name == BaseName || t.Name == TypeName(primaryBaseType):
		return fmt.Errorf("%w: %s is abstract", ErrInvalidType, t.Name)
	case t.New == nil:
		return fmt.Errorf("%w: %s has no factory", ErrInvalidType, t.Name)
	}
	return nil
}

// String returns the type name.
func (t *Type) String() string {
	return t.Name
}

// Define describes the Go component type T. The ancestor chain is read from
// T's embedded fields.
func Define[T any, PT interface {
	*T
	Component
}]() *Type {
	rt := reflect.TypeFor[T]()
	return &Type{
		Name:    TypeName(rt),
		Extends: embeddedComponents(rt),
		Primary: reflect.PointerTo(rt).Implements(primaryIface),
		New:     func() Component { return PT(new(T)) },
		Source:  "go",
	}
}

// embeddedComponents returns every component struct type embedded in rt,
// nearest first, excluding Base and PrimaryBase.
func embeddedComponents(rt reflect.Type) []string {
	var out []string
	seen := map[reflect.Type]bool{}
	queue := []reflect.Type{rt}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for i := 0; i < cur.NumField(); i++ {
			f := cur.Field(i)
			if !f.Anonymous {
				continue
			}
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() != reflect.Struct || seen[ft] {
				continue
			}
			seen[ft] = true
			if ft == baseType || ft == primaryBaseType {
				continue
			}
			if reflect.PointerTo(ft).Implements(componentIface) {
				out = append(out, TypeName(ft))
			}
			queue = append(queue, ft)
		}
	}
	return out
}
