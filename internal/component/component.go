// Package component defines the singleton modules driven by the runtime.
//
// A component is a struct that embeds Base (directly or through another
// component) and overrides the lifecycle hooks it cares about:
//
//	type Wallet struct {
//	    component.Base
//	    gold int
//	}
//
//	func (w *Wallet) Initialize(env *component.Env) task.Task {
//	    return task.Func(func(ctx context.Context) error {
//	        return event.Publish(ctx, env.Bus(), events.GoldChanged{Current: w.gold})
//	    })
//	}
//
// Embedding another component type extends it: when both are registered, only
// the most-derived one is instantiated.
package component

import (
	"github.com/biruisred/IdleGear/internal/logging"
	"github.com/biruisred/IdleGear/internal/task"
)

// DefaultPriority is the priority of components that do not override it.
const DefaultPriority = 999

// Component is a lifecycle participant. Implementations must embed Base.
//
// Phase hooks return the work to drive; the runtime steps each component's
// task to completion before moving on to the next component.
type Component interface {
	// Priority orders components within a phase, lowest first.
	Priority() int

	Initialize(env *Env) task.Task
	PostInitialize(env *Env) task.Task
	StartSession(env *Env) task.Task
	PostStartSession(env *Env) task.Task
	EndSession(env *Env) task.Task

	// Destroy releases resources. It must not suspend.
	Destroy(env *Env)

	base() *Base
}

// Base provides default hooks that finish immediately.
type Base struct {
	name string
	log  *logging.Logger
}

func (b *Base) base() *Base { return b }

// Priority returns DefaultPriority.
func (b *Base) Priority() int { return DefaultPriority }

// Initialize does nothing.
func (b *Base) Initialize(*Env) task.Task { return task.Completed() }

// PostInitialize does nothing.
func (b *Base) PostInitialize(*Env) task.Task { return task.Completed() }

// StartSession does nothing.
func (b *Base) StartSession(*Env) task.Task { return task.Completed() }

// PostStartSession does nothing.
func (b *Base) PostStartSession(*Env) task.Task { return task.Completed() }

// EndSession does nothing.
func (b *Base) EndSession(*Env) task.Task { return task.Completed() }

// Destroy does nothing.
func (b *Base) Destroy(*Env) {}

// Name returns the registered type name once the component is attached.
func (b *Base) Name() string { return b.name }

// Log returns a logger tagged with the component name.
func (b *Base) Log() *logging.Logger {
	if b.log == nil {
		return logging.Nop()
	}
	return b.log
}

// Attach records the registered name and logger on c. The registry calls it
// right after construction.
func Attach(c Component, name string, log *logging.Logger) {
	b := c.base()
	b.name = name
	if log != nil {
		b.log = log.WithComponent(name)
	}
}

// NameOf returns the name c was attached with.
func NameOf(c Component) string {
	return c.base().name
}

// Primary is implemented by components that own the user session.
// At most one primary component is instantiated, and it always runs first.
type Primary interface {
	Component
	primary()
}

// PrimaryBase is embedded instead of Base by primary components.
type PrimaryBase struct {
	Base
}

func (*PrimaryBase) primary() {}

// IsPrimary reports whether c is a primary component.
func IsPrimary(c Component) bool {
	_, ok := c.(Primary)
	return ok
}
