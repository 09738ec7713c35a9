package component

import (
	"context"
	"errors"
	"reflect"

	"github.com/biruisred/IdleGear/internal/event"
	"github.com/biruisred/IdleGear/internal/logging"
	"github.com/biruisred/IdleGear/internal/task"
)

// ErrNoScheduler is returned by Env.Go when the session runs no background
// tasks.
var ErrNoScheduler = errors.New("no background scheduler")

// Locator finds a live component by capability.
type Locator interface {
	Locate(capability reflect.Type) (Component, bool)
}

// Scheduler steps background tasks once per host tick. *task.Runner
// implements it.
type Scheduler interface {
	Start(t task.Task, onDone func(error)) task.Handle
	Cancel(h task.Handle) bool
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithScheduler lets components start background tasks with Env.Go.
func WithScheduler(s Scheduler) EnvOption {
	return func(e *Env) { e.sched = s }
}

// Env is the per-session context handed to every hook. A new Env is built on
// every Create, so nothing leaks from one session into the next.
type Env struct {
	ctx     context.Context
	bus     *event.Bus
	log     *logging.Logger
	locator Locator
	sched   Scheduler
}

// NewEnv creates an Env. ctx is the session's cancellation scope.
func NewEnv(ctx context.Context, bus *event.Bus, log *logging.Logger, locator Locator, opts ...EnvOption) *Env {
	if log == nil {
		log = logging.Nop()
	}
	e := &Env{ctx: ctx, bus: bus, log: log, locator: locator}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Context returns the session scope. It is cancelled when the session is
// destroyed.
func (e *Env) Context() context.Context { return e.ctx }

// Done is shorthand for Context().Done().
func (e *Env) Done() <-chan struct{} { return e.ctx.Done() }

// Cancelled reports whether the session scope has been cancelled.
func (e *Env) Cancelled() bool { return e.ctx.Err() != nil }

// Bus returns the session's event bus.
func (e *Env) Bus() *event.Bus { return e.bus }

// Logger returns the runtime logger.
func (e *Env) Logger() *logging.Logger { return e.log }

// Go runs t in the background until it finishes or the session is
// destroyed. A failure is logged. Long-running tasks should poll Cancelled.
func (e *Env) Go(t task.Task) error {
	_, err := e.Start(t)
	return err
}

// Start is like Go but returns a handle for Cancel.
func (e *Env) Start(t task.Task) (task.Handle, error) {
	if t == nil {
		return 0, task.ErrNilTask
	}
	if e.sched == nil {
		return 0, ErrNoScheduler
	}
	return e.sched.Start(t, func(err error) {
		if err != nil {
			e.log.Error("background task failed: %v", err)
		}
	}), nil
}

// Cancel stops a background task started with Start. Suspended routines
// inside it are stopped. It reports whether the task was still scheduled.
func (e *Env) Cancel(h task.Handle) bool {
	if e.sched == nil {
		return false
	}
	return e.sched.Cancel(h)
}

// Get returns the live component assignable to T, preferring an exact type
// match. Misses are logged by the locator.
//
//	wallet, ok := component.Get[*idlegear.Wallet](env)
func Get[T any](env *Env) (T, bool) {
	var zero T
	if env == nil || env.locator == nil {
		return zero, false
	}
	c, ok := env.locator.Locate(reflect.TypeFor[T]())
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}
