// Package app drives components through the session lifecycle.
//
// The host creates one Runtime and calls, in order:
//
//	Create → Initialize → StartSession → EndSession → Destroy
//
// Initialize, StartSession and EndSession return tasks. Each task runs the
// phase's hook of every component one after another, in execution order,
// and must be driven to completion before the next phase is requested.
// After Destroy a new session may be created.
package app

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/biruisred/IdleGear/internal/component"
	"github.com/biruisred/IdleGear/internal/event"
	"github.com/biruisred/IdleGear/internal/event/events"
	"github.com/biruisred/IdleGear/internal/logging"
	"github.com/biruisred/IdleGear/internal/registry"
	"github.com/biruisred/IdleGear/internal/task"
)

// Options configures a Runtime.
type Options struct {
	// Logger receives lifecycle messages. Defaults to a discarding logger.
	Logger *logging.Logger

	// Providers enumerate the component types of every session.
	Providers []component.Provider

	// Disabled lists component type names to leave out.
	Disabled []string

	// Bus is the event bus shared with the host. A new bus is created if nil.
	Bus *event.Bus
}

// Runtime owns the registry, the event bus and the session scope.
// A Runtime is not safe for concurrent use.
type Runtime struct {
	opts    Options
	log     *logging.Logger
	bus     *event.Bus
	metrics *Metrics

	state    State
	session  int // bumped on Create and Destroy
	inFlight events.Phase
	reg      *registry.Registry
	env      *component.Env
	cancel   context.CancelFunc
	bg       *task.Runner
}

// New creates a Runtime in StateUninitialized.
func New(opts Options) *Runtime {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	bus := opts.Bus
	if bus == nil {
		bus = event.NewBus()
	}
	return &Runtime{
		opts:    opts,
		log:     log,
		bus:     bus,
		metrics: NewMetrics(),
	}
}

// State returns the current lifecycle state.
func (r *Runtime) State() State { return r.state }

// Bus returns the event bus.
func (r *Runtime) Bus() *event.Bus { return r.bus }

// Env returns the context handed to components in the current or most
// recent session, or nil before the first Create.
func (r *Runtime) Env() *component.Env { return r.env }

// Metrics returns phase timing information.
func (r *Runtime) Metrics() MetricsSnapshot { return r.metrics.Snapshot() }

// Components returns the live components in execution order.
func (r *Runtime) Components() []component.Component {
	if r.reg == nil {
		return nil
	}
	return r.reg.Components()
}

// Create starts a session: it clears stale subscriptions, opens a fresh
// cancellation scope derived from ctx and instantiates the components.
func (r *Runtime) Create(ctx context.Context) error {
	if r.state != StateUninitialized && r.state != StateDestroyed {
		return &StateError{Op: "create", State: r.state}
	}

	r.bus.Clear()
	reg, err := registry.Build(registry.Options{
		Logger:   r.log,
		Disabled: r.opts.Disabled,
	}, r.opts.Providers...)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	r.reg = reg
	r.cancel = cancel
	r.bg = &task.Runner{}
	r.env = component.NewEnv(sessionCtx, r.bus, r.log, reg, component.WithScheduler(r.bg))
	r.session++
	r.inFlight = ""
	r.state = StateCreated
	r.metrics.recordSession()
	return nil
}

// Initialize returns the task running the Initialize then PostInitialize
// passes.
func (r *Runtime) Initialize() task.Task {
	return r.phase("initialize", StateInitialized, []State{StateCreated},
		hook{events.PhaseInitialize, component.Component.Initialize},
		hook{events.PhasePostInitialize, component.Component.PostInitialize},
	)
}

// StartSession returns the task running the StartSession then
// PostStartSession passes. It is allowed after Initialize and after a
// previous EndSession.
func (r *Runtime) StartSession() task.Task {
	return r.phase("start session", StateSessionActive, []State{StateInitialized, StateSessionEnded},
		hook{events.PhaseStartSession, component.Component.StartSession},
		hook{events.PhasePostStartSession, component.Component.PostStartSession},
	)
}

// EndSession returns the task running the EndSession pass.
func (r *Runtime) EndSession() task.Task {
	return r.phase("end session", StateSessionEnded, []State{StateSessionActive},
		hook{events.PhaseEndSession, component.Component.EndSession},
	)
}

// Destroy clears the bus, cancels the session scope, calls every Destroy
// hook in execution order and drops the components and their background
// tasks. Any phase task still in flight stops affecting the runtime.
func (r *Runtime) Destroy() error {
	if !r.state.HasSession() {
		return &StateError{Op: "destroy", State: r.state}
	}

	r.bus.Clear()
	r.cancel()
	for _, c := range r.reg.Components() {
		r.log.Debug("%s %s", events.PhaseDestroy, component.NameOf(c))
		c.Destroy(r.env)
	}
	r.reg.Clear()
	r.reg = nil
	r.bg.Clear()
	r.bg = nil
	r.session++
	r.inFlight = ""
	r.state = StateDestroyed
	r.log.Info("session destroyed")
	return nil
}

// Tick steps the background tasks components started with Env.Go. The host
// calls it once per frame alongside any running phase task.
func (r *Runtime) Tick(dt time.Duration) error {
	if r.bg == nil {
		return nil
	}
	return r.bg.Tick(r.env.Context(), dt)
}

// Background returns the number of running background tasks.
func (r *Runtime) Background() int {
	if r.bg == nil {
		return 0
	}
	return r.bg.Len()
}

// Lookup returns the live component for capability T.
func Lookup[T any](r *Runtime) (T, bool) {
	if r.reg == nil {
		r.log.Error("component %v not found: %v", reflect.TypeFor[T](), ErrNoSession)
		var zero T
		return zero, false
	}
	return registry.Lookup[T](r.reg)
}

type hook struct {
	phase events.Phase
	call  func(component.Component, *component.Env) task.Task
}

func (r *Runtime) phase(op string, to State, from []State, hooks ...hook) task.Task {
	if r.inFlight != "" {
		return task.Fail(&StateError{Op: op, State: r.state, Busy: string(r.inFlight)})
	}
	allowed := false
	for _, s := range from {
		allowed = allowed || r.state == s
	}
	if !allowed {
		return task.Fail(&StateError{Op: op, State: r.state})
	}

	session := r.session
	env := r.env
	comps := r.reg.Components()
	r.inFlight = hooks[0].phase

	passes := make([]task.Task, 0, len(hooks))
	for _, h := range hooks {
		passes = append(passes, r.pass(session, env, comps, h))
	}
	seq := task.Sequence(passes...)

	return task.StepFunc(func(ctx context.Context) (bool, error) {
		// Hooks observe the session scope; the driver's delta is kept.
		done, err := seq.Step(task.WithDelta(env.Context(), task.Delta(ctx)))
		if !done && err == nil {
			return false, nil
		}
		if r.session != session {
			return true, err
		}
		r.inFlight = ""
		if err != nil {
			r.state = StateFailed
			r.log.Error("%s failed: %v", op, err)
			return true, err
		}
		r.state = to
		return true, nil
	})
}

// pass runs one hook over every component, one at a time, then announces
// the completed phase.
func (r *Runtime) pass(session int, env *component.Env, comps []component.Component, h hook) task.Task {
	var (
		stats *PhaseStats
		start time.Time
	)
	return task.Chain(func(i int) (task.Task, bool) {
		if r.session != session {
			// Destroyed: no further hooks start.
			return nil, false
		}
		switch {
		case i == 0:
			r.inFlight = h.phase
			stats = r.metrics.begin(h.phase)
			start = r.metrics.now()
		case i > len(comps):
			return nil, false
		}
		if i == len(comps) {
			return task.Func(func(ctx context.Context) error {
				stats.Duration = r.metrics.now().Sub(start)
				err := event.Publish(ctx, env.Bus(), events.PhaseCompleted{Phase: h.phase, Components: len(comps)})
				if err != nil {
					return &PhaseError{Phase: h.phase, Err: err}
				}
				return nil
			}), true
		}

		c := comps[i]
		name := component.NameOf(c)
		r.log.Debug("%s %s", h.phase, name)
		t := h.call(c, env)
		if t == nil {
			t = task.Completed()
		}
		steps := 0
		return task.StepFunc(func(ctx context.Context) (bool, error) {
			steps++
			stats.Steps++
			done, err := t.Step(ctx)
			if err != nil {
				return true, &PhaseError{Phase: h.phase, Component: name, Err: err}
			}
			if done {
				stats.component(name, steps)
			}
			return done, nil
		}), true
	})
}
