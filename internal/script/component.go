package script

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/biruisred/IdleGear/internal/component"
	"github.com/biruisred/IdleGear/internal/event/events"
	"github.com/biruisred/IdleGear/internal/task"
)

// Hook names looked up as Lua globals.
const (
	HookInitialize       = "initialize"
	HookPostInitialize   = "post_initialize"
	HookStartSession     = "start_session"
	HookPostStartSession = "post_start_session"
	HookEndSession       = "end_session"
	HookDestroy          = "destroy"
)

// definition is what the loader knows about one script.
type definition struct {
	path     string
	priority int
	proto    *lua.FunctionProto
}

// Component is a component whose hooks are Lua functions.
//
// Each instance owns a fresh State. A hook runs as a coroutine: every
// coroutine.yield() in the script suspends the hook until the next step.
type Component struct {
	component.Base

	def   *definition
	state *State
	err   error

	// Set while a hook runs.
	env *component.Env
	ctx context.Context
}

func newComponent(def *definition) *Component {
	c := &Component{def: def, state: NewState(), ctx: context.Background()}
	c.install()
	if err := c.state.Exec(def.proto); err != nil {
		c.err = fmt.Errorf("load %s: %w", def.path, err)
	}
	return c
}

// Priority returns the manifest priority.
func (c *Component) Priority() int { return c.def.priority }

// Path returns the script file.
func (c *Component) Path() string { return c.def.path }

func (c *Component) Initialize(env *component.Env) task.Task {
	return c.hook(HookInitialize, env)
}

func (c *Component) PostInitialize(env *component.Env) task.Task {
	return c.hook(HookPostInitialize, env)
}

func (c *Component) StartSession(env *component.Env) task.Task {
	return c.hook(HookStartSession, env)
}

func (c *Component) PostStartSession(env *component.Env) task.Task {
	return c.hook(HookPostStartSession, env)
}

func (c *Component) EndSession(env *component.Env) task.Task {
	return c.hook(HookEndSession, env)
}

// Destroy calls the destroy hook, if any, and closes the interpreter. The
// hook may not yield.
func (c *Component) Destroy(env *component.Env) {
	defer c.state.Close()
	if c.err != nil {
		return
	}
	fn, ok := c.state.Function(HookDestroy)
	if !ok {
		return
	}
	c.env, c.ctx = env, env.Context()
	err := c.state.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	if err != nil {
		c.Log().Error("%s %s: %v", events.PhaseDestroy, c.Name(), err)
	}
}

func (c *Component) hook(name string, env *component.Env) task.Task {
	if c.err != nil {
		return task.Fail(c.err)
	}
	fn, ok := c.state.Function(name)
	if !ok {
		return task.Completed()
	}
	c.env = env
	co := c.state.Start(fn)
	return task.StepFunc(func(ctx context.Context) (bool, error) {
		c.ctx = ctx
		done, err := co.Resume()
		if err != nil {
			return true, fmt.Errorf("%s: %w", c.def.path, err)
		}
		return done, nil
	})
}
