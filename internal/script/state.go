package script

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ErrStateClosed is returned when using a closed State.
var ErrStateClosed = errors.New("lua state closed")

// State is a sandboxed Lua interpreter owned by one scripted component.
//
// gopher-lua's LState is not goroutine-safe; a State must only be used from
// the goroutine driving the session.
type State struct {
	L      *lua.LState
	closed bool
}

// safeLibs are the only standard libraries opened. io, os, debug and
// package are left out.
var safeLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
	{lua.CoroutineLibName, lua.OpenCoroutine},
}

// unsafeGlobals are base functions that reach the file system or compile
// arbitrary code.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring", "require"}

// NewState creates a sandboxed Lua state.
func NewState() *State {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range safeLibs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return &State{L: L}
}

// Exec runs a compiled chunk at the top level, defining its globals.
func (s *State) Exec(proto *lua.FunctionProto) (err error) {
	if s.closed {
		return ErrStateClosed
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	s.L.Push(s.L.NewFunctionFromProto(proto))
	return s.L.PCall(0, lua.MultRet, nil)
}

// Function returns the global function name, if defined.
func (s *State) Function(name string) (*lua.LFunction, bool) {
	if s.closed {
		return nil, false
	}
	fn, ok := s.L.GetGlobal(name).(*lua.LFunction)
	return fn, ok
}

// Register sets a Go function as a Lua global.
func (s *State) Register(name string, fn lua.LGFunction) {
	if s.closed {
		return
	}
	s.L.SetGlobal(name, s.L.NewFunction(fn))
}

// Coroutine runs fn on its own Lua thread, one resume at a time.
type Coroutine struct {
	state *State
	co    *lua.LState
	fn    *lua.LFunction
	done  bool
}

// Start prepares fn to run as a coroutine. Nothing executes until the first
// Resume.
func (s *State) Start(fn *lua.LFunction) *Coroutine {
	co, _ := s.L.NewThread()
	return &Coroutine{state: s, co: co, fn: fn}
}

// Resume runs the coroutine until it yields or returns. done reports that
// the function returned or failed.
func (c *Coroutine) Resume() (done bool, err error) {
	if c.done {
		return true, nil
	}
	if c.state.closed {
		c.done = true
		return true, ErrStateClosed
	}
	defer func() {
		if r := recover(); r != nil {
			c.done = true
			done, err = true, fmt.Errorf("lua panic: %v", r)
		}
	}()

	st, err, _ := c.state.L.Resume(c.co, c.fn)
	switch st {
	case lua.ResumeYield:
		return false, nil
	case lua.ResumeError:
		c.done = true
		return true, err
	default:
		c.done = true
		return true, nil
	}
}

// Close releases the interpreter. It is safe to call more than once.
func (s *State) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}
