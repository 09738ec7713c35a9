// Package task provides cooperative, single-threaded suspendable work.
//
// A Task is advanced one step at a time by a driver. Between two steps a task
// is suspended; nothing runs it in the background. Lifecycle hooks and
// suspendable event handlers return tasks, and the host decides how often
// to step them (once per frame, as fast as possible, or on a ticker).
//
// Tasks are not safe for concurrent use.
package task

import (
	"context"
	"errors"
)

// Task is a unit of cooperatively suspendable work.
//
// Step runs the task until its next suspension point. It returns done=true
// once the task has finished, successfully or with err. Step must not be
// called again after it reported done.
type Task interface {
	Step(ctx context.Context) (done bool, err error)
}

// StepFunc adapts a plain function to the Task interface.
type StepFunc func(ctx context.Context) (bool, error)

// Step calls f.
func (f StepFunc) Step(ctx context.Context) (bool, error) {
	return f(ctx)
}

// ErrNilTask is returned when a nil task is stepped through a combinator.
var ErrNilTask = errors.New("task: nil task")

type completed struct{ err error }

func (c completed) Step(context.Context) (bool, error) { return true, c.err }

// Completed returns a task that finishes on its first step.
func Completed() Task {
	return completed{}
}

// Fail returns a task that fails with err on its first step.
func Fail(err error) Task {
	return completed{err: err}
}

// Func returns a task that runs fn to completion on its first step.
func Func(fn func(ctx context.Context) error) Task {
	return StepFunc(func(ctx context.Context) (bool, error) {
		return true, fn(ctx)
	})
}

// Stopper is implemented by tasks that hold resources while suspended.
// Stop abandons the task; it must not be stepped afterwards.
type Stopper interface {
	Stop()
}

// Stop abandons t if it is a Stopper. Combinators in this package forward
// Stop to the task they are currently running. A StepFunc closure cannot
// forward it; wrap inner tasks with Guard instead.
func Stop(t Task) {
	if s, ok := t.(Stopper); ok {
		s.Stop()
	}
}

type lazy struct {
	build func() Task
	t     Task
}

// Lazy defers building a task until its first step.
func Lazy(build func() Task) Task {
	return &lazy{build: build}
}

func (l *lazy) Step(ctx context.Context) (bool, error) {
	if l.t == nil {
		if l.t = l.build(); l.t == nil {
			return true, ErrNilTask
		}
	}
	return l.t.Step(ctx)
}

func (l *lazy) Stop() {
	if l.t != nil {
		Stop(l.t)
	}
}

type guard struct {
	t    Task
	cond func() bool
}

// Guard steps t while cond holds. Once cond reports false, t is stopped and
// the guard finishes without error. cond is checked before every step.
func Guard(t Task, cond func() bool) Task {
	return &guard{t: t, cond: cond}
}

func (g *guard) Step(ctx context.Context) (bool, error) {
	if !g.cond() {
		Stop(g.t)
		return true, nil
	}
	return g.t.Step(ctx)
}

func (g *guard) Stop() { Stop(g.t) }

type sequence struct {
	next    func(i int) (Task, bool)
	i       int
	current Task
}

// Sequence runs tasks one after another. Task k+1 takes its first step only
// after task k has finished; a failure stops the sequence.
func Sequence(tasks ...Task) Task {
	return Chain(func(i int) (Task, bool) {
		if i >= len(tasks) {
			return nil, false
		}
		return tasks[i], true
	})
}

// Chain is like Sequence but obtains each task from next on demand, so task k+1
// is not built until task k has finished. next reports false when exhausted.
func Chain(next func(i int) (Task, bool)) Task {
	return &sequence{next: next}
}

func (s *sequence) Step(ctx context.Context) (bool, error) {
	for {
		if s.current == nil {
			t, ok := s.next(s.i)
			if !ok {
				return true, nil
			}
			if t == nil {
				return true, ErrNilTask
			}
			s.current = t
		}
		done, err := s.current.Step(ctx)
		if err != nil {
			return true, err
		}
		if !done {
			return false, nil
		}
		s.current = nil
		s.i++
	}
}

// Stop stops the running task. Tasks not yet started are left untouched.
func (s *sequence) Stop() {
	if s.current != nil {
		Stop(s.current)
		s.current = nil
	}
}

// Wait suspends for n steps before finishing.
func Wait(n int) Task {
	return StepFunc(func(context.Context) (bool, error) {
		if n <= 0 {
			return true, nil
		}
		n--
		return false, nil
	})
}

// Until suspends until cond reports true. cond is checked on every step.
func Until(cond func() bool) Task {
	return StepFunc(func(context.Context) (bool, error) {
		return cond(), nil
	})
}

// UntilDone suspends until ctx is cancelled, then finishes with ctx's error.
func UntilDone() Task {
	return StepFunc(func(ctx context.Context) (bool, error) {
		if err := ctx.Err(); err != nil {
			return true, err
		}
		return false, nil
	})
}
