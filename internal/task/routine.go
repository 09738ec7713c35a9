package task

import (
	"context"
	"iter"
)

// Yield suspends the calling routine until its next step.
// It returns false when the routine has been stopped; the routine should
// return promptly in that case.
type Yield func() bool

// RoutineFunc is a function written in straight-line style that suspends
// by calling yield.
type RoutineFunc func(ctx context.Context, yield Yield) error

// Routine is a task backed by a coroutine. The function body runs only inside
// Step, on the stepping goroutine's behalf, and never in parallel with it.
type Routine struct {
	fn   RoutineFunc
	ctx  context.Context
	next func() (struct{}, bool)
	stop func()
	err  error
	done bool
}

// Go returns a task that runs fn as a coroutine. The context of the first
// step is the one fn observes.
func Go(fn RoutineFunc) *Routine {
	return &Routine{fn: fn}
}

// Step resumes the routine until it yields or returns.
func (r *Routine) Step(ctx context.Context) (bool, error) {
	if r.done {
		return true, r.err
	}
	if r.next == nil {
		r.ctx = ctx
		r.next, r.stop = iter.Pull(r.body)
	}
	if _, ok := r.next(); ok {
		return false, nil
	}
	r.done = true
	r.stop()
	return true, r.err
}

func (r *Routine) body(yield func(struct{}) bool) {
	r.err = r.fn(r.ctx, func() bool { return yield(struct{}{}) })
}

// Stop abandons a suspended routine. Its pending yield returns false so the
// function can unwind. Stop is a no-op once the routine has finished.
func (r *Routine) Stop() {
	if r.done {
		return
	}
	r.done = true
	if r.stop != nil {
		r.stop()
	}
}

// Done reports whether the routine has finished or been stopped.
func (r *Routine) Done() bool {
	return r.done
}
