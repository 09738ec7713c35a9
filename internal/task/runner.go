package task

import (
	"context"
	"errors"
	"slices"
	"time"
)

// Runner steps a set of tasks once per tick. The host calls Tick from its
// main loop; tasks started during a tick take their first step on the next.
type Runner struct {
	tasks   []*entry
	pending []*entry
	nextID  uint64
	ticking bool
}

type entry struct {
	id      uint64
	task    Task
	onDone  func(error)
	dropped bool
}

// Handle identifies a task started on a Runner.
type Handle uint64

// Start schedules t. onDone, if non-nil, is called once with the task's
// result when it finishes.
func (r *Runner) Start(t Task, onDone func(error)) Handle {
	r.nextID++
	r.pending = append(r.pending, &entry{id: r.nextID, task: t, onDone: onDone})
	return Handle(r.nextID)
}

// Cancel drops a scheduled task without calling its completion callback.
// The task is stopped with Stop, so routines suspended inside it see their
// pending yield return false. Cancel may be called from a task being
// stepped by Tick.
func (r *Runner) Cancel(h Handle) bool {
	for _, list := range []*[]*entry{&r.tasks, &r.pending} {
		for i, e := range *list {
			if e.id != uint64(h) || e.dropped {
				continue
			}
			r.drop(e)
			if !r.ticking || list == &r.pending {
				*list = append((*list)[:i], (*list)[i+1:]...)
			}
			return true
		}
	}
	return false
}

// Clear drops every scheduled task without calling completion callbacks.
// Every task is stopped with Stop.
func (r *Runner) Clear() {
	for _, list := range [][]*entry{r.tasks, r.pending} {
		for _, e := range list {
			if !e.dropped {
				r.drop(e)
			}
		}
	}
	r.pending = nil
	if !r.ticking {
		r.tasks = nil
	}
}

// drop stops e. During a tick the running list is compacted by Tick.
func (r *Runner) drop(e *entry) {
	e.dropped = true
	Stop(e.task)
}

// Len returns the number of scheduled tasks.
func (r *Runner) Len() int {
	n := len(r.pending)
	for _, e := range r.tasks {
		if !e.dropped {
			n++
		}
	}
	return n
}

// Tick steps every running task once with dt as the elapsed time. Errors of
// tasks without a completion callback are joined and returned.
func (r *Runner) Tick(ctx context.Context, dt time.Duration) error {
	r.tasks = append(r.tasks, r.pending...)
	r.pending = nil

	ctx = WithDelta(ctx, dt)
	var errs []error
	r.ticking = true
	defer func() { r.ticking = false }()
	kept := r.tasks[:0]
	for _, e := range r.tasks {
		if e.dropped {
			continue
		}
		done, err := e.task.Step(ctx)
		if e.dropped {
			continue
		}
		if !done {
			kept = append(kept, e)
			continue
		}
		if e.onDone != nil {
			e.onDone(err)
		} else if err != nil {
			errs = append(errs, err)
		}
	}
	kept = slices.DeleteFunc(kept, func(e *entry) bool { return e.dropped })
	clear(r.tasks[len(kept):])
	r.tasks = kept
	return errors.Join(errs...)
}

// Run steps t until it finishes, passing the wall-clock time between steps
// as the delta. It never sleeps, so it suits tasks that suspend for a few
// steps; long waits belong on a Runner driven by the host's ticker.
func Run(ctx context.Context, t Task) error {
	last := time.Now()
	var dt time.Duration
	for {
		done, err := t.Step(WithDelta(ctx, dt))
		if done {
			return err
		}
		now := time.Now()
		dt, last = now.Sub(last), now
	}
}

// RunEvery steps t once per interval until it finishes. It returns ctx's
// error if ctx is cancelled first; the task itself is left suspended.
func RunEvery(ctx context.Context, t Task, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	var dt time.Duration
	for {
		done, err := t.Step(WithDelta(ctx, dt))
		if done {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt, last = now.Sub(last), now
		}
	}
}
