package event

import (
	"context"
	"reflect"
	"slices"

	"github.com/biruisred/IdleGear/internal/task"
)

// SuspendableHandler receives a payload and returns the work to drive.
// A nil task counts as finished.
type SuspendableHandler[T any] func(ctx context.Context, ev T) task.Task

// SuspendableFunc is a suspendable callback that does not look at the payload.
type SuspendableFunc func(ctx context.Context) task.Task

type suspendableRecord[T any] struct {
	sub     Subscription
	handler SuspendableHandler[T]
	once    bool
}

// SuspendableChannel delivers payloads of type T to handlers that may
// suspend. Handlers run strictly one after another.
// A SuspendableChannel is not safe for concurrent use.
type SuspendableChannel[T any] struct {
	event   reflect.Type
	records []*suspendableRecord[T]
	pool    WrapperPool[SuspendableFunc]
	stats   *counters
}

// NewSuspendableChannel creates an empty suspendable channel.
func NewSuspendableChannel[T any]() *SuspendableChannel[T] {
	return &SuspendableChannel[T]{event: reflect.TypeFor[T]()}
}

// Subscribe appends h to the channel.
func (c *SuspendableChannel[T]) Subscribe(h SuspendableHandler[T], opts ...SubscriptionOption) (Subscription, error) {
	if h == nil {
		return Subscription{}, ErrNilHandler
	}
	cfg := buildConfig(opts)
	sub := newSubscription(c.event, KindSuspendable)
	c.records = append(c.records, &suspendableRecord[T]{sub: sub, handler: h, once: cfg.Once})
	return sub, nil
}

// SubscribeFunc appends a payload-less suspendable callback through the
// channel's wrapper pool.
func (c *SuspendableChannel[T]) SubscribeFunc(fn SuspendableFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return Subscription{}, ErrNilHandler
	}
	cfg := buildConfig(opts)
	sub := newSubscription(c.event, KindSuspendable)
	c.pool.Acquire(sub.id, fn)
	c.records = append(c.records, &suspendableRecord[T]{
		sub: sub,
		handler: func(ctx context.Context, _ T) task.Task {
			return fn(ctx)
		},
		once: cfg.Once,
	})
	return sub, nil
}

// Unsubscribe removes the subscription identified by sub.
func (c *SuspendableChannel[T]) Unsubscribe(sub Subscription) bool {
	for i, r := range c.records {
		if r.sub.id != sub.id {
			continue
		}
		c.records = slices.Delete(c.records, i, i+1)
		c.pool.Release(sub.id)
		return true
	}
	return false
}

// Publish returns a task that, when driven, runs each handler subscribed at
// the time of its first step to completion before starting the next. Nothing
// happens until the task is stepped.
func (c *SuspendableChannel[T]) Publish(ev T) task.Task {
	return &suspendableDispatch[T]{ch: c, ev: ev}
}

// Clear removes every subscription and returns pooled wrappers to idle.
func (c *SuspendableChannel[T]) Clear() {
	clear(c.records)
	c.records = c.records[:0]
	c.pool.ReleaseAll()
}

// Len returns the number of subscriptions.
func (c *SuspendableChannel[T]) Len() int {
	return len(c.records)
}

// PoolStats reports the channel's wrapper pool.
func (c *SuspendableChannel[T]) PoolStats() PoolStats {
	return c.pool.Stats()
}

func (c *SuspendableChannel[T]) remove(sub Subscription) bool { return c.Unsubscribe(sub) }

type suspendableDispatch[T any] struct {
	ch       *SuspendableChannel[T]
	ev       T
	snapshot []*suspendableRecord[T]
	started  bool
	i        int
	current  task.Task
}

func (d *suspendableDispatch[T]) Step(ctx context.Context) (bool, error) {
	if !d.started {
		d.started = true
		d.snapshot = slices.Clone(d.ch.records)
		d.ch.stats.published()
	}
	for d.i < len(d.snapshot) {
		r := d.snapshot[d.i]
		if d.current == nil {
			if d.current = r.handler(ctx, d.ev); d.current == nil {
				d.current = task.Completed()
			}
		}
		done, err := d.current.Step(ctx)
		if !done && err == nil {
			return false, nil
		}
		if r.once {
			d.ch.Unsubscribe(r.sub)
		}
		if err != nil {
			d.ch.stats.failed()
			return true, &DispatchError{Event: typeName(d.ch.event), Index: d.i, Subscription: r.sub, Err: err}
		}
		d.ch.stats.delivered()
		d.current = nil
		d.i++
	}
	return true, nil
}
