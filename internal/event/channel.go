package event

import (
	"context"
	"reflect"
	"slices"
)

// Handler receives a payload of type T.
type Handler[T any] func(ctx context.Context, ev T) error

// Func is a callback that does not look at the payload.
type Func func(ctx context.Context) error

type record[T any] struct {
	sub     Subscription
	handler Handler[T]
	once    bool
}

// Channel delivers payloads of type T to handlers immediately.
// A Channel is not safe for concurrent use.
type Channel[T any] struct {
	event   reflect.Type
	records []*record[T]
	pool    WrapperPool[Func]
	stats   *counters
}

// NewChannel creates an empty channel. Channels obtained from a Bus share the
// bus counters; standalone channels keep none.
func NewChannel[T any]() *Channel[T] {
	return &Channel[T]{event: reflect.TypeFor[T]()}
}

// Subscribe appends h to the channel.
func (c *Channel[T]) Subscribe(h Handler[T], opts ...SubscriptionOption) (Subscription, error) {
	if h == nil {
		return Subscription{}, ErrNilHandler
	}
	cfg := buildConfig(opts)
	sub := newSubscription(c.event, KindSync)
	c.records = append(c.records, &record[T]{sub: sub, handler: h, once: cfg.Once})
	return sub, nil
}

// SubscribeFunc appends a payload-less callback, adapted through the
// channel's wrapper pool.
func (c *Channel[T]) SubscribeFunc(fn Func, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return Subscription{}, ErrNilHandler
	}
	cfg := buildConfig(opts)
	sub := newSubscription(c.event, KindSync)
	// The record keeps fn itself; the pool only recycles the wrapper shell,
	// so a dispatch snapshot is never redirected by a later reuse.
	c.pool.Acquire(sub.id, fn)
	c.records = append(c.records, &record[T]{
		sub: sub,
		handler: func(ctx context.Context, _ T) error {
			return fn(ctx)
		},
		once: cfg.Once,
	})
	return sub, nil
}

// Unsubscribe removes the subscription identified by sub.
// It reports whether a subscription was removed.
func (c *Channel[T]) Unsubscribe(sub Subscription) bool {
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

// Publish calls every handler subscribed at the time of the call, in
// subscription order. The first handler error stops the dispatch.
func (c *Channel[T]) Publish(ctx context.Context, ev T) error {
	c.stats.published()
	snapshot := slices.Clone(c.records)
	for i, r := range snapshot {
		err := r.handler(ctx, ev)
		if r.once {
			c.Unsubscribe(r.sub)
		}
		if err != nil {
			c.stats.failed()
			return &DispatchError{Event: typeName(c.event), Index: i, Subscription: r.sub, Err: err}
		}
		c.stats.delivered()
	}
	return nil
}

// Clear removes every subscription and returns pooled wrappers to idle.
func (c *Channel[T]) Clear() {
	clear(c.records)
	c.records = c.records[:0]
	c.pool.ReleaseAll()
}

// Len returns the number of subscriptions.
func (c *Channel[T]) Len() int {
	return len(c.records)
}

// PoolStats reports the channel's wrapper pool.
func (c *Channel[T]) PoolStats() PoolStats {
	return c.pool.Stats()
}

func (c *Channel[T]) remove(sub Subscription) bool { return c.Unsubscribe(sub) }
