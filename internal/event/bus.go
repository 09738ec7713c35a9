package event

import (
	"context"
	"reflect"

	"github.com/biruisred/IdleGear/internal/task"
)

// Stats contains bus statistics.
type Stats struct {
	// EventsPublished is the number of dispatches started.
	EventsPublished uint64

	// HandlersExecuted is the number of handlers that completed without error.
	HandlersExecuted uint64

	// DispatchFailures is the number of dispatches stopped by a handler error.
	DispatchFailures uint64

	// Channels is the number of channels created so far.
	Channels int

	// Subscriptions is the number of live subscriptions across all channels.
	Subscriptions int
}

// counters is shared by all channels of one bus. A nil *counters is valid.
type counters struct {
	eventsPublished  uint64
	handlersExecuted uint64
	dispatchFailures uint64
}

func (c *counters) published() {
	if c != nil {
		c.eventsPublished++
	}
}

func (c *counters) delivered() {
	if c != nil {
		c.handlersExecuted++
	}
}

func (c *counters) failed() {
	if c != nil {
		c.dispatchFailures++
	}
}

// channel is the type-erased view of a Channel or SuspendableChannel.
type channel interface {
	remove(sub Subscription) bool
	Clear()
	Len() int
}

type channelKey struct {
	event reflect.Type
	kind  Kind
}

// Bus owns one Channel and one SuspendableChannel per payload type.
// Channels are created on first use and live as long as the bus; Clear
// empties them without discarding them.
//
// A Bus is not safe for concurrent use.
type Bus struct {
	channels map[channelKey]channel
	order    []channelKey
	stats    counters
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{channels: make(map[channelKey]channel)}
}

func (b *Bus) lookup(key channelKey, create func() channel) channel {
	if ch, ok := b.channels[key]; ok {
		return ch
	}
	ch := create()
	b.channels[key] = ch
	b.order = append(b.order, key)
	return ch
}

// ChannelOf returns the synchronous channel for T, creating it if needed.
func ChannelOf[T any](b *Bus) *Channel[T] {
	key := channelKey{event: reflect.TypeFor[T](), kind: KindSync}
	return b.lookup(key, func() channel {
		ch := NewChannel[T]()
		ch.stats = &b.stats
		return ch
	}).(*Channel[T])
}

// SuspendableOf returns the suspendable channel for T, creating it if needed.
func SuspendableOf[T any](b *Bus) *SuspendableChannel[T] {
	key := channelKey{event: reflect.TypeFor[T](), kind: KindSuspendable}
	return b.lookup(key, func() channel {
		ch := NewSuspendableChannel[T]()
		ch.stats = &b.stats
		return ch
	}).(*SuspendableChannel[T])
}

// Subscribe registers h for payloads of type T.
func Subscribe[T any](b *Bus, h Handler[T], opts ...SubscriptionOption) (Subscription, error) {
	return ChannelOf[T](b).Subscribe(h, opts...)
}

// SubscribeFunc registers a payload-less callback for payloads of type T.
func SubscribeFunc[T any](b *Bus, fn Func, opts ...SubscriptionOption) (Subscription, error) {
	return ChannelOf[T](b).SubscribeFunc(fn, opts...)
}

// SubscribeSuspendable registers a suspendable handler for payloads of type T.
func SubscribeSuspendable[T any](b *Bus, h SuspendableHandler[T], opts ...SubscriptionOption) (Subscription, error) {
	return SuspendableOf[T](b).Subscribe(h, opts...)
}

// SubscribeSuspendableFunc registers a payload-less suspendable callback.
func SubscribeSuspendableFunc[T any](b *Bus, fn SuspendableFunc, opts ...SubscriptionOption) (Subscription, error) {
	return SuspendableOf[T](b).SubscribeFunc(fn, opts...)
}

// Publish delivers ev to the synchronous handlers of T.
func Publish[T any](ctx context.Context, b *Bus, ev T) error {
	return ChannelOf[T](b).Publish(ctx, ev)
}

// PublishZero delivers a zero-valued T. It suits marker events that carry no
// data.
func PublishZero[T any](ctx context.Context, b *Bus) error {
	var ev T
	return Publish(ctx, b, ev)
}

// PublishSuspendable returns a task that drives the suspendable handlers of T.
func PublishSuspendable[T any](b *Bus, ev T) task.Task {
	return SuspendableOf[T](b).Publish(ev)
}

// Clear removes every synchronous subscription for T.
func Clear[T any](b *Bus) {
	ChannelOf[T](b).Clear()
}

// ClearSuspendable removes every suspendable subscription for T.
func ClearSuspendable[T any](b *Bus) {
	SuspendableOf[T](b).Clear()
}

// Unsubscribe removes the subscription identified by sub from whichever
// channel holds it.
func (b *Bus) Unsubscribe(sub Subscription) error {
	if sub.IsZero() {
		return ErrSubscriptionNotFound
	}
	ch, ok := b.channels[channelKey{event: sub.event, kind: sub.kind}]
	if !ok || !ch.remove(sub) {
		return ErrSubscriptionNotFound
	}
	return nil
}

// Clear empties every channel. Channels themselves are kept.
func (b *Bus) Clear() {
	for _, key := range b.order {
		b.channels[key].Clear()
	}
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	s := Stats{
		EventsPublished:  b.stats.eventsPublished,
		HandlersExecuted: b.stats.handlersExecuted,
		DispatchFailures: b.stats.dispatchFailures,
		Channels:         len(b.channels),
	}
	for _, ch := range b.channels {
		s.Subscriptions += ch.Len()
	}
	return s
}
