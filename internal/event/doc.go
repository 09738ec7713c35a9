// Package event provides the typed publish/subscribe bus that components use
// to talk to each other and to the presentation layer.
//
// # Channels
//
// Every payload type has two channels, created lazily the first time the type
// is touched:
//
//   - Channel: handlers run immediately, on the publisher's control flow.
//   - SuspendableChannel: handlers return a task.Task; Publish returns a task
//     that drives the handlers one at a time, each to completion.
//
// Both keep handlers in subscription order. Publish works on a snapshot of the
// subscriber list, so a handler that subscribes or unsubscribes during
// dispatch only affects later publishes.
//
// # Subscriptions
//
// Subscribe returns an opaque Subscription handle. The handle is the only way
// to unsubscribe; two subscriptions of the same function are independent.
//
//	sub, err := event.Subscribe(bus, func(ctx context.Context, ev events.GoldChanged) error {
//	    view.SetGold(ev.Current)
//	    return nil
//	})
//	...
//	bus.Unsubscribe(sub)
//
// Callbacks that do not need the payload can be registered with SubscribeFunc.
// They are adapted through a per-channel WrapperPool so that repeated
// subscribe/unsubscribe cycles reuse wrapper objects.
//
// # Failures
//
// Dispatch is fail-fast. The first handler error stops the dispatch and is
// returned to the publisher wrapped in a *DispatchError. Panics are not
// recovered.
//
// # Concurrency
//
// The bus is single-threaded. Nothing in this package is safe for concurrent
// use; callers on other goroutines must hand events to the owning loop.
package event
