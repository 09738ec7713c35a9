package event

import (
	"reflect"

	"github.com/google/uuid"
)

// Kind tells which channel a subscription belongs to.
type Kind uint8

const (
	// KindSync is a subscription on a Channel.
	KindSync Kind = iota

	// KindSuspendable is a subscription on a SuspendableChannel.
	KindSuspendable
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindSync:
		return "sync"
	case KindSuspendable:
		return "suspendable"
	default:
		return "unknown"
	}
}

// Subscription is the handle returned by every subscribe call.
// The zero value matches nothing.
type Subscription struct {
	id    uuid.UUID
	event reflect.Type
	kind  Kind
}

func newSubscription(event reflect.Type, kind Kind) Subscription {
	return Subscription{id: uuid.New(), event: event, kind: kind}
}

// ID returns the unique subscription identifier.
func (s Subscription) ID() uuid.UUID {
	return s.id
}

// Event returns the payload type the subscription listens to.
func (s Subscription) Event() reflect.Type {
	return s.event
}

// Kind returns the channel kind.
func (s Subscription) Kind() Kind {
	return s.kind
}

// IsZero reports whether s is the zero handle.
func (s Subscription) IsZero() bool {
	return s.id == uuid.Nil
}

// String returns a short description for logs.
func (s Subscription) String() string {
	if s.IsZero() {
		return "subscription(none)"
	}
	return s.kind.String() + ":" + typeName(s.event) + ":" + s.id.String()
}

// SubscriptionConfig contains per-subscription settings.
type SubscriptionConfig struct {
	// Once removes the subscription after its first delivery.
	Once bool
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithOnce sets the subscription to cancel itself after the first event.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

func buildConfig(opts []SubscriptionOption) SubscriptionConfig {
	var c SubscriptionConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
