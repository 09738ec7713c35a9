package event

import (
	"context"
	"errors"
	"testing"

	"github.com/biruisred/IdleGear/internal/task"
)

type levelChanged struct {
	Level int
}

func TestBus_ChannelsAreCreatedOnce(t *testing.T) {
	bus := NewBus()
	if ChannelOf[levelChanged](bus) != ChannelOf[levelChanged](bus) {
		t.Error("ChannelOf returned different channels for the same type")
	}
	SuspendableOf[levelChanged](bus)
	if got := bus.Stats().Channels; got != 2 {
		t.Errorf("Channels = %d, want 2", got)
	}
}

func TestBus_PublishAndUnsubscribe(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()
	var levels []int
	sub, err := Subscribe(bus, func(_ context.Context, ev levelChanged) error {
		levels = append(levels, ev.Level)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	Publish(ctx, bus, levelChanged{Level: 2})
	if err := bus.Unsubscribe(sub); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	Publish(ctx, bus, levelChanged{Level: 3})

	if len(levels) != 1 || levels[0] != 2 {
		t.Errorf("levels = %v, want [2]", levels)
	}
	if err := bus.Unsubscribe(sub); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("second Unsubscribe() = %v, want ErrSubscriptionNotFound", err)
	}
	if err := bus.Unsubscribe(Subscription{}); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("Unsubscribe(zero) = %v, want ErrSubscriptionNotFound", err)
	}
}

func TestBus_UnsubscribeRoutesByKind(t *testing.T) {
	bus := NewBus()
	syncSub, _ := SubscribeFunc[levelChanged](bus, func(context.Context) error { return nil })
	suspSub, _ := SubscribeSuspendable(bus, func(context.Context, levelChanged) task.Task { return nil })

	if err := bus.Unsubscribe(suspSub); err != nil {
		t.Fatalf("Unsubscribe(suspendable) error = %v", err)
	}
	if ChannelOf[levelChanged](bus).Len() != 1 {
		t.Error("sync subscription removed by suspendable unsubscribe")
	}
	if err := bus.Unsubscribe(syncSub); err != nil {
		t.Fatalf("Unsubscribe(sync) error = %v", err)
	}
}

func TestBus_PublishZero(t *testing.T) {
	bus := NewBus()
	got := -1
	Subscribe(bus, func(_ context.Context, ev levelChanged) error {
		got = ev.Level
		return nil
	})
	if err := PublishZero[levelChanged](context.Background(), bus); err != nil {
		t.Fatalf("PublishZero() error = %v", err)
	}
	if got != 0 {
		t.Errorf("Level = %d, want 0", got)
	}
}

func TestBus_ClearKeepsChannels(t *testing.T) {
	bus := NewBus()
	Subscribe(bus, func(context.Context, levelChanged) error { return nil })
	SubscribeSuspendableFunc[levelChanged](bus, func(context.Context) task.Task { return nil })
	SubscribeFunc[questStarted](bus, func(context.Context) error { return nil })

	Clear[questStarted](bus)
	if s := bus.Stats(); s.Subscriptions != 2 {
		t.Fatalf("Subscriptions = %d after Clear[T], want 2", s.Subscriptions)
	}

	ClearSuspendable[levelChanged](bus)
	if s := bus.Stats(); s.Subscriptions != 1 {
		t.Fatalf("Subscriptions = %d after ClearSuspendable[T], want 1", s.Subscriptions)
	}

	bus.Clear()
	s := bus.Stats()
	if s.Subscriptions != 0 {
		t.Errorf("Subscriptions = %d after Clear, want 0", s.Subscriptions)
	}
	if s.Channels != 3 {
		t.Errorf("Channels = %d after Clear, want 3", s.Channels)
	}
}

func TestBus_Stats(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()
	boom := errors.New("boom")
	Subscribe(bus, func(context.Context, levelChanged) error { return nil })
	Subscribe(bus, func(_ context.Context, ev levelChanged) error {
		if ev.Level < 0 {
			return boom
		}
		return nil
	})

	Publish(ctx, bus, levelChanged{Level: 1})
	Publish(ctx, bus, levelChanged{Level: -1})
	task.Run(ctx, PublishSuspendable(bus, levelChanged{}))

	s := bus.Stats()
	if s.EventsPublished != 3 {
		t.Errorf("EventsPublished = %d, want 3", s.EventsPublished)
	}
	if s.HandlersExecuted != 3 {
		t.Errorf("HandlersExecuted = %d, want 3", s.HandlersExecuted)
	}
	if s.DispatchFailures != 1 {
		t.Errorf("DispatchFailures = %d, want 1", s.DispatchFailures)
	}
}
