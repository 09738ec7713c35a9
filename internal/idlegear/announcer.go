package idlegear

import (
	"context"
	"errors"
	"fmt"

	"github.com/biruisred/IdleGear/internal/component"
	"github.com/biruisred/IdleGear/internal/event"
	"github.com/biruisred/IdleGear/internal/event/events"
	"github.com/biruisred/IdleGear/internal/identity"
	"github.com/biruisred/IdleGear/internal/task"
)

// Announcer turns game events into player-facing messages.
type Announcer struct {
	component.Base
}

// Priority runs the announcer last.
func (a *Announcer) Priority() int { return 40 }

// Initialize subscribes to level-ups and quest results.
func (a *Announcer) Initialize(env *component.Env) task.Task {
	return task.Func(func(context.Context) error {
		b := env.Bus()
		_, err1 := event.Subscribe(b, func(ctx context.Context, ev events.LevelChanged) error {
			if ev.Delta <= 0 {
				return nil
			}
			return event.Publish(ctx, b, events.AnnouncementMessage{
				Message: fmt.Sprintf("Level up! You are now level %d. #beep#", ev.Current),
			})
		})
		_, err2 := event.Subscribe(b, func(ctx context.Context, ev events.QuestComplete) error {
			return event.Publish(ctx, b, events.GlobalMessage{Message: ev.Message})
		})
		return errors.Join(err1, err2)
	})
}

// PostStartSession greets the player.
func (a *Announcer) PostStartSession(env *component.Env) task.Task {
	return task.Func(func(ctx context.Context) error {
		name := identity.DefaultName
		if u, ok := component.Get[*identity.UserComponent](env); ok {
			if user, ok := u.User(); ok {
				name = user.Name
			}
		}
		return event.Publish(ctx, env.Bus(), events.AnnouncementMessage{
			Message: fmt.Sprintf("Welcome, %s! Your adventure continues.", name),
		})
	})
}
