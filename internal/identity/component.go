package identity

import (
	"context"
	"fmt"

	"github.com/biruisred/IdleGear/internal/component"
	"github.com/biruisred/IdleGear/internal/event"
	"github.com/biruisred/IdleGear/internal/event/events"
	"github.com/biruisred/IdleGear/internal/task"
)

// UserComponent is the primary component. It creates the session's user
// before any other component initializes.
type UserComponent struct {
	component.PrimaryBase

	provider Provider
	user     User
	ready    bool
}

// Type returns the descriptor for a UserComponent backed by p. A nil p uses
// LocalProvider defaults.
func Type(p Provider) *component.Type {
	if p == nil {
		p = LocalProvider{}
	}
	t := component.Define[UserComponent]()
	t.New = func() component.Component {
		return &UserComponent{provider: p}
	}
	return t
}

// Priority places the component ahead of everything else.
func (u *UserComponent) Priority() int { return -1000 }

// Initialize creates the user.
func (u *UserComponent) Initialize(env *component.Env) task.Task {
	return task.Func(func(ctx context.Context) error {
		p := u.provider
		if p == nil {
			p = LocalProvider{}
		}
		user, err := p.CreateUser(ctx)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		u.user, u.ready = user, true
		u.Log().Info("user created [ID: %s] [Name: %s] [Signed in: %t]", user.ID, user.Name, user.SignedIn)
		return nil
	})
}

// PostInitialize announces the player to the rest of the session.
func (u *UserComponent) PostInitialize(env *component.Env) task.Task {
	return task.Func(func(ctx context.Context) error {
		return event.Publish(ctx, env.Bus(), events.PlayerInit{
			PlayerID:   u.user.ID,
			PlayerName: u.user.Name,
		})
	})
}

// User returns the session's user. ok is false before Initialize finished.
func (u *UserComponent) User() (user User, ok bool) {
	return u.user, u.ready
}
