// Package identity provides the player identity and the primary component
// that owns it.
package identity

import (
	"context"

	"github.com/google/uuid"
)

// DefaultName is the display name given to local players.
const DefaultName = "Player Test"

// User identifies the player of a session.
type User struct {
	ID       string
	Name     string
	SignedIn bool
}

// Equal reports whether u and other name the same user. Sign-in state is
// ignored.
func (u User) Equal(other User) bool {
	return u.ID == other.ID && u.Name == other.Name
}

// Provider produces the session's user.
type Provider interface {
	CreateUser(ctx context.Context) (User, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (User, error)

// CreateUser calls f.
func (f ProviderFunc) CreateUser(ctx context.Context) (User, error) { return f(ctx) }

// LocalProvider creates a signed-out user. An empty ID is replaced with a
// random UUID, an empty Name with DefaultName.
type LocalProvider struct {
	ID   string
	Name string
}

// CreateUser implements Provider.
func (p LocalProvider) CreateUser(context.Context) (User, error) {
	u := User{ID: p.ID, Name: p.Name}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Name == "" {
		u.Name = DefaultName
	}
	return u, nil
}
