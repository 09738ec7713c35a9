package idlegear

import (
	"errors"
	"time"

	"github.com/biruisred/IdleGear/internal/component"
)

// Options configures the game components.
type Options struct {
	StartingGold int
	MaxStamina   int
	StaminaRegen time.Duration // zero disables regeneration
	Quests       []Quest
}

// DefaultOptions returns the standard game settings.
func DefaultOptions() Options {
	return Options{
		StartingGold: 100,
		MaxStamina:   10,
		StaminaRegen: 2 * time.Second,
		Quests:       DefaultQuests,
	}
}

// Register adds the game component types to cat.
func Register(cat *component.Catalog, opts Options) error {
	return errors.Join(
		cat.Add(define[Wallet](func() component.Component {
			return &Wallet{startGold: opts.StartingGold}
		})),
		cat.Add(define[Stats](func() component.Component {
			return &Stats{maxStamina: opts.MaxStamina, regen: opts.StaminaRegen}
		})),
		cat.Add(define[Quests](func() component.Component {
			return &Quests{board: opts.Quests}
		})),
		cat.Add(define[Announcer](nil)),
	)
}

// define describes T with a configured factory.
func define[T any, PT interface {
	*T
	component.Component
}](factory func() component.Component) *component.Type {
	t := component.Define[T, PT]()
	if factory != nil {
		t.New = factory
	}
	return t
}
