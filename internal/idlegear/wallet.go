package idlegear

import (
	"context"
	"errors"
	"fmt"

	"github.com/biruisred/IdleGear/internal/component"
	"github.com/biruisred/IdleGear/internal/event"
	"github.com/biruisred/IdleGear/internal/event/events"
	"github.com/biruisred/IdleGear/internal/task"
)

var (
	// ErrInsufficientFunds is returned when spending more than the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNegativeAmount is returned for negative credits or debits.
	ErrNegativeAmount = errors.New("negative amount")

	// ErrNotInitialized is returned by components used before Initialize.
	ErrNotInitialized = errors.New("component not initialized")
)

// Wallet holds the player's gold and diamonds. Completed quests pay into it.
type Wallet struct {
	component.Base

	startGold int

	env     *component.Env
	gold    int
	diamond int
}

// Priority runs the wallet early so balances are known to later components.
func (w *Wallet) Priority() int { return 10 }

// Initialize opens the wallet and subscribes to quest rewards.
func (w *Wallet) Initialize(env *component.Env) task.Task {
	return task.Func(func(context.Context) error {
		w.env = env
		w.gold, w.diamond = w.startGold, 0
		_, err := event.Subscribe(env.Bus(), func(ctx context.Context, ev events.QuestComplete) error {
			if !ev.Success || ev.GoldGain <= 0 {
				return nil
			}
			return w.AddGold(ctx, ev.GoldGain)
		})
		return err
	})
}

// PostInitialize announces the opening balances.
func (w *Wallet) PostInitialize(env *component.Env) task.Task {
	return task.Func(func(ctx context.Context) error {
		return errors.Join(
			event.Publish(ctx, env.Bus(), events.GoldChanged{Current: w.gold}),
			event.Publish(ctx, env.Bus(), events.DiamondChanged{Current: w.diamond}),
		)
	})
}

// Gold returns the gold balance.
func (w *Wallet) Gold() int { return w.gold }

// Diamond returns the diamond balance.
func (w *Wallet) Diamond() int { return w.diamond }

// AddGold credits n gold.
func (w *Wallet) AddGold(ctx context.Context, n int) error {
	if n < 0 {
		return ErrNegativeAmount
	}
	return w.change(ctx, &w.gold, n, goldChanged)
}

// SpendGold debits n gold.
func (w *Wallet) SpendGold(ctx context.Context, n int) error {
	if n < 0 {
		return ErrNegativeAmount
	}
	return w.change(ctx, &w.gold, -n, goldChanged)
}

// AddDiamond credits n diamonds.
func (w *Wallet) AddDiamond(ctx context.Context, n int) error {
	if n < 0 {
		return ErrNegativeAmount
	}
	return w.change(ctx, &w.diamond, n, diamondChanged)
}

// SpendDiamond debits n diamonds.
func (w *Wallet) SpendDiamond(ctx context.Context, n int) error {
	if n < 0 {
		return ErrNegativeAmount
	}
	return w.change(ctx, &w.diamond, -n, diamondChanged)
}

func goldChanged(ctx context.Context, b *event.Bus, cur, delta int) error {
	return event.Publish(ctx, b, events.GoldChanged{Current: cur, Delta: delta})
}

func diamondChanged(ctx context.Context, b *event.Bus, cur, delta int) error {
	return event.Publish(ctx, b, events.DiamondChanged{Current: cur, Delta: delta})
}

func (w *Wallet) change(ctx context.Context, balance *int, delta int,
	publish func(context.Context, *event.Bus, int, int) error) error {
	if w.env == nil {
		return ErrNotInitialized
	}
	if *balance+delta < 0 {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, *balance, -delta)
	}
	if delta == 0 {
		return nil
	}
	*balance += delta
	return publish(ctx, w.env.Bus(), *balance, delta)
}
