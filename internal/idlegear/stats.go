package idlegear

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/biruisred/IdleGear/internal/component"
	"github.com/biruisred/IdleGear/internal/event"
	"github.com/biruisred/IdleGear/internal/event/events"
	"github.com/biruisred/IdleGear/internal/task"
)

// ErrExhausted is returned when a quest needs more stamina than is left.
var ErrExhausted = errors.New("not enough stamina")

const (
	maxHealth = 100
	maxEnergy = 100
)

// ExpToNext returns the experience needed to advance from level.
func ExpToNext(level int) int {
	return 50 + 25*(level-1)
}

// Stats tracks the player's vitals, level and experience. Stamina pays for
// quests and regenerates in the background while a session is active.
type Stats struct {
	component.Base

	maxStamina int
	regen      time.Duration

	env     *component.Env
	health  int
	energy  int
	stamina int
	level   int
	exp     int
}

// Priority runs Stats after the wallet.
func (s *Stats) Priority() int { return 20 }

// Initialize resets the vitals and subscribes to quest events.
func (s *Stats) Initialize(env *component.Env) task.Task {
	return task.Func(func(context.Context) error {
		s.env = env
		s.health, s.energy = maxHealth, maxEnergy
		s.stamina, s.level, s.exp = s.maxStamina, 1, 0

		_, err1 := event.Subscribe(env.Bus(), func(ctx context.Context, ev events.QuestStarted) error {
			return s.SpendStamina(ctx, ev.Stamina)
		})
		_, err2 := event.Subscribe(env.Bus(), func(ctx context.Context, ev events.QuestComplete) error {
			if !ev.Success {
				return nil
			}
			return s.GainExp(ctx, ev.ExpGain)
		})
		return errors.Join(err1, err2)
	})
}

// PostInitialize announces the starting values.
func (s *Stats) PostInitialize(env *component.Env) task.Task {
	return task.Func(func(ctx context.Context) error {
		b := env.Bus()
		return errors.Join(
			event.Publish(ctx, b, events.HealthChanged{Current: s.health}),
			event.Publish(ctx, b, events.EnergyChanged{Current: s.energy}),
			event.Publish(ctx, b, events.StaminaChanged{Current: s.stamina}),
			event.Publish(ctx, b, events.LevelChanged{Current: s.level}),
			event.Publish(ctx, b, events.ExpChanged{Current: s.exp, Max: ExpToNext(s.level)}),
		)
	})
}

// StartSession starts stamina regeneration.
func (s *Stats) StartSession(env *component.Env) task.Task {
	return task.Func(func(context.Context) error {
		if s.regen <= 0 {
			return nil
		}
		return env.Go(s.regenerate(env))
	})
}

// regenerate restores one stamina point per interval until the session is
// destroyed.
func (s *Stats) regenerate(env *component.Env) task.Task {
	timer := task.Sleep(s.regen)
	return task.StepFunc(func(ctx context.Context) (bool, error) {
		if env.Cancelled() {
			return true, nil
		}
		if done, _ := timer.Step(ctx); !done {
			return false, nil
		}
		timer.Reset()
		return false, s.RestoreStamina(ctx, 1)
	})
}

// Stamina returns the current stamina.
func (s *Stats) Stamina() int { return s.stamina }

// MaxStamina returns the stamina cap.
func (s *Stats) MaxStamina() int { return s.maxStamina }

// Level returns the current level.
func (s *Stats) Level() int { return s.level }

// Exp returns the experience within the current level and the amount
// needed for the next one.
func (s *Stats) Exp() (current, next int) { return s.exp, ExpToNext(s.level) }

// SpendStamina removes n stamina.
func (s *Stats) SpendStamina(ctx context.Context, n int) error {
	if s.env == nil {
		return ErrNotInitialized
	}
	if n > s.stamina {
		return fmt.Errorf("%w: have %d, need %d", ErrExhausted, s.stamina, n)
	}
	if n <= 0 {
		return nil
	}
	s.stamina -= n
	return event.Publish(ctx, s.env.Bus(), events.StaminaChanged{Current: s.stamina, Delta: -n})
}

// RestoreStamina adds up to n stamina without passing the cap.
func (s *Stats) RestoreStamina(ctx context.Context, n int) error {
	if s.env == nil {
		return ErrNotInitialized
	}
	n = min(n, s.maxStamina-s.stamina)
	if n <= 0 {
		return nil
	}
	s.stamina += n
	return event.Publish(ctx, s.env.Bus(), events.StaminaChanged{Current: s.stamina, Delta: n})
}

// GainExp adds experience, levelling up as many times as it covers.
func (s *Stats) GainExp(ctx context.Context, n int) error {
	if s.env == nil {
		return ErrNotInitialized
	}
	if n <= 0 {
		return nil
	}
	s.exp += n
	levels := 0
	for s.exp >= ExpToNext(s.level) {
		s.exp -= ExpToNext(s.level)
		s.level++
		levels++
	}

	b := s.env.Bus()
	if levels > 0 {
		if err := event.Publish(ctx, b, events.LevelChanged{Current: s.level, Delta: levels}); err != nil {
			return err
		}
	}
	return event.Publish(ctx, b, events.ExpChanged{Current: s.exp, Max: ExpToNext(s.level), Delta: n})
}
