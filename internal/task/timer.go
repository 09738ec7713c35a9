package task

import (
	"context"
	"time"
)

type deltaKey struct{}

// WithDelta returns a context carrying the time elapsed since the previous
// step. Drivers set it so that timers advance with the host's clock.
func WithDelta(ctx context.Context, dt time.Duration) context.Context {
	return context.WithValue(ctx, deltaKey{}, dt)
}

// Delta returns the elapsed time stored by WithDelta, or zero.
func Delta(ctx context.Context) time.Duration {
	dt, _ := ctx.Value(deltaKey{}).(time.Duration)
	return dt
}

// Timer is a task that finishes once the accumulated step delta reaches its
// duration. A disabled timer finishes on its next step.
type Timer struct {
	duration time.Duration
	elapsed  time.Duration
	disabled bool
}

// Sleep returns an enabled timer for d.
func Sleep(d time.Duration) *Timer {
	return &Timer{duration: d}
}

// Step advances the timer by Delta(ctx).
func (t *Timer) Step(ctx context.Context) (bool, error) {
	if t.disabled {
		return true, nil
	}
	t.elapsed += Delta(ctx)
	return t.elapsed >= t.duration, nil
}

// Reset clears elapsed time and re-enables the timer.
func (t *Timer) Reset() {
	t.elapsed = 0
	t.disabled = false
}

// ResetTo is Reset with a new duration.
func (t *Timer) ResetTo(d time.Duration) {
	t.duration = d
	t.Reset()
}

// Enable re-enables a disabled timer without clearing elapsed time.
func (t *Timer) Enable() { t.disabled = false }

// Disable makes the timer finish on its next step.
func (t *Timer) Disable() { t.disabled = true }

// Remaining returns the time left before the timer fires.
func (t *Timer) Remaining() time.Duration {
	if t.disabled || t.elapsed >= t.duration {
		return 0
	}
	return t.duration - t.elapsed
}
