package app

import (
	"time"

	"github.com/biruisred/IdleGear/internal/event/events"
)

// PhaseStats describes the last run of one phase.
type PhaseStats struct {
	Phase events.Phase
	// Steps is the number of hook steps taken across all components.
	Steps int
	// Duration is the wall-clock time from first step to completion.
	Duration time.Duration
	// Slowest is the component that took the most steps, and how many.
	Slowest      string
	SlowestSteps int
}

// MetricsSnapshot is a point-in-time copy of the runtime metrics.
type MetricsSnapshot struct {
	Sessions int
	Phases   []PhaseStats
}

// Metrics tracks how long phases take. It is updated from the driving loop
// only.
type Metrics struct {
	sessions int
	phases   map[events.Phase]*PhaseStats
	order    []events.Phase
	now      func() time.Time
}

// NewMetrics creates an empty tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		phases: make(map[events.Phase]*PhaseStats),
		now:    time.Now,
	}
}

func (m *Metrics) recordSession() {
	m.sessions++
}

func (m *Metrics) begin(phase events.Phase) *PhaseStats {
	s, ok := m.phases[phase]
	if !ok {
		s = &PhaseStats{Phase: phase}
		m.phases[phase] = s
		m.order = append(m.order, phase)
	}
	*s = PhaseStats{Phase: phase}
	return s
}

func (s *PhaseStats) component(name string, steps int) {
	if steps > s.SlowestSteps {
		s.Slowest, s.SlowestSteps = name, steps
	}
}

// Snapshot returns the current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Sessions: m.sessions}
	for _, p := range m.order {
		snap.Phases = append(snap.Phases, *m.phases[p])
	}
	return snap
}
