package presenter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/biruisred/IdleGear/internal/event"
	"github.com/biruisred/IdleGear/internal/event/events"
	"github.com/biruisred/IdleGear/internal/logging"
	"github.com/biruisred/IdleGear/internal/task"
)

// Options configures a View.
type Options struct {
	// Typewriter is the delay between revealed characters. Zero shows
	// messages at once.
	Typewriter time.Duration

	// MaxLines caps the message log.
	MaxLines int

	Logger *logging.Logger
}

// DefaultOptions returns the standard view settings.
func DefaultOptions() Options {
	return Options{Typewriter: 30 * time.Millisecond, MaxLines: 100}
}

// Styles used by the view.
var (
	styleDefault  = tcell.StyleDefault
	styleHeader   = tcell.StyleDefault.Bold(true)
	styleAnnounce = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Header rows above the message log.
const (
	rowTitle = iota
	rowStats
	rowStatus
	rowAnnounce
	rowLog = rowAnnounce + 2
)

// View draws the player's state to a terminal screen. It learns everything
// from bus events, so it works with any set of game components.
type View struct {
	screen tcell.Screen
	opts   Options
	log    *logging.Logger

	mu   sync.Mutex
	bus  *event.Bus
	subs []event.Subscription

	player                         string
	gold, diamond                  int
	health, energy, stamina, level int
	exp, expMax                    int
	status                         string

	announce  *Typewriter
	pending   []string
	shown     string
	departure *Typewriter
	lines     []string
}

// New returns a view drawing to screen. The screen must already be
// initialized.
func New(screen tcell.Screen, opts Options) *View {
	if opts.MaxLines <= 0 {
		opts.MaxLines = DefaultOptions().MaxLines
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &View{
		screen: screen,
		opts:   opts,
		log:    opts.Logger.WithComponent("presenter"),
		level:  1,
	}
}

// Attach subscribes the view to the game events on b.
func (v *View) Attach(b *event.Bus) error {
	v.mu.Lock()
	attached := v.bus != nil
	v.mu.Unlock()
	if attached {
		return errors.New("presenter: already attached")
	}

	var errs []error
	add := func(sub event.Subscription, err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		v.subs = append(v.subs, sub)
	}

	add(event.Subscribe(b, update(v, func(ev events.PlayerInit) {
		v.player = ev.PlayerName
	})))
	add(event.Subscribe(b, update(v, func(ev events.GoldChanged) { v.gold = ev.Current })))
	add(event.Subscribe(b, update(v, func(ev events.DiamondChanged) { v.diamond = ev.Current })))
	add(event.Subscribe(b, update(v, func(ev events.HealthChanged) { v.health = ev.Current })))
	add(event.Subscribe(b, update(v, func(ev events.EnergyChanged) { v.energy = ev.Current })))
	add(event.Subscribe(b, update(v, func(ev events.StaminaChanged) { v.stamina = ev.Current })))
	add(event.Subscribe(b, update(v, func(ev events.LevelChanged) { v.level = ev.Current })))
	add(event.Subscribe(b, update(v, func(ev events.ExpChanged) {
		v.exp, v.expMax = ev.Current, ev.Max
	})))
	add(event.Subscribe(b, update(v, func(ev events.QuestComplete) {
		v.status = ""
	})))
	add(event.Subscribe(b, update(v, func(ev events.GlobalMessage) {
		v.addLine(ev.Message)
	})))
	add(event.Subscribe(b, update(v, func(ev events.ScriptMessage) {
		v.addLine(fmt.Sprintf("[%s] %s", ev.Topic, ev.Text))
	})))
	add(event.Subscribe(b, update(v, func(ev events.AnnouncementMessage) {
		v.pending = append(v.pending, ev.Message)
	})))
	add(event.Subscribe(b, update(v, func(ev events.PhaseCompleted) {
		v.log.Debug("phase %s completed by %d components", ev.Phase, ev.Components)
	})))
	add(event.SubscribeSuspendable(b, v.depart))

	v.mu.Lock()
	v.bus = b
	v.mu.Unlock()
	if err := errors.Join(errs...); err != nil {
		v.Detach()
		return err
	}
	return nil
}

// Detach removes the view's subscriptions. Subscriptions already dropped
// by a bus Clear are skipped.
func (v *View) Detach() {
	v.mu.Lock()
	b, subs := v.bus, v.subs
	v.bus, v.subs = nil, nil
	v.mu.Unlock()
	if b == nil {
		return
	}
	for _, sub := range subs {
		if err := b.Unsubscribe(sub); err != nil && !errors.Is(err, event.ErrSubscriptionNotFound) {
			v.log.Warn("unsubscribe %s: %v", sub, err)
		}
	}
}

// update returns a handler applying fn under the view's lock.
func update[T any](v *View, fn func(T)) event.Handler[T] {
	return func(_ context.Context, ev T) error {
		v.mu.Lock()
		defer v.mu.Unlock()
		fn(ev)
		return nil
	}
}

// depart animates the departure line. The quest waits until it is typed
// out or passed.
func (v *View) depart(_ context.Context, ev events.QuestStarted) task.Task {
	tw := NewTypewriter(fmt.Sprintf("Setting out for %s...", ev.Name), v.opts.Typewriter)
	tw.OnOutput = func(partial string) {
		v.mu.Lock()
		v.status = partial
		v.mu.Unlock()
	}
	tw.OnComplete = func(string) {
		v.mu.Lock()
		v.status = fmt.Sprintf("On quest: %s (%s)", ev.Name, ev.Duration)
		v.departure = nil
		v.mu.Unlock()
	}
	v.mu.Lock()
	v.departure = tw
	v.mu.Unlock()
	return tw
}

// Step advances the announcement typewriter by the step's delta. The view
// never completes.
func (v *View) Step(ctx context.Context) (bool, error) {
	v.mu.Lock()
	if v.announce == nil && len(v.pending) > 0 {
		v.announce = v.typeAnnouncement(v.pending[0])
		v.pending = v.pending[1:]
	}
	tw := v.announce
	v.mu.Unlock()

	if tw == nil {
		return false, nil
	}
	if _, err := tw.Step(ctx); err != nil {
		return false, err
	}
	return false, nil
}

func (v *View) typeAnnouncement(msg string) *Typewriter {
	tw := NewTypewriter(msg, v.opts.Typewriter)
	tw.OnOutput = func(partial string) {
		v.mu.Lock()
		v.shown = partial
		v.mu.Unlock()
	}
	tw.OnTag = v.tag
	tw.OnComplete = func(full string) {
		v.mu.Lock()
		v.shown = full
		v.addLine(full)
		v.announce = nil
		v.mu.Unlock()
	}
	return tw
}

func (v *View) tag(name string) {
	switch name {
	case "beep":
		if err := v.screen.Beep(); err != nil {
			v.log.Debug("beep: %v", err)
		}
	default:
		v.log.Debug("unknown tag %q", name)
	}
}

// Pass finishes the current announcement and departure animations.
func (v *View) Pass() {
	v.mu.Lock()
	tws := []*Typewriter{v.announce, v.departure}
	v.mu.Unlock()
	for _, tw := range tws {
		if tw != nil {
			tw.Pass()
		}
	}
}

// addLine appends to the message log. The caller holds mu.
func (v *View) addLine(s string) {
	v.lines = append(v.lines, s)
	if n := len(v.lines) - v.opts.MaxLines; n > 0 {
		v.lines = append(v.lines[:0], v.lines[n:]...)
	}
}

// Lines returns a copy of the message log.
func (v *View) Lines() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.lines...)
}

// HandleEvent reacts to a terminal event and reports whether the player
// asked to quit.
func (v *View) HandleEvent(ev tcell.Event) (quit bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyEnter:
			v.Pass()
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return true
			case ' ':
				v.Pass()
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return false
}

// Draw renders the current state and shows it.
func (v *View) Draw() {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.screen
	s.Clear()
	width, height := s.Size()

	name := v.player
	if name == "" {
		name = "..."
	}
	expMax := "?"
	if v.expMax > 0 {
		expMax = fmt.Sprint(v.expMax)
	}
	v.text(0, rowTitle, width, styleHeader,
		fmt.Sprintf("IdleGear  %s  Lv %d  Exp %d/%s", name, v.level, v.exp, expMax))
	v.text(0, rowStats, width, styleDefault,
		fmt.Sprintf("Gold %d  Diamond %d  HP %d  EN %d  ST %d", v.gold, v.diamond, v.health, v.energy, v.stamina))
	if v.status != "" {
		v.text(0, rowStatus, width, styleStatus, v.status)
	} else {
		v.text(0, rowStatus, width, styleDim, "Resting")
	}
	v.text(0, rowAnnounce, width, styleAnnounce, v.shown)

	rows := height - rowLog - 1
	start := 0
	if rows > 0 && len(v.lines) > rows {
		start = len(v.lines) - rows
	}
	for i, line := range v.lines[start:] {
		if rowLog+i >= height-1 {
			break
		}
		v.text(0, rowLog+i, width, styleDefault, line)
	}
	if height > rowLog {
		v.text(0, height-1, width, styleDim, "space: skip  q: quit")
	}
	s.Show()
}

// text writes s at (x, y), clipped to width. The caller holds mu.
func (v *View) text(x, y, width int, style tcell.Style, s string) {
	for _, r := range s {
		if x >= width {
			return
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
