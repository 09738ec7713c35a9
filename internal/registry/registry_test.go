package registry

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"

	"github.com/biruisred/IdleGear/internal/component"
	"github.com/biruisred/IdleGear/internal/logging"
)

type alpha struct{ component.Base }

func (*alpha) Priority() int { return 10 }

type beta struct{ component.Base }

func (*beta) Priority() int { return -5 }

type gamma struct{ component.Base }

type gammaPlus struct{ gamma }

type owner struct{ component.PrimaryBase }

func (*owner) Priority() int { return 500 }

type otherOwner struct{ component.PrimaryBase }

type fixed struct {
	component.Base
	p int
}

func (f *fixed) Priority() int { return f.p }

type notifier interface{ Notify() string }

func (*alpha) Notify() string { return "alpha" }
func (*gamma) Notify() string { return "gamma" }

func catalog(t *testing.T, types ...*component.Type) *component.Catalog {
	t.Helper()
	cat := component.NewCatalog()
	for _, typ := range types {
		if err := cat.Add(typ); err != nil {
			t.Fatalf("Add(%s) error = %v", typ.Name, err)
		}
	}
	return cat
}

func names(cs []component.Component) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, component.NameOf(c))
	}
	return out
}

func TestBuild_OrdersByPriorityWithPrimaryFirst(t *testing.T) {
	cat := catalog(t,
		component.Define[alpha](),
		component.Define[gamma](),
		component.Define[beta](),
		component.Define[owner](),
	)
	r, err := Build(Options{}, cat)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := []string{"registry.owner", "registry.beta", "registry.alpha", "registry.gamma"}
	if diff := cmp.Diff(want, names(r.Components())); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if component.NameOf(r.Primary()) != "registry.owner" {
		t.Errorf("Primary() = %v", r.Primary())
	}
}

func TestBuild_TiesKeepDiscoveryOrder(t *testing.T) {
	first := &component.Type{Name: "first", New: func() component.Component { return &gamma{} }}
	second := &component.Type{Name: "second", New: func() component.Component { return &gamma{} }}
	r, _ := Build(Options{}, catalog(t, second, first))

	if diff := cmp.Diff([]string{"second", "first"}, names(r.Components())); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_SkipsExtendedTypes(t *testing.T) {
	// gammaPlus is registered before its parent.
	r, _ := Build(Options{}, catalog(t,
		component.Define[gammaPlus](),
		component.Define[gamma](),
		component.Define[alpha](),
	))

	if diff := cmp.Diff([]string{"registry.alpha", "registry.gammaPlus"}, names(r.Components())); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if _, ok := r.ByName("registry.gamma"); ok {
		t.Error("extended type was instantiated")
	}
}

func TestBuild_SkipsEveryExtendedParent(t *testing.T) {
	mix := &component.Type{
		Name:    "lua.Mix",
		Extends: []string{"registry.alpha", "registry.beta"},
		New:     func() component.Component { return &gamma{} },
	}
	r, err := Build(Options{}, catalog(t,
		component.Define[alpha](),
		component.Define[beta](),
		mix,
	))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if diff := cmp.Diff([]string{"lua.Mix"}, names(r.Components())); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}
	for _, parent := range mix.Extends {
		if _, ok := r.ByName(parent); ok {
			t.Errorf("extended type %s was instantiated", parent)
		}
	}
}

func TestBuild_ExtremePriorities(t *testing.T) {
	low := &component.Type{Name: "low", New: func() component.Component { return &fixed{p: math.MinInt} }}
	high := &component.Type{Name: "high", New: func() component.Component { return &fixed{p: math.MaxInt} }}
	r, err := Build(Options{}, catalog(t, high, low))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if diff := cmp.Diff([]string{"low", "high"}, names(r.Components())); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_PrimaryConflict(t *testing.T) {
	log, logs := logging.Observed(logging.LevelDebug)
	r, err := Build(Options{Logger: log}, catalog(t,
		component.Define[alpha](),
		component.Define[otherOwner](),
		component.Define[owner](),
	))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	conflicts := logs.FilterMessageSnippet("conflict").All()
	if len(conflicts) != 1 {
		t.Fatalf("logged %d conflicts, want 1", len(conflicts))
	}
	if conflicts[0].Level != zapcore.ErrorLevel {
		t.Errorf("conflict level = %v, want error", conflicts[0].Level)
	}

	primaries := 0
	for _, c := range r.Components() {
		if component.IsPrimary(c) {
			primaries++
		}
	}
	if primaries != 1 {
		t.Errorf("registry holds %d primary components, want 1", primaries)
	}
	if component.NameOf(r.Primary()) != "registry.otherOwner" {
		t.Errorf("Primary() = %s, want the first enumerated", component.NameOf(r.Primary()))
	}
}

func TestBuild_Disabled(t *testing.T) {
	r, _ := Build(Options{Disabled: []string{"registry.alpha"}}, catalog(t,
		component.Define[alpha](),
		component.Define[beta](),
	))
	if diff := cmp.Diff([]string{"registry.beta"}, names(r.Components())); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_EmptyLogsError(t *testing.T) {
	log, logs := logging.Observed(logging.LevelError)
	r, err := Build(Options{Logger: log}, component.NewCatalog())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
	if logs.Len() != 1 {
		t.Errorf("logged %d errors, want 1", logs.Len())
	}
}

func TestBuild_ProviderError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Build(Options{}, component.ProviderFunc(func() ([]*component.Type, error) {
		return nil, boom
	}))
	if !errors.Is(err, boom) {
		t.Errorf("Build() error = %v, want boom", err)
	}
}

func TestBuild_MergesProviders(t *testing.T) {
	log, logs := logging.Observed(logging.LevelWarn)
	// A second provider extends a Go type by name.
	scripted := &component.Type{
		Name:    "script.gamma",
		Extends: []string{"registry.gamma"},
		New:     func() component.Component { return &gamma{} },
	}
	dup := component.Define[alpha]()
	r, err := Build(Options{Logger: log},
		catalog(t, component.Define[gamma](), component.Define[alpha]()),
		component.ProviderFunc(func() ([]*component.Type, error) {
			return []*component.Type{scripted, dup}, nil
		}),
	)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if diff := cmp.Diff([]string{"registry.alpha", "script.gamma"}, names(r.Components())); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if logs.FilterMessageSnippet("provided twice").Len() != 1 {
		t.Error("duplicate type not reported")
	}
}

func TestLookup(t *testing.T) {
	log, logs := logging.Observed(logging.LevelError)
	r, _ := Build(Options{Logger: log}, catalog(t,
		component.Define[gamma](),
		component.Define[alpha](),
	))

	a, ok := Lookup[*alpha](r)
	if !ok || component.NameOf(a) != "registry.alpha" {
		t.Errorf("Lookup[*alpha]() = (%v, %v)", a, ok)
	}

	// alpha runs first (priority 10), so it wins the interface lookup.
	n, ok := Lookup[notifier](r)
	if !ok || n.Notify() != "alpha" {
		t.Errorf("Lookup[notifier]() = (%v, %v), want alpha", n, ok)
	}
	if logs.Len() != 0 {
		t.Fatalf("hits logged %d errors", logs.Len())
	}
}

func TestLookup_MissLogsOnce(t *testing.T) {
	log, logs := logging.Observed(logging.LevelDebug)
	r, _ := Build(Options{Logger: log}, catalog(t, component.Define[alpha]()))
	logs.TakeAll()

	b, ok := Lookup[*beta](r)
	if ok || b != nil {
		t.Errorf("Lookup[*beta]() = (%v, %v), want (nil, false)", b, ok)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel || !strings.Contains(entries[0].Message, "not found") {
		t.Errorf("entry = %v %q", entries[0].Level, entries[0].Message)
	}
}

func TestRegistry_Clear(t *testing.T) {
	r, _ := Build(Options{}, catalog(t, component.Define[alpha](), component.Define[owner]()))
	r.Clear()
	if r.Len() != 0 || r.Primary() != nil {
		t.Errorf("after Clear: Len=%d Primary=%v", r.Len(), r.Primary())
	}
	if _, ok := r.ByName("registry.alpha"); ok {
		t.Error("ByName found a cleared component")
	}
}

type report struct {
	level logging.Level
	msg   string
}

type recorder struct{ reports []report }

func (r *recorder) Log(level logging.Level, msg string) {
	r.reports = append(r.reports, report{level, msg})
}

func TestBuild_ReportsToSink(t *testing.T) {
	log, logs := logging.Observed(logging.LevelDebug)
	sink := &recorder{}
	r, err := Build(Options{Logger: log, Sink: sink}, catalog(t,
		component.Define[otherOwner](),
		component.Define[owner](),
	))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, ok := Lookup[*beta](r); ok {
		t.Fatal("Lookup[*beta]() found a component")
	}

	var errs []string
	for _, rep := range sink.reports {
		if rep.level == logging.LevelError {
			errs = append(errs, rep.msg)
		}
	}
	want := []string{
		"primary component conflict: using registry.otherOwner, discarding registry.owner",
		"component *registry.beta not found",
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Errorf("error reports (-want +got):\n%s", diff)
	}
	if logs.Len() != 0 {
		t.Errorf("Logger received %d entries meant for the sink", logs.Len())
	}
}
