package script

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"

	"github.com/biruisred/IdleGear/internal/component"
	"github.com/biruisred/IdleGear/internal/event"
	"github.com/biruisred/IdleGear/internal/event/events"
	"github.com/biruisred/IdleGear/internal/logging"
	"github.com/biruisred/IdleGear/internal/registry"
	"github.com/biruisred/IdleGear/internal/task"
)

func file(src string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(src)}
}

// instantiate loads a single-script directory and attaches the instance.
func instantiate(t *testing.T, src string, log *logging.Logger) *Component {
	t.Helper()
	types, err := NewLoader(fstest.MapFS{"sample.lua": file(src)}, nil).Enumerate()
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	if len(types) != 1 {
		t.Fatalf("Enumerate() returned %d types, want 1", len(types))
	}
	c := types[0].New().(*Component)
	component.Attach(c, "lua.Sample", log)
	t.Cleanup(c.state.Close)
	return c
}

// messages subscribes to script messages on a new bus.
func messages(t *testing.T) (*event.Bus, *[]events.ScriptMessage) {
	t.Helper()
	bus := event.NewBus()
	var got []events.ScriptMessage
	_, err := event.Subscribe(bus, func(_ context.Context, msg events.ScriptMessage) error {
		got = append(got, msg)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	return bus, &got
}

func step(t *testing.T, tk task.Task) bool {
	t.Helper()
	done, err := tk.Step(context.Background())
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	return done
}

func texts(msgs []events.ScriptMessage) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Topic+":"+m.Text)
	}
	return out
}

func TestLoader_Enumerate(t *testing.T) {
	fsys := fstest.MapFS{
		"a.lua":     file("function initialize() end"),
		"b.lua":     file("function initialize() end"),
		"b.toml":    file("name = \"lua.Bonus\"\nextends = [\"idlegear.Wallet\"]\npriority = 5\n"),
		"notes.txt": file("not a script"),
	}

	types, err := NewLoader(fsys, nil).Enumerate()
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}

	var names []string
	for _, typ := range types {
		names = append(names, typ.Name)
	}
	if diff := cmp.Diff([]string{"a", "lua.Bonus"}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	bonus := types[1]
	if diff := cmp.Diff([]string{"idlegear.Wallet"}, bonus.Extends); diff != "" {
		t.Errorf("Extends mismatch (-want +got):\n%s", diff)
	}
	if bonus.Source != "lua:b.lua" {
		t.Errorf("Source = %q, want lua:b.lua", bonus.Source)
	}

	a, b := types[0].New(), bonus.New()
	defer a.(*Component).state.Close()
	defer b.(*Component).state.Close()
	if a.Priority() != component.DefaultPriority {
		t.Errorf("a.Priority() = %d, want default", a.Priority())
	}
	if b.Priority() != 5 {
		t.Errorf("b.Priority() = %d, want 5", b.Priority())
	}
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name     string
		fsys     fstest.MapFS
		manifest bool
		mention  string
	}{
		{
			name:    "syntax error",
			fsys:    fstest.MapFS{"ok.lua": file(""), "bad.lua": file("function (")},
			mention: "bad.lua",
		},
		{
			name: "unknown manifest key",
			fsys: fstest.MapFS{
				"q.lua":  file(""),
				"q.toml": file("nmae = \"typo\"\n"),
			},
			manifest: true,
			mention:  "q.toml",
		},
		{
			name: "empty parent",
			fsys: fstest.MapFS{
				"q.lua":  file(""),
				"q.toml": file("extends = [\"\"]\n"),
			},
			manifest: true,
			mention:  "q.toml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(tt.fsys, nil).Enumerate()
			if err == nil {
				t.Fatal("Enumerate() succeeded")
			}
			if tt.manifest && !errors.Is(err, ErrManifest) {
				t.Errorf("error = %v, want ErrManifest", err)
			}
			if !strings.Contains(err.Error(), tt.mention) {
				t.Errorf("error %q does not mention %s", err, tt.mention)
			}
		})
	}
}

func TestComponent_HookYields(t *testing.T) {
	c := instantiate(t, `
function initialize()
  publish("init", "one")
  coroutine.yield()
  coroutine.yield()
  publish("init", "two")
end
`, nil)
	bus, got := messages(t)
	env := component.NewEnv(context.Background(), bus, nil, nil)

	init := c.Initialize(env)
	if step(t, init) {
		t.Fatal("hook finished on the first step")
	}
	if diff := cmp.Diff([]string{"init:one"}, texts(*got)); diff != "" {
		t.Errorf("after step 1 (-want +got):\n%s", diff)
	}
	if step(t, init) {
		t.Fatal("hook finished on the second step")
	}
	if !step(t, init) {
		t.Fatal("hook not finished after the third step")
	}
	if diff := cmp.Diff([]string{"init:one", "init:two"}, texts(*got)); diff != "" {
		t.Errorf("after step 3 (-want +got):\n%s", diff)
	}
	if (*got)[0].Component != "lua.Sample" {
		t.Errorf("Component = %q, want lua.Sample", (*got)[0].Component)
	}
}

func TestComponent_MissingHookCompletes(t *testing.T) {
	c := instantiate(t, "function initialize() end", nil)
	env := component.NewEnv(context.Background(), event.NewBus(), nil, nil)
	if !step(t, c.EndSession(env)) {
		t.Error("missing hook did not complete immediately")
	}
}

func TestComponent_ObservesCancellation(t *testing.T) {
	c := instantiate(t, `
function start_session()
  while not cancelled() do
    coroutine.yield()
  end
  publish("session", "stopped")
end
`, nil)
	bus, got := messages(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env := component.NewEnv(ctx, bus, nil, nil)

	start := c.StartSession(env)
	for i := 0; i < 3; i++ {
		if step(t, start) {
			t.Fatalf("hook finished before cancellation (step %d)", i+1)
		}
	}
	cancel()
	if !step(t, start) {
		t.Fatal("hook did not exit after cancellation")
	}
	if diff := cmp.Diff([]string{"session:stopped"}, texts(*got)); diff != "" {
		t.Errorf("messages (-want +got):\n%s", diff)
	}
}

func TestComponent_HookError(t *testing.T) {
	c := instantiate(t, `function initialize() error("boom") end`, nil)
	env := component.NewEnv(context.Background(), event.NewBus(), nil, nil)

	done, err := c.Initialize(env).Step(context.Background())
	if !done || err == nil {
		t.Fatalf("Step() = %v, %v; want done with error", done, err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q does not carry the Lua message", err)
	}
}

func TestComponent_ChunkErrorFailsHooks(t *testing.T) {
	c := instantiate(t, `error("bad top level")`, nil)
	env := component.NewEnv(context.Background(), event.NewBus(), nil, nil)

	_, err := c.Initialize(env).Step(context.Background())
	if err == nil || !strings.Contains(err.Error(), "bad top level") {
		t.Errorf("Initialize error = %v, want chunk error", err)
	}
}

func TestComponent_Sandbox(t *testing.T) {
	c := instantiate(t, `
function initialize()
  if os ~= nil or io ~= nil or dofile ~= nil or load ~= nil or require ~= nil then
    error("unsafe library available")
  end
  local t = {}
  table.insert(t, string.upper("x"))
  publish("ok", t[1] .. tostring(math.floor(2.5)))
end
`, nil)
	bus, got := messages(t)
	env := component.NewEnv(context.Background(), bus, nil, nil)

	if !step(t, c.Initialize(env)) {
		t.Fatal("hook did not finish")
	}
	if diff := cmp.Diff([]string{"ok:X2"}, texts(*got)); diff != "" {
		t.Errorf("messages (-want +got):\n%s", diff)
	}
}

func TestComponent_Log(t *testing.T) {
	log, logs := logging.Observed(logging.LevelDebug)
	c := instantiate(t, `
function initialize()
  log("warn", "careful")
  print("gold", 10)
end
`, log)
	env := component.NewEnv(context.Background(), event.NewBus(), nil, nil)
	step(t, c.Initialize(env))

	warn := logs.FilterMessage("careful").All()
	if len(warn) != 1 || warn[0].Level != zapcore.WarnLevel {
		t.Errorf("warn entries = %+v", warn)
	}
	if logs.FilterMessage("gold\t10").Len() != 1 {
		t.Errorf("print output missing: %+v", logs.All())
	}
}

func TestComponent_Destroy(t *testing.T) {
	c := instantiate(t, `function destroy() publish("bye", "now") end`, nil)
	bus, got := messages(t)
	env := component.NewEnv(context.Background(), bus, nil, nil)

	c.Destroy(env)
	if diff := cmp.Diff([]string{"bye:now"}, texts(*got)); diff != "" {
		t.Errorf("messages (-want +got):\n%s", diff)
	}
	if !c.state.closed {
		t.Error("state not closed after Destroy")
	}
	if _, err := c.Initialize(env).Step(context.Background()); err != nil {
		t.Errorf("hook on closed state = %v, want missing hook", err)
	}
}

type goWallet struct {
	component.Base
}

func TestLoader_ScriptShadowsGoComponent(t *testing.T) {
	goType := component.Define[goWallet]()
	cat := component.NewCatalog()
	if err := cat.Add(goType); err != nil {
		t.Fatal(err)
	}
	scripts := NewLoader(fstest.MapFS{
		"wallet.lua":  file(""),
		"wallet.toml": file("name = \"lua.Wallet\"\nextends = [\"" + goType.Name + "\"]\n"),
	}, nil)

	reg, err := registry.Build(registry.Options{}, cat, scripts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	var names []string
	for _, c := range reg.Components() {
		names = append(names, component.NameOf(c))
	}
	if diff := cmp.Diff([]string{"lua.Wallet"}, names); diff != "" {
		t.Errorf("components (-want +got):\n%s", diff)
	}
}
