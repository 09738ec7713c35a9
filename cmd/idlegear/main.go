// Package main is the entry point for the IdleGear terminal game.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/biruisred/IdleGear/internal/app"
	"github.com/biruisred/IdleGear/internal/component"
	"github.com/biruisred/IdleGear/internal/config"
	"github.com/biruisred/IdleGear/internal/event"
	"github.com/biruisred/IdleGear/internal/event/events"
	"github.com/biruisred/IdleGear/internal/identity"
	"github.com/biruisred/IdleGear/internal/idlegear"
	"github.com/biruisred/IdleGear/internal/logging"
	"github.com/biruisred/IdleGear/internal/presenter"
	"github.com/biruisred/IdleGear/internal/script"
	"github.com/biruisred/IdleGear/internal/task"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the command line.
type options struct {
	configPath string
	scriptsDir string
	logLevel   string
	logFile    string
	headless   bool
	ticks      int
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log, closeLog, err := newLogger(cfg, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()

	g := &game{cfg: cfg, log: log, ticks: opts.ticks}
	if cfg.UI.Enabled && !opts.headless {
		screen, err := presenter.Screen()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
			return 1
		}
		// Ensure the terminal is restored on all exit paths
		defer screen.Fini()
		g.screen = screen
		g.view = presenter.New(screen, presenter.Options{
			Typewriter: cfg.UI.Typewriter.Std(),
			Logger:     log,
		})
	}

	if err := g.setup(); err != nil {
		log.Error("setup: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := g.run(ctx); err != nil {
		log.Error("%v", err)
		if g.screen != nil {
			g.screen.Fini()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.scriptsDir, "scripts", "", "Load Lua components from directory")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.logFile, "log-file", "", "Write logs to file")
	flag.BoolVar(&opts.headless, "headless", false, "Run without the terminal view")
	flag.IntVar(&opts.ticks, "ticks", 0, "Stop after n ticks (0 runs until quit)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "IdleGear - a terminal idle RPG\n\n")
		fmt.Fprintf(os.Stderr, "Usage: idlegear [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  idlegear                         Play with idlegear.toml if present\n")
		fmt.Fprintf(os.Stderr, "  idlegear -scripts ./scripts      Add Lua components\n")
		fmt.Fprintf(os.Stderr, "  idlegear -headless -ticks 100    Run 100 ticks without a terminal\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("IdleGear %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.ticks < 0 {
		fmt.Fprintf(os.Stderr, "Error: -ticks must not be negative\n")
		os.Exit(1)
	}
	return opts
}

// loadConfig reads the config file and applies the command line on top.
func loadConfig(opts options) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.NewLoader().Load(path)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.scriptsDir != "" {
		cfg.Scripts.Enabled = true
		cfg.Scripts.Dir = opts.scriptsDir
	}
	return cfg, cfg.Validate()
}

// newLogger builds the logger. Without a log file, logs go to stderr in
// headless mode and are dropped while the terminal view owns the screen.
func newLogger(cfg *config.Config, opts options) (*logging.Logger, func(), error) {
	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(cfg.Log.Level)
	lc.Format = cfg.Log.Format

	closeFn := func() {}
	switch {
	case opts.logFile != "":
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		lc.Output = f
		closeFn = func() { _ = f.Close() }
	case cfg.UI.Enabled && !opts.headless:
		lc.Output = io.Discard
	}

	log := logging.New(lc)
	return log, func() {
		_ = log.Sync()
		closeFn()
	}, nil
}

// game drives one runtime from a ticker.
type game struct {
	cfg   *config.Config
	log   *logging.Logger
	ticks int

	rt     *app.Runtime
	screen tcell.Screen
	view   *presenter.View

	// phase is the lifecycle task being driven, nil when idle.
	phase task.Task
}

func (g *game) setup() error {
	catalog := component.NewCatalog()
	err := errors.Join(
		catalog.Add(identity.Type(identity.LocalProvider{
			ID:   g.cfg.Identity.UserID,
			Name: g.cfg.Identity.Name,
		})),
		idlegear.Register(catalog, idlegear.DefaultOptions()),
	)
	if g.view != nil {
		err = errors.Join(err, catalog.Add(presenter.Type(g.view)))
	}
	if err != nil {
		return err
	}

	providers := []component.Provider{catalog}
	if g.cfg.Scripts.Enabled {
		providers = append(providers, script.Dir(g.cfg.Scripts.Dir, g.log))
	}

	g.rt = app.New(app.Options{
		Logger:    g.log,
		Providers: providers,
		Disabled:  g.cfg.Runtime.Disabled,
	})
	return nil
}

func (g *game) run(ctx context.Context) error {
	if err := g.rt.Create(ctx); err != nil {
		return err
	}
	defer func() {
		if err := g.rt.Destroy(); err != nil {
			g.log.Warn("destroy: %v", err)
		}
	}()
	g.phase = task.Sequence(g.rt.Initialize(), task.Lazy(g.rt.StartSession))

	var watcher *config.Watcher
	if g.cfg.Path != "" {
		w, err := config.Watch(g.cfg.Path, config.DefaultDebounce)
		if err != nil {
			g.log.Warn("config watch disabled: %v", err)
		} else {
			watcher = w
			defer watcher.Close()
		}
	}

	var termEvents chan tcell.Event
	if g.screen != nil {
		termEvents = make(chan tcell.Event, 16)
		go pollEvents(g.screen, termEvents)
	}

	ticker := time.NewTicker(g.cfg.Runtime.Tick.Std())
	defer ticker.Stop()
	last := time.Now()
	n := 0

	for {
		select {
		case <-ctx.Done():
			return g.shutdown()
		case ev, ok := <-termEvents:
			if !ok {
				return g.shutdown()
			}
			if g.view.HandleEvent(ev) {
				return g.shutdown()
			}
		case path := <-watcherChanges(watcher):
			g.reload(ctx, path)
		case err := <-watcherErrors(watcher):
			g.log.Warn("config watch: %v", err)
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if err := g.tick(dt); err != nil {
				return err
			}
			n++
			if g.ticks > 0 && n >= g.ticks {
				return g.shutdown()
			}
		}
	}
}

// tick advances the lifecycle phase, the background tasks and the view by
// one frame.
func (g *game) tick(dt time.Duration) error {
	ctx := task.WithDelta(g.rt.Env().Context(), dt)
	if g.phase != nil {
		done, err := g.phase.Step(ctx)
		if done {
			g.phase = nil
		}
		if err != nil {
			return err
		}
	}
	if err := g.rt.Tick(dt); err != nil {
		return err
	}
	if g.view != nil {
		if _, err := g.view.Step(ctx); err != nil {
			return err
		}
		g.view.Draw()
	}
	return nil
}

// shutdown ends the session if it is running. The deferred Destroy in run
// tears it down.
func (g *game) shutdown() error {
	if g.rt.State() != app.StateSessionActive {
		return nil
	}
	if err := task.Run(context.Background(), g.rt.EndSession()); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	g.log.Info("session ended, %d phases run", len(g.rt.Metrics().Phases))
	return nil
}

// reload re-reads the config file and applies the settings that can change
// while running.
func (g *game) reload(ctx context.Context, path string) {
	cfg, err := config.NewLoader().Load(path)
	if err == nil {
		g.log.SetLevel(logging.ParseLevel(cfg.Log.Level))
		g.log.Info("config reloaded from %s", path)
	} else {
		g.log.Warn("config reload: %v", err)
	}
	if err := event.Publish(ctx, g.rt.Bus(), events.ConfigReloaded{Path: path, Err: err}); err != nil {
		g.log.Warn("config reload handler: %v", err)
	}
}

func pollEvents(s tcell.Screen, out chan<- tcell.Event) {
	defer close(out)
	for {
		ev := s.PollEvent()
		if ev == nil {
			return
		}
		out <- ev
	}
}

// watcherChanges returns w's change channel, or nil so the select case
// never fires.
func watcherChanges(w *config.Watcher) <-chan string {
	if w == nil {
		return nil
	}
	return w.Changes()
}

func watcherErrors(w *config.Watcher) <-chan error {
	if w == nil {
		return nil
	}
	return w.Errors()
}
