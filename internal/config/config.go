package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "idlegear.toml"

// Config holds all IdleGear settings.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Runtime  RuntimeConfig  `toml:"runtime"`
	Identity IdentityConfig `toml:"identity"`
	Scripts  ScriptsConfig  `toml:"scripts"`
	UI       UIConfig       `toml:"ui"`

	// Path is the file the config was read from, empty if none.
	Path string `toml:"-"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// RuntimeConfig configures the session driver.
type RuntimeConfig struct {
	// Tick is the interval between steps of the running phase.
	Tick Duration `toml:"tick"`
	// Disabled lists component type names that are never instantiated.
	Disabled []string `toml:"disabled"`
}

// IdentityConfig configures the local user provider.
type IdentityConfig struct {
	UserID string `toml:"user_id"`
	Name   string `toml:"name"`
}

// ScriptsConfig configures Lua components.
type ScriptsConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// UIConfig configures the terminal view.
type UIConfig struct {
	Enabled bool `toml:"enabled"`
	// Typewriter is the delay between characters of typed messages.
	// Zero prints messages at once.
	Typewriter Duration `toml:"typewriter"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Runtime: RuntimeConfig{
			Tick: Duration(100 * time.Millisecond),
		},
		Identity: IdentityConfig{
			Name: "Player Test",
		},
		Scripts: ScriptsConfig{
			Dir: "scripts",
		},
		UI: UIConfig{
			Enabled:    true,
			Typewriter: Duration(30 * time.Millisecond),
		},
	}
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

var (
	logLevels  = []string{"debug", "info", "warn", "warning", "error"}
	logFormats = []string{"console", "json"}
)

// Validate checks the settings and returns every problem found.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(key, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s: %s", ErrInvalid, key, fmt.Sprintf(format, args...)))
	}

	if !oneOf(c.Log.Level, logLevels) {
		invalid("log.level", "unknown level %q", c.Log.Level)
	}
	if !oneOf(c.Log.Format, logFormats) {
		invalid("log.format", "unknown format %q", c.Log.Format)
	}
	if c.Runtime.Tick <= 0 {
		invalid("runtime.tick", "must be positive, got %s", c.Runtime.Tick)
	}
	for i, name := range c.Runtime.Disabled {
		if strings.TrimSpace(name) == "" {
			invalid("runtime.disabled", "entry %d is empty", i)
		}
	}
	if c.Scripts.Enabled && c.Scripts.Dir == "" {
		invalid("scripts.dir", "required when scripts are enabled")
	}
	if c.UI.Typewriter < 0 {
		invalid("ui.typewriter", "must not be negative, got %s", c.UI.Typewriter)
	}
	return errors.Join(errs...)
}

func oneOf(s string, set []string) bool {
	s = strings.ToLower(s)
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Duration is a time.Duration written as a string such as "250ms".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
