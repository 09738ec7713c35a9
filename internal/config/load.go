package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// FileSystem is the file access the loader needs. Tests use an in-memory
// implementation.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the real file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ErrParse is wrapped by *ParseError.
var ErrParse = errors.New("config parse error")

// ParseError reports malformed configuration input.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is matches ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Loader reads a Config from a file and the environment.
type Loader struct {
	fs      FileSystem
	environ func() []string
}

// NewLoader creates a loader for the OS file system and process environment.
func NewLoader() *Loader {
	return &Loader{fs: OSFS{}, environ: os.Environ}
}

// NewLoaderWithFS creates a loader with a custom file system and
// environment. A nil environ means no environment overrides.
func NewLoaderWithFS(fsys FileSystem, environ func() []string) *Loader {
	if environ == nil {
		environ = func() []string { return nil }
	}
	return &Loader{fs: fsys, environ: environ}
}

// Load builds the config: defaults, then the file at path, then the
// environment. A missing file is not an error; the defaults are used.
// An empty path means DefaultPath.
func (l *Loader) Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg := Default()

	data, err := l.fs.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := decode(path, data, cfg); err != nil {
			return nil, err
		}
		cfg.Path = path
	}

	overrides, err := envOverrides(l.environ())
	if err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		data, err := toml.Marshal(overrides)
		if err != nil {
			return nil, fmt.Errorf("encoding environment overrides: %w", err)
		}
		if err := decode("environment", data, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode parses TOML data over the values already in cfg.
func decode(source string, data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return pe
	}
	return nil
}
