package script

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/biruisred/IdleGear/internal/component"
	"github.com/biruisred/IdleGear/internal/logging"
)

// ErrManifest is wrapped by manifest validation errors.
var ErrManifest = errors.New("invalid script manifest")

// Manifest is the optional <name>.toml file next to a script.
type Manifest struct {
	// Name is the component type name. Defaults to the file name without
	// extension.
	Name string `toml:"name"`

	// Extends names the component types this script derives from. A script
	// extending a Go component replaces it.
	Extends []string `toml:"extends"`

	// Priority defaults to component.DefaultPriority.
	Priority *int `toml:"priority"`

	Primary bool `toml:"primary"`
}

// Loader enumerates the Lua components in a directory. It implements
// component.Provider; scripts are compiled once per Enumerate and each
// session instance runs in a fresh interpreter.
type Loader struct {
	fsys fs.FS
	log  *logging.Logger
}

// NewLoader creates a loader over fsys.
func NewLoader(fsys fs.FS, log *logging.Logger) *Loader {
	if log == nil {
		log = logging.Nop()
	}
	return &Loader{fsys: fsys, log: log}
}

// Dir creates a loader for a directory on disk.
func Dir(path string, log *logging.Logger) *Loader {
	return NewLoader(os.DirFS(path), log)
}

// Enumerate compiles every *.lua file in the directory root, in lexical
// order. Every broken script is reported.
func (l *Loader) Enumerate() ([]*component.Type, error) {
	paths, err := fs.Glob(l.fsys, "*.lua")
	if err != nil {
		return nil, err
	}

	var (
		types []*component.Type
		errs  []error
	)
	for _, p := range paths {
		t, err := l.load(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		l.log.Debug("script %s loaded as %s", p, t.Name)
		types = append(types, t)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return types, nil
}

func (l *Loader) load(path string) (*component.Type, error) {
	base := strings.TrimSuffix(path, ".lua")
	m, err := l.manifest(base + ".toml")
	if err != nil {
		return nil, err
	}
	if m.Name == "" {
		m.Name = base
	}

	src, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}
	proto, err := compile(path, src)
	if err != nil {
		return nil, err
	}

	def := &definition{
		path:     path,
		priority: component.DefaultPriority,
		proto:    proto,
	}
	if m.Priority != nil {
		def.priority = *m.Priority
	}
	return &component.Type{
		Name:    m.Name,
		Extends: m.Extends,
		Primary: m.Primary,
		New:     func() component.Component { return newComponent(def) },
		Source:  "lua:" + path,
	}, nil
}

func (l *Loader) manifest(path string) (Manifest, error) {
	var m Manifest
	data, err := fs.ReadFile(l.fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return m, fmt.Errorf("%w: %s: %v", ErrManifest, path, err)
	}
	for _, parent := range m.Extends {
		if strings.TrimSpace(parent) == "" {
			return m, fmt.Errorf("%w: %s: empty extends entry", ErrManifest, path)
		}
	}
	return m, nil
}

// compile parses and compiles a chunk so every session can run it without
// reparsing.
func compile(name string, src []byte) (*lua.FunctionProto, error) {
	chunk, err := parse.Parse(bytes.NewReader(src), name)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	return proto, nil
}
