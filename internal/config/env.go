package config

import (
	"fmt"
	"strings"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "IDLEGEAR_"

// EnvConfigPath names the variable holding the config file path. It is read
// by the host, not mapped to a key.
const EnvConfigPath = EnvPrefix + "CONFIG"

type valueKind int

const (
	kindString valueKind = iota
	kindBool
	kindList
)

// envKeys lists the keys that may be set from the environment.
var envKeys = map[string]valueKind{
	"log.level":        kindString,
	"log.format":       kindString,
	"runtime.tick":     kindString,
	"runtime.disabled": kindList,
	"identity.user_id": kindString,
	"identity.name":    kindString,
	"scripts.enabled":  kindBool,
	"scripts.dir":      kindString,
	"ui.enabled":       kindBool,
	"ui.typewriter":    kindString,
}

// envOverrides converts IDLEGEAR_* variables into a nested key map.
// Variables that name no key are ignored.
func envOverrides(environ []string) (map[string]any, error) {
	out := make(map[string]any)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) || name == EnvConfigPath {
			continue
		}
		path := envToPath(name)
		kind, known := envKeys[path]
		if !known {
			continue
		}
		v, err := parseValue(kind, value)
		if err != nil {
			return nil, &ParseError{Path: "environment", Message: fmt.Sprintf("%s: %v", name, err), Err: err}
		}
		setByPath(out, path, v)
	}
	return out, nil
}

// envToPath converts IDLEGEAR_IDENTITY_USER_ID to identity.user_id.
func envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, EnvPrefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok {
		return section
	}
	return section + "." + key
}

func parseValue(kind valueKind, s string) (any, error) {
	switch kind {
	case kindBool:
		switch strings.ToLower(s) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0", "":
			return false, nil
		}
		return nil, fmt.Errorf("invalid boolean %q", s)
	case kindList:
		var items []any
		for _, item := range strings.Split(s, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	default:
		return s, nil
	}
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
