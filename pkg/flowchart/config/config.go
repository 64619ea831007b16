package config

import (
	"strconv"
	"strings"
	"time"
)

// Config is a read-mostly view over decoded configuration data.
//
// Keys are dotted paths into nested maps, so "llm.model" reads
// data["llm"]["model"]. A top-level key that literally contains the dots
// wins over the nested walk. Every accessor falls back to its default when
// the key is absent or holds a value it cannot convert.
type Config struct {
	data map[string]any
}

// New wraps data. A nil map yields an empty Config.
func New(data map[string]any) Config {
	if data == nil {
		data = map[string]any{}
	}
	return Config{data: data}
}

func (c Config) lookup(key string) (any, bool) {
	if v, ok := c.data[key]; ok {
		return v, true
	}
	var node any = c.data
	for _, part := range strings.Split(key, ".") {
		section, ok := asMap(node)
		if !ok {
			return nil, false
		}
		if node, ok = section[part]; !ok {
			return nil, false
		}
	}
	return node, true
}

// asMap accepts both map shapes the YAML and JSON decoders produce.
func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	loose, ok := v.(map[any]any)
	if !ok {
		return nil, false
	}
	m := make(map[string]any, len(loose))
	for k, val := range loose {
		if name, isString := k.(string); isString {
			m[name] = val
		}
	}
	return m, true
}

// convert looks key up and runs it through conv, falling back to def.
func convert[T any](c Config, key string, def T, conv func(any) (T, bool)) T {
	v, ok := c.lookup(key)
	if !ok {
		return def
	}
	if out, ok := conv(v); ok {
		return out
	}
	return def
}

// String returns key as a string. Other types are not stringified.
func (c Config) String(key, def string) string {
	return convert(c, key, def, func(v any) (string, bool) {
		s, ok := v.(string)
		return s, ok
	})
}

// Int returns key as an int. Floats convert only when they are whole.
func (c Config) Int(key string, def int) int {
	return convert(c, key, def, func(v any) (int, bool) {
		switch n := v.(type) {
		case int:
			return n, true
		case int64:
			return int(n), true
		case float64:
			return int(n), n == float64(int(n))
		}
		return 0, false
	})
}

// Float returns key as a float64.
func (c Config) Float(key string, def float64) float64 {
	return convert(c, key, def, func(v any) (float64, bool) {
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		}
		return 0, false
	})
}

// Bool returns key as a bool. Strings go through strconv.ParseBool.
func (c Config) Bool(key string, def bool) bool {
	return convert(c, key, def, func(v any) (bool, bool) {
		switch b := v.(type) {
		case bool:
			return b, true
		case string:
			parsed, err := strconv.ParseBool(b)
			return parsed, err == nil
		}
		return false, false
	})
}

// Duration returns key as a time.Duration. Strings use
// time.ParseDuration; bare numbers are seconds.
func (c Config) Duration(key string, def time.Duration) time.Duration {
	return convert(c, key, def, func(v any) (time.Duration, bool) {
		switch d := v.(type) {
		case time.Duration:
			return d, true
		case string:
			parsed, err := time.ParseDuration(d)
			return parsed, err == nil
		case int:
			return time.Duration(d) * time.Second, true
		case int64:
			return time.Duration(d) * time.Second, true
		case float64:
			return time.Duration(d * float64(time.Second)), true
		}
		return 0, false
	})
}

// Sub returns the section under key. Missing keys and non-map values give
// an empty Config.
func (c Config) Sub(key string) Config {
	return New(convert(c, key, nil, asMap))
}

// Has reports whether key resolves to any value.
func (c Config) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

// Set writes value at the dotted key, replacing any scalar in the way with
// a new section.
func (c Config) Set(key string, value any) {
	parts := strings.Split(key, ".")
	last := len(parts) - 1
	section := c.data
	for _, part := range parts[:last] {
		child, ok := section[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			section[part] = child
		}
		section = child
	}
	section[parts[last]] = value
}

// Raw exposes the backing map. Callers must not mutate it.
func (c Config) Raw() map[string]any {
	return c.data
}
