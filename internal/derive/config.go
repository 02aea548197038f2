package derive

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Config is an immutable mapping from key to scalar value. Values are int64,
// float64, string, bool or, for nested fragment tables, map[string]any.
type Config struct {
	values map[string]any
}

// NewConfig returns a Config holding a copy of m.
func NewConfig(m map[string]any) Config {
	values := make(map[string]any, len(m))
	for k, v := range m {
		values[k] = v
	}
	return Config{values: values}
}

// Get returns the raw value stored under key.
func (c Config) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present.
func (c Config) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Len returns the number of keys.
func (c Config) Len() int {
	return len(c.values)
}

// Keys returns all keys in sorted order.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the underlying mapping.
func (c Config) Map() map[string]any {
	m := make(map[string]any, len(c.values))
	for k, v := range c.values {
		m[k] = v
	}
	return m
}

// Int returns the value under key as an integer. Floats without a fractional
// part are accepted when they fit in an int64.
func (c Config) Int(key string) (int64, error) {
	v, ok := c.values[key]
	if !ok {
		return 0, errors.WithStack(&MissingKeyError{Key: key})
	}
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		if x == math.Trunc(x) && x >= -(1<<63) && x < 1<<63 {
			return int64(x), nil
		}
	}
	return 0, errors.WithStack(&TypeError{Key: key, Want: "integer", Value: v})
}

// Float returns the value under key as a float64.
func (c Config) Float(key string) (float64, error) {
	v, ok := c.values[key]
	if !ok {
		return 0, errors.WithStack(&MissingKeyError{Key: key})
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	}
	return 0, errors.WithStack(&TypeError{Key: key, Want: "number", Value: v})
}

// String returns the value under key as a string.
func (c Config) String(key string) (string, error) {
	v, ok := c.values[key]
	if !ok {
		return "", errors.WithStack(&MissingKeyError{Key: key})
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.WithStack(&TypeError{Key: key, Want: "string", Value: v})
	}
	return s, nil
}

// Builder returns a Builder seeded with the contents of c. Changes made
// through the builder never affect c.
func (c Config) Builder() *Builder {
	return &Builder{values: c.Map()}
}

// Builder accumulates changes to produce a new Config.
type Builder struct {
	values map[string]any
}

// Set stores v under key.
func (b *Builder) Set(key string, v any) *Builder {
	b.values[key] = v
	return b
}

// Delete removes key if present.
func (b *Builder) Delete(key string) *Builder {
	delete(b.values, key)
	return b
}

// Build returns the resulting Config. The builder must not be used afterwards.
func (b *Builder) Build() Config {
	c := Config{values: b.values}
	b.values = nil
	return c
}
