package placeholder

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/magiconair/properties"
)

// Source looks up property values by name.
type Source interface {
	Lookup(name string) (string, bool)
}

// Set is an immutable map-backed Source.
type Set struct {
	values map[string]string
}

// NewSet copies values into a new Set.
func NewSet(values map[string]string) *Set {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return &Set{values: cp}
}

// Lookup implements Source.
func (s *Set) Lookup(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.values[name]
	return v, ok
}

// Keys returns the sorted property names.
func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of properties.
func (s *Set) Len() int {
	return len(s.values)
}

// Layered merges sources from lowest to highest precedence into a single
// new Set. Later layers win.
func Layered(layers ...map[string]string) *Set {
	merged := make(map[string]string)
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	return &Set{values: merged}
}

// ParsePairs parses `key=value` strings as given to `-p` flags and
// `property=` directives.
func ParsePairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid property %q: expected key=value", p)
		}
		out[k] = v
	}
	return out, nil
}

// LoadFile reads a Java-style .properties file. Values are kept verbatim:
// `${...}` expansion is left to body expressions.
func LoadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading property file: %w", err)
	}
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing property file %s: %w", path, err)
	}
	out := make(map[string]string, p.Len())
	for _, k := range p.Keys() {
		v, _ := p.Get(k)
		out[k] = v
	}
	return out, nil
}

// EnvName maps a property name to the environment variable consulted for
// it: `first.property` and `first-property` both become `FIRST_PROPERTY`.
func EnvName(name string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(name))
}

// Env is a Source reading the process environment through EnvName.
type Env struct{}

// Lookup implements Source.
func (Env) Lookup(name string) (string, bool) {
	return os.LookupEnv(EnvName(name))
}

// Chain consults sources in order and returns the first hit.
type Chain []Source

// Lookup implements Source.
func (c Chain) Lookup(name string) (string, bool) {
	for _, s := range c {
		if s == nil {
			continue
		}
		if v, ok := s.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}
