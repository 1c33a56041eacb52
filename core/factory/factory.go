package factory

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
)

// ModuleConfig selects a registered implementation by Type and carries its
// raw settings.
type ModuleConfig struct {
	Type string         `json:"type" yaml:"type" koanf:"type"`
	Conf map[string]any `json:"conf" yaml:"conf" koanf:"conf"`
}

// Factory builds a T from raw settings.
type Factory[T any] func(map[string]any) (T, error)

// Registry maps type names to factories. Kind names the family in errors,
// e.g. "metrics sink".
type Registry[T any] struct {
	kind string

	mu      sync.RWMutex
	entries map[string]Factory[T]
}

func NewRegistry[T any](kind string) *Registry[T] {
	return &Registry[T]{kind: kind, entries: map[string]Factory[T]{}}
}

// Register binds name to f. Names are unique per registry.
func (r *Registry[T]) Register(name string, f Factory[T]) error {
	if name == "" || f == nil {
		return fmt.Errorf("%s: empty name or nil factory", r.kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.entries[name]; dup {
		return fmt.Errorf("%s %q already registered", r.kind, name)
	}
	r.entries[name] = f
	return nil
}

// Create runs the factory registered for cfg.Type.
func (r *Registry[T]) Create(cfg ModuleConfig) (T, error) {
	r.mu.RLock()
	f := r.entries[cfg.Type]
	r.mu.RUnlock()
	if f == nil {
		var zero T
		return zero, fmt.Errorf("unknown %s type %q; registered: %s", r.kind, cfg.Type, strings.Join(r.Types(), ", "))
	}
	v, err := f(cfg.Conf)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", r.kind, cfg.Type, err)
	}
	return v, nil
}

// Types returns the registered names, sorted.
func (r *Registry[T]) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Decode copies raw settings into out, matching json tags. Strings convert
// to numbers, booleans, durations ("30s") and comma separated slices, so
// environment overrides decode like file values. Unknown keys are errors.
func Decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}
