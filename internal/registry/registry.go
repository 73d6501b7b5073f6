package registry

import (
	"fmt"
	"log/slog"
	"sort"
)

// Module is the interface that all components must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the triggers and sinks available to a single application
// instance.
type Registry struct {
	triggers map[string]Trigger
	sinks    map[string]SinkFactory
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		triggers: make(map[string]Trigger),
		sinks:    make(map[string]SinkFactory),
	}
}

// RegisterTrigger registers the trigger for a URI component name.
func (r *Registry) RegisterTrigger(component string, t Trigger) {
	if _, exists := r.triggers[component]; exists {
		panic(fmt.Sprintf("trigger for component '%s' already registered", component))
	}
	slog.Debug("Registering trigger.", "component", component)
	r.triggers[component] = t
}

// RegisterSink registers the sink factory for a URI component name.
func (r *Registry) RegisterSink(component string, f SinkFactory) {
	if _, exists := r.sinks[component]; exists {
		panic(fmt.Sprintf("sink for component '%s' already registered", component))
	}
	slog.Debug("Registering sink.", "component", component)
	r.sinks[component] = f
}

// Trigger looks up the trigger registered for component.
func (r *Registry) Trigger(component string) (Trigger, bool) {
	t, ok := r.triggers[component]
	return t, ok
}

// Sink looks up the sink factory registered for component.
func (r *Registry) Sink(component string) (SinkFactory, bool) {
	f, ok := r.sinks[component]
	return f, ok
}

// Triggers returns the sorted names of every registered trigger.
func (r *Registry) Triggers() []string { return sortedKeys(r.triggers) }

// Sinks returns the sorted names of every registered sink.
func (r *Registry) Sinks() []string { return sortedKeys(r.sinks) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
