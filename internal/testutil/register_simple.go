package testutil

import "github.com/vk/kamelrun/internal/registry"

// SimpleModule is a test helper for easily creating a mock module that
// registers a single trigger or sink component.
type SimpleModule struct {
	TriggerName string
	Trigger     registry.Trigger

	SinkName string
	Sink     registry.SinkFactory
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.TriggerName != "" && m.Trigger != nil {
		r.RegisterTrigger(m.TriggerName, m.Trigger)
	}
	if m.SinkName != "" && m.Sink != nil {
		r.RegisterSink(m.SinkName, m.Sink)
	}
}
