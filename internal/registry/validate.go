package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/kamelrun/internal/config"
	"github.com/vk/kamelrun/internal/ctxlog"
	"github.com/vk/kamelrun/internal/endpoint"
)

var (
	// ErrUnknownComponent is returned for an endpoint whose component has
	// no registered trigger or sink.
	ErrUnknownComponent = errors.New("unknown component")
	// ErrNotATrigger is returned when a route consumes from a sink-only
	// component.
	ErrNotATrigger = errors.New("component cannot start a route")
	// ErrNotASink is returned when a route produces to a trigger-only
	// component.
	ErrNotASink = errors.New("component cannot receive messages")
)

// ValidateRoute checks that the route starts from a registered trigger and
// ends at a registered sink, and that both accept their endpoint options.
func (r *Registry) ValidateRoute(route *config.Route) error {
	if err := r.validateTrigger(route.From); err != nil {
		return fmt.Errorf("route '%s' from %s: %w", route.ID, route.FromURI, err)
	}
	if route.Sink.Kind != config.SinkTo {
		return nil
	}
	if err := r.validateSink(route.Sink.Endpoint); err != nil {
		return fmt.Errorf("route '%s' to %s: %w", route.ID, route.Sink.URI, err)
	}
	return nil
}

func (r *Registry) validateTrigger(ep *endpoint.Endpoint) error {
	t, ok := r.triggers[ep.Component]
	if !ok {
		if _, isSink := r.sinks[ep.Component]; isSink {
			return fmt.Errorf("%w: %s", ErrNotATrigger, ep.Component)
		}
		return fmt.Errorf("%w: %s", ErrUnknownComponent, ep.Component)
	}
	return t.Validate(ep)
}

func (r *Registry) validateSink(ep *endpoint.Endpoint) error {
	f, ok := r.sinks[ep.Component]
	if !ok {
		if _, isTrigger := r.triggers[ep.Component]; isTrigger {
			return fmt.Errorf("%w: %s", ErrNotASink, ep.Component)
		}
		return fmt.Errorf("%w: %s", ErrUnknownComponent, ep.Component)
	}
	return f.Validate(ep)
}

// ValidateModel performs ValidateRoute on every route of the model and
// reports all failures at once.
func (r *Registry) ValidateModel(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	var errs []error
	for _, in := range model.Integrations {
		for _, route := range in.Routes {
			if err := r.ValidateRoute(route); err != nil {
				errs = append(errs, fmt.Errorf("integration '%s': %w", in.Name, err))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed: %w", errors.Join(errs...))
	}
	logger.Debug("Registry validation passed.", "integrations", len(model.Integrations), "routes", model.Routes())
	return nil
}
