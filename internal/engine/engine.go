package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vk/kamelrun/internal/config"
	"github.com/vk/kamelrun/internal/ctxlog"
	"github.com/vk/kamelrun/internal/metrics"
	"github.com/vk/kamelrun/internal/registry"
)

// Engine starts the routes of a model against a registry.
type Engine struct {
	registry *registry.Registry
	metrics  *metrics.Metrics

	mu      sync.Mutex
	runners []*Runner
}

// New creates an Engine. m may be nil to disable metrics.
func New(reg *registry.Registry, m *metrics.Metrics) *Engine {
	return &Engine{registry: reg, metrics: m}
}

// Runners returns the runners of the current or last Run.
func (e *Engine) Runners() []*Runner {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Runner(nil), e.runners...)
}

// Run starts every route of model and blocks until ctx is done or all
// triggers are exhausted. The first error returned by a trigger cancels
// the other routes and is returned.
func (e *Engine) Run(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)

	runners, err := e.prepare(ctx, model)
	if err != nil {
		return err
	}
	defer e.closeSinks(ctx, runners)

	e.mu.Lock()
	e.runners = runners
	e.mu.Unlock()

	if len(runners) == 0 {
		logger.Warn("No routes to run.")
		return nil
	}

	logger.Info("🚀 Starting routes...", "routes", len(runners))
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		g.Go(func() error {
			if e.metrics != nil {
				e.metrics.RouteStarted()
				defer e.metrics.RouteStopped()
			}
			if err := r.Run(gctx); err != nil {
				return fmt.Errorf("route '%s' of integration '%s': %w", r.route.ID, r.integration, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("🏁 All routes stopped.")
	return nil
}

// prepare resolves triggers and opens sinks for every route. Sinks opened
// before a failure are closed again.
func (e *Engine) prepare(ctx context.Context, model *config.Model) ([]*Runner, error) {
	var runners []*Runner
	for _, in := range model.Integrations {
		for _, route := range in.Routes {
			r, err := e.newRunner(ctx, in.Name, route)
			if err != nil {
				e.closeSinks(ctx, runners)
				return nil, fmt.Errorf("integration '%s': %w", in.Name, err)
			}
			runners = append(runners, r)
		}
	}
	return runners, nil
}

func (e *Engine) newRunner(ctx context.Context, integration string, route *config.Route) (*Runner, error) {
	if err := e.registry.ValidateRoute(route); err != nil {
		return nil, err
	}
	trigger, _ := e.registry.Trigger(route.From.Component)

	r := &Runner{
		integration: integration,
		route:       route,
		trigger:     trigger,
		metrics:     e.metrics,
	}
	if route.Sink.Kind == config.SinkTo {
		factory, _ := e.registry.Sink(route.Sink.Endpoint.Component)
		sink, err := factory.Open(ctx, route.Sink.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("route '%s': opening %s: %w", route.ID, route.Sink.URI, err)
		}
		r.sink = sink
	}
	return r, nil
}

func (e *Engine) closeSinks(ctx context.Context, runners []*Runner) {
	var errs []error
	for _, r := range runners {
		if r.sink == nil {
			continue
		}
		if err := r.sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to close sinks.", "error", err)
	}
}
