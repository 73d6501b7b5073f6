package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vk/kamelrun/internal/config"
	"github.com/vk/kamelrun/internal/ctxlog"
	"github.com/vk/kamelrun/internal/metrics"
	"github.com/vk/kamelrun/internal/registry"
	"github.com/vk/kamelrun/internal/simple"
)

// State is the lifecycle state of a route.
type State int32

const (
	// Idle waits for the next tick.
	Idle State = iota
	// Emit is building and delivering an exchange.
	Emit
)

func (s State) String() string {
	if s == Emit {
		return "emit"
	}
	return "idle"
}

// Runner drives a single route.
type Runner struct {
	integration string
	route       *config.Route
	trigger     registry.Trigger
	sink        registry.Sink
	metrics     *metrics.Metrics

	state     atomic.Int32
	delivered atomic.Int64
	failed    atomic.Int64
}

// Integration returns the name of the integration the route belongs to.
func (r *Runner) Integration() string { return r.integration }

// Route returns the route definition.
func (r *Runner) Route() *config.Route { return r.route }

// State returns the current state.
func (r *Runner) State() State { return State(r.state.Load()) }

// Delivered returns how many exchanges reached the sink.
func (r *Runner) Delivered() int64 { return r.delivered.Load() }

// Failed returns how many exchanges failed to render or deliver.
func (r *Runner) Failed() int64 { return r.failed.Load() }

// Run blocks until ctx is done or the trigger is exhausted.
func (r *Runner) Run(ctx context.Context) error {
	ctx, logger := ctxlog.With(ctx, "integration", r.integration, "route", r.route.ID)
	logger.Info("Route started.", "from", r.route.FromURI)
	defer logger.Info("Route stopped.", "delivered", r.Delivered(), "failed", r.Failed())

	return r.trigger.Start(ctx, r.route.From, r.fire)
}

func (r *Runner) fire(ctx context.Context, headers map[string]string) error {
	r.state.Store(int32(Emit))
	defer r.state.Store(int32(Idle))

	logger := ctxlog.FromContext(ctx)
	started := time.Now()
	ex := &registry.Exchange{
		ID:            uuid.NewString(),
		IntegrationID: r.integration,
		RouteID:       r.route.ID,
		Headers:       headers,
		Created:       started,
	}
	scope := &simple.Scope{
		RouteID:    r.route.ID,
		CamelID:    r.integration,
		ExchangeID: ex.ID,
		Headers:    headers,
	}

	if r.route.Body != nil {
		body, err := r.route.Body.Evaluate(scope)
		if err != nil {
			r.fail(ex, metrics.StageRender)
			logger.Error("Failed to render body.", "exchange", ex.ID, "error", err)
			return nil
		}
		ex.Body = body
		scope.Body = body
	}

	switch r.route.Sink.Kind {
	case config.SinkTo:
		if err := r.sink.Deliver(ctx, ex); err != nil {
			r.fail(ex, metrics.StageDelivery)
			logger.Error("Failed to deliver exchange.", "exchange", ex.ID, "to", r.route.Sink.URI, "error", err)
			return nil
		}
	case config.SinkLog:
		msg, err := r.route.Sink.Message.Evaluate(scope)
		if err != nil {
			r.fail(ex, metrics.StageRender)
			logger.Error("Failed to render log message.", "exchange", ex.ID, "error", err)
			return nil
		}
		logger.InfoContext(ctx, msg)
	}

	r.delivered.Add(1)
	if r.metrics != nil {
		r.metrics.Delivered(r.integration, r.route.ID, time.Since(started))
	}
	return nil
}

func (r *Runner) fail(ex *registry.Exchange, stage string) {
	r.failed.Add(1)
	if r.metrics != nil {
		r.metrics.Failed(r.integration, ex.RouteID, stage)
	}
}
