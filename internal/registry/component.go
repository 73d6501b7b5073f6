package registry

import (
	"context"
	"time"

	"github.com/vk/kamelrun/internal/endpoint"
)

// Exchange is the message produced by one firing of a route.
type Exchange struct {
	ID            string
	IntegrationID string
	RouteID       string
	Body          string
	Headers       map[string]string
	Created       time.Time
}

// Fire is called by a trigger once per tick with the headers of that tick.
// A non-nil error stops the trigger and is returned from Start.
type Fire func(ctx context.Context, headers map[string]string) error

// Trigger starts routes. Start blocks until ctx is done or the endpoint is
// exhausted, calling fire synchronously for every tick.
type Trigger interface {
	Validate(ep *endpoint.Endpoint) error
	Start(ctx context.Context, ep *endpoint.Endpoint, fire Fire) error
}

// Sink receives the exchanges of a route.
type Sink interface {
	Deliver(ctx context.Context, ex *Exchange) error
	Close() error
}

// SinkFactory validates sink endpoints and opens one Sink per route.
type SinkFactory interface {
	Validate(ep *endpoint.Endpoint) error
	Open(ctx context.Context, ep *endpoint.Endpoint) (Sink, error)
}
