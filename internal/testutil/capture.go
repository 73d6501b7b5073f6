package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vk/kamelrun/internal/endpoint"
	"github.com/vk/kamelrun/internal/registry"
)

// Delivery is one exchange received by a CaptureSink.
type Delivery struct {
	Path     string
	Body     string
	RouteID  string
	Headers  map[string]string
	Received time.Time
}

// CaptureSink records every delivered exchange. Register it with
// SimpleModule under a component name such as "capture".
type CaptureSink struct {
	mu         sync.Mutex
	deliveries []Delivery
	notify     chan struct{}
}

var _ registry.SinkFactory = (*CaptureSink)(nil)

// NewCaptureSink creates an empty CaptureSink.
func NewCaptureSink() *CaptureSink {
	return &CaptureSink{notify: make(chan struct{}, 1)}
}

// Validate accepts any endpoint.
func (c *CaptureSink) Validate(*endpoint.Endpoint) error { return nil }

// Open returns a sink bound to the endpoint path.
func (c *CaptureSink) Open(_ context.Context, ep *endpoint.Endpoint) (registry.Sink, error) {
	return &captureRoute{owner: c, path: ep.Path}, nil
}

// Deliveries returns a copy of everything received so far.
func (c *CaptureSink) Deliveries() []Delivery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Delivery(nil), c.deliveries...)
}

// Bodies returns the received bodies in arrival order.
func (c *CaptureSink) Bodies() []string {
	var out []string
	for _, d := range c.Deliveries() {
		out = append(out, d.Body)
	}
	return out
}

// WaitFor blocks until at least n deliveries arrived or timeout elapses.
func (c *CaptureSink) WaitFor(n int, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		if len(c.Deliveries()) >= n {
			return true
		}
		select {
		case <-c.notify:
		case <-deadline.C:
			return len(c.Deliveries()) >= n
		}
	}
}

type captureRoute struct {
	owner *CaptureSink
	path  string
}

func (r *captureRoute) Deliver(_ context.Context, ex *registry.Exchange) error {
	r.owner.mu.Lock()
	r.owner.deliveries = append(r.owner.deliveries, Delivery{
		Path:     r.path,
		Body:     ex.Body,
		RouteID:  ex.RouteID,
		Headers:  ex.Headers,
		Received: time.Now(),
	})
	r.owner.mu.Unlock()
	select {
	case r.owner.notify <- struct{}{}:
	default:
	}
	return nil
}

func (r *captureRoute) Close() error { return nil }
