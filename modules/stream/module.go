// Package stream provides the `stream:out` and `stream:err` sinks, which
// print each exchange body as one line.
package stream

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vk/kamelrun/internal/endpoint"
	"github.com/vk/kamelrun/internal/registry"
)

// Module implements the registry.Module interface for this package. Nil
// writers default to the process stdout and stderr.
type Module struct {
	Out io.Writer
	Err io.Writer
}

// Register registers the stream sink.
func (m *Module) Register(r *registry.Registry) {
	out, errW := m.Out, m.Err
	if out == nil {
		out = os.Stdout
	}
	if errW == nil {
		errW = os.Stderr
	}
	r.RegisterSink("stream", &Factory{streams: map[string]*lockedWriter{
		"out": {w: out},
		"err": {w: errW},
	}})
}

// lockedWriter serializes lines from concurrent routes.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) writeLine(s string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintln(l.w, s)
	return err
}

// Factory opens stream sinks.
type Factory struct {
	streams map[string]*lockedWriter
}

// Validate implements registry.SinkFactory.
func (f *Factory) Validate(ep *endpoint.Endpoint) error {
	if _, ok := f.streams[ep.Path]; !ok {
		return fmt.Errorf("stream: unknown stream '%s', expected out or err", ep.Path)
	}
	if len(ep.Params) > 0 {
		return fmt.Errorf("stream: options are not supported")
	}
	return nil
}

// Open implements registry.SinkFactory.
func (f *Factory) Open(_ context.Context, ep *endpoint.Endpoint) (registry.Sink, error) {
	if err := f.Validate(ep); err != nil {
		return nil, err
	}
	return &Sink{w: f.streams[ep.Path]}, nil
}

// Sink prints bodies.
type Sink struct {
	w *lockedWriter
}

// Deliver implements registry.Sink.
func (s *Sink) Deliver(_ context.Context, ex *registry.Exchange) error {
	return s.w.writeLine(ex.Body)
}

// Close implements registry.Sink.
func (s *Sink) Close() error { return nil }
