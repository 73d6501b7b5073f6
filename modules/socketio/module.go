// Package socketio provides the `socketio:` sink, which emits each
// exchange body as an event to a Socket.IO server.
//
// Endpoint form:
//
//	socketio:http://host:port/socket.io?event=message&namespace=/chat
//
// Options: event (default "message"), namespace (default "/"),
// payload=body|exchange, timeout (connection timeout, default 15s) and
// insecure (skip TLS verification).
package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/kamelrun/internal/ctxlog"
	"github.com/vk/kamelrun/internal/endpoint"
	"github.com/vk/kamelrun/internal/registry"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const defaultTimeout = 15 * time.Second

var knownOptions = map[string]struct{}{
	"event": {}, "namespace": {}, "payload": {}, "timeout": {}, "insecure": {},
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the socketio sink.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSink("socketio", &Factory{Dial: Dial})
}

// Options are the parsed options of a socketio endpoint.
type Options struct {
	URL       *url.URL
	Event     string
	Namespace string
	// Exchange sends routeId, exchangeId, headers and body instead of the
	// bare body.
	Exchange bool
	Timeout  time.Duration
	Insecure bool
}

// ParseOptions reads a socketio endpoint.
func ParseOptions(ep *endpoint.Endpoint) (Options, error) {
	for k := range ep.Params {
		if _, ok := knownOptions[k]; !ok {
			return Options{}, fmt.Errorf("socketio: unknown option '%s'", k)
		}
	}
	u, err := url.Parse(ep.Path)
	if err != nil {
		return Options{}, fmt.Errorf("socketio: invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return Options{}, fmt.Errorf("socketio: server url %q must be http(s) or ws(s)", ep.Path)
	}
	if u.Host == "" {
		return Options{}, fmt.Errorf("socketio: server url %q has no host", ep.Path)
	}

	timeout, err := ep.Duration("timeout", defaultTimeout)
	if err != nil {
		return Options{}, fmt.Errorf("socketio: %w", err)
	}
	insecure, err := ep.Bool("insecure", false)
	if err != nil {
		return Options{}, fmt.Errorf("socketio: %w", err)
	}

	opts := Options{
		URL:       u,
		Event:     ep.Param("event", "message"),
		Namespace: ep.Param("namespace", "/"),
		Timeout:   timeout,
		Insecure:  insecure,
	}
	switch p := ep.Param("payload", "body"); p {
	case "body":
	case "exchange":
		opts.Exchange = true
	default:
		return Options{}, fmt.Errorf("socketio: payload must be body or exchange, got '%s'", p)
	}
	return opts, nil
}

// Conn is a connected Socket.IO client.
type Conn interface {
	Emit(event string, data any)
	Close()
}

// DialFunc connects to the server described by opts.
type DialFunc func(ctx context.Context, opts Options) (Conn, error)

// Factory opens socketio sinks. Dial is replaceable for tests.
type Factory struct {
	Dial DialFunc
}

// Validate implements registry.SinkFactory.
func (f *Factory) Validate(ep *endpoint.Endpoint) error {
	_, err := ParseOptions(ep)
	return err
}

// Open implements registry.SinkFactory. The connection is established
// before the route starts.
func (f *Factory) Open(ctx context.Context, ep *endpoint.Endpoint) (registry.Sink, error) {
	opts, err := ParseOptions(ep)
	if err != nil {
		return nil, err
	}
	conn, err := f.Dial(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Sink{opts: opts, conn: conn}, nil
}

// Sink emits exchanges on an open connection.
type Sink struct {
	opts Options
	conn Conn
}

// Deliver implements registry.Sink.
func (s *Sink) Deliver(ctx context.Context, ex *registry.Exchange) error {
	var data any = ex.Body
	if s.opts.Exchange {
		data = map[string]any{
			"routeId":    ex.RouteID,
			"exchangeId": ex.ID,
			"headers":    ex.Headers,
			"body":       ex.Body,
		}
	}
	ctxlog.FromContext(ctx).Debug("Emitting event", "event", s.opts.Event, "exchange", ex.ID)
	s.conn.Emit(s.opts.Event, data)
	return nil
}

// Close implements registry.Sink.
func (s *Sink) Close() error {
	s.conn.Close()
	return nil
}

type socketConn struct {
	io *socket.Socket
}

func (c *socketConn) Emit(event string, data any) { c.io.Emit(event, data) }

func (c *socketConn) Close() { c.io.Disconnect() }

// Dial connects a Socket.IO client over WebSocket and waits for the
// connect or connect_error event.
func Dial(ctx context.Context, opts Options) (Conn, error) {
	logger := ctxlog.FromContext(ctx).With("sink", "socketio", "url", opts.URL.String(), "namespace", opts.Namespace)

	ioOpts := socket.DefaultOptions()
	if opts.URL.Path != "" {
		ioOpts.SetPath(opts.URL.Path)
	}
	if opts.Insecure {
		logger.Warn("Skipping TLS certificate verification")
		ioOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	ioOpts.SetTransports(types.NewSet(transports.WebSocket))

	scheme := opts.URL.Scheme
	switch scheme {
	case "ws":
		scheme = "http"
	case "wss":
		scheme = "https"
	}
	manager := socket.NewManager(fmt.Sprintf("%s://%s", scheme, opts.URL.Host), ioOpts)
	io := manager.Socket(opts.Namespace, ioOpts)

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connected <- err
	})

	logger.Debug("Connecting...")
	io.Connect()

	timer := time.NewTimer(opts.Timeout)
	defer timer.Stop()
	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		logger.Info("Connected", "sid", io.Id())
		return &socketConn{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("socket.io connection cancelled: %w", ctx.Err())
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", opts.Timeout)
	}
}
