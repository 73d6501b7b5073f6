// Package http_client provides the `http:` and `https:` sinks, which send
// each exchange body to a URL through a client shared by the route.
package http_client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vk/kamelrun/internal/ctxlog"
	"github.com/vk/kamelrun/internal/endpoint"
	"github.com/vk/kamelrun/internal/registry"
)

// DefaultTimeout bounds one request when the endpoint sets none.
const DefaultTimeout = 15 * time.Second

// Endpoint options consumed by the sink; every other query parameter is
// forwarded to the target URL.
const (
	optMethod      = "httpMethod"
	optTimeout     = "timeout"
	optContentType = "contentType"
)

// HeaderPrefix marks exchange headers forwarded as HTTP headers.
const HeaderPrefix = "X-Camel-"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the sink under both schemes.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSink("http", &Factory{scheme: "http"})
	r.RegisterSink("https", &Factory{scheme: "https"})
}

// Options are the parsed options of an http endpoint.
type Options struct {
	URL         string
	Method      string
	Timeout     time.Duration
	ContentType string
}

// ParseOptions rebuilds the target URL from the endpoint and reads the
// sink options. The method defaults to POST.
func ParseOptions(scheme string, ep *endpoint.Endpoint) (Options, error) {
	if ep.Path == "" {
		return Options{}, fmt.Errorf("%s: host is required", scheme)
	}
	timeout, err := ep.Duration(optTimeout, DefaultTimeout)
	if err != nil {
		return Options{}, err
	}
	method := strings.ToUpper(ep.Param(optMethod, http.MethodPost))
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return Options{}, fmt.Errorf("%s: httpMethod %s cannot carry a body", scheme, method)
	}

	forwarded := url.Values{}
	for k, v := range ep.Params {
		if k == optMethod || k == optTimeout || k == optContentType {
			continue
		}
		forwarded[k] = v
	}
	target := &url.URL{Scheme: scheme, RawQuery: forwarded.Encode()}
	host, path, _ := strings.Cut(ep.Path, "/")
	target.Host = host
	target.Path = "/" + path
	if _, err := url.Parse(target.String()); err != nil {
		return Options{}, fmt.Errorf("%s: invalid url: %w", scheme, err)
	}

	return Options{
		URL:         target.String(),
		Method:      method,
		Timeout:     timeout,
		ContentType: ep.Param(optContentType, "text/plain; charset=utf-8"),
	}, nil
}

// Factory opens http sinks for one scheme.
type Factory struct {
	scheme string
}

// Validate implements registry.SinkFactory.
func (f *Factory) Validate(ep *endpoint.Endpoint) error {
	_, err := ParseOptions(f.scheme, ep)
	return err
}

// Open implements registry.SinkFactory.
func (f *Factory) Open(_ context.Context, ep *endpoint.Endpoint) (registry.Sink, error) {
	opts, err := ParseOptions(f.scheme, ep)
	if err != nil {
		return nil, err
	}
	return &Sink{opts: opts, client: newClient(opts.Timeout)}, nil
}

// Sink sends bodies to one URL.
type Sink struct {
	opts   Options
	client *http.Client
}

// Deliver implements registry.Sink. Any non-2xx response is an error.
func (s *Sink) Deliver(ctx context.Context, ex *registry.Exchange) error {
	logger := ctxlog.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, s.opts.Method, s.opts.URL, strings.NewReader(ex.Body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", s.opts.ContentType)
	req.Header.Set(HeaderPrefix+"Exchange-Id", ex.ID)
	req.Header.Set(HeaderPrefix+"Route-Id", ex.RouteID)
	for k, v := range ex.Headers {
		req.Header.Set(HeaderPrefix+strings.TrimPrefix(k, "Camel"), v)
	}

	logger.Debug("Sending exchange over HTTP", "method", s.opts.Method, "url", s.opts.URL)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s failed with status: %s", s.opts.Method, s.opts.URL, resp.Status)
	}
	logger.Debug("Received HTTP response", "status", resp.Status)
	return nil
}

// Close implements registry.Sink by releasing idle connections.
func (s *Sink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
