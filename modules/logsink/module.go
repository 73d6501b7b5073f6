// Package logsink provides the `log:` sink, which writes each exchange
// body as one log record.
package logsink

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vk/kamelrun/internal/ctxlog"
	"github.com/vk/kamelrun/internal/endpoint"
	"github.com/vk/kamelrun/internal/registry"
)

// LevelTrace sits below slog.LevelDebug for Camel's TRACE level.
const LevelTrace = slog.LevelDebug - 4

var levels = map[string]slog.Level{
	"TRACE": LevelTrace,
	"DEBUG": slog.LevelDebug,
	"INFO":  slog.LevelInfo,
	"WARN":  slog.LevelWarn,
	"ERROR": slog.LevelError,
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the log sink.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSink("log", &Factory{})
}

// formatOptions are the Camel log formatting options that change the
// emitted record. The remaining Camel options are accepted and ignored.
var formatOptions = map[string]struct{}{
	"showAll":        {},
	"showBody":       {},
	"showBodyType":   {},
	"showHeaders":    {},
	"showExchangeId": {},
	"maxChars":       {},
}

var ignoredOptions = map[string]struct{}{
	"showAllProperties":        {},
	"showCachedStreams":        {},
	"showCaughtException":      {},
	"showException":            {},
	"showExchangePattern":      {},
	"showFiles":                {},
	"showFuture":               {},
	"showProperties":           {},
	"showStackTrace":           {},
	"showStreams":              {},
	"showVariables":            {},
	"multiline":                {},
	"skipBodyLineSeparator":    {},
	"plain":                    {},
	"style":                    {},
	"logMask":                  {},
	"marker":                   {},
	"groupSize":                {},
	"groupInterval":            {},
	"groupDelay":               {},
	"groupActiveOnly":          {},
	"sourceLocationLoggerName": {},
	"exchangeFormatter":        {},
}

// Options are the parsed options of a `log:name?level=..` endpoint.
type Options struct {
	Logger string
	Level  slog.Level
	Off    bool

	ShowBody       bool
	ShowBodyType   bool
	ShowHeaders    bool
	ShowExchangeID bool
	// MaxChars truncates the body when positive.
	MaxChars int
	// Ignored lists accepted options that have no effect on the record.
	Ignored []string
}

// ParseOptions reads a log endpoint. The level defaults to INFO; OFF
// disables the sink.
func ParseOptions(ep *endpoint.Endpoint) (Options, error) {
	if ep.Path == "" {
		return Options{}, fmt.Errorf("log: logger name is required")
	}
	opts := Options{Logger: ep.Path}
	for k := range ep.Params {
		if k == "level" {
			continue
		}
		if _, ok := formatOptions[k]; ok {
			continue
		}
		if _, ok := ignoredOptions[k]; ok {
			opts.Ignored = append(opts.Ignored, k)
			continue
		}
		return Options{}, fmt.Errorf("log: unknown option '%s'", k)
	}
	sort.Strings(opts.Ignored)

	raw := strings.ToUpper(ep.Param("level", "INFO"))
	if raw == "OFF" {
		opts.Off = true
	} else {
		level, ok := levels[raw]
		if !ok {
			return Options{}, fmt.Errorf("log: invalid level '%s'", raw)
		}
		opts.Level = level
	}

	showAll, err := ep.Bool("showAll", false)
	if err != nil {
		return Options{}, err
	}
	if opts.ShowBody, err = ep.Bool("showBody", true); err != nil {
		return Options{}, err
	}
	if opts.ShowBodyType, err = ep.Bool("showBodyType", showAll); err != nil {
		return Options{}, err
	}
	if opts.ShowHeaders, err = ep.Bool("showHeaders", showAll); err != nil {
		return Options{}, err
	}
	if opts.ShowExchangeID, err = ep.Bool("showExchangeId", showAll); err != nil {
		return Options{}, err
	}
	if opts.MaxChars, err = ep.Int("maxChars", 0); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Factory opens log sinks.
type Factory struct{}

// Validate implements registry.SinkFactory.
func (f *Factory) Validate(ep *endpoint.Endpoint) error {
	_, err := ParseOptions(ep)
	return err
}

// Open implements registry.SinkFactory.
func (f *Factory) Open(ctx context.Context, ep *endpoint.Endpoint) (registry.Sink, error) {
	opts, err := ParseOptions(ep)
	if err != nil {
		return nil, err
	}
	if len(opts.Ignored) > 0 {
		ctxlog.FromContext(ctx).Debug("Ignoring log formatting options.", "endpoint", ep.URI, "options", opts.Ignored)
	}
	return &Sink{opts: opts}, nil
}

// Sink writes bodies to the logger carried by the delivery context.
type Sink struct {
	opts Options
}

// Deliver implements registry.Sink. By default the record message is
// exactly the body.
func (s *Sink) Deliver(ctx context.Context, ex *registry.Exchange) error {
	if s.opts.Off {
		return nil
	}
	msg := ""
	if s.opts.ShowBody {
		msg = ex.Body
		if s.opts.MaxChars > 0 && len(msg) > s.opts.MaxChars {
			msg = msg[:s.opts.MaxChars] + "..."
		}
	}
	attrs := []any{"logger", s.opts.Logger}
	if s.opts.ShowExchangeID {
		attrs = append(attrs, "exchangeId", ex.ID)
	}
	if s.opts.ShowBodyType {
		attrs = append(attrs, "bodyType", "String")
	}
	if s.opts.ShowHeaders && len(ex.Headers) > 0 {
		names := make([]string, 0, len(ex.Headers))
		for k := range ex.Headers {
			names = append(names, k)
		}
		sort.Strings(names)
		headers := make([]any, 0, len(names))
		for _, k := range names {
			headers = append(headers, slog.String(k, ex.Headers[k]))
		}
		attrs = append(attrs, slog.Group("headers", headers...))
	}
	ctxlog.FromContext(ctx).Log(ctx, s.opts.Level, msg, attrs...)
	return nil
}

// Close implements registry.Sink.
func (s *Sink) Close() error { return nil }
