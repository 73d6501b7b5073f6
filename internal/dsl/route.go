package dsl

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSink is returned for a route that never reaches a sink.
	ErrNoSink = errors.New("route has no sink")
	// ErrMultiStage is returned for routes with more than one body step,
	// more than one sink, or steps after the sink.
	ErrMultiStage = errors.New("multi-stage routes are not supported")
	// ErrUnsupportedStep is returned for builder steps the runner does not
	// implement.
	ErrUnsupportedStep = errors.New("unsupported route step")
)

// Expression is an unresolved body or log expression as written.
type Expression struct {
	Language string
	Text     string
}

// SinkKind tells a `to(uri)` sink from a `log(message)` sink.
type SinkKind string

const (
	SinkTo  SinkKind = "to"
	SinkLog SinkKind = "log"
)

// Route is a route as declared in source, before placeholder resolution.
type Route struct {
	ID   string
	From string
	// Params are trigger options declared apart from the uri. They are
	// added to From, escaped, once placeholders are resolved.
	Params map[string]string
	Body   *Expression
	Sink   SinkKind
	Value  string
}

// builder records fluent calls for one route and enforces the
// single-stage shape.
type builder struct {
	route       Route
	pendingBody bool
	done        bool
}

func newBuilder(uri string) (*builder, error) {
	if uri == "" {
		return nil, fmt.Errorf("from() requires an endpoint uri")
	}
	return &builder{route: Route{From: uri}}, nil
}

func (b *builder) guard(step string) error {
	if b.done {
		return fmt.Errorf("%w: %s() after the sink of route from %s", ErrMultiStage, step, b.route.From)
	}
	return nil
}

func (b *builder) setID(id string) error {
	if err := b.guard("routeId"); err != nil {
		return err
	}
	if b.route.ID != "" {
		return fmt.Errorf("route from %s: id set twice (%q, %q)", b.route.From, b.route.ID, id)
	}
	b.route.ID = id
	return nil
}

// setBody starts a body step. expr may be nil when the expression follows
// as a separate call, e.g. setBody().simple("...").
func (b *builder) setBody(expr *Expression) error {
	if err := b.guard("setBody"); err != nil {
		return err
	}
	if b.route.Body != nil || b.pendingBody {
		return fmt.Errorf("%w: second body step on route from %s", ErrMultiStage, b.route.From)
	}
	if expr == nil {
		b.pendingBody = true
		return nil
	}
	b.route.Body = expr
	return nil
}

func (b *builder) expression(lang, text string) error {
	if err := b.guard(lang); err != nil {
		return err
	}
	if !b.pendingBody {
		return fmt.Errorf("%w: %s() must follow setBody() on route from %s", ErrUnsupportedStep, lang, b.route.From)
	}
	b.pendingBody = false
	b.route.Body = &Expression{Language: lang, Text: text}
	return nil
}

func (b *builder) sink(kind SinkKind, value string) error {
	if b.done {
		return fmt.Errorf("%w: second sink %s(%s) on route from %s", ErrMultiStage, kind, value, b.route.From)
	}
	if b.pendingBody {
		return fmt.Errorf("route from %s: setBody() has no expression", b.route.From)
	}
	if value == "" {
		return fmt.Errorf("route from %s: %s() requires an argument", b.route.From, kind)
	}
	b.route.Sink = kind
	b.route.Value = value
	b.done = true
	return nil
}

func (b *builder) finish() (*Route, error) {
	if b.pendingBody {
		return nil, fmt.Errorf("route from %s: setBody() has no expression", b.route.From)
	}
	if !b.done {
		return nil, fmt.Errorf("%w: route from %s", ErrNoSink, b.route.From)
	}
	r := b.route
	return &r, nil
}
