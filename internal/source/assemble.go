package source

import (
	"fmt"

	"github.com/vk/kamelrun/internal/config"
	"github.com/vk/kamelrun/internal/dsl"
	"github.com/vk/kamelrun/internal/endpoint"
	"github.com/vk/kamelrun/internal/placeholder"
	"github.com/vk/kamelrun/internal/simple"
)

// assemble turns declared routes into config routes: ids are assigned,
// placeholders resolved, expressions compiled and endpoints parsed. Every
// missing placeholder of the file is reported in one error.
func assemble(declared []*dsl.Route, props placeholder.Source) ([]*config.Route, error) {
	res := placeholder.NewResolver(props)
	resolved := make([]dsl.Route, len(declared))
	for i, d := range declared {
		r := *d
		r.ID = res.Resolve(r.ID)
		r.From = res.Resolve(r.From)
		if len(r.Params) > 0 {
			params := make(map[string]string, len(r.Params))
			for k, v := range r.Params {
				params[k] = res.Resolve(v)
			}
			r.From = endpoint.WithParams(r.From, params)
			r.Params = nil
		}
		r.Value = res.Resolve(r.Value)
		if r.Body != nil {
			body := *r.Body
			body.Text = res.Resolve(body.Text)
			r.Body = &body
		}
		resolved[i] = r
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	generated := make([]bool, len(resolved))
	for i := range resolved {
		generated[i] = resolved[i].ID == ""
	}
	assignIDs(resolved)

	seen := make(map[string]struct{}, len(resolved))
	routes := make([]*config.Route, 0, len(resolved))
	for i := range resolved {
		r, err := compileRoute(&resolved[i])
		if err != nil {
			return nil, err
		}
		r.Generated = generated[i]
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("duplicate route id '%s'", r.ID)
		}
		seen[r.ID] = struct{}{}
		routes = append(routes, r)
	}
	return routes, nil
}

// assignIDs names unnamed routes route1, route2, ... by position, skipping
// numbers already taken by explicit ids.
func assignIDs(routes []dsl.Route) {
	taken := make(map[string]struct{})
	for _, r := range routes {
		if r.ID != "" {
			taken[r.ID] = struct{}{}
		}
	}
	n := 0
	for i := range routes {
		if routes[i].ID != "" {
			continue
		}
		for {
			n++
			id := fmt.Sprintf("route%d", n)
			if _, ok := taken[id]; !ok {
				routes[i].ID = id
				taken[id] = struct{}{}
				break
			}
		}
	}
}

func compileRoute(d *dsl.Route) (*config.Route, error) {
	from, err := endpoint.Parse(d.From)
	if err != nil {
		return nil, fmt.Errorf("route '%s': %w", d.ID, err)
	}
	r := &config.Route{
		ID:      d.ID,
		FromURI: d.From,
		From:    from,
	}

	if d.Body != nil {
		body, err := simple.Compile(simple.Language(d.Body.Language), d.Body.Text)
		if err != nil {
			return nil, fmt.Errorf("route '%s' body: %w", d.ID, err)
		}
		r.Body = body
	}

	switch d.Sink {
	case dsl.SinkTo:
		ep, err := endpoint.Parse(d.Value)
		if err != nil {
			return nil, fmt.Errorf("route '%s' sink: %w", d.ID, err)
		}
		r.Sink = config.Sink{Kind: config.SinkTo, URI: d.Value, Endpoint: ep}
	case dsl.SinkLog:
		msg, err := simple.Compile(simple.LanguageSimple, d.Value)
		if err != nil {
			return nil, fmt.Errorf("route '%s' log message: %w", d.ID, err)
		}
		r.Sink = config.Sink{Kind: config.SinkLog, Message: msg}
	default:
		return nil, fmt.Errorf("route '%s': %w", d.ID, dsl.ErrNoSink)
	}
	return r, nil
}
