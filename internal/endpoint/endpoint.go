// Package endpoint parses Camel-style endpoint URIs such as
// `timer:java?period=1000` or `log:info` into their component, path and
// options.
package endpoint

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidURI is returned for URIs that do not have a `component:path`
// shape.
var ErrInvalidURI = errors.New("invalid endpoint uri")

// maxMillis is the largest millisecond count a time.Duration can hold.
const maxMillis = int64(math.MaxInt64 / int64(time.Millisecond))

var componentRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*$`)

// Endpoint is a parsed endpoint URI.
type Endpoint struct {
	URI       string
	Component string
	Path      string
	Params    url.Values
}

// Parse splits a URI into component, path and query options. Both
// `timer:name` and `timer://name` forms are accepted.
func Parse(uri string) (*Endpoint, error) {
	uri = strings.TrimSpace(uri)
	idx := strings.Index(uri, ":")
	if idx <= 0 {
		return nil, fmt.Errorf("%w: %q has no component", ErrInvalidURI, uri)
	}
	component := uri[:idx]
	if !componentRe.MatchString(component) {
		return nil, fmt.Errorf("%w: %q has an invalid component name", ErrInvalidURI, uri)
	}

	rest := uri[idx+1:]
	rest = strings.TrimPrefix(rest, "//")

	path, rawQuery, _ := strings.Cut(rest, "?")
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidURI, uri, err)
	}

	return &Endpoint{
		URI:       uri,
		Component: strings.ToLower(component),
		Path:      path,
		Params:    params,
	}, nil
}

// WithParams appends params to uri as query options, escaped and in key
// order.
func WithParams(uri string, params map[string]string) string {
	if len(params) == 0 {
		return uri
	}
	values := make(url.Values, len(params))
	for k, v := range params {
		values.Set(k, v)
	}
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return uri + sep + values.Encode()
}

// String returns the original URI.
func (e *Endpoint) String() string {
	return e.URI
}

// Param returns the named option or def when it is absent.
func (e *Endpoint) Param(name, def string) string {
	if v, ok := e.Params[name]; ok && len(v) > 0 {
		return v[0]
	}
	return def
}

// Duration reads an option that is either a number of milliseconds or a
// duration string like `1s` or `250ms`.
func (e *Endpoint) Duration(name string, def time.Duration) (time.Duration, error) {
	raw := e.Param(name, "")
	if raw == "" {
		return def, nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if ms > maxMillis || ms < -maxMillis {
			return 0, fmt.Errorf("endpoint %s: option %s=%q is out of range", e.URI, name, raw)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("endpoint %s: option %s=%q is not a duration", e.URI, name, raw)
	}
	return d, nil
}

// Int reads an integer option.
func (e *Endpoint) Int(name string, def int) (int, error) {
	raw := e.Param(name, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("endpoint %s: option %s=%q is not an integer", e.URI, name, raw)
	}
	return n, nil
}

// Bool reads a boolean option.
func (e *Endpoint) Bool(name string, def bool) (bool, error) {
	raw := e.Param(name, "")
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("endpoint %s: option %s=%q is not a boolean", e.URI, name, raw)
	}
	return b, nil
}
