package config

import (
	"fmt"
	"strings"

	"github.com/vk/kamelrun/internal/endpoint"
	"github.com/vk/kamelrun/internal/simple"
)

// Model is the unified representation of every integration loaded for a
// single run.
type Model struct {
	Integrations []*Integration
}

// Routes returns the number of routes across all integrations.
func (m *Model) Routes() int {
	n := 0
	for _, in := range m.Integrations {
		n += len(in.Routes)
	}
	return n
}

// Integration is one source file together with everything its modeline
// declares.
type Integration struct {
	Name       string
	SourcePath string
	Language   string
	Namespace  string
	Content    []byte

	Directives   []Directive
	Dependencies []Dependency
	// Properties holds the inline `property=k=v` modeline values.
	Properties map[string]string
	// PropertyFiles holds `property=file:path` modeline values, relative
	// to the source file.
	PropertyFiles []string
	Traits        []string
	Env           []string
	Resources     []string
	Configs       []string
	Volumes       []string
	BuildProps    []string
	OpenAPI       []string
	Profile       string

	Routes []*Route
}

// Directive is a single `key=value` option read from a modeline.
type Directive struct {
	Key   string
	Value string
	Line  int
}

// String renders the directive the way it appears in a modeline.
func (d Directive) String() string {
	return d.Key + "=" + d.Value
}

// DependencyKind tells how a dependency coordinate was written.
type DependencyKind string

const (
	DependencyMaven    DependencyKind = "maven"
	DependencyCamel    DependencyKind = "camel"
	DependencyArtifact DependencyKind = "artifact"
)

// Dependency is an extra library requested through a `dependency`
// directive. It is only consumed by the build step, never at run time.
type Dependency struct {
	Kind       DependencyKind
	GroupID    string
	ArtifactID string
	Version    string
	Raw        string
}

// String returns the dependency as it was declared.
func (d Dependency) String() string {
	return d.Raw
}

// Coordinates returns the canonical coordinate used on the kamel command
// line: `mvn:g:a[:v]` for maven artifacts and `camel:name` for components.
func (d Dependency) Coordinates() string {
	switch d.Kind {
	case DependencyMaven:
		parts := []string{d.GroupID, d.ArtifactID}
		if d.Version != "" {
			parts = append(parts, d.Version)
		}
		return "mvn:" + strings.Join(parts, ":")
	case DependencyCamel:
		return "camel:" + d.ArtifactID
	default:
		return d.Raw
	}
}

// SinkKind distinguishes a `to(uri)` sink from the `log(message)` EIP.
type SinkKind string

const (
	SinkTo  SinkKind = "to"
	SinkLog SinkKind = "log"
)

// Sink is the single terminal step of a route.
type Sink struct {
	Kind SinkKind
	// URI is the resolved endpoint URI for SinkTo.
	URI      string
	Endpoint *endpoint.Endpoint
	// Message is the compiled message for SinkLog.
	Message *simple.Expression
}

// Route is a single-stage pipeline: one trigger, an optional body
// expression and one sink.
type Route struct {
	ID string
	// Generated is true when the id was assigned by the loader.
	Generated bool
	FromURI   string
	From      *endpoint.Endpoint
	Body      *simple.Expression
	Sink      Sink
}

// String returns a compact, human-readable description of the route.
func (r *Route) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: from(%s)", r.ID, r.FromURI)
	if r.Body != nil {
		fmt.Fprintf(&b, ".setBody().%s(%q)", r.Body.Language, r.Body.Text)
	}
	switch r.Sink.Kind {
	case SinkTo:
		fmt.Fprintf(&b, ".to(%s)", r.Sink.URI)
	case SinkLog:
		fmt.Fprintf(&b, ".log(%q)", r.Sink.Message.Text)
	}
	return b.String()
}
