package kamel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vk/kamelrun/internal/config"
)

// APIVersion is the Camel K API group version of generated resources.
const APIVersion = "camel.apache.org/v1"

// Integration is the Camel K custom resource created for a source file.
type Integration struct {
	APIVersion string          `json:"apiVersion" yaml:"apiVersion"`
	Kind       string          `json:"kind" yaml:"kind"`
	Metadata   Metadata        `json:"metadata" yaml:"metadata"`
	Spec       IntegrationSpec `json:"spec" yaml:"spec"`
}

// Metadata is the subset of Kubernetes object metadata that is set.
type Metadata struct {
	Name      string `json:"name" yaml:"name"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// IntegrationSpec lists the sources and build inputs of an integration.
type IntegrationSpec struct {
	Sources      []Source                  `json:"sources" yaml:"sources"`
	Dependencies []string                  `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Traits       map[string]map[string]any `json:"traits,omitempty" yaml:"traits,omitempty"`
	Profile      string                    `json:"profile,omitempty" yaml:"profile,omitempty"`
}

// Source is one embedded source file.
type Source struct {
	Name     string `json:"name" yaml:"name"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	Content  string `json:"content" yaml:"content"`
}

// Manifest builds the Integration resource for in. A non-empty namespace
// overrides the one declared in the modeline.
func Manifest(in *config.Integration, namespace string) (*Integration, error) {
	if namespace == "" {
		namespace = in.Namespace
	}
	traits, err := parseTraits(in.Traits)
	if err != nil {
		return nil, err
	}

	m := &Integration{
		APIVersion: APIVersion,
		Kind:       "Integration",
		Metadata: Metadata{
			Name:      strings.ToLower(in.Name),
			Namespace: namespace,
		},
		Spec: IntegrationSpec{
			Sources: []Source{{
				Name:     filepath.Base(in.SourcePath),
				Language: in.Language,
				Content:  string(in.Content),
			}},
			Traits:  traits,
			Profile: in.Profile,
		},
	}
	for _, d := range in.Dependencies {
		m.Spec.Dependencies = append(m.Spec.Dependencies, d.Coordinates())
	}
	return m, nil
}

// parseTraits turns `trait.key=value` options into the nested trait map.
func parseTraits(traits []string) (map[string]map[string]any, error) {
	if len(traits) == 0 {
		return nil, nil
	}
	out := make(map[string]map[string]any)
	for _, t := range traits {
		path, value, ok := strings.Cut(t, "=")
		trait, key, dotted := strings.Cut(path, ".")
		if !ok || !dotted || trait == "" || key == "" {
			return nil, fmt.Errorf("invalid trait %q: expected trait.key=value", t)
		}
		if out[trait] == nil {
			out[trait] = make(map[string]any)
		}
		out[trait][key] = traitValue(value)
	}
	return out, nil
}

func traitValue(v string) any {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

// Format selects the manifest encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Encode renders the resource in the given format.
func (m *Integration) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case FormatYAML, "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}
}
