package modeline

import (
	"fmt"
	"strings"

	"github.com/vk/kamelrun/internal/config"
)

// Apply copies directives onto the integration. Later `language`, `name`,
// `namespace` and `profile` directives override earlier ones; every other
// key accumulates.
func Apply(in *config.Integration, directives []config.Directive) error {
	if in.Properties == nil {
		in.Properties = make(map[string]string)
	}
	for _, d := range directives {
		in.Directives = append(in.Directives, d)
		switch d.Key {
		case KeyLanguage:
			in.Language = strings.ToLower(strings.TrimSpace(d.Value))
		case KeyName:
			in.Name = strings.TrimSpace(d.Value)
		case KeyNamespace:
			in.Namespace = strings.TrimSpace(d.Value)
		case KeyProfile:
			in.Profile = strings.TrimSpace(d.Value)
		case KeyDependency:
			dep, err := ParseDependency(d.Value)
			if err != nil {
				return fmt.Errorf("line %d: %w", d.Line, err)
			}
			in.Dependencies = append(in.Dependencies, dep)
		case KeyProperty:
			if path, ok := strings.CutPrefix(d.Value, "file:"); ok {
				in.PropertyFiles = append(in.PropertyFiles, path)
				continue
			}
			k, v, ok := strings.Cut(d.Value, "=")
			k = strings.TrimSpace(k)
			if !ok || k == "" {
				return fmt.Errorf("line %d: %w: property %q must be key=value or file:path", d.Line, ErrMalformedDirective, d.Value)
			}
			in.Properties[k] = v
		case KeyTrait:
			in.Traits = append(in.Traits, d.Value)
		case KeyEnv:
			in.Env = append(in.Env, d.Value)
		case KeyResource:
			in.Resources = append(in.Resources, d.Value)
		case KeyConfig:
			in.Configs = append(in.Configs, d.Value)
		case KeyVolume:
			in.Volumes = append(in.Volumes, d.Value)
		case KeyBuildProperty:
			in.BuildProps = append(in.BuildProps, d.Value)
		case KeyOpenAPI:
			in.OpenAPI = append(in.OpenAPI, d.Value)
		}
	}
	return nil
}
