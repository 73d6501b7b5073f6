package modeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/kamelrun/internal/config"
)

// ErrInvalidDependency is returned for dependency coordinates that are
// neither a maven artifact nor a Camel component.
var ErrInvalidDependency = errors.New("dependency must be a Camel component artifact id or a maven dependency in the form group:artifact:version")

// ParseDependency validates and splits a dependency coordinate. Accepted
// forms are `mvn:group:artifact[:version]`, `group:artifact:version`,
// `camel:component` and dashed artifact ids such as `camel-jackson`.
func ParseDependency(raw string) (config.Dependency, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return config.Dependency{}, ErrInvalidDependency
	}

	if rest, ok := strings.CutPrefix(raw, "mvn:"); ok {
		parts := strings.Split(rest, ":")
		if (len(parts) != 2 && len(parts) != 3) || hasEmpty(parts) {
			return config.Dependency{}, fmt.Errorf("%w: %q", ErrInvalidDependency, raw)
		}
		dep := config.Dependency{Kind: config.DependencyMaven, GroupID: parts[0], ArtifactID: parts[1], Raw: raw}
		if len(parts) == 3 {
			dep.Version = parts[2]
		}
		return dep, nil
	}

	if name, ok := strings.CutPrefix(raw, "camel:"); ok {
		if name == "" || strings.Contains(name, ":") {
			return config.Dependency{}, fmt.Errorf("%w: %q", ErrInvalidDependency, raw)
		}
		return config.Dependency{Kind: config.DependencyCamel, ArtifactID: name, Raw: raw}, nil
	}

	if strings.Contains(raw, ":") {
		parts := strings.Split(raw, ":")
		if len(parts) != 3 || hasEmpty(parts) {
			return config.Dependency{}, fmt.Errorf("%w: %q", ErrInvalidDependency, raw)
		}
		return config.Dependency{
			Kind:       config.DependencyMaven,
			GroupID:    parts[0],
			ArtifactID: parts[1],
			Version:    parts[2],
			Raw:        raw,
		}, nil
	}

	if !strings.Contains(raw, "-") {
		return config.Dependency{}, fmt.Errorf("%w: %q", ErrInvalidDependency, raw)
	}
	if name, ok := strings.CutPrefix(raw, "camel-"); ok && name != "" {
		return config.Dependency{Kind: config.DependencyCamel, ArtifactID: name, Raw: raw}, nil
	}
	return config.Dependency{Kind: config.DependencyArtifact, ArtifactID: raw, Raw: raw}, nil
}

func hasEmpty(parts []string) bool {
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return true
		}
	}
	return false
}
