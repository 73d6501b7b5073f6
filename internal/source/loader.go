package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/kamelrun/internal/config"
	"github.com/vk/kamelrun/internal/ctxlog"
	"github.com/vk/kamelrun/internal/dsl"
	"github.com/vk/kamelrun/internal/fsutil"
	"github.com/vk/kamelrun/internal/kamel"
	"github.com/vk/kamelrun/internal/modeline"
	"github.com/vk/kamelrun/internal/registry"
)

// Options configures a Loader.
type Options struct {
	// Properties are `-p key=value` overrides. They win over everything.
	Properties map[string]string
	// PropertyFiles are `.properties` files given on the command line.
	PropertyFiles []string
	// UseEnv makes the process environment the lowest-precedence source.
	UseEnv bool
	// Registry, when set, is used to validate every endpoint.
	Registry *registry.Registry
}

// Loader loads integration sources into a config.Model.
type Loader struct {
	opts Options
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a Loader.
func NewLoader(opts Options) *Loader {
	return &Loader{opts: opts}
}

// Load implements config.Loader. Each path may be a source file or a
// directory searched recursively for known source extensions.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no source paths given")
	}

	var files []string
	for _, p := range paths {
		found, err := fsutil.FindFilesByExtension(p, dsl.Extensions()...)
		if err != nil {
			return nil, fmt.Errorf("finding sources in %s: %w", p, err)
		}
		if len(found) == 0 {
			logger.Warn("No integration sources found in path", "path", p)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no integration sources found in %v", paths)
	}
	logger.Debug("Found integration sources", "files", files)

	model := &config.Model{}
	byName := make(map[string]string)
	for _, f := range files {
		in, err := l.LoadFile(ctx, f)
		if err != nil {
			return nil, err
		}
		if prev, dup := byName[in.Name]; dup {
			return nil, fmt.Errorf("integration name '%s' is declared by both %s and %s", in.Name, prev, f)
		}
		byName[in.Name] = f
		model.Integrations = append(model.Integrations, in)
	}

	logger.Info("Integrations loaded.", "integrations", len(model.Integrations), "routes", model.Routes())
	return model, nil
}

// LoadFile loads a single integration source.
func (l *Loader) LoadFile(ctx context.Context, path string) (*config.Integration, error) {
	logger := ctxlog.FromContext(ctx).With("source", path)

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	in, err := parseHeader(path, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	props, err := l.properties(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	declared, err := dsl.Parse(ctx, dsl.Language(in.Language), content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(declared) == 0 {
		logger.Warn("Source declares no routes.", "integration", in.Name)
	}

	routes, err := assemble(declared, props)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	in.Routes = routes

	if l.opts.Registry != nil {
		for _, r := range routes {
			if err := l.opts.Registry.ValidateRoute(r); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}

	logger.Debug("Integration source loaded.", "integration", in.Name, "language", in.Language, "routes", len(routes))
	return in, nil
}

// parseHeader builds the integration from the modeline and the file name.
func parseHeader(path string, content []byte) (*config.Integration, error) {
	directives, err := modeline.Parse(content)
	if err != nil {
		return nil, err
	}

	in := &config.Integration{SourcePath: path, Content: content}
	if err := modeline.Apply(in, directives); err != nil {
		return nil, err
	}

	lang, err := dsl.Detect(path, in.Language)
	if err != nil {
		return nil, err
	}
	in.Language = string(lang)

	if in.Name == "" {
		in.Name = kamel.NameFromPath(path)
	}
	if err := kamel.ValidName(in.Name); err != nil {
		return nil, err
	}

	for i, f := range in.PropertyFiles {
		if !filepath.IsAbs(f) {
			in.PropertyFiles[i] = filepath.Join(filepath.Dir(path), f)
		}
	}
	return in, nil
}

// ReadHeader reads a source file and applies its modeline without parsing
// routes or resolving placeholders. Deployment helpers use it since
// placeholders are resolved where the integration runs.
func ReadHeader(path string) (*config.Integration, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	in, err := parseHeader(path, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}
