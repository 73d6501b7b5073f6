package config

import "context"

// Loader is the interface for a source-file loader.
type Loader interface {
	// Load reads integration sources from the given paths, resolves their
	// property placeholders and returns the fully validated model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
