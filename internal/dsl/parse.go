package dsl

import (
	"context"
	"fmt"
)

// Parse extracts the routes declared in content. A source without routes
// yields an empty slice; it may still carry modeline dependencies.
func Parse(ctx context.Context, lang Language, content []byte) ([]*Route, error) {
	var (
		routes []*Route
		err    error
	)
	switch lang {
	case JavaScript:
		routes, err = evalChains(ctx, string(content))
	case Java, Groovy, Kotlin:
		var chains []string
		chains, err = extractChains(string(content))
		if err == nil {
			routes, err = evalChains(ctx, joinChains(chains))
		}
	case YAML:
		routes, err = parseYAML(content)
	case XML:
		routes, err = parseXML(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	if err != nil {
		return nil, fmt.Errorf("%s source: %w", lang, err)
	}
	return routes, nil
}
