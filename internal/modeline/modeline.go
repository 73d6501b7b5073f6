// Package modeline reads the `camel-k:` directive comments at the top of an
// integration source file and applies them to the integration model.
package modeline

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/vk/kamelrun/internal/config"
)

// Marker is the text that turns a comment into a modeline.
const Marker = "camel-k:"

var (
	// ErrUnknownDirective is returned for keys the runner does not know.
	ErrUnknownDirective = errors.New("unknown modeline directive")
	// ErrMalformedDirective is returned for options without `=` or with an
	// empty key.
	ErrMalformedDirective = errors.New("malformed modeline directive")
)

// Known directive keys.
const (
	KeyLanguage      = "language"
	KeyDependency    = "dependency"
	KeyProperty      = "property"
	KeyTrait         = "trait"
	KeyName          = "name"
	KeyEnv           = "env"
	KeyResource      = "resource"
	KeyConfig        = "config"
	KeyProfile       = "profile"
	KeyNamespace     = "namespace"
	KeyOpenAPI       = "open-api"
	KeyBuildProperty = "build-property"
	KeyVolume        = "volume"
)

var knownKeys = map[string]struct{}{
	KeyLanguage: {}, KeyDependency: {}, KeyProperty: {}, KeyTrait: {},
	KeyName: {}, KeyEnv: {}, KeyResource: {}, KeyConfig: {}, KeyProfile: {},
	KeyNamespace: {}, KeyOpenAPI: {}, KeyBuildProperty: {}, KeyVolume: {},
}

// Parse returns every directive found in the leading comment block of
// content. Scanning stops at the first line that is neither blank, a
// comment, an XML prolog nor a YAML document marker.
func Parse(content []byte) ([]config.Directive, error) {
	var directives []config.Directive

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "---" || strings.HasPrefix(line, "<?xml") {
			continue
		}
		text, isComment := commentText(line)
		if !isComment {
			break
		}
		if !strings.HasPrefix(text, Marker) {
			continue
		}

		opts, err := splitOptions(strings.TrimSpace(strings.TrimPrefix(text, Marker)))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		for _, opt := range opts {
			key, value, ok := strings.Cut(opt, "=")
			key = strings.TrimSpace(key)
			if !ok || key == "" {
				return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrMalformedDirective, opt)
			}
			if _, known := knownKeys[key]; !known {
				return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrUnknownDirective, key)
			}
			directives = append(directives, config.Directive{Key: key, Value: value, Line: lineNo})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading modeline: %w", err)
	}
	return directives, nil
}

// commentText strips a line comment marker and returns the comment body.
func commentText(line string) (string, bool) {
	switch {
	case strings.HasPrefix(line, "//"):
		return strings.TrimSpace(strings.TrimPrefix(line, "//")), true
	case strings.HasPrefix(line, "/*"), strings.HasPrefix(line, "*"):
		body := strings.TrimLeft(line, "/*")
		body = strings.TrimSuffix(body, "*/")
		return strings.TrimSpace(body), true
	case strings.HasPrefix(line, "#"):
		return strings.TrimSpace(strings.TrimPrefix(line, "#")), true
	case strings.HasPrefix(line, "<!--"):
		body := strings.TrimPrefix(line, "<!--")
		body = strings.TrimSuffix(body, "-->")
		return strings.TrimSpace(body), true
	}
	return "", false
}

// splitOptions splits on whitespace outside double quotes and removes the
// quotes.
func splitOptions(s string) ([]string, error) {
	var (
		opts    []string
		current strings.Builder
		quoted  bool
		started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case unicode.IsSpace(r) && !quoted:
			if started {
				opts = append(opts, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("%w: unbalanced quotes in %q", ErrMalformedDirective, s)
	}
	if started {
		opts = append(opts, current.String())
	}
	return opts, nil
}
