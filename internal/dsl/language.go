package dsl

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Language identifies a route source language.
type Language string

const (
	Java       Language = "java"
	Groovy     Language = "groovy"
	Kotlin     Language = "kotlin"
	JavaScript Language = "js"
	YAML       Language = "yaml"
	XML        Language = "xml"
)

// ErrUnsupportedLanguage is returned when neither the directive nor the
// file extension names a known language.
var ErrUnsupportedLanguage = errors.New("unsupported source language")

var extensions = map[string]Language{
	".java":   Java,
	".groovy": Groovy,
	".kts":    Kotlin,
	".js":     JavaScript,
	".yaml":   YAML,
	".yml":    YAML,
	".xml":    XML,
}

var aliases = map[string]Language{
	"java":       Java,
	"groovy":     Groovy,
	"kotlin":     Kotlin,
	"kts":        Kotlin,
	"js":         JavaScript,
	"javascript": JavaScript,
	"yaml":       YAML,
	"yml":        YAML,
	"xml":        XML,
}

// Extensions returns the file extensions of every supported language.
func Extensions() []string {
	out := make([]string, 0, len(extensions))
	for ext := range extensions {
		out = append(out, ext)
	}
	return out
}

// IsSource reports whether path has a supported extension.
func IsSource(path string) bool {
	_, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Detect chooses the language of a source: an explicit `language`
// directive wins over the file extension.
func Detect(path, directive string) (Language, error) {
	if directive != "" {
		if lang, ok := aliases[strings.ToLower(directive)]; ok {
			return lang, nil
		}
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, directive)
	}
	if lang, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return lang, nil
	}
	return "", fmt.Errorf("%w: cannot infer language of %s", ErrUnsupportedLanguage, path)
}
