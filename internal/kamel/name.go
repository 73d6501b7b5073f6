package kamel

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ErrInvalidName is returned for integration names Kubernetes would reject.
var ErrInvalidName = errors.New("invalid integration name")

var nameRe = regexp.MustCompile(`^[a-z][a-z0-9\-.]*[a-z0-9]$`)

// KebabCase converts a file stem such as "MyRouteBuilder" to
// "my-route-builder". Runs of characters outside [a-z0-9] collapse into a
// single dash and leading or trailing dashes are dropped.
func KebabCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	dash := false
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
			dash = true
		}
		r = unicode.ToLower(r)
		if !isASCIIAlnum(r) {
			dash = true
			continue
		}
		if dash && b.Len() > 0 {
			b.WriteByte('-')
		}
		dash = false
		b.WriteRune(r)
	}
	return b.String()
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// NameFromPath derives the integration name of a source file: the kebab
// case of its base name up to the first dot.
func NameFromPath(path string) string {
	stem, _, _ := strings.Cut(filepath.Base(path), ".")
	return KebabCase(stem)
}

// ValidName checks name against the Kubernetes resource naming rules used
// for integrations.
func ValidName(name string) error {
	if len(name) > 253 || !nameRe.MatchString(name) {
		return fmt.Errorf("%w: %q must match %s", ErrInvalidName, name, nameRe.String())
	}
	return nil
}
