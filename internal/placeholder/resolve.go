package placeholder

import (
	"fmt"
	"sort"
	"strings"
)

// MissingError lists placeholders that have neither a value nor a default.
type MissingError struct {
	Names []string
}

// Error implements the error interface.
func (e *MissingError) Error() string {
	return fmt.Sprintf("unresolved property placeholders: %s", strings.Join(e.Names, ", "))
}

// SyntaxError reports a malformed placeholder.
type SyntaxError struct {
	Text   string
	Offset int
	Reason string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed placeholder at offset %d in %q: %s", e.Offset, e.Text, e.Reason)
}

// Token is a single placeholder occurrence.
type Token struct {
	Name       string
	Default    string
	HasDefault bool
	Start, End int
}

// Scan returns every placeholder token in text, in order.
func Scan(text string) ([]Token, error) {
	var tokens []Token
	pos := 0
	for {
		open := strings.Index(text[pos:], "{{")
		if open < 0 {
			return tokens, nil
		}
		open += pos
		closeIdx := strings.Index(text[open+2:], "}}")
		if closeIdx < 0 {
			return nil, &SyntaxError{Text: text, Offset: open, Reason: "missing closing '}}'"}
		}
		end := open + 2 + closeIdx + 2
		inner := text[open+2 : end-2]

		name, def, hasDefault := strings.Cut(inner, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, &SyntaxError{Text: text, Offset: open, Reason: "empty property name"}
		}
		if strings.Contains(name, "{{") {
			return nil, &SyntaxError{Text: text, Offset: open, Reason: "nested placeholders are not supported"}
		}

		tokens = append(tokens, Token{
			Name:       name,
			Default:    def,
			HasDefault: hasDefault,
			Start:      open,
			End:        end,
		})
		pos = end
	}
}

// Resolve replaces every placeholder in text using src. If any placeholder
// without a default is absent from src, a *MissingError naming all of them
// is returned and no text.
func Resolve(text string, src Source) (string, error) {
	tokens, err := Scan(text)
	if err != nil {
		return "", err
	}
	if len(tokens) == 0 {
		return text, nil
	}

	var b strings.Builder
	missing := make(map[string]struct{})
	last := 0
	for _, tok := range tokens {
		b.WriteString(text[last:tok.Start])
		last = tok.End

		if v, ok := src.Lookup(tok.Name); ok {
			b.WriteString(v)
			continue
		}
		if tok.HasDefault {
			b.WriteString(tok.Default)
			continue
		}
		missing[tok.Name] = struct{}{}
	}
	b.WriteString(text[last:])

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for n := range missing {
			names = append(names, n)
		}
		sort.Strings(names)
		return "", &MissingError{Names: names}
	}
	return b.String(), nil
}

// Resolver resolves many strings against one source and accumulates
// missing names across calls, so a caller can report every unresolved
// placeholder of a file at once.
type Resolver struct {
	src     Source
	missing map[string]struct{}
	err     error
}

// NewResolver creates a Resolver over src.
func NewResolver(src Source) *Resolver {
	return &Resolver{src: src, missing: make(map[string]struct{})}
}

// Resolve resolves text. On failure it returns the input unchanged and
// records the problem for Err.
func (r *Resolver) Resolve(text string) string {
	out, err := Resolve(text, r.src)
	if err == nil {
		return out
	}
	if me, ok := err.(*MissingError); ok {
		for _, n := range me.Names {
			r.missing[n] = struct{}{}
		}
	} else if r.err == nil {
		r.err = err
	}
	return text
}

// Err returns the first syntax error, or a *MissingError with every
// missing name seen so far, or nil.
func (r *Resolver) Err() error {
	if r.err != nil {
		return r.err
	}
	if len(r.missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.missing))
	for n := range r.missing {
		names = append(names, n)
	}
	sort.Strings(names)
	return &MissingError{Names: names}
}
