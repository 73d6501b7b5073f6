package dsl

import (
	"errors"
	"fmt"
)

// ErrUnsupportedSyntax is returned when a route chain uses a construct
// that cannot be evaluated, such as a Groovy call without parentheses.
var ErrUnsupportedSyntax = errors.New("unsupported route syntax")

// extractChains returns the source text of every `from(...)...` chain in a
// Java, Groovy or Kotlin file. String literals and comments are skipped
// when looking for chains and when balancing parentheses.
func extractChains(src string) ([]string, error) {
	var chains []string
	i := 0
	for i < len(src) {
		if next, skipped := skipLiteralOrComment(src, i); skipped {
			i = next
			continue
		}
		if isChainStart(src, i) {
			end, err := chainEnd(src, i)
			if err != nil {
				return nil, err
			}
			chains = append(chains, src[i:end])
			i = end
			continue
		}
		i++
	}
	return chains, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// isChainStart reports whether a standalone `from(` call begins at i.
func isChainStart(src string, i int) bool {
	const kw = "from"
	if len(src)-i < len(kw) || src[i:i+len(kw)] != kw {
		return false
	}
	if i > 0 && (isIdentByte(src[i-1]) || src[i-1] == '.') {
		return false
	}
	j := skipSpace(src, i+len(kw))
	return j < len(src) && src[j] == '('
}

// chainEnd returns the offset just past the last call of the chain that
// starts at i.
func chainEnd(src string, i int) (int, error) {
	pos := i
	for {
		nameEnd := pos
		for nameEnd < len(src) && isIdentByte(src[nameEnd]) {
			nameEnd++
		}
		if nameEnd == pos {
			return 0, fmt.Errorf("%w: expected a method name at offset %d", ErrUnsupportedSyntax, pos)
		}
		open := skipSpace(src, nameEnd)
		if open >= len(src) || src[open] != '(' {
			return 0, fmt.Errorf("%w: call to %s without parentheses at offset %d", ErrUnsupportedSyntax, src[pos:nameEnd], pos)
		}
		closeIdx, err := matchParen(src, open)
		if err != nil {
			return 0, err
		}
		end := closeIdx + 1

		next := skipSpaceAndComments(src, end)
		if next >= len(src) || src[next] != '.' {
			return end, nil
		}
		pos = skipSpaceAndComments(src, next+1)
	}
}

// matchParen returns the offset of the parenthesis closing the one at open.
func matchParen(src string, open int) (int, error) {
	depth := 0
	i := open
	for i < len(src) {
		if next, skipped := skipLiteralOrComment(src, i); skipped {
			i = next
			continue
		}
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
		i++
	}
	return 0, fmt.Errorf("%w: unbalanced parentheses starting at offset %d", ErrUnsupportedSyntax, open)
}

func skipSpace(src string, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r') {
		i++
	}
	return i
}

func skipSpaceAndComments(src string, i int) int {
	for {
		i = skipSpace(src, i)
		if i+1 < len(src) && src[i] == '/' && (src[i+1] == '/' || src[i+1] == '*') {
			next, _ := skipLiteralOrComment(src, i)
			i = next
			continue
		}
		return i
	}
}

// skipLiteralOrComment returns the offset after a string literal, char
// literal or comment starting at i. The bool is false when none starts
// there.
func skipLiteralOrComment(src string, i int) (int, bool) {
	c := src[i]
	switch {
	case c == '/' && i+1 < len(src) && src[i+1] == '/':
		for i < len(src) && src[i] != '\n' {
			i++
		}
		return i, true
	case c == '/' && i+1 < len(src) && src[i+1] == '*':
		for i += 2; i+1 < len(src); i++ {
			if src[i] == '*' && src[i+1] == '/' {
				return i + 2, true
			}
		}
		return len(src), true
	case c == '"' || c == '\'':
		if i+2 < len(src) && src[i+1] == c && src[i+2] == c {
			triple := src[i : i+3]
			for j := i + 3; j+2 < len(src); j++ {
				if src[j:j+3] == triple {
					return j + 3, true
				}
			}
			return len(src), true
		}
		for j := i + 1; j < len(src); j++ {
			switch src[j] {
			case '\\':
				j++
			case c:
				return j + 1, true
			case '\n':
				return j, true
			}
		}
		return len(src), true
	}
	return i, false
}
