package simple

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Language names the expression language of a body or log message.
type Language string

const (
	LanguageSimple   Language = "simple"
	LanguageConstant Language = "constant"
)

// ErrUnknownReference is returned when an expression refers to something
// the exchange does not expose.
var ErrUnknownReference = errors.New("unknown reference")

// knownRoots lists the top-level names an expression may reference.
var knownRoots = map[string]struct{}{
	"routeId":          {},
	"camelId":          {},
	"exchangeId":       {},
	"body":             {},
	"header":           {},
	"headers":          {},
	"exchangeProperty": {},
}

// Expression is a compiled, immutable body expression.
type Expression struct {
	Language Language
	Text     string

	tmpl hclsyntax.Expression
	refs []string
	// keys are the header and property names read by the expression,
	// keyed by root; absent ones render as "".
	keys map[string][]string
}

// Compile parses text in the given language. An empty language means
// simple.
func Compile(lang Language, text string) (*Expression, error) {
	switch lang {
	case "", LanguageSimple:
		return compileSimple(text)
	case LanguageConstant:
		return Constant(text), nil
	default:
		return nil, fmt.Errorf("unsupported expression language %q", lang)
	}
}

// Constant returns an expression that always evaluates to text.
func Constant(text string) *Expression {
	return &Expression{Language: LanguageConstant, Text: text}
}

func compileSimple(text string) (*Expression, error) {
	expr := &Expression{Language: LanguageSimple, Text: text}
	if !strings.Contains(text, "${") {
		return expr, nil
	}

	// `%{` starts a template directive; in simple it is plain text.
	src := strings.ReplaceAll(text, "%{", "%%{")
	tmpl, diags := hclsyntax.ParseTemplate([]byte(src), "simple", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid simple expression %q: %w", text, diags)
	}

	refs := make(map[string]struct{})
	keys := make(map[string]map[string]struct{})
	var unknown []string
	for _, traversal := range tmpl.Variables() {
		root := traversal.RootName()
		if _, ok := knownRoots[root]; !ok {
			unknown = append(unknown, root)
			continue
		}
		refs[traversalKey(traversal)] = struct{}{}
		if name, ok := mapKey(traversal); ok {
			if keys[root] == nil {
				keys[root] = make(map[string]struct{})
			}
			keys[root][name] = struct{}{}
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w in simple expression %q: %s", ErrUnknownReference, text, strings.Join(unknown, ", "))
	}

	expr.tmpl = tmpl
	for k := range refs {
		expr.refs = append(expr.refs, k)
	}
	sort.Strings(expr.refs)
	expr.keys = make(map[string][]string, len(keys))
	for root, names := range keys {
		for n := range names {
			expr.keys[root] = append(expr.keys[root], n)
		}
	}
	return expr, nil
}

// mapKey returns the key of a header or property lookup written either as
// `header.Name` or `header["Name"]`.
func mapKey(t hcl.Traversal) (string, bool) {
	switch t.RootName() {
	case "header", "headers", "exchangeProperty":
	default:
		return "", false
	}
	if len(t) < 2 {
		return "", false
	}
	switch step := t[1].(type) {
	case hcl.TraverseAttr:
		return step.Name, true
	case hcl.TraverseIndex:
		if step.Key.Type() == cty.String && step.Key.IsKnown() && !step.Key.IsNull() {
			return step.Key.AsString(), true
		}
	}
	return "", false
}

// References returns the sorted exchange references used by the
// expression, e.g. "routeId" or "header.CamelTimerCounter".
func (e *Expression) References() []string {
	return append([]string(nil), e.refs...)
}

// IsStatic reports whether the expression output never depends on the
// exchange.
func (e *Expression) IsStatic() bool {
	return e.tmpl == nil
}

// Evaluate renders the expression against the given scope.
func (e *Expression) Evaluate(scope *Scope) (string, error) {
	if e.tmpl == nil {
		return e.Text, nil
	}

	val, diags := e.tmpl.Value(scope.evalContext(e.keys))
	if diags.HasErrors() {
		return "", fmt.Errorf("evaluating %q: %w", e.Text, diags)
	}
	if val.IsNull() {
		return "", nil
	}
	if !val.IsKnown() {
		return "", fmt.Errorf("evaluating %q: result is unknown", e.Text)
	}
	strVal, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("evaluating %q: result is not a string: %w", e.Text, err)
	}
	return strVal.AsString(), nil
}

// traversalKey generates a stable string representation for a traversal.
func traversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}
