package simple

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Scope is the view of an exchange that expressions can reference.
type Scope struct {
	RouteID    string
	CamelID    string
	ExchangeID string
	Body       string
	Headers    map[string]string
	Properties map[string]string
}

// evalContext exposes the scope. keys lists, per root, the header and
// property names the expression reads so that absent ones are "".
func (s *Scope) evalContext(keys map[string][]string) *hcl.EvalContext {
	headerKeys := append(append([]string(nil), keys["header"]...), keys["headers"]...)
	headers := stringObject(s.Headers, headerKeys)
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"routeId":          cty.StringVal(s.RouteID),
			"camelId":          cty.StringVal(s.CamelID),
			"exchangeId":       cty.StringVal(s.ExchangeID),
			"body":             cty.StringVal(s.Body),
			"header":           headers,
			"headers":          headers,
			"exchangeProperty": stringObject(s.Properties, keys["exchangeProperty"]),
		},
	}
}

func stringObject(m map[string]string, referenced []string) cty.Value {
	attrs := make(map[string]cty.Value, len(m)+len(referenced))
	for _, k := range referenced {
		attrs[k] = cty.StringVal("")
	}
	for k, v := range m {
		attrs[k] = cty.StringVal(v)
	}
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}
