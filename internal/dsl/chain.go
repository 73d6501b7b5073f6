package dsl

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dop251/goja"
)

// evalTimeout bounds how long a route script may run.
const evalTimeout = 5 * time.Second

// collector owns the VM and every route started by from().
type collector struct {
	vm       *goja.Runtime
	builders []*builder
	err      error
}

func (c *collector) record(err error) error {
	if err != nil && c.err == nil {
		c.err = err
	}
	return err
}

func (c *collector) from(uri string) (*jsRoute, error) {
	b, err := newBuilder(uri)
	if err != nil {
		return nil, c.record(err)
	}
	c.builders = append(c.builders, b)
	return &jsRoute{c: c, b: b}, nil
}

// jsRoute is the fluent builder object handed to scripts. Method names are
// exposed with a lower-case first letter.
type jsRoute struct {
	c *collector
	b *builder
}

func (r *jsRoute) result(err error) (*jsRoute, error) {
	if err != nil {
		return nil, r.c.record(err)
	}
	return r, nil
}

func (r *jsRoute) RouteId(id string) (*jsRoute, error) { return r.result(r.b.setID(id)) }

func (r *jsRoute) Id(id string) (*jsRoute, error) { return r.result(r.b.setID(id)) }

func (r *jsRoute) SetBody(args ...goja.Value) (*jsRoute, error) {
	expr, err := expressionArg("setBody", args)
	if err != nil {
		return r.result(err)
	}
	return r.result(r.b.setBody(expr))
}

func (r *jsRoute) Transform(args ...goja.Value) (*jsRoute, error) {
	return r.SetBody(args...)
}

func (r *jsRoute) Simple(text string) (*jsRoute, error) {
	return r.result(r.b.expression("simple", text))
}

func (r *jsRoute) Constant(text string) (*jsRoute, error) {
	return r.result(r.b.expression("constant", text))
}

func (r *jsRoute) To(uri string) (*jsRoute, error) { return r.result(r.b.sink(SinkTo, uri)) }

func (r *jsRoute) Log(message string) (*jsRoute, error) { return r.result(r.b.sink(SinkLog, message)) }

func expressionArg(step string, args []goja.Value) (*Expression, error) {
	switch len(args) {
	case 0:
		return nil, nil
	case 1:
		if expr, ok := args[0].Export().(*Expression); ok {
			return expr, nil
		}
		return nil, fmt.Errorf("%w: %s() argument must be simple(...) or constant(...)", ErrUnsupportedStep, step)
	default:
		return nil, fmt.Errorf("%w: %s() takes at most one argument", ErrUnsupportedStep, step)
	}
}

// evalChains runs script with the route builder bound to `from`, `simple`
// and `constant`, and returns every completed route in declaration order.
func evalChains(ctx context.Context, script string) ([]*Route, error) {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())

	c := &collector{vm: vm}
	globals := map[string]any{
		"from":     c.from,
		"simple":   func(text string) *Expression { return &Expression{Language: "simple", Text: text} },
		"constant": func(text string) *Expression { return &Expression{Language: "constant", Text: text} },
	}
	for name, fn := range globals {
		if err := vm.Set(name, fn); err != nil {
			return nil, fmt.Errorf("binding %s: %w", name, err)
		}
	}

	stop := context.AfterFunc(ctx, func() { vm.Interrupt(ctx.Err()) })
	defer stop()
	timer := time.AfterFunc(evalTimeout, func() { vm.Interrupt("route evaluation timed out") })
	defer timer.Stop()

	if _, err := vm.RunString(script); err != nil {
		if c.err != nil {
			return nil, c.err
		}
		return nil, fmt.Errorf("evaluating routes: %w", err)
	}
	if c.err != nil {
		return nil, c.err
	}

	routes := make([]*Route, 0, len(c.builders))
	for _, b := range c.builders {
		r, err := b.finish()
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, nil
}

// joinChains turns extracted chains into one script. Triple-quoted
// literals, which the VM does not understand, become ordinary strings.
func joinChains(chains []string) string {
	out := make([]string, len(chains))
	for i, c := range chains {
		out[i] = rewriteTripleQuotes(c)
	}
	return strings.Join(out, ";\n")
}

func rewriteTripleQuotes(chain string) string {
	var sb strings.Builder
	i := 0
	for i < len(chain) {
		next, skipped := skipLiteralOrComment(chain, i)
		if !skipped {
			sb.WriteByte(chain[i])
			i++
			continue
		}
		lit := chain[i:next]
		if len(lit) >= 6 && (strings.HasPrefix(lit, `"""`) || strings.HasPrefix(lit, "'''")) {
			sb.WriteString(strconv.Quote(lit[3 : len(lit)-3]))
		} else {
			sb.WriteString(lit)
		}
		i = next
	}
	return sb.String()
}
