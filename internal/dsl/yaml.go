package dsl

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type yamlFlow struct {
	From  *yamlFrom  `yaml:"from"`
	Route *yamlRoute `yaml:"route"`
}

type yamlRoute struct {
	ID   string    `yaml:"id"`
	From *yamlFrom `yaml:"from"`
}

type yamlFrom struct {
	URI        string               `yaml:"uri"`
	Parameters map[string]yaml.Node `yaml:"parameters"`
	Steps      []yaml.Node          `yaml:"steps"`
}

// parseYAML reads the YAML route DSL: a list of `from:` or `route:` items.
// Multiple documents in one file are concatenated.
func parseYAML(content []byte) ([]*Route, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var routes []*Route
	for {
		var flows []yamlFlow
		err := dec.Decode(&flows)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		for i, flow := range flows {
			r, err := flow.route()
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i+1, err)
			}
			routes = append(routes, r)
		}
	}
	return routes, nil
}

func (f yamlFlow) route() (*Route, error) {
	switch {
	case f.From != nil && f.Route != nil:
		return nil, errors.New("item declares both from and route")
	case f.From != nil:
		return f.From.build("")
	case f.Route != nil:
		if f.Route.From == nil {
			return nil, errors.New("route has no from")
		}
		return f.Route.From.build(f.Route.ID)
	default:
		return nil, errors.New("item declares neither from nor route")
	}
}

func (f *yamlFrom) build(id string) (*Route, error) {
	b, err := newBuilder(f.URI)
	if err != nil {
		return nil, err
	}
	if len(f.Parameters) > 0 {
		b.route.Params = make(map[string]string, len(f.Parameters))
		for k, v := range f.Parameters {
			b.route.Params[k] = v.Value
		}
	}
	if id != "" {
		if err := b.setID(id); err != nil {
			return nil, err
		}
	}
	for i := range f.Steps {
		if err := yamlStep(b, &f.Steps[i]); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return b.finish()
}

func yamlStep(b *builder, node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("%w: a step must be a mapping with exactly one key (line %d)", ErrUnsupportedStep, node.Line)
	}
	name, value := node.Content[0].Value, node.Content[1]
	switch name {
	case "setBody", "set-body", "transform":
		expr, err := yamlExpression(value)
		if err != nil {
			return err
		}
		return b.setBody(expr)
	case "to":
		uri, err := scalarOrField(value, "uri")
		if err != nil {
			return err
		}
		return b.sink(SinkTo, uri)
	case "log":
		msg, err := scalarOrField(value, "message")
		if err != nil {
			return err
		}
		return b.sink(SinkLog, msg)
	default:
		return fmt.Errorf("%w: %s (line %d)", ErrUnsupportedStep, name, node.Line)
	}
}

// yamlExpression reads `simple: text`, `constant: text` or the long form
// `simple: {expression: text}`.
func yamlExpression(node *yaml.Node) (*Expression, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return nil, fmt.Errorf("%w: body expects one of simple or constant (line %d)", ErrUnsupportedStep, node.Line)
	}
	lang := node.Content[0].Value
	if lang != "simple" && lang != "constant" {
		return nil, fmt.Errorf("%w: expression language %s (line %d)", ErrUnsupportedStep, lang, node.Line)
	}
	text, err := scalarOrField(node.Content[1], "expression")
	if err != nil {
		return nil, err
	}
	return &Expression{Language: lang, Text: text}, nil
}

func scalarOrField(node *yaml.Node, field string) (string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Value, nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == field {
				return node.Content[i+1].Value, nil
			}
		}
		return "", fmt.Errorf("missing %s (line %d)", field, node.Line)
	default:
		return "", fmt.Errorf("expected a string or a mapping with %s (line %d)", field, node.Line)
	}
}
