package dsl

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

type xmlNode struct {
	XMLName xml.Name
	ID      string    `xml:"id,attr"`
	URI     string    `xml:"uri,attr"`
	Message string    `xml:"message,attr"`
	Text    string    `xml:",chardata"`
	Nodes   []xmlNode `xml:",any"`
}

// parseXML reads the XML route DSL: a <routes> (or <camel>) element holding
// <route> elements, or a single <route>.
func parseXML(content []byte) ([]*Route, error) {
	var root xmlNode
	if err := xml.Unmarshal(content, &root); err != nil {
		return nil, err
	}

	var elems []xmlNode
	switch root.XMLName.Local {
	case "routes", "camel":
		for _, n := range root.Nodes {
			if n.XMLName.Local != "route" {
				return nil, fmt.Errorf("%w: <%s> under <%s>", ErrUnsupportedStep, n.XMLName.Local, root.XMLName.Local)
			}
			elems = append(elems, n)
		}
	case "route":
		elems = []xmlNode{root}
	default:
		return nil, fmt.Errorf("unexpected root element <%s>", root.XMLName.Local)
	}

	routes := make([]*Route, 0, len(elems))
	for i, el := range elems {
		r, err := xmlRoute(el)
		if err != nil {
			return nil, fmt.Errorf("route %d: %w", i+1, err)
		}
		routes = append(routes, r)
	}
	return routes, nil
}

func xmlRoute(el xmlNode) (*Route, error) {
	if len(el.Nodes) == 0 || el.Nodes[0].XMLName.Local != "from" {
		return nil, errors.New("<route> must start with <from>")
	}
	b, err := newBuilder(el.Nodes[0].URI)
	if err != nil {
		return nil, err
	}
	if el.ID != "" {
		if err := b.setID(el.ID); err != nil {
			return nil, err
		}
	}
	for _, n := range el.Nodes[1:] {
		if err := xmlStep(b, n); err != nil {
			return nil, err
		}
	}
	return b.finish()
}

func xmlStep(b *builder, n xmlNode) error {
	switch name := n.XMLName.Local; name {
	case "setBody", "transform":
		if len(n.Nodes) != 1 {
			return fmt.Errorf("%w: <%s> expects one expression element", ErrUnsupportedStep, name)
		}
		lang := n.Nodes[0].XMLName.Local
		if lang != "simple" && lang != "constant" {
			return fmt.Errorf("%w: expression language %s", ErrUnsupportedStep, lang)
		}
		return b.setBody(&Expression{Language: lang, Text: strings.TrimSpace(n.Nodes[0].Text)})
	case "to":
		return b.sink(SinkTo, n.URI)
	case "log":
		return b.sink(SinkLog, n.Message)
	case "from":
		return fmt.Errorf("%w: second <from> in one route", ErrMultiStage)
	default:
		return fmt.Errorf("%w: <%s>", ErrUnsupportedStep, name)
	}
}
