// Package binder compiles the binding declarations found on a render tree
// into push/pull accessors.
//
// A declaration is an attribute on any node of the tree:
//
//	data-bard-bind="text:name;class:{{status}} item;(empty):done"
//
// Each "attr:template" pair binds one node property. "text" is the node's
// text content, "(empty)" toggles a boolean attribute named by the key, and
// any other name is an attribute. A template is either a bare key or text
// with {{key}} / ${key} tokens; templated pairs are push-only.
package binder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/unscriptable/bard/reactive"
	"github.com/unscriptable/bard/reactive/node"
)

const (
	BindAttr    = "data-bard-bind"
	SectionAttr = "data-bard-section"

	textProp  = "text"
	emptyProp = "(empty)"
)

// ErrMalformedBinding means a declaration is not a list of attr:template pairs.
var ErrMalformedBinding = errors.New("binder: malformed binding")

// Mapping is one attr:template pair.
type Mapping struct {
	Attr     string
	Template string
}

// Binding is a node and the pairs declared on it.
type Binding struct {
	Node     *node.Node
	Mappings []Mapping
}

// ParseMappings splits a declaration into its pairs.
func ParseMappings(def string) ([]Mapping, error) {
	var mappings []Mapping
	for _, pair := range strings.Split(def, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		attr, tmpl, ok := strings.Cut(pair, ":")
		attr, tmpl = strings.TrimSpace(attr), strings.TrimSpace(tmpl)
		if !ok || attr == "" || tmpl == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedBinding, pair)
		}
		mappings = append(mappings, Mapping{Attr: attr, Template: tmpl})
	}
	return mappings, nil
}

// Extract finds every node under root, root included, that declares
// bindings, in document order.
func Extract(root *node.Node) ([]Binding, error) {
	var bindings []Binding
	for _, n := range root.QueryAll(BindAttr) {
		def, _ := n.Attr(BindAttr)
		mappings, err := ParseMappings(def)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, Binding{Node: n, Mappings: mappings})
	}
	return bindings, nil
}

// Options tune compilation.
type Options struct {
	// Strip removes the declarations from the tree once compiled. A stripped
	// tree compiles to empty accessors the next time.
	Strip bool
}

// Binder compiles render trees into accessors.
type Binder struct {
	opts Options
}

func New(opts Options) *Binder {
	return &Binder{opts: opts}
}

// Compile compiles with default options.
func Compile(root *node.Node) (reactive.Accessors, error) {
	return New(Options{}).Compile(root)
}

// Compile extracts the declarations under root and returns accessors that
// push into, and pull from, the declaring nodes.
func (b *Binder) Compile(root *node.Node) (reactive.Accessors, error) {
	bindings, err := Extract(root)
	if err != nil {
		return reactive.Accessors{}, err
	}

	var setters []func(reactive.Provider)
	var getters []func(reactive.Receiver)
	for _, binding := range bindings {
		for _, m := range binding.Mappings {
			set, get, err := accessor(binding.Node, m)
			if err != nil {
				return reactive.Accessors{}, err
			}
			setters = append(setters, set)
			if get != nil {
				getters = append(getters, get)
			}
		}
		if b.opts.Strip {
			binding.Node.RemoveAttr(BindAttr)
		}
	}

	return reactive.Accessors{
		Push: func(provide reactive.Provider) {
			for _, set := range setters {
				set(provide)
			}
		},
		Pull: func(receive reactive.Receiver) {
			for _, get := range getters {
				get(receive)
			}
		},
	}, nil
}

func accessor(n *node.Node, m Mapping) (func(reactive.Provider), func(reactive.Receiver), error) {
	tokens := ParseTemplate(m.Template)
	if len(tokens) == 1 {
		// a lone literal is a bare key
		key := tokens[0].Key
		if !tokens[0].IsKey {
			key = tokens[0].Literal
		}
		return setter(n, m.Attr, key), getter(n, m.Attr, key), nil
	}
	if m.Attr == emptyProp {
		return nil, nil, fmt.Errorf("%w: %s takes a single key, got %q", ErrMalformedBinding, emptyProp, m.Template)
	}
	return templateSetter(n, m.Attr, tokens), nil, nil
}

func templateSetter(n *node.Node, attr string, tokens []Token) func(reactive.Provider) {
	write := setter(n, attr, "")
	return func(provide reactive.Provider) {
		content := Exec(tokens, provide)
		write(func(string) any { return content })
	}
}

func setter(n *node.Node, attr, key string) func(reactive.Provider) {
	switch attr {
	case emptyProp:
		return func(provide reactive.Provider) {
			if truthy(provide(key)) {
				n.SetAttr(key, key)
			} else {
				n.RemoveAttr(key)
			}
		}
	case textProp:
		return func(provide reactive.Provider) {
			n.SetTextContent(format(provide(key)))
		}
	default:
		return func(provide reactive.Provider) {
			n.SetAttr(attr, format(provide(key)))
		}
	}
}

func getter(n *node.Node, attr, key string) func(reactive.Receiver) {
	switch attr {
	case emptyProp:
		return func(receive reactive.Receiver) {
			receive(key, n.HasAttr(key))
		}
	case textProp:
		return func(receive reactive.Receiver) {
			receive(key, n.TextContent())
		}
	default:
		return func(receive reactive.Receiver) {
			v, _ := n.Attr(attr)
			receive(key, v)
		}
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}
