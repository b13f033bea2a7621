// Package jsonpath reads and writes nested model values with path
// expressions such as "items[1].thing" or `["one"]["two"]`. Models are
// trees of map[string]any and []any, as produced by encoding/json.
package jsonpath

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ohler55/ojg/jp"
)

var (
	// ErrPrematureEnd means the model has no value at some step of the path.
	ErrPrematureEnd = errors.New("jsonpath: path does not reach a value")

	// ErrUnsupported means the path uses more than child names and indexes.
	ErrUnsupported = errors.New("jsonpath: only child names and indexes are supported")
)

var cache sync.Map // string -> jp.Expr

// Parse compiles path into an expression of child and index steps. Results
// are cached.
func Parse(path string) (jp.Expr, error) {
	if x, ok := cache.Load(path); ok {
		return x.(jp.Expr), nil
	}
	raw, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("jsonpath: parse %q: %w", path, err)
	}
	x := make(jp.Expr, 0, len(raw))
	for _, frag := range raw {
		switch frag.(type) {
		case jp.Child, jp.Nth:
			x = append(x, frag)
		case jp.Root, jp.At, jp.Bracket:
			// anchors carry no navigation
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupported, path)
		}
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("jsonpath: empty path %q", path)
	}
	cache.Store(path, x)
	return x, nil
}

// Lookup returns the value at path and whether it exists.
func Lookup(obj any, path string) (any, bool) {
	x, err := Parse(path)
	if err != nil {
		return nil, false
	}
	return lookup(obj, x)
}

// Get returns the value at path, or ErrPrematureEnd if the model does not
// reach that far.
func Get(obj any, path string) (any, error) {
	x, err := Parse(path)
	if err != nil {
		return nil, err
	}
	v, ok := lookup(obj, x)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPrematureEnd, path)
	}
	return v, nil
}

// Set writes value at path. Every step but the last must already exist.
func Set(obj any, path string, value any) error {
	x, err := Parse(path)
	if err != nil {
		return err
	}
	parent, ok := lookupParent(obj, x)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPrematureEnd, path)
	}
	return assign(parent, x[len(x)-1], value, path)
}

// Construct writes value at path, creating missing intermediate maps.
func Construct(obj any, path string, value any) error {
	x, err := Parse(path)
	if err != nil {
		return err
	}
	cur := obj
	for i, frag := range x[:len(x)-1] {
		next, ok := x[:i+1].Get(obj), false
		if len(next) > 0 && next[0] != nil {
			cur, ok = next[0], true
		}
		if !ok {
			created := map[string]any{}
			if err := assign(cur, frag, created, path); err != nil {
				return err
			}
			cur = created
		}
	}
	return assign(cur, x[len(x)-1], value, path)
}

func lookup(obj any, x jp.Expr) (any, bool) {
	if obj == nil {
		return nil, false
	}
	switch obj.(type) {
	case map[string]any, []any:
	default:
		return nil, false
	}
	values := x.Get(obj)
	if len(values) == 0 {
		return nil, false
	}
	return values[0], true
}

func lookupParent(obj any, x jp.Expr) (any, bool) {
	if len(x) == 1 {
		return obj, obj != nil
	}
	return lookup(obj, x[:len(x)-1])
}

func assign(parent any, frag jp.Frag, value any, path string) error {
	switch f := frag.(type) {
	case jp.Child:
		m, ok := parent.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPrematureEnd, path)
		}
		m[string(f)] = value
		return nil
	case jp.Nth:
		s, ok := parent.([]any)
		i := int(f)
		if i < 0 {
			i += len(s)
		}
		if !ok || i < 0 || i >= len(s) {
			return fmt.Errorf("%w: %s", ErrPrematureEnd, path)
		}
		s[i] = value
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, path)
}
