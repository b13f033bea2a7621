// Package bind wires the reactive core to node trees: Array keeps a sorted
// collection of items rendered under a section of a tree, Model binds a
// single item to a whole tree.
package bind

import (
	"cmp"
	"fmt"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/unscriptable/bard/reactive/jsonpath"
)

// Item is a model entity as decoded from JSON.
type Item = map[string]any

// Options configure Array and Model. Zero values select the defaults.
type Options struct {
	// SectionName selects the data-bard-section node holding the items.
	// Empty means the root itself.
	SectionName string

	// IDField is the path of the identity value. Default "id". The value
	// must be comparable: items whose identity is an array or object are
	// rejected with reactive.ErrUncomparableIdentity.
	IDField string
	// SortBy is the path of the sort key. Default IDField.
	SortBy string

	// Identify and Compare replace the field-based defaults.
	Identify func(Item) any
	Compare  func(a, b Item) int

	// Missing supplies a value for paths an item does not reach. Default nil.
	Missing func(path string) any
	// Transform post-processes every pushed value.
	Transform func(value any, path string) any

	// Strip removes binding declarations from clones once compiled.
	Strip bool

	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.IDField == "" {
		o.IDField = "id"
	}
	if o.SortBy == "" {
		o.SortBy = o.IDField
	}
	if o.Identify == nil {
		o.Identify = IdentifyBy(o.IDField)
	}
	if o.Compare == nil {
		o.Compare = CompareBy(o.SortBy)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// provider reads a path from an item for pushing.
func (o Options) provider(item Item, path string) any {
	v, ok := jsonpath.Lookup(item, path)
	if !ok && o.Missing != nil {
		v = o.Missing(path)
	}
	if o.Transform != nil {
		v = o.Transform(v, path)
	}
	return v
}

// IdentifyBy identifies items by the value at path.
func IdentifyBy(path string) func(Item) any {
	return func(item Item) any {
		v, _ := jsonpath.Lookup(item, path)
		return v
	}
}

// CompareBy orders items by the value at path. See CompareValues.
func CompareBy(path string) func(a, b Item) int {
	return func(a, b Item) int {
		av, _ := jsonpath.Lookup(a, path)
		bv, _ := jsonpath.Lookup(b, path)
		return CompareValues(av, bv)
	}
}

// CompareValues is the ordering CompareBy applies to field values. Values
// are ranked by kind first: missing, then numbers, then strings, then
// anything else. Numbers compare numerically, strings lexically and the rest
// by their printed form, so the order is total across mixed kinds.
func CompareValues(a, b any) int {
	ak, bk := kindOf(a), kindOf(b)
	if ak != bk {
		return cmp.Compare(ak, bk)
	}
	switch ak {
	case kindNil:
		return 0
	case kindNumber:
		return cmp.Compare(cast.ToFloat64(a), cast.ToFloat64(b))
	case kindString:
		return cmp.Compare(a.(string), b.(string))
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

const (
	kindNil = iota
	kindNumber
	kindString
	kindOther
)

func kindOf(v any) int {
	switch v.(type) {
	case nil:
		return kindNil
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return kindNumber
	case string:
		return kindString
	}
	return kindOther
}
