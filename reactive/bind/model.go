package bind

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/unscriptable/bard/reactive"
	"github.com/unscriptable/bard/reactive/binder"
	"github.com/unscriptable/bard/reactive/jsonpath"
	"github.com/unscriptable/bard/reactive/node"
)

// Model binds one item to every declaration in a tree.
type Model struct {
	root *node.Node
	acc  reactive.Accessors
	opts Options
	item Item
}

// NewModel compiles the declarations under root. The tree is not cloned.
func NewModel(root *node.Node, opts Options) (*Model, error) {
	opts = opts.withDefaults()
	acc, err := binder.New(binder.Options{Strip: opts.Strip}).Compile(root)
	if err != nil {
		return nil, err
	}
	return &Model{root: root, acc: acc, opts: opts}, nil
}

// Set binds item and pushes its values into the tree.
func (m *Model) Set(item Item) {
	m.item = item
	m.push()
}

// Get pulls the tree's current values into the bound item and returns it.
// With no item bound, a new item is built from the tree. Values whose path
// cannot be written are reported together; the rest are still pulled.
func (m *Model) Get() (Item, error) {
	if m.item == nil {
		m.item = Item{}
	}
	err := m.pull()
	return m.item, err
}

// Update writes changes into the bound item, creating it if needed, and
// pushes the item again. Keys of changes are paths. The item is pushed even
// when some paths cannot be written.
func (m *Model) Update(changes Item) error {
	if m.item == nil {
		m.item = Item{}
	}
	var errs []error
	for _, path := range slices.Sorted(maps.Keys(changes)) {
		if err := jsonpath.Construct(m.item, path, changes[path]); err != nil {
			errs = append(errs, err)
		}
	}
	m.push()
	return errors.Join(errs...)
}

// Clear unbinds the item and pushes empty values into the tree.
func (m *Model) Clear() {
	m.item = nil
	m.push()
}

// Find returns the bound item if target lies inside the tree.
func (m *Model) Find(target *node.Node) (Item, bool) {
	if m.item == nil || !node.Contains(m.root, target) {
		return nil, false
	}
	return m.item, true
}

func (m *Model) pull() error {
	var errs []error
	m.acc.Pull(func(key string, value any) {
		if err := jsonpath.Construct(m.item, key, value); err != nil {
			errs = append(errs, err)
		}
	})
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	return nil
}

func (m *Model) push() {
	m.acc.Push(func(key string) any {
		if m.item == nil {
			return nil
		}
		return m.opts.provider(m.item, key)
	})
}
