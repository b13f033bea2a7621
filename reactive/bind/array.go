package bind

import (
	"fmt"

	"github.com/unscriptable/bard/reactive"
	"github.com/unscriptable/bard/reactive/binder"
	"github.com/unscriptable/bard/reactive/jsonpath"
	"github.com/unscriptable/bard/reactive/node"
)

// Array renders a sorted collection of items as copies of a template node.
// The reconciler operations (Insert, Update, Delete, Clear, ReplaceAll,
// Locate, ApplyChanges, ...) are promoted from the embedded Reconciler.
type Array struct {
	*reactive.Reconciler[Item, any, *node.Node]

	root     *node.Node
	section  *node.Node
	template *node.Node
}

// NewArray binds the section of root named by opts.SectionName. The section
// must hold exactly one element, which is detached and used as the template
// for every item.
func NewArray(root *node.Node, opts Options) (*Array, error) {
	opts = opts.withDefaults()

	section := root
	if opts.SectionName != "" {
		if found := root.Query(binder.SectionAttr, opts.SectionName); found != nil {
			section = found
		}
	}

	elems := section.Elements()
	if len(elems) != 1 {
		return nil, fmt.Errorf("section %q has %d elements: %w", opts.SectionName, len(elems), reactive.ErrAmbiguousTemplate)
	}
	template := elems[0]
	section.RemoveChild(template)

	compiler := binder.New(binder.Options{Strip: opts.Strip})
	r, err := reactive.New(reactive.Config[Item, any, *node.Node]{
		Container: section,
		Root:      root,
		Template:  template,
		Clone:     node.DeepClone,
		Compile:   compiler.Compile,
		Contains:  node.Contains,
		Compare:   opts.Compare,
		Identify:  opts.Identify,
		Get:       opts.provider,
		Set: func(item Item, path string, value any) error {
			return jsonpath.Construct(item, path, value)
		},
		Logger: opts.Logger.Named("array"),
	})
	if err != nil {
		return nil, err
	}

	return &Array{
		Reconciler: r,
		root:       root,
		section:    section,
		template:   template,
	}, nil
}

// Root returns the tree the array was bound to.
func (a *Array) Root() *node.Node { return a.root }

// Section returns the node holding the rendered items.
func (a *Array) Section() *node.Node { return a.section }

// Template returns the detached template node.
func (a *Array) Template() *node.Node { return a.template }

// Items returns the bound items in sort order.
func (a *Array) Items() []Item {
	items := make([]Item, 0, a.Len())
	for _, item := range a.All() {
		items = append(items, item)
	}
	return items
}

// Render returns the markup of the whole tree.
func (a *Array) Render() string {
	return a.root.String()
}
