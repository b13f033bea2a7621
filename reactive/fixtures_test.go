package reactive_test

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unscriptable/bard/reactive"
	"github.com/unscriptable/bard/reactive/node"
)

// item is a test entity. Tests mutate key in place through the pointer.
type item struct {
	id  int
	key int
}

func compareItems(a, b *item) int { return cmp.Compare(a.key, b.key) }

func identifyItem(i *item) int { return i.id }

type reconciler = reactive.Reconciler[*item, int, *node.Node]

type config = reactive.Config[*item, int, *node.Node]

// fixture is a list element whose rows are <li data-id=".."><span>key</span></li>.
type fixture struct {
	root     *node.Node
	list     *node.Node
	template *node.Node
	r        *reconciler

	compares  int
	destroyed []*node.Node
}

func newFixture(t testing.TB, tweak ...func(*config)) *fixture {
	t.Helper()
	f, err := buildFixture(tweak...)
	require.NoError(t, err)
	return f
}

func buildFixture(tweak ...func(*config)) (*fixture, error) {
	f := &fixture{}
	f.template = node.New("li", node.New("span"))
	f.list = node.New("ul")
	f.root = node.New("div", f.list)

	cfg := config{
		Container: f.list,
		Root:      f.root,
		Template:  f.template,
		Clone:     node.DeepClone,
		Compile:   compileRow,
		Contains:  node.Contains,
		Destroy:   func(n *node.Node) { f.destroyed = append(f.destroyed, n) },
		Compare: func(a, b *item) int {
			f.compares++
			return compareItems(a, b)
		},
		Identify: identifyItem,
		Get:      getField,
		Set:      setField,
	}
	for _, fn := range tweak {
		fn(&cfg)
	}

	r, err := reactive.New(cfg)
	if err != nil {
		return nil, err
	}
	f.r = r
	return f, nil
}

func compileRow(target *node.Node) (reactive.Accessors, error) {
	span := target.Elements()[0]
	return reactive.Accessors{
		Push: func(provide reactive.Provider) {
			target.SetAttr("data-id", fmt.Sprint(provide("id")))
			span.SetTextContent(fmt.Sprint(provide("key")))
		},
		Pull: func(receive reactive.Receiver) {
			receive("key", span.TextContent())
		},
	}, nil
}

func getField(e *item, key string) any {
	switch key {
	case "id":
		return e.id
	case "key":
		return e.key
	}
	return nil
}

func setField(e *item, key string, value any) error {
	if key != "key" {
		return nil
	}
	n, err := strconv.Atoi(value.(string))
	if err != nil {
		return err
	}
	e.key = n
	return nil
}

// insert binds items with the given keys, using the key as the id.
func (f *fixture) insert(t testing.TB, keys ...int) []*item {
	t.Helper()
	items := make([]*item, len(keys))
	for i, k := range keys {
		items[i] = &item{id: k, key: k}
		_, err := f.r.Insert(items[i])
		require.NoError(t, err)
	}
	return items
}

// rendered returns the data-id of every row, in container order.
func (f *fixture) rendered() []string {
	var ids []string
	for _, row := range f.list.Elements() {
		id, _ := row.Attr("data-id")
		ids = append(ids, id)
	}
	return ids
}

// indexed returns the id of every binding, in index order.
func (f *fixture) indexed() []string {
	var ids []string
	for _, e := range f.r.All() {
		ids = append(ids, strconv.Itoa(e.id))
	}
	return ids
}

func (f *fixture) keys() []int {
	var keys []int
	for _, e := range f.r.All() {
		keys = append(keys, e.key)
	}
	return keys
}

var errCompile = errors.New("compile failed")
