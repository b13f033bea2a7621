package bind_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unscriptable/bard/reactive/bind"
	"github.com/unscriptable/bard/reactive/binder"
	"github.com/unscriptable/bard/reactive/jsonpath"
	"github.com/unscriptable/bard/reactive/node"
)

type form struct {
	root  *node.Node
	title *node.Node
	done  *node.Node
	hint  *node.Node
}

func newForm() form {
	var f form
	f.title = node.New("h1").With(binder.BindAttr, "text:title")
	f.done = node.New("input").With(binder.BindAttr, "(empty):done")
	f.hint = node.New("span").With(binder.BindAttr, "title:{{owner.name}}!")
	f.root = node.New("form", f.title, f.done, f.hint)
	return f
}

func TestModelSetAndGet(t *testing.T) {
	f := newForm()
	m, err := bind.NewModel(f.root, bind.Options{})
	require.NoError(t, err)

	item := bind.Item{"title": "Chores", "done": true, "owner": map[string]any{"name": "ann"}}
	m.Set(item)

	assert.Equal(t, "Chores", f.title.TextContent())
	assert.True(t, f.done.HasAttr("done"))
	hint, _ := f.hint.Attr("title")
	assert.Equal(t, "ann!", hint)

	f.title.SetTextContent("Errands")
	f.done.RemoveAttr("done")

	got, err := m.Get()
	require.NoError(t, err)
	assert.Equal(t, "Errands", got["title"])
	assert.Equal(t, false, got["done"])
	assert.Equal(t, "Errands", item["title"], "Get writes into the bound item")
}

func TestModelGetWithoutItem(t *testing.T) {
	f := newForm()
	m, err := bind.NewModel(f.root, bind.Options{})
	require.NoError(t, err)

	f.title.SetTextContent("typed")
	got, err := m.Get()
	require.NoError(t, err)
	assert.Equal(t, bind.Item{"title": "typed", "done": false}, got)
}

func TestModelUpdate(t *testing.T) {
	f := newForm()
	m, err := bind.NewModel(f.root, bind.Options{})
	require.NoError(t, err)

	require.NoError(t, m.Update(bind.Item{"title": "New", "owner.name": "bob"}))
	assert.Equal(t, "New", f.title.TextContent())
	hint, _ := f.hint.Attr("title")
	assert.Equal(t, "bob!", hint)

	require.NoError(t, m.Update(bind.Item{"done": 1}))
	assert.True(t, f.done.HasAttr("done"))
	assert.Equal(t, "New", f.title.TextContent(), "untouched paths keep their values")
}

func TestModelClearAndFind(t *testing.T) {
	f := newForm()
	m, err := bind.NewModel(f.root, bind.Options{})
	require.NoError(t, err)

	_, ok := m.Find(f.title)
	assert.False(t, ok, "nothing bound")

	item := bind.Item{"title": "x", "done": true}
	m.Set(item)

	got, ok := m.Find(f.done)
	require.True(t, ok)
	assert.Equal(t, item, got)

	_, ok = m.Find(node.New("h1"))
	assert.False(t, ok)

	m.Clear()
	assert.Equal(t, "", f.title.TextContent())
	assert.False(t, f.done.HasAttr("done"))
	_, ok = m.Find(f.title)
	assert.False(t, ok)
}

func TestModelMissing(t *testing.T) {
	f := newForm()
	m, err := bind.NewModel(f.root, bind.Options{
		Missing: func(path string) any { return "?" },
	})
	require.NoError(t, err)

	m.Set(bind.Item{})
	assert.Equal(t, "?", f.title.TextContent())
	hint, _ := f.hint.Attr("title")
	assert.Equal(t, "?!", hint)
}

func TestModelStrip(t *testing.T) {
	f := newForm()
	_, err := bind.NewModel(f.root, bind.Options{Strip: true})
	require.NoError(t, err)
	assert.Empty(t, f.root.QueryAll(binder.BindAttr))
}

func TestModelGetReportsUnwritablePaths(t *testing.T) {
	name := node.New("b").With(binder.BindAttr, "text:info.name")
	done := node.New("input").With(binder.BindAttr, "(empty):done")
	m, err := bind.NewModel(node.New("p", name, done), bind.Options{})
	require.NoError(t, err)

	item := bind.Item{"info": "scalar"}
	m.Set(item)
	name.SetTextContent("edited")
	done.SetAttr("done", "done")

	got, err := m.Get()
	assert.ErrorIs(t, err, jsonpath.ErrPrematureEnd)
	assert.Equal(t, "scalar", got["info"])
	assert.Equal(t, true, got["done"], "writable paths are still pulled")
}

func TestModelUpdateReportsUnwritablePaths(t *testing.T) {
	f := newForm()
	m, err := bind.NewModel(f.root, bind.Options{})
	require.NoError(t, err)
	m.Set(bind.Item{"owner": "ann"})

	err = m.Update(bind.Item{"owner.name": "bob", "title": "kept"})
	assert.ErrorIs(t, err, jsonpath.ErrPrematureEnd)
	assert.Equal(t, "kept", f.title.TextContent())
}
