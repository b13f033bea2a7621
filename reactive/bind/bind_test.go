package bind_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unscriptable/bard/reactive"
	"github.com/unscriptable/bard/reactive/bind"
	"github.com/unscriptable/bard/reactive/binder"
	"github.com/unscriptable/bard/reactive/jsonpath"
	"github.com/unscriptable/bard/reactive/node"
)

// page is <main><h1/><ul data-bard-section="people"><li ..><span/></li></ul></main>.
type page struct {
	root    *node.Node
	section *node.Node
	row     *node.Node
	name    *node.Node
}

func newPage() page {
	var p page
	p.name = node.New("span").With(binder.BindAttr, "text:name")
	p.row = node.New("li", p.name).With(binder.BindAttr, "data-id:id")
	p.section = node.New("ul", p.row).With(binder.SectionAttr, "people")
	p.root = node.New("main", node.New("h1", node.Text("People")), p.section)
	return p
}

func person(id int, name string, rank int) bind.Item {
	return bind.Item{"id": id, "name": name, "rank": rank}
}

func names(a *bind.Array) []string {
	var out []string
	for _, li := range a.Section().Elements() {
		out = append(out, li.TextContent())
	}
	return out
}

func TestNewArrayDetachesTemplate(t *testing.T) {
	p := newPage()

	a, err := bind.NewArray(p.root, bind.Options{SectionName: "people"})
	require.NoError(t, err)

	assert.Same(t, p.root, a.Root())
	assert.Same(t, p.section, a.Section())
	assert.Same(t, p.row, a.Template())
	assert.Nil(t, p.row.Parent())
	assert.Empty(t, p.section.Elements())
	assert.Zero(t, a.Len())
}

func TestNewArrayFallsBackToRoot(t *testing.T) {
	p := newPage()

	a, err := bind.NewArray(p.section, bind.Options{SectionName: "elsewhere"})
	require.NoError(t, err)
	assert.Same(t, p.section, a.Section())
}

func TestNewArrayAmbiguousTemplate(t *testing.T) {
	empty := node.New("ul").With(binder.SectionAttr, "people")
	_, err := bind.NewArray(node.New("div", empty), bind.Options{SectionName: "people"})
	assert.ErrorIs(t, err, reactive.ErrAmbiguousTemplate)

	two := node.New("ul", node.New("li"), node.New("li")).With(binder.SectionAttr, "people")
	_, err = bind.NewArray(node.New("div", two), bind.Options{SectionName: "people"})
	assert.ErrorIs(t, err, reactive.ErrAmbiguousTemplate)
}

func TestArraySortsByField(t *testing.T) {
	p := newPage()
	a, err := bind.NewArray(p.root, bind.Options{SectionName: "people", SortBy: "rank"})
	require.NoError(t, err)

	ann, bob, cid := person(1, "ann", 3), person(2, "bob", 1), person(3, "cid", 2)
	for _, item := range []bind.Item{ann, bob, cid} {
		_, err := a.Insert(item)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"bob", "cid", "ann"}, names(a))
	assert.Equal(t, []bind.Item{bob, cid, ann}, a.Items())

	bob["rank"] = 9
	_, err = a.Update(bob, bob)
	require.NoError(t, err)
	assert.Equal(t, []string{"cid", "ann", "bob"}, names(a))

	_, err = a.Delete(cid)
	require.NoError(t, err)
	assert.Equal(t, []string{"ann", "bob"}, names(a))
	assert.Equal(t, int64(1), a.Stats().Moves)
}

func TestArrayDefaultsToID(t *testing.T) {
	p := newPage()
	a, err := bind.NewArray(p.root, bind.Options{SectionName: "people", Strip: true})
	require.NoError(t, err)

	require.NoError(t, a.ReplaceAll(func(yield func(bind.Item) bool) {
		for _, item := range []bind.Item{person(2, "bob", 0), person(1, "ann", 0)} {
			if !yield(item) {
				return
			}
		}
	}))

	assert.Equal(t,
		`<main><h1>People</h1><ul data-bard-section="people"><li data-id="1"><span>ann</span></li><li data-id="2"><span>bob</span></li></ul></main>`,
		a.Render())
}

func TestArrayLocate(t *testing.T) {
	p := newPage()
	a, err := bind.NewArray(p.root, bind.Options{SectionName: "people"})
	require.NoError(t, err)

	ann, bob := person(1, "ann", 0), person(2, "bob", 0)
	_, err = a.Insert(ann)
	require.NoError(t, err)
	_, err = a.Insert(bob)
	require.NoError(t, err)

	span := a.Section().Elements()[1].Elements()[0]
	got, ok := a.LocateOrigin(node.Event{Type: "click", Target: span})
	require.True(t, ok)
	assert.Equal(t, bob, got)

	_, ok = a.Locate(a.Root().Elements()[0])
	assert.False(t, ok, "heading is outside every row")

	_, ok = a.Locate(node.New("li"))
	assert.False(t, ok, "detached node")
}

func TestArrayMissingAndTransform(t *testing.T) {
	p := newPage()
	a, err := bind.NewArray(p.root, bind.Options{
		SectionName: "people",
		Missing:     func(path string) any { return "no " + path },
		Transform: func(v any, path string) any {
			if s, ok := v.(string); ok && path == "name" {
				return strings.ToUpper(s)
			}
			return v
		},
	})
	require.NoError(t, err)

	_, err = a.Insert(bind.Item{"id": 1})
	require.NoError(t, err)
	_, err = a.Insert(person(2, "bob", 0))
	require.NoError(t, err)

	assert.Equal(t, []string{"NO NAME", "BOB"}, names(a))
}

func TestArrayPull(t *testing.T) {
	p := newPage()
	a, err := bind.NewArray(p.root, bind.Options{SectionName: "people"})
	require.NoError(t, err)

	ann := person(1, "ann", 0)
	_, err = a.Insert(ann)
	require.NoError(t, err)

	target, ok := a.TargetOf(ann)
	require.True(t, ok)
	target.Elements()[0].SetTextContent("anne")

	require.NoError(t, a.Pull(ann))
	assert.Equal(t, "anne", ann["name"])
	assert.Equal(t, "1", ann["id"], "attribute values come back as strings")
}

func TestArrayPullReportsUnwritablePaths(t *testing.T) {
	span := node.New("span").With(binder.BindAttr, "text:info.name")
	a, err := bind.NewArray(node.New("ul", node.New("li", span)), bind.Options{})
	require.NoError(t, err)

	item := bind.Item{"id": 1, "info": "scalar"}
	_, err = a.Insert(item)
	require.NoError(t, err)

	target, ok := a.TargetOf(item)
	require.True(t, ok)
	target.Elements()[0].SetTextContent("edited")

	err = a.Pull(item)
	assert.ErrorIs(t, err, jsonpath.ErrPrematureEnd)
	assert.Equal(t, "scalar", item["info"])
}

func TestArrayNestedPaths(t *testing.T) {
	span := node.New("span").With(binder.BindAttr, "text:profile.nick;title:{{tags[0]}}")
	root := node.New("ul", node.New("li", span))

	a, err := bind.NewArray(root, bind.Options{IDField: "key", SortBy: "profile.nick"})
	require.NoError(t, err)

	_, err = a.Insert(bind.Item{
		"key":     "k1",
		"profile": map[string]any{"nick": "zed"},
		"tags":    []any{"admin"},
	})
	require.NoError(t, err)
	_, err = a.Insert(bind.Item{"key": "k2", "profile": map[string]any{"nick": "amy"}})
	require.NoError(t, err)

	assert.Equal(t,
		`<ul><li><span title="">amy</span></li><li><span title="admin">zed</span></li></ul>`,
		stripBindings(a.Section()).String())
}

func stripBindings(n *node.Node) *node.Node {
	c := n.Clone(true)
	c.Walk(func(x *node.Node) bool {
		if x.IsElement() {
			x.RemoveAttr(binder.BindAttr)
		}
		return true
	})
	return c
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"both nil", nil, nil, 0},
		{"nil first", nil, 1, -1},
		{"nil last", "a", nil, 1},
		{"ints", 1, 2, -1},
		{"mixed numbers", 2, 2.0, 0},
		{"floats", 2.5, 1.5, 1},
		{"strings", "b", "a", 1},
		{"number before string", 10, "9", -1},
		{"string after number", "9", 9, 1},
		{"printed", 1, "a", -1},
		{"bools", false, true, -1},
		{"string before other", "z", false, -1},
		{"nil before other", nil, []any{}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bind.CompareValues(tt.a, tt.b))
		})
	}
}

func TestCompareValuesIsTotal(t *testing.T) {
	values := []any{nil, 9, 10, 9.5, int64(-3), "9", "10", "a", "", true, false, []any{1}}

	for _, a := range values {
		assert.Zero(t, bind.CompareValues(a, a), "%v", a)
		for _, b := range values {
			ab, ba := bind.CompareValues(a, b), bind.CompareValues(b, a)
			assert.Equal(t, -ab, ba, "antisymmetry of %v and %v", a, b)
			for _, c := range values {
				if ab <= 0 && bind.CompareValues(b, c) <= 0 {
					assert.LessOrEqual(t, bind.CompareValues(a, c), 0, "%v <= %v <= %v", a, b, c)
				}
			}
		}
	}
}

func TestArrayRejectsUncomparableIdentity(t *testing.T) {
	a, err := bind.NewArray(newPage().root, bind.Options{SectionName: "people"})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		_, err = a.Insert(bind.Item{"id": []any{1}, "name": "list"})
		assert.ErrorIs(t, err, reactive.ErrUncomparableIdentity)
		_, err = a.Insert(bind.Item{"id": map[string]any{"n": 1}, "name": "object"})
		assert.ErrorIs(t, err, reactive.ErrUncomparableIdentity)
	})
	assert.Zero(t, a.Len())
	assert.Empty(t, a.Section().Elements())

	ann := person(1, "ann", 1)
	_, err = a.Insert(ann)
	require.NoError(t, err)
	_, err = a.Update(bind.Item{"id": []any{1}, "name": "ann", "rank": 1}, ann)
	assert.ErrorIs(t, err, reactive.ErrUncomparableIdentity)
	assert.Equal(t, []string{"ann"}, names(a))
}

func TestCompareByAndIdentifyBy(t *testing.T) {
	byNick := bind.CompareBy("p.nick")
	a := bind.Item{"p": map[string]any{"nick": "a"}}
	b := bind.Item{"p": map[string]any{"nick": "b"}}
	assert.Negative(t, byNick(a, b))
	assert.Positive(t, byNick(b, a))
	assert.Negative(t, byNick(bind.Item{}, a), "missing sorts first")

	id := bind.IdentifyBy("id")
	assert.Equal(t, 7, id(bind.Item{"id": 7}))
	assert.Nil(t, id(bind.Item{}))
}
