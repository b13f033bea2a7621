package reactive_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unscriptable/bard/reactive"
)

// source is a minimal backing collection keyed by slot.
type source struct {
	slots map[string]*item
}

func newSource() *source {
	return &source{slots: map[string]*item{}}
}

func (s *source) Lookup(name string) (*item, bool) {
	e, ok := s.slots[name]
	return e, ok
}

func (s *source) put(slot int, e *item) {
	s.slots[strconv.Itoa(slot)] = e
}

func TestChangeKindString(t *testing.T) {
	assert.Equal(t, "new", reactive.ChangeNew.String())
	assert.Equal(t, "deleted", reactive.ChangeDeleted.String())
	assert.Equal(t, "updated", reactive.ChangeUpdated.String())
	assert.Equal(t, "reconfigured", reactive.ChangeReconfigured.String())
	assert.Equal(t, "unknown", reactive.ChangeKind(0).String())
}

func TestApplyChangesDispatches(t *testing.T) {
	f := newFixture(t)
	src := newSource()

	a, b, c := &item{id: 1, key: 10}, &item{id: 2, key: 20}, &item{id: 3, key: 30}
	src.put(0, a)
	src.put(1, b)
	src.put(2, c)
	require.NoError(t, f.r.ApplyChanges(src, []reactive.Change[*item]{
		reactive.Inserted[*item](src, "0"),
		reactive.Inserted[*item](src, "1"),
		reactive.Inserted[*item](src, "2"),
	}))
	assert.Equal(t, []string{"1", "2", "3"}, f.rendered())

	// replace b, mutate a in place, delete c
	b2 := &item{id: 2, key: 5}
	src.put(1, b2)
	a.key = 40
	delete(src.slots, "2")
	require.NoError(t, f.r.ApplyChanges(src, []reactive.Change[*item]{
		reactive.Updated[*item](src, "1", b),
		reactive.Updated[*item](src, "0", a),
		reactive.Deleted[*item](src, "2", c),
	}))

	assert.Equal(t, []int{5, 40}, f.keys())
	assert.Equal(t, []string{"2", "1"}, f.rendered())
}

func TestApplyChangesSkipsIrrelevantRecords(t *testing.T) {
	f := newFixture(t)
	src, other := newSource(), newSource()
	src.put(0, &item{id: 1, key: 1})
	other.put(0, &item{id: 2, key: 2})

	require.NoError(t, f.r.ApplyChanges(src, []reactive.Change[*item]{
		reactive.Inserted[*item](other, "0"),
		{Kind: reactive.ChangeUpdated, Object: src, Name: "length"},
		reactive.Reconfigured[*item](src, "0"),
		reactive.Inserted[*item](src, "-1"),
		reactive.Inserted[*item](src, "1.5"),
		reactive.Inserted[*item](src, ""),
		// slot 0 resolves, but only under its canonical name
		reactive.Inserted[*item](src, "00"),
		reactive.Inserted[*item](src, "+0"),
		reactive.Inserted[*item](src, "-0"),
		// slot 7 does not resolve
		reactive.Inserted[*item](src, "7"),
	}))
	assert.Zero(t, f.r.Len())
	assert.Zero(t, f.r.Stats().Inserts)
}

func TestApplyChangesInOrder(t *testing.T) {
	f := newFixture(t)
	src := newSource()

	// slot 0 was filled and then replaced before the batch was delivered:
	// records resolve against the current contents, and the update finds the
	// binding the insert created
	e := &item{id: 1, key: 1}
	next := &item{id: 1, key: 9}
	src.put(0, next)
	require.NoError(t, f.r.ApplyChanges(src, []reactive.Change[*item]{
		reactive.Inserted[*item](src, "0"),
		reactive.Updated[*item](src, "0", e),
	}))

	assert.Equal(t, []int{9}, f.keys())
	assert.Equal(t, int64(1), f.r.Stats().Updates)
}

func TestApplyChangesStopsAtFirstError(t *testing.T) {
	f := newFixture(t)
	src := newSource()
	src.put(0, &item{id: 1, key: 1})

	err := f.r.ApplyChanges(src, []reactive.Change[*item]{
		reactive.Reconfigured[*item](src, "length"),
		reactive.Deleted[*item](src, "3", &item{id: 3, key: 3}),
		reactive.Inserted[*item](src, "0"),
	})
	require.ErrorIs(t, err, reactive.ErrNotFound)
	assert.Contains(t, err.Error(), "change 1 (deleted 3)")
	assert.Zero(t, f.r.Len(), "records after the failure are not applied")
}
