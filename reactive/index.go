package reactive

import (
	"iter"
	"slices"
)

// Binding associates one model entity with the render target it owns.
type Binding[E any, R any] struct {
	Entity E
	Target R

	accessors *Accessors
}

// Index is an ordered sequence of bindings kept sorted by a comparator.
// Order is maintained only through sorted insertion; the sequence is never
// re-sorted as a whole.
type Index[E any, K comparable, R any] struct {
	bindings []*Binding[E, R]
	compare  func(a, b E) int
	identify func(E) K

	// lookups counts ExactSlot calls, probes the match calls they made
	lookups int64
	probes  int64
}

// NewIndex creates an empty index ordered by compare. identify is used only
// to recover exact slots.
func NewIndex[E any, K comparable, R any](compare func(a, b E) int, identify func(E) K) *Index[E, K, R] {
	return &Index[E, K, R]{
		bindings: make([]*Binding[E, R], 0),
		compare:  compare,
		identify: identify,
	}
}

// Len returns the number of bindings.
func (x *Index[E, K, R]) Len() int {
	return len(x.bindings)
}

// At returns the binding at slot, or nil if slot is out of range.
func (x *Index[E, K, R]) At(slot int) *Binding[E, R] {
	if slot < 0 || slot >= len(x.bindings) {
		return nil
	}
	return x.bindings[slot]
}

// Insert splices b into the index at slot.
func (x *Index[E, K, R]) Insert(slot int, b *Binding[E, R]) {
	x.bindings = slices.Insert(x.bindings, slot, b)
}

// Remove takes the binding at slot out of the index and returns it.
func (x *Index[E, K, R]) Remove(slot int) *Binding[E, R] {
	b := x.bindings[slot]
	x.bindings = slices.Delete(x.bindings, slot, slot+1)
	return b
}

// Reset empties the index and returns the bindings it held, in order.
func (x *Index[E, K, R]) Reset() []*Binding[E, R] {
	old := x.bindings
	x.bindings = make([]*Binding[E, R], 0)
	return old
}

// All iterates over slots and their bindings in order.
func (x *Index[E, K, R]) All() iter.Seq2[int, *Binding[E, R]] {
	return func(yield func(int, *Binding[E, R]) bool) {
		for i, b := range x.bindings {
			if !yield(i, b) {
				return
			}
		}
	}
}

// SortedSlot returns the slot at which e should be inserted to keep the index
// ordered. O(log n) comparator calls.
func (x *Index[E, K, R]) SortedSlot(e E) int {
	return SortedSlot(0, len(x.bindings), func(slot int) int {
		return x.compare(e, x.bindings[slot].Entity)
	})
}

// ExactSlot returns the slot of the binding whose entity has the same
// identity as e, or NotFound. The sort key of e, or of the bound entity if it
// was mutated in place, may have changed since the binding was placed: the
// search starts at the sorted slot for e and probes outwards, costing
// O(log n) when the key is unchanged and O(d) more when the binding sits d
// slots away.
func (x *Index[E, K, R]) ExactSlot(e E) int {
	x.lookups++
	approx := x.SortedSlot(e)
	id := x.identify(e)
	return ExactSlot(
		approx,
		0,
		len(x.bindings),
		func(slot int) bool {
			x.probes++
			return x.identify(x.bindings[slot].Entity) == id
		},
		func(slot int) int {
			return x.compare(e, x.bindings[slot].Entity)
		},
	)
}

// Sorted reports whether every adjacent pair of bindings is in order. It
// returns the first slot that breaks the order, or -1.
func (x *Index[E, K, R]) Sorted() (bool, int) {
	for i := 0; i+1 < len(x.bindings); i++ {
		if x.compare(x.bindings[i].Entity, x.bindings[i+1].Entity) > 0 {
			return false, i
		}
	}
	return true, -1
}

// Probes returns the number of identity matches ExactSlot has tried.
func (x *Index[E, K, R]) Probes() int64 {
	return x.probes
}

// Lookups returns the number of ExactSlot calls.
func (x *Index[E, K, R]) Lookups() int64 {
	return x.lookups
}
