// Package collection provides an observable backing collection for the
// reactive reconciler. Mutations are recorded as change records and handed
// to observers in batches when Deliver is called.
package collection

import (
	"errors"
	"iter"
	"strconv"

	"github.com/unscriptable/bard/reactive"
)

const (
	blockSize = 64

	// LengthKey names the record emitted when the number of members changes.
	LengthKey = "length"
)

// Observer receives a delivered batch of change records.
type Observer[E any] func(source reactive.Collection[E], changes []reactive.Change[E]) error

// List is a slot-stable collection: a member keeps its slot until deleted,
// and freed slots are reused by later appends. Slot keys are the decimal
// slot indexes.
type List[E any] struct {
	blocks    [][blockSize]E
	filled    [][blockSize]bool
	freeSlots []int
	nextIndex int
	count     int

	pending   []reactive.Change[E]
	observers []Observer[E]
}

func NewList[E any]() *List[E] {
	return &List[E]{}
}

// Key returns the slot key of slot.
func Key(slot int) string {
	return strconv.Itoa(slot)
}

// Append stores item in a free slot and returns the slot.
func (l *List[E]) Append(item E) int {
	var index int
	if len(l.freeSlots) > 0 {
		index = l.freeSlots[len(l.freeSlots)-1]
		l.freeSlots = l.freeSlots[:len(l.freeSlots)-1]
	} else {
		index = l.nextIndex
		l.nextIndex++
		if index/blockSize >= len(l.blocks) {
			l.blocks = append(l.blocks, [blockSize]E{})
			l.filled = append(l.filled, [blockSize]bool{})
		}
	}

	block, slot := index/blockSize, index%blockSize
	l.blocks[block][slot] = item
	l.filled[block][slot] = true
	l.count++

	l.record(reactive.Inserted[E](l, Key(index)))
	l.recordLength()
	return index
}

// Set replaces the member at slot with item. It reports false if the slot
// is empty.
func (l *List[E]) Set(slot int, item E) bool {
	if !l.Has(slot) {
		return false
	}
	block, i := slot/blockSize, slot%blockSize
	old := l.blocks[block][i]
	l.blocks[block][i] = item
	l.record(reactive.Updated(reactive.Collection[E](l), Key(slot), old))
	return true
}

// Touch records that the member at slot was mutated in place.
func (l *List[E]) Touch(slot int) bool {
	item, ok := l.Get(slot)
	if !ok {
		return false
	}
	l.record(reactive.Updated(reactive.Collection[E](l), Key(slot), item))
	return true
}

// Delete empties slot and returns the member it held.
func (l *List[E]) Delete(slot int) (E, bool) {
	var zero E
	if !l.Has(slot) {
		return zero, false
	}
	block, i := slot/blockSize, slot%blockSize
	old := l.blocks[block][i]
	l.blocks[block][i] = zero
	l.filled[block][i] = false
	l.freeSlots = append(l.freeSlots, slot)
	l.count--

	l.record(reactive.Deleted(reactive.Collection[E](l), Key(slot), old))
	l.recordLength()
	return old, true
}

// Has reports whether slot holds a member.
func (l *List[E]) Has(slot int) bool {
	if slot < 0 || slot >= l.nextIndex {
		return false
	}
	return l.filled[slot/blockSize][slot%blockSize]
}

// Get returns the member at slot.
func (l *List[E]) Get(slot int) (E, bool) {
	if !l.Has(slot) {
		var zero E
		return zero, false
	}
	return l.blocks[slot/blockSize][slot%blockSize], true
}

// Lookup resolves a slot key.
func (l *List[E]) Lookup(name string) (E, bool) {
	slot, err := strconv.Atoi(name)
	if err != nil {
		var zero E
		return zero, false
	}
	return l.Get(slot)
}

// Len returns the number of members.
func (l *List[E]) Len() int {
	return l.count
}

// All iterates over the occupied slots in slot order.
func (l *List[E]) All() iter.Seq2[int, E] {
	return func(yield func(int, E) bool) {
		for i := 0; i < l.nextIndex; i++ {
			block, slot := i/blockSize, i%blockSize
			if !l.filled[block][slot] {
				continue
			}
			if !yield(i, l.blocks[block][slot]) {
				return
			}
		}
	}
}

// Values iterates over the members in slot order.
func (l *List[E]) Values() iter.Seq[E] {
	return func(yield func(E) bool) {
		for _, item := range l.All() {
			if !yield(item) {
				return
			}
		}
	}
}

// Observe registers fn for every later delivery.
func (l *List[E]) Observe(fn Observer[E]) {
	l.observers = append(l.observers, fn)
}

// Pending returns the number of undelivered records.
func (l *List[E]) Pending() int {
	return len(l.pending)
}

// Deliver hands the pending records to every observer in registration order
// and resets the buffer. Every observer sees the batch even if an earlier one
// fails. It returns the number of records delivered and the joined observer
// errors.
func (l *List[E]) Deliver() (int, error) {
	if len(l.pending) == 0 {
		return 0, nil
	}
	batch := l.pending
	l.pending = nil
	var errs []error
	for _, fn := range l.observers {
		if err := fn(l, batch); err != nil {
			errs = append(errs, err)
		}
	}
	return len(batch), errors.Join(errs...)
}

// Discard drops the pending records without delivering them.
func (l *List[E]) Discard() {
	l.pending = l.pending[:0]
}

func (l *List[E]) record(change reactive.Change[E]) {
	l.pending = append(l.pending, change)
}

func (l *List[E]) recordLength() {
	l.record(reactive.Change[E]{Kind: reactive.ChangeUpdated, Object: l, Name: LengthKey})
}

// Applier is the part of a reconciler that consumes change records.
type Applier[E any] interface {
	ApplyChanges(source reactive.Collection[E], changes []reactive.Change[E]) error
}

// Track feeds every batch delivered by l to r.
func Track[E any](l *List[E], r Applier[E]) {
	l.Observe(func(source reactive.Collection[E], changes []reactive.Change[E]) error {
		return r.ApplyChanges(source, changes)
	})
}
