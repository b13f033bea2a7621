// Package reactive keeps an ordered sequence of render targets in step with a
// sorted collection of model entities, driven by insert, update and delete
// notifications rather than full snapshots.
//
// A Reconciler owns an Index of bindings (entity + render target) kept in
// comparator order. Inserts binary search for their slot. Updates and deletes
// recover the exact slot of an entity whose sort key may already have changed
// by probing outwards from its sorted position, so a localized reorder costs
// time proportional to how far the entity moved.
//
// A Reconciler is not safe for concurrent use. Independent reconcilers over
// disjoint containers may run on separate goroutines.
package reactive

import (
	"errors"
	"fmt"
	"iter"
	"reflect"

	"go.uber.org/zap"
)

// Reconciler binds a sorted collection of entities E, identified by K, to
// render targets R held by a container.
type Reconciler[E any, K comparable, R any] struct {
	cfg   Config[E, K, R]
	index *Index[E, K, R]
	log   *zap.Logger
	stats reconcilerStats
}

// New creates a reconciler from cfg.
func New[E any, K comparable, R any](cfg Config[E, K, R]) (*Reconciler[E, K, R], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler[E, K, R]{
		cfg:   cfg,
		index: NewIndex[E, K, R](cfg.Compare, cfg.Identify),
		log:   log,
	}, nil
}

// Index exposes the ordered bindings. Callers must not mutate it.
func (r *Reconciler[E, K, R]) Index() *Index[E, K, R] {
	return r.index
}

// Len returns the number of bound entities.
func (r *Reconciler[E, K, R]) Len() int {
	return r.index.Len()
}

// All iterates over the bound entities in sort order.
func (r *Reconciler[E, K, R]) All() iter.Seq2[int, E] {
	return func(yield func(int, E) bool) {
		for i, b := range r.index.All() {
			if !yield(i, b.Entity) {
				return
			}
		}
	}
}

// Insert binds a new entity: it clones the template, places the clone in
// sort order and pushes the entity's values into it. The entity must not be
// bound already and its identity must be comparable. Returns e.
func (r *Reconciler[E, K, R]) Insert(e E) (E, error) {
	if err := r.checkIdentity(e); err != nil {
		var zero E
		return zero, fmt.Errorf("insert: %w", err)
	}
	b := &Binding[E, R]{
		Entity: e,
		Target: r.cfg.Clone(r.cfg.Template),
	}

	slot := r.index.SortedSlot(e)
	r.index.Insert(slot, b)
	r.place(b, slot)

	acc, err := r.cfg.Compile(b.Target)
	if err != nil {
		r.index.Remove(slot)
		r.release(b)
		var zero E
		return zero, fmt.Errorf("compile accessors: %w", err)
	}
	b.accessors = &acc

	r.push(b)
	r.stats.inserts++
	return e, nil
}

// Update rebinds the entity identified by old to next, moving its render
// target if the sort order changed. The render target and its accessors are
// reused. old and next may be the same value when the entity was mutated in
// place. Returns next.
func (r *Reconciler[E, K, R]) Update(next, old E) (E, error) {
	if err := r.checkIdentity(next); err != nil {
		var zero E
		return zero, fmt.Errorf("update: %w", err)
	}
	oldSlot := r.index.ExactSlot(old)
	if oldSlot == NotFound {
		r.miss("update", old)
		var zero E
		return zero, fmt.Errorf("update %v: %w", r.cfg.Identify(old), ErrNotFound)
	}

	// Searching with the binding taken out gives the same answer as searching
	// the full index and shifting down one when the new slot lies past the
	// old one, and it cannot land on the stale binding itself.
	b := r.index.Remove(oldSlot)
	b.Entity = next
	newSlot := r.index.SortedSlot(next)
	r.index.Insert(newSlot, b)

	if newSlot != oldSlot {
		r.place(b, newSlot)
		r.stats.moves++
		if ce := r.log.Check(zap.DebugLevel, "binding relocated"); ce != nil {
			ce.Write(
				zap.Any("id", r.cfg.Identify(next)),
				zap.Int("from", oldSlot),
				zap.Int("to", newSlot))
		}
	}

	r.push(b)
	r.stats.updates++
	return next, nil
}

// Delete unbinds the entity identified by e and destroys its render target.
// Returns the entity that was bound.
func (r *Reconciler[E, K, R]) Delete(e E) (E, error) {
	slot := r.index.ExactSlot(e)
	if slot == NotFound {
		r.miss("delete", e)
		var zero E
		return zero, fmt.Errorf("delete %v: %w", r.cfg.Identify(e), ErrNotFound)
	}

	b := r.index.Remove(slot)
	r.release(b)
	r.stats.deletes++
	return b.Entity, nil
}

// Clear unbinds every entity and destroys all render targets.
func (r *Reconciler[E, K, R]) Clear() {
	for _, b := range r.index.Reset() {
		r.release(b)
	}
	r.stats.clears++
}

// ReplaceAll clears the reconciler and inserts every entity of seq in
// iteration order. It does not diff against the previous contents.
func (r *Reconciler[E, K, R]) ReplaceAll(seq iter.Seq[E]) error {
	r.Clear()
	for e := range seq {
		if _, err := r.Insert(e); err != nil {
			return err
		}
	}
	return nil
}

// Locate returns the entity whose render target is, or contains, target.
// The scan is linear in the number of bindings.
func (r *Reconciler[E, K, R]) Locate(target R) (E, bool) {
	var zero E
	if !r.cfg.Contains(r.cfg.Root, target) {
		return zero, false
	}
	for _, b := range r.index.All() {
		if r.cfg.Contains(b.Target, target) {
			return b.Entity, true
		}
	}
	return zero, false
}

// LocateOrigin is Locate for anything that resolves to a render target.
func (r *Reconciler[E, K, R]) LocateOrigin(o Origin[R]) (E, bool) {
	return r.Locate(o.Origin())
}

// TargetOf returns the render target bound to the entity identified by e.
func (r *Reconciler[E, K, R]) TargetOf(e E) (R, bool) {
	slot := r.index.ExactSlot(e)
	if slot == NotFound {
		var zero R
		return zero, false
	}
	return r.index.At(slot).Target, true
}

// Pull reads the current render-target values of the entity identified by e
// back into the bound entity through Config.Set. Every value is offered;
// the values Set rejects are reported together.
func (r *Reconciler[E, K, R]) Pull(e E) error {
	if r.cfg.Set == nil {
		return ErrNoReceiver
	}
	slot := r.index.ExactSlot(e)
	if slot == NotFound {
		r.miss("pull", e)
		return fmt.Errorf("pull %v: %w", r.cfg.Identify(e), ErrNotFound)
	}
	b := r.index.At(slot)
	if b.accessors.Pull == nil {
		return nil
	}
	entity := b.Entity
	var errs []error
	b.accessors.Pull(func(key string, value any) {
		if err := r.cfg.Set(entity, key, value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	})
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("pull %v: %w", r.cfg.Identify(e), err)
	}
	return nil
}

// Stats returns the reconciler's counters.
func (r *Reconciler[E, K, R]) Stats() Stats {
	return Stats{
		Bindings: r.index.Len(),
		Inserts:  r.stats.inserts,
		Updates:  r.stats.updates,
		Moves:    r.stats.moves,
		Deletes:  r.stats.deletes,
		Clears:   r.stats.clears,
		Misses:   r.stats.misses,
		Lookups:  r.index.Lookups(),
		Probes:   r.index.Probes(),
	}
}

// place puts b's render target into the container so that it precedes the
// target of the binding now following it in the index.
func (r *Reconciler[E, K, R]) place(b *Binding[E, R], slot int) {
	if next := r.index.At(slot + 1); next != nil {
		r.cfg.Container.InsertBefore(b.Target, next.Target)
		return
	}
	r.cfg.Container.AppendChild(b.Target)
}

func (r *Reconciler[E, K, R]) release(b *Binding[E, R]) {
	r.cfg.Container.RemoveChild(b.Target)
	if r.cfg.Destroy != nil {
		r.cfg.Destroy(b.Target)
	}
}

func (r *Reconciler[E, K, R]) push(b *Binding[E, R]) {
	if b.accessors.Push == nil {
		return
	}
	entity := b.Entity
	b.accessors.Push(func(key string) any {
		return r.cfg.Get(entity, key)
	})
}

func (r *Reconciler[E, K, R]) miss(op string, e E) {
	r.stats.misses++
	if ce := r.log.Check(zap.DebugLevel, "entity not bound"); ce != nil {
		ce.Write(zap.String("op", op), zap.Any("id", r.cfg.Identify(e)))
	}
}

// checkIdentity rejects entities whose key would panic when compared.
func (r *Reconciler[E, K, R]) checkIdentity(e E) error {
	id := r.cfg.Identify(e)
	if v := reflect.ValueOf(id); v.IsValid() && !v.Comparable() {
		return fmt.Errorf("identity %v (%T): %w", id, id, ErrUncomparableIdentity)
	}
	return nil
}
