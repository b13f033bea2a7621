package reactive

import (
	"fmt"
	"strconv"
)

// ChangeKind tags a change record.
type ChangeKind uint8

const (
	ChangeNew ChangeKind = iota + 1
	ChangeDeleted
	ChangeUpdated
	ChangeReconfigured
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeNew:
		return "new"
	case ChangeDeleted:
		return "deleted"
	case ChangeUpdated:
		return "updated"
	case ChangeReconfigured:
		return "reconfigured"
	default:
		return "unknown"
	}
}

// Collection is a backing collection that change records refer to.
// Implementations must be comparable (typically pointers): records are
// matched against the tracked collection with ==.
type Collection[E any] interface {
	Lookup(name string) (E, bool)
}

// Change describes one mutation of a backing collection. Name is the slot
// key that changed; membership changes use decimal slot indexes, anything
// else (such as "length") is a property change.
type Change[E any] struct {
	Kind     ChangeKind
	Object   Collection[E]
	Name     string
	OldValue E
}

// Inserted records a new member at name.
func Inserted[E any](object Collection[E], name string) Change[E] {
	return Change[E]{Kind: ChangeNew, Object: object, Name: name}
}

// Deleted records the removal of old from name.
func Deleted[E any](object Collection[E], name string, old E) Change[E] {
	return Change[E]{Kind: ChangeDeleted, Object: object, Name: name, OldValue: old}
}

// Updated records that the member at name replaced, or was mutated from, old.
func Updated[E any](object Collection[E], name string, old E) Change[E] {
	return Change[E]{Kind: ChangeUpdated, Object: object, Name: name, OldValue: old}
}

// Reconfigured records a property reconfiguration. It never affects membership.
func Reconfigured[E any](object Collection[E], name string) Change[E] {
	return Change[E]{Kind: ChangeReconfigured, Object: object, Name: name}
}

// ApplyChanges replays a batch of change records from source in order.
// Records for other collections, for non-membership keys, or whose current
// value cannot be resolved are skipped. The first reconciler error stops the
// batch; records after it are not applied.
func (r *Reconciler[E, K, R]) ApplyChanges(source Collection[E], changes []Change[E]) error {
	for i, change := range changes {
		if change.Object != source || !isSlotKey(change.Name) {
			continue
		}

		var err error
		switch change.Kind {
		case ChangeNew:
			if current, ok := source.Lookup(change.Name); ok {
				_, err = r.Insert(current)
			}
		case ChangeDeleted:
			_, err = r.Delete(change.OldValue)
		case ChangeUpdated:
			if current, ok := source.Lookup(change.Name); ok {
				_, err = r.Update(current, change.OldValue)
			}
		}
		if err != nil {
			return fmt.Errorf("change %d (%s %s): %w", i, change.Kind, change.Name, err)
		}
	}
	return nil
}

func isSlotKey(name string) bool {
	n, err := strconv.Atoi(name)
	return err == nil && n >= 0 && strconv.Itoa(n) == name
}
