package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/kamstrup/intmap"
	"go.uber.org/zap"

	"github.com/unscriptable/bard/reactive/bind"
	"github.com/unscriptable/bard/reactive/binder"
	"github.com/unscriptable/bard/reactive/collection"
	"github.com/unscriptable/bard/reactive/node"
)

var errInvariant = errors.New("invariant violated")

// Counts tallies the operations a workload has issued.
type Counts struct {
	Appends      int64 `yaml:"appends"`
	Replacements int64 `yaml:"replacements"`
	InPlace      int64 `yaml:"in_place"`
	Deletes      int64 `yaml:"deletes"`
	Skipped      int64 `yaml:"skipped"`
	Batches      int64 `yaml:"batches"`
	Records      int64 `yaml:"records"`
	Checks       int64 `yaml:"checks"`
}

// Ops is the number of operations that reached the list.
func (c Counts) Ops() int64 {
	return c.Appends + c.Replacements + c.InPlace + c.Deletes
}

// Workload drives a bound array through a collection with random appends,
// updates and deletes.
type Workload struct {
	cfg StressConfig
	rng *rand.Rand
	log *zap.Logger

	list  *collection.List[bind.Item]
	array *bind.Array

	// id -> list slot, id -> position in live
	slots *intmap.Map[int64, int]
	pos   *intmap.Map[int64, int]
	live  []int64
	// slots with an undelivered record
	dirty  *intmap.Map[int, bool]
	queued int
	nextID int64

	Counts  Counts
	Deliver Durations
}

// NewTree returns the render tree the workload binds: a list section whose
// single template row shows an item's name and rank.
func NewTree() *node.Node {
	row := node.New("li",
		node.New("span").With(binder.BindAttr, "text:name"),
		node.New("b").With(binder.BindAttr, "text:rank"),
	).With(binder.BindAttr, "data-id:id;title:{{name}} ({{rank}})")

	return node.New("main",
		node.New("h1", node.Text("items")),
		node.New("ul", row).With(binder.SectionAttr, "items"),
	)
}

func NewWorkload(cfg StressConfig, log *zap.Logger) (*Workload, error) {
	array, err := bind.NewArray(NewTree(), bind.Options{
		SectionName: "items",
		SortBy:      "rank",
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	list := collection.NewList[bind.Item]()
	collection.Track(list, array)

	capacity := max(cfg.Items, 16)
	return &Workload{
		cfg:   cfg,
		rng:   rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)^0x9e3779b97f4a7c15)),
		log:   log,
		list:  list,
		array: array,
		slots: intmap.New[int64, int](capacity),
		pos:   intmap.New[int64, int](capacity),
		live:  make([]int64, 0, capacity),
		dirty: intmap.New[int, bool](max(cfg.Batch, 1)),
	}, nil
}

// Array returns the bound array under test.
func (w *Workload) Array() *bind.Array {
	return w.array
}

// Live returns the number of items in the list.
func (w *Workload) Live() int {
	return len(w.live)
}

// Seed appends the initial population and delivers it.
func (w *Workload) Seed() error {
	for range w.cfg.Items {
		w.append()
		if err := w.maybeFlush(); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Step issues one random operation, delivering when a batch fills up.
func (w *Workload) Step() error {
	n := len(w.live)
	roll := w.rng.Float64()
	switch {
	case n == 0:
		w.append()
	case roll < 0.25:
		if n > w.cfg.Items+w.cfg.Items/10 {
			w.delete()
		} else {
			w.append()
		}
	case roll < 0.5:
		if n < w.cfg.Items-w.cfg.Items/10 {
			w.append()
		} else {
			w.delete()
		}
	case w.rng.Float64() < w.cfg.InPlace:
		return w.mutate()
	default:
		w.replace()
	}
	return w.maybeFlush()
}

// Run seeds the list and steps until ctx is done, checking the invariants
// every CheckEvery operations and once at the end.
func (w *Workload) Run(ctx context.Context) error {
	if err := w.Seed(); err != nil {
		return err
	}
	if err := w.Check(); err != nil {
		return err
	}

	var ops int
	for {
		select {
		case <-ctx.Done():
			if err := w.Flush(); err != nil {
				return err
			}
			return w.Check()
		default:
		}

		if err := w.Step(); err != nil {
			return err
		}
		ops++
		if w.cfg.CheckEvery > 0 && ops%w.cfg.CheckEvery == 0 {
			if err := w.Flush(); err != nil {
				return err
			}
			if err := w.Check(); err != nil {
				return err
			}
		}
	}
}

// Flush delivers the pending records.
func (w *Workload) Flush() error {
	start := time.Now()
	n, err := w.list.Deliver()
	if n > 0 {
		w.Deliver.Samples = append(w.Deliver.Samples, time.Since(start))
		w.Counts.Batches++
		w.Counts.Records += int64(n)
	}
	w.dirty.Clear()
	w.queued = 0
	return err
}

// Check verifies that the index is sorted, that the rendered rows follow
// the index and that every listed item is bound.
func (w *Workload) Check() error {
	w.Counts.Checks++
	index := w.array.Index()

	if sorted, slot := index.Sorted(); !sorted {
		return fmt.Errorf("%w: slots %d and %d out of order", errInvariant, slot, slot+1)
	}
	if index.Len() != w.list.Len() {
		return fmt.Errorf("%w: %d bindings for %d items", errInvariant, index.Len(), w.list.Len())
	}

	rows := w.array.Section().Elements()
	if len(rows) != index.Len() {
		return fmt.Errorf("%w: %d rows for %d bindings", errInvariant, len(rows), index.Len())
	}
	for slot, b := range index.All() {
		if rows[slot] != b.Target {
			return fmt.Errorf("%w: row %d is not bound to slot %d", errInvariant, slot, slot)
		}
		want := fmt.Sprint(b.Entity["rank"])
		if got := rows[slot].Elements()[1].TextContent(); got != want {
			return fmt.Errorf("%w: row %d shows rank %q, want %q", errInvariant, slot, got, want)
		}
	}

	for _, item := range w.list.All() {
		if _, ok := w.array.TargetOf(item); !ok {
			return fmt.Errorf("%w: item %v is not bound", errInvariant, item["id"])
		}
	}

	w.log.Debug("invariants hold", zap.Int("bindings", index.Len()))
	return nil
}

func (w *Workload) append() {
	w.nextID++
	id := w.nextID
	item := bind.Item{
		"id":   id,
		"name": fmt.Sprintf("item-%d", id),
		"rank": w.rng.IntN(max(w.cfg.Items, 1) * 4),
	}
	slot := w.list.Append(item)
	w.slots.Put(id, slot)
	w.pos.Put(id, len(w.live))
	w.live = append(w.live, id)
	w.touch(slot)
	w.Counts.Appends++
}

func (w *Workload) delete() {
	id, slot, ok := w.pick()
	if !ok {
		return
	}
	w.list.Delete(slot)
	w.slots.Del(id)

	i, _ := w.pos.Get(id)
	last := w.live[len(w.live)-1]
	w.live[i] = last
	w.pos.Put(last, i)
	w.live = w.live[:len(w.live)-1]
	w.pos.Del(id)

	w.touch(slot)
	w.Counts.Deletes++
}

func (w *Workload) replace() {
	_, slot, ok := w.pick()
	if !ok {
		return
	}
	old, _ := w.list.Get(slot)
	next := bind.Item{
		"id":   old["id"],
		"name": old["name"],
		"rank": w.drift(old["rank"].(int)),
	}
	w.list.Set(slot, next)
	w.touch(slot)
	w.Counts.Replacements++
}

// An in-place mutation is visible to the reconciler before its record is
// delivered, so it travels in a batch of its own.
func (w *Workload) mutate() error {
	if err := w.Flush(); err != nil {
		return err
	}
	_, slot, ok := w.pick()
	if !ok {
		return nil
	}
	item, _ := w.list.Get(slot)
	item["rank"] = w.drift(item["rank"].(int))
	w.list.Touch(slot)
	w.Counts.InPlace++
	return w.Flush()
}

// pick chooses a live item whose slot has no pending record.
func (w *Workload) pick() (int64, int, bool) {
	id := w.live[w.rng.IntN(len(w.live))]
	slot, _ := w.slots.Get(id)
	if _, busy := w.dirty.Get(slot); busy {
		w.Counts.Skipped++
		return 0, 0, false
	}
	return id, slot, true
}

func (w *Workload) drift(rank int) int {
	d := max(w.cfg.Drift, 1)
	return rank + w.rng.IntN(2*d+1) - d
}

func (w *Workload) touch(slot int) {
	w.dirty.Put(slot, true)
	w.queued++
}

func (w *Workload) maybeFlush() error {
	if w.queued >= max(w.cfg.Batch, 1) {
		return w.Flush()
	}
	return nil
}
