package reactive_test

import (
	"cmp"
	"fmt"

	"github.com/unscriptable/bard/reactive"
	"github.com/unscriptable/bard/reactive/node"
)

type player struct {
	name  string
	score int
}

// ExampleReconciler keeps a leaderboard rendered in score order while
// scores change in place.
func ExampleReconciler() {
	board := node.New("ol")

	r, err := reactive.New(reactive.Config[*player, string, *node.Node]{
		Container: board,
		Root:      board,
		Template:  node.New("li"),
		Clone:     node.DeepClone,
		Compile: func(row *node.Node) (reactive.Accessors, error) {
			return reactive.Accessors{
				Push: func(provide reactive.Provider) {
					row.SetTextContent(fmt.Sprintf("%s:%d", provide("name"), provide("score")))
				},
			}, nil
		},
		Contains: node.Contains,
		Compare:  func(a, b *player) int { return cmp.Compare(b.score, a.score) },
		Identify: func(p *player) string { return p.name },
		Get: func(p *player, key string) any {
			if key == "name" {
				return p.name
			}
			return p.score
		},
	})
	if err != nil {
		panic(err)
	}

	ann := &player{name: "ann", score: 10}
	bob := &player{name: "bob", score: 30}
	cid := &player{name: "cid", score: 20}
	for _, p := range []*player{ann, bob, cid} {
		if _, err := r.Insert(p); err != nil {
			panic(err)
		}
	}
	fmt.Println(board)

	ann.score = 40
	if _, err := r.Update(ann, ann); err != nil {
		panic(err)
	}
	fmt.Println(board)

	if _, err := r.Delete(bob); err != nil {
		panic(err)
	}
	fmt.Println(board)

	// Output:
	// <ol><li>bob:30</li><li>cid:20</li><li>ann:10</li></ol>
	// <ol><li>ann:40</li><li>bob:30</li><li>cid:20</li></ol>
	// <ol><li>ann:40</li><li>cid:20</li></ol>
}

// ExampleReconciler_ApplyChanges replays change records from a backing
// collection.
func ExampleReconciler_ApplyChanges() {
	f, err := buildFixture()
	if err != nil {
		panic(err)
	}
	src := newSource()
	src.put(0, &item{id: 1, key: 3})
	src.put(1, &item{id: 2, key: 1})

	err = f.r.ApplyChanges(src, []reactive.Change[*item]{
		reactive.Inserted[*item](src, "0"),
		reactive.Inserted[*item](src, "1"),
		{Kind: reactive.ChangeUpdated, Object: src, Name: "length"},
	})
	fmt.Println(err, f.list)

	// Output:
	// <nil> <ul><li data-id="2"><span>1</span></li><li data-id="1"><span>3</span></li></ul>
}

func ExampleSortedSlot() {
	values := []int{10, 20, 30, 40}
	slot := reactive.SortedSlot(0, len(values), func(i int) int {
		return cmp.Compare(25, values[i])
	})
	fmt.Println(slot)

	// Output: 2
}
