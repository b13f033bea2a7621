package debugui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/unscriptable/bard/reactive"
)

// Row is the inspector's view of one binding.
type Row struct {
	Slot   int
	ID     string
	Key    string
	Target string
}

// Describe renders a binding as a row. Slot is filled in by the inspector.
type Describe[E any, R any] func(b *reactive.Binding[E, R]) Row

// IndexInspector shows the bindings of a reconciler as a filterable, paged
// table, with a check of the sort invariant.
type IndexInspector[E any, K comparable, R any] struct {
	title    string
	index    *reactive.Index[E, K, R]
	describe Describe[E, R]

	rows          []Row
	filterText    string
	sortColumn    int
	sortAscending bool
	selectedSlot  int
	perPage       int
	currentPage   int
}

func NewIndexInspector[E any, K comparable, R any](title string, index *reactive.Index[E, K, R], describe Describe[E, R], perPage int) *IndexInspector[E, K, R] {
	return &IndexInspector[E, K, R]{
		title:         title,
		index:         index,
		describe:      describe,
		sortAscending: true,
		selectedSlot:  -1,
		perPage:       max(perPage, 1),
	}
}

func (ii *IndexInspector[E, K, R]) Render() {
	if !imgui.BeginV(ii.title, nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ii.rebuild()

	if sorted, bad := ii.index.Sorted(); sorted {
		imgui.Text("Order: ok")
	} else {
		imgui.Text(fmt.Sprintf("Order: broken at slot %d", bad))
	}

	imgui.InputTextWithHint("##filter", "Filter...", &ii.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		ii.filterText = ""
	}

	rows := ii.Filtered()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("BindingTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Slot")
		imgui.TableSetupColumn("ID")
		imgui.TableSetupColumn("Sort Key")
		imgui.TableSetupColumn("Target")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			ii.sortColumn = int(spec.ColumnIndex())
			ii.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortSpecs.SetSpecsDirty(false)
		}
		sortRows(rows, ii.sortColumn, ii.sortAscending)

		start, end := ii.page(len(rows))
		for _, row := range rows[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(fmt.Sprintf("%d", row.Slot), ii.selectedSlot == row.Slot, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				ii.selectedSlot = row.Slot
			}

			imgui.TableNextColumn()
			imgui.Text(row.ID)

			imgui.TableNextColumn()
			imgui.Text(row.Key)

			imgui.TableNextColumn()
			imgui.Text(row.Target)
		}

		imgui.EndTable()
	}

	if len(rows) > ii.perPage {
		totalPages := (len(rows) + ii.perPage - 1) / ii.perPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d bindings)", ii.currentPage+1, totalPages, len(rows)))
		imgui.SameLine()
		if imgui.Button("Prev") && ii.currentPage > 0 {
			ii.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && ii.currentPage < totalPages-1 {
			ii.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d bindings", len(rows)))
	}

	imgui.End()
}

// Selected returns the selected slot, or -1.
func (ii *IndexInspector[E, K, R]) Selected() int {
	return ii.selectedSlot
}

// Filtered returns the rows matching the filter text.
func (ii *IndexInspector[E, K, R]) Filtered() []Row {
	return FilterRows(ii.rows, ii.filterText)
}

// The index changes every frame under a live workload, so rows are rebuilt
// on each render.
func (ii *IndexInspector[E, K, R]) rebuild() {
	ii.rows = ii.rows[:0]
	for slot, b := range ii.index.All() {
		row := ii.describe(b)
		row.Slot = slot
		ii.rows = append(ii.rows, row)
	}
}

func (ii *IndexInspector[E, K, R]) page(n int) (int, int) {
	totalPages := (n + ii.perPage - 1) / ii.perPage
	if ii.currentPage >= totalPages {
		ii.currentPage = max(totalPages-1, 0)
	}
	start := ii.currentPage * ii.perPage
	return start, min(start+ii.perPage, n)
}

// FilterRows keeps the rows whose id, key or target contains text, case
// insensitively. An empty filter keeps every row.
func FilterRows(rows []Row, text string) []Row {
	filtered := make([]Row, 0, len(rows))
	text = strings.ToLower(text)
	for _, row := range rows {
		if text != "" &&
			!strings.Contains(strings.ToLower(row.ID), text) &&
			!strings.Contains(strings.ToLower(row.Key), text) &&
			!strings.Contains(strings.ToLower(row.Target), text) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func sortRows(rows []Row, column int, ascending bool) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		var c int
		switch column {
		case 1:
			c = cmp.Compare(a.ID, b.ID)
		case 2:
			c = cmp.Compare(a.Key, b.Key)
		case 3:
			c = cmp.Compare(a.Target, b.Target)
		default:
			c = cmp.Compare(a.Slot, b.Slot)
		}
		if !ascending {
			return -c
		}
		return c
	})
}
