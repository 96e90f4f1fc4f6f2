package reslist

import (
	"fmt"
	"strconv"
)

// StrategyKind enumerates the row layouts the engine knows about.
type StrategyKind int

const (
	KindTable StrategyKind = iota
	KindGrid
)

func (k StrategyKind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindGrid:
		return "grid"
	}
	return "unknown"
}

// NavState is what a strategy sees when resolving a key press.
type NavState struct {
	Total        int
	Columns      int
	Selection    Selection
	LastSelected int
	ShiftAnchor  int
}

// NavigationResult is the outcome of a handled key: the closed range [Start, End]
// becomes the selection, Focus becomes the last selected index.
type NavigationResult struct {
	Start       int
	End         int
	Focus       int
	ShiftAnchor int
	ScrollToRow int
}

// RowStrategy maps items to rendered rows and resolves keyboard navigation.
// Implementations may keep presentation state (column widths, tiles per row) but
// treat the item data they are handed as read-only.
type RowStrategy interface {
	Name() string
	Kind() StrategyKind

	RowHeight(width, height float32, columns int) float32
	RowCount(total, columns int) int
	// ItemRange maps rows [startRow, startRow+rowLimit) to the item range
	// [start, start+limit), never reaching past total.
	ItemRange(startRow, rowLimit, columns, total int) (start, limit int)
	RowLoaded(items ItemView, row, columns int) bool
	RowKey(items ItemView, row, columns int) string
	ResolveKey(ev KeyEvent, nav NavState) (NavigationResult, bool)
}

// Sorter is implemented by strategies that render sort affordances.
type Sorter interface {
	ApplySort(state SortState)
	SortState() SortState
}

// ColumnCounter is implemented by strategies with an adjustable number of items per row.
type ColumnCounter interface {
	TilesPerRow() int
	SetTilesPerRow(n int) int
}

// Registry is the closed set of strategies for one resource kind, fixed at construction.
type Registry struct {
	byName map[string]RowStrategy
	order  []string
}

// NewRegistry indexes strategies by name. Duplicate names and nil strategies are
// configuration errors.
func NewRegistry(strategies ...RowStrategy) (*Registry, error) {
	r := &Registry{byName: make(map[string]RowStrategy, len(strategies))}
	for i, s := range strategies {
		if s == nil {
			return nil, fmt.Errorf("row strategy %d is nil", i)
		}
		if _, dup := r.byName[s.Name()]; dup {
			return nil, fmt.Errorf("duplicate row strategy name %q", s.Name())
		}
		r.byName[s.Name()] = s
		r.order = append(r.order, s.Name())
	}
	return r, nil
}

// Lookup returns the strategy registered under name.
func (r *Registry) Lookup(name string) (RowStrategy, error) {
	s, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Each calls fn for every registered strategy.
func (r *Registry) Each(fn func(RowStrategy)) {
	for _, name := range r.order {
		fn(r.byName[name])
	}
}

// isNavKey reports whether k moves focus for the given strategy kind.
func isNavKey(k Key, kind StrategyKind) bool {
	switch k {
	case KeyArrowUp, KeyArrowDown:
		return true
	case KeyArrowLeft, KeyArrowRight:
		return kind == KindGrid
	}
	return false
}

// currentFocus is the index navigation starts from.
func (nav NavState) currentFocus() int {
	if nav.LastSelected >= 0 && nav.LastSelected < nav.Total {
		return nav.LastSelected
	}
	if lo, ok := nav.Selection.Min(); ok && lo < nav.Total {
		return lo
	}
	return 0
}

// resolveMove applies the navigation policy shared by every strategy: empty collections
// ignore keys, an empty selection jumps to index 0, otherwise target(cur) gives the new
// focus and Shift extends from the shift anchor.
func resolveMove(ev KeyEvent, nav NavState, kind StrategyKind, target func(cur int) int) (NavigationResult, bool) {
	if nav.Total <= 0 || !isNavKey(ev.Key, kind) {
		return NavigationResult{}, false
	}
	cols := max(nav.Columns, 1)
	if nav.Selection.Empty() {
		return NavigationResult{Start: 0, End: 0, Focus: 0, ShiftAnchor: noIndex, ScrollToRow: 0}, true
	}

	cur := nav.currentFocus()
	next := target(cur)
	if next < 0 || next >= nav.Total {
		next = cur
	}

	res := NavigationResult{Start: next, End: next, Focus: next, ShiftAnchor: noIndex, ScrollToRow: next / cols}
	if ev.Shift {
		anchor := nav.ShiftAnchor
		if anchor < 0 || anchor >= nav.Total {
			anchor = cur
		}
		res.ShiftAnchor = anchor
		res.Start, res.End = min(anchor, next), max(anchor, next)
	}
	return res, true
}

// rowKeyFor builds a row key from the first loaded item ID in [start, end), falling
// back to the row position.
func rowKeyFor(items ItemView, row, start, end int) string {
	for i := start; i < end; i++ {
		if it, ok := items.At(i); ok {
			return it.ID()
		}
	}
	return "row-" + strconv.Itoa(row)
}
