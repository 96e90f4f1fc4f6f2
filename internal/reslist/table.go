package reslist

import (
	"fmt"
	"sync"

	"github.com/rescale/rescale-browse/internal/constants"
)

// Column describes one table column.
type Column struct {
	Field     string
	Title     string
	Width     float32
	MinWidth  float32
	Enabled   bool
	Sortable  bool
	Direction SortDirection
}

// TableStrategy lays out one item per fixed-height row with resizable, toggleable,
// sortable columns. Exactly one column carries a non-neutral sort direction.
type TableStrategy struct {
	name      string
	rowHeight float32

	mu      sync.RWMutex
	columns []Column
}

// NewTableStrategy returns a table layout with the given columns. A rowHeight of zero
// uses constants.TableRowHeight.
func NewTableStrategy(name string, rowHeight float32, columns ...Column) *TableStrategy {
	if rowHeight <= 0 {
		rowHeight = constants.TableRowHeight
	}
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &TableStrategy{name: name, rowHeight: rowHeight, columns: cols}
}

func (t *TableStrategy) Name() string       { return t.name }
func (t *TableStrategy) Kind() StrategyKind { return KindTable }

func (t *TableStrategy) RowHeight(width, height float32, columns int) float32 {
	return t.rowHeight
}

func (t *TableStrategy) RowCount(total, columns int) int {
	return max(total, 0)
}

func (t *TableStrategy) ItemRange(startRow, rowLimit, columns, total int) (int, int) {
	start, end := clampRange(startRow, startRow+rowLimit, total)
	return start, end - start
}

func (t *TableStrategy) RowLoaded(items ItemView, row, columns int) bool {
	return items.Loaded(row)
}

func (t *TableStrategy) RowKey(items ItemView, row, columns int) string {
	return rowKeyFor(items, row, row, row+1)
}

// ResolveKey handles ArrowUp and ArrowDown, wrapping at both ends.
func (t *TableStrategy) ResolveKey(ev KeyEvent, nav NavState) (NavigationResult, bool) {
	return resolveMove(ev, nav, KindTable, func(cur int) int {
		switch ev.Key {
		case KeyArrowDown:
			if cur+1 >= nav.Total {
				return 0
			}
			return cur + 1
		case KeyArrowUp:
			if cur-1 < 0 {
				return nav.Total - 1
			}
			return cur - 1
		}
		return cur
	})
}

// Columns returns a copy of every column.
func (t *TableStrategy) Columns() []Column {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// EnabledColumns returns the columns currently shown.
func (t *TableStrategy) EnabledColumns() []Column {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Column
	for _, c := range t.columns {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out
}

func (t *TableStrategy) column(field string) (int, error) {
	for i, c := range t.columns {
		if c.Field == field {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown column %q", field)
}

// ResizeColumn sets a column's width, not going below its minimum.
func (t *TableStrategy) ResizeColumn(field string, width float32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, err := t.column(field)
	if err != nil {
		return err
	}
	t.columns[i].Width = max(width, t.columns[i].MinWidth)
	return nil
}

// SetColumnEnabled shows or hides a column.
func (t *TableStrategy) SetColumnEnabled(field string, enabled bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, err := t.column(field)
	if err != nil {
		return err
	}
	t.columns[i].Enabled = enabled
	return nil
}

// CycleSort advances a column header click: Ascending -> Descending -> Neutral -> Ascending.
// The returned state is what should be sent to the data source; it is not applied here.
func (t *TableStrategy) CycleSort(field string) (SortState, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, err := t.column(field)
	if err != nil {
		return SortState{}, err
	}
	if !t.columns[i].Sortable {
		return SortState{}, fmt.Errorf("column %q is not sortable", field)
	}
	return SortState{Field: field, Direction: t.columns[i].Direction.Next()}, nil
}

// ApplySort sets the direction of state.Field and resets every other column to Neutral.
func (t *TableStrategy) ApplySort(state SortState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.columns {
		if t.columns[i].Field == state.Field {
			t.columns[i].Direction = state.Direction
		} else {
			t.columns[i].Direction = Neutral
		}
	}
}

// SortState returns the column currently driving the sort, or a neutral state.
func (t *TableStrategy) SortState() SortState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, c := range t.columns {
		if c.Direction != Neutral {
			return SortState{Field: c.Field, Direction: c.Direction}
		}
	}
	return SortState{}
}
