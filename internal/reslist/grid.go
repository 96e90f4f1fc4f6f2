package reslist

import (
	"strconv"
	"sync/atomic"

	"github.com/rescale/rescale-browse/internal/constants"
)

// GridStrategy lays out square tiles, TilesPerRow per row.
type GridStrategy struct {
	name  string
	tiles atomic.Int32
}

// NewGridStrategy returns a grid layout. tiles is clamped to the allowed range.
func NewGridStrategy(name string, tiles int) *GridStrategy {
	g := &GridStrategy{name: name}
	g.SetTilesPerRow(tiles)
	return g
}

func (g *GridStrategy) Name() string       { return g.name }
func (g *GridStrategy) Kind() StrategyKind { return KindGrid }

// TilesPerRow returns the current number of tiles in a row.
func (g *GridStrategy) TilesPerRow() int {
	return int(g.tiles.Load())
}

// SetTilesPerRow clamps n to [MinGridColumns, MaxGridColumns] and returns the value used.
func (g *GridStrategy) SetTilesPerRow(n int) int {
	n = min(max(n, constants.MinGridColumns), constants.MaxGridColumns)
	g.tiles.Store(int32(n))
	return n
}

// RowHeight makes tiles square.
func (g *GridStrategy) RowHeight(width, height float32, columns int) float32 {
	return width / float32(max(columns, 1))
}

func (g *GridStrategy) RowCount(total, columns int) int {
	if total <= 0 {
		return 0
	}
	cols := max(columns, 1)
	return (total + cols - 1) / cols
}

func (g *GridStrategy) ItemRange(startRow, rowLimit, columns, total int) (int, int) {
	cols := max(columns, 1)
	start, end := clampRange(startRow*cols, (startRow+rowLimit)*cols, total)
	return start, end - start
}

// RowLoaded is true only when every tile of the row is loaded.
func (g *GridStrategy) RowLoaded(items ItemView, row, columns int) bool {
	start, limit := g.ItemRange(row, 1, columns, items.Len())
	if limit == 0 {
		return false
	}
	for i := start; i < start+limit; i++ {
		if !items.Loaded(i) {
			return false
		}
	}
	return true
}

func (g *GridStrategy) RowKey(items ItemView, row, columns int) string {
	start, limit := g.ItemRange(row, 1, columns, items.Len())
	return strconv.Itoa(max(columns, 1)) + ":" + rowKeyFor(items, row, start, start+limit)
}

// ResolveKey handles all four arrows. Left and Right step one item and wrap at the
// collection bounds. Up and Down step one row and wrap to the opposite end in the
// same column.
func (g *GridStrategy) ResolveKey(ev KeyEvent, nav NavState) (NavigationResult, bool) {
	cols := max(nav.Columns, 1)
	total := nav.Total
	return resolveMove(ev, nav, KindGrid, func(cur int) int {
		switch ev.Key {
		case KeyArrowRight:
			if cur+1 >= total {
				return 0
			}
			return cur + 1
		case KeyArrowLeft:
			if cur-1 < 0 {
				return total - 1
			}
			return cur - 1
		case KeyArrowDown:
			if cur+cols >= total {
				return cur % cols
			}
			return cur + cols
		case KeyArrowUp:
			if cur-cols >= 0 {
				return cur - cols
			}
			lastRow := (total - 1) / cols
			next := lastRow*cols + cur%cols
			if next >= total {
				next -= cols
			}
			return next
		}
		return cur
	})
}
