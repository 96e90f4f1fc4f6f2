package reslist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rescale/rescale-browse/internal/logging"
)

// Config configures a Controller.
type Config struct {
	// ResourceKind labels the collection ("files", "jobs") in logs and events.
	ResourceKind string

	Strategies      []RowStrategy
	InitialStrategy string

	// DefaultSort is used for the first load and whenever the active sort is neutral.
	DefaultSort SortState

	FetchPage FetchPageFunc
	Host      Host
	Logger    *logging.Logger

	// OnScrollToRow asks the host to bring a row into view after keyboard navigation
	// or a reload that resets the scroll position.
	OnScrollToRow func(row int)

	// OnChange is called after any state change that affects rendering.
	OnChange func()

	// OnPage observes every completed fetch, successful or not.
	OnPage func(req PageRequest, res *PageResult, err error)

	// LoadConcurrency bounds parallel fetches during full materialization.
	LoadConcurrency int
}

// Cell is one rendered slot of a row.
type Cell struct {
	Index    int
	Item     Item
	Loaded   bool
	Selected bool
}

// Controller is the list engine. It owns the viewport, the sort, the item store and
// the selection, and drives the active row strategy and the loader.
//
// All methods are safe for concurrent use. The internal lock is never held while the
// data source is called or while host callbacks run.
type Controller struct {
	kind     string
	registry *Registry
	loader   *Loader
	host     Host
	logger   *logging.Logger

	defaultSort SortState
	onScroll    func(row int)
	onChange    func()
	onPage      func(PageRequest, *PageResult, error)

	mu       sync.Mutex
	active   RowStrategy
	store    *Store
	sel      SelectionState
	sort     SortState
	viewport Viewport
	gen      uint64
	sized    bool
}

// New validates cfg and returns a controller with nothing loaded. It fails when
// InitialStrategy is not one of Strategies or FetchPage is missing.
func New(cfg Config) (*Controller, error) {
	if cfg.FetchPage == nil {
		return nil, ErrNoFetcher
	}
	registry, err := NewRegistry(cfg.Strategies...)
	if err != nil {
		return nil, err
	}
	active, err := registry.Lookup(cfg.InitialStrategy)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	host := cfg.Host
	if host == nil {
		host = nopHost{}
	}

	c := &Controller{
		kind:        cfg.ResourceKind,
		registry:    registry,
		loader:      NewLoader(cfg.FetchPage, cfg.LoadConcurrency),
		host:        host,
		logger:      logger.Component("reslist"),
		defaultSort: cfg.DefaultSort,
		onScroll:    cfg.OnScrollToRow,
		onChange:    cfg.OnChange,
		onPage:      cfg.OnPage,
		active:      active,
		store:       NewStore(),
		sel:         EmptySelection(),
		sort:        cfg.DefaultSort,
	}
	c.applySortToStrategies(c.sort)
	return c, nil
}

// SetViewport records the visible area and loads what it shows.
func (c *Controller) SetViewport(ctx context.Context, width, height float32) error {
	c.mu.Lock()
	c.viewport.Width, c.viewport.Height = width, height
	c.mu.Unlock()
	return c.LoadVisible(ctx)
}

// SetScrollOffset records the scroll position and loads what it shows.
func (c *Controller) SetScrollOffset(ctx context.Context, offset float32) error {
	c.mu.Lock()
	c.viewport.ScrollOffset = max(offset, 0)
	c.mu.Unlock()
	return c.LoadVisible(ctx)
}

// LoadVisible fetches whatever the loader plans for the visible rows. Unloaded rows
// that failed earlier are requested again here.
func (c *Controller) LoadVisible(ctx context.Context) error {
	c.mu.Lock()
	gen := c.gen
	base := c.pageRequestLocked()
	var w Window
	if !c.sized {
		w = Window{Start: 0, Limit: MinimumBatchSize(0)}
	} else {
		total := c.store.Len()
		first, last := c.visibleRowsLocked()
		if last < first {
			c.mu.Unlock()
			return nil
		}
		start, limit := c.active.ItemRange(first, last-first+1, c.columnsLocked(), total)
		var ok bool
		if w, ok = Plan(start, start+limit, total, c.store); !ok {
			c.mu.Unlock()
			return nil
		}
	}
	c.mu.Unlock()

	base.FromIndex, base.Limit = w.Start, w.Limit
	return c.fetch(ctx, gen, base)
}

// SetSort makes field the only sorted column, clears items and selection, and
// reloads from index 0 with a single fetch.
func (c *Controller) SetSort(ctx context.Context, field string, direction SortDirection) error {
	c.mu.Lock()
	c.sort = SortState{Field: field, Direction: direction}
	c.applySortToStrategies(c.sort)
	c.gen++
	gen := c.gen
	note := c.resetLocked(false)
	c.viewport.ScrollOffset = 0
	req := c.pageRequestLocked()
	req.FromIndex, req.Limit = 0, MinimumBatchSize(c.store.Len())
	c.mu.Unlock()

	c.logger.Debug().Str("kind", c.kind).Str("field", field).Stringer("direction", direction).Msg("sort changed")
	note.send(c)
	c.scrollTo(0)
	c.changed()
	return c.fetch(ctx, gen, req)
}

// Reload discards state according to mode and loads again.
func (c *Controller) Reload(ctx context.Context, mode ReloadMode) error {
	c.logger.Debug().Str("kind", c.kind).Stringer("mode", mode).Msg("reload")
	switch mode {
	case ReloadClear:
		c.mu.Lock()
		c.gen++
		note := c.resetLocked(false)
		c.mu.Unlock()
		note.send(c)
		c.changed()
		return c.LoadVisible(ctx)

	case ReloadNewID:
		c.mu.Lock()
		c.gen++
		note := c.resetLocked(true)
		c.viewport.ScrollOffset = 0
		c.mu.Unlock()
		note.send(c)
		c.scrollTo(0)
		c.changed()
		return c.LoadVisible(ctx)

	case ReloadAll:
		sizedNow, err := c.ensureSized(ctx)
		if err != nil {
			return err
		}
		return c.loadAll(ctx, sizedNow)
	}
	return fmt.Errorf("unknown reload mode %d", mode)
}

// RequestRange loads the unloaded part of [start, end), widened to whole rows of the
// active strategy. It is safe to call repeatedly; results merge by absolute index.
func (c *Controller) RequestRange(ctx context.Context, start, end int) error {
	if end <= start {
		return nil
	}
	c.mu.Lock()
	gen := c.gen
	base := c.pageRequestLocked()
	if !c.sized {
		c.mu.Unlock()
		base.FromIndex, base.Limit = start, end-start
		return c.fetch(ctx, gen, base)
	}
	cols := c.columnsLocked()
	firstRow, lastRow := start/cols, (end-1)/cols
	s, limit := c.active.ItemRange(firstRow, lastRow-firstRow+1, cols, c.store.Len())
	lo, hi, missing := c.store.MissingIn(s, s+limit)
	c.mu.Unlock()
	if !missing {
		return nil
	}
	if hi-lo <= MinimumBatchSize(hi) {
		base.FromIndex, base.Limit = lo, hi-lo
		return c.fetch(ctx, gen, base)
	}
	return c.loader.LoadRange(ctx, gen, lo, hi, base, func(req PageRequest, res *PageResult, err error) {
		c.complete(gen, req, res, err)
	})
}

// ItemInteraction applies a pointer event to the selection.
func (c *Controller) ItemInteraction(ctx context.Context, in Interaction) error {
	c.mu.Lock()
	if in.Index < 0 || in.Index >= c.store.Len() {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, in.Index)
	}

	prev := c.sel
	switch {
	case in.RightClick || in.DragStart:
		c.sel = c.sel.Focus(in.Index)
	case in.Modifiers&ModCtrl != 0:
		c.sel = c.sel.Toggle(in.Index)
	case in.Modifiers&ModShift != 0 && !c.sel.Set.Empty():
		lo, hi := c.sel.ExtendRange(in.Index)
		if !c.store.RangeLoaded(lo, hi+1) {
			gen := c.gen
			c.mu.Unlock()
			if err := c.RequestRange(ctx, lo, hi+1); err != nil {
				c.logger.Warnf("shift selection %d-%d not fully loaded: %v", lo, hi, err)
			}
			c.mu.Lock()
			if gen != c.gen {
				c.mu.Unlock()
				return nil
			}
			prev = c.sel
		}
		c.sel = c.sel.ExtendTo(in.Index)
	default:
		c.sel = c.sel.Click(in.Index)
	}
	note := c.noteIfChangedLocked(prev)
	c.mu.Unlock()

	note.send(c)
	c.changed()
	return nil
}

// KeyDown resolves a key through the active strategy. It reports whether the key was
// handled, in which case the host should suppress its default action. Ctrl+A selects
// every item and blocks until they are all fetched.
func (c *Controller) KeyDown(ctx context.Context, ev KeyEvent) bool {
	if ev.Ctrl && ev.Key == KeyA {
		if err := c.SelectAll(ctx); err != nil {
			c.logger.Warnf("select all: %v", err)
		}
		return true
	}

	c.mu.Lock()
	cols := c.columnsLocked()
	nav := NavState{
		Total:        c.store.Len(),
		Columns:      cols,
		Selection:    c.sel.Set,
		LastSelected: c.sel.LastSelected,
		ShiftAnchor:  c.sel.ShiftAnchor,
	}
	res, ok := c.active.ResolveKey(ev, nav)
	if !ok {
		c.mu.Unlock()
		return false
	}
	prev := c.sel
	c.sel = SelectionState{
		Set:          SelectRange(res.Start, res.End),
		LastSelected: res.Focus,
		ShiftAnchor:  res.ShiftAnchor,
	}
	c.scrollIntoViewLocked(res.ScrollToRow)
	note := c.noteIfChangedLocked(prev)
	c.mu.Unlock()

	note.send(c)
	c.scrollTo(res.ScrollToRow)
	c.changed()
	return true
}

// KeyUp ends a shift-extension sequence when Shift is released.
func (c *Controller) KeyUp(ev KeyEvent) {
	if ev.Key != KeyShift {
		return
	}
	c.mu.Lock()
	c.sel.ShiftAnchor = noIndex
	c.mu.Unlock()
}

// SelectAll selects every index up to the total count, then materializes every item.
func (c *Controller) SelectAll(ctx context.Context) error {
	sizedNow, err := c.ensureSized(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	prev := c.sel
	c.sel = c.sel.All(c.store.Len())
	note := c.noteIfChangedLocked(prev)
	c.mu.Unlock()

	note.send(c)
	c.changed()
	return c.loadAll(ctx, sizedNow)
}

// DeselectAll clears the selection, then materializes every item like SelectAll.
func (c *Controller) DeselectAll(ctx context.Context) error {
	c.mu.Lock()
	prev := c.sel
	c.sel = c.sel.None()
	note := c.noteIfChangedLocked(prev)
	c.mu.Unlock()

	note.send(c)
	c.changed()
	return c.Reload(ctx, ReloadAll)
}

// SetStrategy switches the active layout by name.
func (c *Controller) SetStrategy(name string) error {
	s, err := c.registry.Lookup(name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.active = s
	c.mu.Unlock()
	c.changed()
	return nil
}

// SetColumnCount sets the tiles per row of the active grid, or of the first registered
// grid when a table is active. It returns the clamped value.
func (c *Controller) SetColumnCount(ctx context.Context, n int) (int, error) {
	c.mu.Lock()
	cc, ok := c.active.(ColumnCounter)
	if !ok {
		c.registry.Each(func(s RowStrategy) {
			if g, isGrid := s.(ColumnCounter); isGrid && cc == nil {
				cc = g
			}
		})
	}
	if cc == nil {
		c.mu.Unlock()
		return 1, nil
	}
	used := cc.SetTilesPerRow(n)
	c.mu.Unlock()
	c.changed()
	return used, c.LoadVisible(ctx)
}

// RequestCreate forwards the "add new" affordance to the host.
func (c *Controller) RequestCreate() {
	c.host.CreateRequested()
}

// CommitSearch forwards committed search text to the host.
func (c *Controller) CommitSearch(text string) {
	c.host.SearchCommitted(text)
}

// Rendering contract.

// RowCount returns the number of rows the active strategy renders.
func (c *Controller) RowCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active.RowCount(c.store.Len(), c.columnsLocked())
}

// RowHeight returns the height of every row for the current viewport.
func (c *Controller) RowHeight() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active.RowHeight(c.viewport.Width, c.viewport.Height, c.columnsLocked())
}

// VisibleRows returns the first and last visible rows. last < first when nothing is visible.
func (c *Controller) VisibleRows() (first, last int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibleRowsLocked()
}

// RowKey returns a stable key for row.
func (c *Controller) RowKey(row int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active.RowKey(c.store, row, c.columnsLocked())
}

// RowLoaded reports whether row can render without placeholders.
func (c *Controller) RowLoaded(row int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active.RowLoaded(c.store, row, c.columnsLocked())
}

// RowItems returns the cells of row.
func (c *Controller) RowItems(row int) []Cell {
	c.mu.Lock()
	defer c.mu.Unlock()
	start, limit := c.active.ItemRange(row, 1, c.columnsLocked(), c.store.Len())
	cells := make([]Cell, 0, limit)
	for i := start; i < start+limit; i++ {
		it, ok := c.store.At(i)
		cells = append(cells, Cell{Index: i, Item: it, Loaded: ok, Selected: c.sel.Set.Contains(i)})
	}
	return cells
}

// Item returns the loaded item at i.
func (c *Controller) Item(i int) (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.At(i)
}

// IsSelected reports whether index i is selected, loaded or not.
func (c *Controller) IsSelected(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Set.Contains(i)
}

// Selection returns the current selection set and last selected index (-1 if none).
func (c *Controller) Selection() (Selection, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Set, c.sel.LastSelected
}

// SelectedItems returns the loaded items of the selection in index order.
func (c *Controller) SelectedItems() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, _ := c.selectedItemsLocked()
	return items
}

// Sort returns the active sort state.
func (c *Controller) Sort() SortState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort
}

// ActiveStrategy returns the strategy in use.
func (c *Controller) ActiveStrategy() RowStrategy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Strategies returns the registered strategy names.
func (c *Controller) Strategies() []string {
	return c.registry.Names()
}

// Columns returns the items per row of the active strategy.
func (c *Controller) Columns() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.columnsLocked()
}

// TotalCount returns the remote collection size last reported by the data source.
func (c *Controller) TotalCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// LoadedCount returns how many items are held.
func (c *Controller) LoadedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.LoadedCount()
}

// ResourceKind returns the configured collection label.
func (c *Controller) ResourceKind() string {
	return c.kind
}

// internals

// ensureSized makes the total known. It reports whether that took a fetch, which
// always covers a prefix starting at index 0.
func (c *Controller) ensureSized(ctx context.Context) (bool, error) {
	c.mu.Lock()
	sized := c.sized
	c.mu.Unlock()
	if sized {
		return false, nil
	}
	return true, c.LoadVisible(ctx)
}

// loadAll fetches [0, total) in chunks. After a sizing fetch in the same call the
// prefix it loaded is not fetched again.
func (c *Controller) loadAll(ctx context.Context, skipPrefix bool) error {
	c.mu.Lock()
	gen, total, base := c.gen, c.store.Len(), c.pageRequestLocked()
	start := 0
	if skipPrefix {
		lo, _, missing := c.store.MissingIn(0, total)
		if !missing {
			c.mu.Unlock()
			return nil
		}
		start = lo
	}
	c.mu.Unlock()
	c.logger.Debug().Str("kind", c.kind).Int("from", start).Int("total", total).Msg("loading all items")
	return c.loader.LoadRange(ctx, gen, start, total, base, func(req PageRequest, res *PageResult, err error) {
		c.complete(gen, req, res, err)
	})
}

// fetch loads req and merges it if the generation still matches.
func (c *Controller) fetch(ctx context.Context, gen uint64, req PageRequest) error {
	res, err := c.loader.Load(ctx, gen, req)
	c.complete(gen, req, res, err)
	return err
}

func (c *Controller) complete(gen uint64, req PageRequest, res *PageResult, err error) {
	if c.onPage != nil {
		c.onPage(req, res, err)
	}
	if err != nil {
		if errors.Is(err, ErrMalformedPage) {
			c.logger.Warnf("%s items %d-%d: %v", c.kind, req.FromIndex, req.FromIndex+req.Limit, err)
		} else {
			c.logger.Errorf(err, "failed to load %s items %d-%d", c.kind, req.FromIndex, req.FromIndex+req.Limit)
		}
		return
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug().Str("kind", c.kind).Int("from", req.FromIndex).Msg("discarding stale page")
		return
	}
	materialized := c.mergeLocked(req.FromIndex, res)
	var note notification
	if materialized {
		note = c.noteLocked()
	}
	c.mu.Unlock()

	note.send(c)
	c.changed()
}

// mergeLocked resizes to the reported total and merges the page. It reports whether a
// selected index gained its item.
func (c *Controller) mergeLocked(from int, res *PageResult) bool {
	if c.store.Resize(res.TotalCount) {
		if hi, ok := c.sel.Set.Max(); ok && hi >= res.TotalCount {
			c.logger.Warnf("%s total shrank to %d; selection still references index %d", c.kind, res.TotalCount, hi)
		}
	}
	c.sized = true

	materialized := false
	if c.sel.Set.IntersectsRange(from, from+len(res.Items)) {
		for off, it := range res.Items {
			i := from + off
			if it != nil && c.sel.Set.Contains(i) && !c.store.Loaded(i) && i < c.store.Len() {
				materialized = true
				break
			}
		}
	}
	c.store.Merge(from, res.Items)
	return materialized
}

// resetLocked drops every item and the selection. Unless forgetSize is set, the total
// count is kept so the row count does not collapse while the reload is in flight.
func (c *Controller) resetLocked(forgetSize bool) notification {
	prev := c.sel
	total := c.store.Len()
	c.store.Reset()
	if forgetSize {
		c.sized = false
	} else {
		c.store.Resize(total)
	}
	c.sel = c.sel.None()
	return c.noteIfChangedLocked(prev)
}

func (c *Controller) pageRequestLocked() PageRequest {
	s := c.sort
	if s.Direction == Neutral || s.Field == "" {
		s = c.defaultSort
	}
	return PageRequest{SortBy: s.Field, SortDirection: s.Direction}
}

func (c *Controller) columnsLocked() int {
	if cc, ok := c.active.(ColumnCounter); ok {
		return max(cc.TilesPerRow(), 1)
	}
	return 1
}

func (c *Controller) visibleRowsLocked() (int, int) {
	cols := c.columnsLocked()
	rows := c.active.RowCount(c.store.Len(), cols)
	h := c.active.RowHeight(c.viewport.Width, c.viewport.Height, cols)
	if rows == 0 || h <= 0 || c.viewport.Height <= 0 {
		return 0, -1
	}
	first := int(c.viewport.ScrollOffset / h)
	last := int((c.viewport.ScrollOffset + c.viewport.Height) / h)
	first = min(first, rows-1)
	last = min(last, rows-1)
	return first, last
}

func (c *Controller) scrollIntoViewLocked(row int) {
	h := c.active.RowHeight(c.viewport.Width, c.viewport.Height, c.columnsLocked())
	if h <= 0 {
		return
	}
	top := float32(row) * h
	switch {
	case top < c.viewport.ScrollOffset:
		c.viewport.ScrollOffset = top
	case top+h > c.viewport.ScrollOffset+c.viewport.Height:
		c.viewport.ScrollOffset = max(top+h-c.viewport.Height, 0)
	}
}

func (c *Controller) applySortToStrategies(s SortState) {
	c.registry.Each(func(rs RowStrategy) {
		if sorter, ok := rs.(Sorter); ok {
			sorter.ApplySort(s)
		}
	})
}

func (c *Controller) selectedItemsLocked() ([]Item, Item) {
	var items []Item
	c.sel.Set.Each(func(i int) bool {
		if i >= c.store.Len() {
			return false
		}
		if it, ok := c.store.At(i); ok {
			items = append(items, it)
		}
		return true
	})
	last, _ := c.store.At(c.sel.LastSelected)
	return items, last
}

// notification is a pending SelectionChanged call captured under the lock.
type notification struct {
	pending bool
	items   []Item
	last    Item
}

func (n notification) send(c *Controller) {
	if n.pending {
		c.host.SelectionChanged(n.items, n.last)
	}
}

func (c *Controller) noteLocked() notification {
	items, last := c.selectedItemsLocked()
	return notification{pending: true, items: items, last: last}
}

func (c *Controller) noteIfChangedLocked(prev SelectionState) notification {
	if prev.Set.Equal(c.sel.Set) && prev.LastSelected == c.sel.LastSelected {
		return notification{}
	}
	return c.noteLocked()
}

func (c *Controller) scrollTo(row int) {
	if c.onScroll != nil {
		c.onScroll(row)
	}
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

type nopHost struct{}

func (nopHost) SelectionChanged([]Item, Item) {}
func (nopHost) CreateRequested()              {}
func (nopHost) SearchCommitted(string)        {}
