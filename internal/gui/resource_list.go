package gui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/rescale/rescale-browse/internal/constants"
	"github.com/rescale/rescale-browse/internal/logging"
	"github.com/rescale/rescale-browse/internal/reslist"
	"github.com/rescale/rescale-browse/internal/sources"
)

var (
	_ fyne.Focusable    = (*ResourceList)(nil)
	_ desktop.Keyable   = (*ResourceList)(nil)
	_ fyne.Shortcutable = (*ResourceList)(nil)

	_ desktop.Mouseable      = (*tile)(nil)
	_ fyne.Tappable          = (*tile)(nil)
	_ fyne.SecondaryTappable = (*tile)(nil)
	_ fyne.DoubleTappable    = (*tile)(nil)
	_ fyne.Draggable         = (*tile)(nil)

	_ fyne.Draggable     = (*resizeHandle)(nil)
	_ desktop.Cursorable = (*resizeHandle)(nil)
)

// ResourceList renders a list controller: a table with a sortable header, or a tile
// grid with a tiles-per-row slider. Engine calls that may block run on a single
// action goroutine so input is applied in order and the UI thread never waits on
// the network.
type ResourceList struct {
	widget.BaseWidget

	ctx    context.Context
	logger *logging.Logger

	ctrl  *reslist.Controller
	table *reslist.TableStrategy

	actions chan func(context.Context) error
	shift   atomic.Bool

	// OnOpen is called when a loaded item is double-clicked.
	OnOpen func(reslist.Item)

	list       *widget.List
	header     *fyne.Container
	headerCols *columnsLayout
	headerSig  string
	headerBar  *fyne.Container
	columnsBtn *widget.Button
	slider     *widget.Slider
	sliderBox  *fyne.Container

	// owned by watchViewport
	lastSize   fyne.Size
	lastOffset float32
}

// NewResourceList creates an unbound list. Call Bind before it is shown.
func NewResourceList(ctx context.Context, logger *logging.Logger) *ResourceList {
	w := &ResourceList{
		ctx:     ctx,
		logger:  logger.Component("resource-list"),
		actions: make(chan func(context.Context) error, 64),
	}
	w.ExtendBaseWidget(w)
	go w.runActions()
	return w
}

// Bind attaches the controller and, for table layouts, the table strategy whose
// columns the header edits.
func (w *ResourceList) Bind(ctrl *reslist.Controller, table *reslist.TableStrategy) {
	w.ctrl = ctrl
	w.table = table
}

// ScrollToRow matches reslist.Config.OnScrollToRow.
func (w *ResourceList) ScrollToRow(row int) {
	fyne.Do(func() {
		if w.list != nil {
			w.list.ScrollTo(row)
		}
	})
}

// EngineChanged matches reslist.Config.OnChange.
func (w *ResourceList) EngineChanged() {
	fyne.Do(w.refresh)
}

// Run queues fn on the action goroutine.
func (w *ResourceList) Run(fn func(context.Context) error) {
	select {
	case w.actions <- fn:
	default:
		w.logger.Warn().Msg("list busy, dropping input")
	}
}

// SelectAll selects every item, loading what is missing.
func (w *ResourceList) SelectAll() {
	w.Run(func(ctx context.Context) error {
		return w.ctrl.SelectAll(ctx)
	})
}

// DeselectAll clears the selection.
func (w *ResourceList) DeselectAll() {
	w.Run(func(ctx context.Context) error {
		return w.ctrl.DeselectAll(ctx)
	})
}

func (w *ResourceList) runActions() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case fn := <-w.actions:
			if err := fn(w.ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Debug().Err(err).Msg("list action failed")
			}
		}
	}
}

// watchViewport feeds the list's size and scroll offset to the controller. widget.List
// has no scroll callback, so the offset is sampled.
func (w *ResourceList) watchViewport() {
	ticker := time.NewTicker(constants.ViewportRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
		}

		var size fyne.Size
		var offset float32
		fyne.DoAndWait(func() {
			size = w.list.Size()
			offset = w.list.GetScrollOffset()
		})

		if offset != w.lastOffset {
			w.lastOffset = offset
			if err := w.ctrl.SetScrollOffset(w.ctx, offset); err != nil {
				w.logger.Debug().Err(err).Msg("load after scroll failed")
			}
		}
		if size != w.lastSize {
			w.lastSize = size
			if err := w.ctrl.SetViewport(w.ctx, size.Width, size.Height); err != nil {
				w.logger.Debug().Err(err).Msg("load after resize failed")
			}
			// grid rows are as tall as a tile is wide
			w.EngineChanged()
		}
	}
}

// CreateRenderer implements fyne.Widget
func (w *ResourceList) CreateRenderer() fyne.WidgetRenderer {
	w.list = widget.NewList(
		func() int {
			if w.ctrl == nil {
				return 0
			}
			return w.ctrl.RowCount()
		},
		func() fyne.CanvasObject {
			return newRowView(w)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*rowView).update(id)
		},
	)
	w.list.HideSeparators = true
	w.list.OnSelected = func(id widget.ListItemID) {
		w.list.UnselectAll() // selection is drawn by the tiles
	}

	w.headerCols = &columnsLayout{}
	w.header = container.New(w.headerCols)
	w.columnsBtn = widget.NewButtonWithIcon("", theme.ListIcon(), w.showColumnMenu)
	w.columnsBtn.Importance = widget.LowImportance
	w.headerBar = container.NewBorder(nil, nil, nil, w.columnsBtn, w.header)

	w.slider = widget.NewSlider(constants.MinGridColumns, constants.MaxGridColumns)
	w.slider.Step = 1
	w.slider.OnChangeEnded = func(v float64) {
		n := int(v)
		w.Run(func(ctx context.Context) error {
			_, err := w.ctrl.SetColumnCount(ctx, n)
			return err
		})
	}
	w.sliderBox = container.NewBorder(nil, nil, widget.NewLabel("Tiles per row"), nil, w.slider)

	w.refresh()
	go w.watchViewport()

	content := container.NewBorder(container.NewStack(w.headerBar, w.sliderBox), nil, nil, nil, w.list)
	return widget.NewSimpleRenderer(content)
}

// refresh must run on the UI thread.
func (w *ResourceList) refresh() {
	if w.list == nil || w.ctrl == nil {
		return
	}
	if w.ctrl.ActiveStrategy().Kind() == reslist.KindGrid {
		w.headerBar.Hide()
		w.sliderBox.Show()
		w.slider.SetValue(float64(w.ctrl.Columns()))
	} else {
		w.sliderBox.Hide()
		w.headerBar.Show()
		w.rebuildHeader()
	}
	w.list.Refresh()
}

func (w *ResourceList) rebuildHeader() {
	if w.table == nil {
		return
	}
	cols := w.table.EnabledColumns()

	var sig strings.Builder
	for _, col := range cols {
		fmt.Fprintf(&sig, "%s:%g:%d;", col.Field, col.Width, col.Direction)
	}
	if sig.String() == w.headerSig {
		return
	}
	w.headerSig = sig.String()

	widths := make([]float32, len(cols))
	objs := make([]fyne.CanvasObject, len(cols))
	for i, col := range cols {
		widths[i] = col.Width
		btn := widget.NewButton(col.Title+sortGlyph(col.Direction), nil)
		btn.Importance = widget.LowImportance
		btn.Alignment = widget.ButtonAlignLeading
		if col.Sortable {
			field := col.Field
			btn.OnTapped = func() { w.cycleSort(field) }
		}
		objs[i] = container.NewBorder(nil, nil, nil, newResizeHandle(w, col.Field, col.Width), btn)
	}
	w.headerCols.widths = widths
	w.header.Objects = objs
	w.header.Refresh()
}

func (w *ResourceList) cycleSort(field string) {
	next, err := w.table.CycleSort(field)
	if err != nil {
		w.logger.Warn().Err(err).Str("field", field).Msg("cannot sort")
		return
	}
	w.Run(func(ctx context.Context) error {
		return w.ctrl.SetSort(ctx, next.Field, next.Direction)
	})
}

func (w *ResourceList) showColumnMenu() {
	if w.table == nil {
		return
	}
	var items []*fyne.MenuItem
	for _, col := range w.table.Columns() {
		field, enabled := col.Field, col.Enabled
		item := fyne.NewMenuItem(col.Title, func() {
			if err := w.table.SetColumnEnabled(field, !enabled); err != nil {
				w.logger.Warn().Err(err).Str("field", field).Msg("cannot toggle column")
				return
			}
			w.refresh()
		})
		item.Checked = enabled
		items = append(items, item)
	}
	c := fyne.CurrentApp().Driver().CanvasForObject(w)
	if c == nil {
		return
	}
	widget.ShowPopUpMenuAtRelativePosition(fyne.NewMenu("", items...), c, fyne.NewPos(0, w.columnsBtn.Size().Height), w.columnsBtn)
}

func (w *ResourceList) interact(in reslist.Interaction) {
	if w.shift.Load() {
		in.Modifiers |= reslist.ModShift
	}
	w.Run(func(ctx context.Context) error {
		return w.ctrl.ItemInteraction(ctx, in)
	})
}

func (w *ResourceList) requestFocus() {
	if c := fyne.CurrentApp().Driver().CanvasForObject(w); c != nil {
		c.Focus(w)
	}
}

func (w *ResourceList) FocusGained() {}

func (w *ResourceList) FocusLost() {
	w.shift.Store(false)
}

func (w *ResourceList) TypedRune(rune) {}

// TypedKey handles arrows, including key repeat.
func (w *ResourceList) TypedKey(ev *fyne.KeyEvent) {
	if isShiftKey(ev.Name) {
		return
	}
	kev, ok := translateKey(ev.Name, w.shift.Load())
	if !ok {
		return
	}
	w.Run(func(ctx context.Context) error {
		w.ctrl.KeyDown(ctx, kev)
		return nil
	})
}

// KeyDown and KeyUp only track Shift; fyne.KeyEvent carries no modifier state.
func (w *ResourceList) KeyDown(ev *fyne.KeyEvent) {
	if isShiftKey(ev.Name) {
		w.shift.Store(true)
	}
}

func (w *ResourceList) KeyUp(ev *fyne.KeyEvent) {
	if !isShiftKey(ev.Name) {
		return
	}
	w.shift.Store(false)
	w.Run(func(ctx context.Context) error {
		w.ctrl.KeyUp(reslist.KeyEvent{Key: reslist.KeyShift})
		return nil
	})
}

func (w *ResourceList) TypedShortcut(s fyne.Shortcut) {
	if _, ok := s.(*fyne.ShortcutSelectAll); !ok {
		return
	}
	w.Run(func(ctx context.Context) error {
		w.ctrl.KeyDown(ctx, reslist.KeyEvent{Key: reslist.KeyA, Ctrl: true})
		return nil
	})
}

// rowView is one list row: a single table tile or a grid of tiles.
type rowView struct {
	widget.BaseWidget
	owner *ResourceList
	box   *fyne.Container
	tiles []*tile
}

func newRowView(owner *ResourceList) *rowView {
	r := &rowView{owner: owner, box: container.NewStack()}
	r.ExtendBaseWidget(r)
	return r
}

func (r *rowView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(r.box)
}

// MinSize reports the engine's row height, which the list uses for every row.
func (r *rowView) MinSize() fyne.Size {
	h := float32(constants.TableRowHeight)
	if r.owner.ctrl != nil {
		h = max(r.owner.ctrl.RowHeight(), h)
	}
	return fyne.NewSize(0, h)
}

func (r *rowView) update(row int) {
	ctrl := r.owner.ctrl
	cells := ctrl.RowItems(row)
	kind := ctrl.ActiveStrategy().Kind()

	var cols []reslist.Column
	if kind == reslist.KindTable && r.owner.table != nil {
		cols = r.owner.table.EnabledColumns()
	}

	for len(r.tiles) < len(cells) {
		r.tiles = append(r.tiles, newTile(r.owner))
	}
	objs := make([]fyne.CanvasObject, len(cells))
	for i, c := range cells {
		r.tiles[i].update(c, kind, cols)
		objs[i] = r.tiles[i]
	}

	if kind == reslist.KindGrid {
		r.box.Layout = layout.NewGridLayoutWithColumns(ctrl.Columns())
	} else {
		r.box.Layout = layout.NewStackLayout()
	}
	r.box.Objects = objs
	r.box.Refresh()
}

// tile is one item slot. It turns pointer input into engine interactions.
type tile struct {
	widget.BaseWidget
	owner *ResourceList

	index    int
	item     reslist.Item
	mods     fyne.KeyModifier
	dragging bool

	bg         *canvas.Rectangle
	icon       *widget.Icon
	name       *widget.Label
	gridBox    *fyne.Container
	cells      *fyne.Container
	cellLayout *columnsLayout
	labels     []*widget.Label
}

func newTile(owner *ResourceList) *tile {
	t := &tile{
		owner:      owner,
		bg:         canvas.NewRectangle(color.Transparent),
		icon:       widget.NewIcon(nil),
		name:       widget.NewLabel(""),
		cellLayout: &columnsLayout{},
	}
	t.name.Alignment = fyne.TextAlignCenter
	t.name.Truncation = fyne.TextTruncateEllipsis
	t.gridBox = container.NewBorder(nil, t.name, nil, nil, t.icon)
	t.cells = container.New(t.cellLayout)
	t.ExtendBaseWidget(t)
	return t
}

func (t *tile) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(t.bg, t.cells, t.gridBox))
}

func (t *tile) update(c reslist.Cell, kind reslist.StrategyKind, cols []reslist.Column) {
	t.index = c.Index
	t.item = c.Item

	if c.Selected {
		t.bg.FillColor = theme.Color(theme.ColorNameSelection)
	} else {
		t.bg.FillColor = color.Transparent
	}
	t.bg.Refresh()

	if kind == reslist.KindGrid {
		t.cells.Hide()
		t.gridBox.Show()
		t.icon.SetResource(iconFor(c))
		t.name.SetText(cellText(c, sources.FieldName))
		return
	}

	t.gridBox.Hide()
	t.cells.Show()
	for len(t.labels) < len(cols) {
		l := widget.NewLabel("")
		l.Truncation = fyne.TextTruncateEllipsis
		t.labels = append(t.labels, l)
	}
	widths := make([]float32, len(cols))
	objs := make([]fyne.CanvasObject, len(cols))
	for i, col := range cols {
		widths[i] = col.Width
		t.labels[i].SetText(cellText(c, col.Field))
		objs[i] = t.labels[i]
	}
	t.cellLayout.widths = widths
	t.cells.Objects = objs
	t.cells.Refresh()
}

func cellText(c reslist.Cell, field string) string {
	if !c.Loaded {
		if field == sources.FieldName {
			return "…"
		}
		return ""
	}
	if row, ok := c.Item.(sources.Row); ok {
		return row.Field(field)
	}
	if field == sources.FieldName {
		return c.Item.ID()
	}
	return ""
}

func iconFor(c reslist.Cell) fyne.Resource {
	if !c.Loaded {
		return nil
	}
	switch it := c.Item.(type) {
	case *sources.FileItem:
		if it.Entry.IsFolder() {
			return theme.FolderIcon()
		}
		return theme.FileIcon()
	case *sources.JobItem:
		return theme.ComputerIcon()
	}
	return theme.DocumentIcon()
}

func (t *tile) MouseDown(e *desktop.MouseEvent) {
	t.mods = e.Modifier
	t.owner.requestFocus()
}

func (t *tile) MouseUp(*desktop.MouseEvent) {}

func (t *tile) Tapped(*fyne.PointEvent) {
	t.owner.interact(reslist.Interaction{Index: t.index, Modifiers: translateModifiers(t.mods)})
}

func (t *tile) TappedSecondary(*fyne.PointEvent) {
	t.owner.interact(reslist.Interaction{Index: t.index, RightClick: true})
}

func (t *tile) DoubleTapped(*fyne.PointEvent) {
	if t.item != nil && t.owner.OnOpen != nil {
		t.owner.OnOpen(t.item)
	}
}

func (t *tile) Dragged(*fyne.DragEvent) {
	if t.dragging {
		return
	}
	t.dragging = true
	t.owner.interact(reslist.Interaction{Index: t.index, DragStart: true})
}

func (t *tile) DragEnd() {
	t.dragging = false
}

// resizeHandle is the drag bar on the right edge of a header cell.
type resizeHandle struct {
	widget.BaseWidget
	owner *ResourceList
	field string
	width float32
}

func newResizeHandle(owner *ResourceList, field string, width float32) *resizeHandle {
	h := &resizeHandle{owner: owner, field: field, width: width}
	h.ExtendBaseWidget(h)
	return h
}

func (h *resizeHandle) CreateRenderer() fyne.WidgetRenderer {
	bar := canvas.NewRectangle(theme.Color(theme.ColorNameSeparator))
	bar.SetMinSize(fyne.NewSize(3, 0))
	return widget.NewSimpleRenderer(bar)
}

func (h *resizeHandle) Cursor() desktop.Cursor {
	return desktop.HResizeCursor
}

func (h *resizeHandle) Dragged(e *fyne.DragEvent) {
	h.width += e.Dragged.DX
	if err := h.owner.table.ResizeColumn(h.field, h.width); err != nil {
		h.owner.logger.Debug().Err(err).Str("field", h.field).Msg("resize failed")
		return
	}
	h.owner.resizeColumns()
}

func (h *resizeHandle) DragEnd() {
	h.owner.refresh()
}

// resizeColumns applies new widths to the header in place; rebuilding it would
// drop the drag in progress.
func (w *ResourceList) resizeColumns() {
	cols := w.table.EnabledColumns()
	widths := make([]float32, len(cols))
	for i, col := range cols {
		widths[i] = col.Width
	}
	w.headerCols.widths = widths
	w.header.Refresh()
	w.list.Refresh()
}
