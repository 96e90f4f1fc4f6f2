package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rescale/rescale-browse/internal/config"
	"github.com/rescale/rescale-browse/internal/constants"
	"github.com/rescale/rescale-browse/internal/events"
	"github.com/rescale/rescale-browse/internal/progress"
	"github.com/rescale/rescale-browse/internal/reslist"
	"github.com/rescale/rescale-browse/internal/sources"
)

// pixelsPerChar converts table column widths to terminal cells.
const pixelsPerChar = 8

// listOptions are the flags shared by every "ls" command.
type listOptions struct {
	offset    int
	limit     int
	sortField string
	desc      bool
	layout    string
	columns   int
	all       bool
	search    string
}

func (o *listOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&o.offset, "offset", 0, "Index of the first item to show")
	f.IntVarP(&o.limit, "limit", "n", constants.DefaultPageSize, "Number of items to show")
	f.StringVar(&o.sortField, "sort", "", "Sort field (defaults to sort_field from config)")
	f.BoolVar(&o.desc, "desc", false, "Sort descending")
	f.StringVar(&o.layout, "layout", "", "Layout: table or grid (defaults to default_layout from config)")
	f.IntVar(&o.columns, "columns", 0, "Tiles per row in grid layout (defaults to grid_columns from config)")
	f.BoolVar(&o.all, "all", false, "Select and load every item, showing progress")
	f.StringVar(&o.search, "search", "", "Only list items whose name matches")
}

// sortState resolves --sort/--desc against the config and the sortable columns.
func (o *listOptions) sortState(cmd *cobra.Command, cfg *config.Config, cols []reslist.Column) (reslist.SortState, error) {
	s := sources.SortFromConfig(cfg, cols)
	if o.sortField != "" {
		var names []string
		found := false
		for _, c := range cols {
			if !c.Sortable {
				continue
			}
			names = append(names, c.Field)
			found = found || c.Field == o.sortField
		}
		if !found {
			return s, fmt.Errorf("cannot sort by %q (valid: %s)", o.sortField, strings.Join(names, ", "))
		}
		s = reslist.SortState{Field: o.sortField, Direction: reslist.Ascending}
	}
	if cmd.Flags().Changed("desc") || o.sortField != "" {
		s.Direction = reslist.Ascending
		if o.desc {
			s.Direction = reslist.Descending
		}
	}
	return s, nil
}

// listing is everything runList needs for one resource kind.
type listing struct {
	kind       string
	fetch      reslist.FetchPageFunc
	strategies func(gridColumns int) []reslist.RowStrategy
	columns    []reslist.Column
}

// runList drives a controller over the requested window and prints the rows it holds.
func runList(ctx context.Context, cmd *cobra.Command, cfg *config.Config, l listing, opts listOptions, out io.Writer) error {
	if opts.offset < 0 || opts.limit < 1 {
		return fmt.Errorf("--offset must be >= 0 and --limit >= 1")
	}
	sort, err := opts.sortState(cmd, cfg, l.columns)
	if err != nil {
		return err
	}
	layout := opts.layout
	if layout == "" {
		layout = cfg.DefaultLayout
	}
	gridColumns := opts.columns
	if gridColumns == 0 {
		gridColumns = cfg.GridColumns
	}

	bus := events.NewEventBus(constants.EventBusDefaultBuffer)
	defer bus.Close()

	host := reslist.NewBusHost(bus, l.kind)
	ctrl, err := reslist.New(reslist.Config{
		ResourceKind:    l.kind,
		Strategies:      l.strategies(gridColumns),
		InitialStrategy: layout,
		DefaultSort:     sort,
		FetchPage:       l.fetch,
		Host:            host,
		Logger:          GetLogger().Component(l.kind),
		OnPage:          host.PageFetched,
		LoadConcurrency: constants.LoadConcurrency,
	})
	if err != nil {
		return err
	}
	host.Bind(ctrl)

	if opts.all {
		stop := progress.Watch(bus, l.kind, progress.New())
		err = ctrl.SelectAll(ctx)
		stop()
	} else {
		err = ctrl.RequestRange(ctx, opts.offset, opts.offset+opts.limit)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", l.kind, err)
	}

	first, last := opts.offset, opts.offset+opts.limit
	if opts.all {
		first, last = 0, ctrl.TotalCount()
	}
	renderList(out, ctrl, first, min(last, ctrl.TotalCount()), terminalWidth())

	if opts.all {
		sel, _ := ctrl.Selection()
		fmt.Fprintf(out, "\n%d of %d %s selected\n", sel.Count(), ctrl.TotalCount(), l.kind)
	}
	return nil
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 120
	}
	return w
}

// renderList prints the rows covering items [first, last) using the active strategy.
func renderList(out io.Writer, ctrl *reslist.Controller, first, last, width int) {
	if last <= first {
		fmt.Fprintf(out, "No %s found\n", ctrl.ResourceKind())
		return
	}

	cols := ctrl.Columns()
	firstRow, lastRow := first/cols, (last-1)/cols

	switch s := ctrl.ActiveStrategy().(type) {
	case *reslist.TableStrategy:
		columns := fitColumns(s.EnabledColumns(), width)
		fmt.Fprintln(out, tableHeader(columns))
		for row := firstRow; row <= lastRow; row++ {
			for _, cell := range ctrl.RowItems(row) {
				if cell.Index >= first && cell.Index < last {
					fmt.Fprintln(out, tableLine(cell, columns))
				}
			}
		}
	default:
		tile := max(width/cols, 8)
		for row := firstRow; row <= lastRow; row++ {
			var b strings.Builder
			for _, cell := range ctrl.RowItems(row) {
				if cell.Index < first || cell.Index >= last {
					continue
				}
				b.WriteString(runewidth.FillRight(runewidth.Truncate(cellLabel(cell), tile-2, "…"), tile))
			}
			fmt.Fprintln(out, strings.TrimRight(b.String(), " "))
		}
	}

	fmt.Fprintf(out, "\nShowing %d-%d of %d %s\n", first+1, last, ctrl.TotalCount(), ctrl.ResourceKind())
}

type textColumn struct {
	reslist.Column
	chars int
}

// fitColumns converts pixel widths to characters and shrinks the first column to fit width.
func fitColumns(cols []reslist.Column, width int) []textColumn {
	out := make([]textColumn, len(cols))
	used := 0
	for i, c := range cols {
		out[i] = textColumn{Column: c, chars: max(int(c.Width)/pixelsPerChar, 4)}
		used += out[i].chars + 1
	}
	if len(out) > 0 && used > width {
		out[0].chars = max(out[0].chars-(used-width), 8)
	}
	return out
}

func tableHeader(cols []textColumn) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		title := c.Title
		switch c.Direction {
		case reslist.Ascending:
			title += " ^"
		case reslist.Descending:
			title += " v"
		}
		parts[i] = runewidth.FillRight(runewidth.Truncate(title, c.chars, "…"), c.chars)
	}
	return strings.TrimRight(strings.Join(parts, " "), " ")
}

func tableLine(cell reslist.Cell, cols []textColumn) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		text := "…"
		if cell.Loaded {
			if r, ok := cell.Item.(sources.Row); ok {
				text = r.Field(c.Field)
				if c.Field == sources.FieldName {
					text = r.Label()
				}
			}
		}
		parts[i] = runewidth.FillRight(runewidth.Truncate(text, c.chars, "…"), c.chars)
	}
	return strings.TrimRight(strings.Join(parts, " "), " ")
}

func cellLabel(cell reslist.Cell) string {
	if !cell.Loaded {
		return "…"
	}
	if r, ok := cell.Item.(sources.Row); ok {
		return r.Label()
	}
	return cell.Item.ID()
}
