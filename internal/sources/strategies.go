package sources

import (
	"github.com/rescale/rescale-browse/internal/config"
	"github.com/rescale/rescale-browse/internal/constants"
	"github.com/rescale/rescale-browse/internal/reslist"
)

// Strategy names match the default_layout config values.
const (
	StrategyTable = config.LayoutTable
	StrategyGrid  = config.LayoutGrid
)

// DefaultSort is the ordering both listings start with: newest first.
var DefaultSort = reslist.SortState{Field: reslist.SortFieldCreated, Direction: reslist.Descending}

// FileColumns returns the table columns of a folder listing.
func FileColumns() []reslist.Column {
	return []reslist.Column{
		{Field: FieldName, Title: "Name", Width: 320, MinWidth: 120, Enabled: true, Sortable: true},
		{Field: FieldSize, Title: "Size", Width: 90, MinWidth: 60, Enabled: true, Sortable: true},
		{Field: FieldOwner, Title: "Owner", Width: 160, MinWidth: 80, Sortable: true},
		{Field: FieldModified, Title: "Modified", Width: 140, MinWidth: 100, Enabled: true, Sortable: true},
		{Field: FieldCreated, Title: "Uploaded", Width: 140, MinWidth: 100, Sortable: true},
	}
}

// JobColumns returns the table columns of the jobs listing.
func JobColumns() []reslist.Column {
	return []reslist.Column{
		{Field: FieldName, Title: "Name", Width: 300, MinWidth: 120, Enabled: true, Sortable: true},
		{Field: FieldStatus, Title: "Status", Width: 110, MinWidth: 80, Enabled: true, Sortable: true},
		{Field: FieldOwner, Title: "Owner", Width: 160, MinWidth: 80, Sortable: true},
		{Field: FieldCreated, Title: "Created", Width: 140, MinWidth: 100, Enabled: true, Sortable: true},
		{Field: "tags", Title: "Tags", Width: 160, MinWidth: 60},
	}
}

// FileStrategies returns a fresh table and grid pair for a folder listing.
func FileStrategies(gridColumns int) []reslist.RowStrategy {
	return strategies(FileColumns(), gridColumns)
}

// JobStrategies returns a fresh table and grid pair for the jobs listing.
func JobStrategies(gridColumns int) []reslist.RowStrategy {
	return strategies(JobColumns(), gridColumns)
}

func strategies(cols []reslist.Column, gridColumns int) []reslist.RowStrategy {
	if gridColumns <= 0 {
		gridColumns = constants.DefaultGridColumns
	}
	return []reslist.RowStrategy{
		reslist.NewTableStrategy(StrategyTable, 0, cols...),
		reslist.NewGridStrategy(StrategyGrid, gridColumns),
	}
}

// SortFromConfig turns the saved sort preference into a sort state for a listing
// with cols. A field that is empty or not a sortable column yields DefaultSort.
func SortFromConfig(cfg *config.Config, cols []reslist.Column) reslist.SortState {
	if cfg == nil || cfg.SortField == "" {
		return DefaultSort
	}
	for _, col := range cols {
		if col.Field != cfg.SortField || !col.Sortable {
			continue
		}
		dir := reslist.Descending
		if cfg.SortAscending {
			dir = reslist.Ascending
		}
		return reslist.SortState{Field: cfg.SortField, Direction: dir}
	}
	return DefaultSort
}
