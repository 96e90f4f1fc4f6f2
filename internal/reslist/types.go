// Package reslist is the list engine behind the file and job browsers: a virtualized,
// incrementally loaded, multi-select view over a server-paginated collection.
//
// The engine owns a sparse item store sized to the remote total, a selection that may
// reference items that were never loaded, and a set of row strategies (table rows or
// tile grids) that decide geometry and keyboard navigation. Hosts feed it viewport and
// input events and render whatever rows it reports as visible.
package reslist

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrUnknownStrategy is returned when a strategy name was not registered at construction.
	ErrUnknownStrategy = errors.New("unknown row strategy")

	// ErrNoFetcher is returned by New when the config has no FetchPage function.
	ErrNoFetcher = errors.New("fetch page function is required")

	// ErrMalformedPage marks a fetchPage response that cannot be merged.
	// The affected range is treated as returning zero items.
	ErrMalformedPage = errors.New("malformed page response")

	// ErrIndexOutOfRange is returned for interactions on indices outside the collection.
	ErrIndexOutOfRange = errors.New("item index out of range")
)

// Item is an opaque remote resource. The engine only needs a stable identity and
// the two timestamps used as default sort fallbacks.
type Item interface {
	ID() string
	CreatedAt() time.Time
	ModifiedAt() time.Time
}

// SortDirection is the direction of a sort column.
type SortDirection int

const (
	Neutral SortDirection = iota
	Ascending
	Descending
)

func (d SortDirection) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

// Next returns the direction a header click moves to: Ascending -> Descending -> Neutral -> Ascending.
func (d SortDirection) Next() SortDirection {
	switch d {
	case Ascending:
		return Descending
	case Descending:
		return Neutral
	default:
		return Ascending
	}
}

// ParseSortDirection accepts "asc", "desc" and "none" (case-insensitive).
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	case "", "none", "neutral":
		return Neutral, nil
	}
	return Neutral, errors.New("invalid sort direction: " + s)
}

// SortState is the field driving the remote sort and its direction.
type SortState struct {
	Field     string
	Direction SortDirection
}

// Default sort fields every Item can answer from its timestamps.
const (
	SortFieldCreated  = "created"
	SortFieldModified = "modified"
)

// FallbackLess orders two items by modification time, then creation time, then ID.
// Sources use it to break ties the remote ordering leaves unspecified.
func FallbackLess(a, b Item) bool {
	if !a.ModifiedAt().Equal(b.ModifiedAt()) {
		return a.ModifiedAt().Before(b.ModifiedAt())
	}
	if !a.CreatedAt().Equal(b.CreatedAt()) {
		return a.CreatedAt().Before(b.CreatedAt())
	}
	return a.ID() < b.ID()
}

// PageRequest asks the data source for Limit items starting at FromIndex.
type PageRequest struct {
	FromIndex     int
	Limit         int
	SortBy        string
	SortDirection SortDirection
}

// PageResult is one page of items plus the collection size at the time of the call.
type PageResult struct {
	Items      []Item
	TotalCount int
}

// FetchPageFunc loads one page. It must return at most req.Limit items, ordered by
// the requested sort.
type FetchPageFunc func(ctx context.Context, req PageRequest) (*PageResult, error)

// ReloadMode selects what a Reload discards.
type ReloadMode int

const (
	// ReloadClear drops every loaded item and the selection; the scroll offset is kept.
	ReloadClear ReloadMode = iota
	// ReloadNewID is used when the collection identity changes: items, selection,
	// anchors and the scroll offset are all reset.
	ReloadNewID
	// ReloadAll materializes every index up to the total count.
	ReloadAll
)

func (m ReloadMode) String() string {
	switch m {
	case ReloadClear:
		return "clear"
	case ReloadNewID:
		return "new-id"
	case ReloadAll:
		return "all"
	}
	return "unknown"
}

// Host receives the notifications the engine produces.
type Host interface {
	SelectionChanged(items []Item, last Item)
	CreateRequested()
	SearchCommitted(text string)
}

// Key identifies a key the engine understands.
type Key int

const (
	KeyUnknown Key = iota
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyA
	KeyShift
)

// KeyEvent is a key press with its modifier state. Ctrl covers Cmd on macOS.
type KeyEvent struct {
	Key   Key
	Shift bool
	Ctrl  bool
}

// Modifiers is a bit set of held modifier keys during a pointer interaction.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
)

// Interaction is a pointer event on the item at Index.
type Interaction struct {
	Index      int
	Modifiers  Modifiers
	RightClick bool
	DragStart  bool
}

// Viewport is the host's visible area in device-independent pixels.
type Viewport struct {
	Width        float32
	Height       float32
	ScrollOffset float32
}
