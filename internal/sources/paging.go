package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/rescale/rescale-browse/internal/api"
	"github.com/rescale/rescale-browse/internal/constants"
	"github.com/rescale/rescale-browse/internal/reslist"
)

// ErrUnsupportedSort is returned for a sort field the endpoint cannot order by.
var ErrUnsupportedSort = errors.New("unsupported sort field")

// pageFunc fetches one 1-based API page and returns its items and the collection count.
// It returns one item per result the API sent, so positions within the page hold.
type pageFunc func(ctx context.Context, opts api.PageOptions) ([]reslist.Item, int, error)

// pageSizeFor picks the smallest page size that serves [from, from+limit) from a single
// API page. When no size up to maxSize does, maxSize is used and the window spans pages.
func pageSizeFor(from, limit, maxSize int) int {
	if limit >= maxSize {
		return maxSize
	}
	last := from + limit - 1
	for size := limit; size <= maxSize; size++ {
		if from/size == last/size {
			return size
		}
	}
	return maxSize
}

// fetchWindow serves an index window from a page-numbered endpoint. Pages are read in
// order and the concatenation is sliced back to the requested window. The reported
// total is the count returned with the first page.
func fetchWindow(ctx context.Context, req reslist.PageRequest, ordering, search string, fetch pageFunc) (*reslist.PageResult, error) {
	if req.Limit <= 0 || req.FromIndex < 0 {
		return &reslist.PageResult{}, nil
	}

	size := pageSizeFor(req.FromIndex, req.Limit, constants.APIMaxPageSize)
	first := req.FromIndex / size
	last := (req.FromIndex + req.Limit - 1) / size

	var (
		items []reslist.Item
		total = -1
	)
	for p := first; p <= last; p++ {
		got, count, err := fetch(ctx, api.PageOptions{
			Page:     p + 1,
			PageSize: size,
			Ordering: ordering,
			Search:   search,
		})
		if err != nil {
			// Past the end the API answers 404 for the page number.
			if errors.Is(err, api.ErrNotFound) && p > first {
				break
			}
			if errors.Is(err, api.ErrNotFound) && first > 0 {
				return probeCount(ctx, ordering, search, fetch)
			}
			return nil, fmt.Errorf("page %d (size %d): %w", p+1, size, err)
		}
		if total < 0 {
			total = count
		}
		items = append(items, got...)
		if len(got) < size {
			break
		}
	}

	skip := req.FromIndex - first*size
	if skip >= len(items) {
		return &reslist.PageResult{TotalCount: max(total, 0)}, nil
	}
	items = items[skip:]
	if len(items) > req.Limit {
		items = items[:req.Limit]
	}
	return &reslist.PageResult{Items: items, TotalCount: max(total, 0)}, nil
}

// probeCount answers a window that starts past the end with no items and the
// current count, read from a one-item first page.
func probeCount(ctx context.Context, ordering, search string, fetch pageFunc) (*reslist.PageResult, error) {
	_, count, err := fetch(ctx, api.PageOptions{Page: 1, PageSize: 1, Ordering: ordering, Search: search})
	if err != nil {
		return nil, fmt.Errorf("count probe: %w", err)
	}
	return &reslist.PageResult{TotalCount: count}, nil
}

// orderingFor maps a sort state to the API ordering parameter using fields, which
// translates engine field names to API field names. A neutral direction means no
// explicit ordering.
func orderingFor(sort reslist.SortState, fields map[string]string) (string, error) {
	if sort.Direction == reslist.Neutral || sort.Field == "" {
		return "", nil
	}
	apiField, ok := fields[sort.Field]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedSort, sort.Field)
	}
	if sort.Direction == reslist.Descending {
		return "-" + apiField, nil
	}
	return apiField, nil
}
