package reslist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/rescale/rescale-browse/internal/constants"
)

// MinimumBatchSize is the smallest request the loader issues for a collection of the
// given size when prefetching around the viewport.
func MinimumBatchSize(total int) int {
	return max(min(20, total/1000), 1000)
}

// LoadMoreThreshold is how many loaded items must lie ahead of the viewport before the
// loader stops prefetching.
func LoadMoreThreshold(total int) int {
	return MinimumBatchSize(total) / 2
}

// Window is an item range [Start, Start+Limit).
type Window struct {
	Start int
	Limit int
}

// End returns the exclusive end of the window.
func (w Window) End() int { return w.Start + w.Limit }

// Plan decides what to fetch for the visible item range [start, end) of a collection
// of total items. The first unloaded index inside the range starts the request, which is
// widened to at least one batch. With the visible range fully loaded, the loader looks
// LoadMoreThreshold items ahead and prefetches from the first gap it finds there.
// ok is false when nothing needs loading.
func Plan(start, end, total int, items ItemView) (w Window, ok bool) {
	batch := MinimumBatchSize(total)
	lo, hi, missing := missingIn(items, start, end, total)
	if !missing {
		lo, _, missing = missingIn(items, end, end+LoadMoreThreshold(total), total)
		if !missing {
			return Window{}, false
		}
		hi = lo
	}
	limit := min(max(hi-lo, batch), total-lo)
	return Window{Start: lo, Limit: limit}, limit > 0
}

func missingIn(items ItemView, start, end, total int) (lo, hi int, ok bool) {
	start, end = clampRange(start, end, total)
	lo = -1
	for i := start; i < end; i++ {
		if items.Loaded(i) {
			continue
		}
		if lo < 0 {
			lo = i
		}
		hi = i + 1
	}
	return lo, hi, lo >= 0
}

// Chunks splits [start, end) into windows of at most size items.
func Chunks(start, end, size int) []Window {
	if size <= 0 {
		size = MinimumBatchSize(0)
	}
	var out []Window
	for s := start; s < end; s += size {
		out = append(out, Window{Start: s, Limit: min(size, end-s)})
	}
	return out
}

// Loader invokes the data source. Concurrent requests for the exact same window in the
// same generation share one call; overlapping but different windows are fetched
// independently and merged by absolute index.
type Loader struct {
	fetch       FetchPageFunc
	concurrency int
	group       singleflight.Group
}

// NewLoader wraps fetch. concurrency bounds LoadRange fan-out; zero uses
// constants.LoadConcurrency.
func NewLoader(fetch FetchPageFunc, concurrency int) *Loader {
	if concurrency <= 0 {
		concurrency = constants.LoadConcurrency
	}
	return &Loader{fetch: fetch, concurrency: concurrency}
}

// Load fetches one page and validates its shape. A response that cannot be merged is
// reported as ErrMalformedPage.
func (l *Loader) Load(ctx context.Context, gen uint64, req PageRequest) (*PageResult, error) {
	key := fmt.Sprintf("%d:%d:%d:%s:%d", gen, req.FromIndex, req.Limit, req.SortBy, req.SortDirection)
	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		res, err := l.fetch(ctx, req)
		if err != nil {
			return nil, err
		}
		if err := validatePage(req, res); err != nil {
			return nil, err
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*PageResult), nil
}

func validatePage(req PageRequest, res *PageResult) error {
	switch {
	case res == nil:
		return fmt.Errorf("%w: empty response", ErrMalformedPage)
	case res.TotalCount < 0:
		return fmt.Errorf("%w: negative total count %d", ErrMalformedPage, res.TotalCount)
	case len(res.Items) > req.Limit:
		return fmt.Errorf("%w: %d items for limit %d", ErrMalformedPage, len(res.Items), req.Limit)
	}
	return nil
}

// LoadRange fetches [start, end) in batch-sized chunks, at most concurrency at a time.
// merge runs once per chunk as it completes, in completion order. A failed chunk does
// not stop the others; every failure is returned joined.
func (l *Loader) LoadRange(ctx context.Context, gen uint64, start, end int, base PageRequest,
	merge func(req PageRequest, res *PageResult, err error)) error {

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(l.concurrency)

	for _, w := range Chunks(start, end, MinimumBatchSize(end)) {
		req := base
		req.FromIndex, req.Limit = w.Start, w.Limit
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				merge(req, nil, err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			res, err := l.Load(ctx, gen, req)
			merge(req, res, err)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("items %d-%d: %w", req.FromIndex, req.FromIndex+req.Limit, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
