package reslist

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type testItem struct {
	id       string
	created  time.Time
	modified time.Time
}

func (t testItem) ID() string            { return t.id }
func (t testItem) CreatedAt() time.Time  { return t.created }
func (t testItem) ModifiedAt() time.Time { return t.modified }

func makeItems(prefix string, start, n int) []Item {
	out := make([]Item, n)
	for i := range out {
		out[i] = testItem{id: fmt.Sprintf("%s-%d", prefix, start+i)}
	}
	return out
}

// fakeSource serves total generated items. Item IDs carry the sort field so tests can
// tell which request a slot came from.
type fakeSource struct {
	mu       sync.Mutex
	total    int
	fail     error
	extra    int
	requests []PageRequest
	hook     func(req PageRequest)
}

func (f *fakeSource) Fetch(ctx context.Context, req PageRequest) (*PageResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	total, fail, extra, hook := f.total, f.fail, f.extra, f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(req)
	}
	if fail != nil {
		return nil, fail
	}
	start, end := clampRange(req.FromIndex, req.FromIndex+req.Limit, total)
	return &PageResult{Items: makeItems(req.SortBy, start, end-start+extra), TotalCount: total}, nil
}

func (f *fakeSource) Requests() []PageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PageRequest(nil), f.requests...)
}

func (f *fakeSource) ResetRequests() {
	f.mu.Lock()
	f.requests = nil
	f.mu.Unlock()
}

func (f *fakeSource) SetFail(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}

type recordingHost struct {
	mu       sync.Mutex
	calls    int
	items    []Item
	last     Item
	creates  int
	searches []string
}

func (h *recordingHost) SelectionChanged(items []Item, last Item) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	h.items = items
	h.last = last
}

func (h *recordingHost) CreateRequested() {
	h.mu.Lock()
	h.creates++
	h.mu.Unlock()
}

func (h *recordingHost) SearchCommitted(text string) {
	h.mu.Lock()
	h.searches = append(h.searches, text)
	h.mu.Unlock()
}

func (h *recordingHost) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func testColumns() []Column {
	return []Column{
		{Field: "name", Title: "Name", Width: 200, MinWidth: 60, Enabled: true, Sortable: true},
		{Field: "size", Title: "Size", Width: 80, MinWidth: 40, Enabled: true, Sortable: true},
		{Field: "owner", Title: "Owner", Width: 120, MinWidth: 40, Enabled: false},
	}
}
