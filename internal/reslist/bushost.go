package reslist

import (
	"sync/atomic"
	"time"

	"github.com/rescale/rescale-browse/internal/events"
)

// BusHost publishes engine notifications on an event bus. Bind it to the controller
// it serves so selection events can report the full selected count, including
// indices whose items are not loaded yet.
type BusHost struct {
	bus  *events.EventBus
	kind string
	ctrl atomic.Pointer[Controller]
}

// NewBusHost returns a Host that publishes to bus, labelling events with kind.
func NewBusHost(bus *events.EventBus, kind string) *BusHost {
	return &BusHost{bus: bus, kind: kind}
}

// Bind attaches the controller used to count the selection.
func (h *BusHost) Bind(c *Controller) {
	h.ctrl.Store(c)
}

func (h *BusHost) SelectionChanged(items []Item, last Item) {
	ev := &events.SelectionEvent{
		BaseEvent:    events.BaseEvent{EventType: events.EventSelectionChanged, Time: time.Now()},
		ResourceKind: h.kind,
		IDs:          make([]string, 0, len(items)),
		Count:        len(items),
	}
	for _, it := range items {
		ev.IDs = append(ev.IDs, it.ID())
	}
	if last != nil {
		ev.LastID = last.ID()
	}
	if c := h.ctrl.Load(); c != nil {
		sel, _ := c.Selection()
		ev.Count = sel.Count()
	}
	h.bus.Publish(ev)
}

func (h *BusHost) CreateRequested() {
	h.bus.Publish(&events.CreateEvent{
		BaseEvent:    events.BaseEvent{EventType: events.EventCreateRequested, Time: time.Now()},
		ResourceKind: h.kind,
	})
}

func (h *BusHost) SearchCommitted(text string) {
	h.bus.Publish(&events.SearchEvent{
		BaseEvent:    events.BaseEvent{EventType: events.EventSearchCommitted, Time: time.Now()},
		ResourceKind: h.kind,
		Text:         text,
	})
}

// PageFetched publishes the outcome of a fetch. It matches Config.OnPage.
func (h *BusHost) PageFetched(req PageRequest, res *PageResult, err error) {
	loaded, total := 0, 0
	if res != nil {
		loaded, total = len(res.Items), res.TotalCount
	}
	h.bus.PublishPage(h.kind, req.FromIndex, req.Limit, loaded, total, err)
}
