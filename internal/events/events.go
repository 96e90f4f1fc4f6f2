// Package events provides the publish/subscribe bus that carries list notifications
// (selection, search, create requests, page loads) from the list engine to its hosts.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rescale/rescale-browse/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	EventLog              EventType = "log"
	EventSelectionChanged EventType = "selection_changed"
	EventCreateRequested  EventType = "create_requested"
	EventSearchCommitted  EventType = "search_committed"
	EventPageLoaded       EventType = "page_loaded"
	EventPageFailed       EventType = "page_failed"

	// EventConfigChanged is published when the API key or base URL changes;
	// open lists should reload with a new identity.
	EventConfigChanged EventType = "config_changed"
)

// LogLevel defines log severity levels
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// LogEvent represents log messages
type LogEvent struct {
	BaseEvent
	Level     LogLevel
	Message   string
	Component string
	Error     error
}

// SelectionEvent is published whenever the selected set of a list changes.
// IDs only covers materialized items; Count covers every selected index.
type SelectionEvent struct {
	BaseEvent
	ResourceKind string
	IDs          []string
	Count        int
	LastID       string
}

// CreateEvent asks the host to create a new resource in the current collection.
type CreateEvent struct {
	BaseEvent
	ResourceKind string
}

// SearchEvent carries a committed search string.
type SearchEvent struct {
	BaseEvent
	ResourceKind string
	Text         string
}

// PageEvent reports the outcome of one fetchPage call.
type PageEvent struct {
	BaseEvent
	ResourceKind string
	FromIndex    int
	Limit        int
	Loaded       int // items merged
	TotalCount   int
	Error        error
}

// ConfigChangedEvent represents configuration changes.
type ConfigChangedEvent struct {
	BaseEvent
	Source string // "direct_input", "env_var", "token_file"
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers without blocking.
// Events for full subscriber buffers are dropped and counted.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishLog is a convenience method for publishing log events
func (eb *EventBus) PublishLog(level LogLevel, message, component string, err error) {
	eb.Publish(&LogEvent{
		BaseEvent: BaseEvent{EventType: EventLog, Time: time.Now()},
		Level:     level,
		Message:   message,
		Component: component,
		Error:     err,
	})
}

// PublishPage is a convenience method for publishing page load outcomes.
// A non-nil err publishes EventPageFailed, otherwise EventPageLoaded.
func (eb *EventBus) PublishPage(kind string, from, limit, loaded, total int, err error) {
	eventType := EventPageLoaded
	if err != nil {
		eventType = EventPageFailed
	}
	eb.Publish(&PageEvent{
		BaseEvent:    BaseEvent{EventType: eventType, Time: time.Now()},
		ResourceKind: kind,
		FromIndex:    from,
		Limit:        limit,
		Loaded:       loaded,
		TotalCount:   total,
		Error:        err,
	})
}

// Unsubscribe removes a subscription channel from a specific event type
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to full buffers
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
