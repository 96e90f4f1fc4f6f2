// Package constants holds tuning values shared across the browser packages.
package constants

import (
	"time"
)

// HTTP transport timeouts used by the API client.
const (
	// HTTPDialTimeout - TCP connect timeout (30s)
	HTTPDialTimeout = 30 * time.Second

	// HTTPDialKeepAlive - keep-alive probe interval (30s)
	HTTPDialKeepAlive = 30 * time.Second

	// HTTPIdleConnTimeout - idle pooled connections are closed after this (90s)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - extended for slow corporate proxies (30s)
	HTTPTLSHandshakeTimeout = 30 * time.Second

	// HTTPExpectContinueTimeout - wait for 100-continue (1s)
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPClientTimeout - overall request timeout for listing calls (300s)
	HTTPClientTimeout = 300 * time.Second
)

// Event System
const (
	// EventBusDefaultBuffer - default buffer size for event channels (1000)
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - maximum buffer size for high-throughput scenarios (5000)
	EventBusMaxBuffer = 5000
)

// Remote listing pagination
const (
	// APIMaxPageSize - largest page_size the Rescale list endpoints accept
	APIMaxPageSize = 1000

	// DefaultPageSize - page_size used when the caller has no preference
	DefaultPageSize = 100
)

// List rendering
const (
	// TableRowHeight - fixed row height of the tabular layout, in device-independent pixels
	TableRowHeight = 28

	// DefaultGridColumns - tiles per row when the grid layout is first shown
	DefaultGridColumns = 4

	// MinGridColumns / MaxGridColumns bound the tiles-per-row slider
	MinGridColumns = 1
	MaxGridColumns = 12

	// LoadConcurrency - concurrent page fetches while materializing a full collection
	LoadConcurrency = 4

	// ViewportRefreshInterval - minimum time between lazy-load passes triggered by scrolling (100ms)
	ViewportRefreshInterval = 100 * time.Millisecond
)
