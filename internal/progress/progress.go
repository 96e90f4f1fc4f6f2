// Package progress reports list loading progress on the terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/rescale/rescale-browse/internal/events"
)

// Reporter is the interface for reporting item counts as pages arrive.
type Reporter interface {
	Start(total int64, description string)
	Update(current int64)
	Finish()
	Error(err error)
	SetDescription(desc string)
}

// CLIProgress implements Reporter with a progress bar on stderr.
type CLIProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewCLIProgress creates a new CLI progress reporter.
func NewCLIProgress(out io.Writer) *CLIProgress {
	return &CLIProgress{out: out}
}

// Start initializes the progress bar with the item total and description.
func (p *CLIProgress) Start(total int64, description string) {
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("items"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(barWidth()),
		progressbar.OptionThrottle(100),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(p.out, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update moves the bar to current.
func (p *CLIProgress) Update(current int64) {
	if p.bar != nil {
		_ = p.bar.Set64(current)
	}
}

// Finish completes the progress bar.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Error displays an error message.
func (p *CLIProgress) Error(err error) {
	if err != nil {
		fmt.Fprintf(p.out, "\nError: %v\n", err)
	}
}

// SetDescription updates the progress bar description.
func (p *CLIProgress) SetDescription(desc string) {
	if p.bar != nil {
		p.bar.Describe(desc)
	}
}

// NoOpProgress is a progress reporter that does nothing (for redirected output).
type NoOpProgress struct{}

func (NoOpProgress) Start(total int64, description string) {}
func (NoOpProgress) Update(current int64)                  {}
func (NoOpProgress) Finish()                               {}
func (NoOpProgress) Error(err error)                       {}
func (NoOpProgress) SetDescription(desc string)            {}

// New returns a bar when stderr is a terminal and a no-op reporter otherwise.
func New() Reporter {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return NoOpProgress{}
	}
	return NewCLIProgress(os.Stderr)
}

func barWidth() int {
	w, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || w <= 0 {
		return 40
	}
	return min(max(w/3, 20), 60)
}

// Watch feeds page events for kind into r until the returned stop function is called.
// The bar starts on the first page that reports a total; stop finishes it.
func Watch(bus *events.EventBus, kind string, r Reporter) (stop func()) {
	loaded := bus.Subscribe(events.EventPageLoaded)
	failed := bus.Subscribe(events.EventPageFailed)
	done := make(chan struct{})
	var wg sync.WaitGroup

	var (
		count   int64
		started bool
	)
	onLoaded := func(ev events.Event) {
		page, isPage := ev.(*events.PageEvent)
		if !isPage || page.ResourceKind != kind {
			return
		}
		if !started {
			r.Start(int64(page.TotalCount), "Loading "+kind)
			started = true
		}
		count += int64(page.Loaded)
		r.Update(min(count, int64(page.TotalCount)))
	}
	onFailed := func(ev events.Event) {
		if page, isPage := ev.(*events.PageEvent); isPage && page.ResourceKind == kind {
			r.Error(page.Error)
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				// Pages published before stop are still buffered.
				for {
					select {
					case ev, ok := <-loaded:
						if !ok {
							return
						}
						onLoaded(ev)
					case ev, ok := <-failed:
						if !ok {
							return
						}
						onFailed(ev)
					default:
						return
					}
				}
			case ev, ok := <-loaded:
				if !ok {
					return
				}
				onLoaded(ev)
			case ev, ok := <-failed:
				if !ok {
					return
				}
				onFailed(ev)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
			bus.Unsubscribe(events.EventPageLoaded, loaded)
			bus.Unsubscribe(events.EventPageFailed, failed)
			r.Finish()
		})
	}
}
