package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rescale/rescale-browse/internal/events"
)

func TestComponentLoggerTagsOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("cli", nil).Component("reslist")
	logger.SetOutput(&buf)

	logger.Infof("loaded %d items", 25)

	out := buf.String()
	if !strings.Contains(out, "loaded 25 items") {
		t.Errorf("output %q missing message", out)
	}
	if !strings.Contains(out, "reslist") {
		t.Errorf("output %q missing component field", out)
	}
}

func TestWarnAndErrorMirrorToEventBus(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	ch := bus.Subscribe(events.EventLog)

	logger := NewLogger("gui", bus).Component("loader")
	logger.SetOutput(&bytes.Buffer{})

	logger.Debugf("not mirrored")
	logger.Warnf("total shrank from %d to %d", 10, 4)
	logger.Errorf(errors.New("status 502"), "page %d failed", 3)

	var got []*events.LogEvent
	for i := 0; i < 2; i++ {
		select {
		case ev := <-ch:
			got = append(got, ev.(*events.LogEvent))
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("expected 2 mirrored events, got %d", len(got))
		}
	}

	if got[0].Level != events.WarnLevel || got[0].Message != "total shrank from 10 to 4" {
		t.Errorf("unexpected warn event: %+v", got[0])
	}
	if got[1].Level != events.ErrorLevel || got[1].Error == nil || got[1].Component != "loader" {
		t.Errorf("unexpected error event: %+v", got[1])
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNopLogger()
	logger.Infof("nothing")
	logger.Errorf(errors.New("x"), "nothing")
	if logger.Output() == nil {
		t.Error("nop logger should expose a writer")
	}
}
