package gui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/rescale/rescale-browse/internal/reslist"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		name  fyne.KeyName
		shift bool
		want  reslist.KeyEvent
		ok    bool
	}{
		{fyne.KeyUp, false, reslist.KeyEvent{Key: reslist.KeyArrowUp}, true},
		{fyne.KeyDown, true, reslist.KeyEvent{Key: reslist.KeyArrowDown, Shift: true}, true},
		{fyne.KeyLeft, false, reslist.KeyEvent{Key: reslist.KeyArrowLeft}, true},
		{fyne.KeyRight, false, reslist.KeyEvent{Key: reslist.KeyArrowRight}, true},
		{desktop.KeyShiftLeft, true, reslist.KeyEvent{Key: reslist.KeyShift, Shift: true}, true},
		{fyne.KeyReturn, false, reslist.KeyEvent{}, false},
	}

	for _, tt := range tests {
		got, ok := translateKey(tt.name, tt.shift)
		if ok != tt.ok {
			t.Errorf("translateKey(%s) ok = %v, want %v", tt.name, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("translateKey(%s) = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestTranslateModifiers(t *testing.T) {
	tests := []struct {
		in   fyne.KeyModifier
		want reslist.Modifiers
	}{
		{0, 0},
		{fyne.KeyModifierShift, reslist.ModShift},
		{fyne.KeyModifierControl, reslist.ModCtrl},
		{fyne.KeyModifierSuper, reslist.ModCtrl},
		{fyne.KeyModifierShift | fyne.KeyModifierControl, reslist.ModShift | reslist.ModCtrl},
		{fyne.KeyModifierAlt, 0},
	}

	for _, tt := range tests {
		if got := translateModifiers(tt.in); got != tt.want {
			t.Errorf("translateModifiers(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestColumnsLayout(t *testing.T) {
	l := &columnsLayout{widths: []float32{100, 50}}
	a, b, c := newSizedRect(10), newSizedRect(10), newSizedRect(10)

	l.Layout([]fyne.CanvasObject{a, b, c}, fyne.NewSize(400, 20))

	if a.Position().X != 0 || a.Size().Width != 100 {
		t.Errorf("first column at %v size %v", a.Position(), a.Size())
	}
	if b.Position().X != 100 || b.Size().Width != 50 {
		t.Errorf("second column at %v size %v", b.Position(), b.Size())
	}
	if c.Position().X != 150 || c.Size().Width != 250 {
		t.Errorf("trailing object should fill the rest, at %v size %v", c.Position(), c.Size())
	}
	if got := l.MinSize([]fyne.CanvasObject{a, b}); got.Width != 150 {
		t.Errorf("MinSize width = %v, want 150", got.Width)
	}
}

func TestParseArgs(t *testing.T) {
	a := parseArgs([]string{"--gui", "-c", "/tmp/x.csv", "--api-url", "eu.rescale.com", "--token-file"})
	if a.configFile != "/tmp/x.csv" {
		t.Errorf("configFile = %q", a.configFile)
	}
	if a.apiURL != "eu.rescale.com" {
		t.Errorf("apiURL = %q", a.apiURL)
	}
	if a.tokenFile != "" || a.apiKey != "" {
		t.Errorf("unexpected values: %+v", a)
	}

	if got := parseArgs(nil).configFile; got == "" {
		t.Error("expected the default config path")
	}
}
