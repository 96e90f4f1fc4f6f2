package gui

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// StatusLevel represents the type of status being displayed
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusWarning
	StatusError
	// StatusProgress shows a spinner instead of an icon
	StatusProgress
)

// StatusBar shows the last load or error message on the left and the selection
// count on the right.
type StatusBar struct {
	widget.BaseWidget

	mu      sync.RWMutex
	level   StatusLevel
	message string

	icon      *widget.Icon
	label     *widget.Label
	spinner   *widget.Activity
	selection *widget.Label
}

// NewStatusBar creates a new status bar with default "Ready" message
func NewStatusBar() *StatusBar {
	sb := &StatusBar{level: StatusInfo, message: "Ready"}
	sb.label = widget.NewLabel("Ready")
	sb.label.TextStyle = fyne.TextStyle{Italic: true}
	sb.label.Truncation = fyne.TextTruncateEllipsis
	sb.icon = widget.NewIcon(theme.InfoIcon())
	sb.spinner = widget.NewActivity()
	sb.spinner.Hide()
	sb.selection = widget.NewLabel("")
	sb.ExtendBaseWidget(sb)
	return sb
}

// SetStatus updates the status message and level. Safe to call from any goroutine.
func (sb *StatusBar) SetStatus(message string, level StatusLevel) {
	sb.mu.Lock()
	sb.level = level
	sb.message = message
	sb.mu.Unlock()

	fyne.Do(func() {
		sb.label.SetText(message)
		sb.spinner.Stop()
		sb.spinner.Hide()
		sb.icon.Show()

		switch level {
		case StatusInfo:
			sb.icon.SetResource(theme.InfoIcon())
		case StatusWarning:
			sb.icon.SetResource(theme.WarningIcon())
		case StatusError:
			sb.icon.SetResource(theme.ErrorIcon())
		case StatusProgress:
			sb.icon.Hide()
			sb.spinner.Show()
			sb.spinner.Start()
		}
	})
}

func (sb *StatusBar) SetInfo(message string)     { sb.SetStatus(message, StatusInfo) }
func (sb *StatusBar) SetWarning(message string)  { sb.SetStatus(message, StatusWarning) }
func (sb *StatusBar) SetError(message string)    { sb.SetStatus(message, StatusError) }
func (sb *StatusBar) SetProgress(message string) { sb.SetStatus(message, StatusProgress) }

// SetSelection shows how many items are selected.
func (sb *StatusBar) SetSelection(count int) {
	text := ""
	if count > 0 {
		text = fmt.Sprintf("%d selected", count)
	}
	fyne.Do(func() {
		sb.selection.SetText(text)
	})
}

// GetMessage returns the current status message
func (sb *StatusBar) GetMessage() string {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.message
}

// CreateRenderer implements fyne.Widget
func (sb *StatusBar) CreateRenderer() fyne.WidgetRenderer {
	left := container.NewHBox(sb.icon, sb.spinner)
	content := container.NewBorder(nil, nil, left, sb.selection, sb.label)
	return widget.NewSimpleRenderer(content)
}
