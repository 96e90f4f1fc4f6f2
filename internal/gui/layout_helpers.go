package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// HorizontalSpacer creates a fixed-width horizontal spacer
func HorizontalSpacer(width float32) fyne.CanvasObject {
	spacer := canvas.NewRectangle(nil) // Transparent
	spacer.SetMinSize(fyne.NewSize(width, 0))
	return spacer
}

func newSizedRect(height float32) *canvas.Rectangle {
	r := canvas.NewRectangle(nil)
	r.SetMinSize(fyne.NewSize(0, height))
	return r
}

// NewPrimaryButtonWithIcon creates a button with an icon and white text on blue background.
// Fyne only uses ColorNameForegroundOnPrimary for HighImportance buttons.
func NewPrimaryButtonWithIcon(label string, icon fyne.Resource, tapped func()) *widget.Button {
	btn := widget.NewButtonWithIcon(label, icon, tapped)
	btn.Importance = widget.HighImportance
	return btn
}

// fixedWidthLayout is a custom layout that constrains width to a fixed value
type fixedWidthLayout struct {
	width float32
}

func (l *fixedWidthLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) == 0 {
		return fyne.NewSize(l.width, 0)
	}
	minHeight := objects[0].MinSize().Height
	return fyne.NewSize(l.width, minHeight)
}

func (l *fixedWidthLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	for _, obj := range objects {
		obj.Resize(fyne.NewSize(l.width, size.Height))
		obj.Move(fyne.NewPos(0, 0))
	}
}

// columnsLayout places objects side by side using the table column widths. Objects
// past the last width share what is left of the row.
type columnsLayout struct {
	widths []float32
}

func (l *columnsLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	var w, h float32
	for i, obj := range objects {
		ms := obj.MinSize()
		if i < len(l.widths) {
			w += l.widths[i]
		} else {
			w += ms.Width
		}
		h = max(h, ms.Height)
	}
	return fyne.NewSize(w, h)
}

func (l *columnsLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	var x float32
	extra := len(objects) - len(l.widths)
	for i, obj := range objects {
		w := float32(0)
		if i < len(l.widths) {
			w = l.widths[i]
		} else if extra > 0 {
			w = max(size.Width-x, 0) / float32(len(objects)-i)
		}
		obj.Move(fyne.NewPos(x, 0))
		obj.Resize(fyne.NewSize(w, size.Height))
		x += w
	}
}
