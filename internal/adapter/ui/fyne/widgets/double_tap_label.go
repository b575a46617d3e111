// Package widgets provides custom Fyne widgets for the TuneWave application.
package widgets

import (
	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// DoubleTapLabel is a label that plays its track when double-tapped.
// It is the cell of the sidebar track list.
type DoubleTapLabel struct {
	widget.Label
	doubleTapped func(index int)
	index        int
}

// NewDoubleTapLabel creates a new DoubleTapLabel with the given callback function.
// The callback is invoked when the label is double-tapped, passing the item index.
func NewDoubleTapLabel(doubleTapped func(index int)) *DoubleTapLabel {
	label := &DoubleTapLabel{
		doubleTapped: doubleTapped,
	}
	label.Truncation = fyneapp.TextTruncateEllipsis
	label.ExtendBaseWidget(label)
	return label
}

// DoubleTapped implements the fyne.DoubleTappable interface.
func (l *DoubleTapLabel) DoubleTapped(_ *fyneapp.PointEvent) {
	if l.doubleTapped != nil {
		l.doubleTapped(l.index)
	}
}

// Index returns the index associated with this label.
func (l *DoubleTapLabel) Index() int {
	return l.index
}

// SetIndex sets the index associated with this label.
// This is typically the position of the item in a list.
func (l *DoubleTapLabel) SetIndex(index int) {
	l.index = index
}

// SetTrack shows text, in bold when it is the track being played.
func (l *DoubleTapLabel) SetTrack(text string, current bool) {
	if l.TextStyle.Bold != current {
		l.TextStyle.Bold = current
		l.Importance = widget.MediumImportance
		if current {
			l.Importance = widget.HighImportance
		}
	}
	l.SetText(text)
}

var _ fyneapp.DoubleTappable = (*DoubleTapLabel)(nil)
