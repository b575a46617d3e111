package fyne

import (
	"fmt"
	"slices"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/tunewave/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/tunewave/internal/domain"
)

// TrackList is the sidebar: a search entry above the queue.
// Double-tapping a row plays that track.
type TrackList struct {
	header      *widget.Label
	searchEntry *widget.Entry
	list        *widget.List
	content     fyneapp.CanvasObject

	// Data state
	queue        []domain.MusicTrack // Full queue
	data         []int               // Queue indices shown in the list (filtered view)
	currentIndex int                 // Index of the track being played

	// search returns the queue indices matching a query, best first
	search func(query string) []int

	// play is called with a queue index
	play func(index int)
}

// NewTrackList creates the sidebar.
func NewTrackList() *TrackList {
	l := &TrackList{currentIndex: -1}

	l.header = widget.NewLabel("No tracks")
	l.header.TextStyle = fyneapp.TextStyle{Bold: true}

	l.searchEntry = widget.NewEntry()
	l.searchEntry.SetPlaceHolder("Search...")
	l.searchEntry.OnChanged = func(string) {
		l.applyFilter()
	}

	l.list = widget.NewList(
		func() int {
			return len(l.data)
		},
		func() fyneapp.CanvasObject {
			return widgets.NewDoubleTapLabel(l.onCellDoubleTapped)
		},
		l.updateCell,
	)

	l.content = container.NewBorder(
		container.NewVBox(l.header, l.searchEntry), // Top
		nil, // Bottom
		nil, // Left
		nil, // Right
		l.list,
	)

	return l
}

// SetHandlers connects the list to the presenter.
func (l *TrackList) SetHandlers(search func(string) []int, play func(int)) {
	l.search = search
	l.play = play
}

// Content returns the canvas object to place in the window.
func (l *TrackList) Content() fyneapp.CanvasObject {
	return l.content
}

// Show replaces the queue and highlights currentIndex.
func (l *TrackList) Show(tracks []domain.MusicTrack, currentIndex int) {
	l.queue = tracks
	l.currentIndex = currentIndex

	switch len(tracks) {
	case 0:
		l.header.SetText("No tracks")
	case 1:
		l.header.SetText("1 track")
	default:
		l.header.SetText(fmt.Sprintf("%d tracks", len(tracks)))
	}

	l.applyFilter()

	if row := slices.Index(l.data, currentIndex); row >= 0 {
		l.list.ScrollTo(row)
	}
}

// applyFilter recomputes the visible rows from the search query.
func (l *TrackList) applyFilter() {
	query := l.searchEntry.Text
	if query == "" || l.search == nil {
		l.data = make([]int, len(l.queue))
		for i := range l.data {
			l.data[i] = i
		}
	} else {
		l.data = slices.DeleteFunc(l.search(query), func(i int) bool {
			return i < 0 || i >= len(l.queue)
		})
	}
	l.list.Refresh()
}

// updateCell updates a list cell with track information.
func (l *TrackList) updateCell(row widget.ListItemID, obj fyneapp.CanvasObject) {
	label, ok := obj.(*widgets.DoubleTapLabel)
	if !ok || row < 0 || row >= len(l.data) {
		return
	}

	index := l.data[row]
	label.SetIndex(index)
	label.SetTrack(trackLabel(l.queue[index]), index == l.currentIndex)
}

// onCellDoubleTapped handles double-tap events on list cells.
func (l *TrackList) onCellDoubleTapped(index int) {
	if index < 0 || index >= len(l.queue) || l.play == nil {
		return
	}
	l.play(index)
}

// trackLabel is the text of one row.
func trackLabel(track domain.MusicTrack) string {
	title := track.Title
	if title == "" {
		title = track.FilePath
	}
	if track.Artist == "" || track.Artist == domain.UnknownArtist {
		return title
	}
	return fmt.Sprintf("%s - %s", title, track.Artist)
}
