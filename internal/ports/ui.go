// Package ports define the UI interface for view abstraction.
// This interface allows the presenter to update the UI without depending on Fyne directly.
package ports

import (
	"time"

	"github.com/tejashwikalptaru/tunewave/internal/domain"
)

// UI is the interface for the user interface layer.
// This abstracts the Fyne UI implementation and allows for testing without a real UI.
//
// The presenter receives events from the event bus and calls these methods to update
// the view, keeping services, presentation logic and rendering apart.
//
// Thread-safety: All methods must be called from the main UI thread.
// The presenter hops onto it with fyne.Do.
type UI interface {
	// Track display

	// SetTrackInfo shows the title of the current track and the line below it
	// (the artist, or the queue position when the artist is unknown).
	SetTrackInfo(title, subtitle string)

	// SetAlbumArt shows the cover image. imageData holds raw JPEG or PNG bytes.
	SetAlbumArt(imageData []byte)

	// ClearAlbumArt restores the placeholder cover.
	ClearAlbumArt()

	// Transport state

	// SetPlayState switches the play/pause button.
	SetPlayState(playing bool)

	// SetProgress moves the seek slider and updates the time labels.
	SetProgress(position, duration time.Duration)

	// SetVolume updates the volume slider (0.0 to 1.0).
	SetVolume(volume float64)

	// SetMuteState updates the mute button.
	SetMuteState(muted bool)

	// SetLoopMode updates the loop button for none, all or one.
	SetLoopMode(mode domain.LoopMode)

	// SetShuffle updates the shuffle button.
	SetShuffle(enabled bool)

	// SetEqualizer moves the bass, mid, treble and gain sliders.
	SetEqualizer(settings domain.EqualizerSettings)

	// Track list

	// ShowTrackList replaces the sidebar list and highlights currentIndex (-1 for none).
	ShowTrackList(tracks []domain.MusicTrack, currentIndex int)

	// Notifications

	// ShowScanProgress shows an import in progress.
	ShowScanProgress(path string)

	// HideScanProgress hides the import indicator.
	HideScanProgress()

	// ShowError displays an error dialog.
	ShowError(title, message string)

	// ShowNotification displays a short non-blocking message.
	ShowNotification(title, message string)

	// Lifecycle

	// Run starts the UI event loop and blocks until the window closes.
	Run() error

	// Quit closes the application.
	Quit()
}
