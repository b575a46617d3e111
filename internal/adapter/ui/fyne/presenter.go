// Package fyne provides Fyne UI adapter implementations.
// This package implements the UI layer using the Fyne toolkit.
package fyne

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/tunewave/internal/domain"
	"github.com/tejashwikalptaru/tunewave/internal/ports"
	"github.com/tejashwikalptaru/tunewave/internal/service"
)

const (
	// SeekStep is how far the arrow keys move the playback position.
	SeekStep = 5 * time.Second

	// VolumeStep is how much the arrow keys change the volume.
	VolumeStep = 0.1
)

// Presenter implements the Presenter pattern (MVP architecture).
// It coordinates between services and the UI, handling all event-driven updates.
//
// Responsibilities:
// - Subscribe to events from the event bus
// - Map domain events to view updates on the UI goroutine
// - Translate UI commands to service method calls
//
// Event handlers run on the publisher's goroutine, often while a service holds its
// lock, so they only read the event payload and hand the view update to the UI
// goroutine. They never call back into a service.
type Presenter struct {
	// Dependencies
	logger *slog.Logger

	// Services (injected)
	playbackService *service.PlaybackService
	playlistService *service.PlaylistService
	libraryService  *service.LibraryService

	eventBus ports.EventBus
	view     ports.UI

	// do runs a view update on the UI goroutine
	do func(func())

	// Presentation state
	currentTrack *domain.MusicTrack
	currentIndex int
	queueLen     int

	// Background imports
	ctx     context.Context
	cancel  context.CancelFunc
	imports sync.WaitGroup

	subscriptions []domain.SubscriptionID

	// Concurrency control
	mu           sync.Mutex
	shutdownOnce sync.Once
}

// NewPresenter creates a new presenter and syncs the view with the services.
func NewPresenter(
	logger *slog.Logger,
	playbackService *service.PlaybackService,
	playlistService *service.PlaylistService,
	libraryService *service.LibraryService,
	eventBus ports.EventBus,
	view ports.UI,
) *Presenter {
	return newPresenter(logger, playbackService, playlistService, libraryService, eventBus, view, fyneapp.Do)
}

func newPresenter(
	logger *slog.Logger,
	playbackService *service.PlaybackService,
	playlistService *service.PlaylistService,
	libraryService *service.LibraryService,
	eventBus ports.EventBus,
	view ports.UI,
	do func(func()),
) *Presenter {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Presenter{
		logger:          logger,
		playbackService: playbackService,
		playlistService: playlistService,
		libraryService:  libraryService,
		eventBus:        eventBus,
		view:            view,
		do:              do,
		currentIndex:    -1,
		ctx:             ctx,
		cancel:          cancel,
	}

	p.subscribeToEvents()
	p.syncInitialState()

	return p
}

// subscribeToEvents subscribes to all relevant events from the event bus.
func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		// Playback events
		domain.EventTrackLoaded:    p.onTrackLoaded,
		domain.EventTrackStarted:   p.onTrackStarted,
		domain.EventTrackPaused:    p.onTrackPaused,
		domain.EventTrackStopped:   p.onTrackStopped,
		domain.EventTrackCompleted: p.onTrackCompleted,
		domain.EventTrackProgress:  p.onTrackProgress,
		domain.EventTrackError:     p.onTrackError,

		// Volume and effects
		domain.EventVolumeChanged:    p.onVolumeChanged,
		domain.EventMuteToggled:      p.onMuteToggled,
		domain.EventEqualizerChanged: p.onEqualizerChanged,

		// Playlist events
		domain.EventQueueChanged:    p.onQueueChanged,
		domain.EventLoopModeChanged: p.onLoopModeChanged,
		domain.EventShuffleToggled:  p.onShuffleToggled,

		// Scan events
		domain.EventScanStarted:   p.onScanStarted,
		domain.EventScanCompleted: p.onScanCompleted,
		domain.EventScanCancelled: p.onScanCancelled,
	}

	for eventType, handler := range subscriptions {
		p.subscriptions = append(p.subscriptions, p.eventBus.Subscribe(eventType, handler))
	}
}

// syncInitialState synchronizes the view with the current application state.
func (p *Presenter) syncInitialState() {
	state := p.playbackService.GetState()
	queue := p.playlistService.GetQueue()
	index := p.playlistService.GetCurrentIndex()
	loop := p.playlistService.LoopMode()
	shuffled := p.playlistService.IsShuffled()

	p.mu.Lock()
	p.currentTrack = state.CurrentTrack
	p.currentIndex = index
	p.queueLen = len(queue)
	title, subtitle := p.trackInfo()
	p.mu.Unlock()

	p.do(func() {
		p.view.SetVolume(state.Volume)
		p.view.SetMuteState(state.IsMuted)
		p.view.SetEqualizer(state.Equalizer)
		p.view.SetLoopMode(loop)
		p.view.SetShuffle(shuffled)
		p.view.ShowTrackList(queue, index)
		p.view.SetPlayState(state.Status == domain.StatusPlaying)

		if state.CurrentTrack == nil {
			return
		}
		p.view.SetTrackInfo(title, subtitle)
		p.showAlbumArt(*state.CurrentTrack)
		p.view.SetProgress(state.Position, state.Duration)
	})
}

// trackInfo returns the two lines shown for the current track (caller must hold lock).
// A track without artist shows its queue position instead.
func (p *Presenter) trackInfo() (title, subtitle string) {
	if p.currentTrack == nil {
		return "", ""
	}

	title = p.currentTrack.Title
	subtitle = p.currentTrack.Artist
	if subtitle == "" || subtitle == domain.UnknownArtist {
		subtitle = ""
		if p.currentIndex >= 0 && p.queueLen > 0 {
			subtitle = fmt.Sprintf("Track %d of %d", p.currentIndex+1, p.queueLen)
		}
	}
	return title, subtitle
}

func (p *Presenter) showAlbumArt(track domain.MusicTrack) {
	if track.HasAlbumArt() {
		p.view.SetAlbumArt(track.AlbumArt)
	} else {
		p.view.ClearAlbumArt()
	}
}

// Event handlers

func (p *Presenter) onTrackLoaded(event domain.Event) {
	e, ok := event.(domain.TrackLoadedEvent)
	if !ok {
		return
	}

	p.mu.Lock()
	track := e.Track
	p.currentTrack = &track
	p.currentIndex = e.Index
	title, subtitle := p.trackInfo()
	p.mu.Unlock()

	p.do(func() {
		p.view.SetTrackInfo(title, subtitle)
		p.showAlbumArt(track)
		p.view.SetProgress(0, e.Duration)
		p.view.SetPlayState(false)
	})
}

func (p *Presenter) onTrackStarted(domain.Event) {
	p.do(func() { p.view.SetPlayState(true) })
}

func (p *Presenter) onTrackPaused(domain.Event) {
	p.do(func() { p.view.SetPlayState(false) })
}

func (p *Presenter) onTrackStopped(domain.Event) {
	p.do(func() { p.view.SetPlayState(false) })
}

func (p *Presenter) onTrackCompleted(domain.Event) {
	// The next track, if any, is loaded by the playlist service
	p.do(func() { p.view.SetPlayState(false) })
}

func (p *Presenter) onTrackProgress(event domain.Event) {
	e, ok := event.(domain.TrackProgressEvent)
	if !ok {
		return
	}

	p.do(func() { p.view.SetProgress(e.Position, e.Duration) })
}

func (p *Presenter) onTrackError(event domain.Event) {
	e, ok := event.(domain.TrackErrorEvent)
	if !ok {
		return
	}

	p.logger.Warn("track failed", slog.String("file_path", e.Track.FilePath), slog.Any("error", e.Err))

	p.do(func() {
		p.view.SetPlayState(false)
		p.view.ShowError("Playback Error", fmt.Sprintf("Cannot play %s: %v", e.Track.Title, e.Err))
	})
}

func (p *Presenter) onVolumeChanged(event domain.Event) {
	e, ok := event.(domain.VolumeChangedEvent)
	if !ok {
		return
	}

	p.do(func() { p.view.SetVolume(e.Volume) })
}

func (p *Presenter) onMuteToggled(event domain.Event) {
	e, ok := event.(domain.MuteToggledEvent)
	if !ok {
		return
	}

	p.do(func() { p.view.SetMuteState(e.Muted) })
}

func (p *Presenter) onEqualizerChanged(event domain.Event) {
	e, ok := event.(domain.EqualizerChangedEvent)
	if !ok {
		return
	}

	p.do(func() { p.view.SetEqualizer(e.Settings) })
}

func (p *Presenter) onQueueChanged(event domain.Event) {
	e, ok := event.(domain.QueueChangedEvent)
	if !ok {
		return
	}

	p.mu.Lock()
	p.queueLen = len(e.Queue)
	p.currentIndex = e.Index
	title, subtitle := p.trackInfo()
	hasTrack := p.currentTrack != nil
	p.mu.Unlock()

	p.do(func() {
		p.view.ShowTrackList(e.Queue, e.Index)
		if hasTrack {
			p.view.SetTrackInfo(title, subtitle)
		}
	})
}

func (p *Presenter) onLoopModeChanged(event domain.Event) {
	e, ok := event.(domain.LoopModeChangedEvent)
	if !ok {
		return
	}

	p.do(func() { p.view.SetLoopMode(e.Mode) })
}

func (p *Presenter) onShuffleToggled(event domain.Event) {
	e, ok := event.(domain.ShuffleToggledEvent)
	if !ok {
		return
	}

	p.do(func() { p.view.SetShuffle(e.Enabled) })
}

func (p *Presenter) onScanStarted(event domain.Event) {
	e, ok := event.(domain.ScanStartedEvent)
	if !ok {
		return
	}

	p.do(func() { p.view.ShowScanProgress(e.Path) })
}

func (p *Presenter) onScanCompleted(event domain.Event) {
	e, ok := event.(domain.ScanCompletedEvent)
	if !ok {
		return
	}

	message := fmt.Sprintf("Found %d tracks", len(e.Tracks))
	p.do(func() {
		p.view.HideScanProgress()
		p.view.ShowNotification("Import Complete", message)
	})
}

func (p *Presenter) onScanCancelled(domain.Event) {
	p.do(func() {
		p.view.HideScanProgress()
		p.view.ShowNotification("Import Cancelled", "Import was cancelled")
	})
}

// UI Command handlers (called by UI)

// OnPlayPauseClicked toggles playback. With nothing loaded it starts the first track.
func (p *Presenter) OnPlayPauseClicked() {
	err := p.playbackService.TogglePlayPause()
	if errors.Is(err, domain.ErrInvalidTrackHandle) {
		if len(p.playlistService.GetQueue()) == 0 {
			return
		}
		err = p.playlistService.PlayAt(max(p.playlistService.GetCurrentIndex(), 0))
	}
	p.report("play/pause", err)
}

// OnNextClicked plays the next track. Reaching the end of the queue is not an error.
func (p *Presenter) OnNextClicked() {
	err := p.playlistService.Next()
	if errors.Is(err, domain.ErrEndOfQueue) || errors.Is(err, domain.ErrQueueEmpty) {
		p.logger.Debug("no next track", slog.Any("error", err))
		return
	}
	p.report("next track", err)
}

// OnPreviousClicked restarts the current track or plays the previous one.
func (p *Presenter) OnPreviousClicked() {
	err := p.playlistService.Previous()
	if errors.Is(err, domain.ErrQueueEmpty) {
		return
	}
	p.report("previous track", err)
}

// OnShuffleClicked toggles shuffle.
func (p *Presenter) OnShuffleClicked() {
	p.playlistService.ToggleShuffle()
}

// OnLoopClicked cycles the loop mode.
func (p *Presenter) OnLoopClicked() {
	p.playlistService.CycleLoop()
}

// OnMuteClicked toggles mute.
func (p *Presenter) OnMuteClicked() {
	p.report("mute", p.playbackService.ToggleMute())
}

// OnVolumeChanged handles volume slider changes (0.0 to 1.0).
func (p *Presenter) OnVolumeChanged(volume float64) {
	p.report("volume change", p.playbackService.SetVolume(volume))
}

// OnVolumeStep changes the volume by delta, clamped to [0, 1].
func (p *Presenter) OnVolumeStep(delta float64) {
	volume := min(max(p.playbackService.GetVolume()+delta, 0), 1)
	p.OnVolumeChanged(volume)
}

// OnSeekRequested handles seek requests from the progress slider.
func (p *Presenter) OnSeekRequested(position time.Duration) {
	err := p.playbackService.Seek(position)
	if errors.Is(err, domain.ErrInvalidTrackHandle) {
		return
	}
	p.report("seek", err)
}

// OnSeekStep moves the position by delta, clamped to the track.
func (p *Presenter) OnSeekStep(delta time.Duration) {
	err := p.playbackService.SeekBy(delta)
	if errors.Is(err, domain.ErrInvalidTrackHandle) {
		return
	}
	p.report("seek", err)
}

// OnEQChanged sets the gain of one equalizer band in dB.
func (p *Presenter) OnEQChanged(band domain.EQBand, gainDB float64) {
	p.report("equalizer", p.playbackService.SetEQ(band, gainDB))
}

// OnEQResetClicked flattens the equalizer and restores the master gain.
func (p *Presenter) OnEQResetClicked() {
	p.report("reset equalizer", p.playbackService.ResetEqualizer())
}

// OnGainChanged sets the master gain in percent.
func (p *Presenter) OnGainChanged(percent float64) {
	p.report("gain", p.playbackService.SetGain(percent))
}

// OnTrackSelected plays the queue entry at index.
func (p *Presenter) OnTrackSelected(index int) {
	p.report("select track", p.playlistService.PlayAt(index))
}

// OnFilesOpened imports the given files in the background and appends them to the queue.
func (p *Presenter) OnFilesOpened(filePaths []string) {
	p.runImport(func() ([]domain.MusicTrack, error) {
		return p.libraryService.ImportFiles(filePaths)
	}, func(tracks []domain.MusicTrack) error {
		return p.playlistService.Add(tracks...)
	})
}

// OnFolderOpened imports a folder in the background and replaces the queue with it.
func (p *Presenter) OnFolderOpened(folderPath string) {
	p.runImport(func() ([]domain.MusicTrack, error) {
		return p.libraryService.ImportFolder(p.ctx, folderPath)
	}, func(tracks []domain.MusicTrack) error {
		return p.playlistService.Replace(tracks)
	})
}

// OnDropped imports dropped files and folders in the background and replaces
// the queue with them. Folders are walked recursively; loose files keep their
// drop order and follow the folders.
func (p *Presenter) OnDropped(paths []string) {
	var folders, files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		switch {
		case err != nil:
			p.logger.Warn("skipping dropped path", slog.String("path", path), slog.Any("error", err))
		case info.IsDir():
			folders = append(folders, path)
		default:
			files = append(files, path)
		}
	}
	if len(folders) == 0 && len(files) == 0 {
		return
	}

	p.runImport(func() ([]domain.MusicTrack, error) {
		var tracks []domain.MusicTrack
		for _, folder := range folders {
			found, err := p.libraryService.ImportFolder(p.ctx, folder)
			if err != nil {
				return nil, err
			}
			tracks = append(tracks, found...)
		}
		if len(files) > 0 {
			found, err := p.libraryService.ImportFiles(files)
			if err != nil {
				return nil, err
			}
			tracks = append(tracks, found...)
		}
		return tracks, nil
	}, func(tracks []domain.MusicTrack) error {
		return p.playlistService.Replace(tracks)
	})
}

// OnCancelImport cancels a running import.
func (p *Presenter) OnCancelImport() {
	if err := p.libraryService.CancelScan(); err != nil {
		p.logger.Debug("nothing to cancel", slog.Any("error", err))
	}
}

func (p *Presenter) runImport(
	read func() ([]domain.MusicTrack, error),
	apply func([]domain.MusicTrack) error,
) {
	p.imports.Add(1)
	go func() {
		defer p.imports.Done()

		tracks, err := read()
		switch {
		case errors.Is(err, domain.ErrScanCancelled):
			return
		case err != nil:
			p.report("import", err)
			return
		case len(tracks) == 0:
			p.do(func() {
				p.view.ShowNotification("Nothing to Play", "No supported audio files were found")
			})
			return
		}

		p.report("import", apply(tracks))
	}()
}

// Search returns the queue indices matching query, best first.
func (p *Presenter) Search(query string) []int {
	return p.playlistService.Search(query)
}

// report logs a failed command and shows it to the user.
func (p *Presenter) report(action string, err error) {
	if err == nil {
		return
	}

	p.logger.Error(action+" failed", slog.Any("error", err))
	p.do(func() {
		p.view.ShowError("Error", fmt.Sprintf("Failed to %s: %v", action, err))
	})
}

// Shutdown unsubscribes from events and waits for background imports.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		for _, id := range p.subscriptions {
			p.eventBus.Unsubscribe(id)
		}
		p.subscriptions = nil

		p.cancel()
		p.imports.Wait()
	})
}
