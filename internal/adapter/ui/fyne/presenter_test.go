package fyne

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunewave/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/tunewave/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunewave/internal/adapter/metadata"
	"github.com/tejashwikalptaru/tunewave/internal/domain"
	"github.com/tejashwikalptaru/tunewave/internal/logger"
	"github.com/tejashwikalptaru/tunewave/internal/ports"
	"github.com/tejashwikalptaru/tunewave/internal/service"
	"github.com/tejashwikalptaru/tunewave/internal/testutil"
)

// viewState is what the view currently shows.
type viewState struct {
	title, subtitle string
	hasArt          bool
	playing         bool
	position        time.Duration
	duration        time.Duration
	volume          float64
	muted           bool
	loop            domain.LoopMode
	shuffle         bool
	eq              domain.EqualizerSettings
	tracks          []domain.MusicTrack
	currentIndex    int
	scanning        bool
	errors          []string
	notifications   []string
}

// fakeView records what the presenter shows.
type fakeView struct {
	mu    sync.Mutex
	state viewState
}

func (v *fakeView) update(fn func(s *viewState)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(&v.state)
}

func (v *fakeView) SetTrackInfo(title, subtitle string) {
	v.update(func(s *viewState) { s.title, s.subtitle = title, subtitle })
}

func (v *fakeView) SetAlbumArt([]byte) { v.update(func(s *viewState) { s.hasArt = true }) }
func (v *fakeView) ClearAlbumArt()     { v.update(func(s *viewState) { s.hasArt = false }) }

func (v *fakeView) SetPlayState(playing bool) {
	v.update(func(s *viewState) { s.playing = playing })
}

func (v *fakeView) SetProgress(position, duration time.Duration) {
	v.update(func(s *viewState) { s.position, s.duration = position, duration })
}

func (v *fakeView) SetVolume(volume float64) {
	v.update(func(s *viewState) { s.volume = volume })
}

func (v *fakeView) SetMuteState(muted bool) {
	v.update(func(s *viewState) { s.muted = muted })
}

func (v *fakeView) SetLoopMode(mode domain.LoopMode) {
	v.update(func(s *viewState) { s.loop = mode })
}

func (v *fakeView) SetShuffle(enabled bool) {
	v.update(func(s *viewState) { s.shuffle = enabled })
}

func (v *fakeView) SetEqualizer(settings domain.EqualizerSettings) {
	v.update(func(s *viewState) { s.eq = settings })
}

func (v *fakeView) ShowTrackList(tracks []domain.MusicTrack, currentIndex int) {
	v.update(func(s *viewState) { s.tracks, s.currentIndex = tracks, currentIndex })
}

func (v *fakeView) ShowScanProgress(string) { v.update(func(s *viewState) { s.scanning = true }) }
func (v *fakeView) HideScanProgress()       { v.update(func(s *viewState) { s.scanning = false }) }

func (v *fakeView) ShowError(_, message string) {
	v.update(func(s *viewState) { s.errors = append(s.errors, message) })
}

func (v *fakeView) ShowNotification(title, _ string) {
	v.update(func(s *viewState) { s.notifications = append(s.notifications, title) })
}

func (v *fakeView) Run() error { return nil }
func (v *fakeView) Quit()      {}

// snapshot returns a copy of the state taken under the lock.
func (v *fakeView) snapshot() viewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

var _ ports.UI = (*fakeView)(nil)

type presenterFixture struct {
	presenter *Presenter
	view      *fakeView
	playlist  *service.PlaylistService
	bus       *eventbus.SyncEventBus
}

// Helper to create a presenter over real services and the mock engine
func newTestPresenter(t *testing.T) presenterFixture {
	t.Helper()

	log := logger.NewTestLogger()
	engine := mock.NewEngine()
	require.NoError(t, engine.Initialize(44100, 512))
	bus := eventbus.NewSyncEventBus()

	playback := service.NewPlaybackService(log, engine, bus)
	playlist := service.NewPlaylistService(log, playback, bus, nil)
	library := service.NewLibraryService(log, metadata.NewReader(nil), bus)

	view := &fakeView{}
	presenter := newPresenter(log, playback, playlist, library, bus, view, func(fn func()) { fn() })

	t.Cleanup(func() { testutil.VerifyNoLeaks(t) })
	t.Cleanup(func() {
		presenter.Shutdown()
		_ = library.Shutdown()
		_ = playlist.Shutdown()
		_ = playback.Shutdown()
		_ = engine.Shutdown()
	})

	return presenterFixture{presenter: presenter, view: view, playlist: playlist, bus: bus}
}

func tracksWithArtist(artist string, titles ...string) []domain.MusicTrack {
	tracks := make([]domain.MusicTrack, len(titles))
	for i, title := range titles {
		tracks[i] = domain.MusicTrack{
			ID:       title,
			FilePath: "/music/" + title + ".mp3",
			Title:    title,
			Artist:   artist,
		}
	}
	return tracks
}

func TestPresenter_SyncInitialState(t *testing.T) {
	f := newTestPresenter(t)

	view := f.view.snapshot()
	assert.InDelta(t, service.DefaultVolume, view.volume, 1e-9)
	assert.Equal(t, domain.LoopNone, view.loop)
	assert.False(t, view.shuffle)
	assert.Equal(t, domain.DefaultEqualizer(), view.eq)
	assert.Empty(t, view.tracks)
	assert.Equal(t, -1, view.currentIndex)
}

func TestPresenter_FolderImportReplacesQueue(t *testing.T) {
	f := newTestPresenter(t)

	dir := t.TempDir()
	for _, name := range []string{"10 - Last.mp3", "2 - First.mp3", "cover.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	f.presenter.OnFolderOpened(dir)
	f.presenter.imports.Wait()

	view := f.view.snapshot()
	require.Len(t, view.tracks, 2)
	assert.Equal(t, "First", view.tracks[0].Title)
	assert.Equal(t, 0, view.currentIndex)
	assert.Equal(t, "First", view.title)
	assert.Equal(t, "Track 1 of 2", view.subtitle, "unknown artist shows the queue position")
	assert.Equal(t, mock.DefaultDuration, view.duration)
	assert.False(t, view.playing, "a replaced queue is loaded, not started")
	assert.False(t, view.scanning)
	assert.Contains(t, view.notifications, "Import Complete")
	assert.Empty(t, view.errors)
}

func TestPresenter_EmptyImportNotifies(t *testing.T) {
	f := newTestPresenter(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o600))

	f.presenter.OnFolderOpened(dir)
	f.presenter.imports.Wait()

	view := f.view.snapshot()
	assert.Empty(t, view.tracks)
	assert.Contains(t, view.notifications, "Nothing to Play")
}

func TestPresenter_TrackInfoShowsArtist(t *testing.T) {
	f := newTestPresenter(t)

	require.NoError(t, f.playlist.Replace(tracksWithArtist("The Band", "One", "Two")))
	f.presenter.OnNextClicked()

	view := f.view.snapshot()
	assert.Equal(t, "Two", view.title)
	assert.Equal(t, "The Band", view.subtitle)
	assert.Equal(t, 1, view.currentIndex)
	assert.True(t, view.playing)
	assert.False(t, view.hasArt)
}

func TestPresenter_PlayPause(t *testing.T) {
	f := newTestPresenter(t)

	// Nothing queued: nothing happens
	f.presenter.OnPlayPauseClicked()
	assert.False(t, f.view.snapshot().playing)
	assert.Empty(t, f.view.snapshot().errors)

	require.NoError(t, f.playlist.Add(tracksWithArtist("", "Solo")...))

	f.presenter.OnPlayPauseClicked()
	assert.True(t, f.view.snapshot().playing)

	f.presenter.OnPlayPauseClicked()
	assert.False(t, f.view.snapshot().playing)
}

func TestPresenter_NextAtEndIsSilent(t *testing.T) {
	f := newTestPresenter(t)

	f.presenter.OnNextClicked()
	f.presenter.OnPreviousClicked()

	require.NoError(t, f.playlist.Replace(tracksWithArtist("", "Only")))
	f.presenter.OnNextClicked()

	assert.Empty(t, f.view.snapshot().errors)
}

func TestPresenter_ErrorsAreShown(t *testing.T) {
	f := newTestPresenter(t)

	f.presenter.OnTrackSelected(5)

	assert.Len(t, f.view.snapshot().errors, 1)
}

func TestPresenter_Volume(t *testing.T) {
	f := newTestPresenter(t)

	f.presenter.OnVolumeStep(VolumeStep)
	assert.InDelta(t, 0.9, f.view.snapshot().volume, 1e-9)

	f.presenter.OnVolumeStep(0.5)
	assert.InDelta(t, 1.0, f.view.snapshot().volume, 1e-9)

	f.presenter.OnVolumeChanged(0.25)
	assert.InDelta(t, 0.25, f.view.snapshot().volume, 1e-9)

	f.presenter.OnMuteClicked()
	assert.True(t, f.view.snapshot().muted)
}

func TestPresenter_LoopAndShuffle(t *testing.T) {
	f := newTestPresenter(t)

	f.presenter.OnLoopClicked()
	assert.Equal(t, domain.LoopAll, f.view.snapshot().loop)
	f.presenter.OnLoopClicked()
	assert.Equal(t, domain.LoopOne, f.view.snapshot().loop)

	f.presenter.OnShuffleClicked()
	assert.True(t, f.view.snapshot().shuffle)
}

func TestPresenter_Equalizer(t *testing.T) {
	f := newTestPresenter(t)

	f.presenter.OnEQChanged(domain.EQBass, 6)
	f.presenter.OnEQChanged(domain.EQTreble, -3)
	f.presenter.OnGainChanged(150)

	eq := f.view.snapshot().eq
	assert.InDelta(t, 6, eq.BassDB, 1e-9)
	assert.InDelta(t, -3, eq.TrebleDB, 1e-9)
	assert.InDelta(t, 150, eq.GainPct, 1e-9)

	f.presenter.OnEQChanged(domain.EQMid, 40)
	assert.Len(t, f.view.snapshot().errors, 1, "out of range gain is reported")
}

func TestPresenter_EqualizerReset(t *testing.T) {
	f := newTestPresenter(t)

	f.presenter.OnEQChanged(domain.EQBass, 9)
	f.presenter.OnEQChanged(domain.EQMid, -4)
	f.presenter.OnGainChanged(40)
	require.NotEqual(t, domain.DefaultEqualizer(), f.view.snapshot().eq)

	f.presenter.OnEQResetClicked()

	view := f.view.snapshot()
	assert.Equal(t, domain.DefaultEqualizer(), view.eq, "sliders show flat bands and 100% gain")
	assert.Empty(t, view.errors)
}

func TestPresenter_DropFolderAndFile(t *testing.T) {
	f := newTestPresenter(t)

	dir := t.TempDir()
	for _, name := range []string{"2 - Second.mp3", "1 - First.mp3", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	loose := filepath.Join(t.TempDir(), "Loose.wav")
	require.NoError(t, os.WriteFile(loose, nil, 0o600))

	require.NoError(t, f.playlist.Replace(tracksWithArtist("", "Old")))

	f.presenter.OnDropped([]string{dir, loose, filepath.Join(dir, "missing")})
	f.presenter.imports.Wait()

	view := f.view.snapshot()
	require.Len(t, view.tracks, 3, "the drop replaces the queue")
	assert.Equal(t, "First", view.tracks[0].Title)
	assert.Equal(t, "Second", view.tracks[1].Title)
	assert.Equal(t, "Loose", view.tracks[2].Title)
	assert.Equal(t, 0, view.currentIndex)
	assert.False(t, view.playing)
	assert.Empty(t, view.errors)
}

func TestPresenter_DropNothingUsable(t *testing.T) {
	f := newTestPresenter(t)

	f.presenter.OnDropped([]string{filepath.Join(t.TempDir(), "gone.mp3")})
	f.presenter.imports.Wait()

	view := f.view.snapshot()
	assert.Empty(t, view.tracks)
	assert.Empty(t, view.notifications)
	assert.Empty(t, view.errors)
}

func TestPresenter_Seek(t *testing.T) {
	f := newTestPresenter(t)

	// No track: ignored
	f.presenter.OnSeekStep(SeekStep)

	require.NoError(t, f.playlist.Replace(tracksWithArtist("", "Long")))
	f.presenter.OnSeekRequested(time.Minute)
	assert.Equal(t, time.Minute, f.view.snapshot().position)

	f.presenter.OnSeekStep(-SeekStep)
	assert.Equal(t, time.Minute-SeekStep, f.view.snapshot().position)
	assert.Empty(t, f.view.snapshot().errors)
}

func TestPresenter_Search(t *testing.T) {
	f := newTestPresenter(t)

	require.NoError(t, f.playlist.Replace(tracksWithArtist("", "Midnight Drive", "Morning Coffee")))

	assert.Equal(t, []int{1}, f.presenter.Search("coffee"))
	assert.Equal(t, []int{0, 1}, f.presenter.Search(""))
}

func TestPresenter_Shutdown(t *testing.T) {
	f := newTestPresenter(t)

	before := f.bus.SubscriberCount()
	subscribed := len(f.presenter.subscriptions)
	require.Equal(t, 16, subscribed)

	f.presenter.Shutdown()
	f.presenter.Shutdown()

	assert.Equal(t, before-subscribed, f.bus.SubscriberCount())
}
