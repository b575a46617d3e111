package service

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunewave/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/tunewave/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunewave/internal/domain"
	"github.com/tejashwikalptaru/tunewave/internal/logger"
)

// Helper to create a test playlist service on top of a playback service
func newTestPlaylistService(t *testing.T) (*PlaylistService, *PlaybackService, *mock.Engine, *eventbus.SyncEventBus) {
	t.Helper()
	playback, engine, bus := newTestPlaybackService(t)
	playlist := NewPlaylistService(logger.NewTestLogger(), playback, bus, rand.New(rand.NewPCG(1, 2)))
	t.Cleanup(func() { _ = playlist.Shutdown() })
	return playlist, playback, engine, bus
}

func testTracks(n int) []domain.MusicTrack {
	tracks := make([]domain.MusicTrack, n)
	for i := range tracks {
		tracks[i] = createTestTrack(fmt.Sprint(i), fmt.Sprintf("Song %d", i), fmt.Sprintf("/test/song%d.mp3", i))
	}
	return tracks
}

// currentHandle follows the engine handle of the most recently loaded track.
func currentHandle(bus *eventbus.SyncEventBus) func() domain.TrackHandle {
	var handle domain.TrackHandle
	bus.Subscribe(domain.EventTrackLoaded, func(e domain.Event) {
		handle = e.(domain.TrackLoadedEvent).Handle
	})
	return func() domain.TrackHandle { return handle }
}

// finishTrack plays the current track to its end and lets the playback service notice.
func finishTrack(t *testing.T, playback *PlaybackService, engine *mock.Engine, handle domain.TrackHandle) {
	t.Helper()
	require.NoError(t, engine.SimulateProgress(handle, mock.DefaultDuration))
	playback.publishProgressUpdate()
}

func TestPlaylistService_Replace(t *testing.T) {
	playlist, playback, _, bus := newTestPlaylistService(t)

	var changes []domain.QueueChangedEvent
	bus.Subscribe(domain.EventQueueChanged, func(e domain.Event) {
		changes = append(changes, e.(domain.QueueChangedEvent))
	})

	assert.ErrorIs(t, playlist.Replace(nil), domain.ErrQueueEmpty)
	assert.Empty(t, playlist.GetQueue())
	assert.Equal(t, -1, playlist.GetCurrentIndex())

	require.NoError(t, playlist.Replace(testTracks(3)))
	assert.Len(t, playlist.GetQueue(), 3)
	assert.Equal(t, 0, playlist.GetCurrentIndex())

	state := playback.GetState()
	require.NotNil(t, state.CurrentTrack)
	assert.Equal(t, "0", state.CurrentTrack.ID)
	assert.False(t, playback.IsPlaying(), "opening a folder does not autoplay")

	require.Len(t, changes, 1)
	assert.Equal(t, 0, changes[0].Index)
	assert.Len(t, changes[0].Queue, 3)
	assert.Equal(t, mock.DefaultDuration, changes[0].Queue[0].Duration, "the loaded duration is recorded")

	require.NoError(t, playlist.Replace(testTracks(2)))
	assert.Len(t, playlist.GetQueue(), 2, "replace drops the previous queue")
}

func TestPlaylistService_Add(t *testing.T) {
	playlist, playback, _, bus := newTestPlaylistService(t)

	var lastIndex int
	bus.Subscribe(domain.EventQueueChanged, func(e domain.Event) {
		lastIndex = e.(domain.QueueChangedEvent).Index
	})

	require.NoError(t, playlist.Add())
	assert.Equal(t, -1, playlist.GetCurrentIndex())

	tracks := testTracks(4)
	require.NoError(t, playlist.Add(tracks[:2]...))
	assert.Equal(t, 0, playlist.GetCurrentIndex())
	assert.Equal(t, "0", playback.GetState().CurrentTrack.ID)

	require.NoError(t, playlist.PlayAt(1))
	require.NoError(t, playlist.Add(tracks[2:]...))
	assert.Len(t, playlist.GetQueue(), 4)
	assert.Equal(t, 1, playlist.GetCurrentIndex(), "adding keeps the selection")
	assert.Equal(t, 1, lastIndex)
	assert.True(t, playback.IsPlaying(), "adding does not interrupt playback")
	assert.Len(t, playlist.ShuffleOrder(), 4, "the shuffle order covers added tracks")
}

func TestPlaylistService_PlayAt(t *testing.T) {
	playlist, playback, _, _ := newTestPlaylistService(t)
	require.NoError(t, playlist.Replace(testTracks(3)))

	require.NoError(t, playlist.PlayAt(2))
	assert.Equal(t, 2, playlist.GetCurrentIndex())
	assert.True(t, playback.IsPlaying())
	assert.Equal(t, 2, playback.GetState().CurrentIndex)

	assert.ErrorIs(t, playlist.PlayAt(-1), domain.ErrInvalidIndex)
	assert.ErrorIs(t, playlist.PlayAt(3), domain.ErrInvalidIndex)
	assert.Equal(t, 2, playlist.GetCurrentIndex())
}

func TestPlaylistService_EmptyQueue(t *testing.T) {
	playlist, _, _, _ := newTestPlaylistService(t)

	assert.ErrorIs(t, playlist.Next(), domain.ErrQueueEmpty)
	assert.ErrorIs(t, playlist.Previous(), domain.ErrQueueEmpty)
	assert.ErrorIs(t, playlist.PlayAt(0), domain.ErrInvalidIndex)
}

func TestPlaylistService_Next(t *testing.T) {
	playlist, playback, engine, bus := newTestPlaylistService(t)
	handle := currentHandle(bus)
	require.NoError(t, playlist.Replace(testTracks(3)))

	require.NoError(t, playlist.Next())
	assert.Equal(t, 1, playlist.GetCurrentIndex())
	assert.True(t, playback.IsPlaying())

	require.NoError(t, playlist.Next())
	assert.Equal(t, 2, playlist.GetCurrentIndex())

	assert.ErrorIs(t, playlist.Next(), domain.ErrEndOfQueue)
	assert.Equal(t, 2, playlist.GetCurrentIndex())
	assert.False(t, playback.IsPlaying(), "running off the end pauses")

	assert.Equal(t, domain.LoopAll, playlist.CycleLoop())
	require.NoError(t, playlist.Next())
	assert.Equal(t, 0, playlist.GetCurrentIndex(), "loop all wraps")

	assert.Equal(t, domain.LoopOne, playlist.CycleLoop())
	require.NoError(t, engine.SimulateProgress(handle(), 30*time.Second))
	require.NoError(t, playlist.Next())
	assert.Equal(t, 0, playlist.GetCurrentIndex(), "loop one keeps the track")
	assert.True(t, playback.IsPlaying())
	position, err := engine.Position(handle())
	require.NoError(t, err)
	assert.Zero(t, position, "loop one restarts the track")
}

func TestPlaylistService_Previous(t *testing.T) {
	playlist, playback, _, _ := newTestPlaylistService(t)
	require.NoError(t, playlist.Replace(testTracks(3)))

	require.NoError(t, playlist.Previous())
	assert.Equal(t, 0, playlist.GetCurrentIndex(), "the first track stays first without loop")

	require.NoError(t, playlist.PlayAt(2))
	require.NoError(t, playlist.Previous())
	assert.Equal(t, 1, playlist.GetCurrentIndex())

	playlist.CycleLoop()
	require.NoError(t, playlist.PlayAt(0))
	require.NoError(t, playlist.Previous())
	assert.Equal(t, 2, playlist.GetCurrentIndex(), "loop all wraps to the last track")
	assert.True(t, playback.IsPlaying())
}

func TestPlaylistService_PreviousRestartsCurrentTrack(t *testing.T) {
	playlist, playback, _, _ := newTestPlaylistService(t)
	require.NoError(t, playlist.Replace(testTracks(3)))
	require.NoError(t, playlist.PlayAt(1))

	require.NoError(t, playback.Seek(restartThreshold))
	require.NoError(t, playlist.Previous())
	assert.Equal(t, 0, playlist.GetCurrentIndex(), "at the threshold it still steps back")

	require.NoError(t, playlist.PlayAt(1))
	require.NoError(t, playback.Seek(10*time.Second))
	require.NoError(t, playlist.Previous())
	assert.Equal(t, 1, playlist.GetCurrentIndex())
	assert.Zero(t, playback.GetState().Position)
	assert.True(t, playback.IsPlaying())
}

func TestPlaylistService_Shuffle(t *testing.T) {
	playlist, _, _, bus := newTestPlaylistService(t)
	require.NoError(t, playlist.Replace(testTracks(8)))

	var toggles []bool
	bus.Subscribe(domain.EventShuffleToggled, func(e domain.Event) {
		toggles = append(toggles, e.(domain.ShuffleToggledEvent).Enabled)
	})

	assert.True(t, playlist.ToggleShuffle())
	assert.True(t, playlist.IsShuffled())

	order := playlist.ShuffleOrder()
	sorted := slices.Clone(order)
	slices.Sort(sorted)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, sorted, "the order is a permutation")

	// Walking the order visits every track once and wraps
	pos := slices.Index(order, playlist.GetCurrentIndex())
	for step := 1; step <= len(order); step++ {
		require.NoError(t, playlist.Next())
		assert.Equal(t, order[(pos+step)%len(order)], playlist.GetCurrentIndex())
	}

	require.NoError(t, playlist.Previous())
	assert.Equal(t, order[(pos+len(order)-1)%len(order)], playlist.GetCurrentIndex())

	assert.False(t, playlist.ToggleShuffle())
	assert.Equal(t, []bool{true, false}, toggles)
}

func TestPlaylistService_ShuffleOrderIsRedrawn(t *testing.T) {
	playlist, _, _, _ := newTestPlaylistService(t)
	require.NoError(t, playlist.Replace(testTracks(20)))

	playlist.ToggleShuffle()
	first := playlist.ShuffleOrder()
	playlist.ToggleShuffle()
	playlist.ToggleShuffle()
	assert.NotEqual(t, first, playlist.ShuffleOrder())
}

func TestPlaylistService_CycleLoop(t *testing.T) {
	playlist, _, _, bus := newTestPlaylistService(t)

	var modes []domain.LoopMode
	bus.Subscribe(domain.EventLoopModeChanged, func(e domain.Event) {
		modes = append(modes, e.(domain.LoopModeChangedEvent).Mode)
	})

	assert.Equal(t, domain.LoopNone, playlist.LoopMode())
	playlist.CycleLoop()
	playlist.CycleLoop()
	playlist.CycleLoop()

	assert.Equal(t, []domain.LoopMode{domain.LoopAll, domain.LoopOne, domain.LoopNone}, modes)
	assert.Equal(t, domain.LoopNone, playlist.LoopMode())
}

func TestPlaylistService_AutoNext(t *testing.T) {
	playlist, playback, engine, bus := newTestPlaylistService(t)
	handle := currentHandle(bus)
	require.NoError(t, playlist.Replace(testTracks(2)))
	require.NoError(t, playlist.PlayAt(0))

	finishTrack(t, playback, engine, handle())
	assert.Equal(t, 1, playlist.GetCurrentIndex())
	assert.True(t, playback.IsPlaying())

	finishTrack(t, playback, engine, handle())
	assert.Equal(t, 1, playlist.GetCurrentIndex(), "loop none stops at the end")
	assert.False(t, playback.IsPlaying())
	assert.NotNil(t, playback.GetState().CurrentTrack, "the last track stays loaded")
}

func TestPlaylistService_AutoNext_LoopAll(t *testing.T) {
	playlist, playback, engine, bus := newTestPlaylistService(t)
	handle := currentHandle(bus)
	require.NoError(t, playlist.Replace(testTracks(2)))
	playlist.CycleLoop()
	require.NoError(t, playlist.PlayAt(1))

	finishTrack(t, playback, engine, handle())
	assert.Equal(t, 0, playlist.GetCurrentIndex())
	assert.True(t, playback.IsPlaying())
}

func TestPlaylistService_AutoNext_LoopOne(t *testing.T) {
	playlist, playback, engine, bus := newTestPlaylistService(t)
	handle := currentHandle(bus)
	require.NoError(t, playlist.Replace(testTracks(2)))
	playlist.CycleLoop()
	playlist.CycleLoop()
	require.NoError(t, playlist.PlayAt(0))
	first := handle()

	finishTrack(t, playback, engine, first)
	assert.Equal(t, 0, playlist.GetCurrentIndex())
	assert.Equal(t, first, handle(), "the same track is replayed without reloading")
	assert.True(t, playback.IsPlaying())
	assert.Zero(t, playback.GetState().Position)
}

func TestPlaylistService_AutoNext_IgnoresStaleIndex(t *testing.T) {
	playlist, _, _, bus := newTestPlaylistService(t)
	tracks := testTracks(3)
	require.NoError(t, playlist.Replace(tracks))
	require.NoError(t, playlist.PlayAt(2))

	bus.Publish(domain.NewAutoNextEvent(tracks[0], 0))
	assert.Equal(t, 2, playlist.GetCurrentIndex())
}

func TestPlaylistService_Search(t *testing.T) {
	playlist, _, _, _ := newTestPlaylistService(t)
	tracks := []domain.MusicTrack{
		createTestTrack("a", "Night Drive", "/test/a.mp3"),
		createTestTrack("b", "Morning Coffee", "/test/b.mp3"),
		createTestTrack("c", "Drive Home", "/test/c.mp3"),
	}
	tracks[1].Artist = "Quiet Mornings"
	require.NoError(t, playlist.Replace(tracks))

	assert.Equal(t, []int{0, 1, 2}, playlist.Search(""))

	found := playlist.Search("drive")
	assert.ElementsMatch(t, []int{0, 2}, found)

	assert.Equal(t, []int{1}, playlist.Search("coffee"))
	assert.Empty(t, playlist.Search("zzz"))
}

func TestPlaylistService_Shutdown(t *testing.T) {
	playlist, _, _, bus := newTestPlaylistService(t)
	before := bus.SubscriberCount()

	require.NoError(t, playlist.Shutdown())
	assert.Equal(t, before-1, bus.SubscriberCount())
}
