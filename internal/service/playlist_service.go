package service

import (
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/tejashwikalptaru/tunewave/internal/domain"
	"github.com/tejashwikalptaru/tunewave/internal/ports"
)

// restartThreshold is how far into a track Previous restarts it instead of stepping back.
const restartThreshold = 3 * time.Second

// PlaylistService manages the playback queue, shuffle order and loop mode.
// All operations are thread-safe via sync.RWMutex.
type PlaylistService struct {
	// Dependencies (injected)
	logger   *slog.Logger
	playback *PlaybackService
	bus      ports.EventBus
	rng      *rand.Rand

	// State
	queue        []domain.MusicTrack
	currentIndex int
	shuffle      bool
	order        []int // permutation of queue indices walked while shuffling
	loop         domain.LoopMode

	// Concurrency control
	mu sync.RWMutex

	// Event subscription
	autoNextSub domain.SubscriptionID
}

// NewPlaylistService creates a new playlist service. A nil rng uses a randomly seeded one.
func NewPlaylistService(
	logger *slog.Logger,
	playback *PlaybackService,
	bus ports.EventBus,
	rng *rand.Rand,
) *PlaylistService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	service := &PlaylistService{
		logger:       logger,
		playback:     playback,
		bus:          bus,
		rng:          rng,
		currentIndex: -1,
	}

	service.autoNextSub = bus.Subscribe(domain.EventAutoNext, service.handleAutoNext)

	return service
}

// Replace swaps the whole queue, as opening a folder does, and loads the first
// track without starting it. An empty list leaves the queue untouched.
func (s *PlaylistService) Replace(tracks []domain.MusicTrack) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(tracks) == 0 {
		return domain.ErrQueueEmpty
	}

	s.queue = slices.Clone(tracks)
	s.currentIndex = 0
	s.regenerateOrder()

	s.logger.Info("queue replaced", slog.Int("tracks", len(s.queue)))

	return s.load(0, false)
}

// Add appends tracks to the queue. When nothing was selected before, the first
// added track is loaded without starting it.
func (s *PlaylistService) Add(tracks ...domain.MusicTrack) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(tracks) == 0 {
		return nil
	}

	first := len(s.queue)
	s.queue = append(s.queue, tracks...)
	s.regenerateOrder()

	if s.currentIndex >= 0 {
		s.publishQueue()
		return nil
	}

	return s.load(first, false)
}

// PlayAt loads and plays the track at index.
func (s *PlaylistService) PlayAt(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.queue) {
		return domain.ErrInvalidIndex
	}

	return s.load(index, true)
}

// Next plays the following track. While shuffling it walks the shuffle order and
// wraps; otherwise the end of the queue wraps only in LoopAll. In LoopOne it
// restarts the current track. Past the end of a non-looping queue playback is
// paused and ErrEndOfQueue returned.
func (s *PlaylistService) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return domain.ErrQueueEmpty
	}

	if s.loop == domain.LoopOne && s.currentIndex >= 0 {
		if err := s.playback.Seek(0); err != nil {
			return err
		}
		return s.playback.Play()
	}

	index, ok := s.nextIndex()
	if !ok {
		if s.playback.IsPlaying() {
			if err := s.playback.Pause(); err != nil {
				return err
			}
		}
		return domain.ErrEndOfQueue
	}
	return s.load(index, true)
}

// Previous restarts the current track once it has played past the restart
// threshold; otherwise it plays the preceding track.
func (s *PlaylistService) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return domain.ErrQueueEmpty
	}

	if state := s.playback.GetState(); state.CurrentTrack != nil && state.Position > restartThreshold {
		return s.playback.Seek(0)
	}

	var index int
	switch {
	case s.shuffle:
		pos := slices.Index(s.order, s.currentIndex)
		index = s.order[(pos-1+len(s.order))%len(s.order)]
	case s.currentIndex > 0:
		index = s.currentIndex - 1
	case s.loop == domain.LoopAll:
		index = len(s.queue) - 1
	default:
		index = 0
	}
	return s.load(index, true)
}

// ToggleShuffle switches shuffle on or off and returns the new state.
// Switching it on draws a fresh order.
func (s *PlaylistService) ToggleShuffle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shuffle = !s.shuffle
	if s.shuffle {
		s.regenerateOrder()
	}

	s.bus.Publish(domain.NewShuffleToggledEvent(s.shuffle))

	return s.shuffle
}

// CycleLoop moves to the next loop mode (none, all, one) and returns it.
func (s *PlaylistService) CycleLoop() domain.LoopMode {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loop = s.loop.Next()

	s.bus.Publish(domain.NewLoopModeChangedEvent(s.loop))

	return s.loop
}

// IsShuffled reports whether shuffle is on.
func (s *PlaylistService) IsShuffled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.shuffle
}

// LoopMode returns the current loop mode.
func (s *PlaylistService) LoopMode() domain.LoopMode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loop
}

// ShuffleOrder returns a copy of the shuffle permutation.
func (s *PlaylistService) ShuffleOrder() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.order)
}

// GetQueue returns a copy of the current queue.
func (s *PlaylistService) GetQueue() []domain.MusicTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.queue)
}

// GetCurrentIndex returns the index of the selected track, or -1.
func (s *PlaylistService) GetCurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.currentIndex
}

// Search returns the queue indices whose title and artist fuzzily match query,
// best match first. An empty query returns every index in queue order.
func (s *PlaylistService) Search(query string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if query == "" {
		indices := make([]int, len(s.queue))
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	matches := fuzzy.FindFrom(query, searchSource(s.queue))
	indices := make([]int, len(matches))
	for i, m := range matches {
		indices[i] = m.Index
	}
	return indices
}

// searchSource adapts the queue to fuzzy.Source.
type searchSource []domain.MusicTrack

func (q searchSource) String(i int) string { return q[i].Title + " " + q[i].Artist }
func (q searchSource) Len() int            { return len(q) }

// Shutdown unsubscribes from playback events.
func (s *PlaylistService) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bus.Unsubscribe(s.autoNextSub)

	return nil
}

// handleAutoNext is called when a track finished playing on its own.
func (s *PlaylistService) handleAutoNext(event domain.Event) {
	autoNext, ok := event.(domain.AutoNextEvent)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Stale completion of a track that is no longer selected
	if autoNext.Index != s.currentIndex || len(s.queue) == 0 {
		return
	}

	if s.loop == domain.LoopOne {
		if err := s.playback.Play(); err != nil {
			s.logger.Warn("failed to replay track", slog.Any("error", err))
		}
		return
	}

	index, ok := s.nextIndex()
	if !ok {
		s.logger.Debug("end of queue reached")
		return
	}
	if err := s.load(index, true); err != nil {
		s.logger.Warn("failed to advance queue", slog.Int("index", index), slog.Any("error", err))
	}
}

// nextIndex picks the track after the current one (caller must hold lock).
func (s *PlaylistService) nextIndex() (int, bool) {
	if s.shuffle {
		pos := slices.Index(s.order, s.currentIndex)
		return s.order[(pos+1)%len(s.order)], true
	}
	if s.currentIndex+1 < len(s.queue) {
		return s.currentIndex + 1, true
	}
	if s.loop == domain.LoopAll {
		return 0, true
	}
	return 0, false
}

// load selects index and hands the track to the playback service (caller must hold lock).
func (s *PlaylistService) load(index int, play bool) error {
	s.currentIndex = index

	err := s.playback.LoadTrack(s.queue[index], index)
	if err == nil {
		if state := s.playback.GetState(); state.CurrentTrack != nil {
			s.queue[index].Duration = state.Duration
		}
	}
	s.publishQueue()

	if err != nil || !play {
		return err
	}
	return s.playback.Play()
}

// regenerateOrder draws a new Fisher-Yates permutation of the queue (caller must hold lock).
func (s *PlaylistService) regenerateOrder() {
	s.order = make([]int, len(s.queue))
	for i := range s.order {
		s.order[i] = i
	}
	s.rng.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
}

// publishQueue announces the queue and selection (caller must hold lock).
func (s *PlaylistService) publishQueue() {
	s.bus.Publish(domain.NewQueueChangedEvent(slices.Clone(s.queue), s.currentIndex))
}

// Verify that PlaylistService implements the expected interface patterns
var _ interface {
	Replace([]domain.MusicTrack) error
	Add(...domain.MusicTrack) error
	PlayAt(int) error
	Next() error
	Previous() error
	ToggleShuffle() bool
	CycleLoop() domain.LoopMode
	IsShuffled() bool
	LoopMode() domain.LoopMode
	ShuffleOrder() []int
	GetQueue() []domain.MusicTrack
	GetCurrentIndex() int
	Search(string) []int
	Shutdown() error
} = (*PlaylistService)(nil)
