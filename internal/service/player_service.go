// Package service provides business logic for the TuneWave player.
package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/tunewave/internal/domain"
	"github.com/tejashwikalptaru/tunewave/internal/ports"
)

// DefaultVolume is the volume a fresh PlaybackService starts with.
const DefaultVolume = 0.8

// PlaybackService orchestrates audio playback operations.
// It manages the current track, volume, mute state and the equalizer.
// All operations are thread-safe via sync.RWMutex.
type PlaybackService struct {
	// Dependencies (injected)
	logger *slog.Logger
	engine ports.AudioEngine
	bus    ports.EventBus

	// State
	currentTrack   *domain.MusicTrack
	currentHandle  domain.TrackHandle
	currentIndex   int // Index in the queue (managed by PlaylistService)
	volume         float64
	isMuted        bool
	eq             domain.EqualizerSettings
	updateInterval time.Duration

	// Concurrency control
	mu            sync.RWMutex
	stopUpdate    chan struct{}
	updateRunning bool
	updateWg      sync.WaitGroup // WaitGroup to wait for update goroutine to exit
	manualStop    bool           // True if the user explicitly stopped playback
	hasPlayed     bool           // True if the current track has been played
}

// NewPlaybackService creates a new playback service and starts its progress routine.
func NewPlaybackService(
	logger *slog.Logger,
	engine ports.AudioEngine,
	bus ports.EventBus,
) *PlaybackService {
	return newPlaybackService(logger, engine, bus, 333*time.Millisecond) // 3 times per second
}

func newPlaybackService(logger *slog.Logger, engine ports.AudioEngine, bus ports.EventBus, interval time.Duration) *PlaybackService {
	service := &PlaybackService{
		logger:         logger,
		engine:         engine,
		bus:            bus,
		currentHandle:  domain.InvalidTrackHandle,
		currentIndex:   -1,
		volume:         DefaultVolume,
		eq:             domain.DefaultEqualizer(),
		updateInterval: interval,
		stopUpdate:     make(chan struct{}),
	}

	service.logger.Debug("playback service initialized")

	service.startUpdateRoutine()

	return service
}

// LoadTrack loads a track for playback without starting it.
// This stops any currently playing track and loads the new one.
func (s *PlaybackService) LoadTrack(track domain.MusicTrack, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("loading track", slog.String("file_path", track.FilePath), slog.Int("index", index))

	if s.currentHandle != domain.InvalidTrackHandle {
		if err := s.stopInternal(); err != nil {
			s.logger.Warn("failed to stop current track", slog.Any("error", err))
		}
	}

	handle, err := s.engine.Load(track.FilePath)
	if err != nil {
		s.logger.Debug("failed to load track", slog.Any("error", err))
		s.bus.Publish(domain.NewTrackErrorEvent(track, err))
		return err
	}

	if err := s.engine.SetVolume(handle, s.effectiveVolume()); err != nil {
		if unloadErr := s.engine.Unload(handle); unloadErr != nil {
			s.logger.Warn("failed to unload track after volume error", slog.Any("error", unloadErr))
		}
		return err
	}

	duration, err := s.engine.Duration(handle)
	if err != nil {
		if unloadErr := s.engine.Unload(handle); unloadErr != nil {
			s.logger.Warn("failed to unload track after duration error", slog.Any("error", unloadErr))
		}
		return err
	}

	track.Duration = duration
	s.currentTrack = &track
	s.currentHandle = handle
	s.currentIndex = index
	s.manualStop = false
	s.hasPlayed = false

	s.bus.Publish(domain.NewTrackLoadedEvent(track, handle, duration, index))

	return nil
}

// Play starts or resumes playback of the current track.
// A track that played to its end starts over.
func (s *PlaybackService) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.playInternal()
}

func (s *PlaybackService) playInternal() error {
	if s.currentHandle == domain.InvalidTrackHandle {
		return domain.ErrInvalidTrackHandle
	}

	status, err := s.engine.Status(s.currentHandle)
	if err != nil {
		return err
	}
	if status == domain.StatusPlaying {
		return nil
	}

	s.manualStop = false
	s.hasPlayed = true
	if err := s.engine.Play(s.currentHandle); err != nil {
		s.logger.Debug("engine play failed", slog.Any("error", err))
		s.bus.Publish(domain.NewTrackErrorEvent(*s.currentTrack, err))
		return err
	}

	s.bus.Publish(domain.NewTrackStartedEvent(*s.currentTrack))

	return nil
}

// Pause pauses playback of the current track.
func (s *PlaybackService) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pauseInternal()
}

func (s *PlaybackService) pauseInternal() error {
	if s.currentHandle == domain.InvalidTrackHandle {
		return domain.ErrInvalidTrackHandle
	}

	position, err := s.engine.Position(s.currentHandle)
	if err != nil {
		position = 0
	}

	if err := s.engine.Pause(s.currentHandle); err != nil {
		return err
	}

	s.bus.Publish(domain.NewTrackPausedEvent(*s.currentTrack, position))

	return nil
}

// TogglePlayPause pauses a playing track and plays anything else.
func (s *PlaybackService) TogglePlayPause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentHandle == domain.InvalidTrackHandle {
		return domain.ErrInvalidTrackHandle
	}

	status, err := s.engine.Status(s.currentHandle)
	if err != nil {
		return err
	}
	if status == domain.StatusPlaying {
		return s.pauseInternal()
	}
	return s.playInternal()
}

// Stop stops playback and unloads the current track.
func (s *PlaybackService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stopInternal()
}

// stopInternal stops playback without locking (caller must hold lock).
func (s *PlaybackService) stopInternal() error {
	if s.currentHandle == domain.InvalidTrackHandle {
		return nil
	}

	s.manualStop = true
	s.hasPlayed = false

	if err := s.engine.Stop(s.currentHandle); err != nil {
		// Even if stop fails, clear our state
		s.currentHandle = domain.InvalidTrackHandle
		s.currentTrack = nil
		return err
	}

	if s.currentTrack != nil {
		s.bus.Publish(domain.NewTrackStoppedEvent(*s.currentTrack))
	}

	s.currentHandle = domain.InvalidTrackHandle
	s.currentTrack = nil

	return nil
}

// IsPlaying reports whether the current track is audible right now.
func (s *PlaybackService) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.currentHandle == domain.InvalidTrackHandle {
		return false
	}
	status, err := s.engine.Status(s.currentHandle)
	return err == nil && status == domain.StatusPlaying
}

// SetVolume sets the playback volume (0.0 to 1.0).
// While muted the value is remembered and applied on unmute.
func (s *PlaybackService) SetVolume(volume float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}

	s.volume = volume

	if !s.isMuted && s.currentHandle != domain.InvalidTrackHandle {
		if err := s.engine.SetVolume(s.currentHandle, volume); err != nil {
			return err
		}
	}

	s.bus.Publish(domain.NewVolumeChangedEvent(volume))

	return nil
}

// GetVolume returns the current volume (0.0 to 1.0).
func (s *PlaybackService) GetVolume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.volume
}

// Mute mutes or unmutes playback.
func (s *PlaybackService) Mute(mute bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.muteInternal(mute)
}

func (s *PlaybackService) muteInternal(mute bool) error {
	if s.isMuted == mute {
		return nil
	}

	s.isMuted = mute

	if s.currentHandle != domain.InvalidTrackHandle {
		if err := s.engine.SetVolume(s.currentHandle, s.effectiveVolume()); err != nil {
			return err
		}
	}

	s.bus.Publish(domain.NewMuteToggledEvent(s.isMuted))

	return nil
}

// ToggleMute flips the mute state.
func (s *PlaybackService) ToggleMute() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.muteInternal(!s.isMuted)
}

// IsMuted returns true if playback is muted.
func (s *PlaybackService) IsMuted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.isMuted
}

// effectiveVolume is the level sent to the engine (caller must hold lock).
func (s *PlaybackService) effectiveVolume() float64 {
	if s.isMuted {
		return 0
	}
	return s.volume
}

// SetEQ sets the gain of one equalizer band in dB.
func (s *PlaybackService) SetEQ(band domain.EQBand, gainDB float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.SetEQ(band, gainDB); err != nil {
		return err
	}

	switch band {
	case domain.EQBass:
		s.eq.BassDB = gainDB
	case domain.EQMid:
		s.eq.MidDB = gainDB
	case domain.EQTreble:
		s.eq.TrebleDB = gainDB
	}

	s.bus.Publish(domain.NewEqualizerChangedEvent(s.eq))

	return nil
}

// SetGain sets the master gain in percent.
func (s *PlaybackService) SetGain(percent float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.SetGain(percent); err != nil {
		return err
	}
	s.eq.GainPct = percent

	s.bus.Publish(domain.NewEqualizerChangedEvent(s.eq))

	return nil
}

// ResetEqualizer puts every band back to 0 dB and the master gain to 100%,
// publishing a single EqualizerChangedEvent.
func (s *PlaybackService) ResetEqualizer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := domain.DefaultEqualizer()
	bands := []struct {
		band domain.EQBand
		db   float64
	}{
		{domain.EQBass, defaults.BassDB},
		{domain.EQMid, defaults.MidDB},
		{domain.EQTreble, defaults.TrebleDB},
	}
	for _, b := range bands {
		if err := s.engine.SetEQ(b.band, b.db); err != nil {
			return err
		}
	}
	if err := s.engine.SetGain(defaults.GainPct); err != nil {
		return err
	}
	s.eq = defaults

	s.logger.Debug("equalizer reset")
	s.bus.Publish(domain.NewEqualizerChangedEvent(s.eq))

	return nil
}

// Equalizer returns the current band and master gains.
func (s *PlaybackService) Equalizer() domain.EqualizerSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.eq
}

// Seek sets the playback position.
func (s *PlaybackService) Seek(position time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentHandle == domain.InvalidTrackHandle {
		return domain.ErrInvalidTrackHandle
	}

	if err := s.engine.Seek(s.currentHandle, position); err != nil {
		return err
	}

	duration, err := s.engine.Duration(s.currentHandle)
	if err != nil {
		duration = 0
	}
	s.bus.Publish(domain.NewTrackProgressEvent(position, duration))

	return nil
}

// SeekBy moves the position by delta, clamped to the track bounds.
func (s *PlaybackService) SeekBy(delta time.Duration) error {
	s.mu.RLock()
	handle := s.currentHandle
	s.mu.RUnlock()

	if handle == domain.InvalidTrackHandle {
		return domain.ErrInvalidTrackHandle
	}

	position, err := s.engine.Position(handle)
	if err != nil {
		return err
	}
	duration, err := s.engine.Duration(handle)
	if err != nil {
		return err
	}

	return s.Seek(min(max(position+delta, 0), duration))
}

// GetState returns the current playback state.
func (s *PlaybackService) GetState() domain.PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := domain.PlaybackState{
		CurrentTrack: s.currentTrack,
		CurrentIndex: s.currentIndex,
		Status:       domain.StatusStopped,
		Volume:       s.volume,
		IsMuted:      s.isMuted,
		Equalizer:    s.eq,
	}

	if s.currentHandle != domain.InvalidTrackHandle {
		if status, err := s.engine.Status(s.currentHandle); err == nil {
			state.Status = status
		}
		if position, err := s.engine.Position(s.currentHandle); err == nil {
			state.Position = position
		}
		if duration, err := s.engine.Duration(s.currentHandle); err == nil {
			state.Duration = duration
		}
	}

	return state
}

// Shutdown stops playback and the progress routine.
func (s *PlaybackService) Shutdown() error {
	s.mu.Lock()

	if s.updateRunning {
		close(s.stopUpdate)
		s.updateRunning = false
	}

	// Release lock before waiting for goroutine to exit (to avoid deadlock)
	s.mu.Unlock()

	s.updateWg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stopInternal()
}

// startUpdateRoutine starts a goroutine that periodically publishes progress events.
func (s *PlaybackService) startUpdateRoutine() {
	s.mu.Lock()
	if s.updateRunning {
		s.mu.Unlock()
		return
	}
	s.updateRunning = true
	s.updateWg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.updateWg.Done()
		ticker := time.NewTicker(s.updateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopUpdate:
				return

			case <-ticker.C:
				s.publishProgressUpdate()
			}
		}
	}()
}

// publishProgressUpdate publishes a progress event and detects a finished track.
func (s *PlaybackService) publishProgressUpdate() {
	s.mu.RLock()

	if s.currentHandle == domain.InvalidTrackHandle || s.currentTrack == nil {
		s.mu.RUnlock()
		return
	}

	status, err := s.engine.Status(s.currentHandle)
	if err != nil {
		s.mu.RUnlock()
		return
	}

	position, err := s.engine.Position(s.currentHandle)
	if err != nil {
		s.mu.RUnlock()
		return
	}

	duration, err := s.engine.Duration(s.currentHandle)
	if err != nil {
		s.mu.RUnlock()
		return
	}

	shouldFinish := status == domain.StatusStopped && !s.manualStop && s.hasPlayed

	s.mu.RUnlock()

	s.bus.Publish(domain.NewTrackProgressEvent(position, duration))

	if shouldFinish {
		s.handleTrackFinished()
	}
}

// handleTrackFinished publishes completion and asks the playlist for the next track.
// The track stays loaded so Play starts it over.
func (s *PlaybackService) handleTrackFinished() {
	s.mu.Lock()

	// Another tick or a user action got here first
	if s.currentTrack == nil || !s.hasPlayed {
		s.mu.Unlock()
		return
	}

	track := *s.currentTrack
	index := s.currentIndex
	s.hasPlayed = false

	s.bus.Publish(domain.NewTrackCompletedEvent(track))

	// Release lock before publishing: the playlist reacts by calling back into this service
	s.mu.Unlock()

	s.bus.Publish(domain.NewAutoNextEvent(track, index))
}

// Verify that PlaybackService implements the expected interface patterns
var _ interface {
	LoadTrack(domain.MusicTrack, int) error
	Play() error
	Pause() error
	TogglePlayPause() error
	Stop() error
	IsPlaying() bool
	SetVolume(float64) error
	GetVolume() float64
	Mute(bool) error
	ToggleMute() error
	IsMuted() bool
	SetEQ(domain.EQBand, float64) error
	SetGain(float64) error
	ResetEqualizer() error
	Equalizer() domain.EqualizerSettings
	Seek(time.Duration) error
	SeekBy(time.Duration) error
	GetState() domain.PlaybackState
	Shutdown() error
} = (*PlaybackService)(nil)
