// Package mock provides an in-memory implementation of the AudioEngine interface.
// It is used for testing services and for running the player without an audio device.
package mock

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/tunewave/internal/domain"
	"github.com/tejashwikalptaru/tunewave/internal/dsp"
	"github.com/tejashwikalptaru/tunewave/internal/ports"
)

// DefaultDuration is the duration of every track loaded by the mock engine.
const DefaultDuration = 3 * time.Minute

// Engine is a mock implementation of the AudioEngine interface.
// It simulates playback in memory; position only moves through SimulateProgress.
//
// Thread-safety: This implementation is thread-safe.
type Engine struct {
	// Dependencies
	logger *slog.Logger

	// Configuration
	initialized bool
	sampleRate  int
	fftSize     int
	tap         *Tap

	// Track state
	tracks     map[domain.TrackHandle]*mockTrack
	nextHandle domain.TrackHandle
	eq         domain.EqualizerSettings
	mu         sync.RWMutex

	// Behavior configuration (for testing error scenarios)
	failInitialize bool
	failLoad       bool
	failPlay       bool
}

// mockTrack represents a loaded track in the mock engine.
type mockTrack struct {
	filePath string
	duration time.Duration
	position time.Duration
	volume   float64
	status   domain.PlaybackStatus
}

// NewEngine creates a new mock audio engine.
func NewEngine() *Engine {
	return &Engine{
		tracks:     make(map[domain.TrackHandle]*mockTrack),
		nextHandle: 1,
		eq:         domain.DefaultEqualizer(),
	}
}

// SetLogger sets the logger for this engine.
func (m *Engine) SetLogger(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// SetFailInitialize configures the mock to fail initialization (for testing).
func (m *Engine) SetFailInitialize(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failInitialize = fail
}

// SetFailLoad configures the mock to fail loading tracks (for testing).
func (m *Engine) SetFailLoad(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoad = fail
}

// SetFailPlay configures the mock to fail playback (for testing).
func (m *Engine) SetFailPlay(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPlay = fail
}

// Initialize initializes the mock audio engine.
func (m *Engine) Initialize(sampleRate int, fftSize int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failInitialize {
		return domain.NewAudioEngineError("initialize", "", "mock initialization failed", nil)
	}
	if m.initialized {
		return domain.ErrAlreadyInitialized
	}
	if !dsp.ValidFFTSize(fftSize) {
		return domain.NewValidationError("fftSize", fftSize, "must be a power of two between 32 and 32768")
	}

	m.initialized = true
	m.sampleRate = sampleRate
	m.fftSize = fftSize
	m.tap = newTap(fftSize, m.anyPlaying)

	return nil
}

// Shutdown shuts down the mock audio engine.
func (m *Engine) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return domain.ErrNotInitialized
	}

	m.initialized = false
	m.tracks = make(map[domain.TrackHandle]*mockTrack)

	return nil
}

// IsInitialized returns true if the engine is initialized.
func (m *Engine) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// Load registers a track and returns a handle. Only the extension is checked.
func (m *Engine) Load(filePath string) (domain.TrackHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return domain.InvalidTrackHandle, domain.ErrNotInitialized
	}

	if m.failLoad {
		return domain.InvalidTrackHandle, domain.NewAudioEngineError("load", filePath, "mock load failed", nil)
	}

	if filePath == "" {
		return domain.InvalidTrackHandle, domain.ErrInvalidFilePath
	}

	if !domain.IsSupportedFormat(filePath) {
		return domain.InvalidTrackHandle, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, domain.FormatOf(filePath))
	}

	handle := m.nextHandle
	m.nextHandle++

	m.tracks[handle] = &mockTrack{
		filePath: filePath,
		duration: DefaultDuration,
		volume:   1.0,
		status:   domain.StatusStopped,
	}

	return handle, nil
}

// Unload unloads a previously loaded track.
func (m *Engine) Unload(handle domain.TrackHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return domain.ErrNotInitialized
	}

	if _, exists := m.tracks[handle]; !exists {
		return domain.ErrInvalidTrackHandle
	}

	delete(m.tracks, handle)
	return nil
}

// Play starts or resumes playback. Any other playing track is paused.
func (m *Engine) Play(handle domain.TrackHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return domain.ErrNotInitialized
	}

	if m.failPlay {
		return domain.NewAudioEngineError("play", "", "mock play failed", nil)
	}

	track, exists := m.tracks[handle]
	if !exists {
		return domain.ErrInvalidTrackHandle
	}

	for h, other := range m.tracks {
		if h != handle && other.status == domain.StatusPlaying {
			other.status = domain.StatusPaused
		}
	}

	// A finished track starts over
	if track.status == domain.StatusStopped && track.position >= track.duration {
		track.position = 0
	}

	track.status = domain.StatusPlaying
	return nil
}

// Pause pauses playback.
func (m *Engine) Pause(handle domain.TrackHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return domain.ErrNotInitialized
	}

	track, exists := m.tracks[handle]
	if !exists {
		return domain.ErrInvalidTrackHandle
	}

	if track.status == domain.StatusPlaying {
		track.status = domain.StatusPaused
	}

	return nil
}

// Stop stops playback and unloads the track.
func (m *Engine) Stop(handle domain.TrackHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return domain.ErrNotInitialized
	}

	if _, exists := m.tracks[handle]; !exists {
		return domain.ErrInvalidTrackHandle
	}

	delete(m.tracks, handle)
	return nil
}

// Status returns the playback status.
func (m *Engine) Status(handle domain.TrackHandle) (domain.PlaybackStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	track, err := m.lookup(handle)
	if err != nil {
		return domain.StatusStopped, err
	}
	return track.status, nil
}

// Position returns the current playback position.
func (m *Engine) Position(handle domain.TrackHandle) (time.Duration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	track, err := m.lookup(handle)
	if err != nil {
		return 0, err
	}
	return track.position, nil
}

// Duration returns the total track duration.
func (m *Engine) Duration(handle domain.TrackHandle) (time.Duration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	track, err := m.lookup(handle)
	if err != nil {
		return 0, err
	}
	return track.duration, nil
}

// Seek sets the playback position.
func (m *Engine) Seek(handle domain.TrackHandle, position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	track, err := m.lookup(handle)
	if err != nil {
		return err
	}

	if position < 0 || position > track.duration {
		return domain.ErrInvalidPosition
	}

	track.position = position
	return nil
}

// SetVolume sets the playback volume.
func (m *Engine) SetVolume(handle domain.TrackHandle, volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	track, err := m.lookup(handle)
	if err != nil {
		return err
	}

	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}

	track.volume = volume
	return nil
}

// GetVolume returns the current volume.
func (m *Engine) GetVolume(handle domain.TrackHandle) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	track, err := m.lookup(handle)
	if err != nil {
		return 0, err
	}
	return track.volume, nil
}

// SetEQ records the gain of one filter.
func (m *Engine) SetEQ(band domain.EQBand, gainDB float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return domain.ErrNotInitialized
	}
	if gainDB < domain.MinEQGainDB || gainDB > domain.MaxEQGainDB {
		return fmt.Errorf("%w: %s %.1f dB", domain.ErrInvalidGain, band, gainDB)
	}

	switch band {
	case domain.EQBass:
		m.eq.BassDB = gainDB
	case domain.EQMid:
		m.eq.MidDB = gainDB
	case domain.EQTreble:
		m.eq.TrebleDB = gainDB
	default:
		return domain.NewValidationError("band", band, "unknown equalizer band")
	}
	return nil
}

// SetGain records the master gain.
func (m *Engine) SetGain(percent float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return domain.ErrNotInitialized
	}
	if percent < domain.MinGainPct || percent > domain.MaxGainPct {
		return fmt.Errorf("%w: master %.0f%%", domain.ErrInvalidGain, percent)
	}

	m.eq.GainPct = percent
	return nil
}

// Equalizer returns the recorded filter and master gains (for testing).
func (m *Engine) Equalizer() domain.EqualizerSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.eq
}

// Analysis returns the synthetic analysis tap, or nil before Initialize.
func (m *Engine) Analysis() ports.AnalysisTap {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.tap == nil {
		return nil
	}
	return m.tap
}

// Tap returns the synthetic tap for configuring fixed output in tests.
func (m *Engine) Tap() *Tap {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tap
}

// lookup finds a track (caller must hold the lock).
func (m *Engine) lookup(handle domain.TrackHandle) (*mockTrack, error) {
	if !m.initialized {
		return nil, domain.ErrNotInitialized
	}
	track, exists := m.tracks[handle]
	if !exists {
		return nil, domain.ErrInvalidTrackHandle
	}
	return track, nil
}

// anyPlaying reports whether some track is playing.
func (m *Engine) anyPlaying() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, track := range m.tracks {
		if track.status == domain.StatusPlaying {
			return true
		}
	}
	return false
}

// GetLoadedTracks returns the number of currently loaded tracks (for testing).
func (m *Engine) GetLoadedTracks() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tracks)
}

// SimulateProgress advances a playing track by delta (for testing).
// Reaching the end stops the track, as a finished stream does.
func (m *Engine) SimulateProgress(handle domain.TrackHandle, delta time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	track, exists := m.tracks[handle]
	if !exists {
		return domain.ErrInvalidTrackHandle
	}

	if track.status != domain.StatusPlaying {
		return fmt.Errorf("track is not playing")
	}

	track.position += delta
	if track.position >= track.duration {
		track.position = track.duration
		track.status = domain.StatusStopped
	}

	return nil
}

// Verify that Engine implements the AudioEngine interface
var _ ports.AudioEngine = (*Engine)(nil)
