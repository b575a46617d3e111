// Package beep provides the faiface/beep implementation of the AudioEngine interface.
package beep

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"

	"github.com/tejashwikalptaru/tunewave/internal/domain"
	"github.com/tejashwikalptaru/tunewave/internal/dsp"
	"github.com/tejashwikalptaru/tunewave/internal/ports"
)

// outputLatency is the speaker buffer length.
const outputLatency = time.Second / 30

// Engine decodes files with beep and plays them through an Output.
// One track at a time is routed to the output; the filters, master gain and the
// analysis tap are shared by every track.
//
// Thread-safety: This implementation is thread-safe. Engine state is guarded by mu;
// streamer state read by the audio thread is changed only under the Output lock,
// always taken after mu.
type Engine struct {
	logger *slog.Logger
	out    Output

	mu          sync.RWMutex
	initialized bool
	rate        beep.SampleRate
	ring        *dsp.SampleRing
	analyser    *dsp.Analyser
	eq          *dsp.Equalizer
	gainPct     float64
	tracks      map[domain.TrackHandle]*track
	nextHandle  domain.TrackHandle
	routed      *track
}

// track is a decoded file and its chain.
type track struct {
	path   string
	stream beep.StreamSeekCloser
	format beep.Format
	chain  *chain
	volume float64

	// Written by the audio thread from the end-of-stream callback.
	queued atomic.Bool
	ended  atomic.Bool
}

// NewEngine creates an engine playing through the system speaker.
func NewEngine() *Engine {
	return NewEngineWithOutput(speakerOutput{})
}

// NewEngineWithOutput creates an engine playing through out.
func NewEngineWithOutput(out Output) *Engine {
	return &Engine{
		logger:     slog.Default(),
		out:        out,
		gainPct:    domain.DefaultGainPct,
		tracks:     make(map[domain.TrackHandle]*track),
		nextHandle: 1,
	}
}

// SetLogger sets the logger for this engine.
func (e *Engine) SetLogger(logger *slog.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logger = logger
}

// Initialize opens the output at sampleRate and builds the analysis tap.
func (e *Engine) Initialize(sampleRate int, fftSize int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return domain.ErrAlreadyInitialized
	}
	if sampleRate <= 0 {
		return domain.NewValidationError("sampleRate", sampleRate, "must be positive")
	}
	if !dsp.ValidFFTSize(fftSize) {
		return domain.NewValidationError("fftSize", fftSize, "must be a power of two between 32 and 32768")
	}

	rate := beep.SampleRate(sampleRate)
	if err := e.out.Init(rate, rate.N(outputLatency)); err != nil {
		return domain.NewAudioEngineError("initialize", "", "output init failed", err)
	}

	ring := dsp.NewSampleRing(fftSize)
	analyser, err := dsp.NewAnalyser(ring, fftSize)
	if err != nil {
		e.out.Close()
		return domain.NewAudioEngineError("initialize", "", "analyser setup failed", err)
	}

	e.rate = rate
	e.ring = ring
	e.analyser = analyser
	e.eq = dsp.NewEqualizer(float64(sampleRate))
	e.initialized = true

	e.logger.Debug("audio engine initialized",
		slog.Int("sample_rate", sampleRate),
		slog.Int("fft_size", fftSize))
	return nil
}

// Shutdown stops playback, closes every loaded track and the output.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return domain.ErrNotInitialized
	}

	e.out.Lock()
	e.out.Clear()
	e.out.Unlock()

	for handle, t := range e.tracks {
		if err := t.stream.Close(); err != nil {
			e.logger.Warn("failed to close track during shutdown",
				slog.Int64("handle", int64(handle)),
				slog.Any("error", err))
		}
	}
	e.out.Close()

	e.tracks = make(map[domain.TrackHandle]*track)
	e.routed = nil
	e.initialized = false
	return nil
}

// IsInitialized returns true if the engine is initialized.
func (e *Engine) IsInitialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.initialized
}

// Load decodes the header of filePath and builds its chain. Nothing plays until Play.
func (e *Engine) Load(filePath string) (domain.TrackHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return domain.InvalidTrackHandle, domain.ErrNotInitialized
	}
	if filePath == "" {
		return domain.InvalidTrackHandle, domain.ErrInvalidFilePath
	}

	stream, format, err := decode(filePath)
	if err != nil {
		return domain.InvalidTrackHandle, err
	}

	t := &track{
		path:   filePath,
		stream: stream,
		format: format,
		volume: 1,
	}
	t.chain = newChain(stream, format.SampleRate, e.rate, e.eq, e.ring, e.gainPct, t.volume)

	handle := e.nextHandle
	e.nextHandle++
	e.tracks[handle] = t

	e.logger.Debug("track loaded",
		slog.String("file_path", filePath),
		slog.Int("sample_rate", int(format.SampleRate)),
		slog.Int64("handle", int64(handle)))
	return handle, nil
}

// Unload stops the track if it is routed and releases its decoder.
func (e *Engine) Unload(handle domain.TrackHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return domain.ErrNotInitialized
	}
	return e.unloadInternal(handle)
}

// unloadInternal unloads a track without locking (caller must hold mu).
func (e *Engine) unloadInternal(handle domain.TrackHandle) error {
	t, ok := e.tracks[handle]
	if !ok {
		return domain.ErrInvalidTrackHandle
	}

	if e.routed == t {
		e.unroute()
	}
	delete(e.tracks, handle)

	if err := t.stream.Close(); err != nil {
		return domain.NewAudioEngineError("unload", t.path, "close failed", err)
	}
	return nil
}

// unroute detaches the routed track from the output (caller must hold mu).
func (e *Engine) unroute() {
	e.out.Lock()
	e.out.Clear()
	e.routed.chain.ctrl.Paused = true
	e.out.Unlock()

	e.routed.queued.Store(false)
	e.routed = nil
}

// Play routes the track to the output and starts or resumes it.
// A track that reached its end restarts from the beginning.
func (e *Engine) Play(handle domain.TrackHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return domain.ErrNotInitialized
	}
	t, ok := e.tracks[handle]
	if !ok {
		return domain.ErrInvalidTrackHandle
	}

	if e.routed != nil && e.routed != t {
		e.unroute()
	}

	e.out.Lock()
	if t.ended.Load() {
		if err := t.stream.Seek(0); err != nil {
			e.out.Unlock()
			return domain.NewAudioEngineError("play", t.path, "rewind failed", err)
		}
		t.ended.Store(false)
	}
	t.chain.ctrl.Paused = false
	e.out.Unlock()

	if e.routed != t {
		e.eq.Reset()
		e.analyser.Reset()
	}
	e.routed = t

	if !t.queued.Load() {
		t.queued.Store(true)
		e.out.Play(beep.Seq(t.chain.ctrl, beep.Callback(func() {
			t.ended.Store(true)
			t.queued.Store(false)
		})))
	}
	return nil
}

// Pause pauses playback, preserving the position.
func (e *Engine) Pause(handle domain.TrackHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return domain.ErrNotInitialized
	}
	t, ok := e.tracks[handle]
	if !ok {
		return domain.ErrInvalidTrackHandle
	}

	e.out.Lock()
	t.chain.ctrl.Paused = true
	e.out.Unlock()
	return nil
}

// Stop stops playback and unloads the track.
func (e *Engine) Stop(handle domain.TrackHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return domain.ErrNotInitialized
	}
	return e.unloadInternal(handle)
}

// Status returns the playback status. A track that played to its end is stopped.
func (e *Engine) Status(handle domain.TrackHandle) (domain.PlaybackStatus, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.initialized {
		return domain.StatusStopped, domain.ErrNotInitialized
	}
	t, ok := e.tracks[handle]
	if !ok {
		return domain.StatusStopped, domain.ErrInvalidTrackHandle
	}

	if t.ended.Load() || !t.queued.Load() {
		return domain.StatusStopped, nil
	}

	e.out.Lock()
	paused := t.chain.ctrl.Paused
	e.out.Unlock()

	if paused {
		return domain.StatusPaused, nil
	}
	return domain.StatusPlaying, nil
}

// Position returns the decoder position converted to time.
func (e *Engine) Position(handle domain.TrackHandle) (time.Duration, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.initialized {
		return 0, domain.ErrNotInitialized
	}
	t, ok := e.tracks[handle]
	if !ok {
		return 0, domain.ErrInvalidTrackHandle
	}

	e.out.Lock()
	pos := t.stream.Position()
	e.out.Unlock()

	return t.format.SampleRate.D(pos), nil
}

// Duration returns the total track duration.
func (e *Engine) Duration(handle domain.TrackHandle) (time.Duration, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.initialized {
		return 0, domain.ErrNotInitialized
	}
	t, ok := e.tracks[handle]
	if !ok {
		return 0, domain.ErrInvalidTrackHandle
	}

	return t.format.SampleRate.D(t.stream.Len()), nil
}

// Seek sets the playback position.
func (e *Engine) Seek(handle domain.TrackHandle, position time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return domain.ErrNotInitialized
	}
	t, ok := e.tracks[handle]
	if !ok {
		return domain.ErrInvalidTrackHandle
	}

	length := t.stream.Len()
	if position < 0 || position > t.format.SampleRate.D(length) {
		return domain.ErrInvalidPosition
	}
	n := min(t.format.SampleRate.N(position), length)

	e.out.Lock()
	err := t.stream.Seek(n)
	e.out.Unlock()

	if err != nil {
		return domain.NewAudioEngineError("seek", t.path, fmt.Sprintf("seek to sample %d failed", n), err)
	}
	t.ended.Store(false)
	return nil
}

// SetVolume sets the track volume.
func (e *Engine) SetVolume(handle domain.TrackHandle, volume float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return domain.ErrNotInitialized
	}
	t, ok := e.tracks[handle]
	if !ok {
		return domain.ErrInvalidTrackHandle
	}
	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}

	t.volume = volume
	e.out.Lock()
	t.chain.setVolume(volume)
	e.out.Unlock()
	return nil
}

// GetVolume returns the current volume.
func (e *Engine) GetVolume(handle domain.TrackHandle) (float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.initialized {
		return 0, domain.ErrNotInitialized
	}
	t, ok := e.tracks[handle]
	if !ok {
		return 0, domain.ErrInvalidTrackHandle
	}
	return t.volume, nil
}

// SetEQ sets the gain of one filter in dB.
func (e *Engine) SetEQ(band domain.EQBand, gainDB float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return domain.ErrNotInitialized
	}
	if gainDB < domain.MinEQGainDB || gainDB > domain.MaxEQGainDB {
		return fmt.Errorf("%w: %s %.1f dB", domain.ErrInvalidGain, band, gainDB)
	}

	switch band {
	case domain.EQBass:
		e.eq.Bass.SetGain(gainDB)
	case domain.EQMid:
		e.eq.Mid.SetGain(gainDB)
	case domain.EQTreble:
		e.eq.Treble.SetGain(gainDB)
	default:
		return domain.NewValidationError("band", band, "unknown equalizer band")
	}
	return nil
}

// SetGain sets the master gain of every loaded chain.
func (e *Engine) SetGain(percent float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return domain.ErrNotInitialized
	}
	if percent < domain.MinGainPct || percent > domain.MaxGainPct {
		return fmt.Errorf("%w: master %.0f%%", domain.ErrInvalidGain, percent)
	}

	e.gainPct = percent
	e.out.Lock()
	for _, t := range e.tracks {
		t.chain.setGain(percent)
	}
	e.out.Unlock()
	return nil
}

// Analysis returns the analyser fed by the tap, or nil before Initialize.
func (e *Engine) Analysis() ports.AnalysisTap {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.analyser == nil {
		return nil
	}
	return e.analyser
}

var _ ports.AudioEngine = (*Engine)(nil)
