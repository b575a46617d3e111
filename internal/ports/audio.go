// Package ports define interfaces for dependency inversion.
// These interfaces keep services and the visualizer independent of the audio and UI libraries.
package ports

import (
	"time"

	"github.com/tejashwikalptaru/tunewave/internal/domain"
)

// AudioEngine is the interface for the decode/playback graph.
// The chain behind it is: decoder -> bass/mid/treble filters -> gain -> analysis tap -> output.
//
// Implementations must be thread-safe as they may be called from multiple goroutines.
type AudioEngine interface {
	// Lifecycle methods

	// Initialize opens the output device at the given sample rate.
	// fftSize configures the analysis tap (power of two).
	Initialize(sampleRate int, fftSize int) error

	// Shutdown releases all audio engine resources.
	Shutdown() error

	// IsInitialized returns true if the engine has been successfully initialized.
	IsInitialized() bool

	// Track loading methods

	// Load decodes the header of an audio file and returns a handle to it.
	// Only one track is routed through the graph at a time; loading replaces it.
	Load(filePath string) (domain.TrackHandle, error)

	// Unload releases resources for a previously loaded track.
	Unload(handle domain.TrackHandle) error

	// Playback control methods

	// Play starts or resumes playback of the specified track.
	Play(handle domain.TrackHandle) error

	// Pause pauses playback, preserving the position.
	Pause(handle domain.TrackHandle) error

	// Stop stops playback of the specified track and unloads it.
	Stop(handle domain.TrackHandle) error

	// State query methods

	// Status returns the current playback status of the specified track.
	// A track that reached its end reports StatusStopped.
	Status(handle domain.TrackHandle) (domain.PlaybackStatus, error)

	// Position returns the current playback position within the track.
	Position(handle domain.TrackHandle) (time.Duration, error)

	// Duration returns the total duration of the specified track.
	Duration(handle domain.TrackHandle) (time.Duration, error)

	// Seek sets the playback position. The position must be within [0, Duration].
	Seek(handle domain.TrackHandle, position time.Duration) error

	// Volume and effects

	// SetVolume sets the output volume, 0.0 (silent) to 1.0 (full volume).
	SetVolume(handle domain.TrackHandle, volume float64) error

	// GetVolume returns the current volume level for the specified track.
	GetVolume(handle domain.TrackHandle) (float64, error)

	// SetEQ sets the gain of one filter in dB, within [MinEQGainDB, MaxEQGainDB].
	SetEQ(band domain.EQBand, gainDB float64) error

	// SetGain sets the master gain in percent, within [MinGainPct, MaxGainPct].
	SetGain(percent float64) error

	// Analysis returns the read-only analysis tap of the graph.
	// It never returns nil once the engine is initialized.
	Analysis() AnalysisTap
}

// AnalysisTap exposes the last transform frame computed from the output signal.
// Consumers only read from it; it is owned by the audio engine.
type AnalysisTap interface {
	// FFTSize returns the transform size.
	FFTSize() int

	// FrequencyBinCount returns FFTSize()/2, the length of a frequency snapshot.
	FrequencyBinCount() int

	// ByteFrequencyData fills dst with magnitudes scaled to 0-255 and returns the count written.
	ByteFrequencyData(dst []byte) int

	// ByteTimeDomainData fills dst with the waveform scaled to 0-255 (128 is silence)
	// and returns the count written.
	ByteTimeDomainData(dst []byte) int
}

// AudioEngineFactory is a function that creates an AudioEngine instance.
type AudioEngineFactory func() AudioEngine
