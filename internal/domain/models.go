// Package domain contains core models of the TuneWave player with no external dependencies.
package domain

import (
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// UnknownArtist is the artist of a track whose file carries no artist tag.
const UnknownArtist = "Unknown Artist"

// MusicTrack represents a single imported audio file with its metadata.
type MusicTrack struct {
	// ID is a unique identifier for the track
	ID string

	// FilePath is the absolute path to the audio file on the filesystem
	FilePath string

	// Title is the song title (from tags or the file name)
	Title string

	// Artist is the performing artist name
	Artist string

	// Album is the album name
	Album string

	// Duration is the total length of the track (zero until loaded)
	Duration time.Duration

	// FileFormat is the lower-case file extension without the dot (mp3, flac, ...)
	FileFormat string

	// AlbumArt is the embedded cover image as raw bytes (nil if none)
	AlbumArt []byte

	// AlbumArtMIME is the MIME type of AlbumArt
	AlbumArtMIME string
}

// HasAlbumArt reports whether the track carries an embedded cover image.
func (t MusicTrack) HasAlbumArt() bool {
	return len(t.AlbumArt) > 0
}

// PlaybackState is a snapshot of the player managed by the playback service.
type PlaybackState struct {
	// CurrentTrack is the currently loaded track (nil if none)
	CurrentTrack *MusicTrack

	// CurrentIndex is the index in the queue (-1 if no track)
	CurrentIndex int

	// Status is the current playback status
	Status PlaybackStatus

	// Position is the current playback position within the track
	Position time.Duration

	// Duration is the total duration of the loaded track
	Duration time.Duration

	// Volume is the current volume level (0.0 to 1.0)
	Volume float64

	// IsMuted indicates if audio is muted
	IsMuted bool

	// Equalizer holds the current band gains
	Equalizer EqualizerSettings
}

// PlaybackStatus represents the current playback state.
type PlaybackStatus int

const (
	// StatusStopped indicates playback is stopped
	StatusStopped PlaybackStatus = iota

	// StatusPlaying indicates playback is active
	StatusPlaying

	// StatusPaused indicates playback is paused
	StatusPaused
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// LoopMode controls what happens when the end of a track or the queue is reached.
type LoopMode int

const (
	// LoopNone stops after the last track of the queue
	LoopNone LoopMode = iota

	// LoopAll wraps from the last track back to the first
	LoopAll

	// LoopOne replays the current track when it completes
	LoopOne
)

// Next returns the mode that follows m in the none -> all -> one cycle.
func (m LoopMode) Next() LoopMode {
	switch m {
	case LoopNone:
		return LoopAll
	case LoopAll:
		return LoopOne
	default:
		return LoopNone
	}
}

// String returns a human-readable representation of the loop mode.
func (m LoopMode) String() string {
	switch m {
	case LoopNone:
		return "none"
	case LoopAll:
		return "all"
	case LoopOne:
		return "one"
	default:
		return "unknown"
	}
}

// EQBand names one of the three equalizer filters.
type EQBand int

const (
	// EQBass is the low-shelf filter at 200 Hz
	EQBass EQBand = iota

	// EQMid is the peaking filter at 1 kHz
	EQMid

	// EQTreble is the high-shelf filter at 3 kHz
	EQTreble
)

// String returns the band name.
func (b EQBand) String() string {
	switch b {
	case EQBass:
		return "bass"
	case EQMid:
		return "mid"
	case EQTreble:
		return "treble"
	default:
		return "unknown"
	}
}

// Equalizer limits.
const (
	MinEQGainDB    = -12.0
	MaxEQGainDB    = 12.0
	MinGainPct     = 0.0
	MaxGainPct     = 200.0
	DefaultGainPct = 100.0
)

// EqualizerSettings holds the gains of the three filters and the master gain.
type EqualizerSettings struct {
	BassDB   float64
	MidDB    float64
	TrebleDB float64
	GainPct  float64
}

// DefaultEqualizer returns flat settings with unity master gain.
func DefaultEqualizer() EqualizerSettings {
	return EqualizerSettings{GainPct: DefaultGainPct}
}

// TrackHandle represents a handle to a track loaded in the audio engine.
type TrackHandle int64

const (
	// InvalidTrackHandle represents an invalid or uninitialized track handle
	InvalidTrackHandle TrackHandle = 0
)

// ScanProgress represents the progress of a library import.
type ScanProgress struct {
	// CurrentFile is the file currently being read
	CurrentFile string

	// FilesScanned is the number of files processed so far
	FilesScanned int

	// TotalFiles is the total number of files to read
	TotalFiles int
}

// Percentage returns the completion percentage (0-100), or -1 if total is unknown.
func (p ScanProgress) Percentage() float64 {
	if p.TotalFiles <= 0 {
		return -1
	}
	return float64(p.FilesScanned) / float64(p.TotalFiles) * 100.0
}

// SupportedFormats lists the file extensions, without the dot, the player can decode.
var SupportedFormats = []string{"mp3", "wav", "flac", "ogg", "oga"}

// FormatOf returns the lower-case extension of path without the dot.
func FormatOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// IsSupportedFormat reports whether path has one of the SupportedFormats extensions.
func IsSupportedFormat(path string) bool {
	return slices.Contains(SupportedFormats, FormatOf(path))
}
