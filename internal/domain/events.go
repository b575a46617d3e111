// Package domain defines events for the event-driven architecture.
package domain

import (
	"time"
)

// Event is the base interface for all events published on the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Playback events
	EventTrackLoaded    EventType = "track.loaded"
	EventTrackStarted   EventType = "track.started"
	EventTrackPaused    EventType = "track.paused"
	EventTrackStopped   EventType = "track.stopped"
	EventTrackCompleted EventType = "track.completed"
	EventTrackProgress  EventType = "track.progress"
	EventTrackError     EventType = "track.error"
	EventAutoNext       EventType = "track.auto_next"

	// Volume and effects events
	EventVolumeChanged    EventType = "volume.changed"
	EventMuteToggled      EventType = "mute.toggled"
	EventEqualizerChanged EventType = "equalizer.changed"

	// Queue events
	EventQueueChanged    EventType = "queue.changed"
	EventLoopModeChanged EventType = "loop.changed"
	EventShuffleToggled  EventType = "shuffle.toggled"

	// Library import events
	EventScanStarted   EventType = "scan.started"
	EventScanCompleted EventType = "scan.completed"
	EventScanCancelled EventType = "scan.cancelled"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides the timestamp shared by every event.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// TrackLoadedEvent is published when a track is successfully loaded.
type TrackLoadedEvent struct {
	baseEvent
	Track    MusicTrack
	Handle   TrackHandle
	Duration time.Duration
	Index    int // Queue index
}

// Type returns the event type.
func (e TrackLoadedEvent) Type() EventType { return EventTrackLoaded }

// NewTrackLoadedEvent creates a new TrackLoadedEvent.
func NewTrackLoadedEvent(track MusicTrack, handle TrackHandle, duration time.Duration, index int) TrackLoadedEvent {
	return TrackLoadedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Handle:    handle,
		Duration:  duration,
		Index:     index,
	}
}

// TrackStartedEvent is published when playback starts or resumes.
type TrackStartedEvent struct {
	baseEvent
	Track MusicTrack
}

// Type returns the event type.
func (e TrackStartedEvent) Type() EventType { return EventTrackStarted }

// NewTrackStartedEvent creates a new TrackStartedEvent.
func NewTrackStartedEvent(track MusicTrack) TrackStartedEvent {
	return TrackStartedEvent{baseEvent: newBaseEvent(), Track: track}
}

// TrackPausedEvent is published when playback is paused.
type TrackPausedEvent struct {
	baseEvent
	Track    MusicTrack
	Position time.Duration
}

// Type returns the event type.
func (e TrackPausedEvent) Type() EventType { return EventTrackPaused }

// NewTrackPausedEvent creates a new TrackPausedEvent.
func NewTrackPausedEvent(track MusicTrack, position time.Duration) TrackPausedEvent {
	return TrackPausedEvent{baseEvent: newBaseEvent(), Track: track, Position: position}
}

// TrackStoppedEvent is published when playback is stopped.
type TrackStoppedEvent struct {
	baseEvent
	Track MusicTrack
}

// Type returns the event type.
func (e TrackStoppedEvent) Type() EventType { return EventTrackStopped }

// NewTrackStoppedEvent creates a new TrackStoppedEvent.
func NewTrackStoppedEvent(track MusicTrack) TrackStoppedEvent {
	return TrackStoppedEvent{baseEvent: newBaseEvent(), Track: track}
}

// TrackCompletedEvent is published when a track finishes playing naturally.
type TrackCompletedEvent struct {
	baseEvent
	Track MusicTrack
}

// Type returns the event type.
func (e TrackCompletedEvent) Type() EventType { return EventTrackCompleted }

// NewTrackCompletedEvent creates a new TrackCompletedEvent.
func NewTrackCompletedEvent(track MusicTrack) TrackCompletedEvent {
	return TrackCompletedEvent{baseEvent: newBaseEvent(), Track: track}
}

// TrackProgressEvent is published periodically while a track is loaded.
type TrackProgressEvent struct {
	baseEvent
	Position time.Duration
	Duration time.Duration
}

// Type returns the event type.
func (e TrackProgressEvent) Type() EventType { return EventTrackProgress }

// NewTrackProgressEvent creates a new TrackProgressEvent.
func NewTrackProgressEvent(position, duration time.Duration) TrackProgressEvent {
	return TrackProgressEvent{baseEvent: newBaseEvent(), Position: position, Duration: duration}
}

// TrackErrorEvent is published when a track fails to load or play.
type TrackErrorEvent struct {
	baseEvent
	Track MusicTrack
	Err   error
}

// Type returns the event type.
func (e TrackErrorEvent) Type() EventType { return EventTrackError }

// NewTrackErrorEvent creates a new TrackErrorEvent.
func NewTrackErrorEvent(track MusicTrack, err error) TrackErrorEvent {
	return TrackErrorEvent{baseEvent: newBaseEvent(), Track: track, Err: err}
}

// AutoNextEvent asks the playlist to advance after a track completed.
type AutoNextEvent struct {
	baseEvent
	Track MusicTrack
	Index int
}

// Type returns the event type.
func (e AutoNextEvent) Type() EventType { return EventAutoNext }

// NewAutoNextEvent creates a new AutoNextEvent.
func NewAutoNextEvent(track MusicTrack, index int) AutoNextEvent {
	return AutoNextEvent{baseEvent: newBaseEvent(), Track: track, Index: index}
}

// VolumeChangedEvent is published when the volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64 // 0.0 to 1.0
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType { return EventVolumeChanged }

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{baseEvent: newBaseEvent(), Volume: volume}
}

// MuteToggledEvent is published when mute is toggled.
type MuteToggledEvent struct {
	baseEvent
	Muted bool
}

// Type returns the event type.
func (e MuteToggledEvent) Type() EventType { return EventMuteToggled }

// NewMuteToggledEvent creates a new MuteToggledEvent.
func NewMuteToggledEvent(muted bool) MuteToggledEvent {
	return MuteToggledEvent{baseEvent: newBaseEvent(), Muted: muted}
}

// EqualizerChangedEvent is published when a filter gain or the master gain changes.
type EqualizerChangedEvent struct {
	baseEvent
	Settings EqualizerSettings
}

// Type returns the event type.
func (e EqualizerChangedEvent) Type() EventType { return EventEqualizerChanged }

// NewEqualizerChangedEvent creates a new EqualizerChangedEvent.
func NewEqualizerChangedEvent(settings EqualizerSettings) EqualizerChangedEvent {
	return EqualizerChangedEvent{baseEvent: newBaseEvent(), Settings: settings}
}

// QueueChangedEvent is published when tracks are added or the current index moves.
type QueueChangedEvent struct {
	baseEvent
	Queue []MusicTrack
	Index int
}

// Type returns the event type.
func (e QueueChangedEvent) Type() EventType { return EventQueueChanged }

// NewQueueChangedEvent creates a new QueueChangedEvent.
func NewQueueChangedEvent(queue []MusicTrack, index int) QueueChangedEvent {
	return QueueChangedEvent{baseEvent: newBaseEvent(), Queue: queue, Index: index}
}

// LoopModeChangedEvent is published when the loop mode cycles.
type LoopModeChangedEvent struct {
	baseEvent
	Mode LoopMode
}

// Type returns the event type.
func (e LoopModeChangedEvent) Type() EventType { return EventLoopModeChanged }

// NewLoopModeChangedEvent creates a new LoopModeChangedEvent.
func NewLoopModeChangedEvent(mode LoopMode) LoopModeChangedEvent {
	return LoopModeChangedEvent{baseEvent: newBaseEvent(), Mode: mode}
}

// ShuffleToggledEvent is published when shuffle is switched on or off.
type ShuffleToggledEvent struct {
	baseEvent
	Enabled bool
}

// Type returns the event type.
func (e ShuffleToggledEvent) Type() EventType { return EventShuffleToggled }

// NewShuffleToggledEvent creates a new ShuffleToggledEvent.
func NewShuffleToggledEvent(enabled bool) ShuffleToggledEvent {
	return ShuffleToggledEvent{baseEvent: newBaseEvent(), Enabled: enabled}
}

// ScanStartedEvent is published when a library import starts.
type ScanStartedEvent struct {
	baseEvent
	Path string
}

// Type returns the event type.
func (e ScanStartedEvent) Type() EventType { return EventScanStarted }

// NewScanStartedEvent creates a new ScanStartedEvent.
func NewScanStartedEvent(path string) ScanStartedEvent {
	return ScanStartedEvent{baseEvent: newBaseEvent(), Path: path}
}

// ScanCompletedEvent is published when a library import finishes.
type ScanCompletedEvent struct {
	baseEvent
	Tracks   []MusicTrack
	Progress ScanProgress
}

// Type returns the event type.
func (e ScanCompletedEvent) Type() EventType { return EventScanCompleted }

// NewScanCompletedEvent creates a new ScanCompletedEvent.
func NewScanCompletedEvent(tracks []MusicTrack, progress ScanProgress) ScanCompletedEvent {
	return ScanCompletedEvent{baseEvent: newBaseEvent(), Tracks: tracks, Progress: progress}
}

// ScanCancelledEvent is published when a library import is canceled.
type ScanCancelledEvent struct {
	baseEvent
	Reason string
}

// Type returns the event type.
func (e ScanCancelledEvent) Type() EventType { return EventScanCancelled }

// NewScanCancelledEvent creates a new ScanCancelledEvent.
func NewScanCancelledEvent(reason string) ScanCancelledEvent {
	return ScanCancelledEvent{baseEvent: newBaseEvent(), Reason: reason}
}
