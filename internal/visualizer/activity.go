package visualizer

import (
	"sync/atomic"

	"github.com/tejashwikalptaru/tunewave/internal/domain"
	"github.com/tejashwikalptaru/tunewave/internal/ports"
)

// ActivityTracker follows playback events and answers IsPlaying for the loop.
type ActivityTracker struct {
	bus     ports.EventBus
	playing atomic.Bool
	subs    []domain.SubscriptionID
}

// NewActivityTracker subscribes to the playback events of bus.
func NewActivityTracker(bus ports.EventBus) *ActivityTracker {
	t := &ActivityTracker{bus: bus}
	on := func(playing bool) domain.EventHandler {
		return func(domain.Event) { t.playing.Store(playing) }
	}

	t.subs = append(t.subs,
		bus.Subscribe(domain.EventTrackStarted, on(true)),
		bus.Subscribe(domain.EventTrackPaused, on(false)),
		bus.Subscribe(domain.EventTrackStopped, on(false)),
		bus.Subscribe(domain.EventTrackCompleted, on(false)),
		bus.Subscribe(domain.EventTrackError, on(false)),
	)
	return t
}

// IsPlaying reports whether a track is playing.
func (t *ActivityTracker) IsPlaying() bool {
	return t.playing.Load()
}

// Close unsubscribes from the bus.
func (t *ActivityTracker) Close() {
	for _, id := range t.subs {
		t.bus.Unsubscribe(id)
	}
	t.subs = nil
}
