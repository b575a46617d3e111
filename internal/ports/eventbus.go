package ports

import (
	"github.com/tejashwikalptaru/tunewave/internal/domain"
)

// EventBus is the interface for publishing and subscribing to events.
// Services publish; the presenter and the visualizer's activity tracker subscribe.
//
// Thread-safety: Implementations must be thread-safe as events may be published
// from the playback progress goroutine while the UI thread subscribes.
//
// Example usage:
//
//	subID := bus.Subscribe(domain.EventTrackStarted, func(event domain.Event) {
//	    activity.Set(true)
//	})
//	defer bus.Unsubscribe(subID)
type EventBus interface {
	// Publish delivers an event to all subscribers of its type, then to wildcard subscribers.
	// Handlers must return quickly.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the specified type and returns
	// an ID that can be passed to Unsubscribe.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// SubscribeAll registers a handler that receives every event (logging, debugging).
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a previously registered handler. Unknown IDs are a no-op.
	Unsubscribe(id domain.SubscriptionID)

	// Close shuts the bus down; later publishes are dropped.
	Close() error
}
