// Package eventbus provides the synchronous EventBus implementation.
package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/tejashwikalptaru/tunewave/internal/domain"
	"github.com/tejashwikalptaru/tunewave/internal/ports"
)

// ErrClosed is returned by Close when the bus was already closed.
var ErrClosed = errors.New("event bus closed")

// wildcard marks a subscription that receives every event type.
const wildcard domain.EventType = "*"

// SyncEventBus delivers events to handlers synchronously, on the publishing goroutine,
// in subscription order. Type-specific handlers run before wildcard handlers.
//
// Thread-safety: publishing and (un)subscribing may happen concurrently. Handlers are
// called without the lock held, so a handler may subscribe or publish itself.
type SyncEventBus struct {
	logger *slog.Logger

	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	closed bool
}

type subscription struct {
	id        domain.SubscriptionID
	eventType domain.EventType
	handler   domain.EventHandler
}

// NewSyncEventBus creates a new synchronous event bus.
func NewSyncEventBus() *SyncEventBus {
	return &SyncEventBus{}
}

// SetLogger sets the logger for this event bus.
func (bus *SyncEventBus) SetLogger(logger *slog.Logger) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.logger = logger
}

// Publish delivers event to its subscribers. A closed bus drops the event.
// A panicking handler is recovered and logged; remaining handlers still run.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	eventType := event.Type()
	typed := make([]domain.EventHandler, 0, len(bus.subs))
	var wild []domain.EventHandler
	for _, sub := range bus.subs {
		switch sub.eventType {
		case eventType:
			typed = append(typed, sub.handler)
		case wildcard:
			wild = append(wild, sub.handler)
		}
	}
	logger := bus.logger
	bus.mu.RUnlock()

	for _, h := range append(typed, wild...) {
		bus.deliver(logger, h, event)
	}
}

func (bus *SyncEventBus) deliver(logger *slog.Logger, handler domain.EventHandler, event domain.Event) {
	defer func() {
		if r := recover(); r != nil && logger != nil {
			logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("event_type", string(event.Type())))
		}
	}()
	handler(event)
}

// Subscribe registers handler for eventType. On a closed bus, or with a nil handler,
// it returns an empty ID and registers nothing.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(eventType, handler)
}

// SubscribeAll registers handler for every event type.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(wildcard, handler)
}

func (bus *SyncEventBus) add(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		return ""
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return ""
	}

	bus.nextID++
	id := domain.SubscriptionID(fmt.Sprintf("sub-%d", bus.nextID))
	bus.subs = append(bus.subs, subscription{id: id, eventType: eventType, handler: handler})
	return id
}

// Unsubscribe removes a subscription, keeping the order of the remaining ones.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.subs = slices.DeleteFunc(bus.subs, func(s subscription) bool { return s.id == id })
}

// Close drops all subscriptions. Closing twice returns ErrClosed.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return ErrClosed
	}
	bus.closed = true
	bus.subs = nil
	return nil
}

// SubscriberCount returns the number of active subscriptions.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subs)
}

var _ ports.EventBus = (*SyncEventBus)(nil)
