package notify

import (
	"errors"
	"log/slog"
	"sync"
)

// Hub errors.
var (
	// ErrQueueFull is returned when the delivery queue cannot accept
	// another event. Publishers treat this as a dropped notification,
	// not a failed operation.
	ErrQueueFull = errors.New("notification queue is full")

	// ErrHubClosed is returned when publishing after Stop.
	ErrHubClosed = errors.New("notification hub is closed")
)

// Subscriber receives events from a Hub. Each subscriber has its own
// buffered channel; a subscriber that stops draining loses events rather
// than slowing down delivery to everyone else.
type Subscriber struct {
	ch chan *Event
}

// Events returns the channel the subscriber's events arrive on.
// The channel is closed when the subscriber is unsubscribed or the hub stops.
func (s *Subscriber) Events() <-chan *Event {
	return s.ch
}

// HubConfig holds sizing for the hub's internal queues.
type HubConfig struct {
	// QueueSize is the capacity of the central delivery queue.
	QueueSize int

	// SubscriberBuffer is the per-subscriber channel capacity.
	SubscriberBuffer int
}

// DefaultHubConfig returns a HubConfig with reasonable defaults.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		QueueSize:        64,
		SubscriberBuffer: 16,
	}
}

// Hub fans events out to all current subscribers through a single
// background delivery worker.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscriber]struct{}
	queue  chan *Event
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
	config HubConfig
	logger *slog.Logger
}

// NewHub creates a Hub; call Start before publishing.
func NewHub(config HubConfig, logger *slog.Logger) *Hub {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultHubConfig().QueueSize
	}
	if config.SubscriberBuffer <= 0 {
		config.SubscriberBuffer = DefaultHubConfig().SubscriberBuffer
	}

	return &Hub{
		subs:   make(map[*Subscriber]struct{}),
		queue:  make(chan *Event, config.QueueSize),
		done:   make(chan struct{}),
		config: config,
		logger: logger.With("component", "notify_hub"),
	}
}

// Start launches the delivery worker.
func (h *Hub) Start() {
	h.wg.Add(1)
	go h.deliver()
}

// Stop shuts down delivery and closes every subscriber channel.
// Events still queued at shutdown are discarded. Safe to call once.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()

	close(h.done)
	h.wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		close(sub.ch)
		delete(h.subs, sub)
	}
}

// Subscribe registers a new subscriber for all future events.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan *Event, h.config.SubscriberBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subs[sub] = struct{}{}

	h.logger.Debug("subscriber connected", "subscriber_count", len(h.subs))
	return sub
}

// Unsubscribe removes a subscriber and closes its channel.
// Unsubscribing twice is a no-op.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.ch)

	h.logger.Debug("subscriber disconnected", "subscriber_count", len(h.subs))
}

// Publish hands an event to the delivery worker and returns immediately.
// Returns ErrQueueFull when the queue is saturated and ErrHubClosed after
// Stop; callers on the timer-firing path log these and move on.
func (h *Hub) Publish(event *Event) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return ErrHubClosed
	}

	select {
	case h.queue <- event:
		return nil
	default:
		h.logger.Warn("delivery queue full, dropping event",
			"event_id", event.ID,
			"event_type", event.Type)
		return ErrQueueFull
	}
}

// deliver is the background worker fanning queued events out to subscribers.
func (h *Hub) deliver() {
	defer h.wg.Done()

	for {
		select {
		case <-h.done:
			return
		case event := <-h.queue:
			h.fanOut(event)
		}
	}
}

// fanOut sends one event to every current subscriber without blocking.
// It holds the lock for the whole fan-out; sends never block, and the
// lock keeps Unsubscribe from closing a channel mid-send.
func (h *Hub) fanOut(event *Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.logger.Debug("delivering event",
		"event_id", event.ID,
		"event_type", event.Type,
		"subscriber_count", len(h.subs))

	for sub := range h.subs {
		select {
		case sub.ch <- event:
		default:
			h.logger.Warn("subscriber too slow, dropping event",
				"event_id", event.ID,
				"event_type", event.Type)
		}
	}
}
