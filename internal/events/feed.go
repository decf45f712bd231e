package events

import (
	"context"
	"sync"
	"time"
)

// Notification tells stream subscribers that the ticket collection changed.
// Subscribers re-read the collection; the notification carries no snapshot.
type Notification struct {
	Type         EventType `json:"type"`
	TicketID     string    `json:"ticket_id"`
	TicketNumber string    `json:"ticket_number"`
	At           time.Time `json:"at"`
}

// NotificationFor derives the change notification for an event.
func NotificationFor(event Event) Notification {
	return Notification{
		Type:         event.Type,
		TicketID:     event.TicketID,
		TicketNumber: event.TicketNumber,
		At:           event.Timestamp,
	}
}

// Sink receives change notifications.
type Sink interface {
	Send(ctx context.Context, n Notification) error
}

// Feed fans notifications out to in-process subscribers.
type Feed struct {
	mu     sync.Mutex
	subs   map[uint64]chan Notification
	nextID uint64
	closed bool
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[uint64]chan Notification)}
}

// Subscribe registers a subscriber. The returned cancel func must be called
// when the subscriber goes away; it closes the channel.
//
// Each channel buffers a single notification. A subscriber that falls behind
// sees one pending notification instead of a backlog.
func (f *Feed) Subscribe() (<-chan Notification, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan Notification, 1)
	if f.closed {
		close(ch)
		return ch, func() {}
	}

	id := f.nextID
	f.nextID++
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if sub, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(sub)
			}
		})
	}
}

// Broadcast delivers n to every subscriber without blocking.
func (f *Feed) Broadcast(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ch := range f.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

// Send implements Sink.
func (f *Feed) Send(_ context.Context, n Notification) error {
	f.Broadcast(n)
	return nil
}

// Subscribers reports the current subscriber count.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close ends every subscription.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}

// Forward routes every ticket event published on dispatcher to sink.
func Forward(dispatcher Dispatcher, sink Sink) {
	for _, eventType := range AllEventTypes {
		dispatcher.Subscribe(eventType, func(ctx context.Context, event Event) error {
			return sink.Send(ctx, NotificationFor(event))
		})
	}
}
