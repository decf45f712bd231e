package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// EventHandler reacts to a ticket event.
type EventHandler func(context.Context, Event) error

// Dispatcher routes ticket events from the services to their listeners.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// HandlerError is a listener failure, tagged with the event that caused it.
type HandlerError struct {
	Type         EventType
	TicketNumber string
	Err          error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s handler for %s: %v", e.Type, e.TicketNumber, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// ErrHandlerPanic marks a listener that panicked instead of returning.
var ErrHandlerPanic = errors.New("event handler panicked")

type ticketDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
}

// NewInMemoryDispatcher returns a dispatcher that calls listeners in the
// publishing goroutine, in subscription order.
func NewInMemoryDispatcher() Dispatcher {
	return &ticketDispatcher{
		listeners: make(map[EventType][]EventHandler),
	}
}

// Publish runs every listener for event.Type, including those after a failing
// or panicking one. The failures come back joined, each as a *HandlerError.
func (d *ticketDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := invoke(ctx, handler, event); err != nil {
			errs = append(errs, &HandlerError{Type: event.Type, TicketNumber: event.TicketNumber, Err: err})
		}
	}
	return errors.Join(errs...)
}

func invoke(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return handler(ctx, event)
}

// Subscribe registers a handler for the given event type.
func (d *ticketDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
