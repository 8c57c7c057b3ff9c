package events

import (
	"context"
	"sync"

	"github.com/hospitaldao/appointments-api/pkg/logging"
)

// Handler reacts to a published event.
type Handler interface {
	Handle(ctx context.Context, payload any) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, payload any) error

func (f HandlerFunc) Handle(ctx context.Context, payload any) error {
	return f(ctx, payload)
}

// Bus is a synchronous in-process publish/subscribe dispatcher. Handlers for
// one event name run in subscription order on the publisher's goroutine. A
// failing or panicking handler is logged and does not stop later handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *logging.Logger
}

// NewBus creates an event bus. Owned by the composition root; there is no
// package-level instance.
func NewBus(logger *logging.Logger) *Bus {
	if logger == nil {
		logger = logging.Default()
	}
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event name.
func (b *Bus) Subscribe(name string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish invokes every handler registered for name, in subscription order.
// Handler errors are logged, never returned: side effects must not fail the
// operation that triggered them.
func (b *Bus) Publish(ctx context.Context, name string, payload any) {
	b.mu.RLock()
	handlers := b.handlers[name]
	b.mu.RUnlock()

	for _, h := range handlers {
		b.invoke(ctx, name, h, payload)
	}
}

func (b *Bus) invoke(ctx context.Context, name string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "event", name, "panic", r)
		}
	}()
	if err := h.Handle(ctx, payload); err != nil {
		b.logger.Error("event handler failed", "event", name, "error", err)
	}
}
