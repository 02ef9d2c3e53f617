// Package events provides the in-process publish/subscribe bus used to announce
// key pair lifecycle changes to other subsystems.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
)

// Lifecycle event names.
const (
	// KeyPairBeforeChanged fires before an owner's pair is replaced. Subscribers can
	// snapshot anything that still needs the old key.
	KeyPairBeforeChanged = "keypair.before_changed"

	// KeyPairAfterChanged fires once the new pair is persisted. Subscribers
	// re-encrypt whatever they protect with the owner's key.
	KeyPairAfterChanged = "keypair.after_changed"
)

// KeyPairChanged is the payload of both lifecycle events. OldPair is nil on first
// initialization and NewPair is nil in the "before" event.
type KeyPairChanged struct {
	Name    string
	OwnerID string
	OldPair *cryptoDomain.KeyPair
	NewPair *cryptoDomain.KeyPair
}

// Handler reacts to an event. A returned error aborts the dispatching operation.
type Handler func(ctx context.Context, event KeyPairChanged) error

// Dispatcher emits lifecycle events.
type Dispatcher interface {
	Dispatch(ctx context.Context, event KeyPairChanged) error
}

// Bus is an observer list keyed by event name. Handlers run synchronously in
// subscription order and share the caller's context, including its transaction.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	logger   *slog.Logger
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewBus creates an empty Bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{handlers: make(map[string][]namedHandler), logger: logger}
}

// Subscribe registers handler for eventName. subscriber names the handler in logs and errors.
func (b *Bus) Subscribe(eventName, subscriber string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], namedHandler{name: subscriber, handler: handler})
}

// Dispatch delivers event to every handler subscribed to event.Name, stopping at
// the first error.
func (b *Bus) Dispatch(ctx context.Context, event KeyPairChanged) error {
	b.mu.RLock()
	handlers := append([]namedHandler(nil), b.handlers[event.Name]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h.handler(ctx, event); err != nil {
			b.logger.Error("event handler failed",
				slog.String("event", event.Name),
				slog.String("subscriber", h.name),
				slog.String("owner_id", event.OwnerID),
				slog.Any("error", err),
			)
			return fmt.Errorf("%s handler %s: %w", event.Name, h.name, err)
		}
	}

	b.logger.Debug("event dispatched",
		slog.String("event", event.Name),
		slog.String("owner_id", event.OwnerID),
		slog.Int("subscribers", len(handlers)),
	)
	return nil
}
