// Package events publishes account-lifecycle events to a message broker.
// Publishing is best-effort: a broker outage never fails the request that
// produced the event.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Event types emitted by the auth and user services.
const (
	UserRegistered = "user.registered"
	UserLoggedIn   = "user.logged_in"
	UserLoggedOut  = "user.logged_out"
	UserDeleted    = "user.deleted"
)

// Event is an account-lifecycle notification.
type Event struct {
	Type   string    `json:"type"`
	UserID int       `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	At     time.Time `json:"at"`
}

// Backend defines the broker-agnostic publish operations used by the Bus.
type Backend interface {
	Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Bus wraps a backend with a stable, nil-safe API. A Bus with no backend
// drops events, so callers never need to branch on whether eventing is
// configured.
type Bus struct {
	backend Backend
	topic   string
}

// NewBus constructs a Bus publishing to the named topic. backend may be nil.
func NewBus(backend Backend, topic string) *Bus {
	return &Bus{backend: backend, topic: topic}
}

// Emit publishes the event. Failures are logged and swallowed.
func (b *Bus) Emit(ctx context.Context, event Event) {
	if b == nil || b.backend == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("events: marshal %s: %v", event.Type, err)
		return
	}

	attrs := map[string]string{"type": event.Type}
	if _, err := b.backend.Publish(ctx, b.topic, data, attrs); err != nil {
		log.Printf("events: publish %s: %v", event.Type, err)
	}
}

// Close closes the underlying backend.
func (b *Bus) Close() error {
	if b == nil || b.backend == nil {
		return nil
	}
	return b.backend.Close()
}
