// Package eventbus provides process-local notifications for auth state
// transitions and mutation outcomes. Screens subscribe to topics instead of
// polling shared state; the session manager and feature coordinators publish.
package eventbus

import (
	evbus "github.com/asaskevich/EventBus"
)

// Bus is a thin wrapper around EventBus scoped to an application instance.
// There is deliberately no package-level singleton: the bus is constructed at
// the composition root and injected where needed.
type Bus struct {
	bus evbus.Bus
}

// New creates an event bus.
func New() *Bus {
	return &Bus{bus: evbus.New()}
}

// Publish delivers an event to all subscribers of the topic synchronously.
func (b *Bus) Publish(topic string, args ...any) {
	b.bus.Publish(topic, args...)
}

// Subscribe registers fn for the topic. fn must be a function whose signature
// matches the published arguments.
func (b *Bus) Subscribe(topic string, fn any) error {
	return b.bus.Subscribe(topic, fn)
}

// SubscribeAsync registers fn for the topic with delivery on a separate
// goroutine. Transactional ordering is preserved per topic.
func (b *Bus) SubscribeAsync(topic string, fn any) error {
	return b.bus.SubscribeAsync(topic, fn, true)
}

// Unsubscribe removes fn from the topic.
func (b *Bus) Unsubscribe(topic string, fn any) error {
	return b.bus.Unsubscribe(topic, fn)
}

// WaitAsync blocks until all asynchronous deliveries have completed.
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}
