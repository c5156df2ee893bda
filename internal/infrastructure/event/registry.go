package event

import (
	"sync"

	"github.com/rentalcore/backend/internal/domain/shared"
)

type subscription struct {
	handler shared.EventHandler
	// nil matches every event type
	types map[string]struct{}
}

func (s subscription) matches(eventType string) bool {
	if s.types == nil {
		return true
	}
	_, ok := s.types[eventType]
	return ok
}

// HandlerRegistry keeps subscriptions in the order they were made. Handlers
// for an event are returned in that order, whether they subscribed to the
// event type or to everything.
type HandlerRegistry struct {
	mu   sync.RWMutex
	subs []subscription
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{}
}

// Register subscribes handler to eventTypes, or to every event when none
// are given. Registering the same handler again widens its subscription.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.subs {
		if r.subs[i].handler != handler {
			continue
		}
		if len(eventTypes) == 0 {
			r.subs[i].types = nil
			return
		}
		if r.subs[i].types != nil {
			for _, t := range eventTypes {
				r.subs[i].types[t] = struct{}{}
			}
		}
		return
	}

	sub := subscription{handler: handler}
	if len(eventTypes) > 0 {
		sub.types = make(map[string]struct{}, len(eventTypes))
		for _, t := range eventTypes {
			sub.types[t] = struct{}{}
		}
	}
	r.subs = append(r.subs, sub)
}

// Unregister drops every subscription of handler
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.subs[:0]
	for _, sub := range r.subs {
		if sub.handler != handler {
			kept = append(kept, sub)
		}
	}
	for i := len(kept); i < len(r.subs); i++ {
		r.subs[i] = subscription{}
	}
	r.subs = kept
}

// GetHandlers returns the handlers subscribed to eventType
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []shared.EventHandler
	for _, sub := range r.subs {
		if sub.matches(eventType) {
			out = append(out, sub.handler)
		}
	}
	return out
}

// GetAllHandlers returns every registered handler once
func (r *HandlerRegistry) GetAllHandlers() []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]shared.EventHandler, 0, len(r.subs))
	for _, sub := range r.subs {
		out = append(out, sub.handler)
	}
	return out
}
