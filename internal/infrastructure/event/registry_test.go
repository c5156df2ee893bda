package event

import (
	"context"
	"testing"

	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedHandler struct {
	name string
	seen int
}

func (h *namedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.seen++
	return nil
}

func (h *namedHandler) EventTypes() []string { return nil }

func names(handlers []shared.EventHandler) []string {
	out := make([]string, 0, len(handlers))
	for _, h := range handlers {
		out = append(out, h.(*namedHandler).name)
	}
	return out
}

func TestHandlerRegistry_GetHandlers(t *testing.T) {
	registry := NewHandlerRegistry()
	audit := &namedHandler{name: "audit"}
	metrics := &namedHandler{name: "metrics"}
	deposits := &namedHandler{name: "deposits"}

	registry.Register(audit)
	registry.Register(deposits, "DepositReleased")
	registry.Register(metrics, "ReturnFinalized", "DepositReleased")

	assert.Equal(t, []string{"audit", "deposits", "metrics"}, names(registry.GetHandlers("DepositReleased")))
	assert.Equal(t, []string{"audit", "metrics"}, names(registry.GetHandlers("ReturnFinalized")))
	assert.Equal(t, []string{"audit"}, names(registry.GetHandlers("ItemCreated")))
}

func TestHandlerRegistry_RegisterTwice(t *testing.T) {
	t.Run("widens the type set", func(t *testing.T) {
		registry := NewHandlerRegistry()
		h := &namedHandler{name: "returns"}
		registry.Register(h, "ReturnOpened")
		registry.Register(h, "ReturnFinalized")

		assert.Len(t, registry.GetAllHandlers(), 1)
		assert.Len(t, registry.GetHandlers("ReturnOpened"), 1)
		assert.Len(t, registry.GetHandlers("ReturnFinalized"), 1)
	})

	t.Run("no types turns it into a wildcard", func(t *testing.T) {
		registry := NewHandlerRegistry()
		h := &namedHandler{name: "returns"}
		registry.Register(h, "ReturnOpened")
		registry.Register(h)

		assert.Len(t, registry.GetHandlers("StockAdjusted"), 1)
	})

	t.Run("a wildcard stays a wildcard", func(t *testing.T) {
		registry := NewHandlerRegistry()
		h := &namedHandler{name: "log"}
		registry.Register(h)
		registry.Register(h, "ReturnOpened")

		assert.Len(t, registry.GetHandlers("StockAdjusted"), 1)
	})
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	first := &namedHandler{name: "first"}
	second := &namedHandler{name: "second"}
	wildcard := &namedHandler{name: "wildcard"}

	registry.Register(first, "ReturnOpened")
	registry.Register(wildcard)
	registry.Register(second, "ReturnOpened")

	registry.Unregister(first)
	assert.Equal(t, []string{"wildcard", "second"}, names(registry.GetHandlers("ReturnOpened")))

	registry.Unregister(wildcard)
	assert.Equal(t, []string{"second"}, names(registry.GetHandlers("ReturnOpened")))
	assert.Empty(t, registry.GetHandlers("AnyEvent"))

	registry.Unregister(&namedHandler{name: "unknown"})
	require.Len(t, registry.GetAllHandlers(), 1)
}
