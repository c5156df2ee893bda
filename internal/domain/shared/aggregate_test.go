package shared

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseAggregateRoot_Mutated(t *testing.T) {
	created := StampAt("alice", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	agg := NewBaseAggregateRoot(created)
	require.Equal(t, 1, agg.Version)
	assert.Equal(t, "alice", agg.CreatedBy)

	later := StampAt("bob", created.At.Add(time.Hour))
	agg.Mutated("ITEM", "PRICE_CHANGED", "daily rate 20.00", later)
	agg.Mutated("ITEM", "DEACTIVATED", "", later)

	t.Run("stamps version and modifier", func(t *testing.T) {
		assert.Equal(t, 3, agg.Version)
		assert.Equal(t, "bob", agg.UpdatedBy)
		assert.Equal(t, later.At, agg.UpdatedAt)
	})

	t.Run("keeps ordered audit entries", func(t *testing.T) {
		entries := agg.PendingAudit()
		require.Len(t, entries, 2)
		assert.Equal(t, "PRICE_CHANGED", entries[0].Event)
		assert.Equal(t, agg.ID, entries[0].EntityID)
		assert.Equal(t, "DEACTIVATED", entries[1].Event)
	})

	t.Run("renders notes as a projection", func(t *testing.T) {
		lines := strings.Split(agg.Notes, "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "[2024-03-01T10:00:00Z bob] PRICE_CHANGED: daily rate 20.00", lines[0])
		assert.Equal(t, "[2024-03-01T10:00:00Z bob] DEACTIVATED", lines[1])
	})

	t.Run("clearing audit keeps notes", func(t *testing.T) {
		agg.ClearPendingAudit()
		assert.Empty(t, agg.PendingAudit())
		assert.NotEmpty(t, agg.Notes)
	})
}

func TestNewStamp(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("uses context actor", func(t *testing.T) {
		s := NewStamp(WithActor(context.Background(), "clerk-7"), FixedClock{At: at})
		assert.Equal(t, "clerk-7", s.Actor)
		assert.Equal(t, at, s.At)
	})

	t.Run("falls back to system actor", func(t *testing.T) {
		s := NewStamp(context.Background(), FixedClock{At: at})
		assert.Equal(t, SystemActor, s.Actor)
	})
}
