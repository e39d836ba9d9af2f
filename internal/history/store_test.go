package history

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/logistics-console/internal/domain"
)

func TestStorePrependRejectsOtherOrders(t *testing.T) {
	store := NewStore("42")
	store.Initialize([]domain.OrderHistoryEntry{
		{ID: "a", OrderID: "42", Status: domain.ShipmentStatusPending, OccurredAt: t0},
	})

	assert.False(t, store.Prepend(domain.OrderHistoryEntry{ID: "x", OrderID: "99", Status: domain.ShipmentStatusDelivered}))
	assert.True(t, store.Prepend(domain.OrderHistoryEntry{ID: "b", OrderID: "42", Status: domain.ShipmentStatusAssigned}))
	assert.False(t, store.Prepend(domain.OrderHistoryEntry{ID: "b", OrderID: "42", Status: domain.ShipmentStatusAssigned}))

	snap := store.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "b", snap[0].ID)
	assert.Equal(t, "a", snap[1].ID)
	assert.Equal(t, "42", store.OrderID())
}

func TestStoreInitializeReplaces(t *testing.T) {
	store := NewStore("42")
	store.Initialize([]domain.OrderHistoryEntry{{ID: "a", OrderID: "42"}, {ID: "b", OrderID: "42"}})
	store.Initialize([]domain.OrderHistoryEntry{{ID: "c", OrderID: "42"}, {ID: "z", OrderID: "7"}})

	assert.Equal(t, 1, store.Len())
	// ids from the replaced contents no longer block a prepend
	assert.True(t, store.Prepend(domain.OrderHistoryEntry{ID: "a", OrderID: "42"}))
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	store := NewStore("42")
	store.Initialize([]domain.OrderHistoryEntry{{ID: "a", OrderID: "42", Note: "original"}})

	snap := store.Snapshot()
	snap[0].Note = "mutated"
	assert.Equal(t, "original", store.Snapshot()[0].Note)
}

func TestSortNewestFirst(t *testing.T) {
	in := []domain.OrderHistoryEntry{
		{ID: "old", OccurredAt: t0},
		{ID: "new", OccurredAt: t2},
		{ID: "mid", OccurredAt: t1},
	}
	out := SortNewestFirst(in)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{out[0].ID, out[1].ID, out[2].ID})
	assert.Equal(t, "old", in[0].ID)
}

func TestIDGeneratorUnique(t *testing.T) {
	ids := newTestIDs(t)
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := ids.Next()
		require.True(t, strings.HasPrefix(id, localIDPrefix))
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}

	_, err := NewIDGenerator(4096)
	assert.Error(t, err)
}
