package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/repository"
)

func TestStoreFacts(t *testing.T) {
	ctx := context.Background()
	s := New()

	june := func(d int) time.Time { return calendar.Date(2025, time.June, d) }

	require.NoError(t, s.InsertMilkIn(ctx, models.MilkInEntry{EntryID: "ETR002", CowID: "CW01", OwnerID: "OON01", Liters: 3, Date: june(2)}))
	require.NoError(t, s.InsertMilkIn(ctx, models.MilkInEntry{EntryID: "ETR001", CowID: "CW01", OwnerID: "OON01", Liters: 5, Date: june(1)}))
	require.NoError(t, s.InsertMilkIn(ctx, models.MilkInEntry{EntryID: "ETR003", CowID: "CW02", OwnerID: "OON01", Liters: 7, Date: june(5)}))

	t.Run("duplicate id is rejected", func(t *testing.T) {
		err := s.InsertMilkIn(ctx, models.MilkInEntry{EntryID: "ETR001"})
		assert.ErrorIs(t, err, models.ErrDuplicateID)
	})

	t.Run("filters by cow and range, ordered by date", func(t *testing.T) {
		entries, err := s.ListMilkIn(ctx, repository.MilkInFilter{CowID: "CW01"})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "ETR001", entries[0].EntryID)

		entries, err = s.ListMilkIn(ctx, repository.MilkInFilter{Range: repository.DateRange{From: june(2), To: june(5)}})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("delete then get is not found", func(t *testing.T) {
		require.NoError(t, s.DeleteMilkIn(ctx, "ETR003"))
		_, err := s.GetMilkIn(ctx, "ETR003")
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.ErrorIs(t, s.DeleteMilkIn(ctx, "ETR003"), models.ErrNotFound)
	})

	t.Run("lists ids", func(t *testing.T) {
		ids, err := s.ListIDs(ctx, repository.MilkIn)
		require.NoError(t, err)
		assert.Equal(t, []string{"ETR001", "ETR002"}, ids)
	})
}

func TestStoreSnapshot(t *testing.T) {
	ctx := context.Background()
	s := New()
	at := calendar.Date(2025, time.June, 7)

	_, err := s.ApplyDelta(ctx, 5, at)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, s.SaveSnapshot(ctx, models.InventorySnapshot{CurrentStock: 4, LastUpdated: at}))

	snap, err := s.ApplyDelta(ctx, -10, at.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.CurrentStock)
	assert.Equal(t, at.AddDate(0, 0, 1), snap.LastUpdated)
}

func TestArchiveCowsByOwner(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertCow(ctx, models.Cow{CowID: "CW01", OwnerID: "OON01", IsActive: true}))
	require.NoError(t, s.InsertCow(ctx, models.Cow{CowID: "CW02", OwnerID: "OON02", IsActive: true}))

	n, err := s.ArchiveCowsByOwner(ctx, "OON01", "Owner archived: left", calendar.Date(2025, time.June, 7))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	active, err := s.ListCows(ctx, repository.CowFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "CW02", active[0].CowID)
}
