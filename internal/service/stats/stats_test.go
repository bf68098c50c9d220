package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/repository"
	"github.com/mamadbah2/dairycoop/internal/repository/memory"
)

var today = calendar.Date(2025, time.June, 30)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, store.InsertMember(ctx, models.Member{MemberID: "OON01", Name: "Wanjiru", IsActive: true}))
	require.NoError(t, store.InsertMember(ctx, models.Member{MemberID: "OON02", Name: "Kamau", IsActive: true}))
	require.NoError(t, store.InsertCow(ctx, models.Cow{CowID: "CW01", OwnerID: "OON01", Name: "Daisy", IsActive: true}))
	require.NoError(t, store.InsertCow(ctx, models.Cow{CowID: "CW02", OwnerID: "OON01", Name: "Bella", IsActive: true}))
	require.NoError(t, store.InsertCow(ctx, models.Cow{CowID: "CW03", OwnerID: "OON01", Name: "Old", IsActive: false}))

	entries := []models.MilkInEntry{
		// CW01: one day with morning and evening, one single-session day.
		{EntryID: "ETR001", CowID: "CW01", Liters: 5, Date: calendar.Date(2025, time.June, 29), MilkingType: models.MilkingMorning},
		{EntryID: "ETR002", CowID: "CW01", Liters: 3, Date: calendar.Date(2025, time.June, 29), MilkingType: models.MilkingEvening},
		{EntryID: "ETR003", CowID: "CW01", Liters: 4, Date: calendar.Date(2025, time.June, 30), MilkingType: models.MilkingMorning},
		// Window start is inclusive, the day before is out.
		{EntryID: "ETR004", CowID: "CW02", Liters: 6, Date: calendar.Date(2025, time.May, 31), MilkingType: models.MilkingMorning},
		{EntryID: "ETR005", CowID: "CW02", Liters: 100, Date: calendar.Date(2025, time.May, 30), MilkingType: models.MilkingMorning},
	}
	for _, e := range entries {
		e.OwnerID = "OON01"
		require.NoError(t, store.InsertMilkIn(ctx, e))
	}
	return store
}

func TestAverageDailyProduction(t *testing.T) {
	ctx := context.Background()
	svc := NewService(seed(t), nil)

	t.Run("sessions on the same day count as one day", func(t *testing.T) {
		avg, err := svc.AverageDailyProduction(ctx, "CW01", today)
		require.NoError(t, err)
		assert.Equal(t, 6.0, avg) // (8 + 4) / 2
	})

	t.Run("window is thirty days back inclusive", func(t *testing.T) {
		avg, err := svc.AverageDailyProduction(ctx, "CW02", today)
		require.NoError(t, err)
		assert.Equal(t, 6.0, avg)
	})

	t.Run("empty window is zero", func(t *testing.T) {
		avg, err := svc.AverageDailyProduction(ctx, "CW03", today)
		require.NoError(t, err)
		assert.Equal(t, 0.0, avg)
	})
}

func TestLastMilkingDate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(seed(t), nil)

	last, err := svc.LastMilkingDate(ctx, "CW01")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, calendar.Date(2025, time.June, 30), *last)

	// Outside the averaging window still counts.
	last, err = svc.LastMilkingDate(ctx, "CW02")
	require.NoError(t, err)
	assert.Equal(t, calendar.Date(2025, time.May, 31), *last)

	last, err = svc.LastMilkingDate(ctx, "CW03")
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestCowsWithStats(t *testing.T) {
	svc := NewService(seed(t), nil)

	cows, err := svc.CowsWithStats(context.Background(), repository.CowFilter{ActiveOnly: true}, today)
	require.NoError(t, err)
	require.Len(t, cows, 2)
	assert.Equal(t, "CW01", cows[0].Cow.CowID)
	assert.Equal(t, 6.0, cows[0].AverageDailyMilkProduction)
}

func TestMembersWithStats(t *testing.T) {
	svc := NewService(seed(t), nil)

	members, err := svc.MembersWithStats(context.Background(), true, today)
	require.NoError(t, err)
	require.Len(t, members, 2)

	assert.Equal(t, "OON01", members[0].Member.MemberID)
	assert.Len(t, members[0].Cows, 2, "archived cows are excluded")
	assert.Equal(t, 12.0, members[0].AverageDailyMilkProduction)

	assert.Empty(t, members[1].Cows)
	assert.Equal(t, 0.0, members[1].AverageDailyMilkProduction)
}
