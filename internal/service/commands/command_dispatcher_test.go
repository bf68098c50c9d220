package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/repository/memory"
	"github.com/mamadbah2/dairycoop/internal/service/dairy"
	"github.com/mamadbah2/dairycoop/internal/service/ledger"
	"github.com/mamadbah2/dairycoop/internal/service/reporting"
	"github.com/mamadbah2/dairycoop/internal/service/stats"
)

func newDispatcher(t *testing.T, now time.Time) *Service {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	ledgerSvc := ledger.NewService(store, nil)
	dairySvc := dairy.NewService(store, ledgerSvc, stats.NewService(store, nil), time.UTC, nil)

	_, err := dairySvc.AddMember(ctx, dairy.MemberInput{Name: "Wanjiru"})
	require.NoError(t, err)
	_, err = dairySvc.AddCow(ctx, dairy.CowInput{OwnerID: "OON01", Name: "Daisy", EntryDate: "2025-01-01"})
	require.NoError(t, err)
	_, err = dairySvc.AddCow(ctx, dairy.CowInput{OwnerID: "OON01", Name: "Bella", EntryDate: "2025-01-01", HealthStatus: "SICK"})
	require.NoError(t, err)

	svc := NewService(dairySvc, reporting.NewService(store, ledgerSvc, nil, nil), time.UTC, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func TestHandleMilkIn(t *testing.T) {
	ctx := context.Background()
	morning := time.Date(2025, time.June, 7, 6, 30, 0, 0, time.UTC)
	svc := newDispatcher(t, morning)

	reply, err := svc.HandleCommand(ctx, models.ParseCommand("/milkin CW01 OON01 6.5"), "254700000001")
	require.NoError(t, err)
	assert.Contains(t, reply, "ETR001")
	assert.Contains(t, reply, "cow CW01")
	assert.Contains(t, reply, "morning, 2025-06-07")
	assert.Contains(t, reply, "Stock now 6.50 L.")

	reply, err = svc.HandleCommand(ctx, models.ParseCommand("/MILKIN - OON01 4 evening"), "254700000001")
	require.NoError(t, err)
	assert.Contains(t, reply, "herd of OON01")
	assert.Contains(t, reply, "evening")

	t.Run("afternoon defaults to evening", func(t *testing.T) {
		svc := newDispatcher(t, morning.Add(8*time.Hour))
		reply, err := svc.HandleCommand(ctx, models.ParseCommand("/milkin CW01 OON01 3"), "x")
		require.NoError(t, err)
		assert.Contains(t, reply, "evening")
	})

	t.Run("sick cow is refused", func(t *testing.T) {
		_, err := svc.HandleCommand(ctx, models.ParseCommand("/milkin CW02 OON01 3"), "x")
		assert.ErrorIs(t, err, models.ErrNotEligible)
	})

	t.Run("bad arguments", func(t *testing.T) {
		for _, text := range []string{"/milkin CW01 OON01", "/milkin CW01 OON01 lots", "/milkin a b 1 morning extra"} {
			_, err := svc.HandleCommand(ctx, models.ParseCommand(text), "x")
			assert.ErrorIs(t, err, ErrInvalidArguments, text)
		}
	})

	t.Run("non-finite liters are refused", func(t *testing.T) {
		for _, text := range []string{"/milkin - OON01 NaN", "/milkin CW01 OON01 Inf", "/milkin - OON01 -inf"} {
			_, err := svc.HandleCommand(ctx, models.ParseCommand(text), "x")
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr, text)
			assert.Equal(t, "liters", verr.Field)
		}

		reply, err := svc.HandleCommand(ctx, models.ParseCommand("/milkin - OON01 1"), "x")
		require.NoError(t, err)
		assert.Contains(t, reply, "ETR003")
		assert.Contains(t, reply, "Stock now 11.50 L.")
	})
}

func TestHandleSale(t *testing.T) {
	ctx := context.Background()
	svc := newDispatcher(t, time.Date(2025, time.June, 7, 9, 0, 0, 0, time.UTC))

	_, err := svc.HandleCommand(ctx, models.ParseCommand("/milkin - OON01 20"), "x")
	require.NoError(t, err)

	reply, err := svc.HandleCommand(ctx, models.ParseCommand("/sale 5 60 mpesa Mama Mboga"), "x")
	require.NoError(t, err)
	assert.Contains(t, reply, "SL01 recorded for Mama Mboga")
	assert.Contains(t, reply, "= 300.00 (mpesa)")
	assert.Contains(t, reply, "Stock now 15.00 L.")

	reply, err = svc.HandleCommand(ctx, models.ParseCommand("/sale 2 55 Jane"), "x")
	require.NoError(t, err)
	assert.Contains(t, reply, "(cash)")

	_, err = svc.HandleCommand(ctx, models.ParseCommand("/sale 2 55 cash"), "x")
	assert.ErrorIs(t, err, ErrInvalidArguments, "customer name is required")
}

func TestHandleSpoiltEligibleAndStock(t *testing.T) {
	ctx := context.Background()
	svc := newDispatcher(t, time.Date(2025, time.June, 7, 9, 0, 0, 0, time.UTC))

	_, err := svc.HandleCommand(ctx, models.ParseCommand("/milkin CW01 OON01 10"), "x")
	require.NoError(t, err)

	reply, err := svc.HandleCommand(ctx, models.ParseCommand("/spoilt 2 100 sour"), "x")
	require.NoError(t, err)
	assert.Contains(t, reply, "SPL001")
	assert.Contains(t, reply, "Cause: sour.")

	reply, err = svc.HandleCommand(ctx, models.ParseCommand("/eligible CW01"), "x")
	require.NoError(t, err)
	assert.Equal(t, "CW01 (Daisy) can be milked today.", reply)

	reply, err = svc.HandleCommand(ctx, models.ParseCommand("/eligible CW02"), "x")
	require.NoError(t, err)
	assert.Contains(t, reply, "is blocked")

	_, err = svc.HandleCommand(ctx, models.ParseCommand("/eligible CW42"), "x")
	assert.ErrorIs(t, err, models.ErrNotFound)

	reply, err = svc.HandleCommand(ctx, models.ParseCommand("/stock"), "x")
	require.NoError(t, err)
	assert.Contains(t, reply, "8.00 L in stock")
	assert.Contains(t, reply, "Week: 0.00 L sold, 2.00 L spoilt")
}

func TestHandleUnknownCommand(t *testing.T) {
	svc := newDispatcher(t, time.Date(2025, time.June, 7, 9, 0, 0, 0, time.UTC))

	_, err := svc.HandleCommand(context.Background(), models.ParseCommand("/eggs 12"), "x")
	assert.ErrorIs(t, err, ErrUnsupportedCommand)
}
