package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/repository/memory"
)

var fixedNow = time.Date(2025, time.June, 7, 9, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := NewService(store, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

func addMilkIn(t *testing.T, svc *Service, store *memory.Store, id string, liters float64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.InsertMilkIn(ctx, models.MilkInEntry{
		EntryID: id, OwnerID: "OON01", Liters: liters, Date: calendar.Date(2025, time.June, 7), MilkingType: models.MilkingMorning,
	}))
	require.NoError(t, svc.RecordMilkIn(ctx, liters))
}

func addSale(t *testing.T, svc *Service, store *memory.Store, id string, liters float64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.InsertMilkOut(ctx, models.MilkOutEntry{
		SaleID: id, CustomerID: "CST001", CustomerName: "Jane", QuantitySold: liters, PricePerLiter: 50,
		Date: calendar.Date(2025, time.June, 7), PaymentMode: models.PaymentCash,
	}))
	require.NoError(t, svc.RecordMilkOut(ctx, liters))
}

func TestCurrentStockEmptyHistory(t *testing.T) {
	svc, _ := newTestLedger(t)

	stock, err := svc.CurrentStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, stock)
}

func TestRecordKeepsSnapshotInStep(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestLedger(t)

	addMilkIn(t, svc, store, "ETR001", 20.5)
	addMilkIn(t, svc, store, "ETR002", 9.5)
	addSale(t, svc, store, "SL01", 12)

	require.NoError(t, store.InsertSpoilt(ctx, models.MilkSpoiltEntry{SpoiltID: "SPL001", AmountSpoilt: 3, Date: calendar.Date(2025, time.June, 7)}))
	require.NoError(t, svc.RecordSpoilage(ctx, 3))

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15.0, snap.CurrentStock)
	assert.Equal(t, fixedNow, snap.LastUpdated)

	stock, err := svc.CurrentStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15.0, stock)
}

func TestStockNeverNegative(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestLedger(t)

	addMilkIn(t, svc, store, "ETR001", 5)
	addSale(t, svc, store, "SL01", 10)

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.CurrentStock)

	// The delta path clamps at every step; the read path clamps the total.
	addMilkIn(t, svc, store, "ETR002", 3)

	stock, err := svc.CurrentStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stock, "5 + 3 - 10 clamps to zero")

	totals, err := svc.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8.0, totals.TotalMilkIn)
	assert.Equal(t, 10.0, totals.TotalMilkOut)
	assert.Equal(t, 0.0, totals.CurrentStock)
}

func TestCurrentStockRepairsStaleSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestLedger(t)

	addMilkIn(t, svc, store, "ETR001", 10)
	require.NoError(t, store.SaveSnapshot(ctx, models.InventorySnapshot{CurrentStock: 99, LastUpdated: fixedNow.Add(-time.Hour)}))

	totals, err := svc.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 99.0, totals.CachedStock)
	assert.Equal(t, 10.0, totals.CurrentStock)

	stock, err := svc.CurrentStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, stock)

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, snap.CurrentStock)
	assert.Equal(t, fixedNow, snap.LastUpdated)
}

func TestReconcileAfterDelete(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestLedger(t)

	addMilkIn(t, svc, store, "ETR001", 10)
	addMilkIn(t, svc, store, "ETR002", 4)

	require.NoError(t, store.DeleteMilkIn(ctx, "ETR002"))
	snap, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, snap.CurrentStock)
}

func TestDecimalSums(t *testing.T) {
	svc, store := newTestLedger(t)

	addMilkIn(t, svc, store, "ETR001", 0.1)
	addMilkIn(t, svc, store, "ETR002", 0.2)

	stock, err := svc.CurrentStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.3, stock)
}
