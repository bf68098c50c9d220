package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/repository/memory"
	"github.com/mamadbah2/dairycoop/internal/service/ledger"
)

type recordingExporter struct {
	reports []models.DailyReport
	err     error
}

func (e *recordingExporter) ExportDailyReport(_ context.Context, report models.DailyReport) error {
	e.reports = append(e.reports, report)
	return e.err
}

func newTestService(t *testing.T, exporter Exporter) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := NewService(store, ledger.NewService(store, nil), exporter, nil)
	svc.now = func() time.Time { return time.Date(2025, time.June, 7, 20, 0, 0, 0, time.UTC) }
	return svc, store
}

func sale(t *testing.T, store *memory.Store, id string, date time.Time, liters, price float64) {
	t.Helper()
	require.NoError(t, store.InsertMilkOut(context.Background(), models.MilkOutEntry{
		SaleID: id, CustomerID: "CST001", CustomerName: "Jane", Date: date,
		QuantitySold: liters, PricePerLiter: price, PaymentMode: models.PaymentCash,
	}))
}

func milkIn(t *testing.T, store *memory.Store, id string, date time.Time, liters float64) {
	t.Helper()
	require.NoError(t, store.InsertMilkIn(context.Background(), models.MilkInEntry{
		EntryID: id, OwnerID: "OON01", Liters: liters, Date: date, MilkingType: models.MilkingMorning,
	}))
}

func TestEarningsSummaryWeekStartsOnMonday(t *testing.T) {
	ctx := context.Background()
	ref := calendar.Date(2025, time.June, 7) // Saturday

	t.Run("previous sunday is outside the week", func(t *testing.T) {
		svc, store := newTestService(t, nil)
		sale(t, store, "SL01", calendar.Date(2025, time.June, 1), 10, 50)
		sale(t, store, "SL02", ref, 5, 60)

		got, err := svc.EarningsSummary(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, 300.0, got.TodayEarnings)
		assert.Equal(t, 300.0, got.WeeklyEarnings)
		assert.Equal(t, 800.0, got.MonthlyEarnings)
	})

	t.Run("monday opens the week", func(t *testing.T) {
		svc, store := newTestService(t, nil)
		sale(t, store, "SL01", calendar.Date(2025, time.June, 2), 10, 50)
		sale(t, store, "SL02", ref, 5, 60)

		got, err := svc.EarningsSummary(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, 800.0, got.WeeklyEarnings)
	})

	t.Run("sunday reference closes the week", func(t *testing.T) {
		svc, store := newTestService(t, nil)
		sale(t, store, "SL01", calendar.Date(2025, time.May, 26), 1, 10)
		sale(t, store, "SL02", calendar.Date(2025, time.June, 1), 2, 10)

		got, err := svc.EarningsSummary(ctx, calendar.Date(2025, time.June, 1))
		require.NoError(t, err)
		assert.Equal(t, 30.0, got.WeeklyEarnings)
		assert.Equal(t, 20.0, got.MonthlyEarnings)
	})
}

func TestEarningsSummaryAcrossYearEnd(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, nil)
	sale(t, store, "SL01", calendar.Date(2024, time.December, 1), 1, 100)
	sale(t, store, "SL02", calendar.Date(2024, time.December, 31), 2, 100)
	sale(t, store, "SL03", calendar.Date(2025, time.January, 1), 4, 100)

	dec, err := svc.EarningsSummary(ctx, calendar.Date(2024, time.December, 31))
	require.NoError(t, err)
	assert.Equal(t, 300.0, dec.MonthlyEarnings)
	assert.Equal(t, 600.0, dec.WeeklyEarnings, "week of Mon 30 Dec runs into January")

	jan, err := svc.EarningsSummary(ctx, calendar.Date(2025, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, 400.0, jan.MonthlyEarnings)
}

func TestStockSummary(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, nil)
	ref := calendar.Date(2025, time.June, 7)

	milkIn(t, store, "ETR001", ref, 30)
	milkIn(t, store, "ETR002", calendar.Date(2025, time.June, 3), 20)
	sale(t, store, "SL01", ref, 10, 50)
	sale(t, store, "SL02", calendar.Date(2025, time.June, 1), 5, 50)
	require.NoError(t, store.InsertSpoilt(ctx, models.MilkSpoiltEntry{
		SpoiltID: "SPL001", Date: calendar.Date(2025, time.June, 4), AmountSpoilt: 2, LossAmount: 100,
	}))

	got, err := svc.StockSummary(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, models.StockSummary{
		CurrentStock:         33,
		DailyProduce:         30,
		DailyTotalLitersSold: 10,
		WeeklySold:           10,
		WeeklySpoilt:         2,
		MonthlySold:          15,
	}, got)
}

func TestStockSummaryEmpty(t *testing.T) {
	svc, _ := newTestService(t, nil)

	got, err := svc.StockSummary(context.Background(), calendar.Date(2025, time.June, 7))
	require.NoError(t, err)
	assert.Equal(t, models.StockSummary{}, got)
}

func TestCowAndMemberSummary(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, nil)

	cows := []models.Cow{
		{CowID: "CW01", OwnerID: "OON01", IsActive: true, Status: models.CowStatus{HealthStatus: models.HealthHealthy}},
		{CowID: "CW02", OwnerID: "OON01", IsActive: true, Status: models.CowStatus{HealthStatus: models.HealthNeedsAttention}},
		{CowID: "CW03", OwnerID: "OON02", IsActive: true, Status: models.CowStatus{HealthStatus: models.HealthUnderTreatment}},
		{CowID: "CW04", OwnerID: "OON03", IsActive: false, Status: models.CowStatus{HealthStatus: models.HealthHealthy}},
		{CowID: "CW05", OwnerID: "OON04", IsActive: true, Status: models.CowStatus{HealthStatus: models.HealthGestation}},
	}
	for _, c := range cows {
		require.NoError(t, store.InsertCow(ctx, c))
	}
	members := []models.Member{
		{MemberID: "OON01", IsActive: true},
		{MemberID: "OON02", IsActive: true},
		{MemberID: "OON03", IsActive: true},
		{MemberID: "OON04", IsActive: false},
	}
	for _, m := range members {
		require.NoError(t, store.InsertMember(ctx, m))
	}

	cowSummary, err := svc.CowSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.CowSummary{TotalActiveCows: 4, TotalArchivedCows: 1, HealthyCows: 1, NeedsAttention: 2}, cowSummary)

	memberSummary, err := svc.MemberSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.MemberSummary{TotalActiveMembers: 3, TotalArchivedMembers: 1, MembersWithActiveCows: 2}, memberSummary)
}

func TestPublishDailyReport(t *testing.T) {
	ctx := context.Background()
	exporter := &recordingExporter{err: errors.New("sheets quota exceeded")}
	svc, store := newTestService(t, exporter)
	ref := calendar.Date(2025, time.June, 7)

	require.NoError(t, store.InsertCow(ctx, models.Cow{CowID: "CW01", Name: "Daisy", IsActive: true, Status: models.CowStatus{HealthStatus: models.HealthHealthy}}))
	require.NoError(t, store.InsertCow(ctx, models.Cow{CowID: "CW02", Name: "Bella", IsActive: true, Status: models.CowStatus{HealthStatus: models.HealthSick}}))
	milkIn(t, store, "ETR001", ref, 12.5)
	sale(t, store, "SL01", ref, 4, 55)

	report, err := svc.PublishDailyReport(ctx, ref)
	require.NoError(t, err, "export failures are logged, not returned")

	assert.Equal(t, ref, report.Date)
	assert.Equal(t, 12.5, report.MilkCollected)
	assert.Equal(t, 220.0, report.Earnings)
	assert.Equal(t, 8.5, report.CurrentStock)
	assert.Equal(t, 1, report.EligibleCows)
	assert.Equal(t, 1, report.BlockedCows)

	stored, err := store.GetDailyReport(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, report, *stored)
	require.Len(t, exporter.reports, 1)

	text := FormatDailyReport(report)
	assert.Contains(t, text, "Daily report 2025-06-07")
	assert.Contains(t, text, "Stock: 8.50 L")
	assert.NotContains(t, text, "Spoilt")
}
