package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/repository"
	"github.com/mamadbah2/dairycoop/internal/service/eligibility"
)

// Store is the persistence the reporting service reads and the daily report is saved to.
type Store interface {
	repository.FactStore
	repository.CowStore
	repository.MemberStore
	repository.ReportStore
}

// StockReader yields the reconciled current stock.
type StockReader interface {
	CurrentStock(ctx context.Context) (float64, error)
}

// Exporter receives published daily reports, e.g. a spreadsheet.
type Exporter interface {
	ExportDailyReport(ctx context.Context, report models.DailyReport) error
}

// Service computes period summaries over the fact history. Weeks start on Monday and months
// are calendar months; every window is inclusive of both ends.
type Service struct {
	store    Store
	stock    StockReader
	engine   *eligibility.Engine
	exporter Exporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new reporting service instance. exporter may be nil.
func NewService(store Store, stock StockReader, exporter Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		stock:    stock,
		engine:   eligibility.NewEngine(),
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
	}
}

// StockSummary reports volumes on date, in its week and in its month.
func (s *Service) StockSummary(ctx context.Context, date time.Time) (models.StockSummary, error) {
	current, err := s.stock.CurrentStock(ctx)
	if err != nil {
		return models.StockSummary{}, fmt.Errorf("current stock: %w", err)
	}

	day, week, month := calendar.DayOf(date), calendar.WeekOf(date), calendar.MonthOf(date)

	produced, err := s.producedIn(ctx, day)
	if err != nil {
		return models.StockSummary{}, err
	}
	soldToday, err := s.salesIn(ctx, day)
	if err != nil {
		return models.StockSummary{}, err
	}
	soldWeek, err := s.salesIn(ctx, week)
	if err != nil {
		return models.StockSummary{}, err
	}
	soldMonth, err := s.salesIn(ctx, month)
	if err != nil {
		return models.StockSummary{}, err
	}
	spoiltWeek, err := s.spoilageIn(ctx, week)
	if err != nil {
		return models.StockSummary{}, err
	}

	return models.StockSummary{
		CurrentStock:         current,
		DailyProduce:         produced.InexactFloat64(),
		DailyTotalLitersSold: soldToday.liters.InexactFloat64(),
		WeeklySold:           soldWeek.liters.InexactFloat64(),
		WeeklySpoilt:         spoiltWeek.liters.InexactFloat64(),
		MonthlySold:          soldMonth.liters.InexactFloat64(),
	}, nil
}

// EarningsSummary reports sales revenue (quantity x price) on date, in its week and in its month.
func (s *Service) EarningsSummary(ctx context.Context, date time.Time) (models.EarningsSummary, error) {
	today, err := s.salesIn(ctx, calendar.DayOf(date))
	if err != nil {
		return models.EarningsSummary{}, err
	}
	week, err := s.salesIn(ctx, calendar.WeekOf(date))
	if err != nil {
		return models.EarningsSummary{}, err
	}
	month, err := s.salesIn(ctx, calendar.MonthOf(date))
	if err != nil {
		return models.EarningsSummary{}, err
	}
	return models.EarningsSummary{
		TodayEarnings:   today.revenue.InexactFloat64(),
		WeeklyEarnings:  week.revenue.InexactFloat64(),
		MonthlyEarnings: month.revenue.InexactFloat64(),
	}, nil
}

// CowSummary counts the herd. Health counters only consider active cows.
func (s *Service) CowSummary(ctx context.Context) (models.CowSummary, error) {
	cows, err := s.store.ListCows(ctx, repository.CowFilter{})
	if err != nil {
		return models.CowSummary{}, fmt.Errorf("list cows: %w", err)
	}

	var summary models.CowSummary
	for _, cow := range cows {
		if !cow.IsActive {
			summary.TotalArchivedCows++
			continue
		}
		summary.TotalActiveCows++
		switch cow.Status.HealthStatus {
		case models.HealthHealthy:
			summary.HealthyCows++
		case models.HealthNeedsAttention, models.HealthUnderTreatment:
			summary.NeedsAttention++
		}
	}
	return summary, nil
}

// MemberSummary counts members; MembersWithActiveCows counts active members owning at least one active cow.
func (s *Service) MemberSummary(ctx context.Context) (models.MemberSummary, error) {
	members, err := s.store.ListMembers(ctx, false)
	if err != nil {
		return models.MemberSummary{}, fmt.Errorf("list members: %w", err)
	}
	cows, err := s.store.ListCows(ctx, repository.CowFilter{ActiveOnly: true})
	if err != nil {
		return models.MemberSummary{}, fmt.Errorf("list cows: %w", err)
	}

	owners := make(map[string]struct{}, len(cows))
	for _, cow := range cows {
		owners[cow.OwnerID] = struct{}{}
	}

	var summary models.MemberSummary
	for _, m := range members {
		if !m.IsActive {
			summary.TotalArchivedMembers++
			continue
		}
		summary.TotalActiveMembers++
		if _, ok := owners[m.MemberID]; ok {
			summary.MembersWithActiveCows++
		}
	}
	return summary, nil
}

// BuildDailyReport rolls up a single day.
func (s *Service) BuildDailyReport(ctx context.Context, date time.Time) (models.DailyReport, error) {
	day := calendar.DayOf(date)

	produced, err := s.producedIn(ctx, day)
	if err != nil {
		return models.DailyReport{}, err
	}
	sales, err := s.salesIn(ctx, day)
	if err != nil {
		return models.DailyReport{}, err
	}
	spoilage, err := s.spoilageIn(ctx, day)
	if err != nil {
		return models.DailyReport{}, err
	}
	current, err := s.stock.CurrentStock(ctx)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("current stock: %w", err)
	}
	cows, err := s.store.ListCows(ctx, repository.CowFilter{ActiveOnly: true})
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("list cows: %w", err)
	}
	bulk := s.engine.Bulk(cows, day.Start)

	return models.DailyReport{
		Date:          day.Start,
		MilkCollected: produced.InexactFloat64(),
		MilkSold:      sales.liters.InexactFloat64(),
		MilkSpoilt:    spoilage.liters.InexactFloat64(),
		SpoilageLoss:  spoilage.loss.InexactFloat64(),
		Earnings:      sales.revenue.InexactFloat64(),
		CurrentStock:  current,
		EligibleCows:  bulk.EligibleCows,
		BlockedCows:   bulk.BlockedCows,
		CreatedAt:     s.now().UTC(),
	}, nil
}

// PublishDailyReport builds, stores and exports the report of date. An export failure is
// logged but does not fail the publish, since the report is already stored.
func (s *Service) PublishDailyReport(ctx context.Context, date time.Time) (models.DailyReport, error) {
	report, err := s.BuildDailyReport(ctx, date)
	if err != nil {
		return models.DailyReport{}, err
	}
	if err := s.store.SaveDailyReport(ctx, report); err != nil {
		return models.DailyReport{}, fmt.Errorf("save daily report: %w", err)
	}

	if s.exporter != nil {
		if err := s.exporter.ExportDailyReport(ctx, report); err != nil {
			s.logger.Error("failed to export daily report", zap.Error(err), zap.String("date", calendar.Format(report.Date)))
		}
	}

	s.logger.Info("daily report published",
		zap.String("date", calendar.Format(report.Date)),
		zap.Float64("collected", report.MilkCollected),
		zap.Float64("sold", report.MilkSold),
	)
	return report, nil
}

// FormatDailyReport renders a report as a WhatsApp text message.
func FormatDailyReport(report models.DailyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily report %s\n", calendar.Format(report.Date))
	fmt.Fprintf(&b, "Collected: %.2f L\n", report.MilkCollected)
	fmt.Fprintf(&b, "Sold: %.2f L (earnings %.2f)\n", report.MilkSold, report.Earnings)
	if report.MilkSpoilt > 0 {
		fmt.Fprintf(&b, "Spoilt: %.2f L (loss %.2f)\n", report.MilkSpoilt, report.SpoilageLoss)
	}
	fmt.Fprintf(&b, "Stock: %.2f L\n", report.CurrentStock)
	fmt.Fprintf(&b, "Cows eligible: %d, blocked: %d", report.EligibleCows, report.BlockedCows)
	return b.String()
}

type salesTotals struct {
	liters  decimal.Decimal
	revenue decimal.Decimal
}

type spoilageTotals struct {
	liters decimal.Decimal
	loss   decimal.Decimal
}

func (s *Service) producedIn(ctx context.Context, w calendar.Window) (decimal.Decimal, error) {
	entries, err := s.store.ListMilkIn(ctx, repository.MilkInFilter{Range: repository.Within(w)})
	if err != nil {
		return decimal.Zero, fmt.Errorf("list milk-in %s: %w", w, err)
	}
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.Liters))
	}
	return total, nil
}

func (s *Service) salesIn(ctx context.Context, w calendar.Window) (salesTotals, error) {
	entries, err := s.store.ListMilkOut(ctx, repository.Within(w))
	if err != nil {
		return salesTotals{}, fmt.Errorf("list sales %s: %w", w, err)
	}
	totals := salesTotals{liters: decimal.Zero, revenue: decimal.Zero}
	for _, e := range entries {
		qty := decimal.NewFromFloat(e.QuantitySold)
		totals.liters = totals.liters.Add(qty)
		totals.revenue = totals.revenue.Add(qty.Mul(decimal.NewFromFloat(e.PricePerLiter)))
	}
	return totals, nil
}

func (s *Service) spoilageIn(ctx context.Context, w calendar.Window) (spoilageTotals, error) {
	entries, err := s.store.ListSpoilt(ctx, repository.Within(w))
	if err != nil {
		return spoilageTotals{}, fmt.Errorf("list spoilage %s: %w", w, err)
	}
	totals := spoilageTotals{liters: decimal.Zero, loss: decimal.Zero}
	for _, e := range entries {
		totals.liters = totals.liters.Add(decimal.NewFromFloat(e.AmountSpoilt))
		totals.loss = totals.loss.Add(decimal.NewFromFloat(e.LossAmount))
	}
	return totals, nil
}
