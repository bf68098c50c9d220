// Package stats computes per-cow and per-member production statistics.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/repository"
)

// AverageWindowDays is the trailing window of the daily production average.
const AverageWindowDays = 30

// Store is the persistence the aggregator reads.
type Store interface {
	repository.CowStore
	repository.MemberStore
	repository.MilkInStore
}

// Service aggregates milk-in facts. It only reads.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService wires a stats service over store.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// AverageDailyProduction is the mean of the cow's per-day totals over [today-30, today].
// Days without collection are not counted. It is 0 when the window holds no entries.
func (s *Service) AverageDailyProduction(ctx context.Context, cowID string, today time.Time) (float64, error) {
	window := calendar.Trailing(today, AverageWindowDays)
	entries, err := s.store.ListMilkIn(ctx, repository.MilkInFilter{CowID: cowID, Range: repository.Within(window)})
	if err != nil {
		return 0, fmt.Errorf("list milk-in for %s: %w", cowID, err)
	}
	return dailyAverage(entries), nil
}

// LastMilkingDate is the latest date the cow was milked, or nil if never.
func (s *Service) LastMilkingDate(ctx context.Context, cowID string) (*time.Time, error) {
	entries, err := s.store.ListMilkIn(ctx, repository.MilkInFilter{CowID: cowID})
	if err != nil {
		return nil, fmt.Errorf("list milk-in for %s: %w", cowID, err)
	}
	var last *time.Time
	for i := range entries {
		if last == nil || entries[i].Date.After(*last) {
			d := entries[i].Date
			last = &d
		}
	}
	return last, nil
}

// CowWithStats decorates a single cow.
func (s *Service) CowWithStats(ctx context.Context, cow models.Cow, today time.Time) (models.CowWithStats, error) {
	avg, err := s.AverageDailyProduction(ctx, cow.CowID, today)
	if err != nil {
		return models.CowWithStats{}, err
	}
	last, err := s.LastMilkingDate(ctx, cow.CowID)
	if err != nil {
		return models.CowWithStats{}, err
	}
	return models.CowWithStats{Cow: cow, AverageDailyMilkProduction: avg, LastMilkingDate: last}, nil
}

// CowsWithStats decorates every cow matching filter.
func (s *Service) CowsWithStats(ctx context.Context, filter repository.CowFilter, today time.Time) ([]models.CowWithStats, error) {
	cows, err := s.store.ListCows(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list cows: %w", err)
	}
	out := make([]models.CowWithStats, 0, len(cows))
	for _, cow := range cows {
		cs, err := s.CowWithStats(ctx, cow, today)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, nil
}

// MemberWithStats lists a member's active cows; the member average is the sum of theirs.
func (s *Service) MemberWithStats(ctx context.Context, member models.Member, today time.Time) (models.MemberWithStats, error) {
	cows, err := s.CowsWithStats(ctx, repository.CowFilter{OwnerID: member.MemberID, ActiveOnly: true}, today)
	if err != nil {
		return models.MemberWithStats{}, err
	}
	total := decimal.Zero
	for _, c := range cows {
		total = total.Add(decimal.NewFromFloat(c.AverageDailyMilkProduction))
	}
	return models.MemberWithStats{
		Member:                     member,
		Cows:                       cows,
		AverageDailyMilkProduction: total.InexactFloat64(),
	}, nil
}

// MembersWithStats decorates every member, active only when activeOnly is set.
func (s *Service) MembersWithStats(ctx context.Context, activeOnly bool, today time.Time) ([]models.MemberWithStats, error) {
	members, err := s.store.ListMembers(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	out := make([]models.MemberWithStats, 0, len(members))
	for _, m := range members {
		ms, err := s.MemberWithStats(ctx, m, today)
		if err != nil {
			return nil, err
		}
		out = append(out, ms)
	}
	s.logger.Debug("member stats computed", zap.Int("members", len(out)))
	return out, nil
}

// dailyAverage groups entries by calendar date so morning and evening count as one day.
func dailyAverage(entries []models.MilkInEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	perDay := make(map[time.Time]decimal.Decimal)
	for _, e := range entries {
		day := calendar.Day(e.Date)
		perDay[day] = perDay[day].Add(decimal.NewFromFloat(e.Liters))
	}
	total := decimal.Zero
	for _, v := range perDay {
		total = total.Add(v)
	}
	return total.Div(decimal.NewFromInt(int64(len(perDay)))).InexactFloat64()
}
