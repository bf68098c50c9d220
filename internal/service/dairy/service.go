// Package dairy implements the cooperative's use cases: recording milk collection, sales and
// spoilage, managing the herd and its owners, and answering eligibility questions.
//
// Every write validates its input completely before touching storage. Fact writes then update
// the inventory snapshot by delta; fact deletes reconcile it from scratch.
package dairy

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/repository"
	"github.com/mamadbah2/dairycoop/internal/service/eligibility"
	"github.com/mamadbah2/dairycoop/internal/service/identifier"
	"github.com/mamadbah2/dairycoop/internal/service/ledger"
	"github.com/mamadbah2/dairycoop/internal/service/stats"
)

// Service wires storage, the eligibility engine, the ledger and ID allocation together.
type Service struct {
	store  repository.Store
	ids    *identifier.Allocator
	engine *eligibility.Engine
	ledger *ledger.Service
	stats  *stats.Service
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewService constructs the use-case layer. loc decides what "today" is; nil means UTC.
func NewService(store repository.Store, ledgerSvc *ledger.Service, statsSvc *stats.Service, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:  store,
		ids:    identifier.NewAllocator(store),
		engine: eligibility.NewEngine(),
		ledger: ledgerSvc,
		stats:  statsSvc,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// Today is the current civil date in the cooperative's timezone.
func (s *Service) Today() time.Time {
	return calendar.Today(s.now(), s.loc)
}

// dateOrToday parses value, defaulting to today when blank.
func (s *Service) dateOrToday(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return s.Today(), nil
	}
	return parseDate(field, value)
}

func parseDate(field, value string) (time.Time, error) {
	d, err := calendar.Parse(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, models.NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

// positive accepts finite values greater than zero.
func positive(field string, v float64, message string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return models.NewValidationError(field, "must be a finite number")
	}
	if v <= 0 {
		return models.NewValidationError(field, message)
	}
	return nil
}

// nonNegative accepts finite values of zero or more.
func nonNegative(field string, v float64, message string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return models.NewValidationError(field, "must be a finite number")
	}
	if v < 0 {
		return models.NewValidationError(field, message)
	}
	return nil
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	d, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// reconcile refreshes the snapshot after a correction. The fact change already succeeded, so a
// failure here is logged and left to the next read, which recomputes anyway.
func (s *Service) reconcile(ctx context.Context, reason string) {
	if _, err := s.ledger.Reconcile(ctx); err != nil {
		s.logger.Warn("inventory reconcile failed", zap.String("after", reason), zap.Error(err))
	}
}
