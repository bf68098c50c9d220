// Package ledger derives the milk inventory from the collection, sale and spoilage facts.
//
// The stored snapshot is a cache. Reads always recompute max(0, in - out - spoilt) from the
// facts and rewrite the snapshot when it drifted, so a stale or missing snapshot never leaks
// into a response.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/repository"
)

// Store is the persistence the ledger needs.
type Store interface {
	repository.FactStore
	repository.InventoryStore
}

// Service maintains the inventory snapshot.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a ledger over store.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Totals sums every fact stream and compares the result with the cached snapshot.
func (s *Service) Totals(ctx context.Context) (models.InventoryTotals, error) {
	in, out, spoilt, err := s.sumFacts(ctx)
	if err != nil {
		return models.InventoryTotals{}, err
	}

	totals := models.InventoryTotals{
		TotalMilkIn:   in.InexactFloat64(),
		TotalMilkOut:  out.InexactFloat64(),
		TotalSpoilage: spoilt.InexactFloat64(),
		CurrentStock:  stockOf(in, out, spoilt).InexactFloat64(),
	}

	snap, err := s.store.GetSnapshot(ctx)
	switch {
	case err == nil:
		totals.CachedStock = snap.CurrentStock
		updated := snap.LastUpdated
		totals.CacheUpdatedAt = &updated
	case !errors.Is(err, models.ErrNotFound):
		return models.InventoryTotals{}, fmt.Errorf("load inventory snapshot: %w", err)
	}
	return totals, nil
}

// CurrentStock returns the stock recomputed from all facts, refreshing the snapshot if needed.
func (s *Service) CurrentStock(ctx context.Context) (float64, error) {
	snap, err := s.Reconcile(ctx)
	if err != nil {
		return 0, err
	}
	return snap.CurrentStock, nil
}

// Snapshot returns the cached snapshot as stored, without recomputing it.
func (s *Service) Snapshot(ctx context.Context) (*models.InventorySnapshot, error) {
	return s.store.GetSnapshot(ctx)
}

// Reconcile recomputes the stock and overwrites the snapshot when it differs or is missing.
func (s *Service) Reconcile(ctx context.Context) (models.InventorySnapshot, error) {
	in, out, spoilt, err := s.sumFacts(ctx)
	if err != nil {
		return models.InventorySnapshot{}, err
	}
	stock := stockOf(in, out, spoilt).InexactFloat64()

	cached, err := s.store.GetSnapshot(ctx)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return models.InventorySnapshot{}, fmt.Errorf("load inventory snapshot: %w", err)
	}
	if cached != nil && cached.CurrentStock == stock {
		return *cached, nil
	}

	fresh := models.InventorySnapshot{CurrentStock: stock, LastUpdated: s.now().UTC()}
	if err := s.store.SaveSnapshot(ctx, fresh); err != nil {
		return models.InventorySnapshot{}, fmt.Errorf("save inventory snapshot: %w", err)
	}

	if cached != nil {
		s.logger.Info("inventory snapshot reconciled",
			zap.Float64("cached", cached.CurrentStock),
			zap.Float64("recomputed", stock),
		)
	} else {
		s.logger.Info("inventory snapshot created", zap.Float64("stock", stock))
	}
	return fresh, nil
}

// RecordMilkIn adds liters to the cached stock.
func (s *Service) RecordMilkIn(ctx context.Context, liters float64) error {
	return s.apply(ctx, liters)
}

// RecordMilkOut removes sold liters from the cached stock, never below zero.
func (s *Service) RecordMilkOut(ctx context.Context, liters float64) error {
	return s.apply(ctx, -liters)
}

// RecordSpoilage removes spoilt liters from the cached stock, never below zero.
func (s *Service) RecordSpoilage(ctx context.Context, liters float64) error {
	return s.apply(ctx, -liters)
}

func (s *Service) apply(ctx context.Context, delta float64) error {
	snap, err := s.store.ApplyDelta(ctx, delta, s.now().UTC())
	if errors.Is(err, models.ErrNotFound) {
		// First write ever: the fact is already stored, so a recompute includes it.
		_, err = s.Reconcile(ctx)
		return err
	}
	if err != nil {
		return fmt.Errorf("apply inventory delta: %w", err)
	}
	s.logger.Debug("inventory updated", zap.Float64("delta", delta), zap.Float64("stock", snap.CurrentStock))
	return nil
}

func (s *Service) sumFacts(ctx context.Context) (in, out, spoilt decimal.Decimal, err error) {
	ins, err := s.store.ListMilkIn(ctx, repository.MilkInFilter{})
	if err != nil {
		return in, out, spoilt, fmt.Errorf("list milk-in entries: %w", err)
	}
	outs, err := s.store.ListMilkOut(ctx, repository.DateRange{})
	if err != nil {
		return in, out, spoilt, fmt.Errorf("list milk-out entries: %w", err)
	}
	spoils, err := s.store.ListSpoilt(ctx, repository.DateRange{})
	if err != nil {
		return in, out, spoilt, fmt.Errorf("list spoilage entries: %w", err)
	}

	for _, e := range ins {
		in = in.Add(decimal.NewFromFloat(e.Liters))
	}
	for _, e := range outs {
		out = out.Add(decimal.NewFromFloat(e.QuantitySold))
	}
	for _, e := range spoils {
		spoilt = spoilt.Add(decimal.NewFromFloat(e.AmountSpoilt))
	}
	return in, out, spoilt, nil
}

func stockOf(in, out, spoilt decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, in.Sub(out).Sub(spoilt))
}
