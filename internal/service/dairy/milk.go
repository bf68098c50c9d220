package dairy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/repository"
	"github.com/mamadbah2/dairycoop/internal/service/identifier"
)

// RecordMilkIn validates and stores a collection, then adds it to the inventory.
//
// Checks run in order and the first failure is returned: liters, owner, date, milking
// session, then for a named cow its existence, ownership, archive state and health.
func (s *Service) RecordMilkIn(ctx context.Context, in MilkInInput) (*models.MilkInEntry, error) {
	if err := positive("liters", in.Liters, "milk quantity must be positive"); err != nil {
		return nil, err
	}
	ownerID := strings.TrimSpace(in.OwnerID)
	if ownerID == "" {
		return nil, models.NewValidationError("ownerId", "owner ID is required")
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	milking, err := models.ParseMilkingType(in.MilkingType)
	if err != nil {
		return nil, err
	}

	cowID := strings.TrimSpace(in.CowID)
	if cowID != "" {
		if err := s.checkCowForCollection(ctx, cowID, ownerID, date); err != nil {
			return nil, err
		}
	}

	entryID, err := s.ids.Next(ctx, identifier.MilkInScheme)
	if err != nil {
		return nil, err
	}
	entry := models.MilkInEntry{
		EntryID:     entryID,
		CowID:       cowID,
		OwnerID:     ownerID,
		Liters:      in.Liters,
		Date:        date,
		MilkingType: milking,
	}
	if err := s.store.InsertMilkIn(ctx, entry); err != nil {
		return nil, fmt.Errorf("store milk-in entry: %w", err)
	}
	if err := s.ledger.RecordMilkIn(ctx, entry.Liters); err != nil {
		return nil, fmt.Errorf("update inventory: %w", err)
	}

	s.logger.Info("milk-in recorded",
		zap.String("entry_id", entry.EntryID),
		zap.String("cow_id", entry.CowID),
		zap.String("owner_id", entry.OwnerID),
		zap.Float64("liters", entry.Liters),
	)
	return &entry, nil
}

func (s *Service) checkCowForCollection(ctx context.Context, cowID, ownerID string, date time.Time) error {
	cow, err := s.store.GetCow(ctx, cowID)
	if errors.Is(err, models.ErrNotFound) {
		return models.NewValidationError("cowId", fmt.Sprintf("cow with ID %s not found", cowID))
	}
	if err != nil {
		return fmt.Errorf("load cow %s: %w", cowID, err)
	}
	if cow.OwnerID != ownerID {
		return fmt.Errorf("cow %s does not belong to owner %s: %w", cowID, ownerID, models.ErrOwnershipMismatch)
	}
	if !cow.IsActive {
		return fmt.Errorf("cannot collect milk from archived cow %s: %w", cow.Name, models.ErrCowArchived)
	}

	result := s.engine.Evaluate(*cow, date)
	if !result.IsValid {
		s.logger.Info("milk collection rejected",
			zap.String("cow_id", cow.CowID),
			zap.String("health_status", string(cow.Status.HealthStatus)),
			zap.String("reason", result.Reason),
		)
		return &models.IneligibleError{
			CowID:        cow.CowID,
			CowName:      cow.Name,
			HealthStatus: cow.Status.HealthStatus,
			Result:       result,
		}
	}
	return nil
}

// GetMilkIn returns one collection entry.
func (s *Service) GetMilkIn(ctx context.Context, entryID string) (*models.MilkInEntry, error) {
	return s.store.GetMilkIn(ctx, entryID)
}

// ListMilkIn returns collection entries ordered by date.
func (s *Service) ListMilkIn(ctx context.Context, filter repository.MilkInFilter) ([]models.MilkInEntry, error) {
	return s.store.ListMilkIn(ctx, filter)
}

// DeleteMilkIn removes a collection entry and reconciles the inventory.
func (s *Service) DeleteMilkIn(ctx context.Context, entryID string) error {
	if err := s.store.DeleteMilkIn(ctx, entryID); err != nil {
		return err
	}
	s.logger.Info("milk-in deleted", zap.String("entry_id", entryID))
	s.reconcile(ctx, "milk-in delete")
	return nil
}

// RecordSale validates and stores a sale, creating the customer on first purchase.
func (s *Service) RecordSale(ctx context.Context, in SaleInput) (*models.MilkOutEntry, error) {
	if err := positive("quantitySold", in.QuantitySold, "quantity must be positive"); err != nil {
		return nil, err
	}
	if err := positive("pricePerLiter", in.PricePerLiter, "price must be positive"); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return nil, models.NewValidationError("customerName", "customer name is required")
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	mode, err := models.ParsePaymentMode(in.PaymentMode)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerByName(ctx, name)
	if err != nil {
		return nil, err
	}
	saleID, err := s.ids.Next(ctx, identifier.SaleScheme)
	if err != nil {
		return nil, err
	}

	entry := models.MilkOutEntry{
		SaleID:        saleID,
		CustomerID:    customer.CustomerID,
		CustomerName:  customer.Name,
		Date:          date,
		QuantitySold:  in.QuantitySold,
		PricePerLiter: in.PricePerLiter,
		PaymentMode:   mode,
	}
	if err := s.store.InsertMilkOut(ctx, entry); err != nil {
		return nil, fmt.Errorf("store sale: %w", err)
	}
	if err := s.ledger.RecordMilkOut(ctx, entry.QuantitySold); err != nil {
		return nil, fmt.Errorf("update inventory: %w", err)
	}

	s.logger.Info("sale recorded",
		zap.String("sale_id", entry.SaleID),
		zap.String("customer_id", entry.CustomerID),
		zap.Float64("liters", entry.QuantitySold),
	)
	return &entry, nil
}

func (s *Service) customerByName(ctx context.Context, name string) (*models.Customer, error) {
	existing, err := s.store.FindCustomerByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("find customer: %w", err)
	}

	id, err := s.ids.Next(ctx, identifier.CustomerScheme)
	if err != nil {
		return nil, err
	}
	customer := models.Customer{CustomerID: id, Name: name}
	if err := s.store.InsertCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("store customer: %w", err)
	}
	s.logger.Info("customer created", zap.String("customer_id", id), zap.String("name", name))
	return &customer, nil
}

// GetSale returns one sale.
func (s *Service) GetSale(ctx context.Context, saleID string) (*models.MilkOutEntry, error) {
	return s.store.GetMilkOut(ctx, saleID)
}

// ListSales returns sales in range ordered by date.
func (s *Service) ListSales(ctx context.Context, rng repository.DateRange) ([]models.MilkOutEntry, error) {
	return s.store.ListMilkOut(ctx, rng)
}

// DeleteSale removes a sale and reconciles the inventory.
func (s *Service) DeleteSale(ctx context.Context, saleID string) error {
	if err := s.store.DeleteMilkOut(ctx, saleID); err != nil {
		return err
	}
	s.logger.Info("sale deleted", zap.String("sale_id", saleID))
	s.reconcile(ctx, "sale delete")
	return nil
}

// ListCustomers returns every customer.
func (s *Service) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.store.ListCustomers(ctx)
}

// RecordSpoilage validates and stores a loss, then removes it from the inventory.
func (s *Service) RecordSpoilage(ctx context.Context, in SpoilageInput) (*models.MilkSpoiltEntry, error) {
	if err := positive("amountSpoilt", in.AmountSpoilt, "spoilt amount must be positive"); err != nil {
		return nil, err
	}
	if err := nonNegative("lossAmount", in.LossAmount, "loss amount must not be negative"); err != nil {
		return nil, err
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	cause, err := models.ParseSpoilageCause(in.Cause)
	if err != nil {
		return nil, err
	}

	spoiltID, err := s.ids.Next(ctx, identifier.SpoiltScheme)
	if err != nil {
		return nil, err
	}
	entry := models.MilkSpoiltEntry{
		SpoiltID:     spoiltID,
		Date:         date,
		AmountSpoilt: in.AmountSpoilt,
		LossAmount:   in.LossAmount,
		Cause:        cause,
	}
	if err := s.store.InsertSpoilt(ctx, entry); err != nil {
		return nil, fmt.Errorf("store spoilage: %w", err)
	}
	if err := s.ledger.RecordSpoilage(ctx, entry.AmountSpoilt); err != nil {
		return nil, fmt.Errorf("update inventory: %w", err)
	}

	s.logger.Info("spoilage recorded", zap.String("spoilt_id", entry.SpoiltID), zap.Float64("liters", entry.AmountSpoilt))
	return &entry, nil
}

// GetSpoilage returns one spoilage entry.
func (s *Service) GetSpoilage(ctx context.Context, spoiltID string) (*models.MilkSpoiltEntry, error) {
	return s.store.GetSpoilt(ctx, spoiltID)
}

// ListSpoilage returns spoilage entries in range ordered by date.
func (s *Service) ListSpoilage(ctx context.Context, rng repository.DateRange) ([]models.MilkSpoiltEntry, error) {
	return s.store.ListSpoilt(ctx, rng)
}

// DeleteSpoilage removes a spoilage entry and reconciles the inventory.
func (s *Service) DeleteSpoilage(ctx context.Context, spoiltID string) error {
	if err := s.store.DeleteSpoilt(ctx, spoiltID); err != nil {
		return err
	}
	s.logger.Info("spoilage deleted", zap.String("spoilt_id", spoiltID))
	s.reconcile(ctx, "spoilage delete")
	return nil
}
