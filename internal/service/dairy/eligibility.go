package dairy

import (
	"context"

	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/repository"
)

// CheckEligibility evaluates one cow on date, or today when date is blank.
func (s *Service) CheckEligibility(ctx context.Context, cowID, date string) (*models.CowEligibility, error) {
	day, err := s.dateOrToday("date", date)
	if err != nil {
		return nil, err
	}
	cow, err := s.store.GetCow(ctx, cowID)
	if err != nil {
		return nil, err
	}
	result := s.engine.CowEligibility(*cow, day)
	return &result, nil
}

// BulkEligibility evaluates every cow matching the filter today.
func (s *Service) BulkEligibility(ctx context.Context, filter repository.CowFilter) (*models.BulkEligibility, error) {
	cows, err := s.store.ListCows(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := s.engine.Bulk(cows, s.Today())
	return &result, nil
}

// HealthDetails reports the cow's withdrawal periods and whether milk can be collected today.
func (s *Service) HealthDetails(ctx context.Context, cowID string) (*models.CowHealthDetails, error) {
	cow, err := s.store.GetCow(ctx, cowID)
	if err != nil {
		return nil, err
	}
	details := s.engine.HealthDetails(*cow, s.Today())
	return &details, nil
}
