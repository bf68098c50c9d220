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

// AddCow registers a cow for an active member. Health defaults to HEALTHY and the action
// status to ACTIVE.
func (s *Service) AddCow(ctx context.Context, in CowInput) (*models.Cow, error) {
	cow, err := s.buildCow(ctx, in, true)
	if err != nil {
		return nil, err
	}

	id, err := s.ids.Next(ctx, identifier.CowScheme)
	if err != nil {
		return nil, err
	}
	cow.CowID = id
	cow.IsActive = true

	if err := s.store.InsertCow(ctx, cow); err != nil {
		return nil, fmt.Errorf("store cow: %w", err)
	}
	s.logger.Info("cow added", zap.String("cow_id", cow.CowID), zap.String("owner_id", cow.OwnerID))
	return &cow, nil
}

// UpdateCow replaces the cow's details and health record. Identity and archive state are kept.
// Moving the cow to another owner requires that owner to be active; the current owner may
// be archived so that records of retired herds can still be corrected.
func (s *Service) UpdateCow(ctx context.Context, cowID string, in CowInput) (*models.Cow, error) {
	current, err := s.store.GetCow(ctx, cowID)
	if err != nil {
		return nil, err
	}
	cow, err := s.buildCow(ctx, in, strings.TrimSpace(in.OwnerID) != current.OwnerID)
	if err != nil {
		return nil, err
	}
	cow.CowID = current.CowID
	cow.IsActive = current.IsActive
	cow.ArchiveReason = current.ArchiveReason
	cow.ArchiveDate = current.ArchiveDate

	if err := s.store.UpdateCow(ctx, cow); err != nil {
		return nil, fmt.Errorf("update cow: %w", err)
	}
	s.logger.Info("cow updated", zap.String("cow_id", cow.CowID), zap.String("health_status", string(cow.Status.HealthStatus)))
	return &cow, nil
}

func (s *Service) buildCow(ctx context.Context, in CowInput, activeOwner bool) (models.Cow, error) {
	ownerID := strings.TrimSpace(in.OwnerID)
	if ownerID == "" {
		return models.Cow{}, models.NewValidationError("ownerId", "owner ID is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Cow{}, models.NewValidationError("name", "name is required")
	}
	if in.Age < 0 {
		return models.Cow{}, models.NewValidationError("age", "age must not be negative")
	}
	if err := nonNegative("weight", in.Weight, "weight must not be negative"); err != nil {
		return models.Cow{}, err
	}

	entryDate, err := s.dateOrToday("entryDate", in.EntryDate)
	if err != nil {
		return models.Cow{}, err
	}

	health := models.HealthHealthy
	if strings.TrimSpace(in.HealthStatus) != "" {
		if health, err = models.ParseHealthStatus(in.HealthStatus); err != nil {
			return models.Cow{}, err
		}
	}
	action := models.ActionActive
	if strings.TrimSpace(in.ActionStatus) != "" {
		if action, err = models.ParseActionStatus(in.ActionStatus); err != nil {
			return models.Cow{}, err
		}
	}

	status := models.CowStatus{HealthStatus: health, ActionStatus: action}
	dates := []struct {
		field  string
		value  string
		target **time.Time
	}{
		{"dewormingDue", in.DewormingDue, &status.DewormingDue},
		{"dewormingLast", in.DewormingLast, &status.DewormingLast},
		{"calvingDate", in.CalvingDate, &status.CalvingDate},
		{"vaccinationDue", in.VaccinationDue, &status.VaccinationDue},
		{"vaccinationLast", in.VaccinationLast, &status.VaccinationLast},
		{"antibioticTreatment", in.AntibioticTreatment, &status.AntibioticTreatment},
	}
	for _, d := range dates {
		if *d.target, err = parseOptionalDate(d.field, d.value); err != nil {
			return models.Cow{}, err
		}
	}

	owner, err := s.store.GetMember(ctx, ownerID)
	if errors.Is(err, models.ErrNotFound) {
		return models.Cow{}, models.NewValidationError("ownerId", fmt.Sprintf("member %s not found", ownerID))
	}
	if err != nil {
		return models.Cow{}, fmt.Errorf("load member %s: %w", ownerID, err)
	}
	if activeOwner && !owner.IsActive {
		return models.Cow{}, models.NewValidationError("ownerId", fmt.Sprintf("member %s is archived", ownerID))
	}

	return models.Cow{
		EntryDate: entryDate,
		OwnerID:   ownerID,
		Name:      name,
		Breed:     strings.TrimSpace(in.Breed),
		Age:       in.Age,
		Weight:    in.Weight,
		Status:    status,
		Note:      strings.TrimSpace(in.Note),
	}, nil
}

// GetCow returns one cow with its production statistics.
func (s *Service) GetCow(ctx context.Context, cowID string) (*models.CowWithStats, error) {
	cow, err := s.store.GetCow(ctx, cowID)
	if err != nil {
		return nil, err
	}
	withStats, err := s.stats.CowWithStats(ctx, *cow, s.Today())
	if err != nil {
		return nil, err
	}
	return &withStats, nil
}

// ListCows returns cows with their production statistics.
func (s *Service) ListCows(ctx context.Context, filter repository.CowFilter) ([]models.CowWithStats, error) {
	return s.stats.CowsWithStats(ctx, filter, s.Today())
}

// ArchiveCow deactivates a cow. Its facts are kept.
func (s *Service) ArchiveCow(ctx context.Context, cowID string, in ArchiveInput) (*models.Cow, error) {
	reason, date, err := s.archiveArgs(in)
	if err != nil {
		return nil, err
	}
	cow, err := s.store.GetCow(ctx, cowID)
	if err != nil {
		return nil, err
	}
	if !cow.IsActive {
		return nil, fmt.Errorf("cow %s: %w", cowID, models.ErrCowArchived)
	}

	cow.Archive(reason, date)
	if err := s.store.UpdateCow(ctx, *cow); err != nil {
		return nil, fmt.Errorf("archive cow: %w", err)
	}
	s.logger.Info("cow archived", zap.String("cow_id", cowID), zap.String("reason", reason))
	return cow, nil
}

// AddMember registers an active member.
func (s *Service) AddMember(ctx context.Context, in MemberInput) (*models.Member, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("name", "name is required")
	}
	id, err := s.ids.Next(ctx, identifier.MemberScheme)
	if err != nil {
		return nil, err
	}
	member := models.Member{MemberID: id, Name: name, IsActive: true}
	if err := s.store.InsertMember(ctx, member); err != nil {
		return nil, fmt.Errorf("store member: %w", err)
	}
	s.logger.Info("member added", zap.String("member_id", id))
	return &member, nil
}

// GetMember returns one member with their active cows.
func (s *Service) GetMember(ctx context.Context, memberID string) (*models.MemberWithStats, error) {
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	withStats, err := s.stats.MemberWithStats(ctx, *member, s.Today())
	if err != nil {
		return nil, err
	}
	return &withStats, nil
}

// ListMembers returns members with their active cows and combined production.
func (s *Service) ListMembers(ctx context.Context, activeOnly bool) ([]models.MemberWithStats, error) {
	return s.stats.MembersWithStats(ctx, activeOnly, s.Today())
}

// ArchiveMember deactivates a member and every active cow they own. It returns the number of
// cows archived with them.
func (s *Service) ArchiveMember(ctx context.Context, memberID string, in ArchiveInput) (*models.Member, int, error) {
	reason, date, err := s.archiveArgs(in)
	if err != nil {
		return nil, 0, err
	}
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, 0, err
	}
	if !member.IsActive {
		return nil, 0, models.NewValidationError("memberId", fmt.Sprintf("member %s is already archived", memberID))
	}

	member.IsActive = false
	member.ArchiveReason = reason
	member.ArchiveDate = &date
	if err := s.store.UpdateMember(ctx, *member); err != nil {
		return nil, 0, fmt.Errorf("archive member: %w", err)
	}

	cows, err := s.store.ArchiveCowsByOwner(ctx, memberID, "Owner archived: "+reason, date)
	if err != nil {
		return nil, 0, fmt.Errorf("archive cows of member %s: %w", memberID, err)
	}
	s.logger.Info("member archived", zap.String("member_id", memberID), zap.Int("cows_archived", cows))
	return member, cows, nil
}

func (s *Service) archiveArgs(in ArchiveInput) (string, time.Time, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return "", time.Time{}, models.NewValidationError("reason", "archive reason is required")
	}
	date, err := s.dateOrToday("archiveDate", in.Date)
	if err != nil {
		return "", time.Time{}, err
	}
	return reason, date, nil
}
