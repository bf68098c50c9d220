// Package eligibility decides whether milk may be collected from a cow on a given date.
package eligibility

import (
	"fmt"
	"time"

	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
	"github.com/mamadbah2/dairycoop/internal/domain/models"
)

const (
	// VaccinationWithdrawalDays is the waiting period after vaccination. The last day is blocked.
	VaccinationWithdrawalDays = 2
	// AntibioticWithdrawalDays is the waiting period after antibiotic treatment. The last day is blocked.
	AntibioticWithdrawalDays = 3
)

// Engine evaluates the health rules. It holds no state and never errors.
type Engine struct{}

// NewEngine returns an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate returns the decision for cow on date. Only the civil date of date is considered.
func (e *Engine) Evaluate(cow models.Cow, date time.Time) models.EligibilityResult {
	day := calendar.Day(date)

	if !cow.IsActive {
		return blocked(models.EligibilityArchived, fmt.Sprintf("Cannot collect milk from archived cow %s", cow.Name), nil)
	}

	status := cow.Status
	switch status.HealthStatus {
	case models.HealthHealthy, models.HealthNeedsAttention, models.HealthGestation:
		return models.EligibilityResult{IsValid: true, Code: models.EligibilityOK}

	case models.HealthSick, models.HealthUnderTreatment:
		return blocked(models.EligibilitySick,
			fmt.Sprintf("Cannot collect milk from cow %s - cow is under treatment/sick", cow.Name), nil)

	case models.HealthVaccinated:
		if status.VaccinationLast == nil {
			return blocked(models.EligibilityDateNotRecorded,
				fmt.Sprintf("Cannot collect milk from cow %s - vaccination date not recorded", cow.Name), nil)
		}
		return withdrawal(day, *status.VaccinationLast, VaccinationWithdrawalDays, models.EligibilityVaccinationWithdrawal,
			fmt.Sprintf("Cannot collect milk from cow %s - vaccination waiting period", cow.Name))

	case models.HealthAntibiotics:
		if status.AntibioticTreatment == nil {
			return blocked(models.EligibilityDateNotRecorded,
				fmt.Sprintf("Cannot collect milk from cow %s - antibiotic treatment date not recorded", cow.Name), nil)
		}
		return withdrawal(day, *status.AntibioticTreatment, AntibioticWithdrawalDays, models.EligibilityAntibioticWithdrawal,
			fmt.Sprintf("Cannot collect milk from cow %s - antibiotic waiting period", cow.Name))

	default:
		return blocked(models.EligibilityUnknownStatus,
			fmt.Sprintf("Cannot collect milk from cow %s - unknown health status: %s", cow.Name, status.HealthStatus), nil)
	}
}

// HealthDetails reports the withdrawal period ends of cow, whether or not they block today.
func (e *Engine) HealthDetails(cow models.Cow, today time.Time) models.CowHealthDetails {
	result := e.Evaluate(cow, today)

	details := models.CowHealthDetails{
		CowID:               cow.CowID,
		Name:                cow.Name,
		HealthStatus:        string(cow.Status.HealthStatus),
		VaccinationLast:     calendar.FormatPtr(cow.Status.VaccinationLast),
		AntibioticTreatment: calendar.FormatPtr(cow.Status.AntibioticTreatment),
		CanCollectMilk:      result.IsValid,
	}
	if end := periodEnd(cow.Status.VaccinationLast, VaccinationWithdrawalDays); end != nil {
		details.VaccinationWaitingPeriodEnd = calendar.FormatPtr(end)
	}
	if end := periodEnd(cow.Status.AntibioticTreatment, AntibioticWithdrawalDays); end != nil {
		details.AntibioticWaitingPeriodEnd = calendar.FormatPtr(end)
	}
	if !result.IsValid {
		reason := result.Reason
		details.BlockedReason = &reason
	}
	return details
}

// CowEligibility shapes a decision for API consumers.
func (e *Engine) CowEligibility(cow models.Cow, date time.Time) models.CowEligibility {
	result := e.Evaluate(cow, date)

	out := models.CowEligibility{
		CowID:        cow.CowID,
		CowName:      cow.Name,
		HealthStatus: string(cow.Status.HealthStatus),
		IsEligible:   result.IsValid,
		BlockedUntil: calendar.FormatPtr(result.BlockedUntil),
		IsActive:     cow.IsActive,
	}
	if !result.IsValid {
		reason := result.Reason
		out.Reason = &reason
	}
	return out
}

// Bulk evaluates every cow on date.
func (e *Engine) Bulk(cows []models.Cow, date time.Time) models.BulkEligibility {
	out := models.BulkEligibility{Cows: make([]models.CowEligibility, 0, len(cows))}
	for _, cow := range cows {
		ce := e.CowEligibility(cow, date)
		out.Cows = append(out.Cows, ce)
		if ce.IsEligible {
			out.EligibleCows++
		} else {
			out.BlockedCows++
		}
	}
	out.TotalCows = len(out.Cows)
	return out
}

func withdrawal(day, treated time.Time, days int, code models.EligibilityCode, reason string) models.EligibilityResult {
	until := calendar.AddDays(treated, days)
	if day.After(until) {
		return models.EligibilityResult{IsValid: true, Code: models.EligibilityOK}
	}
	return blocked(code, fmt.Sprintf("%s (blocked until %s)", reason, calendar.Format(until)), &until)
}

func periodEnd(from *time.Time, days int) *time.Time {
	if from == nil {
		return nil
	}
	end := calendar.AddDays(*from, days)
	return &end
}

func blocked(code models.EligibilityCode, reason string, until *time.Time) models.EligibilityResult {
	return models.EligibilityResult{IsValid: false, Code: code, Reason: reason, BlockedUntil: until}
}
