package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
	"github.com/mamadbah2/dairycoop/internal/domain/models"
)

func cowWith(status models.HealthStatus) models.Cow {
	return models.Cow{
		CowID:    "CW01",
		Name:     "Daisy",
		OwnerID:  "OON01",
		IsActive: true,
		Status:   models.CowStatus{HealthStatus: status, ActionStatus: models.ActionActive},
	}
}

func datePtr(t time.Time) *time.Time { return &t }

func TestEvaluateWithdrawalBoundaries(t *testing.T) {
	engine := NewEngine()
	treated := calendar.Date(2025, time.June, 10)

	vaccinated := cowWith(models.HealthVaccinated)
	vaccinated.Status.VaccinationLast = datePtr(treated)

	antibiotics := cowWith(models.HealthAntibiotics)
	antibiotics.Status.AntibioticTreatment = datePtr(treated)

	tests := []struct {
		name      string
		cow       models.Cow
		offset    int
		wantValid bool
		wantCode  models.EligibilityCode
	}{
		{"vaccinated on treatment day", vaccinated, 0, false, models.EligibilityVaccinationWithdrawal},
		{"vaccinated last blocked day", vaccinated, 2, false, models.EligibilityVaccinationWithdrawal},
		{"vaccinated first clear day", vaccinated, 3, true, models.EligibilityOK},
		{"antibiotics last blocked day", antibiotics, 3, false, models.EligibilityAntibioticWithdrawal},
		{"antibiotics first clear day", antibiotics, 4, true, models.EligibilityOK},
		{"antibiotics before treatment date", antibiotics, -1, false, models.EligibilityAntibioticWithdrawal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Evaluate(tt.cow, calendar.AddDays(treated, tt.offset))
			assert.Equal(t, tt.wantValid, result.IsValid)
			assert.Equal(t, tt.wantCode, result.Code)
			if tt.wantValid {
				assert.Nil(t, result.BlockedUntil)
				assert.Empty(t, result.Reason)
			} else {
				require.NotNil(t, result.BlockedUntil)
				assert.Contains(t, result.Reason, "Daisy")
			}
		})
	}

	t.Run("blocked until is the last blocked day", func(t *testing.T) {
		result := engine.Evaluate(vaccinated, treated)
		assert.Equal(t, calendar.Date(2025, time.June, 12), *result.BlockedUntil)
		assert.Contains(t, result.Reason, "2025-06-12")

		result = engine.Evaluate(antibiotics, treated)
		assert.Equal(t, calendar.Date(2025, time.June, 13), *result.BlockedUntil)
	})

	t.Run("time of day is ignored", func(t *testing.T) {
		late := time.Date(2025, time.June, 12, 23, 59, 0, 0, time.UTC)
		assert.False(t, engine.Evaluate(vaccinated, late).IsValid)
	})
}

func TestEvaluateStatusRules(t *testing.T) {
	engine := NewEngine()
	day := calendar.Date(2025, time.June, 7)

	for _, status := range []models.HealthStatus{models.HealthHealthy, models.HealthNeedsAttention, models.HealthGestation} {
		t.Run(string(status)+" is eligible", func(t *testing.T) {
			assert.True(t, engine.Evaluate(cowWith(status), day).IsValid)
		})
	}

	for _, status := range []models.HealthStatus{models.HealthSick, models.HealthUnderTreatment} {
		t.Run(string(status)+" is blocked without end", func(t *testing.T) {
			result := engine.Evaluate(cowWith(status), day)
			assert.False(t, result.IsValid)
			assert.Equal(t, models.EligibilitySick, result.Code)
			assert.Nil(t, result.BlockedUntil)
		})
	}

	t.Run("missing treatment dates block", func(t *testing.T) {
		for _, status := range []models.HealthStatus{models.HealthVaccinated, models.HealthAntibiotics} {
			result := engine.Evaluate(cowWith(status), day)
			assert.False(t, result.IsValid)
			assert.Equal(t, models.EligibilityDateNotRecorded, result.Code)
			assert.Contains(t, result.Reason, "not recorded")
		}
	})

	t.Run("unknown status fails closed", func(t *testing.T) {
		result := engine.Evaluate(cowWith(models.HealthStatus("LAME")), day)
		assert.False(t, result.IsValid)
		assert.Equal(t, models.EligibilityUnknownStatus, result.Code)
	})
}

func TestEvaluateArchivedCowIsNeverEligible(t *testing.T) {
	engine := NewEngine()
	day := calendar.Date(2025, time.June, 7)

	for _, status := range models.AllHealthStatuses() {
		cow := cowWith(status)
		cow.Archive("sold", day)

		result := engine.Evaluate(cow, day)
		assert.False(t, result.IsValid, status)
		assert.Equal(t, models.EligibilityArchived, result.Code, status)
	}
}

// Every known status must have an explicit rule; falling into the default branch means a
// status was added without deciding its eligibility.
func TestEvaluateCoversEveryHealthStatus(t *testing.T) {
	engine := NewEngine()
	day := calendar.Date(2025, time.June, 7)

	for _, status := range models.AllHealthStatuses() {
		cow := cowWith(status)
		cow.Status.VaccinationLast = datePtr(day)
		cow.Status.AntibioticTreatment = datePtr(day)

		result := engine.Evaluate(cow, day)
		assert.NotEqual(t, models.EligibilityUnknownStatus, result.Code, "no rule for %s", status)
	}
}

func TestHealthDetails(t *testing.T) {
	engine := NewEngine()
	today := calendar.Date(2025, time.June, 20)

	cow := cowWith(models.HealthHealthy)
	cow.Status.VaccinationLast = datePtr(calendar.Date(2025, time.June, 1))
	cow.Status.AntibioticTreatment = datePtr(calendar.Date(2025, time.June, 18))

	details := engine.HealthDetails(cow, today)
	require.NotNil(t, details.VaccinationWaitingPeriodEnd)
	require.NotNil(t, details.AntibioticWaitingPeriodEnd)
	assert.Equal(t, "2025-06-03", *details.VaccinationWaitingPeriodEnd)
	assert.Equal(t, "2025-06-21", *details.AntibioticWaitingPeriodEnd)
	// Periods are reported even though a HEALTHY cow is never blocked by them.
	assert.True(t, details.CanCollectMilk)
	assert.Nil(t, details.BlockedReason)

	sick := engine.HealthDetails(cowWith(models.HealthSick), today)
	assert.False(t, sick.CanCollectMilk)
	require.NotNil(t, sick.BlockedReason)
	assert.Nil(t, sick.VaccinationWaitingPeriodEnd)
}

func TestBulk(t *testing.T) {
	engine := NewEngine()
	day := calendar.Date(2025, time.June, 7)

	archived := cowWith(models.HealthHealthy)
	archived.CowID = "CW03"
	archived.Archive("sold", day)

	bulk := engine.Bulk([]models.Cow{cowWith(models.HealthHealthy), cowWith(models.HealthSick), archived}, day)
	assert.Equal(t, 3, bulk.TotalCows)
	assert.Equal(t, 1, bulk.EligibleCows)
	assert.Equal(t, 2, bulk.BlockedCows)
	assert.False(t, bulk.Cows[2].IsActive)
	require.NotNil(t, bulk.Cows[1].Reason)
}
