package models

import "time"

// EligibilityCode classifies an eligibility decision for machine consumers.
type EligibilityCode string

const (
	EligibilityOK                    EligibilityCode = "eligible"
	EligibilityArchived              EligibilityCode = "archived"
	EligibilitySick                  EligibilityCode = "sick_or_under_treatment"
	EligibilityVaccinationWithdrawal EligibilityCode = "vaccination_withdrawal"
	EligibilityAntibioticWithdrawal  EligibilityCode = "antibiotic_withdrawal"
	EligibilityDateNotRecorded       EligibilityCode = "treatment_date_not_recorded"
	EligibilityUnknownStatus         EligibilityCode = "unknown_health_status"
)

// EligibilityResult is the decision for one cow on one date.
type EligibilityResult struct {
	IsValid      bool            `json:"isValid"`
	Code         EligibilityCode `json:"code"`
	Reason       string          `json:"reason,omitempty"`
	BlockedUntil *time.Time      `json:"blockedUntil,omitempty"`
}

// CowEligibility is the per-cow eligibility response shape.
type CowEligibility struct {
	CowID        string  `json:"cowId"`
	CowName      string  `json:"cowName"`
	HealthStatus string  `json:"healthStatus"`
	IsEligible   bool    `json:"isEligible"`
	Reason       *string `json:"reason"`
	BlockedUntil *string `json:"blockedUntil"`
	IsActive     bool    `json:"isActive"`
}

// BulkEligibility reports eligibility over a set of cows.
type BulkEligibility struct {
	Cows         []CowEligibility `json:"cows"`
	TotalCows    int              `json:"totalCows"`
	EligibleCows int              `json:"eligibleCows"`
	BlockedCows  int              `json:"blockedCows"`
}

// CowHealthDetails surfaces withdrawal period ends whether or not they currently block collection.
type CowHealthDetails struct {
	CowID                       string  `json:"cowId"`
	Name                        string  `json:"name"`
	HealthStatus                string  `json:"healthStatus"`
	VaccinationLast             *string `json:"vaccinationLast"`
	VaccinationWaitingPeriodEnd *string `json:"vaccinationWaitingPeriodEnd"`
	AntibioticTreatment         *string `json:"antibioticTreatment"`
	AntibioticWaitingPeriodEnd  *string `json:"antibioticWaitingPeriodEnd"`
	CanCollectMilk              bool    `json:"canCollectMilk"`
	BlockedReason               *string `json:"blockedReason"`
}
