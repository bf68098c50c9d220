package models

import (
	"fmt"
	"strings"
	"time"
)

// HealthStatus is the closed set of health states a cow can be in. The eligibility engine
// must handle every value returned by AllHealthStatuses.
type HealthStatus string

const (
	HealthHealthy        HealthStatus = "HEALTHY"
	HealthSick           HealthStatus = "SICK"
	HealthNeedsAttention HealthStatus = "NEEDS_ATTENTION"
	HealthUnderTreatment HealthStatus = "UNDER_TREATMENT"
	HealthGestation      HealthStatus = "GESTATION"
	HealthVaccinated     HealthStatus = "VACCINATED"
	HealthAntibiotics    HealthStatus = "ANTIBIOTICS"
)

// AllHealthStatuses lists every known health status.
func AllHealthStatuses() []HealthStatus {
	return []HealthStatus{
		HealthHealthy,
		HealthSick,
		HealthNeedsAttention,
		HealthUnderTreatment,
		HealthGestation,
		HealthVaccinated,
		HealthAntibiotics,
	}
}

// ParseHealthStatus maps free text onto a known status, case-insensitively.
func ParseHealthStatus(value string) (HealthStatus, error) {
	candidate := HealthStatus(strings.ToUpper(strings.TrimSpace(value)))
	for _, s := range AllHealthStatuses() {
		if s == candidate {
			return s, nil
		}
	}
	return "", NewValidationError("healthStatus", fmt.Sprintf("unknown health status %q", value))
}

// ActionStatus is a lifecycle tag on the cow. It is informational only.
type ActionStatus string

const (
	ActionActive     ActionStatus = "ACTIVE"
	ActionSold       ActionStatus = "SOLD"
	ActionWormed     ActionStatus = "WORMED"
	ActionVaccinated ActionStatus = "VACCINATED"
	ActionDeceased   ActionStatus = "DECEASED"
)

// ParseActionStatus maps free text onto a known action status.
func ParseActionStatus(value string) (ActionStatus, error) {
	switch s := ActionStatus(strings.ToUpper(strings.TrimSpace(value))); s {
	case ActionActive, ActionSold, ActionWormed, ActionVaccinated, ActionDeceased:
		return s, nil
	default:
		return "", NewValidationError("actionStatus", fmt.Sprintf("unknown action status %q", value))
	}
}

// CowStatus carries health state and treatment dates. Only VaccinationLast and
// AntibioticTreatment affect milk collection.
type CowStatus struct {
	HealthStatus        HealthStatus `bson:"health_status" json:"healthStatus"`
	ActionStatus        ActionStatus `bson:"action_status" json:"actionStatus"`
	DewormingDue        *time.Time   `bson:"deworming_due,omitempty" json:"dewormingDue,omitempty"`
	DewormingLast       *time.Time   `bson:"deworming_last,omitempty" json:"dewormingLast,omitempty"`
	CalvingDate         *time.Time   `bson:"calving_date,omitempty" json:"calvingDate,omitempty"`
	VaccinationDue      *time.Time   `bson:"vaccination_due,omitempty" json:"vaccinationDue,omitempty"`
	VaccinationLast     *time.Time   `bson:"vaccination_last,omitempty" json:"vaccinationLast,omitempty"`
	AntibioticTreatment *time.Time   `bson:"antibiotic_treatment,omitempty" json:"antibioticTreatment,omitempty"`
}

// Cow is a milking animal owned by a member.
type Cow struct {
	CowID         string     `bson:"_id" json:"cowId,omitempty"`
	EntryDate     time.Time  `bson:"entry_date" json:"entryDate"`
	OwnerID       string     `bson:"owner_id" json:"ownerId"`
	Name          string     `bson:"name" json:"name"`
	Breed         string     `bson:"breed" json:"breed"`
	Age           int        `bson:"age" json:"age"`
	Weight        float64    `bson:"weight" json:"weight"`
	Status        CowStatus  `bson:"status" json:"status"`
	IsActive      bool       `bson:"is_active" json:"isActive"`
	ArchiveReason string     `bson:"archive_reason,omitempty" json:"archiveReason,omitempty"`
	ArchiveDate   *time.Time `bson:"archive_date,omitempty" json:"archiveDate,omitempty"`
	Note          string     `bson:"note,omitempty" json:"note,omitempty"`
}

// Archive deactivates the cow.
func (c *Cow) Archive(reason string, at time.Time) {
	c.IsActive = false
	c.ArchiveReason = reason
	c.ArchiveDate = &at
}

// CowWithStats decorates a cow with its production statistics.
type CowWithStats struct {
	Cow                        Cow        `json:"cow"`
	AverageDailyMilkProduction float64    `json:"averageDailyMilkProduction"`
	LastMilkingDate            *time.Time `json:"lastMilkingDate,omitempty"`
}

// CowSummary counts the herd by state.
type CowSummary struct {
	TotalActiveCows   int `json:"totalActiveCows"`
	TotalArchivedCows int `json:"totalArchivedCows"`
	HealthyCows       int `json:"healthyCows"`
	NeedsAttention    int `json:"needsAttention"`
}
