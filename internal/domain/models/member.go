package models

import "time"

// Member is a cooperative member who owns cows.
type Member struct {
	MemberID      string     `bson:"_id" json:"memberId"`
	Name          string     `bson:"name" json:"name"`
	IsActive      bool       `bson:"is_active" json:"isActive"`
	ArchiveDate   *time.Time `bson:"archive_date,omitempty" json:"archiveDate,omitempty"`
	ArchiveReason string     `bson:"archive_reason,omitempty" json:"archiveReason,omitempty"`
}

// MemberWithStats aggregates a member's active cows and their combined production.
type MemberWithStats struct {
	Member                     Member         `json:"member"`
	Cows                       []CowWithStats `json:"cows"`
	AverageDailyMilkProduction float64        `json:"averageDailyMilkProduction"`
}

// MemberSummary counts members by state.
type MemberSummary struct {
	TotalActiveMembers    int `json:"totalActiveMembers"`
	TotalArchivedMembers  int `json:"totalArchivedMembers"`
	MembersWithActiveCows int `json:"membersWithActiveCows"`
}

// Customer buys milk. Customers are created on their first sale.
type Customer struct {
	CustomerID string `bson:"_id" json:"customerId"`
	Name       string `bson:"name" json:"name"`
}
