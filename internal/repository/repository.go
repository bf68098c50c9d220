// Package repository defines the persistence contracts shared by the MongoDB and in-memory stores.
//
// Milk-in, milk-out and spoilage entries are facts: there is no update operation for them, only
// insert and delete-by-ID for corrections. Lookups of a missing record return an error wrapping
// models.ErrNotFound; inserts that collide on the external ID return models.ErrDuplicateID.
package repository

import (
	"context"
	"time"

	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
	"github.com/mamadbah2/dairycoop/internal/domain/models"
)

// Collection names a keyed record set. The values double as MongoDB collection names.
type Collection string

const (
	Cows        Collection = "cows"
	Members     Collection = "members"
	Customers   Collection = "customers"
	MilkIn      Collection = "milk_in_entries"
	MilkOut     Collection = "milk_out_entries"
	MilkSpoilt  Collection = "milk_spoilt_entries"
	Inventory   Collection = "milk_inventory"
	DailyReport Collection = "daily_reports"
	Counters    Collection = "counters"
)

// DateRange filters facts by date, bounds inclusive. A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Within builds a DateRange from a calendar window.
func Within(w calendar.Window) DateRange {
	return DateRange{From: w.Start, To: w.End}
}

// Includes reports whether t falls inside the range.
func (r DateRange) Includes(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// CowFilter narrows cow listings. Zero value lists every cow.
type CowFilter struct {
	OwnerID    string
	ActiveOnly bool
}

// MilkInFilter narrows milk-in listings. Zero value lists every entry.
type MilkInFilter struct {
	CowID string
	Range DateRange
}

// IDLister returns every external ID stored in a collection.
type IDLister interface {
	ListIDs(ctx context.Context, collection Collection) ([]string, error)
}

// Sequencer hands out per-collection sequence numbers atomically.
type Sequencer interface {
	// NextSequence returns max(stored, floor) + 1 and stores it, as one atomic step.
	NextSequence(ctx context.Context, collection Collection, floor int) (int, error)
}

// IDSource is what identifier allocation reads and advances.
type IDSource interface {
	IDLister
	Sequencer
}

// CowStore persists cows.
type CowStore interface {
	InsertCow(ctx context.Context, cow models.Cow) error
	GetCow(ctx context.Context, cowID string) (*models.Cow, error)
	ListCows(ctx context.Context, filter CowFilter) ([]models.Cow, error)
	UpdateCow(ctx context.Context, cow models.Cow) error
	// ArchiveCowsByOwner deactivates every cow of the owner and returns how many changed.
	ArchiveCowsByOwner(ctx context.Context, ownerID, reason string, at time.Time) (int, error)
}

// MemberStore persists members.
type MemberStore interface {
	InsertMember(ctx context.Context, member models.Member) error
	GetMember(ctx context.Context, memberID string) (*models.Member, error)
	ListMembers(ctx context.Context, activeOnly bool) ([]models.Member, error)
	UpdateMember(ctx context.Context, member models.Member) error
}

// CustomerStore persists customers.
type CustomerStore interface {
	InsertCustomer(ctx context.Context, customer models.Customer) error
	FindCustomerByName(ctx context.Context, name string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
}

// MilkInStore persists collection facts.
type MilkInStore interface {
	InsertMilkIn(ctx context.Context, entry models.MilkInEntry) error
	GetMilkIn(ctx context.Context, entryID string) (*models.MilkInEntry, error)
	ListMilkIn(ctx context.Context, filter MilkInFilter) ([]models.MilkInEntry, error)
	DeleteMilkIn(ctx context.Context, entryID string) error
}

// MilkOutStore persists sale facts.
type MilkOutStore interface {
	InsertMilkOut(ctx context.Context, entry models.MilkOutEntry) error
	GetMilkOut(ctx context.Context, saleID string) (*models.MilkOutEntry, error)
	ListMilkOut(ctx context.Context, r DateRange) ([]models.MilkOutEntry, error)
	DeleteMilkOut(ctx context.Context, saleID string) error
}

// SpoilageStore persists spoilage facts.
type SpoilageStore interface {
	InsertSpoilt(ctx context.Context, entry models.MilkSpoiltEntry) error
	GetSpoilt(ctx context.Context, spoiltID string) (*models.MilkSpoiltEntry, error)
	ListSpoilt(ctx context.Context, r DateRange) ([]models.MilkSpoiltEntry, error)
	DeleteSpoilt(ctx context.Context, spoiltID string) error
}

// FactStore groups the three fact streams the inventory is derived from.
type FactStore interface {
	MilkInStore
	MilkOutStore
	SpoilageStore
}

// InventoryStore persists the single cached inventory snapshot.
type InventoryStore interface {
	// GetSnapshot returns ErrNotFound when the snapshot was never written.
	GetSnapshot(ctx context.Context) (*models.InventorySnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot models.InventorySnapshot) error
	// ApplyDelta adds delta to the cached stock, clamping the result at zero, and stamps
	// lastUpdated. It returns ErrNotFound when no snapshot exists yet.
	ApplyDelta(ctx context.Context, delta float64, at time.Time) (*models.InventorySnapshot, error)
}

// ReportStore persists daily reports, one per date.
type ReportStore interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
	GetDailyReport(ctx context.Context, date time.Time) (*models.DailyReport, error)
}

// Store is the full persistence surface used by the server.
type Store interface {
	IDSource
	CowStore
	MemberStore
	CustomerStore
	FactStore
	InventoryStore
	ReportStore
	Close(ctx context.Context) error
}
