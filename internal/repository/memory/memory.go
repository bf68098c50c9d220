// Package memory provides an in-process Store for development and tests.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/repository"
)

// Store keeps every collection in maps guarded by a single RWMutex.
type Store struct {
	mu        sync.RWMutex
	cows      map[string]models.Cow
	members   map[string]models.Member
	customers map[string]models.Customer
	milkIn    map[string]models.MilkInEntry
	milkOut   map[string]models.MilkOutEntry
	spoilt    map[string]models.MilkSpoiltEntry
	reports   map[time.Time]models.DailyReport
	counters  map[repository.Collection]int
	snapshot  *models.InventorySnapshot
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		cows:      make(map[string]models.Cow),
		members:   make(map[string]models.Member),
		customers: make(map[string]models.Customer),
		milkIn:    make(map[string]models.MilkInEntry),
		milkOut:   make(map[string]models.MilkOutEntry),
		spoilt:    make(map[string]models.MilkSpoiltEntry),
		reports:   make(map[time.Time]models.DailyReport),
		counters:  make(map[repository.Collection]int),
	}
}

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

// ListIDs returns the keys of a collection in ascending order.
func (s *Store) ListIDs(_ context.Context, collection repository.Collection) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	switch collection {
	case repository.Cows:
		ids = keys(s.cows)
	case repository.Members:
		ids = keys(s.members)
	case repository.Customers:
		ids = keys(s.customers)
	case repository.MilkIn:
		ids = keys(s.milkIn)
	case repository.MilkOut:
		ids = keys(s.milkOut)
	case repository.MilkSpoilt:
		ids = keys(s.spoilt)
	}
	sort.Strings(ids)
	return ids, nil
}

// NextSequence advances the collection counter, never below floor.
func (s *Store) NextSequence(_ context.Context, collection repository.Collection, floor int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := max(s.counters[collection], floor) + 1
	s.counters[collection] = next
	return next, nil
}

// =============================================================================
// COWS
// =============================================================================

func (s *Store) InsertCow(_ context.Context, cow models.Cow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cows[cow.CowID]; exists {
		return models.ErrDuplicateID
	}
	s.cows[cow.CowID] = cow
	return nil
}

func (s *Store) GetCow(_ context.Context, cowID string) (*models.Cow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cow, ok := s.cows[cowID]
	if !ok {
		return nil, &models.NotFoundError{Kind: "cow", ID: cowID}
	}
	return &cow, nil
}

func (s *Store) ListCows(_ context.Context, filter repository.CowFilter) ([]models.Cow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Cow
	for _, cow := range s.cows {
		if filter.OwnerID != "" && cow.OwnerID != filter.OwnerID {
			continue
		}
		if filter.ActiveOnly && !cow.IsActive {
			continue
		}
		result = append(result, cow)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CowID < result[j].CowID })
	return result, nil
}

func (s *Store) UpdateCow(_ context.Context, cow models.Cow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cows[cow.CowID]; !ok {
		return &models.NotFoundError{Kind: "cow", ID: cow.CowID}
	}
	s.cows[cow.CowID] = cow
	return nil
}

func (s *Store) ArchiveCowsByOwner(_ context.Context, ownerID, reason string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for id, cow := range s.cows {
		if cow.OwnerID != ownerID || !cow.IsActive {
			continue
		}
		cow.Archive(reason, at)
		s.cows[id] = cow
		changed++
	}
	return changed, nil
}

// =============================================================================
// MEMBERS & CUSTOMERS
// =============================================================================

func (s *Store) InsertMember(_ context.Context, member models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.members[member.MemberID]; exists {
		return models.ErrDuplicateID
	}
	s.members[member.MemberID] = member
	return nil
}

func (s *Store) GetMember(_ context.Context, memberID string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.members[memberID]
	if !ok {
		return nil, &models.NotFoundError{Kind: "member", ID: memberID}
	}
	return &member, nil
}

func (s *Store) ListMembers(_ context.Context, activeOnly bool) ([]models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Member
	for _, m := range s.members {
		if activeOnly && !m.IsActive {
			continue
		}
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MemberID < result[j].MemberID })
	return result, nil
}

func (s *Store) UpdateMember(_ context.Context, member models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[member.MemberID]; !ok {
		return &models.NotFoundError{Kind: "member", ID: member.MemberID}
	}
	s.members[member.MemberID] = member
	return nil
}

func (s *Store) InsertCustomer(_ context.Context, customer models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.customers[customer.CustomerID]; exists {
		return models.ErrDuplicateID
	}
	s.customers[customer.CustomerID] = customer
	return nil
}

func (s *Store) FindCustomerByName(_ context.Context, name string) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if strings.EqualFold(c.Name, name) {
			found := c
			return &found, nil
		}
	}
	return nil, &models.NotFoundError{Kind: "customer", ID: name}
}

func (s *Store) ListCustomers(_ context.Context) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CustomerID < result[j].CustomerID })
	return result, nil
}

// =============================================================================
// FACTS
// =============================================================================

func (s *Store) InsertMilkIn(_ context.Context, entry models.MilkInEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.milkIn[entry.EntryID]; exists {
		return models.ErrDuplicateID
	}
	s.milkIn[entry.EntryID] = entry
	return nil
}

func (s *Store) GetMilkIn(_ context.Context, entryID string) (*models.MilkInEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.milkIn[entryID]
	if !ok {
		return nil, &models.NotFoundError{Kind: "milk-in entry", ID: entryID}
	}
	return &entry, nil
}

func (s *Store) ListMilkIn(_ context.Context, filter repository.MilkInFilter) ([]models.MilkInEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.MilkInEntry
	for _, e := range s.milkIn {
		if filter.CowID != "" && e.CowID != filter.CowID {
			continue
		}
		if !filter.Range.Includes(e.Date) {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		return lessByDate(result[i].Date, result[j].Date, result[i].EntryID, result[j].EntryID)
	})
	return result, nil
}

func (s *Store) DeleteMilkIn(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.milkIn[entryID]; !ok {
		return &models.NotFoundError{Kind: "milk-in entry", ID: entryID}
	}
	delete(s.milkIn, entryID)
	return nil
}

func (s *Store) InsertMilkOut(_ context.Context, entry models.MilkOutEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.milkOut[entry.SaleID]; exists {
		return models.ErrDuplicateID
	}
	s.milkOut[entry.SaleID] = entry
	return nil
}

func (s *Store) GetMilkOut(_ context.Context, saleID string) (*models.MilkOutEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.milkOut[saleID]
	if !ok {
		return nil, &models.NotFoundError{Kind: "sale", ID: saleID}
	}
	return &entry, nil
}

func (s *Store) ListMilkOut(_ context.Context, r repository.DateRange) ([]models.MilkOutEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.MilkOutEntry
	for _, e := range s.milkOut {
		if r.Includes(e.Date) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return lessByDate(result[i].Date, result[j].Date, result[i].SaleID, result[j].SaleID)
	})
	return result, nil
}

func (s *Store) DeleteMilkOut(_ context.Context, saleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.milkOut[saleID]; !ok {
		return &models.NotFoundError{Kind: "sale", ID: saleID}
	}
	delete(s.milkOut, saleID)
	return nil
}

func (s *Store) InsertSpoilt(_ context.Context, entry models.MilkSpoiltEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.spoilt[entry.SpoiltID]; exists {
		return models.ErrDuplicateID
	}
	s.spoilt[entry.SpoiltID] = entry
	return nil
}

func (s *Store) GetSpoilt(_ context.Context, spoiltID string) (*models.MilkSpoiltEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.spoilt[spoiltID]
	if !ok {
		return nil, &models.NotFoundError{Kind: "spoilage entry", ID: spoiltID}
	}
	return &entry, nil
}

func (s *Store) ListSpoilt(_ context.Context, r repository.DateRange) ([]models.MilkSpoiltEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.MilkSpoiltEntry
	for _, e := range s.spoilt {
		if r.Includes(e.Date) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return lessByDate(result[i].Date, result[j].Date, result[i].SpoiltID, result[j].SpoiltID)
	})
	return result, nil
}

func (s *Store) DeleteSpoilt(_ context.Context, spoiltID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.spoilt[spoiltID]; !ok {
		return &models.NotFoundError{Kind: "spoilage entry", ID: spoiltID}
	}
	delete(s.spoilt, spoiltID)
	return nil
}

// =============================================================================
// INVENTORY SNAPSHOT & REPORTS
// =============================================================================

func (s *Store) GetSnapshot(_ context.Context) (*models.InventorySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, &models.NotFoundError{Kind: "inventory snapshot", ID: "current"}
	}
	snap := *s.snapshot
	return &snap, nil
}

func (s *Store) SaveSnapshot(_ context.Context, snapshot models.InventorySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &snapshot
	return nil
}

func (s *Store) ApplyDelta(_ context.Context, delta float64, at time.Time) (*models.InventorySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return nil, &models.NotFoundError{Kind: "inventory snapshot", ID: "current"}
	}
	s.snapshot.CurrentStock = math.Max(0, s.snapshot.CurrentStock+delta)
	s.snapshot.LastUpdated = at
	snap := *s.snapshot
	return &snap, nil
}

func (s *Store) SaveDailyReport(_ context.Context, report models.DailyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.Date] = report
	return nil
}

func (s *Store) GetDailyReport(_ context.Context, date time.Time) (*models.DailyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[date]
	if !ok {
		return nil, &models.NotFoundError{Kind: "daily report", ID: date.Format("2006-01-02")}
	}
	return &report, nil
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func lessByDate(a, b time.Time, idA, idB string) bool {
	if a.Equal(b) {
		return idA < idB
	}
	return a.Before(b)
}
