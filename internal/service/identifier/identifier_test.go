package identifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/repository"
	"github.com/mamadbah2/dairycoop/internal/repository/memory"
)

func TestNextID(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		prefix   string
		width    int
		want     string
	}{
		{"empty collection starts at one", nil, "CW", 2, "CW01"},
		{"max suffix plus one", []string{"CW01", "CW02", "CW10"}, "CW", 2, "CW11"},
		{"gaps are not reused", []string{"ETR001", "ETR007"}, "ETR", 3, "ETR008"},
		{"non numeric suffixes ignored", []string{"CW01", "CWX", "CW-5", "CW"}, "CW", 2, "CW02"},
		{"other prefixes ignored", []string{"SL05", "SPL009"}, "SL", 2, "SL06"},
		{"grows past width", []string{"CW99"}, "CW", 2, "CW100"},
		{"wider existing ids still count", []string{"OON01", "OON123"}, "OON", 2, "OON124"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextID(tt.existing, tt.prefix, tt.width))
		})
	}
}

func TestAllocatorNext(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.InsertCustomer(ctx, models.Customer{CustomerID: "CST001", Name: "Jane"}))
	require.NoError(t, store.InsertCustomer(ctx, models.Customer{CustomerID: "CST004", Name: "Otieno"}))

	alloc := NewAllocator(store)

	id, err := alloc.Next(ctx, CustomerScheme)
	require.NoError(t, err)
	assert.Equal(t, "CST005", id)

	// Not yet inserted: the counter still moves on.
	id, err = alloc.Next(ctx, CustomerScheme)
	require.NoError(t, err)
	assert.Equal(t, "CST006", id)

	id, err = alloc.Next(ctx, MilkInScheme)
	require.NoError(t, err)
	assert.Equal(t, "ETR001", id)
}

func TestAllocatorDoesNotReuseDeletedIDs(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	alloc := NewAllocator(store)

	id, err := alloc.Next(ctx, MilkInScheme)
	require.NoError(t, err)
	require.NoError(t, store.InsertMilkIn(ctx, models.MilkInEntry{EntryID: id, OwnerID: "OON01", Liters: 1}))
	require.NoError(t, store.DeleteMilkIn(ctx, id))

	next, err := alloc.Next(ctx, MilkInScheme)
	require.NoError(t, err)
	assert.Equal(t, "ETR002", next)
}

func TestAllocatorConcurrentCallsAreDistinct(t *testing.T) {
	ctx := context.Background()
	alloc := NewAllocator(memory.New())

	const workers = 50
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := alloc.Next(ctx, CowScheme)
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, workers)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
	assert.True(t, seen["CW50"])
}

type failingSource struct{}

func (failingSource) ListIDs(context.Context, repository.Collection) ([]string, error) {
	return nil, errors.New("connection reset")
}

func (failingSource) NextSequence(context.Context, repository.Collection, int) (int, error) {
	return 0, errors.New("unreachable")
}

func TestAllocatorPropagatesStoreErrors(t *testing.T) {
	_, err := NewAllocator(failingSource{}).Next(context.Background(), CowScheme)
	assert.ErrorContains(t, err, "connection reset")
}
