// Package identifier allocates the human-readable external IDs (CW01, ETR001, ...).
//
// Each collection has a counter advanced atomically by the store. The counter is floored at
// the highest numeric suffix already stored, so records written before the counter existed
// (or imported by hand) are never shadowed. IDs are not reused after a delete.
package identifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mamadbah2/dairycoop/internal/repository"
)

// Scheme describes the ID format of one collection.
type Scheme struct {
	Collection repository.Collection
	Prefix     string
	Width      int
}

var (
	CowScheme      = Scheme{Collection: repository.Cows, Prefix: "CW", Width: 2}
	SaleScheme     = Scheme{Collection: repository.MilkOut, Prefix: "SL", Width: 2}
	CustomerScheme = Scheme{Collection: repository.Customers, Prefix: "CST", Width: 3}
	MilkInScheme   = Scheme{Collection: repository.MilkIn, Prefix: "ETR", Width: 3}
	SpoiltScheme   = Scheme{Collection: repository.MilkSpoilt, Prefix: "SPL", Width: 3}
	MemberScheme   = Scheme{Collection: repository.Members, Prefix: "OON", Width: 2}
)

// Allocator hands out the next free ID of a scheme.
type Allocator struct {
	src repository.IDSource
}

// NewAllocator builds an allocator over src.
func NewAllocator(src repository.IDSource) *Allocator {
	return &Allocator{src: src}
}

// Next returns the next ID for the scheme.
func (a *Allocator) Next(ctx context.Context, scheme Scheme) (string, error) {
	existing, err := a.src.ListIDs(ctx, scheme.Collection)
	if err != nil {
		return "", fmt.Errorf("list %s ids: %w", scheme.Collection, err)
	}
	seq, err := a.src.NextSequence(ctx, scheme.Collection, MaxSuffix(existing, scheme.Prefix))
	if err != nil {
		return "", fmt.Errorf("next %s sequence: %w", scheme.Collection, err)
	}
	return Format(scheme.Prefix, scheme.Width, seq), nil
}

// NextID returns prefix + (max numeric suffix + 1), zero-padded to width.
func NextID(existing []string, prefix string, width int) string {
	return Format(prefix, width, MaxSuffix(existing, prefix)+1)
}

// MaxSuffix is the highest numeric suffix among IDs carrying prefix, 0 when there is none.
// IDs without the prefix or with a non-numeric suffix are ignored.
func MaxSuffix(existing []string, prefix string) int {
	highest := 0
	for _, id := range existing {
		suffix, ok := strings.CutPrefix(id, prefix)
		if !ok || suffix == "" || strings.ContainsAny(suffix, "+-") {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest
}

// Format zero-pads n to width. Numbers wider than width are kept whole.
func Format(prefix string, width, n int) string {
	return fmt.Sprintf("%s%0*d", prefix, width, n)
}
