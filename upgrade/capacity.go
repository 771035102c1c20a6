package upgrade

import (
	"context"
	"errors"

	"github.com/warp/upgrade-advisor/generic"
)

// =============================================================================
// CAPACITY RESOLVER - Sellable rooms net of out-of-service blocks
// =============================================================================

// EffectiveCapacity is total minus the rooms of every block covering date,
// floored at zero. Callers pass blocks for a single category.
func EffectiveCapacity(total int, date generic.Date, blocks []generic.OutOfServiceBlock) int {
	out := 0
	for _, b := range blocks {
		if b.Covers(date) {
			out += b.Rooms
		}
	}
	return max(0, total-out)
}

// CapacityFunc returns the effective capacity on a date.
type CapacityFunc func(ctx context.Context, date generic.Date) (int, error)

// FixedCapacity ignores the date. Useful when capacity is given directly.
func FixedCapacity(rooms int) CapacityFunc {
	return func(context.Context, generic.Date) (int, error) { return rooms, nil }
}

// CapacityStore is the subset of generic.Store the resolver reads.
type CapacityStore interface {
	GetCategory(ctx context.Context, hotelID generic.HotelID, id generic.CategoryID) (generic.RoomCategory, error)
	ListBlocks(ctx context.Context, hotelID generic.HotelID, overlapping generic.Period) ([]generic.OutOfServiceBlock, error)
}

// CapacityResolver looks up live capacity in the store.
type CapacityResolver struct {
	Store CapacityStore
}

// Resolve returns effective capacity for a category on a date.
// An unknown category resolves to 0.
func (r *CapacityResolver) Resolve(ctx context.Context, hotelID generic.HotelID, categoryID generic.CategoryID, date generic.Date) (int, error) {
	category, err := r.Store.GetCategory(ctx, hotelID, categoryID)
	if errors.Is(err, generic.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	blocks, err := r.Store.ListBlocks(ctx, hotelID, generic.Period{Start: date, End: date})
	if err != nil {
		return 0, err
	}
	return EffectiveCapacity(category.Rooms, date, forCategory(blocks, categoryID)), nil
}

// ForPeriod loads the category and its blocks once and answers per date from
// memory. Dates outside the period fall back to Resolve.
func (r *CapacityResolver) ForPeriod(ctx context.Context, hotelID generic.HotelID, categoryID generic.CategoryID, period generic.Period) (CapacityFunc, error) {
	category, err := r.Store.GetCategory(ctx, hotelID, categoryID)
	if errors.Is(err, generic.ErrNotFound) {
		return FixedCapacity(0), nil
	}
	if err != nil {
		return nil, err
	}

	blocks, err := r.Store.ListBlocks(ctx, hotelID, period)
	if err != nil {
		return nil, err
	}
	blocks = forCategory(blocks, categoryID)

	return func(ctx context.Context, date generic.Date) (int, error) {
		if !period.Contains(date) {
			return r.Resolve(ctx, hotelID, categoryID, date)
		}
		return EffectiveCapacity(category.Rooms, date, blocks), nil
	}, nil
}

func forCategory(blocks []generic.OutOfServiceBlock, categoryID generic.CategoryID) []generic.OutOfServiceBlock {
	var out []generic.OutOfServiceBlock
	for _, b := range blocks {
		if b.CategoryID == categoryID {
			out = append(out, b)
		}
	}
	return out
}

// OutOfService sums the rooms blocked for a category on a date.
func OutOfService(date generic.Date, blocks []generic.OutOfServiceBlock, categoryID generic.CategoryID) int {
	n := 0
	for _, b := range forCategory(blocks, categoryID) {
		if b.Covers(date) {
			n += b.Rooms
		}
	}
	return n
}
