// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/upgrade-advisor/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	hotels     map[generic.HotelID]generic.Hotel
	categories map[categoryKey]generic.RoomCategory
	blocks     map[generic.HotelID][]generic.OutOfServiceBlock
	production map[generic.SeriesKey]map[generic.Date]generic.ProductionRecord
	pickup     map[generic.SeriesKey]map[generic.Date]generic.PickupRecord
}

type categoryKey struct {
	HotelID    generic.HotelID
	CategoryID generic.CategoryID
}

func NewMemory() *Memory {
	return &Memory{
		hotels:     make(map[generic.HotelID]generic.Hotel),
		categories: make(map[categoryKey]generic.RoomCategory),
		blocks:     make(map[generic.HotelID][]generic.OutOfServiceBlock),
		production: make(map[generic.SeriesKey]map[generic.Date]generic.ProductionRecord),
		pickup:     make(map[generic.SeriesKey]map[generic.Date]generic.PickupRecord),
	}
}

// =============================================================================
// INVENTORY
// =============================================================================

func (m *Memory) SaveHotel(_ context.Context, h generic.Hotel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotels[h.ID] = h
	return nil
}

func (m *Memory) GetHotel(_ context.Context, id generic.HotelID) (generic.Hotel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.hotels[id]
	if !ok {
		return generic.Hotel{}, generic.ErrNotFound
	}
	return h, nil
}

func (m *Memory) ListHotels(_ context.Context) ([]generic.Hotel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]generic.Hotel, 0, len(m.hotels))
	for _, h := range m.hotels {
		result = append(result, h)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) DeleteHotel(_ context.Context, id generic.HotelID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hotels[id]; !ok {
		return generic.ErrNotFound
	}
	delete(m.hotels, id)
	delete(m.blocks, id)
	for k := range m.categories {
		if k.HotelID == id {
			delete(m.categories, k)
		}
	}
	for k := range m.production {
		if k.HotelID == id {
			delete(m.production, k)
		}
	}
	for k := range m.pickup {
		if k.HotelID == id {
			delete(m.pickup, k)
		}
	}
	return nil
}

func (m *Memory) SaveCategory(_ context.Context, c generic.RoomCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hotels[c.HotelID]; !ok {
		return generic.ErrNotFound
	}
	m.categories[categoryKey{HotelID: c.HotelID, CategoryID: c.ID}] = c
	return nil
}

func (m *Memory) GetCategory(_ context.Context, hotelID generic.HotelID, id generic.CategoryID) (generic.RoomCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[categoryKey{HotelID: hotelID, CategoryID: id}]
	if !ok {
		return generic.RoomCategory{}, generic.ErrNotFound
	}
	return c, nil
}

func (m *Memory) ListCategories(_ context.Context, hotelID generic.HotelID) ([]generic.RoomCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []generic.RoomCategory
	for k, c := range m.categories {
		if k.HotelID == hotelID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// =============================================================================
// OUT OF SERVICE
// =============================================================================

func (m *Memory) AddBlock(_ context.Context, b generic.OutOfServiceBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks[b.HotelID] = append(m.blocks[b.HotelID], b)
	return nil
}

func (m *Memory) GetBlock(_ context.Context, hotelID generic.HotelID, id generic.BlockID) (generic.OutOfServiceBlock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.blocks[hotelID] {
		if b.ID == id {
			return b, nil
		}
	}
	return generic.OutOfServiceBlock{}, generic.ErrNotFound
}

func (m *Memory) SetBlockEnd(_ context.Context, hotelID generic.HotelID, id generic.BlockID, to generic.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	blocks := m.blocks[hotelID]
	for i := range blocks {
		if blocks[i].ID == id {
			blocks[i].To = to
			return nil
		}
	}
	return generic.ErrNotFound
}

func (m *Memory) ListBlocks(_ context.Context, hotelID generic.HotelID, overlapping generic.Period) ([]generic.OutOfServiceBlock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []generic.OutOfServiceBlock
	for _, b := range m.blocks[hotelID] {
		if overlapping.Overlaps(generic.Period{Start: b.From, End: b.To}) {
			result = append(result, b)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].From.Before(result[j].From) })
	return result, nil
}

// =============================================================================
// SERIES
// =============================================================================

func (m *Memory) UpsertProduction(_ context.Context, key generic.SeriesKey, records []generic.ProductionRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	series, ok := m.production[key]
	if !ok {
		series = make(map[generic.Date]generic.ProductionRecord)
		m.production[key] = series
	}
	for _, r := range records {
		series[r.Date] = r
	}
	return len(records), nil
}

func (m *Memory) LoadProduction(_ context.Context, key generic.SeriesKey, period generic.Period) ([]generic.ProductionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []generic.ProductionRecord
	for d, r := range m.production[key] {
		if period.Contains(d) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *Memory) UpsertPickup(_ context.Context, key generic.SeriesKey, records []generic.PickupRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	series, ok := m.pickup[key]
	if !ok {
		series = make(map[generic.Date]generic.PickupRecord)
		m.pickup[key] = series
	}
	for _, r := range records {
		series[r.StayDate] = r
	}
	return len(records), nil
}

func (m *Memory) LoadPickup(_ context.Context, key generic.SeriesKey, period generic.Period) ([]generic.PickupRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []generic.PickupRecord
	for d, r := range m.pickup[key] {
		if period.Contains(d) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StayDate.Before(result[j].StayDate) })
	return result, nil
}

var _ generic.Store = (*Memory)(nil)
