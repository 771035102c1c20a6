package upgrade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/upgrade-advisor/generic"
	"github.com/warp/upgrade-advisor/logger"
	"github.com/warp/upgrade-advisor/metrics"
)

// =============================================================================
// ADVISOR - Loads inputs from the store and runs the engine
// =============================================================================

// Advisor is the service the API talks to. It never touches SQL; everything
// goes through generic.Store.
type Advisor struct {
	Store       generic.Store
	Engine      Engine
	Log         logger.Logger
	Metrics     *metrics.Metrics
	TrendWindow int
	Today       func() generic.Date
}

func NewAdvisor(store generic.Store, log logger.Logger, m *metrics.Metrics) *Advisor {
	if log == nil {
		log = logger.Nop()
	}
	return &Advisor{
		Store:       store,
		Log:         log,
		Metrics:     m,
		TrendWindow: DefaultTrendWindow,
		Today:       generic.Today,
	}
}

// Recommendations is a run for one category with the context it was computed in.
type Recommendations struct {
	Hotel    generic.Hotel
	Category generic.RoomCategory
	Params   Params
	Period   generic.Period
	History  []generic.ProductionRecord
	OTB      []generic.PickupRecord
	*Result
}

// Recommend decides every on-the-books date of the category within period.
//
// History and OTB are read from the category's own series, falling back to
// the hotel-wide series when the category has none.
func (a *Advisor) Recommend(ctx context.Context, hotelID generic.HotelID, categoryID generic.CategoryID, period generic.Period) (*Recommendations, error) {
	started := time.Now()

	hotel, err := a.Store.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, fmt.Errorf("hotel %s: %w", hotelID, err)
	}
	category, err := a.Store.GetCategory(ctx, hotelID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", categoryID, err)
	}

	key := generic.SeriesKey{HotelID: hotelID, CategoryID: categoryID}
	production, err := a.loadProduction(ctx, key, generic.AllTime)
	if err != nil {
		return nil, err
	}
	otb, err := a.loadPickup(ctx, key, period)
	if err != nil {
		return nil, err
	}

	resolver := &CapacityResolver{Store: a.Store}
	capacity, err := resolver.ForPeriod(ctx, hotelID, categoryID, period)
	if err != nil {
		a.Metrics.Fail("capacity")
		return nil, err
	}

	req := Request{
		History:  HistoryFrom(production),
		OTB:      make(map[generic.Date]int, len(otb)),
		Pickup:   make(map[generic.Date]generic.PickupRecord, len(otb)),
		Params:   ParamsFor(category),
		Capacity: capacity,
	}
	for _, p := range otb {
		req.OTB[p.StayDate] = p.RoomNightsOTB
		req.Pickup[p.StayDate] = p
	}

	result, err := a.Engine.Run(ctx, req)
	if err != nil {
		a.Metrics.Fail("recommend")
		return nil, err
	}

	for _, s := range result.Skipped {
		a.Log.Warn("stay date skipped", "hotel", hotelID, "category", categoryID, "date", s.Date.String(), "error", s.Err)
	}
	yes, no := result.Counts()
	a.Metrics.ObserveRun(started, yes, no, len(result.Skipped))
	a.Log.Info("recommendations computed",
		"hotel", hotelID,
		"category", categoryID,
		"period", period.String(),
		"history_days", result.Distribution.Observations(),
		"dates", len(result.Decisions),
		"upgrade_yes", yes,
		"skipped", len(result.Skipped),
	)

	return &Recommendations{
		Hotel:    hotel,
		Category: category,
		Params:   req.Params,
		Period:   period,
		History:  production,
		OTB:      otb,
		Result:   result,
	}, nil
}

// Trend analyzes the production series of key over the window
// (the advisor's TrendWindow when window <= 0).
func (a *Advisor) Trend(ctx context.Context, key generic.SeriesKey, window int) (*Trend, error) {
	if window <= 0 {
		window = a.TrendWindow
	}
	records, err := a.loadProduction(ctx, key, generic.AllTime)
	if err != nil {
		return nil, err
	}
	return AnalyzeTrend(records, window, a.Today())
}

func (a *Advisor) loadProduction(ctx context.Context, key generic.SeriesKey, period generic.Period) ([]generic.ProductionRecord, error) {
	records, err := a.Store.LoadProduction(ctx, key, period)
	if err != nil {
		a.Log.Error("load production failed", "series", key.String(), "error", err)
		return nil, err
	}
	if len(records) == 0 && !key.IsHotelWide() {
		return a.loadProduction(ctx, key.HotelWide(), period)
	}
	return records, nil
}

func (a *Advisor) loadPickup(ctx context.Context, key generic.SeriesKey, period generic.Period) ([]generic.PickupRecord, error) {
	records, err := a.Store.LoadPickup(ctx, key, period)
	if err != nil {
		a.Log.Error("load pickup failed", "series", key.String(), "error", err)
		return nil, err
	}
	if len(records) == 0 && !key.IsHotelWide() {
		return a.loadPickup(ctx, key.HotelWide(), period)
	}
	return records, nil
}

// =============================================================================
// INVENTORY
// =============================================================================

// InventoryLine is the status of one category on a date.
type InventoryLine struct {
	Category     generic.RoomCategory
	Total        int
	OutOfService int
	Effective    int
}

// Inventory reports every category of the hotel on date.
func (a *Advisor) Inventory(ctx context.Context, hotelID generic.HotelID, date generic.Date) ([]InventoryLine, error) {
	if _, err := a.Store.GetHotel(ctx, hotelID); err != nil {
		return nil, fmt.Errorf("hotel %s: %w", hotelID, err)
	}
	categories, err := a.Store.ListCategories(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	blocks, err := a.Store.ListBlocks(ctx, hotelID, generic.Period{Start: date, End: date})
	if err != nil {
		return nil, err
	}

	lines := make([]InventoryLine, 0, len(categories))
	for _, c := range categories {
		lines = append(lines, InventoryLine{
			Category:     c,
			Total:        c.Rooms,
			OutOfService: OutOfService(date, blocks, c.ID),
			Effective:    EffectiveCapacity(c.Rooms, date, forCategory(blocks, c.ID)),
		})
	}
	return lines, nil
}

// =============================================================================
// OUT OF SERVICE
// =============================================================================

// DeclareOutOfService validates and stores a new block, assigning its ID.
func (a *Advisor) DeclareOutOfService(ctx context.Context, b generic.OutOfServiceBlock) (generic.OutOfServiceBlock, error) {
	if b.Rooms <= 0 {
		return b, fmt.Errorf("%w: rooms must be positive", generic.ErrInvalidInput)
	}
	if b.From.IsZero() || b.To.IsZero() || b.To.Before(b.From) {
		return b, fmt.Errorf("%w: out-of-service range %s is invalid", generic.ErrInvalidInput, generic.Period{Start: b.From, End: b.To})
	}
	if _, err := a.Store.GetCategory(ctx, b.HotelID, b.CategoryID); err != nil {
		return b, fmt.Errorf("category %s: %w", b.CategoryID, err)
	}

	if b.ID == "" {
		b.ID = generic.BlockID(uuid.NewString())
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	if err := a.Store.AddBlock(ctx, b); err != nil {
		a.Log.Error("add out-of-service block failed", "hotel", b.HotelID, "category", b.CategoryID, "error", err)
		return b, err
	}
	a.Log.Info("out-of-service block declared", "hotel", b.HotelID, "category", b.CategoryID, "block", b.ID, "rooms", b.Rooms)
	return b, nil
}

// EndOutOfService ends a block as of yesterday. Blocks that already ended
// before today are returned unchanged. A block that has not started yet
// cannot end before its first day and is InvalidInput.
func (a *Advisor) EndOutOfService(ctx context.Context, hotelID generic.HotelID, id generic.BlockID) (generic.OutOfServiceBlock, error) {
	b, err := a.Store.GetBlock(ctx, hotelID, id)
	if err != nil {
		return b, fmt.Errorf("block %s: %w", id, err)
	}

	today := a.Today()
	if b.To.Before(today) {
		return b, nil
	}
	if b.From.After(today.AddDays(-1)) {
		return b, fmt.Errorf("%w: block %s starts on %s", generic.ErrInvalidInput, id, b.From)
	}
	b.To = today.AddDays(-1)
	if err := a.Store.SetBlockEnd(ctx, hotelID, id, b.To); err != nil {
		a.Log.Error("end out-of-service block failed", "hotel", hotelID, "block", id, "error", err)
		return b, err
	}
	a.Log.Info("out-of-service block ended", "hotel", hotelID, "block", id, "to", b.To.String())
	return b, nil
}

// ActiveBlocks lists blocks that have not ended before today.
func (a *Advisor) ActiveBlocks(ctx context.Context, hotelID generic.HotelID) ([]generic.OutOfServiceBlock, error) {
	return a.Store.ListBlocks(ctx, hotelID, generic.Period{Start: a.Today()})
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// SaveCategory validates a category before storing it. MinMargin must lie
// in (0, 1]; callers that accept an unset margin apply
// generic.DefaultMinMargin first.
func (a *Advisor) SaveCategory(ctx context.Context, c generic.RoomCategory) (generic.RoomCategory, error) {
	switch {
	case c.Rooms < 0:
		return c, fmt.Errorf("%w: rooms must not be negative", generic.ErrInvalidInput)
	case c.AverageRate.IsNegative():
		return c, fmt.Errorf("%w: average rate must not be negative", generic.ErrInvalidInput)
	case !c.MinMargin.IsPositive() || c.MinMargin.GreaterThan(decimal.NewFromInt(1)):
		return c, fmt.Errorf("%w: min margin %s must be in (0, 1]", generic.ErrInvalidInput, c.MinMargin)
	case c.UpgradeTarget == c.ID && c.ID != "":
		return c, fmt.Errorf("%w: category cannot upgrade to itself", generic.ErrInvalidInput)
	}

	if err := a.Store.SaveCategory(ctx, c); err != nil {
		if !errors.Is(err, generic.ErrNotFound) {
			a.Log.Error("save category failed", "hotel", c.HotelID, "category", c.ID, "error", err)
		}
		return c, err
	}
	return c, nil
}
