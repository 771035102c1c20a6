/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Populates the store with a realistic property so the UI can be tried
	without real BI exports.

AVAILABLE SCENARIOS:

	cala-cuncheddi: The 85-room preset hotel with its eight categories, no data
	demo-season:    The preset plus last season's production, recent
	                production, 45 days on the books with pickup, and one
	                out-of-service block

HOW SCENARIOS WORK:
 1. Delete the preset hotel if present (other hotels are untouched)
 2. Create hotel and categories via factory
 3. Optionally generate series and blocks

Generated numbers are a pure function of the category and the date, so a
scenario loaded twice on the same day produces the same recommendations.

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "demo-season"}

SEE ALSO:
  - factory/presets.go: CalaCuncheddiJSON
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/upgrade-advisor/factory"
	"github.com/warp/upgrade-advisor/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

const (
	ScenarioPreset = "cala-cuncheddi"
	ScenarioDemo   = "demo-season"

	otbHorizon   = 45
	recentWindow = 30
)

var scenarios = []ScenarioDTO{
	{
		ID:          ScenarioPreset,
		Name:        "Cala Cuncheddi",
		Description: "Five-star seasonal hotel in Olbia: 85 rooms in eight categories, no data loaded",
	},
	{
		ID:          ScenarioDemo,
		Name:        "Demo Season",
		Description: "Cala Cuncheddi with last season's history, 45 days on the books and a room out of service",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the last scenario loaded by this process, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario replaces the preset hotel with the requested scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case ScenarioPreset:
		err = h.loadPreset(r.Context())
	case ScenarioDemo:
		err = h.loadDemoSeason(r.Context())
	default:
		writeError(w, http.StatusNotFound, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}
	if err != nil {
		h.fail(w, "Failed to load scenario", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	h.Log.Info("scenario loaded", "scenario", req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"hotel_id": factory.CalaCuncheddiID,
	})
}

// =============================================================================
// LOADERS
// =============================================================================

func (h *Handler) loadPreset(ctx context.Context) error {
	_, err := h.resetPreset(ctx)
	return err
}

func (h *Handler) resetPreset(ctx context.Context) ([]generic.RoomCategory, error) {
	hotel, categories, err := factory.ParseHotel(factory.CalaCuncheddiJSON())
	if err != nil {
		return nil, err
	}
	if err := h.Store.DeleteHotel(ctx, hotel.ID); err != nil && !errors.Is(err, generic.ErrNotFound) {
		return nil, err
	}
	if err := h.saveHotel(ctx, hotel, categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (h *Handler) loadDemoSeason(ctx context.Context) error {
	categories, err := h.resetPreset(ctx)
	if err != nil {
		return err
	}

	today := h.Advisor.Today()
	hotelKey := generic.SeriesKey{HotelID: factory.CalaCuncheddiID}
	hotelTotals := make(map[generic.Date]*generic.ProductionRecord)

	for seed, c := range categories {
		key := generic.SeriesKey{HotelID: c.HotelID, CategoryID: c.ID}

		production := demoProduction(c, seed, today)
		if _, err := h.Store.UpsertProduction(ctx, key, production); err != nil {
			return err
		}
		for _, p := range production {
			total, ok := hotelTotals[p.Date]
			if !ok {
				total = &generic.ProductionRecord{Date: p.Date, Weekday: p.Weekday, Fields: generic.FieldRoomNights | generic.FieldVsSamePeriodRN}
				hotelTotals[p.Date] = total
			}
			total.RoomNights += p.RoomNights
			total.VsSamePeriodRN += p.VsSamePeriodRN
		}

		if _, err := h.Store.UpsertPickup(ctx, key, demoPickup(c, seed, today)); err != nil {
			return err
		}
	}

	totals := make([]generic.ProductionRecord, 0, len(hotelTotals))
	for _, t := range hotelTotals {
		totals = append(totals, *t)
	}
	if _, err := h.Store.UpsertProduction(ctx, hotelKey, totals); err != nil {
		return err
	}

	// Two sea-view rooms under maintenance for the coming week.
	_, err = h.Advisor.DeclareOutOfService(ctx, generic.OutOfServiceBlock{
		HotelID:    factory.CalaCuncheddiID,
		CategoryID: generic.CategoryID(factory.Slug("Classic Sea View")),
		From:       today,
		To:         today.AddDays(6),
		Rooms:      2,
		Reason:     "bathroom maintenance",
	})
	return err
}

// =============================================================================
// GENERATED SERIES
// =============================================================================

// seasonShare is the fraction of rooms sold on d: 45% at the edges of the
// June-September season, 95% mid-August, 35% off season.
func seasonShare(d generic.Date) float64 {
	start := generic.NewDate(d.Year, time.June, 1)
	end := generic.NewDate(d.Year, time.September, 30)
	if d.Before(start) || d.After(end) {
		return 0.35
	}
	n := generic.DaysBetween(start, end)
	i := generic.DaysBetween(start, d)
	return 0.45 + 0.5*math.Sin(math.Pi*float64(i)/float64(n))
}

// jitter is a deterministic offset in [-2, 2].
func jitter(seed int, d generic.Date) int {
	v := (seed*31 + d.Time().YearDay()*17 + d.Year) % 5
	return v - 2
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func demoProduction(c generic.RoomCategory, seed int, today generic.Date) []generic.ProductionRecord {
	var days []generic.Date
	lastSeason := generic.Period{
		Start: generic.NewDate(today.Year-1, time.June, 1),
		End:   generic.NewDate(today.Year-1, time.September, 30),
	}
	days = append(days, lastSeason.Days()...)
	days = append(days, generic.Period{Start: today.AddDays(-recentWindow), End: today.AddDays(-1)}.Days()...)

	records := make([]generic.ProductionRecord, 0, len(days))
	for _, d := range days {
		share := seasonShare(d)
		rn := clamp(int(math.Round(float64(c.Rooms)*share))+jitter(seed, d), 0, c.Rooms)
		adr := c.AverageRate.Mul(decimal.NewFromFloat(0.9 + 0.2*share)).Round(2)

		r := generic.ProductionRecord{
			Date:           d,
			Weekday:        d.Weekday().String()[:3],
			RoomNights:     rn,
			ADR:            adr,
			RoomRevenue:    adr.Mul(decimal.NewFromInt(int64(rn))),
			VsSamePeriodRN: jitter(seed+1, d),
			Fields: generic.FieldRoomNights | generic.FieldWeekday | generic.FieldOccupancy |
				generic.FieldADR | generic.FieldRevenue | generic.FieldVsSamePeriodRN,
		}
		if c.Rooms > 0 {
			r.OccupancyPct = decimal.NewFromInt(int64(rn * 100)).Div(decimal.NewFromInt(int64(c.Rooms))).Round(2)
		}
		records = append(records, r)
	}
	return records
}

// demoPickup fills the books less the further out the stay date is. The
// entry-level category is overbooked by one room on the third day.
func demoPickup(c generic.RoomCategory, seed int, today generic.Date) []generic.PickupRecord {
	records := make([]generic.PickupRecord, 0, otbHorizon)
	for i := 0; i < otbHorizon; i++ {
		d := today.AddDays(i)
		fill := seasonShare(d) * (1 - float64(i)/(2*otbHorizon))
		rn := clamp(int(math.Round(float64(c.Rooms)*fill))+jitter(seed, d), 0, c.Rooms)
		if c.EntryLevel && i == 2 {
			rn = c.Rooms + 1
		}

		lead := (otbHorizon - i) / 10
		records = append(records, generic.PickupRecord{
			StayDate:            d,
			RoomNightsOTB:       rn,
			Pickup1Day:          max(0, lead/3+jitter(seed+2, d)),
			Pickup2Day:          max(0, lead/2+jitter(seed+3, d)),
			Pickup3Day:          max(0, lead+jitter(seed+4, d)),
			Pickup7Day:          max(0, lead*2+jitter(seed+5, d)),
			Pickup7DayPriorYear: max(0, lead*2+jitter(seed+6, d)),
		})
	}
	return records
}
