/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupled from the
  generic and upgrade types so fields can be renamed without touching the
  engine.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator tags and are checked by
  decodeAndValidate before reaching the handlers. Hotel definitions reuse
  factory.HotelJSON and its tags.

MONEY:
  Rates, revenue and probabilities are decimal.Decimal and marshal as JSON
  strings ("300.00") so no precision is lost in the browser.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/hotel.go: HotelJSON / CategoryJSON
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/upgrade-advisor/generic"
	"github.com/warp/upgrade-advisor/importer"
	"github.com/warp/upgrade-advisor/upgrade"
)

// =============================================================================
// INVENTORY
// =============================================================================

type HotelDTO struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	TotalRooms int           `json:"total_rooms"`
	Address    string        `json:"address,omitempty"`
	City       string        `json:"city,omitempty"`
	Stars      int           `json:"stars,omitempty"`
	Seasonal   bool          `json:"seasonal"`
	Categories []CategoryDTO `json:"categories,omitempty"`
}

type CategoryDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Rooms       int             `json:"rooms"`
	EntryLevel  bool            `json:"entry_level"`
	AverageRate decimal.Decimal `json:"average_rate"`
	MinMargin   decimal.Decimal `json:"min_margin"`
	UpgradeTo   string          `json:"upgrade_to,omitempty"`
}

// CategoryRequest creates or updates one category. On PUT the ID comes
// from the URL.
type CategoryRequest struct {
	ID          string           `json:"id,omitempty" validate:"omitempty,max=64"`
	Name        string           `json:"name" validate:"required,max=256"`
	Rooms       int              `json:"rooms" validate:"gte=0"`
	EntryLevel  bool             `json:"entry_level"`
	AverageRate decimal.Decimal  `json:"average_rate"`
	MinMargin   *decimal.Decimal `json:"min_margin,omitempty"`
	UpgradeTo   string           `json:"upgrade_to,omitempty" validate:"max=64"`
}

type InventoryLineDTO struct {
	CategoryID   string          `json:"category_id"`
	Name         string          `json:"name"`
	Total        int             `json:"total"`
	OutOfService int             `json:"out_of_service"`
	Effective    int             `json:"effective"`
	EntryLevel   bool            `json:"entry_level"`
	AverageRate  decimal.Decimal `json:"average_rate"`
	UpgradeTo    string          `json:"upgrade_to,omitempty"`
}

type InventoryDTO struct {
	HotelID        string             `json:"hotel_id"`
	Date           string             `json:"date"`
	TotalRooms     int                `json:"total_rooms"`
	OutOfService   int                `json:"out_of_service"`
	EffectiveRooms int                `json:"effective_rooms"`
	Categories     []InventoryLineDTO `json:"categories"`
}

// =============================================================================
// OUT OF SERVICE
// =============================================================================

type BlockRequest struct {
	CategoryID string `json:"category_id" validate:"required,max=64"`
	From       string `json:"from" validate:"required,datetime=2006-01-02"`
	To         string `json:"to" validate:"required,datetime=2006-01-02"`
	Rooms      int    `json:"rooms" validate:"gt=0"`
	Reason     string `json:"reason,omitempty" validate:"max=512"`
}

type BlockDTO struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	Rooms      int    `json:"rooms"`
	Reason     string `json:"reason,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// =============================================================================
// IMPORTS
// =============================================================================

type RowErrorDTO struct {
	Row    int    `json:"row"`
	Column string `json:"column,omitempty"`
	Value  string `json:"value,omitempty"`
	Error  string `json:"error"`
}

type ImportDTO struct {
	BatchID    string              `json:"batch_id"`
	Report     importer.ReportType `json:"report"`
	Confidence int                 `json:"confidence"`
	Sheet      string              `json:"sheet"`
	HeaderRow  int                 `json:"header_row"`
	CategoryID string              `json:"category_id,omitempty"`
	Metadata   importer.Metadata   `json:"metadata"`
	Imported   int                 `json:"imported"`
	Saved      int                 `json:"saved"`
	Rejected   []RowErrorDTO       `json:"rejected"`
}

// =============================================================================
// RECOMMENDATIONS
// =============================================================================

type ParamsDTO struct {
	AverageRate decimal.Decimal `json:"average_rate"`
	MinMargin   decimal.Decimal `json:"min_margin"`
	EntryLevel  bool            `json:"entry_level"`
}

type DecisionDTO struct {
	Date             string          `json:"date"`
	RoomNights       int             `json:"room_nights"`
	Capacity         int             `json:"capacity"`
	Probability      decimal.Decimal `json:"probability"`
	ExpectedRevenue  decimal.Decimal `json:"expected_revenue"`
	DynamicThreshold decimal.Decimal `json:"dynamic_threshold"`
	PickupDelta      int             `json:"pickup_delta"`
	OccupancyPct     decimal.Decimal `json:"occupancy_pct"`
	Overbooking      bool            `json:"overbooking"`
	OverbookedBy     int             `json:"overbooked_by,omitempty"`
	Upgrade          string          `json:"upgrade"`
	Rationale        string          `json:"rationale"`
	RationaleKind    string          `json:"rationale_kind"`
}

type SkippedDTO struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

type RecommendationsDTO struct {
	HotelID     string        `json:"hotel_id"`
	CategoryID  string        `json:"category_id"`
	From        string        `json:"from,omitempty"`
	To          string        `json:"to,omitempty"`
	Params      ParamsDTO     `json:"params"`
	HistoryDays int           `json:"history_days"`
	Upgrades    int           `json:"upgrades"`
	Decisions   []DecisionDTO `json:"decisions"`
	Skipped     []SkippedDTO  `json:"skipped"`
}

type TrendDTO struct {
	HotelID             string          `json:"hotel_id"`
	CategoryID          string          `json:"category_id,omitempty"`
	WindowDays          int             `json:"window_days"`
	Since               string          `json:"since"`
	Days                int             `json:"days"`
	RoomNights          int             `json:"room_nights"`
	Delta               int             `json:"delta"`
	PriorYearRoomNights int             `json:"prior_year_room_nights"`
	PercentChange       decimal.Decimal `json:"percent_change"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toHotelDTO(h generic.Hotel, categories []generic.RoomCategory) HotelDTO {
	dto := HotelDTO{
		ID:         string(h.ID),
		Name:       h.Name,
		TotalRooms: h.TotalRooms,
		Address:    h.Address,
		City:       h.City,
		Stars:      h.Stars,
		Seasonal:   h.Seasonal,
	}
	for _, c := range categories {
		dto.Categories = append(dto.Categories, toCategoryDTO(c))
	}
	return dto
}

func toCategoryDTO(c generic.RoomCategory) CategoryDTO {
	return CategoryDTO{
		ID:          string(c.ID),
		Name:        c.Name,
		Rooms:       c.Rooms,
		EntryLevel:  c.EntryLevel,
		AverageRate: c.AverageRate,
		MinMargin:   c.Margin(),
		UpgradeTo:   string(c.UpgradeTarget),
	}
}

func (r CategoryRequest) category(hotelID generic.HotelID) generic.RoomCategory {
	c := generic.RoomCategory{
		ID:            generic.CategoryID(r.ID),
		HotelID:       hotelID,
		Name:          r.Name,
		Rooms:         r.Rooms,
		EntryLevel:    r.EntryLevel,
		AverageRate:   r.AverageRate,
		UpgradeTarget: generic.CategoryID(r.UpgradeTo),
		MinMargin:     generic.DefaultMinMargin,
	}
	if r.MinMargin != nil {
		c.MinMargin = *r.MinMargin
	}
	return c
}

func toBlockDTO(b generic.OutOfServiceBlock) BlockDTO {
	dto := BlockDTO{
		ID:         string(b.ID),
		CategoryID: string(b.CategoryID),
		From:       b.From.String(),
		To:         b.To.String(),
		Rooms:      b.Rooms,
		Reason:     b.Reason,
	}
	if !b.CreatedAt.IsZero() {
		dto.CreatedAt = b.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toDecisionDTO(d upgrade.Decision) DecisionDTO {
	return DecisionDTO{
		Date:             d.Date.String(),
		RoomNights:       d.RoomNights,
		Capacity:         d.EffectiveCapacity,
		Probability:      d.Probability,
		ExpectedRevenue:  d.ExpectedRevenue,
		DynamicThreshold: d.DynamicThreshold,
		PickupDelta:      d.PickupDelta,
		OccupancyPct:     d.OccupancyPct,
		Overbooking:      d.Overbooking,
		OverbookedBy:     d.OverbookedBy,
		Upgrade:          string(d.Recommendation),
		Rationale:        d.Rationale,
		RationaleKind:    d.RationaleKind.String(),
	}
}

func toRecommendationsDTO(rec *upgrade.Recommendations) RecommendationsDTO {
	dto := RecommendationsDTO{
		HotelID:    string(rec.Hotel.ID),
		CategoryID: string(rec.Category.ID),
		Params: ParamsDTO{
			AverageRate: rec.Params.AverageRate,
			MinMargin:   rec.Params.MinMargin,
			EntryLevel:  rec.Params.EntryLevel,
		},
		Decisions: make([]DecisionDTO, 0, len(rec.Decisions)),
		Skipped:   make([]SkippedDTO, 0, len(rec.Skipped)),
	}
	if !rec.Period.Start.IsZero() {
		dto.From = rec.Period.Start.String()
	}
	if !rec.Period.End.IsZero() {
		dto.To = rec.Period.End.String()
	}
	if rec.Distribution != nil {
		dto.HistoryDays = rec.Distribution.Observations()
	}
	dto.Upgrades, _ = rec.Counts()

	for _, d := range rec.Decisions {
		dto.Decisions = append(dto.Decisions, toDecisionDTO(d))
	}
	for _, s := range rec.Skipped {
		dto.Skipped = append(dto.Skipped, SkippedDTO{Date: s.Date.String(), Error: s.Err.Error()})
	}
	return dto
}

func toTrendDTO(key generic.SeriesKey, t *upgrade.Trend) TrendDTO {
	return TrendDTO{
		HotelID:             string(key.HotelID),
		CategoryID:          string(key.CategoryID),
		WindowDays:          t.WindowDays,
		Since:               t.Cutoff.String(),
		Days:                t.Days,
		RoomNights:          t.RoomNights,
		Delta:               t.Delta,
		PriorYearRoomNights: t.PriorYearRoomNights,
		PercentChange:       t.PercentChange,
	}
}

func toImportDTO(res *importer.Result, categoryID generic.CategoryID, saved int) ImportDTO {
	dto := ImportDTO{
		BatchID:    res.BatchID,
		Report:     res.Detection.Type,
		Confidence: res.Detection.Confidence,
		Sheet:      res.Sheet,
		HeaderRow:  res.HeaderRow,
		CategoryID: string(categoryID),
		Metadata:   res.Metadata,
		Imported:   res.Imported(),
		Saved:      saved,
		Rejected:   make([]RowErrorDTO, 0, len(res.Rejected)),
	}
	for _, re := range res.Rejected {
		dto.Rejected = append(dto.Rejected, RowErrorDTO{
			Row:    re.Row,
			Column: re.Column,
			Value:  re.Value,
			Error:  re.Unwrap().Error(),
		})
	}
	return dto
}
