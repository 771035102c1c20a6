/*
Package generic provides the domain primitives shared by every layer of the
upgrade advisor.

PURPOSE:
  Hotels, room categories, out-of-service blocks and the two daily series
  the engine consumes (production history and on-the-books pickup) live here,
  with no knowledge of spreadsheets, SQL or HTTP.

KEY CONCEPTS IN THIS FILE (types.go):
  - Hotel / RoomCategory: configured inventory and its upgrade hierarchy
  - OutOfServiceBlock: temporary capacity reduction over a date range
  - ProductionRecord: one historical day (room nights sold plus deltas)
  - PickupRecord: one stay date on the books with its booking velocity
  - SeriesKey: (hotel, category) pair that keys the daily series

DESIGN PRINCIPLES:
  1. Precision: money uses decimal.Decimal
  2. Type Safety: distinct ID types for hotels, categories and blocks
  3. Presence: ProductionRecord.Fields records which columns the source had,
     so an absent column is distinguishable from a zero value

SEE ALSO:
  - time.go: Date
  - store.go: repository interfaces
  - upgrade/: the decision engine consuming these types
*/
package generic

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type HotelID string
type CategoryID string
type BlockID string

// DefaultMinMargin is applied when a category is configured without a margin.
var DefaultMinMargin = decimal.RequireFromString("0.6")

// MustParseDecimal is decimal.RequireFromString: it panics on malformed input.
func MustParseDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// INVENTORY - Hotels and room categories
// =============================================================================

type Hotel struct {
	ID         HotelID
	Name       string
	TotalRooms int
	Address    string
	City       string
	Stars      int
	Seasonal   bool
}

// RoomCategory is a sellable inventory bucket.
// UpgradeTarget points at the next category up; the hierarchy is expected
// to be acyclic but that is a data-entry contract, not enforced here.
type RoomCategory struct {
	ID            CategoryID
	HotelID       HotelID
	Name          string
	Rooms         int
	EntryLevel    bool
	AverageRate   decimal.Decimal
	MinMargin     decimal.Decimal
	UpgradeTarget CategoryID
}

// Margin returns MinMargin, or DefaultMinMargin when unset.
func (c RoomCategory) Margin() decimal.Decimal {
	if c.MinMargin.IsZero() {
		return DefaultMinMargin
	}
	return c.MinMargin
}

// OutOfServiceBlock removes Rooms from a category on every day in [From, To].
// Blocks are never deleted; ending one early truncates To.
type OutOfServiceBlock struct {
	ID         BlockID
	HotelID    HotelID
	CategoryID CategoryID
	From       Date
	To         Date
	Rooms      int
	Reason     string
	CreatedAt  time.Time
}

// Covers returns true if the block is active on d.
func (b OutOfServiceBlock) Covers(d Date) bool {
	return Period{Start: b.From, End: b.To}.Contains(d)
}

// =============================================================================
// DAILY SERIES - Production history and on-the-books pickup
// =============================================================================

// SeriesKey identifies a daily series. An empty CategoryID is the hotel-wide series.
type SeriesKey struct {
	HotelID    HotelID
	CategoryID CategoryID
}

func (k SeriesKey) HotelWide() SeriesKey { return SeriesKey{HotelID: k.HotelID} }
func (k SeriesKey) IsHotelWide() bool    { return k.CategoryID == "" }

func (k SeriesKey) String() string {
	if k.CategoryID == "" {
		return string(k.HotelID)
	}
	return string(k.HotelID) + "/" + string(k.CategoryID)
}

// Field flags which columns a ProductionRecord was populated from.
type Field uint16

const (
	FieldRoomNights Field = 1 << iota
	FieldWeekday
	FieldOccupancy
	FieldADR
	FieldRevenue
	FieldVsSamePeriodRN
	FieldVsSamePeriodOcc
	FieldVsSamePeriodADR
	FieldVsSamePeriodRevenue
	FieldVsLastYearRN
	FieldVsLastYearOcc
	FieldVsLastYearADR
	FieldVsLastYearRevenue
)

func (f Field) Has(flag Field) bool { return f&flag == flag }

// ProductionRecord is one historical day as exported by the property's BI tool.
// "VsSamePeriod" columns compare with the same point of the prior year,
// "VsLastYear" columns with the prior year's actual.
type ProductionRecord struct {
	Date                Date
	Weekday             string
	RoomNights          int
	OccupancyPct        decimal.Decimal
	ADR                 decimal.Decimal
	RoomRevenue         decimal.Decimal
	VsSamePeriodRN      int
	VsSamePeriodOcc     decimal.Decimal
	VsSamePeriodADR     decimal.Decimal
	VsSamePeriodRevenue decimal.Decimal
	VsLastYearRN        int
	VsLastYearOcc       decimal.Decimal
	VsLastYearADR       decimal.Decimal
	VsLastYearRevenue   decimal.Decimal
	Fields              Field
}

// Has reports whether the record carries f. A record with no Fields set
// was built in code rather than imported and carries every field.
func (r ProductionRecord) Has(f Field) bool {
	return r.Fields == 0 || r.Fields.Has(f)
}

// PickupRecord is one stay date on the books with trailing pickup counts.
type PickupRecord struct {
	StayDate            Date
	RoomNightsOTB       int
	Pickup1Day          int
	Pickup2Day          int
	Pickup3Day          int
	Pickup7Day          int
	Pickup7DayPriorYear int
}

// Delta is current 7-day pickup minus the prior year's.
func (p PickupRecord) Delta() int {
	return p.Pickup7Day - p.Pickup7DayPriorYear
}
