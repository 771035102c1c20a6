package upgrade

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/upgrade-advisor/generic"
)

// DefaultTrendWindow is the look-back used when none is configured.
const DefaultTrendWindow = 60

// Trend compares recent room nights with the same period of the prior year.
type Trend struct {
	WindowDays          int
	Cutoff              generic.Date
	Days                int
	RoomNights          int
	Delta               int
	PriorYearRoomNights int
	PercentChange       decimal.Decimal
}

// AnalyzeTrend sums room nights and their same-period delta over records
// dated on or after today - windowDays.
//
// The prior-year baseline is RoomNights - Delta. When the baseline is not
// positive the percentage is reported as 0.
func AnalyzeTrend(records []generic.ProductionRecord, windowDays int, today generic.Date) (*Trend, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no daily production records", generic.ErrDataUnavailable)
	}
	if windowDays <= 0 {
		windowDays = DefaultTrendWindow
	}

	for _, f := range []struct {
		flag generic.Field
		name string
	}{
		{generic.FieldRoomNights, "room_nights"},
		{generic.FieldVsSamePeriodRN, "vs_same_period_rn"},
	} {
		if !anyHas(records, f.flag) {
			return nil, fmt.Errorf("%w: %s", generic.ErrMissingField, f.name)
		}
	}

	t := &Trend{WindowDays: windowDays, Cutoff: today.AddDays(-windowDays)}
	for _, r := range records {
		if r.Date.Before(t.Cutoff) {
			continue
		}
		t.Days++
		if r.Has(generic.FieldRoomNights) {
			t.RoomNights += r.RoomNights
		}
		if r.Has(generic.FieldVsSamePeriodRN) {
			t.Delta += r.VsSamePeriodRN
		}
	}

	t.PriorYearRoomNights = t.RoomNights - t.Delta
	t.PercentChange = decimal.Zero
	if t.PriorYearRoomNights > 0 {
		t.PercentChange = decimal.NewFromInt(int64(t.Delta)).
			Mul(hundred).
			Div(decimal.NewFromInt(int64(t.PriorYearRoomNights))).
			Round(2)
	}
	return t, nil
}

func anyHas(records []generic.ProductionRecord, f generic.Field) bool {
	for _, r := range records {
		if r.Has(f) {
			return true
		}
	}
	return false
}
