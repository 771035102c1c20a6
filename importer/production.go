package importer

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/upgrade-advisor/generic"
)

var hundred = decimal.NewFromInt(100)

// productionColumn binds a column key to the record field it fills.
type productionColumn struct {
	key   string
	flag  generic.Field
	apply func(*generic.ProductionRecord, Cell) error
}

func decimalInto(dst func(*generic.ProductionRecord) *decimal.Decimal, parse func(Cell) (decimal.Decimal, error)) func(*generic.ProductionRecord, Cell) error {
	return func(rec *generic.ProductionRecord, c Cell) error {
		v, err := parse(c)
		if err != nil {
			return err
		}
		*dst(rec) = v
		return nil
	}
}

func countInto(dst func(*generic.ProductionRecord) *int) func(*generic.ProductionRecord, Cell) error {
	return func(rec *generic.ProductionRecord, c Cell) error {
		v, err := ParseCount(c)
		if err != nil {
			return err
		}
		*dst(rec) = v
		return nil
	}
}

// roomNightsInto is countInto for sold room nights, which cannot be negative.
// The comparison columns keep their sign.
func roomNightsInto(rec *generic.ProductionRecord, c Cell) error {
	v, err := ParseCount(c)
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("%w: negative room nights %d", generic.ErrInvalidInput, v)
	}
	rec.RoomNights = v
	return nil
}

var productionColumns = []productionColumn{
	{ColRoomNights, generic.FieldRoomNights, roomNightsInto},
	{ColOccupancy, generic.FieldOccupancy, decimalInto(func(r *generic.ProductionRecord) *decimal.Decimal { return &r.OccupancyPct }, ParsePercent)},
	{ColADR, generic.FieldADR, decimalInto(func(r *generic.ProductionRecord) *decimal.Decimal { return &r.ADR }, ParseAmount)},
	{ColRevenue, generic.FieldRevenue, decimalInto(func(r *generic.ProductionRecord) *decimal.Decimal { return &r.RoomRevenue }, ParseAmount)},
	{ColRNVsSamePeriod, generic.FieldVsSamePeriodRN, countInto(func(r *generic.ProductionRecord) *int { return &r.VsSamePeriodRN })},
	{ColOccVsSamePeriod, generic.FieldVsSamePeriodOcc, decimalInto(func(r *generic.ProductionRecord) *decimal.Decimal { return &r.VsSamePeriodOcc }, ParsePercent)},
	{ColADRVsSamePeriod, generic.FieldVsSamePeriodADR, decimalInto(func(r *generic.ProductionRecord) *decimal.Decimal { return &r.VsSamePeriodADR }, ParseAmount)},
	{ColRevVsSamePeriod, generic.FieldVsSamePeriodRevenue, decimalInto(func(r *generic.ProductionRecord) *decimal.Decimal { return &r.VsSamePeriodRevenue }, ParseAmount)},
	{ColRNVsLastYear, generic.FieldVsLastYearRN, countInto(func(r *generic.ProductionRecord) *int { return &r.VsLastYearRN })},
	{ColOccVsLastYear, generic.FieldVsLastYearOcc, decimalInto(func(r *generic.ProductionRecord) *decimal.Decimal { return &r.VsLastYearOcc }, ParsePercent)},
	{ColADRVsLastYear, generic.FieldVsLastYearADR, decimalInto(func(r *generic.ProductionRecord) *decimal.Decimal { return &r.VsLastYearADR }, ParseAmount)},
	{ColRevVsLastYear, generic.FieldVsLastYearRevenue, decimalInto(func(r *generic.ProductionRecord) *decimal.Decimal { return &r.VsLastYearRevenue }, ParseAmount)},
}

// parseProduction fills result.Production from the rows below header.
// An empty measure cell leaves its field unset; an unparsable one rejects
// the whole row.
func parseProduction(sh *sheet, header int, profile Profile, result *Result) error {
	mapping, err := Resolve(sh.headers(header), profile.Columns, profile.PreferPosition)
	if err != nil {
		var mc *generic.MissingColumnError
		if errors.As(err, &mc) {
			mc.Sheet = sh.name
		}
		return err
	}
	result.Mapping = mapping
	dateCol := mapping[ColDate]

rows:
	for r := header + 1; r < len(sh.rows); r++ {
		dateCell := sh.cell(r, dateCol)
		if skipRow(dateCell, profile.SkipMarkers) {
			continue
		}

		date, err := ParseDateCell(dateCell)
		if err != nil {
			result.Rejected = append(result.Rejected, &generic.RowError{Row: r + 1, Column: ColDate, Value: dateCell.Value, Err: err})
			continue
		}
		rec := generic.ProductionRecord{Date: date}

		if col, ok := mapping[ColWeekday]; ok {
			if c := sh.cell(r, col); !c.Empty() {
				rec.Weekday = c.Value
				rec.Fields |= generic.FieldWeekday
			}
		}

		for _, pc := range productionColumns {
			col, ok := mapping[pc.key]
			if !ok {
				continue
			}
			c := sh.cell(r, col)
			if c.Empty() {
				continue
			}
			if err := pc.apply(&rec, c); err != nil {
				result.Rejected = append(result.Rejected, &generic.RowError{Row: r + 1, Column: pc.key, Value: c.Value, Err: err})
				continue rows
			}
			rec.Fields |= pc.flag
		}
		result.Production = append(result.Production, rec)
	}

	normalizeOccupancy(result.Production)
	return nil
}

// normalizeOccupancy scales a column exported as fractions (0.85) to
// percentages (85). The decision is made on the whole column.
func normalizeOccupancy(records []generic.ProductionRecord) {
	seen := false
	for _, rec := range records {
		if !rec.Fields.Has(generic.FieldOccupancy) {
			continue
		}
		seen = true
		if rec.OccupancyPct.GreaterThan(decimal.NewFromInt(1)) {
			return
		}
	}
	if !seen {
		return
	}
	for i := range records {
		if records[i].Fields.Has(generic.FieldOccupancy) {
			records[i].OccupancyPct = records[i].OccupancyPct.Mul(hundred)
		}
	}
}
