package importer

import (
	"errors"

	"github.com/warp/upgrade-advisor/generic"
)

// parsePickup fills result.Pickup from the rows below header. Empty
// numeric cells count as zero pickup.
func parsePickup(sh *sheet, header int, profile Profile, result *Result) error {
	mapping, err := Resolve(sh.headers(header), profile.Columns, profile.PreferPosition)
	if err != nil {
		var mc *generic.MissingColumnError
		if errors.As(err, &mc) {
			mc.Sheet = sh.name
		}
		return err
	}
	result.Mapping = mapping
	dateCol := mapping[ColStayDate]

	counts := []struct {
		key string
		dst func(*generic.PickupRecord) *int
	}{
		{ColOTB, func(p *generic.PickupRecord) *int { return &p.RoomNightsOTB }},
		{ColPickup1, func(p *generic.PickupRecord) *int { return &p.Pickup1Day }},
		{ColPickup2, func(p *generic.PickupRecord) *int { return &p.Pickup2Day }},
		{ColPickup3, func(p *generic.PickupRecord) *int { return &p.Pickup3Day }},
		{ColPickup7, func(p *generic.PickupRecord) *int { return &p.Pickup7Day }},
		{ColPickup7LastYear, func(p *generic.PickupRecord) *int { return &p.Pickup7DayPriorYear }},
	}

rows:
	for r := header + 1; r < len(sh.rows); r++ {
		dateCell := sh.cell(r, dateCol)
		if skipRow(dateCell, profile.SkipMarkers) {
			continue
		}

		date, err := ParseDateCell(dateCell)
		if err != nil {
			result.Rejected = append(result.Rejected, &generic.RowError{Row: r + 1, Column: ColStayDate, Value: dateCell.Value, Err: err})
			continue
		}
		rec := generic.PickupRecord{StayDate: date}

		for _, cnt := range counts {
			col, ok := mapping[cnt.key]
			if !ok {
				continue
			}
			c := sh.cell(r, col)
			if c.Empty() {
				continue
			}
			v, err := ParseCount(c)
			if err != nil {
				result.Rejected = append(result.Rejected, &generic.RowError{Row: r + 1, Column: cnt.key, Value: c.Value, Err: err})
				continue rows
			}
			*cnt.dst(&rec) = v
		}
		result.Pickup = append(result.Pickup, rec)
	}
	return nil
}
