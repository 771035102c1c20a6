package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/upgrade-advisor/generic"
	"github.com/warp/upgrade-advisor/report"
	"github.com/warp/upgrade-advisor/upgrade"
	"github.com/xuri/excelize/v2"
)

func june(d int) generic.Date { return generic.NewDate(2025, time.June, d) }

func sampleInput(t *testing.T) report.Input {
	t.Helper()

	category := generic.RoomCategory{
		ID: "classic", HotelID: "h1", Name: "Classic", Rooms: 10,
		AverageRate: decimal.NewFromInt(300), MinMargin: decimal.RequireFromString("0.6"),
		UpgradeTarget: "superior",
	}
	params := upgrade.ParamsFor(category)

	hist := map[generic.Date]int{}
	var history []generic.ProductionRecord
	for i, rn := range []int{5, 7, 7, 9} {
		d := generic.NewDate(2024, time.June, i+1)
		hist[d] = rn
		history = append(history, generic.ProductionRecord{Date: d, RoomNights: rn, Fields: generic.FieldRoomNights})
	}
	dist, err := upgrade.NewDistribution(hist)
	require.NoError(t, err)

	otb := []generic.PickupRecord{
		{StayDate: june(1), RoomNightsOTB: 6, Pickup7Day: 3, Pickup7DayPriorYear: 1},
		{StayDate: june(2), RoomNightsOTB: 12, Pickup7Day: 0, Pickup7DayPriorYear: 4},
	}
	var engine upgrade.Engine
	decisions := []upgrade.Decision{
		engine.Decide(dist, params, upgrade.Input{Date: june(1), RoomNights: 6, EffectiveCapacity: 10, Pickup: &otb[0]}),
		engine.Decide(dist, params, upgrade.Input{Date: june(2), RoomNights: 12, EffectiveCapacity: 10, Pickup: &otb[1]}),
	}

	return report.Input{
		Hotel:     generic.Hotel{ID: "h1", Name: "Cala Cuncheddi", TotalRooms: 85},
		Category:  category,
		Params:    params,
		Period:    generic.Period{Start: june(1), End: june(30)},
		History:   history,
		OTB:       otb,
		Decisions: decisions,
		Inventory: []upgrade.InventoryLine{
			{Category: category, Total: 10, OutOfService: 2, Effective: 8},
		},
		InventoryDate: june(1),
		GeneratedAt:   time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC),
	}
}

func render(t *testing.T, in report.Input) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, in))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestRender_Sheets(t *testing.T) {
	f := render(t, sampleInput(t))

	assert.Equal(t, report.Sheets, f.GetSheetList())
	idx, err := f.GetSheetIndex(report.SheetDashboard)
	require.NoError(t, err)
	assert.Equal(t, idx, f.GetActiveSheetIndex(), "dashboard opens first")
}

func TestRender_HistoryFormulas(t *testing.T) {
	f := render(t, sampleInput(t))

	rn, err := f.GetCellValue(report.SheetHistory, "B3")
	require.NoError(t, err)
	assert.Equal(t, "5", rn)

	freq, err := f.GetCellFormula(report.SheetHistory, "D4")
	require.NoError(t, err)
	assert.Equal(t, "COUNTIF(B$3:B$6,B4)", freq)

	prob, err := f.GetCellFormula(report.SheetHistory, "E6")
	require.NoError(t, err)
	assert.Equal(t, `COUNTIF(B$3:B$6,">="&B6)/COUNT(B$3:B$6)`, prob)
}

func TestRender_PickupDeltaAndFormatting(t *testing.T) {
	f := render(t, sampleInput(t))

	delta, err := f.GetCellFormula(report.SheetPickup, "D4")
	require.NoError(t, err)
	assert.Equal(t, "B4-C4", delta)

	formats, err := f.GetConditionalFormats(report.SheetPickup)
	require.NoError(t, err)
	require.Contains(t, formats, "D3:D4")
	assert.Len(t, formats["D3:D4"], 2)
}

func TestRender_Dashboard(t *testing.T) {
	f := render(t, sampleInput(t))

	rows, err := f.GetRows(report.SheetDashboard)
	require.NoError(t, err)
	require.Len(t, rows, 4, "title, header, two dates")

	header := rows[1]
	assert.Equal(t, "Upgrade", header[9])
	assert.Equal(t, "Rationale", header[10])

	assert.Equal(t, "No", rows[2][9])
	assert.Equal(t, "high sell-through probability — do not upgrade", rows[2][10])

	assert.Equal(t, "+2", rows[3][8])
	assert.Equal(t, "overbooking of 2 rooms", rows[3][10])
}

func TestRender_ParametersAndInventory(t *testing.T) {
	f := render(t, sampleInput(t))

	v, err := f.GetCellValue(report.SheetParameters, "B4")
	require.NoError(t, err)
	assert.Equal(t, "Classic", v)

	rows, err := f.GetRows(report.SheetInventory)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Classic", "10", "2", "8", "No"}, rows[2][:5])
	assert.Equal(t, "superior", rows[2][6])
}

func TestRender_EmptyRun(t *testing.T) {
	// GIVEN: A category with no data yet
	in := report.Input{
		Hotel:    generic.Hotel{ID: "h1", Name: "Empty"},
		Category: generic.RoomCategory{ID: "c", Name: "C"},
	}

	// THEN: The workbook still renders with headers only
	f := render(t, in)
	rows, err := f.GetRows(report.SheetDashboard)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
