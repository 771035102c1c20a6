/*
Package report renders a recommendation run as an Excel workbook.

PURPOSE:
  Revenue managers work in spreadsheets. The workbook carries the run's
  inputs next to its outputs so every number can be re-derived in Excel:
  history probabilities and pickup deltas are live formulas.

SHEETS:
  Parameters  category settings and run context
  History     room nights per day with COUNTIF frequency and P(demand >= value)
  OTB         on-the-books room nights with short-term pickup
  Pickup      7-day pickup vs prior year, delta formula, red/green formatting
  Dashboard   one decision per stay date (opens first)
  Inventory   rooms, out of service and effective capacity per category

SEE ALSO:
  - upgrade/advisor.go: Recommendations, InventoryLine
*/
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/upgrade-advisor/generic"
	"github.com/warp/upgrade-advisor/upgrade"
	"github.com/xuri/excelize/v2"
)

const (
	SheetParameters = "Parameters"
	SheetHistory    = "History"
	SheetOTB        = "OTB"
	SheetPickup     = "Pickup"
	SheetDashboard  = "Dashboard"
	SheetInventory  = "Inventory"
)

// Sheets lists the rendered sheets in workbook order.
var Sheets = []string{SheetParameters, SheetHistory, SheetOTB, SheetPickup, SheetDashboard, SheetInventory}

// firstDataRow is below the title (row 1) and the header (row 2).
const firstDataRow = 3

// Input is everything a workbook shows.
type Input struct {
	Hotel         generic.Hotel
	Category      generic.RoomCategory
	Params        upgrade.Params
	Period        generic.Period
	History       []generic.ProductionRecord
	OTB           []generic.PickupRecord
	Decisions     []upgrade.Decision
	Inventory     []upgrade.InventoryLine
	InventoryDate generic.Date
	GeneratedAt   time.Time
}

// FromRecommendations assembles an Input from an advisor run.
func FromRecommendations(rec *upgrade.Recommendations, inventory []upgrade.InventoryLine, inventoryDate generic.Date) Input {
	in := Input{
		Hotel:         rec.Hotel,
		Category:      rec.Category,
		Params:        rec.Params,
		Period:        rec.Period,
		History:       rec.History,
		OTB:           rec.OTB,
		Inventory:     inventory,
		InventoryDate: inventoryDate,
		GeneratedAt:   time.Now().UTC(),
	}
	if rec.Result != nil {
		in.Decisions = rec.Decisions
	}
	return in
}

// Render writes the workbook to w.
func Render(w io.Writer, in Input) error {
	f := excelize.NewFile()
	defer f.Close()

	r, err := newRenderer(f)
	if err != nil {
		return err
	}

	if err := f.SetSheetName("Sheet1", SheetParameters); err != nil {
		return err
	}
	for _, name := range Sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	steps := []struct {
		sheet  string
		render func(*sheetWriter, Input)
	}{
		{SheetParameters, r.parameters},
		{SheetHistory, r.history},
		{SheetOTB, r.otb},
		{SheetPickup, r.pickup},
		{SheetDashboard, r.dashboard},
		{SheetInventory, r.inventory},
	}
	for _, step := range steps {
		sw := &sheetWriter{f: f, name: step.sheet}
		step.render(sw, in)
		if sw.err != nil {
			return fmt.Errorf("render sheet %s: %w", step.sheet, sw.err)
		}
	}

	if idx, err := f.GetSheetIndex(SheetDashboard); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	_ = f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("Upgrade advisor - %s - %s", in.Hotel.Name, in.Category.Name),
		Creator: "upgrade-advisor",
		Created: in.GeneratedAt.Format(time.RFC3339),
	})

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// =============================================================================
// SHEET WRITER
// =============================================================================

// sheetWriter keeps the first error so sheet code reads top to bottom.
type sheetWriter struct {
	f    *excelize.File
	name string
	err  error
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func (s *sheetWriter) row(row int, values ...interface{}) {
	if s.err != nil {
		return
	}
	s.err = s.f.SetSheetRow(s.name, cellName(1, row), &values)
}

func (s *sheetWriter) formula(col, row int, formula string) {
	if s.err != nil {
		return
	}
	s.err = s.f.SetCellFormula(s.name, cellName(col, row), formula)
}

func (s *sheetWriter) style(fromCol, fromRow, toCol, toRow, style int) {
	if s.err != nil {
		return
	}
	s.err = s.f.SetCellStyle(s.name, cellName(fromCol, fromRow), cellName(toCol, toRow), style)
}

func (s *sheetWriter) title(text string, width int, style int) {
	if s.err != nil {
		return
	}
	if s.err = s.f.SetCellStr(s.name, "A1", text); s.err != nil {
		return
	}
	if width > 1 {
		s.err = s.f.MergeCell(s.name, "A1", cellName(width, 1))
	}
	s.style(1, 1, width, 1, style)
}

func (s *sheetWriter) header(style int, names ...string) {
	values := make([]interface{}, len(names))
	for i, n := range names {
		values[i] = n
	}
	s.row(2, values...)
	s.style(1, 2, len(names), 2, style)
	s.freeze()
}

func (s *sheetWriter) freeze() {
	if s.err != nil {
		return
	}
	s.err = s.f.SetPanes(s.name, &excelize.Panes{Freeze: true, YSplit: 2, TopLeftCell: "A3", ActivePane: "bottomLeft"})
}

func (s *sheetWriter) widths(widths ...float64) {
	for i, w := range widths {
		if s.err != nil {
			return
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		s.err = s.f.SetColWidth(s.name, col, col, w)
	}
}

// =============================================================================
// RENDERER
// =============================================================================

type renderer struct {
	f       *excelize.File
	title   int
	header  int
	date    int
	money   int
	percent int
	number  int
	yes     int
	alert   int
	negDiff int
	posDiff int
}

func newRenderer(f *excelize.File) (*renderer, error) {
	border := []excelize.Border{
		{Type: "left", Color: "BFBFBF", Style: 1},
		{Type: "right", Color: "BFBFBF", Style: 1},
		{Type: "top", Color: "BFBFBF", Style: 1},
		{Type: "bottom", Color: "BFBFBF", Style: 1},
	}
	dateFmt := "dd/mm/yyyy"
	moneyFmt := "€ #,##0.00"
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	r := &renderer{f: f}
	styles := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&r.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14, Color: "1F4E78"}, Alignment: center}},
		{&r.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E78"}},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
			Border:    border,
		}},
		{&r.date, &excelize.Style{CustomNumFmt: &dateFmt, Alignment: center, Border: border}},
		{&r.money, &excelize.Style{CustomNumFmt: &moneyFmt, Border: border}},
		{&r.percent, &excelize.Style{NumFmt: 10, Alignment: center, Border: border}},
		{&r.number, &excelize.Style{Alignment: center, Border: border}},
		{&r.yes, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "006100"},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"C6EFCE"}},
			Alignment: center,
			Border:    border,
		}},
		{&r.alert, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "9C0006"},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFC7CE"}},
			Alignment: center,
			Border:    border,
		}},
	}
	for _, s := range styles {
		id, err := f.NewStyle(s.style)
		if err != nil {
			return nil, fmt.Errorf("create style: %w", err)
		}
		*s.dst = id
	}

	var err error
	if r.negDiff, err = f.NewConditionalStyle(&excelize.Style{
		Font: &excelize.Font{Color: "9C0006"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFC7CE"}},
	}); err != nil {
		return nil, err
	}
	if r.posDiff, err = f.NewConditionalStyle(&excelize.Style{
		Font: &excelize.Font{Color: "006100"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"C6EFCE"}},
	}); err != nil {
		return nil, err
	}
	return r, nil
}

func money(d decimal.Decimal) float64 { return d.Round(2).InexactFloat64() }

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func (r *renderer) parameters(s *sheetWriter, in Input) {
	s.title("UPGRADE PARAMETERS", 3, r.title)
	s.header(r.header, "Parameter", "Value", "Note")

	rows := []struct {
		name  string
		value interface{}
		note  string
		style int
	}{
		{"Hotel", in.Hotel.Name, string(in.Hotel.ID), r.number},
		{"Category", in.Category.Name, string(in.Category.ID), r.number},
		{"Average rate", money(in.Params.AverageRate), "Average daily rate of the category", r.money},
		{"Minimum margin", in.Params.MinMargin.InexactFloat64(), "Multiplier applied to the dynamic threshold", r.percent},
		{"Entry level", yesNo(in.Params.EntryLevel), "Entry-level categories never receive upgrade suggestions", r.number},
		{"Rooms in category", in.Category.Rooms, "Before out-of-service blocks", r.number},
		{"Total hotel rooms", in.Hotel.TotalRooms, "", r.number},
		{"Period", in.Period.String(), "Stay dates covered by the dashboard", r.number},
		{"History days", len(in.History), "Days in the demand distribution", r.number},
		{"Stay dates", len(in.Decisions), "", r.number},
		{"Generated at", in.GeneratedAt.Format(time.RFC3339), "", r.number},
	}
	for i, p := range rows {
		row := firstDataRow + i
		s.row(row, p.name, p.value, p.note)
		s.style(2, row, 2, row, p.style)
	}
	s.widths(25, 22, 55)
}

func (r *renderer) history(s *sheetWriter, in Input) {
	records := make([]generic.ProductionRecord, 0, len(in.History))
	for _, rec := range in.History {
		if rec.Has(generic.FieldRoomNights) {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })

	s.title("HISTORICAL DEMAND", 5, r.title)
	s.header(r.header, "Date", "Room nights", "Weekday", "Frequency", "P(demand >= value)")

	last := firstDataRow + len(records) - 1
	values := fmt.Sprintf("B$%d:B$%d", firstDataRow, last)
	for i, rec := range records {
		row := firstDataRow + i
		s.row(row, rec.Date.Time(), rec.RoomNights, rec.Weekday)
		s.formula(4, row, fmt.Sprintf("COUNTIF(%s,B%d)", values, row))
		s.formula(5, row, fmt.Sprintf(`COUNTIF(%s,">="&B%d)/COUNT(%s)`, values, row, values))
	}
	if len(records) > 0 {
		s.style(1, firstDataRow, 1, last, r.date)
		s.style(2, firstDataRow, 4, last, r.number)
		s.style(5, firstDataRow, 5, last, r.percent)
	}
	s.widths(14, 14, 14, 12, 20)
}

func (r *renderer) otb(s *sheetWriter, in Input) {
	s.title("ON THE BOOKS", 6, r.title)
	s.header(r.header, "Date", "Room nights", "Pickup 1d", "Pickup 2d", "Pickup 3d", "Note")

	for i, p := range in.OTB {
		row := firstDataRow + i
		s.row(row, p.StayDate.Time(), p.RoomNightsOTB, p.Pickup1Day, p.Pickup2Day, p.Pickup3Day, "")
	}
	if n := len(in.OTB); n > 0 {
		last := firstDataRow + n - 1
		s.style(1, firstDataRow, 1, last, r.date)
		s.style(2, firstDataRow, 5, last, r.number)
	}
	s.widths(14, 14, 12, 12, 12, 30)
}

func (r *renderer) pickup(s *sheetWriter, in Input) {
	s.title("7-DAY PICKUP VS PRIOR YEAR", 4, r.title)
	s.header(r.header, "Date", "Pickup 7d", "Pickup 7d prior year", "Delta")

	for i, p := range in.OTB {
		row := firstDataRow + i
		s.row(row, p.StayDate.Time(), p.Pickup7Day, p.Pickup7DayPriorYear)
		s.formula(4, row, fmt.Sprintf("B%d-C%d", row, row))
	}
	if n := len(in.OTB); n > 0 {
		last := firstDataRow + n - 1
		s.style(1, firstDataRow, 1, last, r.date)
		s.style(2, firstDataRow, 4, last, r.number)
		if s.err == nil {
			s.err = s.f.SetConditionalFormat(s.name, fmt.Sprintf("D%d:D%d", firstDataRow, last), []excelize.ConditionalFormatOptions{
				{Type: "cell", Criteria: "<", Format: &r.negDiff, Value: "0"},
				{Type: "cell", Criteria: ">", Format: &r.posDiff, Value: "0"},
			})
		}
	}
	s.widths(14, 12, 20, 10)
}

func (r *renderer) dashboard(s *sheetWriter, in Input) {
	s.title(fmt.Sprintf("UPGRADE DASHBOARD - %s - %s", in.Category.Name, in.Period), 11, r.title)
	s.header(r.header,
		"Date", "Room nights", "Capacity", "P(demand >= RN)", "Expected revenue",
		"Pickup delta vs PY", "Dynamic threshold", "Occupancy %", "Overbooking", "Upgrade", "Rationale",
	)

	for i, d := range in.Decisions {
		row := firstDataRow + i
		overbooking := ""
		if d.Overbooking {
			overbooking = fmt.Sprintf("+%d", d.OverbookedBy)
		}
		s.row(row,
			d.Date.Time(), d.RoomNights, d.EffectiveCapacity, d.Probability.InexactFloat64(),
			money(d.ExpectedRevenue), d.PickupDelta, money(d.DynamicThreshold),
			d.OccupancyPct.InexactFloat64(), overbooking, string(d.Recommendation), d.Rationale,
		)
		s.style(1, row, 1, row, r.date)
		s.style(2, row, 3, row, r.number)
		s.style(4, row, 4, row, r.percent)
		s.style(5, row, 5, row, r.money)
		s.style(6, row, 6, row, r.number)
		s.style(7, row, 7, row, r.money)
		s.style(8, row, 8, row, r.number)
		switch {
		case d.Overbooking:
			s.style(9, row, 10, row, r.alert)
		case d.Upgrade():
			s.style(10, row, 10, row, r.yes)
		default:
			s.style(9, row, 10, row, r.number)
		}
	}
	s.widths(12, 12, 10, 16, 16, 18, 18, 12, 12, 10, 60)
}

func (r *renderer) inventory(s *sheetWriter, in Input) {
	s.title(fmt.Sprintf("INVENTORY - %s", in.InventoryDate), 7, r.title)
	s.header(r.header, "Category", "Rooms", "Out of service", "Effective", "Entry level", "Average rate", "Upgrade to")

	for i, line := range in.Inventory {
		row := firstDataRow + i
		s.row(row,
			line.Category.Name, line.Total, line.OutOfService, line.Effective,
			yesNo(line.Category.EntryLevel), money(line.Category.AverageRate), string(line.Category.UpgradeTarget),
		)
		s.style(2, row, 5, row, r.number)
		s.style(6, row, 6, row, r.money)
		if line.OutOfService > 0 {
			s.style(3, row, 3, row, r.alert)
		}
	}
	s.widths(24, 10, 16, 12, 12, 14, 20)
}
