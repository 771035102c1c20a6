/*
Package importer reads the property's BI spreadsheet exports.

PURPOSE:
  Turns an uploaded workbook into generic.ProductionRecord (daily
  production, the demand history) or generic.PickupRecord (on the books
  with booking velocity). The decision engine never sees spreadsheet
  layout; everything here ends in those two record shapes.

PIPELINE:
  1. Open the workbook (excelize) and read raw cells with their type
  2. Find the header row and classify the report (DetectReport)
  3. Resolve logical columns through the report's Profile
  4. Parse rows: weekday-prefixed dates, Italian number formats
  5. Collect rejected rows as RowError; keep going

FAILURES:
  A required column that cannot be resolved aborts the import with a
  MissingColumnError. A bad row is logged and skipped. A file with no
  usable rows at all is InvalidInput.

SEE ALSO:
  - profile.go: column layouts (TOML overridable)
  - columns.go: name / letter resolution
  - values.go: cell cleansing
*/
package importer

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/warp/upgrade-advisor/generic"
	"github.com/warp/upgrade-advisor/logger"
	"github.com/warp/upgrade-advisor/metrics"
	"github.com/xuri/excelize/v2"
)

// headerScanRows bounds the search for the header row below report titles.
const headerScanRows = 10

// Result is one parsed report.
type Result struct {
	BatchID    string
	Sheet      string
	HeaderRow  int // 1-based
	Detection  Detection
	Metadata   Metadata
	Mapping    Mapping
	Production []generic.ProductionRecord
	Pickup     []generic.PickupRecord
	Rejected   []*generic.RowError
}

// Imported is the number of records parsed.
func (r *Result) Imported() int {
	return len(r.Production) + len(r.Pickup)
}

// Importer parses workbooks according to its profiles.
type Importer struct {
	Profiles  Profiles
	RoomTypes []string
	Hotels    []string
	Log       logger.Logger
	Metrics   *metrics.Metrics
}

func New(profiles Profiles, log logger.Logger, m *metrics.Metrics) *Importer {
	if log == nil {
		log = logger.Nop()
	}
	return &Importer{Profiles: profiles, Log: log, Metrics: m}
}

// WithRoomTypes returns a copy that recognizes the given category names in
// report metadata.
func (im *Importer) WithRoomTypes(names []string) *Importer {
	cp := *im
	cp.RoomTypes = names
	return &cp
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// Detect classifies the first sheet that looks like a known report.
func (im *Importer) Detect(r io.Reader) (Detection, Metadata, error) {
	wb, err := openWorkbook(r)
	if err != nil {
		return Detection{}, Metadata{}, err
	}
	defer wb.Close()

	sh, header, det, err := im.pickSheet(wb, ReportUnknown)
	if err != nil {
		return Detection{}, Metadata{}, err
	}
	return det, im.metadata(sh, header), nil
}

// Import parses the workbook as want, or auto-detects when want is ReportUnknown.
func (im *Importer) Import(r io.Reader, want ReportType) (*Result, error) {
	wb, err := openWorkbook(r)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sh, header, det, err := im.pickSheet(wb, want)
	if err != nil {
		return nil, err
	}

	typ := want
	if typ == ReportUnknown {
		typ = det.Type
	}
	if !typ.Importable() {
		return nil, fmt.Errorf("%w: report type %q cannot be imported", generic.ErrInvalidInput, typ)
	}

	result := &Result{
		BatchID:   uuid.NewString(),
		Sheet:     sh.name,
		HeaderRow: header + 1,
		Detection: Detection{Type: typ, Confidence: det.Confidence},
		Metadata:  im.metadata(sh, header),
	}
	log := im.Log.With("batch", result.BatchID, "sheet", sh.name, "report", string(typ))

	switch typ {
	case ReportDailyProduction:
		err = parseProduction(sh, header, im.Profiles.Production, result)
	case ReportPickup:
		err = parsePickup(sh, header, im.Profiles.Pickup, result)
	}
	if err != nil {
		im.Metrics.Fail("import")
		log.Warn("import aborted", "error", err)
		return nil, err
	}

	for _, re := range result.Rejected {
		log.Warn("row skipped", "row", re.Row, "column", re.Column, "value", re.Value, "error", re.Err)
	}
	im.Metrics.ObserveImport(string(typ), result.Imported(), len(result.Rejected))

	if result.Imported() == 0 {
		return nil, fmt.Errorf("%w: no valid rows in sheet %q (%d rejected)", generic.ErrInvalidInput, sh.name, len(result.Rejected))
	}
	log.Info("workbook imported", "records", result.Imported(), "rejected", len(result.Rejected), "room_type", result.Metadata.RoomType)
	return result, nil
}

// ImportProduction parses a daily production report.
func (im *Importer) ImportProduction(r io.Reader) (*Result, error) {
	return im.Import(r, ReportDailyProduction)
}

// ImportPickup parses a pickup report.
func (im *Importer) ImportPickup(r io.Reader) (*Result, error) {
	return im.Import(r, ReportPickup)
}

// =============================================================================
// WORKBOOK
// =============================================================================

type sheet struct {
	name string
	rows [][]Cell
}

func (s *sheet) headers(row int) []string {
	if row >= len(s.rows) {
		return nil
	}
	out := make([]string, len(s.rows[row]))
	for i, c := range s.rows[row] {
		out[i] = strings.TrimSpace(c.Value)
	}
	return out
}

func (s *sheet) cell(row, col int) Cell {
	if row >= len(s.rows) || col >= len(s.rows[row]) {
		return Cell{}
	}
	return s.rows[row][col]
}

type workbook struct {
	file *excelize.File
}

func openWorkbook(r io.Reader) (*workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: not an Excel workbook: %v", generic.ErrInvalidInput, err)
	}
	return &workbook{file: f}, nil
}

func (wb *workbook) Close() error { return wb.file.Close() }

func (wb *workbook) load(name string) (*sheet, error) {
	raw, err := wb.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", generic.ErrInvalidInput, name, err)
	}

	sh := &sheet{name: name, rows: make([][]Cell, len(raw))}
	for r, row := range raw {
		cells := make([]Cell, len(row))
		for c, v := range row {
			cells[c] = Cell{Value: v}
			if v == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			typ, err := wb.file.GetCellType(name, axis)
			if err == nil {
				cells[c].Text = typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString
			}
		}
		sh.rows[r] = cells
	}
	return sh, nil
}

// pickSheet returns the first sheet whose header classifies as want (any
// importable type when want is unknown), falling back to the first sheet.
func (im *Importer) pickSheet(wb *workbook, want ReportType) (*sheet, int, Detection, error) {
	names := wb.file.GetSheetList()
	if len(names) == 0 {
		return nil, 0, Detection{}, fmt.Errorf("%w: workbook has no sheets", generic.ErrInvalidInput)
	}

	var first *sheet
	firstHeader := 0
	var firstDet Detection
	for _, name := range names {
		sh, err := wb.load(name)
		if err != nil {
			return nil, 0, Detection{}, err
		}
		header, det := im.findHeader(sh, want)
		matched := det.Type != ReportUnknown && (want == ReportUnknown || det.Type == want)
		if matched {
			return sh, header, det, nil
		}
		if first == nil {
			first, firstHeader, firstDet = sh, header, det
		}
	}
	return first, firstHeader, firstDet, nil
}

// findHeader scans the top rows for one that classifies as a report.
// When none does, the first row naming a required column of want's
// profile wins, then row 0.
func (im *Importer) findHeader(sh *sheet, want ReportType) (int, Detection) {
	limit := min(headerScanRows, len(sh.rows))
	for i := 0; i < limit; i++ {
		det := DetectReport(sh.headers(i))
		if det.Type != ReportUnknown && (want == ReportUnknown || det.Type == want) {
			return i, det
		}
	}

	profile, ok := im.profileFor(want)
	if ok {
		for i := 0; i < limit; i++ {
			headers := sh.headers(i)
			for _, spec := range profile.Columns {
				if !spec.Required {
					continue
				}
				if _, found := byName(headers, spec, nil); found {
					return i, Detection{Type: want}
				}
			}
		}
	}
	return 0, Detection{Type: ReportUnknown}
}

func (im *Importer) profileFor(t ReportType) (Profile, bool) {
	switch t {
	case ReportDailyProduction:
		return im.Profiles.Production, true
	case ReportPickup:
		return im.Profiles.Pickup, true
	}
	return Profile{}, false
}

func (im *Importer) metadata(sh *sheet, header int) Metadata {
	if sh == nil {
		return Metadata{}
	}
	var body [][]Cell
	if header+1 < len(sh.rows) {
		body = sh.rows[header+1:]
	}
	md := DetectMetadata(sh.headers(header), body, im.RoomTypes, im.Hotels)
	if md.Hotel == "" && header > 0 {
		// Report titles sit above the header row.
		md.Hotel = DetectMetadata(nil, sh.rows[:header], nil, im.Hotels).Hotel
	}
	return md
}

// skipRow reports whether a date cell marks a header, filter or total row.
func skipRow(c Cell, markers []string) bool {
	if c.Empty() {
		return true
	}
	if !c.Text {
		return false
	}
	v := strings.ToLower(c.Value)
	for _, m := range markers {
		if strings.Contains(v, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
