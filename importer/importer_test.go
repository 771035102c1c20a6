package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/upgrade-advisor/generic"
	"github.com/warp/upgrade-advisor/metrics"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook builds an in-memory xlsx with one sheet per entry.
func buildWorkbook(t *testing.T, sheets map[string][][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			if name != "Sheet1" {
				require.NoError(t, f.SetSheetName("Sheet1", name))
			}
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			axis, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(name, axis, &r))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func singleSheet(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	return buildWorkbook(t, map[string][][]interface{}{"Sheet1": rows})
}

var productionHeader = []interface{}{
	"Data", "Giorno", "% Occ.", "vs SPIT", "vs AP", "Room nights", "vs SPIT", "vs AP",
	"", "", "", "ADR Cam", "vs SPIT", "vs AP", "", "", "", "Room Revenue", "vs SPIT", "vs AP",
}

func productionRow(date interface{}, weekday string, occ interface{}, rn interface{}, rnVsSpit interface{}, adr interface{}, revenue interface{}) []interface{} {
	return []interface{}{
		date, weekday, occ, "", "", rn, rnVsSpit, "",
		"", "", "", adr, "", "", "", "", "", revenue, "", "",
	}
}

var pickupHeader = []interface{}{"Soggiorno", "Roomnights", "vs 1gg", "vs 2gg", "vs 3gg", "vs 7gg", "vs 7gg SPIT"}

func TestImportProduction_ItalianTextCells(t *testing.T) {
	// GIVEN: A production export with a title, a filter row and Italian formats
	buf := singleSheet(t,
		[]interface{}{"Cala Cuncheddi - Produzione giornaliera"},
		productionHeader,
		[]interface{}{"Filtri: Classic Garden"},
		productionRow("Dom 01/06/2025", "Domenica", "85,5%", "120", "12", "1.234,50 €", "148.140,00 €"),
		productionRow("Lun 02/06/2025", "Lunedì", "70%", "98", "-3", "300,00", "29.400,00"),
	)

	// WHEN: Importing it
	res, err := New(DefaultProfiles(), nil, nil).ImportProduction(buf)

	// THEN: Both days are parsed with cleansed values
	require.NoError(t, err)
	require.Len(t, res.Production, 2)
	assert.Empty(t, res.Rejected)
	assert.Equal(t, ReportDailyProduction, res.Detection.Type)
	assert.Equal(t, 2, res.HeaderRow)
	assert.Equal(t, "Cala Cuncheddi", res.Metadata.Hotel)
	assert.NotEmpty(t, res.BatchID)

	first := res.Production[0]
	assert.Equal(t, generic.NewDate(2025, time.June, 1), first.Date)
	assert.Equal(t, "Domenica", first.Weekday)
	assert.Equal(t, 120, first.RoomNights)
	assert.Equal(t, 12, first.VsSamePeriodRN)
	assert.True(t, first.OccupancyPct.Equal(generic.MustParseDecimal("85.5")))
	assert.True(t, first.ADR.Equal(generic.MustParseDecimal("1234.50")))
	assert.True(t, first.RoomRevenue.Equal(generic.MustParseDecimal("148140")))
	assert.True(t, first.Fields.Has(generic.FieldRoomNights|generic.FieldVsSamePeriodRN|generic.FieldADR))
	assert.False(t, first.Fields.Has(generic.FieldVsLastYearRN), "empty cells leave the field unset")

	assert.Equal(t, -3, res.Production[1].VsSamePeriodRN)
}

func TestImportProduction_NumericCellsAndFractionalOccupancy(t *testing.T) {
	// GIVEN: Dates as Excel dates and occupancy exported as fractions
	buf := singleSheet(t,
		productionHeader,
		productionRow(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "Dom", 0.85, 120, 4, 310.5, 37260),
		productionRow(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), "Lun", 0.5, 70, 0, 290, 20300),
	)

	res, err := New(DefaultProfiles(), nil, nil).ImportProduction(buf)
	require.NoError(t, err)
	require.Len(t, res.Production, 2)

	assert.Equal(t, generic.NewDate(2025, time.June, 1), res.Production[0].Date)
	assert.True(t, res.Production[0].OccupancyPct.Equal(generic.MustParseDecimal("85")), "fractions scale to percent")
	assert.True(t, res.Production[1].OccupancyPct.Equal(generic.MustParseDecimal("50")))
	assert.True(t, res.Production[0].ADR.Equal(generic.MustParseDecimal("310.5")), "numeric cells are not locale-cleansed")
}

func TestImportProduction_NegativeRoomNightsRejected(t *testing.T) {
	// GIVEN: A day with negative sold room nights next to a valid one
	buf := singleSheet(t,
		productionHeader,
		productionRow("Dom 01/06/2025", "Dom", "80%", "120", "-4", "300", "36000"),
		productionRow("Lun 02/06/2025", "Lun", "80%", "-2", "0", "300", "30000"),
	)

	res, err := New(DefaultProfiles(), nil, nil).ImportProduction(buf)

	// THEN: Only the valid day is kept; the negative comparison column is fine
	require.NoError(t, err)
	require.Len(t, res.Production, 1)
	assert.Equal(t, 120, res.Production[0].RoomNights)
	assert.Equal(t, -4, res.Production[0].VsSamePeriodRN)

	require.Len(t, res.Rejected, 1)
	assert.Equal(t, 3, res.Rejected[0].Row)
	assert.Equal(t, ColRoomNights, res.Rejected[0].Column)
	assert.ErrorIs(t, res.Rejected[0], generic.ErrInvalidInput)
}

func TestImportProduction_BadRowIsSkipped(t *testing.T) {
	// GIVEN: One good row and one with a non-numeric room-night cell
	m := metrics.New("test")
	buf := singleSheet(t,
		productionHeader,
		productionRow("Dom 01/06/2025", "Dom", "80%", "100", "0", "300", "30000"),
		productionRow("Lun 02/06/2025", "Lun", "80%", "n/d", "0", "300", "30000"),
		productionRow("32/13/2025", "Mar", "80%", "100", "0", "300", "30000"),
	)

	res, err := New(DefaultProfiles(), nil, m).ImportProduction(buf)

	// THEN: The good row is kept, each bad row is reported with its sheet row
	require.NoError(t, err)
	require.Len(t, res.Production, 1)
	require.Len(t, res.Rejected, 2)
	assert.Equal(t, 3, res.Rejected[0].Row)
	assert.Equal(t, ColRoomNights, res.Rejected[0].Column)
	assert.True(t, errors.Is(res.Rejected[0], generic.ErrInvalidInput))
	assert.Equal(t, 4, res.Rejected[1].Row)
	assert.Equal(t, ColDate, res.Rejected[1].Column)
}

func TestImportProduction_NoValidRows(t *testing.T) {
	buf := singleSheet(t,
		productionHeader,
		productionRow("Dom 01/06/2025", "Dom", "80%", "tanti", "0", "300", "30000"),
	)

	_, err := New(DefaultProfiles(), nil, nil).ImportProduction(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrInvalidInput))
}

func TestImportPickup(t *testing.T) {
	// GIVEN: A pickup export with an empty cell and a totals row
	buf := singleSheet(t,
		pickupHeader,
		[]interface{}{"01/07/2025", 40, 1, 2, 3, 9, 5},
		[]interface{}{"02/07/2025", 35, "", "", "", 2, 6},
		[]interface{}{"Totale", 75, 1, 2, 3, 11, 11},
	)

	res, err := New(DefaultProfiles(), nil, nil).ImportPickup(buf)

	// THEN: Two stay dates, empty pickup read as zero
	require.NoError(t, err)
	require.Len(t, res.Pickup, 2)
	assert.Equal(t, generic.PickupRecord{
		StayDate:            generic.NewDate(2025, time.July, 1),
		RoomNightsOTB:       40,
		Pickup1Day:          1,
		Pickup2Day:          2,
		Pickup3Day:          3,
		Pickup7Day:          9,
		Pickup7DayPriorYear: 5,
	}, res.Pickup[0])
	assert.Equal(t, 0, res.Pickup[1].Pickup1Day)
	assert.Equal(t, -4, res.Pickup[1].Delta())
	assert.Equal(t, 5, res.Mapping[ColPickup7])
	assert.Equal(t, 6, res.Mapping[ColPickup7LastYear])
}

func TestImportPickup_MissingRequiredColumn(t *testing.T) {
	// GIVEN: No prior-year 7-day column
	buf := singleSheet(t,
		[]interface{}{"Soggiorno", "Roomnights", "vs 1gg", "vs 2gg", "vs 3gg", "vs 7gg"},
		[]interface{}{"01/07/2025", 40, 1, 2, 3, 9},
	)

	_, err := New(DefaultProfiles(), nil, nil).ImportPickup(buf)

	// THEN: The whole import is aborted
	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrMissingColumn))
	var mc *generic.MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, ColPickup7LastYear, mc.Column)
	assert.Equal(t, "Sheet1", mc.Sheet)
}

func TestImport_AutoDetectsSheet(t *testing.T) {
	// GIVEN: A workbook whose first sheet is a cover page
	buf := buildWorkbook(t, map[string][][]interface{}{
		"Cover": {{"Report"}},
	})
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.NewSheet("Pickup")
	require.NoError(t, err)
	hdr := pickupHeader
	require.NoError(t, f.SetSheetRow("Pickup", "A1", &hdr))
	row := []interface{}{"01/07/2025", 40, 1, 2, 3, 9, 5}
	require.NoError(t, f.SetSheetRow("Pickup", "A2", &row))
	var out bytes.Buffer
	require.NoError(t, f.Write(&out))

	// WHEN: Importing without naming a report type
	res, err := New(DefaultProfiles(), nil, nil).Import(&out, ReportUnknown)

	// THEN: The pickup sheet is found
	require.NoError(t, err)
	assert.Equal(t, "Pickup", res.Sheet)
	assert.Equal(t, ReportPickup, res.Detection.Type)
	assert.Len(t, res.Pickup, 1)
}

func TestImport_RejectsNonImportableReport(t *testing.T) {
	buf := singleSheet(t,
		[]interface{}{"Mese", "Occ.%", "Room Revenue", "ADR", "RevPAR"},
		[]interface{}{"Giugno 2025", "80", "100", "200", "160"},
	)

	im := New(DefaultProfiles(), nil, nil)
	det, md, err := im.Detect(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, ReportPortfolioProduction, det.Type)
	assert.Equal(t, "Giugno 2025", md.Period)

	_, err = im.Import(bytes.NewReader(buf.Bytes()), ReportUnknown)
	assert.True(t, errors.Is(err, generic.ErrInvalidInput))
}

func TestImport_NotAWorkbook(t *testing.T) {
	_, err := New(DefaultProfiles(), nil, nil).ImportPickup(strings.NewReader("date,rn\n2025-06-01,3\n"))
	assert.True(t, errors.Is(err, generic.ErrInvalidInput))
}
