package importer

import (
	"regexp"
	"sort"
	"strings"
)

// =============================================================================
// DETECTION - Report type and metadata from headers and cells
// =============================================================================

// ReportType identifies which BI export a workbook is.
type ReportType string

const (
	ReportUnknown             ReportType = ""
	ReportPickup              ReportType = "pickup"
	ReportDailyProduction     ReportType = "daily_production"
	ReportPortfolioProduction ReportType = "portfolio_production"
	ReportSegmentProduction   ReportType = "segment_production"
)

// Importable reports whether the importer can parse records from the type.
func (t ReportType) Importable() bool {
	return t == ReportPickup || t == ReportDailyProduction
}

// Detection is the outcome of DetectReport: the type and how many of its
// marker columns were found.
type Detection struct {
	Type       ReportType `json:"type"`
	Confidence int        `json:"confidence"`
}

var pickupMarkers = []string{"vs 1gg", "vs 2gg", "vs 3gg", "vs 7gg", "vs 7gg spit"}

// DetectReport classifies a header row.
func DetectReport(headers []string) Detection {
	cols := make([]string, 0, len(headers))
	for _, h := range headers {
		cols = append(cols, strings.ToLower(strings.TrimSpace(h)))
	}
	anyCol := func(match func(string) bool) bool {
		for _, c := range cols {
			if match(c) {
				return true
			}
		}
		return false
	}
	contains := func(sub string) bool {
		return anyCol(func(c string) bool { return strings.Contains(c, sub) })
	}
	equals := func(s string) bool {
		return anyCol(func(c string) bool { return c == s })
	}
	count := func(patterns ...string) int {
		n := 0
		for _, p := range patterns {
			if contains(p) {
				n++
			}
		}
		return n
	}

	if found := count(pickupMarkers...); (equals("soggiorno") || equals("data")) && found >= 2 {
		return Detection{Type: ReportPickup, Confidence: found}
	}
	if contains("mese") && (contains("occ.%") || contains("occupazione")) {
		if c := count("room revenue", "adr", "revpar", "mese"); c >= 3 {
			return Detection{Type: ReportPortfolioProduction, Confidence: c}
		}
	}
	if contains("data") && contains("giorno") {
		if c := count("% occ", "room nights", "adr", "data"); c >= 3 {
			return Detection{Type: ReportDailyProduction, Confidence: c}
		}
	}
	if contains("segment") && (contains("perc") || contains("%")) {
		return Detection{Type: ReportSegmentProduction, Confidence: 3}
	}
	return Detection{Type: ReportUnknown}
}

// Metadata is what can be inferred about a report beyond its columns.
type Metadata struct {
	RoomType string `json:"room_type,omitempty"`
	Period   string `json:"period,omitempty"`
	Hotel    string `json:"hotel,omitempty"`
}

// DefaultRoomTypes are searched when the caller knows no categories.
var DefaultRoomTypes = []string{
	"Classic Garden", "Classic Sea View", "Superior Sea View",
	"Executive", "Deluxe", "Family", "Junior Suite", "Suite",
}

// DefaultHotels are the property names recognized in report titles.
var DefaultHotels = []string{"Cala Cuncheddi"}

var italianMonths = []string{
	"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
	"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre",
}

var yearRe = regexp.MustCompile(`20\d{2}`)

// DetectMetadata scans cells for a room type (under a "tipologia"/"camera"
// column), an Italian month with a year (under a "data"/"periodo"/"mese"
// column) and a known hotel name (anywhere).
func DetectMetadata(headers []string, rows [][]Cell, roomTypes, hotels []string) Metadata {
	if len(roomTypes) == 0 {
		roomTypes = DefaultRoomTypes
	}
	if len(hotels) == 0 {
		hotels = DefaultHotels
	}

	roomTypes = longestFirst(roomTypes)

	var md Metadata

	for i, h := range headers {
		if md.RoomType != "" {
			break
		}
		hl := strings.ToLower(h)
		if !strings.Contains(hl, "tipologia") && !strings.Contains(hl, "camera") {
			continue
		}
		for _, cell := range columnValues(rows, i) {
			if rt := matchName(cell, roomTypes); rt != "" {
				md.RoomType = rt
				break
			}
		}
	}

	for i, h := range headers {
		if md.Period != "" {
			break
		}
		hl := strings.ToLower(h)
		if !strings.Contains(hl, "data") && !strings.Contains(hl, "periodo") && !strings.Contains(hl, "mese") {
			continue
		}
		for _, cell := range columnValues(rows, i) {
			if p := matchPeriod(cell); p != "" {
				md.Period = p
				break
			}
		}
	}

	for _, row := range rows {
		for _, c := range row {
			if name := matchName(strings.ToLower(c.Value), hotels); name != "" {
				md.Hotel = name
				return md
			}
		}
	}
	return md
}

func columnValues(rows [][]Cell, i int) []string {
	var out []string
	for _, row := range rows {
		if i < len(row) && !row[i].Empty() {
			out = append(out, strings.ToLower(row[i].Value))
		}
	}
	return out
}

// longestFirst orders names so "Junior Suite" is tried before "Suite".
func longestFirst(names []string) []string {
	out := append([]string(nil), names...)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

func matchName(cell string, names []string) string {
	for _, n := range names {
		if n != "" && strings.Contains(cell, strings.ToLower(n)) {
			return n
		}
	}
	return ""
}

func matchPeriod(cell string) string {
	for _, m := range italianMonths {
		if !strings.Contains(cell, m) {
			continue
		}
		if y := yearRe.FindString(cell); y != "" {
			return strings.ToUpper(m[:1]) + m[1:] + " " + y
		}
	}
	return ""
}
