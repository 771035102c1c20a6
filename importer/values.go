package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/upgrade-advisor/generic"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// CELL VALUES - Locale-aware cleansing of exported cells
// =============================================================================

// Cell is one raw cell. Text is true for string cells; numeric cells carry
// Excel's canonical form ("1234.5", date serials) and are not cleansed.
type Cell struct {
	Value string
	Text  bool
}

func (c Cell) Empty() bool { return strings.TrimSpace(c.Value) == "" }

// Italian weekday abbreviations the BI tool puts in front of dates ("Dom 01/06/2025").
var weekdayPrefixes = []string{"dom", "lun", "mar", "mer", "gio", "ven", "sab"}

// ParseDateCell reads a date from a text cell (optionally prefixed by a
// weekday) or from an Excel serial number.
func ParseDateCell(c Cell) (generic.Date, error) {
	s := strings.TrimSpace(c.Value)
	if s == "" {
		return generic.Date{}, fmt.Errorf("%w: empty date", generic.ErrInvalidInput)
	}

	if !c.Text {
		if serial, err := decimal.NewFromString(s); err == nil {
			t, err := excelize.ExcelDateToTime(serial.InexactFloat64(), false)
			if err != nil {
				return generic.Date{}, fmt.Errorf("%w: date serial %s: %v", generic.ErrInvalidInput, s, err)
			}
			return generic.DateOf(t), nil
		}
	}

	parts := strings.Fields(s)
	if len(parts) > 1 && hasWeekdayPrefix(parts[0]) {
		s = parts[1]
	}
	d, err := generic.ParseDate(s)
	switch {
	case err == nil:
		return d, nil
	case len(parts) > 1:
		// "01/06/2025 00:00:00"
		return generic.ParseDate(parts[0])
	case len(s) > 10 && s[4] == '-':
		// "2025-06-01T00:00:00Z"
		return generic.ParseDate(s[:10])
	}
	return d, err
}

func hasWeekdayPrefix(word string) bool {
	word = strings.ToLower(word)
	for _, p := range weekdayPrefixes {
		if strings.Contains(word, p) {
			return true
		}
	}
	return false
}

// ParseAmount reads a money or count value. Text cells use the Italian
// format: "." separates thousands and "," is the decimal mark.
func ParseAmount(c Cell) (decimal.Decimal, error) {
	s := strings.TrimSpace(c.Value)
	if c.Text {
		s = strings.ReplaceAll(s, "€", "")
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
		s = strings.TrimSpace(s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: not a number: %q", generic.ErrInvalidInput, c.Value)
	}
	return d, nil
}

// ParsePercent reads a percentage. Text cells drop "%" and use "," as the
// decimal mark; thousands separators are not expected.
func ParsePercent(c Cell) (decimal.Decimal, error) {
	s := strings.TrimSpace(c.Value)
	if c.Text {
		s = strings.ReplaceAll(s, "%", "")
		s = strings.ReplaceAll(s, ",", ".")
		s = strings.TrimSpace(s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: not a percentage: %q", generic.ErrInvalidInput, c.Value)
	}
	return d, nil
}

// ParseCount reads an integer, truncating any fraction.
func ParseCount(c Cell) (int, error) {
	d, err := ParseAmount(c)
	if err != nil {
		return 0, err
	}
	return int(d.IntPart()), nil
}
