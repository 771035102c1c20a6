package generic

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - Calendar day (stay dates, production dates, out-of-service bounds)
// =============================================================================

// Date is a calendar day with no time-of-day or location.
// It is comparable and safe to use as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const (
	isoLayout     = "2006-01-02"
	italianLayout = "02/01/2006"
)

// NewDate normalizes the components, so NewDate(2025, 2, 30) is March 2.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func Today() Date {
	return DateOf(time.Now())
}

// ParseDate accepts ISO (2025-06-01) and day-first (01/06/2025, 1/6/2025) forms.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("%w: empty date", ErrInvalidInput)
	}
	if t, err := time.Parse(isoLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(italianLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse("2/1/2006", s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: unrecognized date %q", ErrInvalidInput, s)
}

func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) Time() time.Time { return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC) }
func (d Date) IsZero() bool    { return d == Date{} }

// Comparison
func (d Date) Before(other Date) bool        { return d.compare(other) < 0 }
func (d Date) After(other Date) bool         { return d.compare(other) > 0 }
func (d Date) Equal(other Date) bool         { return d == other }
func (d Date) BeforeOrEqual(other Date) bool { return d.compare(other) <= 0 }
func (d Date) AfterOrEqual(other Date) bool  { return d.compare(other) >= 0 }

func (d Date) compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return d.Year - other.Year
	case d.Month != other.Month:
		return int(d.Month) - int(other.Month)
	default:
		return d.Day - other.Day
	}
}

// Arithmetic
func (d Date) AddDays(n int) Date    { return DateOf(d.Time().AddDate(0, 0, n)) }
func (d Date) AddYears(n int) Date   { return DateOf(d.Time().AddDate(n, 0, 0)) }
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

func (d Date) String() string { return d.Time().Format(isoLayout) }

// Italian returns the day-first form used by the hotel's BI exports.
func (d Date) Italian() string { return d.Time().Format(italianLayout) }

func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func DaysBetween(from, to Date) int {
	return int(to.Time().Sub(from.Time()).Hours() / 24)
}
