package generic

// =============================================================================
// PERIOD - Inclusive date range used for queries and out-of-service blocks
// =============================================================================

// Period is the inclusive range [Start, End].
// A zero Start or End leaves that side unbounded, so the zero Period
// matches every date.
type Period struct {
	Start Date
	End   Date
}

// AllTime matches every date.
var AllTime = Period{}

// Contains returns true if d is within the period.
func (p Period) Contains(d Date) bool {
	if !p.Start.IsZero() && d.Before(p.Start) {
		return false
	}
	if !p.End.IsZero() && d.After(p.End) {
		return false
	}
	return true
}

// Days returns every day in the period. Both bounds must be set.
func (p Period) Days() []Date {
	if p.Start.IsZero() || p.End.IsZero() {
		return nil
	}
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Valid reports whether the bounds are ordered (unbounded sides are always valid).
func (p Period) Valid() bool {
	if p.Start.IsZero() || p.End.IsZero() {
		return true
	}
	return p.Start.BeforeOrEqual(p.End)
}

func (p Period) String() string {
	bound := func(d Date) string {
		if d.IsZero() {
			return "*"
		}
		return d.String()
	}
	return "[" + bound(p.Start) + ", " + bound(p.End) + "]"
}

// Overlaps returns true if the two periods share at least one day.
func (p Period) Overlaps(other Period) bool {
	if !p.End.IsZero() && !other.Start.IsZero() && p.End.Before(other.Start) {
		return false
	}
	if !other.End.IsZero() && !p.Start.IsZero() && other.End.Before(p.Start) {
		return false
	}
	return true
}
