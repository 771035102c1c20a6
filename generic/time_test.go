package generic_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/upgrade-advisor/generic"
)

// =============================================================================
// DATE
// =============================================================================

func TestParseDate_AcceptedLayouts(t *testing.T) {
	want := generic.NewDate(2025, time.June, 1)

	for _, in := range []string{"2025-06-01", "01/06/2025", "1/6/2025", "  2025-06-01 "} {
		got, err := generic.ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseDate_Rejects(t *testing.T) {
	for _, in := range []string{"", "June 1st", "2025/13/45"} {
		_, err := generic.ParseDate(in)
		assert.True(t, errors.Is(err, generic.ErrInvalidInput), in)
	}
}

func TestDate_Arithmetic(t *testing.T) {
	d := generic.NewDate(2024, time.February, 28)

	assert.Equal(t, generic.NewDate(2024, time.February, 29), d.AddDays(1))
	assert.Equal(t, generic.NewDate(2024, time.March, 1), d.AddDays(2))
	assert.Equal(t, generic.NewDate(2023, time.February, 28), d.AddYears(-1))
	assert.Equal(t, 60, generic.DaysBetween(d.AddDays(-60), d))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AfterOrEqual(d))
	assert.Equal(t, "28/02/2024", d.Italian())
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Date generic.Date `json:"date"`
	}

	out, err := json.Marshal(payload{Date: generic.NewDate(2025, time.July, 14)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-07-14"}`, string(out))

	var in payload
	require.NoError(t, json.Unmarshal([]byte(`{"date":"14/07/2025"}`), &in))
	assert.Equal(t, generic.NewDate(2025, time.July, 14), in.Date)
}

// =============================================================================
// PERIOD
// =============================================================================

func TestPeriod_Contains_OpenBounds(t *testing.T) {
	d := generic.NewDate(2025, time.August, 10)

	assert.True(t, generic.AllTime.Contains(d))
	assert.True(t, generic.Period{Start: d}.Contains(d.AddDays(100)))
	assert.False(t, generic.Period{Start: d}.Contains(d.AddDays(-1)))
	assert.True(t, generic.Period{End: d}.Contains(d))
	assert.False(t, generic.Period{End: d}.Contains(d.AddDays(1)))
}

func TestPeriod_Overlaps(t *testing.T) {
	june := generic.Period{Start: generic.NewDate(2025, 6, 1), End: generic.NewDate(2025, 6, 30)}

	assert.True(t, june.Overlaps(generic.Period{Start: generic.NewDate(2025, 6, 30), End: generic.NewDate(2025, 7, 5)}))
	assert.False(t, june.Overlaps(generic.Period{Start: generic.NewDate(2025, 7, 1)}))
	assert.True(t, june.Overlaps(generic.AllTime))
	assert.Len(t, june.Days(), 30)
}

// =============================================================================
// TYPES
// =============================================================================

func TestOutOfServiceBlock_Covers_Inclusive(t *testing.T) {
	b := generic.OutOfServiceBlock{From: generic.NewDate(2025, 6, 10), To: generic.NewDate(2025, 6, 12), Rooms: 2}

	assert.False(t, b.Covers(generic.NewDate(2025, 6, 9)))
	assert.True(t, b.Covers(generic.NewDate(2025, 6, 10)))
	assert.True(t, b.Covers(generic.NewDate(2025, 6, 12)))
	assert.False(t, b.Covers(generic.NewDate(2025, 6, 13)))
}

func TestRoomCategory_Margin_Default(t *testing.T) {
	c := generic.RoomCategory{}
	assert.True(t, c.Margin().Equal(generic.DefaultMinMargin))

	c.MinMargin = generic.MustParseDecimal("0.4")
	assert.Equal(t, "0.4", c.Margin().String())
}

func TestMustParseDecimal_PanicsOnMalformed(t *testing.T) {
	assert.True(t, generic.MustParseDecimal("0.4").Equal(generic.DefaultMinMargin.Sub(generic.MustParseDecimal("0.2"))))
	assert.Panics(t, func() { generic.MustParseDecimal("0,4") })
}

func TestPersistenceError_MatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&generic.PersistenceError{Op: "upsert production", Key: "h1", Err: cause})

	assert.True(t, errors.Is(err, generic.ErrPersistence))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, generic.IsClientError(err))
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, generic.IsClientError(&generic.MissingColumnError{Column: "date"}))
	assert.True(t, generic.IsClientError(&generic.RowError{Row: 4, Err: generic.ErrInvalidInput}))
	assert.True(t, generic.IsNotFound(generic.ErrNotFound))
	assert.True(t, generic.IsDataUnavailable(&generic.DateError{Err: generic.ErrDataUnavailable}))
}
