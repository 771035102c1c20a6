package upgrade_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/upgrade-advisor/generic"
	"github.com/warp/upgrade-advisor/generic/store"
	"github.com/warp/upgrade-advisor/logger"
	"github.com/warp/upgrade-advisor/metrics"
	"github.com/warp/upgrade-advisor/upgrade"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestAdvisor(t *testing.T) (*upgrade.Advisor, *store.Memory) {
	t.Helper()
	m := newInventory(t)
	a := upgrade.NewAdvisor(m, logger.Nop(), metrics.New("test"))
	a.Today = func() generic.Date { return day(30) }
	return a, m
}

func seedSeries(t *testing.T, m *store.Memory, key generic.SeriesKey) {
	t.Helper()
	ctx := context.Background()

	var records []generic.ProductionRecord
	for i, rn := range []int{5, 7, 7, 9} {
		records = append(records, production(day(i), rn, 1))
	}
	_, err := m.UpsertProduction(ctx, key, records)
	require.NoError(t, err)

	_, err = m.UpsertPickup(ctx, key, []generic.PickupRecord{
		{StayDate: day(31), RoomNightsOTB: 6, Pickup7Day: 3, Pickup7DayPriorYear: 1},
		{StayDate: day(32), RoomNightsOTB: 9},
		{StayDate: day(50), RoomNightsOTB: 2},
	})
	require.NoError(t, err)
}

// =============================================================================
// RECOMMEND
// =============================================================================

func TestAdvisor_Recommend_CategorySeries(t *testing.T) {
	ctx := context.Background()
	a, m := newTestAdvisor(t)
	seedSeries(t, m, generic.SeriesKey{HotelID: "h1", CategoryID: "classic"})
	require.NoError(t, m.AddBlock(ctx, block("classic", day(32), day(32), 2)))

	recs, err := a.Recommend(ctx, "h1", "classic", generic.Period{Start: day(31), End: day(40)})
	require.NoError(t, err)

	require.Len(t, recs.Decisions, 2, "day 50 is outside the period")
	first, second := recs.Decisions[0], recs.Decisions[1]

	assert.Equal(t, 10, first.EffectiveCapacity)
	assert.Equal(t, 2, first.PickupDelta)
	assert.True(t, first.Probability.Equal(dec("0.75")))

	assert.Equal(t, 8, second.EffectiveCapacity)
	assert.True(t, second.Overbooking)
	assert.Equal(t, "overbooking of 1 rooms", second.Rationale)
	assert.Equal(t, "Classic", recs.Category.Name)
}

func TestAdvisor_Recommend_IgnoresNegativeHistory(t *testing.T) {
	// GIVEN: Valid history plus one stored day with negative room nights
	ctx := context.Background()
	a, m := newTestAdvisor(t)
	key := generic.SeriesKey{HotelID: "h1", CategoryID: "classic"}
	seedSeries(t, m, key)
	_, err := m.UpsertProduction(ctx, key, []generic.ProductionRecord{production(day(10), -2, 0)})
	require.NoError(t, err)

	// WHEN: Recommending
	recs, err := a.Recommend(ctx, "h1", "classic", generic.AllTime)

	// THEN: The bad day is left out and every OTB date is still decided
	require.NoError(t, err)
	assert.Equal(t, 4, recs.Distribution.Observations())
	assert.Len(t, recs.Decisions, 3)
}

func TestAdvisor_Recommend_FallsBackToHotelSeries(t *testing.T) {
	a, m := newTestAdvisor(t)
	seedSeries(t, m, generic.SeriesKey{HotelID: "h1"})

	recs, err := a.Recommend(context.Background(), "h1", "suite", generic.AllTime)
	require.NoError(t, err)
	assert.Len(t, recs.Decisions, 3)
	assert.Equal(t, 4, recs.Decisions[0].EffectiveCapacity)
}

func TestAdvisor_Recommend_Errors(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAdvisor(t)

	_, err := a.Recommend(ctx, "h1", "classic", generic.AllTime)
	assert.ErrorIs(t, err, generic.ErrDataUnavailable)

	_, err = a.Recommend(ctx, "nope", "classic", generic.AllTime)
	assert.ErrorIs(t, err, generic.ErrNotFound)

	_, err = a.Recommend(ctx, "h1", "penthouse", generic.AllTime)
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

// =============================================================================
// TREND / INVENTORY
// =============================================================================

func TestAdvisor_Trend_UsesConfiguredWindow(t *testing.T) {
	a, m := newTestAdvisor(t)
	seedSeries(t, m, generic.SeriesKey{HotelID: "h1"})
	a.TrendWindow = 28 // cutoff day(2)

	tr, err := a.Trend(context.Background(), generic.SeriesKey{HotelID: "h1", CategoryID: "classic"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 28, tr.WindowDays)
	assert.Equal(t, 2, tr.Days)
	assert.Equal(t, 16, tr.RoomNights)
}

func TestAdvisor_Inventory(t *testing.T) {
	ctx := context.Background()
	a, m := newTestAdvisor(t)
	require.NoError(t, m.AddBlock(ctx, block("classic", day(0), day(40), 3)))

	lines, err := a.Inventory(ctx, "h1", day(30))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "Classic", lines[0].Category.Name)
	assert.Equal(t, 10, lines[0].Total)
	assert.Equal(t, 3, lines[0].OutOfService)
	assert.Equal(t, 7, lines[0].Effective)
	assert.Equal(t, 4, lines[1].Effective)
}

// =============================================================================
// OUT OF SERVICE
// =============================================================================

func TestAdvisor_EndOutOfService_TruncatesToYesterday(t *testing.T) {
	// GIVEN: a block running day 20..40 and today = day 30
	// WHEN: ended early
	// THEN: To = day 29, and the block no longer reduces capacity today

	ctx := context.Background()
	a, _ := newTestAdvisor(t)

	b, err := a.DeclareOutOfService(ctx, generic.OutOfServiceBlock{HotelID: "h1", CategoryID: "classic", From: day(20), To: day(40), Rooms: 2, Reason: "renovation"})
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)

	ended, err := a.EndOutOfService(ctx, "h1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, day(29), ended.To)

	active, err := a.ActiveBlocks(ctx, "h1")
	require.NoError(t, err)
	assert.Empty(t, active)

	lines, err := a.Inventory(ctx, "h1", day(30))
	require.NoError(t, err)
	assert.Equal(t, 10, lines[0].Effective)
}

func TestAdvisor_EndOutOfService_AlreadyEnded_Unchanged(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAdvisor(t)

	b, err := a.DeclareOutOfService(ctx, generic.OutOfServiceBlock{HotelID: "h1", CategoryID: "classic", From: day(1), To: day(5), Rooms: 1})
	require.NoError(t, err)

	ended, err := a.EndOutOfService(ctx, "h1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, day(5), ended.To)
}

func TestAdvisor_EndOutOfService_NotStarted_Refused(t *testing.T) {
	// GIVEN: a block running day 35..40 and today = day 30
	ctx := context.Background()
	a, m := newTestAdvisor(t)

	b, err := a.DeclareOutOfService(ctx, generic.OutOfServiceBlock{HotelID: "h1", CategoryID: "classic", From: day(35), To: day(40), Rooms: 1})
	require.NoError(t, err)

	// WHEN: ended early
	_, err = a.EndOutOfService(ctx, "h1", b.ID)

	// THEN: refused, and the stored range is untouched
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
	stored, err := m.GetBlock(ctx, "h1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, day(40), stored.To)
	assert.True(t, generic.Period{Start: stored.From, End: stored.To}.Valid())
}

func TestAdvisor_DeclareOutOfService_Validation(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAdvisor(t)

	_, err := a.DeclareOutOfService(ctx, generic.OutOfServiceBlock{HotelID: "h1", CategoryID: "classic", From: day(5), To: day(1), Rooms: 1})
	assert.ErrorIs(t, err, generic.ErrInvalidInput)

	_, err = a.DeclareOutOfService(ctx, generic.OutOfServiceBlock{HotelID: "h1", CategoryID: "classic", From: day(1), To: day(5), Rooms: 0})
	assert.ErrorIs(t, err, generic.ErrInvalidInput)

	_, err = a.DeclareOutOfService(ctx, generic.OutOfServiceBlock{HotelID: "h1", CategoryID: "penthouse", From: day(1), To: day(5), Rooms: 1})
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestAdvisor_SaveCategory_Validation(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAdvisor(t)

	saved, err := a.SaveCategory(ctx, generic.RoomCategory{ID: "family", HotelID: "h1", Name: "Family", Rooms: 2, AverageRate: dec("495"), MinMargin: dec("1")})
	require.NoError(t, err)
	assert.True(t, saved.MinMargin.Equal(dec("1")))

	_, err = a.SaveCategory(ctx, generic.RoomCategory{ID: "x", HotelID: "h1", Name: "X"})
	assert.ErrorIs(t, err, generic.ErrInvalidInput, "a zero margin is not replaced by the default")

	_, err = a.SaveCategory(ctx, generic.RoomCategory{ID: "x", HotelID: "h1", MinMargin: dec("1.5")})
	assert.ErrorIs(t, err, generic.ErrInvalidInput)

	_, err = a.SaveCategory(ctx, generic.RoomCategory{ID: "x", HotelID: "h1", UpgradeTarget: "x"})
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
}
