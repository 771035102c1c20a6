/*
scenarios_test.go - Tests for demo scenarios and the gauge scheduler

Loads each scenario through the HTTP API and checks the state it leaves
behind is usable: the preset hotel, its series, the maintenance block and
the recommendations computed on top of them.
*/
package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/upgrade-advisor/factory"
	"github.com/warp/upgrade-advisor/generic"
)

func (s *testServer) loadScenario(t *testing.T, id string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestScenario_List(t *testing.T) {
	s := setupTestHandler(t)

	list := decodeBody[[]ScenarioDTO](t, s.do(t, http.MethodGet, "/api/scenarios", nil))
	require.Len(t, list, 2)
	assert.Equal(t, ScenarioPreset, list[0].ID)
	assert.Equal(t, ScenarioDemo, list[1].ID)

	rec := s.do(t, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestScenario_Preset(t *testing.T) {
	s := setupTestHandler(t)

	// GIVEN: The preset scenario
	s.loadScenario(t, ScenarioPreset)

	// THEN: The hotel exists with its eight categories and no series
	hotel := decodeBody[HotelDTO](t, s.do(t, http.MethodGet, "/api/hotels/"+factory.CalaCuncheddiID, nil))
	assert.Len(t, hotel.Categories, 8)
	assert.Equal(t, 85, hotel.TotalRooms)

	rec := s.do(t, http.MethodGet, "/api/hotels/"+factory.CalaCuncheddiID+"/categories/classic-garden/recommendations", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "no production loaded")

	current := decodeBody[ScenarioDTO](t, s.do(t, http.MethodGet, "/api/scenarios/current", nil))
	assert.Equal(t, ScenarioPreset, current.ID)
}

func TestScenario_DemoSeason(t *testing.T) {
	s := setupTestHandler(t)

	// GIVEN: The demo season loaded on 2025-06-01
	s.loadScenario(t, ScenarioDemo)
	base := "/api/hotels/" + factory.CalaCuncheddiID

	// THEN: The entry-level category gets a decision for every night on the books
	rec := s.do(t, http.MethodGet, base+"/categories/classic-garden/recommendations", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	recs := decodeBody[RecommendationsDTO](t, rec)
	assert.NotEmpty(t, recs.Decisions)
	assert.Positive(t, recs.HistoryDays)

	overbooked := false
	for _, d := range recs.Decisions {
		if d.Date == testToday.AddDays(2).String() {
			overbooked = d.Overbooking && d.OverbookedBy == 1
		}
	}
	assert.True(t, overbooked, "entry level is overbooked two days out")

	// AND: Two sea-view rooms are out of service today
	inv := decodeBody[InventoryDTO](t, s.do(t, http.MethodGet, base+"/inventory", nil))
	assert.Equal(t, 2, inv.OutOfService)
	assert.Equal(t, 83, inv.EffectiveRooms)

	// AND: The hotel-wide trend is computable
	rec = s.do(t, http.MethodGet, base+"/trend", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestScenario_ReloadIsIdempotent(t *testing.T) {
	s := setupTestHandler(t)
	ctx := context.Background()
	key := generic.SeriesKey{HotelID: factory.CalaCuncheddiID, CategoryID: "classic-garden"}

	s.loadScenario(t, ScenarioDemo)
	first, err := s.h.Store.LoadPickup(ctx, key, generic.AllTime)
	require.NoError(t, err)

	s.loadScenario(t, ScenarioDemo)
	second, err := s.h.Store.LoadPickup(ctx, key, generic.AllTime)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	blocks, err := s.h.Store.ListBlocks(ctx, factory.CalaCuncheddiID, generic.AllTime)
	require.NoError(t, err)
	assert.Len(t, blocks, 1, "the preset hotel is recreated, not appended to")

	hotels := decodeBody[[]HotelDTO](t, s.do(t, http.MethodGet, "/api/hotels", nil))
	assert.Len(t, hotels, 1)
}

func TestScenario_LeavesOtherHotelsAlone(t *testing.T) {
	s := setupTestHandler(t)
	s.seedHotel(t)

	s.loadScenario(t, ScenarioPreset)

	hotels := decodeBody[[]HotelDTO](t, s.do(t, http.MethodGet, "/api/hotels", nil))
	assert.Len(t, hotels, 2)
}

func TestScenario_Unknown(t *testing.T) {
	s := setupTestHandler(t)

	rec := s.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "winter"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/scenarios/load", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SCHEDULER
// =============================================================================

func TestScheduler_RunNow(t *testing.T) {
	s := setupTestHandler(t)
	s.loadScenario(t, ScenarioDemo)

	sched := NewScheduler(s.h.Advisor, s.h.Metrics, nil)
	assert.Equal(t, 1, sched.RunNow(context.Background()))

	oos := testutil.ToFloat64(s.h.Metrics.RoomsOutOfService.WithLabelValues(factory.CalaCuncheddiID))
	assert.Equal(t, 2.0, oos)
}

func TestScheduler_HotelWithoutData(t *testing.T) {
	s := setupTestHandler(t)
	s.seedHotel(t)

	sched := NewScheduler(s.h.Advisor, s.h.Metrics, nil)
	assert.Equal(t, 1, sched.RunNow(context.Background()), "missing history is not a failure")
	assert.Equal(t, 0.0, testutil.ToFloat64(s.h.Metrics.TrendPercentChange.WithLabelValues("h1")))
}

func TestScheduler_StartStop(t *testing.T) {
	s := setupTestHandler(t)

	sched := NewScheduler(s.h.Advisor, s.h.Metrics, nil)
	sched.Start()
	sched.Start()
	sched.Stop()
	sched.Stop()

	sched.Enabled = false
	sched.Start()
	assert.Nil(t, sched.ticker)
}
