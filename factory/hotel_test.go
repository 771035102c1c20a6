package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/upgrade-advisor/factory"
	"github.com/warp/upgrade-advisor/generic"
)

func TestParseHotel_CalaCuncheddi(t *testing.T) {
	hotel, categories, err := factory.ParseHotel(factory.CalaCuncheddiJSON())
	require.NoError(t, err)

	assert.Equal(t, generic.HotelID(factory.CalaCuncheddiID), hotel.ID)
	assert.Equal(t, 85, hotel.TotalRooms)
	assert.Equal(t, 5, hotel.Stars)
	assert.True(t, hotel.Seasonal)
	require.Len(t, categories, 8)

	total := 0
	entry := 0
	for _, c := range categories {
		total += c.Rooms
		if c.EntryLevel {
			entry++
		}
		assert.Equal(t, "0.6", c.MinMargin.String())
		assert.Equal(t, hotel.ID, c.HotelID)
	}
	assert.Equal(t, 85, total)
	assert.Equal(t, 1, entry)

	assert.Equal(t, generic.CategoryID("classic-garden"), categories[0].ID)
	assert.Equal(t, generic.CategoryID("classic-sea-view"), categories[0].UpgradeTarget)
	assert.Equal(t, "300", categories[0].AverageRate.String())
	assert.Empty(t, categories[7].UpgradeTarget)
}

func TestUpgradePath_FollowsTargets(t *testing.T) {
	_, categories, err := factory.ParseHotel(factory.CalaCuncheddiJSON())
	require.NoError(t, err)

	path := factory.UpgradePath(categories, "classic-garden")

	var names []string
	for _, c := range path {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{
		"Classic Garden", "Classic Sea View", "Superior Sea View",
		"Executive", "Deluxe", "Junior Suite Pool", "Suite",
	}, names)
}

func TestUpgradePath_StopsOnCycle(t *testing.T) {
	categories := []generic.RoomCategory{
		{ID: "a", UpgradeTarget: "b"},
		{ID: "b", UpgradeTarget: "a"},
	}
	assert.Len(t, factory.UpgradePath(categories, "a"), 2)
	assert.Empty(t, factory.UpgradePath(categories, "zzz"))
}

func TestParseHotel_Rejects(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"malformed", `{"name": `},
		{"missing name", `{"categories": []}`},
		{"stars out of range", `{"name": "X", "stars": 9}`},
		{"unknown target", `{"name": "X", "categories": [{"name": "A", "upgrade_to": "B"}]}`},
		{"self target", `{"name": "X", "categories": [{"name": "A", "upgrade_to": "a"}]}`},
		{"margin above one", `{"name": "X", "categories": [{"name": "A", "min_margin": 1.5}]}`},
		{"negative rooms", `{"name": "X", "categories": [{"name": "A", "rooms": -1}]}`},
		{"duplicate", `{"name": "X", "categories": [{"name": "A"}, {"name": "a"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := factory.ParseHotel(tt.json)
			assert.ErrorIs(t, err, generic.ErrInvalidInput)
		})
	}
}

func TestParseHotel_DefaultsAndRoundTrip(t *testing.T) {
	hotel, categories, err := factory.ParseHotel(factory.SimpleHotelJSON("demo", "Demo Hotel", 20, "180.50"))
	require.NoError(t, err)

	assert.Equal(t, 20, hotel.TotalRooms, "derived from categories")
	assert.True(t, categories[0].MinMargin.Equal(generic.DefaultMinMargin))

	hj := factory.ToJSON(hotel, categories)
	h2, c2, err := factory.FromJSON(hj)
	require.NoError(t, err)
	assert.Equal(t, hotel, h2)
	assert.Equal(t, categories[0].ID, c2[0].ID)
	assert.True(t, categories[0].AverageRate.Equal(c2[0].AverageRate))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "junior-suite-pool", factory.Slug("  Junior Suite  Pool "))
	assert.Equal(t, "hotel-l-approdo", factory.Slug("Hotel L'Approdo"))
}
