package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectReport(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    ReportType
	}{
		{"pickup", []string{"Soggiorno", "Roomnights", "vs 1gg", "vs 7gg", "vs 7gg SPIT"}, ReportPickup},
		{"pickup by data", []string{"Data", "vs 1gg", "vs 2gg"}, ReportPickup},
		{"daily production", []string{"Data", "Giorno", "% Occ.", "Room nights", "ADR Cam"}, ReportDailyProduction},
		{"portfolio", []string{"Mese", "Occupazione", "Room Revenue", "ADR", "RevPAR"}, ReportPortfolioProduction},
		{"segment", []string{"Segment", "Room nights", "Perc."}, ReportSegmentProduction},
		{"unknown", []string{"foo", "bar"}, ReportUnknown},
		{"one pickup marker is not enough", []string{"Soggiorno", "vs 1gg"}, ReportUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectReport(tt.headers).Type)
		})
	}

	assert.True(t, ReportPickup.Importable())
	assert.False(t, ReportSegmentProduction.Importable())
}

func TestDetectMetadata(t *testing.T) {
	headers := []string{"Tipologia camera", "Periodo"}
	rows := [][]Cell{
		{{Value: "Hotel Cala Cuncheddi", Text: true}},
		{{Value: "Junior Suite", Text: true}, {Value: "Luglio 2025", Text: true}},
	}

	md := DetectMetadata(headers, rows, nil, nil)
	assert.Equal(t, "Junior Suite", md.RoomType, "longest name wins over Suite")
	assert.Equal(t, "Luglio 2025", md.Period)
	assert.Equal(t, "Cala Cuncheddi", md.Hotel)

	md = DetectMetadata(headers, rows, []string{"Garden"}, []string{"Altro"})
	assert.Empty(t, md.RoomType)
	assert.Empty(t, md.Hotel)
}

func TestDefaultProfiles(t *testing.T) {
	p := DefaultProfiles()
	assert.True(t, p.Production.PreferPosition)
	assert.False(t, p.Pickup.PreferPosition)

	required := map[string]bool{}
	for _, c := range p.Pickup.Columns {
		if c.Required {
			required[c.Key] = true
		}
	}
	assert.Equal(t, map[string]bool{ColStayDate: true, ColOTB: true, ColPickup7: true, ColPickup7LastYear: true}, required)
}

func TestParseProfiles_OverridesOneReport(t *testing.T) {
	// GIVEN: A file overriding only the pickup layout
	data := []byte(`
[pickup]
prefer_position = true
skip_markers = ["totale"]

[[pickup.columns]]
key = "stay_date"
letter = "B"
required = true

[[pickup.columns]]
key = "room_nights_otb"
letter = "C"
required = true
`)

	p, err := ParseProfiles(data)
	require.NoError(t, err)

	// THEN: Pickup is replaced, production keeps its default
	assert.True(t, p.Pickup.PreferPosition)
	require.Len(t, p.Pickup.Columns, 2)
	assert.Equal(t, "B", p.Pickup.Columns[0].Letter)
	assert.Equal(t, DefaultProfiles().Production, p.Production)

	_, err = ParseProfiles([]byte("[pickup\n"))
	assert.Error(t, err)
}

func TestLoadProfiles(t *testing.T) {
	p, err := LoadProfiles(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultProfiles(), p)

	// Round trip through a file
	data, err := MarshalProfiles(DefaultProfiles())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "profiles.toml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := LoadProfiles(path)
	require.NoError(t, err)
	def := DefaultProfiles()
	assert.Equal(t, def.Production.SkipMarkers, loaded.Production.SkipMarkers)
	require.Len(t, loaded.Pickup.Columns, len(def.Pickup.Columns))
	for i, c := range def.Pickup.Columns {
		assert.Equal(t, c.Key, loaded.Pickup.Columns[i].Key)
		assert.Equal(t, c.Letter, loaded.Pickup.Columns[i].Letter)
		assert.Equal(t, c.Required, loaded.Pickup.Columns[i].Required)
	}
}
