package importer

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// =============================================================================
// PROFILES - Column layouts of the BI exports, overridable from TOML
// =============================================================================

// Column keys of the daily production report.
const (
	ColDate            = "date"
	ColWeekday         = "weekday"
	ColOccupancy       = "occupancy"
	ColOccVsSamePeriod = "occ_vs_same_period"
	ColOccVsLastYear   = "occ_vs_last_year"
	ColRoomNights      = "room_nights"
	ColRNVsSamePeriod  = "rn_vs_same_period"
	ColRNVsLastYear    = "rn_vs_last_year"
	ColADR             = "adr"
	ColADRVsSamePeriod = "adr_vs_same_period"
	ColADRVsLastYear   = "adr_vs_last_year"
	ColRevenue         = "room_revenue"
	ColRevVsSamePeriod = "rev_vs_same_period"
	ColRevVsLastYear   = "rev_vs_last_year"
)

// Column keys of the pickup report.
const (
	ColStayDate        = "stay_date"
	ColOTB             = "room_nights_otb"
	ColPickup1         = "pickup_1"
	ColPickup2         = "pickup_2"
	ColPickup3         = "pickup_3"
	ColPickup7         = "pickup_7"
	ColPickup7LastYear = "pickup_7_prior_year"
)

// Profile is the column layout of one report type.
type Profile struct {
	// PreferPosition trusts column letters over header names.
	PreferPosition bool `toml:"prefer_position"`
	// SkipMarkers are substrings that mark a date cell as a header or filter row.
	SkipMarkers []string     `toml:"skip_markers"`
	Columns     []ColumnSpec `toml:"columns"`
}

// Profiles holds one profile per importable report.
type Profiles struct {
	Production Profile `toml:"production"`
	Pickup     Profile `toml:"pickup"`
}

var vsSamePeriod = []string{"vs SPIT", "vs spit"}
var vsLastYear = []string{"vs AP", "vs ap"}

// DefaultProfiles matches the property's BI exports. The production
// report repeats "vs SPIT"/"vs AP" after each measure, so it is read by
// position.
func DefaultProfiles() Profiles {
	return Profiles{
		Production: Profile{
			PreferPosition: true,
			SkipMarkers:    []string{"filtri", "data", "total"},
			Columns: []ColumnSpec{
				{Key: ColDate, Names: []string{"Data", "data", "date"}, Letter: "A", Required: true},
				{Key: ColWeekday, Names: []string{"Giorno", "giorno", "day"}, Letter: "B"},
				{Key: ColOccupancy, Names: []string{"% Occ.", "% occ", "occupancy", "occupazione"}, Letter: "C", Context: "occ"},
				{Key: ColOccVsSamePeriod, Names: vsSamePeriod, Letter: "D", Context: "occ"},
				{Key: ColOccVsLastYear, Names: vsLastYear, Letter: "E", Context: "occ"},
				{Key: ColRoomNights, Names: []string{"Room nights", "room nights", "roomnights"}, Letter: "F", Context: "room nights"},
				{Key: ColRNVsSamePeriod, Names: vsSamePeriod, Letter: "G", Context: "room nights"},
				{Key: ColRNVsLastYear, Names: vsLastYear, Letter: "H", Context: "room nights"},
				{Key: ColADR, Names: []string{"ADR Cam", "adr cam", "adr"}, Letter: "L", Context: "adr"},
				{Key: ColADRVsSamePeriod, Names: vsSamePeriod, Letter: "M", Context: "adr"},
				{Key: ColADRVsLastYear, Names: vsLastYear, Letter: "N", Context: "adr"},
				{Key: ColRevenue, Names: []string{"Room Revenue", "room revenue", "revenue"}, Letter: "R", Context: "revenue"},
				{Key: ColRevVsSamePeriod, Names: vsSamePeriod, Letter: "S", Context: "revenue"},
				{Key: ColRevVsLastYear, Names: vsLastYear, Letter: "T", Context: "revenue"},
			},
		},
		Pickup: Profile{
			SkipMarkers: []string{"soggiorno", "total"},
			Columns: []ColumnSpec{
				{Key: ColStayDate, Names: []string{"Soggiorno", "soggiorno", "stay date"}, Letter: "A", Required: true},
				{Key: ColOTB, Names: []string{"Roomnights", "roomnights", "room nights"}, Letter: "B", Required: true},
				{Key: ColPickup1, Names: []string{"vs 1gg"}, Letter: "C"},
				{Key: ColPickup2, Names: []string{"vs 2gg"}, Letter: "D"},
				{Key: ColPickup3, Names: []string{"vs 3gg"}, Letter: "E"},
				{Key: ColPickup7, Names: []string{"vs 7gg"}, Exclude: []string{"spit"}, Letter: "F", Required: true},
				{Key: ColPickup7LastYear, Names: []string{"vs 7gg SPIT", "vs 7gg spit"}, Letter: "G", Required: true},
			},
		},
	}
}

// LoadProfiles reads profiles from a TOML file. A missing path (or an
// empty one) yields DefaultProfiles; a report left out of the file keeps
// its default.
func LoadProfiles(path string) (Profiles, error) {
	profiles := DefaultProfiles()
	if path == "" {
		return profiles, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return profiles, nil
	}
	if err != nil {
		return profiles, fmt.Errorf("read profiles %s: %w", path, err)
	}
	return ParseProfiles(data)
}

// ParseProfiles decodes TOML over the defaults.
func ParseProfiles(data []byte) (Profiles, error) {
	var file struct {
		Production *Profile `toml:"production"`
		Pickup     *Profile `toml:"pickup"`
	}
	if err := toml.Unmarshal(data, &file); err != nil {
		return Profiles{}, fmt.Errorf("parse profiles: %w", err)
	}

	profiles := DefaultProfiles()
	if file.Production != nil {
		profiles.Production = *file.Production
	}
	if file.Pickup != nil {
		profiles.Pickup = *file.Pickup
	}
	return profiles, nil
}

// MarshalProfiles renders profiles as TOML, e.g. to seed a config file.
func MarshalProfiles(p Profiles) ([]byte, error) {
	return toml.Marshal(p)
}
