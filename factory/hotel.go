/*
Package factory provides JSON to Go hotel conversion.

PURPOSE:
  Converts JSON hotel definitions (hotel plus its room categories and
  upgrade hierarchy) into generic.Hotel and generic.RoomCategory values.
  Revenue managers edit the JSON; the factory validates it and fills
  defaults.

JSON SCHEMA:
  {
    "id": "cala-cuncheddi",
    "name": "Cala Cuncheddi",
    "total_rooms": 85,
    "city": "Olbia",
    "stars": 5,
    "seasonal": true,
    "categories": [
      {"name": "Classic Garden", "rooms": 33, "entry_level": true,
       "average_rate": 300, "upgrade_to": "Classic Sea View"}
    ]
  }

KEY FEATURES:
  - Struct-tag validation (go-playground/validator)
  - IDs derived from names when omitted ("Classic Sea View" -> "classic-sea-view")
  - upgrade_to accepts a category name or ID
  - min_margin defaults to 0.6

SEE ALSO:
  - presets.go: built-in hotels
  - upgrade/advisor.go: consumes the categories
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/warp/upgrade-advisor/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type HotelJSON struct {
	ID         string         `json:"id" validate:"omitempty,max=64"`
	Name       string         `json:"name" validate:"required,max=256"`
	TotalRooms int            `json:"total_rooms" validate:"gte=0"`
	Address    string         `json:"address,omitempty" validate:"max=512"`
	City       string         `json:"city,omitempty" validate:"max=256"`
	Stars      int            `json:"stars,omitempty" validate:"gte=0,lte=5"`
	Seasonal   bool           `json:"seasonal,omitempty"`
	Categories []CategoryJSON `json:"categories" validate:"dive"`
}

type CategoryJSON struct {
	ID          string           `json:"id,omitempty" validate:"omitempty,max=64"`
	Name        string           `json:"name" validate:"required,max=256"`
	Rooms       int              `json:"rooms" validate:"gte=0"`
	EntryLevel  bool             `json:"entry_level,omitempty"`
	AverageRate decimal.Decimal  `json:"average_rate"`
	MinMargin   *decimal.Decimal `json:"min_margin,omitempty"`
	UpgradeTo   string           `json:"upgrade_to,omitempty"`
}

var validate = validator.New()

// =============================================================================
// PARSING
// =============================================================================

// ParseHotel validates a hotel definition and returns the hotel with its
// categories in definition order.
func ParseHotel(jsonStr string) (generic.Hotel, []generic.RoomCategory, error) {
	var hj HotelJSON
	if err := json.Unmarshal([]byte(jsonStr), &hj); err != nil {
		return generic.Hotel{}, nil, fmt.Errorf("%w: invalid hotel JSON: %v", generic.ErrInvalidInput, err)
	}
	return FromJSON(hj)
}

// FromJSON converts an already-decoded definition.
func FromJSON(hj HotelJSON) (generic.Hotel, []generic.RoomCategory, error) {
	if err := validate.Struct(hj); err != nil {
		return generic.Hotel{}, nil, fmt.Errorf("%w: %v", generic.ErrInvalidInput, err)
	}

	hotel := generic.Hotel{
		ID:         generic.HotelID(hj.ID),
		Name:       strings.TrimSpace(hj.Name),
		TotalRooms: hj.TotalRooms,
		Address:    hj.Address,
		City:       hj.City,
		Stars:      hj.Stars,
		Seasonal:   hj.Seasonal,
	}
	if hotel.ID == "" {
		hotel.ID = generic.HotelID(Slug(hotel.Name))
	}

	categories, err := parseCategories(hotel.ID, hj.Categories)
	if err != nil {
		return generic.Hotel{}, nil, err
	}
	if hotel.TotalRooms == 0 {
		for _, c := range categories {
			hotel.TotalRooms += c.Rooms
		}
	}
	return hotel, categories, nil
}

func parseCategories(hotelID generic.HotelID, defs []CategoryJSON) ([]generic.RoomCategory, error) {
	categories := make([]generic.RoomCategory, 0, len(defs))
	byRef := make(map[string]generic.CategoryID, 2*len(defs))

	for _, cj := range defs {
		id := cj.ID
		if id == "" {
			id = Slug(cj.Name)
		}
		if _, dup := byRef[id]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", generic.ErrInvalidInput, id)
		}

		margin := generic.DefaultMinMargin
		if cj.MinMargin != nil {
			margin = *cj.MinMargin
		}
		if !margin.IsPositive() || margin.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("%w: category %q: min_margin %s must be in (0, 1]", generic.ErrInvalidInput, cj.Name, margin)
		}
		if cj.AverageRate.IsNegative() {
			return nil, fmt.Errorf("%w: category %q: negative average_rate", generic.ErrInvalidInput, cj.Name)
		}

		categories = append(categories, generic.RoomCategory{
			ID:          generic.CategoryID(id),
			HotelID:     hotelID,
			Name:        strings.TrimSpace(cj.Name),
			Rooms:       cj.Rooms,
			EntryLevel:  cj.EntryLevel,
			AverageRate: cj.AverageRate,
			MinMargin:   margin,
		})
		byRef[id] = generic.CategoryID(id)
		byRef[strings.ToLower(strings.TrimSpace(cj.Name))] = generic.CategoryID(id)
	}

	// Second pass: targets may reference categories defined later.
	for i, cj := range defs {
		ref := strings.TrimSpace(cj.UpgradeTo)
		if ref == "" {
			continue
		}
		target, ok := byRef[ref]
		if !ok {
			target, ok = byRef[strings.ToLower(ref)]
		}
		if !ok {
			return nil, fmt.Errorf("%w: category %q upgrades to unknown %q", generic.ErrInvalidInput, cj.Name, ref)
		}
		if target == categories[i].ID {
			return nil, fmt.Errorf("%w: category %q upgrades to itself", generic.ErrInvalidInput, cj.Name)
		}
		categories[i].UpgradeTarget = target
	}
	return categories, nil
}

// Slug lowercases a name and joins its words with dashes.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// =============================================================================
// HIERARCHY
// =============================================================================

// UpgradePath follows upgrade targets starting at from. The result starts
// with from itself and stops at a category without a target, at an unknown
// target, or when a category repeats.
func UpgradePath(categories []generic.RoomCategory, from generic.CategoryID) []generic.RoomCategory {
	byID := make(map[generic.CategoryID]generic.RoomCategory, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	var path []generic.RoomCategory
	seen := make(map[generic.CategoryID]bool)
	for id := from; id != ""; {
		c, ok := byID[id]
		if !ok || seen[id] {
			break
		}
		seen[id] = true
		path = append(path, c)
		id = c.UpgradeTarget
	}
	return path
}

// ToJSON renders a hotel back into its definition form.
func ToJSON(h generic.Hotel, categories []generic.RoomCategory) HotelJSON {
	hj := HotelJSON{
		ID:         string(h.ID),
		Name:       h.Name,
		TotalRooms: h.TotalRooms,
		Address:    h.Address,
		City:       h.City,
		Stars:      h.Stars,
		Seasonal:   h.Seasonal,
	}
	for _, c := range categories {
		margin := c.Margin()
		hj.Categories = append(hj.Categories, CategoryJSON{
			ID:          string(c.ID),
			Name:        c.Name,
			Rooms:       c.Rooms,
			EntryLevel:  c.EntryLevel,
			AverageRate: c.AverageRate,
			MinMargin:   &margin,
			UpgradeTo:   string(c.UpgradeTarget),
		})
	}
	return hj
}
