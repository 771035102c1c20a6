package factory

import "fmt"

// =============================================================================
// PRESETS - Built-in hotel definitions
// =============================================================================

// CalaCuncheddiID is the hotel ID of the Cala Cuncheddi preset.
const CalaCuncheddiID = "cala-cuncheddi"

// CalaCuncheddiJSON is the five-star seasonal property in Olbia:
// 85 rooms over eight categories, Classic Garden as the entry level.
func CalaCuncheddiJSON() string {
	return `{
  "id": "cala-cuncheddi",
  "name": "Cala Cuncheddi",
  "total_rooms": 85,
  "address": "Via Dei Ginepri 3, 07026 Pittulongu, Olbia",
  "city": "Olbia",
  "stars": 5,
  "seasonal": true,
  "categories": [
    {"name": "Classic Garden",    "rooms": 33, "entry_level": true, "average_rate": 300, "min_margin": 0.6, "upgrade_to": "Classic Sea View"},
    {"name": "Classic Sea View",  "rooms": 12, "average_rate": 350, "min_margin": 0.6, "upgrade_to": "Superior Sea View"},
    {"name": "Family",            "rooms": 2,  "average_rate": 495, "min_margin": 0.6, "upgrade_to": "Junior Suite Pool"},
    {"name": "Superior Sea View", "rooms": 18, "average_rate": 400, "min_margin": 0.6, "upgrade_to": "Executive"},
    {"name": "Executive",         "rooms": 9,  "average_rate": 450, "min_margin": 0.6, "upgrade_to": "Deluxe"},
    {"name": "Deluxe",            "rooms": 4,  "average_rate": 520, "min_margin": 0.6, "upgrade_to": "Junior Suite Pool"},
    {"name": "Junior Suite Pool", "rooms": 4,  "average_rate": 650, "min_margin": 0.6, "upgrade_to": "Suite"},
    {"name": "Suite",             "rooms": 3,  "average_rate": 780, "min_margin": 0.6}
  ]
}`
}

// SimpleHotelJSON builds a single-category hotel, handy for demos and tests.
func SimpleHotelJSON(id, name string, rooms int, rate string) string {
	return fmt.Sprintf(`{
  "id": %q,
  "name": %q,
  "categories": [{"id": "standard", "name": "Standard", "rooms": %d, "average_rate": %q}]
}`, id, name, rooms, rate)
}
