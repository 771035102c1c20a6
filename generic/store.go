/*
store.go - Repository interfaces for inventory and daily series

PURPOSE:
  Defines the interface between the decision engine and the database.
  The engine never issues raw queries; it reads typed records by
  (hotel, category, date) through these methods.

KEY INTERFACES:
  InventoryStore:    Hotels and room categories (configuration)
  OutOfServiceStore: Out-of-service blocks (date range + rooms)
  SeriesStore:       Production history and pickup, keyed by SeriesKey + date
  Store:             All of the above

UPSERT CONTRACT:
  Series rows are keyed by (SeriesKey, date). Writing the same date twice
  updates the row in place, so re-importing a file is idempotent.
  Batch upserts commit row by row: a failure keeps earlier rows and aborts
  the rest, returning the number saved with a PersistenceError.

OUT-OF-SERVICE CONTRACT:
  Blocks are never deleted. Ending a block early moves its To date.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite (default)
  - store/mongo/mongo.go: MongoDB
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - upgrade/advisor.go: Loads series and blocks through Store
*/
package generic

import "context"

// =============================================================================
// INVENTORY STORE
// =============================================================================

type InventoryStore interface {
	// SaveHotel inserts or updates a hotel.
	SaveHotel(ctx context.Context, h Hotel) error

	// GetHotel returns ErrNotFound if the hotel doesn't exist.
	GetHotel(ctx context.Context, id HotelID) (Hotel, error)

	ListHotels(ctx context.Context) ([]Hotel, error)

	// DeleteHotel removes the hotel with its categories, blocks and series.
	DeleteHotel(ctx context.Context, id HotelID) error

	// SaveCategory inserts or updates a category of an existing hotel.
	SaveCategory(ctx context.Context, c RoomCategory) error

	// GetCategory returns ErrNotFound if the category doesn't exist.
	GetCategory(ctx context.Context, hotelID HotelID, id CategoryID) (RoomCategory, error)

	// ListCategories returns categories ordered by name.
	ListCategories(ctx context.Context, hotelID HotelID) ([]RoomCategory, error)
}

// =============================================================================
// OUT-OF-SERVICE STORE
// =============================================================================

type OutOfServiceStore interface {
	AddBlock(ctx context.Context, b OutOfServiceBlock) error

	// GetBlock returns ErrNotFound if the block doesn't exist.
	GetBlock(ctx context.Context, hotelID HotelID, id BlockID) (OutOfServiceBlock, error)

	// SetBlockEnd moves the block's To date.
	SetBlockEnd(ctx context.Context, hotelID HotelID, id BlockID, to Date) error

	// ListBlocks returns blocks overlapping the period, ordered by From.
	// Pass AllTime for every block of the hotel.
	ListBlocks(ctx context.Context, hotelID HotelID, overlapping Period) ([]OutOfServiceBlock, error)
}

// =============================================================================
// SERIES STORE
// =============================================================================

type SeriesStore interface {
	// UpsertProduction writes records by (key, date) and returns how many were saved.
	UpsertProduction(ctx context.Context, key SeriesKey, records []ProductionRecord) (int, error)

	// LoadProduction returns records in the period ordered by date.
	LoadProduction(ctx context.Context, key SeriesKey, period Period) ([]ProductionRecord, error)

	// UpsertPickup writes records by (key, stay date) and returns how many were saved.
	UpsertPickup(ctx context.Context, key SeriesKey, records []PickupRecord) (int, error)

	// LoadPickup returns records in the period ordered by stay date.
	LoadPickup(ctx context.Context, key SeriesKey, period Period) ([]PickupRecord, error)
}

// Store is the full repository used by the advisor and the API.
type Store interface {
	InventoryStore
	OutOfServiceStore
	SeriesStore
}
