/*
Package sqlite provides a SQLite-backed implementation of generic.Store.

PURPOSE:
  Default persistence for hotels, room categories, out-of-service blocks
  and the two daily series (production history, pickup). The same SQL
  runs on PostgreSQL with minor dialect changes.

KEY TABLES:
  hotels:          Property records
  room_categories: Categories keyed by (hotel_id, id)
  out_of_service:  Blocks, never deleted (ending early moves date_to)
  production:      One row per (hotel_id, category_id, date)
  pickup:          One row per (hotel_id, category_id, stay_date)

UPSERT:
  Series rows are written with INSERT ... ON CONFLICT DO UPDATE, one
  statement per row. Re-importing a file rewrites the same rows. A failing
  row stops the batch; rows before it stay committed.

STORAGE FORMATS:
  Dates are TEXT in 2006-01-02 form so lexical order is calendar order.
  Money and percentages are decimal strings, never REAL.
  An empty category_id is the hotel-wide series.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode.

USAGE:
  store, err := sqlite.New("./data/upgrade.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - generic/store.go: Interface definitions
  - generic/store/memory.go: In-memory implementation for testing
  - store/mongo/mongo.go: MongoDB implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/upgrade-advisor/generic"
)

// Store implements generic.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ generic.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS hotels (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		total_rooms INTEGER NOT NULL DEFAULT 0,
		address TEXT,
		city TEXT,
		stars INTEGER NOT NULL DEFAULT 0,
		seasonal BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS room_categories (
		hotel_id TEXT NOT NULL REFERENCES hotels(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		rooms INTEGER NOT NULL DEFAULT 0,
		entry_level BOOLEAN NOT NULL DEFAULT FALSE,
		average_rate TEXT NOT NULL DEFAULT '0',
		min_margin TEXT NOT NULL DEFAULT '0.6',
		upgrade_target TEXT,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (hotel_id, id)
	);

	-- Blocks are never deleted; ending one early moves date_to
	CREATE TABLE IF NOT EXISTS out_of_service (
		id TEXT PRIMARY KEY,
		hotel_id TEXT NOT NULL REFERENCES hotels(id) ON DELETE CASCADE,
		category_id TEXT NOT NULL,
		date_from TEXT NOT NULL,
		date_to TEXT NOT NULL,
		rooms INTEGER NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_out_of_service_hotel_dates
		ON out_of_service(hotel_id, date_from, date_to);

	CREATE TABLE IF NOT EXISTS production (
		hotel_id TEXT NOT NULL REFERENCES hotels(id) ON DELETE CASCADE,
		category_id TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		weekday TEXT,
		room_nights INTEGER NOT NULL DEFAULT 0,
		occupancy_pct TEXT NOT NULL DEFAULT '0',
		adr TEXT NOT NULL DEFAULT '0',
		room_revenue TEXT NOT NULL DEFAULT '0',
		vs_same_period_rn INTEGER NOT NULL DEFAULT 0,
		vs_same_period_occ TEXT NOT NULL DEFAULT '0',
		vs_same_period_adr TEXT NOT NULL DEFAULT '0',
		vs_same_period_revenue TEXT NOT NULL DEFAULT '0',
		vs_last_year_rn INTEGER NOT NULL DEFAULT 0,
		vs_last_year_occ TEXT NOT NULL DEFAULT '0',
		vs_last_year_adr TEXT NOT NULL DEFAULT '0',
		vs_last_year_revenue TEXT NOT NULL DEFAULT '0',
		fields INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (hotel_id, category_id, date)
	);

	CREATE TABLE IF NOT EXISTS pickup (
		hotel_id TEXT NOT NULL REFERENCES hotels(id) ON DELETE CASCADE,
		category_id TEXT NOT NULL DEFAULT '',
		stay_date TEXT NOT NULL,
		room_nights_otb INTEGER NOT NULL DEFAULT 0,
		pickup_1d INTEGER NOT NULL DEFAULT 0,
		pickup_2d INTEGER NOT NULL DEFAULT 0,
		pickup_3d INTEGER NOT NULL DEFAULT 0,
		pickup_7d INTEGER NOT NULL DEFAULT 0,
		pickup_7d_prior_year INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (hotel_id, category_id, stay_date)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// INVENTORY STORE
// =============================================================================

func (s *Store) SaveHotel(ctx context.Context, h generic.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hotels (id, name, total_rooms, address, city, stars, seasonal, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			total_rooms = excluded.total_rooms,
			address = excluded.address,
			city = excluded.city,
			stars = excluded.stars,
			seasonal = excluded.seasonal,
			updated_at = excluded.updated_at
	`, h.ID, h.Name, h.TotalRooms, nullString(h.Address), nullString(h.City), h.Stars, h.Seasonal, now, now)
	if err != nil {
		return &generic.PersistenceError{Op: "save hotel", Key: string(h.ID), Err: err}
	}
	return nil
}

func (s *Store) GetHotel(ctx context.Context, id generic.HotelID) (generic.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, total_rooms, address, city, stars, seasonal
		FROM hotels WHERE id = ?
	`, id)
	h, err := scanHotel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return h, generic.ErrNotFound
	}
	if err != nil {
		return h, &generic.PersistenceError{Op: "get hotel", Key: string(id), Err: err}
	}
	return h, nil
}

func (s *Store) ListHotels(ctx context.Context) ([]generic.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, total_rooms, address, city, stars, seasonal
		FROM hotels ORDER BY name ASC
	`)
	if err != nil {
		return nil, &generic.PersistenceError{Op: "list hotels", Err: err}
	}
	defer rows.Close()

	var hotels []generic.Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, &generic.PersistenceError{Op: "list hotels", Err: err}
		}
		hotels = append(hotels, h)
	}
	return hotels, rows.Err()
}

// DeleteHotel removes the hotel; foreign keys cascade to everything else.
func (s *Store) DeleteHotel(ctx context.Context, id generic.HotelID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM hotels WHERE id = ?", id)
	if err != nil {
		return &generic.PersistenceError{Op: "delete hotel", Key: string(id), Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrNotFound
	}
	return nil
}

func (s *Store) SaveCategory(ctx context.Context, c generic.RoomCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hotels WHERE id = ?", c.HotelID).Scan(&exists); err != nil {
		return &generic.PersistenceError{Op: "save category", Key: string(c.ID), Err: err}
	}
	if exists == 0 {
		return generic.ErrNotFound
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO room_categories (hotel_id, id, name, rooms, entry_level, average_rate, min_margin, upgrade_target, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hotel_id, id) DO UPDATE SET
			name = excluded.name,
			rooms = excluded.rooms,
			entry_level = excluded.entry_level,
			average_rate = excluded.average_rate,
			min_margin = excluded.min_margin,
			upgrade_target = excluded.upgrade_target,
			updated_at = excluded.updated_at
	`,
		c.HotelID, c.ID, c.Name, c.Rooms, c.EntryLevel,
		c.AverageRate.String(), c.Margin().String(), nullString(string(c.UpgradeTarget)),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return &generic.PersistenceError{Op: "save category", Key: string(c.HotelID) + "/" + string(c.ID), Err: err}
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, hotelID generic.HotelID, id generic.CategoryID) (generic.RoomCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT hotel_id, id, name, rooms, entry_level, average_rate, min_margin, upgrade_target
		FROM room_categories WHERE hotel_id = ? AND id = ?
	`, hotelID, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return c, generic.ErrNotFound
	}
	if err != nil {
		return c, &generic.PersistenceError{Op: "get category", Key: string(hotelID) + "/" + string(id), Err: err}
	}
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context, hotelID generic.HotelID) ([]generic.RoomCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT hotel_id, id, name, rooms, entry_level, average_rate, min_margin, upgrade_target
		FROM room_categories WHERE hotel_id = ? ORDER BY name ASC
	`, hotelID)
	if err != nil {
		return nil, &generic.PersistenceError{Op: "list categories", Key: string(hotelID), Err: err}
	}
	defer rows.Close()

	var categories []generic.RoomCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, &generic.PersistenceError{Op: "list categories", Key: string(hotelID), Err: err}
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// =============================================================================
// OUT-OF-SERVICE STORE
// =============================================================================

func (s *Store) AddBlock(ctx context.Context, b generic.OutOfServiceBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO out_of_service (id, hotel_id, category_id, date_from, date_to, rooms, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.HotelID, b.CategoryID, b.From.String(), b.To.String(), b.Rooms, nullString(b.Reason), createdAt.Format(time.RFC3339))
	if err != nil {
		return &generic.PersistenceError{Op: "add block", Key: string(b.ID), Err: err}
	}
	return nil
}

func (s *Store) GetBlock(ctx context.Context, hotelID generic.HotelID, id generic.BlockID) (generic.OutOfServiceBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, hotel_id, category_id, date_from, date_to, rooms, reason, created_at
		FROM out_of_service WHERE hotel_id = ? AND id = ?
	`, hotelID, id)
	b, err := scanBlock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return b, generic.ErrNotFound
	}
	if err != nil {
		return b, &generic.PersistenceError{Op: "get block", Key: string(id), Err: err}
	}
	return b, nil
}

func (s *Store) SetBlockEnd(ctx context.Context, hotelID generic.HotelID, id generic.BlockID, to generic.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE out_of_service SET date_to = ? WHERE hotel_id = ? AND id = ?",
		to.String(), hotelID, id,
	)
	if err != nil {
		return &generic.PersistenceError{Op: "end block", Key: string(id), Date: to, Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrNotFound
	}
	return nil
}

func (s *Store) ListBlocks(ctx context.Context, hotelID generic.HotelID, overlapping generic.Period) ([]generic.OutOfServiceBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower, upper := bounds(overlapping)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hotel_id, category_id, date_from, date_to, rooms, reason, created_at
		FROM out_of_service
		WHERE hotel_id = ? AND date_from <= ? AND date_to >= ?
		ORDER BY date_from ASC, created_at ASC
	`, hotelID, upper, lower)
	if err != nil {
		return nil, &generic.PersistenceError{Op: "list blocks", Key: string(hotelID), Err: err}
	}
	defer rows.Close()

	var blocks []generic.OutOfServiceBlock
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, &generic.PersistenceError{Op: "list blocks", Key: string(hotelID), Err: err}
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// =============================================================================
// SERIES STORE
// =============================================================================

// UpsertProduction writes one row per record; see the package comment.
func (s *Store) UpsertProduction(ctx context.Context, key generic.SeriesKey, records []generic.ProductionRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO production (
			hotel_id, category_id, date, weekday, room_nights, occupancy_pct, adr, room_revenue,
			vs_same_period_rn, vs_same_period_occ, vs_same_period_adr, vs_same_period_revenue,
			vs_last_year_rn, vs_last_year_occ, vs_last_year_adr, vs_last_year_revenue,
			fields, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hotel_id, category_id, date) DO UPDATE SET
			weekday = excluded.weekday,
			room_nights = excluded.room_nights,
			occupancy_pct = excluded.occupancy_pct,
			adr = excluded.adr,
			room_revenue = excluded.room_revenue,
			vs_same_period_rn = excluded.vs_same_period_rn,
			vs_same_period_occ = excluded.vs_same_period_occ,
			vs_same_period_adr = excluded.vs_same_period_adr,
			vs_same_period_revenue = excluded.vs_same_period_revenue,
			vs_last_year_rn = excluded.vs_last_year_rn,
			vs_last_year_occ = excluded.vs_last_year_occ,
			vs_last_year_adr = excluded.vs_last_year_adr,
			vs_last_year_revenue = excluded.vs_last_year_revenue,
			fields = excluded.fields,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	for i, r := range records {
		_, err := s.db.ExecContext(ctx, query,
			key.HotelID, key.CategoryID, r.Date.String(), nullString(r.Weekday),
			r.RoomNights, r.OccupancyPct.String(), r.ADR.String(), r.RoomRevenue.String(),
			r.VsSamePeriodRN, r.VsSamePeriodOcc.String(), r.VsSamePeriodADR.String(), r.VsSamePeriodRevenue.String(),
			r.VsLastYearRN, r.VsLastYearOcc.String(), r.VsLastYearADR.String(), r.VsLastYearRevenue.String(),
			int(r.Fields), now,
		)
		if err != nil {
			return i, &generic.PersistenceError{Op: "upsert production", Key: key.String(), Date: r.Date, Err: err}
		}
	}
	return len(records), nil
}

func (s *Store) LoadProduction(ctx context.Context, key generic.SeriesKey, period generic.Period) ([]generic.ProductionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower, upper := bounds(period)
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, weekday, room_nights, occupancy_pct, adr, room_revenue,
		       vs_same_period_rn, vs_same_period_occ, vs_same_period_adr, vs_same_period_revenue,
		       vs_last_year_rn, vs_last_year_occ, vs_last_year_adr, vs_last_year_revenue, fields
		FROM production
		WHERE hotel_id = ? AND category_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, key.HotelID, key.CategoryID, lower, upper)
	if err != nil {
		return nil, &generic.PersistenceError{Op: "load production", Key: key.String(), Err: err}
	}
	defer rows.Close()

	var records []generic.ProductionRecord
	for rows.Next() {
		var (
			r                       generic.ProductionRecord
			date                    string
			weekday                 sql.NullString
			occ, adr, revenue       string
			spOcc, spADR, spRevenue string
			lyOcc, lyADR, lyRevenue string
			fields                  int
		)
		err := rows.Scan(&date, &weekday, &r.RoomNights, &occ, &adr, &revenue,
			&r.VsSamePeriodRN, &spOcc, &spADR, &spRevenue,
			&r.VsLastYearRN, &lyOcc, &lyADR, &lyRevenue, &fields)
		if err != nil {
			return nil, &generic.PersistenceError{Op: "load production", Key: key.String(), Err: err}
		}
		if r.Date, err = generic.ParseDate(date); err != nil {
			return nil, &generic.PersistenceError{Op: "load production", Key: key.String(), Err: err}
		}
		r.Weekday = weekday.String
		r.OccupancyPct = parseDecimal(occ)
		r.ADR = parseDecimal(adr)
		r.RoomRevenue = parseDecimal(revenue)
		r.VsSamePeriodOcc = parseDecimal(spOcc)
		r.VsSamePeriodADR = parseDecimal(spADR)
		r.VsSamePeriodRevenue = parseDecimal(spRevenue)
		r.VsLastYearOcc = parseDecimal(lyOcc)
		r.VsLastYearADR = parseDecimal(lyADR)
		r.VsLastYearRevenue = parseDecimal(lyRevenue)
		r.Fields = generic.Field(fields)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) UpsertPickup(ctx context.Context, key generic.SeriesKey, records []generic.PickupRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO pickup (
			hotel_id, category_id, stay_date, room_nights_otb,
			pickup_1d, pickup_2d, pickup_3d, pickup_7d, pickup_7d_prior_year, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hotel_id, category_id, stay_date) DO UPDATE SET
			room_nights_otb = excluded.room_nights_otb,
			pickup_1d = excluded.pickup_1d,
			pickup_2d = excluded.pickup_2d,
			pickup_3d = excluded.pickup_3d,
			pickup_7d = excluded.pickup_7d,
			pickup_7d_prior_year = excluded.pickup_7d_prior_year,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	for i, p := range records {
		_, err := s.db.ExecContext(ctx, query,
			key.HotelID, key.CategoryID, p.StayDate.String(), p.RoomNightsOTB,
			p.Pickup1Day, p.Pickup2Day, p.Pickup3Day, p.Pickup7Day, p.Pickup7DayPriorYear, now,
		)
		if err != nil {
			return i, &generic.PersistenceError{Op: "upsert pickup", Key: key.String(), Date: p.StayDate, Err: err}
		}
	}
	return len(records), nil
}

func (s *Store) LoadPickup(ctx context.Context, key generic.SeriesKey, period generic.Period) ([]generic.PickupRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower, upper := bounds(period)
	rows, err := s.db.QueryContext(ctx, `
		SELECT stay_date, room_nights_otb, pickup_1d, pickup_2d, pickup_3d, pickup_7d, pickup_7d_prior_year
		FROM pickup
		WHERE hotel_id = ? AND category_id = ? AND stay_date >= ? AND stay_date <= ?
		ORDER BY stay_date ASC
	`, key.HotelID, key.CategoryID, lower, upper)
	if err != nil {
		return nil, &generic.PersistenceError{Op: "load pickup", Key: key.String(), Err: err}
	}
	defer rows.Close()

	var records []generic.PickupRecord
	for rows.Next() {
		var (
			p    generic.PickupRecord
			date string
		)
		if err := rows.Scan(&date, &p.RoomNightsOTB, &p.Pickup1Day, &p.Pickup2Day, &p.Pickup3Day, &p.Pickup7Day, &p.Pickup7DayPriorYear); err != nil {
			return nil, &generic.PersistenceError{Op: "load pickup", Key: key.String(), Err: err}
		}
		if p.StayDate, err = generic.ParseDate(date); err != nil {
			return nil, &generic.PersistenceError{Op: "load pickup", Key: key.String(), Err: err}
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanHotel(row scanner) (generic.Hotel, error) {
	var (
		h             generic.Hotel
		address, city sql.NullString
	)
	err := row.Scan(&h.ID, &h.Name, &h.TotalRooms, &address, &city, &h.Stars, &h.Seasonal)
	h.Address = address.String
	h.City = city.String
	return h, err
}

func scanCategory(row scanner) (generic.RoomCategory, error) {
	var (
		c            generic.RoomCategory
		rate, margin string
		target       sql.NullString
	)
	err := row.Scan(&c.HotelID, &c.ID, &c.Name, &c.Rooms, &c.EntryLevel, &rate, &margin, &target)
	c.AverageRate = parseDecimal(rate)
	c.MinMargin = parseDecimal(margin)
	c.UpgradeTarget = generic.CategoryID(target.String)
	return c, err
}

func scanBlock(row scanner) (generic.OutOfServiceBlock, error) {
	var (
		b                 generic.OutOfServiceBlock
		from, to, created string
		reason            sql.NullString
	)
	if err := row.Scan(&b.ID, &b.HotelID, &b.CategoryID, &from, &to, &b.Rooms, &reason, &created); err != nil {
		return b, err
	}
	b.From, _ = generic.ParseDate(from)
	b.To, _ = generic.ParseDate(to)
	b.Reason = reason.String
	b.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return b, nil
}

// bounds turns a period into inclusive text bounds; unbounded ends become
// dates no row can fall outside of.
func bounds(p generic.Period) (lower, upper string) {
	lower, upper = "0000-01-01", "9999-12-31"
	if !p.Start.IsZero() {
		lower = p.Start.String()
	}
	if !p.End.IsZero() {
		upper = p.End.String()
	}
	return lower, upper
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
