/*
Package mongo provides a MongoDB implementation of generic.Store.

PURPOSE:
  Alternative to store/sqlite for deployments that already run MongoDB.
  Same contract: series documents are keyed by (hotel, category, date) and
  written with replace-upsert, so re-imports are idempotent.

COLLECTIONS:
  hotels           _id = hotel id
  room_categories  _id = hotel/category
  out_of_service   _id = block id
  production       _id = hotel/category/date
  pickup           _id = hotel/category/stay_date

STORAGE FORMATS:
  Dates are 2006-01-02 strings so range filters and sorts work lexically.
  Decimals are strings, matching the SQLite store.

SEE ALSO:
  - generic/store.go: Interface definitions
  - store/sqlite/sqlite.go: Default implementation
*/
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/upgrade-advisor/generic"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collHotels     = "hotels"
	collCategories = "room_categories"
	collBlocks     = "out_of_service"
	collProduction = "production"
	collPickup     = "pickup"
)

// Store implements generic.Store on a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ generic.Store = (*Store)(nil)

// New connects to uri, pings, and prepares indexes on database name.
func New(ctx context.Context, uri, name string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(name)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		collCategories: {{Keys: bson.D{{Key: "hotel_id", Value: 1}, {Key: "name", Value: 1}}}},
		collBlocks:     {{Keys: bson.D{{Key: "hotel_id", Value: 1}, {Key: "from", Value: 1}, {Key: "to", Value: 1}}}},
		collProduction: {{Keys: bson.D{{Key: "hotel_id", Value: 1}, {Key: "category_id", Value: 1}, {Key: "date", Value: 1}}}},
		collPickup:     {{Keys: bson.D{{Key: "hotel_id", Value: 1}, {Key: "category_id", Value: 1}, {Key: "stay_date", Value: 1}}}},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// =============================================================================
// DOCUMENTS
// =============================================================================

type hotelDoc struct {
	ID         string    `bson:"_id"`
	Name       string    `bson:"name"`
	TotalRooms int       `bson:"total_rooms"`
	Address    string    `bson:"address,omitempty"`
	City       string    `bson:"city,omitempty"`
	Stars      int       `bson:"stars"`
	Seasonal   bool      `bson:"seasonal"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

type categoryDoc struct {
	ID            string `bson:"_id"`
	HotelID       string `bson:"hotel_id"`
	CategoryID    string `bson:"category_id"`
	Name          string `bson:"name"`
	Rooms         int    `bson:"rooms"`
	EntryLevel    bool   `bson:"entry_level"`
	AverageRate   string `bson:"average_rate"`
	MinMargin     string `bson:"min_margin"`
	UpgradeTarget string `bson:"upgrade_target,omitempty"`
}

type blockDoc struct {
	ID         string    `bson:"_id"`
	HotelID    string    `bson:"hotel_id"`
	CategoryID string    `bson:"category_id"`
	From       string    `bson:"from"`
	To         string    `bson:"to"`
	Rooms      int       `bson:"rooms"`
	Reason     string    `bson:"reason,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
}

type productionDoc struct {
	ID                  string `bson:"_id"`
	HotelID             string `bson:"hotel_id"`
	CategoryID          string `bson:"category_id"`
	Date                string `bson:"date"`
	Weekday             string `bson:"weekday,omitempty"`
	RoomNights          int    `bson:"room_nights"`
	OccupancyPct        string `bson:"occupancy_pct"`
	ADR                 string `bson:"adr"`
	RoomRevenue         string `bson:"room_revenue"`
	VsSamePeriodRN      int    `bson:"vs_same_period_rn"`
	VsSamePeriodOcc     string `bson:"vs_same_period_occ"`
	VsSamePeriodADR     string `bson:"vs_same_period_adr"`
	VsSamePeriodRevenue string `bson:"vs_same_period_revenue"`
	VsLastYearRN        int    `bson:"vs_last_year_rn"`
	VsLastYearOcc       string `bson:"vs_last_year_occ"`
	VsLastYearADR       string `bson:"vs_last_year_adr"`
	VsLastYearRevenue   string `bson:"vs_last_year_revenue"`
	Fields              int    `bson:"fields"`
}

type pickupDoc struct {
	ID                  string `bson:"_id"`
	HotelID             string `bson:"hotel_id"`
	CategoryID          string `bson:"category_id"`
	StayDate            string `bson:"stay_date"`
	RoomNightsOTB       int    `bson:"room_nights_otb"`
	Pickup1Day          int    `bson:"pickup_1d"`
	Pickup2Day          int    `bson:"pickup_2d"`
	Pickup3Day          int    `bson:"pickup_3d"`
	Pickup7Day          int    `bson:"pickup_7d"`
	Pickup7DayPriorYear int    `bson:"pickup_7d_prior_year"`
}

func categoryDocID(hotelID generic.HotelID, id generic.CategoryID) string {
	return string(hotelID) + "/" + string(id)
}

func seriesDocID(key generic.SeriesKey, d generic.Date) string {
	return string(key.HotelID) + "/" + string(key.CategoryID) + "/" + d.String()
}

func toCategoryDoc(c generic.RoomCategory) categoryDoc {
	return categoryDoc{
		ID:            categoryDocID(c.HotelID, c.ID),
		HotelID:       string(c.HotelID),
		CategoryID:    string(c.ID),
		Name:          c.Name,
		Rooms:         c.Rooms,
		EntryLevel:    c.EntryLevel,
		AverageRate:   c.AverageRate.String(),
		MinMargin:     c.Margin().String(),
		UpgradeTarget: string(c.UpgradeTarget),
	}
}

func (d categoryDoc) category() generic.RoomCategory {
	return generic.RoomCategory{
		ID:            generic.CategoryID(d.CategoryID),
		HotelID:       generic.HotelID(d.HotelID),
		Name:          d.Name,
		Rooms:         d.Rooms,
		EntryLevel:    d.EntryLevel,
		AverageRate:   parseDecimal(d.AverageRate),
		MinMargin:     parseDecimal(d.MinMargin),
		UpgradeTarget: generic.CategoryID(d.UpgradeTarget),
	}
}

func (d blockDoc) block() generic.OutOfServiceBlock {
	from, _ := generic.ParseDate(d.From)
	to, _ := generic.ParseDate(d.To)
	return generic.OutOfServiceBlock{
		ID:         generic.BlockID(d.ID),
		HotelID:    generic.HotelID(d.HotelID),
		CategoryID: generic.CategoryID(d.CategoryID),
		From:       from,
		To:         to,
		Rooms:      d.Rooms,
		Reason:     d.Reason,
		CreatedAt:  d.CreatedAt,
	}
}

func toProductionDoc(key generic.SeriesKey, r generic.ProductionRecord) productionDoc {
	return productionDoc{
		ID:                  seriesDocID(key, r.Date),
		HotelID:             string(key.HotelID),
		CategoryID:          string(key.CategoryID),
		Date:                r.Date.String(),
		Weekday:             r.Weekday,
		RoomNights:          r.RoomNights,
		OccupancyPct:        r.OccupancyPct.String(),
		ADR:                 r.ADR.String(),
		RoomRevenue:         r.RoomRevenue.String(),
		VsSamePeriodRN:      r.VsSamePeriodRN,
		VsSamePeriodOcc:     r.VsSamePeriodOcc.String(),
		VsSamePeriodADR:     r.VsSamePeriodADR.String(),
		VsSamePeriodRevenue: r.VsSamePeriodRevenue.String(),
		VsLastYearRN:        r.VsLastYearRN,
		VsLastYearOcc:       r.VsLastYearOcc.String(),
		VsLastYearADR:       r.VsLastYearADR.String(),
		VsLastYearRevenue:   r.VsLastYearRevenue.String(),
		Fields:              int(r.Fields),
	}
}

func (d productionDoc) record() (generic.ProductionRecord, error) {
	date, err := generic.ParseDate(d.Date)
	if err != nil {
		return generic.ProductionRecord{}, err
	}
	return generic.ProductionRecord{
		Date:                date,
		Weekday:             d.Weekday,
		RoomNights:          d.RoomNights,
		OccupancyPct:        parseDecimal(d.OccupancyPct),
		ADR:                 parseDecimal(d.ADR),
		RoomRevenue:         parseDecimal(d.RoomRevenue),
		VsSamePeriodRN:      d.VsSamePeriodRN,
		VsSamePeriodOcc:     parseDecimal(d.VsSamePeriodOcc),
		VsSamePeriodADR:     parseDecimal(d.VsSamePeriodADR),
		VsSamePeriodRevenue: parseDecimal(d.VsSamePeriodRevenue),
		VsLastYearRN:        d.VsLastYearRN,
		VsLastYearOcc:       parseDecimal(d.VsLastYearOcc),
		VsLastYearADR:       parseDecimal(d.VsLastYearADR),
		VsLastYearRevenue:   parseDecimal(d.VsLastYearRevenue),
		Fields:              generic.Field(d.Fields),
	}, nil
}

func toPickupDoc(key generic.SeriesKey, p generic.PickupRecord) pickupDoc {
	return pickupDoc{
		ID:                  seriesDocID(key, p.StayDate),
		HotelID:             string(key.HotelID),
		CategoryID:          string(key.CategoryID),
		StayDate:            p.StayDate.String(),
		RoomNightsOTB:       p.RoomNightsOTB,
		Pickup1Day:          p.Pickup1Day,
		Pickup2Day:          p.Pickup2Day,
		Pickup3Day:          p.Pickup3Day,
		Pickup7Day:          p.Pickup7Day,
		Pickup7DayPriorYear: p.Pickup7DayPriorYear,
	}
}

func (d pickupDoc) record() (generic.PickupRecord, error) {
	date, err := generic.ParseDate(d.StayDate)
	if err != nil {
		return generic.PickupRecord{}, err
	}
	return generic.PickupRecord{
		StayDate:            date,
		RoomNightsOTB:       d.RoomNightsOTB,
		Pickup1Day:          d.Pickup1Day,
		Pickup2Day:          d.Pickup2Day,
		Pickup3Day:          d.Pickup3Day,
		Pickup7Day:          d.Pickup7Day,
		Pickup7DayPriorYear: d.Pickup7DayPriorYear,
	}, nil
}

// =============================================================================
// INVENTORY STORE
// =============================================================================

var upsert = options.Replace().SetUpsert(true)

func (s *Store) SaveHotel(ctx context.Context, h generic.Hotel) error {
	doc := hotelDoc{
		ID: string(h.ID), Name: h.Name, TotalRooms: h.TotalRooms,
		Address: h.Address, City: h.City, Stars: h.Stars, Seasonal: h.Seasonal,
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := s.db.Collection(collHotels).ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, upsert); err != nil {
		return &generic.PersistenceError{Op: "save hotel", Key: doc.ID, Err: err}
	}
	return nil
}

func (s *Store) GetHotel(ctx context.Context, id generic.HotelID) (generic.Hotel, error) {
	var doc hotelDoc
	err := s.db.Collection(collHotels).FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return generic.Hotel{}, generic.ErrNotFound
	}
	if err != nil {
		return generic.Hotel{}, &generic.PersistenceError{Op: "get hotel", Key: string(id), Err: err}
	}
	return doc.hotel(), nil
}

func (d hotelDoc) hotel() generic.Hotel {
	return generic.Hotel{
		ID: generic.HotelID(d.ID), Name: d.Name, TotalRooms: d.TotalRooms,
		Address: d.Address, City: d.City, Stars: d.Stars, Seasonal: d.Seasonal,
	}
}

func (s *Store) ListHotels(ctx context.Context) ([]generic.Hotel, error) {
	var docs []hotelDoc
	if err := s.findAll(ctx, collHotels, bson.M{}, bson.D{{Key: "name", Value: 1}}, &docs); err != nil {
		return nil, &generic.PersistenceError{Op: "list hotels", Err: err}
	}
	hotels := make([]generic.Hotel, 0, len(docs))
	for _, d := range docs {
		hotels = append(hotels, d.hotel())
	}
	return hotels, nil
}

// DeleteHotel removes the hotel, then everything keyed by it.
func (s *Store) DeleteHotel(ctx context.Context, id generic.HotelID) error {
	res, err := s.db.Collection(collHotels).DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return &generic.PersistenceError{Op: "delete hotel", Key: string(id), Err: err}
	}
	if res.DeletedCount == 0 {
		return generic.ErrNotFound
	}
	for _, coll := range []string{collCategories, collBlocks, collProduction, collPickup} {
		if _, err := s.db.Collection(coll).DeleteMany(ctx, bson.M{"hotel_id": string(id)}); err != nil {
			return &generic.PersistenceError{Op: "delete " + coll, Key: string(id), Err: err}
		}
	}
	return nil
}

func (s *Store) SaveCategory(ctx context.Context, c generic.RoomCategory) error {
	n, err := s.db.Collection(collHotels).CountDocuments(ctx, bson.M{"_id": string(c.HotelID)})
	if err != nil {
		return &generic.PersistenceError{Op: "save category", Key: string(c.ID), Err: err}
	}
	if n == 0 {
		return generic.ErrNotFound
	}

	doc := toCategoryDoc(c)
	if _, err := s.db.Collection(collCategories).ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, upsert); err != nil {
		return &generic.PersistenceError{Op: "save category", Key: doc.ID, Err: err}
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, hotelID generic.HotelID, id generic.CategoryID) (generic.RoomCategory, error) {
	var doc categoryDoc
	err := s.db.Collection(collCategories).FindOne(ctx, bson.M{"_id": categoryDocID(hotelID, id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return generic.RoomCategory{}, generic.ErrNotFound
	}
	if err != nil {
		return generic.RoomCategory{}, &generic.PersistenceError{Op: "get category", Key: categoryDocID(hotelID, id), Err: err}
	}
	return doc.category(), nil
}

func (s *Store) ListCategories(ctx context.Context, hotelID generic.HotelID) ([]generic.RoomCategory, error) {
	var docs []categoryDoc
	if err := s.findAll(ctx, collCategories, bson.M{"hotel_id": string(hotelID)}, bson.D{{Key: "name", Value: 1}}, &docs); err != nil {
		return nil, &generic.PersistenceError{Op: "list categories", Key: string(hotelID), Err: err}
	}
	categories := make([]generic.RoomCategory, 0, len(docs))
	for _, d := range docs {
		categories = append(categories, d.category())
	}
	return categories, nil
}

// =============================================================================
// OUT-OF-SERVICE STORE
// =============================================================================

func (s *Store) AddBlock(ctx context.Context, b generic.OutOfServiceBlock) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	doc := blockDoc{
		ID: string(b.ID), HotelID: string(b.HotelID), CategoryID: string(b.CategoryID),
		From: b.From.String(), To: b.To.String(), Rooms: b.Rooms, Reason: b.Reason,
		CreatedAt: b.CreatedAt,
	}
	if _, err := s.db.Collection(collBlocks).InsertOne(ctx, doc); err != nil {
		return &generic.PersistenceError{Op: "add block", Key: doc.ID, Err: err}
	}
	return nil
}

func (s *Store) GetBlock(ctx context.Context, hotelID generic.HotelID, id generic.BlockID) (generic.OutOfServiceBlock, error) {
	var doc blockDoc
	err := s.db.Collection(collBlocks).FindOne(ctx, bson.M{"_id": string(id), "hotel_id": string(hotelID)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return generic.OutOfServiceBlock{}, generic.ErrNotFound
	}
	if err != nil {
		return generic.OutOfServiceBlock{}, &generic.PersistenceError{Op: "get block", Key: string(id), Err: err}
	}
	return doc.block(), nil
}

func (s *Store) SetBlockEnd(ctx context.Context, hotelID generic.HotelID, id generic.BlockID, to generic.Date) error {
	res, err := s.db.Collection(collBlocks).UpdateOne(ctx,
		bson.M{"_id": string(id), "hotel_id": string(hotelID)},
		bson.M{"$set": bson.M{"to": to.String()}},
	)
	if err != nil {
		return &generic.PersistenceError{Op: "end block", Key: string(id), Date: to, Err: err}
	}
	if res.MatchedCount == 0 {
		return generic.ErrNotFound
	}
	return nil
}

func (s *Store) ListBlocks(ctx context.Context, hotelID generic.HotelID, overlapping generic.Period) ([]generic.OutOfServiceBlock, error) {
	lower, upper := bounds(overlapping)
	filter := bson.M{
		"hotel_id": string(hotelID),
		"from":     bson.M{"$lte": upper},
		"to":       bson.M{"$gte": lower},
	}
	var docs []blockDoc
	if err := s.findAll(ctx, collBlocks, filter, bson.D{{Key: "from", Value: 1}, {Key: "created_at", Value: 1}}, &docs); err != nil {
		return nil, &generic.PersistenceError{Op: "list blocks", Key: string(hotelID), Err: err}
	}
	blocks := make([]generic.OutOfServiceBlock, 0, len(docs))
	for _, d := range docs {
		blocks = append(blocks, d.block())
	}
	return blocks, nil
}

// =============================================================================
// SERIES STORE
// =============================================================================

func (s *Store) UpsertProduction(ctx context.Context, key generic.SeriesKey, records []generic.ProductionRecord) (int, error) {
	coll := s.db.Collection(collProduction)
	for i, r := range records {
		doc := toProductionDoc(key, r)
		if _, err := coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, upsert); err != nil {
			return i, &generic.PersistenceError{Op: "upsert production", Key: key.String(), Date: r.Date, Err: err}
		}
	}
	return len(records), nil
}

func (s *Store) LoadProduction(ctx context.Context, key generic.SeriesKey, period generic.Period) ([]generic.ProductionRecord, error) {
	var docs []productionDoc
	if err := s.findAll(ctx, collProduction, seriesFilter(key, "date", period), bson.D{{Key: "date", Value: 1}}, &docs); err != nil {
		return nil, &generic.PersistenceError{Op: "load production", Key: key.String(), Err: err}
	}
	records := make([]generic.ProductionRecord, 0, len(docs))
	for _, d := range docs {
		r, err := d.record()
		if err != nil {
			return nil, &generic.PersistenceError{Op: "load production", Key: key.String(), Err: err}
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *Store) UpsertPickup(ctx context.Context, key generic.SeriesKey, records []generic.PickupRecord) (int, error) {
	coll := s.db.Collection(collPickup)
	for i, p := range records {
		doc := toPickupDoc(key, p)
		if _, err := coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, upsert); err != nil {
			return i, &generic.PersistenceError{Op: "upsert pickup", Key: key.String(), Date: p.StayDate, Err: err}
		}
	}
	return len(records), nil
}

func (s *Store) LoadPickup(ctx context.Context, key generic.SeriesKey, period generic.Period) ([]generic.PickupRecord, error) {
	var docs []pickupDoc
	if err := s.findAll(ctx, collPickup, seriesFilter(key, "stay_date", period), bson.D{{Key: "stay_date", Value: 1}}, &docs); err != nil {
		return nil, &generic.PersistenceError{Op: "load pickup", Key: key.String(), Err: err}
	}
	records := make([]generic.PickupRecord, 0, len(docs))
	for _, d := range docs {
		p, err := d.record()
		if err != nil {
			return nil, &generic.PersistenceError{Op: "load pickup", Key: key.String(), Err: err}
		}
		records = append(records, p)
	}
	return records, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) findAll(ctx context.Context, coll string, filter interface{}, sort bson.D, out interface{}) error {
	cursor, err := s.db.Collection(coll).Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func seriesFilter(key generic.SeriesKey, dateField string, period generic.Period) bson.M {
	lower, upper := bounds(period)
	return bson.M{
		"hotel_id":    string(key.HotelID),
		"category_id": string(key.CategoryID),
		dateField:     bson.M{"$gte": lower, "$lte": upper},
	}
}

// bounds turns a period into inclusive string bounds covering unbounded ends.
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
