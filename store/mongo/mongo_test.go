package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/upgrade-advisor/generic"
	"go.mongodb.org/mongo-driver/bson"
)

func june(d int) generic.Date { return generic.NewDate(2025, time.June, d) }

func TestSeriesFilter(t *testing.T) {
	key := generic.SeriesKey{HotelID: "h1", CategoryID: "classic"}

	f := seriesFilter(key, "date", generic.Period{Start: june(3)})
	assert.Equal(t, "h1", f["hotel_id"])
	assert.Equal(t, "classic", f["category_id"])
	assert.Equal(t, bson.M{"$gte": "2025-06-03", "$lte": "9999-12-31"}, f["date"])

	f = seriesFilter(key.HotelWide(), "stay_date", generic.AllTime)
	assert.Equal(t, "", f["category_id"], "hotel-wide series has an empty category")
	assert.Equal(t, bson.M{"$gte": "0000-01-01", "$lte": "9999-12-31"}, f["stay_date"])
}

func TestDocIDs(t *testing.T) {
	key := generic.SeriesKey{HotelID: "h1"}
	assert.Equal(t, "h1//2025-06-01", seriesDocID(key, june(1)))
	assert.Equal(t, "h1/classic", categoryDocID("h1", "classic"))
}

func TestCategoryDoc_DefaultMargin(t *testing.T) {
	doc := toCategoryDoc(generic.RoomCategory{ID: "c", HotelID: "h1", Name: "C", AverageRate: decimal.NewFromInt(250)})
	assert.Equal(t, generic.DefaultMinMargin.String(), doc.MinMargin)
	assert.True(t, doc.category().AverageRate.Equal(decimal.NewFromInt(250)))
}

// The tests below need a running server: UA_MONGO_TEST_URI=mongodb://localhost:27017

func newStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("UA_MONGO_TEST_URI")
	if uri == "" {
		t.Skip("UA_MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	s, err := New(ctx, uri, fmt.Sprintf("upgrade_advisor_test_%d", time.Now().UnixNano()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		s.Close()
	})

	require.NoError(t, s.SaveHotel(ctx, generic.Hotel{ID: "h1", Name: "Cala Cuncheddi", TotalRooms: 85}))
	require.NoError(t, s.SaveCategory(ctx, generic.RoomCategory{
		ID: "classic", HotelID: "h1", Name: "Classic", Rooms: 10, EntryLevel: true,
		AverageRate: decimal.NewFromInt(300),
	}))
	return s
}

func TestStore_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	key := generic.SeriesKey{HotelID: "h1", CategoryID: "classic"}

	records := []generic.ProductionRecord{
		{Date: june(2), RoomNights: 60, Fields: generic.FieldRoomNights},
		{Date: june(1), RoomNights: 50, Fields: generic.FieldRoomNights},
	}
	_, err := s.UpsertProduction(ctx, key, records)
	require.NoError(t, err)
	records[0].RoomNights = 65
	n, err := s.UpsertProduction(ctx, key, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.LoadProduction(ctx, key, generic.AllTime)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, june(1), got[0].Date)
	assert.Equal(t, 65, got[1].RoomNights)
}

func TestStore_BlocksAndCascade(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.AddBlock(ctx, generic.OutOfServiceBlock{ID: "b1", HotelID: "h1", CategoryID: "classic", From: june(1), To: june(30), Rooms: 2}))
	onDay, err := s.ListBlocks(ctx, "h1", generic.Period{Start: june(5), End: june(5)})
	require.NoError(t, err)
	assert.Len(t, onDay, 1)

	require.NoError(t, s.SetBlockEnd(ctx, "h1", "b1", june(3)))
	b, err := s.GetBlock(ctx, "h1", "b1")
	require.NoError(t, err)
	assert.Equal(t, june(3), b.To)

	require.NoError(t, s.DeleteHotel(ctx, "h1"))
	_, err = s.GetCategory(ctx, "h1", "classic")
	assert.ErrorIs(t, err, generic.ErrNotFound)
	blocks, err := s.ListBlocks(ctx, "h1", generic.AllTime)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}
