package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-seating/internal/models"
	"ms-seating/internal/seats/db"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	ctx := context.Background()
	require.NoError(t, bunDB.ResetModel(ctx, (*models.Seat)(nil)))
	require.NoError(t, bunDB.ResetModel(ctx, (*models.RowPrice)(nil)))

	return &db.DB{Bun: bunDB}
}

func seedSeats(t *testing.T, d *db.DB, eventID string, rows []string, perRow int) []models.Seat {
	t.Helper()

	var seats []models.Seat
	for _, row := range rows {
		for n := 1; n <= perRow; n++ {
			seats = append(seats, models.Seat{
				EventID:    eventID,
				RowName:    row,
				SeatNumber: n,
				Barcode:    eventID + "-" + row + "-" + string(rune('0'+n)),
				Status:     models.SeatStatusAvailable,
			})
		}
	}
	require.NoError(t, d.BulkInsertSeats(context.Background(), seats))
	return seats
}

func TestBulkInsertSeatsIsIdempotent(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	seedSeats(t, d, "event1", []string{"A", "B"}, 3)

	first, err := d.SeatsByEvent(ctx, "event1")
	require.NoError(t, err)
	require.Len(t, first, 6)

	// Re-running creation with fresh barcodes must not duplicate rows
	// or rotate the original barcodes.
	var again []models.Seat
	for _, s := range first {
		s.Barcode = "regenerated-" + s.Barcode
		again = append(again, s)
	}
	require.NoError(t, d.BulkInsertSeats(ctx, again))

	second, err := d.SeatsByEvent(ctx, "event1")
	require.NoError(t, err)
	require.Len(t, second, 6)
	for i := range first {
		assert.Equal(t, first[i].Barcode, second[i].Barcode)
	}
}

func TestReserveSetsStatusAndTimestampTogether(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	seedSeats(t, d, "event1", []string{"A"}, 2)

	now := time.Now().UTC().Truncate(time.Second)
	won, err := d.ReserveSeat(ctx, "event1", "A", 1, now)
	require.NoError(t, err)
	require.True(t, won)

	seat, err := d.GetSeat(ctx, "event1", "A", 1)
	require.NoError(t, err)
	assert.Equal(t, models.SeatStatusReserved, seat.Status)
	require.NotNil(t, seat.ReservationTime, "reservation_time must land in the same statement as the status")
	assert.False(t, seat.ReservationTime.Before(now))
	assert.Nil(t, seat.OwnerID)

	// The second reservation loses the precondition.
	won, err = d.ReserveSeat(ctx, "event1", "A", 1, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, won)

	unchanged, err := d.GetSeat(ctx, "event1", "A", 1)
	require.NoError(t, err)
	assert.Equal(t, models.SeatStatusReserved, unchanged.Status)
}

func TestUnreserveClearsReservationTime(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	seedSeats(t, d, "event1", []string{"A"}, 1)

	won, err := d.ReserveSeat(ctx, "event1", "A", 1, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, won)

	won, err = d.UnreserveSeat(ctx, "event1", "A", 1)
	require.NoError(t, err)
	require.True(t, won)

	seat, err := d.GetSeat(ctx, "event1", "A", 1)
	require.NoError(t, err)
	assert.Equal(t, models.SeatStatusAvailable, seat.Status)
	assert.Nil(t, seat.ReservationTime)
}

func TestUnreserveAvailableOrMissingSeatAffectsNothing(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	seedSeats(t, d, "event1", []string{"A"}, 1)

	// AVAILABLE seat: precondition fails.
	won, err := d.UnreserveSeat(ctx, "event1", "A", 1)
	require.NoError(t, err)
	assert.False(t, won)

	// Nonexistent seat: indistinguishable from the precondition race.
	won, err = d.UnreserveSeat(ctx, "event1", "Z", 99)
	require.NoError(t, err)
	assert.False(t, won)
}

func TestSellFromAvailableAndReserved(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	seedSeats(t, d, "event1", []string{"A"}, 2)

	// AVAILABLE -> SOLD.
	won, err := d.SellSeat(ctx, "event1", "A", 1, "buyer-x")
	require.NoError(t, err)
	require.True(t, won)

	seat, err := d.GetSeat(ctx, "event1", "A", 1)
	require.NoError(t, err)
	assert.Equal(t, models.SeatStatusSold, seat.Status)
	require.NotNil(t, seat.OwnerID)
	assert.Equal(t, "buyer-x", *seat.OwnerID)
	assert.Nil(t, seat.ReservationTime)

	// RESERVED -> SOLD clears the reservation stamp.
	won, err = d.ReserveSeat(ctx, "event1", "A", 2, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, won)
	won, err = d.SellSeat(ctx, "event1", "A", 2, "buyer-y")
	require.NoError(t, err)
	require.True(t, won)

	seat, err = d.GetSeat(ctx, "event1", "A", 2)
	require.NoError(t, err)
	assert.Equal(t, models.SeatStatusSold, seat.Status)
	require.NotNil(t, seat.OwnerID)
	assert.Equal(t, "buyer-y", *seat.OwnerID)
	assert.Nil(t, seat.ReservationTime)

	// SOLD is terminal: a second sale must lose.
	won, err = d.SellSeat(ctx, "event1", "A", 1, "buyer-z")
	require.NoError(t, err)
	assert.False(t, won)

	unchanged, err := d.GetSeat(ctx, "event1", "A", 1)
	require.NoError(t, err)
	assert.Equal(t, "buyer-x", *unchanged.OwnerID)
}

func TestFirstAvailableSeatUsesStorageOrder(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	// Insert out of order; selection must still be row A, seat 1.
	seedSeats(t, d, "event1", []string{"B", "A"}, 2)

	seat, err := d.FirstAvailableSeat(ctx, "event1")
	require.NoError(t, err)
	assert.Equal(t, "A", seat.RowName)
	assert.Equal(t, 1, seat.SeatNumber)

	won, err := d.SellSeat(ctx, "event1", "A", 1, "buyer")
	require.NoError(t, err)
	require.True(t, won)

	seat, err = d.FirstAvailableSeat(ctx, "event1")
	require.NoError(t, err)
	assert.Equal(t, "A", seat.RowName)
	assert.Equal(t, 2, seat.SeatNumber)
}

func TestFirstAvailableSeatEmptyEvent(t *testing.T) {
	d := setupTestDB(t)

	_, err := d.FirstAvailableSeat(context.Background(), "ghost-event")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestGetSeatByBarcode(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	seats := seedSeats(t, d, "event1", []string{"A"}, 1)

	seat, err := d.GetSeatByBarcode(ctx, seats[0].Barcode)
	require.NoError(t, err)
	assert.Equal(t, "A", seat.RowName)

	_, err = d.GetSeatByBarcode(ctx, "unknown")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestCountByStatus(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	seedSeats(t, d, "event1", []string{"A"}, 4)

	won, err := d.ReserveSeat(ctx, "event1", "A", 1, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, won)
	won, err = d.SellSeat(ctx, "event1", "A", 2, "buyer")
	require.NoError(t, err)
	require.True(t, won)

	summary, err := d.CountByStatus(ctx, "event1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Available)
	assert.Equal(t, 1, summary.Reserved)
	assert.Equal(t, 1, summary.Sold)
}
