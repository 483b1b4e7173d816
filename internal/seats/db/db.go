package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"

	"ms-seating/internal/models"
)

// DB wraps the shared bun handle with seat inventory queries. All
// mutations go through single-statement conditional updates: the WHERE
// clause carries the status precondition and the caller checks the
// affected-row count, so two racing writers can never both win.
type DB struct {
	Bun *bun.DB
}

func (d *DB) GetSeat(ctx context.Context, eventID, rowName string, seatNumber int) (*models.Seat, error) {
	var seat models.Seat
	err := d.Bun.NewSelect().
		Model(&seat).
		Where("event_id = ?", eventID).
		Where("row_name = ?", rowName).
		Where("seat_number = ?", seatNumber).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (d *DB) GetSeatByBarcode(ctx context.Context, barcode string) (*models.Seat, error) {
	var seat models.Seat
	err := d.Bun.NewSelect().
		Model(&seat).
		Where("barcode = ?", barcode).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

// SeatsByEvent returns every seat of an event in storage order
// (row name, then seat number).
func (d *DB) SeatsByEvent(ctx context.Context, eventID string) ([]models.Seat, error) {
	var seats []models.Seat
	err := d.Bun.NewSelect().
		Model(&seats).
		Where("event_id = ?", eventID).
		Order("row_name ASC", "seat_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return seats, nil
}

// BulkInsertSeats inserts the given seats, silently skipping any whose
// (event_id, row_name, seat_number) identity already exists. Re-running
// seat creation therefore never duplicates rows or rotates barcodes.
func (d *DB) BulkInsertSeats(ctx context.Context, seats []models.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	_, err := d.Bun.NewInsert().
		Model(&seats).
		Ignore().
		Exec(ctx)
	return err
}

// ReserveSeat flips AVAILABLE -> RESERVED and stamps the reservation
// time in the same statement. Returns false when the seat does not
// exist or the precondition no longer holds.
func (d *DB) ReserveSeat(ctx context.Context, eventID, rowName string, seatNumber int, now time.Time) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Seat)(nil)).
		Set("status = ?", models.SeatStatusReserved).
		Set("reservation_time = ?", now).
		Where("event_id = ?", eventID).
		Where("row_name = ?", rowName).
		Where("seat_number = ?", seatNumber).
		Where("status = ?", models.SeatStatusAvailable).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return oneRowAffected(res)
}

// UnreserveSeat flips RESERVED -> AVAILABLE and clears the reservation
// time in the same statement.
func (d *DB) UnreserveSeat(ctx context.Context, eventID, rowName string, seatNumber int) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Seat)(nil)).
		Set("status = ?", models.SeatStatusAvailable).
		Set("reservation_time = NULL").
		Where("event_id = ?", eventID).
		Where("row_name = ?", rowName).
		Where("seat_number = ?", seatNumber).
		Where("status = ?", models.SeatStatusReserved).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return oneRowAffected(res)
}

// SellSeat moves a non-SOLD seat to SOLD, records the buyer and clears
// any reservation stamp, all in one conditional statement.
func (d *DB) SellSeat(ctx context.Context, eventID, rowName string, seatNumber int, ownerID string) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Seat)(nil)).
		Set("status = ?", models.SeatStatusSold).
		Set("owner_id = ?", ownerID).
		Set("reservation_time = NULL").
		Where("event_id = ?", eventID).
		Where("row_name = ?", rowName).
		Where("seat_number = ?", seatNumber).
		Where("status IN (?, ?)", models.SeatStatusAvailable, models.SeatStatusReserved).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return oneRowAffected(res)
}

// FirstAvailableSeat picks the lowest (row_name, seat_number) seat of
// the event that is still AVAILABLE. Returns sql.ErrNoRows (wrapped by
// bun) when the event has no open inventory.
func (d *DB) FirstAvailableSeat(ctx context.Context, eventID string) (*models.Seat, error) {
	var seat models.Seat
	err := d.Bun.NewSelect().
		Model(&seat).
		Where("event_id = ?", eventID).
		Where("status = ?", models.SeatStatusAvailable).
		Order("row_name ASC", "seat_number ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

// CountByStatus aggregates seat counts for an event.
func (d *DB) CountByStatus(ctx context.Context, eventID string) (*models.SalesSummary, error) {
	var rows []struct {
		Status string `bun:"status"`
		Count  int    `bun:"count"`
	}
	err := d.Bun.NewSelect().
		Model((*models.Seat)(nil)).
		Column("status").
		ColumnExpr("count(*) AS count").
		Where("event_id = ?", eventID).
		Group("status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	summary := &models.SalesSummary{EventID: eventID}
	for _, r := range rows {
		switch r.Status {
		case models.SeatStatusAvailable:
			summary.Available = r.Count
		case models.SeatStatusReserved:
			summary.Reserved = r.Count
		case models.SeatStatusSold:
			summary.Sold = r.Count
		}
	}
	return summary, nil
}

func oneRowAffected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
