package db

import (
	"context"

	"github.com/uptrace/bun"

	"ms-seating/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateEvent(ctx context.Context, event models.Event) error {
	_, err := d.Bun.NewInsert().Model(&event).Exec(ctx)
	return err
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents returns events, optionally filtered to those after a date
// or at a location. Both filters are plain string comparisons against
// the stored text columns.
func (d *DB) ListEvents(ctx context.Context, afterDate, location string) ([]models.Event, error) {
	var events []models.Event
	q := d.Bun.NewSelect().Model(&events)
	if afterDate != "" {
		q = q.Where("date > ?", afterDate)
	}
	if location != "" {
		q = q.Where("location = ?", location)
	}
	err := q.Order("date ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) EventExists(ctx context.Context, id string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exists(ctx)
}
