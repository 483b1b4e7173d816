package db

import (
	"context"

	"ms-seating/internal/models"
)

// UpsertRowPrices writes one RowPrice per row, overwriting any price
// previously assigned to the same (event, row) pair. Last write wins;
// assignments are never cumulative.
func (d *DB) UpsertRowPrices(ctx context.Context, prices []models.RowPrice) error {
	if len(prices) == 0 {
		return nil
	}
	_, err := d.Bun.NewInsert().
		Model(&prices).
		On("CONFLICT (event_id, row_name) DO UPDATE").
		Set("price_cents = EXCLUDED.price_cents").
		Exec(ctx)
	return err
}

// PricesByEvent returns the row -> price mapping for an event.
func (d *DB) PricesByEvent(ctx context.Context, eventID string) (map[string]int64, error) {
	var prices []models.RowPrice
	err := d.Bun.NewSelect().
		Model(&prices).
		Where("event_id = ?", eventID).
		Order("row_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(prices))
	for _, p := range prices {
		out[p.RowName] = p.PriceCents
	}
	return out, nil
}
