package pricing

import (
	"context"
	"fmt"

	"ms-seating/internal/models"
)

// DefaultDecrementCents is the per-row price step: each row further
// from the stage costs $20.00 less than the one before it.
const DefaultDecrementCents int64 = 2000

type PriceStore interface {
	UpsertRowPrices(ctx context.Context, prices []models.RowPrice) error
}

// Assigner computes and persists per-row prices for an event.
type Assigner struct {
	DB PriceStore
}

func NewAssigner(db PriceStore) *Assigner {
	return &Assigner{DB: db}
}

// Assign prices the given rows front to back: row i gets
// maxPrice*100 - i*decrementCents, clamped at zero. maxPrice is in
// whole currency units; everything persisted is in cents. Re-running
// for the same event overwrites the previous assignment per row.
func (a *Assigner) Assign(ctx context.Context, eventID string, maxPrice int64, rows []string, decrementCents int64) ([]models.RowPrice, error) {
	if eventID == "" {
		return nil, fmt.Errorf("event id is required")
	}
	if maxPrice <= 0 {
		return nil, fmt.Errorf("max price must be positive, got %d", maxPrice)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("at least one row is required")
	}
	if decrementCents <= 0 {
		decrementCents = DefaultDecrementCents
	}

	maxCents := maxPrice * 100
	prices := make([]models.RowPrice, 0, len(rows))
	for i, row := range rows {
		price := maxCents - int64(i)*decrementCents
		if price < 0 {
			price = 0
		}
		prices = append(prices, models.RowPrice{
			EventID:    eventID,
			RowName:    row,
			PriceCents: price,
		})
	}

	if err := a.DB.UpsertRowPrices(ctx, prices); err != nil {
		return nil, fmt.Errorf("failed to write row prices: %w", err)
	}
	return prices, nil
}
